package domain

type ImageStyle string

const (
	ImageStyleVivid   ImageStyle = "vivid"
	ImageStyleNatural ImageStyle = "natural"

	ImageStyleDefault = ImageStyleVivid
)

func (s ImageStyle) Valid() bool {
	return s == ImageStyleVivid || s == ImageStyleNatural
}
