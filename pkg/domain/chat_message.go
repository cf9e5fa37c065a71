package domain

const (
	ChatMessageRoleSystem = "system"
	ChatMessageRoleUser   = "user"
)

// ChatMessage content is either a string or a []Content.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypeImageURL ContentType = "image_url"
)

type Content struct {
	Type     ContentType `json:"type"`
	Text     string      `json:"text,omitempty"`
	ImageURL *ImageURL   `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// UserContent is what the user turn of a request carries: text only, or an
// instruction paired with an image reference.
type UserContent struct {
	Text     string
	ImageURL string
}

func TextContent(text string) UserContent {
	return UserContent{Text: text}
}

func ImageContent(instruction, imageURL string) UserContent {
	return UserContent{Text: instruction, ImageURL: imageURL}
}

// MessageContent renders the user turn: a plain string for text, a text block
// followed by an image_url block otherwise.
func (u UserContent) MessageContent() any {
	if u.ImageURL == "" {
		return u.Text
	}
	return []Content{
		{Type: ContentTypeText, Text: u.Text},
		{Type: ContentTypeImageURL, ImageURL: &ImageURL{URL: u.ImageURL}},
	}
}
