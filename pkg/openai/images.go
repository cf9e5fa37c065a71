package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dskvich/artloop/pkg/domain"
	"github.com/dskvich/artloop/pkg/telemetry"
)

type imageGenerator struct {
	keys    KeyResolver
	baseURL string
	hc      *http.Client
}

// NewImageGenerator returns a DALL-E 3 generator built on go-openai.
func NewImageGenerator(keys KeyResolver, baseURL string, timeout time.Duration) *imageGenerator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &imageGenerator{
		keys:    keys,
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
	}
}

// GenerateImage returns the generated image as standard base64.
func (g *imageGenerator) GenerateImage(ctx context.Context, prompt string, style domain.ImageStyle) (b64 string, err error) {
	if style == "" {
		style = domain.ImageStyleDefault
	}
	if !style.Valid() {
		return "", fmt.Errorf("unsupported image style %q", style)
	}

	ctx, span := telemetry.StartSpan(ctx, "openai.image_generation", attribute.String("style", string(style)))
	defer func() { telemetry.End(span, err) }()

	token, err := g.keys.Resolve()
	if err != nil {
		return "", err
	}

	cfg := goopenai.DefaultConfig(token)
	cfg.BaseURL = g.baseURL
	cfg.HTTPClient = g.hc
	api := goopenai.NewClientWithConfig(cfg)

	slog.InfoContext(ctx, "Starting image generation", "prompt", prompt, "style", style)

	resp, err := api.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         prompt,
		Model:          goopenai.CreateImageModelDallE3,
		Size:           goopenai.CreateImageSize1024x1024,
		Style:          string(style),
		ResponseFormat: goopenai.CreateImageResponseFormatB64JSON,
		N:              1,
	})
	if err != nil {
		return "", mapImageError(err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", fmt.Errorf("%w: no image in response", ErrMalformedResponse)
	}

	slog.InfoContext(ctx, "Image generated", "size", len(resp.Data[0].B64JSON))

	return resp.Data[0].B64JSON, nil
}

func mapImageError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &HTTPError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &HTTPError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return fmt.Errorf("%w: creating image: %v", ErrNetwork, err)
}
