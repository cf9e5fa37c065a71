package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dskvich/artloop/pkg/domain"
)

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, style domain.ImageStyle) (string, error)
}

type ImageSaver interface {
	SaveImage(data, filename string) (string, error)
	Dir() string
}

type PromptsRepository interface {
	Save(ctx context.Context, prompt string) (int64, error)
	GetByID(ctx context.Context, id int64) (string, error)
}

// GeneratedImage is a saved painting and the prompt that produced it.
type GeneratedImage struct {
	PromptID int64
	Filename string
	Base64   string
}

// DataURL is how the image is handed to the vision model.
func (g GeneratedImage) DataURL() string {
	return "data:image/png;base64," + g.Base64
}

type imageService struct {
	generator   ImageGenerator
	saver       ImageSaver
	promptsRepo PromptsRepository
	now         func() time.Time
}

func NewImageService(
	generator ImageGenerator,
	saver ImageSaver,
	promptsRepo PromptsRepository,
) *imageService {
	return &imageService{
		generator:   generator,
		saver:       saver,
		promptsRepo: promptsRepo,
		now:         time.Now,
	}
}

func (s *imageService) GenerateImage(ctx context.Context, prompt string, style domain.ImageStyle) (*GeneratedImage, error) {
	slog.InfoContext(ctx, "Starting image generation", "prompt", prompt)

	promptID, err := s.promptsRepo.Save(ctx, prompt)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Prompt saved", "promptID", promptID)

	b64, err := s.generator.GenerateImage(ctx, prompt, style)
	if err != nil {
		return nil, fmt.Errorf("generating image: %w", err)
	}

	filename := PaintingFilename(s.now())
	if _, err := s.saver.SaveImage(b64, filename); err != nil {
		return nil, fmt.Errorf("saving image: %w", err)
	}

	return &GeneratedImage{PromptID: promptID, Filename: filename, Base64: b64}, nil
}

// RegenerateImage generates a new painting from a prompt in the history.
func (s *imageService) RegenerateImage(ctx context.Context, promptID int64, style domain.ImageStyle) (*GeneratedImage, error) {
	prompt, err := s.promptsRepo.GetByID(ctx, promptID)
	if err != nil {
		return nil, fmt.Errorf("getting prompt: %w", err)
	}

	slog.InfoContext(ctx, "Prompt fetched", "promptID", promptID)

	return s.GenerateImage(ctx, prompt, style)
}

// PaintingFilename is painting-<ISO 8601 UTC with ':' and '.' replaced by '-'>.png.
func PaintingFilename(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("painting-%s-%03dZ.png", t.Format("2006-01-02T15-04-05"), t.Nanosecond()/int(time.Millisecond))
}
