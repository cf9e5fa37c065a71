package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dskvich/artloop/pkg/domain"
	"github.com/dskvich/artloop/pkg/persona"
)

type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt string, content domain.UserContent) (string, error)
}

type analysisService struct {
	completer ChatCompleter
	personas  persona.Catalog
}

func NewAnalysisService(completer ChatCompleter, personas persona.Catalog) *analysisService {
	return &analysisService{
		completer: completer,
		personas:  personas,
	}
}

func (s *analysisService) DescribeImage(ctx context.Context, imageURL string) (string, error) {
	return s.analyzeImage(ctx, persona.Describe, imageURL)
}

func (s *analysisService) CritiqueImage(ctx context.Context, imageURL string) (string, error) {
	return s.analyzeImage(ctx, persona.Critique, imageURL)
}

func (s *analysisService) ArtistStatement(ctx context.Context, imageURL string) (string, error) {
	return s.analyzeImage(ctx, persona.ArtistStatement, imageURL)
}

// NewPromptCreationVoice turns an artist statement and a critique into a
// prompt for a different image.
func (s *analysisService) NewPromptCreationVoice(ctx context.Context, artistStatement, criticOpinion string) (string, error) {
	p, err := s.personas.Get(persona.NewPrompt)
	if err != nil {
		return "", err
	}

	text := fmt.Sprintf("Artist Statement: %s\n\nCritic's Opinion: %s\n\n%s", artistStatement, criticOpinion, p.Instruction)

	return s.complete(ctx, persona.NewPrompt, p, domain.TextContent(text))
}

func (s *analysisService) analyzeImage(ctx context.Context, name persona.Name, imageURL string) (string, error) {
	p, err := s.personas.Get(name)
	if err != nil {
		return "", err
	}
	return s.complete(ctx, name, p, domain.ImageContent(p.Instruction, imageURL))
}

func (s *analysisService) complete(ctx context.Context, name persona.Name, p persona.Persona, content domain.UserContent) (string, error) {
	slog.InfoContext(ctx, "Requesting analysis", "persona", name)

	text, err := s.completer.Complete(ctx, p.System, content)
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Analysis received", "persona", name, "length", len(text))
	return text, nil
}
