package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dskvich/artloop/pkg/domain"
	"github.com/dskvich/artloop/pkg/services"
)

type ImageStore interface {
	SaveImage(data, filename string) (string, error)
}

type SessionStore interface {
	SaveSession(data string) (string, error)
}

type Analyzer interface {
	DescribeImage(ctx context.Context, imageURL string) (string, error)
	CritiqueImage(ctx context.Context, imageURL string) (string, error)
	ArtistStatement(ctx context.Context, imageURL string) (string, error)
	NewPromptCreationVoice(ctx context.Context, artistStatement, criticOpinion string) (string, error)
}

type LoopRunner interface {
	Run(ctx context.Context, prompt string, generations int, style domain.ImageStyle) (*services.LoopResult, error)
}

type Deps struct {
	Images   ImageStore
	Sessions SessionStore
	Analyzer Analyzer
	Loop     LoopRunner
}

// New registers every command. A nil Loop leaves run_generation_loop out.
func New(d Deps) *Registry {
	r := NewRegistry()

	r.Register("greet", greet)

	r.Register("save_image", func(_ context.Context, raw json.RawMessage) (string, error) {
		var args struct {
			Data     string `json:"data"`
			Filename string `json:"filename"`
		}
		if err := decode(raw, &args); err != nil {
			return "", err
		}
		return d.Images.SaveImage(args.Data, args.Filename)
	})

	r.Register("describe_image", imageCommand(d.Analyzer.DescribeImage))
	r.Register("critique_image", imageCommand(d.Analyzer.CritiqueImage))
	r.Register("artist_statement", imageCommand(d.Analyzer.ArtistStatement))

	r.Register("new_prompt_creation_voice", func(ctx context.Context, raw json.RawMessage) (string, error) {
		var args struct {
			ArtistStatement string `json:"artistStatement"`
			CriticOpinion   string `json:"criticOpinion"`
		}
		if err := decode(raw, &args); err != nil {
			return "", err
		}
		return d.Analyzer.NewPromptCreationVoice(ctx, args.ArtistStatement, args.CriticOpinion)
	})

	r.Register("save_session_data", func(_ context.Context, raw json.RawMessage) (string, error) {
		var args struct {
			SessionData string `json:"sessionData"`
		}
		if err := decode(raw, &args); err != nil {
			return "", err
		}
		return d.Sessions.SaveSession(args.SessionData)
	})

	if d.Loop != nil {
		r.Register("run_generation_loop", loopCommand(d.Loop))
	}

	return r
}

func greet(_ context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		Name string `json:"name"`
	}
	if err := decode(raw, &args); err != nil {
		return "", err
	}
	return fmt.Sprintf("Hello, %s! You've been greeted from Go!", args.Name), nil
}

func imageCommand(fn func(ctx context.Context, imageURL string) (string, error)) Handler {
	return func(ctx context.Context, raw json.RawMessage) (string, error) {
		var args struct {
			ImageURL string `json:"imageUrl"`
		}
		if err := decode(raw, &args); err != nil {
			return "", err
		}
		return fn(ctx, args.ImageURL)
	}
}

func loopCommand(loop LoopRunner) Handler {
	return func(ctx context.Context, raw json.RawMessage) (string, error) {
		args := struct {
			Prompt      string            `json:"prompt"`
			Generations int               `json:"generations"`
			Style       domain.ImageStyle `json:"style"`
		}{Generations: 1}
		if err := decode(raw, &args); err != nil {
			return "", err
		}
		if strings.TrimSpace(args.Prompt) == "" {
			return "", fmt.Errorf("%w: prompt is required", ErrInvalidArguments)
		}

		res, err := loop.Run(ctx, args.Prompt, args.Generations, args.Style)
		if err != nil {
			if res != nil && res.SessionPath != "" {
				return "", fmt.Errorf("%w (partial session saved to %s)", err, res.SessionPath)
			}
			return "", err
		}

		out, err := json.Marshal(res)
		if err != nil {
			return "", fmt.Errorf("encoding loop result: %w", err)
		}
		return string(out), nil
	}
}
