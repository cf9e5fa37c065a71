package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dskvich/artloop/pkg/domain"
	"github.com/dskvich/artloop/pkg/logger"
	"github.com/dskvich/artloop/pkg/report"
	"github.com/dskvich/artloop/pkg/telemetry"
)

type Analyzer interface {
	ArtistStatement(ctx context.Context, imageURL string) (string, error)
	CritiqueImage(ctx context.Context, imageURL string) (string, error)
	NewPromptCreationVoice(ctx context.Context, artistStatement, criticOpinion string) (string, error)
}

type Painter interface {
	GenerateImage(ctx context.Context, prompt string, style domain.ImageStyle) (*GeneratedImage, error)
}

type SessionSaver interface {
	SaveSessionAt(data []byte, t time.Time) (string, error)
	WriteAttachment(t time.Time, ext string, data []byte) (string, error)
	Dir() string
}

var ErrInvalidGenerations = errors.New("generations must be at least 1")

// LoopResult describes what a generation loop left on disk. It is returned
// alongside the error when the loop stops early.
type LoopResult struct {
	Session     domain.Session `json:"session"`
	SessionPath string         `json:"sessionPath"`
	ReportPath  string         `json:"reportPath,omitempty"`
}

type loopService struct {
	painter   Painter
	analyzer  Analyzer
	sessions  SessionSaver
	imagesDir string
	now       func() time.Time
}

func NewLoopService(painter Painter, analyzer Analyzer, sessions SessionSaver, imagesDir string) *loopService {
	return &loopService{
		painter:   painter,
		analyzer:  analyzer,
		sessions:  sessions,
		imagesDir: imagesDir,
		now:       time.Now,
	}
}

// Run feeds each generation's new prompt into the next: paint, state, critique,
// re-prompt. Completed generations are saved even when a later step fails.
func (s *loopService) Run(ctx context.Context, prompt string, generations int, style domain.ImageStyle) (res *LoopResult, err error) {
	if generations < 1 {
		return nil, ErrInvalidGenerations
	}

	ctx, span := telemetry.StartSpan(ctx, "loop.run", attribute.Int("generations", generations))
	defer func() { telemetry.End(span, err) }()

	session := domain.Session{
		Timestamp:        s.now().UTC(),
		TotalGenerations: generations,
		Loops:            []domain.Loop{},
	}

	slog.InfoContext(ctx, "Running generation loop", "generations", generations, "style", style)

	workingPrompt := prompt
	var runErr error
	for i := 1; i <= generations; i++ {
		if runErr = ctx.Err(); runErr != nil {
			break
		}

		var loop domain.Loop
		loop, runErr = s.generation(ctx, i, workingPrompt, style)
		if runErr != nil {
			runErr = fmt.Errorf("generation %d: %w", i, runErr)
			break
		}

		session.Loops = append(session.Loops, loop)
		workingPrompt = loop.NewPrompt
	}

	res, saveErr := s.save(ctx, session)
	return res, errors.Join(runErr, saveErr)
}

func (s *loopService) generation(ctx context.Context, n int, prompt string, style domain.ImageStyle) (domain.Loop, error) {
	ctx, span := telemetry.StartSpan(ctx, "loop.generation", attribute.Int("generation", n))
	var err error
	defer func() { telemetry.End(span, err) }()

	slog.InfoContext(ctx, "Generation started", "generation", n, "prompt", prompt)

	image, err := s.painter.GenerateImage(ctx, prompt, style)
	if err != nil {
		return domain.Loop{}, err
	}

	slog.InfoContext(ctx, "Generating artist statement", "generation", n)
	statement, err := s.analyzer.ArtistStatement(ctx, image.DataURL())
	if err != nil {
		return domain.Loop{}, fmt.Errorf("artist statement: %w", err)
	}

	slog.InfoContext(ctx, "Generating critic opinion", "generation", n)
	opinion, err := s.analyzer.CritiqueImage(ctx, image.DataURL())
	if err != nil {
		return domain.Loop{}, fmt.Errorf("critique: %w", err)
	}

	slog.InfoContext(ctx, "Generating new prompt", "generation", n)
	newPrompt, err := s.analyzer.NewPromptCreationVoice(ctx, statement, opinion)
	if err != nil {
		return domain.Loop{}, fmt.Errorf("new prompt: %w", err)
	}

	return domain.Loop{
		Generation:      n,
		Prompt:          prompt,
		PromptID:        image.PromptID,
		ImageFilename:   image.Filename,
		ArtistStatement: statement,
		CriticOpinion:   opinion,
		NewPrompt:       newPrompt,
	}, nil
}

func (s *loopService) save(ctx context.Context, session domain.Session) (*LoopResult, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}

	path, err := s.sessions.SaveSessionAt(data, session.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	res := &LoopResult{Session: session, SessionPath: filepath.ToSlash(path)}

	reportPath, err := s.sessions.WriteAttachment(session.Timestamp, ".html", report.HTML(session, s.imageBase()))
	if err != nil {
		// the JSON record is the source of truth; a missing report is only logged
		slog.WarnContext(ctx, "Writing session report", logger.Err(err))
		return res, nil
	}
	res.ReportPath = filepath.ToSlash(reportPath)

	slog.InfoContext(ctx, "Generation loop saved", "session", res.SessionPath, "report", res.ReportPath, "completed", len(session.Loops))
	return res, nil
}

// imageBase is the paintings directory as seen from the sessions directory.
func (s *loopService) imageBase() string {
	rel, err := filepath.Rel(s.sessions.Dir(), s.imagesDir)
	if err != nil {
		if abs, absErr := filepath.Abs(s.imagesDir); absErr == nil {
			return filepath.ToSlash(abs)
		}
		return filepath.ToSlash(s.imagesDir)
	}
	return filepath.ToSlash(rel)
}
