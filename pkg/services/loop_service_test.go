package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/artloop/pkg/domain"
	"github.com/dskvich/artloop/pkg/storage"
)

type fakePainter struct {
	prompts []string
	failAt  int
}

func (f *fakePainter) GenerateImage(_ context.Context, prompt string, _ domain.ImageStyle) (*GeneratedImage, error) {
	f.prompts = append(f.prompts, prompt)
	n := len(f.prompts)
	if n == f.failAt {
		return nil, errors.New("painter exploded")
	}
	return &GeneratedImage{PromptID: int64(n), Filename: fmt.Sprintf("painting-%d.png", n), Base64: "aGk="}, nil
}

type fakeAnalyzer struct {
	imageURLs []string
	n         int
}

func (f *fakeAnalyzer) ArtistStatement(_ context.Context, imageURL string) (string, error) {
	f.imageURLs = append(f.imageURLs, imageURL)
	return "statement", nil
}

func (f *fakeAnalyzer) CritiqueImage(_ context.Context, imageURL string) (string, error) {
	f.imageURLs = append(f.imageURLs, imageURL)
	return "opinion", nil
}

func (f *fakeAnalyzer) NewPromptCreationVoice(_ context.Context, statement, opinion string) (string, error) {
	f.n++
	return fmt.Sprintf("prompt %d from %s/%s", f.n, statement, opinion), nil
}

func newTestLoop(t *testing.T, painter Painter, analyzer Analyzer) (*loopService, string) {
	t.Helper()
	root := t.TempDir()
	sessionsDir := filepath.Join(root, "sessions")
	svc := NewLoopService(painter, analyzer, storage.NewSessionStore(sessionsDir), filepath.Join(root, "paintings"))
	svc.now = func() time.Time { return time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC) }
	return svc, sessionsDir
}

func TestLoopServiceRun(t *testing.T) {
	painter := &fakePainter{}
	analyzer := &fakeAnalyzer{}
	svc, sessionsDir := newTestLoop(t, painter, analyzer)

	res, err := svc.Run(context.Background(), "seed", 3, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"seed", "prompt 1 from statement/opinion", "prompt 2 from statement/opinion"}, painter.prompts)
	assert.Equal(t, "data:image/png;base64,aGk=", analyzer.imageURLs[0])

	require.Len(t, res.Session.Loops, 3)
	assert.Equal(t, 3, res.Session.TotalGenerations)
	assert.Equal(t, domain.Loop{
		Generation:      2,
		Prompt:          "prompt 1 from statement/opinion",
		PromptID:        2,
		ImageFilename:   "painting-2.png",
		ArtistStatement: "statement",
		CriticOpinion:   "opinion",
		NewPrompt:       "prompt 2 from statement/opinion",
	}, res.Session.Loops[1])

	jsonPath := filepath.Join(sessionsDir, "session-2025-02-03_04-05-06.json")
	assert.Equal(t, filepath.ToSlash(jsonPath), res.SessionPath)

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.EqualValues(t, 3, saved["totalGenerations"])
	assert.Len(t, saved["loops"], 3)

	page, err := os.ReadFile(filepath.Join(sessionsDir, "session-2025-02-03_04-05-06.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `src="../paintings/painting-1.png"`)
}

func TestLoopServiceSavesCompletedLoopsOnFailure(t *testing.T) {
	svc, _ := newTestLoop(t, &fakePainter{failAt: 2}, &fakeAnalyzer{})

	res, err := svc.Run(context.Background(), "seed", 4, domain.ImageStyleVivid)
	require.Error(t, err)
	assert.ErrorContains(t, err, "generation 2: painter exploded")

	require.NotNil(t, res)
	assert.Len(t, res.Session.Loops, 1)
	assert.FileExists(t, filepath.FromSlash(res.SessionPath))
}

func TestLoopServiceCancelled(t *testing.T) {
	painter := &fakePainter{}
	svc, _ := newTestLoop(t, painter, &fakeAnalyzer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Run(ctx, "seed", 2, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, painter.prompts)
	require.NotNil(t, res)
	assert.Empty(t, res.Session.Loops)
}

func TestLoopServiceRejectsZeroGenerations(t *testing.T) {
	svc, _ := newTestLoop(t, &fakePainter{}, &fakeAnalyzer{})

	_, err := svc.Run(context.Background(), "seed", 0, "")
	assert.ErrorIs(t, err, ErrInvalidGenerations)
}
