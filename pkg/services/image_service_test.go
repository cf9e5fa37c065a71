package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/artloop/pkg/domain"
	"github.com/dskvich/artloop/pkg/repository"
)

type fakeGenerator struct {
	prompts []string
	b64     string
	err     error
}

func (f *fakeGenerator) GenerateImage(_ context.Context, prompt string, _ domain.ImageStyle) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.b64, f.err
}

type fakeSaver struct {
	saved map[string]string
	err   error
}

func (f *fakeSaver) SaveImage(data, filename string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[filename] = data
	return "Image saved to: paintings/" + filename, nil
}

func (f *fakeSaver) Dir() string { return "paintings" }

func TestPaintingFilename(t *testing.T) {
	at := time.Date(2025, 6, 7, 8, 9, 10, 123456789, time.FixedZone("X", 3600))

	assert.Equal(t, "painting-2025-06-07T07-09-10-123Z.png", PaintingFilename(at))
}

func TestImageServiceGenerateImage(t *testing.T) {
	gen := &fakeGenerator{b64: "aGk="}
	saver := &fakeSaver{}
	repo := repository.NewMemoryPromptsRepository()
	svc := NewImageService(gen, saver, repo)
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	img, err := svc.GenerateImage(context.Background(), "a prompt", domain.ImageStyleNatural)
	require.NoError(t, err)

	assert.Equal(t, int64(1), img.PromptID)
	assert.Equal(t, "painting-2025-01-01T00-00-00-000Z.png", img.Filename)
	assert.Equal(t, "data:image/png;base64,aGk=", img.DataURL())
	assert.Equal(t, "aGk=", saver.saved[img.Filename])
}

func TestImageServiceRegenerateImage(t *testing.T) {
	gen := &fakeGenerator{b64: "aGk="}
	repo := repository.NewMemoryPromptsRepository()
	id, err := repo.Save(context.Background(), "first prompt")
	require.NoError(t, err)

	svc := NewImageService(gen, &fakeSaver{}, repo)
	_, err = svc.RegenerateImage(context.Background(), id, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"first prompt"}, gen.prompts)

	_, err = svc.RegenerateImage(context.Background(), 99, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImageServiceErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewImageService(&fakeGenerator{err: boom}, &fakeSaver{}, repository.NewMemoryPromptsRepository()).
		GenerateImage(context.Background(), "p", "")
	assert.ErrorIs(t, err, boom)

	_, err = NewImageService(&fakeGenerator{b64: "x"}, &fakeSaver{err: boom}, repository.NewMemoryPromptsRepository()).
		GenerateImage(context.Background(), "p", "")
	assert.ErrorIs(t, err, boom)
}
