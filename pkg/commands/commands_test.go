package commands

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/artloop/pkg/domain"
	"github.com/dskvich/artloop/pkg/services"
	"github.com/dskvich/artloop/pkg/storage"
)

type fakeAnalyzer struct {
	calls []string
	err   error
}

func (f *fakeAnalyzer) record(s string) (string, error) {
	f.calls = append(f.calls, s)
	return s, f.err
}

func (f *fakeAnalyzer) DescribeImage(_ context.Context, u string) (string, error) {
	return f.record("describe:" + u)
}

func (f *fakeAnalyzer) CritiqueImage(_ context.Context, u string) (string, error) {
	return f.record("critique:" + u)
}

func (f *fakeAnalyzer) ArtistStatement(_ context.Context, u string) (string, error) {
	return f.record("artist:" + u)
}

func (f *fakeAnalyzer) NewPromptCreationVoice(_ context.Context, a, c string) (string, error) {
	return f.record("new:" + a + "|" + c)
}

type fakeLoop struct {
	calls       int
	prompt      string
	generations int
	style       domain.ImageStyle
	err         error
}

func (f *fakeLoop) Run(_ context.Context, prompt string, generations int, style domain.ImageStyle) (*services.LoopResult, error) {
	f.calls++
	f.prompt, f.generations, f.style = prompt, generations, style
	return &services.LoopResult{SessionPath: "sessions/session-x.json"}, f.err
}

func newTestRegistry(t *testing.T) (*Registry, *fakeAnalyzer, *fakeLoop, string) {
	t.Helper()
	root := t.TempDir()
	analyzer := &fakeAnalyzer{}
	loop := &fakeLoop{}
	r := New(Deps{
		Images:   storage.NewImageStore(filepath.Join(root, "paintings")),
		Sessions: storage.NewSessionStore(filepath.Join(root, "sessions")),
		Analyzer: analyzer,
		Loop:     loop,
	})
	return r, analyzer, loop, root
}

func TestNames(t *testing.T) {
	r, _, _, _ := newTestRegistry(t)

	assert.Equal(t, []string{
		"artist_statement",
		"critique_image",
		"describe_image",
		"greet",
		"new_prompt_creation_voice",
		"run_generation_loop",
		"save_image",
		"save_session_data",
	}, r.Names())

	withoutLoop := New(Deps{Analyzer: &fakeAnalyzer{}})
	assert.NotContains(t, withoutLoop.Names(), "run_generation_loop")
}

func TestGreet(t *testing.T) {
	r, _, _, _ := newTestRegistry(t)

	got, err := r.Invoke(context.Background(), "greet", json.RawMessage(`{"name":"Ada"}`))
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada! You've been greeted from Go!", got)
}

func TestAnalysisCommandsMapArguments(t *testing.T) {
	r, analyzer, _, _ := newTestRegistry(t)
	ctx := context.Background()

	for name, want := range map[string]string{
		"describe_image":   "describe:u1",
		"critique_image":   "critique:u1",
		"artist_statement": "artist:u1",
	} {
		got, err := r.Invoke(ctx, name, json.RawMessage(`{"imageUrl":"u1"}`))
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	got, err := r.Invoke(ctx, "new_prompt_creation_voice", json.RawMessage(`{"artistStatement":"a","criticOpinion":"c"}`))
	require.NoError(t, err)
	assert.Equal(t, "new:a|c", got)
	assert.Len(t, analyzer.calls, 4)
}

func TestSaveImageCommand(t *testing.T) {
	r, _, _, root := newTestRegistry(t)

	args, _ := json.Marshal(map[string]string{
		"data":     base64.StdEncoding.EncodeToString([]byte("hi")),
		"filename": "test.png",
	})
	got, err := r.Invoke(context.Background(), "save_image", args)
	require.NoError(t, err)
	assert.Contains(t, got, "paintings/test.png")

	data, err := os.ReadFile(filepath.Join(root, "paintings", "test.png"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	_, err = r.Invoke(context.Background(), "save_image", json.RawMessage(`{"data":"%%%","filename":"x.png"}`))
	assert.ErrorIs(t, err, storage.ErrDecode)
}

func TestSaveSessionDataCommand(t *testing.T) {
	r, _, _, root := newTestRegistry(t)

	got, err := r.Invoke(context.Background(), "save_session_data", json.RawMessage(`{"sessionData":"{\"loops\":[]}"}`))
	require.NoError(t, err)
	assert.Contains(t, got, "Session data saved to: ")

	entries, err := os.ReadDir(filepath.Join(root, "sessions"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = r.Invoke(context.Background(), "save_session_data", json.RawMessage(`{"sessionData":"{oops"}`))
	assert.ErrorIs(t, err, storage.ErrInvalidJSON)
}

func TestRunGenerationLoopCommand(t *testing.T) {
	r, _, loop, _ := newTestRegistry(t)

	got, err := r.Invoke(context.Background(), "run_generation_loop", json.RawMessage(`{"prompt":"seed","style":"natural"}`))
	require.NoError(t, err)
	assert.Contains(t, got, `"sessionPath":"sessions/session-x.json"`)

	assert.Equal(t, "seed", loop.prompt)
	assert.Equal(t, 1, loop.generations)
	assert.Equal(t, domain.ImageStyleNatural, loop.style)
}

func TestRunGenerationLoopRequiresPrompt(t *testing.T) {
	r, _, loop, _ := newTestRegistry(t)

	for _, args := range []string{`{}`, `{"prompt":"   ","generations":2}`} {
		_, err := r.Invoke(context.Background(), "run_generation_loop", json.RawMessage(args))
		assert.ErrorIs(t, err, ErrInvalidArguments, args)
	}
	assert.Zero(t, loop.calls)
}

func TestRunGenerationLoopReportsPartialSession(t *testing.T) {
	r, _, loop, _ := newTestRegistry(t)
	loop.err = errors.New("generation 2: API error: status 400: rejected")

	_, err := r.Invoke(context.Background(), "run_generation_loop", json.RawMessage(`{"prompt":"seed","generations":3}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, loop.err)
	assert.Contains(t, err.Error(), "partial session saved to sessions/session-x.json")
}

func TestInvokeErrors(t *testing.T) {
	r, analyzer, _, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Invoke(ctx, "paint_masterpiece", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = r.Invoke(ctx, "describe_image", json.RawMessage(`["not","an","object"]`))
	assert.ErrorIs(t, err, ErrInvalidArguments)

	analyzer.err = errors.New("API error: status 401: bad key")
	_, err = r.Invoke(ctx, "critique_image", json.RawMessage(`{"imageUrl":"u"}`))
	assert.EqualError(t, err, "API error: status 401: bad key")
}

func TestInvokeWithoutArguments(t *testing.T) {
	r, _, _, _ := newTestRegistry(t)

	got, err := r.Invoke(context.Background(), "greet", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello, ! You've been greeted from Go!", got)
}

func TestRegisterTwicePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("greet", greet)

	assert.Panics(t, func() { r.Register("greet", greet) })
}
