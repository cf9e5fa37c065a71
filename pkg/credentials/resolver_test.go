package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolvePrefersPrimary(t *testing.T) {
	r := &Resolver{
		LookupEnv:    envMap(map[string]string{PrimaryEnv: "sk-primary", AlternateEnv: "sk-alt"}),
		FallbackFile: writeEnvFile(t, "OPENAI_API_KEY=sk-file\n"),
	}

	key, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "sk-primary", key)
}

func TestResolveAlternateOnly(t *testing.T) {
	r := &Resolver{LookupEnv: envMap(map[string]string{AlternateEnv: "sk-alt"})}

	key, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "sk-alt", key)
}

func TestResolveFallbackFile(t *testing.T) {
	r := &Resolver{
		LookupEnv:    envMap(nil),
		FallbackFile: writeEnvFile(t, "# keys\nVITE_STABILITY_API_KEY=x\r\nOPENAI_API_KEY=sk-file\r\nOPENAI_API_KEY=sk-second\n"),
	}

	key, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "sk-file", key)
}

func TestResolveAcceptsEmptyFileValue(t *testing.T) {
	r := &Resolver{
		LookupEnv:    envMap(nil),
		FallbackFile: writeEnvFile(t, "OPENAI_API_KEY=\n"),
	}

	key, err := r.Resolve()
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestResolveNotFound(t *testing.T) {
	tests := map[string]string{
		"missing file":     filepath.Join(t.TempDir(), "nope.env"),
		"no matching line": writeEnvFile(t, "OTHER=1\n OPENAI_API_KEY=indented\n"),
		"no file":          "",
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			r := &Resolver{LookupEnv: envMap(nil), FallbackFile: path}

			_, err := r.Resolve()
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestResolveReadsEnvironmentEachCall(t *testing.T) {
	t.Setenv(PrimaryEnv, "sk-one")
	r := NewResolver("")

	key, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "sk-one", key)

	t.Setenv(PrimaryEnv, "sk-two")
	key, err = r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "sk-two", key)
}
