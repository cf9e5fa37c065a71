package credentials

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

const (
	PrimaryEnv   = "OPENAI_API_KEY"
	AlternateEnv = "VITE_OPENAI_API_KEY"

	DefaultFallbackFile = "../.env"
)

var ErrNotFound = errors.New("OpenAI API key not found. Please set OPENAI_API_KEY in your .env file or environment variables.")

// Resolver looks the API key up on every call. Nothing is cached, so a key
// changed in the environment is picked up by the next request.
type Resolver struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)

	// FallbackFile is a dotenv-style file scanned for an OPENAI_API_KEY= line.
	FallbackFile string
}

func NewResolver(fallbackFile string) *Resolver {
	return &Resolver{
		LookupEnv:    os.LookupEnv,
		FallbackFile: fallbackFile,
	}
}

// Resolve returns the first key found in PrimaryEnv, AlternateEnv, then the
// fallback file. The value is not checked for shape; an empty value set in the
// environment or the file is still a match.
func (r *Resolver) Resolve() (string, error) {
	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	for _, name := range []string{PrimaryEnv, AlternateEnv} {
		if v, ok := lookup(name); ok {
			return v, nil
		}
	}

	if v, ok := scanFile(r.FallbackFile, PrimaryEnv+"="); ok {
		return v, nil
	}

	return "", ErrNotFound
}

func scanFile(path, prefix string) (string, bool) {
	if path == "" {
		return "", false
	}

	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix), true
		}
	}
	return "", false
}
