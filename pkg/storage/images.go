package storage

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const DefaultPaintingsDir = "paintings"

type ImageStore struct {
	dir string
}

func NewImageStore(dir string) *ImageStore {
	if dir == "" {
		dir = DefaultPaintingsDir
	}
	return &ImageStore{dir: dir}
}

func (s *ImageStore) Dir() string { return s.dir }

// SaveImage decodes standard padded base64 and writes it to <dir>/<filename>,
// replacing any file of the same name.
func (s *ImageStore) SaveImage(data, filename string) (string, error) {
	if err := validateFilename(filename); err != nil {
		return "", err
	}

	imageData, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, imageData, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}

	slog.Info("Image saved", "path", path, "size", len(imageData))

	return fmt.Sprintf("Image saved to: %s", filepath.ToSlash(path)), nil
}

// validateFilename keeps writes inside the store directory.
func validateFilename(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	case filepath.IsAbs(name), strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q must not contain a path", ErrInvalidFilename, name)
	}
	return nil
}
