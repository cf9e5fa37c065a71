package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultSessionsDir = "sessions"

	// SessionTimeLayout is %Y-%m-%d_%H-%M-%S in UTC.
	SessionTimeLayout = "2006-01-02_15-04-05"
)

type SessionStore struct {
	dir string
	now func() time.Time
}

func NewSessionStore(dir string) *SessionStore {
	if dir == "" {
		dir = DefaultSessionsDir
	}
	return &SessionStore{dir: dir, now: time.Now}
}

func (s *SessionStore) Dir() string { return s.dir }

// SessionPath returns the file a session saved at t is written to, with the
// given extension (".json", ".html").
func (s *SessionStore) SessionPath(t time.Time, ext string) string {
	return filepath.Join(s.dir, "session-"+t.UTC().Format(SessionTimeLayout)+ext)
}

// SaveSession validates data as JSON and writes it indented to a timestamped
// file. Saves within the same second overwrite each other.
func (s *SessionStore) SaveSession(data string) (string, error) {
	path, err := s.save([]byte(data), s.now())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Session data saved to: %s", filepath.ToSlash(path)), nil
}

// SaveSessionAt is SaveSession with an explicit timestamp; it returns the path written.
func (s *SessionStore) SaveSessionAt(data []byte, t time.Time) (string, error) {
	return s.save(data, t)
}

func (s *SessionStore) save(data []byte, t time.Time) (string, error) {
	if !json.Valid(data) {
		var v any
		return "", fmt.Errorf("%w: %v", ErrInvalidJSON, json.Unmarshal(data, &v))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, bytes.TrimSpace(data), "", "  "); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", s.dir, err)
	}

	path := s.SessionPath(t, ".json")
	if err := os.WriteFile(path, pretty.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing session data %s: %w", path, err)
	}

	slog.Info("Session saved", "path", path, "size", pretty.Len())

	return path, nil
}

// WriteAttachment writes a file next to the session it belongs to.
func (s *SessionStore) WriteAttachment(t time.Time, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", s.dir, err)
	}
	path := s.SessionPath(t, ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
