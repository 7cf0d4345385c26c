package session

import (
	"os"
	"path/filepath"

	"github.com/spec-kit/issuetrack/internal/config"
)

// Store persists the bearer token under a single fixed key in the state
// directory. The token is the only durable state the client keeps.
type Store struct {
	path string
}

// NewStore builds a Store rooted at the configured state directory.
func NewStore(cfg config.StateConfig) *Store {
	return &Store{path: filepath.Join(cfg.Dir, cfg.TokenKey)}
}

// Save writes the token, creating the state directory if needed.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Load returns the stored token, or ok=false when none is stored.
func (s *Store) Load() (token string, ok bool, err error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
