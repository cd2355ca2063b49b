package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	sessionFileName = "session.json"
	fileVersion     = 1
)

// sessionFile is the on-disk representation of the persisted token.
type sessionFile struct {
	Version   int       `json:"version"`
	Token     string    `json:"token,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileStore persists the token in a JSON file on the local filesystem.
type FileStore struct {
	baseDir string
	mu      sync.Mutex
}

// DefaultDir returns ~/.skillsync.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".skillsync"), nil
}

// NewFileStore creates a token store rooted at baseDir.
// If baseDir is empty, uses ~/.skillsync/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}

	// Create directory with 0700 permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Msg("token store initialized")

	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the location of the session file.
func (s *FileStore) Path() string {
	return filepath.Join(s.baseDir, sessionFileName)
}

// Load reads the persisted token.
func (s *FileStore) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.readFile()
	if err != nil {
		return "", err
	}
	if f.Token == "" {
		return "", ErrTokenNotFound
	}
	return f.Token, nil
}

// Save writes the token, replacing any previous one.
func (s *FileStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeFile(&sessionFile{
		Version:   fileVersion,
		Token:     token,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	log.Debug().Str("fingerprint", Fingerprint(token)).Msg("token saved")

	return nil
}

// Remove deletes the session file.
func (s *FileStore) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	log.Debug().Msg("token removed")

	return nil
}

// readFile reads the session file.
func (s *FileStore) readFile() (*sessionFile, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	return &f, nil
}

// writeFile writes the session file atomically.
func (s *FileStore) writeFile(f *sessionFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session file: %w", err)
	}

	// Write to temp file first
	path := s.Path()
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session file: %w", err)
	}

	return nil
}
