package credentials

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"

	"github.com/mr-tron/base58"
)

// Sentinel errors
var (
	// ErrTokenNotFound is returned when no token is persisted.
	ErrTokenNotFound = errors.New("token not found")

	// ErrEmptyToken is returned when saving an empty token.
	ErrEmptyToken = errors.New("token is empty")
)

// Storage persists the bearer token across process restarts.
// Absence of a token means logged out.
type Storage interface {
	// Load returns the persisted token or ErrTokenNotFound.
	Load(ctx context.Context) (string, error)
	// Save replaces the persisted token.
	Save(ctx context.Context, token string) error
	// Remove deletes the persisted token. Removing an absent token is not an error.
	Remove(ctx context.Context) error
}

// Fingerprint returns a short, non-reversible identifier for a token
// (Base58-encoded SHA256) that is safe to log.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(token))
	return base58.Encode(hash[:8])
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrTokenNotFound
	}
	return m.token, nil
}

func (m *MemoryStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
