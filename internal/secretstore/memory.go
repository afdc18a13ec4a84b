package secretstore

import (
	"context"
	"sync"

	"github.com/avierno/envauth/internal/autherr"
	"github.com/avierno/envauth/internal/environment"
)

// MemoryStore keeps secrets in process memory. Suitable for tests and
// ephemeral sessions where persistence across restarts is not wanted.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[environment.SecretReference]string
}

// Compile-time check to ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		secrets: make(map[environment.SecretReference]string),
	}
}

// Get returns the stored secret for the key.
func (m *MemoryStore) Get(ctx context.Context, key environment.SecretReference) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	secret, ok := m.secrets[key]
	if !ok || secret == "" {
		return "", autherr.ErrSecretNotFound
	}
	return secret, nil
}

// Set stores the secret under the key, overwriting any existing value.
func (m *MemoryStore) Set(ctx context.Context, key environment.SecretReference, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.secrets[key] = secret
	return nil
}

// Delete removes the secret stored under the key.
func (m *MemoryStore) Delete(ctx context.Context, key environment.SecretReference) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.secrets[key]; !ok {
		return autherr.ErrSecretNotFound
	}
	delete(m.secrets, key)
	return nil
}
