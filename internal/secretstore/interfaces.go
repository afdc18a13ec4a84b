package secretstore

import (
	"context"

	"github.com/avierno/envauth/internal/environment"
)

// Store reads, writes and deletes secrets in persistent storage.
//
// All methods honor context cancellation. Get and Delete return
// autherr.ErrSecretNotFound when no secret exists under the key; every other
// failure is an autherr.StorageError.
type Store interface {
	// Get returns the stored secret for the key.
	Get(ctx context.Context, key environment.SecretReference) (string, error)

	// Set persists the secret under the key, overwriting any existing value.
	Set(ctx context.Context, key environment.SecretReference, secret string) error

	// Delete removes the secret stored under the key.
	Delete(ctx context.Context, key environment.SecretReference) error
}
