package secretstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/avierno/envauth/internal/autherr"
	"github.com/avierno/envauth/internal/environment"
)

// KeyringStore provides OS-native secure credential storage for secrets.
// Uses macOS Keychain, Windows Credential Manager, or Linux Secret Service.
// Each secret reference becomes one keyring entry under the given service.
type KeyringStore struct {
	service string
}

// Compile-time check to ensure KeyringStore implements Store
var _ Store = (*KeyringStore)(nil)

// NewKeyringStore creates a KeyringStore for the OS-native credential storage
// using the given service identifier to namespace entries.
func NewKeyringStore(service string) (*KeyringStore, error) {
	if service == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}

	return &KeyringStore{service: service}, nil
}

// Get returns the secret from the system keyring.
func (k *KeyringStore) Get(ctx context.Context, key environment.SecretReference) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	secret, err := keyring.Get(k.service, string(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", autherr.ErrSecretNotFound
		}
		return "", autherr.NewStorageError("get", string(key), err)
	}

	if secret == "" {
		return "", autherr.ErrSecretNotFound
	}

	return secret, nil
}

// Set persists the secret to the system keyring, overwriting any existing value.
func (k *KeyringStore) Set(ctx context.Context, key environment.SecretReference, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := keyring.Set(k.service, string(key), secret); err != nil {
		return autherr.NewStorageError("set", string(key), err)
	}
	return nil
}

// Delete removes the secret from the system keyring.
func (k *KeyringStore) Delete(ctx context.Context, key environment.SecretReference) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := keyring.Delete(k.service, string(key)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return autherr.ErrSecretNotFound
		}
		return autherr.NewStorageError("delete", string(key), err)
	}
	return nil
}
