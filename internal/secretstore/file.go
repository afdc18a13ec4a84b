package secretstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avierno/envauth/internal/autherr"
	"github.com/avierno/envauth/internal/environment"
)

// FileStore provides file-based secret storage with secure permissions.
// One file per secret reference under a 0700 root directory; writes use
// temp file + rename for crash safety.
type FileStore struct {
	root string
}

// Compile-time check to ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at the given directory, creating it
// with 0700 permissions if it doesn't exist.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("root directory cannot be empty")
	}

	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, err
	}

	return &FileStore{root: root}, nil
}

// path maps a secret reference to a file path. References contain "/" as a
// method/identity separator, which must not become a directory boundary.
func (f *FileStore) path(key environment.SecretReference) string {
	name := strings.ReplaceAll(string(key), string(os.PathSeparator), "__")
	name = strings.ReplaceAll(name, "/", "__")
	return filepath.Join(f.root, name)
}

// Get returns the stored secret after trimming whitespace. Fails if the file
// has insecure permissions.
func (f *FileStore) Get(ctx context.Context, key environment.SecretReference) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := f.path(key)

	// Check file permissions before reading
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", autherr.ErrSecretNotFound
		}
		return "", autherr.NewStorageError("get", string(key), err)
	}
	if info.Mode().Perm() != 0600 {
		return "", autherr.NewStorageError("get", string(key),
			fmt.Errorf("insecure permissions on %s: %04o (expected 0600)", path, info.Mode().Perm()))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", autherr.NewStorageError("get", string(key), err)
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", autherr.ErrSecretNotFound
	}
	return secret, nil
}

// Set atomically saves the secret using temp file + rename for crash safety.
// Sets file permissions to 0600 (owner read/write only).
func (f *FileStore) Set(ctx context.Context, key environment.SecretReference, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := f.path(key)

	// Create secure temp file in same directory for atomic rename
	tempFile, err := os.CreateTemp(f.root, "*.tmp")
	if err != nil {
		return autherr.NewStorageError("set", string(key), err)
	}
	tempName := tempFile.Name()
	// Cleanup deferred for all exit paths
	defer func() { _ = os.Remove(tempName) }()
	defer func() { _ = tempFile.Close() }()

	if _, err := tempFile.Write([]byte(strings.TrimSpace(secret) + "\n")); err != nil {
		return autherr.NewStorageError("set", string(key), err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tempFile.Close(); err != nil {
		return autherr.NewStorageError("set", string(key), err)
	}

	if err := os.Chmod(tempName, 0600); err != nil {
		return autherr.NewStorageError("set", string(key), err)
	}

	// Atomic rename to final location
	if err := os.Rename(tempName, path); err != nil {
		return autherr.NewStorageError("set", string(key), err)
	}

	return nil
}

// Delete removes the secret file.
func (f *FileStore) Delete(ctx context.Context, key environment.SecretReference) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(f.path(key)); err != nil {
		if os.IsNotExist(err) {
			return autherr.ErrSecretNotFound
		}
		return autherr.NewStorageError("delete", string(key), err)
	}
	return nil
}
