// Package secretstore provides persistent storage abstractions for
// long-lived credential material (client secrets, passwords).
//
// Secrets are keyed by a reference derived from the owning environment's
// authentication method and identity material, so reconfiguring an
// environment produces a new key and leaves the old one behind for orphan
// cleanup. Two durable backends are provided, plus an in-memory one:
//   - Keyring: OS-native credential storage (macOS Keychain, Windows
//     Credential Manager, Linux Secret Service)
//   - File: one file per secret with atomic writes and 0600 permissions
//   - Memory: mutex-guarded map for tests and ephemeral use
//
// Real store failures are reported as autherr.StorageError; a missing key is
// reported as autherr.ErrSecretNotFound so callers can treat "already gone"
// distinctly from "could not delete".
package secretstore
