// Package autherr provides the typed error taxonomy for token acquisition
// and credential storage.
//
// Failures are classified into categories the caller can branch on:
//   - Configuration errors (structurally invalid environment, fatal)
//   - Authentication errors (provider rejected credentials)
//   - Cancellation (user or caller cancelled, not an error for alerting)
//   - Timeout (interactive wait bound exceeded)
//   - Transient provider errors (network, provider outage)
//   - Storage errors (secret store read/write/delete failures)
package autherr

import (
	"errors"
	"fmt"
)

// Error categories. Typed errors below match these via errors.Is.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrAuthentication = errors.New("authentication error")
	ErrCancelled      = errors.New("cancelled")
	ErrTimeout        = errors.New("timed out")
	ErrTransient      = errors.New("transient provider error")
	ErrStorage        = errors.New("storage error")

	// ErrSecretNotFound is returned by secret store Delete and Get when no
	// secret exists under the requested key.
	ErrSecretNotFound = errors.New("secret not found")
)

// ConfigurationError represents a structurally invalid environment/method
// combination. It is fatal for the request and never retried.
type ConfigurationError struct {
	EnvironmentID string
	Message       string
}

func (e *ConfigurationError) Error() string {
	if e.EnvironmentID != "" {
		return fmt.Sprintf("configuration error for environment %q: %s", e.EnvironmentID, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return errors.Is(target, ErrConfiguration)
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(environmentID, message string) *ConfigurationError {
	return &ConfigurationError{EnvironmentID: environmentID, Message: message}
}

// IsConfiguration checks if an error is configuration-related.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// AuthenticationError represents a credential rejection by the identity
// provider (invalid or expired secret, bad password, revoked consent). The
// secret likely needs to be re-entered; retrying with the same material is
// pointless.
type AuthenticationError struct {
	EnvironmentID string
	Reason        string
	Err           error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for environment %q: %s", e.EnvironmentID, e.Reason)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

func (e *AuthenticationError) Is(target error) bool {
	return errors.Is(target, ErrAuthentication)
}

// NewAuthenticationError creates a new authentication error.
func NewAuthenticationError(environmentID, reason string, err error) *AuthenticationError {
	return &AuthenticationError{EnvironmentID: environmentID, Reason: reason, Err: err}
}

// IsAuthentication checks if an error is a credential rejection.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// CancellationError represents a user- or caller-driven cancellation of an
// in-flight acquisition. Not an error for logging or alerting purposes.
type CancellationError struct {
	EnvironmentID string
	Err           error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("acquisition cancelled for environment %q", e.EnvironmentID)
}

func (e *CancellationError) Unwrap() error {
	return e.Err
}

func (e *CancellationError) Is(target error) bool {
	return errors.Is(target, ErrCancelled)
}

// NewCancellationError creates a new cancellation error.
func NewCancellationError(environmentID string, err error) *CancellationError {
	return &CancellationError{EnvironmentID: environmentID, Err: err}
}

// IsCancellation checks if an error represents a cancellation.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// TimeoutError represents an interactive flow exceeding its wait bound for
// user action. Distinct from cancellation (nobody asked to stop) and from
// provider failure (the provider did nothing wrong).
type TimeoutError struct {
	EnvironmentID string
	Err           error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for user action for environment %q", e.EnvironmentID)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

func (e *TimeoutError) Is(target error) bool {
	return errors.Is(target, ErrTimeout)
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(environmentID string, err error) *TimeoutError {
	return &TimeoutError{EnvironmentID: environmentID, Err: err}
}

// IsTimeout checks if an error represents an interactive wait timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// TransientProviderError represents a network or provider-side failure that
// the caller may retry. This subsystem never retries automatically.
type TransientProviderError struct {
	EnvironmentID string
	Err           error
}

func (e *TransientProviderError) Error() string {
	return fmt.Sprintf("transient provider failure for environment %q: %v", e.EnvironmentID, e.Err)
}

func (e *TransientProviderError) Unwrap() error {
	return e.Err
}

func (e *TransientProviderError) Is(target error) bool {
	return errors.Is(target, ErrTransient)
}

// NewTransientProviderError creates a new transient provider error.
func NewTransientProviderError(environmentID string, err error) *TransientProviderError {
	return &TransientProviderError{EnvironmentID: environmentID, Err: err}
}

// IsTransient checks if an error is a retriable provider failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// StorageError represents a secret store read, write or delete failure.
// Never swallowed; always surfaced to the caller.
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("secret store %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return errors.Is(target, ErrStorage)
}

// NewStorageError creates a new storage error.
func NewStorageError(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

// IsStorage checks if an error is a secret store failure.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
