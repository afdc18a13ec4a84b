package acquire

import (
	"context"
	"errors"
	"time"

	"github.com/avierno/envauth/internal/autherr"
	"github.com/avierno/envauth/internal/environment"
	"github.com/avierno/envauth/internal/identity"
	"github.com/avierno/envauth/internal/secretstore"
)

// Strategy is one concrete algorithm for obtaining a token for one
// authentication method. Implementations honor context cancellation: a
// cancelled context fails the acquisition fast rather than completing the
// exchange.
type Strategy interface {
	Acquire(ctx context.Context, env *environment.Environment) Result
}

// interactiveStrategy runs the browser-driven authorization-code flow under
// an upper bound on waiting for user action.
type interactiveStrategy struct {
	provider identity.Provider
	timeout  time.Duration
}

var _ Strategy = (*interactiveStrategy)(nil)

func (s *interactiveStrategy) Acquire(ctx context.Context, env *environment.Environment) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	grant, err := s.provider.Interactive(ctx, env)
	if err != nil {
		return Failure(err)
	}
	return Success(grant)
}

// deviceCodeStrategy runs the device-code exchange under the same user-action
// bound as the interactive flow. The prompt mechanism belongs to the provider.
type deviceCodeStrategy struct {
	provider identity.Provider
	timeout  time.Duration
}

var _ Strategy = (*deviceCodeStrategy)(nil)

func (s *deviceCodeStrategy) Acquire(ctx context.Context, env *environment.Environment) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	grant, err := s.provider.DeviceCode(ctx, env)
	if err != nil {
		return Failure(err)
	}
	return Success(grant)
}

// servicePrincipalStrategy presents the stored client secret in a
// client-credentials exchange.
type servicePrincipalStrategy struct {
	provider identity.Provider
	secrets  secretstore.Store
}

var _ Strategy = (*servicePrincipalStrategy)(nil)

func (s *servicePrincipalStrategy) Acquire(ctx context.Context, env *environment.Environment) Result {
	ref, ok := environment.SecretRef(env)
	if !ok {
		return Failure(autherr.NewConfigurationError(env.ID, "service principal environment derives no secret reference"))
	}

	secret, err := s.secrets.Get(ctx, ref)
	if err != nil {
		return Failure(secretReadError(ctx, env.ID, "client secret", err))
	}

	grant, err := s.provider.ClientCredentials(ctx, env, secret)
	if err != nil {
		return Failure(err)
	}
	return Success(grant)
}

// usernamePasswordStrategy presents the stored password in a resource-owner
// password exchange.
type usernamePasswordStrategy struct {
	provider identity.Provider
	secrets  secretstore.Store
}

var _ Strategy = (*usernamePasswordStrategy)(nil)

func (s *usernamePasswordStrategy) Acquire(ctx context.Context, env *environment.Environment) Result {
	ref, ok := environment.SecretRef(env)
	if !ok {
		return Failure(autherr.NewConfigurationError(env.ID, "username-password environment derives no secret reference"))
	}

	password, err := s.secrets.Get(ctx, ref)
	if err != nil {
		return Failure(secretReadError(ctx, env.ID, "password", err))
	}

	grant, err := s.provider.Password(ctx, env, env.Username, password)
	if err != nil {
		return Failure(err)
	}
	return Success(grant)
}

// secretReadError maps a secret store read failure. A missing secret is a
// credential problem (the user must enter it), cancellation stays
// cancellation, and genuine store failures pass through as StorageError.
func secretReadError(ctx context.Context, environmentID, kind string, err error) error {
	switch {
	case errors.Is(err, autherr.ErrSecretNotFound):
		return autherr.NewAuthenticationError(environmentID, "no stored "+kind, err)
	case ctx.Err() != nil:
		return autherr.NewCancellationError(environmentID, err)
	default:
		return err
	}
}
