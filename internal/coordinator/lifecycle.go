package coordinator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/avierno/envauth/internal/autherr"
	"github.com/avierno/envauth/internal/environment"
)

// StoreSecret persists secret material for the environment under its derived
// reference. Fails with a configuration error when the environment's method
// stores no secret.
func (c *Coordinator) StoreSecret(ctx context.Context, env *environment.Environment, secret string) error {
	ref, ok := environment.SecretRef(env)
	if !ok {
		return autherr.NewConfigurationError(env.ID, "method "+string(env.Method)+" stores no secret")
	}
	return c.secrets.Set(ctx, ref, secret)
}

// ReplaceEnvironment records a reconfiguration of an environment: the cached
// token is invalidated and secrets orphaned by the change are deleted.
// Deletion failures surface; a secret that is already gone does not.
func (c *Coordinator) ReplaceEnvironment(ctx context.Context, prev, next *environment.Environment) error {
	if prev != nil {
		c.cache.Invalidate(prev.ID)
	}

	var errs []error
	for _, ref := range environment.DetectOrphanedSecrets(prev, next) {
		if err := c.deleteSecret(ctx, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RemoveEnvironment records the deletion of an environment: the cached token
// is invalidated and its secret, if any, is deleted.
func (c *Coordinator) RemoveEnvironment(ctx context.Context, env *environment.Environment) error {
	c.cache.Invalidate(env.ID)

	ref, ok := environment.SecretRef(env)
	if !ok {
		return nil
	}
	return c.deleteSecret(ctx, ref)
}

func (c *Coordinator) deleteSecret(ctx context.Context, ref environment.SecretReference) error {
	err := c.secrets.Delete(ctx, ref)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "deleted orphaned secret", "key", string(ref))
		return nil
	case errors.Is(err, autherr.ErrSecretNotFound):
		// Already gone; nothing was orphaned after all.
		return nil
	default:
		return err
	}
}
