// Package coordinator orchestrates token acquisition per environment:
// cache lookup, silent renewal, flow-specific strategy fallback, cache
// write-back, and credential cleanup on reconfiguration.
//
// At most one acquisition is in flight per environment. Concurrent callers
// for the same environment share that flight's result instead of triggering
// a duplicate prompt; callers for distinct environments proceed in parallel.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/avierno/envauth/internal/acquire"
	"github.com/avierno/envauth/internal/autherr"
	"github.com/avierno/envauth/internal/environment"
	"github.com/avierno/envauth/internal/secretstore"
	"github.com/avierno/envauth/internal/tokencache"
)

// DefaultSafetyMargin is subtracted from token expiry when judging cache
// validity, so callers never receive a token about to lapse mid-use.
const DefaultSafetyMargin = 2 * time.Minute

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSafetyMargin overrides the expiry safety margin.
func WithSafetyMargin(margin time.Duration) Option {
	return func(c *Coordinator) {
		c.margin = margin
	}
}

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// Coordinator drives the token lifecycle for all environments.
type Coordinator struct {
	selector *acquire.Selector
	gate     *acquire.SilentGate
	cache    *tokencache.Cache
	secrets  secretstore.Store

	margin time.Duration
	now    func() time.Time

	// flights shares one in-flight acquisition per environment id. A flight
	// key is forgotten when its call completes, so a cancelled or failed
	// flight leaves no state and the next request starts fresh.
	flights singleflight.Group
}

// New creates a Coordinator.
func New(selector *acquire.Selector, gate *acquire.SilentGate, cache *tokencache.Cache, secrets secretstore.Store, opts ...Option) (*Coordinator, error) {
	if selector == nil {
		return nil, fmt.Errorf("missing strategy selector")
	}
	if gate == nil {
		return nil, fmt.Errorf("missing silent acquisition gate")
	}
	if cache == nil {
		return nil, fmt.Errorf("missing token cache")
	}
	if secrets == nil {
		return nil, fmt.Errorf("missing secret store")
	}

	c := &Coordinator{
		selector: selector,
		gate:     gate,
		cache:    cache,
		secrets:  secrets,
		margin:   DefaultSafetyMargin,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns a valid access token for the environment, acquiring one if
// the cache holds none. Concurrent calls for the same environment await the
// in-flight acquisition; each caller's own context cancellation releases only
// that caller.
func (c *Coordinator) Token(ctx context.Context, env *environment.Environment) (string, error) {
	if entry, ok := c.cache.Get(env.ID); ok && entry.Valid(c.now(), c.margin) {
		return entry.AccessToken, nil
	}

	ch := c.flights.DoChan(env.ID, func() (any, error) {
		return c.acquireLocked(ctx, env)
	})

	select {
	case <-ctx.Done():
		return "", autherr.NewCancellationError(env.ID, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", c.normalize(env.ID, res.Err)
		}
		return res.Val.(string), nil
	}
}

// acquireLocked runs inside the per-environment flight: silent attempt first,
// then at most one strategy invocation. No retry loop; failures surface to
// every waiter.
func (c *Coordinator) acquireLocked(ctx context.Context, env *environment.Environment) (string, error) {
	// A flight that queued behind a finished one may find fresh state.
	if entry, ok := c.cache.Get(env.ID); ok && entry.Valid(c.now(), c.margin) {
		return entry.AccessToken, nil
	}

	acquisitionID := uuid.NewString()
	logger := slog.With("environment", env.ID, "acquisition", acquisitionID)

	if result, attempted := c.gate.TrySilent(ctx, env); attempted {
		if result.OK() {
			c.storeResult(env.ID, result)
			logger.DebugContext(ctx, "token renewed silently")
			return result.AccessToken, nil
		}
		if autherr.IsCancellation(result.Err) {
			return "", result.Err
		}
		// Fall through to the flow-specific strategy. The silent failure is
		// the one place this subsystem swallows an error.
		logger.DebugContext(ctx, "silent renewal failed, falling back", "error", result.Err)
	}

	strategy, err := c.selector.Select(env)
	if err != nil {
		return "", err
	}

	result := strategy.Acquire(ctx, env)
	if !result.OK() {
		logger.WarnContext(ctx, "token acquisition failed", "error", result.Err)
		return "", result.Err
	}

	c.storeResult(env.ID, result)
	logger.InfoContext(ctx, "token acquired", "method", string(env.Method), "expiry", result.Expiry)
	return result.AccessToken, nil
}

func (c *Coordinator) storeResult(environmentID string, result acquire.Result) {
	c.cache.Set(environmentID, tokencache.Entry{
		AccessToken:  result.AccessToken,
		Expiry:       result.Expiry,
		RefreshToken: result.RefreshToken,
		Account:      result.Account,
	})
}

// normalize wraps stray context errors that escaped lower layers untyped.
func (c *Coordinator) normalize(environmentID string, err error) error {
	switch {
	case autherr.IsCancellation(err) || autherr.IsTimeout(err):
		return err
	case errors.Is(err, context.Canceled):
		return autherr.NewCancellationError(environmentID, err)
	case errors.Is(err, context.DeadlineExceeded):
		return autherr.NewTimeoutError(environmentID, err)
	default:
		return err
	}
}
