package acquire

import (
	"context"
	"log/slog"

	"github.com/avierno/envauth/internal/environment"
	"github.com/avierno/envauth/internal/identity"
	"github.com/avierno/envauth/internal/tokencache"
)

// SilentGate attempts refresh-token based renewal before any flow-specific
// strategy runs. Its own failures are reported as values, never raised, so
// the coordinator's fallback to a strategy is a visible branch.
type SilentGate struct {
	provider identity.Provider
	cache    *tokencache.Cache
}

// NewSilentGate creates a SilentGate consulting the given cache for stored
// refresh context.
func NewSilentGate(provider identity.Provider, cache *tokencache.Cache) *SilentGate {
	return &SilentGate{
		provider: provider,
		cache:    cache,
	}
}

// TrySilent attempts a silent renewal for the environment. The second return
// value is false when no refresh context exists and nothing was attempted.
// When attempted, the Result carries either the renewed token or the typed
// failure; expired refresh context, revoked consent and provider errors all
// come back as failed Results for the coordinator to fall through on.
func (g *SilentGate) TrySilent(ctx context.Context, env *environment.Environment) (Result, bool) {
	entry, ok := g.cache.Get(env.ID)
	if !ok || entry.RefreshToken == "" {
		return Result{}, false
	}

	grant, err := g.provider.Refresh(ctx, env, entry.RefreshToken)
	if err != nil {
		slog.DebugContext(ctx, "silent acquisition failed", "environment", env.ID, "error", err)
		return Failure(err), true
	}

	result := Success(grant)
	if result.RefreshToken == "" {
		// Providers may omit the refresh token on renewal; keep the old one.
		result.RefreshToken = entry.RefreshToken
	}
	return result, true
}
