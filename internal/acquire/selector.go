package acquire

import (
	"time"

	"github.com/avierno/envauth/internal/autherr"
	"github.com/avierno/envauth/internal/environment"
	"github.com/avierno/envauth/internal/identity"
	"github.com/avierno/envauth/internal/secretstore"
)

// DefaultInteractiveTimeout bounds waiting for user action in interactive and
// device-code flows.
const DefaultInteractiveTimeout = 5 * time.Minute

// Selector maps an environment's declared authentication method to its
// acquisition strategy. The mapping is deterministic: the same method always
// yields the same strategy instance.
type Selector struct {
	interactive      Strategy
	deviceCode       Strategy
	servicePrincipal Strategy
	usernamePassword Strategy

	secrets secretstore.Store
}

// NewSelector creates a Selector over the given provider and secret store.
// interactiveTimeout bounds user action in interactive and device-code flows;
// zero means DefaultInteractiveTimeout. secrets may be nil, in which case
// secret-bearing methods fail selection.
func NewSelector(provider identity.Provider, secrets secretstore.Store, interactiveTimeout time.Duration) *Selector {
	if interactiveTimeout <= 0 {
		interactiveTimeout = DefaultInteractiveTimeout
	}

	return &Selector{
		interactive:      &interactiveStrategy{provider: provider, timeout: interactiveTimeout},
		deviceCode:       &deviceCodeStrategy{provider: provider, timeout: interactiveTimeout},
		servicePrincipal: &servicePrincipalStrategy{provider: provider, secrets: secrets},
		usernamePassword: &usernamePasswordStrategy{provider: provider, secrets: secrets},
		secrets:          secrets,
	}
}

// Select returns the strategy for the environment's method after checking
// structural preconditions. It verifies that required material is obtainable
// at all (a store exists, identity fields are set), not that stored secrets
// are valid; validation belongs to the strategy.
func (s *Selector) Select(env *environment.Environment) (Strategy, error) {
	if !env.Method.Valid() {
		return nil, autherr.NewConfigurationError(env.ID, "unknown authentication method "+string(env.Method))
	}
	if env.TenantID == "" {
		return nil, autherr.NewConfigurationError(env.ID, "tenant id required")
	}
	if env.ClientID == "" {
		return nil, autherr.NewConfigurationError(env.ID, "client id required")
	}

	if env.Method.RequiresSecret() && s.secrets == nil {
		return nil, autherr.NewConfigurationError(env.ID, "method "+string(env.Method)+" requires a secret store")
	}

	switch env.Method {
	case environment.MethodInteractive:
		return s.interactive, nil
	case environment.MethodDeviceCode:
		return s.deviceCode, nil
	case environment.MethodServicePrincipal:
		return s.servicePrincipal, nil
	case environment.MethodUsernamePassword:
		if env.Username == "" {
			return nil, autherr.NewConfigurationError(env.ID, "username required for username-password method")
		}
		return s.usernamePassword, nil
	default:
		return nil, autherr.NewConfigurationError(env.ID, "unknown authentication method "+string(env.Method))
	}
}
