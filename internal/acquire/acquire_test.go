package acquire

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avierno/envauth/internal/autherr"
	"github.com/avierno/envauth/internal/environment"
	"github.com/avierno/envauth/internal/identity"
	"github.com/avierno/envauth/internal/secretstore"
	"github.com/avierno/envauth/internal/tokencache"
)

// fakeProvider implements identity.Provider with per-method stubs and call
// counters.
type fakeProvider struct {
	interactiveFunc func(ctx context.Context, env *environment.Environment) (*identity.Grant, error)
	deviceFunc      func(ctx context.Context, env *environment.Environment) (*identity.Grant, error)
	clientCredsFunc func(ctx context.Context, env *environment.Environment, secret string) (*identity.Grant, error)
	passwordFunc    func(ctx context.Context, env *environment.Environment, username, password string) (*identity.Grant, error)
	refreshFunc     func(ctx context.Context, env *environment.Environment, refreshToken string) (*identity.Grant, error)

	interactiveCalls atomic.Int64
	deviceCalls      atomic.Int64
	clientCredsCalls atomic.Int64
	passwordCalls    atomic.Int64
	refreshCalls     atomic.Int64
}

var _ identity.Provider = (*fakeProvider)(nil)

func (f *fakeProvider) Interactive(ctx context.Context, env *environment.Environment) (*identity.Grant, error) {
	f.interactiveCalls.Add(1)
	if f.interactiveFunc == nil {
		return &identity.Grant{AccessToken: "interactive-token", Expiry: time.Now().Add(time.Hour)}, nil
	}
	return f.interactiveFunc(ctx, env)
}

func (f *fakeProvider) DeviceCode(ctx context.Context, env *environment.Environment) (*identity.Grant, error) {
	f.deviceCalls.Add(1)
	if f.deviceFunc == nil {
		return &identity.Grant{AccessToken: "device-token", Expiry: time.Now().Add(time.Hour)}, nil
	}
	return f.deviceFunc(ctx, env)
}

func (f *fakeProvider) ClientCredentials(ctx context.Context, env *environment.Environment, secret string) (*identity.Grant, error) {
	f.clientCredsCalls.Add(1)
	if f.clientCredsFunc == nil {
		return &identity.Grant{AccessToken: "cc-token", Expiry: time.Now().Add(time.Hour)}, nil
	}
	return f.clientCredsFunc(ctx, env, secret)
}

func (f *fakeProvider) Password(ctx context.Context, env *environment.Environment, username, password string) (*identity.Grant, error) {
	f.passwordCalls.Add(1)
	if f.passwordFunc == nil {
		return &identity.Grant{AccessToken: "pw-token", Expiry: time.Now().Add(time.Hour)}, nil
	}
	return f.passwordFunc(ctx, env, username, password)
}

func (f *fakeProvider) Refresh(ctx context.Context, env *environment.Environment, refreshToken string) (*identity.Grant, error) {
	f.refreshCalls.Add(1)
	if f.refreshFunc == nil {
		return &identity.Grant{AccessToken: "refreshed-token", Expiry: time.Now().Add(time.Hour)}, nil
	}
	return f.refreshFunc(ctx, env, refreshToken)
}

func spEnv() *environment.Environment {
	return &environment.Environment{
		ID:       "prod",
		Method:   environment.MethodServicePrincipal,
		TenantID: "t1",
		ClientID: "c1",
	}
}

func TestSelectorDeterministicMapping(t *testing.T) {
	selector := NewSelector(&fakeProvider{}, secretstore.NewMemoryStore(), 0)

	envs := map[environment.AuthenticationMethod]*environment.Environment{
		environment.MethodInteractive:      {ID: "a", Method: environment.MethodInteractive, TenantID: "t", ClientID: "c"},
		environment.MethodDeviceCode:       {ID: "b", Method: environment.MethodDeviceCode, TenantID: "t", ClientID: "c"},
		environment.MethodServicePrincipal: {ID: "c", Method: environment.MethodServicePrincipal, TenantID: "t", ClientID: "c"},
		environment.MethodUsernamePassword: {ID: "d", Method: environment.MethodUsernamePassword, TenantID: "t", ClientID: "c", Username: "u"},
	}

	for method, env := range envs {
		first, err := selector.Select(env)
		if err != nil {
			t.Fatalf("Select(%s) failed: %v", method, err)
		}
		second, err := selector.Select(env)
		if err != nil {
			t.Fatalf("Select(%s) second call failed: %v", method, err)
		}
		if first != second {
			t.Errorf("Select(%s) is not deterministic: got distinct strategies", method)
		}
	}
}

func TestSelectorPreconditions(t *testing.T) {
	provider := &fakeProvider{}
	store := secretstore.NewMemoryStore()

	tests := []struct {
		name     string
		selector *Selector
		env      *environment.Environment
	}{
		{
			name:     "unknown method",
			selector: NewSelector(provider, store, 0),
			env:      &environment.Environment{ID: "a", Method: "certificate", TenantID: "t", ClientID: "c"},
		},
		{
			name:     "missing tenant",
			selector: NewSelector(provider, store, 0),
			env:      &environment.Environment{ID: "a", Method: environment.MethodInteractive, ClientID: "c"},
		},
		{
			name:     "missing client id",
			selector: NewSelector(provider, store, 0),
			env:      &environment.Environment{ID: "a", Method: environment.MethodInteractive, TenantID: "t"},
		},
		{
			name:     "service principal without a secret store",
			selector: NewSelector(provider, nil, 0),
			env:      spEnv(),
		},
		{
			name:     "username password without username",
			selector: NewSelector(provider, store, 0),
			env:      &environment.Environment{ID: "a", Method: environment.MethodUsernamePassword, TenantID: "t", ClientID: "c"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := test.selector.Select(test.env); !autherr.IsConfiguration(err) {
				t.Errorf("Select() = %v, want configuration error", err)
			}
		})
	}
}

func TestServicePrincipalStrategyUsesStoredSecret(t *testing.T) {
	env := spEnv()
	store := secretstore.NewMemoryStore()
	ref, _ := environment.SecretRef(env)
	if err := store.Set(context.Background(), ref, "sp-secret"); err != nil {
		t.Fatal(err)
	}

	var gotSecret string
	provider := &fakeProvider{
		clientCredsFunc: func(ctx context.Context, env *environment.Environment, secret string) (*identity.Grant, error) {
			gotSecret = secret
			return &identity.Grant{AccessToken: "cc-token", Expiry: time.Now().Add(time.Hour)}, nil
		},
	}

	strategy, err := NewSelector(provider, store, 0).Select(env)
	if err != nil {
		t.Fatal(err)
	}

	result := strategy.Acquire(context.Background(), env)
	if !result.OK() {
		t.Fatalf("Acquire failed: %v", result.Err)
	}
	if result.AccessToken != "cc-token" {
		t.Errorf("AccessToken = %q, want cc-token", result.AccessToken)
	}
	if gotSecret != "sp-secret" {
		t.Errorf("provider received secret %q, want sp-secret", gotSecret)
	}
}

func TestServicePrincipalStrategyMissingSecret(t *testing.T) {
	env := spEnv()
	strategy, err := NewSelector(&fakeProvider{}, secretstore.NewMemoryStore(), 0).Select(env)
	if err != nil {
		t.Fatal(err)
	}

	result := strategy.Acquire(context.Background(), env)
	if result.OK() {
		t.Fatal("expected failure for missing secret")
	}
	if !autherr.IsAuthentication(result.Err) {
		t.Errorf("Err = %v, want authentication error (re-enter secret)", result.Err)
	}
}

func TestStrategyDistinguishesRejectionFromTransient(t *testing.T) {
	env := spEnv()
	store := secretstore.NewMemoryStore()
	ref, _ := environment.SecretRef(env)
	_ = store.Set(context.Background(), ref, "expired-secret")

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"provider rejected secret", autherr.NewAuthenticationError(env.ID, "invalid_client", nil), autherr.IsAuthentication},
		{"network failure", autherr.NewTransientProviderError(env.ID, context.DeadlineExceeded), autherr.IsTransient},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			provider := &fakeProvider{
				clientCredsFunc: func(ctx context.Context, env *environment.Environment, secret string) (*identity.Grant, error) {
					return nil, test.err
				},
			}
			strategy, err := NewSelector(provider, store, 0).Select(env)
			if err != nil {
				t.Fatal(err)
			}

			result := strategy.Acquire(context.Background(), env)
			if result.OK() || !test.check(result.Err) {
				t.Errorf("Acquire() = %v, want matching typed error", result.Err)
			}
		})
	}
}

func TestUsernamePasswordStrategyUsesStoredPassword(t *testing.T) {
	env := &environment.Environment{
		ID:       "dev",
		Method:   environment.MethodUsernamePassword,
		TenantID: "t1",
		ClientID: "c1",
		Username: "alice",
	}
	store := secretstore.NewMemoryStore()
	ref, _ := environment.SecretRef(env)
	_ = store.Set(context.Background(), ref, "hunter2")

	var gotUser, gotPassword string
	provider := &fakeProvider{
		passwordFunc: func(ctx context.Context, env *environment.Environment, username, password string) (*identity.Grant, error) {
			gotUser, gotPassword = username, password
			return &identity.Grant{AccessToken: "pw-token", Expiry: time.Now().Add(time.Hour)}, nil
		},
	}

	strategy, err := NewSelector(provider, store, 0).Select(env)
	if err != nil {
		t.Fatal(err)
	}

	result := strategy.Acquire(context.Background(), env)
	if !result.OK() {
		t.Fatalf("Acquire failed: %v", result.Err)
	}
	if gotUser != "alice" || gotPassword != "hunter2" {
		t.Errorf("provider received %q/%q, want alice/hunter2", gotUser, gotPassword)
	}
}

func TestInteractiveStrategyTimesOut(t *testing.T) {
	env := &environment.Environment{ID: "a", Method: environment.MethodInteractive, TenantID: "t", ClientID: "c"}
	provider := &fakeProvider{
		interactiveFunc: func(ctx context.Context, env *environment.Environment) (*identity.Grant, error) {
			<-ctx.Done()
			return nil, identity.Classify(env.ID, ctx.Err())
		},
	}

	strategy, err := NewSelector(provider, secretstore.NewMemoryStore(), 20*time.Millisecond).Select(env)
	if err != nil {
		t.Fatal(err)
	}

	result := strategy.Acquire(context.Background(), env)
	if result.OK() {
		t.Fatal("expected timeout failure")
	}
	if !autherr.IsTimeout(result.Err) {
		t.Errorf("Err = %v, want timeout error", result.Err)
	}
}

func TestStrategyFailsFastOnCancellation(t *testing.T) {
	env := &environment.Environment{ID: "a", Method: environment.MethodDeviceCode, TenantID: "t", ClientID: "c"}
	provider := &fakeProvider{
		deviceFunc: func(ctx context.Context, env *environment.Environment) (*identity.Grant, error) {
			<-ctx.Done()
			return nil, identity.Classify(env.ID, ctx.Err())
		},
	}

	strategy, err := NewSelector(provider, secretstore.NewMemoryStore(), time.Minute).Select(env)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go cancel()

	result := strategy.Acquire(ctx, env)
	if result.OK() {
		t.Fatal("expected cancellation failure")
	}
	if !autherr.IsCancellation(result.Err) {
		t.Errorf("Err = %v, want cancellation error", result.Err)
	}
}

func TestSilentGateNotAttemptedWithoutRefreshContext(t *testing.T) {
	provider := &fakeProvider{}
	cache := tokencache.New()
	gate := NewSilentGate(provider, cache)
	env := spEnv()

	if _, attempted := gate.TrySilent(context.Background(), env); attempted {
		t.Error("expected no attempt with an empty cache")
	}

	cache.Set(env.ID, tokencache.Entry{AccessToken: "stale", Expiry: time.Now().Add(-time.Hour)})
	if _, attempted := gate.TrySilent(context.Background(), env); attempted {
		t.Error("expected no attempt without refresh context")
	}

	if calls := provider.refreshCalls.Load(); calls != 0 {
		t.Errorf("Refresh called %d times, want 0", calls)
	}
}

func TestSilentGateReturnsFailureAsValue(t *testing.T) {
	env := spEnv()
	provider := &fakeProvider{
		refreshFunc: func(ctx context.Context, env *environment.Environment, refreshToken string) (*identity.Grant, error) {
			return nil, autherr.NewAuthenticationError(env.ID, "consent revoked", nil)
		},
	}
	cache := tokencache.New()
	cache.Set(env.ID, tokencache.Entry{AccessToken: "stale", Expiry: time.Now().Add(-time.Hour), RefreshToken: "rt"})

	gate := NewSilentGate(provider, cache)
	result, attempted := gate.TrySilent(context.Background(), env)
	if !attempted {
		t.Fatal("expected an attempt with refresh context present")
	}
	if result.OK() {
		t.Fatal("expected failed result")
	}
	if !autherr.IsAuthentication(result.Err) {
		t.Errorf("Err = %v, want the provider failure as a value", result.Err)
	}
}

func TestSilentGateKeepsRefreshTokenWhenProviderOmitsIt(t *testing.T) {
	env := spEnv()
	provider := &fakeProvider{
		refreshFunc: func(ctx context.Context, env *environment.Environment, refreshToken string) (*identity.Grant, error) {
			return &identity.Grant{AccessToken: "renewed", Expiry: time.Now().Add(time.Hour)}, nil
		},
	}
	cache := tokencache.New()
	cache.Set(env.ID, tokencache.Entry{AccessToken: "stale", Expiry: time.Now().Add(-time.Hour), RefreshToken: "rt-keep"})

	gate := NewSilentGate(provider, cache)
	result, attempted := gate.TrySilent(context.Background(), env)
	if !attempted || !result.OK() {
		t.Fatalf("TrySilent = %+v, %v", result, attempted)
	}
	if result.RefreshToken != "rt-keep" {
		t.Errorf("RefreshToken = %q, want the retained rt-keep", result.RefreshToken)
	}
}
