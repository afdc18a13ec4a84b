package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/microsoft"

	"github.com/avierno/envauth/internal/environment"
)

// DefaultScope is requested when an environment declares no custom scope.
const DefaultScope = "https://management.azure.com/.default"

// offlineAccessScope asks the provider to issue a refresh token on
// user-interactive flows.
const offlineAccessScope = "offline_access"

// DevicePromptFunc shows the user code and verification URI to the user
// during a device-code login.
type DevicePromptFunc func(ctx context.Context, userCode, verificationURI string) error

// OpenURLFunc directs the user to the authorization URL during an
// interactive login, typically by launching a browser.
type OpenURLFunc func(ctx context.Context, url string) error

// AADOption configures an AADProvider.
type AADOption func(*AADProvider)

// WithHTTPClient sets a custom HTTP client for token endpoint requests.
// If not provided, http.DefaultClient with a 30s timeout is used.
func WithHTTPClient(client *http.Client) AADOption {
	return func(p *AADProvider) {
		p.httpClient = client
	}
}

// WithDevicePrompt sets the prompt mechanism for device-code logins.
func WithDevicePrompt(prompt DevicePromptFunc) AADOption {
	return func(p *AADProvider) {
		p.devicePrompt = prompt
	}
}

// WithOpenURL sets the mechanism that directs the user to the authorization
// URL during interactive logins.
func WithOpenURL(open OpenURLFunc) AADOption {
	return func(p *AADProvider) {
		p.openURL = open
	}
}

// AADProvider implements Provider against Azure AD style OAuth2 endpoints.
// Public-client flows (interactive, device code, password) use the
// environment's client id without a secret; the client-credentials flow
// presents the stored secret.
type AADProvider struct {
	httpClient   *http.Client
	devicePrompt DevicePromptFunc
	openURL      OpenURLFunc
}

// Compile-time check to ensure AADProvider implements Provider
var _ Provider = (*AADProvider)(nil)

// NewAADProvider creates an AADProvider. Defaults: 30s HTTP timeout, device
// and interactive prompts logged through slog.
func NewAADProvider(opts ...AADOption) *AADProvider {
	p := &AADProvider{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		devicePrompt: func(ctx context.Context, userCode, verificationURI string) error {
			slog.InfoContext(ctx, "device login pending", "user_code", userCode, "verification_uri", verificationURI)
			return nil
		},
		openURL: func(ctx context.Context, url string) error {
			slog.InfoContext(ctx, "interactive login pending", "url", url)
			return nil
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// oauthContext injects the provider's HTTP client into the context per
// oauth2's documented API.
func (p *AADProvider) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func (p *AADProvider) config(env *environment.Environment, redirectURL string, userScopes bool) *oauth2.Config {
	scopes := []string{DefaultScope}
	if env.Scope != "" {
		scopes = []string{env.Scope}
	}
	if userScopes {
		scopes = append(scopes, offlineAccessScope)
	}

	return &oauth2.Config{
		ClientID:    env.ClientID,
		Endpoint:    microsoft.AzureADEndpoint(env.TenantID),
		Scopes:      scopes,
		RedirectURL: redirectURL,
	}
}

func grantFromToken(token *oauth2.Token, account string) *Grant {
	return &Grant{
		AccessToken:  token.AccessToken,
		Expiry:       token.Expiry,
		RefreshToken: token.RefreshToken,
		Account:      account,
	}
}

// Interactive runs the authorization-code flow with PKCE against a loopback
// redirect listener, directing the user to the authorization URL via the
// configured opener.
func (p *AADProvider) Interactive(ctx context.Context, env *environment.Environment) (*Grant, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, Classify(env.ID, fmt.Errorf("starting loopback listener: %w", err))
	}
	defer func() { _ = listener.Close() }()

	redirectURL := fmt.Sprintf("http://%s/callback", listener.Addr().String())
	cfg := p.config(env, redirectURL, true)

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callback{err: fmt.Errorf("authorization response state mismatch")}
			return
		}
		if errCode := query.Get("error"); errCode != "" {
			http.Error(w, errCode, http.StatusBadRequest)
			results <- callback{err: &oauth2.RetrieveError{
				ErrorCode:        errCode,
				ErrorDescription: query.Get("error_description"),
			}}
			return
		}
		fmt.Fprintln(w, "Login complete. You can close this window.")
		results <- callback{code: query.Get("code")}
	})

	server := &http.Server{Handler: mux}
	go func() { _ = server.Serve(listener) }()
	defer func() { _ = server.Close() }()

	if err := p.openURL(ctx, authURL); err != nil {
		return nil, Classify(env.ID, fmt.Errorf("opening authorization url: %w", err))
	}

	var code string
	select {
	case <-ctx.Done():
		return nil, Classify(env.ID, ctx.Err())
	case result := <-results:
		if result.err != nil {
			return nil, Classify(env.ID, result.err)
		}
		code = result.code
	}

	token, err := cfg.Exchange(p.oauthContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, Classify(env.ID, err)
	}
	return grantFromToken(token, ""), nil
}

// DeviceCode runs the device authorization grant, polling the token endpoint
// until the user completes the prompt or the context ends.
func (p *AADProvider) DeviceCode(ctx context.Context, env *environment.Environment) (*Grant, error) {
	cfg := p.config(env, "", true)
	octx := p.oauthContext(ctx)

	response, err := cfg.DeviceAuth(octx)
	if err != nil {
		return nil, Classify(env.ID, err)
	}

	if err := p.devicePrompt(ctx, response.UserCode, response.VerificationURI); err != nil {
		return nil, Classify(env.ID, fmt.Errorf("device prompt: %w", err))
	}

	token, err := cfg.DeviceAccessToken(octx, response)
	if err != nil {
		return nil, Classify(env.ID, err)
	}
	return grantFromToken(token, ""), nil
}

// ClientCredentials exchanges the client secret for a token.
func (p *AADProvider) ClientCredentials(ctx context.Context, env *environment.Environment, clientSecret string) (*Grant, error) {
	scopes := []string{DefaultScope}
	if env.Scope != "" {
		scopes = []string{env.Scope}
	}

	cfg := &clientcredentials.Config{
		ClientID:     env.ClientID,
		ClientSecret: clientSecret,
		TokenURL:     microsoft.AzureADEndpoint(env.TenantID).TokenURL,
		Scopes:       scopes,
	}

	token, err := cfg.Token(p.oauthContext(ctx))
	if err != nil {
		return nil, Classify(env.ID, err)
	}
	// Client-credentials grants carry no refresh token; renewal re-presents
	// the secret.
	return grantFromToken(token, env.ClientID), nil
}

// Password exchanges a username and password for a token.
func (p *AADProvider) Password(ctx context.Context, env *environment.Environment, username, password string) (*Grant, error) {
	cfg := p.config(env, "", true)

	token, err := cfg.PasswordCredentialsToken(p.oauthContext(ctx), username, password)
	if err != nil {
		return nil, Classify(env.ID, err)
	}
	return grantFromToken(token, username), nil
}

// Refresh renews a token from previously issued refresh context without any
// user interaction.
func (p *AADProvider) Refresh(ctx context.Context, env *environment.Environment, refreshToken string) (*Grant, error) {
	cfg := p.config(env, "", true)

	token, err := cfg.TokenSource(p.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, Classify(env.ID, err)
	}
	return grantFromToken(token, ""), nil
}
