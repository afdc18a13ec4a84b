package identity

import (
	"context"
	"time"

	"github.com/avierno/envauth/internal/environment"
)

// Grant is a successful token issuance from the identity provider.
type Grant struct {
	// AccessToken is the opaque bearer token.
	AccessToken string

	// Expiry is when the access token stops being accepted.
	Expiry time.Time

	// RefreshToken, when present, allows silent renewal.
	RefreshToken string

	// Account identifies the provider-side account the grant belongs to,
	// when the provider reported one.
	Account string
}

// Provider performs token exchanges with the identity provider. All methods
// honor context cancellation and return errors classified into the autherr
// taxonomy.
type Provider interface {
	// Interactive runs a browser-driven authorization-code login.
	Interactive(ctx context.Context, env *environment.Environment) (*Grant, error)

	// DeviceCode runs a device-code login, prompting the user through the
	// mechanism the provider was configured with.
	DeviceCode(ctx context.Context, env *environment.Environment) (*Grant, error)

	// ClientCredentials exchanges a client secret for a token.
	ClientCredentials(ctx context.Context, env *environment.Environment, clientSecret string) (*Grant, error)

	// Password exchanges a username and password for a token.
	Password(ctx context.Context, env *environment.Environment, username, password string) (*Grant, error)

	// Refresh renews a token silently from previously issued refresh context.
	Refresh(ctx context.Context, env *environment.Environment, refreshToken string) (*Grant, error)
}
