package acquire

import (
	"time"

	"github.com/avierno/envauth/internal/identity"
)

// Result is the outcome of one acquisition attempt: either a token with its
// expiry and optional refresh context, or a typed error. Failures are values
// until the coordinator decides whether to escalate.
type Result struct {
	AccessToken  string
	Expiry       time.Time
	RefreshToken string
	Account      string

	Err error
}

// OK reports whether the acquisition succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Success builds a Result from an identity provider grant.
func Success(grant *identity.Grant) Result {
	return Result{
		AccessToken:  grant.AccessToken,
		Expiry:       grant.Expiry,
		RefreshToken: grant.RefreshToken,
		Account:      grant.Account,
	}
}

// Failure builds a failed Result carrying a typed error.
func Failure(err error) Result {
	return Result{Err: err}
}
