package identity

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/avierno/envauth/internal/autherr"
)

// rejectionCodes are OAuth2 error codes that mean the provider examined the
// presented credentials and refused them. Everything else on the wire is
// treated as transient.
var rejectionCodes = map[string]bool{
	"invalid_grant":       true,
	"invalid_client":      true,
	"unauthorized_client": true,
	"access_denied":       true,
	"invalid_scope":       true,
}

// Classify maps a raw provider or transport error into the autherr taxonomy.
// Returns nil for nil input.
func Classify(environmentID string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.Canceled):
		return autherr.NewCancellationError(environmentID, err)
	case errors.Is(err, context.DeadlineExceeded):
		return autherr.NewTimeoutError(environmentID, err)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if rejectionCodes[retrieveErr.ErrorCode] {
			return autherr.NewAuthenticationError(environmentID, rejectionReason(retrieveErr), err)
		}
		if retrieveErr.Response != nil {
			code := retrieveErr.Response.StatusCode
			if code == http.StatusUnauthorized || code == http.StatusForbidden {
				return autherr.NewAuthenticationError(environmentID, retrieveErr.Response.Status, err)
			}
		}
		return autherr.NewTransientProviderError(environmentID, err)
	}

	return autherr.NewTransientProviderError(environmentID, err)
}

func rejectionReason(err *oauth2.RetrieveError) string {
	if err.ErrorDescription != "" {
		return err.ErrorCode + ": " + err.ErrorDescription
	}
	return err.ErrorCode
}
