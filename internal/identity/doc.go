// Package identity is the boundary to the identity provider.
//
// The Provider interface covers the five exchanges the acquisition layer
// needs: interactive browser login, device-code login, client-credentials,
// resource-owner password, and silent refresh. Implementations classify
// provider failures into the autherr taxonomy before returning, so callers
// can branch on credential rejection vs. transient failure without knowing
// the wire protocol.
//
// AADProvider implements the interface against Azure AD style OAuth2
// endpoints using golang.org/x/oauth2.
package identity
