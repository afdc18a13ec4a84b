package environment

// AuthenticationMethod represents the different authentication methods supported.
type AuthenticationMethod string

const (
	MethodInteractive      AuthenticationMethod = "interactive"
	MethodDeviceCode       AuthenticationMethod = "device_code"
	MethodServicePrincipal AuthenticationMethod = "service_principal"
	MethodUsernamePassword AuthenticationMethod = "username_password"
)

// Valid reports whether the method is one of the four supported kinds.
func (m AuthenticationMethod) Valid() bool {
	switch m {
	case MethodInteractive, MethodDeviceCode, MethodServicePrincipal, MethodUsernamePassword:
		return true
	default:
		return false
	}
}

// RequiresClientCredentials reports whether the method authenticates with a
// client secret (client-credentials grant).
func (m AuthenticationMethod) RequiresClientCredentials() bool {
	return m == MethodServicePrincipal
}

// RequiresUsernamePassword reports whether the method authenticates with a
// stored user password (resource-owner password grant).
func (m AuthenticationMethod) RequiresUsernamePassword() bool {
	return m == MethodUsernamePassword
}

// IsInteractiveFlow reports whether the method needs a user present at a
// prompt. Interactive and device-code flows differ only in the prompt
// mechanism, which the identity provider owns.
func (m AuthenticationMethod) IsInteractiveFlow() bool {
	return m == MethodInteractive || m == MethodDeviceCode
}

// RequiresSecret reports whether the method needs material from the secret
// store at acquisition time.
func (m AuthenticationMethod) RequiresSecret() bool {
	return m.RequiresClientCredentials() || m.RequiresUsernamePassword()
}

// Environment is an immutable description of one target system to acquire
// tokens for. Reconfiguration replaces the whole value; auth-relevant fields
// are never mutated in place.
type Environment struct {
	// ID is an opaque identity, unique across environments.
	ID string

	Method   AuthenticationMethod
	TenantID string
	ClientID string

	// Username is set only for the username-password method.
	Username string

	// Scope overrides the default token scope when non-empty.
	Scope string
}

// identityMaterial returns the field that, together with the method,
// determines which stored secret the environment references.
func (e *Environment) identityMaterial() string {
	switch {
	case e.Method.RequiresClientCredentials():
		return e.ClientID
	case e.Method.RequiresUsernamePassword():
		return e.Username
	default:
		return ""
	}
}
