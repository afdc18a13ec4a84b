// Package environment defines the immutable environment value objects that
// the rest of the module acquires tokens for.
//
// An Environment names a target system (tenant + client + authentication
// method). Environments are replaced wholesale on reconfiguration, never
// mutated in place, so that secret-reference derivation and orphan detection
// can compare previous and next values structurally.
package environment
