// Package acquire implements the token acquisition strategies.
//
// One strategy per authentication method, all behind a common interface, with
// the Selector mapping an environment's declared method to its strategy and
// enforcing structural preconditions. The SilentGate attempts refresh-based
// renewal before any strategy runs. Failures travel as values inside Result
// between strategies and the coordinator; nothing at this layer panics or
// swallows errors.
package acquire
