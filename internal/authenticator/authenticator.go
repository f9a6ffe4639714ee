// Package authenticator verifies whitelisted-user credentials against
// an external identity provider, per spec.md §5.
package authenticator

import "context"

// Result is the outcome of an Authenticate call.
type Result int

const (
	// ResultOK means the provider accepted the credentials.
	ResultOK Result = iota
	// ResultDenied means the provider reached and rejected the
	// credentials (any non-2xx response).
	ResultDenied
	// ResultTransportError means the provider could not be reached at
	// all (timeout, connection refused, DNS failure). It is reported
	// separately from ResultDenied, but the bind handler answers both
	// with InvalidCredentials.
	ResultTransportError
)

// Authenticator checks a username/password pair against an identity
// provider external to the directory.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (Result, error)
}
