package authenticator

import "context"

// Stub is a fixed-answer Authenticator for tests that must not reach
// the network.
type Stub struct {
	Result Result
	Err    error
}

func (s Stub) Authenticate(ctx context.Context, username, password string) (Result, error) {
	return s.Result, s.Err
}
