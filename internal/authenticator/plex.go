package authenticator

import (
	"context"
	"net/http"
	"time"

	"github.com/aarys/rldap/pkg/config"
)

// Wire names of the X-Plex-* identity headers the sign-in endpoint
// expects on every request; their values are configurable (see
// config.PlexHeaders) so tests can override them.
const (
	headerDevice         = "X-Plex-Device"
	headerModel          = "X-Plex-Model"
	headerClientID       = "X-Plex-Client-Identifier"
	headerPlatform       = "X-Plex-Platform"
	headerClientPlatform = "X-Plex-Client-Platform"
	headerClientProfile  = "X-Plex-Client-Profile-Extra"
	headerProduct        = "X-Plex-Product"
	headerVersion        = "X-Plex-Version"
)

// PlexAuthenticator delegates credential checks to a Plex-style
// sign-in endpoint over HTTP Basic auth, per spec.md §5.
type PlexAuthenticator struct {
	endpoint string
	headers  config.PlexHeaders
	client   *http.Client
}

// NewPlexAuthenticator builds a PlexAuthenticator posting to endpoint
// with the given per-request timeout and identity headers.
func NewPlexAuthenticator(endpoint string, timeout time.Duration, headers config.PlexHeaders) *PlexAuthenticator {
	return &PlexAuthenticator{
		endpoint: endpoint,
		headers:  headers,
		client:   &http.Client{Timeout: timeout},
	}
}

// Authenticate posts username/password as HTTP Basic auth to the
// configured endpoint. A 2xx response means ResultOK; any other
// status means ResultDenied; a request that never got a response
// (timeout, DNS failure, connection refused) means ResultTransportError.
func (a *PlexAuthenticator) Authenticate(ctx context.Context, username, password string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, nil)
	if err != nil {
		return ResultTransportError, err
	}

	req.SetBasicAuth(username, password)
	req.Header.Set(headerDevice, a.headers.Device)
	req.Header.Set(headerModel, a.headers.Model)
	req.Header.Set(headerClientID, a.headers.ClientID)
	req.Header.Set(headerPlatform, a.headers.Platform)
	req.Header.Set(headerClientPlatform, a.headers.ClientPlatform)
	req.Header.Set(headerClientProfile, a.headers.ClientProfile)
	req.Header.Set(headerProduct, a.headers.Product)
	req.Header.Set(headerVersion, a.headers.Version)

	resp, err := a.client.Do(req)
	if err != nil {
		return ResultTransportError, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return ResultOK, nil
	}
	return ResultDenied, nil
}
