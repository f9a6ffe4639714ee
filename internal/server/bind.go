package server

import (
	"context"

	"github.com/vjeantet/ldapserver"

	"github.com/aarys/rldap/internal/authenticator"
	"github.com/aarys/rldap/internal/directory"
)

// dispatchBind implements the four ordered rules of spec.md §4.5. On
// success it returns the DN that becomes the session's new bound
// principal and an LDAPResultSuccess code; on failure it returns ""
// and an error code, and the session's current principal is left
// untouched by the caller, per invariant P9. Taking dn/password as
// plain strings (rather than a goldap BindRequest) keeps this decision
// table a pure function independent of the wire codec.
func dispatchBind(
	ctx context.Context,
	dir *directory.Directory,
	auth authenticator.Authenticator,
	hasher adminVerifier,
	adminDN, adminHash string,
	allowAnonymous bool,
	dn, password string,
) (string, int) {
	// Rule 1: admin short-circuit.
	if dn == adminDN {
		ok, err := hasher.Verify(password, adminHash)
		if err == nil && ok {
			return dn, ldapserver.LDAPResultSuccess
		}
		return "", ldapserver.LDAPResultInvalidCredentials
	}

	// Rule 2: anonymous bind.
	if dn == "" && password == "" {
		if allowAnonymous {
			return "", ldapserver.LDAPResultSuccess
		}
		return "", ldapserver.LDAPResultInvalidCredentials
	}

	// Rule 3: user bind, delegated to the external identity provider.
	if directory.Under(dn, dir.UsersDN()) {
		entry, ok := dir.FindByDN(dn)
		if ok {
			if user, isUser := directory.AsUser(entry); isUser {
				result, err := auth.Authenticate(ctx, user.Username, password)
				if err == nil && result == authenticator.ResultOK {
					return dn, ldapserver.LDAPResultSuccess
				}
				return "", ldapserver.LDAPResultInvalidCredentials
			}
		}
	}

	// Rule 4: otherwise.
	return "", ldapserver.LDAPResultInvalidCredentials
}

// adminVerifier is the subset of *crypto.PasswordHasher dispatchBind
// depends on, so tests can substitute a stub without hashing.
type adminVerifier interface {
	Verify(password, hashedPassword string) (bool, error)
}
