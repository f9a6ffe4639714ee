// Package server wires the in-scope LDAP operations (spec.md §§4.4,
// 4.5) onto vjeantet/ldapserver's RouteMux, grounded on the teacher's
// internal/server/ldap.go.
package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/vjeantet/ldapserver"

	"github.com/aarys/rldap/internal/authenticator"
	"github.com/aarys/rldap/internal/directory"
	"github.com/aarys/rldap/pkg/config"
	"github.com/aarys/rldap/pkg/crypto"
)

// NullWriter discards everything written to it. ldapserver logs
// through a stdlib *log.Logger; redirecting that to a NullWriter at
// startup keeps all operational logging on slog, as the teacher does.
type NullWriter struct{}

func (NullWriter) Write(b []byte) (int, error) { return len(b), nil }

// Server is the LDAP front end: one Directory, one Authenticator, and
// the admin credential, wired onto an ldapserver.Server.
type Server struct {
	cfg       *config.Config
	dir       *directory.Directory
	auth      authenticator.Authenticator
	hasher    *crypto.PasswordHasher
	adminHash string
	sessions  *sessions

	srv *ldapserver.Server
}

// NewServer builds a Server. The admin password is hashed once here
// (never compared in plaintext) so every bind attempt verifies in
// constant time against the hash, per DESIGN.md's admin-credential
// decision.
func NewServer(cfg *config.Config, dir *directory.Directory, auth authenticator.Authenticator) (*Server, error) {
	hasher := crypto.NewPasswordHasher(cfg.Security.Argon2Config)

	adminHash, err := hasher.Hash(cfg.Admin.Password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	return &Server{
		cfg:       cfg,
		dir:       dir,
		auth:      auth,
		hasher:    hasher,
		adminHash: adminHash,
		sessions:  newSessions(),
	}, nil
}

// Start launches the TCP listener in a background goroutine.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.ListenAddress, s.cfg.Server.ListenPort)

	routeMux := ldapserver.NewRouteMux()
	routeMux.Bind(s.handleBind)
	routeMux.Search(s.handleSearch)
	routeMux.Add(s.handleAdd)
	routeMux.Delete(s.handleDelete)
	routeMux.Modify(s.handleModify)
	routeMux.Compare(s.handleCompare)
	routeMux.Extended(s.handleExtended)
	routeMux.NotFound(s.handleNotFound)

	ldapserver.Logger = log.New(NullWriter{}, "", 0)
	s.srv = ldapserver.NewServer()
	s.srv.Handle(routeMux)

	slog.Info("ldap server starting", "address", addr, "base_dn", s.cfg.LDAP.BaseDN)
	go func() {
		if err := s.srv.ListenAndServe(addr); err != nil {
			slog.Error("ldap server error", "error", err)
		}
	}()

	return nil
}

// Stop shuts the listener down.
func (s *Server) Stop() error {
	if s.srv != nil {
		s.srv.Stop()
	}
	return nil
}

// connAttrs returns the remote_addr/msgid pair every per-connection and
// per-request log line carries, per SPEC_FULL.md §2. The exact shape of
// ldapserver.Client's address accessor is inferred (the library source
// isn't vendored in this tree) - see DESIGN.md.
func connAttrs(m *ldapserver.Message) []any {
	return []any{
		"remote_addr", m.Client.Addr().String(),
		"msgid", int(m.MessageID),
	}
}

func (s *Server) handleBind(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	ctx := context.Background()
	bindReq := m.GetBindRequest()

	connID := m.Client.Numero
	reqDN := string(bindReq.Name())
	reqPassword := string(bindReq.AuthenticationSimple())

	dn, code := dispatchBind(ctx, s.dir, s.auth, s.hasher, s.cfg.Admin.DN, s.adminHash, s.cfg.Security.AllowAnonymousBind, reqDN, reqPassword)
	if code == ldapserver.LDAPResultSuccess {
		s.sessions.bind(connID, dn)
		slog.Debug("bind succeeded", append(connAttrs(m), "dn", dn)...)
	} else {
		slog.Info("bind rejected", append(connAttrs(m), "dn", reqDN)...)
	}

	w.Write(ldapserver.NewBindResponse(code))
}

func (s *Server) handleSearch(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	searchReq := m.GetSearchRequest()
	dn := s.sessions.whoami(m.Client.Numero, s.cfg.LDAP.BaseDN)
	slog.Debug("search request", append(connAttrs(m),
		"dn", dn,
		"base", string(searchReq.BaseObject()),
		"scope", int(searchReq.Scope()),
	)...)
	dispatchSearch(w, s.dir, searchReq, s.cfg.LDAP.MaxSubtreeDepth)
}

func (s *Server) handleExtended(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	extReq := m.GetExtendedRequest()
	oid := string(extReq.RequestName())
	connID := m.Client.Numero
	dn := s.sessions.whoami(connID, s.cfg.LDAP.BaseDN)

	if oid != whoamiOID {
		slog.Debug("unsupported extended operation", append(connAttrs(m), "dn", dn, "oid", oid)...)
		w.Write(ldapserver.NewExtendedResponse(ldapserver.LDAPResultUnavailable))
		return
	}

	resp := ldapserver.NewExtendedResponse(ldapserver.LDAPResultSuccess)
	resp.SetResponseValue("dn:" + dn)
	w.Write(resp)
}

// handleAdd, handleModify, handleDelete and handleCompare implement
// the write-path Non-goals of spec.md §1: every write operation is
// rejected outright, and Compare always reports false rather than
// inspecting the naming tree.
func (s *Server) handleAdd(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	slog.Info("add rejected", append(connAttrs(m), "dn", s.sessions.whoami(m.Client.Numero, s.cfg.LDAP.BaseDN))...)
	w.Write(ldapserver.NewAddResponse(ldapserver.LDAPResultUnwillingToPerform))
}

func (s *Server) handleModify(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	slog.Info("modify rejected", append(connAttrs(m), "dn", s.sessions.whoami(m.Client.Numero, s.cfg.LDAP.BaseDN))...)
	w.Write(ldapserver.NewModifyResponse(ldapserver.LDAPResultUnwillingToPerform))
}

func (s *Server) handleDelete(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	slog.Info("delete rejected", append(connAttrs(m), "dn", s.sessions.whoami(m.Client.Numero, s.cfg.LDAP.BaseDN))...)
	w.Write(ldapserver.NewDeleteResponse(ldapserver.LDAPResultUnwillingToPerform))
}

func (s *Server) handleCompare(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	slog.Debug("compare", append(connAttrs(m), "dn", s.sessions.whoami(m.Client.Numero, s.cfg.LDAP.BaseDN))...)
	w.Write(ldapserver.NewCompareResponse(ldapserver.LDAPResultCompareFalse))
}

func (s *Server) handleNotFound(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	dn := s.sessions.whoami(m.Client.Numero, s.cfg.LDAP.BaseDN)
	slog.Debug("unhandled operation", append(connAttrs(m), "dn", dn, "operation", m.ProtocolOpName())...)
	w.Write(ldapserver.NewResponse(ldapserver.LDAPResultUnwillingToPerform))
}
