// Command rldap runs the LDAPv3 directory front end, per spec.md §6.
package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/spf13/cobra"

	"github.com/aarys/rldap/internal/authenticator"
	"github.com/aarys/rldap/internal/directory"
	"github.com/aarys/rldap/internal/server"
	"github.com/aarys/rldap/pkg/config"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func init() {
	// Suppress unstructured logs globally before any library (notably
	// ldapserver) gets a chance to log through the stdlib logger.
	log.SetOutput(io.Discard)
	log.SetFlags(0)
	log.SetPrefix("")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rldap",
	Short: "rldap - a whitelist-backed LDAP directory front end",
	Long:  "A read-only LDAPv3 server that synthesizes its naming tree from a whitelist and delegates bind to an external identity provider",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(healthcheckCmd)
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	initLogging(cfg.Logging.Level, cfg.Logging.Format)
	cfg.Print()

	dir, err := directory.Load(cfg.LDAP.WhitelistPath, cfg.LDAP.BaseDN, cfg.LDAP.OU, version)
	if err != nil {
		return fmt.Errorf("load directory: %w", err)
	}

	auth := authenticator.NewPlexAuthenticator(cfg.Auth.Endpoint, time.Duration(cfg.Auth.TimeoutSeconds)*time.Second, cfg.Auth.Headers)

	srv, err := server.NewServer(cfg, dir, auth)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	slog.Info("rldap is running",
		"address", fmt.Sprintf("%s:%d", cfg.Server.ListenAddress, cfg.Server.ListenPort),
		"base_dn", cfg.LDAP.BaseDN,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")
	return srv.Stop()
}

func initLogging(level, format string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the LDAP server and block until SIGINT/SIGTERM",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rldap version %s (commit: %s)\n", version, commit)
	},
}

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Confirm the server is serving by running a real RootDSE search",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		host := cfg.Server.ListenAddress
		if host == "0.0.0.0" {
			host = "127.0.0.1"
		}
		addr := fmt.Sprintf("ldap://%s:%d", host, cfg.Server.ListenPort)

		conn, err := ldap.DialURL(addr, ldap.DialWithDialer(&net.Dialer{Timeout: 3 * time.Second}))
		if err != nil {
			return fmt.Errorf("dial %s: %w", addr, err)
		}
		defer conn.Close()

		// No explicit Bind: an rldap search never requires one (spec.md
		// §4.4's dispatcher runs regardless of session state), and an
		// unbound connection is already an anonymous LDAP session per
		// RFC 4513 - this exercises the same codepath a real anonymous
		// client would.
		req := ldap.NewSearchRequest(
			"",
			ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 3, false,
			"(objectClass=*)",
			[]string{"objectClass"},
			nil,
		)
		if _, err := conn.Search(req); err != nil {
			return fmt.Errorf("rootDSE search: %w", err)
		}

		fmt.Println("ok")
		return nil
	},
}
