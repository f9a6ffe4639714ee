// Package config loads rldap's runtime configuration from the
// environment, per spec.md §2.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	LDAP     LDAPConfig
	Admin    AdminConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Security SecurityConfig
}

type ServerConfig struct {
	ListenAddress string
	ListenPort    int
}

type LDAPConfig struct {
	BaseDN          string
	OU              string
	WhitelistPath   string
	MaxSubtreeDepth int
}

type AdminConfig struct {
	DN       string
	Password string
}

type AuthConfig struct {
	Endpoint       string
	TimeoutSeconds int
	Headers        PlexHeaders
}

// PlexHeaders are the X-Plex-* identity headers sent with every
// sign-in request. They are configurable (rather than hardcoded)
// so tests can point rldap at a stub endpoint and assert on the
// exact headers it sends without needing a real Plex client.
type PlexHeaders struct {
	Device         string
	Model          string
	ClientID       string
	Platform       string
	ClientPlatform string
	ClientProfile  string
	Product        string
	Version        string
}

type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

type SecurityConfig struct {
	AllowAnonymousBind bool
	Argon2Config       Argon2Config
}

type Argon2Config struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Load reads RLDAP_* environment variables into a Config. It does not
// exit the process: the caller (cmd/rldap) decides how to report a
// validation failure.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			ListenAddress: getEnvString("RLDAP_LISTEN_ADDRESS", "0.0.0.0"),
			ListenPort:    getEnvInt("RLDAP_LISTEN_PORT", 12345),
		},
		LDAP: LDAPConfig{
			BaseDN:          getEnvString("RLDAP_BASE_DN", "dc=aarys,dc=fr"),
			OU:              getEnvString("RLDAP_OU", "users"),
			WhitelistPath:   getEnvString("RLDAP_WHITELIST_PATH", "./whitelist"),
			MaxSubtreeDepth: getEnvInt("RLDAP_MAX_SUBTREE_DEPTH", 10),
		},
		Admin: AdminConfig{
			DN:       getEnvString("RLDAP_ADMIN_DN", "cn=Directory Manager"),
			Password: os.Getenv("RLDAP_ADMIN_PASSWORD"),
		},
		Auth: AuthConfig{
			Endpoint:       getEnvString("RLDAP_AUTH_ENDPOINT", "https://plex.tv/users/sign_in.xml"),
			TimeoutSeconds: getEnvInt("RLDAP_AUTH_TIMEOUT_SECONDS", 7),
			Headers: PlexHeaders{
				Device:         getEnvString("RLDAP_AUTH_HEADER_DEVICE", "RutheniumProxy"),
				Model:          getEnvString("RLDAP_AUTH_HEADER_MODEL", "2,3"),
				ClientID:       getEnvString("RLDAP_AUTH_HEADER_CLIENT_ID", "001"),
				Platform:       getEnvString("RLDAP_AUTH_HEADER_PLATFORM", "Go"),
				ClientPlatform: getEnvString("RLDAP_AUTH_HEADER_CLIENT_PLATFORM", "Go"),
				ClientProfile: getEnvString("RLDAP_AUTH_HEADER_CLIENT_PROFILE",
					"add-transcode-target(type=MusicProfile&context=streaming&protocol=hls&container=mpegts&audioCodec=aac)+add-transcode-target(type=videoProfile&context=streaming&protocol=hls&container=mpegts&videoCodec=h264&audioCodec=aac,mp3&replace=true)"),
				Product: getEnvString("RLDAP_AUTH_HEADER_PRODUCT", "PlexConnect"),
				Version: getEnvString("RLDAP_AUTH_HEADER_VERSION", "1.0.0"),
			},
		},
		Logging: LoggingConfig{
			Level:  getEnvString("RLDAP_LOG_LEVEL", "info"),
			Format: getEnvString("RLDAP_LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			AllowAnonymousBind: getEnvBool("RLDAP_ALLOW_ANONYMOUS_BIND", false),
			Argon2Config: Argon2Config{
				Memory:      uint32(getEnvInt("RLDAP_ARGON2_MEMORY", 65536)),
				Iterations:  uint32(getEnvInt("RLDAP_ARGON2_ITERATIONS", 3)),
				Parallelism: uint8(getEnvInt("RLDAP_ARGON2_PARALLELISM", 2)),
				SaltLength:  uint32(getEnvInt("RLDAP_ARGON2_SALT_LENGTH", 16)),
				KeyLength:   uint32(getEnvInt("RLDAP_ARGON2_KEY_LENGTH", 32)),
			},
		},
	}

	if baseDN, set := os.LookupEnv("RLDAP_BASE_DN"); (set && baseDN == "") || cfg.LDAP.BaseDN == "" {
		return nil, fmt.Errorf("RLDAP_BASE_DN must not be empty")
	}
	if cfg.Admin.Password == "" {
		return nil, fmt.Errorf("RLDAP_ADMIN_PASSWORD is required")
	}

	return cfg, nil
}

func (c *Config) Print() {
	slog.Info("configuration loaded",
		"listen_address", c.Server.ListenAddress,
		"listen_port", c.Server.ListenPort,
		"base_dn", c.LDAP.BaseDN,
		"ou", c.LDAP.OU,
		"whitelist_path", c.LDAP.WhitelistPath,
		"admin_dn", c.Admin.DN,
		"auth_endpoint", c.Auth.Endpoint,
		"log_level", c.Logging.Level,
		"log_format", c.Logging.Format,
		"allow_anonymous_bind", c.Security.AllowAnonymousBind,
	)
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
