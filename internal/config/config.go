// Package config loads rosterd settings from defaults, an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the environment variables read by Load.
const EnvPrefix = "ROSTER_"

// MinSecretLength matches the session secret rule enforced by roster.New.
const MinSecretLength = 32

var (
	ErrSecretRequired      = errors.New("session secret is required")
	ErrSecretTooShort      = fmt.Errorf("session secret must be at least %d characters", MinSecretLength)
	ErrDatabaseURLRequired = errors.New("database url is required")
	ErrUnsupportedStore    = errors.New("unsupported database url")
	ErrInvalidPort         = errors.New("port must be between 1 and 65535")
)

// Config is the resolved process configuration.
type Config struct {
	Port           int
	LogFormat      string
	LogLevel       string
	SessionSecret  string
	SessionMaxAge  time.Duration
	DatabaseURL    string
	GoogleClientID string
	ClientURL      string
}

func defaults() map[string]any {
	return map[string]any{
		"port":           5000,
		"log.format":     "prod",
		"log.level":      "info",
		"session.maxAge": "24h",
		"client.url":     "http://localhost:3000",
	}
}

// envKeys maps ROSTER_-prefixed variable names (without the prefix) to keys.
var envKeys = map[string]string{
	"PORT":             "port",
	"LOG_FORMAT":       "log.format",
	"LOG_LEVEL":        "log.level",
	"SESSION_SECRET":   "session.secret",
	"SESSION_MAX_AGE":  "session.maxAge",
	"DATABASE_URL":     "database.url",
	"GOOGLE_CLIENT_ID": "google.clientId",
	"CLIENT_URL":       "client.url",
}

// legacyKeys are the bare names older deployments set. ROSTER_ names win.
var legacyKeys = map[string]string{
	"PORT":             "port",
	"JWT_SECRET":       "session.secret",
	"MONGO_URI":        "database.url",
	"DATABASE_URL":     "database.url",
	"GOOGLE_CLIENT_ID": "google.clientId",
	"CLIENT_URL":       "client.url",
}

// Load resolves configuration in increasing precedence: built-in defaults,
// the YAML file at path (skipped when path is empty), legacy environment
// names, then ROSTER_ environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %q: %w", path, err)
		}
	}

	// DATABASE_URL beats MONGO_URI when both are set.
	legacy := env.Provider("", ".", func(s string) string {
		if s == "MONGO_URI" && os.Getenv("DATABASE_URL") != "" {
			return ""
		}
		return legacyKeys[s]
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("load legacy env: %w", err)
	}

	prefixed := env.Provider(EnvPrefix, ".", func(s string) string {
		return envKeys[strings.TrimPrefix(s, EnvPrefix)]
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		Port:           k.Int("port"),
		LogFormat:      k.String("log.format"),
		LogLevel:       k.String("log.level"),
		SessionSecret:  k.String("session.secret"),
		SessionMaxAge:  k.Duration("session.maxAge"),
		DatabaseURL:    strings.TrimSpace(k.String("database.url")),
		GoogleClientID: strings.TrimSpace(k.String("google.clientId")),
		ClientURL:      k.String("client.url"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that would keep the server from starting.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return ErrSecretRequired
	}
	if len(c.SessionSecret) < MinSecretLength {
		return ErrSecretTooShort
	}
	if c.DatabaseURL == "" {
		return ErrDatabaseURLRequired
	}
	if _, err := ParseStore(c.DatabaseURL); err != nil {
		return err
	}
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}
	return nil
}

// Origins splits the comma-separated client URL into CORS origins.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.ClientURL, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// StoreKind names a storage backend.
type StoreKind string

const (
	StorePostgres StoreKind = "postgres"
	StoreSQLite   StoreKind = "sqlite"
	StoreMemory   StoreKind = "memory"
)

// Store is a parsed database URL.
type Store struct {
	Kind StoreKind
	// DSN is handed to the backend: the full URL for postgres, a file path or
	// ":memory:" for sqlite, empty for memory.
	DSN string
}

// ParseStore picks a backend from the scheme of a database URL.
func ParseStore(url string) (Store, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return Store{Kind: StorePostgres, DSN: url}, nil
	case url == "sqlite::memory:":
		return Store{Kind: StoreSQLite, DSN: ":memory:"}, nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return Store{}, fmt.Errorf("%w: sqlite url has no path", ErrUnsupportedStore)
		}
		return Store{Kind: StoreSQLite, DSN: path}, nil
	case url == "memory://":
		return Store{Kind: StoreMemory}, nil
	}

	scheme, _, _ := strings.Cut(url, ":")
	return Store{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedStore, scheme)
}
