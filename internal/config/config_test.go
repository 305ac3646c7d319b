package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// clearEnv unsets every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	names := []string{"PORT", "JWT_SECRET", "MONGO_URI", "DATABASE_URL", "GOOGLE_CLIENT_ID", "CLIENT_URL"}
	for k := range envKeys {
		names = append(names, EnvPrefix+k)
	}
	for _, name := range names {
		if v, ok := os.LookupEnv(name); ok {
			t.Cleanup(func() { os.Setenv(name, v) })
			os.Unsetenv(name)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Arrange
	clearEnv(t)
	t.Setenv("ROSTER_SESSION_SECRET", testSecret)
	t.Setenv("ROSTER_DATABASE_URL", "memory://")

	// Act
	cfg, err := Load("")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "prod", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, "http://localhost:3000", cfg.ClientURL)
	assert.Empty(t, cfg.GoogleClientID)
}

func TestLoad_PrefixedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROSTER_SESSION_SECRET", testSecret)
	t.Setenv("ROSTER_DATABASE_URL", "sqlite:///var/lib/roster.db")
	t.Setenv("ROSTER_PORT", "8080")
	t.Setenv("ROSTER_LOG_FORMAT", "dev")
	t.Setenv("ROSTER_SESSION_MAX_AGE", "2h")
	t.Setenv("ROSTER_GOOGLE_CLIENT_ID", "client.apps.googleusercontent.com")
	t.Setenv("ROSTER_CLIENT_URL", "https://app.example.com")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "dev", cfg.LogFormat)
	assert.Equal(t, 2*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, "client.apps.googleusercontent.com", cfg.GoogleClientID)
	assert.Equal(t, "https://app.example.com", cfg.ClientURL)
	assert.Equal(t, "sqlite:///var/lib/roster.db", cfg.DatabaseURL)
}

func TestLoad_LegacyNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("MONGO_URI", "memory://")
	t.Setenv("PORT", "5050")
	t.Setenv("CLIENT_URL", "http://legacy.example.com")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.SessionSecret)
	assert.Equal(t, "memory://", cfg.DatabaseURL)
	assert.Equal(t, 5050, cfg.Port)
	assert.Equal(t, "http://legacy.example.com", cfg.ClientURL)
}

func TestLoad_DatabaseURLBeatsMongoURI(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("MONGO_URI", "mongodb://localhost/roster")
	t.Setenv("DATABASE_URL", "memory://")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "memory://", cfg.DatabaseURL)
}

func TestLoad_PrefixedBeatsLegacy(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "legacy-secret-legacy-secret-legacy-secret")
	t.Setenv("ROSTER_SESSION_SECRET", testSecret)
	t.Setenv("DATABASE_URL", "memory://")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.SessionSecret)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "roster.yaml")
	yaml := `
port: 7000
log:
  level: debug
session:
  secret: ` + testSecret + `
  maxAge: 30m
database:
  url: memory://
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("ROSTER_PORT", "7100")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Port, "env overrides file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.SessionMaxAge)
	assert.Equal(t, testSecret, cfg.SessionSecret)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 5000, SessionSecret: testSecret, DatabaseURL: "memory://"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.SessionSecret = "" }, wantErr: ErrSecretRequired},
		{name: "short secret", mutate: func(c *Config) { c.SessionSecret = "short" }, wantErr: ErrSecretTooShort},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: ErrDatabaseURLRequired},
		{name: "mongo url", mutate: func(c *Config) { c.DatabaseURL = "mongodb://localhost/roster" }, wantErr: ErrUnsupportedStore},
		{name: "port zero", mutate: func(c *Config) { c.Port = 0 }, wantErr: ErrInvalidPort},
		{name: "port too big", mutate: func(c *Config) { c.Port = 70000 }, wantErr: ErrInvalidPort},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			cfg := valid
			test.mutate(&cfg)

			// Act
			err := cfg.Validate()

			// Assert
			if test.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, test.wantErr)
		})
	}
}

func TestParseStore(t *testing.T) {
	tests := []struct {
		url      string
		wantKind StoreKind
		wantDSN  string
		wantErr  bool
	}{
		{url: "postgres://u:p@localhost:5432/roster", wantKind: StorePostgres, wantDSN: "postgres://u:p@localhost:5432/roster"},
		{url: "postgresql://localhost/roster", wantKind: StorePostgres, wantDSN: "postgresql://localhost/roster"},
		{url: "sqlite://roster.db", wantKind: StoreSQLite, wantDSN: "roster.db"},
		{url: "sqlite:///var/lib/roster.db", wantKind: StoreSQLite, wantDSN: "/var/lib/roster.db"},
		{url: "sqlite::memory:", wantKind: StoreSQLite, wantDSN: ":memory:"},
		{url: "memory://", wantKind: StoreMemory},
		{url: "sqlite://", wantErr: true},
		{url: "mysql://localhost/roster", wantErr: true},
		{url: "roster.db", wantErr: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.url, func(t *testing.T) {
			store, err := ParseStore(test.url)

			if test.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedStore)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.wantKind, store.Kind)
			assert.Equal(t, test.wantDSN, store.DSN)
		})
	}
}

func TestOrigins(t *testing.T) {
	cfg := Config{ClientURL: " https://a.example.com/, https://b.example.com ,,"}

	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Origins())
	assert.Empty(t, (&Config{}).Origins())
}
