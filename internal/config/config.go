package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Adapter names the datastore backing a service.
const (
	AdapterPostgres = "postgres"
	AdapterSQLite   = "sqlite"
	AdapterMemory   = "memory"
)

// Verification strategies for bearer tokens.
const (
	VerifyLocal  = "local"
	VerifyRemote = "remote"
)

// Config holds everything a service binary reads from the environment.
type Config struct {
	Addr        string
	DBAdapter   string
	PostgresDSN string
	SQLiteFile  string

	JWTSecret string
	TokenTTL  time.Duration

	// Remote verification settings, used by services that delegate
	// token checks to the identity service instead of holding the
	// signing secret themselves.
	VerifyStrategy string
	AuthServiceURL string
}

// Load reads configuration from SEHA_-prefixed environment variables,
// applying defaults where a variable is unset.
func Load() (Config, error) {
	cfg := Config{
		Addr:           getenv("SEHA_ADDR", ":8080"),
		DBAdapter:      strings.ToLower(getenv("SEHA_DB_ADAPTER", AdapterMemory)),
		PostgresDSN:    os.Getenv("SEHA_PG_DSN"),
		SQLiteFile:     getenv("SEHA_SQLITE_FILE", "seha.db"),
		JWTSecret:      os.Getenv("SEHA_JWT_SECRET"),
		VerifyStrategy: strings.ToLower(getenv("SEHA_VERIFY_STRATEGY", VerifyLocal)),
		AuthServiceURL: os.Getenv("SEHA_AUTH_SERVICE_URL"),
	}

	switch cfg.DBAdapter {
	case AdapterPostgres, AdapterSQLite, AdapterMemory:
	default:
		return Config{}, fmt.Errorf("config: unknown db adapter %q", cfg.DBAdapter)
	}
	if cfg.DBAdapter == AdapterPostgres && cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("config: SEHA_PG_DSN is required for the postgres adapter")
	}

	ttlMinutes := 30
	if raw := os.Getenv("SEHA_TOKEN_TTL_MINUTES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: invalid SEHA_TOKEN_TTL_MINUTES %q", raw)
		}
		ttlMinutes = n
	}
	cfg.TokenTTL = time.Duration(ttlMinutes) * time.Minute

	switch cfg.VerifyStrategy {
	case VerifyLocal, VerifyRemote:
	default:
		return Config{}, fmt.Errorf("config: unknown verify strategy %q", cfg.VerifyStrategy)
	}
	if cfg.VerifyStrategy == VerifyRemote && cfg.AuthServiceURL == "" {
		return Config{}, fmt.Errorf("config: SEHA_AUTH_SERVICE_URL is required for remote verification")
	}
	if cfg.VerifyStrategy == VerifyLocal && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: SEHA_JWT_SECRET is required for local verification")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
