package dbconfig

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD",
		"DB_NAME", "DB_SSLMODE", "DB_MAX_CONNS", "DB_MIN_CONNS",
	} {
		t.Setenv(key, "")
	}
}

func TestNewConfigFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg := NewConfigFromEnv()
	if cfg.Host != "localhost" || cfg.Port != 5432 {
		t.Errorf("host:port = %s:%d, want localhost:5432", cfg.Host, cfg.Port)
	}
	if cfg.Database != "gaffer" {
		t.Errorf("database = %s, want gaffer", cfg.Database)
	}
	if cfg.MaxConns != 8 || cfg.MinConns != 2 {
		t.Errorf("pool = %d/%d, want 8/2", cfg.MaxConns, cfg.MinConns)
	}
}

func TestNewConfigFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_MAX_CONNS", "32")
	t.Setenv("DB_PORT", "not-a-number")

	cfg := NewConfigFromEnv()
	if cfg.MaxConns != 32 {
		t.Errorf("max conns = %d, want 32", cfg.MaxConns)
	}
	if cfg.Port != 5432 {
		t.Errorf("unparseable port = %d, want the 5432 fallback", cfg.Port)
	}
}

func TestDSNCarriesPoolSizing(t *testing.T) {
	cfg := Config{
		Host: "db", Port: 5433, User: "sim", Password: "secret",
		Database: "gaffer", SSLMode: "require", MaxConns: 16, MinConns: 4,
	}

	want := "postgres://sim:secret@db:5433/gaffer?sslmode=require&pool_max_conns=16&pool_min_conns=4"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN = %s, want %s", got, want)
	}
}
