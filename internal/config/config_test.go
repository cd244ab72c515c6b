package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DB_DRIVER", "JWT_EXPIRES_IN", "BASE_CURRENCY",
		"RATES_URL", "RATES_TIMEOUT", "AGGREGATION_PARALLELISM", "OPS_API_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("expected postgres driver, got %s", cfg.DBDriver)
	}
	if cfg.JWTExpirationDur != 7*24*time.Hour {
		t.Errorf("expected 168h token lifetime, got %v", cfg.JWTExpirationDur)
	}
	if cfg.BaseCurrency != "CAD" {
		t.Errorf("expected CAD, got %s", cfg.BaseCurrency)
	}
	if cfg.RatesTimeout != 10*time.Second {
		t.Errorf("expected 10s rates timeout, got %v", cfg.RatesTimeout)
	}
	if cfg.AggregationParallelism != 4 {
		t.Errorf("expected parallelism 4, got %d", cfg.AggregationParallelism)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("BASE_CURRENCY", "usd")
	t.Setenv("RATES_TIMEOUT", "2500ms")
	t.Setenv("AGGREGATION_PARALLELISM", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.DBDriver)
	}
	if cfg.BaseCurrency != "USD" {
		t.Errorf("expected USD, got %s", cfg.BaseCurrency)
	}
	if cfg.RatesTimeout != 2500*time.Millisecond {
		t.Errorf("expected 2.5s, got %v", cfg.RatesTimeout)
	}
	if cfg.AggregationParallelism != 8 {
		t.Errorf("expected 8, got %d", cfg.AggregationParallelism)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"unsupported base currency", "BASE_CURRENCY", "JPY"},
		{"bad jwt duration", "JWT_EXPIRES_IN", "forever"},
		{"negative rates timeout", "RATES_TIMEOUT", "-1s"},
		{"zero parallelism", "AGGREGATION_PARALLELISM", "0"},
		{"non-numeric parallelism", "AGGREGATION_PARALLELISM", "four"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := cfg.PostgresURL(); got != "postgres://u:p@db:5432/n?sslmode=disable" {
		t.Errorf("unexpected URL %q", got)
	}
}
