package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newTestViper(env map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range env {
		v.Set(k, val)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg := fromViper(newTestViper(nil))

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	if cfg.Algorithm != "HS256" {
		t.Errorf("Algorithm = %q, want HS256", cfg.Algorithm)
	}
	if cfg.AccessTokenExpiry != 20*time.Minute {
		t.Errorf("AccessTokenExpiry = %v, want 20m", cfg.AccessTokenExpiry)
	}
	if cfg.RefreshEnabled() {
		t.Error("refresh tokens should be disabled without REDIS_ADDR")
	}
	if len(cfg.CORSAllowOrigins) != 1 || cfg.CORSAllowOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORSAllowOrigins = %v", cfg.CORSAllowOrigins)
	}
}

func TestOverrides(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]any{
		"DB_DRIVER":                   "SQLite",
		"ALGORITHM":                   "hs512",
		"ACCESS_TOKEN_EXPIRE_MINUTES": 5,
		"REDIS_ADDR":                  "localhost:6379",
		"CORS_ALLOW_ORIGINS":          "http://a.test, http://b.test,,",
	}))

	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.Algorithm != "HS512" {
		t.Errorf("Algorithm = %q, want HS512", cfg.Algorithm)
	}
	if cfg.AccessTokenExpiry != 5*time.Minute {
		t.Errorf("AccessTokenExpiry = %v, want 5m", cfg.AccessTokenExpiry)
	}
	if !cfg.RefreshEnabled() {
		t.Error("refresh tokens should be enabled with REDIS_ADDR")
	}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "http://b.test" {
		t.Errorf("CORSAllowOrigins = %v", cfg.CORSAllowOrigins)
	}
}

func TestValidate(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]any{"SECRET_KEY": "s3cret"}))
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := fromViper(newTestViper(map[string]any{
		"ALGORITHM": "RS256",
		"DB_DRIVER": "mysql",
	}))
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"SECRET_KEY", "ALGORITHM", "DB_DRIVER"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]any{
		"DB_HOST":     "db",
		"DB_USER":     "app",
		"DB_PASSWORD": "pw",
		"DB_NAME":     "pricing",
		"DB_PORT":     6543,
	}))
	want := "host=db user=app password=pw dbname=pricing port=6543 sslmode=disable TimeZone=UTC"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN() = %q, want %q", got, want)
	}
}
