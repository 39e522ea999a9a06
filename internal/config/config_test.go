package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.TokenAlgorithm != "HS256" || cfg.TokenTTL != 60*time.Minute {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.BcryptCost)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error without TOKEN_SECRET")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("TOKEN_ALGORITHM", "hs512")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("DATABASE_DSN", "postgres://app:pw@db:5432/app?sslmode=disable")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TokenAlgorithm != "HS512" {
		t.Fatalf("expected normalized algorithm, got %q", cfg.TokenAlgorithm)
	}
	if cfg.TokenTTL != 15*time.Minute {
		t.Fatalf("expected 15m ttl, got %s", cfg.TokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSOrigins)
	}
	if s := cfg.String(); strings.Contains(s, "s3cret") || strings.Contains(s, "pw@") {
		t.Fatalf("String leaks secrets: %s", s)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"algorithm": {"TOKEN_ALGORITHM", "RS256"},
		"ttl":       {"TOKEN_TTL", "-1m"},
		"cost":      {"BCRYPT_COST", "2"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("TOKEN_SECRET", "s3cret")
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}
