package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration values.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseDSN     string        `env:"DATABASE_DSN" envDefault:"file:datadesk.db"`
	TokenSecret     string        `env:"TOKEN_SECRET,required,notEmpty"`
	TokenAlgorithm  string        `env:"TOKEN_ALGORITHM" envDefault:"HS256"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"60m"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"10"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	AdminSeedPath   string        `env:"ADMIN_SEED_PATH"`
	EntrySeedPath   string        `env:"ENTRY_SEED_PATH"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

var supportedAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.TokenAlgorithm = strings.ToUpper(cfg.TokenAlgorithm)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the env tags cannot express.
func (c Config) Validate() error {
	if !supportedAlgorithms[c.TokenAlgorithm] {
		return fmt.Errorf("unsupported TOKEN_ALGORITHM %q", c.TokenAlgorithm)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	// bcrypt.MinCost..bcrypt.MaxCost
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	return nil
}

// String returns a representation safe for logs.
func (c Config) String() string {
	return fmt.Sprintf("Config{HTTP: %s, DB: %s, Token: %s/%s ***, CORS: %v}",
		c.HTTPAddr, redactDSN(c.DatabaseDSN), c.TokenAlgorithm, c.TokenTTL, c.CORSOrigins)
}

func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
