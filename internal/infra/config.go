package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5435"`
	PGUser      string `env:"PGUSER" envDefault:"gachabox"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"gachabox"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"gachabox"`

	// JWT
	JWTSecret       string `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTPlayerExpiry string `env:"JWT_PLAYER_EXPIRY" envDefault:"24h"`
	JWTAdminExpiry  string `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3100"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`

	// Gacha parameters
	ItemLockWindow       time.Duration `env:"ITEM_LOCK_WINDOW" envDefault:"24h"`
	MaxCabinetsPerOwner  int           `env:"MAX_CABINETS_PER_OWNER" envDefault:"20"`
	PlatformFeeCeilingBp int64         `env:"PLATFORM_FEE_CEILING_BP" envDefault:"2000"`
	DefaultPlatformFeeBp int64         `env:"DEFAULT_PLATFORM_FEE_BP" envDefault:"500"`
	PlatformFeeRecipient string        `env:"PLATFORM_FEE_RECIPIENT" envDefault:"platform"`
	PlayRateLimit        int           `env:"PLAY_RATE_LIMIT" envDefault:"30"`
	PlayRateWindow       time.Duration `env:"PLAY_RATE_WINDOW" envDefault:"1m"`

	// External services
	RandomOrgAPIKey string `env:"RANDOM_ORG_API_KEY"`
	TokenLedgerURL  string `env:"TOKEN_LEDGER_URL" envDefault:"http://localhost:4100"`
	AssetBridgeURL  string `env:"ASSET_BRIDGE_URL" envDefault:"http://localhost:4200"`
	PayoutURL       string `env:"PAYOUT_URL" envDefault:"http://localhost:4300"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
