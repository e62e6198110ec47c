package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "ALBUMSHOP"

type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	DBDriver       string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN          string `envconfig:"DB_DSN" default:"albumshop.db"` // sqlite file in project root
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	Seed           bool   `envconfig:"SEED" default:"true"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogFile   string `envconfig:"LOG_FILE"`

	JWTSecret  string        `envconfig:"JWT_SECRET"`
	JWTIssuer  string        `envconfig:"JWT_ISSUER" default:"albumshop"`
	JWTTTL     time.Duration `envconfig:"JWT_TTL" default:"24h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"12"`

	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	BodyLimit       int           `envconfig:"BODY_LIMIT" default:"1048576"` // 1 MiB
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"120"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	LoginRateMax    int           `envconfig:"LOGIN_RATE_LIMIT_MAX" default:"5"`

	// EphemeralJWTSecret is set when no secret was configured and Load
	// generated one. Tokens then stop validating on restart.
	EphemeralJWTSecret bool `ignored:"true"`
}

// Load reads an optional .env file and then the ALBUMSHOP_* environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		secret, err := randomSecret()
		if err != nil {
			return Config{}, fmt.Errorf("generating jwt secret: %w", err)
		}
		cfg.JWTSecret = secret
		cfg.EphemeralJWTSecret = true
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (c Config) Validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DBDriver)
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		return errors.New("db dsn is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt secret is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("jwt ttl must be positive")
	}
	if c.BodyLimit <= 0 {
		return errors.New("body limit must be positive")
	}
	return nil
}
