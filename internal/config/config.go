package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/Skotchmaster/travel_app/internal/search"
	"github.com/Skotchmaster/travel_app/pkg/hash"
	"github.com/Skotchmaster/travel_app/pkg/tokens"
)

type Config struct {
	Addr        string `env:"ADDR,default=:8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	SecretKey           string `env:"SECRET_KEY,required"`
	Algorithm           string `env:"ALGORITHM,default=HS256"`
	AccessExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES,default=60"`
	RefreshExpireDays   int    `env:"REFRESH_TOKEN_EXPIRE_DAYS,default=7"`
	RotateRefreshTokens bool   `env:"ROTATE_REFRESH_TOKENS,default=false"`

	Argon2Time      uint32 `env:"ARGON2_TIME,default=3"`
	Argon2MemoryKiB uint32 `env:"ARGON2_MEMORY_KIB,default=65536"`
	Argon2Threads   uint8  `env:"ARGON2_THREADS,default=1"`

	CORSOrigins  []string `env:"CORS_ORIGINS,default=http://localhost:5173"`
	KafkaBrokers []string `env:"KAFKA_BROKERS"`

	ESURL      string `env:"ES_URL"`
	ESUser     string `env:"ES_USER"`
	ESPassword string `env:"ES_PASSWORD"`
	ESIndex    string `env:"ES_INDEX,default=trips"`
}

// Load reads .env when present and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("no .env file, using process environment", "error", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.SecretKey) < tokens.MinSecretLen {
		errs = append(errs, fmt.Errorf("SECRET_KEY must be at least %d bytes", tokens.MinSecretLen))
	}
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("ALGORITHM %q is not supported", c.Algorithm))
	}
	if c.AccessExpireMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.RefreshExpireDays <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRE_DAYS must be positive"))
	}
	if c.Argon2Time == 0 {
		errs = append(errs, errors.New("ARGON2_TIME must be positive"))
	}
	if c.Argon2MemoryKiB == 0 || c.Argon2MemoryKiB > hash.MaxMemoryKiB {
		errs = append(errs, fmt.Errorf("ARGON2_MEMORY_KIB must be in (0, %d]", hash.MaxMemoryKiB))
	}
	if c.Argon2Threads == 0 {
		errs = append(errs, errors.New("ARGON2_THREADS must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) Tokens() tokens.Config {
	return tokens.Config{
		SecretKey:  []byte(c.SecretKey),
		Algorithm:  c.Algorithm,
		AccessTTL:  time.Duration(c.AccessExpireMinutes) * time.Minute,
		RefreshTTL: time.Duration(c.RefreshExpireDays) * 24 * time.Hour,
	}
}

func (c *Config) Hashing() hash.Params {
	p := hash.DefaultParams
	p.Time = c.Argon2Time
	p.Memory = c.Argon2MemoryKiB
	p.Threads = c.Argon2Threads
	return p
}

func (c *Config) Search() search.Config {
	return search.Config{URL: c.ESURL, User: c.ESUser, Password: c.ESPassword, Index: c.ESIndex}
}
