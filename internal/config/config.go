package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":3001" validate:"required"`
	Storage     string `env:"STORAGE" envDefault:"postgres" validate:"oneof=postgres memory"`
	DBDSN       string `env:"DB_DSN" validate:"required_if=Storage postgres"`

	JWTSecret string        `env:"JWT_SECRET" validate:"required,min=16"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h" validate:"gt=0"`

	NATSURL string `env:"NATS_URL"`

	S3 S3Config `envPrefix:"S3_"`

	ReserveMaxRetries int           `env:"RESERVE_MAX_RETRIES" envDefault:"5" validate:"gte=0,lte=50"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL" envDefault:"15m" validate:"gt=0"`
}

// S3Config enables class image uploads when Bucket is set.
type S3Config struct {
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"ENDPOINT" validate:"omitempty,url"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"USE_PATH_STYLE"`
}

func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds the config from the process environment alone.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
