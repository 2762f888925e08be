package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"

	ProofDriverInline = "inline"
	ProofDriverS3     = "s3"
)

type Config struct {
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"lucky-draw-backend"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Store struct {
		// memory, sqlite, postgres, redis
		Driver     string `env:"STORE_DRIVER" envDefault:"sqlite"`
		SQLitePath string `env:"SQLITE_PATH" envDefault:"data/ledger.db"`
	}

	Postgres struct {
		Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
		Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
		User            string        `env:"POSTGRES_USER" envDefault:"postgres"`
		Password        string        `env:"POSTGRES_PASSWORD" envDefault:""`
		Database        string        `env:"POSTGRES_DB" envDefault:"lucky_draw"`
		SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
		MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"20"`
		MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
		ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"30m"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
		// Префикс ключей леджера
		KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"ledger"`
	}

	Ledger struct {
		// IANA name or "Local". "Today" is resolved in this location.
		Timezone   string `env:"LEDGER_TIMEZONE" envDefault:"Local"`
		TodayLimit int    `env:"LEDGER_TODAY_LIMIT" envDefault:"50"`
		AllLimit   int    `env:"LEDGER_ALL_LIMIT" envDefault:"100"`
		OncePerDay bool   `env:"LEDGER_ONCE_PER_DAY" envDefault:"false"`
	}

	Proof struct {
		// inline, s3
		Driver    string `env:"PROOF_DRIVER" envDefault:"inline"`
		MaxBytes  int    `env:"PROOF_MAX_BYTES" envDefault:"5242880"`
		Bucket    string `env:"PROOF_BUCKET"`
		Endpoint  string `env:"PROOF_ENDPOINT"`
		Region    string `env:"PROOF_REGION" envDefault:"auto"`
		AccessKey string `env:"PROOF_ACCESS_KEY_ID"`
		SecretKey string `env:"PROOF_SECRET_ACCESS_KEY"`
		Prefix    string `env:"PROOF_PREFIX" envDefault:"proofs"`
	}

	Admin struct {
		// Empty token disables admin routes.
		Token string `env:"ADMIN_TOKEN"`
	}

	RateLimit struct {
		PerSecond float64 `env:"DRAW_RATE_PER_SECOND" envDefault:"1"`
		Burst     int     `env:"DRAW_RATE_BURST" envDefault:"3"`
	}
}

// PostgresDSN собирает строку подключения для lib/pq
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host, c.Postgres.Port, c.Postgres.User, c.Postgres.Password, c.Postgres.Database, c.Postgres.SSLMode)
}

// RedisAddr returns host:port of the ledger redis.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Location resolves the ledger timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Ledger.Timezone == "" || c.Ledger.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Ledger.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_TIMEZONE %q: %w", c.Ledger.Timezone, err)
	}
	return loc, nil
}

// Load reads environment variables (and .env when present) into Config.
func Load() (*Config, error) {
	// .env может отсутствовать: в production переменные задаются напрямую
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverMemory, StoreDriverSQLite, StoreDriverPostgres, StoreDriverRedis:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Proof.Driver {
	case ProofDriverInline:
	case ProofDriverS3:
		if c.Proof.Bucket == "" {
			return fmt.Errorf("PROOF_BUCKET is required for the s3 proof driver")
		}
	default:
		return fmt.Errorf("unknown PROOF_DRIVER %q", c.Proof.Driver)
	}
	if c.Ledger.TodayLimit <= 0 || c.Ledger.AllLimit <= 0 {
		return fmt.Errorf("ledger limits must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
