// Package config loads server configuration from the environment and
// assembles the storage selector and blob backend from it.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pressroom/pressroom/pkg/pressroom"
	repomem "github.com/pressroom/pressroom/pkg/pressroom/repo/memory"
	repopg "github.com/pressroom/pressroom/pkg/pressroom/repo/postgres"
	fsstorage "github.com/pressroom/pressroom/pkg/pressroom/storage/fs"
	memorystorage "github.com/pressroom/pressroom/pkg/pressroom/storage/memory"
	s3storage "github.com/pressroom/pressroom/pkg/pressroom/storage/s3"
)

// Config is the full server configuration, read from the environment.
type Config struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DB      DbConfig
	Storage StorageConfig
	Auth    AuthConfig

	// Selector tuning.
	ProbeTimeout      time.Duration `env:"PROBE_TIMEOUT" env-default:"2s"`
	MinProbeInterval  time.Duration `env:"MIN_PROBE_INTERVAL" env-default:"5s"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" env-default:"30s"`
}

// DbConfig describes the durable database. DATABASE_URL takes
// precedence over the discrete fields; leaving both Host and
// DATABASE_URL empty runs the server on volatile storage only.
type DbConfig struct {
	URL      string `env:"DATABASE_URL" env-default:""`
	Host     string `env:"PG_HOST" env-default:""`
	Port     uint16 `env:"PG_PORT" env-default:"5432"`
	Name     string `env:"PG_NAME" env-default:"pressroom_db"`
	User     string `env:"PG_USER" env-default:"pressroom"`
	Password string `env:"PG_PASSWORD" env-default:"pwd"`
}

// StorageConfig describes the blob backend for asset files.
type StorageConfig struct {
	Type    string `env:"STORAGE_TYPE" env-default:"memory"`
	BaseDir string `env:"STORAGE_FS_DIR" env-default:"./data/assets"`

	S3Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	S3Bucket          string `env:"AWS_S3_BUCKET" env-default:"pressroom-assets"`
	S3Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	S3UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	S3CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

// AuthConfig controls the admin auth middleware.
type AuthConfig struct {
	JwtSecret string `env:"JWT_SECRET" env-default:""`
	// BypassAuthInNonProd skips token checks outside production so
	// local development does not need a token mint.
	BypassAuthInNonProd bool `env:"BYPASS_AUTH_NONPROD" env-default:"true"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants that cleanenv defaults cannot express.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	switch c.Storage.Type {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("unsupported storage type %q (use memory, fs or s3)", c.Storage.Type)
	}
	if c.Storage.Type == "s3" && c.Storage.S3Bucket == "" {
		return errors.New("AWS_S3_BUCKET is required for s3 storage")
	}
	if c.DB.URL != "" && !strings.HasPrefix(c.DB.URL, "postgres://") &&
		!strings.HasPrefix(c.DB.URL, "postgresql://") {
		return fmt.Errorf("unsupported DATABASE_URL format (use postgres://...)")
	}
	if c.Production() && c.Auth.JwtSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	return nil
}

// Production reports whether the server runs in the production
// environment.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

// DatabaseURL resolves the durable DSN, or "" when no database is
// configured.
func (c *DbConfig) DatabaseURL() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Host == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

// BuildSelector assembles the storage selector: a fresh volatile store
// plus a lazy opener for the durable one. With no database configured
// the selector stays volatile for the life of the process.
func (c *Config) BuildSelector(ctx context.Context, logger *slog.Logger) (*pressroom.Selector, error) {
	opts := pressroom.SelectorOptions{
		Volatile:          repomem.New(),
		ProbeTimeout:      c.ProbeTimeout,
		MinProbeInterval:  c.MinProbeInterval,
		ReconcileInterval: c.ReconcileInterval,
		Logger:            logger,
	}

	if dsn := c.DB.DatabaseURL(); dsn != "" {
		opts.OpenDurable = func(ctx context.Context) (pressroom.Store, pressroom.Prober, error) {
			pool, err := pgxpool.New(ctx, dsn)
			if err != nil {
				return nil, nil, fmt.Errorf("create connection pool: %w", err)
			}
			return repopg.NewWithPool(pool), repopg.NewProber(pool), nil
		}
	}

	return pressroom.NewSelector(ctx, opts)
}

// BuildBlobStore assembles the configured blob backend.
func (c *Config) BuildBlobStore(ctx context.Context) (pressroom.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.Storage.BaseDir})
	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.Storage.S3Region,
			Bucket:                 c.Storage.S3Bucket,
			AccessKeyID:            c.Storage.S3AccessKeyID,
			SecretAccessKey:        c.Storage.S3SecretAccessKey,
			Endpoint:               c.Storage.S3Endpoint,
			UsePathStyle:           c.Storage.S3UsePathStyle,
			CreateBucketIfNotExist: c.Storage.S3CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}
