// Package config loads server configuration from the environment and builds
// the wired service graph from it.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blogcms/blogcms/pkg/blogcms"
	"github.com/blogcms/blogcms/pkg/blogcms/assetkey"
	"github.com/blogcms/blogcms/pkg/blogcms/auth"
	repomemory "github.com/blogcms/blogcms/pkg/blogcms/repo/memory"
	repopg "github.com/blogcms/blogcms/pkg/blogcms/repo/postgres"
	fsstorage "github.com/blogcms/blogcms/pkg/blogcms/storage/fs"
	memorystorage "github.com/blogcms/blogcms/pkg/blogcms/storage/memory"
	s3storage "github.com/blogcms/blogcms/pkg/blogcms/storage/s3"
)

// ServerConfig represents server configuration for the blog service.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// Database configuration
	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"` // "memory", "postgres"
	DatabaseURL  string `env:"DATABASE_URL"`
	RunMigrate   bool   `env:"RUN_MIGRATIONS" env-default:"true"`

	// Asset storage configuration
	AssetBackend string `env:"ASSET_BACKEND" env-default:"fs"` // "memory", "fs", "s3"
	UploadDir    string `env:"UPLOAD_DIR" env-default:"./uploads"`
	PublicPrefix string `env:"PUBLIC_PREFIX" env-default:"/uploads"`

	S3 S3Config

	// Auth configuration
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" env-default:"24h"`

	// Per-operation store timeout for the content service.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" env-default:"10s"`
}

// S3Config carries the S3 asset backend settings.
type S3Config struct {
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	Bucket          string `env:"AWS_S3_BUCKET"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `env:"AWS_S3_ENDPOINT"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.AssetBackend {
	case "memory", "fs":
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required when using the s3 asset backend")
		}
	default:
		return errors.New("asset_backend must be 'memory', 'fs' or 's3'")
	}

	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}

	return nil
}

// Services is the wired service graph the server runs on.
type Services struct {
	Posts blogcms.Service
	Auth  *auth.Service

	pool *pgxpool.Pool
}

// Close releases backing resources held by the graph.
func (s *Services) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// BuildServices constructs the repositories, asset store, token issuer and
// services according to the configuration.
func (c *ServerConfig) BuildServices(ctx context.Context) (*Services, error) {
	var (
		posts blogcms.PostRepository
		users blogcms.UserRepository
		pool  *pgxpool.Pool
	)

	switch c.DatabaseType {
	case "memory":
		repo := repomemory.New()
		posts, users = repo, repo
	case "postgres":
		if c.RunMigrate {
			if err := repopg.RunMigrations(ctx, c.DatabaseURL); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		var err error
		pool, err = pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		repo := repopg.NewWithPool(pool)
		posts, users = repo, repo
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	assets, err := c.buildAssetStore()
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("failed to build asset store: %w", err)
	}

	svc, err := blogcms.New(
		blogcms.WithPostRepository(posts),
		blogcms.WithAssetStore(assets),
		blogcms.WithKeyGenerator(&assetkey.TimestampGenerator{Prefix: "blog"}),
		blogcms.WithStoreTimeout(c.StoreTimeout),
	)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("failed to build content service: %w", err)
	}

	issuer, err := auth.NewTokenIssuer([]byte(c.JWTSecret), c.TokenTTL)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("failed to build token issuer: %w", err)
	}

	return &Services{
		Posts: svc,
		Auth:  auth.NewService(users, issuer),
		pool:  pool,
	}, nil
}

// buildAssetStore creates an AssetStore based on the configuration.
func (c *ServerConfig) buildAssetStore() (blogcms.AssetStore, error) {
	switch c.AssetBackend {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.UploadDir,
			URLPrefix: c.PublicPrefix,
		})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
			UsePathStyle:    c.S3.UsePathStyle,
			URLPrefix:       c.PublicPrefix,
		})
	default:
		return nil, fmt.Errorf("unsupported asset backend: %s", c.AssetBackend)
	}
}

// IsDevelopment reports whether the server runs in development mode; the
// permissive CORS policy is only enabled then.
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}
