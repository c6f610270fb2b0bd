package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tendant/simple-case/pkg/simplecase"
	"github.com/tendant/simple-case/pkg/simplecase/metrics"
	"github.com/tendant/simple-case/pkg/simplecase/repo/cache"
	"github.com/tendant/simple-case/pkg/simplecase/repo/memory"
	repopg "github.com/tendant/simple-case/pkg/simplecase/repo/postgres"
	"github.com/tendant/simple-case/pkg/simplecase/repo/sqlite"
	fsstorage "github.com/tendant/simple-case/pkg/simplecase/storage/fs"
	memorystorage "github.com/tendant/simple-case/pkg/simplecase/storage/memory"
	s3storage "github.com/tendant/simple-case/pkg/simplecase/storage/s3"
)

// Database types
const (
	DatabaseMemory   = "memory"
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// Storage types
const (
	StorageMemory = "memory"
	StorageFS     = "fs"
	StorageS3     = "s3"
)

// Option applies configuration to a CaseConfig instance.
type Option func(*CaseConfig) error

// Load constructs a CaseConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*CaseConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() CaseConfig {
	return CaseConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: DatabaseMemory,
		Storage: StorageConfig{
			Type:   StorageMemory,
			Config: map[string]interface{}{},
		},
	}
}

// CaseConfig describes how to open a case and serve it
type CaseConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "sqlite", "postgres"
	DBSchema     string // Postgres schema to use; empty keeps the server default

	// RowCacheSize enables an LRU of object rows in front of the database
	// when positive.
	RowCacheSize int

	// Storage holds the blob store for derived file bytes
	Storage StorageConfig

	// Server options
	EnableMetrics bool
	JWTSecret     string
}

// StorageConfig represents configuration for the blob store
type StorageConfig struct {
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// Validate validates the case configuration
func (c *CaseConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case DatabaseMemory:
	case DatabaseSQLite, DatabasePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
		}
	default:
		return errors.New("database_type must be 'memory', 'sqlite' or 'postgres'")
	}

	if c.RowCacheSize < 0 {
		return fmt.Errorf("row cache size must not be negative, got: %d", c.RowCacheSize)
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageFS:
		if getString(c.Storage.Config, "base_dir", "") == "" {
			return errors.New("fs storage requires base_dir")
		}
	case StorageS3:
		if getString(c.Storage.Config, "bucket", "") == "" {
			return errors.New("s3 storage requires bucket")
		}
	default:
		return fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}

	return nil
}

// BuildCase opens a case from the configuration. Metrics are registered
// with reg when EnableMetrics is set; reg may be nil otherwise.
func (c *CaseConfig) BuildCase(ctx context.Context, logger *slog.Logger, reg prometheus.Registerer) (*simplecase.Case, error) {
	if logger == nil {
		logger = slog.Default()
	}
	options := []simplecase.Option{simplecase.WithLogger(logger)}

	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	options = append(options, simplecase.WithRepository(repo))

	store, err := c.buildStorageBackend(ctx)
	if err != nil {
		closeRepository(repo)
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.Storage.Type, err)
	}
	options = append(options, simplecase.WithBlobStore(store))

	if c.EnableMetrics {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		options = append(options, simplecase.WithMetrics(metrics.New(reg)))
	}

	return simplecase.Open(options...)
}

// buildRepository creates a Repository based on the configuration
func (c *CaseConfig) buildRepository(ctx context.Context) (simplecase.Repository, error) {
	var repo simplecase.Repository
	switch c.DatabaseType {
	case DatabaseMemory:
		repo = memory.New()

	case DatabaseSQLite:
		r, err := sqlite.Open(sqlitePath(c.DatabaseURL))
		if err != nil {
			return nil, err
		}
		repo = r

	case DatabasePostgres:
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		if schema := c.DBSchema; schema != "" {
			cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
				_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
				return err
			}
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		r := repopg.NewWithPool(pool)
		if err := r.EnsureSchema(ctx); err != nil {
			_ = r.Close()
			return nil, err
		}
		repo = r

	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	if c.RowCacheSize > 0 {
		cached, err := cache.New(repo, c.RowCacheSize)
		if err != nil {
			closeRepository(repo)
			return nil, err
		}
		return cached, nil
	}
	return repo, nil
}

// buildStorageBackend creates a BlobStore based on the storage configuration
func (c *CaseConfig) buildStorageBackend(ctx context.Context) (simplecase.BlobStore, error) {
	config := c.Storage.Config
	switch c.Storage.Type {
	case StorageMemory:
		return memorystorage.New(), nil

	case StorageFS:
		return fsstorage.New(fsstorage.Config{
			BaseDir:   getString(config, "base_dir", "./data/storage"),
			URLPrefix: getString(config, "url_prefix", ""),
		})

	case StorageS3:
		return s3storage.New(ctx, s3storage.Config{
			Region:                 getString(config, "region", "us-east-1"),
			Bucket:                 getString(config, "bucket", ""),
			Prefix:                 getString(config, "prefix", ""),
			AccessKeyID:            getString(config, "access_key_id", ""),
			SecretAccessKey:        getString(config, "secret_access_key", ""),
			Endpoint:               getString(config, "endpoint", ""),
			UsePathStyle:           getBool(config, "use_path_style", false),
			PresignDuration:        getInt(config, "presign_duration", 3600),
			EnableSSE:              getBool(config, "enable_sse", false),
			SSEAlgorithm:           getString(config, "sse_algorithm", "AES256"),
			SSEKMSKeyID:            getString(config, "sse_kms_key_id", ""),
			CreateBucketIfNotExist: getBool(config, "create_bucket_if_not_exist", false),
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}
}

// sqlitePath strips the URL scheme from a sqlite DATABASE_URL.
func sqlitePath(databaseURL string) string {
	for _, prefix := range []string{"sqlite://", "sqlite:", "file:"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}

func closeRepository(repo simplecase.Repository) {
	if closer, ok := repo.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}

func getInt(config map[string]interface{}, key string, defaultValue int) int {
	if value, exists := config[key]; exists {
		if i, ok := value.(int); ok {
			return i
		}
		if str, ok := value.(string); ok {
			if i, err := strconv.Atoi(str); err == nil {
				return i
			}
		}
		if f, ok := value.(float64); ok {
			return int(f)
		}
	}
	return defaultValue
}
