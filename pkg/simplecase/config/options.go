package config

import (
	"fmt"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *CaseConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *CaseConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *CaseConfig) error {
		switch dbType {
		case DatabaseMemory:
		case DatabaseSQLite, DatabasePostgres:
			if url == "" {
				return fmt.Errorf("database URL is required for %s", dbType)
			}
		default:
			return fmt.Errorf("database type must be 'memory', 'sqlite' or 'postgres', got: %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *CaseConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithRowCache keeps up to size object rows in memory
func WithRowCache(size int) Option {
	return func(c *CaseConfig) error {
		if size < 0 {
			return fmt.Errorf("row cache size must not be negative, got: %d", size)
		}
		c.RowCacheSize = size
		return nil
	}
}

// WithMemoryStorage keeps derived file bytes in memory
func WithMemoryStorage() Option {
	return func(c *CaseConfig) error {
		c.Storage = StorageConfig{Type: StorageMemory, Config: map[string]interface{}{}}
		return nil
	}
}

// WithFilesystemStorage keeps derived file bytes under baseDir
func WithFilesystemStorage(baseDir, urlPrefix string) Option {
	return func(c *CaseConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		config := map[string]interface{}{"base_dir": baseDir}
		if urlPrefix != "" {
			config["url_prefix"] = urlPrefix
		}
		c.Storage = StorageConfig{Type: StorageFS, Config: config}
		return nil
	}
}

// WithS3Storage keeps derived file bytes in an S3 bucket under prefix
func WithS3Storage(bucket, region, prefix string) Option {
	return func(c *CaseConfig) error {
		if bucket == "" {
			return fmt.Errorf("s3 bucket cannot be empty")
		}
		if region == "" {
			region = "us-east-1"
		}
		c.Storage = StorageConfig{
			Type: StorageS3,
			Config: map[string]interface{}{
				"bucket": bucket,
				"region": region,
				"prefix": prefix,
			},
		}
		return nil
	}
}

// WithS3Endpoint points the S3 storage at an S3-compatible service such as MinIO
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *CaseConfig) error {
		if c.Storage.Type != StorageS3 {
			return fmt.Errorf("s3 endpoint requires s3 storage, got: %s", c.Storage.Type)
		}
		c.Storage.Config["endpoint"] = endpoint
		c.Storage.Config["use_path_style"] = usePathStyle
		return nil
	}
}

// WithMetrics enables Prometheus metrics
func WithMetrics(enabled bool) Option {
	return func(c *CaseConfig) error {
		c.EnableMetrics = enabled
		return nil
	}
}

// WithJWTSecret requires HS256 bearer tokens signed with secret on the API
func WithJWTSecret(secret string) Option {
	return func(c *CaseConfig) error {
		c.JWTSecret = secret
		return nil
	}
}
