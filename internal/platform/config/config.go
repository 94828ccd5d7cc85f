package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full service configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Storage  StorageConfig  `json:"storage"`
	Assets   AssetsConfig   `json:"assets"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	BaseRoute string `json:"baseRoute"`
	WebDomain string `json:"webDomain"`
	Debug     bool   `json:"debug"`

	// ServiceKey is the shared key internal callers present to skip the
	// external authorization check. Empty disables privileged access.
	ServiceKey string `json:"-"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Postgres PostgreSQLConfig `json:"postgres"`
}

// PostgreSQLConfig holds PostgreSQL-specific configuration
type PostgreSQLConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	Database        string        `json:"database"`
	SSLMode         string        `json:"sslMode"`
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
}

// StorageRootConfig describes one storage root (bucket or directory).
// Driver selects the adapter: "s3", "r2", "alioss" or "local".
type StorageRootConfig struct {
	Name            string `json:"name"`
	Driver          string `json:"driver"`
	Endpoint        string `json:"endpoint"`
	Region          string `json:"region"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	BucketName      string `json:"bucketName"`
	PublicURL       string `json:"publicUrl"`
	LocalRoot       string `json:"localRoot"`
}

// StorageConfig holds storage and transformation configuration
type StorageConfig struct {
	Roots []StorageRootConfig `json:"roots"`

	// TransformConcurrency caps how many image transforms may run at once
	// across the whole process.
	TransformConcurrency int64 `json:"transformConcurrency"`

	// MaxDimension is the largest source width/height (in pixels) the
	// transformer will accept.
	MaxDimension int `json:"maxDimension"`

	// AssetCacheTTL controls the Cache-Control max-age on served assets.
	AssetCacheTTL time.Duration `json:"assetCacheTtl"`
}

// AssetsConfig holds the configured public system assets.
// These are servable without an authorization check.
type AssetsConfig struct {
	PublicLogoID       string `json:"publicLogoId"`
	PublicBackgroundID string `json:"publicBackgroundId"`
	PublicForegroundID string `json:"publicForegroundId"`
}

// LoadFromEnv loads configuration from the environment.
// It follows a clear precedence:
// 1. Explicit Environment Variables (e.g., set in the shell or by CI)
// 2. Values from the .env file (if it exists)
// 3. Hardcoded defaults (if applicable)
func LoadFromEnv() (*Config, error) {
	// godotenv.Load() reads the .env file and loads its values into the
	// environment for this process only if they are not already set, which
	// automatically creates the correct precedence.
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	var loadErr error
	for _, envPath := range envPaths {
		loadErr = godotenv.Load(envPath)
		if loadErr == nil {
			break
		}
	}

	if loadErr != nil {
		// It's not an error if the .env file doesn't exist.
		fmt.Println("INFO: .env file not found, using environment variables and defaults.")
	}

	config := &Config{
		Server: ServerConfig{
			Host:       getEnvOrDefault("HOST", "localhost"),
			Port:       getEnvAsInt("SERVER_PORT", 8080),
			BaseRoute:  getEnvOrDefault("BASE_ROUTE", ""),
			WebDomain:  getEnvOrDefault("WEB_DOMAIN", "http://localhost:3000"),
			Debug:      getEnvAsBool("DEBUG", false),
			ServiceKey: getEnvOrDefault("SERVICE_KEY", ""),
		},
		Database: DatabaseConfig{
			Postgres: PostgreSQLConfig{
				Host:            getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:            getEnvAsInt("POSTGRES_PORT", 5432),
				Username:        getEnvOrDefault("POSTGRES_USERNAME", ""),
				Password:        getEnvOrDefault("POSTGRES_PASSWORD", ""),
				Database:        getEnvOrDefault("POSTGRES_DATABASE", "assetd"),
				SSLMode:         getEnvOrDefault("POSTGRES_SSL_MODE", "disable"),
				MaxOpenConns:    getEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    getEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 25),
				ConnMaxLifetime: time.Duration(getEnvAsInt("POSTGRES_CONN_MAX_LIFETIME", 300)) * time.Second,
			},
		},
		Storage: StorageConfig{
			Roots: []StorageRootConfig{
				{
					Name:            getEnvOrDefault("STORAGE_ROOT_NAME", "local"),
					Driver:          getEnvOrDefault("STORAGE_DRIVER", "local"),
					Endpoint:        getEnvOrDefault("STORAGE_ENDPOINT", ""),
					Region:          getEnvOrDefault("STORAGE_REGION", "auto"),
					AccessKeyID:     getEnvOrDefault("STORAGE_ACCESS_KEY_ID", ""),
					SecretAccessKey: getEnvOrDefault("STORAGE_SECRET_ACCESS_KEY", ""),
					BucketName:      getEnvOrDefault("STORAGE_BUCKET_NAME", ""),
					PublicURL:       getEnvOrDefault("STORAGE_PUBLIC_URL", ""),
					LocalRoot:       getEnvOrDefault("STORAGE_LOCAL_ROOT", "./uploads"),
				},
			},
			TransformConcurrency: getEnvAsInt64("ASSETS_TRANSFORM_CONCURRENCY", 4),
			MaxDimension:         getEnvAsInt("ASSETS_TRANSFORM_MAX_DIMENSION", 6000),
			AssetCacheTTL:        getEnvAsDuration("ASSETS_CACHE_TTL", 30*time.Minute),
		},
		Assets: AssetsConfig{
			PublicLogoID:       getEnvOrDefault("ASSETS_PUBLIC_LOGO_ID", ""),
			PublicBackgroundID: getEnvOrDefault("ASSETS_PUBLIC_BACKGROUND_ID", ""),
			PublicForegroundID: getEnvOrDefault("ASSETS_PUBLIC_FOREGROUND_ID", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks the configuration for invalid or missing values
func (c *Config) Validate() error {
	var errs []string

	if c.Storage.TransformConcurrency < 1 {
		errs = append(errs, "ASSETS_TRANSFORM_CONCURRENCY must be at least 1")
	}
	if c.Storage.MaxDimension < 1 {
		errs = append(errs, "ASSETS_TRANSFORM_MAX_DIMENSION must be at least 1")
	}
	if len(c.Storage.Roots) == 0 {
		errs = append(errs, "at least one storage root is required")
	}
	for _, root := range c.Storage.Roots {
		switch root.Driver {
		case "local":
			if root.LocalRoot == "" {
				errs = append(errs, fmt.Sprintf("storage root %q: STORAGE_LOCAL_ROOT is required for the local driver", root.Name))
			}
		case "s3", "r2", "alioss":
			if root.BucketName == "" {
				errs = append(errs, fmt.Sprintf("storage root %q: STORAGE_BUCKET_NAME is required", root.Name))
			}
		default:
			errs = append(errs, fmt.Sprintf("storage root %q: unknown driver %q", root.Name, root.Driver))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
