package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Roots: []StorageRootConfig{
				{Name: "local", Driver: "local", LocalRoot: "./uploads"},
			},
			TransformConcurrency: 4,
			MaxDimension:         6000,
			AssetCacheTTL:        30 * time.Minute,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_InvalidConcurrency(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.TransformConcurrency = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_InvalidMaxDimension(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.MaxDimension = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_NoStorageRoots(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Roots = nil
	assert.Error(t, cfg.Validate())
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Roots[0].Driver = "ftp"
	assert.Error(t, cfg.Validate())
}

func TestValidate_S3RequiresBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Roots[0] = StorageRootConfig{Name: "media", Driver: "s3"}
	assert.Error(t, cfg.Validate())

	cfg.Storage.Roots[0].BucketName = "media-bucket"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_LocalRequiresRoot(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Roots[0].LocalRoot = ""
	assert.Error(t, cfg.Validate())
}
