package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string
	DatabaseURL string
	TablePrefix string
	// Storage holds object-store settings, loadable from a YAML file
	Storage StorageConfig
	// Cleanup holds expired-grant/share sweep settings
	Cleanup CleanupConfig
	// Debug enables verbose logging
	Debug bool
}

// StorageConfig configures the MinIO/S3 object store backing physical files
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// CleanupConfig configures the periodic expired-grant/share sweep
type CleanupConfig struct {
	Interval time.Duration `yaml:"interval"`
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		Storage: StorageConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "media"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Cleanup: CleanupConfig{
			Interval: time.Hour,
		},
		// Debug defaults to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}

	// Optional YAML overlay for storage/cleanup settings
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load config file %s: %v\n", path, err)
		}
	}

	return cfg
}

// mergeFile overlays storage/cleanup settings from a YAML file
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file struct {
		Storage *StorageConfig `yaml:"storage"`
		Cleanup *CleanupConfig `yaml:"cleanup"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	if file.Storage != nil {
		c.Storage = *file.Storage
	}
	if file.Cleanup != nil && file.Cleanup.Interval > 0 {
		c.Cleanup.Interval = file.Cleanup.Interval
	}
	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
