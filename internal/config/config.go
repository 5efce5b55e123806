package config

import (
	"os"
	"strconv"

	"maudash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Uploads UploadConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// UploadConfig holds upload storage and size settings
type UploadConfig struct {
	Dir         string
	MaxUploadMB int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  loadServerConfig(),
		Uploads: loadUploadConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadUploadConfig() UploadConfig {
	return UploadConfig{
		Dir:         getEnvOrDefault("UPLOAD_DIR", "./uploads"),
		MaxUploadMB: getEnvInt64OrDefault("MAX_UPLOAD_MB", 50),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Uploads.Dir == "" {
		return errors.ConfigInvalid("upload directory is required")
	}
	if config.Uploads.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("max upload size must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
