package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort   string
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	AWSRegion     string
	AvatarBucket  string
	AvatarBaseURL string

	ParentTokenSecret string
	ParentTokenTTL    time.Duration

	NotifyFromEmail string
	NotifyFromName  string

	AvatarRetryInterval time.Duration
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:          getEnv("PORT", "8080"),
		DatabaseType:        getEnv("DB_TYPE", "sqlite"),
		DatabasePath:        getEnv("DB_PATH", "./kidpoints.db"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AvatarBucket:        os.Getenv("AVATAR_BUCKET"),
		AvatarBaseURL:       os.Getenv("AVATAR_BASE_URL"),
		ParentTokenSecret:   getEnv("PARENT_TOKEN_SECRET", "dev-only-secret"),
		ParentTokenTTL:      getDuration("PARENT_TOKEN_TTL", 30*time.Minute),
		NotifyFromEmail:     os.Getenv("SES_FROM_EMAIL"),
		NotifyFromName:      getEnv("SES_FROM_NAME", "KidPoints"),
		AvatarRetryInterval: getDuration("AVATAR_RETRY_INTERVAL", 15*time.Minute),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a duration environment variable or returns a default
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
