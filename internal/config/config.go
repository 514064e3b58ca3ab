// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"churn-prediction-engine/internal/models"
)

// Model artifact sources.
const (
	ModelSourceFile     = "file"
	ModelSourceS3       = "s3"
	ModelSourcePostgres = "postgres"
)

// DefaultThreshold mirrors decision.DefaultThreshold.
const DefaultThreshold = 0.4

// Config holds all configuration values for the application.
type Config struct {
	// Model
	ModelSource    string
	ModelPath      string
	ModelName      string
	ModelVersion   string
	ChurnThreshold float64

	// AWS
	AWSRegion  string
	S3Bucket   string
	ModelS3Key string

	// Database (model registry)
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Application
	Port     string
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	threshold, err := getEnvFloat("CHURN_THRESHOLD", DefaultThreshold)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		// Model
		ModelSource:    getEnv("MODEL_SOURCE", ModelSourceFile),
		ModelPath:      getEnv("MODEL_PATH", "artifacts/churn_model.json"),
		ModelName:      getEnv("MODEL_NAME", "bank-churn"),
		ModelVersion:   getEnv("MODEL_VERSION", ""),
		ChurnThreshold: threshold,

		// AWS
		AWSRegion:  getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:   getEnv("MODEL_S3_BUCKET", getEnv("S3_BUCKET", "churn-model-artifacts-dev")),
		ModelS3Key: getEnv("MODEL_S3_KEY", "models/churn_model.json"),

		// Database
		DBHost:     getEnv("DB_HOST", getEnv("CHURN_DB_HOST", "localhost")),
		DBPort:     getEnvInt("DB_PORT", getEnvInt("CHURN_DB_PORT", 5432)),
		DBName:     getEnv("DB_NAME", getEnv("CHURN_DB_NAME", "churn_models")),
		DBUser:     getEnv("DB_USER", getEnv("CHURN_DB_USER", "postgres")),
		DBPassword: getEnv("DB_PASSWORD", getEnv("CHURN_DB_PASSWORD", "")),

		// Application
		Port:     getEnv("PORT", "8080"),
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.ModelSource {
	case ModelSourceFile, ModelSourceS3, ModelSourcePostgres:
	default:
		return fmt.Errorf("%w: %q", models.ErrUnknownModelSource, c.ModelSource)
	}

	if c.ChurnThreshold < 0 || c.ChurnThreshold > 1 {
		return fmt.Errorf("%w: got %v", models.ErrInvalidThreshold, c.ChurnThreshold)
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as float64. Unlike
// getEnvInt a malformed value is an error, since a silently defaulted
// threshold changes every decision.
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}
