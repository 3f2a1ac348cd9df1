package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env       string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	CRM       CRMConfig
	Projects  ProjectConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// CRMConfig holds the external CRM connection settings.
// BaseURL is the browser-facing URL that stored identifiers are appended to.
type CRMConfig struct {
	BaseURL      string
	GatewayURL   string
	Database     string
	Username     string
	Password     string
	SyncInterval int // minutes
}

// ProjectConfig controls project identifier generation
type ProjectConfig struct {
	IdentifierPrefix string
	IdentifierStart  int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Env:       getEnv("LIMS_ENV", "development"),
		Port:      getEnv("PORT", "8000"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "lims"),
		},
		CRM: CRMConfig{
			BaseURL:      getEnv("CRM_BASE_URL", "https://crm.example.com"),
			GatewayURL:   os.Getenv("CRM_GATEWAY_URL"),
			Database:     os.Getenv("CRM_DATABASE"),
			Username:     os.Getenv("CRM_USERNAME"),
			Password:     os.Getenv("CRM_PASSWORD"),
			SyncInterval: getEnvInt("CRM_SYNC_INTERVAL", 15),
		},
		Projects: ProjectConfig{
			IdentifierPrefix: getEnv("PROJECT_IDENTIFIER_PREFIX", "GM"),
			IdentifierStart:  getEnvInt("PROJECT_IDENTIFIER_START", 100),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
