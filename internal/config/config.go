package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cashflow/internal/models"
)

// Config holds application configuration
type Config struct {
	// Server
	Port        string
	Env         string
	CORSOrigins string

	// Database
	DBDriver   string // "postgres" or "sqlite"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string // sqlite file, used when DBDriver is "sqlite"

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Exchange rates
	BaseCurrency string
	RatesURL     string
	RatesTimeout time.Duration

	// Aggregation
	AggregationParallelism int

	// Operator endpoints; empty disables them
	OpsAPIKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		// Database
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "cashflow"),
		DBPassword: getEnv("DB_PASSWORD", "cashflow"),
		DBName:     getEnv("DB_NAME", "cashflow"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "cashflow.db"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Exchange rates
		BaseCurrency: strings.ToUpper(getEnv("BASE_CURRENCY", string(models.CurrencyCAD))),
		RatesURL:     getEnv("RATES_URL", "https://api.exchangerate-api.com/v4/latest"),

		OpsAPIKey: os.Getenv("OPS_API_KEY"),
	}

	if config.DBDriver != "postgres" && config.DBDriver != "sqlite" {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: must be postgres or sqlite", config.DBDriver)
	}

	if !models.Currency(config.BaseCurrency).Valid() {
		return nil, fmt.Errorf("invalid BASE_CURRENCY %q", config.BaseCurrency)
	}

	expDur, err := parseDuration("JWT_EXPIRES_IN", getEnv("JWT_EXPIRES_IN", "168h"))
	if err != nil {
		return nil, err
	}
	config.JWTExpirationDur = expDur

	ratesTimeout, err := parseDuration("RATES_TIMEOUT", getEnv("RATES_TIMEOUT", "10s"))
	if err != nil {
		return nil, err
	}
	config.RatesTimeout = ratesTimeout

	parallelism, err := parsePositiveInt("AGGREGATION_PARALLELISM", getEnv("AGGREGATION_PARALLELISM", "4"))
	if err != nil {
		return nil, err
	}
	config.AggregationParallelism = parallelism

	return config, nil
}

// PostgresDSN returns the key/value DSN used by the gorm postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// PostgresURL returns the URL form used by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parsePositiveInt(key, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
