package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Security SecurityConfig
	Email    EmailConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	TrustedProxies []string
}

// SecurityConfig holds the lockout policies and the admin API credentials.
type SecurityConfig struct {
	AccountLockThreshold int
	AccountLockDuration  time.Duration
	IPLockThreshold      int
	IPLockDuration       time.Duration
	IPFailureWindow      time.Duration
	AdminAPIToken        string
	CleanupInterval      time.Duration
}

type EmailConfig struct {
	Enabled     bool
	AWSRegion   string
	FromAddress string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	adminToken := getEnv("ADMIN_API_TOKEN", "")
	if adminToken == "" {
		return nil, fmt.Errorf("ADMIN_API_TOKEN is required")
	}
	if err := validateAdminToken(adminToken, env); err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "authgate"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
		},
		Security: SecurityConfig{
			AccountLockThreshold: getEnvAsInt("ACCOUNT_LOCK_THRESHOLD", 5),
			AccountLockDuration:  getEnvAsDuration("ACCOUNT_LOCK_DURATION", 15*time.Minute),
			IPLockThreshold:      getEnvAsInt("IP_LOCK_THRESHOLD", 20),
			IPLockDuration:       getEnvAsDuration("IP_LOCK_DURATION", 30*time.Minute),
			IPFailureWindow:      getEnvAsDuration("IP_FAILURE_WINDOW", 10*time.Minute),
			AdminAPIToken:        adminToken,
			CleanupInterval:      getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Hour),
		},
		Email: EmailConfig{
			Enabled:     getEnvAsBool("EMAIL_ENABLED", false),
			AWSRegion:   getEnv("AWS_REGION", "ap-northeast-2"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if cfg.Security.AccountLockThreshold < 1 {
		return nil, fmt.Errorf("ACCOUNT_LOCK_THRESHOLD must be positive")
	}
	if cfg.Security.IPLockThreshold < 1 {
		return nil, fmt.Errorf("IP_LOCK_THRESHOLD must be positive")
	}

	if cfg.Email.Enabled && cfg.Email.FromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when EMAIL_ENABLED is set")
	}

	return cfg, nil
}

// validateAdminToken enforces minimum strength for the admin API token.
func validateAdminToken(token, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(token) < minLength {
		return fmt.Errorf("ADMIN_API_TOKEN must be at least %d characters in %s environment (got %d)",
			minLength, env, len(token))
	}

	weakTokens := []string{"secret", "test", "password", "changeme", "admin", "default"}
	tokenLower := strings.ToLower(token)
	for _, weak := range weakTokens {
		if tokenLower == weak {
			return fmt.Errorf("ADMIN_API_TOKEN cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
