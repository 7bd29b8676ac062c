package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode       string
	Port          string
	LogLevel      string
	PublicBaseURL string
	Database      DatabaseConfig
	JWT           JWTConfig
	Cookie        CookieConfig
	Redis         RedisConfig
	S3            S3Config
	Cron          CronConfig
	Seed          SeedConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds auth cookie attributes
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// RedisConfig holds the rate limiter store configuration.
// An empty Addr keeps the limiter in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// S3Config holds blob store configuration for uploaded images.
// An empty Bucket disables uploads.
type S3Config struct {
	Region         string
	Bucket         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	PublicBaseURL  string
	ForcePathStyle bool
}

// CronConfig holds scheduled job configuration
type CronConfig struct {
	Enabled          bool
	OverdueScanSpec  string
	TokenPurgeSpec   string
	// RevokedTokenDays keeps revoked refresh tokens for replay detection
	RevokedTokenDays int
}

// SeedConfig holds the bootstrap admin account
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional; production injects environment variables directly
	_ = godotenv.Load()

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:       appMode,
		Port:          getEnv("PORT", "3000"),
		LogLevel:      getEnv("LOG_LEVEL", defaultLogLevel(appMode)),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		Database:      loadDatabaseConfig(appMode),
		JWT:           loadJWTConfig(appMode),
		Cookie:        loadCookieConfig(appMode),
		Redis:         loadRedisConfig(),
		S3:            loadS3Config(),
		Cron:          loadCronConfig(),
		Seed: SeedConfig{
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
		},
	}

	if config.Database.Driver != "mysql" && config.Database.Driver != "postgres" {
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'postgres')", config.Database.Driver)
	}
	if config.IsProd() && (config.JWT.Secret == defaultJWTSecret || config.JWT.RefreshSecret == defaultRefreshSecret) {
		return nil, fmt.Errorf("JWT secrets must be set in prod mode")
	}

	// Set global config
	AppConfig = config
	return config, nil
}

func defaultLogLevel(mode string) string {
	if mode == "prod" {
		return "info"
	}
	return "debug"
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)
	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))

	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "quest_alumni"),
		SSLMode:  getEnv(prefix+"DB_SSLMODE", "disable"),
	}
}

const (
	defaultJWTSecret     = "default_secret"
	defaultRefreshSecret = "default_refresh_secret"
)

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", defaultRefreshSecret),
		AccessTokenMins:  getEnvInt("ACCESS_TOKEN_MINUTES", 15),
		RefreshTokenDays: getEnvInt("REFRESH_TOKEN_DAYS", 7),
	}
}

func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)
	return CookieConfig{
		Secure:   getEnvBool(prefix+"COOKIE_SECURE", mode == "prod"),
		SameSite: getEnv(prefix+"COOKIE_SAMESITE", "Lax"),
		Domain:   getEnv(prefix+"COOKIE_DOMAIN", ""),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

func loadS3Config() S3Config {
	return S3Config{
		Region:         getEnv("S3_REGION", "us-east-1"),
		Bucket:         getEnv("S3_BUCKET", ""),
		Endpoint:       getEnv("S3_ENDPOINT", ""),
		AccessKey:      getEnv("S3_ACCESS_KEY", ""),
		SecretKey:      getEnv("S3_SECRET_KEY", ""),
		PublicBaseURL:  strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		ForcePathStyle: getEnvBool("S3_FORCE_PATH_STYLE", false),
	}
}

func loadCronConfig() CronConfig {
	return CronConfig{
		Enabled:          getEnvBool("CRON_ENABLED", true),
		OverdueScanSpec:  getEnv("CRON_OVERDUE_SCAN", "0 6 * * *"),
		TokenPurgeSpec:   getEnv("CRON_TOKEN_PURGE", "30 3 * * *"),
		RevokedTokenDays: getEnvInt("CRON_REVOKED_TOKEN_DAYS", 7),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return c.PublicBaseURL
	}
	return origins
}
