package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port          string
	DatabasePath  string
	MigrationsDir string
	LogLevel      string
	BaseCurrency  string

	// Runtime modes
	DemoMode  bool
	DebugMode bool

	// Application directories
	DataDir   string
	ConfigDir string
	LogsDir   string
	CacheDir  string

	// Background refresh
	UpdateIntervalMinutes int

	// Security settings
	SessionSecret     string
	SessionExpiry     time.Duration
	CredentialKeyPath string

	// Broker configuration override file
	BrokersConfigPath string

	// Frontend URL for reference (CORS, redirects)
	FrontendBaseURL string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
// It centralizes all configuration logic for the application.
func LoadConfig() {
	// 1. Try loading from the current directory (standard behavior)
	errEnv := godotenv.Load()

	// 2. If not found, try loading from the parent directory (common when running from /backend)
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables (expected in production).")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	dataDir := getEnv("STONKS_OVERWATCH_DATA_DIR", defaultAppDir("data"))
	configDir := getEnv("STONKS_OVERWATCH_CONFIG_DIR", defaultAppDir("config"))
	logsDir := getEnv("STONKS_OVERWATCH_LOGS_DIR", defaultAppDir("logs"))
	cacheDir := getEnv("STONKS_OVERWATCH_CACHE_DIR", defaultAppDir("cache"))

	for _, dir := range []string{dataDir, configDir, logsDir, cacheDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			log.Printf("Warning: could not create application directory %s: %v", dir, err)
		}
	}

	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" {
		log.Println("WARNING: SESSION_SECRET not set; sessions will not survive restarts.")
	}

	Cfg = &AppConfig{
		// Core
		Port:          getEnv("PORT", "8080"),
		DatabasePath:  getEnv("DATABASE_PATH", filepath.Join(dataDir, "stonksoverwatch.db")),
		MigrationsDir: getEnv("MIGRATIONS_DIR", filepath.Join("db", "migrations")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		BaseCurrency:  strings.ToUpper(getEnv("BASE_CURRENCY", "EUR")),

		// Modes
		DemoMode:  getEnvAsBool("DEMO_MODE", false),
		DebugMode: getEnvAsBool("DEBUG_MODE", false),

		// Directories
		DataDir:   dataDir,
		ConfigDir: configDir,
		LogsDir:   logsDir,
		CacheDir:  cacheDir,

		// Refresh
		UpdateIntervalMinutes: getEnvAsInt("UPDATE_INTERVAL_MINUTES", 60),

		// Security
		SessionSecret:     sessionSecret,
		SessionExpiry:     getEnvAsDuration("SESSION_EXPIRY", 24*time.Hour),
		CredentialKeyPath: getEnv("CREDENTIAL_KEY_PATH", filepath.Join(dataDir, "secret.key")),

		// Broker configuration
		BrokersConfigPath: getEnv("BROKERS_CONFIG_PATH", filepath.Join(configDir, "brokers.json")),

		// URLs
		FrontendBaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, BaseCurrency=%s, DemoMode=%t",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.BaseCurrency, Cfg.DemoMode)
}

// defaultAppDir returns the default location for an application directory,
// rooted in the user's home directory.
func defaultAppDir(kind string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".stonks-overwatch", kind)
	}
	return filepath.Join(home, ".stonks-overwatch", kind)
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a fallback.
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
