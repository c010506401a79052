// Package configs provides application configuration loaded from environment variables.
// All configuration is externalized via environment variables for 12-factor app compliance.
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Dataset sources.
const (
	SourceCSV        = "csv"
	SourceClickHouse = "clickhouse"
)

// AppConfig holds all application configuration.
// Load it once at startup using AppLoad().
type AppConfig struct {
	// Dataset describes where the order lines come from.
	Dataset DatasetConfig

	// Server contains HTTP API settings.
	Server ServerConfig

	// DBDSN is the ClickHouse connection string.
	DBDSN string

	// Import contains settings for the CSV-to-ClickHouse importer.
	Import ImportConfig

	// LogLevel is a logrus level name (e.g., "info", "debug").
	LogLevel string
}

// DatasetConfig holds dataset loading settings.
type DatasetConfig struct {
	// Source is "csv" or "clickhouse".
	Source string

	// Path is the merged CSV file.
	Path string

	// Delimiter is the CSV field separator.
	Delimiter rune

	// MalformedRows is "fail" (abort the load) or "drop" (skip the row).
	MalformedRows string

	// Preload loads the dataset at startup and exits on failure.
	Preload bool
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	// Port is the listen port (e.g., "8080").
	Port string

	// Debug puts gin in debug mode.
	Debug bool

	// RateLimitRPS is the sustained requests per second across all clients.
	RateLimitRPS float64

	// RateLimitBurst is the token bucket size.
	RateLimitBurst int

	// SessionTTL is how long an idle dashboard session is kept.
	SessionTTL time.Duration
}

// ImportConfig holds settings for batch inserts.
type ImportConfig struct {
	// BatchSize is the maximum number of order lines per insert.
	BatchSize int
}

// getDatabaseDSN constructs the ClickHouse DSN from environment variables.
func getDatabaseDSN() string {
	dbUser := getEnv("CLICKHOUSE_USER", "default")
	dbPassword := getEnv("CLICKHOUSE_PASSWORD", "")
	dbHost := getEnv("CLICKHOUSE_HOST", "localhost")
	dbPort := getEnv("CLICKHOUSE_TCP_PORT", "9000")
	dbName := getEnv("CLICKHOUSE_DB", "default")

	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%s/%s?dial_timeout=10s&read_timeout=20s",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

// getDatasetConfig loads dataset settings from environment.
func getDatasetConfig() DatasetConfig {
	source := strings.ToLower(getEnv("DATASET_SOURCE", SourceCSV))
	if source != SourceClickHouse {
		source = SourceCSV
	}

	delimiter := ','
	if d := getEnv("DATASET_DELIMITER", ""); d != "" {
		if d == `\t` {
			delimiter = '\t'
		} else {
			delimiter = []rune(d)[0]
		}
	}

	return DatasetConfig{
		Source:        source,
		Path:          getEnv("DATASET_PATH", "merged_df.csv"),
		Delimiter:     delimiter,
		MalformedRows: getEnv("MALFORMED_ROWS", "fail"),
		Preload:       getEnvBool("DATASET_PRELOAD", true),
	}
}

// AppLoad loads all application configuration from environment variables.
// It attempts to load a .env file first (for local development).
// Call this once at application startup.
func AppLoad() *AppConfig {
	_ = godotenv.Load() // Ignore error - .env is optional

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "20"), 64)
	if err != nil || rps <= 0 {
		rps = 20
	}

	return &AppConfig{
		Dataset: getDatasetConfig(),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Debug:          getEnvBool("DEBUG", false),
			RateLimitRPS:   rps,
			RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),
			SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)) * time.Minute,
		},
		DBDSN: getDatabaseDSN(),
		Import: ImportConfig{
			BatchSize: getEnvInt("IMPORT_BATCH_SIZE", 5000),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
