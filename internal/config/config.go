package config

import (
	"os"
	"strconv"
	"time"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether object storage has been configured at all.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// StoreConfig selects the proposal store backend.
type StoreConfig struct {
	Driver     string
	SQLitePath string
}

// CatalogConfig controls how the proposal catalog is seeded and how the
// in-memory store simulates latency.
type CatalogConfig struct {
	SeedFile      string
	SeedSnapshot  string
	ListLatencyMS int
	GetLatencyMS  int
	VoteLatencyMS int
}

// SnapshotConfig controls periodic catalog exports to object storage.
type SnapshotConfig struct {
	Interval time.Duration
	Prefix   string
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level  string
	Output string // stdout, stderr or file
	File   string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Store    StoreConfig
	Catalog  CatalogConfig
	Snapshot SnapshotConfig
	Log      LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Store: StoreConfig{
			Driver:     getEnv("STORE_DRIVER", DriverMemory),
			SQLitePath: getEnv("SQLITE_PATH", "fundvote.db"),
		},
		Catalog: CatalogConfig{
			SeedFile:      getEnv("CATALOG_SEED_FILE", ""),
			SeedSnapshot:  getEnv("CATALOG_SEED_SNAPSHOT", ""),
			ListLatencyMS: getEnvInt("CATALOG_LIST_LATENCY_MS", 500),
			GetLatencyMS:  getEnvInt("CATALOG_GET_LATENCY_MS", 300),
			VoteLatencyMS: getEnvInt("CATALOG_VOTE_LATENCY_MS", 300),
		},
		Snapshot: SnapshotConfig{
			Interval: getEnvDuration("SNAPSHOT_INTERVAL", 0),
			Prefix:   getEnv("SNAPSHOT_PREFIX", "snapshots"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
			File:   getEnv("LOG_FILE", "fundvote.log"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
