package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultSourceURL = "https://en.wikipedia.org/wiki/List_of_Spotify_streaming_records"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
	DefaultTableClass = "wikitable"
	DefaultDBPath     = "spotify_streaming_records.db"
	DefaultTableName  = "most_streamed_songs"
)

// Fetch modes.
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Config holds all application configuration loaded from environment variables.
// Every default reproduces the plain run: one GET, first wikitable, local SQLite file.
type Config struct {
	SourceURL  string
	UserAgent  string
	TableClass string

	FetchMode   string
	ChromeBin   string
	MaxRetries  int
	HTTPTimeout time.Duration

	DBPath     string
	TableName  string
	RawCSVPath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	PrintInsights bool
	LogLevel      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		SourceURL:  getEnv("SOURCE_URL", DefaultSourceURL),
		UserAgent:  getEnv("USER_AGENT", DefaultUserAgent),
		TableClass: getEnv("TABLE_CLASS", DefaultTableClass),

		FetchMode:   strings.ToLower(getEnv("FETCH_MODE", FetchModeHTTP)),
		ChromeBin:   getEnv("CHROME_BIN", ""),
		MaxRetries:  getEnvInt("MAX_RETRIES", 1),
		HTTPTimeout: time.Duration(getEnvInt("HTTP_TIMEOUT_MS", 0)) * time.Millisecond,

		DBPath:     getEnv("DB_PATH", DefaultDBPath),
		TableName:  getEnv("TABLE_NAME", DefaultTableName),
		RawCSVPath: getEnv("RAW_CSV_PATH", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "spotify_records"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		PrintInsights: getEnvBool("PRINT_INSIGHTS", false),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// PostgresEnabled reports whether the Postgres mirror is configured.
func (c *Config) PostgresEnabled() bool {
	return c.PostgresHost != ""
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
