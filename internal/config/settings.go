package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Settings holds the configuration for the matching engine process.
type Settings struct {
	AppName       string
	ServerPort    string
	LogLevel      string
	IsDevelopment bool
	IsTest        bool

	DBConnectionString string
	DBDriver            string
	MigrationsDir       string
	DBMaxOpenConns      int
	DBMaxIdleConns      int
	DBConnMaxLifetime   time.Duration

	TokenSecret string

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Matching-engine process settings. StrictTimeLimitSeconds and
	// ExceptionTimeLimitSeconds are loaded but not merged into EngineConfig:
	// solver time limits come from models.DefaultEngineConfig plus the
	// cohort's overrides (see internal/match/models.MergeOverrides).
	StrictTimeLimitSeconds    int
	ExceptionTimeLimitSeconds int
	MaxConcurrentRuns         int
	ReadinessCacheTTL         time.Duration
	RateLimitRunsPerMinute    int

	CachePath string

	MetricsEnabled bool
	MetricsPort    string
	IsCloudMode    bool
	Version        string
}

// NewSettings initializes Settings from environment variables, falling back
// to production-sensible defaults when a variable is unset.
func NewSettings() Settings {
	isDevelopment := getEnv("IS_DEVELOPMENT", "false") == "true"
	isTest := getEnv("GO_ENV", "") == "test"

	dbConnectionString := getEnv("DB_CONNECTION_STRING", "/app/data/mentormatch.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if isTest && getEnv("DB_CONNECTION_STRING", "") == "" {
		dbConnectionString = ":memory:"
	}

	var corsOrigins []string
	if envCORS := getEnv("CORS_ALLOWED_ORIGINS", ""); envCORS != "" {
		corsOrigins = strings.Split(envCORS, ",")
		for i, origin := range corsOrigins {
			corsOrigins[i] = strings.TrimSpace(origin)
		}
	} else {
		corsOrigins = []string{"*"}
	}

	return Settings{
		AppName:             "mentormatch",
		ServerPort:          ":8080",
		LogLevel:            getEnv("LOG_LEVEL", getDefaultLogLevel(isDevelopment)),
		IsDevelopment:       isDevelopment,
		IsTest:              isTest,
		DBConnectionString:  dbConnectionString,
		DBDriver:            "sqlite",
		MigrationsDir:       "internal/storage/sqlite/migrations",
		DBMaxOpenConns:      25,
		DBMaxIdleConns:      5,
		DBConnMaxLifetime:   5 * time.Minute,
		TokenSecret:         getEnv("TOKEN_SECRET", "default-secret-key"),
		CORSAllowedOrigins:  corsOrigins,
		CORSAllowCredentials: false,

		StrictTimeLimitSeconds:    getEnvInt("STRICT_TIME_LIMIT", 5),
		ExceptionTimeLimitSeconds: getEnvInt("EXCEPTION_TIME_LIMIT", 10),
		MaxConcurrentRuns:         getEnvInt("MAX_CONCURRENT_RUNS", 4),
		ReadinessCacheTTL:         getEnvDuration("READINESS_CACHE_TTL", 30*time.Second),
		RateLimitRunsPerMinute:    getEnvInt("RATE_LIMIT_RUNS_PER_MINUTE", 10),

		CachePath: getEnv("CACHE_PATH", "./data/cache"),

		MetricsEnabled: getEnv("METRICS_ENABLED", "true") == "true",
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
		IsCloudMode:    getEnv("CLOUD_MODE", "false") == "true",
		Version:        getEnv("VERSION", "dev"),
	}
}

// NewTestSettings returns settings suitable for unit and integration tests.
func NewTestSettings() Settings {
	s := NewSettings()
	s.IsTest = true
	s.DBConnectionString = ":memory:"
	s.ServerPort = ":0"
	return s
}

const maxSecretFileSize = 1024 * 1024

// getEnv reads an environment variable with `_FILE` suffix support: if
// KEY_FILE is set it is read as the secret's location, else KEY is used
// directly, else defaultValue.
func getEnv(key string, defaultValue string) (value string) {
	if filePath := os.Getenv(key + "_FILE"); filePath != "" {
		if !filepath.IsAbs(filePath) {
			fmt.Fprintf(os.Stderr, "Warning: %s_FILE must be an absolute path, got %s\n", key, filePath)
		} else if strings.Contains(filePath, "..") {
			fmt.Fprintf(os.Stderr, "Warning: %s_FILE path contains '..', refusing to read %s\n", key, filePath)
		} else if content, ok := readSecretFile(key, filePath); ok {
			return content
		}
	}

	value = os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	return
}

func readSecretFile(key, filePath string) (string, bool) {
	fileInfo, err := os.Lstat(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to check %s_FILE at %s: %v\n", key, filePath, err)
		return "", false
	}
	if fileInfo.Mode()&os.ModeSymlink != 0 {
		fmt.Fprintf(os.Stderr, "Warning: %s_FILE at %s is a symlink, refusing to read for security\n", key, filePath)
		return "", false
	}

	file, err := os.Open(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to open %s_FILE at %s: %v\n", key, filePath, err)
		return "", false
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to stat %s_FILE at %s: %v\n", key, filePath, err)
		return "", false
	}
	if stat.Size() > maxSecretFileSize {
		fmt.Fprintf(os.Stderr, "Warning: %s_FILE at %s is too large (%d bytes, max %d)\n", key, filePath, stat.Size(), maxSecretFileSize)
		return "", false
	}

	content := make([]byte, stat.Size())
	if _, err := io.ReadFull(file, content); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to read %s_FILE from %s: %v\n", key, filePath, err)
		return "", false
	}
	return strings.TrimSpace(string(content)), true
}

func getEnvInt(key string, defaultValue int) int {
	if v := getEnv(key, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := getEnv(key, ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getDefaultLogLevel(isDevelopment bool) string {
	if isDevelopment {
		return "debug"
	}
	return "info"
}
