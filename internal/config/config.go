// Пакет config — загрузка и валидация конфигурации из переменных окружения.
// Файл .env подгружается в main через godotenv до вызова Load.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Version задаётся при сборке через -ldflags.
var Version = "dev"

// Драйверы хранилища локального кэша записей.
const (
	CacheDriverSQLite   = "sqlite"
	CacheDriverPostgres = "postgres"
)

// devSessionKey используется, если SESSION_KEY не задан. Только для разработки!
const devSessionKey = "super-secret-default-key"

type Config struct {
	// --- Сервер ---
	Port      int
	LogLevel  slog.Level
	LogFormat string
	// Разрешённый Origin для CORS ("*" для разработки)
	CORSOrigin string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ShutdownTimeout  time.Duration

	// --- REST-бэкенд маркетплейса ---
	APIBaseURL string
	APITimeout time.Duration
	// Количество повторов для GET-запросов (записи не повторяются никогда)
	APIReadRetries int

	// --- Локальный кэш записей на курсы ---
	CacheDriver string
	SQLitePath  string
	DatabaseURL string

	// --- Отображаемые списки "Мои курсы" ---
	ViewCacheSize int
	ViewCacheTTL  time.Duration

	// --- Сессии и вход через Google ---
	SessionKey         string
	SessionSecure      bool
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	OIDCIssuer         string
}

// GoogleEnabled сообщает, настроен ли вход через Google.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

// UsesDevSessionKey — true, если SESSION_KEY не задан и взят дефолтный ключ.
func (c *Config) UsesDevSessionKey() bool {
	return c.SessionKey == devSessionKey
}

// Load загружает конфигурацию из переменных окружения.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	cfg.Port, err = getEnvInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT: значение %d вне диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("LOG_FORMAT", "text")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.CORSOrigin = getEnvDefault("CORS_ORIGIN", "*")

	if cfg.HTTPReadTimeout, err = getEnvDuration("HTTP_READ_TIMEOUT", 30*time.Second); err != nil {
		return nil, fmt.Errorf("HTTP_READ_TIMEOUT: %w", err)
	}
	if cfg.HTTPWriteTimeout, err = getEnvDuration("HTTP_WRITE_TIMEOUT", 60*time.Second); err != nil {
		return nil, fmt.Errorf("HTTP_WRITE_TIMEOUT: %w", err)
	}
	if cfg.HTTPIdleTimeout, err = getEnvDuration("HTTP_IDLE_TIMEOUT", 120*time.Second); err != nil {
		return nil, fmt.Errorf("HTTP_IDLE_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- REST-бэкенд ---

	cfg.APIBaseURL, err = getEnvRequired("API_BASE_URL")
	if err != nil {
		return nil, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if cfg.APITimeout, err = getEnvDuration("API_TIMEOUT", 15*time.Second); err != nil {
		return nil, fmt.Errorf("API_TIMEOUT: %w", err)
	}

	cfg.APIReadRetries, err = getEnvInt("API_READ_RETRIES", 1)
	if err != nil {
		return nil, fmt.Errorf("API_READ_RETRIES: %w", err)
	}
	if cfg.APIReadRetries < 0 {
		return nil, fmt.Errorf("API_READ_RETRIES: значение не может быть отрицательным")
	}

	// --- Локальный кэш ---

	cfg.CacheDriver = strings.ToLower(getEnvDefault("CACHE_DRIVER", CacheDriverSQLite))
	cfg.SQLitePath = getEnvDefault("CACHE_SQLITE_PATH", "enrollments.db")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	switch cfg.CacheDriver {
	case CacheDriverSQLite:
	case CacheDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL: обязателен при CACHE_DRIVER=postgres")
		}
		cfg.DatabaseURL, err = normalizePostgresDSN(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("DATABASE_URL: %w", err)
		}
	default:
		return nil, fmt.Errorf("CACHE_DRIVER: недопустимый драйвер %q, допустимые: sqlite, postgres", cfg.CacheDriver)
	}

	cfg.ViewCacheSize, err = getEnvInt("VIEW_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("VIEW_CACHE_SIZE: %w", err)
	}
	if cfg.ViewCacheSize < 1 {
		return nil, fmt.Errorf("VIEW_CACHE_SIZE: значение должно быть > 0")
	}
	if cfg.ViewCacheTTL, err = getEnvDuration("VIEW_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, fmt.Errorf("VIEW_CACHE_TTL: %w", err)
	}

	// --- Сессии и Google ---

	cfg.SessionKey = getEnvDefault("SESSION_KEY", devSessionKey)
	if cfg.SessionSecure, err = getEnvBool("SESSION_SECURE", false); err != nil {
		return nil, fmt.Errorf("SESSION_SECURE: %w", err)
	}

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = os.Getenv("GOOGLE_REDIRECT_URL")
	anyGoogle := cfg.GoogleClientID != "" || cfg.GoogleClientSecret != "" || cfg.GoogleRedirectURL != ""
	if anyGoogle && !cfg.GoogleEnabled() {
		return nil, fmt.Errorf("GOOGLE_*: переменные GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET и GOOGLE_REDIRECT_URL задаются вместе")
	}
	cfg.OIDCIssuer = getEnvDefault("OIDC_ISSUER", "https://accounts.google.com")

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// normalizePostgresDSN принимает DSN в формате URL (postgres://...) или key=value.
// URL проверяется и переводится в key=value через pq.ParseURL.
func normalizePostgresDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return dsn, nil
	}
	kv, err := pq.ParseURL(dsn)
	if err != nil {
		return "", fmt.Errorf("некорректный URL подключения: %w", err)
	}
	return kv, nil
}

// --- Вспомогательные функции ---

func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
