package initializers

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment.
type Config struct {
	Port    string
	GinMode string

	// Database
	DBDriver string // sqlite or postgres
	DBURL    string

	// Blob storage
	StorageBackend string // local or s3
	UploadFolder   string
	AWSRegion      string
	AWSBucket      string
	AWSEndpoint    string // optional, for MinIO and other S3-compatible services
	AWSAccessKey   string
	AWSSecretKey   string
	AWSKeyPrefix   string

	// HTTP
	CORSAllowOrigins []string
	RateLimitRPS     float64
	RateLimitBurst   int

	CleanupInterval time.Duration // 0 disables the reconciliation job

	LogLevel  slog.Level
	LogFormat string
}

// LoadConfig reads .env (outside Render) and then the process environment.
func LoadConfig() (*Config, error) {
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			slog.Info("no .env file found, using environment variables")
		}
	}

	cfg := &Config{
		Port:    envString("PORT", "5000"),
		GinMode: envString("GIN_MODE", ""),

		DBDriver: strings.ToLower(envString("DB_DRIVER", "sqlite")),
		DBURL:    envString("DB_URL", ""),

		StorageBackend: strings.ToLower(envString("STORAGE_BACKEND", "local")),
		UploadFolder:   envString("UPLOAD_FOLDER", "uploads"),
		AWSRegion:      envString("AWS_REGION", "us-east-1"),
		AWSBucket:      envString("AWS_BUCKET_NAME", ""),
		AWSEndpoint:    envString("AWS_ENDPOINT", ""),
		AWSAccessKey:   envString("AWS_ACCESS_KEY", ""),
		AWSSecretKey:   envString("AWS_SECRET_KEY", ""),
		AWSKeyPrefix:   envString("AWS_KEY_PREFIX", "uploads"),

		CORSAllowOrigins: splitList(envString("CORS_ALLOW_ORIGINS", "*")),

		LogFormat: strings.ToLower(envString("LOG_FORMAT", "json")),
	}

	var err error
	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DBURL == "" {
			cfg.DBURL = "database.db"
		}
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("DB_DRIVER: unsupported driver %q, expected sqlite or postgres", cfg.DBDriver)
	}

	switch cfg.StorageBackend {
	case "local":
	case "s3":
		if cfg.AWSBucket == "" {
			return nil, fmt.Errorf("AWS_BUCKET_NAME is required when STORAGE_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND: unsupported backend %q, expected local or s3", cfg.StorageBackend)
	}

	if cfg.RateLimitRPS, err = envFloat("RATE_LIMIT_RPS", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.CleanupInterval, err = envDuration("CLEANUP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = parseLogLevel(envString("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT: unsupported format %q, expected json or text", cfg.LogFormat)
	}

	return cfg, nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return f, nil
}

// envDuration accepts Go durations ("30m") and a bare "0".
func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("LOG_LEVEL: unsupported level %q", s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
