package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Auth   AuthConfig
	OCR    OCRConfig
	Parse  ParseConfig
	Queue  QueueConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings for the task-result store.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds settings for optional original-document storage. When
// disabled, uploaded bytes are kept inline in the task record instead.
type S3Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// AuthConfig holds API-key authentication and rate-limit settings.
type AuthConfig struct {
	MasterAPIKey       string `mapstructure:"master_api_key"`
	APIKeyHeader       string `mapstructure:"api_key_header"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute"`
}

// OCRConfig holds the OCR fallback settings. Language and PSM are opaque
// strings handed to the recognition engine unchanged.
type OCRConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	TesseractPath string `mapstructure:"tesseract_path"`
	PdftoppmPath  string `mapstructure:"pdftoppm_path"`
	Language      string `mapstructure:"language"`
	PSM           string `mapstructure:"psm"`
	DPI           int    `mapstructure:"dpi"`
	MaxPages      int    `mapstructure:"max_pages"`
}

// ParseConfig holds engine-level extraction settings.
type ParseConfig struct {
	ProximityWindow int `mapstructure:"proximity_window"`
	ClassifyWindow  int `mapstructure:"classify_window"`
}

// QueueConfig holds parse queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
	TaskTimeoutSecs  int `mapstructure:"task_timeout_secs"`
}

// Load reads configuration from environment variables with the CARDPARSE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CARDPARSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "cardparse")
	v.SetDefault("db.password", "cardparse_secret")
	v.SetDefault("db.name", "cardparse_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "cardparse-statements")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 5)

	// Auth defaults
	v.SetDefault("auth.master_api_key", "dev-api-key")
	v.SetDefault("auth.api_key_header", "X-API-Key")
	v.SetDefault("auth.rate_limit_per_minute", 60)

	// OCR defaults
	v.SetDefault("ocr.enabled", true)
	v.SetDefault("ocr.tesseract_path", "")
	v.SetDefault("ocr.pdftoppm_path", "")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.psm", "6")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.max_pages", 3)

	// Parse defaults
	v.SetDefault("parse.proximity_window", 150)
	v.SetDefault("parse.classify_window", 3000)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.task_timeout_secs", 300)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "CARDPARSE_SERVER_PORT",
		"server.read_timeout":        "CARDPARSE_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "CARDPARSE_SERVER_WRITE_TIMEOUT",
		"server.environment":         "CARDPARSE_SERVER_ENVIRONMENT",
		"db.host":                    "CARDPARSE_DB_HOST",
		"db.port":                    "CARDPARSE_DB_PORT",
		"db.user":                    "CARDPARSE_DB_USER",
		"db.password":                "CARDPARSE_DB_PASSWORD",
		"db.name":                    "CARDPARSE_DB_NAME",
		"db.sslmode":                 "CARDPARSE_DB_SSLMODE",
		"db.max_open":                "CARDPARSE_DB_MAX_OPEN",
		"db.max_idle":                "CARDPARSE_DB_MAX_IDLE",
		"s3.enabled":                 "CARDPARSE_S3_ENABLED",
		"s3.region":                  "CARDPARSE_S3_REGION",
		"s3.bucket":                  "CARDPARSE_S3_BUCKET",
		"s3.endpoint":                "CARDPARSE_S3_ENDPOINT",
		"s3.access_key":              "CARDPARSE_S3_ACCESS_KEY",
		"s3.secret_key":              "CARDPARSE_S3_SECRET_KEY",
		"s3.max_file_size_mb":        "CARDPARSE_S3_MAX_FILE_SIZE_MB",
		"auth.master_api_key":        "CARDPARSE_AUTH_MASTER_API_KEY",
		"auth.api_key_header":        "CARDPARSE_AUTH_API_KEY_HEADER",
		"auth.rate_limit_per_minute": "CARDPARSE_AUTH_RATE_LIMIT_PER_MINUTE",
		"ocr.enabled":                "CARDPARSE_OCR_ENABLED",
		"ocr.tesseract_path":         "CARDPARSE_OCR_TESSERACT_PATH",
		"ocr.pdftoppm_path":          "CARDPARSE_OCR_PDFTOPPM_PATH",
		"ocr.language":               "CARDPARSE_OCR_LANGUAGE",
		"ocr.psm":                    "CARDPARSE_OCR_PSM",
		"ocr.dpi":                    "CARDPARSE_OCR_DPI",
		"ocr.max_pages":              "CARDPARSE_OCR_MAX_PAGES",
		"parse.proximity_window":     "CARDPARSE_PARSE_PROXIMITY_WINDOW",
		"parse.classify_window":      "CARDPARSE_PARSE_CLASSIFY_WINDOW",
		"queue.poll_interval_secs":   "CARDPARSE_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":          "CARDPARSE_QUEUE_MAX_RETRIES",
		"queue.concurrency":          "CARDPARSE_QUEUE_CONCURRENCY",
		"queue.task_timeout_secs":    "CARDPARSE_QUEUE_TASK_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
