package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	ServerAddr  string
	LogLevel    slog.Level
	LogFormat   string `validate:"oneof=json text"`
	CORSOrigins []string

	// SupportID is the fixed receiver of anonymous client messages.
	SupportID string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string `validate:"required"`
	MinIOUseSSL    bool
	MinIOPublicURL string `validate:"omitempty,url"`

	SnowflakeNode          int64 `validate:"min=0,max=1023"`
	CleanupOrphanedUploads bool
	RateLimitPerMinute     int           `validate:"min=1"`
	ShutdownTimeout        time.Duration `validate:"min=0"`
}

// Load reads configuration from the environment and, when CONFIG_FILE is
// set, from that file. Environment variables take precedence.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		DatabaseURL:            v.GetString("DATABASE_URL"),
		RedisURL:               v.GetString("REDIS_URL"),
		JWTSecret:              v.GetString("JWT_SECRET"),
		ServerAddr:             v.GetString("SERVER_ADDR"),
		LogLevel:               parseLogLevel(v.GetString("LOG_LEVEL")),
		LogFormat:              strings.ToLower(v.GetString("LOG_FORMAT")),
		CORSOrigins:            splitList(v.GetString("CORS_ORIGINS")),
		SupportID:              v.GetString("CHAT_ADMIN_ID"),
		MinIOEndpoint:          v.GetString("MINIO_ENDPOINT"),
		MinIOAccessKey:         v.GetString("MINIO_ACCESS_KEY"),
		MinIOSecretKey:         v.GetString("MINIO_SECRET_KEY"),
		MinIOBucket:            v.GetString("MINIO_BUCKET"),
		MinIOUseSSL:            v.GetBool("MINIO_USE_SSL"),
		MinIOPublicURL:         v.GetString("MINIO_PUBLIC_URL"),
		SnowflakeNode:          v.GetInt64("SNOWFLAKE_NODE"),
		CleanupOrphanedUploads: v.GetBool("CLEANUP_ORPHANED_UPLOADS"),
		RateLimitPerMinute:     v.GetInt("RATE_LIMIT_PER_MINUTE"),
		ShutdownTimeout:        v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, describeValidation(err)
	}
	if cfg.SupportID == "" {
		slog.Warn("CHAT_ADMIN_ID not set; client messages and conversation fetches will be rejected")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("REDIS_URL", "redis://localhost:6379")
	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("MINIO_BUCKET", "message-attachments")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("SNOWFLAKE_NODE", 1)
	v.SetDefault("CLEANUP_ORPHANED_UPLOADS", false)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 50)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
}

// MinIOEnabled reports whether object storage is configured.
func (c *Config) MinIOEnabled() bool {
	return c.MinIOEndpoint != ""
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s fails %q (value %v)", fe.Field(), fe.ActualTag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(parts, "; "))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
