package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort              = 8080
	defaultArchiveInterval   = 10 * time.Minute
	defaultArchiveBatchSize  = 20
	defaultAllowedCategories = "Mayores,Sub-21,Sub-19,Sub-15,Sub-13,Libre"
)

// ArchiveConfig describes the S3 compatible bucket finished brackets are archived to.
type ArchiveConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
	Interval        time.Duration
	BatchSize       int
}

// Enabled reports whether a bucket is configured.
func (a ArchiveConfig) Enabled() bool {
	return a.BucketName != ""
}

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	LogFormat string
	LogLevel  slog.Level

	StrictCategories  bool
	AllowedCategories []string

	CORSAllowedOrigins []string

	Archive ArchiveConfig
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecretKey:       os.Getenv("JWT_SECRET_KEY"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "json")),
		AllowedCategories:  splitList(getEnv("ALLOWED_CATEGORIES", defaultAllowedCategories)),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		Archive: ArchiveConfig{
			Endpoint:        os.Getenv("ARCHIVE_ENDPOINT"),
			Region:          os.Getenv("ARCHIVE_REGION"),
			AccessKeyID:     os.Getenv("ARCHIVE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("ARCHIVE_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("ARCHIVE_BUCKET"),
			PublicBaseURL:   os.Getenv("ARCHIVE_PUBLIC_BASE_URL"),
		},
	}

	var errs []error

	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL environment variable is not set"))
	}

	port, err := strconv.Atoi(getEnv("SERVER_PORT", strconv.Itoa(defaultPort)))
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err))
	case port <= 0 || port > 65535:
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port))
	}
	cfg.ServerPort = port

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat))
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL: %w", err))
	}

	switch policy := strings.ToLower(getEnv("CATEGORY_POLICY", "open")); policy {
	case "open":
	case "strict":
		cfg.StrictCategories = true
		if len(cfg.AllowedCategories) == 0 {
			errs = append(errs, errors.New("ALLOWED_CATEGORIES must not be empty when CATEGORY_POLICY is strict"))
		}
	default:
		errs = append(errs, fmt.Errorf("CATEGORY_POLICY must be open or strict, got %q", policy))
	}

	cfg.Archive.Interval, err = time.ParseDuration(getEnv("ARCHIVE_INTERVAL", defaultArchiveInterval.String()))
	if err != nil || cfg.Archive.Interval <= 0 {
		errs = append(errs, fmt.Errorf("invalid ARCHIVE_INTERVAL %q", os.Getenv("ARCHIVE_INTERVAL")))
	}
	cfg.Archive.BatchSize, err = strconv.Atoi(getEnv("ARCHIVE_BATCH_SIZE", strconv.Itoa(defaultArchiveBatchSize)))
	if err != nil || cfg.Archive.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("invalid ARCHIVE_BATCH_SIZE %q", os.Getenv("ARCHIVE_BATCH_SIZE")))
	}
	if cfg.Archive.Enabled() && (cfg.Archive.AccessKeyID == "" || cfg.Archive.SecretAccessKey == "") {
		errs = append(errs, errors.New("ARCHIVE_ACCESS_KEY_ID and ARCHIVE_SECRET_ACCESS_KEY are required when ARCHIVE_BUCKET is set"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
