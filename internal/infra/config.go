package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv       string
	Port         string
	ResultsDir   string
	StaticDir    string
	ProfilesFile string

	MaxQueueSize      int
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	ResultTTL         time.Duration
	CleanupInterval   time.Duration

	MaxUploadBytes int64
	AllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		ResultsDir:        getEnv("RESULTS_FOLDER", "generated_images"),
		StaticDir:         getEnv("STATIC_DIR", "static"),
		ProfilesFile:      getEnv("PROFILES_FILE", "static/profiles.json"),
		MaxQueueSize:      getEnvInt("MAX_QUEUE_SIZE", 10),
		MaxConcurrentJobs: getEnvInt("MAX_CONCURRENT_JOBS", 2),
		JobTimeout:        time.Second * time.Duration(getEnvInt("JOB_TIMEOUT_SECONDS", 600)),
		ResultTTL:         time.Second * time.Duration(getEnvInt("JOB_RESULT_TTL_SECONDS", 900)),
		CleanupInterval:   time.Second * time.Duration(getEnvInt("CLEANUP_INTERVAL_SECONDS", 60)),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_MB", 10)) * 1024 * 1024,
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "")),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.MaxQueueSize < 1 {
		return nil, fmt.Errorf("MAX_QUEUE_SIZE must be at least 1")
	}
	if cfg.MaxConcurrentJobs < 1 {
		return nil, fmt.Errorf("MAX_CONCURRENT_JOBS must be at least 1")
	}
	if cfg.MaxConcurrentJobs > cfg.MaxQueueSize {
		return nil, fmt.Errorf("MAX_CONCURRENT_JOBS must not exceed MAX_QUEUE_SIZE")
	}
	if cfg.JobTimeout <= 0 || cfg.ResultTTL <= 0 || cfg.CleanupInterval <= 0 {
		return nil, fmt.Errorf("job timeout, result TTL and cleanup interval must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
