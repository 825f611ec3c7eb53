package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"hse-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	DatabaseURL     string
	Env             string
	PublicBaseURL   string
	Import          ImportConfig
}

// ImportConfig groups the settings of the mass-import pipeline.
type ImportConfig struct {
	// Timezone governs "start of today" for future-date checks.
	Timezone       string
	ProgressTTL    time.Duration
	MaxUploadBytes int64
	ReportLocale   string
}

const (
	defaultProgressTTL  = time.Hour
	defaultMaxUploadMB  = 50
	defaultReportLocale = "fr"
)

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url.missing", map[string]any{"env": env})
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:     dbURL,
		Env:             env,
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		Import: ImportConfig{
			Timezone:       getEnv("IMPORT_TIMEZONE", "Local"),
			ProgressTTL:    getDuration("IMPORT_PROGRESS_TTL", defaultProgressTTL),
			MaxUploadBytes: int64(getInt("IMPORT_MAX_UPLOAD_MB", defaultMaxUploadMB)) << 20,
			ReportLocale:   normalizeLocale(getEnv("IMPORT_REPORT_LOCALE", defaultReportLocale)),
		},
	}
}

// Location resolves the configured import timezone, falling back to time.Local.
func (c ImportConfig) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		telemetry.Warn("config.timezone.invalid", map[string]any{"value": name, "error": err.Error()})
		return time.Local
	}
	return loc
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		telemetry.Warn("config.env.invalid", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		telemetry.Warn("config.env.invalid", map[string]any{"key": key, "value": raw, "default": def.String()})
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeLocale(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "en", "en_us", "en-us", "en_gb":
		return "en"
	default:
		return "fr"
	}
}
