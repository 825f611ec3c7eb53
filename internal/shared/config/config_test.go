package config

import (
	"testing"
	"time"
)

func TestLoadImportDefaults(t *testing.T) {
	t.Setenv("IMPORT_TIMEZONE", "")
	t.Setenv("IMPORT_PROGRESS_TTL", "")
	t.Setenv("IMPORT_MAX_UPLOAD_MB", "")
	t.Setenv("IMPORT_REPORT_LOCALE", "")

	cfg := Load()
	if cfg.Import.ProgressTTL != time.Hour {
		t.Fatalf("expected 1h progress ttl, got %s", cfg.Import.ProgressTTL)
	}
	if cfg.Import.MaxUploadBytes != 50<<20 {
		t.Fatalf("expected 50MB upload limit, got %d", cfg.Import.MaxUploadBytes)
	}
	if cfg.Import.ReportLocale != "fr" {
		t.Fatalf("expected fr locale, got %s", cfg.Import.ReportLocale)
	}
	if cfg.Import.Location() != time.Local {
		t.Fatalf("expected local timezone")
	}
}

func TestLoadImportOverrides(t *testing.T) {
	t.Setenv("IMPORT_TIMEZONE", "UTC")
	t.Setenv("IMPORT_PROGRESS_TTL", "30m")
	t.Setenv("IMPORT_MAX_UPLOAD_MB", "10")
	t.Setenv("IMPORT_REPORT_LOCALE", "EN")
	t.Setenv("PUBLIC_BASE_URL", "https://hse.example.com/")

	cfg := Load()
	if cfg.Import.ProgressTTL != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %s", cfg.Import.ProgressTTL)
	}
	if cfg.Import.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected 10MB, got %d", cfg.Import.MaxUploadBytes)
	}
	if cfg.Import.ReportLocale != "en" {
		t.Fatalf("expected en, got %s", cfg.Import.ReportLocale)
	}
	if cfg.PublicBaseURL != "https://hse.example.com" {
		t.Fatalf("expected trimmed base url, got %s", cfg.PublicBaseURL)
	}
	if loc := cfg.Import.Location(); loc.String() != "UTC" {
		t.Fatalf("unexpected location %s", loc)
	}
}

func TestInvalidTimezoneFallsBackToLocal(t *testing.T) {
	cfg := ImportConfig{Timezone: "Not/AZone"}
	if cfg.Location() != time.Local {
		t.Fatalf("expected fallback to local")
	}
}
