package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/capyvision")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.ImageModelPro != "gemini-3-pro-image-preview" {
		t.Fatalf("unexpected pro model %q", cfg.ImageModelPro)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.PollInterval)
	}
	if cfg.MaxPolls != 0 {
		t.Fatalf("expected unbounded polling by default, got %d", cfg.MaxPolls)
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/capyvision")
	t.Setenv("VIDEO_POLL_INTERVAL_SECONDS", "1")
	t.Setenv("VIDEO_MAX_POLLS", "120")
	t.Setenv("GALLERY_QUOTA_BYTES", "1024")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.PollInterval != time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.PollInterval)
	}
	if cfg.MaxPolls != 120 {
		t.Fatalf("unexpected max polls %d", cfg.MaxPolls)
	}
	if cfg.GalleryQuotaBytes != 1024 {
		t.Fatalf("unexpected quota %d", cfg.GalleryQuotaBytes)
	}
}
