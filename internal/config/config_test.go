package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "hireflow")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	if !errors.Is(err, errMissingRequiredEnv) {
		t.Fatalf("expected errMissingRequiredEnv, got %v", err)
	}
	if !strings.Contains(err.Error(), "HTTP_PORT") || !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") {
		t.Fatalf("expected all missing keys listed, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("BATCH_DELAY", "")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.AI.Provider != ProviderOpenAI {
		t.Fatalf("expected default provider openai, got %q", cfg.AI.Provider)
	}
	if cfg.Batch.Delay != 1500*time.Millisecond {
		t.Fatalf("unexpected batch delay %s", cfg.Batch.Delay)
	}
	if cfg.App.UploadMaxBytes != 10<<20 {
		t.Fatalf("unexpected upload limit %d", cfg.App.UploadMaxBytes)
	}
}

func TestLoad_InvalidProvider(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_PROVIDER", "bogus")
	t.Setenv("CONFIG_FILE", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid provider")
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_MODEL", "env-model")

	path := filepath.Join(t.TempDir(), "hireflow.yaml")
	body := "ai:\n  provider: vertex\n  project_id: demo\nbatch:\n  delay: 2s\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.AI.Provider != ProviderVertex || cfg.AI.ProjectID != "demo" {
		t.Fatalf("overlay not applied: %+v", cfg.AI)
	}
	if cfg.AI.Model != "env-model" {
		t.Fatalf("expected env value kept for omitted key, got %q", cfg.AI.Model)
	}
	if cfg.Batch.Delay != 2*time.Second {
		t.Fatalf("expected 2s delay, got %s", cfg.Batch.Delay)
	}
}
