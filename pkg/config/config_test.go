package config

import (
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "https://api.ndertimnet.example/api/")
	t.Setenv(EnvStateDir, "/tmp/ndertimnet")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://api.ndertimnet.example/api/" {
		t.Fatalf("unexpected base URL %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("expected default timeout 15s, got %v", cfg.API.Timeout)
	}
	if cfg.Watch.ChatInterval != 10*time.Second {
		t.Fatalf("expected default chat poll 10s, got %v", cfg.Watch.ChatInterval)
	}
	if !cfg.App.IsDev() {
		t.Fatalf("expected dev default env, got %q", cfg.App.Env)
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing base URL to return an error")
	}
}

func TestLoad_RejectsNonHTTPBaseURL(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "ftp://api.ndertimnet.example/")

	if _, err := Load(); err == nil {
		t.Fatal("expected non-http scheme to be rejected")
	}
}
