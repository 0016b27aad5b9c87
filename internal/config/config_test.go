package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.LLMModel != "gpt-4o-mini" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("database url should be optional, got %q", cfg.DatabaseURL)
	}
	if cfg.AccessTTL() != 24*time.Hour {
		t.Fatalf("unexpected access ttl %v", cfg.AccessTTL())
	}
	if cfg.LoginRateWindow() != 5*time.Minute || cfg.LoginRateMax != 10 {
		t.Fatalf("unexpected login rate settings: %+v", cfg)
	}
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadClientConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadClientConfig()
		if err != nil {
			t.Fatalf("load client config: %v", err)
		}
		if cfg.EphemeralThreshold != 1000 || cfg.TitleMax != 20 || cfg.PlaceholderTitle != "New Chat" {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
		want := []string{"Graph", "What can you do?", "Tell me a fun fact"}
		if diff := cmp.Diff(want, cfg.FAQs); diff != "" {
			t.Fatalf("faqs mismatch (-want +got):\n%s", diff)
		}
		if cfg.HTTPTimeout != 0 {
			t.Fatalf("expected no timeout by default, got %v", cfg.HTTPTimeout)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("CHAT_BASE_URL", "http://chat.local:9000")
		t.Setenv("CHAT_EPHEMERAL_THRESHOLD", "5000")
		t.Setenv("CHAT_FAQS", "Graph,Hola")
		t.Setenv("CHAT_HTTP_TIMEOUT", "15s")

		cfg, err := LoadClientConfig()
		if err != nil {
			t.Fatalf("load client config: %v", err)
		}
		if cfg.BaseURL != "http://chat.local:9000" || cfg.EphemeralThreshold != 5000 {
			t.Fatalf("unexpected overrides: %+v", cfg)
		}
		if diff := cmp.Diff([]string{"Graph", "Hola"}, cfg.FAQs); diff != "" {
			t.Fatalf("faqs mismatch (-want +got):\n%s", diff)
		}
		if cfg.HTTPTimeout != 15*time.Second {
			t.Fatalf("unexpected timeout %v", cfg.HTTPTimeout)
		}
	})
}
