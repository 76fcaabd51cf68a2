package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9000")
	t.Setenv("VERIFIER_CONFIG", "")
	t.Setenv("BROWSER_NAV_TIMEOUT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr = %q, want :9000", cfg.Server.HTTPAddr)
	}
	if cfg.Browser.NavTimeout != 60*time.Second {
		t.Errorf("NavTimeout = %v, want 60s", cfg.Browser.NavTimeout)
	}
	if cfg.Vision.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.Vision.MaxRetries)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfigYAMLOverlayAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "verifier.yaml")
	doc := "providers:\n  boa_base_url: https://boa.example/slip/\n  cbe_base_url: https://cbe.example/\n  cbe_insecure_tls: false\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VERIFIER_CONFIG", path)
	t.Setenv("CBE_BASE_URL", "https://env.example/")
	t.Setenv("BOA_BASE_URL", "")
	t.Setenv("CBE_INSECURE_TLS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Providers.BOABaseURL != "https://boa.example/slip/" {
		t.Errorf("BOABaseURL = %q", cfg.Providers.BOABaseURL)
	}
	if cfg.Providers.CBEBaseURL != "https://env.example/" {
		t.Errorf("CBEBaseURL = %q, env should win", cfg.Providers.CBEBaseURL)
	}
	if cfg.Providers.CBEInsecureTLS {
		t.Error("CBEInsecureTLS should come from overlay (false)")
	}
	if cfg.Providers.TelebirrBaseURL == "" {
		t.Error("TelebirrBaseURL should keep its default")
	}
}

func TestValidateRejectsNonPositiveTimeouts(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{HTTPAddr: ":8000"},
		Browser:   BrowserConfig{NavTimeout: 0, ReadyTimeout: time.Second},
		Providers: ProvidersConfig{PDFFetchTimeout: time.Second, TelebirrBaseURL: "a", BOABaseURL: "b", CBEBaseURL: "c"},
		Vision:    VisionConfig{Timeout: time.Second},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero navigation timeout")
	}
}
