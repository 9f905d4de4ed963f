package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Debounce().Milliseconds() != defaultDebounceMillis {
		t.Fatalf("debounce = %v, want default", cfg.Debounce())
	}
	if cfg.Gateway.Addr != defaultGatewayAddr {
		t.Fatalf("gateway addr = %q, want default", cfg.Gateway.Addr)
	}
}

func TestLoadFromParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "agents:\n  allowed: [\"claude\", \"codex\"]\nterminal:\n  debounce_millis: 25\ngateway:\n  addr: \":9999\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !cfg.AgentAllowed("claude") || !cfg.AgentAllowed("codex") {
		t.Fatalf("allow-list = %+v", cfg.Agents.Allowed)
	}
	if cfg.AgentAllowed("rm") {
		t.Fatal("rm should not be allowed")
	}
	if cfg.Debounce().Milliseconds() != 25 {
		t.Fatalf("debounce = %v, want 25ms", cfg.Debounce())
	}
	if cfg.Gateway.Addr != ":9999" {
		t.Fatalf("gateway addr = %q", cfg.Gateway.Addr)
	}
	if cfg.MaxWait().Milliseconds() != defaultMaxWaitMillis {
		t.Fatalf("max wait = %v, want default", cfg.MaxWait())
	}
}

func TestAgentAllowedEmptyAllowList(t *testing.T) {
	cfg := defaultConfig()
	if cfg.AgentAllowed("claude") {
		t.Fatal("empty allow-list should permit nothing")
	}
}
