package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Server.BaseURL = "https://api.nexus.example"
	cfg.Tenant.ID = "acme"
	cfg.DemoMode = true

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.Server.BaseURL != "https://api.nexus.example" {
		t.Errorf("BaseURL: got %q, want %q", loaded.Server.BaseURL, "https://api.nexus.example")
	}
	if loaded.Tenant.ID != "acme" {
		t.Errorf("Tenant.ID: got %q, want %q", loaded.Tenant.ID, "acme")
	}
	if !loaded.DemoMode {
		t.Error("DemoMode: got false, want true")
	}
}

func TestReadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := ReadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL: got %q, want default", cfg.Server.BaseURL)
	}
	if cfg.Tenant.ID != "demo_tenant" {
		t.Errorf("Tenant.ID: got %q, want demo_tenant", cfg.Tenant.ID)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Server.BaseURL = "http://from-file:8000"
	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	t.Setenv("NEXUS_SERVER_URL", "http://from-env:9000")
	t.Setenv("NEXUS_DEMO_MODE", "true")

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if loaded.Server.BaseURL != "http://from-env:9000" {
		t.Errorf("BaseURL: got %q, want env override", loaded.Server.BaseURL)
	}
	if !loaded.DemoMode {
		t.Error("DemoMode: env override not applied")
	}
}

func TestMemoryKeyUsesTenantID(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MemoryKey() != "chat_memory_demo_tenant" {
		t.Errorf("MemoryKey: got %q", cfg.MemoryKey())
	}
}

func TestBackwardCompatibility(t *testing.T) {
	// Simulate an old config file without new fields.
	tmpDir := t.TempDir()
	oldConfig := `version: 1
server:
  base_url: http://localhost:8000
tenant:
  id: demo_tenant
`
	configPath := filepath.Join(tmpDir, ".nexus")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte(oldConfig), 0644); err != nil {
		t.Fatalf("failed to write old config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed on old config: %v", err)
	}
	if cfg == nil {
		t.Fatal("config should not be nil")
	}
	if cfg.Timeout().Seconds() != 30 {
		t.Errorf("Timeout default: got %v", cfg.Timeout())
	}
}
