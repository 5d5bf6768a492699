package common

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apexrank.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadConfig_LogoTokenFromFile(t *testing.T) {
	path := writeConfigFile(t, `
[clients.logo]
base_url = "https://img.logo.dev"
token = "tok_from_file"
`)
	t.Setenv("LOGODEV_TOKEN", "")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Clients.Logo.Token != "tok_from_file" {
		t.Errorf("expected logo token from file, got %q", config.Clients.Logo.Token)
	}
	if config.Clients.Logo.BaseURL != "https://img.logo.dev" {
		t.Errorf("unexpected logo base URL %q", config.Clients.Logo.BaseURL)
	}
}

func TestLoadConfig_LogoTokenEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
[clients.logo]
token = "tok_from_file"
`)
	t.Setenv("LOGODEV_TOKEN", "tok_from_env")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Clients.Logo.Token != "tok_from_env" {
		t.Errorf("expected env override to win, got %q", config.Clients.Logo.Token)
	}
}

func TestLoadConfig_MissingFileKeepsDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Clients.Logo.Token != "" {
		t.Errorf("expected no default logo token, got %q", config.Clients.Logo.Token)
	}
	if config.Collect.TopN != 100 {
		t.Errorf("expected default top_n 100, got %d", config.Collect.TopN)
	}
}
