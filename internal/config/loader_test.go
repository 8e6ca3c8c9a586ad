package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// setupTestHome points HOME at a temporary directory and returns the
// projectd config directory inside it.
func setupTestHome(t *testing.T) string {
	t.Helper()

	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	configDir := filepath.Join(tmpHome, ".config", "projectd")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	return configDir
}

func writeConfig(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	configDir := setupTestHome(t)
	configPath := filepath.Join(configDir, "config.yaml")

	writeConfig(t, configPath, `server:
  http_port: 9300
  host: 127.0.0.1
storage:
  provider: badger
  path: /var/lib/projectd
lifecycle:
  delete_policy: clear
`, 0600)

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.Server.Port != 9300 {
		t.Errorf("Server.Port = %d, want 9300", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Storage.Provider != StorageBadger {
		t.Errorf("Storage.Provider = %q, want badger", cfg.Storage.Provider)
	}
	if cfg.Lifecycle.DeletePolicy != DeletePolicyClear {
		t.Errorf("Lifecycle.DeletePolicy = %q, want clear", cfg.Lifecycle.DeletePolicy)
	}
	if cfg.Server.ShutdownTimeout.Duration() != 10*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want default 10s", cfg.Server.ShutdownTimeout.Duration())
	}
}

func TestLoadWithFile_ValidTOML(t *testing.T) {
	configDir := setupTestHome(t)
	configPath := filepath.Join(configDir, "config.toml")

	writeConfig(t, configPath, `[server]
http_port = 9400
shutdown_timeout = "3s"

[analytics]
enabled = true
nats_url = "nats://127.0.0.1:4222"
`, 0600)

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.Server.Port != 9400 {
		t.Errorf("Server.Port = %d, want 9400", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout.Duration() != 3*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 3s", cfg.Server.ShutdownTimeout.Duration())
	}
	if !cfg.Analytics.Enabled || cfg.Analytics.NATSURL != "nats://127.0.0.1:4222" {
		t.Errorf("Analytics = %+v, want enabled with nats url", cfg.Analytics)
	}
}

func TestLoadWithFile_EnvironmentOverride(t *testing.T) {
	configDir := setupTestHome(t)
	configPath := filepath.Join(configDir, "config.yaml")

	writeConfig(t, configPath, `server:
  http_port: 9300
lifecycle:
  delete_policy: next
`, 0600)

	t.Setenv("PROJECTD_SERVER_HTTP_PORT", "7777")
	t.Setenv("PROJECTD_LIFECYCLE_DELETE_POLICY", "clear")

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 (from env override)", cfg.Server.Port)
	}
	if cfg.Lifecycle.DeletePolicy != DeletePolicyClear {
		t.Errorf("Lifecycle.DeletePolicy = %q, want clear (from env override)", cfg.Lifecycle.DeletePolicy)
	}
}

func TestLoadWithFile_MissingFile(t *testing.T) {
	configDir := setupTestHome(t)

	cfg, err := LoadWithFile(filepath.Join(configDir, "config.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFile() should not error on missing file, got: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want default 9191", cfg.Server.Port)
	}
	if cfg.Storage.Provider != StorageMemory {
		t.Errorf("Storage.Provider = %q, want default memory", cfg.Storage.Provider)
	}
}

func TestLoadWithFile_DefaultPath(t *testing.T) {
	setupTestHome(t)

	cfg, err := LoadWithFile("")
	if err != nil {
		t.Fatalf("LoadWithFile(\"\") error = %v, want nil", err)
	}
	if cfg.Lifecycle.DeletePolicy != DeletePolicyNext {
		t.Errorf("Lifecycle.DeletePolicy = %q, want next", cfg.Lifecycle.DeletePolicy)
	}
}

func TestLoadWithFile_InvalidYAML(t *testing.T) {
	configDir := setupTestHome(t)
	configPath := filepath.Join(configDir, "config.yaml")

	writeConfig(t, configPath, `server:
  http_port: not-a-number
  invalid syntax here
`, 0600)

	if _, err := LoadWithFile(configPath); err == nil {
		t.Error("LoadWithFile() should error on invalid YAML, got nil")
	}
}

func TestLoadWithFile_Validation(t *testing.T) {
	configDir := setupTestHome(t)
	configPath := filepath.Join(configDir, "config.yaml")

	writeConfig(t, configPath, `server:
  http_port: 99999
`, 0600)

	if _, err := LoadWithFile(configPath); err == nil {
		t.Error("LoadWithFile() should error on invalid port, got nil")
	}
}

func TestLoadWithFile_PathTraversal(t *testing.T) {
	setupTestHome(t)

	_, err := LoadWithFile("../../../../etc/passwd")
	if err == nil {
		t.Fatal("Expected error for path traversal, got nil")
	}
	if !strings.Contains(err.Error(), "must be in ~/.config/projectd/ or /etc/projectd/") {
		t.Errorf("Expected path validation error, got: %v", err)
	}
}

func TestLoadWithFile_InsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping permission test on Windows")
	}

	configDir := setupTestHome(t)
	configPath := filepath.Join(configDir, "config.yaml")
	writeConfig(t, configPath, "server:\n  http_port: 9300\n", 0644)

	_, err := LoadWithFile(configPath)
	if err == nil {
		t.Fatal("Expected error for insecure permissions, got nil")
	}
	if !strings.Contains(err.Error(), "insecure") {
		t.Errorf("Expected 'insecure permissions' error, got: %v", err)
	}
}

func TestLoadWithFile_FileTooLarge(t *testing.T) {
	configDir := setupTestHome(t)
	configPath := filepath.Join(configDir, "config.yaml")

	largeContent := bytes.Repeat([]byte("# comment line\n"), 150000)
	if err := os.WriteFile(configPath, largeContent, 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadWithFile(configPath)
	if err == nil {
		t.Fatal("Expected error for large file, got nil")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("Expected 'too large' error, got: %v", err)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"PROJECTD_SERVER_HTTP_PORT":        "server.http_port",
		"PROJECTD_STORAGE_PATH":            "storage.path",
		"PROJECTD_LIFECYCLE_DELETE_POLICY": "lifecycle.delete_policy",
		"PROJECTD_DEBUG":                   "debug",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
