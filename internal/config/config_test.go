package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME and the working directory at a temp dir so no real
// config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(ConfigPathEnvVar, "")
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.AccidentURL != "http://localhost:8080/api/v1" {
		t.Errorf("API.AccidentURL = %q", cfg.API.AccidentURL)
	}
	if cfg.API.ObstacleURL != "http://localhost:8081/api/v1" {
		t.Errorf("API.ObstacleURL = %q", cfg.API.ObstacleURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if want := filepath.Join(dir, ".intellidetect", "session.json"); cfg.Session.Path != want {
		t.Errorf("Session.Path = %q, want %q", cfg.Session.Path, want)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("Log.Format = %q, want console", cfg.Log.Format)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("INTELLIDETECT_API_ACCIDENT_URL", "https://accidents.example.com/api/v1")
	t.Setenv("INTELLIDETECT_API_TIMEOUT", "3s")
	t.Setenv("INTELLIDETECT_SESSION_EPHEMERAL", "true")
	t.Setenv("INTELLIDETECT_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.AccidentURL != "https://accidents.example.com/api/v1" {
		t.Errorf("API.AccidentURL = %q", cfg.API.AccidentURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("API.Timeout = %v, want 3s", cfg.API.Timeout)
	}
	if !cfg.Session.Ephemeral {
		t.Error("Session.Ephemeral = false, want true")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	content := `api:
  obstacle_url: http://obstacles.internal:9000/IntelliDetect/api/v1
log:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.ObstacleURL != "http://obstacles.internal:9000/IntelliDetect/api/v1" {
		t.Errorf("API.ObstacleURL = %q", cfg.API.ObstacleURL)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	// Untouched keys keep their defaults.
	if cfg.API.AccidentURL != "http://localhost:8080/api/v1" {
		t.Errorf("API.AccidentURL = %q", cfg.API.AccidentURL)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("Load() with missing explicit file = nil error")
	}
}

func TestLoadInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("INTELLIDETECT_API_OBSTACLE_URL", "ftp://obstacles")
	t.Setenv("INTELLIDETECT_LOG_FORMAT", "xml")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load() = nil error for invalid config")
	}
	for _, want := range []string{"api.obstacle_url", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"INTELLIDETECT_API_ACCIDENT_URL", "api.accident_url"},
		{"INTELLIDETECT_SESSION_PATH", "session.path"},
		{"INTELLIDETECT_LOG_FILE", "log.file"},
		{"INTELLIDETECT_CONFIG", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
