// Package config loads dashboard settings from defaults, an optional YAML file,
// and INTELLIDETECT_* environment variables, in that order of priority.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable the dashboard reads.
const EnvPrefix = "INTELLIDETECT_"

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// Config holds all dashboard settings.
type Config struct {
	API     APIConfig     `koanf:"api"`
	Session SessionConfig `koanf:"session"`
	Log     LogConfig     `koanf:"log"`
	Mock    MockConfig    `koanf:"mock"`
}

// APIConfig selects the two backend services.
type APIConfig struct {
	AccidentURL string        `koanf:"accident_url"`
	ObstacleURL string        `koanf:"obstacle_url"`
	Timeout     time.Duration `koanf:"timeout"`
}

// SessionConfig controls where the login session is persisted.
type SessionConfig struct {
	Path      string `koanf:"path"`
	Ephemeral bool   `koanf:"ephemeral"` // keep the session in memory only
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
	File   string `koanf:"file"`   // used by the TUI, which owns the terminal
}

// MockConfig configures the bundled mock backend.
type MockConfig struct {
	Addr   string `koanf:"addr"`
	Secret string `koanf:"secret"`
}

func defaultConfig() *Config {
	sessionPath := ""
	logFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		sessionPath = filepath.Join(home, ".intellidetect", "session.json")
		logFile = filepath.Join(home, ".intellidetect", "dashboard.log")
	}
	return &Config{
		API: APIConfig{
			AccidentURL: "http://localhost:8080/api/v1",
			ObstacleURL: "http://localhost:8081/api/v1",
			Timeout:     10 * time.Second,
		},
		Session: SessionConfig{
			Path: sessionPath,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			File:   logFile,
		},
		Mock: MockConfig{
			Addr:   "127.0.0.1:8080",
			Secret: "intellidetect-dev-secret",
		},
	}
}

// DefaultConfigPaths lists the config files searched when none is given.
func DefaultConfigPaths() []string {
	paths := []string{"intellidetect.yaml", "intellidetect.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".intellidetect", "config.yaml"))
	}
	return paths
}

// Load builds the configuration. An explicit path must exist; otherwise the
// INTELLIDETECT_CONFIG variable and then DefaultConfigPaths are consulted.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file from %s: %w", ConfigPathEnvVar, err)
		}
		return p, nil
	}
	for _, p := range DefaultConfigPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// envTransformFunc maps INTELLIDETECT_API_ACCIDENT_URL to api.accident_url.
// The section is the first word after the prefix.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + rest
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	for name, raw := range map[string]string{
		"api.accident_url": c.API.AccidentURL,
		"api.obstacle_url": c.API.ObstacleURL,
	} {
		if err := validateURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout))
	}
	if !c.Session.Ephemeral && c.Session.Path == "" {
		errs = append(errs, errors.New("session.path is required unless session.ephemeral is set"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}
