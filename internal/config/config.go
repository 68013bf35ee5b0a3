package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"vast/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// LMS contains connection settings for the learning-management-system REST API.
type LMS struct {
	BaseURL               string `toml:"base_url"`
	AccessToken           string `toml:"access_token"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	UserAgent             string `toml:"user_agent"`
}

// Archive contains configuration for the local coursework archive.
type Archive struct {
	BaseDir string `toml:"base_dir"`
}

// Feed contains configuration for the unified feed aggregation.
type Feed struct {
	// Concurrency bounds the per-course assignment fetches run during a feed merge.
	Concurrency int `toml:"concurrency"`
	// EventType optionally restricts upcoming events to one LMS type (e.g. "assignment").
	EventType string `toml:"event_type"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for vast.
//
// Configuration sections by subsystem:
//   - LMS: base URL, access token and HTTP settings for the LMS API
//   - Archive: base directory of the local term/course/assignment tree
//   - Feed: concurrency and event filtering for the unified feed
//   - Logging: log format, level, and optional log directory
type Config struct {
	LMS     LMS     `toml:"lms"`
	Archive Archive `toml:"archive"`
	Feed    Feed    `toml:"feed"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file is not an error: defaults and
// environment fallbacks are used instead.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// RequireLMS reports a configuration error when the LMS base URL or access
// token is missing. Commands that talk to the LMS call this before any I/O.
func (c *Config) RequireLMS() error {
	var missing []string
	if strings.TrimSpace(c.LMS.BaseURL) == "" {
		missing = append(missing, "lms.base_url")
	}
	if strings.TrimSpace(c.LMS.AccessToken) == "" {
		missing = append(missing, "lms.access_token")
	}
	if len(missing) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "config", "lms", strings.Join(missing, ", ")+" not set", nil)
}

// RequireArchive reports a configuration error when no archive base directory is configured.
func (c *Config) RequireArchive() error {
	if strings.TrimSpace(c.Archive.BaseDir) == "" {
		return services.Wrap(services.ErrConfiguration, "config", "archive", "archive.base_dir not set", nil)
	}
	return nil
}

// RequestTimeout returns the LMS HTTP client timeout. Zero disables the client timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.LMS.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.LMS.RequestTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
