package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
	APIBind   string `toml:"api_bind"`
}

// Conversion contains the default batch parameters.
type Conversion struct {
	Engine  string `toml:"engine"`
	Format  string `toml:"format"`
	Workers int    `toml:"workers"`
}

// Tools contains external binary names and the directories searched before PATH.
type Tools struct {
	FFmpeg      string   `toml:"ffmpeg"`
	FFprobe     string   `toml:"ffprobe"`
	Afconvert   string   `toml:"afconvert"`
	SearchPaths []string `toml:"search_paths"`
}

// Cloud contains configuration for the remote conversion API.
type Cloud struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	WaitStrategy   string `toml:"wait_strategy"`
	WaitDelay      int    `toml:"wait_delay"`
	PollInterval   int    `toml:"poll_interval"`
	WaitBudget     int    `toml:"wait_budget"`
	RequestTimeout int    `toml:"request_timeout"`
}

// History contains configuration for the completed-conversion log.
type History struct {
	Path  string `toml:"path"`
	Limit int    `toml:"limit"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Batch          bool   `toml:"batch"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for the converter.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and state directories plus the API bind address
//   - Conversion: default engine, target format, and worker count
//   - Tools: external binary overrides and install-path search list
//   - Cloud: remote conversion API connection and wait behaviour
//   - History: completed-conversion log location and cap
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Conversion    Conversion    `toml:"conversion"`
	Tools         Tools         `toml:"tools"`
	Cloud         Cloud         `toml:"cloud"`
	History       History       `toml:"history"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/avconverter/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		raw, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
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

// resolveConfigPath picks the config file to read. An explicit path wins even
// when the file does not exist yet; otherwise the user config is preferred
// over a project-local avconverter.toml.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		switch _, err := os.Stat(expanded); {
		case err == nil:
			return expanded, true, nil
		case errors.Is(err, fs.ErrNotExist):
			return expanded, false, nil
		default:
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("avconverter.toml")
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for converter operation.
// OutputDir is created on a best-effort basis so config load still succeeds
// when the target volume is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the transcoder executable name or override.
func (c *Config) FFmpegBinary() string {
	if v := strings.TrimSpace(c.Tools.FFmpeg); v != "" {
		return v
	}
	return "ffmpeg"
}

// FFprobeBinary returns the media probe executable name or override.
func (c *Config) FFprobeBinary() string {
	if v := strings.TrimSpace(c.Tools.FFprobe); v != "" {
		return v
	}
	return "ffprobe"
}

// AfconvertBinary returns the native export executable name or override.
func (c *Config) AfconvertBinary() string {
	if v := strings.TrimSpace(c.Tools.Afconvert); v != "" {
		return v
	}
	return "afconvert"
}

// ToolSearchPaths returns the well-known install directories checked before PATH.
func (c *Config) ToolSearchPaths() []string {
	cp := make([]string, len(c.Tools.SearchPaths))
	copy(cp, c.Tools.SearchPaths)
	return cp
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if rest, ok := strings.CutPrefix(pathValue, "~"); ok && (rest == "" || rest[0] == '/') {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		pathValue = filepath.Join(home, rest)
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the annotated sample configuration to path, creating
// parent directories as needed.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
