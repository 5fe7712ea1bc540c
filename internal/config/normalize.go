package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeTools()
	c.normalizeCloud()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	} else {
		c.Paths.OutputDir = ""
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeConversion() {
	c.Conversion.Engine = strings.ToLower(strings.TrimSpace(c.Conversion.Engine))
	if c.Conversion.Engine == "" {
		c.Conversion.Engine = defaultEngine
	}
	c.Conversion.Format = strings.ToLower(strings.TrimSpace(c.Conversion.Format))
	if c.Conversion.Format == "" {
		c.Conversion.Format = defaultFormat
	}
	if c.Conversion.Workers <= 0 {
		c.Conversion.Workers = defaultWorkers
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Tools.Afconvert = strings.TrimSpace(c.Tools.Afconvert)
	if len(c.Tools.SearchPaths) == 0 {
		c.Tools.SearchPaths = append([]string(nil), defaultToolSearchPaths...)
		return
	}
	paths := make([]string, 0, len(c.Tools.SearchPaths))
	seen := make(map[string]struct{}, len(c.Tools.SearchPaths))
	for _, dir := range c.Tools.SearchPaths {
		trimmed := strings.TrimSpace(dir)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		paths = append(paths, trimmed)
	}
	if len(paths) == 0 {
		paths = append([]string(nil), defaultToolSearchPaths...)
	}
	c.Tools.SearchPaths = paths
}

func (c *Config) normalizeCloud() {
	if c.Cloud.APIKey == "" {
		if value, ok := os.LookupEnv("AVCONVERT_CLOUD_API_KEY"); ok {
			c.Cloud.APIKey = strings.TrimSpace(value)
		}
	}
	c.Cloud.BaseURL = strings.TrimRight(strings.TrimSpace(c.Cloud.BaseURL), "/")
	c.Cloud.APIKey = strings.TrimSpace(c.Cloud.APIKey)
	c.Cloud.WaitStrategy = strings.ToLower(strings.TrimSpace(c.Cloud.WaitStrategy))
	if c.Cloud.WaitStrategy == "" {
		c.Cloud.WaitStrategy = defaultCloudWaitStrategy
	}
	if c.Cloud.WaitDelay <= 0 {
		c.Cloud.WaitDelay = defaultCloudWaitDelay
	}
	if c.Cloud.PollInterval <= 0 {
		c.Cloud.PollInterval = defaultCloudPollInterval
	}
	if c.Cloud.WaitBudget <= 0 {
		c.Cloud.WaitBudget = defaultCloudWaitBudget
	}
	if c.Cloud.RequestTimeout <= 0 {
		c.Cloud.RequestTimeout = defaultCloudRequestTimeout
	}
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	if c.History.Limit <= 0 {
		c.History.Limit = defaultHistoryLimit
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
