package config

import (
	"errors"
	"fmt"
	"strings"
)

// Valid choices for enumerated configuration values.
var (
	validEngines        = []string{"native", "shell", "cloud"}
	validWaitStrategies = []string{"fixed_delay", "poll"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateCloud(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConversion() error {
	if !containsString(validEngines, c.Conversion.Engine) {
		return fmt.Errorf("conversion.engine must be one of %s", strings.Join(validEngines, ", "))
	}
	if c.Conversion.Workers < 1 {
		return errors.New("conversion.workers must be >= 1")
	}
	return nil
}

func (c *Config) validateCloud() error {
	if !containsString(validWaitStrategies, c.Cloud.WaitStrategy) {
		return fmt.Errorf("cloud.wait_strategy must be one of %s", strings.Join(validWaitStrategies, ", "))
	}
	if err := ensurePositiveMap(map[string]int{
		"cloud.wait_delay":      c.Cloud.WaitDelay,
		"cloud.poll_interval":   c.Cloud.PollInterval,
		"cloud.wait_budget":     c.Cloud.WaitBudget,
		"cloud.request_timeout": c.Cloud.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Conversion.Engine == "cloud" {
		if c.Cloud.BaseURL == "" {
			return errors.New("cloud.base_url must be set when conversion.engine is cloud")
		}
		if c.Cloud.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/avconverter/config.toml"
			}
			return fmt.Errorf("cloud.api_key is required when conversion.engine is cloud. Set AVCONVERT_CLOUD_API_KEY env var or edit %s (create with 'avconvert config init')", defaultPath)
		}
	}
	return nil
}

func (c *Config) validateHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path must be set")
	}
	if c.History.Limit < 1 {
		return errors.New("history.limit must be >= 1")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func containsString(values []string, candidate string) bool {
	for _, value := range values {
		if value == candidate {
			return true
		}
	}
	return false
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
