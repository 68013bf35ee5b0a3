package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Missing LMS credentials are
// not a validation failure here; commands that need them call RequireLMS.
func (c *Config) Validate() error {
	if err := c.validateLMS(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLMS() error {
	if c.LMS.BaseURL != "" {
		parsed, err := url.Parse(c.LMS.BaseURL)
		if err != nil {
			return fmt.Errorf("lms.base_url: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("lms.base_url must use http or https, got %q", c.LMS.BaseURL)
		}
		if parsed.Host == "" {
			return fmt.Errorf("lms.base_url must include a host, got %q", c.LMS.BaseURL)
		}
	}
	if c.LMS.RequestTimeoutSeconds < 0 {
		return errors.New("lms.request_timeout_seconds must not be negative")
	}
	return nil
}

var feedEventTypes = map[string]struct{}{
	"":           {},
	"assignment": {},
	"event":      {},
}

func (c *Config) validateFeed() error {
	if c.Feed.Concurrency <= 0 || c.Feed.Concurrency > maxFeedConcurrency {
		return fmt.Errorf("feed.concurrency must be between 1 and %d", maxFeedConcurrency)
	}
	if _, ok := feedEventTypes[c.Feed.EventType]; !ok {
		return fmt.Errorf("feed.event_type must be empty, \"assignment\" or \"event\", got %q", c.Feed.EventType)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
