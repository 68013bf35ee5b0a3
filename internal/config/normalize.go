package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeLMS()
	if err := c.normalizeArchive(); err != nil {
		return err
	}
	c.normalizeFeed()
	return c.normalizeLogging()
}

func (c *Config) normalizeLMS() {
	c.LMS.BaseURL = strings.TrimSpace(c.LMS.BaseURL)
	if c.LMS.BaseURL == "" {
		c.LMS.BaseURL = envValue("VAST_LMS_BASE_URL")
	}
	c.LMS.BaseURL = strings.TrimRight(c.LMS.BaseURL, "/")
	c.LMS.AccessToken = strings.TrimSpace(c.LMS.AccessToken)
	if c.LMS.AccessToken == "" {
		c.LMS.AccessToken = envValue("VAST_LMS_TOKEN", "CANVAS_API_TOKEN")
	}
	c.LMS.UserAgent = strings.TrimSpace(c.LMS.UserAgent)
	if c.LMS.UserAgent == "" {
		c.LMS.UserAgent = defaultUserAgent
	}
	if c.LMS.RequestTimeoutSeconds < 0 {
		c.LMS.RequestTimeoutSeconds = 0
	}
}

func (c *Config) normalizeArchive() error {
	c.Archive.BaseDir = strings.TrimSpace(c.Archive.BaseDir)
	if c.Archive.BaseDir == "" {
		c.Archive.BaseDir = envValue("VAST_BASE_DIR")
		if c.Archive.BaseDir == "" {
			c.Archive.BaseDir = defaultArchiveBaseDir
		}
	}
	var err error
	if c.Archive.BaseDir, err = expandPath(c.Archive.BaseDir); err != nil {
		return fmt.Errorf("archive.base_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFeed() {
	if c.Feed.Concurrency <= 0 {
		c.Feed.Concurrency = defaultFeedConcurrency
	}
	c.Feed.EventType = strings.ToLower(strings.TrimSpace(c.Feed.EventType))
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

// envValue returns the first non-blank value among keys. A variable that is
// set but empty counts as unset.
func envValue(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}
