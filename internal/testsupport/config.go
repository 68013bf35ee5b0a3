package testsupport

import (
	"path/filepath"
	"testing"

	"vast/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.LMS.BaseURL = "https://canvas.test"
	cfgVal.LMS.AccessToken = "test-token"
	cfgVal.Archive.BaseDir = filepath.Join(base, "archive")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLMSServer points the config at a fake LMS server.
func WithLMSServer(server *LMSServer) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LMS.BaseURL = server.URL
		b.cfg.LMS.AccessToken = server.Token
	}
}

// WithAccessToken overrides the LMS access token.
func WithAccessToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LMS.AccessToken = token
	}
}

// WithFeedConcurrency overrides the per-course fetch limit.
func WithFeedConcurrency(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Feed.Concurrency = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Archive.BaseDir)
}
