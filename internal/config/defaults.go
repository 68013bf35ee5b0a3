package config

const (
	defaultRequestTimeoutSeconds = 30
	defaultUserAgent             = "vast/dev"
	defaultArchiveBaseDir        = "~/Vast"
	defaultFeedConcurrency       = 4
	maxFeedConcurrency           = 32
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		LMS: LMS{
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			UserAgent:             defaultUserAgent,
		},
		Feed: Feed{
			Concurrency: defaultFeedConcurrency,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
