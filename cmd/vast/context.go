package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vast/internal/archive"
	"vast/internal/config"
	"vast/internal/lms"
	"vast/internal/logging"
	"vast/internal/services"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if c.verbose != nil && *c.verbose {
			cfg.Logging.Level = "debug"
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) baseLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger, _ = logging.New(logging.Options{Level: "warn", Format: "console", Terse: true})
		}
		c.logger = logger
	})
	return c.logger
}

// runContext stamps a correlation id and the command path on the command's
// context and returns a logger carrying both.
func (c *commandContext) runContext(cmd *cobra.Command) (context.Context, *slog.Logger) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithRequestID(ctx, uuid.NewString())
	ctx = services.WithCommand(ctx, cmd.CommandPath())
	return ctx, logging.WithContext(ctx, c.baseLogger())
}

func (c *commandContext) lmsClient(logger *slog.Logger) (*lms.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireLMS(); err != nil {
		return nil, err
	}
	return lms.New(cfg.LMS.BaseURL, cfg.LMS.AccessToken,
		lms.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		lms.WithUserAgent(cfg.LMS.UserAgent),
		lms.WithLogger(logger),
	)
}

func (c *commandContext) resolver(logger *slog.Logger) (*archive.Resolver, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireArchive(); err != nil {
		return nil, err
	}
	return archive.NewResolver(cfg.Archive.BaseDir, logger), nil
}

// findCourse looks a course up among the active enrollments; there is no
// single-course lookup that also returns enrollment scores.
func findCourse(ctx context.Context, client lms.API, courseID int64) (lms.Course, error) {
	courses, err := client.ListCourses(ctx)
	if err != nil {
		return lms.Course{}, err
	}
	for _, course := range courses {
		if course.ID == courseID {
			return course, nil
		}
	}
	return lms.Course{}, services.Wrap(services.ErrNotFound, "cli", "find course", fmt.Sprintf("course %d is not an active enrollment", courseID), nil)
}

func parseID(value, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, services.Wrap(services.ErrValidation, "cli", "parse "+what, fmt.Sprintf("invalid %s %q", what, value), nil)
	}
	return id, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
