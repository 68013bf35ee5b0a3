package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"vast/internal/fileutil"
	"vast/internal/lms"
	"vast/internal/logging"
	"vast/internal/services"
)

// SetupOptions describes one archive setup run. Names given here are merged
// over the names already stored in the sidecar.
type SetupOptions struct {
	BaseDir              string
	Courses              []lms.Course
	TermNames            map[int64]string
	CourseDirectoryNames map[int64]string
	Logger               *slog.Logger
}

// SetupResult counts what setup created. Per-course failures are collected
// in Errors rather than aborting the run.
type SetupResult struct {
	BaseExisted   bool     `json:"base_existed"`
	Created       int      `json:"created"`
	Existing      int      `json:"existing"`
	ExistingTerms int      `json:"existing_terms"`
	Errors        []string `json:"errors,omitempty"`
}

// Summary renders the result as one human readable sentence list.
func (r SetupResult) Summary() string {
	var parts []string
	if r.Created > 0 {
		parts = append(parts, "Created "+formatCount(r.Created, "new directory", "new directories"))
	}
	if r.Existing > 0 {
		parts = append(parts, formatCount(r.Existing, "directory already exists", "directories already exist"))
	}
	if r.BaseExisted {
		parts = append(parts, "Base directory already exists")
	}
	if r.ExistingTerms > 0 {
		parts = append(parts, formatCount(r.ExistingTerms, "term directory already exists", "term directories already exist"))
	}
	if len(r.Errors) > 0 {
		parts = append(parts, formatCount(len(r.Errors), "error occurred", "errors occurred"))
	}
	if len(parts) == 0 {
		return "Setup complete"
	}
	return strings.Join(parts, ". ") + "."
}

// GroupByTerm groups courses by enrollment term and returns the term ids in
// first-seen order.
func GroupByTerm(courses []lms.Course) ([]int64, map[int64][]lms.Course) {
	order := lo.Uniq(lo.Map(courses, func(c lms.Course, _ int) int64 { return c.EnrollmentTermID }))
	grouped := lo.GroupBy(courses, func(c lms.Course) int64 { return c.EnrollmentTermID })
	return order, grouped
}

// Setup creates {base}/{term}/{course} for every course and saves the merged
// names. Every term that has courses must have a non-blank name.
func Setup(ctx context.Context, opts SetupOptions) (SetupResult, error) {
	var result SetupResult
	baseDir := strings.TrimSpace(opts.BaseDir)
	if baseDir == "" {
		return result, services.Wrap(services.ErrConfiguration, componentName, "setup", "archive base directory required", nil)
	}
	store := NewStore(baseDir, opts.Logger)
	result.BaseExisted = fileutil.DirExists(baseDir)

	err := store.Update(func(cfg *Config) error {
		for id, name := range opts.TermNames {
			if strings.TrimSpace(name) != "" {
				cfg.TermNames[id] = strings.TrimSpace(name)
			}
		}
		for id, name := range opts.CourseDirectoryNames {
			if strings.TrimSpace(name) != "" {
				cfg.CourseDirectoryNames[id] = strings.TrimSpace(name)
			}
		}

		terms, grouped := GroupByTerm(opts.Courses)
		for _, termID := range terms {
			if strings.TrimSpace(cfg.TermNames[termID]) == "" {
				count := len(grouped[termID])
				return services.Wrap(services.ErrValidation, componentName, "setup",
					fmt.Sprintf("enter a name for term %d containing %s", termID, formatCount(count, "course", "courses")), nil)
			}
		}

		for _, termID := range terms {
			if err := ctx.Err(); err != nil {
				return err
			}
			createTerm(store.logger, baseDir, termID, grouped[termID], *cfg, &result)
		}
		return nil
	})
	return result, err
}

func createTerm(logger *slog.Logger, baseDir string, termID int64, courses []lms.Course, cfg Config, result *SetupResult) {
	termPath := filepath.Join(baseDir, termSegment(termID, cfg))
	if fileutil.DirExists(termPath) {
		result.ExistingTerms++
	} else if err := os.MkdirAll(termPath, dirMode); err != nil {
		for _, course := range courses {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to create directory for %s: %v", course.Name, err))
		}
		logging.WarnWithContext(logger, "term directory creation failed", "archive_term_create_failed",
			logging.Int64("term_id", termID),
			logging.String("path", termPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "courses in this term were not set up"),
			logging.String(logging.FieldErrorHint, "check that the archive directory is writable"),
		)
		return
	}

	for _, course := range courses {
		coursePath := filepath.Join(termPath, courseSegment(course, cfg))
		if fileutil.DirExists(coursePath) {
			result.Existing++
			continue
		}
		if err := os.MkdirAll(coursePath, dirMode); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to create directory for %s: %v", course.Name, err))
			logging.WarnWithContext(logger, "course directory creation failed", "archive_course_create_failed",
				logging.Int64(logging.FieldCourseID, course.ID),
				logging.String("path", coursePath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "files for this course cannot be downloaded"),
				logging.String(logging.FieldErrorHint, "check that the archive directory is writable"),
			)
			continue
		}
		result.Created++
	}
}
