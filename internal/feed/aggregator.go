package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"vast/internal/lms"
	"vast/internal/logging"
)

const (
	defaultConcurrency = 4
	componentName      = "feed"
)

// Source is the part of the LMS client the aggregator needs.
type Source interface {
	ListCourses(ctx context.Context) ([]lms.Course, error)
	ListAssignments(ctx context.Context, courseID int64) ([]lms.Assignment, error)
	ListUpcomingEvents(ctx context.Context, eventType string) ([]lms.UpcomingEvent, error)
}

// Aggregator builds the unified feed.
type Aggregator struct {
	source      Source
	logger      *slog.Logger
	concurrency int
	eventType   string
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for per-course merge diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithConcurrency bounds the number of concurrent per-course fetches.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithEventType narrows the upcoming events request ("assignment" or "event").
func WithEventType(eventType string) Option {
	return func(a *Aggregator) {
		a.eventType = eventType
	}
}

// NewAggregator constructs an Aggregator reading from source.
func NewAggregator(source Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:      source,
		logger:      logging.NewNop(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, componentName)
	return a
}

// Report describes the parts of a fetch that degraded without failing it.
type Report struct {
	// CourseFailures maps course ids to the error that prevented merging
	// their submission state.
	CourseFailures map[int64]error
}

// Degraded reports whether any course merge failed.
func (r Report) Degraded() bool {
	return len(r.CourseFailures) > 0
}

// Fetch returns the merged, sorted feed.
func (a *Aggregator) Fetch(ctx context.Context) ([]Item, error) {
	items, _, err := a.FetchReport(ctx)
	return items, err
}

// FetchReport returns the merged, sorted feed together with the courses
// whose assignment fetch failed. Failing to list events or courses is fatal;
// a failed course only leaves its items without submission data.
func (a *Aggregator) FetchReport(ctx context.Context) ([]Item, Report, error) {
	report := Report{CourseFailures: map[int64]error{}}

	events, err := a.source.ListUpcomingEvents(ctx, a.eventType)
	if err != nil {
		return nil, report, err
	}
	courses, err := a.source.ListCourses(ctx)
	if err != nil {
		return nil, report, err
	}
	courseNames := make(map[int64]string, len(courses))
	for _, course := range courses {
		courseNames[course.ID] = course.Name
	}

	items := make([]Item, 0, len(events))
	for _, event := range events {
		item := ToItem(event, "")
		if item.CourseID != nil {
			item.CourseName = courseNames[*item.CourseID]
		}
		items = append(items, item)
	}

	courseIDs := lo.Uniq(lo.FilterMap(items, func(item Item, _ int) (int64, bool) {
		if item.AssignmentID == nil || item.CourseID == nil {
			return 0, false
		}
		return *item.CourseID, true
	}))
	submissions := a.fetchSubmissions(ctx, courseIDs, report.CourseFailures)
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	for i := range items {
		item := &items[i]
		if item.AssignmentID == nil {
			continue
		}
		item.Submission = nil
		if item.CourseID == nil {
			continue
		}
		if byAssignment, ok := submissions[*item.CourseID]; ok {
			item.Submission = byAssignment[*item.AssignmentID]
		}
	}

	SortByDue(items)
	return items, report, nil
}

// fetchSubmissions lists each course's assignments concurrently and indexes
// their submissions. Failures are logged and recorded, never returned.
func (a *Aggregator) fetchSubmissions(ctx context.Context, courseIDs []int64, failures map[int64]error) map[int64]map[int64]*lms.Submission {
	var (
		mu     sync.Mutex
		result = make(map[int64]map[int64]*lms.Submission, len(courseIDs))
		group  errgroup.Group
	)
	group.SetLimit(a.concurrency)

	for _, courseID := range courseIDs {
		group.Go(func() error {
			assignments, err := a.source.ListAssignments(ctx, courseID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[courseID] = err
				logging.WarnWithContext(a.logger, "course assignment merge failed", "feed_course_merge_failed",
					logging.Int64(logging.FieldCourseID, courseID),
					logging.Error(err),
					logging.String(logging.FieldImpact, "items from this course show no submission state"),
					logging.String(logging.FieldErrorHint, "re-run the feed; check the token can read this course"),
				)
				return nil
			}
			byAssignment := make(map[int64]*lms.Submission, len(assignments))
			for _, assignment := range assignments {
				byAssignment[assignment.ID] = assignment.Submission
			}
			result[courseID] = byAssignment
			return nil
		})
	}
	_ = group.Wait()
	return result
}
