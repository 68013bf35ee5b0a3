package feed_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vast/internal/feed"
	"vast/internal/lms"
)

type fakeSource struct {
	events      []lms.UpcomingEvent
	eventsErr   error
	courses     []lms.Course
	coursesErr  error
	assignments map[int64][]lms.Assignment
	failCourses map[int64]error

	mu            sync.Mutex
	requested     []int64
	eventType     string
	inFlight      atomic.Int32
	peakInFlight  atomic.Int32
	assignmentLag time.Duration
}

func (f *fakeSource) ListUpcomingEvents(_ context.Context, eventType string) ([]lms.UpcomingEvent, error) {
	f.eventType = eventType
	return f.events, f.eventsErr
}

func (f *fakeSource) ListCourses(context.Context) ([]lms.Course, error) {
	return f.courses, f.coursesErr
}

func (f *fakeSource) ListAssignments(_ context.Context, courseID int64) ([]lms.Assignment, error) {
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peakInFlight.Load()
		if current <= peak || f.peakInFlight.CompareAndSwap(peak, current) {
			break
		}
	}
	if f.assignmentLag > 0 {
		time.Sleep(f.assignmentLag)
	}
	f.mu.Lock()
	f.requested = append(f.requested, courseID)
	f.mu.Unlock()
	if err := f.failCourses[courseID]; err != nil {
		return nil, err
	}
	return f.assignments[courseID], nil
}

func day(d int) *time.Time {
	ts := time.Date(2025, 5, d, 9, 0, 0, 0, time.UTC)
	return &ts
}

func assignmentEvent(id, courseID int64, title string, due *time.Time) lms.UpcomingEvent {
	return lms.UpcomingEvent{
		Title:      title,
		Type:       "assignment",
		Assignment: &lms.EventAssignment{ID: id, CourseID: courseID, DueAt: due},
	}
}

func TestFetchMergesSubmissionsAndSorts(t *testing.T) {
	source := &fakeSource{
		events: []lms.UpcomingEvent{
			assignmentEvent(11, 1, "Essay", day(20)),
			{ID: "announcement_1", Title: "Welcome", Type: "announcement", ContextCode: "course_1"},
			assignmentEvent(21, 2, "Problem set", day(10)),
			assignmentEvent(12, 1, "Reading log", day(15)),
		},
		courses: []lms.Course{{ID: 1, Name: "Writing"}, {ID: 2, Name: "Calculus"}},
		assignments: map[int64][]lms.Assignment{
			1: {
				{ID: 11, Submission: &lms.Submission{WorkflowState: lms.SubmissionGraded}},
				{ID: 12, Submission: &lms.Submission{WorkflowState: lms.SubmissionUnsubmitted}},
			},
			2: {{ID: 21, Submission: &lms.Submission{WorkflowState: lms.SubmissionSubmitted}}},
		},
	}

	items, report, err := feed.NewAggregator(source).FetchReport(context.Background())
	if err != nil {
		t.Fatalf("FetchReport returned error: %v", err)
	}
	if report.Degraded() {
		t.Fatalf("unexpected failures: %v", report.CourseFailures)
	}

	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	if got := strings.Join(titles, ","); got != "Problem set,Reading log,Essay,Welcome" {
		t.Fatalf("unexpected order %s", got)
	}
	if items[0].CourseName != "Calculus" || items[3].CourseName != "Writing" {
		t.Fatalf("course names not joined: %q %q", items[0].CourseName, items[3].CourseName)
	}
	if items[0].Submission == nil || items[0].Submission.WorkflowState != lms.SubmissionSubmitted {
		t.Fatalf("unexpected submission %#v", items[0].Submission)
	}
	if items[2].Submission == nil || items[2].Submission.WorkflowState != lms.SubmissionGraded {
		t.Fatalf("unexpected submission %#v", items[2].Submission)
	}
	if items[3].Submission != nil {
		t.Fatal("announcement must not receive a submission")
	}
	if len(source.requested) != 2 {
		t.Fatalf("expected one assignment fetch per distinct course, got %v", source.requested)
	}
}

func TestFetchSurvivesCourseFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	failure := errors.New("boom")
	source := &fakeSource{
		events: []lms.UpcomingEvent{
			assignmentEvent(11, 1, "Essay", day(2)),
			assignmentEvent(21, 2, "Problem set", day(1)),
		},
		courses:     []lms.Course{{ID: 1, Name: "Writing"}, {ID: 2, Name: "Calculus"}},
		assignments: map[int64][]lms.Assignment{1: {{ID: 11, Submission: &lms.Submission{WorkflowState: lms.SubmissionGraded}}}},
		failCourses: map[int64]error{2: failure},
	}

	items, report, err := feed.NewAggregator(source, feed.WithLogger(logger)).FetchReport(context.Background())
	if err != nil {
		t.Fatalf("per-course failure must not fail the feed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected both items, got %d", len(items))
	}
	if items[0].Submission != nil {
		t.Fatal("failed course item should have no submission")
	}
	if items[1].Submission == nil {
		t.Fatal("healthy course item should keep its submission")
	}
	if !errors.Is(report.CourseFailures[2], failure) || len(report.CourseFailures) != 1 {
		t.Fatalf("unexpected report %v", report.CourseFailures)
	}
	if !strings.Contains(logs.String(), `"event_type":"feed_course_merge_failed"`) {
		t.Fatalf("expected merge failure warning, got %s", logs.String())
	}
}

func TestFetchTopLevelFailuresAreFatal(t *testing.T) {
	eventsErr := errors.New("events down")
	if _, err := feed.NewAggregator(&fakeSource{eventsErr: eventsErr}).Fetch(context.Background()); !errors.Is(err, eventsErr) {
		t.Fatalf("expected events error, got %v", err)
	}
	coursesErr := errors.New("courses down")
	if _, err := feed.NewAggregator(&fakeSource{coursesErr: coursesErr}).Fetch(context.Background()); !errors.Is(err, coursesErr) {
		t.Fatalf("expected courses error, got %v", err)
	}
}

func TestFetchMissingAssignmentLeavesNoSubmission(t *testing.T) {
	source := &fakeSource{
		events:      []lms.UpcomingEvent{assignmentEvent(99, 1, "Ghost", nil)},
		courses:     []lms.Course{{ID: 1, Name: "Writing"}},
		assignments: map[int64][]lms.Assignment{1: {{ID: 11}}},
	}
	items, err := feed.NewAggregator(source).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Submission != nil {
		t.Fatalf("unexpected items %#v", items)
	}
}

func TestFetchBoundsConcurrencyAndPassesEventType(t *testing.T) {
	source := &fakeSource{
		courses:       []lms.Course{},
		assignments:   map[int64][]lms.Assignment{},
		assignmentLag: 10 * time.Millisecond,
	}
	for id := int64(1); id <= 6; id++ {
		source.events = append(source.events, assignmentEvent(id*10, id, "Work", nil))
	}

	_, err := feed.NewAggregator(source, feed.WithConcurrency(2), feed.WithEventType("assignment")).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if peak := source.peakInFlight.Load(); peak > 2 {
		t.Fatalf("expected at most 2 concurrent fetches, saw %d", peak)
	}
	if len(source.requested) != 6 {
		t.Fatalf("expected 6 course fetches, got %d", len(source.requested))
	}
	if source.eventType != "assignment" {
		t.Fatalf("event type = %q", source.eventType)
	}
}
