package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vast/internal/archive"
	"vast/internal/downloader"
	"vast/internal/lms"
	"vast/internal/services"
	"vast/internal/testsupport"
)

const (
	testCourseID = 101
	testTermID   = 7
)

func seedCourse(env *cliTestEnv) lms.Course {
	score := 91.5
	course := lms.Course{
		ID:               testCourseID,
		Name:             "Biology",
		CourseCode:       "BIO101",
		EnrollmentTermID: testTermID,
		Enrollments:      []lms.Enrollment{{Type: "student", ComputedCurrentScore: &score}},
	}
	env.lms.AddCourse(course)
	return course
}

func TestCoursesCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCourse(env)

	out, _, err := runCLI(t, []string{"courses", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("courses: %v", err)
	}
	var views []courseView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(views) != 1 || views[0].ID != testCourseID {
		t.Fatalf("unexpected courses: %+v", views)
	}
	if views[0].Term != "Unnamed Term" || views[0].Score == nil || *views[0].Score != 91.5 {
		t.Fatalf("unexpected course view: %+v", views[0])
	}
	if views[0].Directory != "" {
		t.Fatalf("course should not be archived yet, got %q", views[0].Directory)
	}
}

func TestCoursesCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCourse(env)

	out, _, err := runCLI(t, []string{"courses"}, env.configPath)
	if err != nil {
		t.Fatalf("courses: %v", err)
	}
	requireContains(t, out, "BIO101")
	requireContains(t, out, "91.50%")
}

func TestMissingTokenIsConfigurationError(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAccessToken(""))

	_, _, err := runCLI(t, []string{"courses"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(env.lms.Requests()) != 0 {
		t.Fatalf("expected no requests, got %v", env.lms.Requests())
	}
}

func TestRejectedTokenIsAuthenticationError(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAccessToken("stale"))

	_, _, err := runCLI(t, []string{"courses"}, env.configPath)
	if !errors.Is(err, services.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if services.Hint(err) == "" {
		t.Fatal("expected a hint for authentication errors")
	}
}

func TestFeedCommandMergesSubmissions(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCourse(env)
	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	later := due.Add(24 * time.Hour)

	env.lms.AddAssignment(lms.Assignment{
		ID:         11,
		Name:       "Lab report",
		CourseID:   testCourseID,
		DueAt:      &due,
		Submission: &lms.Submission{WorkflowState: lms.SubmissionGraded},
	})
	env.lms.AddEvent(lms.UpcomingEvent{
		ID:         "assignment_11",
		Title:      "Lab report",
		Type:       "assignment",
		Assignment: &lms.EventAssignment{ID: 11, CourseID: testCourseID, DueAt: &due},
	})
	env.lms.AddEvent(lms.UpcomingEvent{
		ID:          "assignment_12",
		Title:       "Midterm Exam",
		Type:        "assignment",
		ContextCode: "course_101",
		Assignment:  &lms.EventAssignment{ID: 12, CourseID: testCourseID, DueAt: &later},
		Quiz:        &lms.EventQuiz{ID: 5, QuizType: lms.QuizTypeAssignment, Title: "Midterm Exam"},
	})

	out, _, err := runCLI(t, []string{"feed", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	var payload feedOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", payload.Items)
	}
	first := payload.Items[0]
	if first.ID != "assignment_11" || first.Submission == nil || first.Submission.WorkflowState != lms.SubmissionGraded {
		t.Fatalf("expected merged submission on first item, got %+v", first)
	}
	if first.CourseName != "Biology" {
		t.Fatalf("expected course name, got %q", first.CourseName)
	}
	if payload.Items[1].Type != "exam" {
		t.Fatalf("expected exam classification, got %q", payload.Items[1].Type)
	}
	if len(payload.CourseFailures) != 0 {
		t.Fatalf("unexpected course failures: %v", payload.CourseFailures)
	}

	out, _, err = runCLI(t, []string{"feed", "--type", "exam"}, env.configPath)
	if err != nil {
		t.Fatalf("feed --type exam: %v", err)
	}
	requireContains(t, out, "Midterm Exam")
	if strings.Contains(out, "Lab report") {
		t.Fatalf("type filter leaked other items:\n%s", out)
	}
}

func TestFeedCommandReportsDegradedCourses(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCourse(env)
	env.lms.AddEvent(lms.UpcomingEvent{
		ID:         "assignment_11",
		Title:      "Lab report",
		Type:       "assignment",
		Assignment: &lms.EventAssignment{ID: 11, CourseID: testCourseID},
	})
	env.lms.FailPath("/api/v1/courses/101/assignments", http.StatusInternalServerError)

	out, _, err := runCLI(t, []string{"feed"}, env.configPath)
	if err != nil {
		t.Fatalf("feed should degrade, got %v", err)
	}
	requireContains(t, out, "Lab report")
	requireContains(t, out, "submission status unavailable for course(s) 101")
}

func TestFeedCommandRejectsUnknownType(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"feed", "--type", "homework"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(env.lms.Requests()) != 0 {
		t.Fatalf("expected no requests, got %v", env.lms.Requests())
	}
}

func TestAssignmentsCommandBuckets(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCourse(env)
	past := time.Now().Add(-72 * time.Hour)
	future := time.Now().Add(72 * time.Hour)
	env.lms.AddAssignment(lms.Assignment{ID: 1, Name: "Upcoming essay", CourseID: testCourseID, DueAt: &future})
	env.lms.AddAssignment(lms.Assignment{ID: 2, Name: "Missed quiz", CourseID: testCourseID, DueAt: &past})
	env.lms.AddAssignment(lms.Assignment{
		ID:         3,
		Name:       "Turned in",
		CourseID:   testCourseID,
		DueAt:      &past,
		Submission: &lms.Submission{WorkflowState: lms.SubmissionSubmitted},
	})

	out, _, err := runCLI(t, []string{"assignments", "101"}, env.configPath)
	if err != nil {
		t.Fatalf("assignments: %v", err)
	}
	requireContains(t, out, "Active (1)")
	requireContains(t, out, "Past Due (1)")
	requireContains(t, out, "Submitted (1)")
}

func TestSetupRequiresTermNames(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCourse(env)

	_, _, err := runCLI(t, []string{"setup"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.cfg.Archive.BaseDir, archive.ConfigFileName)); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("sidecar should not be written on validation failure: %v", statErr)
	}
}

func TestSetupDownloadAndPath(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCourse(env)
	env.lms.AddAssignment(lms.Assignment{
		ID:       11,
		Name:     "Lab: Cells",
		CourseID: testCourseID,
		Description: `<p><a class="instructure_file_link" href="/courses/101/files/501/download" title="notes.pdf">notes</a>` +
			`<a class="instructure_file_link" href="/courses/101/files/502">slides.pdf</a></p>`,
	})
	env.lms.AddFile(testsupport.FakeFile{Info: lms.FileInfo{ID: 501, DisplayName: "notes.pdf"}, Content: []byte("notes")})
	env.lms.AddFile(testsupport.FakeFile{Info: lms.FileInfo{ID: 502, DisplayName: "slides.pdf"}, Content: []byte("slides"), BlobStatus: http.StatusForbidden})

	out, _, err := runCLI(t, []string{"setup", "--term", "7=Fall 2026"}, env.configPath)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	requireContains(t, out, "Created 1")
	courseDir := filepath.Join(env.cfg.Archive.BaseDir, "Fall 2026", "BIO101 - Biology")
	if info, err := os.Stat(courseDir); err != nil || !info.IsDir() {
		t.Fatalf("expected course directory %s: %v", courseDir, err)
	}

	out, _, err = runCLI(t, []string{"download", "101", "11", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("partial download should not fail: %v", err)
	}
	var result downloader.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if result.Outcome() != downloader.OutcomePartial || len(result.Files) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	assignmentDir := filepath.Join(courseDir, "Lab Cells")
	if got := testsupport.ReadFile(t, filepath.Join(assignmentDir, "notes.pdf")); got != "notes" {
		t.Fatalf("unexpected file content %q", got)
	}

	out, _, err = runCLI(t, []string{"path", "101", "11"}, env.configPath)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	requireContains(t, out, assignmentDir)

	_, _, err = runCLI(t, []string{"download", "101", "11", "--file", "502"}, env.configPath)
	if !errors.Is(err, services.ErrRemote) {
		t.Fatalf("expected remote error for a failed single file, got %v", err)
	}
}

func TestDownloadRequiresSetup(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCourse(env)
	env.lms.AddAssignment(lms.Assignment{
		ID:          11,
		Name:        "Lab",
		CourseID:    testCourseID,
		Description: `<a href="/courses/101/files/501">notes.pdf</a>`,
	})

	_, _, err := runCLI(t, []string{"download", "101", "11"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, path := range env.lms.Requests() {
		if path == "/api/v1/files/501" {
			t.Fatal("no file should be requested before setup")
		}
	}
}

func TestRenameCommandsUpdateSidecar(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"rename-term", "7", "Spring 2027"}, env.configPath); err != nil {
		t.Fatalf("rename-term: %v", err)
	}
	if _, _, err := runCLI(t, []string{"rename-course", "101", "Bio"}, env.configPath); err != nil {
		t.Fatalf("rename-course: %v", err)
	}
	cfg := archive.LoadConfig(env.cfg.Archive.BaseDir)
	if cfg.TermNames[testTermID] != "Spring 2027" || cfg.CourseDirectoryNames[testCourseID] != "Bio" {
		t.Fatalf("unexpected sidecar: %+v", cfg)
	}

	if _, _, err := runCLI(t, []string{"rename-course", "101", ""}, env.configPath); err != nil {
		t.Fatalf("rename-course reset: %v", err)
	}
	cfg = archive.LoadConfig(env.cfg.Archive.BaseDir)
	if _, ok := cfg.CourseDirectoryNames[testCourseID]; ok {
		t.Fatalf("expected override to be removed, got %+v", cfg.CourseDirectoryNames)
	}

	_, _, err := runCLI(t, []string{"rename-term", "abc", "x"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for bad id, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected refusal to overwrite, got %v", err)
	}
}
