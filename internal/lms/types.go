package lms

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Course is an active course enrollment returned by the courses endpoint.
type Course struct {
	ID               int64        `json:"id"`
	Name             string       `json:"name"`
	CourseCode       string       `json:"course_code"`
	EnrollmentTermID int64        `json:"enrollment_term_id"`
	WorkflowState    string       `json:"workflow_state"`
	StartAt          *time.Time   `json:"start_at,omitempty"`
	EndAt            *time.Time   `json:"end_at,omitempty"`
	Enrollments      []Enrollment `json:"enrollments,omitempty"`
}

// Enrollment carries the grade summary included with total_scores.
type Enrollment struct {
	Type                 string   `json:"type"`
	ComputedCurrentScore *float64 `json:"computed_current_score,omitempty"`
	ComputedCurrentGrade string   `json:"computed_current_grade,omitempty"`
}

// CurrentScore returns the first enrollment score, if any.
func (c Course) CurrentScore() (float64, bool) {
	for _, enrollment := range c.Enrollments {
		if enrollment.ComputedCurrentScore != nil {
			return *enrollment.ComputedCurrentScore, true
		}
	}
	return 0, false
}

// Assignment is a course assignment with the caller's submission attached.
type Assignment struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	DueAt           *time.Time  `json:"due_at,omitempty"`
	PointsPossible  float64     `json:"points_possible"`
	CourseID        int64       `json:"course_id"`
	SubmissionTypes []string    `json:"submission_types,omitempty"`
	Submission      *Submission `json:"submission,omitempty"`
	HTMLURL         string      `json:"html_url,omitempty"`
}

// Submission states reported by the LMS.
const (
	SubmissionUnsubmitted   = "unsubmitted"
	SubmissionSubmitted     = "submitted"
	SubmissionGraded        = "graded"
	SubmissionPendingReview = "pending_review"
)

// Submission is the current user's attempt at an assignment.
type Submission struct {
	ID            int64      `json:"id"`
	AssignmentID  int64      `json:"assignment_id"`
	UserID        int64      `json:"user_id"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	GradedAt      *time.Time `json:"graded_at,omitempty"`
	WorkflowState string     `json:"workflow_state"`
	Score         *float64   `json:"score,omitempty"`
	Grade         string     `json:"grade,omitempty"`
	Late          bool       `json:"late,omitempty"`
	Missing       bool       `json:"missing,omitempty"`
}

// UpcomingEvent is one entry from /users/self/upcoming_events. Assignment
// events carry an Assignment payload, quiz events a Quiz payload; calendar
// events and announcements carry neither. Events never include submissions.
type UpcomingEvent struct {
	ID              EventID          `json:"id"`
	Title           string           `json:"title"`
	Type            string           `json:"type"`
	Description     string           `json:"description,omitempty"`
	WorkflowState   string           `json:"workflow_state,omitempty"`
	AllDay          bool             `json:"all_day"`
	StartAt         *time.Time       `json:"start_at,omitempty"`
	EndAt           *time.Time       `json:"end_at,omitempty"`
	LocationName    string           `json:"location_name,omitempty"`
	ContextCode     string           `json:"context_code,omitempty"`
	HTMLURL         string           `json:"html_url,omitempty"`
	SubmissionTypes StringList       `json:"submission_types,omitempty"`
	Assignment      *EventAssignment `json:"assignment,omitempty"`
	Quiz            *EventQuiz       `json:"quiz,omitempty"`
}

// CourseIDFromContext parses a "course_<id>" context code.
func (e UpcomingEvent) CourseIDFromContext() (int64, bool) {
	raw, ok := strings.CutPrefix(e.ContextCode, "course_")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// EventAssignment is the assignment payload nested in an upcoming event.
type EventAssignment struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name,omitempty"`
	Description     string     `json:"description,omitempty"`
	DueAt           *time.Time `json:"due_at,omitempty"`
	PointsPossible  *float64   `json:"points_possible,omitempty"`
	CourseID        int64      `json:"course_id,omitempty"`
	SubmissionTypes []string   `json:"submission_types,omitempty"`
	HTMLURL         string     `json:"html_url,omitempty"`
}

// Quiz types that may represent a graded exam.
const (
	QuizTypeAssignment   = "assignment"
	QuizTypeGradedSurvey = "graded_survey"
	QuizTypePractice     = "practice_quiz"
	QuizTypeSurvey       = "survey"
)

// EventQuiz is the quiz payload nested in an upcoming event.
type EventQuiz struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title,omitempty"`
	QuizType        string     `json:"quiz_type,omitempty"`
	DueAt           *time.Time `json:"due_at,omitempty"`
	PointsPossible  *float64   `json:"points_possible,omitempty"`
	CourseID        int64      `json:"course_id,omitempty"`
	SubmissionTypes []string   `json:"submission_types,omitempty"`
	HTMLURL         string     `json:"html_url,omitempty"`
}

// FileInfo is the metadata of a course file.
type FileInfo struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content-type"`
}

// Name returns the most descriptive filename available.
func (f FileInfo) Name() string {
	if name := strings.TrimSpace(f.DisplayName); name != "" {
		return name
	}
	return strings.TrimSpace(f.Filename)
}

// EventID accepts both numeric and string identifiers ("assignment_12").
type EventID string

func (id *EventID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*id = EventID(text)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*id = EventID(number.String())
	return nil
}

// StringList accepts either a JSON array of strings or a single
// comma-separated string, which is how event-level submission types arrive.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	var out []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*l = out
	return nil
}
