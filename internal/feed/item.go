package feed

import (
	"time"

	"vast/internal/lms"
	"vast/internal/textutil"
)

// Type is the semantic category of a feed item.
type Type string

const (
	TypeAssignment    Type = "assignment"
	TypeQuiz          Type = "quiz"
	TypeExam          Type = "exam"
	TypeAnnouncement  Type = "announcement"
	TypeCalendarEvent Type = "calendar_event"
	TypeOther         Type = "other"
)

// Types lists every category in display order.
var Types = []Type{TypeExam, TypeAssignment, TypeQuiz, TypeAnnouncement, TypeCalendarEvent, TypeOther}

// ParseType returns the Type named by s.
func ParseType(s string) (Type, bool) {
	for _, t := range Types {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Label returns a human readable name such as "Calendar Event".
func (t Type) Label() string {
	return textutil.Humanize(string(t))
}

// Item is the normalized view of one upcoming event. When AssignmentID is
// set, Submission only ever comes from the per-course assignment listing.
type Item struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Type            Type            `json:"type"`
	Description     string          `json:"description,omitempty"`
	DueAt           *time.Time      `json:"due_at,omitempty"`
	StartAt         *time.Time      `json:"start_at,omitempty"`
	EndAt           *time.Time      `json:"end_at,omitempty"`
	CourseID        *int64          `json:"course_id,omitempty"`
	CourseName      string          `json:"course_name,omitempty"`
	PointsPossible  *float64        `json:"points_possible,omitempty"`
	SubmissionTypes []string        `json:"submission_types,omitempty"`
	AssignmentID    *int64          `json:"assignment_id,omitempty"`
	QuizID          *int64          `json:"quiz_id,omitempty"`
	LocationName    string          `json:"location_name,omitempty"`
	AllDay          bool            `json:"all_day"`
	WorkflowState   string          `json:"workflow_state,omitempty"`
	Submission      *lms.Submission `json:"submission,omitempty"`
	HTMLURL         string          `json:"html_url,omitempty"`
}
