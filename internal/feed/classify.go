package feed

import (
	"github.com/samber/lo"

	"vast/internal/lms"
	"vast/internal/textutil"
)

// examKeywords mark an assignment or graded quiz as an exam. The match is a
// case-folded substring test, so "Latest news" also counts. The LMS exposes
// no exam flag; this is a best-effort label.
var examKeywords = []string{"exam", "test", "midterm", "final"}

// Classify infers the semantic type of an event from its type tag and
// whichever nested payload is present. Without a keyword match the less
// specific type wins (quiz or assignment over exam).
func Classify(tag string, assignment *lms.EventAssignment, quiz *lms.EventQuiz) Type {
	return classify(tag, "", assignment, quiz)
}

// classify checks the payload title and falls back to the event title when
// the payload carries none.
func classify(tag, eventTitle string, assignment *lms.EventAssignment, quiz *lms.EventQuiz) Type {
	if quiz != nil || tag == "quiz" {
		if quiz == nil {
			return TypeQuiz
		}
		switch quiz.QuizType {
		case lms.QuizTypeAssignment, lms.QuizTypeGradedSurvey:
			if textutil.ContainsAnyFold(lo.CoalesceOrEmpty(quiz.Title, eventTitle), examKeywords...) {
				return TypeExam
			}
		}
		return TypeQuiz
	}
	if assignment != nil {
		if textutil.ContainsAnyFold(lo.CoalesceOrEmpty(assignment.Name, eventTitle), examKeywords...) {
			return TypeExam
		}
		return TypeAssignment
	}
	switch tag {
	case "assignment":
		return TypeAssignment
	case "announcement":
		return TypeAnnouncement
	case "calendar_event", "event":
		return TypeCalendarEvent
	default:
		return TypeOther
	}
}
