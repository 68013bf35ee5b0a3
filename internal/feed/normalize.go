package feed

import (
	"fmt"

	"github.com/samber/lo"

	"vast/internal/lms"
)

// ToItem maps a raw upcoming event onto Item. The due date prefers the
// event's end_at, then the nested assignment's due_at, then the nested
// quiz's. Submission is always nil here; events never carry grading state.
func ToItem(event lms.UpcomingEvent, courseName string) Item {
	assignment, quiz := event.Assignment, event.Quiz
	item := Item{
		ID:            string(event.ID),
		Title:         event.Title,
		Type:          classify(event.Type, event.Title, assignment, quiz),
		Description:   event.Description,
		StartAt:       event.StartAt,
		EndAt:         event.EndAt,
		CourseName:    courseName,
		LocationName:  event.LocationName,
		AllDay:        event.AllDay,
		WorkflowState: event.WorkflowState,
		HTMLURL:       event.HTMLURL,
	}

	item.DueAt = event.EndAt
	switch {
	case assignment != nil:
		item.AssignmentID = lo.ToPtr(assignment.ID)
		item.PointsPossible = assignment.PointsPossible
		item.SubmissionTypes = assignment.SubmissionTypes
		if item.DueAt == nil {
			item.DueAt = assignment.DueAt
		}
		if assignment.CourseID != 0 {
			item.CourseID = lo.ToPtr(assignment.CourseID)
		}
		item.Title = lo.CoalesceOrEmpty(item.Title, assignment.Name)
		item.Description = lo.CoalesceOrEmpty(item.Description, assignment.Description)
		item.HTMLURL = lo.CoalesceOrEmpty(item.HTMLURL, assignment.HTMLURL)
	case quiz != nil:
		item.QuizID = lo.ToPtr(quiz.ID)
		item.PointsPossible = quiz.PointsPossible
		item.SubmissionTypes = quiz.SubmissionTypes
		if item.DueAt == nil {
			item.DueAt = quiz.DueAt
		}
		if quiz.CourseID != 0 {
			item.CourseID = lo.ToPtr(quiz.CourseID)
		}
		item.Title = lo.CoalesceOrEmpty(item.Title, quiz.Title)
		item.HTMLURL = lo.CoalesceOrEmpty(item.HTMLURL, quiz.HTMLURL)
	}
	// An event can carry both payloads; the quiz due date still applies.
	if item.DueAt == nil && quiz != nil {
		item.DueAt = quiz.DueAt
	}
	if len(item.SubmissionTypes) == 0 && len(event.SubmissionTypes) > 0 {
		item.SubmissionTypes = []string(event.SubmissionTypes)
	}
	if item.CourseID == nil {
		if id, ok := event.CourseIDFromContext(); ok {
			item.CourseID = lo.ToPtr(id)
		}
	}
	if item.ID == "" {
		item.ID = fallbackID(item)
	}
	return item
}

func fallbackID(item Item) string {
	switch {
	case item.AssignmentID != nil:
		return fmt.Sprintf("assignment_%d", *item.AssignmentID)
	case item.QuizID != nil:
		return fmt.Sprintf("quiz_%d", *item.QuizID)
	default:
		return ""
	}
}
