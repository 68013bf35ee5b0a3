package feed

import (
	"strconv"
	"time"

	"vast/internal/lms"
)

// EntryKind tags which variant an Entry holds.
type EntryKind int

const (
	EntryAssignment EntryKind = iota + 1
	EntryFeedItem
)

// Entry is a listing row backed by either a course assignment or a feed
// item. Exactly one of Assignment and Item is set, matching Kind.
type Entry struct {
	Kind       EntryKind
	Assignment *lms.Assignment
	Item       *Item
}

// FromAssignment wraps an assignment.
func FromAssignment(a lms.Assignment) Entry {
	return Entry{Kind: EntryAssignment, Assignment: &a}
}

// FromItem wraps a feed item.
func FromItem(item Item) Entry {
	return Entry{Kind: EntryFeedItem, Item: &item}
}

// ID returns the LMS identifier shown in listings.
func (e Entry) ID() string {
	switch e.Kind {
	case EntryAssignment:
		return strconv.FormatInt(e.Assignment.ID, 10)
	case EntryFeedItem:
		return e.Item.ID
	}
	return ""
}

func (e Entry) Title() string {
	switch e.Kind {
	case EntryAssignment:
		return e.Assignment.Name
	case EntryFeedItem:
		return e.Item.Title
	}
	return ""
}

func (e Entry) DueAt() *time.Time {
	switch e.Kind {
	case EntryAssignment:
		return e.Assignment.DueAt
	case EntryFeedItem:
		return e.Item.DueAt
	}
	return nil
}

func (e Entry) Submission() *lms.Submission {
	switch e.Kind {
	case EntryAssignment:
		return e.Assignment.Submission
	case EntryFeedItem:
		return e.Item.Submission
	}
	return nil
}

// CourseID returns the owning course when known.
func (e Entry) CourseID() (int64, bool) {
	switch e.Kind {
	case EntryAssignment:
		return e.Assignment.CourseID, e.Assignment.CourseID != 0
	case EntryFeedItem:
		if e.Item.CourseID != nil {
			return *e.Item.CourseID, true
		}
	}
	return 0, false
}

// Label returns the display category of the entry.
func (e Entry) Label() string {
	switch e.Kind {
	case EntryAssignment:
		return TypeAssignment.Label()
	case EntryFeedItem:
		return e.Item.Type.Label()
	}
	return ""
}

// PointsPossible returns the maximum score, if the entry is graded.
func (e Entry) PointsPossible() (float64, bool) {
	switch e.Kind {
	case EntryAssignment:
		return e.Assignment.PointsPossible, e.Assignment.PointsPossible > 0
	case EntryFeedItem:
		if e.Item.PointsPossible != nil {
			return *e.Item.PointsPossible, *e.Item.PointsPossible > 0
		}
	}
	return 0, false
}
