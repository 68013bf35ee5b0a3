// Package coursework sorts a course's assignments into the buckets shown in
// listings: active, past due and submitted.
package coursework

import (
	"slices"
	"time"

	"vast/internal/feed"
	"vast/internal/lms"
)

// Buckets partitions a course's assignments. Every input assignment lands in
// exactly one bucket.
type Buckets struct {
	Active    []lms.Assignment `json:"active"`
	PastDue   []lms.Assignment `json:"past_due"`
	Submitted []lms.Assignment `json:"submitted"`
}

// Len returns the total number of assignments across buckets.
func (b Buckets) Len() int {
	return len(b.Active) + len(b.PastDue) + len(b.Submitted)
}

// IsSubmitted reports whether the assignment's submission counts as handed in.
func IsSubmitted(a lms.Assignment) bool {
	if a.Submission == nil {
		return false
	}
	switch a.Submission.WorkflowState {
	case lms.SubmissionSubmitted, lms.SubmissionGraded, lms.SubmissionPendingReview:
		return true
	default:
		return false
	}
}

// Classify partitions assignments relative to now. Submitted wins over any
// due date; otherwise a due date strictly before now is past due. Active is
// sorted soonest first, past due and submitted most recent first; undated
// assignments trail each bucket and ties keep input order.
func Classify(assignments []lms.Assignment, now time.Time) Buckets {
	var buckets Buckets
	for _, a := range assignments {
		switch {
		case IsSubmitted(a):
			buckets.Submitted = append(buckets.Submitted, a)
		case a.DueAt != nil && a.DueAt.Before(now):
			buckets.PastDue = append(buckets.PastDue, a)
		default:
			buckets.Active = append(buckets.Active, a)
		}
	}

	slices.SortStableFunc(buckets.Active, func(x, y lms.Assignment) int {
		return feed.CompareDue(x.DueAt, y.DueAt)
	})
	slices.SortStableFunc(buckets.PastDue, newestFirst)
	slices.SortStableFunc(buckets.Submitted, newestFirst)
	return buckets
}

func newestFirst(x, y lms.Assignment) int {
	switch {
	case x.DueAt == nil && y.DueAt == nil:
		return 0
	case x.DueAt == nil:
		return 1
	case y.DueAt == nil:
		return -1
	default:
		return y.DueAt.Compare(*x.DueAt)
	}
}

// Entries flattens the buckets into listing entries in display order.
func (b Buckets) Entries() []feed.Entry {
	entries := make([]feed.Entry, 0, b.Len())
	for _, bucket := range [][]lms.Assignment{b.Active, b.PastDue, b.Submitted} {
		for _, a := range bucket {
			entries = append(entries, feed.FromAssignment(a))
		}
	}
	return entries
}
