package feed_test

import (
	"testing"

	"vast/internal/feed"
	"vast/internal/lms"
)

func TestSortByDueIsStableWithUndatedLast(t *testing.T) {
	items := []feed.Item{
		{ID: "a", DueAt: nil},
		{ID: "b", DueAt: day(3)},
		{ID: "c", DueAt: day(1)},
		{ID: "d", DueAt: nil},
		{ID: "e", DueAt: day(3)},
	}
	feed.SortByDue(items)

	want := []string{"c", "b", "e", "a", "d"}
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, items[i].ID, id)
		}
	}
}

func TestCategorizeUsesDisplayOrder(t *testing.T) {
	items := []feed.Item{
		{ID: "1", Type: feed.TypeAnnouncement},
		{ID: "2", Type: feed.TypeAssignment},
		{ID: "3", Type: feed.TypeExam},
		{ID: "4", Type: feed.TypeAssignment},
	}
	groups := feed.Categorize(items)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Type != feed.TypeExam || groups[1].Type != feed.TypeAssignment || groups[2].Type != feed.TypeAnnouncement {
		t.Fatalf("unexpected order %v %v %v", groups[0].Type, groups[1].Type, groups[2].Type)
	}
	if groups[1].Items[0].ID != "2" || groups[1].Items[1].ID != "4" {
		t.Fatalf("bucket lost input order: %#v", groups[1].Items)
	}
	if got := feed.FilterByType(items, feed.TypeAssignment); len(got) != 2 {
		t.Fatalf("FilterByType returned %d items", len(got))
	}
}

func TestTypeLabelAndParse(t *testing.T) {
	if got := feed.TypeCalendarEvent.Label(); got != "Calendar Event" {
		t.Fatalf("Label = %q", got)
	}
	if typ, ok := feed.ParseType("exam"); !ok || typ != feed.TypeExam {
		t.Fatalf("ParseType(exam) = %q, %v", typ, ok)
	}
	if _, ok := feed.ParseType("homework"); ok {
		t.Fatal("unexpected match for unknown type")
	}
}

func TestEntryVariants(t *testing.T) {
	courseID := int64(8)
	points := 5.0
	entries := []feed.Entry{
		feed.FromAssignment(lms.Assignment{ID: 1, Name: "Essay", CourseID: 3, DueAt: day(4), PointsPossible: 10}),
		feed.FromItem(feed.Item{Title: "Quiz 1", Type: feed.TypeQuiz, CourseID: &courseID, PointsPossible: &points}),
	}
	if entries[0].Title() != "Essay" || entries[1].Title() != "Quiz 1" {
		t.Fatalf("unexpected titles %q %q", entries[0].Title(), entries[1].Title())
	}
	if id, ok := entries[0].CourseID(); !ok || id != 3 {
		t.Fatalf("assignment course id = %d %v", id, ok)
	}
	if id, ok := entries[1].CourseID(); !ok || id != 8 {
		t.Fatalf("item course id = %d %v", id, ok)
	}
	if entries[0].DueAt() == nil || entries[1].DueAt() != nil {
		t.Fatal("unexpected due dates")
	}
	if entries[1].Label() != "Quiz" || entries[0].Label() != "Assignment" {
		t.Fatalf("unexpected labels %q %q", entries[0].Label(), entries[1].Label())
	}
	if p, ok := entries[1].PointsPossible(); !ok || p != 5 {
		t.Fatalf("points = %v %v", p, ok)
	}
	var zero feed.Entry
	if zero.Title() != "" || zero.Submission() != nil {
		t.Fatal("zero entry should be empty")
	}
}
