package textutil

import (
	"strings"
	"testing"
)

func TestSanitizePathSegmentStripsUnsafeCharacters(t *testing.T) {
	got := SanitizePathSegment("Fall/2025: CS*101")
	if strings.ContainsAny(got, `/\:*?"<>|`) {
		t.Fatalf("unsafe characters remain in %q", got)
	}
	if got != "Fall2025 CS101" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
}

func TestSanitizePathSegmentTrimsDotsAndSpaces(t *testing.T) {
	cases := map[string]string{
		"  ..Report.. ":   "Report",
		". hidden":        "hidden",
		"Week 1 / Intro.": "Week 1  Intro",
		`a<b>c"d|e?f\g`:   "abcdefg",
	}
	for input, want := range cases {
		if got := SanitizePathSegment(input); got != want {
			t.Errorf("SanitizePathSegment(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizePathSegmentCanBeEmpty(t *testing.T) {
	if got := SanitizePathSegment(" ./:*. "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestSegmentOrFallback(t *testing.T) {
	if got := SegmentOrFallback("???", "Course-42"); got != "Course-42" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := SegmentOrFallback("CS 101", "Course-42"); got != "CS 101" {
		t.Fatalf("expected original, got %q", got)
	}
}

func TestContainsAnyFold(t *testing.T) {
	if !ContainsAnyFold("MIDTERM Review", "exam", "midterm") {
		t.Fatal("expected case-insensitive match")
	}
	if ContainsAnyFold("Quiz 3", "exam", "test", "midterm", "final") {
		t.Fatal("unexpected match")
	}
	if ContainsAnyFold("anything", "") {
		t.Fatal("empty keyword must not match")
	}
}

func TestHumanize(t *testing.T) {
	if got := Humanize("calendar_event"); got != "Calendar Event" {
		t.Fatalf("Humanize = %q", got)
	}
	if got := Humanize(""); got != "" {
		t.Fatalf("Humanize(empty) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("Introduction to Algorithms", 10); got != "Introdu..." {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abcdef", 2); got != "ab" {
		t.Fatalf("Truncate = %q", got)
	}
}
