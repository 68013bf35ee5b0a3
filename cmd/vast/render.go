package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"vast/internal/coursework"
	"vast/internal/feed"
	"vast/internal/lms"
	"vast/internal/textutil"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	dueLayout     = "Mon Jan 2 15:04"
	maxTitleRunes = 48
)

func renderSectionHeader(title string, count int, color string, colorize bool) []string {
	line := fmt.Sprintf("== %s (%d) ==", strings.TrimSpace(title), count)
	rule := strings.Repeat("-", len(line))
	if colorize && color != "" {
		line = color + line + ansiReset
		rule = color + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatDue(due *time.Time, now time.Time) string {
	if due == nil {
		return "No due date"
	}
	local := due.In(now.Location())
	formatted := local.Format(dueLayout)
	if due.Before(now) {
		return formatted + " (past)"
	}
	if due.Sub(now) < 24*time.Hour {
		return formatted + " (soon)"
	}
	return formatted
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return strconv.FormatFloat(*score, 'f', 2, 64) + "%"
}

func formatPoints(points float64, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(points, 'f', -1, 64)
}

// submissionStatus describes a submission for listings.
func submissionStatus(sub *lms.Submission) string {
	switch {
	case sub == nil:
		return "-"
	case sub.WorkflowState == lms.SubmissionGraded && sub.Score != nil:
		return "graded " + strconv.FormatFloat(*sub.Score, 'f', -1, 64)
	case sub.Missing:
		return "missing"
	case sub.Late && sub.WorkflowState != lms.SubmissionUnsubmitted:
		return textutil.Humanize(sub.WorkflowState) + " (late)"
	default:
		return textutil.Humanize(sub.WorkflowState)
	}
}

func renderEntries(entries []feed.Entry, now time.Time, showType bool) string {
	headers := []string{"ID", "Title", "Due", "Points", "Status"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft}
	if showType {
		headers = []string{"ID", "Title", "Type", "Course", "Due", "Points", "Status"}
		aligns = []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		points, graded := entry.PointsPossible()
		row := []string{entry.ID(), textutil.Truncate(entry.Title(), maxTitleRunes)}
		if showType {
			row = append(row, entry.Label(), entryCourse(entry))
		}
		row = append(row, formatDue(entry.DueAt(), now), formatPoints(points, graded), submissionStatus(entry.Submission()))
		rows = append(rows, row)
	}
	return renderTable(headers, rows, aligns)
}

func entryCourse(entry feed.Entry) string {
	if entry.Kind == feed.EntryFeedItem && entry.Item.CourseName != "" {
		return textutil.Truncate(entry.Item.CourseName, 28)
	}
	if id, ok := entry.CourseID(); ok {
		return strconv.FormatInt(id, 10)
	}
	return "-"
}

type bucketSection struct {
	title   string
	color   string
	entries []lms.Assignment
}

func assignmentSections(buckets coursework.Buckets) []bucketSection {
	return []bucketSection{
		{title: "Active", color: ansiGreen, entries: buckets.Active},
		{title: "Past Due", color: ansiRed, entries: buckets.PastDue},
		{title: "Submitted", color: ansiBlue, entries: buckets.Submitted},
	}
}

func typeColor(t feed.Type) string {
	switch t {
	case feed.TypeExam:
		return ansiRed
	case feed.TypeAssignment, feed.TypeQuiz:
		return ansiYellow
	default:
		return ansiBlue
	}
}
