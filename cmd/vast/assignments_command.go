package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vast/internal/coursework"
	"vast/internal/feed"
	"vast/internal/filelinks"
	"vast/internal/lms"
	"vast/internal/services"
	"vast/internal/textutil"
)

func newAssignmentsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "assignments <course-id>",
		Short: "List a course's assignments grouped as active, past due and submitted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := parseID(args[0], "course id")
			if err != nil {
				return err
			}
			runCtx, logger := ctx.runContext(cmd)
			runCtx = services.WithCourseID(runCtx, courseID)
			client, err := ctx.lmsClient(logger)
			if err != nil {
				return err
			}
			assignments, err := client.ListAssignments(runCtx, courseID)
			if err != nil {
				return err
			}

			now := time.Now()
			buckets := coursework.Classify(assignments, now)
			if jsonOutput {
				return writeJSON(cmd, buckets)
			}

			out := cmd.OutOrStdout()
			if buckets.Len() == 0 {
				fmt.Fprintln(out, "No assignments")
				return nil
			}
			colorize := shouldColorize(out)
			for _, section := range assignmentSections(buckets) {
				if len(section.entries) == 0 {
					continue
				}
				for _, line := range renderSectionHeader(section.title, len(section.entries), section.color, colorize) {
					fmt.Fprintln(out, line)
				}
				entries := make([]feed.Entry, 0, len(section.entries))
				for _, a := range section.entries {
					entries = append(entries, feed.FromAssignment(a))
				}
				fmt.Fprintln(out, renderEntries(entries, now, false))
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type assignmentDetail struct {
	Assignment lms.Assignment   `json:"assignment"`
	Submitted  bool             `json:"submitted"`
	Files      []filelinks.Link `json:"files"`
	Path       string           `json:"path,omitempty"`
}

func newAssignmentCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "assignment <course-id> <assignment-id>",
		Short: "Show one assignment with its linked files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := parseID(args[0], "course id")
			if err != nil {
				return err
			}
			assignmentID, err := parseID(args[1], "assignment id")
			if err != nil {
				return err
			}
			runCtx, logger := ctx.runContext(cmd)
			runCtx = services.WithCourseID(runCtx, courseID)
			client, err := ctx.lmsClient(logger)
			if err != nil {
				return err
			}
			assignment, err := client.GetAssignment(runCtx, courseID, assignmentID)
			if err != nil {
				return err
			}

			detail := assignmentDetail{
				Assignment: *assignment,
				Submitted:  coursework.IsSubmitted(*assignment),
				Files:      filelinks.ExtractWithLogger(assignment.Description, logger),
			}
			if detail.Files == nil {
				detail.Files = []filelinks.Link{}
			}
			if resolver, err := ctx.resolver(logger); err == nil {
				if course, err := findCourse(runCtx, client, courseID); err == nil {
					detail.Path = resolver.AssignmentPath(course, *assignment)
				}
			}

			if jsonOutput {
				return writeJSON(cmd, detail)
			}
			printAssignmentDetail(cmd, detail, time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printAssignmentDetail(cmd *cobra.Command, detail assignmentDetail, now time.Time) {
	out := cmd.OutOrStdout()
	a := detail.Assignment
	fmt.Fprintf(out, "%s\n", a.Name)
	fmt.Fprintf(out, "  Due:         %s\n", formatDue(a.DueAt, now))
	fmt.Fprintf(out, "  Points:      %s\n", formatPoints(a.PointsPossible, a.PointsPossible > 0))
	fmt.Fprintf(out, "  Submission:  %s\n", submissionStatus(a.Submission))
	if len(a.SubmissionTypes) > 0 {
		types := make([]string, 0, len(a.SubmissionTypes))
		for _, t := range a.SubmissionTypes {
			types = append(types, textutil.Humanize(t))
		}
		fmt.Fprintf(out, "  Submit via:  %s\n", strings.Join(types, ", "))
	}
	if a.HTMLURL != "" {
		fmt.Fprintf(out, "  URL:         %s\n", a.HTMLURL)
	}
	if detail.Path != "" {
		fmt.Fprintf(out, "  Archive:     %s\n", detail.Path)
	}
	fmt.Fprintln(out)

	if len(detail.Files) == 0 {
		fmt.Fprintln(out, "No linked files")
		return
	}
	rows := make([][]string, 0, len(detail.Files))
	for _, link := range detail.Files {
		rows = append(rows, []string{fmt.Sprintf("%d", link.FileID), link.Filename})
	}
	fmt.Fprintln(out, renderTable([]string{"File ID", "Filename"}, rows, []columnAlignment{alignRight, alignLeft}))
}
