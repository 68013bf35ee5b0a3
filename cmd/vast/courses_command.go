package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vast/internal/archive"
	"vast/internal/lms"
)

type courseView struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	CourseCode string   `json:"course_code"`
	TermID     int64    `json:"term_id"`
	Term       string   `json:"term"`
	Score      *float64 `json:"score,omitempty"`
	Directory  string   `json:"directory,omitempty"`
}

func newCoursesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List active courses with term and current score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, logger := ctx.runContext(cmd)
			client, err := ctx.lmsClient(logger)
			if err != nil {
				return err
			}
			courses, err := client.ListCourses(runCtx)
			if err != nil {
				return err
			}

			// Term names are optional here; listing works before setup.
			archiveCfg := archive.NewConfig()
			var resolver *archive.Resolver
			if r, err := ctx.resolver(logger); err == nil {
				resolver = r
				archiveCfg = r.Store().Load()
			}

			views := make([]courseView, 0, len(courses))
			for _, course := range courses {
				view := courseView{
					ID:         course.ID,
					Name:       course.Name,
					CourseCode: course.CourseCode,
					TermID:     course.EnrollmentTermID,
					Term:       archive.TermDisplayName(course.EnrollmentTermID, archiveCfg),
					Score:      currentScore(course),
				}
				if resolver != nil && resolver.CourseExists(course) {
					view.Directory = resolver.CoursePath(course)
				}
				views = append(views, view)
			}

			if jsonOutput {
				return writeJSON(cmd, views)
			}
			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No active courses")
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, view := range views {
				archived := "no"
				if view.Directory != "" {
					archived = "yes"
				}
				rows = append(rows, []string{
					strconv.FormatInt(view.ID, 10),
					view.CourseCode,
					view.Name,
					fmt.Sprintf("%s (%d)", view.Term, view.TermID),
					formatScore(view.Score),
					archived,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Code", "Name", "Term", "Score", "Archived"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func currentScore(course lms.Course) *float64 {
	if score, ok := course.CurrentScore(); ok {
		return &score
	}
	return nil
}
