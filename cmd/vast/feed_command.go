package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vast/internal/feed"
	"vast/internal/logging"
	"vast/internal/services"
)

type feedOutput struct {
	Items          []feed.Item      `json:"items"`
	CourseFailures map[int64]string `json:"course_failures,omitempty"`
}

func newFeedCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show upcoming assignments, quizzes, exams and events across courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter feed.Type
			if strings.TrimSpace(typeFilter) != "" {
				parsed, ok := feed.ParseType(strings.TrimSpace(typeFilter))
				if !ok {
					valid := make([]string, 0, len(feed.Types))
					for _, t := range feed.Types {
						valid = append(valid, string(t))
					}
					return services.Wrap(services.ErrValidation, "cli", "feed", fmt.Sprintf("unknown type %q (valid: %s)", typeFilter, strings.Join(valid, ", ")), nil)
				}
				filter = parsed
			}

			runCtx, logger := ctx.runContext(cmd)
			client, err := ctx.lmsClient(logger)
			if err != nil {
				return err
			}
			cfg := ctx.configValue()
			aggregator := feed.NewAggregator(client,
				feed.WithLogger(logger),
				feed.WithConcurrency(cfg.Feed.Concurrency),
				feed.WithEventType(cfg.Feed.EventType),
			)
			started := time.Now()
			items, report, err := aggregator.FetchReport(runCtx)
			if err != nil {
				return err
			}
			logger.Debug("feed fetched",
				logging.Int("items", len(items)),
				logging.Int("failed_courses", len(report.CourseFailures)),
				logging.Duration("elapsed", time.Since(started)),
			)
			if filter != "" {
				items = feed.FilterByType(items, filter)
			}

			if jsonOutput {
				output := feedOutput{Items: items}
				if items == nil {
					output.Items = []feed.Item{}
				}
				if report.Degraded() {
					output.CourseFailures = make(map[int64]string, len(report.CourseFailures))
					for id, failure := range report.CourseFailures {
						output.CourseFailures[id] = failure.Error()
					}
				}
				return writeJSON(cmd, output)
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Nothing upcoming")
			}
			colorize := shouldColorize(out)
			now := time.Now()
			for _, group := range feed.Categorize(items) {
				for _, line := range renderSectionHeader(group.Type.Label(), len(group.Items), typeColor(group.Type), colorize) {
					fmt.Fprintln(out, line)
				}
				entries := make([]feed.Entry, 0, len(group.Items))
				for _, item := range group.Items {
					entries = append(entries, feed.FromItem(item))
				}
				fmt.Fprintln(out, renderEntries(entries, now, true))
				fmt.Fprintln(out)
			}
			if report.Degraded() {
				ids := make([]string, 0, len(report.CourseFailures))
				for id := range report.CourseFailures {
					ids = append(ids, fmt.Sprintf("%d", id))
				}
				slices.Sort(ids)
				fmt.Fprintf(out, "Note: submission status unavailable for course(s) %s\n", strings.Join(ids, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "Only show one type: exam, assignment, quiz, announcement, calendar_event or other")
	return cmd
}
