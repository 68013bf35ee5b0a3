package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vast/internal/archive"
	"vast/internal/services"
)

func newSetupCommand(ctx *commandContext) *cobra.Command {
	var termFlags []string
	var courseFlags []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the term and course directories of the archive",
		Long: "Create {base}/{term}/{course} for every active course.\n\n" +
			"Every term with courses needs a name, given with --term <term-id>=<name> or saved by an earlier run. " +
			"Course directories default to \"<code> - <name>\"; override them with --course <course-id>=<directory>.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			termNames, err := parseAssignments(termFlags, "--term")
			if err != nil {
				return err
			}
			courseNames, err := parseAssignments(courseFlags, "--course")
			if err != nil {
				return err
			}

			runCtx, logger := ctx.runContext(cmd)
			cfg := ctx.configValue()
			if err := cfg.RequireArchive(); err != nil {
				return err
			}
			client, err := ctx.lmsClient(logger)
			if err != nil {
				return err
			}
			courses, err := client.ListCourses(runCtx)
			if err != nil {
				return err
			}

			result, err := archive.Setup(runCtx, archive.SetupOptions{
				BaseDir:              cfg.Archive.BaseDir,
				Courses:              courses,
				TermNames:            termNames,
				CourseDirectoryNames: courseNames,
				Logger:               logger,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, result.Summary())
				fmt.Fprintf(out, "Archive: %s\n", cfg.Archive.BaseDir)
				for _, msg := range result.Errors {
					fmt.Fprintf(out, "  - %s\n", msg)
				}
			}
			if len(result.Errors) > 0 {
				return services.Wrap(services.ErrFilesystem, "cli", "setup", fmt.Sprintf("setup completed with %d error(s)", len(result.Errors)), nil)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&termFlags, "term", nil, "Term name as <term-id>=<name> (repeatable)")
	cmd.Flags().StringArrayVar(&courseFlags, "course", nil, "Course directory as <course-id>=<directory> (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// parseAssignments parses repeated id=value flags.
func parseAssignments(values []string, flag string) (map[int64]string, error) {
	out := make(map[int64]string, len(values))
	for _, value := range values {
		rawID, name, ok := strings.Cut(value, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, services.Wrap(services.ErrValidation, "cli", "parse "+flag, fmt.Sprintf("expected %s <id>=<name>, got %q", flag, value), nil)
		}
		id, err := parseID(rawID, "id in "+flag)
		if err != nil {
			return nil, err
		}
		out[id] = strings.TrimSpace(name)
	}
	return out, nil
}

func newRenameCourseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-course <course-id> <directory-name>",
		Short: "Set the archive directory name of a course",
		Long:  "Set the archive directory name of a course. An empty name restores the default. Existing directories are not moved.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := parseID(args[0], "course id")
			if err != nil {
				return err
			}
			_, logger := ctx.runContext(cmd)
			resolver, err := ctx.resolver(logger)
			if err != nil {
				return err
			}
			if err := resolver.Store().SetCourseDirectoryName(courseID, args[1]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(args[1]) == "" {
				fmt.Fprintf(out, "Course %d now uses the default directory name\n", courseID)
			} else {
				fmt.Fprintf(out, "Course %d directory name set to %q\n", courseID, strings.TrimSpace(args[1]))
			}
			fmt.Fprintln(out, "Existing directories are not moved; run `vast setup` to create the new one.")
			return nil
		},
	}
}

func newRenameTermCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-term <term-id> <name>",
		Short: "Set the display and directory name of an enrollment term",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			termID, err := parseID(args[0], "term id")
			if err != nil {
				return err
			}
			if strings.TrimSpace(args[1]) == "" {
				return services.Wrap(services.ErrValidation, "cli", "rename term", "term name must not be empty", nil)
			}
			_, logger := ctx.runContext(cmd)
			resolver, err := ctx.resolver(logger)
			if err != nil {
				return err
			}
			if err := resolver.Store().SetTermName(termID, args[1]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Term %d name set to %q\n", termID, strings.TrimSpace(args[1]))
			fmt.Fprintln(out, "Existing directories are not moved; run `vast setup` to create the new one.")
			return nil
		},
	}
}

func newPathCommand(ctx *commandContext) *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "path <course-id> [assignment-id]",
		Short: "Print the archive directory of a course or assignment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := parseID(args[0], "course id")
			if err != nil {
				return err
			}
			runCtx, logger := ctx.runContext(cmd)
			runCtx = services.WithCourseID(runCtx, courseID)
			resolver, err := ctx.resolver(logger)
			if err != nil {
				return err
			}
			client, err := ctx.lmsClient(logger)
			if err != nil {
				return err
			}
			course, err := findCourse(runCtx, client, courseID)
			if err != nil {
				return err
			}

			var path string
			if len(args) == 1 {
				path = resolver.CoursePath(course)
				if create {
					if path, err = resolver.EnsureCoursePath(course); err != nil {
						return err
					}
				}
			} else {
				assignmentID, err := parseID(args[1], "assignment id")
				if err != nil {
					return err
				}
				assignment, err := client.GetAssignment(runCtx, courseID, assignmentID)
				if err != nil {
					return err
				}
				path = resolver.AssignmentPath(course, *assignment)
				if create {
					if path, err = resolver.EnsureAssignmentPath(course, *assignment); err != nil {
						return err
					}
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "Create the directory if it does not exist")
	return cmd
}
