package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vast/internal/downloader"
	"vast/internal/filelinks"
	"vast/internal/services"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var fileID int64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "download <course-id> <assignment-id>",
		Short: "Download the files linked from an assignment into the archive",
		Long: "Download every file linked from the assignment description into\n" +
			"{base}/{term}/{course}/{assignment}. Existing files are never overwritten;\n" +
			"a name collision saves the new file as \"name (1).ext\". Run `vast setup` first.",
		Args: cobra.ExactArgs(2),
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
			assignment, err := client.GetAssignment(runCtx, courseID, assignmentID)
			if err != nil {
				return err
			}

			dl := downloader.New(client, resolver, downloader.WithLogger(logger))
			var result downloader.Result
			if fileID > 0 {
				name := ""
				for _, link := range filelinks.Extract(assignment.Description) {
					if link.FileID == fileID {
						name = link.Filename
						break
					}
				}
				file := dl.DownloadOne(runCtx, fileID, name, *assignment, course)
				result = downloader.Result{Success: file.Success, Files: []downloader.FileResult{file}, Error: file.Error}
				if file.Success {
					result.AssignmentDirectory = resolver.AssignmentPath(course, *assignment)
				}
			} else {
				result = dl.DownloadAll(runCtx, *assignment, course)
			}

			if jsonOutput {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				printDownloadResult(cmd, result)
			}

			switch result.Outcome() {
			case downloader.OutcomeFailed:
				cause := firstFileError(result)
				if cause == nil {
					return services.Wrap(services.ErrValidation, "cli", "download", result.Error, nil)
				}
				return services.Wrap(services.ErrRemote, "cli", "download", result.Error, cause)
			default:
				return nil
			}
		},
	}

	cmd.Flags().Int64Var(&fileID, "file", 0, "Download only this file id")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printDownloadResult(cmd *cobra.Command, result downloader.Result) {
	out := cmd.OutOrStdout()
	if len(result.Files) > 0 {
		rows := make([][]string, 0, len(result.Files))
		for _, file := range result.Files {
			status := "ok"
			detail := file.Path
			if !file.Success {
				status = "failed"
				detail = file.Error
			}
			rows = append(rows, []string{strconv.FormatInt(file.FileID, 10), file.Filename, status, formatBytes(file.Bytes, file.Success), detail})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"File", "Name", "Status", "Size", "Path / Error"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
		))
	}
	switch result.Outcome() {
	case downloader.OutcomeComplete:
		fmt.Fprintf(out, "Downloaded %d file(s) to %s\n", len(result.Files), result.AssignmentDirectory)
	case downloader.OutcomePartial:
		fmt.Fprintf(out, "Partial download: %s\n", result.Error)
		if result.AssignmentDirectory != "" {
			fmt.Fprintf(out, "Saved to %s\n", result.AssignmentDirectory)
		}
	}
}

func firstFileError(result downloader.Result) error {
	for _, file := range result.Files {
		if file.Err != nil {
			return file.Err
		}
	}
	return nil
}

func formatBytes(n int64, ok bool) string {
	if !ok {
		return "-"
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
