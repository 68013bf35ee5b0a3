// Package downloader saves the files linked from an assignment description
// into the assignment's archive directory.
package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"vast/internal/archive"
	"vast/internal/filelinks"
	"vast/internal/fileutil"
	"vast/internal/lms"
	"vast/internal/logging"
	"vast/internal/services"
	"vast/internal/textutil"
)

const (
	errCourseMissing = "course directory does not exist; run setup first"
	errNoDescription = "assignment has no description"
	errNoFiles       = "no files found in assignment description"
	errSomeFailed    = "some files failed"
	errAllFailed     = "all files failed to download"
)

// Files is the part of the LMS client used to resolve and fetch files.
type Files interface {
	GetFile(ctx context.Context, fileID int64) (*lms.FileInfo, error)
	Download(ctx context.Context, info lms.FileInfo, dest string) (int64, error)
}

// Outcome summarizes an assignment download.
type Outcome string

const (
	OutcomeComplete Outcome = "complete"
	OutcomePartial  Outcome = "partial"
	OutcomeFailed   Outcome = "failed"
)

// FileResult is the outcome of one file download.
type FileResult struct {
	FileID   int64  `json:"file_id"`
	Filename string `json:"filename"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Path     string `json:"path,omitempty"`
	Bytes    int64  `json:"bytes,omitempty"`
	Err      error  `json:"-"`
}

// Result is the outcome of downloading every file of an assignment. Success
// is true only when every file landed.
type Result struct {
	Success             bool         `json:"success"`
	Files               []FileResult `json:"files"`
	AssignmentDirectory string       `json:"assignment_directory,omitempty"`
	Error               string       `json:"error,omitempty"`
}

// Succeeded counts the files that landed.
func (r Result) Succeeded() int {
	count := 0
	for _, file := range r.Files {
		if file.Success {
			count++
		}
	}
	return count
}

// Outcome classifies the result as complete, partial or failed.
func (r Result) Outcome() Outcome {
	switch {
	case r.Success:
		return OutcomeComplete
	case r.Succeeded() > 0:
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}

// Downloader fetches assignment attachments into the archive.
type Downloader struct {
	files    Files
	resolver *archive.Resolver
	logger   *slog.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithLogger sets the logger for per-file diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a Downloader writing below the resolver's base directory.
func New(files Files, resolver *archive.Resolver, opts ...Option) *Downloader {
	d := &Downloader{
		files:    files,
		resolver: resolver,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(d.logger, "downloader")
	return d
}

// DownloadAll downloads every file linked from the assignment description.
// Files are fetched one after another; a failed file never stops the rest.
func (d *Downloader) DownloadAll(ctx context.Context, assignment lms.Assignment, course lms.Course) Result {
	if !d.resolver.CourseExists(course) {
		return Result{Error: errCourseMissing}
	}
	if strings.TrimSpace(assignment.Description) == "" {
		return Result{Error: errNoDescription}
	}
	links := filelinks.ExtractWithLogger(assignment.Description, d.logger)
	if len(links) == 0 {
		return Result{Error: errNoFiles}
	}

	dir, err := d.resolver.EnsureAssignmentPath(course, assignment)
	if err != nil {
		return Result{Error: err.Error()}
	}

	result := Result{AssignmentDirectory: dir, Files: make([]FileResult, 0, len(links))}
	for _, link := range links {
		result.Files = append(result.Files, d.downloadInto(ctx, dir, link.FileID, link.Filename, assignment.ID))
	}

	succeeded := result.Succeeded()
	switch {
	case succeeded == len(result.Files):
		result.Success = true
	case succeeded > 0:
		result.Error = fmt.Sprintf("%d of %d files downloaded; %s", succeeded, len(result.Files), errSomeFailed)
	default:
		result.Error = errAllFailed
	}
	d.logger.Info("assignment download finished",
		logging.Int64(logging.FieldAssignmentID, assignment.ID),
		logging.Int64(logging.FieldCourseID, course.ID),
		logging.String("outcome", string(result.Outcome())),
		logging.Int("succeeded", succeeded),
		logging.Int("total", len(result.Files)),
	)
	return result
}

// DownloadOne downloads a single file into the assignment directory.
// filename is used when the LMS metadata carries no name.
func (d *Downloader) DownloadOne(ctx context.Context, fileID int64, filename string, assignment lms.Assignment, course lms.Course) FileResult {
	if !d.resolver.CourseExists(course) {
		return FileResult{FileID: fileID, Filename: filename, Error: errCourseMissing}
	}
	dir, err := d.resolver.EnsureAssignmentPath(course, assignment)
	if err != nil {
		return failed(fileID, filename, err)
	}
	return d.downloadInto(ctx, dir, fileID, filename, assignment.ID)
}

func (d *Downloader) downloadInto(ctx context.Context, dir string, fileID int64, fallbackName string, assignmentID int64) FileResult {
	info, err := d.files.GetFile(ctx, fileID)
	if err != nil {
		d.warn(fileID, assignmentID, "file metadata lookup failed", err)
		return failed(fileID, fallbackName, err)
	}
	if info.ID == 0 {
		info.ID = fileID
	}

	name := info.Name()
	if name == "" {
		name = fallbackName
	}
	name = textutil.SegmentOrFallback(name, fmt.Sprintf("file-%d", fileID))
	unique, err := fileutil.UniqueFilename(dir, name)
	if err != nil {
		err = services.Wrap(services.ErrFilesystem, "downloader", "choose filename", name, err)
		d.warn(fileID, assignmentID, "choosing a filename failed", err)
		return failed(fileID, name, err)
	}

	dest := filepath.Join(dir, unique)
	written, err := d.files.Download(ctx, *info, dest)
	if err != nil {
		d.warn(fileID, assignmentID, "file download failed", err)
		return failed(fileID, name, err)
	}
	return FileResult{FileID: fileID, Filename: unique, Success: true, Path: dest, Bytes: written}
}

func (d *Downloader) warn(fileID, assignmentID int64, msg string, err error) {
	hint := services.Hint(err)
	if hint == "" {
		hint = "retry the download"
	}
	logging.WarnWithContext(d.logger, msg, "download_file_failed",
		logging.Int64(logging.FieldFileID, fileID),
		logging.Int64(logging.FieldAssignmentID, assignmentID),
		logging.Error(err),
		logging.String(logging.FieldImpact, "this file was skipped; other files continue"),
		logging.String(logging.FieldErrorHint, hint),
	)
}

func failed(fileID int64, filename string, err error) FileResult {
	return FileResult{FileID: fileID, Filename: filename, Error: err.Error(), Err: err}
}
