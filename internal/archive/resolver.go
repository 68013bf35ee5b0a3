package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vast/internal/fileutil"
	"vast/internal/lms"
	"vast/internal/services"
	"vast/internal/textutil"
)

const unnamedTerm = "Unnamed Term"

// TermDisplayName returns the configured name of a term, or "Unnamed Term".
func TermDisplayName(termID int64, cfg Config) string {
	if name := strings.TrimSpace(cfg.TermNames[termID]); name != "" {
		return name
	}
	return unnamedTerm
}

// DefaultCourseDirectoryName formats "{course_code} - {name}".
func DefaultCourseDirectoryName(course lms.Course) string {
	code := strings.TrimSpace(course.CourseCode)
	if code == "" {
		code = fmt.Sprintf("Course-%d", course.ID)
	}
	name := strings.TrimSpace(course.Name)
	if name == "" {
		name = "Untitled Course"
	}
	return code + " - " + name
}

// CourseDirectoryName returns the configured directory name of a course, or
// the default derived from its code and name.
func CourseDirectoryName(course lms.Course, cfg Config) string {
	if name := strings.TrimSpace(cfg.CourseDirectoryNames[course.ID]); name != "" {
		return name
	}
	return DefaultCourseDirectoryName(course)
}

func termSegment(termID int64, cfg Config) string {
	return textutil.SegmentOrFallback(TermDisplayName(termID, cfg), fmt.Sprintf("Term-%d", termID))
}

func courseSegment(course lms.Course, cfg Config) string {
	return textutil.SegmentOrFallback(CourseDirectoryName(course, cfg), fmt.Sprintf("Course-%d", course.ID))
}

func assignmentSegment(assignment lms.Assignment) string {
	return textutil.SegmentOrFallback(assignment.Name, fmt.Sprintf("Assignment-%d", assignment.ID))
}

// Resolver computes archive paths under one base directory. Each call reads
// the sidecar so renames made by another process are picked up.
type Resolver struct {
	store *Store
}

// NewResolver creates a Resolver rooted at baseDir.
func NewResolver(baseDir string, logger *slog.Logger) *Resolver {
	return &Resolver{store: NewStore(baseDir, logger)}
}

// Store exposes the sidecar store of the resolver's base directory.
func (r *Resolver) Store() *Store { return r.store }

// BaseDir returns the archive root.
func (r *Resolver) BaseDir() string { return r.store.BaseDir() }

// CoursePath returns {base}/{term}/{course} without touching the filesystem
// beyond reading the sidecar.
func (r *Resolver) CoursePath(course lms.Course) string {
	cfg := r.store.Load()
	return filepath.Join(r.BaseDir(), termSegment(course.EnrollmentTermID, cfg), courseSegment(course, cfg))
}

// AssignmentPath returns {base}/{term}/{course}/{assignment}.
func (r *Resolver) AssignmentPath(course lms.Course, assignment lms.Assignment) string {
	return filepath.Join(r.CoursePath(course), assignmentSegment(assignment))
}

// EnsureCoursePath creates the course directory if needed and returns it.
func (r *Resolver) EnsureCoursePath(course lms.Course) (string, error) {
	path := r.CoursePath(course)
	if err := os.MkdirAll(path, dirMode); err != nil {
		return "", services.Wrap(services.ErrFilesystem, componentName, "create course directory", path, err)
	}
	return path, nil
}

// EnsureAssignmentPath creates the assignment directory if needed and returns it.
func (r *Resolver) EnsureAssignmentPath(course lms.Course, assignment lms.Assignment) (string, error) {
	path := r.AssignmentPath(course, assignment)
	if err := os.MkdirAll(path, dirMode); err != nil {
		return "", services.Wrap(services.ErrFilesystem, componentName, "create assignment directory", path, err)
	}
	return path, nil
}

// CourseExists reports whether the course directory has been created.
func (r *Resolver) CourseExists(course lms.Course) bool {
	return fileutil.DirExists(r.CoursePath(course))
}
