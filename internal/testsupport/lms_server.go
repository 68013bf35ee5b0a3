package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"vast/internal/lms"
)

// FakeFile is a file served by LMSServer.
type FakeFile struct {
	Info       lms.FileInfo
	Content    []byte
	// BlobStatus, when non-zero, is returned instead of the file bytes.
	BlobStatus int
}

// LMSServer is an in-process fake of the LMS REST API. It serves courses,
// assignments, upcoming events, file metadata and file bytes, and can be told
// to fail specific paths.
type LMSServer struct {
	*httptest.Server
	Token string

	mu          sync.Mutex
	courses     []lms.Course
	assignments map[int64][]lms.Assignment
	events      []lms.UpcomingEvent
	files       map[int64]FakeFile
	failures    map[string]int
	requests    []string
}

// NewLMSServer starts a fake LMS and closes it when the test ends.
func NewLMSServer(t testing.TB) *LMSServer {
	t.Helper()

	s := &LMSServer{
		Token:       "fake-token",
		assignments: map[int64][]lms.Assignment{},
		files:       map[int64]FakeFile{},
		failures:    map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/courses", s.handleCourses)
	mux.HandleFunc("GET /api/v1/courses/{course}/assignments", s.handleAssignments)
	mux.HandleFunc("GET /api/v1/courses/{course}/assignments/{assignment}", s.handleAssignment)
	mux.HandleFunc("GET /api/v1/users/self/upcoming_events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/files/{file}", s.handleFile)
	mux.HandleFunc("GET /blobs/{file}", s.handleBlob)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.Path)
		status, failing := s.failures[r.URL.Path]
		s.mu.Unlock()

		if failing {
			http.Error(w, http.StatusText(status), status)
			return
		}
		// Blob URLs are pre-signed and need no token.
		if !strings.HasPrefix(r.URL.Path, "/blobs/") && r.Header.Get("Authorization") != "Bearer "+s.Token {
			http.Error(w, `{"errors":[{"message":"Invalid access token."}]}`, http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Client returns an lms.Client authenticated against the fake.
func (s *LMSServer) Client(t testing.TB) *lms.Client {
	t.Helper()
	client, err := lms.New(s.URL, s.Token)
	if err != nil {
		t.Fatalf("lms.New: %v", err)
	}
	return client
}

// AddCourse registers an active course.
func (s *LMSServer) AddCourse(course lms.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = append(s.courses, course)
}

// AddAssignment registers an assignment under its CourseID.
func (s *LMSServer) AddAssignment(assignment lms.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[assignment.CourseID] = append(s.assignments[assignment.CourseID], assignment)
}

// AddEvent registers an upcoming event.
func (s *LMSServer) AddEvent(event lms.UpcomingEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// AddFile registers a downloadable file. Its metadata URL points at the
// fake's blob endpoint.
func (s *LMSServer) AddFile(file FakeFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[file.Info.ID] = file
}

// FailPath makes every request to path answer with status.
func (s *LMSServer) FailPath(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Requests returns the paths requested so far.
func (s *LMSServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *LMSServer) handleCourses(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.courses)
}

func (s *LMSServer) handleAssignments(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(w, r, "course")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.assignments[courseID]
	if list == nil {
		list = []lms.Assignment{}
	}
	writeJSON(w, list)
}

func (s *LMSServer) handleAssignment(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(w, r, "course")
	if !ok {
		return
	}
	assignmentID, ok := pathID(w, r, "assignment")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, assignment := range s.assignments[courseID] {
		if assignment.ID == assignmentID {
			writeJSON(w, assignment)
			return
		}
	}
	http.Error(w, `{"errors":[{"message":"The specified resource does not exist."}]}`, http.StatusNotFound)
}

func (s *LMSServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("type")
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]lms.UpcomingEvent, 0, len(s.events))
	for _, event := range s.events {
		isAssignment := event.Assignment != nil
		switch {
		case filter == "assignment" && !isAssignment:
			continue
		case filter == "event" && isAssignment:
			continue
		}
		events = append(events, event)
	}
	writeJSON(w, events)
}

func (s *LMSServer) handleFile(w http.ResponseWriter, r *http.Request) {
	fileID, ok := pathID(w, r, "file")
	if !ok {
		return
	}
	s.mu.Lock()
	file, found := s.files[fileID]
	s.mu.Unlock()
	if !found {
		http.Error(w, `{"errors":[{"message":"file not found"}]}`, http.StatusNotFound)
		return
	}
	info := file.Info
	if info.URL == "" {
		info.URL = fmt.Sprintf("%s/blobs/%d?verifier=fake", s.URL, fileID)
	}
	info.Size = int64(len(file.Content))
	writeJSON(w, info)
}

func (s *LMSServer) handleBlob(w http.ResponseWriter, r *http.Request) {
	fileID, ok := pathID(w, r, "file")
	if !ok {
		return
	}
	s.mu.Lock()
	file, found := s.files[fileID]
	s.mu.Unlock()
	switch {
	case !found:
		http.NotFound(w, r)
	case file.BlobStatus != 0:
		http.Error(w, http.StatusText(file.BlobStatus), file.BlobStatus)
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(file.Content)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
