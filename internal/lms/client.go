package lms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vast/internal/logging"
	"vast/internal/services"
)

const (
	apiPrefix       = "/api/v1"
	pageSize        = "100"
	defaultTimeout  = 30 * time.Second
	maxErrorBody    = 4 << 10
	componentName   = "lms"
	defaultAgent    = "vast"
	includeParamKey = "include[]"
)

// API is the subset of Client used by the feed, downloader and CLI layers.
type API interface {
	ListCourses(ctx context.Context) ([]Course, error)
	ListAssignments(ctx context.Context, courseID int64) ([]Assignment, error)
	GetAssignment(ctx context.Context, courseID, assignmentID int64) (*Assignment, error)
	ListUpcomingEvents(ctx context.Context, eventType string) ([]UpcomingEvent, error)
	GetFile(ctx context.Context, fileID int64) (*FileInfo, error)
	DownloadFile(ctx context.Context, fileID int64, dest string) (int64, error)
	Download(ctx context.Context, info FileInfo, dest string) (int64, error)
}

// Client talks to the LMS REST API with a bearer token.
type Client struct {
	baseURL    string
	baseHost   string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// New creates an LMS client. A blank base URL or token is a configuration
// error and is reported before any network I/O.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, componentName, "new client", "lms base url required", nil)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, componentName, "new client", "lms access token required", nil)
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, services.Wrap(services.ErrConfiguration, componentName, "new client", "invalid lms base url "+baseURL, err)
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		baseHost:   parsed.Host,
		token:      token,
		userAgent:  defaultAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, componentName)
	return client, nil
}

// RemoteError is returned for non-2xx responses other than 401 and 403.
type RemoteError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("lms request %s failed: %s", e.Endpoint, e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

// Is matches services.ErrRemote, and services.ErrNotFound for 404s.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case services.ErrRemote:
		return true
	case services.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// ListCourses returns active course enrollments including current scores.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	params := url.Values{}
	params.Set("enrollment_state", "active")
	params.Set(includeParamKey, "total_scores")
	params.Set("per_page", pageSize)
	var courses []Course
	if err := listAll(ctx, c, "/courses", params, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// ListAssignments returns every assignment of a course with the caller's
// submission attached.
func (c *Client) ListAssignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	params := url.Values{}
	params.Set(includeParamKey, "submission")
	params.Set("per_page", pageSize)
	var assignments []Assignment
	path := "/courses/" + strconv.FormatInt(courseID, 10) + "/assignments"
	if err := listAll(ctx, c, path, params, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// GetAssignment fetches one assignment including its description HTML.
func (c *Client) GetAssignment(ctx context.Context, courseID, assignmentID int64) (*Assignment, error) {
	params := url.Values{}
	params.Set(includeParamKey, "submission")
	path := fmt.Sprintf("/courses/%d/assignments/%d", courseID, assignmentID)
	var assignment Assignment
	if _, err := c.getJSON(ctx, c.endpoint(path, params), &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListUpcomingEvents returns the caller's upcoming events. eventType narrows
// the list to "assignment" or "event"; blank returns both.
func (c *Client) ListUpcomingEvents(ctx context.Context, eventType string) ([]UpcomingEvent, error) {
	params := url.Values{}
	params.Set("per_page", pageSize)
	if eventType = strings.TrimSpace(eventType); eventType != "" {
		params.Set("type", eventType)
	}
	var events []UpcomingEvent
	if err := listAll(ctx, c, "/users/self/upcoming_events", params, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	endpoint := c.baseURL + apiPrefix + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	return endpoint
}

// listAll follows rel="next" links and appends each page into out.
func listAll[T any](ctx context.Context, c *Client, path string, params url.Values, out *[]T) error {
	next := c.endpoint(path, params)
	for next != "" {
		var page []T
		header, err := c.getJSON(ctx, next, &page)
		if err != nil {
			return err
		}
		*out = append(*out, page...)
		next = nextLink(header.Get("Link"))
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) (http.Header, error) {
	resp, err := c.get(ctx, endpoint, "application/json")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, services.Wrap(services.ErrRemote, componentName, "decode response", redact(endpoint), err)
	}
	return resp.Header, nil
}

// get issues an authenticated GET and returns the response when the status
// is 2xx. The caller owns the body.
func (c *Client) get(ctx context.Context, endpoint, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build lms request: %w", err)
	}
	// Signed file URLs may point at another host; the token stays with the LMS.
	if req.URL.Host == c.baseHost {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, componentName, "request", fmt.Sprintf("%s (latency %s)", redact(endpoint), latency.Round(time.Millisecond)), err)
	}
	c.logger.Debug("lms request",
		logging.String("endpoint", redact(endpoint)),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, services.Wrap(services.ErrAuthentication, componentName, "request", "invalid access token", nil)
	case http.StatusForbidden:
		return nil, services.Wrap(services.ErrAuthorization, componentName, "request", "access forbidden for "+redact(endpoint), nil)
	}
	return nil, &RemoteError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Endpoint:   redact(endpoint),
		Body:       string(body),
	}
}

// nextLink extracts the rel="next" target from an RFC 5988 Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range segments[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if ok && strings.EqualFold(key, "rel") && strings.Trim(value, `"`) == "next" {
				return target[1 : len(target)-1]
			}
		}
	}
	return ""
}

// redact drops the query string so access tokens carried by signed download
// URLs never reach logs or error messages.
func redact(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "<invalid url>"
	}
	parsed.RawQuery = ""
	parsed.User = nil
	return parsed.String()
}
