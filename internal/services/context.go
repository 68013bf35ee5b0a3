package services

import "context"

type contextKey string

const (
	courseIDKey  contextKey = "course_id"
	commandKey   contextKey = "command"
	requestIDKey contextKey = "request_id"
)

// WithCourseID annotates context with the LMS course identifier being processed.
func WithCourseID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, courseIDKey, id)
}

// CourseIDFromContext extracts the course identifier if present.
func CourseIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(courseIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithCommand annotates context with the CLI command name.
func WithCommand(ctx context.Context, command string) context.Context {
	if command == "" {
		return ctx
	}
	return context.WithValue(ctx, commandKey, command)
}

// CommandFromContext returns the command name if present.
func CommandFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(commandKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
