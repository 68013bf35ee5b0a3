package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration  = errors.New("configuration error")
	ErrAuthentication = errors.New("authentication error")
	ErrAuthorization  = errors.New("authorization error")
	ErrRemote         = errors.New("remote error")
	ErrFilesystem     = errors.New("filesystem error")
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker so callers can classify the failure with errors.Is.
// The marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrRemote
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Hint returns a short next step for the user based on the error marker.
// Unknown errors produce an empty hint.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "run `vast config init` and set lms.base_url, lms.access_token and archive.base_dir"
	case errors.Is(err, ErrAuthentication):
		return "the access token was rejected; generate a new token in the LMS settings"
	case errors.Is(err, ErrAuthorization):
		return "the access token lacks permission for this resource"
	case errors.Is(err, ErrFilesystem):
		return "check that the archive directory is writable"
	case errors.Is(err, ErrValidation):
		return "fix the reported input and try again"
	case errors.Is(err, ErrNotFound):
		return "verify the course and assignment ids with `vast courses`"
	case errors.Is(err, ErrRemote):
		return "the LMS returned an error; try again later"
	default:
		return ""
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
