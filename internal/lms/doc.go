// Package lms wraps the Canvas-style REST API used by vast.
//
// The Client authenticates with a pre-issued personal access token, follows
// Link header pagination on list endpoints and maps HTTP failures onto the
// markers in internal/services so callers can branch with errors.Is.
package lms
