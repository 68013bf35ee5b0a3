// Package services defines shared utilities consumed by the LMS client, the
// archive components and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp course IDs, command names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the CLI tell a
//     configuration problem from a rejected token, a remote failure, or a
//     filesystem failure.
//   - Hint, which turns a classified error into a next step for the user.
package services
