// Package textutil provides text helpers shared by the archive, feed and CLI
// packages.
//
// The primary use cases are:
//   - Sanitizing entity names into filesystem-safe path segments
//   - Case-folded keyword matching for the feed's exam heuristic
//   - Humanizing type tags and truncating titles for table output
package textutil
