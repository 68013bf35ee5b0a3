// Package archive maps LMS courses and assignments onto the local folder
// hierarchy {base}/{term}/{course}/{assignment} and persists the user's
// naming choices in a JSON sidecar at the base directory.
//
// The sidecar is advisory: a missing or corrupt file behaves like an empty
// one, and read-modify-write cycles are serialized with an flock so two CLI
// invocations on the same host do not interleave.
package archive
