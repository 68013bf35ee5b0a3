// Package feed merges LMS upcoming events into one normalized coursework
// feed.
//
// Events arrive in several shapes (assignment, quiz, calendar event,
// announcement). ToItem maps each onto Item, Classify infers its Type, and
// Aggregator joins course names and authoritative submission state before
// sorting the result by due date.
package feed
