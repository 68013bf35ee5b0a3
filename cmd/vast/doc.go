// Command vast lists LMS coursework from the terminal and mirrors course
// attachments into a local term/course/assignment archive.
//
// Typical flow:
//
//	vast config init
//	vast courses
//	vast setup --term 7="Fall 2025"
//	vast feed
//	vast download 101 2002
package main
