// Package recordctl implements the user facing recording operations: start
// (foreground or background), stop, status, and device listing.
//
// A background recording is tracked only through the pid record in the data
// directory, so any later invocation can query or stop it. Missing or
// malformed records mean "no active recording" rather than an error.
package recordctl
