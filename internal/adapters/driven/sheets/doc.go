// Package sheets writes habit logs to a user's Google Sheet.
//
// Every call takes the bearer credential produced by the resolver, so the
// gateway itself holds no per-user state. Requests share one rate limiter.
//
// # Layout
//
// The spreadsheet has a single sheet named "Logs". Row 1 is a frozen,
// formatted header; each following row is one log entry in columns A to F:
// Date, Habit, Type, Status, Value, Synced At.
package sheets
