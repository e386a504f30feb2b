// Package logging configures the application's slog loggers: a pretty
// console handler for interactive use and a JSON handler for the log file
// and non-terminal output.
package logging
