// Package logging assembles structured slog loggers and formatting helpers used
// across enasubmit.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so step code automatically tags
// log lines with the step name and correlation ID. Logs go to stderr (the
// operator diagnostic channel); stdout is reserved for the run summary. A
// no-op logger is provided for tests and wiring code that cannot fail.
package logging
