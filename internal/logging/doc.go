// Package logging wraps log/slog with the handlers and attribute helpers used
// throughout runout.
//
// Loggers are built from config (console or JSON format, optional file
// output) and carry standardized fields: component, scan_id, stage,
// correlation_id. WithContext derives those fields from a context annotated
// by the services package so collaborator calls log consistently.
package logging
