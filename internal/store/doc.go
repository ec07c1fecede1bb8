// Package store persists scan sessions in SQLite: status, assembled string,
// correction log, extracted signals, and the chosen release once a scan is
// verified. A file lock serializes writer processes; the schema version is
// checked on open and the scans table is created on first use.
package store
