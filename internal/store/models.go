package store

import (
	"strings"
	"time"
)

// Status represents the disambiguation lifecycle of a scan.
type Status string

const (
	StatusPending            Status = "pending"
	StatusSearching          Status = "searching"
	StatusSingleMatch        Status = "single_match"
	StatusMultipleCandidates Status = "multiple_candidates"
	StatusNoMatch            Status = "no_match"
	StatusManualMatch        Status = "manual_match"
	StatusVerified           Status = "verified"
	StatusFailed             Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusSearching,
	StatusSingleMatch,
	StatusMultipleCandidates,
	StatusNoMatch,
	StatusManualMatch,
	StatusVerified,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus validates a status string.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// Searchable reports whether a scan in this status may (re-)enter searching.
// multiple_candidates and no_match are not dead ends: more signals re-enter
// the search.
func (s Status) Searchable() bool {
	switch s {
	case StatusPending, StatusSearching, StatusMultipleCandidates, StatusNoMatch, StatusFailed:
		return true
	default:
		return false
	}
}

// Selectable reports whether a user may pick a candidate while in this status.
func (s Status) Selectable() bool {
	switch s {
	case StatusSingleMatch, StatusMultipleCandidates, StatusManualMatch:
		return true
	default:
		return false
	}
}

// Terminal reports whether the scan lifecycle has ended. Only verified is
// terminal; a new scan starts a new session, never reuses state.
func (s Status) Terminal() bool {
	return s == StatusVerified
}

// Correction is the persisted form of one character correction.
type Correction struct {
	Position  int    `json:"position"`
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

// Scan is one persisted disambiguation session.
type Scan struct {
	ID              int64
	ScanID          string
	MediaType       string
	Status          Status
	AssembledString string
	Corrections     []Correction
	MatrixNumber    string
	CatalogNumber   string
	Barcode         string
	RightsSocieties []string
	ChosenReleaseID int64
	ConfidenceScore float64
	ResultJSON      string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
