package main

import (
	"bytes"
	"strings"
	"testing"

	"runout/internal/match"
	"runout/internal/store"
)

func TestRenderResultMultipleCandidates(t *testing.T) {
	var buf bytes.Buffer
	renderResult(&buf, &match.Result{
		Status: match.StatusMultipleCandidates,
		Suggestions: []match.ScoredCandidate{
			{Candidate: match.Candidate{ReleaseID: 42, Artist: "Pink Floyd", Title: "The Dark Side Of The Moon", CatalogNumber: "SHVL 804"}, Score: 0.5},
			{Candidate: match.Candidate{ReleaseID: 99, Artist: "Pink Floyd", Title: "The Dark Side Of The Moon", CatalogNumber: "SHVL 804"}, Score: 0.5},
		},
		Exclusions: []string{"release 7: rights society GEMA places it outside the declared territory"},
	})

	out := buf.String()
	for _, fragment := range []string{"Multiple candidates", "42", "99", "SHVL 804", "excluded: release 7"} {
		if !strings.Contains(out, fragment) {
			t.Errorf("output missing %q:\n%s", fragment, out)
		}
	}
	// Buffers are not terminals, so no escape codes should appear.
	if strings.Contains(out, "\x1b[") {
		t.Errorf("unexpected ANSI codes in non-tty output:\n%s", out)
	}
}

func TestRenderScanListEmpty(t *testing.T) {
	var buf bytes.Buffer
	renderScanList(&buf, nil)
	if got := strings.TrimSpace(buf.String()); got != "No scans" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"A", "B", "C"},
		[][]string{{"1"}},
		nil,
	)
	if !strings.Contains(out, "A") || !strings.Contains(out, "1") {
		t.Fatalf("unexpected table output:\n%s", out)
	}
}

func TestStatusColorCoversAllStatuses(t *testing.T) {
	for _, status := range store.AllStatuses() {
		if statusColor(status) == "" {
			t.Errorf("no color for status %s", status)
		}
	}
}
