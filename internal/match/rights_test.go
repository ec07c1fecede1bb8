package match_test

import (
	"strings"
	"testing"

	"runout/internal/match"
)

func TestFilterRightsPassthroughWithoutDeclaration(t *testing.T) {
	candidates := []match.Candidate{
		{ReleaseID: 1, RightsSocieties: []string{"SACEM"}},
		{ReleaseID: 2, RightsSocieties: []string{"BUMA"}},
	}
	result := match.FilterRights(candidates, nil)
	if len(result.Retained) != 2 || len(result.Excluded) != 0 {
		t.Fatalf("expected passthrough, got %+v", result)
	}
}

func TestFilterRightsVetoesConflictingTerritory(t *testing.T) {
	candidates := []match.Candidate{
		{ReleaseID: 1, RightsSocieties: []string{"SACEM"}},
		{ReleaseID: 2, RightsSocieties: []string{"BUMA"}},
		{ReleaseID: 3},
	}
	result := match.FilterRights(candidates, []string{"BUMA"})

	if len(result.Retained) != 2 {
		t.Fatalf("retained = %+v", result.Retained)
	}
	if len(result.Excluded) != 1 {
		t.Fatalf("excluded = %+v", result.Excluded)
	}
	if result.Excluded[0].Candidate.ReleaseID != 1 {
		t.Fatalf("wrong candidate vetoed: %+v", result.Excluded[0])
	}
	if !strings.Contains(result.Excluded[0].Reason, "SACEM") {
		t.Fatalf("reason should name the conflicting society: %q", result.Excluded[0].Reason)
	}
}

func TestFilterRightsCompatibleSameTerritory(t *testing.T) {
	candidates := []match.Candidate{
		{ReleaseID: 1, RightsSocieties: []string{"STEMRA"}},
	}
	// BUMA and STEMRA are both Dutch; a declaration of one never vetoes the other.
	result := match.FilterRights(candidates, []string{"BUMA"})
	if len(result.Retained) != 1 || len(result.Excluded) != 0 {
		t.Fatalf("expected retention, got %+v", result)
	}
}

func TestFilterRightsUnknownSocietyNeverExcludes(t *testing.T) {
	candidates := []match.Candidate{
		{ReleaseID: 1, RightsSocieties: []string{"MYSTERY-ORG"}},
	}
	result := match.FilterRights(candidates, []string{"BUMA"})
	if len(result.Retained) != 1 || len(result.Excluded) != 0 {
		t.Fatalf("unknown society must not exclude, got %+v", result)
	}
}

func TestFilterRightsContradictoryTagsFlaggedNotDropped(t *testing.T) {
	candidates := []match.Candidate{
		{ReleaseID: 7, RightsSocieties: []string{"BUMA", "SACEM"}},
	}
	result := match.FilterRights(candidates, []string{"GEMA"})
	if len(result.Retained) != 1 {
		t.Fatalf("contradictory candidate should be retained, got %+v", result)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected a warning, got %+v", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], "release 7") {
		t.Fatalf("warning should reference the release: %q", result.Warnings[0])
	}
}

func TestFilterRightsPartition(t *testing.T) {
	candidates := []match.Candidate{
		{ReleaseID: 1, RightsSocieties: []string{"SACEM"}},
		{ReleaseID: 2, RightsSocieties: []string{"BUMA"}},
		{ReleaseID: 3, RightsSocieties: []string{"GEMA"}},
		{ReleaseID: 4},
	}
	result := match.FilterRights(candidates, []string{"BUMA"})

	seen := map[int64]int{}
	for _, candidate := range result.Retained {
		seen[candidate.ReleaseID]++
	}
	for _, excluded := range result.Excluded {
		seen[excluded.Candidate.ReleaseID]++
	}
	if len(seen) != len(candidates) {
		t.Fatalf("partition lost candidates: %+v", seen)
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("release %d appeared %d times across partition", id, count)
		}
	}
	if len(result.Retained) > len(candidates) {
		t.Fatal("retained grew beyond input")
	}
}

func TestFilterRightsCaseInsensitive(t *testing.T) {
	candidates := []match.Candidate{
		{ReleaseID: 1, RightsSocieties: []string{"sacem"}},
	}
	result := match.FilterRights(candidates, []string{"buma"})
	if len(result.Excluded) != 1 {
		t.Fatalf("expected case-insensitive veto, got %+v", result)
	}
}
