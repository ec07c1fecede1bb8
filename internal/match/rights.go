package match

import (
	"fmt"
	"strings"
)

// societyTerritories maps rights-society identifiers to the territory whose
// pressings they mark. Societies in different territories are mutually
// exclusive for a single physical item: a label declaring BUMA was not
// pressed under SACEM jurisdiction.
var societyTerritories = map[string]string{
	"BUMA":   "NL",
	"STEMRA": "NL",
	"SACEM":  "FR",
	"SDRM":   "FR",
	"GEMA":   "DE",
	"MCPS":   "UK",
	"PRS":    "UK",
	"SIAE":   "IT",
	"SGAE":   "ES",
	"SABAM":  "BE",
	"JASRAC": "JP",
	"ASCAP":  "US",
	"BMI":    "US",
	"SESAC":  "US",
}

// Exclusion describes a candidate removed by the rights-society veto.
type Exclusion struct {
	Candidate Candidate
	Reason    string
}

// FilterResult partitions a candidate set into retained and excluded entries.
// Warnings flag retained candidates whose own society metadata is
// contradictory; uncertainty surfaces rather than silently dropping data.
type FilterResult struct {
	Retained []Candidate
	Excluded []Exclusion
	Warnings []string
}

// FilterRights applies the rights-society veto: candidates whose known
// society tags place them in a territory incompatible with every declared
// society are removed before scoring. An empty declared set is a passthrough;
// absence of information is never exclusion.
func FilterRights(candidates []Candidate, declared []string) FilterResult {
	result := FilterResult{Retained: make([]Candidate, 0, len(candidates))}

	declaredTerritories := knownTerritories(declared)
	if len(declaredTerritories) == 0 {
		result.Retained = append(result.Retained, candidates...)
		return result
	}

	for _, candidate := range candidates {
		tagTerritories := knownTerritories(candidate.RightsSocieties)
		if len(tagTerritories) == 0 {
			result.Retained = append(result.Retained, candidate)
			continue
		}
		if len(tagTerritories) > 1 {
			result.Retained = append(result.Retained, candidate)
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"release %d carries contradictory rights-society tags (%s); retained but unreliable for exclusion",
				candidate.ReleaseID, strings.Join(candidate.RightsSocieties, ", ")))
			continue
		}
		if overlaps(tagTerritories, declaredTerritories) {
			result.Retained = append(result.Retained, candidate)
			continue
		}
		result.Excluded = append(result.Excluded, Exclusion{
			Candidate: candidate,
			Reason: fmt.Sprintf("release %d excluded: rights society %s conflicts with declared %s",
				candidate.ReleaseID,
				strings.Join(candidate.RightsSocieties, "/"),
				strings.Join(declared, "/")),
		})
	}
	return result
}

func knownTerritories(societies []string) map[string]struct{} {
	territories := make(map[string]struct{})
	for _, society := range societies {
		key := strings.ToUpper(strings.TrimSpace(society))
		if territory, ok := societyTerritories[key]; ok {
			territories[territory] = struct{}{}
		}
	}
	return territories
}

func overlaps(a, b map[string]struct{}) bool {
	for key := range a {
		if _, ok := b[key]; ok {
			return true
		}
	}
	return false
}
