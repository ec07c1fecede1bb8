package match

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Signal weights. Catalog numbers are printed and reliable, barcodes are
// machine-readable but absent on older pressings, matrix numbers are
// handwritten or etched and the noisiest of the three. A candidate's score is
// its accrued weight divided by the weight of the signals in play, so
// matching every supplied signal scores 1.0 regardless of how many were
// supplied.
const (
	weightCatalogNumber = 0.5
	weightBarcode       = 0.3
	weightMatrixNumber  = 0.2
)

// titleEvidenceScore is assigned to candidates retrieved purely by an
// artist/title query. Fuzzy title relevance is enough to surface a suggestion
// but never clears the automatic single-match bar.
const titleEvidenceScore = 0.5

// Thresholds control classification of a ranking pass.
type Thresholds struct {
	// HighConfidence is the score a lone leader must reach for single_match.
	HighConfidence float64
	// Inclusion is the minimum score (inclusive) for a suggestion.
	Inclusion float64
	// TieMargin is the gap below which a rival denies a single match.
	TieMargin float64
	// MaxSuggestions caps the suggestion list.
	MaxSuggestions int
}

// DefaultThresholds returns the repository default classification thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighConfidence: 0.85,
		Inclusion:      0.4,
		TieMargin:      0.05,
		MaxSuggestions: 5,
	}
}

func (t Thresholds) normalized() Thresholds {
	defaults := DefaultThresholds()
	if t.HighConfidence <= 0 || t.HighConfidence > 1 {
		t.HighConfidence = defaults.HighConfidence
	}
	if t.Inclusion <= 0 || t.Inclusion > 1 {
		t.Inclusion = defaults.Inclusion
	}
	if t.TieMargin < 0 || t.TieMargin >= 1 {
		t.TieMargin = defaults.TieMargin
	}
	if t.MaxSuggestions < 1 {
		t.MaxSuggestions = defaults.MaxSuggestions
	}
	return t
}

// Rank applies the rights-society veto, scores the retained candidates
// against the deterministic signals, and classifies the outcome. The same
// inputs always yield the same ordering and scores.
func Rank(candidates []Candidate, signals Signals, thresholds Thresholds) Result {
	thresholds = thresholds.normalized()

	filtered := FilterRights(candidates, signals.DeclaredSocieties)

	scored := make([]ScoredCandidate, 0, len(filtered.Retained))
	for _, candidate := range filtered.Retained {
		scored = append(scored, ScoredCandidate{
			Candidate: candidate,
			Score:     scoreCandidate(candidate, signals),
		})
	}

	exclusions := make([]string, 0, len(filtered.Excluded))
	for _, excluded := range filtered.Excluded {
		exclusions = append(exclusions, excluded.Reason)
	}

	result := Classify(scored, thresholds)
	result.Exclusions = exclusions
	result.Warnings = filtered.Warnings
	return result
}

// Classify orders scored candidates (score descending, ReleaseID ascending on
// ties) and derives the match status. Exposed separately from Rank so callers
// holding collaborator-scored candidates can re-derive a status.
func Classify(scored []ScoredCandidate, thresholds Thresholds) Result {
	thresholds = thresholds.normalized()

	eligible := make([]ScoredCandidate, 0, len(scored))
	for _, entry := range scored {
		if entry.Score >= thresholds.Inclusion {
			eligible = append(eligible, entry)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Score != eligible[j].Score {
			return eligible[i].Score > eligible[j].Score
		}
		return eligible[i].Candidate.ReleaseID < eligible[j].Candidate.ReleaseID
	})

	if len(eligible) == 0 {
		return Result{Status: StatusNoMatch}
	}

	top := eligible[0]
	clearWinner := len(eligible) == 1 || top.Score-eligible[1].Score > thresholds.TieMargin
	if top.Score >= thresholds.HighConfidence && clearWinner {
		chosen := top.Candidate
		return Result{
			Status:          StatusSingleMatch,
			ConfidenceScore: top.Score,
			Chosen:          &chosen,
		}
	}

	limit := thresholds.MaxSuggestions
	if limit > len(eligible) {
		limit = len(eligible)
	}
	suggestions := make([]ScoredCandidate, limit)
	copy(suggestions, eligible[:limit])
	return Result{
		Status:      StatusMultipleCandidates,
		Suggestions: suggestions,
	}
}

func scoreCandidate(candidate Candidate, signals Signals) float64 {
	accrued := 0.0
	available := 0.0
	if signals.CatalogNumber != "" || candidate.HasReason(ReasonCatalogNumberExact) {
		available += weightCatalogNumber
		if catalogNumberMatches(candidate, signals) {
			accrued += weightCatalogNumber
		}
	}
	if signals.Barcode != "" || candidate.HasReason(ReasonBarcodeMatch) {
		available += weightBarcode
		if barcodeMatches(candidate, signals) {
			accrued += weightBarcode
		}
	}
	if signals.MatrixNumber != "" || candidate.HasReason(ReasonMatrixMatch) {
		available += weightMatrixNumber
		if matrixMatches(candidate, signals) {
			accrued += weightMatrixNumber
		}
	}
	if available == 0 {
		if candidate.HasReason(ReasonTitleMatch) {
			return titleEvidenceScore
		}
		return 0
	}
	score := accrued / available
	if score > 1 {
		score = 1
	}
	return score
}

func catalogNumberMatches(candidate Candidate, signals Signals) bool {
	if signals.CatalogNumber != "" && candidate.CatalogNumber != "" {
		return normalizeIdentifier(signals.CatalogNumber) == normalizeIdentifier(candidate.CatalogNumber)
	}
	return candidate.HasReason(ReasonCatalogNumberExact)
}

func barcodeMatches(candidate Candidate, signals Signals) bool {
	if signals.Barcode != "" && len(candidate.Barcodes) > 0 {
		want := normalizeIdentifier(signals.Barcode)
		for _, barcode := range candidate.Barcodes {
			if normalizeIdentifier(barcode) == want {
				return true
			}
		}
		return false
	}
	return candidate.HasReason(ReasonBarcodeMatch)
}

func matrixMatches(candidate Candidate, signals Signals) bool {
	if candidate.HasReason(ReasonMatrixMatch) {
		return true
	}
	if signals.MatrixNumber == "" || candidate.CatalogNumber == "" {
		return false
	}
	// Matrix numbers usually embed the catalog number plus stamper suffixes,
	// so substring containment either way counts as a fuzzy hit.
	matrix := normalizeIdentifier(signals.MatrixNumber)
	catalog := normalizeIdentifier(candidate.CatalogNumber)
	if matrix == "" || catalog == "" {
		return false
	}
	return strings.Contains(matrix, catalog) || strings.Contains(catalog, matrix)
}

var identifierFolder = cases.Fold()

// normalizeIdentifier reduces an etched or printed identifier to its
// comparable core: case-folded with separators and whitespace stripped.
func normalizeIdentifier(input string) string {
	folded := identifierFolder.String(strings.TrimSpace(input))
	var builder strings.Builder
	builder.Grow(len(folded))
	for _, r := range folded {
		switch r {
		case ' ', '-', '_', '.', '/', '\u00a0':
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
