package match

// Reason codes attached to candidates by the catalog search, describing why a
// candidate was retrieved. Ranking treats them as equivalent to the raw
// signal when the signal itself is absent.
const (
	ReasonCatalogNumberExact = "catalog-number-exact"
	ReasonBarcodeMatch       = "barcode-match"
	ReasonMatrixMatch        = "matrix-match"
	ReasonTitleMatch         = "title-match"
)

// Candidate is one possible canonical release returned by a catalog search.
// Descriptive fields may be absent.
type Candidate struct {
	ReleaseID       int64    `json:"release_id"`
	Title           string   `json:"title,omitempty"`
	Artist          string   `json:"artist,omitempty"`
	Label           string   `json:"label,omitempty"`
	CatalogNumber   string   `json:"catalog_number,omitempty"`
	Barcodes        []string `json:"barcodes,omitempty"`
	Country         string   `json:"country,omitempty"`
	Year            int      `json:"year,omitempty"`
	ReasonCodes     []string `json:"reason_codes,omitempty"`
	RightsSocieties []string `json:"rights_societies,omitempty"`
}

// HasReason reports whether the candidate carries the given retrieval reason.
func (c Candidate) HasReason(code string) bool {
	for _, reason := range c.ReasonCodes {
		if reason == code {
			return true
		}
	}
	return false
}

// Signals are the deterministic identifiers extracted from photographed media.
type Signals struct {
	MatrixNumber      string   `json:"matrix_number,omitempty"`
	CatalogNumber     string   `json:"catalog_number,omitempty"`
	Barcode           string   `json:"barcode,omitempty"`
	DeclaredSocieties []string `json:"declared_societies,omitempty"`
}

// Status classifies one ranking pass.
type Status string

const (
	StatusNoMatch            Status = "no_match"
	StatusSingleMatch        Status = "single_match"
	StatusMultipleCandidates Status = "multiple_candidates"
	StatusManualMatch        Status = "manual_match"
)

// ScoredCandidate pairs a candidate with its accrued ranking score.
type ScoredCandidate struct {
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
}

// Result is the outcome of one ranking pass over a candidate set.
type Result struct {
	Status Status `json:"status"`
	// ConfidenceScore is meaningful only when Status is single_match.
	ConfidenceScore float64 `json:"confidence_score,omitempty"`
	// Chosen is present for single_match and manual_match outcomes.
	Chosen *Candidate `json:"chosen,omitempty"`
	// Suggestions is present for multiple_candidates, ordered by score
	// descending with ReleaseID ascending breaking ties.
	Suggestions []ScoredCandidate `json:"suggestions,omitempty"`
	// Exclusions explains candidates removed by the rights-society veto.
	Exclusions []string `json:"exclusions,omitempty"`
	// Warnings surfaces non-fatal anomalies such as contradictory
	// rights-society metadata on a retained candidate.
	Warnings []string `json:"warnings,omitempty"`
}
