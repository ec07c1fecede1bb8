package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"runout/internal/catalog/discogs"
	"runout/internal/logging"
	"runout/internal/match"
	"runout/internal/ocr"
	"runout/internal/services"
	"runout/internal/store"
)

// Request carries everything one search pass needs: the deterministic signals
// read off the media plus optional manually typed fields, and the session's
// current assembled matrix string when a verification session exists.
type Request struct {
	Signals match.Signals
	Artist  string
	Title   string
	// Assembled is the verification session's current string; persisted so a
	// resumed scan sees the reviewed text.
	Assembled   string
	Corrections []store.Correction
}

func (r Request) empty() bool {
	return strings.TrimSpace(r.Signals.CatalogNumber) == "" &&
		strings.TrimSpace(r.Signals.Barcode) == "" &&
		strings.TrimSpace(r.Signals.MatrixNumber) == "" &&
		strings.TrimSpace(r.Artist) == "" &&
		strings.TrimSpace(r.Title) == ""
}

// manualOnly reports whether the request carries typed artist/title fields
// and no deterministic identifier.
func (r Request) manualOnly() bool {
	return strings.TrimSpace(r.Signals.CatalogNumber) == "" &&
		strings.TrimSpace(r.Signals.Barcode) == "" &&
		strings.TrimSpace(r.Signals.MatrixNumber) == "" &&
		(strings.TrimSpace(r.Artist) != "" || strings.TrimSpace(r.Title) != "")
}

// Search runs one ranking pass: persist the signals, query the catalog,
// veto/score/classify the candidates, and persist the outcome. Collaborator
// failures mark the scan failed and are never retried automatically; retry is
// an explicit user resubmission.
func (s *Scanner) Search(ctx context.Context, scanID string, request Request) (*match.Result, error) {
	scan, err := s.store.GetByScanID(ctx, scanID)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "search", "lookup", "Unknown scan", err)
	}
	if !scan.Status.Searchable() {
		return nil, services.Wrap(services.ErrValidation, "search", "transition",
			fmt.Sprintf("Scan in status %s cannot search", scan.Status), nil)
	}
	if request.empty() {
		return nil, services.Wrap(services.ErrValidation, "search", "request", "No signals or manual fields supplied", nil)
	}

	ctx = services.WithScanID(ctx, scanID)
	ctx = services.WithStage(ctx, "searching")
	logger := logging.WithContext(ctx, s.logger)

	scan.Status = store.StatusSearching
	applyRequest(scan, request)
	if err := s.store.Update(ctx, scan); err != nil {
		return nil, services.Wrap(services.ErrTransient, "search", "persist", "Failed to persist search state", err)
	}

	candidates, err := s.collectCandidates(ctx, scan.MediaType, request)
	if err != nil {
		scan.Status = store.StatusFailed
		scan.ErrorMessage = err.Error()
		if updateErr := s.store.Update(ctx, scan); updateErr != nil {
			logger.Error("failed to persist search failure", logging.Error(updateErr))
		}
		return nil, services.Wrap(services.ErrExternalService, "search", "catalog", "Catalog search failed", err)
	}

	logger.Info("catalog search complete", logging.Int("candidates", len(candidates)))

	result := match.Rank(candidates, request.Signals, s.thresholds)
	for _, warning := range result.Warnings {
		logger.Warn("ambiguous rights-society metadata", logging.String("detail", warning))
	}
	if request.manualOnly() {
		promoteManualResult(&result)
	}

	if err := s.persistResult(ctx, scan, &result); err != nil {
		return nil, err
	}

	logger.Info("ranking pass classified",
		logging.String("status", string(result.Status)),
		logging.Float64("confidence", result.ConfidenceScore),
		logging.Int("suggestions", len(result.Suggestions)),
		logging.Int("exclusions", len(result.Exclusions)))

	return &result, nil
}

func applyRequest(scan *store.Scan, request Request) {
	if request.Signals.MatrixNumber != "" {
		scan.MatrixNumber = request.Signals.MatrixNumber
	}
	if request.Signals.CatalogNumber != "" {
		scan.CatalogNumber = request.Signals.CatalogNumber
	}
	if request.Signals.Barcode != "" {
		scan.Barcode = request.Signals.Barcode
	}
	if len(request.Signals.DeclaredSocieties) > 0 {
		scan.RightsSocieties = request.Signals.DeclaredSocieties
	}
	if request.Assembled != "" {
		scan.AssembledString = request.Assembled
	}
	if len(request.Corrections) > 0 {
		scan.Corrections = request.Corrections
	}
	scan.ErrorMessage = ""
}

// collectCandidates issues one catalog query per available identifier and
// merges the results, tagging each with the reason it was retrieved.
func (s *Scanner) collectCandidates(ctx context.Context, mediaType string, request Request) ([]match.Candidate, error) {
	format := searchFormat(mediaType)
	merged := make(map[int64]*match.Candidate)
	order := make([]int64, 0, 16)

	runQuery := func(query discogs.SearchQuery, reason string) error {
		response, err := s.catalog.SearchReleases(ctx, query)
		if err != nil {
			return err
		}
		for _, result := range response.Results {
			candidate, ok := merged[result.ID]
			if !ok {
				converted := candidateFromResult(result)
				merged[result.ID] = &converted
				candidate = &converted
				order = append(order, result.ID)
			}
			if reason != "" && !candidate.HasReason(reason) {
				candidate.ReasonCodes = append(candidate.ReasonCodes, reason)
			}
		}
		return nil
	}

	if catno := strings.TrimSpace(request.Signals.CatalogNumber); catno != "" {
		if err := runQuery(discogs.SearchQuery{CatalogNumber: catno, Format: format}, match.ReasonCatalogNumberExact); err != nil {
			return nil, err
		}
	}
	if barcode := strings.TrimSpace(request.Signals.Barcode); barcode != "" {
		if err := runQuery(discogs.SearchQuery{Barcode: barcode, Format: format}, match.ReasonBarcodeMatch); err != nil {
			return nil, err
		}
	}
	// The matrix number usually embeds the catalog number; when it is the
	// only etched identifier, search with it as a catalog number and let
	// fuzzy scoring weigh the hits.
	if matrix := strings.TrimSpace(request.Signals.MatrixNumber); matrix != "" && request.Signals.CatalogNumber == "" {
		if err := runQuery(discogs.SearchQuery{CatalogNumber: matrix, Format: format}, match.ReasonMatrixMatch); err != nil {
			return nil, err
		}
	}
	if artist, title := strings.TrimSpace(request.Artist), strings.TrimSpace(request.Title); artist != "" || title != "" {
		if err := runQuery(discogs.SearchQuery{Artist: artist, Title: title, Format: format}, match.ReasonTitleMatch); err != nil {
			return nil, err
		}
	}

	// Search results carry no rights-society identifiers; those live on the
	// release detail. Fetch details only when the veto has something to
	// compare against.
	if len(request.Signals.DeclaredSocieties) > 0 {
		for _, id := range order {
			release, err := s.catalog.GetRelease(ctx, id)
			if err != nil {
				return nil, err
			}
			merged[id].RightsSocieties = release.RightsSocieties()
		}
	}

	candidates := make([]match.Candidate, 0, len(order))
	for _, id := range order {
		candidates = append(candidates, *merged[id])
	}
	return candidates, nil
}

func candidateFromResult(result discogs.SearchResult) match.Candidate {
	artist, title := splitSearchTitle(result.Title)
	candidate := match.Candidate{
		ReleaseID:     result.ID,
		Title:         title,
		Artist:        artist,
		CatalogNumber: result.CatNo,
		Barcodes:      result.Barcode,
		Country:       result.Country,
	}
	if len(result.Label) > 0 {
		candidate.Label = result.Label[0]
	}
	if year, err := strconv.Atoi(strings.TrimSpace(result.Year)); err == nil {
		candidate.Year = year
	}
	return candidate
}

// searchFormat maps a stored media type onto the catalog's format facet.
func searchFormat(mediaType string) string {
	switch mediaType {
	case string(ocr.MediaCD):
		return "CD"
	default:
		return "Vinyl"
	}
}

// splitSearchTitle splits the catalog's combined "Artist - Title" form.
func splitSearchTitle(combined string) (artist, title string) {
	parts := strings.SplitN(combined, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "", strings.TrimSpace(combined)
}

// promoteManualResult resolves a manual artist/title search that produced an
// unambiguous top result. A lone surviving suggestion is the user's answer,
// so the scan settles as a manual match instead of asking them to pick from a
// list of one.
func promoteManualResult(result *match.Result) {
	if result.Status != match.StatusMultipleCandidates || len(result.Suggestions) != 1 {
		return
	}
	top := result.Suggestions[0]
	chosen := top.Candidate
	result.Status = match.StatusManualMatch
	result.ConfidenceScore = top.Score
	result.Chosen = &chosen
	result.Suggestions = nil
}

func (s *Scanner) persistResult(ctx context.Context, scan *store.Scan, result *match.Result) error {
	scan.Status = statusFromMatch(result.Status)
	scan.ConfidenceScore = result.ConfidenceScore
	if result.Chosen != nil {
		scan.ChosenReleaseID = result.Chosen.ReleaseID
	} else {
		scan.ChosenReleaseID = 0
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return services.Wrap(services.ErrTransient, "search", "encode", "Failed to encode match result", err)
	}
	scan.ResultJSON = string(payload)

	if err := s.store.Update(ctx, scan); err != nil {
		return services.Wrap(services.ErrTransient, "search", "persist", "Failed to persist match result", err)
	}
	return nil
}

func statusFromMatch(status match.Status) store.Status {
	switch status {
	case match.StatusSingleMatch:
		return store.StatusSingleMatch
	case match.StatusMultipleCandidates:
		return store.StatusMultipleCandidates
	case match.StatusManualMatch:
		return store.StatusManualMatch
	default:
		return store.StatusNoMatch
	}
}
