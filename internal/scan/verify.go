package scan

import (
	"context"
	"encoding/json"
	"fmt"

	"runout/internal/logging"
	"runout/internal/match"
	"runout/internal/ocr"
	"runout/internal/services"
	"runout/internal/store"
)

// Select records an explicit user choice of one candidate, moving the scan to
// manual_match. The release must come from the stored suggestions unless the
// pass produced a single match, in which case confirming the chosen release
// is also accepted.
func (s *Scanner) Select(ctx context.Context, scanID string, releaseID int64) error {
	scan, err := s.store.GetByScanID(ctx, scanID)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "select", "lookup", "Unknown scan", err)
	}
	if !scan.Status.Selectable() {
		return services.Wrap(services.ErrValidation, "select", "transition",
			fmt.Sprintf("Scan in status %s has no candidates to select", scan.Status), nil)
	}

	result, err := decodeResult(scan)
	if err != nil {
		return err
	}
	if !resultOffers(result, releaseID) {
		return services.Wrap(services.ErrValidation, "select", "candidate",
			fmt.Sprintf("Release %d is not among the scan's candidates", releaseID), nil)
	}

	scan.Status = store.StatusManualMatch
	scan.ChosenReleaseID = releaseID
	if err := s.store.Update(ctx, scan); err != nil {
		return services.Wrap(services.ErrTransient, "select", "persist", "Failed to persist selection", err)
	}

	logging.WithContext(ctx, s.logger).Info("candidate selected",
		logging.String(logging.FieldScanID, scanID),
		logging.Int64(logging.FieldReleaseID, releaseID))
	return nil
}

// Reject is the explicit "this is wrong" action. It discards the chosen
// candidate and returns the scan to pending so the user can supply more
// signals and search again.
func (s *Scanner) Reject(ctx context.Context, scanID string) error {
	scan, err := s.store.GetByScanID(ctx, scanID)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "reject", "lookup", "Unknown scan", err)
	}
	if scan.Status.Terminal() {
		return services.Wrap(services.ErrValidation, "reject", "transition", "Verified scans cannot be rejected", nil)
	}

	scan.Status = store.StatusPending
	scan.ChosenReleaseID = 0
	scan.ConfidenceScore = 0
	scan.ResultJSON = ""
	scan.ErrorMessage = ""
	if err := s.store.Update(ctx, scan); err != nil {
		return services.Wrap(services.ErrTransient, "reject", "persist", "Failed to persist rejection", err)
	}

	logging.WithContext(ctx, s.logger).Info("match rejected, scan reset",
		logging.String(logging.FieldScanID, scanID))
	return nil
}

// Verify saves the chosen release together with the session's reviewed
// string, moving the scan to its terminal verified state. The session is
// optional; when present its assembled string and corrections are persisted
// alongside the choice.
func (s *Scanner) Verify(ctx context.Context, scanID string, session *ocr.Session) error {
	scan, err := s.store.GetByScanID(ctx, scanID)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "verify", "lookup", "Unknown scan", err)
	}
	switch scan.Status {
	case store.StatusSingleMatch, store.StatusManualMatch:
	default:
		return services.Wrap(services.ErrValidation, "verify", "transition",
			fmt.Sprintf("Scan in status %s has no chosen release to verify", scan.Status), nil)
	}
	if scan.ChosenReleaseID == 0 {
		return services.Wrap(services.ErrValidation, "verify", "candidate", "No chosen release recorded", nil)
	}

	if session != nil {
		scan.AssembledString = session.Assembled()
		scan.Corrections = correctionsFromSession(session)
	}
	scan.Status = store.StatusVerified
	if err := s.store.Update(ctx, scan); err != nil {
		return services.Wrap(services.ErrTransient, "verify", "persist", "Failed to save verified scan", err)
	}

	logging.WithContext(ctx, s.logger).Info("scan verified",
		logging.String(logging.FieldScanID, scanID),
		logging.Int64(logging.FieldReleaseID, scan.ChosenReleaseID))
	return nil
}

func correctionsFromSession(session *ocr.Session) []store.Correction {
	sessionCorrections := session.Corrections()
	corrections := make([]store.Correction, 0, len(sessionCorrections))
	for _, correction := range sessionCorrections {
		corrections = append(corrections, store.Correction{
			Position:  correction.Position,
			Original:  string(correction.Original),
			Corrected: string(correction.Corrected),
		})
	}
	return corrections
}

func decodeResult(scan *store.Scan) (*match.Result, error) {
	if scan.ResultJSON == "" {
		return nil, services.Wrap(services.ErrValidation, "select", "result", "Scan has no ranking result", nil)
	}
	var result match.Result
	if err := json.Unmarshal([]byte(scan.ResultJSON), &result); err != nil {
		return nil, services.Wrap(services.ErrTransient, "select", "decode", "Stored match result is corrupt", err)
	}
	return &result, nil
}

func resultOffers(result *match.Result, releaseID int64) bool {
	if result.Chosen != nil && result.Chosen.ReleaseID == releaseID {
		return true
	}
	for _, suggestion := range result.Suggestions {
		if suggestion.Candidate.ReleaseID == releaseID {
			return true
		}
	}
	return false
}
