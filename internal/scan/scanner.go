package scan

import (
	"context"
	"log/slog"

	"runout/internal/catalog/discogs"
	"runout/internal/config"
	"runout/internal/logging"
	"runout/internal/match"
	"runout/internal/ocr"
	"runout/internal/services"
	"runout/internal/store"
)

// Scanner orchestrates the disambiguation lifecycle: it owns no mutable scan
// state itself, loading and persisting each scan through the store while the
// caller holds the in-memory verification session.
type Scanner struct {
	store      *store.Store
	catalog    discogs.Searcher
	logger     *slog.Logger
	thresholds match.Thresholds
	ocrOptions []ocr.SessionOption
}

// New builds a Scanner backed by the given store and catalog collaborator.
func New(st *store.Store, catalog discogs.Searcher, logger *slog.Logger, cfg *config.Config) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	thresholds := match.DefaultThresholds()
	var ocrOptions []ocr.SessionOption
	if cfg != nil {
		thresholds = match.Thresholds{
			HighConfidence: cfg.Matching.HighConfidence,
			Inclusion:      cfg.Matching.InclusionThreshold,
			TieMargin:      cfg.Matching.TieMargin,
			MaxSuggestions: cfg.Matching.MaxSuggestions,
		}
		ocrOptions = []ocr.SessionOption{
			ocr.WithDefaultConfidence(cfg.OCR.DefaultConfidence),
			ocr.WithUncertainThreshold(cfg.OCR.UncertainThreshold),
		}
	}
	return &Scanner{
		store:      st,
		catalog:    catalog,
		logger:     logger.With(logging.String(logging.FieldComponent, "scan")),
		thresholds: thresholds,
		ocrOptions: ocrOptions,
	}
}

// Start creates a new pending scan. Every scan is a fresh session; verified
// scans are never reused.
func (s *Scanner) Start(ctx context.Context, mediaType ocr.MediaType) (*store.Scan, error) {
	scan, err := s.store.NewScan(ctx, string(mediaType))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "scan", "create", "Failed to create scan", err)
	}
	logging.WithContext(ctx, s.logger).Info("scan started",
		logging.String(logging.FieldScanID, scan.ScanID),
		logging.String("media_type", string(mediaType)))
	return scan, nil
}

// NewVerification builds an in-memory character review session for a raw
// recognized string, applying the configured confidence defaults.
func (s *Scanner) NewVerification(mediaType ocr.MediaType, raw string) (*ocr.Session, error) {
	session, err := ocr.NewSession(mediaType, raw, s.ocrOptions...)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "scan", "verification", "Recognized string is empty", err)
	}
	return session, nil
}

// NewVerificationWithConfidence builds a review session from caller-supplied
// per-character confidences.
func (s *Scanner) NewVerificationWithConfidence(mediaType ocr.MediaType, characters []ocr.CharacterConfidence) (*ocr.Session, error) {
	session, err := ocr.NewSessionWithConfidence(mediaType, characters, s.ocrOptions...)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "scan", "verification", "No character confidences supplied", err)
	}
	return session, nil
}

// Get loads a scan by its external identifier.
func (s *Scanner) Get(ctx context.Context, scanID string) (*store.Scan, error) {
	scan, err := s.store.GetByScanID(ctx, scanID)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "scan", "lookup", "Unknown scan", err)
	}
	return scan, nil
}

// List returns scans filtered by status, newest first.
func (s *Scanner) List(ctx context.Context, statuses ...store.Status) ([]*store.Scan, error) {
	scans, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "scan", "list", "Failed to list scans", err)
	}
	return scans, nil
}

// Abandon deletes a scan that the user gave up on. In-flight collaborator
// requests finish or cancel at their own boundary; the scan holds no
// resources of its own.
func (s *Scanner) Abandon(ctx context.Context, scanID string) error {
	scan, err := s.store.GetByScanID(ctx, scanID)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "scan", "abandon", "Unknown scan", err)
	}
	if err := s.store.Delete(ctx, scan.ID); err != nil {
		return services.Wrap(services.ErrTransient, "scan", "abandon", "Failed to delete scan", err)
	}
	logging.WithContext(ctx, s.logger).Info("scan abandoned",
		logging.String(logging.FieldScanID, scanID))
	return nil
}

// Price fetches marketplace price statistics for a release. Pricing is
// additive and never touches match state.
func (s *Scanner) Price(ctx context.Context, releaseID int64) (*discogs.PriceStats, error) {
	stats, err := s.catalog.PriceStats(ctx, releaseID)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "pricing", "stats", "Price lookup failed", err)
	}
	return stats, nil
}
