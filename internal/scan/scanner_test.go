package scan_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"runout/internal/catalog/discogs"
	"runout/internal/logging"
	"runout/internal/match"
	"runout/internal/ocr"
	"runout/internal/scan"
	"runout/internal/services"
	"runout/internal/store"
	"runout/internal/testsupport"
)

type fakeCatalog struct {
	searchFn  func(ctx context.Context, query discogs.SearchQuery) (*discogs.SearchResponse, error)
	releaseFn func(ctx context.Context, releaseID int64) (*discogs.Release, error)
	priceFn   func(ctx context.Context, releaseID int64) (*discogs.PriceStats, error)
	queries   []discogs.SearchQuery
}

func (f *fakeCatalog) SearchReleases(ctx context.Context, query discogs.SearchQuery) (*discogs.SearchResponse, error) {
	f.queries = append(f.queries, query)
	if f.searchFn != nil {
		return f.searchFn(ctx, query)
	}
	return &discogs.SearchResponse{}, nil
}

func (f *fakeCatalog) GetRelease(ctx context.Context, releaseID int64) (*discogs.Release, error) {
	if f.releaseFn != nil {
		return f.releaseFn(ctx, releaseID)
	}
	return &discogs.Release{ID: releaseID}, nil
}

func (f *fakeCatalog) PriceStats(ctx context.Context, releaseID int64) (*discogs.PriceStats, error) {
	if f.priceFn != nil {
		return f.priceFn(ctx, releaseID)
	}
	return &discogs.PriceStats{NumForSale: 3}, nil
}

func newScanner(t *testing.T, catalog discogs.Searcher) (*scan.Scanner, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return scan.New(st, catalog, logging.NewNop(), cfg), st
}

func catalogWithReleases(results ...discogs.SearchResult) *fakeCatalog {
	return &fakeCatalog{
		searchFn: func(ctx context.Context, query discogs.SearchQuery) (*discogs.SearchResponse, error) {
			return &discogs.SearchResponse{Results: results}, nil
		},
	}
}

func TestStartCreatesPendingScan(t *testing.T) {
	scanner, _ := newScanner(t, &fakeCatalog{})
	created, err := scanner.Start(context.Background(), ocr.MediaVinyl)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if created.Status != store.StatusPending {
		t.Fatalf("status = %q", created.Status)
	}
	if created.MediaType != "vinyl" {
		t.Fatalf("media type = %q", created.MediaType)
	}
}

func TestSearchSingleMatch(t *testing.T) {
	catalog := catalogWithReleases(
		discogs.SearchResult{ID: 10, Title: "Pink Floyd - The Dark Side Of The Moon", CatNo: "SHVL 804", Country: "UK", Year: "1973", Label: []string{"Harvest"}},
	)
	scanner, _ := newScanner(t, catalog)
	ctx := context.Background()

	created, err := scanner.Start(ctx, ocr.MediaVinyl)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := scanner.Search(ctx, created.ScanID, scan.Request{
		Signals: signalsWith("SHVL 804", "724382918721", "SHVL-804 A-2"),
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Status != "single_match" {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Chosen == nil || result.Chosen.ReleaseID != 10 {
		t.Fatalf("chosen = %+v", result.Chosen)
	}

	persisted, err := scanner.Get(ctx, created.ScanID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if persisted.Status != store.StatusSingleMatch {
		t.Fatalf("persisted status = %q", persisted.Status)
	}
	if persisted.ChosenReleaseID != 10 {
		t.Fatalf("persisted release = %d", persisted.ChosenReleaseID)
	}
	if persisted.CatalogNumber != "SHVL 804" {
		t.Fatalf("persisted catalog number = %q", persisted.CatalogNumber)
	}
}

func TestSearchRejectsEmptyRequest(t *testing.T) {
	scanner, _ := newScanner(t, &fakeCatalog{})
	ctx := context.Background()
	created, err := scanner.Start(ctx, ocr.MediaCD)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, err = scanner.Search(ctx, created.ScanID, scan.Request{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchUnknownScan(t *testing.T) {
	scanner, _ := newScanner(t, &fakeCatalog{})
	_, err := scanner.Search(context.Background(), "missing", scan.Request{Title: "Album"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearchCollaboratorFailureMarksScanFailed(t *testing.T) {
	catalog := &fakeCatalog{
		searchFn: func(ctx context.Context, query discogs.SearchQuery) (*discogs.SearchResponse, error) {
			return nil, errors.New("rate limited")
		},
	}
	scanner, _ := newScanner(t, catalog)
	ctx := context.Background()
	created, err := scanner.Start(ctx, ocr.MediaVinyl)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = scanner.Search(ctx, created.ScanID, scan.Request{Signals: signalsWith("ABC-1", "", "")})
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}

	persisted, err := scanner.Get(ctx, created.ScanID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if persisted.Status != store.StatusFailed {
		t.Fatalf("persisted status = %q, want failed", persisted.Status)
	}
	if persisted.ErrorMessage == "" {
		t.Fatal("expected recorded error message")
	}
	if calls := len(catalog.queries); calls != 1 {
		t.Fatalf("collaborator called %d times, want exactly 1 (no automatic retry)", calls)
	}
}

func TestFailedScanCanSearchAgain(t *testing.T) {
	failing := true
	catalog := &fakeCatalog{
		searchFn: func(ctx context.Context, query discogs.SearchQuery) (*discogs.SearchResponse, error) {
			if failing {
				return nil, errors.New("timeout")
			}
			return &discogs.SearchResponse{Results: []discogs.SearchResult{
				{ID: 4, Title: "Artist - Album", CatNo: "ABC-1"},
			}}, nil
		},
	}
	scanner, _ := newScanner(t, catalog)
	ctx := context.Background()
	created, err := scanner.Start(ctx, ocr.MediaVinyl)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := scanner.Search(ctx, created.ScanID, scan.Request{Signals: signalsWith("ABC-1", "", "")}); err == nil {
		t.Fatal("expected first search to fail")
	}

	failing = false
	result, err := scanner.Search(ctx, created.ScanID, scan.Request{Signals: signalsWith("ABC-1", "", "")})
	if err != nil {
		t.Fatalf("retry search: %v", err)
	}
	if result.Status != "single_match" {
		t.Fatalf("status = %q", result.Status)
	}
}

func TestSearchMergesQueriesWithoutDuplicates(t *testing.T) {
	catalog := &fakeCatalog{
		searchFn: func(ctx context.Context, query discogs.SearchQuery) (*discogs.SearchResponse, error) {
			// Same release comes back for both the catno and barcode queries.
			return &discogs.SearchResponse{Results: []discogs.SearchResult{
				{ID: 7, Title: "Artist - Album", CatNo: "ABC-1"},
			}}, nil
		},
	}
	scanner, _ := newScanner(t, catalog)
	ctx := context.Background()
	created, err := scanner.Start(ctx, ocr.MediaVinyl)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := scanner.Search(ctx, created.ScanID, scan.Request{
		Signals: signalsWith("ABC-1", "5099912345678", ""),
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(catalog.queries) != 2 {
		t.Fatalf("expected 2 catalog queries, got %d", len(catalog.queries))
	}
	// Both queries agree on the same release, so the merged candidate
	// matches every supplied signal and wins outright.
	if result.Status != match.StatusSingleMatch {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Chosen == nil || result.Chosen.ReleaseID != 7 {
		t.Fatalf("chosen = %+v", result.Chosen)
	}
}

func TestPricePassthrough(t *testing.T) {
	scanner, _ := newScanner(t, &fakeCatalog{})
	stats, err := scanner.Price(context.Background(), 7)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if stats.NumForSale != 3 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestPriceCollaboratorFailure(t *testing.T) {
	catalog := &fakeCatalog{
		priceFn: func(ctx context.Context, releaseID int64) (*discogs.PriceStats, error) {
			return nil, errors.New("unavailable")
		},
	}
	scanner, _ := newScanner(t, catalog)
	_, err := scanner.Price(context.Background(), 7)
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}

func TestAbandonDeletesScan(t *testing.T) {
	scanner, _ := newScanner(t, &fakeCatalog{})
	ctx := context.Background()
	created, err := scanner.Start(ctx, ocr.MediaCD)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := scanner.Abandon(ctx, created.ScanID); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if _, err := scanner.Get(ctx, created.ScanID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found after abandon, got %v", err)
	}
}

func signalsWith(catno, barcode, matrix string) match.Signals {
	return match.Signals{
		CatalogNumber: catno,
		Barcode:       barcode,
		MatrixNumber:  matrix,
	}
}

func TestManualSearchLoneResultSettlesAsManualMatch(t *testing.T) {
	catalog := catalogWithReleases(
		discogs.SearchResult{ID: 31, Title: "Pink Floyd - Animals", CatNo: "SHVL 815", Country: "UK", Year: "1977"},
	)
	scanner, _ := newScanner(t, catalog)
	ctx := context.Background()

	created, err := scanner.Start(ctx, ocr.MediaVinyl)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := scanner.Search(ctx, created.ScanID, scan.Request{Artist: "Pink Floyd", Title: "Animals"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Status != match.StatusManualMatch {
		t.Fatalf("status = %q, want manual_match for a lone hand-typed result", result.Status)
	}
	if result.Chosen == nil || result.Chosen.ReleaseID != 31 {
		t.Fatalf("chosen = %+v, want release 31", result.Chosen)
	}
	if len(result.Suggestions) != 0 {
		t.Fatalf("suggestions = %+v, want none once chosen", result.Suggestions)
	}

	persisted, err := scanner.Get(ctx, created.ScanID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if persisted.Status != store.StatusManualMatch {
		t.Fatalf("persisted status = %q", persisted.Status)
	}
	if persisted.ChosenReleaseID != 31 {
		t.Fatalf("persisted release = %d", persisted.ChosenReleaseID)
	}

	if err := scanner.Verify(ctx, created.ScanID, nil); err != nil {
		t.Fatalf("Verify after manual search: %v", err)
	}
}

func TestManualSearchMultipleResultsStayAsSuggestions(t *testing.T) {
	catalog := catalogWithReleases(
		discogs.SearchResult{ID: 31, Title: "Pink Floyd - Animals", CatNo: "SHVL 815"},
		discogs.SearchResult{ID: 32, Title: "Pink Floyd - Animals", CatNo: "JC 34474"},
	)
	scanner, _ := newScanner(t, catalog)
	ctx := context.Background()

	created, err := scanner.Start(ctx, ocr.MediaVinyl)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := scanner.Search(ctx, created.ScanID, scan.Request{Artist: "Pink Floyd", Title: "Animals"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Status != match.StatusMultipleCandidates {
		t.Fatalf("status = %q, want multiple_candidates when the typed query stays ambiguous", result.Status)
	}
	if len(result.Suggestions) != 2 {
		t.Fatalf("suggestions = %+v, want both pressings", result.Suggestions)
	}
}

func TestSearchAppliesRightsVeto(t *testing.T) {
	catalog := catalogWithReleases(
		discogs.SearchResult{ID: 21, Title: "Artist - Album", CatNo: "ABC-1"},
		discogs.SearchResult{ID: 22, Title: "Artist - Album", CatNo: "ABC-1"},
	)
	catalog.releaseFn = func(ctx context.Context, releaseID int64) (*discogs.Release, error) {
		society := "BUMA"
		if releaseID == 22 {
			society = "GEMA"
		}
		return &discogs.Release{
			ID: releaseID,
			Identifiers: []discogs.ReleaseIdentifier{
				{Type: "Rights Society", Value: society},
			},
		}, nil
	}
	scanner, _ := newScanner(t, catalog)
	ctx := context.Background()

	created, err := scanner.Start(ctx, ocr.MediaVinyl)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := scanner.Search(ctx, created.ScanID, scan.Request{
		Signals: match.Signals{
			CatalogNumber:     "ABC-1",
			DeclaredSocieties: []string{"BUMA"},
		},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if result.Status != match.StatusSingleMatch {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Chosen == nil || result.Chosen.ReleaseID != 21 {
		t.Fatalf("chosen = %+v", result.Chosen)
	}
	if len(result.Exclusions) != 1 || !strings.Contains(result.Exclusions[0], "GEMA") {
		t.Fatalf("exclusions = %v", result.Exclusions)
	}
}
