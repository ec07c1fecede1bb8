package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"runout/internal/config"
)

// ErrNotFound indicates a scan lookup for an unknown identifier.
var ErrNotFound = errors.New("scan not found")

// ErrInvalidTransition indicates a status update the lifecycle forbids.
var ErrInvalidTransition = errors.New("invalid status transition")

// Store manages scan persistence backed by SQLite. A file lock guards the
// database against concurrent writer processes.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open initializes or connects to the scan database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "runout.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("scan database at %s is locked by another runout process", cfg.Paths.DataDir)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "scans.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection and releases the file lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// NewScan inserts a pending scan for the given media type and returns it.
func (s *Store) NewScan(ctx context.Context, mediaType string) (*Scan, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	scanID := uuid.NewString()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO scans (scan_id, media_type, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		scanID,
		mediaType,
		StatusPending,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert scan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

const scanColumns = "id, scan_id, media_type, status, assembled_string, corrections_json, matrix_number, catalog_number, barcode, rights_societies, chosen_release_id, confidence_score, result_json, error_message, created_at, updated_at"

// GetByID fetches a scan by row identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Scan, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+scanColumns+" FROM scans WHERE id = ?", id)
	scan, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return scan, err
}

// GetByScanID fetches a scan by its external UUID.
func (s *Store) GetByScanID(ctx context.Context, scanID string) (*Scan, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+scanColumns+" FROM scans WHERE scan_id = ?", scanID)
	scan, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: scan %s", ErrNotFound, scanID)
	}
	return scan, err
}

// List returns scans filtered by status, newest first. An empty filter
// returns everything.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Scan, error) {
	query := "SELECT " + scanColumns + " FROM scans"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var scans []*Scan
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// Update persists the mutable fields of a scan. Verified scans are frozen:
// any further update is an invalid transition.
func (s *Store) Update(ctx context.Context, scan *Scan) error {
	current, err := s.GetByID(ctx, scan.ID)
	if err != nil {
		return err
	}
	if current.Status.Terminal() && scan.Status != current.Status {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, current.Status)
	}
	if _, ok := statusSet[scan.Status]; !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, scan.Status)
	}

	correctionsJSON, err := marshalJSON(scan.Corrections)
	if err != nil {
		return fmt.Errorf("marshal corrections: %w", err)
	}
	societiesJSON, err := marshalJSON(scan.RightsSocieties)
	if err != nil {
		return fmt.Errorf("marshal rights societies: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE scans SET
            status = ?, assembled_string = ?, corrections_json = ?,
            matrix_number = ?, catalog_number = ?, barcode = ?,
            rights_societies = ?, chosen_release_id = ?, confidence_score = ?,
            result_json = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		scan.Status,
		nullableString(scan.AssembledString),
		nullableString(correctionsJSON),
		nullableString(scan.MatrixNumber),
		nullableString(scan.CatalogNumber),
		nullableString(scan.Barcode),
		nullableString(societiesJSON),
		nullableInt64(scan.ChosenReleaseID),
		scan.ConfidenceScore,
		nullableString(scan.ResultJSON),
		nullableString(scan.ErrorMessage),
		now,
		scan.ID,
	)
	if err != nil {
		return fmt.Errorf("update scan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, scan.ID)
	}
	return nil
}

// Delete removes an abandoned scan.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM scans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// Stats returns scan counts grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM scans GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("scan stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats[Status(status)] = count
	}
	return stats, rows.Err()
}

func scanRow(scanner interface{ Scan(dest ...any) error }) (*Scan, error) {
	var (
		id              int64
		scanID          string
		mediaType       string
		statusStr       string
		assembled       sql.NullString
		correctionsJSON sql.NullString
		matrixNumber    sql.NullString
		catalogNumber   sql.NullString
		barcode         sql.NullString
		societiesJSON   sql.NullString
		chosenRelease   sql.NullInt64
		confidence      sql.NullFloat64
		resultJSON      sql.NullString
		errorMessage    sql.NullString
		createdRaw      string
		updatedRaw      string
	)

	if err := scanner.Scan(
		&id,
		&scanID,
		&mediaType,
		&statusStr,
		&assembled,
		&correctionsJSON,
		&matrixNumber,
		&catalogNumber,
		&barcode,
		&societiesJSON,
		&chosenRelease,
		&confidence,
		&resultJSON,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	scan := &Scan{
		ID:              id,
		ScanID:          scanID,
		MediaType:       mediaType,
		Status:          Status(statusStr),
		AssembledString: assembled.String,
		MatrixNumber:    matrixNumber.String,
		CatalogNumber:   catalogNumber.String,
		Barcode:         barcode.String,
		ChosenReleaseID: chosenRelease.Int64,
		ConfidenceScore: confidence.Float64,
		ResultJSON:      resultJSON.String,
		ErrorMessage:    errorMessage.String,
	}

	if correctionsJSON.Valid && correctionsJSON.String != "" {
		if err := json.Unmarshal([]byte(correctionsJSON.String), &scan.Corrections); err != nil {
			return nil, fmt.Errorf("unmarshal corrections: %w", err)
		}
	}
	if societiesJSON.Valid && societiesJSON.String != "" {
		if err := json.Unmarshal([]byte(societiesJSON.String), &scan.RightsSocieties); err != nil {
			return nil, fmt.Errorf("unmarshal rights societies: %w", err)
		}
	}

	var err error
	if scan.CreatedAt, err = time.Parse(time.RFC3339Nano, createdRaw); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if scan.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedRaw); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return scan, nil
}

func marshalJSON(value any) (string, error) {
	switch v := value.(type) {
	case []Correction:
		if len(v) == 0 {
			return "", nil
		}
	case []string:
		if len(v) == 0 {
			return "", nil
		}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableInt64(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
