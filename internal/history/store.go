// Package history persists completed fact-checks in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"truthbot/internal/models"

	_ "modernc.org/sqlite"
)

// History errors.
var (
	ErrNotFound   = errors.New("check record not found")
	ErrNilRecord  = errors.New("check record is nil")
	ErrEmptyClaim = errors.New("check record has no claim")
)

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 20

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store saves and loads check records.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies migrations.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	s, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// NewStore wraps an open database and applies migrations.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS checks (
			id TEXT PRIMARY KEY,
			claim TEXT NOT NULL,
			claim_hash TEXT NOT NULL,
			verdict_type TEXT NOT NULL,
			confidence TEXT NOT NULL,
			verdict TEXT NOT NULL,
			search_results_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checks_created_at ON checks (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_checks_claim_hash ON checks (claim_hash)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// Save inserts rec, assigning an ID and creation time when they are empty.
func (s *Store) Save(ctx context.Context, rec *models.CheckRecord) error {
	if rec == nil {
		return ErrNilRecord
	}

	if rec.Claim == "" {
		return ErrEmptyClaim
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checks (id, claim, claim_hash, verdict_type, confidence, verdict, search_results_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Claim, rec.ClaimHash, string(rec.VerdictType), string(rec.Confidence),
		rec.Verdict, rec.SearchResultsCount, rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert check record: %w", err)
	}

	return nil
}

// Get loads the record with id.
func (s *Store) Get(ctx context.Context, id string) (*models.CheckRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, claim, claim_hash, verdict_type, confidence, verdict, search_results_count, created_at
		FROM checks WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err != nil {
		return nil, err
	}

	return rec, nil
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*models.CheckRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, claim, claim_hash, verdict_type, confidence, verdict, search_results_count, created_at
		FROM checks ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list check records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*models.CheckRecord, 0, limit)

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.CheckRecord, error) {
	var (
		rec                     models.CheckRecord
		verdictType, confidence string
		createdAt               string
	)

	err := row.Scan(&rec.ID, &rec.Claim, &rec.ClaimHash, &verdictType, &confidence,
		&rec.Verdict, &rec.SearchResultsCount, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.VerdictType = models.VerdictType(verdictType)
	rec.Confidence = models.Confidence(confidence)

	rec.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}

	return &rec, nil
}
