// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-miner/pkg/types"
)

// DefaultDBPath is the archive location when none is configured.
const DefaultDBPath = "corpus.db"

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrRunNotFound is returned when no archived run matches an ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousRun is returned when an ID prefix matches several runs.
	ErrAmbiguousRun = errors.New("run ID prefix is ambiguous")
)

// Run describes one archived mining run.
type Run struct {
	ID        string
	Term      string
	CreatedAt time.Time
	Records   int
	Failed    int
}

// Match is one archived record whose abstract matched a text search.
type Match struct {
	RunID      string
	Position   int
	Identifier string
	Abstract   string
	Authors    string
}

// Store archives corpora in a SQLite database so earlier runs can be
// listed, re-exported and searched.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the archive at path and ensures the schema.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultDBPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			term TEXT NOT NULL,
			created_at TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			failed_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			identifier TEXT NOT NULL,
			abstract TEXT NOT NULL,
			authors TEXT NOT NULL,
			failure TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_identifier ON records(identifier)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun archives records under a new run ID for term and returns the run.
func (s *Store) SaveRun(ctx context.Context, term string, records []types.ExtractedRecord) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Term:      term,
		CreatedAt: time.Now().UTC(),
		Records:   len(records),
	}
	for _, r := range records {
		if r.Failed() {
			run.Failed++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, term, created_at, record_count, failed_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Term, run.CreatedAt.Format(timeLayout), run.Records, run.Failed,
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, position, identifier, abstract, authors, failure) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		failure := ""
		if r.Failure != nil {
			failure = r.Failure.Error()
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.Identifier, r.AbstractText, r.AuthorText, failure); err != nil {
			return Run{}, fmt.Errorf("inserting record %s: %w", r.Identifier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// ListRuns returns every archived run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, term, created_at, record_count, failed_count FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadRun rebuilds the corpus of the run whose ID is, or starts with, id.
func (s *Store) LoadRun(ctx context.Context, id string) (*Corpus, Run, error) {
	run, err := s.findRun(ctx, id)
	if err != nil {
		return nil, Run{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT identifier, abstract, authors FROM records WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return nil, Run{}, fmt.Errorf("loading records: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.DOIS, &r.Abstract, &r.Authors); err != nil {
			return nil, Run{}, fmt.Errorf("scanning record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, Run{}, err
	}
	return fromRows(out), run, nil
}

func (s *Store) findRun(ctx context.Context, id string) (Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, term, created_at, record_count, failed_count FROM runs
		 WHERE id = ? OR id LIKE ? ESCAPE '\' LIMIT 2`,
		id, escapeLike(id)+"%")
	if err != nil {
		return Run{}, fmt.Errorf("finding run: %w", err)
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if r.ID == id {
			return r, nil
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(found) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return found[0], nil
	}
	return Run{}, fmt.Errorf("%w: %s", ErrAmbiguousRun, id)
}

// SearchAbstracts returns archived records whose abstract contains text,
// case-insensitively for ASCII. limit <= 0 means 20.
func (s *Store) SearchAbstracts(ctx context.Context, text string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.run_id, r.position, r.identifier, r.abstract, r.authors
		 FROM records r JOIN runs u ON u.id = r.run_id
		 WHERE r.abstract LIKE ? ESCAPE '\'
		 ORDER BY u.created_at DESC, r.position
		 LIMIT ?`,
		"%"+escapeLike(text)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching abstracts: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.RunID, &m.Position, &m.Identifier, &m.Abstract, &m.Authors); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var created string
	if err := sc.Scan(&r.ID, &r.Term, &created, &r.Records, &r.Failed); err != nil {
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("parsing run timestamp: %w", err)
	}
	r.CreatedAt = t
	return r, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
