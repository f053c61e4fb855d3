// Package storage persists relevance-engine runs in SQLite. The engine
// core itself is cache-free; persistence happens at the CLI/server
// boundary after a run completes.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dzhu8/GoFetch-sub002/internal/snowball"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Run is one persisted engine invocation.
type Run struct {
	ID              string                 `json:"id"`
	CreatedAt       time.Time              `json:"createdAt"`
	SeedID          string                 `json:"seedId,omitempty"`
	SeedTitle       string                 `json:"seedTitle,omitempty"`
	SeedDOI         string                 `json:"seedDoi,omitempty"`
	TermCount       int                    `json:"termCount"`
	ResolvedCount   int                    `json:"resolvedCount"`
	TotalCandidates int                    `json:"totalCandidates"`
	RankedPapers    []snowball.RankedPaper `json:"rankedPapers"`
}

// RunSummary is the listing view of a Run, without the paper payload.
type RunSummary struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"createdAt"`
	SeedTitle       string    `json:"seedTitle,omitempty"`
	TermCount       int       `json:"termCount"`
	ResolvedCount   int       `json:"resolvedCount"`
	TotalCandidates int       `json:"totalCandidates"`
	RankedCount     int       `json:"rankedCount"`
}

// OpenDB opens or creates the runs database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			seed_id TEXT,
			seed_title TEXT,
			seed_doi TEXT,
			term_count INTEGER NOT NULL,
			resolved_count INTEGER NOT NULL,
			total_candidates INTEGER NOT NULL,
			ranked_count INTEGER NOT NULL,
			papers_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveRun persists a completed run and returns its generated id.
func (d *DB) SaveRun(req snowball.Request, res *snowball.Result) (string, error) {
	papersJSON, err := json.Marshal(res.RankedPapers)
	if err != nil {
		return "", fmt.Errorf("encoding ranked papers: %w", err)
	}

	id := uuid.NewString()
	_, err = d.db.Exec(`
		INSERT INTO runs (
			id, created_at, seed_id, seed_title, seed_doi,
			term_count, resolved_count, total_candidates, ranked_count, papers_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().Unix(), res.SeedID, req.SeedTitle, req.SeedDOI,
		len(req.SearchTerms), res.ResolvedCount, res.TotalCandidates,
		len(res.RankedPapers), string(papersJSON),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(`
		SELECT id, created_at, seed_title, term_count, resolved_count, total_candidates, ranked_count
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var created int64
		if err := rows.Scan(&s.ID, &created, &s.SeedTitle, &s.TermCount,
			&s.ResolvedCount, &s.TotalCandidates, &s.RankedCount); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		s.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetRun loads one run with its full ranked-paper payload.
func (d *DB) GetRun(id string) (*Run, error) {
	row := d.db.QueryRow(`
		SELECT id, created_at, seed_id, seed_title, seed_doi,
			term_count, resolved_count, total_candidates, papers_json
		FROM runs WHERE id = ?`, id)

	var r Run
	var created int64
	var papersJSON string
	err := row.Scan(&r.ID, &created, &r.SeedID, &r.SeedTitle, &r.SeedDOI,
		&r.TermCount, &r.ResolvedCount, &r.TotalCandidates, &papersJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	r.CreatedAt = time.Unix(created, 0).UTC()
	if err := json.Unmarshal([]byte(papersJSON), &r.RankedPapers); err != nil {
		return nil, fmt.Errorf("decoding ranked papers: %w", err)
	}
	return &r, nil
}
