package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/matsen/paperview/internal/research"
)

// ErrRunNotFound is returned when no stored run matches an ID.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousID is returned when an ID prefix matches more than one run.
var ErrAmbiguousID = errors.New("ambiguous run ID prefix")

// DB wraps a SQLite database connection holding generated runs.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Run is one stored backend response.
type Run struct {
	RunSummary
	Document *research.Document `json:"document"`
}

// RunSummary describes a run without its document.
type RunSummary struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Status     string    `json:"status"`
	Style      string    `json:"citation_style"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	PaperCount int       `json:"paper_count"`
	WordCount  int       `json:"word_count"`
}

const selectSummaryFields = `id, topic, status, style, created_at, updated_at, paper_count, word_count`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			status TEXT NOT NULL,
			style TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			paper_count INTEGER NOT NULL,
			word_count INTEGER NOT NULL,
			document_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

		-- Topic, titles and authors of each run for full-text lookup
		CREATE VIRTUAL TABLE IF NOT EXISTS runs_fts USING fts5(
			id UNINDEXED,
			topic,
			titles,
			authors_text
		);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveRun stores doc under a new UUID and returns its summary.
func (d *DB) SaveRun(doc *research.Document, style string) (RunSummary, error) {
	if doc == nil {
		return RunSummary{}, errors.New("saving run: nil document")
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return RunSummary{}, fmt.Errorf("encoding document: %w", err)
	}

	now := d.now().UTC()
	sum := RunSummary{
		ID:         uuid.NewString(),
		Topic:      doc.Topic,
		Status:     doc.Status,
		Style:      style,
		CreatedAt:  now,
		UpdatedAt:  now,
		PaperCount: len(doc.References()),
		WordCount:  doc.Draft.WordCount(),
	}

	tx, err := d.db.Begin()
	if err != nil {
		return RunSummary{}, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (`+selectSummaryFields+`, document_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.Topic, sum.Status, sum.Style,
		now.UnixNano(), now.UnixNano(), sum.PaperCount, sum.WordCount,
		string(data),
	)
	if err != nil {
		return RunSummary{}, fmt.Errorf("inserting run: %w", err)
	}

	titles, authors := searchText(doc)
	if _, err := tx.Exec(`INSERT INTO runs_fts (id, topic, titles, authors_text) VALUES (?, ?, ?, ?)`,
		sum.ID, doc.Topic, titles, authors); err != nil {
		return RunSummary{}, fmt.Errorf("indexing run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return RunSummary{}, fmt.Errorf("committing run: %w", err)
	}
	return sum, nil
}

func searchText(doc *research.Document) (titles, authors string) {
	var t, a []string
	for _, ref := range doc.References() {
		t = append(t, ref.Title)
		a = append(a, ref.Authors...)
	}
	return strings.Join(t, "\n"), strings.Join(a, ", ")
}

// ResolveID expands a unique ID prefix to the full run ID.
func (d *DB) ResolveID(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrRunNotFound
	}

	rows, err := d.db.Query(`SELECT id FROM runs WHERE id = ? OR substr(id, 1, ?) = ? LIMIT 2`,
		prefix, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("resolving run ID: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		if id == prefix {
			return id, nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// GetRun retrieves a run by ID or unique ID prefix.
func (d *DB) GetRun(id string) (*Run, error) {
	full, err := d.ResolveID(id)
	if err != nil {
		return nil, err
	}
	row := d.db.QueryRow(`SELECT `+selectSummaryFields+`, document_json FROM runs WHERE id = ?`, full)
	return scanRun(row)
}

// LatestRun returns the most recently created run.
func (d *DB) LatestRun() (*Run, error) {
	row := d.db.QueryRow(`SELECT ` + selectSummaryFields + `, document_json FROM runs ORDER BY created_at DESC LIMIT 1`)
	return scanRun(row)
}

// ListRuns returns run summaries, newest first. A non-positive limit
// returns all runs.
func (d *DB) ListRuns(limit int) ([]RunSummary, error) {
	query := `SELECT ` + selectSummaryFields + ` FROM runs ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// SearchRuns returns runs whose topic, paper titles or authors match query.
func (d *DB) SearchRuns(query string, limit int) ([]RunSummary, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return d.ListRuns(limit)
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.db.Query(`
		SELECT `+selectSummaryFields+`
		FROM runs
		WHERE id IN (SELECT id FROM runs_fts WHERE runs_fts MATCH ?)
		ORDER BY created_at DESC
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching runs: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// DeleteRun removes a run by ID or unique ID prefix.
func (d *DB) DeleteRun(id string) error {
	full, err := d.ResolveID(id)
	if err != nil {
		return err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM runs WHERE id = ?`, full); err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM runs_fts WHERE id = ?`, full); err != nil {
		return fmt.Errorf("deleting run index: %w", err)
	}
	return tx.Commit()
}

// UpdateDraft replaces the stored draft of a run.
func (d *DB) UpdateDraft(id string, draft research.Draft) error {
	run, err := d.GetRun(id)
	if err != nil {
		return err
	}

	run.Document.Draft = draft
	data, err := json.Marshal(run.Document)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	res, err := d.db.Exec(`UPDATE runs SET document_json = ?, word_count = ?, updated_at = ? WHERE id = ?`,
		string(data), draft.WordCount(), d.now().UTC().UnixNano(), run.ID)
	if err != nil {
		return fmt.Errorf("updating draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Count returns the number of stored runs.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(s scanner, extra ...any) (RunSummary, error) {
	var sum RunSummary
	var created, updated int64
	dest := append([]any{
		&sum.ID, &sum.Topic, &sum.Status, &sum.Style,
		&created, &updated, &sum.PaperCount, &sum.WordCount,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return RunSummary{}, err
	}
	sum.CreatedAt = time.Unix(0, created).UTC()
	sum.UpdatedAt = time.Unix(0, updated).UTC()
	return sum, nil
}

func scanRun(s scanner) (*Run, error) {
	var docJSON string
	sum, err := scanSummary(s, &docJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	var doc research.Document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, fmt.Errorf("parsing document for run %s: %w", sum.ID, err)
	}
	return &Run{RunSummary: sum, Document: &doc}, nil
}

func scanSummaries(rows *sql.Rows) ([]RunSummary, error) {
	var out []RunSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,'") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
