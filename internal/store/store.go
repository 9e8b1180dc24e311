// CLAUDE:SUMMARY SQLite persistence: seen URLs across runs, generated reports with JSON payload and markdown.
// Package store persists the pieces of state that must survive restarts:
// the seen-URL set and generated reports.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hazyhaar/presswatch/dbopen"
	"github.com/hazyhaar/presswatch/internal/report"
)

// ErrNotFound is returned when a report id does not exist.
var ErrNotFound = errors.New("store: report not found")

// Schema is applied at open time; all statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS seen_urls (
    url      TEXT PRIMARY KEY,
    added_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
    id           TEXT PRIMARY KEY,
    generated_at TEXT NOT NULL,
    payload      TEXT NOT NULL,
    markdown     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at DESC);
`

// ReportMeta is the listing row for a stored report.
type ReportMeta struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    int       `json:"sections"`
}

// Store wraps the database handle. Safe for concurrent use; SQLite access
// serialises on the WAL busy handler.
type Store struct {
	db *sql.DB
}

// New wraps an already-opened database. The schema must have been applied,
// typically via dbopen.WithSchema(store.Schema).
func New(db *sql.DB) *Store { return &Store{db: db} }

// LoadSeenURLs returns every URL recorded across prior runs.
func (s *Store) LoadSeenURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM seen_urls`)
	if err != nil {
		return nil, fmt.Errorf("store: load seen urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("store: scan seen url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// AddSeenURLs records URLs consumed by a run. Re-adding a URL is a no-op.
func (s *Store) AddSeenURLs(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO seen_urls (url, added_at) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("store: prepare seen insert: %w", err)
		}
		defer stmt.Close()
		for _, u := range urls {
			if _, err := stmt.ExecContext(ctx, u, now); err != nil {
				return fmt.Errorf("store: insert seen url: %w", err)
			}
		}
		return nil
	})
}

// SaveReport persists a report, both as a JSON payload for the API and as
// rendered markdown for direct serving.
func (s *Store) SaveReport(ctx context.Context, r *report.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: marshal report: %w", err)
	}
	_, err = dbopen.Exec(ctx, s.db,
		`INSERT INTO reports (id, generated_at, payload, markdown) VALUES (?, ?, ?, ?)`,
		r.ID, r.GeneratedAt.UTC().Format(time.RFC3339), string(payload), r.Markdown())
	if err != nil {
		return fmt.Errorf("store: save report: %w", err)
	}
	return nil
}

// ListReports returns report metadata, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]ReportMeta, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generated_at, payload FROM reports ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list reports: %w", err)
	}
	defer rows.Close()

	var metas []ReportMeta
	for rows.Next() {
		var id, generatedAt, payload string
		if err := rows.Scan(&id, &generatedAt, &payload); err != nil {
			return nil, fmt.Errorf("store: scan report row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, generatedAt)
		if err != nil {
			return nil, fmt.Errorf("store: bad generated_at for %s: %w", id, err)
		}
		var r report.Report
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("store: decode report %s: %w", id, err)
		}
		metas = append(metas, ReportMeta{ID: id, GeneratedAt: ts, Sections: len(r.Sections)})
	}
	return metas, rows.Err()
}

// GetReport loads one report by id.
func (s *Store) GetReport(ctx context.Context, id string) (*report.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM reports WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get report: %w", err)
	}
	var r report.Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("store: decode report %s: %w", id, err)
	}
	return &r, nil
}

// GetReportMarkdown loads the rendered markdown for one report.
func (s *Store) GetReportMarkdown(ctx context.Context, id string) (string, error) {
	var md string
	err := s.db.QueryRowContext(ctx, `SELECT markdown FROM reports WHERE id = ?`, id).Scan(&md)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("store: get report markdown: %w", err)
	}
	return md, nil
}
