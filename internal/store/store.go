// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists paper records in a SQLite database.
// Implements: prd004-store (R1-R4).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// columns lists the papers table in scan order.
var columns = []string{
	"id", "title", "conference", "year", "track",
	"submission_type", "platform", "pdf_url", "pdf_path",
	"content", "summary",
}

// filterColumns maps Query filter fields to table columns. Fields outside
// this map are rejected rather than interpolated.
var filterColumns = map[string]string{
	"id":              "id",
	"title":           "title",
	"conference":      "conference",
	"year":            "year",
	"track":           "track",
	"submission_type": "submission_type",
	"platform":        "platform",
}

// updateColumns maps Update field names to table columns. The id is the
// resume key and stays immutable.
var updateColumns = map[string]string{
	"title":           "title",
	"conference":      "conference",
	"year":            "year",
	"track":           "track",
	"submission_type": "submission_type",
	"platform":        "platform",
	"pdf_url":         "pdf_url",
	"pdf_path":        "pdf_path",
	"content":         "content",
	"summary":         "summary",
}

// Store manages the paper record database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at dbPath, creating parent
// directories and the schema as needed.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.CreateSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSchema ensures the papers table exists.
func (s *Store) CreateSchema() error {
	stmt := `CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		conference TEXT,
		year INTEGER,
		track TEXT,
		submission_type TEXT,
		platform TEXT,
		pdf_url TEXT,
		pdf_path TEXT,
		content TEXT,
		summary TEXT
	)`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Insert adds a new record. Inserting an id that already exists is an
// error; records are created once, at the end of a fully successful
// pipeline pass for that paper.
func (s *Store) Insert(ctx context.Context, rec types.PaperRecord) error {
	query, args, err := sq.Insert("papers").
		Columns(columns...).
		Values(rec.ID, rec.Title, rec.Conference, rec.Year, rec.Track,
			rec.SubmissionType, rec.Platform, rec.PDFURL, rec.PDFPath,
			rec.Content, rec.Summary).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting %s: %w", rec.ID, err)
	}
	return nil
}

// Query returns records matching every filter as an exact field match,
// ordered by id. An empty or nil filter map returns all records. A filter
// field outside the known set is an error. Query with an id filter is the
// existence check the pipeline uses to decide skip versus reprocess.
func (s *Store) Query(ctx context.Context, filters map[string]any) ([]types.PaperRecord, error) {
	builder := sq.Select(columns...).From("papers").OrderBy("id")

	// Iterate in sorted key order so the generated SQL is deterministic.
	fields := make([]string, 0, len(filters))
	for field := range filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		col, ok := filterColumns[field]
		if !ok {
			return nil, fmt.Errorf("unknown filter field %q", field)
		}
		builder = builder.Where(sq.Eq{col: filters[field]})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var records []types.PaperRecord
	for rows.Next() {
		var r types.PaperRecord
		if err := rows.Scan(&r.ID, &r.Title, &r.Conference, &r.Year, &r.Track,
			&r.SubmissionType, &r.Platform, &r.PDFURL, &r.PDFPath,
			&r.Content, &r.Summary); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// Get returns the record with the given id, or ok=false when absent.
func (s *Store) Get(ctx context.Context, id string) (types.PaperRecord, bool, error) {
	records, err := s.Query(ctx, map[string]any{"id": id})
	if err != nil {
		return types.PaperRecord{}, false, err
	}
	if len(records) == 0 {
		return types.PaperRecord{}, false, nil
	}
	return records[0], true, nil
}

// Update applies field updates to the record with the given id. A missing
// record is a silent no-op; an unknown field is an error.
func (s *Store) Update(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	builder := sq.Update("papers").Where(sq.Eq{"id": id})

	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		col, ok := updateColumns[field]
		if !ok {
			return fmt.Errorf("unknown update field %q", field)
		}
		builder = builder.Set(col, updates[field])
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating %s: %w", id, err)
	}
	return nil
}

// Delete removes the record with the given id. Deleting a missing record
// is a silent no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	query, args, err := sq.Delete("papers").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	return nil
}
