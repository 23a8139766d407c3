package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mdcal/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists documents in a single SQLite file. The handle is
// opened lazily by the first operation and kept for the process lifetime;
// tests call Close to release it.
//
// Rows carry both a full json blob (source of truth for load) and the
// scalar columns the queries filter/sort on, so range and summary queries
// never decode bodies.
type SQLiteStore struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

func OpenSQLite(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// ensure opens and migrates the database once. Safe to call from every
// operation; a failed open is retried on the next call.
func (s *SQLiteStore) ensure(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Pragmas for multi-process local usage. WAL enables one writer + many
	// readers; busy_timeout avoids "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date INTEGER NOT NULL,
		end_date INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		json TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_documents_start ON documents(start_date);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_end ON documents(end_date);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at);`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
	}

	s.db = db
	return db, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) Create(ctx context.Context, input model.DocumentInput) (model.Document, error) {
	db, err := s.ensure(ctx)
	if err != nil {
		return model.Document{}, err
	}

	doc := newDocumentFromInput(input, nowUnixMilli())

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.Document{}, fmt.Errorf("create document: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := freshID(func(id string) (bool, error) {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM documents WHERE id = ?`, id).Scan(&n); err != nil {
			return false, fmt.Errorf("create document: %w", err)
		}
		return n > 0, nil
	})
	if err != nil {
		return model.Document{}, err
	}
	doc.ID = id

	if err := insertDocumentTx(ctx, tx, doc); err != nil {
		return model.Document{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Document{}, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

func insertDocumentTx(ctx context.Context, tx *sql.Tx, doc model.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO documents
		(id, title, status, start_date, end_date, created_at, updated_at, json)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, string(doc.Status), doc.StartDate, doc.EndDate, doc.CreatedAt, doc.UpdatedAt, string(raw))
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (model.Document, bool, error) {
	db, err := s.ensure(ctx)
	if err != nil {
		return model.Document{}, false, err
	}
	var raw string
	err = db.QueryRowContext(ctx, `SELECT json FROM documents WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.Document{}, false, nil
	}
	if err != nil {
		return model.Document{}, false, fmt.Errorf("get document: %w", err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return model.Document{}, false, err
	}
	return doc, true, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, patch model.DocumentPatch) (model.Document, error) {
	db, err := s.ensure(ctx)
	if err != nil {
		return model.Document{}, err
	}

	// Read-modify-write inside one transaction so concurrent updates to the
	// same id never interleave field-by-field.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.Document{}, fmt.Errorf("update document: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT json FROM documents WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.Document{}, fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("update document: %w", err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return model.Document{}, err
	}

	applyPatch(&doc, patch, nowUnixMilli())

	if err := insertDocumentTx(ctx, tx, doc); err != nil {
		return model.Document{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Document{}, fmt.Errorf("update document: %w", err)
	}
	return doc, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	db, err := s.ensure(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]model.Document, error) {
	return s.queryDocuments(ctx, `SELECT json FROM documents ORDER BY updated_at DESC, id`)
}

func (s *SQLiteStore) Summaries(ctx context.Context) ([]model.DocumentSummary, error) {
	db, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, title, status, start_date, end_date, created_at, updated_at
		FROM documents ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	out := []model.DocumentSummary{}
	for rows.Next() {
		var sum model.DocumentSummary
		var status string
		if err := rows.Scan(&sum.ID, &sum.Title, &status, &sum.StartDate, &sum.EndDate, &sum.CreatedAt, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list summaries: %w", err)
		}
		sum.Status = model.NormalizeStatus(model.Status(status))
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) ListByDateRange(ctx context.Context, from, to int64) ([]model.Document, error) {
	return s.queryDocuments(ctx,
		`SELECT json FROM documents WHERE start_date <= ? AND end_date >= ? ORDER BY start_date, id`,
		to, from)
}

func (s *SQLiteStore) Search(ctx context.Context, query string) ([]model.Document, error) {
	// Substring semantics over title and body. The body lives inside the
	// json blob, so filtering happens in Go after a full scan; local note
	// volumes make this a non-issue.
	docs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := docs[:0]
	for _, doc := range docs {
		if matchesQuery(doc, query) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *SQLiteStore) queryDocuments(ctx context.Context, query string, args ...any) ([]model.Document, error) {
	db, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	out := []model.Document{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("query documents: %w", err)
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	return out, nil
}

func decodeDocument(raw string) (model.Document, error) {
	var doc model.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return model.Document{}, fmt.Errorf("decode document: %w", err)
	}
	migrateLegacyDate(&doc)
	return doc, nil
}
