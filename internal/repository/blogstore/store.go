// Package blogstore persists blog documents in SQLite. It is the
// authoritative owner of document text; the vector index is a derived cache
// rebuildable from this store.
package blogstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kailas-cloud/blograg/internal/domain"
	"github.com/kailas-cloud/blograg/internal/domain/document"
)

const schema = `
CREATE TABLE IF NOT EXISTS blogs (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	topic      TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	created_at INTEGER NOT NULL,
	version    INTEGER NOT NULL DEFAULT 1
);
`

// Store is a SQLite-backed document store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at path. The parent directory
// is created as needed. WAL mode keeps concurrent readers unblocked.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Create inserts a new document.
func (s *Store) Create(ctx context.Context, doc document.Document) error {
	tags, err := json.Marshal(doc.Tags())
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO blogs (id, title, content, topic, tags, created_at, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID(), doc.Title(), doc.Content(), doc.Topic(), string(tags),
		doc.CreatedAt().UnixMilli(), doc.Version(),
	)
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	return nil
}

// Get retrieves a document by id.
func (s *Store) Get(ctx context.Context, id string) (document.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, topic, tags, created_at, version FROM blogs WHERE id = ?`, id)
	return scanDocument(row)
}

// Update replaces the stored row for doc's id. The caller is responsible for
// bumping the version via document.WithUpdate before calling.
func (s *Store) Update(ctx context.Context, doc document.Document) error {
	tags, err := json.Marshal(doc.Tags())
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE blogs SET title = ?, content = ?, topic = ?, tags = ?, version = ? WHERE id = ?`,
		doc.Title(), doc.Content(), doc.Topic(), string(tags), doc.Version(), doc.ID(),
	)
	if err != nil {
		return fmt.Errorf("update blog: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Delete removes a document by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// List returns all documents ordered by creation time.
func (s *Store) List(ctx context.Context) ([]document.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, topic, tags, created_at, version FROM blogs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blogs: %w", err)
	}
	return docs, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count blogs: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (document.Document, error) {
	var (
		id, title, content, topic, tagsJSON string
		createdAt                           int64
		version                             int
	)
	if err := row.Scan(&id, &title, &content, &topic, &tagsJSON, &createdAt, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return document.Document{}, domain.ErrDocumentNotFound
		}
		return document.Document{}, fmt.Errorf("scan blog: %w", err)
	}

	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
		return document.Document{}, fmt.Errorf("unmarshal tags: %w", err)
	}

	return document.Reconstruct(
		id, title, content, topic, tags, time.UnixMilli(createdAt).UTC(), version,
	), nil
}
