package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jusunglee/olchiki/internal/db"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements db.Repository using SQLite
type Repository struct {
	db *sql.DB
	q  querier
}

// New creates a new SQLite repository
func New(ctx context.Context, dbPath string) (*Repository, error) {
	// Strip sqlite:// prefix if present
	dbPath = strings.TrimPrefix(dbPath, "sqlite://")

	isNew := false
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		isNew = true
	}

	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}

	// A single connection serializes writers and keeps :memory: databases
	// from splitting across connections.
	sqliteDB.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance
	if _, err := sqliteDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := sqliteDB.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := sqliteDB.ExecContext(ctx, schemaSQL); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	if isNew {
		slog.Info("created new SQLite database", "path", dbPath)
	}

	return &Repository{db: sqliteDB, q: sqliteDB}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Repository{db: r.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Batch methods

const batchColumns = `id, source, language, scheme, status, converted, skipped, error, created_at, completed_at`

func (r *Repository) CreateBatch(ctx context.Context, arg db.CreateBatchParams) (db.Batch, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO batches (source, language, scheme)
		VALUES (?, ?, ?)
	`, arg.Source, nullString(arg.Language), arg.Scheme)
	if err != nil {
		return db.Batch{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return db.Batch{}, err
	}

	return r.GetBatch(ctx, id)
}

func (r *Repository) CompleteBatch(ctx context.Context, arg db.CompleteBatchParams) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE batches
		SET status = ?, converted = ?, skipped = ?, error = ?,
		    completed_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?
	`, arg.Status, arg.Converted, arg.Skipped, nullString(arg.Error), arg.ID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNoRows
	}
	return nil
}

func (r *Repository) GetBatch(ctx context.Context, id int64) (db.Batch, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = ?`, id)
	return scanBatch(row)
}

func (r *Repository) ListBatches(ctx context.Context, limit int32) ([]db.Batch, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+batchColumns+`
		FROM batches
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []db.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// Document methods

const documentColumns = `id, batch_id, name, output_name, status, error, runes, created_at`

func (r *Repository) CreateDocument(ctx context.Context, arg db.CreateDocumentParams) (db.Document, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO documents (batch_id, name, output_name, status, error, runes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, arg.BatchID, arg.Name, nullString(arg.OutputName), arg.Status, nullString(arg.Error), arg.Runes)
	if err != nil {
		return db.Document{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return db.Document{}, err
	}

	row := r.q.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

func (r *Repository) ListDocumentsByBatch(ctx context.Context, batchID int64) ([]db.Document, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE batch_id = ?
		ORDER BY id
	`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []db.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Helpers

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (db.Batch, error) {
	var b db.Batch
	var createdAtStr string
	var completedAtStr sql.NullString
	err := row.Scan(&b.ID, &b.Source, &b.Language, &b.Scheme, &b.Status, &b.Converted, &b.Skipped, &b.Error, &createdAtStr, &completedAtStr)
	if err == sql.ErrNoRows {
		return db.Batch{}, db.ErrNoRows
	}
	if err != nil {
		return db.Batch{}, err
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	if completedAtStr.Valid {
		if t, err := time.Parse(time.RFC3339, completedAtStr.String); err == nil {
			b.CompletedAt = sql.NullTime{Time: t, Valid: true}
		}
	}
	return b, nil
}

func scanDocument(row scanner) (db.Document, error) {
	var d db.Document
	var createdAtStr string
	err := row.Scan(&d.ID, &d.BatchID, &d.Name, &d.OutputName, &d.Status, &d.Error, &d.Runes, &createdAtStr)
	if err == sql.ErrNoRows {
		return db.Document{}, db.ErrNoRows
	}
	if err != nil {
		return db.Document{}, err
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return d, nil
}

func nullString(ns sql.NullString) interface{} {
	if ns.Valid {
		return ns.String
	}
	return nil
}
