package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jusunglee/olchiki/internal/db"
)

//go:embed schema.sql
var schemaSQL string

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements db.Repository using PostgreSQL via pgx
type Repository struct {
	pool *pgxpool.Pool
	q    querier
}

// New creates a new PostgreSQL repository
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	config.MaxConns = 5
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 30 * time.Second
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Repository{pool: pool, q: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// PoolStats reports connection pool usage for the metrics gauges.
func (r *Repository) PoolStats() *pgxpool.Stat {
	return r.pool.Stat()
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	// If fn() panics, the normal err-check rollback below won't run.
	// recover() catches the panic so we can roll back the tx (releasing the db connection), then re-panic.
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback(ctx)
			panic(r)
		}
	}()

	err = fn(&Repository{pool: r.pool, q: tx})
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Batch methods

const batchColumns = `id, source, language, scheme, status, converted, skipped, error, created_at, completed_at`

func (r *Repository) CreateBatch(ctx context.Context, arg db.CreateBatchParams) (db.Batch, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO batches (source, language, scheme)
		VALUES ($1, $2, $3)
		RETURNING `+batchColumns,
		arg.Source, toPgText(arg.Language), arg.Scheme)
	return scanBatch(row)
}

func (r *Repository) CompleteBatch(ctx context.Context, arg db.CompleteBatchParams) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE batches
		SET status = $2, converted = $3, skipped = $4, error = $5, completed_at = NOW()
		WHERE id = $1
	`, arg.ID, arg.Status, arg.Converted, arg.Skipped, toPgText(arg.Error))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNoRows
	}
	return nil
}

func (r *Repository) GetBatch(ctx context.Context, id int64) (db.Batch, error) {
	row := r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id)
	return scanBatch(row)
}

func (r *Repository) ListBatches(ctx context.Context, limit int32) ([]db.Batch, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+batchColumns+`
		FROM batches
		ORDER BY created_at DESC, id DESC
		LIMIT $1
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
	row := r.q.QueryRow(ctx, `
		INSERT INTO documents (batch_id, name, output_name, status, error, runes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+documentColumns,
		arg.BatchID, arg.Name, toPgText(arg.OutputName), arg.Status, toPgText(arg.Error), arg.Runes)
	return scanDocument(row)
}

func (r *Repository) ListDocumentsByBatch(ctx context.Context, batchID int64) ([]db.Document, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE batch_id = $1
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

// Type conversion helpers

func scanBatch(row pgx.Row) (db.Batch, error) {
	var (
		b           db.Batch
		language    pgtype.Text
		errText     pgtype.Text
		createdAt   pgtype.Timestamptz
		completedAt pgtype.Timestamptz
	)
	err := row.Scan(&b.ID, &b.Source, &language, &b.Scheme, &b.Status, &b.Converted, &b.Skipped, &errText, &createdAt, &completedAt)
	if err == pgx.ErrNoRows {
		return db.Batch{}, db.ErrNoRows
	}
	if err != nil {
		return db.Batch{}, err
	}
	b.Language = fromPgText(language)
	b.Error = fromPgText(errText)
	b.CreatedAt = createdAt.Time
	b.CompletedAt = fromPgTimestamptz(completedAt)
	return b, nil
}

func scanDocument(row pgx.Row) (db.Document, error) {
	var (
		d          db.Document
		outputName pgtype.Text
		errText    pgtype.Text
		createdAt  pgtype.Timestamptz
	)
	err := row.Scan(&d.ID, &d.BatchID, &d.Name, &outputName, &d.Status, &errText, &d.Runes, &createdAt)
	if err == pgx.ErrNoRows {
		return db.Document{}, db.ErrNoRows
	}
	if err != nil {
		return db.Document{}, err
	}
	d.OutputName = fromPgText(outputName)
	d.Error = fromPgText(errText)
	d.CreatedAt = createdAt.Time
	return d, nil
}

func toPgText(s sql.NullString) pgtype.Text {
	return pgtype.Text{String: s.String, Valid: s.Valid}
}

func fromPgText(t pgtype.Text) sql.NullString {
	return sql.NullString{String: t.String, Valid: t.Valid}
}

func fromPgTimestamptz(t pgtype.Timestamptz) sql.NullTime {
	return sql.NullTime{Time: t.Time, Valid: t.Valid}
}
