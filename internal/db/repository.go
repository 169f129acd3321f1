package db

import (
	"context"
	"database/sql"
	"time"
)

// Batch statuses.
const (
	BatchRunning   = "running"
	BatchCompleted = "completed"
	BatchFailed    = "failed"
)

// Document statuses.
const (
	DocumentConverted = "converted"
	DocumentSkipped   = "skipped"
)

// Batch is one archive conversion run.
type Batch struct {
	ID          int64
	Source      string
	Language    sql.NullString
	Scheme      string
	Status      string
	Converted   int32
	Skipped     int32
	Error       sql.NullString
	CreatedAt   time.Time
	CompletedAt sql.NullTime
}

// Document is the outcome for one file inside a batch.
type Document struct {
	ID         int64
	BatchID    int64
	Name       string
	OutputName sql.NullString
	Status     string
	Error      sql.NullString
	Runes      int64
	CreatedAt  time.Time
}

type CreateBatchParams struct {
	Source   string
	Language sql.NullString
	Scheme   string
}

type CompleteBatchParams struct {
	ID        int64
	Status    string
	Converted int32
	Skipped   int32
	Error     sql.NullString
}

type CreateDocumentParams struct {
	BatchID    int64
	Name       string
	OutputName sql.NullString
	Status     string
	Error      sql.NullString
	Runes      int64
}

// Repository defines the interface for batch history storage.
type Repository interface {
	// Batches
	CreateBatch(ctx context.Context, arg CreateBatchParams) (Batch, error)
	CompleteBatch(ctx context.Context, arg CompleteBatchParams) error
	GetBatch(ctx context.Context, id int64) (Batch, error)
	ListBatches(ctx context.Context, limit int32) ([]Batch, error)

	// Documents
	CreateDocument(ctx context.Context, arg CreateDocumentParams) (Document, error)
	ListDocumentsByBatch(ctx context.Context, batchID int64) ([]Document, error)

	WithTx(ctx context.Context, fn func(repo Repository) error) error
	Close() error
}
