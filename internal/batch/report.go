package batch

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jusunglee/olchiki/internal/db"
)

// SaveReport records a finished archive conversion and its documents in one
// transaction and returns the stored batch.
func SaveReport(ctx context.Context, repo db.Repository, source string, report Report) (db.Batch, error) {
	var saved db.Batch
	err := repo.WithTx(ctx, func(tx db.Repository) error {
		b, err := tx.CreateBatch(ctx, db.CreateBatchParams{
			Source:   source,
			Language: toNullString(report.Language),
			Scheme:   report.Scheme,
		})
		if err != nil {
			return fmt.Errorf("creating batch: %w", err)
		}

		for _, d := range report.Documents {
			_, err := tx.CreateDocument(ctx, db.CreateDocumentParams{
				BatchID:    b.ID,
				Name:       d.Name,
				OutputName: toNullString(d.OutputName),
				Status:     string(d.Status),
				Error:      toNullString(d.Error),
				Runes:      int64(d.Runes),
			})
			if err != nil {
				return fmt.Errorf("creating document %s: %w", d.Name, err)
			}
		}

		err = tx.CompleteBatch(ctx, db.CompleteBatchParams{
			ID:        b.ID,
			Status:    db.BatchCompleted,
			Converted: int32(report.Converted),
			Skipped:   int32(report.Skipped),
		})
		if err != nil {
			return fmt.Errorf("completing batch: %w", err)
		}

		saved, err = tx.GetBatch(ctx, b.ID)
		return err
	})
	if err != nil {
		return db.Batch{}, fmt.Errorf("saving report: %w", err)
	}
	return saved, nil
}

// RecordFailure stores a batch that failed before any document converted,
// such as an unreadable archive.
func RecordFailure(ctx context.Context, repo db.Repository, source string, opts Options, cause error) (db.Batch, error) {
	var saved db.Batch
	err := repo.WithTx(ctx, func(tx db.Repository) error {
		b, err := tx.CreateBatch(ctx, db.CreateBatchParams{
			Source:   source,
			Language: toNullString(opts.LanguageName()),
			Scheme:   string(opts.Scheme),
		})
		if err != nil {
			return fmt.Errorf("creating batch: %w", err)
		}

		err = tx.CompleteBatch(ctx, db.CompleteBatchParams{
			ID:     b.ID,
			Status: db.BatchFailed,
			Error:  toNullString(cause.Error()),
		})
		if err != nil {
			return fmt.Errorf("completing batch: %w", err)
		}

		saved, err = tx.GetBatch(ctx, b.ID)
		return err
	})
	if err != nil {
		return db.Batch{}, fmt.Errorf("recording failed batch: %w", err)
	}
	return saved, nil
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
