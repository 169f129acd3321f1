// Package storage opens the batch history repository named by a database URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jusunglee/olchiki/internal/db"
	"github.com/jusunglee/olchiki/internal/db/postgres"
	"github.com/jusunglee/olchiki/internal/db/sqlite"
)

// Pooled is implemented by repositories backed by a pgx connection pool.
type Pooled interface {
	PoolStats() *pgxpool.Stat
}

// Open returns a PostgreSQL repository for postgres:// and postgresql:// URLs
// and a SQLite repository for anything else, treated as a file path with an
// optional sqlite:// prefix.
func Open(ctx context.Context, databaseURL string) (db.Repository, string, error) {
	switch {
	case databaseURL == "":
		return nil, "", errors.New("database URL is empty")
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		repo, err := postgres.New(ctx, databaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("creating PostgreSQL connection: %w", err)
		}
		return repo, "postgres", nil
	default:
		repo, err := sqlite.New(ctx, databaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("creating SQLite connection: %w", err)
		}
		return repo, "sqlite", nil
	}
}
