package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourusername/resumematch-web/internal/model"
)

// HistoryRepo persists the activity log of completed operations.
//
// Schema:
//
//	CREATE TABLE operation_history (
//	    id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
//	    kind        text NOT NULL,
//	    filenames   text[] NOT NULL,
//	    score       double precision,
//	    match_count int NOT NULL DEFAULT 0,
//	    created_at  timestamptz NOT NULL DEFAULT now()
//	);
type HistoryRepo struct {
	pool *pgxpool.Pool
}

func NewHistoryRepo(pool *pgxpool.Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

// Record inserts one completed operation and fills in the generated
// id and timestamp.
func (r *HistoryRepo) Record(ctx context.Context, entry *model.HistoryEntry) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO operation_history (kind, filenames, score, match_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, entry.Kind, entry.Filenames, entry.Score, entry.MatchCount,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, filenames, score, match_count, created_at
		FROM operation_history
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Filenames, &e.Score, &e.MatchCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history rows: %w", err)
	}
	return entries, nil
}
