package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository handles database operations for likes
type LikeRepository struct {
	db *pgxpool.Pool
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{db: db}
}

// Insert records a like for (account, photo). The primary key on
// (account_id, photo_id) makes concurrent inserts converge: the loser
// of the race hits ON CONFLICT and inserted is false.
func (r *LikeRepository) Insert(ctx context.Context, accountID, photoID string, at time.Time) (bool, error) {
	query := `
		INSERT INTO likes (account_id, photo_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, photo_id) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query, accountID, photoID, at)
	if err != nil {
		return false, fmt.Errorf("failed to insert like: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Delete removes the like for (account, photo) and reports whether a row
// existed. The affected-row count is what makes the toggle atomic.
func (r *LikeRepository) Delete(ctx context.Context, accountID, photoID string) (bool, error) {
	query := `DELETE FROM likes WHERE account_id = $1 AND photo_id = $2`
	result, err := r.db.Exec(ctx, query, accountID, photoID)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// LikedSet reports which of the given photos the account has liked
func (r *LikeRepository) LikedSet(ctx context.Context, accountID string, photoIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool, len(photoIDs))
	if accountID == "" || len(photoIDs) == 0 {
		return liked, nil
	}

	query := `SELECT photo_id FROM likes WHERE account_id = $1 AND photo_id = ANY($2)`
	rows, err := r.db.Query(ctx, query, accountID, photoIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var photoID string
		if err := rows.Scan(&photoID); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		liked[photoID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating likes: %w", err)
	}

	return liked, nil
}
