package repository

import (
	"context"
	"fmt"

	"photoshare/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentRepository handles database operations for comments
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, photo_id, account_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		comment.ID, comment.PhotoID, comment.AccountID, comment.Body, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListByPhoto retrieves all comments on a photo with each author's handle,
// in creation order
func (r *CommentRepository) ListByPhoto(ctx context.Context, photoID string) ([]*models.CommentWithAuthor, error) {
	query := `
		SELECT c.id, c.photo_id, c.account_id, c.body, c.created_at, a.handle
		FROM comments c
		JOIN accounts a ON a.id = c.account_id
		WHERE c.photo_id = $1
		ORDER BY c.created_at, c.id
	`
	rows, err := r.db.Query(ctx, query, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.CommentWithAuthor
	for rows.Next() {
		var comment models.CommentWithAuthor
		err := rows.Scan(
			&comment.ID, &comment.PhotoID, &comment.AccountID,
			&comment.Body, &comment.CreatedAt, &comment.AuthorHandle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}
