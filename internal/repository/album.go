package repository

import (
	"context"
	"errors"
	"fmt"

	"photoshare/internal/apperr"
	"photoshare/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AlbumRepository handles database operations for albums
type AlbumRepository struct {
	db *pgxpool.Pool
}

// NewAlbumRepository creates a new album repository
func NewAlbumRepository(db *pgxpool.Pool) *AlbumRepository {
	return &AlbumRepository{db: db}
}

// Create creates a new album
func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) error {
	query := `
		INSERT INTO albums (id, account_id, title, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		album.ID, album.AccountID, album.Title, album.Description, album.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}
	return nil
}

// GetByID retrieves an album by ID
func (r *AlbumRepository) GetByID(ctx context.Context, id string) (*models.Album, error) {
	query := `
		SELECT id, account_id, title, description, created_at
		FROM albums
		WHERE id = $1
	`
	var album models.Album
	err := r.db.QueryRow(ctx, query, id).Scan(
		&album.ID, &album.AccountID, &album.Title, &album.Description, &album.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("album %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	return &album, nil
}

// ListByAccount retrieves all albums owned by an account in insertion order
func (r *AlbumRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Album, error) {
	query := `
		SELECT id, account_id, title, description, created_at
		FROM albums
		WHERE account_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	defer rows.Close()

	var albums []*models.Album
	for rows.Next() {
		var album models.Album
		err := rows.Scan(
			&album.ID, &album.AccountID, &album.Title, &album.Description, &album.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums = append(albums, &album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating albums: %w", err)
	}

	return albums, nil
}

// Update overwrites an album's title and description, leaving the timestamp untouched
func (r *AlbumRepository) Update(ctx context.Context, id, title, description string) error {
	query := `UPDATE albums SET title = $1, description = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query, title, description, id)
	if err != nil {
		return fmt.Errorf("failed to update album: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("album %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Delete deletes an album by ID. Child photos, likes and comments are
// removed by the database's ON DELETE CASCADE constraints.
func (r *AlbumRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM albums WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete album: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("album %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
