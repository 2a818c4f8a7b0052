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

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create creates a new photo
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, album_id, account_id, blob_key, title, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		photo.ID, photo.AlbumID, photo.AccountID, photo.BlobKey,
		photo.Title, photo.Description, photo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `
		SELECT id, album_id, account_id, blob_key, title, description, created_at
		FROM photos
		WHERE id = $1
	`
	var photo models.Photo
	err := r.db.QueryRow(ctx, query, id).Scan(
		&photo.ID, &photo.AlbumID, &photo.AccountID, &photo.BlobKey,
		&photo.Title, &photo.Description, &photo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("photo %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &photo, nil
}

// ListByAlbum retrieves all photos in an album in upload order
func (r *PhotoRepository) ListByAlbum(ctx context.Context, albumID string) ([]*models.Photo, error) {
	query := `
		SELECT id, album_id, account_id, blob_key, title, description, created_at
		FROM photos
		WHERE album_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// ListRecent retrieves the most recently uploaded photos across all accounts
func (r *PhotoRepository) ListRecent(ctx context.Context, limit int) ([]*models.Photo, error) {
	query := `
		SELECT id, album_id, account_id, blob_key, title, description, created_at
		FROM photos
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent photos: %w", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

func scanPhotos(rows pgx.Rows) ([]*models.Photo, error) {
	var photos []*models.Photo
	for rows.Next() {
		var photo models.Photo
		err := rows.Scan(
			&photo.ID, &photo.AlbumID, &photo.AccountID, &photo.BlobKey,
			&photo.Title, &photo.Description, &photo.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, &photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

// Update overwrites a photo's title, description and blob key
func (r *PhotoRepository) Update(ctx context.Context, id, title, description, blobKey string) error {
	query := `UPDATE photos SET title = $1, description = $2, blob_key = $3 WHERE id = $4`
	result, err := r.db.Exec(ctx, query, title, description, blobKey, id)
	if err != nil {
		return fmt.Errorf("failed to update photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("photo %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Delete deletes a photo by ID. Likes and comments cascade in the database.
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM photos WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("photo %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
