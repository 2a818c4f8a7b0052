package services

import (
	"context"
	"fmt"
	"time"

	"photoshare/internal/apperr"
	"photoshare/internal/models"
	"photoshare/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	maxAlbumTitleLen = 255
	maxAlbumDescLen  = 150
)

// AlbumService handles album-related business logic
type AlbumService struct {
	albums AlbumStore
	photos PhotoStore
	blobs  storage.Store
}

// NewAlbumService creates a new album service
func NewAlbumService(albums AlbumStore, photos PhotoStore, blobs storage.Store) *AlbumService {
	return &AlbumService{
		albums: albums,
		photos: photos,
		blobs:  blobs,
	}
}

func validateAlbumFields(title, description string) error {
	v := apperr.Validation()
	if title == "" {
		v.Add("title", "title is required")
	} else if len(title) > maxAlbumTitleLen {
		v.Add("title", fmt.Sprintf("title must be at most %d characters", maxAlbumTitleLen))
	}
	if description == "" {
		v.Add("description", "description is required")
	} else if len(description) > maxAlbumDescLen {
		v.Add("description", fmt.Sprintf("description must be at most %d characters", maxAlbumDescLen))
	}
	return v.Err()
}

// List returns all albums owned by the account
func (s *AlbumService) List(ctx context.Context, accountID string) ([]*models.Album, error) {
	return s.albums.ListByAccount(ctx, accountID)
}

// Create validates and persists a new album owned by the account
func (s *AlbumService) Create(ctx context.Context, accountID, title, description string) (*models.Album, error) {
	if err := validateAlbumFields(title, description); err != nil {
		return nil, err
	}

	album := &models.Album{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.albums.Create(ctx, album); err != nil {
		return nil, fmt.Errorf("failed to create album: %w", err)
	}

	return album, nil
}

// GetOwned loads an album and verifies the account owns it
func (s *AlbumService) GetOwned(ctx context.Context, accountID, albumID string) (*models.Album, error) {
	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(album.AccountID, accountID); err != nil {
		return nil, err
	}
	return album, nil
}

// Update overwrites the album's title and description after the ownership check
func (s *AlbumService) Update(ctx context.Context, accountID, albumID, title, description string) error {
	if _, err := s.GetOwned(ctx, accountID, albumID); err != nil {
		return err
	}
	if err := validateAlbumFields(title, description); err != nil {
		return err
	}
	return s.albums.Update(ctx, albumID, title, description)
}

// Delete removes the album after the ownership check. The database
// cascades the child rows; their blobs are deleted here first, since the
// database cannot reach the blob store. A blob that fails to delete is
// logged and orphaned rather than blocking the delete.
func (s *AlbumService) Delete(ctx context.Context, accountID, albumID string) error {
	if _, err := s.GetOwned(ctx, accountID, albumID); err != nil {
		return err
	}

	photos, err := s.photos.ListByAlbum(ctx, albumID)
	if err != nil {
		return fmt.Errorf("failed to list album photos: %w", err)
	}
	for _, photo := range photos {
		if err := s.blobs.Delete(ctx, photo.BlobKey); err != nil {
			log.Warn().
				Err(err).
				Str("album_id", albumID).
				Str("blob_key", photo.BlobKey).
				Msg("Failed to delete blob of cascaded photo")
		}
	}

	return s.albums.Delete(ctx, albumID)
}
