package services

import (
	"context"
	"time"

	"photoshare/internal/apperr"
	"photoshare/internal/models"
)

// Store interfaces consumed by the services. The pgx repositories in
// internal/repository satisfy them; tests substitute in-memory fakes.

// AccountStore persists accounts
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByHandle(ctx context.Context, handle string) (*models.Account, error)
	HandleExists(ctx context.Context, handle string) (bool, error)
}

// AlbumStore persists albums
type AlbumStore interface {
	Create(ctx context.Context, album *models.Album) error
	GetByID(ctx context.Context, id string) (*models.Album, error)
	ListByAccount(ctx context.Context, accountID string) ([]*models.Album, error)
	Update(ctx context.Context, id, title, description string) error
	Delete(ctx context.Context, id string) error
}

// PhotoStore persists photo rows (the bytes live in storage.Store)
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	ListByAlbum(ctx context.Context, albumID string) ([]*models.Photo, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Photo, error)
	Update(ctx context.Context, id, title, description, blobKey string) error
	Delete(ctx context.Context, id string) error
}

// LikeStore persists likes; Insert and Delete report whether a row was
// actually written or removed, which is what keeps the toggle atomic
type LikeStore interface {
	Insert(ctx context.Context, accountID, photoID string, at time.Time) (bool, error)
	Delete(ctx context.Context, accountID, photoID string) (bool, error)
	LikedSet(ctx context.Context, accountID string, photoIDs []string) (map[string]bool, error)
}

// CommentStore persists comments
type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPhoto(ctx context.Context, photoID string) ([]*models.CommentWithAuthor, error)
}

// requireOwner is the single authorization predicate applied before every
// mutating operation on an owned record.
func requireOwner(ownerID, accountID string) error {
	if ownerID != accountID {
		return apperr.ErrForbidden
	}
	return nil
}
