package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"photoshare/internal/apperr"
	"photoshare/internal/models"
	"photoshare/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	maxPhotoTitleLen = 255
	maxPhotoDescLen  = 255
	maxCommentLen    = 200

	recentPhotoLimit = 50
)

// blobExtensions maps the accepted image content types to the extension
// used in generated blob keys.
var blobExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PhotoService handles photo upload, editing, likes and comments
type PhotoService struct {
	photos   PhotoStore
	albums   AlbumStore
	likes    LikeStore
	comments CommentStore
	blobs    storage.Store
	maxBytes int64
}

// NewPhotoService creates a new photo service
func NewPhotoService(photos PhotoStore, albums AlbumStore, likes LikeStore, comments CommentStore, blobs storage.Store, maxBytes int64) *PhotoService {
	return &PhotoService{
		photos:   photos,
		albums:   albums,
		likes:    likes,
		comments: comments,
		blobs:    blobs,
		maxBytes: maxBytes,
	}
}

func validatePhotoFields(title, description string) *apperr.ValidationError {
	v := apperr.Validation()
	if title == "" {
		v.Add("title", "title is required")
	} else if len(title) > maxPhotoTitleLen {
		v.Add("title", fmt.Sprintf("title must be at most %d characters", maxPhotoTitleLen))
	}
	if len(description) > maxPhotoDescLen {
		v.Add("description", fmt.Sprintf("description must be at most %d characters", maxPhotoDescLen))
	}
	return v
}

// sniffFile checks size and content type of an upload and returns the
// detected content type. The type comes from the leading bytes, not the
// client-supplied filename or header.
func (s *PhotoService) sniffFile(v *apperr.ValidationError, file io.ReadSeeker, size int64) string {
	if size <= 0 {
		v.Add("file", "file is empty")
		return ""
	}
	if size > s.maxBytes {
		v.Add("file", fmt.Sprintf("file must be at most %d KB", s.maxBytes/1024))
		return ""
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		v.Add("file", "file is unreadable")
		return ""
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		v.Add("file", "file is unreadable")
		return ""
	}

	contentType := http.DetectContentType(head[:n])
	if _, ok := blobExtensions[contentType]; !ok {
		v.Add("file", "file must be an image")
		return ""
	}
	return contentType
}

// ListByAlbum returns the album and its photos. Public: no ownership check.
func (s *PhotoService) ListByAlbum(ctx context.Context, albumID string) (*models.Album, []*models.Photo, error) {
	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return nil, nil, err
	}
	photos, err := s.photos.ListByAlbum(ctx, albumID)
	if err != nil {
		return nil, nil, err
	}
	return album, photos, nil
}

// RecentPhoto is a photo with the current account's like state, for the
// home view.
type RecentPhoto struct {
	*models.Photo
	Liked bool
}

// Recent returns the most recently uploaded photos across all accounts.
// accountID may be empty for anonymous viewers; Liked is then false.
func (s *PhotoService) Recent(ctx context.Context, accountID string) ([]*RecentPhoto, error) {
	photos, err := s.photos.ListRecent(ctx, recentPhotoLimit)
	if err != nil {
		return nil, err
	}

	photoIDs := make([]string, 0, len(photos))
	for _, p := range photos {
		photoIDs = append(photoIDs, p.ID)
	}
	liked, err := s.likes.LikedSet(ctx, accountID, photoIDs)
	if err != nil {
		return nil, err
	}

	recent := make([]*RecentPhoto, 0, len(photos))
	for _, p := range photos {
		recent = append(recent, &RecentPhoto{Photo: p, Liked: liked[p.ID]})
	}
	return recent, nil
}

// Upload validates the upload and persists blob plus row. The blob is
// written first; if the row insert then fails the blob is deleted again
// so a failed upload leaves nothing behind.
func (s *PhotoService) Upload(ctx context.Context, accountID, albumID, title, description string, file io.ReadSeeker, size int64) (*models.Photo, error) {
	v := validatePhotoFields(title, description)
	if albumID == "" {
		v.Add("album", "album is required")
	}
	var contentType string
	if file == nil {
		v.Add("file", "photo file is required")
	} else {
		contentType = s.sniffFile(v, file, size)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		return nil, err
	}
	// Uploads go only into the uploader's own albums.
	if err := requireOwner(album.AccountID, accountID); err != nil {
		return nil, err
	}

	photo := &models.Photo{
		ID:          uuid.New().String(),
		AlbumID:     albumID,
		AccountID:   accountID,
		BlobKey:     fmt.Sprintf("photos/%s%s", uuid.New().String(), blobExtensions[contentType]),
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.blobs.Save(ctx, photo.BlobKey, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to store photo blob: %w", err)
	}

	if err := s.photos.Create(ctx, photo); err != nil {
		if delErr := s.blobs.Delete(ctx, photo.BlobKey); delErr != nil {
			log.Warn().
				Err(delErr).
				Str("blob_key", photo.BlobKey).
				Msg("Failed to clean up blob after row insert failure")
		}
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	return photo, nil
}

// GetOwned loads a photo and verifies the account owns it
func (s *PhotoService) GetOwned(ctx context.Context, accountID, photoID string) (*models.Photo, error) {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(photo.AccountID, accountID); err != nil {
		return nil, err
	}
	return photo, nil
}

// Update overwrites title and description and, when a replacement file is
// supplied, swaps the blob. The new blob is written and the row updated
// before the old blob is deleted, so a failed update leaves the photo
// pointing at its old, still-present blob.
func (s *PhotoService) Update(ctx context.Context, accountID, photoID, title, description string, file io.ReadSeeker, size int64) (*models.Photo, error) {
	photo, err := s.GetOwned(ctx, accountID, photoID)
	if err != nil {
		return nil, err
	}

	v := validatePhotoFields(title, description)
	var contentType string
	if file != nil {
		contentType = s.sniffFile(v, file, size)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	blobKey := photo.BlobKey
	if file != nil {
		blobKey = fmt.Sprintf("photos/%s%s", uuid.New().String(), blobExtensions[contentType])
		if err := s.blobs.Save(ctx, blobKey, contentType, file); err != nil {
			return nil, fmt.Errorf("failed to store replacement blob: %w", err)
		}
	}

	if err := s.photos.Update(ctx, photoID, title, description, blobKey); err != nil {
		if file != nil {
			if delErr := s.blobs.Delete(ctx, blobKey); delErr != nil {
				log.Warn().
					Err(delErr).
					Str("blob_key", blobKey).
					Msg("Failed to clean up blob after row update failure")
			}
		}
		return nil, err
	}

	if file != nil && photo.BlobKey != blobKey {
		if err := s.blobs.Delete(ctx, photo.BlobKey); err != nil {
			log.Warn().
				Err(err).
				Str("photo_id", photoID).
				Str("blob_key", photo.BlobKey).
				Msg("Failed to delete replaced blob")
		}
	}

	photo.Title = title
	photo.Description = description
	photo.BlobKey = blobKey
	return photo, nil
}

// Delete removes the photo row and then its blob. An orphaned blob after
// a failed blob delete is benign and logged.
func (s *PhotoService) Delete(ctx context.Context, accountID, photoID string) (albumID string, err error) {
	photo, err := s.GetOwned(ctx, accountID, photoID)
	if err != nil {
		return "", err
	}

	if err := s.photos.Delete(ctx, photoID); err != nil {
		return "", err
	}

	if err := s.blobs.Delete(ctx, photo.BlobKey); err != nil {
		log.Warn().
			Err(err).
			Str("photo_id", photoID).
			Str("blob_key", photo.BlobKey).
			Msg("Failed to delete blob of removed photo")
	}

	return photo.AlbumID, nil
}

// ToggleLike removes the account's like if present, otherwise records one.
// Delete-returning-count first, constraint-backed insert second; two
// concurrent toggles converge to a legal state without a check-then-act
// window.
func (s *PhotoService) ToggleLike(ctx context.Context, accountID, photoID string) error {
	if _, err := s.photos.GetByID(ctx, photoID); err != nil {
		return err
	}

	removed, err := s.likes.Delete(ctx, accountID, photoID)
	if err != nil {
		return err
	}
	if removed {
		return nil
	}

	// A concurrent toggle may have inserted between the delete and here;
	// ON CONFLICT makes that an unlike for the racing peer.
	if _, err := s.likes.Insert(ctx, accountID, photoID, time.Now()); err != nil {
		return err
	}
	return nil
}

// Comments returns the photo and its comments with author handles in
// creation order. Public: no ownership check.
func (s *PhotoService) Comments(ctx context.Context, photoID string) (*models.Photo, []*models.CommentWithAuthor, error) {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByPhoto(ctx, photoID)
	if err != nil {
		return nil, nil, err
	}
	return photo, comments, nil
}

// AddComment validates and persists a comment by the account on the photo
func (s *PhotoService) AddComment(ctx context.Context, accountID, photoID, body string) (*models.Comment, error) {
	v := apperr.Validation()
	if body == "" {
		v.Add("body", "comment is required")
	} else if len(body) > maxCommentLen {
		v.Add("body", fmt.Sprintf("comment must be at most %d characters", maxCommentLen))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.photos.GetByID(ctx, photoID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		PhotoID:   photoID,
		AccountID: accountID,
		Body:      body,
		CreatedAt: time.Now(),
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// Open streams a photo's blob for serving. Public: no ownership check.
func (s *PhotoService) Open(ctx context.Context, photoID string) (io.ReadCloser, string, error) {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, "", err
	}
	return s.blobs.Open(ctx, photo.BlobKey)
}
