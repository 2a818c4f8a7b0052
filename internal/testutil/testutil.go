// Package testutil provides in-memory stand-ins for the pgx repositories
// and the S3 blob store, for use in package tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"photoshare/internal/apperr"
	"photoshare/internal/models"
)

// MemAccounts is an in-memory AccountStore
type MemAccounts struct {
	mu       sync.Mutex
	accounts map[string]*models.Account // by ID
}

// NewMemAccounts creates an empty account store
func NewMemAccounts() *MemAccounts {
	return &MemAccounts{accounts: make(map[string]*models.Account)}
}

func (m *MemAccounts) Create(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Handle == account.Handle {
			return fmt.Errorf("handle %q taken: %w", account.Handle, apperr.ErrConflict)
		}
	}
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *MemAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, fmt.Errorf("account %s: %w", id, apperr.ErrNotFound)
}

func (m *MemAccounts) GetByHandle(_ context.Context, handle string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Handle == handle {
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("account %q: %w", handle, apperr.ErrNotFound)
}

func (m *MemAccounts) HandleExists(_ context.Context, handle string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Handle == handle {
			return true, nil
		}
	}
	return false, nil
}

// MemAlbums is an in-memory AlbumStore
type MemAlbums struct {
	mu     sync.Mutex
	albums map[string]*models.Album
}

// NewMemAlbums creates an empty album store
func NewMemAlbums() *MemAlbums {
	return &MemAlbums{albums: make(map[string]*models.Album)}
}

func (m *MemAlbums) Create(_ context.Context, album *models.Album) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *album
	m.albums[album.ID] = &cp
	return nil
}

func (m *MemAlbums) GetByID(_ context.Context, id string) (*models.Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.albums[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, fmt.Errorf("album %s: %w", id, apperr.ErrNotFound)
}

func (m *MemAlbums) ListByAccount(_ context.Context, accountID string) ([]*models.Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Album
	for _, a := range m.albums {
		if a.AccountID == accountID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemAlbums) Update(_ context.Context, id, title, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.albums[id]
	if !ok {
		return fmt.Errorf("album %s: %w", id, apperr.ErrNotFound)
	}
	a.Title = title
	a.Description = description
	return nil
}

func (m *MemAlbums) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.albums[id]; !ok {
		return fmt.Errorf("album %s: %w", id, apperr.ErrNotFound)
	}
	delete(m.albums, id)
	return nil
}

// MemPhotos is an in-memory PhotoStore
type MemPhotos struct {
	mu     sync.Mutex
	photos map[string]*models.Photo
	seq    int // insertion order stand-in for created_at ties
	order  map[string]int

	// FailCreate forces the next row insert to fail, for testing blob cleanup
	FailCreate bool
}

// NewMemPhotos creates an empty photo store
func NewMemPhotos() *MemPhotos {
	return &MemPhotos{photos: make(map[string]*models.Photo), order: make(map[string]int)}
}

func (m *MemPhotos) Create(_ context.Context, photo *models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreate {
		return fmt.Errorf("forced insert failure")
	}
	cp := *photo
	m.photos[photo.ID] = &cp
	m.seq++
	m.order[photo.ID] = m.seq
	return nil
}

func (m *MemPhotos) GetByID(_ context.Context, id string) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.photos[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("photo %s: %w", id, apperr.ErrNotFound)
}

func (m *MemPhotos) ListByAlbum(_ context.Context, albumID string) ([]*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Photo
	for _, p := range m.photos {
		if p.AlbumID == albumID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] < m.order[out[j].ID] })
	return out, nil
}

func (m *MemPhotos) ListRecent(_ context.Context, limit int) ([]*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Photo
	for _, p := range m.photos {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] > m.order[out[j].ID] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemPhotos) Update(_ context.Context, id, title, description, blobKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.photos[id]
	if !ok {
		return fmt.Errorf("photo %s: %w", id, apperr.ErrNotFound)
	}
	p.Title = title
	p.Description = description
	p.BlobKey = blobKey
	return nil
}

func (m *MemPhotos) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.photos[id]; !ok {
		return fmt.Errorf("photo %s: %w", id, apperr.ErrNotFound)
	}
	delete(m.photos, id)
	return nil
}

// MemLikes is an in-memory LikeStore
type MemLikes struct {
	mu    sync.Mutex
	likes map[string]time.Time // accountID + "|" + photoID
}

// NewMemLikes creates an empty like store
func NewMemLikes() *MemLikes {
	return &MemLikes{likes: make(map[string]time.Time)}
}

func likeKey(accountID, photoID string) string { return accountID + "|" + photoID }

func (m *MemLikes) Insert(_ context.Context, accountID, photoID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := likeKey(accountID, photoID)
	if _, ok := m.likes[key]; ok {
		return false, nil
	}
	m.likes[key] = at
	return true, nil
}

func (m *MemLikes) Delete(_ context.Context, accountID, photoID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := likeKey(accountID, photoID)
	if _, ok := m.likes[key]; !ok {
		return false, nil
	}
	delete(m.likes, key)
	return true, nil
}

func (m *MemLikes) LikedSet(_ context.Context, accountID string, photoIDs []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	liked := make(map[string]bool)
	for _, photoID := range photoIDs {
		if _, ok := m.likes[likeKey(accountID, photoID)]; ok {
			liked[photoID] = true
		}
	}
	return liked, nil
}

// MemComments is an in-memory CommentStore. Handles maps account IDs to
// handles, standing in for the accounts JOIN.
type MemComments struct {
	mu       sync.Mutex
	comments []*models.Comment
	Handles  map[string]string
}

// NewMemComments creates an empty comment store
func NewMemComments() *MemComments {
	return &MemComments{Handles: make(map[string]string)}
}

func (m *MemComments) Create(_ context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *comment
	m.comments = append(m.comments, &cp)
	return nil
}

func (m *MemComments) ListByPhoto(_ context.Context, photoID string) ([]*models.CommentWithAuthor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.CommentWithAuthor
	for _, c := range m.comments {
		if c.PhotoID == photoID {
			out = append(out, &models.CommentWithAuthor{
				Comment:      *c,
				AuthorHandle: m.Handles[c.AccountID],
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// MemBlobs is an in-memory storage.Store
type MemBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	// FailSave forces the next save to fail
	FailSave bool
}

// NewMemBlobs creates an empty blob store
func NewMemBlobs() *MemBlobs {
	return &MemBlobs{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *MemBlobs) Save(_ context.Context, key, contentType string, body io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave {
		return fmt.Errorf("forced save failure")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *MemBlobs) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("blob %s: %w", key, apperr.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), m.types[key], nil
}

func (m *MemBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.types, key)
	return nil
}

// Count reports how many blobs are stored
func (m *MemBlobs) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Has reports whether a blob exists under key
func (m *MemBlobs) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// PNGUpload builds a minimal PNG-signature body for upload tests
func PNGUpload() ([]byte, int64) {
	data := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	return data, int64(len(data))
}
