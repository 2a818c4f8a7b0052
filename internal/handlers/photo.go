package handlers

import (
	"errors"
	"io"
	"net/http"

	"photoshare/internal/apperr"
	"photoshare/internal/middleware"
	"photoshare/internal/services"
	"photoshare/internal/views"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 4 << 20

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photos   *services.PhotoService
	albums   *services.AlbumService
	views    *views.Renderer
	maxBytes int64
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photos *services.PhotoService, albums *services.AlbumService, renderer *views.Renderer, maxBytes int64) *PhotoHandler {
	return &PhotoHandler{
		photos:   photos,
		albums:   albums,
		views:    renderer,
		maxBytes: maxBytes,
	}
}

// photoFile pulls the optional "photo" file out of a multipart form.
// A missing file is (nil, 0, nil); the services decide whether that is
// allowed.
func photoFile(r *http.Request) (io.ReadSeeker, int64, error) {
	file, header, err := r.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return file, header.Size, nil
}

// parseUpload parses a multipart form, capping the request body slightly
// above the configured upload limit so an oversized file still reaches
// the size validation instead of aborting mid-read.
func (h *PhotoHandler) parseUpload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartMemory)
	return r.ParseMultipartForm(multipartMemory)
}

// Index handles GET /albums/{albumID}/photos. Public browsing: any
// viewer may list an album's photos.
func (h *PhotoHandler) Index(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "albumID")

	album, photos, err := h.photos.ListByAlbum(r.Context(), albumID)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.views.Render(w, http.StatusOK, "photos_index.html", views.PhotosPage{
		Album:     album,
		Photos:    photos,
		AccountID: middleware.GetAccountID(r.Context()),
	})
}

// New handles GET /photos/new
func (h *PhotoHandler) New(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	albums, err := h.albums.List(r.Context(), accountID)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.views.Render(w, http.StatusOK, "photo_form.html", views.PhotoFormPage{
		Action: "/photos",
		Albums: albums,
	})
}

// Create handles POST /photos (multipart upload)
func (h *PhotoHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.parseUpload(w, r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	accountID := middleware.GetAccountID(r.Context())
	title := r.PostFormValue("title")
	description := r.PostFormValue("description")
	albumID := r.PostFormValue("album_id")

	file, size, err := photoFile(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	photo, err := h.photos.Upload(r.Context(), accountID, albumID, title, description, file, size)
	if err != nil {
		if ve, ok := apperr.AsValidation(err); ok {
			albums, listErr := h.albums.List(r.Context(), accountID)
			if listErr != nil {
				fail(w, r, listErr)
				return
			}
			h.views.Render(w, http.StatusUnprocessableEntity, "photo_form.html", views.PhotoFormPage{
				Errors:      ve.Fields,
				Action:      "/photos",
				Albums:      albums,
				Title:       title,
				Description: description,
			})
			return
		}
		fail(w, r, err)
		return
	}

	log.Info().
		Str("account_id", accountID).
		Str("photo_id", photo.ID).
		Str("album_id", photo.AlbumID).
		Msg("Photo uploaded")

	redirect(w, r, "/")
}

// Edit handles GET /photos/{photoID}/edit
func (h *PhotoHandler) Edit(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	photoID := chi.URLParam(r, "photoID")

	photo, err := h.photos.GetOwned(r.Context(), accountID, photoID)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.views.Render(w, http.StatusOK, "photo_form.html", views.PhotoFormPage{
		Action:      "/photos/" + photo.ID,
		Title:       photo.Title,
		Description: photo.Description,
		Editing:     true,
	})
}

// Update handles POST /photos/{photoID} (optional replacement upload)
func (h *PhotoHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := h.parseUpload(w, r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	accountID := middleware.GetAccountID(r.Context())
	photoID := chi.URLParam(r, "photoID")
	title := r.PostFormValue("title")
	description := r.PostFormValue("description")

	file, size, err := photoFile(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	photo, err := h.photos.Update(r.Context(), accountID, photoID, title, description, file, size)
	if err != nil {
		if ve, ok := apperr.AsValidation(err); ok {
			h.views.Render(w, http.StatusUnprocessableEntity, "photo_form.html", views.PhotoFormPage{
				Errors:      ve.Fields,
				Action:      "/photos/" + photoID,
				Title:       title,
				Description: description,
				Editing:     true,
			})
			return
		}
		fail(w, r, err)
		return
	}

	redirect(w, r, "/albums/"+photo.AlbumID+"/photos")
}

// Delete handles POST /photos/{photoID}/delete
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	photoID := chi.URLParam(r, "photoID")

	albumID, err := h.photos.Delete(r.Context(), accountID, photoID)
	if err != nil {
		fail(w, r, err)
		return
	}

	log.Info().
		Str("account_id", accountID).
		Str("photo_id", photoID).
		Msg("Photo deleted")

	redirect(w, r, "/albums/"+albumID+"/photos")
}

// Like handles POST /photos/{photoID}/like
func (h *PhotoHandler) Like(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	photoID := chi.URLParam(r, "photoID")

	if err := h.photos.ToggleLike(r.Context(), accountID, photoID); err != nil {
		fail(w, r, err)
		return
	}

	redirect(w, r, "/")
}

// Comments handles GET /photos/{photoID}/comments. Public.
func (h *PhotoHandler) Comments(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photoID")

	photo, comments, err := h.photos.Comments(r.Context(), photoID)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.views.Render(w, http.StatusOK, "comments.html", views.CommentsPage{
		Photo:    photo,
		Comments: comments,
		SignedIn: middleware.GetAccountID(r.Context()) != "",
	})
}

// AddComment handles POST /photos/{photoID}/comments
func (h *PhotoHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	accountID := middleware.GetAccountID(r.Context())
	photoID := chi.URLParam(r, "photoID")
	body := r.PostFormValue("body")

	if _, err := h.photos.AddComment(r.Context(), accountID, photoID, body); err != nil {
		if ve, ok := apperr.AsValidation(err); ok {
			photo, comments, loadErr := h.photos.Comments(r.Context(), photoID)
			if loadErr != nil {
				fail(w, r, loadErr)
				return
			}
			h.views.Render(w, http.StatusUnprocessableEntity, "comments.html", views.CommentsPage{
				Photo:    photo,
				Comments: comments,
				Errors:   ve.Fields,
				Body:     body,
				SignedIn: true,
			})
			return
		}
		fail(w, r, err)
		return
	}

	redirect(w, r, "/photos/"+photoID+"/comments")
}

// Raw handles GET /photos/{photoID}/raw: streams the blob. Public.
func (h *PhotoHandler) Raw(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photoID")

	body, contentType, err := h.photos.Open(r.Context(), photoID)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer body.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, body); err != nil {
		log.Error().Err(err).Str("photo_id", photoID).Msg("Failed to stream photo blob")
	}
}
