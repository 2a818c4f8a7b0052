package handlers

import (
	"net/http"

	"photoshare/internal/apperr"
	"photoshare/internal/middleware"
	"photoshare/internal/services"
	"photoshare/internal/views"

	"github.com/go-chi/chi/v5"
)

// AlbumHandler handles album-related HTTP requests
type AlbumHandler struct {
	albums *services.AlbumService
	views  *views.Renderer
}

// NewAlbumHandler creates a new album handler
func NewAlbumHandler(albums *services.AlbumService, renderer *views.Renderer) *AlbumHandler {
	return &AlbumHandler{albums: albums, views: renderer}
}

// Index handles GET /albums
func (h *AlbumHandler) Index(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	albums, err := h.albums.List(r.Context(), accountID)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.views.Render(w, http.StatusOK, "albums_index.html", views.AlbumsPage{Albums: albums})
}

// New handles GET /albums/new
func (h *AlbumHandler) New(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, "album_form.html", views.AlbumFormPage{Action: "/albums"})
}

// Create handles POST /albums
func (h *AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	accountID := middleware.GetAccountID(r.Context())
	title := r.PostFormValue("title")
	description := r.PostFormValue("description")

	if _, err := h.albums.Create(r.Context(), accountID, title, description); err != nil {
		if ve, ok := apperr.AsValidation(err); ok {
			h.views.Render(w, http.StatusUnprocessableEntity, "album_form.html", views.AlbumFormPage{
				Errors:      ve.Fields,
				Action:      "/albums",
				Title:       title,
				Description: description,
			})
			return
		}
		fail(w, r, err)
		return
	}

	redirect(w, r, "/albums")
}

// Edit handles GET /albums/{albumID}/edit
func (h *AlbumHandler) Edit(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	albumID := chi.URLParam(r, "albumID")

	album, err := h.albums.GetOwned(r.Context(), accountID, albumID)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.views.Render(w, http.StatusOK, "album_form.html", views.AlbumFormPage{
		Action:      "/albums/" + album.ID,
		Title:       album.Title,
		Description: album.Description,
		Editing:     true,
	})
}

// Update handles POST /albums/{albumID}
func (h *AlbumHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	accountID := middleware.GetAccountID(r.Context())
	albumID := chi.URLParam(r, "albumID")
	title := r.PostFormValue("title")
	description := r.PostFormValue("description")

	if err := h.albums.Update(r.Context(), accountID, albumID, title, description); err != nil {
		if ve, ok := apperr.AsValidation(err); ok {
			h.views.Render(w, http.StatusUnprocessableEntity, "album_form.html", views.AlbumFormPage{
				Errors:      ve.Fields,
				Action:      "/albums/" + albumID,
				Title:       title,
				Description: description,
				Editing:     true,
			})
			return
		}
		fail(w, r, err)
		return
	}

	redirect(w, r, "/albums")
}

// Delete handles POST /albums/{albumID}/delete
func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	albumID := chi.URLParam(r, "albumID")

	if err := h.albums.Delete(r.Context(), accountID, albumID); err != nil {
		fail(w, r, err)
		return
	}

	redirect(w, r, "/albums")
}
