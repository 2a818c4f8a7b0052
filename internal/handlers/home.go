package handlers

import (
	"net/http"

	"photoshare/internal/middleware"
	"photoshare/internal/services"
	"photoshare/internal/views"
)

// HomeHandler renders the home view of recent photos
type HomeHandler struct {
	photos *services.PhotoService
	views  *views.Renderer
}

// NewHomeHandler creates a new home handler
func NewHomeHandler(photos *services.PhotoService, renderer *views.Renderer) *HomeHandler {
	return &HomeHandler{photos: photos, views: renderer}
}

// Home handles GET /. Public; like state is shown for signed-in viewers.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	photos, err := h.photos.Recent(r.Context(), accountID)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.views.Render(w, http.StatusOK, "home.html", views.HomePage{
		SignedIn: accountID != "",
		Photos:   photos,
	})
}
