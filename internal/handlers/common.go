package handlers

import (
	"errors"
	"net/http"

	"photoshare/internal/apperr"

	"github.com/rs/zerolog/log"
)

// fail maps a non-validation service error onto a response. Validation
// errors never reach here; each handler re-renders its own form for those.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, apperr.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	default:
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// redirect issues the 303 that follows every successful mutation
func redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}
