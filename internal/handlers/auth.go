package handlers

import (
	"errors"
	"net/http"

	"photoshare/internal/apperr"
	"photoshare/internal/middleware"
	"photoshare/internal/services"
	"photoshare/internal/views"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	accounts *services.AccountService
	views    *views.Renderer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts *services.AccountService, renderer *views.Renderer) *AuthHandler {
	return &AuthHandler{accounts: accounts, views: renderer}
}

// ShowLogin handles GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if middleware.GetAccountID(r.Context()) != "" {
		redirect(w, r, "/")
		return
	}
	h.views.Render(w, http.StatusOK, "login.html", views.AuthPage{})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	handle := r.PostFormValue("handle")
	secret := r.PostFormValue("secret")

	account, err := h.accounts.Login(r.Context(), handle, secret)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// Soft failure: back to the form, no session, no hint which
			// half of the pair was wrong.
			h.views.Render(w, http.StatusUnprocessableEntity, "login.html", views.AuthPage{
				Handle:  handle,
				Message: "Invalid handle or password",
			})
			return
		}
		fail(w, r, err)
		return
	}

	token, err := h.accounts.GenerateJWT(account.ID)
	if err != nil {
		fail(w, r, err)
		return
	}
	middleware.SetSessionCookie(w, token, int(h.accounts.SessionTTL().Seconds()))

	log.Info().
		Str("account_id", account.ID).
		Str("handle", account.Handle).
		Msg("Account logged in")

	redirect(w, r, "/")
}

// ShowRegister handles GET /register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, "register.html", views.AuthPage{})
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	handle := r.PostFormValue("handle")

	account, err := h.accounts.Register(
		r.Context(),
		handle,
		r.PostFormValue("secret"),
		r.PostFormValue("secret_confirmation"),
	)
	if err != nil {
		if ve, ok := apperr.AsValidation(err); ok {
			h.views.Render(w, http.StatusUnprocessableEntity, "register.html", views.AuthPage{
				Errors: ve.Fields,
				Handle: handle,
			})
			return
		}
		fail(w, r, err)
		return
	}

	log.Info().
		Str("account_id", account.ID).
		Str("handle", account.Handle).
		Msg("Account registered")

	redirect(w, r, "/login")
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w)
	redirect(w, r, "/login")
}
