// Package views renders the HTML pages. Handlers hand it a page name
// and page data; everything else about templating is internal here.
package views

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"photoshare/internal/models"
	"photoshare/internal/services"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templatesFS embed.FS

// FormErrors carries per-field validation messages into a form template
type FormErrors map[string]string

// AuthPage backs the login and registration forms
type AuthPage struct {
	Errors  FormErrors
	Handle  string
	Message string
}

// HomePage backs the home view of recent photos
type HomePage struct {
	SignedIn bool
	Photos   []*services.RecentPhoto
}

// AlbumsPage backs the album list
type AlbumsPage struct {
	Albums []*models.Album
}

// AlbumFormPage backs the album create and edit forms
type AlbumFormPage struct {
	Errors      FormErrors
	Action      string
	Title       string
	Description string
	Editing     bool
}

// PhotosPage backs an album's photo list
type PhotosPage struct {
	Album     *models.Album
	Photos    []*models.Photo
	AccountID string
}

// PhotoFormPage backs the photo upload and edit forms
type PhotoFormPage struct {
	Errors      FormErrors
	Action      string
	Albums      []*models.Album
	Title       string
	Description string
	Editing     bool
}

// CommentsPage backs a photo's comment list
type CommentsPage struct {
	Photo    *models.Photo
	Comments []*models.CommentWithAuthor
	Errors   FormErrors
	Body     string
	SignedIn bool
}

// Renderer renders named page templates
type Renderer struct {
	templates *template.Template
}

// New parses the embedded templates
func New() (*Renderer, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: templates}, nil
}

// Render executes the named page template. The page is rendered into a
// buffer first so a template failure becomes a clean 500 instead of a
// half-written body.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, page, data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
