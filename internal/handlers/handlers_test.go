package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"photoshare/internal/handlers"
	"photoshare/internal/middleware"
	"photoshare/internal/services"
	"photoshare/internal/testutil"
	"photoshare/internal/views"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 2048 * 1024

type testApp struct {
	accounts *testutil.MemAccounts
	albums   *testutil.MemAlbums
	photos   *testutil.MemPhotos
	likes    *testutil.MemLikes
	comments *testutil.MemComments
	blobs    *testutil.MemBlobs

	accountSvc *services.AccountService
	handler    http.Handler
}

// newTestApp wires the full router over in-memory stores, mirroring the
// wiring in cmd.Run.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	app := &testApp{
		accounts: testutil.NewMemAccounts(),
		albums:   testutil.NewMemAlbums(),
		photos:   testutil.NewMemPhotos(),
		likes:    testutil.NewMemLikes(),
		comments: testutil.NewMemComments(),
		blobs:    testutil.NewMemBlobs(),
	}

	renderer, err := views.New()
	require.NoError(t, err)

	app.accountSvc = services.NewAccountService(app.accounts, "test-secret", time.Hour)
	albumSvc := services.NewAlbumService(app.albums, app.photos, app.blobs)
	photoSvc := services.NewPhotoService(app.photos, app.albums, app.likes, app.comments, app.blobs, testMaxUpload)

	authHandler := handlers.NewAuthHandler(app.accountSvc, renderer)
	albumHandler := handlers.NewAlbumHandler(albumSvc, renderer)
	photoHandler := handlers.NewPhotoHandler(photoSvc, albumSvc, renderer, testMaxUpload)
	homeHandler := handlers.NewHomeHandler(photoSvc, renderer)

	r := chi.NewRouter()
	r.Use(middleware.Auth(app.accountSvc))

	r.Get("/", homeHandler.Home)
	r.Get("/login", authHandler.ShowLogin)
	r.Post("/login", authHandler.Login)
	r.Get("/register", authHandler.ShowRegister)
	r.Post("/register", authHandler.Register)
	r.Get("/albums/{albumID}/photos", photoHandler.Index)
	r.Get("/photos/{photoID}/comments", photoHandler.Comments)
	r.Get("/photos/{photoID}/raw", photoHandler.Raw)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAccount)
		r.Post("/logout", authHandler.Logout)

		r.Get("/albums", albumHandler.Index)
		r.Get("/albums/new", albumHandler.New)
		r.Post("/albums", albumHandler.Create)
		r.Get("/albums/{albumID}/edit", albumHandler.Edit)
		r.Post("/albums/{albumID}", albumHandler.Update)
		r.Post("/albums/{albumID}/delete", albumHandler.Delete)

		r.Get("/photos/new", photoHandler.New)
		r.Post("/photos", photoHandler.Create)
		r.Get("/photos/{photoID}/edit", photoHandler.Edit)
		r.Post("/photos/{photoID}", photoHandler.Update)
		r.Post("/photos/{photoID}/delete", photoHandler.Delete)
		r.Post("/photos/{photoID}/like", photoHandler.Like)
		r.Post("/photos/{photoID}/comments", photoHandler.AddComment)
	})

	app.handler = r
	return app
}

func (a *testApp) do(t *testing.T, req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req, cookie)
}

// signUp registers and logs in a fresh account, returning its session
// cookie and account ID.
func (a *testApp) signUp(t *testing.T, handle string) (*http.Cookie, string) {
	t.Helper()

	rec := a.postForm(t, "/register", url.Values{
		"handle":              {handle},
		"secret":              {"password1"},
		"secret_confirmation": {"password1"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	rec = a.postForm(t, "/login", url.Values{
		"handle": {handle},
		"secret": {"password1"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session, "login should set a session cookie")

	account, err := a.accounts.GetByHandle(context.Background(), handle)
	require.NoError(t, err)
	return session, account.ID
}

// createAlbum posts the album form and returns the new album's ID.
func (a *testApp) createAlbum(t *testing.T, cookie *http.Cookie, title string) string {
	t.Helper()

	rec := a.postForm(t, "/albums", url.Values{
		"title":       {title},
		"description": {"a test album"},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/albums", rec.Header().Get("Location"))

	albums, err := a.albums.ListByAccount(context.Background(), mustAccountID(t, a, cookie))
	require.NoError(t, err)
	for _, album := range albums {
		if album.Title == title {
			return album.ID
		}
	}
	t.Fatalf("album %q not created", title)
	return ""
}

func mustAccountID(t *testing.T, a *testApp, cookie *http.Cookie) string {
	t.Helper()
	id, err := a.accountSvc.ValidateJWT(cookie.Value)
	require.NoError(t, err)
	return id
}

// uploadPhoto posts a multipart photo form and returns the new photo's ID.
func (a *testApp) uploadPhoto(t *testing.T, cookie *http.Cookie, albumID, title string) string {
	t.Helper()

	data, _ := testutil.PNGUpload()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("album_id", albumID))
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("description", "uploaded in a test"))
	part, err := mw.CreateFormFile("photo", "test.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := a.do(t, req, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	photos, err := a.photos.ListByAlbum(context.Background(), albumID)
	require.NoError(t, err)
	for _, photo := range photos {
		if photo.Title == title {
			return photo.ID
		}
	}
	t.Fatalf("photo %q not created", title)
	return ""
}

func TestRegisterValidationRerendersForm(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm(t, "/register", url.Values{
		"handle":              {"bob"},
		"secret":              {"password1"},
		"secret_confirmation": {"different1"},
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "passwords do not match")
	assert.Contains(t, rec.Body.String(), `value="bob"`, "handle should be preserved in the form")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "alice")

	rec := app.postForm(t, "/login", url.Values{
		"handle": {"alice"},
		"secret": {"wrongpassword"},
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid handle or password")
	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, middleware.SessionCookie, c.Name, "failed login must not set a session")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := app.signUp(t, "alice")

	rec := app.postForm(t, "/logout", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestProtectedRoutesRedirectAnonymous(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/albums", "/albums/new", "/photos/new"} {
		rec := app.get(t, path, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}

	rec := app.postForm(t, "/albums", url.Values{"title": {"x"}}, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestAlbumCreateAndIndex(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := app.signUp(t, "alice")

	app.createAlbum(t, cookie, "Summer 2026")

	rec := app.get(t, "/albums", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Summer 2026")
}

func TestAlbumCreateValidationRerendersForm(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := app.signUp(t, "alice")

	rec := app.postForm(t, "/albums", url.Values{
		"title":       {""},
		"description": {"no title here"},
	}, cookie)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "title is required")
	assert.Contains(t, rec.Body.String(), "no title here", "description should be preserved")
}

func TestAlbumUpdateEnforcesOwnership(t *testing.T) {
	app := newTestApp(t)
	aliceCookie, _ := app.signUp(t, "alice")
	bobCookie, _ := app.signUp(t, "bob")

	albumID := app.createAlbum(t, aliceCookie, "Private")

	rec := app.postForm(t, "/albums/"+albumID, url.Values{
		"title":       {"Hijacked"},
		"description": {"nope"},
	}, bobCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	album, err := app.albums.GetByID(context.Background(), albumID)
	require.NoError(t, err)
	assert.Equal(t, "Private", album.Title)
}

func TestAlbumDeleteRemovesPhotoBlobs(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := app.signUp(t, "alice")
	albumID := app.createAlbum(t, cookie, "Doomed")
	app.uploadPhoto(t, cookie, albumID, "Last light")
	require.Equal(t, 1, app.blobs.Count())

	rec := app.postForm(t, "/albums/"+albumID+"/delete", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/albums", rec.Header().Get("Location"))
	assert.Equal(t, 0, app.blobs.Count())
}

func TestPhotoUploadAndBrowse(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := app.signUp(t, "alice")
	albumID := app.createAlbum(t, cookie, "Trips")

	photoID := app.uploadPhoto(t, cookie, albumID, "Dunes")
	assert.Equal(t, 1, app.blobs.Count())

	// Album photo listing is public.
	rec := app.get(t, "/albums/"+albumID+"/photos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dunes")

	rec = app.get(t, "/photos/"+photoID+"/raw", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	data, _ := testutil.PNGUpload()
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, data, body)
}

func TestPhotoUploadRejectsNonImage(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := app.signUp(t, "alice")
	albumID := app.createAlbum(t, cookie, "Trips")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("album_id", albumID))
	require.NoError(t, mw.WriteField("title", "Not a photo"))
	part, err := mw.CreateFormFile("photo", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("just some plain text, definitely not pixels"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := app.do(t, req, cookie)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be an image")
	assert.Equal(t, 0, app.blobs.Count())
}

func TestPhotoDeleteEnforcesOwnership(t *testing.T) {
	app := newTestApp(t)
	aliceCookie, _ := app.signUp(t, "alice")
	bobCookie, _ := app.signUp(t, "bob")

	albumID := app.createAlbum(t, aliceCookie, "Trips")
	photoID := app.uploadPhoto(t, aliceCookie, albumID, "Dunes")

	rec := app.postForm(t, "/photos/"+photoID+"/delete", nil, bobCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.postForm(t, "/photos/"+photoID+"/delete", nil, aliceCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/albums/"+albumID+"/photos", rec.Header().Get("Location"))
	assert.Equal(t, 0, app.blobs.Count())
}

func TestLikeToggle(t *testing.T) {
	app := newTestApp(t)
	aliceCookie, aliceID := app.signUp(t, "alice")
	albumID := app.createAlbum(t, aliceCookie, "Trips")
	photoID := app.uploadPhoto(t, aliceCookie, albumID, "Dunes")

	rec := app.postForm(t, "/photos/"+photoID+"/like", nil, aliceCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	liked, err := app.likes.LikedSet(context.Background(), aliceID, []string{photoID})
	require.NoError(t, err)
	assert.True(t, liked[photoID])

	rec = app.postForm(t, "/photos/"+photoID+"/like", nil, aliceCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	liked, err = app.likes.LikedSet(context.Background(), aliceID, []string{photoID})
	require.NoError(t, err)
	assert.False(t, liked[photoID])
}

func TestLikeUnknownPhoto(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := app.signUp(t, "alice")

	rec := app.postForm(t, "/photos/no-such-photo/like", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommentFlow(t *testing.T) {
	app := newTestApp(t)
	cookie, accountID := app.signUp(t, "alice")
	app.comments.Handles[accountID] = "alice"

	albumID := app.createAlbum(t, cookie, "Trips")
	photoID := app.uploadPhoto(t, cookie, albumID, "Dunes")

	rec := app.postForm(t, "/photos/"+photoID+"/comments", url.Values{
		"body": {"lovely shot"},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/photos/"+photoID+"/comments", rec.Header().Get("Location"))

	// Reading comments is public.
	rec = app.get(t, "/photos/"+photoID+"/comments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lovely shot")
	assert.Contains(t, rec.Body.String(), "alice")
}

func TestCommentValidationRerendersPage(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := app.signUp(t, "alice")
	albumID := app.createAlbum(t, cookie, "Trips")
	photoID := app.uploadPhoto(t, cookie, albumID, "Dunes")

	rec := app.postForm(t, "/photos/"+photoID+"/comments", url.Values{
		"body": {""},
	}, cookie)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "comment is required")
	assert.Contains(t, rec.Body.String(), "Dunes", "photo page should still render")
}

func TestHomeShowsRecentPhotos(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := app.signUp(t, "alice")
	albumID := app.createAlbum(t, cookie, "Trips")
	photoID := app.uploadPhoto(t, cookie, albumID, "Dunes")

	rec := app.postForm(t, "/photos/"+photoID+"/like", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.get(t, "/", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dunes")

	// Anonymous visitors see the feed too.
	rec = app.get(t, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dunes")
}
