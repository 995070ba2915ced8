package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/folio/internal/auth"
	"github.com/eldtechnologies/folio/internal/handlers"
	"github.com/eldtechnologies/folio/internal/mail"
	"github.com/eldtechnologies/folio/internal/models"
	"github.com/eldtechnologies/folio/internal/provision"
	"github.com/eldtechnologies/folio/internal/store"
	"github.com/eldtechnologies/folio/internal/web"
)

type nopRelay struct{ sent int }

func (n *nopRelay) SendContact(context.Context, mail.ContactMessage) error {
	n.sent++
	return nil
}

type testServer struct {
	router   http.Handler
	store    store.DataStore
	sessions *auth.Sessions
	relay    *nopRelay
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	ds, err := store.NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "folio.db"))
	require.NoError(t, err)
	t.Cleanup(ds.Close)
	require.NoError(t, provision.CreateAdmin(ctx, ds, "me", "s3cret"))

	views, err := web.New()
	require.NoError(t, err)

	sessions := auth.NewSessions(auth.SessionConfig{Secret: "router-test", TTL: time.Hour}, zerolog.Nop())
	relay := &nopRelay{}
	h := handlers.NewHandler(handlers.Options{
		Store:     ds,
		Relay:     relay,
		Sessions:  sessions,
		Views:     views,
		Logger:    zerolog.Nop(),
		LoginPath: "/door",
	})

	return &testServer{
		router:   NewRouter(zerolog.Nop(), h, sessions, "/door"),
		store:    ds,
		sessions: sessions,
		relay:    relay,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	form := url.Values{"id": {"me"}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/door", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := s.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie after login")
	return nil
}

func seedWork(t *testing.T, ds store.DataStore) *models.Work {
	t.Helper()
	w := &models.Work{
		Name:        "Folio",
		Type:        "Web",
		Description: strings.Repeat("x", 120),
		Efforts:     "Design",
		Image:       []byte("\x89PNG\r\n\x1a\n"),
		ImageType:   "image/png",
	}
	require.NoError(t, ds.CreateWork(context.Background(), w))
	return w
}

func TestDeleteWithoutSessionRedirectsAndKeepsWork(t *testing.T) {
	s := newTestServer(t)
	w := seedWork(t, s.store)

	rec := s.do(httptest.NewRequest(http.MethodPost, "/delete_work?id="+w.ID.String(), nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	n, err := s.store.CountWorks(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestGatedRoutesRedirectVisitors(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/new_work", "/edit_work?id=x", "/delete_work?id=x"} {
		rec := s.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/", rec.Header().Get("Location"), path)
	}
}

func TestLoginThenAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t)

	req := httptest.NewRequest(http.MethodGet, "/new_work", nil)
	req.AddCookie(cookie)
	rec := s.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Create New Work")

	// the login page is for visitors only
	req = httptest.NewRequest(http.MethodGet, "/door", nil)
	req.AddCookie(cookie)
	rec = s.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	w := seedWork(t, s.store)
	req = httptest.NewRequest(http.MethodPost, "/delete_work?id="+w.ID.String(), nil)
	req.AddCookie(cookie)
	rec = s.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	n, err := s.store.CountWorks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLogoutEndsAdminAccess(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := s.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	// without the cookie the gate applies again
	rec = s.do(httptest.NewRequest(http.MethodGet, "/new_work", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestLoginPageIsConfigurable(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/door", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/door"`)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicPages(t *testing.T) {
	s := newTestServer(t)
	w := seedWork(t, s.store)

	for _, path := range []string{"/", "/about", "/services", "/works", "/contact", "/work_single?id=" + w.ID.String()} {
		rec := s.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'", path)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"), path)
	}
}

func TestUnknownPathRendersNotFoundPage(t *testing.T) {
	s := newTestServer(t)
	seedWork(t, s.store)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/no-such-page", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Folio")
}

func TestAPIWorksAllowsCrossOrigin(t *testing.T) {
	s := newTestServer(t)
	seedWork(t, s.store)

	req := httptest.NewRequest(http.MethodGet, "/api/works", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec := s.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "default-src 'none'", rec.Header().Get("Content-Security-Policy"))
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestContactThroughRouter(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{
		"name":    {"Ann"},
		"email":   {"ann@example.com"},
		"subject": {"Hi"},
		"message": {"Hello"},
	}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := s.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.relay.sent)
}

func TestRejectsNonFormPosts(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := s.do(req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Zero(t, s.relay.sent)
}

func TestMetricsAndHealth(t *testing.T) {
	s := newTestServer(t)
	s.do(httptest.NewRequest(http.MethodGet, "/about", nil))

	rec := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "folio_http_requests_total")

	rec = s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
