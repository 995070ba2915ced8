package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/folio/internal/auth"
	"github.com/eldtechnologies/folio/internal/crypto"
	"github.com/eldtechnologies/folio/internal/mail"
	"github.com/eldtechnologies/folio/internal/models"
	"github.com/eldtechnologies/folio/internal/store"
	"github.com/eldtechnologies/folio/internal/web"
)

// memStore is an in-memory store.DataStore.
type memStore struct {
	mu      sync.Mutex
	works   []models.Work
	admins  map[string]models.Admin
	pingErr error
}

func newMemStore() *memStore {
	return &memStore{admins: make(map[string]models.Admin)}
}

func (m *memStore) Close() {}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) ListWorks(context.Context) ([]models.Work, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Work(nil), m.works...), nil
}

func (m *memStore) GetWork(_ context.Context, id uuid.UUID) (*models.Work, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.works {
		if w.ID == id {
			w := w
			return &w, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateWork(_ context.Context, work *models.Work) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work.ID = crypto.NewUUIDv7()
	work.CreatedAt = time.Now().UTC()
	work.UpdatedAt = work.CreatedAt
	m.works = append(m.works, *work)
	return nil
}

func (m *memStore) UpdateWork(_ context.Context, work *models.Work) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.works {
		if m.works[i].ID == work.ID {
			m.works[i] = *work
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) DeleteWork(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.works {
		if m.works[i].ID == id {
			m.works = append(m.works[:i], m.works[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) CountWorks(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.works)), nil
}

func (m *memStore) GetAdmin(_ context.Context, id string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.admins[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (m *memStore) CreateAdmin(_ context.Context, id, hash string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := models.Admin{ID: id, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	m.admins[id] = a
	return &a, nil
}

func (m *memStore) UpdateAdminPassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[id]
	if !ok {
		return store.ErrNotFound
	}
	a.PasswordHash = hash
	m.admins[id] = a
	return nil
}

func (m *memStore) CountAdmins(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.admins)), nil
}

type fakeRelay struct {
	sent []mail.ContactMessage
	err  error
}

func (f *fakeRelay) SendContact(_ context.Context, msg mail.ContactMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

var errRelayDown = errors.New("relay down")

type testEnv struct {
	h        *Handler
	store    *memStore
	relay    *fakeRelay
	sessions *auth.Sessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	views, err := web.New()
	require.NoError(t, err)

	env := &testEnv{
		store:    newMemStore(),
		relay:    &fakeRelay{},
		sessions: auth.NewSessions(auth.SessionConfig{Secret: "test-secret", TTL: time.Hour}, zerolog.Nop()),
	}
	env.h = NewHandler(Options{
		Store:    env.store,
		Relay:    env.relay,
		Sessions: env.sessions,
		Views:    views,
		Logger:   zerolog.Nop(),
	})
	return env
}

// pngBytes is a PNG signature followed by filler; enough for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

var longDescription = strings.Repeat("A detailed description of the work. ", 4)

func seedWork(t *testing.T, s *memStore, name string) models.Work {
	t.Helper()
	w := &models.Work{
		Name:        name,
		Type:        "Web",
		Description: longDescription,
		Efforts:     "Design\nBackend",
		Image:       pngBytes,
		ImageType:   "image/png",
	}
	require.NoError(t, s.CreateWork(context.Background(), w))
	return *w
}

func asAdmin(r *http.Request) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), &auth.Identity{AdminID: "admin"}))
}

// workUpload builds a multipart request with the given fields and, if
// filename is set, an image part.
func workUpload(t *testing.T, target string, fields map[string]string, filename string, image []byte) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return asAdmin(req)
}

func formPost(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validWorkFields() map[string]string {
	return map[string]string{
		"name":        "Folio",
		"type":        "Web",
		"description": longDescription,
		"efforts":     "Design\nBackend",
	}
}
