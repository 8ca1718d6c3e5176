package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio-web/apiserver/internal/auth"
	"github.com/portfolio-web/apiserver/internal/services"
	"github.com/portfolio-web/apiserver/internal/store"
	"github.com/portfolio-web/apiserver/types"
)

const (
	ownerToken      = "owner-token"
	otherToken      = "other-token"
	adminToken      = "admin-token"
	superAdminToken = "super-token"
)

type tokenProvider map[string]*auth.Identity

func (p tokenProvider) CurrentUser(_ context.Context, token string) (*auth.Identity, error) {
	identity, ok := p[token]
	if !ok {
		return nil, errors.New("invalid JWT")
	}
	return identity, nil
}

type memoryProfiles struct {
	profiles map[string]types.Profile
	err      error
	roleErr  error
}

func (m *memoryProfiles) GetByID(_ context.Context, id string) (types.Profile, error) {
	if m.err != nil {
		return types.Profile{}, m.err
	}
	p, ok := m.profiles[id]
	if !ok {
		return types.Profile{}, store.ErrNotFound
	}
	return p, nil
}

func (m *memoryProfiles) RoleByID(ctx context.Context, id string) (types.Role, error) {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return types.RoleUser, err
	}
	return p.Role, nil
}

func (m *memoryProfiles) List(context.Context, int, int) ([]types.Profile, int, error) {
	out := make([]types.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memoryProfiles) Upsert(_ context.Context, p types.Profile) (types.Profile, error) {
	if existing, ok := m.profiles[p.ID]; ok {
		existing.Name, existing.AvatarURL = p.Name, p.AvatarURL
		p = existing
	}
	m.profiles[p.ID] = p
	return p, nil
}

func (m *memoryProfiles) UpsertWithRole(_ context.Context, p types.Profile) (types.Profile, error) {
	if existing, ok := m.profiles[p.ID]; ok {
		existing.Name, existing.AvatarURL, existing.Role = p.Name, p.AvatarURL, p.Role
		p = existing
	}
	m.profiles[p.ID] = p
	return p, nil
}

func (m *memoryProfiles) UpdateRole(_ context.Context, id string, role types.Role) (types.Profile, error) {
	if m.roleErr != nil {
		return types.Profile{}, m.roleErr
	}
	p, ok := m.profiles[id]
	if !ok {
		p = types.DefaultProfile(id)
	}
	p.Role = role
	m.profiles[id] = p
	return p, nil
}

func (m *memoryProfiles) SetAvatarURL(_ context.Context, id string, url *string) (types.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		p = types.DefaultProfile(id)
	}
	p.AvatarURL = url
	m.profiles[id] = p
	return p, nil
}

func (m *memoryProfiles) SetCVURL(_ context.Context, id string, url *string) (types.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		p = types.DefaultProfile(id)
	}
	p.CVURL = url
	m.profiles[id] = p
	return p, nil
}

type memoryNotes struct {
	notes         map[int]types.Note
	err           error
	authorLookups int
}

func (m *memoryNotes) List(_ context.Context, filter store.NoteFilter, _, _ int) ([]types.Note, int, error) {
	var out []types.Note
	for _, n := range m.notes {
		if filter.AuthorID != "" && n.AuthorID != filter.AuthorID {
			continue
		}
		if !n.Published && !(filter.IncludeDrafts && n.AuthorID == filter.AuthorID) {
			continue
		}
		out = append(out, n)
	}
	return out, len(out), nil
}

func (m *memoryNotes) Get(_ context.Context, id int) (types.Note, error) {
	n, ok := m.notes[id]
	if !ok {
		return types.Note{}, store.ErrNotFound
	}
	return n, nil
}

func (m *memoryNotes) AuthorOf(ctx context.Context, id int) (string, error) {
	m.authorLookups++
	if m.err != nil {
		return "", m.err
	}
	n, err := m.Get(ctx, id)
	return n.AuthorID, err
}

func (m *memoryNotes) Create(_ context.Context, n types.Note) (types.Note, error) {
	n.ID = len(m.notes) + 1
	m.notes[n.ID] = n
	return n, nil
}

func (m *memoryNotes) Update(_ context.Context, n types.Note) (types.Note, error) {
	old, ok := m.notes[n.ID]
	if !ok {
		return types.Note{}, store.ErrNotFound
	}
	n.AuthorID = old.AuthorID
	m.notes[n.ID] = n
	return n, nil
}

func (m *memoryNotes) Delete(_ context.Context, id int) error {
	if _, ok := m.notes[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

type memoryContacts struct {
	messages map[int]types.ContactMessage
}

func (m *memoryContacts) Create(_ context.Context, msg types.ContactMessage) (types.ContactMessage, error) {
	msg.ID = len(m.messages) + 1
	msg.CreatedAt = time.Now()
	m.messages[msg.ID] = msg
	return msg, nil
}

func (m *memoryContacts) List(_ context.Context, status types.ContactStatus, _, _ int) ([]types.ContactMessage, int, error) {
	var out []types.ContactMessage
	for _, msg := range m.messages {
		if status == "" || msg.Status == status {
			out = append(out, msg)
		}
	}
	return out, len(out), nil
}

func (m *memoryContacts) Get(_ context.Context, id int) (types.ContactMessage, error) {
	msg, ok := m.messages[id]
	if !ok {
		return types.ContactMessage{}, store.ErrNotFound
	}
	return msg, nil
}

func (m *memoryContacts) SetStatus(_ context.Context, id int, status types.ContactStatus) (types.ContactMessage, error) {
	msg, ok := m.messages[id]
	if !ok {
		return types.ContactMessage{}, store.ErrNotFound
	}
	msg.Status = status
	m.messages[id] = msg
	return msg, nil
}

func (m *memoryContacts) Delete(_ context.Context, id int) error {
	delete(m.messages, id)
	return nil
}

type memoryQuotes struct {
	quotes map[int]types.Quote
}

func (m *memoryQuotes) List(context.Context, int, int) ([]types.Quote, int, error) {
	return nil, 0, nil
}

func (m *memoryQuotes) Get(_ context.Context, id int) (types.Quote, error) {
	q, ok := m.quotes[id]
	if !ok {
		return types.Quote{}, store.ErrNotFound
	}
	return q, nil
}

func (m *memoryQuotes) Create(_ context.Context, q types.Quote) (types.Quote, error) {
	q.ID = len(m.quotes) + 1
	m.quotes[q.ID] = q
	return q, nil
}

func (m *memoryQuotes) Update(_ context.Context, q types.Quote) (types.Quote, error) {
	if _, ok := m.quotes[q.ID]; !ok {
		return types.Quote{}, store.ErrNotFound
	}
	m.quotes[q.ID] = q
	return q, nil
}

func (m *memoryQuotes) Delete(_ context.Context, id int) error {
	delete(m.quotes, id)
	return nil
}

type memoryBlobs struct {
	objects map[string]int64
}

func (m *memoryBlobs) Enabled() bool { return true }

func (m *memoryBlobs) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", err
	}
	url := "https://cdn.example.com/" + key
	m.objects[url] = n
	return url, nil
}

func (m *memoryBlobs) DeleteURL(_ context.Context, url string) error {
	delete(m.objects, url)
	return nil
}

type stubLimiter struct {
	allow   bool
	clients []string
}

func (s *stubLimiter) Allow(_ context.Context, client string) bool {
	s.clients = append(s.clients, client)
	return s.allow
}

func (s *stubLimiter) Window() time.Duration { return time.Hour }

// testEnv is a router wired with the real authorization chain over
// in-memory collaborators.
type testEnv struct {
	router   *chi.Mux
	profiles *memoryProfiles
	notes    *memoryNotes
	contacts *memoryContacts
	quotes   *memoryQuotes
	blobs    *memoryBlobs
	limiter  *stubLimiter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		profiles: &memoryProfiles{profiles: map[string]types.Profile{
			"admin-1": {ID: "admin-1", Role: types.RoleAdmin},
			"super-1": {ID: "super-1", Role: types.RoleSuperAdmin},
		}},
		notes:    &memoryNotes{notes: map[int]types.Note{}},
		contacts: &memoryContacts{messages: map[int]types.ContactMessage{}},
		quotes:   &memoryQuotes{quotes: map[int]types.Quote{}},
		blobs:    &memoryBlobs{objects: map[string]int64{}},
		limiter:  &stubLimiter{allow: true},
	}

	provider := tokenProvider{
		ownerToken:      {ID: "owner-1", Email: "owner@example.com"},
		otherToken:      {ID: "other-1"},
		adminToken:      {ID: "admin-1"},
		superAdminToken: {ID: "super-1"},
	}
	authenticator := auth.NewAuthenticator([]string{"sb-*-auth-token"}, provider, env.profiles, nil)
	guard := NewGuard(authenticator)

	profileService := services.NewProfileService(env.profiles, env.blobs, nil)
	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.With(guard.Require(auth.Authenticated, nil)).Get("/me", MeHandler(profileService))
	router.Route("/profiles", func(r chi.Router) {
		ProfileRouter(r, profileService, guard)
	})
	router.Route("/notes", func(r chi.Router) {
		NoteRouter(r, services.NewNoteService(env.notes), guard)
	})
	router.Route("/quotes", func(r chi.Router) {
		QuoteRouter(r, services.NewQuoteService(env.quotes), guard)
	})
	router.Route("/contact", func(r chi.Router) {
		ContactRouter(r, services.NewContactService(env.contacts, nil, "contact-submitted", nil), env.limiter, guard)
	})
	env.router = router
	return env
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}
