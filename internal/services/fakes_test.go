package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/portfolio-web/apiserver/internal/store"
	"github.com/portfolio-web/apiserver/types"
)

type memoryProfiles struct {
	profiles map[string]types.Profile
	err      error
	setErr   error
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{profiles: map[string]types.Profile{}}
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
	if m.setErr != nil {
		return types.Profile{}, m.setErr
	}
	if existing, ok := m.profiles[p.ID]; ok {
		existing.Name, existing.AvatarURL, existing.Role = p.Name, p.AvatarURL, p.Role
		p = existing
	}
	m.profiles[p.ID] = p
	return p, nil
}

func (m *memoryProfiles) UpdateRole(_ context.Context, id string, role types.Role) (types.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		p = types.DefaultProfile(id)
	}
	p.Role = role
	m.profiles[id] = p
	return p, nil
}

func (m *memoryProfiles) SetAvatarURL(_ context.Context, id string, url *string) (types.Profile, error) {
	if m.setErr != nil {
		return types.Profile{}, m.setErr
	}
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

type memoryBlobs struct {
	enabled bool
	objects map[string]string
	deleted []string
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{enabled: true, objects: map[string]string{}}
}

func (m *memoryBlobs) Enabled() bool { return m.enabled }

func (m *memoryBlobs) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "https://cdn.example.com/" + key
	m.objects[url] = string(data)
	return url, nil
}

func (m *memoryBlobs) DeleteURL(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	delete(m.objects, url)
	return nil
}

type memoryContacts struct {
	messages map[int]types.ContactMessage
	nextID   int
	err      error
}

func newMemoryContacts() *memoryContacts {
	return &memoryContacts{messages: map[int]types.ContactMessage{}}
}

func (m *memoryContacts) Create(_ context.Context, msg types.ContactMessage) (types.ContactMessage, error) {
	if m.err != nil {
		return types.ContactMessage{}, m.err
	}
	m.nextID++
	msg.ID = m.nextID
	msg.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
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
	if _, ok := m.messages[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.messages, id)
	return nil
}

type recordingPublisher struct {
	enabled bool
	err     error
	events  []any
	types   []string
}

func (p *recordingPublisher) Enabled() bool { return p.enabled }

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, eventType string, event any) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.types = append(p.types, eventType)
	p.events = append(p.events, event)
	return "evt-1", nil
}

var errUpstream = errors.New("upstream unavailable")

func pngUpload(name string) Upload {
	return Upload{Filename: name, ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
}
