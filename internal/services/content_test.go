package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-web/apiserver/internal/store"
	"github.com/portfolio-web/apiserver/types"
)

type memoryNotes struct {
	notes  map[int]types.Note
	nextID int
}

func (m *memoryNotes) List(context.Context, store.NoteFilter, int, int) ([]types.Note, int, error) {
	return nil, 0, nil
}

func (m *memoryNotes) Get(_ context.Context, id int) (types.Note, error) {
	n, ok := m.notes[id]
	if !ok {
		return types.Note{}, store.ErrNotFound
	}
	return n, nil
}

func (m *memoryNotes) AuthorOf(ctx context.Context, id int) (string, error) {
	n, err := m.Get(ctx, id)
	return n.AuthorID, err
}

func (m *memoryNotes) Create(_ context.Context, n types.Note) (types.Note, error) {
	m.nextID++
	n.ID = m.nextID
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
	delete(m.notes, id)
	return nil
}

func TestNoteCreateNormalizesTags(t *testing.T) {
	svc := NewNoteService(&memoryNotes{notes: map[int]types.Note{}})

	note, err := svc.Create(context.Background(), types.Note{
		AuthorID: "u1",
		Title:    " Go generics ",
		Tags:     []string{"Go", "go", " ", "Types"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Go generics", note.Title)
	assert.Equal(t, []string{"go", "types"}, note.Tags)

	author, err := svc.AuthorOf(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", author)
}

func TestNoteCreateValidation(t *testing.T) {
	svc := NewNoteService(&memoryNotes{notes: map[int]types.Note{}})

	_, err := svc.Create(context.Background(), types.Note{AuthorID: "u1"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), types.Note{Title: "t"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

type memoryNews struct {
	created types.NewsItem
}

func (m *memoryNews) List(context.Context, int, int) ([]types.NewsItem, int, error) { return nil, 0, nil }
func (m *memoryNews) Get(context.Context, int) (types.NewsItem, error) { return m.created, nil }
func (m *memoryNews) Create(_ context.Context, item types.NewsItem) (types.NewsItem, error) {
	m.created = item
	return item, nil
}
func (m *memoryNews) Update(_ context.Context, item types.NewsItem) (types.NewsItem, error) {
	return item, nil
}
func (m *memoryNews) Delete(context.Context, int) error { return nil }

func TestNewsCreateDefaultsPublishedAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &memoryNews{}
	svc := NewNewsService(repo)
	svc.now = func() time.Time { return now }

	item, err := svc.Create(context.Background(), types.NewsItem{Title: "Launch"})
	require.NoError(t, err)
	assert.Equal(t, now, item.PublishedAt)

	_, err = svc.Create(context.Background(), types.NewsItem{Title: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

type memoryGallery struct {
	items  map[int]types.GalleryItem
	nextID int
	err    error
}

func (m *memoryGallery) List(context.Context, int, int) ([]types.GalleryItem, int, error) {
	return nil, 0, nil
}

func (m *memoryGallery) Get(_ context.Context, id int) (types.GalleryItem, error) {
	item, ok := m.items[id]
	if !ok {
		return types.GalleryItem{}, store.ErrNotFound
	}
	return item, nil
}

func (m *memoryGallery) Create(_ context.Context, item types.GalleryItem) (types.GalleryItem, error) {
	if m.err != nil {
		return types.GalleryItem{}, m.err
	}
	m.nextID++
	item.ID = m.nextID
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryGallery) Update(_ context.Context, item types.GalleryItem) (types.GalleryItem, error) {
	return item, nil
}

func (m *memoryGallery) Delete(_ context.Context, id int) error {
	delete(m.items, id)
	return nil
}

func TestGalleryCreateAndDelete(t *testing.T) {
	repo := &memoryGallery{items: map[int]types.GalleryItem{}}
	blobs := newMemoryBlobs()
	svc := NewGalleryService(repo, blobs, nil)
	ctx := context.Background()

	item, err := svc.Create(ctx, types.GalleryItem{Title: "Sunset", CreatedBy: "admin-1"}, pngUpload("sunset.png"))
	require.NoError(t, err)
	assert.Contains(t, item.ImageURL, "/gallery/admin-1/")
	assert.Contains(t, blobs.objects, item.ImageURL)

	require.NoError(t, svc.Delete(ctx, item.ID))
	assert.Equal(t, []string{item.ImageURL}, blobs.deleted)
	assert.Empty(t, repo.items)
}

func TestGalleryCreateRemovesBlobOnInsertFailure(t *testing.T) {
	repo := &memoryGallery{items: map[int]types.GalleryItem{}, err: errUpstream}
	blobs := newMemoryBlobs()
	svc := NewGalleryService(repo, blobs, nil)

	_, err := svc.Create(context.Background(), types.GalleryItem{Title: "Sunset"}, pngUpload("sunset.png"))
	assert.ErrorIs(t, err, errUpstream)
	assert.Empty(t, blobs.objects)
}

func TestQuoteValidation(t *testing.T) {
	svc := NewQuoteService(nil)
	_, err := svc.Create(context.Background(), types.Quote{Author: "Someone"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
