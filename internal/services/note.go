package services

import (
	"context"
	"strings"

	"github.com/portfolio-web/apiserver/internal/store"
	"github.com/portfolio-web/apiserver/types"
)

const maxNoteTags = 20

// NoteRepository defines persistence operations for learning notes.
type NoteRepository interface {
	List(ctx context.Context, filter store.NoteFilter, offset, limit int) ([]types.Note, int, error)
	Get(ctx context.Context, id int) (types.Note, error)
	AuthorOf(ctx context.Context, id int) (string, error)
	Create(ctx context.Context, note types.Note) (types.Note, error)
	Update(ctx context.Context, note types.Note) (types.Note, error)
	Delete(ctx context.Context, id int) error
}

// NoteService encapsulates learning note use-cases.
type NoteService struct {
	repo NoteRepository
}

func NewNoteService(repo NoteRepository) *NoteService {
	return &NoteService{repo: repo}
}

func (s *NoteService) List(ctx context.Context, filter store.NoteFilter, offset, limit int) ([]types.Note, int, error) {
	filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))
	return s.repo.List(ctx, filter, offset, clampLimit(limit))
}

func (s *NoteService) Get(ctx context.Context, id int) (types.Note, error) {
	return s.repo.Get(ctx, id)
}

// AuthorOf returns the id of the note's owner.
func (s *NoteService) AuthorOf(ctx context.Context, id int) (string, error) {
	return s.repo.AuthorOf(ctx, id)
}

func (s *NoteService) Create(ctx context.Context, note types.Note) (types.Note, error) {
	note, err := normalizeNote(note)
	if err != nil {
		return types.Note{}, err
	}
	if note.AuthorID == "" {
		return types.Note{}, invalidf("author is required")
	}
	return s.repo.Create(ctx, note)
}

func (s *NoteService) Update(ctx context.Context, note types.Note) (types.Note, error) {
	note, err := normalizeNote(note)
	if err != nil {
		return types.Note{}, err
	}
	return s.repo.Update(ctx, note)
}

func (s *NoteService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func normalizeNote(note types.Note) (types.Note, error) {
	note.Title = strings.TrimSpace(note.Title)
	if note.Title == "" {
		return types.Note{}, invalidf("title is required")
	}

	seen := make(map[string]struct{}, len(note.Tags))
	tags := make([]string, 0, len(note.Tags))
	for _, tag := range note.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	if len(tags) > maxNoteTags {
		return types.Note{}, invalidf("at most %d tags are allowed", maxNoteTags)
	}
	note.Tags = tags
	return note, nil
}
