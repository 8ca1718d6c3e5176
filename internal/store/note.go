package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/portfolio-web/apiserver/types"
)

// NoteRepository handles persistence for learning notes.
type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// NoteFilter narrows a note listing.
type NoteFilter struct {
	// AuthorID limits the listing to one author when set.
	AuthorID string
	// IncludeDrafts returns unpublished notes as well. Only meaningful
	// together with AuthorID.
	IncludeDrafts bool
	// Tag limits the listing to notes carrying the tag.
	Tag string
}

func (r *NoteRepository) List(ctx context.Context, filter NoteFilter, offset, limit int) ([]types.Note, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	// $1 author ('' = any), $2 include drafts, $3 tag ('' = any)
	const where = `
		WHERE ($1 = '' OR author_id = $1)
		  AND (published OR ($2 AND author_id = $1))
		  AND ($3 = '' OR tags ? $3)`
	includeDrafts := filter.IncludeDrafts && filter.AuthorID != ""

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM notes`+where,
		filter.AuthorID, includeDrafts, filter.Tag,
	).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	listQuery := `
		SELECT id, author_id, title, body, tags, published, created_at, updated_at
		FROM notes` + where + `
		ORDER BY created_at DESC, id DESC
		OFFSET $4 LIMIT $5`
	rows, err := r.db.QueryContext(ctx, listQuery, filter.AuthorID, includeDrafts, filter.Tag, offset, limit)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	notes := make([]types.Note, 0, limit)
	for rows.Next() {
		var note types.Note
		var tagsJSON []byte
		if err := rows.Scan(
			&note.ID,
			&note.AuthorID,
			&note.Title,
			&note.Body,
			&tagsJSON,
			&note.Published,
			&note.CreatedAt,
			&note.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		if note.Tags, err = decodeTags(tagsJSON); err != nil {
			return nil, 0, fmt.Errorf("note %d: %w", note.ID, err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

func (r *NoteRepository) Get(ctx context.Context, id int) (types.Note, error) {
	const query = `
		SELECT id, author_id, title, body, tags, published, created_at, updated_at
		FROM notes
		WHERE id = $1`
	var note types.Note
	var tagsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID,
		&note.AuthorID,
		&note.Title,
		&note.Body,
		&tagsJSON,
		&note.Published,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return types.Note{}, translate(err)
	}
	if note.Tags, err = decodeTags(tagsJSON); err != nil {
		return types.Note{}, fmt.Errorf("note %d: %w", note.ID, err)
	}
	return note, nil
}

// decodeTags reads the jsonb tags column. NULL yields no tags.
func decodeTags(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

// AuthorOf returns the owner of a note.
func (r *NoteRepository) AuthorOf(ctx context.Context, id int) (string, error) {
	const query = `SELECT author_id FROM notes WHERE id = $1`
	var authorID string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&authorID); err != nil {
		return "", translate(err)
	}
	return authorID, nil
}

func (r *NoteRepository) Create(ctx context.Context, note types.Note) (types.Note, error) {
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	tagsJSON, err := json.Marshal(nonNilTags(note.Tags))
	if err != nil {
		return types.Note{}, err
	}

	const query = `
		INSERT INTO notes (author_id, title, body, tags, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		note.AuthorID,
		note.Title,
		note.Body,
		string(tagsJSON),
		note.Published,
		note.CreatedAt,
		note.UpdatedAt,
	).Scan(&note.ID); err != nil {
		return types.Note{}, translate(err)
	}
	return note, nil
}

// Update rewrites the content of a note. The author never changes.
func (r *NoteRepository) Update(ctx context.Context, note types.Note) (types.Note, error) {
	note.UpdatedAt = time.Now()

	tagsJSON, err := json.Marshal(nonNilTags(note.Tags))
	if err != nil {
		return types.Note{}, err
	}

	const query = `
		UPDATE notes
		SET title = $1,
			body = $2,
			tags = $3,
			published = $4,
			updated_at = $5
		WHERE id = $6
		RETURNING author_id, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		note.Title,
		note.Body,
		string(tagsJSON),
		note.Published,
		note.UpdatedAt,
		note.ID,
	).Scan(&note.AuthorID, &note.CreatedAt); err != nil {
		return types.Note{}, translate(err)
	}
	return note, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM notes WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(result)
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
