package types

import "time"

// Note is a learning note written by an authenticated identity.
type Note struct {
	// ID is the unique identifier of the note.
	ID int `json:"id" db:"id"`

	// AuthorID is the id of the identity that owns the note. Only the author
	// or a super admin may change it.
	AuthorID string `json:"author_id" db:"author_id"`

	// Title is the headline of the note.
	Title string `json:"title" db:"title"`

	// Body is the markdown content of the note.
	Body string `json:"body" db:"body"`

	// Tags are free-form labels used for filtering.
	Tags []string `json:"tags" db:"tags"`

	// Published marks the note visible to everyone. Drafts are only
	// returned to their author.
	Published bool `json:"published" db:"published"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
