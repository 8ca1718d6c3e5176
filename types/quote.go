package types

import "time"

// Quote is a passage from a book shown on the quotes page.
type Quote struct {
	// ID is the unique identifier of the quote.
	ID int `json:"id" db:"id"`

	// Text is the quoted passage.
	Text string `json:"text" db:"text"`

	// Author is the author of the book.
	Author string `json:"author" db:"author"`

	// Book is the title of the book the passage comes from.
	Book string `json:"book" db:"book"`

	// CreatedBy is the id of the identity that added the quote.
	CreatedBy string `json:"created_by" db:"created_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
