package types

import (
	"encoding/json"
	"strings"
	"time"
)

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	// ID is the unique identifier of the message.
	ID int `json:"id" db:"id"`

	// Name is the sender's name as typed into the form.
	Name string `json:"name" db:"name"`

	// Email is the sender's reply address.
	Email string `json:"email" db:"email"`

	// Subject is the optional subject line.
	Subject string `json:"subject" db:"subject"`

	// Body is the message text.
	Body string `json:"body" db:"body"`

	// Status tracks moderation of the message.
	Status ContactStatus `json:"status" db:"status"`

	// UserID is set when the sender was signed in.
	UserID *string `json:"user_id,omitempty" db:"user_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ContactStatus is the moderation state of a contact message.
type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusRead     ContactStatus = "read"
	ContactStatusArchived ContactStatus = "archived"
)

// ParseContactStatus validates a moderation state.
func ParseContactStatus(value string) (ContactStatus, bool) {
	switch status := ContactStatus(strings.ToLower(strings.TrimSpace(value))); status {
	case ContactStatusNew, ContactStatusRead, ContactStatusArchived:
		return status, true
	default:
		return "", false
	}
}

// ContactSubmittedEvent is published on the message queue after a contact
// message has been stored.
type ContactSubmittedEvent struct {
	MessageID int       `json:"message_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"created_at"`
}

// Encode serializes the event for the message queue.
func (e ContactSubmittedEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}
