package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/portfolio-web/apiserver/types"
)

// ContactRepository handles persistence for contact form messages.
type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = `id, name, email, subject, body, status, user_id, created_at, updated_at`

func (r *ContactRepository) Create(ctx context.Context, msg types.ContactMessage) (types.ContactMessage, error) {
	now := time.Now()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	if msg.Status == "" {
		msg.Status = types.ContactStatusNew
	}

	const query = `
		INSERT INTO contact_messages (name, email, subject, body, status, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		msg.Name,
		msg.Email,
		msg.Subject,
		msg.Body,
		string(msg.Status),
		msg.UserID,
		msg.CreatedAt,
		msg.UpdatedAt,
	).Scan(&msg.ID); err != nil {
		return types.ContactMessage{}, translate(err)
	}
	return msg, nil
}

// List returns messages newest first. An empty status returns every message.
func (r *ContactRepository) List(ctx context.Context, status types.ContactStatus, offset, limit int) ([]types.ContactMessage, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM contact_messages WHERE ($1 = '' OR status = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, string(status)).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	listQuery := `SELECT ` + contactColumns + `
		FROM contact_messages
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, string(status), offset, limit)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	messages := make([]types.ContactMessage, 0, limit)
	for rows.Next() {
		msg, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *ContactRepository) Get(ctx context.Context, id int) (types.ContactMessage, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_messages WHERE id = $1`
	msg, err := scanContact(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return types.ContactMessage{}, translate(err)
	}
	return msg, nil
}

func (r *ContactRepository) SetStatus(ctx context.Context, id int, status types.ContactStatus) (types.ContactMessage, error) {
	query := `
		UPDATE contact_messages
		SET status = $1,
			updated_at = $2
		WHERE id = $3
		RETURNING ` + contactColumns
	msg, err := scanContact(r.db.QueryRowContext(ctx, query, string(status), time.Now(), id))
	if err != nil {
		return types.ContactMessage{}, translate(err)
	}
	return msg, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM contact_messages WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(result)
}

func scanContact(row rowScanner) (types.ContactMessage, error) {
	var msg types.ContactMessage
	var status string
	var userID sql.NullString
	if err := row.Scan(
		&msg.ID,
		&msg.Name,
		&msg.Email,
		&msg.Subject,
		&msg.Body,
		&status,
		&userID,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	); err != nil {
		return types.ContactMessage{}, err
	}
	msg.Status = types.ContactStatus(status)
	msg.UserID = nullStringPtr(userID)
	return msg, nil
}
