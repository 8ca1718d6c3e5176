package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/portfolio-web/apiserver/types"
)

// QuoteRepository handles persistence for book quotes.
type QuoteRepository struct {
	db *sql.DB
}

func NewQuoteRepository(db *sql.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) List(ctx context.Context, offset, limit int) ([]types.Quote, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM quotes`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	const listQuery = `
		SELECT id, text, author, book, created_by, created_at, updated_at
		FROM quotes
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	quotes := make([]types.Quote, 0, limit)
	for rows.Next() {
		var quote types.Quote
		if err := rows.Scan(
			&quote.ID,
			&quote.Text,
			&quote.Author,
			&quote.Book,
			&quote.CreatedBy,
			&quote.CreatedAt,
			&quote.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		quotes = append(quotes, quote)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

func (r *QuoteRepository) Get(ctx context.Context, id int) (types.Quote, error) {
	const query = `
		SELECT id, text, author, book, created_by, created_at, updated_at
		FROM quotes
		WHERE id = $1`
	var quote types.Quote
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&quote.ID,
		&quote.Text,
		&quote.Author,
		&quote.Book,
		&quote.CreatedBy,
		&quote.CreatedAt,
		&quote.UpdatedAt,
	)
	if err != nil {
		return types.Quote{}, translate(err)
	}
	return quote, nil
}

func (r *QuoteRepository) Create(ctx context.Context, quote types.Quote) (types.Quote, error) {
	now := time.Now()
	quote.CreatedAt = now
	quote.UpdatedAt = now

	const query = `
		INSERT INTO quotes (text, author, book, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		quote.Text,
		quote.Author,
		quote.Book,
		quote.CreatedBy,
		quote.CreatedAt,
		quote.UpdatedAt,
	).Scan(&quote.ID); err != nil {
		return types.Quote{}, translate(err)
	}
	return quote, nil
}

func (r *QuoteRepository) Update(ctx context.Context, quote types.Quote) (types.Quote, error) {
	quote.UpdatedAt = time.Now()

	const query = `
		UPDATE quotes
		SET text = $1,
			author = $2,
			book = $3,
			updated_at = $4
		WHERE id = $5
		RETURNING created_by, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		quote.Text,
		quote.Author,
		quote.Book,
		quote.UpdatedAt,
		quote.ID,
	).Scan(&quote.CreatedBy, &quote.CreatedAt); err != nil {
		return types.Quote{}, translate(err)
	}
	return quote, nil
}

func (r *QuoteRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM quotes WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(result)
}
