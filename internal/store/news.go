package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/portfolio-web/apiserver/types"
)

// NewsRepository handles persistence for news items.
type NewsRepository struct {
	db *sql.DB
}

func NewNewsRepository(db *sql.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

func (r *NewsRepository) List(ctx context.Context, offset, limit int) ([]types.NewsItem, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM news`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	const listQuery = `
		SELECT id, title, body, published_at, created_by, created_at, updated_at
		FROM news
		ORDER BY published_at DESC, id DESC
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	items := make([]types.NewsItem, 0, limit)
	for rows.Next() {
		var item types.NewsItem
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Body,
			&item.PublishedAt,
			&item.CreatedBy,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *NewsRepository) Get(ctx context.Context, id int) (types.NewsItem, error) {
	const query = `
		SELECT id, title, body, published_at, created_by, created_at, updated_at
		FROM news
		WHERE id = $1`
	var item types.NewsItem
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.Title,
		&item.Body,
		&item.PublishedAt,
		&item.CreatedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return types.NewsItem{}, translate(err)
	}
	return item, nil
}

func (r *NewsRepository) Create(ctx context.Context, item types.NewsItem) (types.NewsItem, error) {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.PublishedAt.IsZero() {
		item.PublishedAt = now
	}

	const query = `
		INSERT INTO news (title, body, published_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		item.Title,
		item.Body,
		item.PublishedAt,
		item.CreatedBy,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID); err != nil {
		return types.NewsItem{}, translate(err)
	}
	return item, nil
}

func (r *NewsRepository) Update(ctx context.Context, item types.NewsItem) (types.NewsItem, error) {
	item.UpdatedAt = time.Now()

	const query = `
		UPDATE news
		SET title = $1,
			body = $2,
			published_at = COALESCE($3::timestamptz, published_at),
			updated_at = $4
		WHERE id = $5
		RETURNING published_at, created_by, created_at`
	var publishedAt *time.Time
	if !item.PublishedAt.IsZero() {
		publishedAt = &item.PublishedAt
	}
	if err := r.db.QueryRowContext(
		ctx,
		query,
		item.Title,
		item.Body,
		publishedAt,
		item.UpdatedAt,
		item.ID,
	).Scan(&item.PublishedAt, &item.CreatedBy, &item.CreatedAt); err != nil {
		return types.NewsItem{}, translate(err)
	}
	return item, nil
}

func (r *NewsRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM news WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(result)
}
