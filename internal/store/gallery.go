package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/portfolio-web/apiserver/types"
)

// GalleryRepository handles persistence for gallery items.
type GalleryRepository struct {
	db *sql.DB
}

func NewGalleryRepository(db *sql.DB) *GalleryRepository {
	return &GalleryRepository{db: db}
}

func (r *GalleryRepository) List(ctx context.Context, offset, limit int) ([]types.GalleryItem, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM gallery_items`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	const listQuery = `
		SELECT id, title, description, image_url, created_by, created_at, updated_at
		FROM gallery_items
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	items := make([]types.GalleryItem, 0, limit)
	for rows.Next() {
		var item types.GalleryItem
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.ImageURL,
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

func (r *GalleryRepository) Get(ctx context.Context, id int) (types.GalleryItem, error) {
	const query = `
		SELECT id, title, description, image_url, created_by, created_at, updated_at
		FROM gallery_items
		WHERE id = $1`
	var item types.GalleryItem
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.ImageURL,
		&item.CreatedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return types.GalleryItem{}, translate(err)
	}
	return item, nil
}

func (r *GalleryRepository) Create(ctx context.Context, item types.GalleryItem) (types.GalleryItem, error) {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	const query = `
		INSERT INTO gallery_items (title, description, image_url, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		item.Title,
		item.Description,
		item.ImageURL,
		item.CreatedBy,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID); err != nil {
		return types.GalleryItem{}, translate(err)
	}
	return item, nil
}

// Update changes the caption fields; the image itself is immutable.
func (r *GalleryRepository) Update(ctx context.Context, item types.GalleryItem) (types.GalleryItem, error) {
	item.UpdatedAt = time.Now()

	const query = `
		UPDATE gallery_items
		SET title = $1,
			description = $2,
			updated_at = $3
		WHERE id = $4
		RETURNING image_url, created_by, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		item.Title,
		item.Description,
		item.UpdatedAt,
		item.ID,
	).Scan(&item.ImageURL, &item.CreatedBy, &item.CreatedAt); err != nil {
		return types.GalleryItem{}, translate(err)
	}
	return item, nil
}

func (r *GalleryRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM gallery_items WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return translate(err)
	}
	return requireAffected(result)
}
