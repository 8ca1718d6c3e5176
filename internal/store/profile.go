package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/portfolio-web/apiserver/types"
)

// ProfileRepository handles persistence for profiles.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, name, avatar_url, role, cv_url, created_at, updated_at`

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (types.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return types.Profile{}, translate(err)
	}
	return profile, nil
}

// RoleByID returns only the role column of a profile.
func (r *ProfileRepository) RoleByID(ctx context.Context, id string) (types.Role, error) {
	const query = `SELECT role FROM profiles WHERE id = $1`
	var raw string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&raw); err != nil {
		return types.RoleUser, translate(err)
	}
	role, _ := types.ParseRole(raw)
	return role, nil
}

func (r *ProfileRepository) List(ctx context.Context, offset, limit int) ([]types.Profile, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM profiles`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at, id OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	profiles := make([]types.Profile, 0, limit)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// Upsert inserts the profile or updates the name and avatar of an existing
// one. The role of an existing profile is left untouched.
func (r *ProfileRepository) Upsert(ctx context.Context, profile types.Profile) (types.Profile, error) {
	return r.upsert(ctx, profile, false)
}

// UpsertWithRole is Upsert that also writes the role, in the same statement.
func (r *ProfileRepository) UpsertWithRole(ctx context.Context, profile types.Profile) (types.Profile, error) {
	return r.upsert(ctx, profile, true)
}

func (r *ProfileRepository) upsert(ctx context.Context, profile types.Profile, withRole bool) (types.Profile, error) {
	set := `name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,`
	if withRole {
		set += `
			role = EXCLUDED.role,`
	}
	query := `
		INSERT INTO profiles (id, name, avatar_url, role, cv_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (id) DO UPDATE
		SET ` + set + `
			updated_at = EXCLUDED.updated_at
		RETURNING ` + profileColumns
	saved, err := scanProfile(r.db.QueryRowContext(
		ctx,
		query,
		profile.ID,
		profile.Name,
		profile.AvatarURL,
		profile.Role.String(),
		profile.CVURL,
		time.Now(),
	))
	if err != nil {
		return types.Profile{}, translate(err)
	}
	return saved, nil
}

// UpdateRole assigns a role, provisioning the profile when it does not exist.
func (r *ProfileRepository) UpdateRole(ctx context.Context, id string, role types.Role) (types.Profile, error) {
	query := `
		INSERT INTO profiles (id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO UPDATE
		SET role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + profileColumns
	saved, err := scanProfile(r.db.QueryRowContext(ctx, query, id, role.String(), time.Now()))
	if err != nil {
		return types.Profile{}, translate(err)
	}
	return saved, nil
}

func (r *ProfileRepository) SetAvatarURL(ctx context.Context, id string, avatarURL *string) (types.Profile, error) {
	return r.setURLColumn(ctx, id, "avatar_url", avatarURL)
}

func (r *ProfileRepository) SetCVURL(ctx context.Context, id string, cvURL *string) (types.Profile, error) {
	return r.setURLColumn(ctx, id, "cv_url", cvURL)
}

// setURLColumn sets avatar_url or cv_url, provisioning a default profile
// first when none exists. column is never user input.
func (r *ProfileRepository) setURLColumn(ctx context.Context, id, column string, value *string) (types.Profile, error) {
	query := `
		INSERT INTO profiles (id, role, ` + column + `, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE
		SET ` + column + ` = EXCLUDED.` + column + `,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + profileColumns
	saved, err := scanProfile(r.db.QueryRowContext(ctx, query, id, types.RoleUser.String(), value, time.Now()))
	if err != nil {
		return types.Profile{}, translate(err)
	}
	return saved, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (types.Profile, error) {
	var profile types.Profile
	var name, avatarURL, cvURL sql.NullString
	var role string
	if err := row.Scan(
		&profile.ID,
		&name,
		&avatarURL,
		&role,
		&cvURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return types.Profile{}, err
	}
	profile.Name = nullStringPtr(name)
	profile.AvatarURL = nullStringPtr(avatarURL)
	profile.CVURL = nullStringPtr(cvURL)
	profile.Role, _ = types.ParseRole(role)
	return profile, nil
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}
