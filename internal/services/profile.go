package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/portfolio-web/apiserver/internal/storage"
	"github.com/portfolio-web/apiserver/internal/store"
	"github.com/portfolio-web/apiserver/types"
)

const maxProfileNameLength = 120

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (types.Profile, error)
	List(ctx context.Context, offset, limit int) ([]types.Profile, int, error)
	Upsert(ctx context.Context, profile types.Profile) (types.Profile, error)
	UpsertWithRole(ctx context.Context, profile types.Profile) (types.Profile, error)
	UpdateRole(ctx context.Context, id string, role types.Role) (types.Profile, error)
	SetAvatarURL(ctx context.Context, id string, avatarURL *string) (types.Profile, error)
	SetCVURL(ctx context.Context, id string, cvURL *string) (types.Profile, error)
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// unchanged; an empty string clears the field. Role must only be set for
// super admin callers.
type ProfileUpdate struct {
	Name      *string
	AvatarURL *string
	Role      *types.Role
}

// ProfileService encapsulates profile use-cases.
type ProfileService struct {
	repo   ProfileRepository
	blobs  BlobStore
	logger *slog.Logger
}

func NewProfileService(repo ProfileRepository, blobs BlobStore, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{repo: repo, blobs: blobs, logger: logger}
}

// Get returns the stored profile, or the default profile when the identity
// has not been provisioned yet.
func (s *ProfileService) Get(ctx context.Context, id string) (types.Profile, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.DefaultProfile(id), nil
		}
		return types.Profile{}, err
	}
	return profile, nil
}

func (s *ProfileService) List(ctx context.Context, offset, limit int) ([]types.Profile, int, error) {
	return s.repo.List(ctx, offset, clampLimit(limit))
}

// Update changes the name, avatar URL and optionally the role in a single
// write, provisioning the profile if needed.
func (s *ProfileService) Update(ctx context.Context, id string, update ProfileUpdate) (types.Profile, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return types.Profile{}, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if len(name) > maxProfileNameLength {
			return types.Profile{}, invalidf("name must be at most %d characters", maxProfileNameLength)
		}
		current.Name = optionalString(name)
	}
	if update.AvatarURL != nil {
		current.AvatarURL = optionalString(strings.TrimSpace(*update.AvatarURL))
	}
	if update.Role != nil {
		current.Role = *update.Role
		return s.repo.UpsertWithRole(ctx, current)
	}
	return s.repo.Upsert(ctx, current)
}

// SetRole assigns a role. Callers must have checked the caller may do so.
func (s *ProfileService) SetRole(ctx context.Context, id string, role types.Role) (types.Profile, error) {
	return s.repo.UpdateRole(ctx, id, role)
}

// UploadAvatar stores an image and points the profile at it. The previous
// avatar blob is removed afterwards.
func (s *ProfileService) UploadAvatar(ctx context.Context, id string, upload Upload) (types.Profile, error) {
	if err := requireContentType(upload, isImage); err != nil {
		return types.Profile{}, err
	}
	return s.replaceBlob(ctx, id, "avatars", upload,
		func(p types.Profile) *string { return p.AvatarURL },
		s.repo.SetAvatarURL,
	)
}

// UploadCV stores a PDF document and points the profile at it.
func (s *ProfileService) UploadCV(ctx context.Context, id string, upload Upload) (types.Profile, error) {
	if err := requireContentType(upload, isPDF); err != nil {
		return types.Profile{}, err
	}
	return s.replaceBlob(ctx, id, "cv", upload,
		func(p types.Profile) *string { return p.CVURL },
		s.repo.SetCVURL,
	)
}

// DeleteCV clears the CV URL and removes the stored document.
func (s *ProfileService) DeleteCV(ctx context.Context, id string) (types.Profile, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return types.Profile{}, err
	}
	if current.CVURL == nil {
		return current, nil
	}

	saved, err := s.repo.SetCVURL(ctx, id, nil)
	if err != nil {
		return types.Profile{}, err
	}
	s.deleteBlob(ctx, *current.CVURL)
	return saved, nil
}

func (s *ProfileService) replaceBlob(
	ctx context.Context,
	id, kind string,
	upload Upload,
	currentURL func(types.Profile) *string,
	setURL func(ctx context.Context, id string, url *string) (types.Profile, error),
) (types.Profile, error) {
	if s.blobs == nil || !s.blobs.Enabled() {
		return types.Profile{}, storage.ErrDisabled
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return types.Profile{}, err
	}

	key := storage.ObjectKey(kind, id, upload.Filename)
	url, err := s.blobs.Upload(ctx, key, upload.Body, upload.Size, upload.ContentType)
	if err != nil {
		return types.Profile{}, err
	}

	saved, err := setURL(ctx, id, &url)
	if err != nil {
		s.deleteBlob(ctx, url)
		return types.Profile{}, err
	}

	if previous := currentURL(current); previous != nil && *previous != url {
		s.deleteBlob(ctx, *previous)
	}
	return saved, nil
}

func (s *ProfileService) deleteBlob(ctx context.Context, url string) {
	if s.blobs == nil || !s.blobs.Enabled() {
		return
	}
	if err := s.blobs.DeleteURL(ctx, url); err != nil {
		s.logger.WarnContext(ctx, "failed to delete blob", "url", url, "error", err)
	}
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
