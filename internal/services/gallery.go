package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/portfolio-web/apiserver/internal/storage"
	"github.com/portfolio-web/apiserver/types"
)

// GalleryRepository defines persistence operations for gallery items.
type GalleryRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.GalleryItem, int, error)
	Get(ctx context.Context, id int) (types.GalleryItem, error)
	Create(ctx context.Context, item types.GalleryItem) (types.GalleryItem, error)
	Update(ctx context.Context, item types.GalleryItem) (types.GalleryItem, error)
	Delete(ctx context.Context, id int) error
}

// GalleryService encapsulates photo gallery use-cases.
type GalleryService struct {
	repo   GalleryRepository
	blobs  BlobStore
	logger *slog.Logger
}

func NewGalleryService(repo GalleryRepository, blobs BlobStore, logger *slog.Logger) *GalleryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GalleryService{repo: repo, blobs: blobs, logger: logger}
}

func (s *GalleryService) List(ctx context.Context, offset, limit int) ([]types.GalleryItem, int, error) {
	return s.repo.List(ctx, offset, clampLimit(limit))
}

func (s *GalleryService) Get(ctx context.Context, id int) (types.GalleryItem, error) {
	return s.repo.Get(ctx, id)
}

// Create uploads the image and stores the item pointing at it.
func (s *GalleryService) Create(ctx context.Context, item types.GalleryItem, image Upload) (types.GalleryItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	item.Description = strings.TrimSpace(item.Description)
	if item.Title == "" {
		return types.GalleryItem{}, invalidf("title is required")
	}
	if err := requireContentType(image, isImage); err != nil {
		return types.GalleryItem{}, err
	}
	if s.blobs == nil || !s.blobs.Enabled() {
		return types.GalleryItem{}, storage.ErrDisabled
	}

	key := storage.ObjectKey("gallery", item.CreatedBy, image.Filename)
	url, err := s.blobs.Upload(ctx, key, image.Body, image.Size, image.ContentType)
	if err != nil {
		return types.GalleryItem{}, err
	}
	item.ImageURL = url

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		s.deleteBlob(ctx, url)
		return types.GalleryItem{}, err
	}
	return created, nil
}

// Update changes the title and description. The image is immutable.
func (s *GalleryService) Update(ctx context.Context, item types.GalleryItem) (types.GalleryItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	item.Description = strings.TrimSpace(item.Description)
	if item.Title == "" {
		return types.GalleryItem{}, invalidf("title is required")
	}
	return s.repo.Update(ctx, item)
}

// Delete removes the item and then its image.
func (s *GalleryService) Delete(ctx context.Context, id int) error {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.deleteBlob(ctx, item.ImageURL)
	return nil
}

func (s *GalleryService) deleteBlob(ctx context.Context, url string) {
	if s.blobs == nil || !s.blobs.Enabled() || url == "" {
		return
	}
	if err := s.blobs.DeleteURL(ctx, url); err != nil {
		s.logger.WarnContext(ctx, "failed to delete gallery image", "url", url, "error", err)
	}
}
