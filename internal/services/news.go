package services

import (
	"context"
	"strings"
	"time"

	"github.com/portfolio-web/apiserver/types"
)

// NewsRepository defines persistence operations for news items.
type NewsRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.NewsItem, int, error)
	Get(ctx context.Context, id int) (types.NewsItem, error)
	Create(ctx context.Context, item types.NewsItem) (types.NewsItem, error)
	Update(ctx context.Context, item types.NewsItem) (types.NewsItem, error)
	Delete(ctx context.Context, id int) error
}

// NewsService encapsulates news use-cases.
type NewsService struct {
	repo NewsRepository
	now  func() time.Time
}

func NewNewsService(repo NewsRepository) *NewsService {
	return &NewsService{repo: repo, now: time.Now}
}

func (s *NewsService) List(ctx context.Context, offset, limit int) ([]types.NewsItem, int, error) {
	return s.repo.List(ctx, offset, clampLimit(limit))
}

func (s *NewsService) Get(ctx context.Context, id int) (types.NewsItem, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a news item, publishing it now unless a date is given.
func (s *NewsService) Create(ctx context.Context, item types.NewsItem) (types.NewsItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return types.NewsItem{}, invalidf("title is required")
	}
	if item.PublishedAt.IsZero() {
		item.PublishedAt = s.now()
	}
	return s.repo.Create(ctx, item)
}

// Update changes title and body; a zero PublishedAt keeps the stored date.
func (s *NewsService) Update(ctx context.Context, item types.NewsItem) (types.NewsItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return types.NewsItem{}, invalidf("title is required")
	}
	return s.repo.Update(ctx, item)
}

func (s *NewsService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
