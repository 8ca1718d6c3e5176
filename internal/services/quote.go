package services

import (
	"context"
	"strings"

	"github.com/portfolio-web/apiserver/types"
)

// QuoteRepository defines persistence operations for quotes.
type QuoteRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Quote, int, error)
	Get(ctx context.Context, id int) (types.Quote, error)
	Create(ctx context.Context, quote types.Quote) (types.Quote, error)
	Update(ctx context.Context, quote types.Quote) (types.Quote, error)
	Delete(ctx context.Context, id int) error
}

// QuoteService encapsulates book quote use-cases.
type QuoteService struct {
	repo QuoteRepository
}

func NewQuoteService(repo QuoteRepository) *QuoteService {
	return &QuoteService{repo: repo}
}

func (s *QuoteService) List(ctx context.Context, offset, limit int) ([]types.Quote, int, error) {
	return s.repo.List(ctx, offset, clampLimit(limit))
}

func (s *QuoteService) Get(ctx context.Context, id int) (types.Quote, error) {
	return s.repo.Get(ctx, id)
}

func (s *QuoteService) Create(ctx context.Context, quote types.Quote) (types.Quote, error) {
	quote, err := normalizeQuote(quote)
	if err != nil {
		return types.Quote{}, err
	}
	return s.repo.Create(ctx, quote)
}

func (s *QuoteService) Update(ctx context.Context, quote types.Quote) (types.Quote, error) {
	quote, err := normalizeQuote(quote)
	if err != nil {
		return types.Quote{}, err
	}
	return s.repo.Update(ctx, quote)
}

func (s *QuoteService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func normalizeQuote(quote types.Quote) (types.Quote, error) {
	quote.Text = strings.TrimSpace(quote.Text)
	quote.Author = strings.TrimSpace(quote.Author)
	quote.Book = strings.TrimSpace(quote.Book)
	if quote.Text == "" {
		return types.Quote{}, invalidf("text is required")
	}
	return quote, nil
}
