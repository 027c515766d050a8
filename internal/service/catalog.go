package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/internal/repository"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
)

// Catalog listing limits.
const (
	// DefaultSearchLimit is how many matches the search dropdown shows.
	DefaultSearchLimit = 8
	// MaxCatalogLimit caps the optional limit on storefront listings.
	MaxCatalogLimit = 200
)

// CatalogSearcher answers storefront searches from a search index.
type CatalogSearcher interface {
	Search(ctx context.Context, query, category string, limit int) ([]domain.CatalogProduct, error)
}

// CatalogIndexer receives full catalog snapshots.
type CatalogIndexer interface {
	BulkPut(ctx context.Context, products []domain.CatalogProduct) error
}

// CatalogService serves the storefront product catalog.
type CatalogService struct {
	repo     repository.ProductRepository
	searcher CatalogSearcher
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// WithSearcher routes Search through idx. The database still answers when
// the index fails.
func (s *CatalogService) WithSearcher(idx CatalogSearcher) *CatalogService {
	s.searcher = idx
	return s
}

// List returns all active products in storefront shape. An empty sort means
// latest first; a zero limit returns everything.
func (s *CatalogService) List(ctx context.Context, filter domain.CatalogFilter) ([]domain.CatalogProduct, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Sort == "" {
		filter.Sort = domain.SortLatest
	}
	if !domain.IsValidSort(filter.Sort) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("sort must be one of: %s, %s, %s",
			domain.SortLatest, domain.SortPriceLow, domain.SortPriceHigh))
	}
	if filter.Limit < 0 {
		return nil, apperrors.InvalidInput("limit must not be negative")
	}
	if filter.Limit > MaxCatalogLimit {
		filter.Limit = MaxCatalogLimit
	}

	products, err := s.repo.ListActive(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return toCatalog(products), nil
}

// Search returns up to limit active products whose name contains query.
// A category other than "" or AllCategories narrows the results to that
// category. A blank query returns no results.
func (s *CatalogService) Search(ctx context.Context, query, category string, limit int) ([]domain.CatalogProduct, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.CatalogProduct{}, nil
	}
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, domain.AllCategories) {
		category = ""
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxCatalogLimit {
		limit = MaxCatalogLimit
	}

	if s.searcher != nil {
		products, err := s.searcher.Search(ctx, query, category, limit)
		if err == nil {
			return products, nil
		}
		s.logger.WarnContext(ctx, "search index unavailable, falling back to database",
			slog.String("query", query),
			slog.String("category", category),
			slog.String("error", err.Error()),
		)
	}
	return s.List(ctx, domain.CatalogFilter{Category: category, Search: query, Limit: limit})
}

// Reindex pushes every active product to idx and returns how many were sent.
func (s *CatalogService) Reindex(ctx context.Context, idx CatalogIndexer) (int, error) {
	products, err := s.repo.ListActive(ctx, domain.CatalogFilter{Sort: domain.SortLatest})
	if err != nil {
		return 0, fmt.Errorf("reindex: list catalog: %w", err)
	}
	docs := toCatalog(products)
	if err := idx.BulkPut(ctx, docs); err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}
	s.logger.InfoContext(ctx, "catalog reindexed", slog.Int("products", len(docs)))
	return len(docs), nil
}

// Get returns one active product. Drafts are reported as not found.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.CatalogProduct, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, apperrors.NotFound("product", id)
	}

	cp := p.ToCatalog()
	return &cp, nil
}

func toCatalog(products []domain.Product) []domain.CatalogProduct {
	out := make([]domain.CatalogProduct, 0, len(products))
	for i := range products {
		out = append(out, products[i].ToCatalog())
	}
	return out
}
