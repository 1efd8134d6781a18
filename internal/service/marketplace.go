package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/repo"
)

// MarketplaceService serves the read-only catalog of creator itineraries
// and curated collections.
type MarketplaceService struct {
	repo repo.MarketplaceRepo
}

// NewMarketplaceService constructs a MarketplaceService backed by the provided MarketplaceRepo.
func NewMarketplaceService(r repo.MarketplaceRepo) *MarketplaceService {
	return &MarketplaceService{repo: r}
}

// ListItineraries returns one page of listings and the total match count.
func (s *MarketplaceService) ListItineraries(ctx context.Context, q domain.MarketplaceQuery, p domain.PaginationParams) ([]domain.MarketplaceItinerary, int64, error) {
	q.Search = strings.TrimSpace(q.Search)
	if q.Sort == "" {
		q.Sort = domain.MarketplacePopular
	}
	items, total, err := s.repo.ListItineraries(ctx, q, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.MarketplaceService.ListItineraries: %w", err)
	}
	if items == nil {
		items = []domain.MarketplaceItinerary{}
	}
	return items, total, nil
}

func (s *MarketplaceService) GetItinerary(ctx context.Context, id uuid.UUID) (domain.MarketplaceItinerary, error) {
	it, err := s.repo.GetItinerary(ctx, id)
	if err != nil {
		return domain.MarketplaceItinerary{}, fmt.Errorf("service.MarketplaceService.GetItinerary: %w", err)
	}
	return it, nil
}

func (s *MarketplaceService) ListCollections(ctx context.Context) ([]domain.MarketplaceCollection, error) {
	cols, err := s.repo.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.MarketplaceService.ListCollections: %w", err)
	}
	if cols == nil {
		cols = []domain.MarketplaceCollection{}
	}
	return cols, nil
}

// GetCollection returns a collection with its itineraries in curated order.
func (s *MarketplaceService) GetCollection(ctx context.Context, id uuid.UUID) (domain.MarketplaceCollection, error) {
	c, err := s.repo.GetCollection(ctx, id)
	if err != nil {
		return domain.MarketplaceCollection{}, fmt.Errorf("service.MarketplaceService.GetCollection: %w", err)
	}
	if c.Itineraries == nil {
		c.Itineraries = []domain.MarketplaceItinerary{}
	}
	return c, nil
}
