package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripnest/backend/internal/domain"
)

// MarketplaceRepo reads the itinerary marketplace. It is read-only; listings
// are seeded out of band.
type MarketplaceRepo interface {
	// ListItineraries returns one page of listings matching q and the total
	// number of matches.
	ListItineraries(ctx context.Context, q domain.MarketplaceQuery, p domain.PaginationParams) ([]domain.MarketplaceItinerary, int64, error)
	// GetItinerary returns one listing or domain.ErrNotFound.
	GetItinerary(ctx context.Context, id uuid.UUID) (domain.MarketplaceItinerary, error)
	// ListCollections returns every collection with its itinerary count.
	ListCollections(ctx context.Context) ([]domain.MarketplaceCollection, error)
	// GetCollection returns one collection with its itineraries in position order.
	GetCollection(ctx context.Context, id uuid.UUID) (domain.MarketplaceCollection, error)
}

type pgMarketplaceRepo struct {
	db db
}

// NewMarketplaceRepo constructs a MarketplaceRepo backed by the provided db connection.
func NewMarketplaceRepo(db db) MarketplaceRepo {
	return &pgMarketplaceRepo{db: db}
}

const itineraryColumns = `i.id, i.creator_id, c.name, i.title, i.description, i.destination,
	i.duration_days, i.price_cents, i.currency, i.rating, i.review_count,
	i.cover_image_url, i.tags, i.created_at`

// marketplaceOrder maps each sort to a fixed ORDER BY clause; the id
// tiebreaker keeps pages stable.
var marketplaceOrder = map[domain.MarketplaceSort]string{
	domain.MarketplacePopular:   "i.review_count DESC, i.rating DESC, i.id",
	domain.MarketplaceRating:    "i.rating DESC, i.review_count DESC, i.id",
	domain.MarketplacePriceAsc:  "i.price_cents ASC, i.id",
	domain.MarketplacePriceDesc: "i.price_cents DESC, i.id",
	domain.MarketplaceNewest:    "i.created_at DESC, i.id",
}

func (r *pgMarketplaceRepo) ListItineraries(ctx context.Context, mq domain.MarketplaceQuery, p domain.PaginationParams) ([]domain.MarketplaceItinerary, int64, error) {
	order, ok := marketplaceOrder[mq.Sort]
	if !ok {
		order = marketplaceOrder[domain.MarketplacePopular]
	}

	const from = `
		FROM marketplace_itineraries i
		JOIN chat_creators c ON c.id = i.creator_id
		WHERE (@search = '' OR i.title ILIKE '%' || @search || '%' ESCAPE '\'
		                    OR i.destination ILIKE '%' || @search || '%' ESCAPE '\')
		  AND (@creator_id::uuid IS NULL OR i.creator_id = @creator_id)`

	var creator *uuid.UUID
	if mq.CreatorID != uuid.Nil {
		creator = &mq.CreatorID
	}
	args := pgx.NamedArgs{
		"search":     escapeLike(mq.Search),
		"creator_id": creator,
		"limit":      p.Limit,
		"offset":     p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*)`+from, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.MarketplaceRepo.ListItineraries: count: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+itineraryColumns+from+`
		ORDER BY `+order+`
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.MarketplaceRepo.ListItineraries: %w", err)
	}

	items, err := collect(rows, "repo.MarketplaceRepo.ListItineraries", scanItinerary)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *pgMarketplaceRepo) GetItinerary(ctx context.Context, id uuid.UUID) (domain.MarketplaceItinerary, error) {
	const q = `
		SELECT ` + itineraryColumns + `
		FROM marketplace_itineraries i
		JOIN chat_creators c ON c.id = i.creator_id
		WHERE i.id = @id`

	it, err := scanItinerary(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.MarketplaceItinerary{}, fmt.Errorf("repo.MarketplaceRepo.GetItinerary: %w", err)
	}
	return it, nil
}

func (r *pgMarketplaceRepo) ListCollections(ctx context.Context) ([]domain.MarketplaceCollection, error) {
	const q = `
		SELECT m.id, m.title, m.description, m.cover_image_url, m.created_at,
		       (SELECT count(*) FROM marketplace_collection_items ci WHERE ci.collection_id = m.id)
		FROM marketplace_collections m
		ORDER BY m.created_at DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.MarketplaceRepo.ListCollections: %w", err)
	}
	return collect(rows, "repo.MarketplaceRepo.ListCollections", scanCollection)
}

func (r *pgMarketplaceRepo) GetCollection(ctx context.Context, id uuid.UUID) (domain.MarketplaceCollection, error) {
	const q = `
		SELECT m.id, m.title, m.description, m.cover_image_url, m.created_at,
		       (SELECT count(*) FROM marketplace_collection_items ci WHERE ci.collection_id = m.id)
		FROM marketplace_collections m
		WHERE m.id = @id`

	col, err := scanCollection(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.MarketplaceCollection{}, fmt.Errorf("repo.MarketplaceRepo.GetCollection: %w", err)
	}

	const itemsQ = `
		SELECT ` + itineraryColumns + `
		FROM marketplace_collection_items ci
		JOIN marketplace_itineraries i ON i.id = ci.itinerary_id
		JOIN chat_creators c ON c.id = i.creator_id
		WHERE ci.collection_id = @id
		ORDER BY ci.position`

	rows, err := r.db.Query(ctx, itemsQ, pgx.NamedArgs{"id": id})
	if err != nil {
		return domain.MarketplaceCollection{}, fmt.Errorf("repo.MarketplaceRepo.GetCollection: items: %w", err)
	}
	items, err := collect(rows, "repo.MarketplaceRepo.GetCollection", func(s scanner) (domain.MarketplaceItinerary, error) {
		return scanItinerary(s)
	})
	if err != nil {
		return domain.MarketplaceCollection{}, err
	}
	col.Itineraries = items
	if col.Itineraries == nil {
		col.Itineraries = []domain.MarketplaceItinerary{}
	}
	return col, nil
}

// scanItinerary maps a row selected with itineraryColumns.
func scanItinerary(s scanner) (domain.MarketplaceItinerary, error) {
	var (
		it            domain.MarketplaceItinerary
		id, creatorID pgtype.UUID
	)
	if err := s.Scan(&id, &creatorID, &it.CreatorName, &it.Title, &it.Description, &it.Destination,
		&it.DurationDays, &it.PriceCents, &it.Currency, &it.Rating, &it.ReviewCount,
		&it.CoverImageURL, &it.Tags, &it.CreatedAt); err != nil {
		return domain.MarketplaceItinerary{}, noRows(err)
	}
	it.ID = toUUID(id)
	it.CreatorID = toUUID(creatorID)
	return it, nil
}

func scanCollection(s scanner) (domain.MarketplaceCollection, error) {
	var (
		col domain.MarketplaceCollection
		id  pgtype.UUID
	)
	if err := s.Scan(&id, &col.Title, &col.Description, &col.CoverImageURL, &col.CreatedAt, &col.ItineraryCount); err != nil {
		return domain.MarketplaceCollection{}, noRows(err)
	}
	col.ID = toUUID(id)
	return col, nil
}
