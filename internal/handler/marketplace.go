package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
)

// MarketplaceItinerary is the JSON shape of a catalog listing.
type MarketplaceItinerary struct {
	ID            uuid.UUID `json:"id"`
	CreatorID     uuid.UUID `json:"creator_id"`
	CreatorName   string    `json:"creator_name"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	Destination   string    `json:"destination"`
	DurationDays  int       `json:"duration_days"`
	PriceCents    int64     `json:"price_cents"`
	Currency      string    `json:"currency"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	CoverImageURL *string   `json:"cover_image_url,omitempty"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
}

// MarketplaceCollection is the JSON shape of a curated collection.
type MarketplaceCollection struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	CoverImageURL  *string   `json:"cover_image_url,omitempty"`
	ItineraryCount int       `json:"itinerary_count"`
}

// MarketplaceCollectionDetail adds the itineraries in curated order.
type MarketplaceCollectionDetail struct {
	MarketplaceCollection
	Itineraries []MarketplaceItinerary `json:"itineraries"`
}

// ListMarketplaceItineraries handles GET /marketplace/itineraries.
// Supports ?q=, ?creator_id=, ?sort= (popular|rating|price_asc|price_desc|newest),
// ?page= and ?limit=.
func (s *Server) ListMarketplaceItineraries(w http.ResponseWriter, r *http.Request) {
	p, ok := pagination(w, r)
	if !ok {
		return
	}
	var search, sort *string
	var creatorID *uuid.UUID
	if !queryParam(w, r, "q", &search) || !queryParam(w, r, "creator_id", &creatorID) || !queryParam(w, r, "sort", &sort) {
		return
	}
	key, err := domain.ParseMarketplaceSort(deref(sort))
	if err != nil {
		s.serviceError(w, r, err, "itinerary")
		return
	}

	items, total, err := s.Marketplace.ListItineraries(r.Context(), domain.MarketplaceQuery{
		Search:    deref(search),
		CreatorID: deref(creatorID),
		Sort:      key,
	}, p)
	if err != nil {
		s.serviceError(w, r, err, "itinerary")
		return
	}
	writeJSON(w, http.StatusOK, newPage(mapSlice(items, itineraryToResponse), p, total))
}

// GetMarketplaceItinerary handles GET /marketplace/itineraries/{itineraryId}.
func (s *Server) GetMarketplaceItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "itineraryId")
	if !ok {
		return
	}
	it, err := s.Marketplace.GetItinerary(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "itinerary")
		return
	}
	writeJSON(w, http.StatusOK, itineraryToResponse(it))
}

// ListMarketplaceCollections handles GET /marketplace/collections.
func (s *Server) ListMarketplaceCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := s.Marketplace.ListCollections(r.Context())
	if err != nil {
		s.serviceError(w, r, err, "collection")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(cols, collectionToResponse))
}

// GetMarketplaceCollection handles GET /marketplace/collections/{collectionId}.
func (s *Server) GetMarketplaceCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "collectionId")
	if !ok {
		return
	}
	c, err := s.Marketplace.GetCollection(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "collection")
		return
	}
	writeJSON(w, http.StatusOK, MarketplaceCollectionDetail{
		MarketplaceCollection: collectionToResponse(c),
		Itineraries:           mapSlice(c.Itineraries, itineraryToResponse),
	})
}

// --- mapping helpers --------------------------------------------------------

func itineraryToResponse(it domain.MarketplaceItinerary) MarketplaceItinerary {
	resp := MarketplaceItinerary{
		ID:            it.ID,
		CreatorID:     it.CreatorID,
		CreatorName:   it.CreatorName,
		Title:         it.Title,
		Description:   optional(it.Description),
		Destination:   it.Destination,
		DurationDays:  it.DurationDays,
		PriceCents:    it.PriceCents,
		Currency:      it.Currency,
		Rating:        it.Rating,
		ReviewCount:   it.ReviewCount,
		CoverImageURL: optional(it.CoverImageURL),
		Tags:          it.Tags,
		CreatedAt:     it.CreatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	return resp
}

func collectionToResponse(c domain.MarketplaceCollection) MarketplaceCollection {
	return MarketplaceCollection{
		ID:             c.ID,
		Title:          c.Title,
		Description:    optional(c.Description),
		CoverImageURL:  optional(c.CoverImageURL),
		ItineraryCount: c.ItineraryCount,
	}
}
