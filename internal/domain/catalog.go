package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MarketplaceItinerary is a pre-built itinerary a creator sells.
type MarketplaceItinerary struct {
	ID            uuid.UUID
	CreatorID     uuid.UUID
	CreatorName   string
	Title         string
	Description   string
	Destination   string
	DurationDays  int
	PriceCents    int64
	Currency      string
	Rating        float64
	ReviewCount   int
	CoverImageURL string
	Tags          []string
	CreatedAt     time.Time
}

// MarketplaceCollection is a curated, ordered set of marketplace itineraries.
// Itineraries is only populated when a single collection is fetched.
type MarketplaceCollection struct {
	ID             uuid.UUID
	Title          string
	Description    string
	CoverImageURL  string
	ItineraryCount int
	Itineraries    []MarketplaceItinerary
	CreatedAt      time.Time
}

// MarketplaceSort orders marketplace listings.
type MarketplaceSort string

const (
	MarketplacePopular   MarketplaceSort = "popular"
	MarketplaceRating    MarketplaceSort = "rating"
	MarketplacePriceAsc  MarketplaceSort = "price_asc"
	MarketplacePriceDesc MarketplaceSort = "price_desc"
	MarketplaceNewest    MarketplaceSort = "newest"
)

// ParseMarketplaceSort maps a query value to a MarketplaceSort.
// Empty means MarketplacePopular.
func ParseMarketplaceSort(s string) (MarketplaceSort, error) {
	switch k := MarketplaceSort(s); k {
	case "":
		return MarketplacePopular, nil
	case MarketplacePopular, MarketplaceRating, MarketplacePriceAsc, MarketplacePriceDesc, MarketplaceNewest:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown sort %q", ErrValidation, s)
}

// MarketplaceQuery filters the itinerary listing. Zero fields do not filter.
type MarketplaceQuery struct {
	Search    string
	CreatorID uuid.UUID
	Sort      MarketplaceSort
}

// TravelVideo is a user-uploaded video. VideoKey and ThumbnailKey name the
// stored blobs; ThumbnailKey is empty when no thumbnail was uploaded.
type TravelVideo struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Title           string
	Description     string
	Destination     string
	VideoKey        string
	ContentType     string
	SizeBytes       int64
	ThumbnailKey    string
	DurationSeconds int
	CreatedAt       time.Time
}

// Profile is the public face of a user. The profile ID is the user ID.
type Profile struct {
	ID          uuid.UUID
	DisplayName string
	AvatarURL   string
	Bio         string
	HomeCity    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
