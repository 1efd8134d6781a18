// Package handler implements the HTTP handlers for the TripNest API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (trip.go, chat.go, etc.) but share the same Server struct so they can
// access its dependencies. Routes wires them into a chi router.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/middleware"
	"github.com/tripnest/backend/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interfaces here (in the consumer package) lets handler tests
// inject mocks without touching the database or service layer.
type TripServicer interface {
	List(ctx context.Context, userID uuid.UUID, opts service.ListOptions) ([]domain.Trip, error)
	Groups(ctx context.Context, userID uuid.UUID) (domain.TripGroups, error)
	Create(ctx context.Context, userID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	Get(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	Rename(ctx context.Context, userID, id uuid.UUID, name string) (domain.Trip, error)
	Duplicate(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// ItineraryServicer defines the day and activity operations.
type ItineraryServicer interface {
	Itinerary(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Day, error)
	AddActivity(ctx context.Context, userID, tripID, dayID uuid.UUID, a domain.Activity) ([]domain.Day, error)
	UpdateActivity(ctx context.Context, userID, tripID, activityID uuid.UUID, patch domain.ActivityPatch) ([]domain.Day, error)
	DeleteActivity(ctx context.Context, userID, tripID, activityID uuid.UUID) ([]domain.Day, error)
	MoveActivity(ctx context.Context, userID, tripID, activityID, targetDayID uuid.UUID) ([]domain.Day, error)
}

// ExportServicer flattens a trip for download.
type ExportServicer interface {
	Export(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, []domain.ExportRow, error)
}

// ChatServicer defines the creator chat operations.
type ChatServicer interface {
	ListCreators(ctx context.Context) ([]domain.Creator, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.ConversationSummary, error)
	StartConversation(ctx context.Context, userID, creatorID uuid.UUID) (domain.ConversationSummary, error)
	Messages(ctx context.Context, userID, conversationID uuid.UUID) ([]domain.Message, error)
	SendMessage(ctx context.Context, userID, conversationID uuid.UUID, content string) (domain.Thread, error)
	MarkRead(ctx context.Context, userID, conversationID uuid.UUID) (int64, error)
}

// MarketplaceServicer serves the read-only itinerary catalog.
type MarketplaceServicer interface {
	ListItineraries(ctx context.Context, q domain.MarketplaceQuery, p domain.PaginationParams) ([]domain.MarketplaceItinerary, int64, error)
	GetItinerary(ctx context.Context, id uuid.UUID) (domain.MarketplaceItinerary, error)
	ListCollections(ctx context.Context) ([]domain.MarketplaceCollection, error)
	GetCollection(ctx context.Context, id uuid.UUID) (domain.MarketplaceCollection, error)
}

// VideoServicer stores and serves travel videos.
type VideoServicer interface {
	Upload(ctx context.Context, userID uuid.UUID, up service.VideoUpload) (domain.TravelVideo, error)
	Get(ctx context.Context, id uuid.UUID) (domain.TravelVideo, error)
	List(ctx context.Context, destination string, p domain.PaginationParams) ([]domain.TravelVideo, int64, error)
	OpenFile(ctx context.Context, id uuid.UUID) (domain.TravelVideo, io.ReadSeekCloser, error)
	OpenThumbnail(ctx context.Context, id uuid.UUID) (domain.TravelVideo, io.ReadSeekCloser, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// ProfileServicer reads and writes the caller's profile.
type ProfileServicer interface {
	Get(ctx context.Context, userID uuid.UUID) (domain.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, p domain.Profile) (domain.Profile, error)
}

// ChangeSubscriber delivers a user's trip changes. events.Broker satisfies it.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan domain.TripChange, error)
}

// Services bundles every dependency of Server. Handler tests set only the
// fields the routes under test reach.
type Services struct {
	Trips       TripServicer
	Itinerary   ItineraryServicer
	Export      ExportServicer
	Chat        ChatServicer
	Marketplace MarketplaceServicer
	Videos      VideoServicer
	Profiles    ProfileServicer
	Changes     ChangeSubscriber
}

// Limits caps request body sizes. Upload applies to POST /videos only.
type Limits struct {
	Body   int64
	Upload int64
}

// Server implements every API endpoint.
type Server struct {
	Services
	log     *slog.Logger
	origins []string
}

// Option customizes a Server.
type Option func(*Server)

// WithAllowedOrigins restricts which browser origins may open the trip
// change WebSocket. "*" allows any. Requests without an Origin header are
// always allowed.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svcs Services, log *slog.Logger, opts ...Option) *Server {
	s := &Server{Services: svcs, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes returns the API router. authn guards every route except the health
// check and the OpenAPI document.
func (s *Server) Routes(authn func(http.Handler) http.Handler, limits Limits) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Get("/trips/changes", s.TripChanges)
		r.With(middleware.NewMaxBodySizeHandler(limits.Upload)).Post("/videos", s.UploadVideo)

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewMaxBodySizeHandler(limits.Body))

			r.Get("/trips", s.ListTrips)
			r.Post("/trips", s.CreateTrip)
			r.Get("/trips/groups", s.GroupTrips)
			r.Route("/trips/{tripId}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Patch("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)
				r.Put("/name", s.RenameTrip)
				r.Post("/duplicate", s.DuplicateTrip)
				r.Get("/export", s.ExportTrip)

				r.Get("/days", s.GetItinerary)
				r.Post("/days/{dayId}/activities", s.AddActivity)
				r.Patch("/activities/{activityId}", s.UpdateActivity)
				r.Delete("/activities/{activityId}", s.DeleteActivity)
				r.Post("/activities/{activityId}/move", s.MoveActivity)
			})

			r.Get("/creators", s.ListCreators)
			r.Get("/conversations", s.ListConversations)
			r.Post("/conversations", s.StartConversation)
			r.Get("/conversations/{conversationId}/messages", s.ListMessages)
			r.Post("/conversations/{conversationId}/messages", s.SendMessage)
			r.Post("/conversations/{conversationId}/read", s.MarkConversationRead)

			r.Get("/marketplace/itineraries", s.ListMarketplaceItineraries)
			r.Get("/marketplace/itineraries/{itineraryId}", s.GetMarketplaceItinerary)
			r.Get("/marketplace/collections", s.ListMarketplaceCollections)
			r.Get("/marketplace/collections/{collectionId}", s.GetMarketplaceCollection)

			r.Get("/videos", s.ListVideos)
			r.Get("/videos/{videoId}", s.GetVideo)
			r.Delete("/videos/{videoId}", s.DeleteVideo)
			r.Get("/videos/{videoId}/file", s.GetVideoFile)
			r.Get("/videos/{videoId}/thumbnail", s.GetVideoThumbnail)

			r.Get("/profiles/me", s.GetProfile)
			r.Put("/profiles/me", s.UpdateProfile)
		})
	})
	return r
}
