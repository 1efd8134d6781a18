package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tripnest/backend/internal/auth"
	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/handler"
	"github.com/tripnest/backend/internal/service"
)

// Test doubles for the handler.XServicer interfaces.
// Set only the method fields your test needs.

// ---- trips -----------------------------------------------------------------

type mockTripServicer struct {
	list      func(ctx context.Context, userID uuid.UUID, opts service.ListOptions) ([]domain.Trip, error)
	groups    func(ctx context.Context, userID uuid.UUID) (domain.TripGroups, error)
	create    func(ctx context.Context, userID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	get       func(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error)
	update    func(ctx context.Context, userID, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	rename    func(ctx context.Context, userID, id uuid.UUID, name string) (domain.Trip, error)
	duplicate func(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error)
	delete    func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockTripServicer) List(ctx context.Context, userID uuid.UUID, opts service.ListOptions) ([]domain.Trip, error) {
	return m.list(ctx, userID, opts)
}
func (m *mockTripServicer) Groups(ctx context.Context, userID uuid.UUID) (domain.TripGroups, error) {
	return m.groups(ctx, userID)
}
func (m *mockTripServicer) Create(ctx context.Context, userID uuid.UUID, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, userID, t)
}
func (m *mockTripServicer) Get(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, userID, id)
}
func (m *mockTripServicer) Update(ctx context.Context, userID, id uuid.UUID, p domain.TripPatch) (domain.Trip, error) {
	return m.update(ctx, userID, id, p)
}
func (m *mockTripServicer) Rename(ctx context.Context, userID, id uuid.UUID, name string) (domain.Trip, error) {
	return m.rename(ctx, userID, id, name)
}
func (m *mockTripServicer) Duplicate(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error) {
	return m.duplicate(ctx, userID, id)
}
func (m *mockTripServicer) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

// ---- itinerary -------------------------------------------------------------

type mockItineraryServicer struct {
	itinerary      func(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Day, error)
	addActivity    func(ctx context.Context, userID, tripID, dayID uuid.UUID, a domain.Activity) ([]domain.Day, error)
	updateActivity func(ctx context.Context, userID, tripID, activityID uuid.UUID, p domain.ActivityPatch) ([]domain.Day, error)
	deleteActivity func(ctx context.Context, userID, tripID, activityID uuid.UUID) ([]domain.Day, error)
	moveActivity   func(ctx context.Context, userID, tripID, activityID, dayID uuid.UUID) ([]domain.Day, error)
}

func (m *mockItineraryServicer) Itinerary(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Day, error) {
	return m.itinerary(ctx, userID, tripID)
}
func (m *mockItineraryServicer) AddActivity(ctx context.Context, userID, tripID, dayID uuid.UUID, a domain.Activity) ([]domain.Day, error) {
	return m.addActivity(ctx, userID, tripID, dayID, a)
}
func (m *mockItineraryServicer) UpdateActivity(ctx context.Context, userID, tripID, activityID uuid.UUID, p domain.ActivityPatch) ([]domain.Day, error) {
	return m.updateActivity(ctx, userID, tripID, activityID, p)
}
func (m *mockItineraryServicer) DeleteActivity(ctx context.Context, userID, tripID, activityID uuid.UUID) ([]domain.Day, error) {
	return m.deleteActivity(ctx, userID, tripID, activityID)
}
func (m *mockItineraryServicer) MoveActivity(ctx context.Context, userID, tripID, activityID, dayID uuid.UUID) ([]domain.Day, error) {
	return m.moveActivity(ctx, userID, tripID, activityID, dayID)
}

var _ handler.ItineraryServicer = (*mockItineraryServicer)(nil)

type mockExportServicer struct {
	export func(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, []domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, []domain.ExportRow, error) {
	return m.export(ctx, userID, tripID)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- chat ------------------------------------------------------------------

type mockChatServicer struct {
	listCreators      func(ctx context.Context) ([]domain.Creator, error)
	listConversations func(ctx context.Context, userID uuid.UUID) ([]domain.ConversationSummary, error)
	startConversation func(ctx context.Context, userID, creatorID uuid.UUID) (domain.ConversationSummary, error)
	messages          func(ctx context.Context, userID, conversationID uuid.UUID) ([]domain.Message, error)
	sendMessage       func(ctx context.Context, userID, conversationID uuid.UUID, content string) (domain.Thread, error)
	markRead          func(ctx context.Context, userID, conversationID uuid.UUID) (int64, error)
}

func (m *mockChatServicer) ListCreators(ctx context.Context) ([]domain.Creator, error) {
	return m.listCreators(ctx)
}
func (m *mockChatServicer) ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.ConversationSummary, error) {
	return m.listConversations(ctx, userID)
}
func (m *mockChatServicer) StartConversation(ctx context.Context, userID, creatorID uuid.UUID) (domain.ConversationSummary, error) {
	return m.startConversation(ctx, userID, creatorID)
}
func (m *mockChatServicer) Messages(ctx context.Context, userID, conversationID uuid.UUID) ([]domain.Message, error) {
	return m.messages(ctx, userID, conversationID)
}
func (m *mockChatServicer) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, content string) (domain.Thread, error) {
	return m.sendMessage(ctx, userID, conversationID, content)
}
func (m *mockChatServicer) MarkRead(ctx context.Context, userID, conversationID uuid.UUID) (int64, error) {
	return m.markRead(ctx, userID, conversationID)
}

var _ handler.ChatServicer = (*mockChatServicer)(nil)

// ---- catalog ---------------------------------------------------------------

type mockMarketplaceServicer struct {
	listItineraries func(ctx context.Context, q domain.MarketplaceQuery, p domain.PaginationParams) ([]domain.MarketplaceItinerary, int64, error)
	getItinerary    func(ctx context.Context, id uuid.UUID) (domain.MarketplaceItinerary, error)
	listCollections func(ctx context.Context) ([]domain.MarketplaceCollection, error)
	getCollection   func(ctx context.Context, id uuid.UUID) (domain.MarketplaceCollection, error)
}

func (m *mockMarketplaceServicer) ListItineraries(ctx context.Context, q domain.MarketplaceQuery, p domain.PaginationParams) ([]domain.MarketplaceItinerary, int64, error) {
	return m.listItineraries(ctx, q, p)
}
func (m *mockMarketplaceServicer) GetItinerary(ctx context.Context, id uuid.UUID) (domain.MarketplaceItinerary, error) {
	return m.getItinerary(ctx, id)
}
func (m *mockMarketplaceServicer) ListCollections(ctx context.Context) ([]domain.MarketplaceCollection, error) {
	return m.listCollections(ctx)
}
func (m *mockMarketplaceServicer) GetCollection(ctx context.Context, id uuid.UUID) (domain.MarketplaceCollection, error) {
	return m.getCollection(ctx, id)
}

var _ handler.MarketplaceServicer = (*mockMarketplaceServicer)(nil)

type mockVideoServicer struct {
	upload        func(ctx context.Context, userID uuid.UUID, up service.VideoUpload) (domain.TravelVideo, error)
	get           func(ctx context.Context, id uuid.UUID) (domain.TravelVideo, error)
	list          func(ctx context.Context, destination string, p domain.PaginationParams) ([]domain.TravelVideo, int64, error)
	openFile      func(ctx context.Context, id uuid.UUID) (domain.TravelVideo, io.ReadSeekCloser, error)
	openThumbnail func(ctx context.Context, id uuid.UUID) (domain.TravelVideo, io.ReadSeekCloser, error)
	delete        func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockVideoServicer) Upload(ctx context.Context, userID uuid.UUID, up service.VideoUpload) (domain.TravelVideo, error) {
	return m.upload(ctx, userID, up)
}
func (m *mockVideoServicer) Get(ctx context.Context, id uuid.UUID) (domain.TravelVideo, error) {
	return m.get(ctx, id)
}
func (m *mockVideoServicer) List(ctx context.Context, destination string, p domain.PaginationParams) ([]domain.TravelVideo, int64, error) {
	return m.list(ctx, destination, p)
}
func (m *mockVideoServicer) OpenFile(ctx context.Context, id uuid.UUID) (domain.TravelVideo, io.ReadSeekCloser, error) {
	return m.openFile(ctx, id)
}
func (m *mockVideoServicer) OpenThumbnail(ctx context.Context, id uuid.UUID) (domain.TravelVideo, io.ReadSeekCloser, error) {
	return m.openThumbnail(ctx, id)
}
func (m *mockVideoServicer) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}

var _ handler.VideoServicer = (*mockVideoServicer)(nil)

type mockProfileServicer struct {
	get    func(ctx context.Context, userID uuid.UUID) (domain.Profile, error)
	update func(ctx context.Context, userID uuid.UUID, p domain.Profile) (domain.Profile, error)
}

func (m *mockProfileServicer) Get(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	return m.get(ctx, userID)
}
func (m *mockProfileServicer) Update(ctx context.Context, userID uuid.UUID, p domain.Profile) (domain.Profile, error) {
	return m.update(ctx, userID, p)
}

var _ handler.ProfileServicer = (*mockProfileServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// testUser is the identity every test request is authenticated as.
var testUser = uuid.MustParse("7d1c1f0e-2b1a-4a55-9a4c-2f9b8c3e5d10")

// asUser authenticates every request as testUser, standing in for the
// bearer token middleware.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), testUser)))
	})
}

var testLimits = handler.Limits{Body: 1 << 20, Upload: 4 << 20}

// newHTTPHandler wires a Server with the given services into its router,
// the same way the serve command does in production.
func newHTTPHandler(svcs handler.Services, opts ...handler.Option) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(svcs, log, opts...).Routes(asUser, testLimits)
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body io.Reader) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}
