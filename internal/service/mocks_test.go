package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/repo"
)

// Hand-written test doubles for the repo interfaces.
// Each method is a function field; set only the ones your test needs.
// Calling an unset field panics, which flags an unexpected repo call.

// ---- trips -----------------------------------------------------------------

type mockTripRepo struct {
	create     func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID    func(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error)
	listByUser func(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	update     func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete     func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, userID, id)
}
func (m *mockTripRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

// ---- days ------------------------------------------------------------------

type mockDayRepo struct {
	createMany  func(ctx context.Context, days []domain.Day) ([]domain.Day, error)
	listByTrip  func(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error)
	getByID     func(ctx context.Context, tripID, dayID uuid.UUID) (domain.Day, error)
	lockByID    func(ctx context.Context, tripID, dayID uuid.UUID) (domain.Day, error)
	updateDate  func(ctx context.Context, dayID uuid.UUID, date time.Time) error
	lockAfter   func(ctx context.Context, tripID uuid.UUID, dayNumber int) (int, error)
	deleteAfter func(ctx context.Context, tripID uuid.UUID, dayNumber int) (int64, error)
}

func (m *mockDayRepo) CreateMany(ctx context.Context, days []domain.Day) ([]domain.Day, error) {
	return m.createMany(ctx, days)
}
func (m *mockDayRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockDayRepo) GetByID(ctx context.Context, tripID, dayID uuid.UUID) (domain.Day, error) {
	return m.getByID(ctx, tripID, dayID)
}
func (m *mockDayRepo) LockByID(ctx context.Context, tripID, dayID uuid.UUID) (domain.Day, error) {
	return m.lockByID(ctx, tripID, dayID)
}
func (m *mockDayRepo) UpdateDate(ctx context.Context, dayID uuid.UUID, date time.Time) error {
	return m.updateDate(ctx, dayID, date)
}
func (m *mockDayRepo) LockAfter(ctx context.Context, tripID uuid.UUID, dayNumber int) (int, error) {
	return m.lockAfter(ctx, tripID, dayNumber)
}
func (m *mockDayRepo) DeleteAfter(ctx context.Context, tripID uuid.UUID, dayNumber int) (int64, error) {
	return m.deleteAfter(ctx, tripID, dayNumber)
}

var _ repo.DayRepo = (*mockDayRepo)(nil)

// ---- activities ------------------------------------------------------------

type mockActivityRepo struct {
	create        func(ctx context.Context, a domain.Activity) (domain.Activity, error)
	getByID       func(ctx context.Context, tripID, id uuid.UUID) (domain.Activity, error)
	listByDay     func(ctx context.Context, dayID uuid.UUID) ([]domain.Activity, error)
	listByTrip    func(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error)
	countAfterDay func(ctx context.Context, tripID uuid.UUID, dayNumber int) (int, error)
	update        func(ctx context.Context, a domain.Activity) (domain.Activity, error)
	moveToDay     func(ctx context.Context, id, dayID uuid.UUID, sortOrder int) (domain.Activity, error)
	delete        func(ctx context.Context, tripID, id uuid.UUID) error
}

func (m *mockActivityRepo) Create(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	return m.create(ctx, a)
}
func (m *mockActivityRepo) GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Activity, error) {
	return m.getByID(ctx, tripID, id)
}
func (m *mockActivityRepo) ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.Activity, error) {
	return m.listByDay(ctx, dayID)
}
func (m *mockActivityRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockActivityRepo) CountAfterDay(ctx context.Context, tripID uuid.UUID, dayNumber int) (int, error) {
	return m.countAfterDay(ctx, tripID, dayNumber)
}
func (m *mockActivityRepo) Update(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	return m.update(ctx, a)
}
func (m *mockActivityRepo) MoveToDay(ctx context.Context, id, dayID uuid.UUID, sortOrder int) (domain.Activity, error) {
	return m.moveToDay(ctx, id, dayID, sortOrder)
}
func (m *mockActivityRepo) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	return m.delete(ctx, tripID, id)
}

var _ repo.ActivityRepo = (*mockActivityRepo)(nil)

// ---- chat ------------------------------------------------------------------

type mockCreatorRepo struct {
	list    func(ctx context.Context) ([]domain.Creator, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Creator, error)
}

func (m *mockCreatorRepo) List(ctx context.Context) ([]domain.Creator, error) { return m.list(ctx) }
func (m *mockCreatorRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Creator, error) {
	return m.getByID(ctx, id)
}

var _ repo.CreatorRepo = (*mockCreatorRepo)(nil)

type mockConversationRepo struct {
	listByUser   func(ctx context.Context, userID uuid.UUID) ([]domain.ConversationSummary, error)
	getByID      func(ctx context.Context, userID, id uuid.UUID) (domain.Conversation, error)
	getOrCreate  func(ctx context.Context, userID, creatorID uuid.UUID) (domain.Conversation, error)
	touch        func(ctx context.Context, id uuid.UUID, at time.Time) error
	lastMessages func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Message, error)
	unreadCounts func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
}

func (m *mockConversationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ConversationSummary, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockConversationRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Conversation, error) {
	return m.getByID(ctx, userID, id)
}
func (m *mockConversationRepo) GetOrCreate(ctx context.Context, userID, creatorID uuid.UUID) (domain.Conversation, error) {
	return m.getOrCreate(ctx, userID, creatorID)
}
func (m *mockConversationRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.touch(ctx, id, at)
}
func (m *mockConversationRepo) LastMessages(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Message, error) {
	return m.lastMessages(ctx, ids)
}
func (m *mockConversationRepo) UnreadCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	return m.unreadCounts(ctx, ids)
}

var _ repo.ConversationRepo = (*mockConversationRepo)(nil)

type mockMessageRepo struct {
	listByConversation func(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)
	create             func(ctx context.Context, m domain.Message) (domain.Message, error)
	markRead           func(ctx context.Context, conversationID uuid.UUID) (int64, error)
}

func (m *mockMessageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	return m.listByConversation(ctx, conversationID)
}
func (m *mockMessageRepo) Create(ctx context.Context, msg domain.Message) (domain.Message, error) {
	return m.create(ctx, msg)
}
func (m *mockMessageRepo) MarkRead(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	return m.markRead(ctx, conversationID)
}

var _ repo.MessageRepo = (*mockMessageRepo)(nil)

// ---- catalog ---------------------------------------------------------------

type mockMarketplaceRepo struct {
	listItineraries func(ctx context.Context, q domain.MarketplaceQuery, p domain.PaginationParams) ([]domain.MarketplaceItinerary, int64, error)
	getItinerary    func(ctx context.Context, id uuid.UUID) (domain.MarketplaceItinerary, error)
	listCollections func(ctx context.Context) ([]domain.MarketplaceCollection, error)
	getCollection   func(ctx context.Context, id uuid.UUID) (domain.MarketplaceCollection, error)
}

func (m *mockMarketplaceRepo) ListItineraries(ctx context.Context, q domain.MarketplaceQuery, p domain.PaginationParams) ([]domain.MarketplaceItinerary, int64, error) {
	return m.listItineraries(ctx, q, p)
}
func (m *mockMarketplaceRepo) GetItinerary(ctx context.Context, id uuid.UUID) (domain.MarketplaceItinerary, error) {
	return m.getItinerary(ctx, id)
}
func (m *mockMarketplaceRepo) ListCollections(ctx context.Context) ([]domain.MarketplaceCollection, error) {
	return m.listCollections(ctx)
}
func (m *mockMarketplaceRepo) GetCollection(ctx context.Context, id uuid.UUID) (domain.MarketplaceCollection, error) {
	return m.getCollection(ctx, id)
}

var _ repo.MarketplaceRepo = (*mockMarketplaceRepo)(nil)

type mockVideoRepo struct {
	create    func(ctx context.Context, v domain.TravelVideo) (domain.TravelVideo, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.TravelVideo, error)
	listPaged func(ctx context.Context, destination string, p domain.PaginationParams) ([]domain.TravelVideo, int64, error)
	delete    func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockVideoRepo) Create(ctx context.Context, v domain.TravelVideo) (domain.TravelVideo, error) {
	return m.create(ctx, v)
}
func (m *mockVideoRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TravelVideo, error) {
	return m.getByID(ctx, id)
}
func (m *mockVideoRepo) ListPaged(ctx context.Context, destination string, p domain.PaginationParams) ([]domain.TravelVideo, int64, error) {
	return m.listPaged(ctx, destination, p)
}
func (m *mockVideoRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}

var _ repo.VideoRepo = (*mockVideoRepo)(nil)

type mockProfileRepo struct {
	get    func(ctx context.Context, userID uuid.UUID) (domain.Profile, error)
	upsert func(ctx context.Context, p domain.Profile) (domain.Profile, error)
}

func (m *mockProfileRepo) Get(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	return m.get(ctx, userID)
}
func (m *mockProfileRepo) Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	return m.upsert(ctx, p)
}

var _ repo.ProfileRepo = (*mockProfileRepo)(nil)

// ---- transactions and events -----------------------------------------------

// fakeTx runs fn against the same repos the service reads from. A non-nil
// error from fn is returned as-is, mirroring a rollback. rolledBack records
// that it happened.
type fakeTx struct {
	repos      repo.Repos
	calls      int
	rolledBack bool
}

func (f *fakeTx) InTx(_ context.Context, fn func(repo.Repos) error) error {
	f.calls++
	err := fn(f.repos)
	f.rolledBack = err != nil
	return err
}

var _ repo.TxRunner = (*fakeTx)(nil)

// recordingPublisher captures every published change.
type recordingPublisher struct {
	changes []domain.TripChange
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, c domain.TripChange) error {
	p.changes = append(p.changes, c)
	return p.err
}
