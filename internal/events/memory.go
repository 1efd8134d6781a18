package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
)

// MemoryBroker delivers changes to subscribers in this process only.
type MemoryBroker struct {
	log *slog.Logger

	mu     sync.RWMutex
	subs   map[uuid.UUID]map[uuid.UUID]chan domain.TripChange // userID -> subID -> ch
	closed bool
}

// NewMemoryBroker returns an empty in-process broker.
func NewMemoryBroker(log *slog.Logger) *MemoryBroker {
	return &MemoryBroker{
		log:  log,
		subs: make(map[uuid.UUID]map[uuid.UUID]chan domain.TripChange),
	}
}

// Publish never blocks. A subscriber whose buffer is full misses the change.
func (b *MemoryBroker) Publish(_ context.Context, change domain.TripChange) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs[change.UserID] {
		select {
		case ch <- change:
		default:
			b.log.Warn("dropping trip change for slow subscriber",
				"subscriber", id, "trip_id", change.TripID, "kind", change.Kind)
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan domain.TripChange, error) {
	ch := make(chan domain.TripChange, subscriberBuffer)
	id := uuid.New()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, nil
	}
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[uuid.UUID]chan domain.TripChange)
	}
	b.subs[userID][id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(userID, id)
	}()
	return ch, nil
}

func (b *MemoryBroker) unsubscribe(userID, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subs[userID][id]
	if !ok {
		return
	}
	delete(b.subs[userID], id)
	if len(b.subs[userID]) == 0 {
		delete(b.subs, userID)
	}
	close(ch)
}

// Close ends every subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for userID, byID := range b.subs {
		for _, ch := range byID {
			close(ch)
		}
		delete(b.subs, userID)
	}
	return nil
}
