package events_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/events"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func change(userID uuid.UUID, kind domain.ChangeKind) domain.TripChange {
	return domain.TripChange{Kind: kind, TripID: uuid.New(), UserID: userID, At: time.Now().UTC()}
}

func receive(t *testing.T, ch <-chan domain.TripChange) domain.TripChange {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "channel closed")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
		return domain.TripChange{}
	}
}

func TestMemoryBroker_DeliversToOwnerOnly(t *testing.T) {
	b := events.NewMemoryBroker(discardLogger())
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alice, bob := uuid.New(), uuid.New()
	aliceCh, err := b.Subscribe(ctx, alice)
	require.NoError(t, err)
	bobCh, err := b.Subscribe(ctx, bob)
	require.NoError(t, err)

	want := change(alice, domain.ChangeCreated)
	require.NoError(t, b.Publish(ctx, want))

	assert.Equal(t, want, receive(t, aliceCh))
	select {
	case c := <-bobCh:
		t.Fatalf("bob received %v", c)
	default:
	}
}

func TestMemoryBroker_FansOutToEverySubscriberOfUser(t *testing.T) {
	b := events.NewMemoryBroker(discardLogger())
	defer b.Close()
	ctx := context.Background()

	user := uuid.New()
	tab1, err := b.Subscribe(ctx, user)
	require.NoError(t, err)
	tab2, err := b.Subscribe(ctx, user)
	require.NoError(t, err)

	want := change(user, domain.ChangeDeleted)
	require.NoError(t, b.Publish(ctx, want))

	assert.Equal(t, want, receive(t, tab1))
	assert.Equal(t, want, receive(t, tab2))
}

func TestMemoryBroker_CancelClosesChannel(t *testing.T) {
	b := events.NewMemoryBroker(discardLogger())
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, uuid.New())
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestMemoryBroker_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := events.NewMemoryBroker(discardLogger())
	defer b.Close()
	ctx := context.Background()

	user := uuid.New()
	_, err := b.Subscribe(ctx, user)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_ = b.Publish(ctx, change(user, domain.ChangeUpdated))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestMemoryBroker_SubscribeAfterClose(t *testing.T) {
	b := events.NewMemoryBroker(discardLogger())
	require.NoError(t, b.Close())

	ch, err := b.Subscribe(context.Background(), uuid.New())
	require.NoError(t, err)
	_, ok := <-ch
	assert.False(t, ok)
}
