package loader_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vikstrous/dataloadgen"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/loader"
)

// fakeStats counts batch calls so tests can assert one query per aggregate.
type fakeStats struct {
	last     map[uuid.UUID]domain.Message
	unread   map[uuid.UUID]int
	err      error
	lastHits atomic.Int32
	cntHits  atomic.Int32
}

func (f *fakeStats) LastMessages(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Message, error) {
	f.lastHits.Add(1)
	return f.last, f.err
}

func (f *fakeStats) UnreadCounts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	f.cntHits.Add(1)
	return f.unread, f.err
}

var _ loader.ConversationStats = (*fakeStats)(nil)

func TestConversationLoaders_LoadAll_OneBatchPerAggregate(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	src := &fakeStats{
		last:   map[uuid.UUID]domain.Message{a: {ConversationID: a, Content: "see you"}},
		unread: map[uuid.UUID]int{a: 2, b: 1},
	}
	l := loader.NewConversationLoaders(src, time.Millisecond)
	ctx := context.Background()

	last, err := l.LastMessage.LoadAll(ctx, []uuid.UUID{a, b, c})
	require.NoError(t, err)
	require.Len(t, last, 3)
	require.NotNil(t, last[0])
	assert.Equal(t, "see you", last[0].Content)
	assert.Nil(t, last[1], "empty thread resolves to nil")
	assert.Nil(t, last[2])

	counts, err := l.UnreadCount.LoadAll(ctx, []uuid.UUID{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, counts)

	assert.Equal(t, int32(1), src.lastHits.Load())
	assert.Equal(t, int32(1), src.cntHits.Load())
}

func TestConversationLoaders_ConcurrentLoadsCoalesce(t *testing.T) {
	src := &fakeStats{unread: map[uuid.UUID]int{}}
	l := loader.NewConversationLoaders(src, 20*time.Millisecond)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.UnreadCount.Load(ctx, uuid.New())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.cntHits.Load())
}

func TestConversationLoaders_PropagatesError(t *testing.T) {
	boom := errors.New("db down")
	l := loader.NewConversationLoaders(&fakeStats{err: boom}, time.Millisecond)

	_, err := l.UnreadCount.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
}

func TestConversationLoaders_Aggregates(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	src := &fakeStats{
		last:   map[uuid.UUID]domain.Message{b: {ConversationID: b, Content: "on my way"}},
		unread: map[uuid.UUID]int{b: 4},
	}
	l := loader.NewConversationLoaders(src, time.Millisecond)

	last, unread, err := l.Aggregates(context.Background(), []uuid.UUID{a, b})

	require.NoError(t, err)
	assert.Nil(t, last[0])
	require.NotNil(t, last[1])
	assert.Equal(t, "on my way", last[1].Content)
	assert.Equal(t, []int{0, 4}, unread)
}

func TestConversationLoaders_Aggregates_ReturnsSourceError(t *testing.T) {
	boom := errors.New("db down")
	l := loader.NewConversationLoaders(&fakeStats{err: boom}, time.Millisecond)

	_, _, err := l.Aggregates(context.Background(), []uuid.UUID{uuid.New(), uuid.New()})

	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, dataloadgen.ErrNotFound)
}
