// Package loader batches per-item lookups behind dataloaders so list views
// resolve their derived aggregates in one query per aggregate.
package loader

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vikstrous/dataloadgen"

	"github.com/tripnest/backend/internal/domain"
)

// ConversationStats is the batch source for conversation aggregates.
// repo.ConversationRepo satisfies it.
type ConversationStats interface {
	LastMessages(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Message, error)
	UnreadCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
}

// ConversationLoaders resolve the inbox aggregates for many conversations.
// Every requested key resolves: LastMessage is nil for an empty thread and
// UnreadCount is 0 when nothing is unread.
type ConversationLoaders struct {
	LastMessage *dataloadgen.Loader[uuid.UUID, *domain.Message]
	UnreadCount *dataloadgen.Loader[uuid.UUID, int]
}

// NewConversationLoaders builds loaders over src. Loads made within wait of
// each other are coalesced into one batch.
func NewConversationLoaders(src ConversationStats, wait time.Duration) *ConversationLoaders {
	lastMessages := func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Message, error) {
		found, err := src.LastMessages(ctx, ids)
		if err != nil {
			return failAll[*domain.Message](ids), err
		}
		out := make(map[uuid.UUID]*domain.Message, len(ids))
		for _, id := range ids {
			out[id] = nil
			if m, ok := found[id]; ok {
				out[id] = &m
			}
		}
		return out, nil
	}

	unreadCounts := func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
		found, err := src.UnreadCounts(ctx, ids)
		if err != nil {
			return failAll[int](ids), err
		}
		out := make(map[uuid.UUID]int, len(ids))
		for _, id := range ids {
			out[id] = found[id]
		}
		return out, nil
	}

	return &ConversationLoaders{
		LastMessage: dataloadgen.NewMappedLoader(lastMessages, dataloadgen.WithWait(wait)),
		UnreadCount: dataloadgen.NewMappedLoader(unreadCounts, dataloadgen.WithWait(wait)),
	}
}

// Aggregates resolves both aggregates for ids, in ids order. A failed batch
// returns the source's error rather than dataloadgen's per-key slice.
func (l *ConversationLoaders) Aggregates(ctx context.Context, ids []uuid.UUID) ([]*domain.Message, []int, error) {
	last, err := l.LastMessage.LoadAll(ctx, ids)
	if err != nil {
		return nil, nil, cause(err)
	}
	unread, err := l.UnreadCount.LoadAll(ctx, ids)
	if err != nil {
		return nil, nil, cause(err)
	}
	return last, unread, nil
}

// failAll returns a zero value for every key. A mapped fetch that returns a
// nil map reports dataloadgen.ErrNotFound for each key instead of err.
func failAll[V any](ids []uuid.UUID) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(ids))
	for _, id := range ids {
		var zero V
		out[id] = zero
	}
	return out
}

// cause returns the first per-key error of a LoadAll failure.
func cause(err error) error {
	var errs dataloadgen.ErrorSlice
	if !errors.As(err, &errs) {
		return err
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return err
}
