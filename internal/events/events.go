// Package events fans trip change notifications out to the live subscribers
// of the owning user.
package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
)

// Broker publishes trip changes and delivers them to subscribers of the
// change's user. Subscriptions end when ctx is cancelled; the channel is
// closed afterwards.
type Broker interface {
	Publish(ctx context.Context, change domain.TripChange) error
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan domain.TripChange, error)
	Close() error
}

// subscriberBuffer bounds how far a slow subscriber may lag before changes
// are dropped for it.
const subscriberBuffer = 16
