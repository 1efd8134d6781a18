// Package service contains the business logic for the TripNest API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tripnest/backend/internal/domain"
)

// Publisher receives trip changes after they commit. events.Broker
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, change domain.TripChange) error
}

// FieldDiffer names the fields that differ between two records.
// changes.Differ satisfies it.
type FieldDiffer interface {
	Fields(before, after any) ([]string, error)
}

// Clock supplies the current instant and the zone whose calendar day
// counts as "today".
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// Today returns the current calendar date in c.Location as UTC midnight.
func (c Clock) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return domain.DateOf(now(), c.Location)
}

func (c Clock) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// publish delivers change and logs, rather than returns, a failure: the
// write it describes has already committed.
func publish(ctx context.Context, pub Publisher, log *slog.Logger, change domain.TripChange) {
	if err := pub.Publish(ctx, change); err != nil {
		log.WarnContext(ctx, "publish trip change",
			"kind", change.Kind, "trip_id", change.TripID, "err", err)
	}
}
