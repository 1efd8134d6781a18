package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/repo"
)

// ListOptions selects and orders a trip list.
type ListOptions struct {
	Filter domain.StatusFilter
	Sort   domain.SortKey
}

// TripService implements business logic for Trip operations.
// Every trip it returns carries its display status for today rather than
// the stored value.
type TripService struct {
	repos  repo.Repos
	tx     repo.TxRunner
	pub    Publisher
	log    *slog.Logger
	clock  Clock
	lang   language.Tag
	differ FieldDiffer
}

// TripOption customizes a TripService.
type TripOption func(*TripService)

// WithClock sets the source of "today". The default is the system clock in UTC.
func WithClock(c Clock) TripOption {
	return func(s *TripService) { s.clock = c }
}

// WithCollation sets the locale used for the alphabetical sort.
func WithCollation(tag language.Tag) TripOption {
	return func(s *TripService) { s.lang = tag }
}

// WithDiffer enables per-field change lists on update events.
func WithDiffer(d FieldDiffer) TripOption {
	return func(s *TripService) { s.differ = d }
}

// NewTripService constructs a TripService. repos are used for reads and tx
// for multi-row writes.
func NewTripService(repos repo.Repos, tx repo.TxRunner, pub Publisher, log *slog.Logger, opts ...TripOption) *TripService {
	s := &TripService{
		repos: repos,
		tx:    tx,
		pub:   pub,
		log:   log,
		clock: Clock{Location: time.UTC},
		lang:  language.English,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create validates a new trip and persists it together with one day per
// calendar date in its range. Both writes commit or neither does.
func (s *TripService) Create(ctx context.Context, userID uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	trip.UserID = userID
	trip = normalizeTrip(trip)
	if trip.Status == "" {
		trip.Status = domain.StatusUpcoming
	}
	if trip.Travelers == 0 {
		trip.Travelers = 1
	}
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}

	var created domain.Trip
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		var err error
		created, err = r.Trips.Create(ctx, trip)
		if err != nil {
			return err
		}
		_, err = r.Days.CreateMany(ctx, domain.PlanDays(created.ID, created.StartDate, created.EndDate))
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	s.notify(ctx, domain.ChangeCreated, created, nil)
	return s.display(created), nil
}

// Get returns one of the user's trips.
func (s *TripService) Get(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error) {
	t, err := s.repos.Trips.GetByID(ctx, userID, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return s.display(t), nil
}

// List returns the user's trips matching opts.Filter in opts.Sort order.
// Always returns a non-nil slice.
func (s *TripService) List(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]domain.Trip, error) {
	if opts.Filter == "" {
		opts.Filter = domain.FilterAll
	}
	if opts.Sort == "" {
		opts.Sort = domain.SortRecent
	}

	trips, err := s.listDisplayed(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}

	out := domain.FilterTrips(trips, opts.Filter, s.clock.Today())
	// A Collator keeps scratch buffers, so each call gets its own.
	c := collate.New(s.lang, collate.IgnoreCase)
	domain.SortTrips(out, opts.Sort, c.CompareString)
	return out, nil
}

// Groups buckets the user's trips for the overview page. A trip may appear
// in more than one bucket.
func (s *TripService) Groups(ctx context.Context, userID uuid.UUID) (domain.TripGroups, error) {
	trips, err := s.listDisplayed(ctx, userID)
	if err != nil {
		return domain.TripGroups{}, fmt.Errorf("service.TripService.Groups: %w", err)
	}
	domain.SortTrips(trips, domain.SortUpcoming, nil)
	return domain.GroupTrips(trips, s.clock.Today()), nil
}

// Update applies patch to a trip. When the date range moves, the trip's
// days are re-synced to the new range in the same transaction: existing
// days keep their number and take the new dates, missing days are added,
// and surplus days are removed unless they still hold activities, in which
// case the update fails with domain.ErrConflict.
func (s *TripService) Update(ctx context.Context, userID, id uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	var before, updated domain.Trip
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		var err error
		before, err = r.Trips.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}

		next := normalizeTrip(patch.Apply(before))
		if err := validateTrip(next); err != nil {
			return err
		}
		updated, err = r.Trips.Update(ctx, next)
		if err != nil {
			return err
		}

		if patch.DatesChanged(before) {
			return resyncDays(ctx, r, updated)
		}
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	s.notify(ctx, domain.ChangeUpdated, updated, &before)
	return s.display(updated), nil
}

// Rename changes only the trip's name.
func (s *TripService) Rename(ctx context.Context, userID, id uuid.UUID, name string) (domain.Trip, error) {
	return s.Update(ctx, userID, id, domain.TripPatch{Name: &name})
}

// Duplicate copies a trip with all of its days and activities. The copy is
// a private draft named "<name> (Copy)".
func (s *TripService) Duplicate(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error) {
	var created domain.Trip
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		src, err := r.Trips.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}
		days, err := r.Days.ListByTrip(ctx, src.ID)
		if err != nil {
			return err
		}
		acts, err := r.Activities.ListByTrip(ctx, src.ID)
		if err != nil {
			return err
		}

		cp := src
		cp.ID = uuid.Nil
		cp.Name = src.Name + " (Copy)"
		cp.Status = domain.StatusDraft
		cp.IsShared = false
		created, err = r.Trips.Create(ctx, cp)
		if err != nil {
			return err
		}

		planned := make([]domain.Day, len(days))
		for i, d := range days {
			planned[i] = domain.Day{TripID: created.ID, DayNumber: d.DayNumber, Date: d.Date, Title: d.Title, Notes: d.Notes}
		}
		newDays, err := r.Days.CreateMany(ctx, planned)
		if err != nil {
			return err
		}

		byNumber := make(map[int]uuid.UUID, len(newDays))
		for _, d := range newDays {
			byNumber[d.DayNumber] = d.ID
		}
		dayMap := make(map[uuid.UUID]uuid.UUID, len(days))
		for _, d := range days {
			dayMap[d.ID] = byNumber[d.DayNumber]
		}

		for _, a := range acts {
			a.ID = uuid.Nil
			a.DayID = dayMap[a.DayID]
			if _, err := r.Activities.Create(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Duplicate: %w", err)
	}

	s.notify(ctx, domain.ChangeCreated, created, nil)
	return s.display(created), nil
}

// Delete removes a trip with its days and activities.
func (s *TripService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repos.Trips.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.pubChange(ctx, domain.TripChange{Kind: domain.ChangeDeleted, TripID: id, UserID: userID, At: s.clock.now().UTC()})
	return nil
}

func (s *TripService) listDisplayed(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	trips, err := s.repos.Trips.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Trip, len(trips))
	for i, t := range trips {
		out[i] = s.display(t)
	}
	return out, nil
}

func (s *TripService) display(t domain.Trip) domain.Trip {
	t.Status = t.DisplayStatus(s.clock.Today())
	if t.Destinations == nil {
		t.Destinations = []string{}
	}
	return t
}

func (s *TripService) notify(ctx context.Context, kind domain.ChangeKind, t domain.Trip, before *domain.Trip) {
	change := domain.TripChange{Kind: kind, TripID: t.ID, UserID: t.UserID, At: t.UpdatedAt}
	if before != nil && s.differ != nil {
		fields, err := s.differ.Fields(*before, t)
		if err != nil {
			s.log.WarnContext(ctx, "diff trip update", "trip_id", t.ID, "err", err)
		}
		change.Fields = fields
	}
	s.pubChange(ctx, change)
}

func (s *TripService) pubChange(ctx context.Context, change domain.TripChange) {
	if s.pub == nil {
		return
	}
	publish(ctx, s.pub, s.log, change)
}

// resyncDays makes the trip's days match its current date range.
func resyncDays(ctx context.Context, r repo.Repos, trip domain.Trip) error {
	days, err := r.Days.ListByTrip(ctx, trip.ID)
	if err != nil {
		return err
	}
	span := domain.DaySpan(trip.StartDate, trip.EndDate)
	n := len(span)

	if len(days) > n {
		// Lock the surplus days first so no activity lands on them between
		// the count and the delete.
		if _, err := r.Days.LockAfter(ctx, trip.ID, n); err != nil {
			return err
		}
		stranded, err := r.Activities.CountAfterDay(ctx, trip.ID, n)
		if err != nil {
			return err
		}
		if stranded > 0 {
			return fmt.Errorf("%w: shortening the trip to %d days would remove %d planned activities",
				domain.ErrConflict, n, stranded)
		}
		if _, err := r.Days.DeleteAfter(ctx, trip.ID, n); err != nil {
			return err
		}
		days = days[:n]
	}

	for i, d := range days {
		if !d.Date.Equal(span[i]) {
			if err := r.Days.UpdateDate(ctx, d.ID, span[i]); err != nil {
				return err
			}
		}
	}

	if len(days) < n {
		missing := domain.PlanDays(trip.ID, trip.StartDate, trip.EndDate)[len(days):]
		if _, err := r.Days.CreateMany(ctx, missing); err != nil {
			return err
		}
	}
	return nil
}

func normalizeTrip(t domain.Trip) domain.Trip {
	t.Name = strings.TrimSpace(t.Name)
	if !t.StartDate.IsZero() {
		t.StartDate = domain.DateOf(t.StartDate, time.UTC)
	}
	if !t.EndDate.IsZero() {
		t.EndDate = domain.DateOf(t.EndDate, time.UTC)
	}
	dests := make([]string, 0, len(t.Destinations))
	for _, d := range t.Destinations {
		if d = strings.TrimSpace(d); d != "" {
			dests = append(dests, d)
		}
	}
	t.Destinations = dests
	return t
}

// validateTrip checks business rules on a trip before it is written.
func validateTrip(t domain.Trip) error {
	switch {
	case t.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case t.StartDate.IsZero() || t.EndDate.IsZero():
		return fmt.Errorf("%w: start_date and end_date are required", domain.ErrValidation)
	case t.EndDate.Before(t.StartDate):
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	case t.Travelers < 1:
		return fmt.Errorf("%w: travelers must be at least 1", domain.ErrValidation)
	case !t.BudgetTier.Valid():
		return fmt.Errorf("%w: unknown budget_tier %q", domain.ErrValidation, t.BudgetTier)
	case !t.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, t.Status)
	}
	return nil
}
