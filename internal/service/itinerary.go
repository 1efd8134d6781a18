package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/repo"
)

// ItineraryService manages a trip's days and their ordered activities.
// Every mutation responds with the trip's freshly read itinerary.
type ItineraryService struct {
	repos repo.Repos
	tx    repo.TxRunner
}

// NewItineraryService constructs an ItineraryService.
func NewItineraryService(repos repo.Repos, tx repo.TxRunner) *ItineraryService {
	return &ItineraryService{repos: repos, tx: tx}
}

// Itinerary returns the trip's days in day order, each with its activities
// in sort order. Always returns a non-nil slice.
func (s *ItineraryService) Itinerary(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Day, error) {
	if _, err := s.repos.Trips.GetByID(ctx, userID, tripID); err != nil {
		return nil, fmt.Errorf("service.ItineraryService.Itinerary: %w", err)
	}
	days, err := loadItinerary(ctx, s.repos, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.Itinerary: %w", err)
	}
	return days, nil
}

// AddActivity appends a to the end of the given day. The day row is locked
// while the next sort order is chosen, so concurrent appends never collide.
func (s *ItineraryService) AddActivity(ctx context.Context, userID, tripID, dayID uuid.UUID, a domain.Activity) ([]domain.Day, error) {
	a = normalizeActivity(a)
	if a.Category == "" {
		a.Category = domain.CategoryOther
	}
	if err := validateActivity(a); err != nil {
		return nil, err
	}

	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		if _, err := r.Trips.GetByID(ctx, userID, tripID); err != nil {
			return err
		}
		day, err := r.Days.LockByID(ctx, tripID, dayID)
		if err != nil {
			return err
		}
		existing, err := r.Activities.ListByDay(ctx, day.ID)
		if err != nil {
			return err
		}
		a.DayID = day.ID
		a.SortOrder = domain.NextSortOrder(existing)
		_, err = r.Activities.Create(ctx, a)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.AddActivity: %w", err)
	}
	return s.Itinerary(ctx, userID, tripID)
}

// UpdateActivity edits an activity's fields in place. Its day and position
// are unchanged.
func (s *ItineraryService) UpdateActivity(ctx context.Context, userID, tripID, activityID uuid.UUID, patch domain.ActivityPatch) ([]domain.Day, error) {
	if _, err := s.repos.Trips.GetByID(ctx, userID, tripID); err != nil {
		return nil, fmt.Errorf("service.ItineraryService.UpdateActivity: %w", err)
	}
	cur, err := s.repos.Activities.GetByID(ctx, tripID, activityID)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.UpdateActivity: %w", err)
	}
	next := normalizeActivity(patch.Apply(cur))
	if err := validateActivity(next); err != nil {
		return nil, err
	}
	if _, err := s.repos.Activities.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("service.ItineraryService.UpdateActivity: %w", err)
	}
	return s.Itinerary(ctx, userID, tripID)
}

// DeleteActivity removes an activity. An activity that is already gone is
// not an error. Remaining activities keep their sort order.
func (s *ItineraryService) DeleteActivity(ctx context.Context, userID, tripID, activityID uuid.UUID) ([]domain.Day, error) {
	if _, err := s.repos.Trips.GetByID(ctx, userID, tripID); err != nil {
		return nil, fmt.Errorf("service.ItineraryService.DeleteActivity: %w", err)
	}
	if err := s.repos.Activities.Delete(ctx, tripID, activityID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("service.ItineraryService.DeleteActivity: %w", err)
	}
	return s.Itinerary(ctx, userID, tripID)
}

// MoveActivity moves an activity to the end of another day of the same
// trip. The source day is not renumbered. Moving to the current day is a
// no-op.
func (s *ItineraryService) MoveActivity(ctx context.Context, userID, tripID, activityID, targetDayID uuid.UUID) ([]domain.Day, error) {
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		if _, err := r.Trips.GetByID(ctx, userID, tripID); err != nil {
			return err
		}
		act, err := r.Activities.GetByID(ctx, tripID, activityID)
		if err != nil {
			return err
		}
		target, err := r.Days.LockByID(ctx, tripID, targetDayID)
		if err != nil {
			return err
		}
		if act.DayID == target.ID {
			return nil
		}
		existing, err := r.Activities.ListByDay(ctx, target.ID)
		if err != nil {
			return err
		}
		_, err = r.Activities.MoveToDay(ctx, act.ID, target.ID, domain.NextSortOrder(existing))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.MoveActivity: %w", err)
	}
	return s.Itinerary(ctx, userID, tripID)
}

// loadItinerary reads a trip's days and attaches their activities. Two
// queries regardless of the number of days.
func loadItinerary(ctx context.Context, r repo.Repos, tripID uuid.UUID) ([]domain.Day, error) {
	days, err := r.Days.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	acts, err := r.Activities.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	byDay := make(map[uuid.UUID][]domain.Activity, len(days))
	for _, a := range acts {
		byDay[a.DayID] = append(byDay[a.DayID], a)
	}

	out := make([]domain.Day, len(days))
	for i, d := range days {
		d.Activities = byDay[d.ID]
		if d.Activities == nil {
			d.Activities = []domain.Activity{}
		}
		domain.SortActivities(d.Activities)
		out[i] = d
	}
	return out, nil
}

func normalizeActivity(a domain.Activity) domain.Activity {
	a.Name = strings.TrimSpace(a.Name)
	a.Location = strings.TrimSpace(a.Location)
	a.StartTime = strings.TrimSpace(a.StartTime)
	a.EndTime = strings.TrimSpace(a.EndTime)
	return a
}

const clockLayout = "15:04"

// validateActivity checks business rules on an activity before it is written.
func validateActivity(a domain.Activity) error {
	if a.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !a.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, a.Category)
	}
	for _, f := range [...]struct{ name, value string }{{"start_time", a.StartTime}, {"end_time", a.EndTime}} {
		if f.value == "" {
			continue
		}
		if _, err := time.Parse(clockLayout, f.value); err != nil {
			return fmt.Errorf("%w: %s must be HH:MM", domain.ErrValidation, f.name)
		}
	}
	if a.Cost != nil && *a.Cost < 0 {
		return fmt.Errorf("%w: cost must not be negative", domain.ErrValidation)
	}
	return nil
}
