package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Day is one calendar day within a trip's span.
// DayNumber runs 1..N in date order and is unique within the trip.
type Day struct {
	ID         uuid.UUID
	TripID     uuid.UUID
	DayNumber  int
	Date       time.Time
	Title      string
	Notes      string
	Activities []Activity
	CreatedAt  time.Time
}

// DaySpan returns one date per calendar day from start to end inclusive.
// It returns nil when end is before start.
func DaySpan(start, end time.Time) []time.Time {
	s, e := truncateDay(start), truncateDay(end)
	if e.Before(s) {
		return nil
	}
	var out []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// PlanDays builds the Day rows for a trip spanning start..end, numbered from 1.
func PlanDays(tripID uuid.UUID, start, end time.Time) []Day {
	dates := DaySpan(start, end)
	days := make([]Day, len(dates))
	for i, d := range dates {
		days[i] = Day{TripID: tripID, DayNumber: i + 1, Date: d}
	}
	return days
}

// ActivityCategory classifies an activity.
type ActivityCategory string

const (
	CategoryAccommodation ActivityCategory = "accommodation"
	CategoryRestaurant    ActivityCategory = "restaurant"
	CategoryAttraction    ActivityCategory = "attraction"
	CategoryActivity      ActivityCategory = "activity"
	CategoryTransport     ActivityCategory = "transport"
	CategoryOther         ActivityCategory = "other"
)

// Valid reports whether c is one of the known categories.
func (c ActivityCategory) Valid() bool {
	switch c {
	case CategoryAccommodation, CategoryRestaurant, CategoryAttraction,
		CategoryActivity, CategoryTransport, CategoryOther:
		return true
	}
	return false
}

// Activity is a single planned stop within a day.
// SortOrder is only meaningful relative to siblings; gaps are expected
// after deletes and moves.
type Activity struct {
	ID          uuid.UUID
	DayID       uuid.UUID
	Category    ActivityCategory
	Name        string
	Description string
	Location    string
	StartTime   string // "15:04", empty when unscheduled
	EndTime     string
	Cost        *float64
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NextSortOrder returns the sort_order for an activity appended after
// existing: one past the current maximum, or 0 for an empty day.
func NextSortOrder(existing []Activity) int {
	if len(existing) == 0 {
		return 0
	}
	max := existing[0].SortOrder
	for _, a := range existing[1:] {
		if a.SortOrder > max {
			max = a.SortOrder
		}
	}
	return max + 1
}

// SortActivities orders activities by ascending sort_order, breaking ties
// by creation time.
func SortActivities(acts []Activity) {
	sort.SliceStable(acts, func(i, j int) bool {
		if acts[i].SortOrder != acts[j].SortOrder {
			return acts[i].SortOrder < acts[j].SortOrder
		}
		return acts[i].CreatedAt.Before(acts[j].CreatedAt)
	})
}

// ActivityPatch carries a partial activity update. Nil fields are left unchanged.
type ActivityPatch struct {
	Category    *ActivityCategory
	Name        *string
	Description *string
	Location    *string
	StartTime   *string
	EndTime     *string
	Cost        *float64
	ClearCost   bool
}

// Apply returns a copy of a with the non-nil patch fields written over it.
func (p ActivityPatch) Apply(a Activity) Activity {
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Location != nil {
		a.Location = *p.Location
	}
	if p.StartTime != nil {
		a.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		a.EndTime = *p.EndTime
	}
	switch {
	case p.ClearCost:
		a.Cost = nil
	case p.Cost != nil:
		c := *p.Cost
		a.Cost = &c
	}
	return a
}
