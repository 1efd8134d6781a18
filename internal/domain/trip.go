// Package domain contains the core data types for the TripNest application.
// It holds no I/O: only entity types, sentinel errors, and the pure
// derivations (trip status, list views, day spans, sort order) that every
// other internal package (repo, service, handler) builds on.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle status of a trip.
// Only StatusDraft and StatusBooked are meaningful when stored; the other
// values are recomputed from the date range by DeriveStatus.
type TripStatus string

const (
	StatusDraft      TripStatus = "draft"
	StatusUpcoming   TripStatus = "upcoming"
	StatusInProgress TripStatus = "in_progress"
	StatusPast       TripStatus = "past"
	StatusBooked     TripStatus = "booked"
)

// Valid reports whether s is one of the known statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusUpcoming, StatusInProgress, StatusPast, StatusBooked:
		return true
	}
	return false
}

// BudgetTier is the spending band a trip is planned for. Empty means unset.
type BudgetTier string

const (
	BudgetLow      BudgetTier = "budget"
	BudgetModerate BudgetTier = "moderate"
	BudgetLuxury   BudgetTier = "luxury"
)

// Valid reports whether b is empty or one of the known tiers.
func (b BudgetTier) Valid() bool {
	switch b {
	case "", BudgetLow, BudgetModerate, BudgetLuxury:
		return true
	}
	return false
}

// Trip is a user's planned journey. It is the top-level aggregate; days
// belong to a trip and activities belong to a day.
//
// StartDate and EndDate are calendar dates held as UTC midnight.
// The diff tags name the fields reported in trip change events.
type Trip struct {
	ID           uuid.UUID  `json:"id" diff:"-"`
	UserID       uuid.UUID  `json:"user_id" diff:"-"`
	Name         string     `json:"name" diff:"name"`
	Destinations []string   `json:"destinations" diff:"destinations"`
	StartDate    time.Time  `json:"start_date" diff:"start_date"`
	EndDate      time.Time  `json:"end_date" diff:"end_date"`
	Travelers    int        `json:"travelers" diff:"travelers"`
	BudgetTier   BudgetTier `json:"budget_tier,omitempty" diff:"budget_tier"`
	Status       TripStatus `json:"status" diff:"status"`
	IsShared     bool       `json:"is_shared" diff:"is_shared"`
	HeroImageURL string     `json:"hero_image_url,omitempty" diff:"hero_image_url"`
	CreatedAt    time.Time  `json:"created_at" diff:"-"`
	UpdatedAt    time.Time  `json:"updated_at" diff:"-"`
}

// DisplayStatus returns the status shown to the user on the given day.
func (t Trip) DisplayStatus(today time.Time) TripStatus {
	return DeriveStatus(t.StartDate, t.EndDate, t.Status, today)
}

// DeriveStatus computes a display status from a date range and the stored
// status. Stored draft and booked values are manual overrides and are
// returned unchanged. Otherwise today is compared against the inclusive range.
// All three dates are compared at day precision.
func DeriveStatus(start, end time.Time, stored TripStatus, today time.Time) TripStatus {
	if stored == StatusDraft || stored == StatusBooked {
		return stored
	}
	d := truncateDay(today)
	switch {
	case d.Before(truncateDay(start)):
		return StatusUpcoming
	case d.After(truncateDay(end)):
		return StatusPast
	default:
		return StatusInProgress
	}
}

// DateOf returns the calendar date of t as observed in loc, as UTC midnight.
// A nil loc means UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TripPatch carries a partial trip update. Nil fields are left unchanged.
type TripPatch struct {
	Name         *string
	Destinations *[]string
	StartDate    *time.Time
	EndDate      *time.Time
	Travelers    *int
	BudgetTier   *BudgetTier
	Status       *TripStatus
	IsShared     *bool
	HeroImageURL *string
}

// Apply returns a copy of t with the non-nil patch fields written over it.
func (p TripPatch) Apply(t Trip) Trip {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Destinations != nil {
		t.Destinations = append([]string(nil), (*p.Destinations)...)
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.Travelers != nil {
		t.Travelers = *p.Travelers
	}
	if p.BudgetTier != nil {
		t.BudgetTier = *p.BudgetTier
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.IsShared != nil {
		t.IsShared = *p.IsShared
	}
	if p.HeroImageURL != nil {
		t.HeroImageURL = *p.HeroImageURL
	}
	return t
}

// DatesChanged reports whether applying p would move either end of the range.
func (p TripPatch) DatesChanged(t Trip) bool {
	return (p.StartDate != nil && !p.StartDate.Equal(t.StartDate)) ||
		(p.EndDate != nil && !p.EndDate.Equal(t.EndDate))
}
