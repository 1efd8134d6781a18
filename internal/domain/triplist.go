package domain

import (
	"fmt"
	"sort"
	"time"
)

// StatusFilter selects a subset of a trip list by derived status.
type StatusFilter string

const (
	FilterAll      StatusFilter = "all"
	FilterUpcoming StatusFilter = "upcoming"
	FilterPast     StatusFilter = "past"
	FilterBooked   StatusFilter = "booked"
	FilterDrafts   StatusFilter = "drafts"
	FilterShared   StatusFilter = "shared"
)

// ParseStatusFilter maps a query value to a StatusFilter. Empty means FilterAll.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterUpcoming, FilterPast, FilterBooked, FilterDrafts, FilterShared:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown filter %q", ErrValidation, s)
}

// SortKey orders a trip list.
type SortKey string

const (
	SortRecent       SortKey = "recent"
	SortUpcoming     SortKey = "upcoming"
	SortAlphabetical SortKey = "alphabetical"
)

// ParseSortKey maps a query value to a SortKey. Empty means SortRecent.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortRecent, nil
	case SortRecent, SortUpcoming, SortAlphabetical:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown sort %q", ErrValidation, s)
}

// Matches reports whether trip t belongs in filter f on the given day.
// FilterShared looks only at the shared flag; the others compare the
// derived status.
func (f StatusFilter) Matches(t Trip, today time.Time) bool {
	switch f {
	case FilterAll:
		return true
	case FilterShared:
		return t.IsShared
	case FilterUpcoming:
		return t.DisplayStatus(today) == StatusUpcoming
	case FilterPast:
		return t.DisplayStatus(today) == StatusPast
	case FilterBooked:
		return t.DisplayStatus(today) == StatusBooked
	case FilterDrafts:
		return t.DisplayStatus(today) == StatusDraft
	}
	return false
}

// FilterTrips returns the trips matching f, preserving input order.
// The result is never nil.
func FilterTrips(trips []Trip, f StatusFilter, today time.Time) []Trip {
	out := make([]Trip, 0, len(trips))
	for _, t := range trips {
		if f.Matches(t, today) {
			out = append(out, t)
		}
	}
	return out
}

// SortTrips orders trips in place by key. compare is the string collation
// used for SortAlphabetical; it returns <0, 0, >0 like strings.Compare.
// The sort is stable so equal keys keep their input order.
func SortTrips(trips []Trip, key SortKey, compare func(a, b string) int) {
	var less func(i, j int) bool
	switch key {
	case SortUpcoming:
		less = func(i, j int) bool { return trips[i].StartDate.Before(trips[j].StartDate) }
	case SortAlphabetical:
		less = func(i, j int) bool { return compare(trips[i].Name, trips[j].Name) < 0 }
	default:
		less = func(i, j int) bool { return trips[i].UpdatedAt.After(trips[j].UpdatedAt) }
	}
	sort.SliceStable(trips, less)
}

// TripGroups is the bucketed "all trips" view. Buckets overlap: a shared
// upcoming trip is listed under both Upcoming and Shared.
type TripGroups struct {
	Upcoming   []Trip `json:"upcoming"`
	InProgress []Trip `json:"in_progress"`
	Past       []Trip `json:"past"`
	Drafts     []Trip `json:"drafts"`
	Shared     []Trip `json:"shared"`
}

// GroupTrips buckets trips by derived status and shared flag.
// Booked trips only appear under Shared, and only when shared.
func GroupTrips(trips []Trip, today time.Time) TripGroups {
	g := TripGroups{
		Upcoming:   []Trip{},
		InProgress: []Trip{},
		Past:       []Trip{},
		Drafts:     []Trip{},
		Shared:     []Trip{},
	}
	for _, t := range trips {
		switch t.DisplayStatus(today) {
		case StatusUpcoming:
			g.Upcoming = append(g.Upcoming, t)
		case StatusInProgress:
			g.InProgress = append(g.InProgress, t)
		case StatusPast:
			g.Past = append(g.Past, t)
		case StatusDraft:
			g.Drafts = append(g.Drafts, t)
		}
		if t.IsShared {
			g.Shared = append(g.Shared, t)
		}
	}
	return g
}
