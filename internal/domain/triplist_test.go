package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripnest/backend/internal/domain"
)

// ---- fixtures --------------------------------------------------------------

var listToday = day(2025, 6, 10)

func listFixture() []domain.Trip {
	return []domain.Trip{
		{Name: "Zermatt", StartDate: day(2025, 7, 1), EndDate: day(2025, 7, 5), Status: domain.StatusUpcoming, UpdatedAt: day(2025, 5, 1)},
		{Name: "ávila", StartDate: day(2025, 6, 9), EndDate: day(2025, 6, 12), Status: domain.StatusUpcoming, IsShared: true, UpdatedAt: day(2025, 5, 3)},
		{Name: "Bordeaux", StartDate: day(2025, 1, 1), EndDate: day(2025, 1, 4), Status: domain.StatusPast, UpdatedAt: day(2025, 5, 2)},
		{Name: "Cairo", StartDate: day(2025, 9, 1), EndDate: day(2025, 9, 9), Status: domain.StatusDraft, UpdatedAt: day(2025, 4, 1)},
		{Name: "Dakar", StartDate: day(2025, 8, 1), EndDate: day(2025, 8, 3), Status: domain.StatusBooked, IsShared: true, UpdatedAt: day(2025, 5, 5)},
		{Name: "Edinburgh", StartDate: day(2025, 8, 10), EndDate: day(2025, 8, 12), Status: domain.StatusUpcoming, IsShared: true, UpdatedAt: day(2025, 3, 1)},
	}
}

func names(trips []domain.Trip) []string {
	out := make([]string, len(trips))
	for i, t := range trips {
		out[i] = t.Name
	}
	return out
}

// ---- filter ----------------------------------------------------------------

func TestFilterTrips(t *testing.T) {
	tests := []struct {
		filter domain.StatusFilter
		want   []string
	}{
		{domain.FilterAll, []string{"Zermatt", "ávila", "Bordeaux", "Cairo", "Dakar", "Edinburgh"}},
		{domain.FilterUpcoming, []string{"Zermatt", "Edinburgh"}},
		{domain.FilterPast, []string{"Bordeaux"}},
		{domain.FilterBooked, []string{"Dakar"}},
		{domain.FilterDrafts, []string{"Cairo"}},
		{domain.FilterShared, []string{"ávila", "Dakar", "Edinburgh"}},
	}
	for _, tc := range tests {
		t.Run(string(tc.filter), func(t *testing.T) {
			got := domain.FilterTrips(listFixture(), tc.filter, listToday)
			assert.Equal(t, tc.want, names(got))
		})
	}
}

func TestFilterTrips_SharedIgnoresStatus(t *testing.T) {
	got := domain.FilterTrips(listFixture(), domain.FilterShared, listToday)
	for _, trip := range got {
		assert.True(t, trip.IsShared)
	}
	statuses := map[domain.TripStatus]bool{}
	for _, trip := range got {
		statuses[trip.DisplayStatus(listToday)] = true
	}
	assert.Len(t, statuses, 3, "shared trips span in_progress, booked and upcoming")
}

func TestFilterTrips_EmptyInputReturnsEmptySlice(t *testing.T) {
	got := domain.FilterTrips(nil, domain.FilterAll, listToday)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseStatusFilter(t *testing.T) {
	f, err := domain.ParseStatusFilter("")
	require.NoError(t, err)
	assert.Equal(t, domain.FilterAll, f)

	f, err = domain.ParseStatusFilter("drafts")
	require.NoError(t, err)
	assert.Equal(t, domain.FilterDrafts, f)

	_, err = domain.ParseStatusFilter("archived")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- sort ------------------------------------------------------------------

func TestSortTrips_Recent(t *testing.T) {
	trips := listFixture()
	domain.SortTrips(trips, domain.SortRecent, strings.Compare)
	assert.Equal(t, []string{"Dakar", "ávila", "Bordeaux", "Zermatt", "Cairo", "Edinburgh"}, names(trips))
}

func TestSortTrips_Upcoming(t *testing.T) {
	trips := listFixture()
	domain.SortTrips(trips, domain.SortUpcoming, strings.Compare)
	for i := 1; i < len(trips); i++ {
		assert.False(t, trips[i].StartDate.Before(trips[i-1].StartDate), "start dates must ascend")
	}
}

func TestSortTrips_AlphabeticalUsesCompare(t *testing.T) {
	trips := listFixture()
	// Case-folding compare stands in for a locale collator here.
	fold := func(a, b string) int { return strings.Compare(strings.ToLower(a), strings.ToLower(b)) }
	domain.SortTrips(trips, domain.SortAlphabetical, fold)
	assert.Equal(t, []string{"Bordeaux", "Cairo", "Dakar", "Edinburgh", "Zermatt", "ávila"}, names(trips))
}

func TestParseSortKey(t *testing.T) {
	k, err := domain.ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, domain.SortRecent, k)

	_, err = domain.ParseSortKey("price")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- group -----------------------------------------------------------------

func TestGroupTrips_NonExclusive(t *testing.T) {
	g := domain.GroupTrips(listFixture(), listToday)

	assert.Equal(t, []string{"Zermatt", "Edinburgh"}, names(g.Upcoming))
	assert.Equal(t, []string{"ávila"}, names(g.InProgress))
	assert.Equal(t, []string{"Bordeaux"}, names(g.Past))
	assert.Equal(t, []string{"Cairo"}, names(g.Drafts))
	assert.Equal(t, []string{"ávila", "Dakar", "Edinburgh"}, names(g.Shared))

	// Edinburgh is shared and upcoming: listed in both buckets.
	assert.Contains(t, names(g.Upcoming), "Edinburgh")
	assert.Contains(t, names(g.Shared), "Edinburgh")
}

func TestGroupTrips_EmptyBucketsAreNonNil(t *testing.T) {
	g := domain.GroupTrips(nil, time.Now())
	assert.NotNil(t, g.Upcoming)
	assert.NotNil(t, g.InProgress)
	assert.NotNil(t, g.Past)
	assert.NotNil(t, g.Drafts)
	assert.NotNil(t, g.Shared)
}
