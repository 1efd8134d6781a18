package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/repo"
)

// seedTrip creates a three-day trip with its days and returns both.
func seedTrip(t *testing.T, repos repo.Repos) (domain.Trip, []domain.Day) {
	t.Helper()
	ctx := context.Background()

	trip, err := repos.Trips.Create(ctx, tripFixture(uuid.New()))
	require.NoError(t, err)
	days, err := repos.Days.CreateMany(ctx, domain.PlanDays(trip.ID, trip.StartDate, trip.EndDate))
	require.NoError(t, err)
	require.Len(t, days, 3)
	return trip, days
}

func activityFixture(dayID uuid.UUID, name string, order int) domain.Activity {
	return domain.Activity{
		DayID:     dayID,
		Category:  domain.CategoryAttraction,
		Name:      name,
		SortOrder: order,
	}
}

func TestDayRepo_CreateMany_NumbersAndDates(t *testing.T) {
	repos := newTestRepos(t)
	trip, days := seedTrip(t, repos)

	for i, d := range days {
		assert.Equal(t, trip.ID, d.TripID)
		assert.Equal(t, i+1, d.DayNumber)
		assert.True(t, d.Date.Equal(trip.StartDate.AddDate(0, 0, i)), "day %d date", i+1)
	}
}

func TestDayRepo_GetByID_ScopedToTrip(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	_, days := seedTrip(t, repos)
	other, _ := seedTrip(t, repos)

	_, err := repos.Days.GetByID(ctx, other.ID, days[0].ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDayRepo_DeleteAfter(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	trip, _ := seedTrip(t, repos)

	n, err := repos.Days.DeleteAfter(ctx, trip.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := repos.Days.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, 1, left[0].DayNumber)
}

func TestDayRepo_LockAfter(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	trip, _ := seedTrip(t, repos)

	n, err := repos.Days.LockAfter(ctx, trip.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repos.Days.LockAfter(ctx, trip.ID, 3)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestActivityRepo_DeleteLeavesGap(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	trip, days := seedTrip(t, repos)

	var created []domain.Activity
	for i, name := range []string{"Belém Tower", "Jerónimos", "LX Factory"} {
		a, err := repos.Activities.Create(ctx, activityFixture(days[0].ID, name, i))
		require.NoError(t, err)
		created = append(created, a)
	}

	require.NoError(t, repos.Activities.Delete(ctx, trip.ID, created[1].ID))

	left, err := repos.Activities.ListByDay(ctx, days[0].ID)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, 0, left[0].SortOrder)
	assert.Equal(t, 2, left[1].SortOrder)
}

func TestActivityRepo_Delete_OtherTripIsNotFound(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	_, days := seedTrip(t, repos)
	other, _ := seedTrip(t, repos)

	a, err := repos.Activities.Create(ctx, activityFixture(days[0].ID, "Tram 28", 0))
	require.NoError(t, err)

	err = repos.Activities.Delete(ctx, other.ID, a.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestActivityRepo_MoveToDay(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	trip, days := seedTrip(t, repos)

	a, err := repos.Activities.Create(ctx, activityFixture(days[0].ID, "Sintra", 0))
	require.NoError(t, err)
	_, err = repos.Activities.Create(ctx, activityFixture(days[1].ID, "Cascais", 0))
	require.NoError(t, err)

	moved, err := repos.Activities.MoveToDay(ctx, a.ID, days[1].ID, 1)
	require.NoError(t, err)
	assert.Equal(t, days[1].ID, moved.DayID)
	assert.Equal(t, 1, moved.SortOrder)

	all, err := repos.Activities.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Cascais", all[0].Name)
	assert.Equal(t, "Sintra", all[1].Name)
}

func TestActivityRepo_UpdateAndCost(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	trip, days := seedTrip(t, repos)

	a, err := repos.Activities.Create(ctx, activityFixture(days[2].ID, "Dinner", 0))
	require.NoError(t, err)
	assert.Nil(t, a.Cost)

	cost := 42.5
	a.Cost = &cost
	a.Category = domain.CategoryRestaurant
	updated, err := repos.Activities.Update(ctx, a)
	require.NoError(t, err)
	require.NotNil(t, updated.Cost)
	assert.InDelta(t, 42.5, *updated.Cost, 0.001)
	assert.Equal(t, domain.CategoryRestaurant, updated.Category)

	n, err := repos.Activities.CountAfterDay(ctx, trip.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
