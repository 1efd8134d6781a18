package changes_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripnest/backend/internal/changes"
	"github.com/tripnest/backend/internal/domain"
)

func baseTrip() domain.Trip {
	return domain.Trip{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Name:         "Kyoto",
		Destinations: []string{"Kyoto", "Nara"},
		StartDate:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 4, 6, 0, 0, 0, 0, time.UTC),
		Travelers:    2,
		Status:       domain.StatusUpcoming,
		UpdatedAt:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFields_NamesChangedTripFields(t *testing.T) {
	d, err := changes.New()
	require.NoError(t, err)

	before := baseTrip()
	after := before
	after.Name = "Kyoto & Osaka"
	after.Destinations = []string{"Kyoto", "Nara", "Osaka"}
	after.EndDate = before.EndDate.AddDate(0, 0, 2)
	after.UpdatedAt = time.Now() // tagged diff:"-"

	got, err := d.Fields(before, after)
	require.NoError(t, err)
	assert.Equal(t, []string{"destinations", "end_date", "name"}, got)
}

func TestFields_NoChange(t *testing.T) {
	d, err := changes.New()
	require.NoError(t, err)

	trip := baseTrip()
	got, err := d.Fields(trip, trip)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFields_UUIDComparedAsLeaf(t *testing.T) {
	type ref struct {
		Owner uuid.UUID `diff:"owner"`
	}
	d, err := changes.New()
	require.NoError(t, err)

	got, err := d.Fields(ref{Owner: uuid.New()}, ref{Owner: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, got)
}
