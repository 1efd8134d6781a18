package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/handler"
	"github.com/tripnest/backend/internal/service"
)

// chanSubscriber hands out one channel the test writes changes into.
type chanSubscriber struct {
	ch  chan domain.TripChange
	err error
}

func (s *chanSubscriber) Subscribe(_ context.Context, userID uuid.UUID) (<-chan domain.TripChange, error) {
	if userID != testUser {
		return nil, errors.New("unexpected user")
	}
	return s.ch, s.err
}

var _ handler.ChangeSubscriber = (*chanSubscriber)(nil)

// feedFixture serves the change feed over a real listener and counts how
// often the trip list is reloaded.
type feedFixture struct {
	srv   *httptest.Server
	sub   *chanSubscriber
	loads atomic.Int32
}

func newFeedFixture(t *testing.T, opts ...handler.Option) *feedFixture {
	t.Helper()
	f := &feedFixture{sub: &chanSubscriber{ch: make(chan domain.TripChange, 1)}}
	trips := &mockTripServicer{
		list: func(_ context.Context, _ uuid.UUID, opts service.ListOptions) ([]domain.Trip, error) {
			assert.Equal(t, service.ListOptions{}, opts)
			n := f.loads.Add(1)
			trip := tripFixture()
			trip.Travelers = int(n)
			return []domain.Trip{trip}, nil
		},
	}
	f.srv = httptest.NewServer(newHTTPHandler(handler.Services{Trips: trips, Changes: f.sub}, opts...))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *feedFixture) dial(t *testing.T, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/trips/changes"
	return websocket.DefaultDialer.Dial(url, header)
}

func readEvent(t *testing.T, conn *websocket.Conn) handler.TripListEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev handler.TripListEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestTripChanges_SnapshotThenChanges(t *testing.T) {
	f := newFeedFixture(t)
	conn, _, err := f.dial(t, nil)
	require.NoError(t, err)
	defer conn.Close()

	snap := readEvent(t, conn)
	assert.Equal(t, "snapshot", snap.Event)
	assert.Nil(t, snap.TripID)
	require.Len(t, snap.Trips, 1)
	assert.Equal(t, 1, snap.Trips[0].Travelers)

	tripID := uuid.New()
	f.sub.ch <- domain.TripChange{Kind: domain.ChangeUpdated, TripID: tripID, UserID: testUser, Fields: []string{"name"}}

	ev := readEvent(t, conn)
	assert.Equal(t, "updated", ev.Event)
	require.NotNil(t, ev.TripID)
	assert.Equal(t, tripID, *ev.TripID)
	assert.Equal(t, []string{"name"}, ev.Fields)
	require.Len(t, ev.Trips, 1)
	assert.Equal(t, 2, ev.Trips[0].Travelers, "each change reloads the list")
}

func TestTripChanges_ClosesWhenFeedEnds(t *testing.T) {
	f := newFeedFixture(t)
	conn, _, err := f.dial(t, nil)
	require.NoError(t, err)
	defer conn.Close()
	readEvent(t, conn)

	close(f.sub.ch)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestTripChanges_SubscribeFailure(t *testing.T) {
	f := newFeedFixture(t)
	f.sub.err = errors.New("broker down")
	conn, _, err := f.dial(t, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr), "got %v", err)
	assert.Zero(t, f.loads.Load())
}

func TestTripChanges_Origin(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		origin  string
		ok      bool
	}{
		{name: "no origin header", allowed: nil, origin: "", ok: true},
		{name: "listed", allowed: []string{"https://app.tripnest.io"}, origin: "https://APP.tripnest.io", ok: true},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://evil.example", ok: true},
		{name: "not listed", allowed: []string{"https://app.tripnest.io"}, origin: "https://evil.example", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFeedFixture(t, handler.WithAllowedOrigins(tc.allowed))
			header := http.Header{}
			if tc.origin != "" {
				header.Set("Origin", tc.origin)
			}

			conn, resp, err := f.dial(t, header)
			if tc.ok {
				require.NoError(t, err)
				conn.Close()
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}
