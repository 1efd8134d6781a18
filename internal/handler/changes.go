package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tripnest/backend/internal/service"
)

const (
	changeWriteWait    = 10 * time.Second
	changePingInterval = 10 * time.Second
	changePongWait     = 2 * changePingInterval
	changeReadLimit    = 512
)

// TripListEvent is one frame of the trip change feed. Every frame carries
// the caller's full trip list as of that change. The first frame has event
// "snapshot"; later ones name the change kind.
type TripListEvent struct {
	Event  string     `json:"event"`
	TripID *uuid.UUID `json:"trip_id,omitempty"`
	Fields []string   `json:"fields,omitempty"`
	Trips  []Trip     `json:"trips"`
}

// TripChanges handles GET /trips/changes, a WebSocket that pushes the
// caller's refreshed trip list after every committed change to their trips.
// Client frames are ignored.
func (s *Server) TripChanges(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.log.DebugContext(r.Context(), "trip feed upgrade", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	changes, err := s.Changes.Subscribe(ctx, uid)
	if err != nil {
		s.log.ErrorContext(ctx, "subscribe trip feed", "user_id", uid, "err", err)
		closeFeed(conn, websocket.CloseInternalServerErr, "feed unavailable")
		return
	}

	conn.SetReadLimit(changeReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(changePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(changePongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := s.pushTrips(ctx, conn, uid, TripListEvent{Event: "snapshot"}); err != nil {
		return
	}

	ping := time.NewTicker(changePingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			closeFeed(conn, websocket.CloseNormalClosure, "")
			return
		case c, ok := <-changes:
			if !ok {
				closeFeed(conn, websocket.CloseGoingAway, "server shutting down")
				return
			}
			id := c.TripID
			ev := TripListEvent{Event: string(c.Kind), TripID: &id, Fields: c.Fields}
			if err := s.pushTrips(ctx, conn, uid, ev); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(changeWriteWait)); err != nil {
				return
			}
		}
	}
}

// pushTrips refetches the user's trips and writes them in ev.
func (s *Server) pushTrips(ctx context.Context, conn *websocket.Conn, uid uuid.UUID, ev TripListEvent) error {
	trips, err := s.Trips.List(ctx, uid, service.ListOptions{})
	if err != nil {
		s.log.ErrorContext(ctx, "refresh trip feed", "user_id", uid, "err", err)
		closeFeed(conn, websocket.CloseInternalServerErr, "could not load trips")
		return err
	}
	ev.Trips = mapSlice(trips, tripToResponse)
	_ = conn.SetWriteDeadline(time.Now().Add(changeWriteWait))
	return conn.WriteJSON(ev)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.origins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func closeFeed(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(changeWriteWait))
}
