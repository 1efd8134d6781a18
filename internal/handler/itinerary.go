package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tripnest/backend/internal/domain"
)

// Day is the JSON shape of one itinerary day with its ordered activities.
type Day struct {
	ID         uuid.UUID          `json:"id"`
	DayNumber  int                `json:"day_number"`
	Date       openapi_types.Date `json:"date"`
	Title      *string            `json:"title,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
	Activities []Activity         `json:"activities"`
}

// Activity is the JSON shape of an activity.
type Activity struct {
	ID          uuid.UUID `json:"id"`
	DayID       uuid.UUID `json:"day_id"`
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	StartTime   *string   `json:"start_time,omitempty"`
	EndTime     *string   `json:"end_time,omitempty"`
	Cost        *float64  `json:"cost,omitempty"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateActivityRequest is the body of POST /trips/{tripId}/days/{dayId}/activities.
// Category defaults to "other".
type CreateActivityRequest struct {
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Cost        *float64 `json:"cost"`
}

// UpdateActivityRequest is the body of PATCH /trips/{tripId}/activities/{activityId}.
// Omitted fields are unchanged; "cost": null clears the cost.
type UpdateActivityRequest struct {
	Category    *string       `json:"category"`
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Location    *string       `json:"location"`
	StartTime   *string       `json:"start_time"`
	EndTime     *string       `json:"end_time"`
	Cost        nullableFloat `json:"cost"`
}

// MoveActivityRequest is the body of POST /trips/{tripId}/activities/{activityId}/move.
type MoveActivityRequest struct {
	DayID uuid.UUID `json:"day_id"`
}

// nullableFloat tells an absent JSON field from an explicit null.
type nullableFloat struct {
	Set   bool
	Null  bool
	Value float64
}

func (n *nullableFloat) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(b, []byte("null")) {
		n.Null = true
		return nil
	}
	return json.Unmarshal(b, &n.Value)
}

// GetItinerary handles GET /trips/{tripId}/days.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	uid, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	days, err := s.Itinerary.Itinerary(r.Context(), uid, tripID)
	s.writeItinerary(w, r, days, err, "trip")
}

// AddActivity handles POST /trips/{tripId}/days/{dayId}/activities.
func (s *Server) AddActivity(w http.ResponseWriter, r *http.Request) {
	uid, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	dayID, ok := pathUUID(w, r, "dayId")
	if !ok {
		return
	}
	var body CreateActivityRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	days, err := s.Itinerary.AddActivity(r.Context(), uid, tripID, dayID, domain.Activity{
		Category:    domain.ActivityCategory(body.Category),
		Name:        body.Name,
		Description: body.Description,
		Location:    body.Location,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Cost:        body.Cost,
	})
	if err != nil {
		s.serviceError(w, r, err, "day")
		return
	}
	writeJSON(w, http.StatusCreated, mapSlice(days, dayToResponse))
}

// UpdateActivity handles PATCH /trips/{tripId}/activities/{activityId}.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	uid, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityId")
	if !ok {
		return
	}
	var body UpdateActivityRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	days, err := s.Itinerary.UpdateActivity(r.Context(), uid, tripID, activityID, requestToActivityPatch(body))
	s.writeItinerary(w, r, days, err, "activity")
}

// DeleteActivity handles DELETE /trips/{tripId}/activities/{activityId}.
// Deleting an activity that no longer exists still succeeds.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	uid, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityId")
	if !ok {
		return
	}
	days, err := s.Itinerary.DeleteActivity(r.Context(), uid, tripID, activityID)
	s.writeItinerary(w, r, days, err, "trip")
}

// MoveActivity handles POST /trips/{tripId}/activities/{activityId}/move.
func (s *Server) MoveActivity(w http.ResponseWriter, r *http.Request) {
	uid, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityId")
	if !ok {
		return
	}
	var body MoveActivityRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.DayID == uuid.Nil {
		requestError(w, "day_id is required")
		return
	}

	days, err := s.Itinerary.MoveActivity(r.Context(), uid, tripID, activityID, body.DayID)
	s.writeItinerary(w, r, days, err, "activity")
}

// tripScope resolves the caller and the {tripId} path parameter.
func tripScope(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	uid, ok := userID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return uid, tripID, true
}

func (s *Server) writeItinerary(w http.ResponseWriter, r *http.Request, days []domain.Day, err error, resource string) {
	if err != nil {
		s.serviceError(w, r, err, resource)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(days, dayToResponse))
}

// --- mapping helpers --------------------------------------------------------

func requestToActivityPatch(body UpdateActivityRequest) domain.ActivityPatch {
	p := domain.ActivityPatch{
		Name:        body.Name,
		Description: body.Description,
		Location:    body.Location,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
	}
	if body.Category != nil {
		c := domain.ActivityCategory(*body.Category)
		p.Category = &c
	}
	switch {
	case body.Cost.Null:
		p.ClearCost = true
	case body.Cost.Set:
		p.Cost = &body.Cost.Value
	}
	return p
}

func dayToResponse(d domain.Day) Day {
	return Day{
		ID:         d.ID,
		DayNumber:  d.DayNumber,
		Date:       openapi_types.Date{Time: d.Date},
		Title:      optional(d.Title),
		Notes:      optional(d.Notes),
		Activities: mapSlice(d.Activities, activityToResponse),
	}
}

func activityToResponse(a domain.Activity) Activity {
	return Activity{
		ID:          a.ID,
		DayID:       a.DayID,
		Category:    string(a.Category),
		Name:        a.Name,
		Description: optional(a.Description),
		Location:    optional(a.Location),
		StartTime:   optional(a.StartTime),
		EndTime:     optional(a.EndTime),
		Cost:        a.Cost,
		SortOrder:   a.SortOrder,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// optional returns nil for an empty string so it is omitted from JSON.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
