package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/service"
)

// Trip is the JSON shape of a trip. Status is the display status.
type Trip struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Destinations []string           `json:"destinations"`
	StartDate    openapi_types.Date `json:"start_date"`
	EndDate      openapi_types.Date `json:"end_date"`
	Travelers    int                `json:"travelers"`
	BudgetTier   *string            `json:"budget_tier,omitempty"`
	Status       string             `json:"status"`
	IsShared     bool               `json:"is_shared"`
	HeroImageURL *string            `json:"hero_image_url,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// TripGroups is the bucketed overview.
type TripGroups struct {
	Upcoming   []Trip `json:"upcoming"`
	InProgress []Trip `json:"in_progress"`
	Past       []Trip `json:"past"`
	Drafts     []Trip `json:"drafts"`
	Shared     []Trip `json:"shared"`
}

// CreateTripRequest is the body of POST /trips. Travelers defaults to 1 and
// status to upcoming.
type CreateTripRequest struct {
	Name         string              `json:"name"`
	Destinations []string            `json:"destinations"`
	StartDate    *openapi_types.Date `json:"start_date"`
	EndDate      *openapi_types.Date `json:"end_date"`
	Travelers    int                 `json:"travelers"`
	BudgetTier   string              `json:"budget_tier"`
	Status       string              `json:"status"`
	IsShared     bool                `json:"is_shared"`
	HeroImageURL string              `json:"hero_image_url"`
}

// UpdateTripRequest is the body of PATCH /trips/{tripId}. Omitted fields
// are left unchanged.
type UpdateTripRequest struct {
	Name         *string             `json:"name"`
	Destinations *[]string           `json:"destinations"`
	StartDate    *openapi_types.Date `json:"start_date"`
	EndDate      *openapi_types.Date `json:"end_date"`
	Travelers    *int                `json:"travelers"`
	BudgetTier   *string             `json:"budget_tier"`
	Status       *string             `json:"status"`
	IsShared     *bool               `json:"is_shared"`
	HeroImageURL *string             `json:"hero_image_url"`
}

// RenameTripRequest is the body of PUT /trips/{tripId}/name.
type RenameTripRequest struct {
	Name string `json:"name"`
}

// ListTrips handles GET /trips.
// Supports ?filter= (all|upcoming|past|booked|drafts|shared) and
// ?sort= (recent|upcoming|alphabetical).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var filter, sort *string
	if !queryParam(w, r, "filter", &filter) || !queryParam(w, r, "sort", &sort) {
		return
	}
	opts, err := listOptions(filter, sort)
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}

	trips, err := s.Trips.List(r.Context(), uid, opts)
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(trips, tripToResponse))
}

// GroupTrips handles GET /trips/groups.
func (s *Server) GroupTrips(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	g, err := s.Trips.Groups(r.Context(), uid)
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, TripGroups{
		Upcoming:   mapSlice(g.Upcoming, tripToResponse),
		InProgress: mapSlice(g.InProgress, tripToResponse),
		Past:       mapSlice(g.Past, tripToResponse),
		Drafts:     mapSlice(g.Drafts, tripToResponse),
		Shared:     mapSlice(g.Shared, tripToResponse),
	})
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var body CreateTripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.Trips.Create(r.Context(), uid, requestToTrip(body))
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	trip, err := s.Trips.Get(r.Context(), uid, id)
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PATCH /trips/{tripId}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var body UpdateTripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	updated, err := s.Trips.Update(r.Context(), uid, id, requestToTripPatch(body))
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// RenameTrip handles PUT /trips/{tripId}/name.
func (s *Server) RenameTrip(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var body RenameTripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	renamed, err := s.Trips.Rename(r.Context(), uid, id, body.Name)
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(renamed))
}

// DuplicateTrip handles POST /trips/{tripId}/duplicate.
func (s *Server) DuplicateTrip(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	cp, err := s.Trips.Duplicate(r.Context(), uid, id)
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(cp))
}

// DeleteTrip handles DELETE /trips/{tripId}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	if err := s.Trips.Delete(r.Context(), uid, id); err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func listOptions(filter, sort *string) (service.ListOptions, error) {
	var opts service.ListOptions
	var err error
	if opts.Filter, err = domain.ParseStatusFilter(deref(filter)); err != nil {
		return opts, err
	}
	if opts.Sort, err = domain.ParseSortKey(deref(sort)); err != nil {
		return opts, err
	}
	return opts, nil
}

// requestToTrip converts a CreateTripRequest body into a domain.Trip.
// Missing dates stay zero and are rejected by the service.
func requestToTrip(body CreateTripRequest) domain.Trip {
	t := domain.Trip{
		Name:         body.Name,
		Destinations: body.Destinations,
		Travelers:    body.Travelers,
		BudgetTier:   domain.BudgetTier(body.BudgetTier),
		Status:       domain.TripStatus(body.Status),
		IsShared:     body.IsShared,
		HeroImageURL: body.HeroImageURL,
	}
	if body.StartDate != nil {
		t.StartDate = body.StartDate.Time
	}
	if body.EndDate != nil {
		t.EndDate = body.EndDate.Time
	}
	return t
}

func requestToTripPatch(body UpdateTripRequest) domain.TripPatch {
	p := domain.TripPatch{
		Name:         body.Name,
		Destinations: body.Destinations,
		Travelers:    body.Travelers,
		IsShared:     body.IsShared,
		HeroImageURL: body.HeroImageURL,
	}
	if body.StartDate != nil {
		p.StartDate = &body.StartDate.Time
	}
	if body.EndDate != nil {
		p.EndDate = &body.EndDate.Time
	}
	if body.BudgetTier != nil {
		b := domain.BudgetTier(*body.BudgetTier)
		p.BudgetTier = &b
	}
	if body.Status != nil {
		st := domain.TripStatus(*body.Status)
		p.Status = &st
	}
	return p
}

// tripToResponse converts a domain.Trip into its JSON shape.
func tripToResponse(t domain.Trip) Trip {
	resp := Trip{
		ID:           t.ID,
		Name:         t.Name,
		Destinations: t.Destinations,
		StartDate:    openapi_types.Date{Time: t.StartDate},
		EndDate:      openapi_types.Date{Time: t.EndDate},
		Travelers:    t.Travelers,
		Status:       string(t.Status),
		IsShared:     t.IsShared,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if resp.Destinations == nil {
		resp.Destinations = []string{}
	}
	if t.BudgetTier != "" {
		b := string(t.BudgetTier)
		resp.BudgetTier = &b
	}
	if t.HeroImageURL != "" {
		resp.HeroImageURL = &t.HeroImageURL
	}
	return resp
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
