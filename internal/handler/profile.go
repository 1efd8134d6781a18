package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
)

// Profile is the JSON shape of a user profile.
type Profile struct {
	ID          uuid.UUID  `json:"id"`
	DisplayName string     `json:"display_name"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	Bio         *string    `json:"bio,omitempty"`
	HomeCity    *string    `json:"home_city,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// UpdateProfileRequest is the body of PUT /profiles/me. It replaces the
// whole profile.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
	HomeCity    string `json:"home_city"`
}

// GetProfile handles GET /profiles/me.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, err := s.Profiles.Get(r.Context(), uid)
	if err != nil {
		s.serviceError(w, r, err, "profile")
		return
	}
	writeJSON(w, http.StatusOK, profileToResponse(p))
}

// UpdateProfile handles PUT /profiles/me.
func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var body UpdateProfileRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	p, err := s.Profiles.Update(r.Context(), uid, domain.Profile{
		DisplayName: body.DisplayName,
		AvatarURL:   body.AvatarURL,
		Bio:         body.Bio,
		HomeCity:    body.HomeCity,
	})
	if err != nil {
		s.serviceError(w, r, err, "profile")
		return
	}
	writeJSON(w, http.StatusOK, profileToResponse(p))
}

func profileToResponse(p domain.Profile) Profile {
	resp := Profile{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		AvatarURL:   optional(p.AvatarURL),
		Bio:         optional(p.Bio),
		HomeCity:    optional(p.HomeCity),
	}
	if !p.UpdatedAt.IsZero() {
		resp.UpdatedAt = &p.UpdatedAt
	}
	return resp
}
