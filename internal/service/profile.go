package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/repo"
)

const (
	maxDisplayName = 80
	maxBio         = 1000
)

// ProfileService reads and edits the caller's own profile.
type ProfileService struct {
	repo repo.ProfileRepo
}

// NewProfileService constructs a ProfileService backed by the provided ProfileRepo.
func NewProfileService(r repo.ProfileRepo) *ProfileService {
	return &ProfileService{repo: r}
}

// Get returns the user's profile. A user who never saved one gets an empty
// profile carrying only their ID.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Profile{ID: userID}, nil
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.ProfileService.Get: %w", err)
	}
	return p, nil
}

// Update replaces the user's profile.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, p domain.Profile) (domain.Profile, error) {
	p.ID = userID
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.HomeCity = strings.TrimSpace(p.HomeCity)

	switch {
	case utf8.RuneCountInString(p.DisplayName) > maxDisplayName:
		return domain.Profile{}, fmt.Errorf("%w: display_name exceeds %d characters", domain.ErrValidation, maxDisplayName)
	case utf8.RuneCountInString(p.Bio) > maxBio:
		return domain.Profile{}, fmt.Errorf("%w: bio exceeds %d characters", domain.ErrValidation, maxBio)
	}

	saved, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.ProfileService.Update: %w", err)
	}
	return saved, nil
}
