package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripnest/backend/internal/domain"
)

// ProfileRepo persists user profiles, keyed by user ID.
type ProfileRepo interface {
	// Get returns the profile or domain.ErrNotFound if the user never saved one.
	Get(ctx context.Context, userID uuid.UUID) (domain.Profile, error)
	// Upsert creates or replaces the profile and returns the stored row.
	Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error)
}

type pgProfileRepo struct {
	db db
}

// NewProfileRepo constructs a ProfileRepo backed by the provided db connection.
func NewProfileRepo(db db) ProfileRepo {
	return &pgProfileRepo{db: db}
}

const profileColumns = `id, display_name, avatar_url, bio, home_city, created_at, updated_at`

func (r *pgProfileRepo) Get(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE id = @id`

	p, err := scanProfile(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": userID}))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("repo.ProfileRepo.Get: %w", err)
	}
	return p, nil
}

func (r *pgProfileRepo) Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	const q = `
		INSERT INTO profiles (id, display_name, avatar_url, bio, home_city)
		VALUES (@id, @display_name, @avatar_url, @bio, @home_city)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    avatar_url   = EXCLUDED.avatar_url,
		    bio          = EXCLUDED.bio,
		    home_city    = EXCLUDED.home_city,
		    updated_at   = now()
		RETURNING ` + profileColumns

	result, err := scanProfile(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":           p.ID,
		"display_name": p.DisplayName,
		"avatar_url":   p.AvatarURL,
		"bio":          p.Bio,
		"home_city":    p.HomeCity,
	}))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("repo.ProfileRepo.Upsert: %w", err)
	}
	return result, nil
}

func scanProfile(s scanner) (domain.Profile, error) {
	var (
		p  domain.Profile
		id pgtype.UUID
	)
	if err := s.Scan(&id, &p.DisplayName, &p.AvatarURL, &p.Bio, &p.HomeCity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Profile{}, noRows(err)
	}
	p.ID = toUUID(id)
	return p, nil
}
