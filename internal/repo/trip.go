package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripnest/backend/internal/domain"
)

// TripRepo defines the persistence operations for Trips.
// Every read and write is scoped to the owning user: a trip owned by someone
// else is reported as domain.ErrNotFound.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record with
	// id, created_at, and updated_at populated.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves one trip. Returns domain.ErrNotFound if the user owns
	// no trip with that ID.
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error)

	// ListByUser returns all of a user's trips, most recently updated first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)

	// Update overwrites the mutable fields of an existing trip, bumps
	// updated_at, and returns the updated record.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip; its days and activities cascade.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, user_id, name, destinations, start_date, end_date, travelers,
	budget_tier, status, is_shared, hero_image_url, created_at, updated_at`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (user_id, name, destinations, start_date, end_date, travelers,
		                   budget_tier, status, is_shared, hero_image_url)
		VALUES (@user_id, @name, @destinations, @start_date, @end_date, @travelers,
		        @budget_tier, @status, @is_shared, @hero_image_url)
		RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, q, tripArgs(trip))
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id AND user_id = @user_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE user_id = @user_id ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByUser: %w", err)
	}
	return collect(rows, "repo.TripRepo.ListByUser", scanTrip)
}

func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET name           = @name,
		    destinations   = @destinations,
		    start_date     = @start_date,
		    end_date       = @end_date,
		    travelers      = @travelers,
		    budget_tier    = @budget_tier,
		    status         = @status,
		    is_shared      = @is_shared,
		    hero_image_url = @hero_image_url,
		    updated_at     = now()
		WHERE id = @id AND user_id = @user_id
		RETURNING ` + tripColumns

	args := tripArgs(trip)
	args["id"] = trip.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func tripArgs(t domain.Trip) pgx.NamedArgs {
	dest := t.Destinations
	if dest == nil {
		dest = []string{}
	}
	return pgx.NamedArgs{
		"user_id":        t.UserID,
		"name":           t.Name,
		"destinations":   dest,
		"start_date":     t.StartDate,
		"end_date":       t.EndDate,
		"travelers":      t.Travelers,
		"budget_tier":    string(t.BudgetTier),
		"status":         string(t.Status),
		"is_shared":      t.IsShared,
		"hero_image_url": t.HeroImageURL,
	}
}

// scanTrip maps one row selected with tripColumns into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t              domain.Trip
		id, userID     pgtype.UUID
		start, end     pgtype.Date
		budget, status string
	)
	err := s.Scan(&id, &userID, &t.Name, &t.Destinations, &start, &end, &t.Travelers,
		&budget, &status, &t.IsShared, &t.HeroImageURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Trip{}, noRows(err)
	}
	t.ID = toUUID(id)
	t.UserID = toUUID(userID)
	t.StartDate = start.Time
	t.EndDate = end.Time
	t.BudgetTier = domain.BudgetTier(budget)
	t.Status = domain.TripStatus(status)
	if t.Destinations == nil {
		t.Destinations = []string{}
	}
	return t, nil
}
