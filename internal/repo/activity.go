package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripnest/backend/internal/domain"
)

// ActivityRepo defines the persistence operations for activities.
// Trip-scoped lookups join through trip_days so an activity id from another
// trip is reported as domain.ErrNotFound.
type ActivityRepo interface {
	// Create inserts an activity with the sort_order already assigned.
	Create(ctx context.Context, a domain.Activity) (domain.Activity, error)

	// GetByID returns one activity belonging to a day of the given trip.
	GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Activity, error)

	// ListByDay returns a day's activities ordered by sort_order.
	ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.Activity, error)

	// ListByTrip returns every activity of every day of the trip in one
	// query, ordered by day_number then sort_order.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error)

	// CountAfterDay counts activities on days numbered above dayNumber.
	CountAfterDay(ctx context.Context, tripID uuid.UUID, dayNumber int) (int, error)

	// Update overwrites the editable fields and bumps updated_at.
	// DayID and SortOrder are not changed; use MoveToDay.
	Update(ctx context.Context, a domain.Activity) (domain.Activity, error)

	// MoveToDay reassigns an activity to dayID at sortOrder.
	MoveToDay(ctx context.Context, id, dayID uuid.UUID, sortOrder int) (domain.Activity, error)

	// Delete removes an activity belonging to the given trip.
	// Returns domain.ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, tripID, id uuid.UUID) error
}

type pgActivityRepo struct {
	db db
}

// NewActivityRepo constructs an ActivityRepo backed by the provided db connection.
func NewActivityRepo(db db) ActivityRepo {
	return &pgActivityRepo{db: db}
}

const activityColumns = `a.id, a.day_id, a.category, a.name, a.description, a.location,
	a.start_time, a.end_time, a.cost, a.sort_order, a.created_at, a.updated_at`

func (r *pgActivityRepo) Create(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	const q = `
		INSERT INTO day_activities AS a (day_id, category, name, description, location,
		                                 start_time, end_time, cost, sort_order)
		VALUES (@day_id, @category, @name, @description, @location,
		        @start_time, @end_time, @cost, @sort_order)
		RETURNING ` + activityColumns

	args := activityArgs(a)
	args["day_id"] = a.DayID
	args["sort_order"] = a.SortOrder

	result, err := scanActivity(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Activity, error) {
	const q = `
		SELECT ` + activityColumns + `
		FROM day_activities a
		JOIN trip_days d ON d.id = a.day_id
		WHERE a.id = @id AND d.trip_id = @trip_id`

	result, err := scanActivity(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "trip_id": tripID}))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM day_activities a WHERE a.day_id = @day_id ORDER BY a.sort_order`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"day_id": dayID})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByDay: %w", err)
	}
	return collect(rows, "repo.ActivityRepo.ListByDay", scanActivity)
}

func (r *pgActivityRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	const q = `
		SELECT ` + activityColumns + `
		FROM day_activities a
		JOIN trip_days d ON d.id = a.day_id
		WHERE d.trip_id = @trip_id
		ORDER BY d.day_number, a.sort_order`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByTrip: %w", err)
	}
	return collect(rows, "repo.ActivityRepo.ListByTrip", scanActivity)
}

func (r *pgActivityRepo) CountAfterDay(ctx context.Context, tripID uuid.UUID, dayNumber int) (int, error) {
	const q = `
		SELECT count(*)
		FROM day_activities a
		JOIN trip_days d ON d.id = a.day_id
		WHERE d.trip_id = @trip_id AND d.day_number > @day_number`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "day_number": dayNumber}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.ActivityRepo.CountAfterDay: %w", err)
	}
	return n, nil
}

func (r *pgActivityRepo) Update(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	const q = `
		UPDATE day_activities AS a
		SET category    = @category,
		    name        = @name,
		    description = @description,
		    location    = @location,
		    start_time  = @start_time,
		    end_time    = @end_time,
		    cost        = @cost,
		    updated_at  = now()
		WHERE a.id = @id
		RETURNING ` + activityColumns

	args := activityArgs(a)
	args["id"] = a.ID

	result, err := scanActivity(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) MoveToDay(ctx context.Context, id, dayID uuid.UUID, sortOrder int) (domain.Activity, error) {
	const q = `
		UPDATE day_activities AS a
		SET day_id = @day_id, sort_order = @sort_order, updated_at = now()
		WHERE a.id = @id
		RETURNING ` + activityColumns

	result, err := scanActivity(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":         id,
		"day_id":     dayID,
		"sort_order": sortOrder,
	}))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.MoveToDay: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	const q = `
		DELETE FROM day_activities a
		USING trip_days d
		WHERE a.id = @id AND d.id = a.day_id AND d.trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func activityArgs(a domain.Activity) pgx.NamedArgs {
	return pgx.NamedArgs{
		"category":    string(a.Category),
		"name":        a.Name,
		"description": a.Description,
		"location":    a.Location,
		"start_time":  a.StartTime,
		"end_time":    a.EndTime,
		"cost":        a.Cost, // nil becomes NULL
	}
}

func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a         domain.Activity
		id, dayID pgtype.UUID
		category  string
	)
	err := s.Scan(&id, &dayID, &category, &a.Name, &a.Description, &a.Location,
		&a.StartTime, &a.EndTime, &a.Cost, &a.SortOrder, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Activity{}, noRows(err)
	}
	a.ID = toUUID(id)
	a.DayID = toUUID(dayID)
	a.Category = domain.ActivityCategory(category)
	return a, nil
}
