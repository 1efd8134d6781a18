package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripnest/backend/internal/domain"
)

// DayRepo defines the persistence operations for a trip's days.
// Callers verify trip ownership before touching days.
type DayRepo interface {
	// CreateMany inserts all days in one statement and returns them ordered
	// by day_number.
	CreateMany(ctx context.Context, days []domain.Day) ([]domain.Day, error)

	// ListByTrip returns a trip's days ordered by day_number. Activities are
	// not populated.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error)

	// GetByID returns one day of the given trip.
	// Returns domain.ErrNotFound if the day does not belong to that trip.
	GetByID(ctx context.Context, tripID, dayID uuid.UUID) (domain.Day, error)

	// LockByID is GetByID with a row lock held until the surrounding
	// transaction ends. Concurrent appends to the same day serialize on it.
	LockByID(ctx context.Context, tripID, dayID uuid.UUID) (domain.Day, error)

	// UpdateDate moves one day to a new calendar date.
	UpdateDate(ctx context.Context, dayID uuid.UUID, date time.Time) error

	// LockAfter row-locks every day of the trip numbered above dayNumber until
	// the surrounding transaction ends and returns how many it locked.
	// Appends and moves into those days wait on the lock.
	LockAfter(ctx context.Context, tripID uuid.UUID, dayNumber int) (int, error)

	// DeleteAfter removes every day of the trip numbered above dayNumber and
	// returns how many were removed.
	DeleteAfter(ctx context.Context, tripID uuid.UUID, dayNumber int) (int64, error)
}

type pgDayRepo struct {
	db db
}

// NewDayRepo constructs a DayRepo backed by the provided db connection.
func NewDayRepo(db db) DayRepo {
	return &pgDayRepo{db: db}
}

const dayColumns = `id, trip_id, day_number, date, title, notes, created_at`

func (r *pgDayRepo) CreateMany(ctx context.Context, days []domain.Day) ([]domain.Day, error) {
	if len(days) == 0 {
		return nil, nil
	}

	const q = `
		WITH ins AS (
			INSERT INTO trip_days (trip_id, day_number, date, title, notes)
			SELECT u.trip_id, u.day_number, u.date, u.title, u.notes
			FROM unnest(@trip_ids::uuid[], @numbers::int[], @dates::date[], @titles::text[], @notes::text[])
			     AS u(trip_id, day_number, date, title, notes)
			RETURNING ` + dayColumns + `
		)
		SELECT ` + dayColumns + ` FROM ins ORDER BY trip_id, day_number`

	var (
		tripIDs = make([]uuid.UUID, len(days))
		numbers = make([]int32, len(days))
		dates   = make([]time.Time, len(days))
		titles  = make([]string, len(days))
		notes   = make([]string, len(days))
	)
	for i, d := range days {
		tripIDs[i] = d.TripID
		numbers[i] = int32(d.DayNumber)
		dates[i] = d.Date
		titles[i] = d.Title
		notes[i] = d.Notes
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"trip_ids": tripIDs,
		"numbers":  numbers,
		"dates":    dates,
		"titles":   titles,
		"notes":    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.DayRepo.CreateMany: %w", err)
	}
	return collect(rows, "repo.DayRepo.CreateMany", scanDay)
}

func (r *pgDayRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error) {
	const q = `SELECT ` + dayColumns + ` FROM trip_days WHERE trip_id = @trip_id ORDER BY day_number`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.DayRepo.ListByTrip: %w", err)
	}
	return collect(rows, "repo.DayRepo.ListByTrip", scanDay)
}

func (r *pgDayRepo) GetByID(ctx context.Context, tripID, dayID uuid.UUID) (domain.Day, error) {
	const q = `SELECT ` + dayColumns + ` FROM trip_days WHERE id = @id AND trip_id = @trip_id`

	d, err := scanDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": dayID, "trip_id": tripID}))
	if err != nil {
		return domain.Day{}, fmt.Errorf("repo.DayRepo.GetByID: %w", err)
	}
	return d, nil
}

func (r *pgDayRepo) LockByID(ctx context.Context, tripID, dayID uuid.UUID) (domain.Day, error) {
	const q = `SELECT ` + dayColumns + ` FROM trip_days WHERE id = @id AND trip_id = @trip_id FOR UPDATE`

	d, err := scanDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": dayID, "trip_id": tripID}))
	if err != nil {
		return domain.Day{}, fmt.Errorf("repo.DayRepo.LockByID: %w", err)
	}
	return d, nil
}

func (r *pgDayRepo) UpdateDate(ctx context.Context, dayID uuid.UUID, date time.Time) error {
	const q = `UPDATE trip_days SET date = @date WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": dayID, "date": date})
	if err != nil {
		return fmt.Errorf("repo.DayRepo.UpdateDate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DayRepo.UpdateDate: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgDayRepo) LockAfter(ctx context.Context, tripID uuid.UUID, dayNumber int) (int, error) {
	const q = `SELECT id FROM trip_days WHERE trip_id = @trip_id AND day_number > @day_number FOR UPDATE`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID, "day_number": dayNumber})
	if err != nil {
		return 0, fmt.Errorf("repo.DayRepo.LockAfter: %w", err)
	}
	ids, err := collect(rows, "repo.DayRepo.LockAfter", func(s scanner) (pgtype.UUID, error) {
		var id pgtype.UUID
		return id, s.Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (r *pgDayRepo) DeleteAfter(ctx context.Context, tripID uuid.UUID, dayNumber int) (int64, error) {
	const q = `DELETE FROM trip_days WHERE trip_id = @trip_id AND day_number > @day_number`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "day_number": dayNumber})
	if err != nil {
		return 0, fmt.Errorf("repo.DayRepo.DeleteAfter: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanDay(s scanner) (domain.Day, error) {
	var (
		d          domain.Day
		id, tripID pgtype.UUID
		date       pgtype.Date
	)
	if err := s.Scan(&id, &tripID, &d.DayNumber, &date, &d.Title, &d.Notes, &d.CreatedAt); err != nil {
		return domain.Day{}, noRows(err)
	}
	d.ID = toUUID(id)
	d.TripID = toUUID(tripID)
	d.Date = date.Time
	return d, nil
}
