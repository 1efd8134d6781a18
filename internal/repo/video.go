package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripnest/backend/internal/domain"
)

// VideoRepo persists travel video metadata. The bytes live in blob storage.
type VideoRepo interface {
	// Create inserts a video row. The caller assigns the ID so blob keys can
	// be derived from it before the row exists.
	Create(ctx context.Context, v domain.TravelVideo) (domain.TravelVideo, error)
	// GetByID returns one video or domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (domain.TravelVideo, error)
	// ListPaged returns one page of videos, newest first, optionally limited
	// to a destination, and the total count.
	ListPaged(ctx context.Context, destination string, p domain.PaginationParams) ([]domain.TravelVideo, int64, error)
	// Delete removes a video owned by userID.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type pgVideoRepo struct {
	db db
}

// NewVideoRepo constructs a VideoRepo backed by the provided db connection.
func NewVideoRepo(db db) VideoRepo {
	return &pgVideoRepo{db: db}
}

const videoColumns = `id, user_id, title, description, destination, video_key, content_type,
	size_bytes, thumbnail_key, duration_seconds, created_at`

func (r *pgVideoRepo) Create(ctx context.Context, v domain.TravelVideo) (domain.TravelVideo, error) {
	const q = `
		INSERT INTO travel_videos (id, user_id, title, description, destination, video_key,
		                           content_type, size_bytes, thumbnail_key, duration_seconds)
		VALUES (@id, @user_id, @title, @description, @destination, @video_key,
		        @content_type, @size_bytes, @thumbnail_key, @duration_seconds)
		RETURNING ` + videoColumns

	result, err := scanVideo(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":               v.ID,
		"user_id":          v.UserID,
		"title":            v.Title,
		"description":      v.Description,
		"destination":      v.Destination,
		"video_key":        v.VideoKey,
		"content_type":     v.ContentType,
		"size_bytes":       v.SizeBytes,
		"thumbnail_key":    v.ThumbnailKey,
		"duration_seconds": v.DurationSeconds,
	}))
	if err != nil {
		return domain.TravelVideo{}, fmt.Errorf("repo.VideoRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgVideoRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TravelVideo, error) {
	const q = `SELECT ` + videoColumns + ` FROM travel_videos WHERE id = @id`

	v, err := scanVideo(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.TravelVideo{}, fmt.Errorf("repo.VideoRepo.GetByID: %w", err)
	}
	return v, nil
}

func (r *pgVideoRepo) ListPaged(ctx context.Context, destination string, p domain.PaginationParams) ([]domain.TravelVideo, int64, error) {
	const from = ` FROM travel_videos WHERE @destination = '' OR lower(destination) = lower(@destination)`

	args := pgx.NamedArgs{
		"destination": destination,
		"limit":       p.Limit,
		"offset":      p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*)`+from, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.VideoRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+videoColumns+from+`
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.VideoRepo.ListPaged: %w", err)
	}

	videos, err := collect(rows, "repo.VideoRepo.ListPaged", scanVideo)
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

func (r *pgVideoRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `DELETE FROM travel_videos WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.VideoRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.VideoRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanVideo(s scanner) (domain.TravelVideo, error) {
	var (
		v          domain.TravelVideo
		id, userID pgtype.UUID
	)
	if err := s.Scan(&id, &userID, &v.Title, &v.Description, &v.Destination, &v.VideoKey,
		&v.ContentType, &v.SizeBytes, &v.ThumbnailKey, &v.DurationSeconds, &v.CreatedAt); err != nil {
		return domain.TravelVideo{}, noRows(err)
	}
	v.ID = toUUID(id)
	v.UserID = toUUID(userID)
	return v, nil
}
