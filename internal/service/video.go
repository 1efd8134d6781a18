package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/blob"
	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/repo"
)

// BlobStore keeps uploaded files. blob.Store satisfies it.
type BlobStore interface {
	Put(key string, r io.Reader) (int64, error)
	Open(key string) (io.ReadSeekCloser, error)
	Delete(key string) error
}

// VideoUpload is a new video as received from the client. Thumbnail is
// optional.
type VideoUpload struct {
	Title           string
	Description     string
	Destination     string
	DurationSeconds int
	ContentType     string
	File            io.Reader
	Thumbnail       io.Reader
	ThumbnailType   string
}

// VideoService stores travel videos: metadata in Postgres, the files in a
// BlobStore under keys namespaced by the uploading user.
type VideoService struct {
	repo  repo.VideoRepo
	blobs BlobStore
	log   *slog.Logger
}

// NewVideoService constructs a VideoService.
func NewVideoService(r repo.VideoRepo, blobs BlobStore, log *slog.Logger) *VideoService {
	return &VideoService{repo: r, blobs: blobs, log: log}
}

// Upload stores the files first and the row last. If any step fails the
// blobs already written are removed.
func (s *VideoService) Upload(ctx context.Context, userID uuid.UUID, up VideoUpload) (domain.TravelVideo, error) {
	if err := validateUpload(up); err != nil {
		return domain.TravelVideo{}, err
	}

	v := domain.TravelVideo{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           strings.TrimSpace(up.Title),
		Description:     up.Description,
		Destination:     strings.TrimSpace(up.Destination),
		ContentType:     up.ContentType,
		DurationSeconds: up.DurationSeconds,
	}

	var written []string
	fail := func(err error) (domain.TravelVideo, error) {
		s.removeBlobs(ctx, written...)
		return domain.TravelVideo{}, fmt.Errorf("service.VideoService.Upload: %w", err)
	}

	key, err := blob.Key(userID.String(), v.ID.String(), "video")
	if err != nil {
		return fail(err)
	}
	written = append(written, key)
	if v.SizeBytes, err = s.blobs.Put(key, up.File); err != nil {
		return fail(err)
	}
	if v.SizeBytes == 0 {
		return fail(fmt.Errorf("%w: video file is empty", domain.ErrValidation))
	}
	v.VideoKey = key

	if up.Thumbnail != nil {
		thumb, err := blob.Key(userID.String(), v.ID.String(), "thumbnail")
		if err != nil {
			return fail(err)
		}
		written = append(written, thumb)
		if _, err := s.blobs.Put(thumb, up.Thumbnail); err != nil {
			return fail(err)
		}
		v.ThumbnailKey = thumb
	}

	created, err := s.repo.Create(ctx, v)
	if err != nil {
		return fail(err)
	}
	return created, nil
}

func (s *VideoService) Get(ctx context.Context, id uuid.UUID) (domain.TravelVideo, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.TravelVideo{}, fmt.Errorf("service.VideoService.Get: %w", err)
	}
	return v, nil
}

// List returns one page of videos, newest first. An empty destination
// lists all.
func (s *VideoService) List(ctx context.Context, destination string, p domain.PaginationParams) ([]domain.TravelVideo, int64, error) {
	vids, total, err := s.repo.ListPaged(ctx, strings.TrimSpace(destination), p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.VideoService.List: %w", err)
	}
	if vids == nil {
		vids = []domain.TravelVideo{}
	}
	return vids, total, nil
}

// OpenFile returns the video's metadata and a reader over its file.
// The caller closes the reader.
func (s *VideoService) OpenFile(ctx context.Context, id uuid.UUID) (domain.TravelVideo, io.ReadSeekCloser, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return domain.TravelVideo{}, nil, err
	}
	rc, err := s.blobs.Open(v.VideoKey)
	if err != nil {
		return domain.TravelVideo{}, nil, fmt.Errorf("service.VideoService.OpenFile: %w", err)
	}
	return v, rc, nil
}

// OpenThumbnail is OpenFile for the thumbnail. Returns domain.ErrNotFound
// when the video has none.
func (s *VideoService) OpenThumbnail(ctx context.Context, id uuid.UUID) (domain.TravelVideo, io.ReadSeekCloser, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return domain.TravelVideo{}, nil, err
	}
	if v.ThumbnailKey == "" {
		return domain.TravelVideo{}, nil, fmt.Errorf("service.VideoService.OpenThumbnail: %w", domain.ErrNotFound)
	}
	rc, err := s.blobs.Open(v.ThumbnailKey)
	if err != nil {
		return domain.TravelVideo{}, nil, fmt.Errorf("service.VideoService.OpenThumbnail: %w", err)
	}
	return v, rc, nil
}

// Delete removes one of the user's videos and its files. Another user's
// video reports domain.ErrNotFound.
func (s *VideoService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.VideoService.Delete: %w", err)
	}
	if v.UserID != userID {
		return fmt.Errorf("service.VideoService.Delete: %w", domain.ErrNotFound)
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("service.VideoService.Delete: %w", err)
	}
	s.removeBlobs(ctx, v.VideoKey, v.ThumbnailKey)
	return nil
}

// removeBlobs deletes keys, logging failures. Empty keys are skipped.
func (s *VideoService) removeBlobs(ctx context.Context, keys ...string) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if err := s.blobs.Delete(k); err != nil {
			s.log.WarnContext(ctx, "remove video blob", "key", k, "err", err)
		}
	}
}

func validateUpload(up VideoUpload) error {
	switch {
	case strings.TrimSpace(up.Title) == "":
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	case up.File == nil:
		return fmt.Errorf("%w: video file is required", domain.ErrValidation)
	case !strings.HasPrefix(up.ContentType, "video/"):
		return fmt.Errorf("%w: file must be a video, got %q", domain.ErrValidation, up.ContentType)
	case up.Thumbnail != nil && !strings.HasPrefix(up.ThumbnailType, "image/"):
		return fmt.Errorf("%w: thumbnail must be an image, got %q", domain.ErrValidation, up.ThumbnailType)
	case up.DurationSeconds < 0:
		return fmt.Errorf("%w: duration_seconds must not be negative", domain.ErrValidation)
	}
	return nil
}
