package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/service"
)

// multipartMemory is how much of an upload is held in memory before the
// rest spills to temporary files.
const multipartMemory = 32 << 20

// Video is the JSON shape of a travel video. File URLs are relative to the API.
type Video struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	Destination     *string   `json:"destination,omitempty"`
	ContentType     string    `json:"content_type"`
	SizeBytes       int64     `json:"size_bytes"`
	DurationSeconds int       `json:"duration_seconds"`
	FileURL         string    `json:"file_url"`
	ThumbnailURL    *string   `json:"thumbnail_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListVideos handles GET /videos. Supports ?destination=, ?page= and ?limit=.
func (s *Server) ListVideos(w http.ResponseWriter, r *http.Request) {
	p, ok := pagination(w, r)
	if !ok {
		return
	}
	var dest *string
	if !queryParam(w, r, "destination", &dest) {
		return
	}
	vids, total, err := s.Videos.List(r.Context(), deref(dest), p)
	if err != nil {
		s.serviceError(w, r, err, "video")
		return
	}
	writeJSON(w, http.StatusOK, newPage(mapSlice(vids, videoToResponse), p, total))
}

// UploadVideo handles POST /videos, a multipart form with fields title,
// description, destination, duration_seconds, a "file" part and an optional
// "thumbnail" part.
func (s *Server) UploadVideo(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "upload too large")
			return
		}
		requestError(w, "malformed multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	up := service.VideoUpload{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Destination: r.FormValue("destination"),
	}
	if d := strings.TrimSpace(r.FormValue("duration_seconds")); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			requestError(w, "duration_seconds must be an integer")
			return
		}
		up.DurationSeconds = n
	}

	file, fh, err := r.FormFile("file")
	if err != nil {
		requestError(w, "file is required")
		return
	}
	defer file.Close()
	up.File, up.ContentType = file, partType(fh)

	thumb, th, err := r.FormFile("thumbnail")
	switch {
	case err == nil:
		defer thumb.Close()
		up.Thumbnail, up.ThumbnailType = thumb, partType(th)
	case !errors.Is(err, http.ErrMissingFile):
		requestError(w, "malformed thumbnail: "+err.Error())
		return
	}

	v, err := s.Videos.Upload(r.Context(), uid, up)
	if err != nil {
		s.serviceError(w, r, err, "video")
		return
	}
	writeJSON(w, http.StatusCreated, videoToResponse(v))
}

// GetVideo handles GET /videos/{videoId}.
func (s *Server) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "videoId")
	if !ok {
		return
	}
	v, err := s.Videos.Get(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "video")
		return
	}
	writeJSON(w, http.StatusOK, videoToResponse(v))
}

// DeleteVideo handles DELETE /videos/{videoId}. Only the uploader may delete.
func (s *Server) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "videoId")
	if !ok {
		return
	}
	if err := s.Videos.Delete(r.Context(), uid, id); err != nil {
		s.serviceError(w, r, err, "video")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetVideoFile handles GET /videos/{videoId}/file.
func (s *Server) GetVideoFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "videoId")
	if !ok {
		return
	}
	v, rc, err := s.Videos.OpenFile(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "video")
		return
	}
	defer rc.Close()
	s.serveBlob(w, r, rc, v.ContentType, v.CreatedAt)
}

// GetVideoThumbnail handles GET /videos/{videoId}/thumbnail.
func (s *Server) GetVideoThumbnail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "videoId")
	if !ok {
		return
	}
	v, rc, err := s.Videos.OpenThumbnail(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "thumbnail")
		return
	}
	defer rc.Close()
	s.serveBlob(w, r, rc, "", v.CreatedAt)
}

// serveBlob streams a stored file with Range and conditional request
// support. An empty contentType is sniffed.
func (s *Server) serveBlob(w http.ResponseWriter, r *http.Request, rs io.ReadSeeker, contentType string, modTime time.Time) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	http.ServeContent(w, r, "", modTime, rs)
}

func partType(fh *multipart.FileHeader) string {
	return fh.Header.Get("Content-Type")
}

func videoToResponse(v domain.TravelVideo) Video {
	resp := Video{
		ID:              v.ID,
		UserID:          v.UserID,
		Title:           v.Title,
		Description:     optional(v.Description),
		Destination:     optional(v.Destination),
		ContentType:     v.ContentType,
		SizeBytes:       v.SizeBytes,
		DurationSeconds: v.DurationSeconds,
		FileURL:         "/videos/" + v.ID.String() + "/file",
		CreatedAt:       v.CreatedAt,
	}
	if v.ThumbnailKey != "" {
		u := "/videos/" + v.ID.String() + "/thumbnail"
		resp.ThumbnailURL = &u
	}
	return resp
}
