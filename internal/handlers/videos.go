package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/threeplay/backend/internal/catalog"
	"github.com/threeplay/backend/internal/logging"
	"github.com/threeplay/backend/internal/models"
	"github.com/threeplay/backend/internal/videos"
)

// DefaultMaxUploadBytes bounds multipart uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 512 << 20

// VideoHandler provides endpoints for browsing and publishing videos.
type VideoHandler struct {
	Catalog        VideoCatalog
	Studio         VideoPublisher
	Sessions       SessionStore
	MaxUploadBytes int64
	NowFunc        func() time.Time
}

// Collection handles GET, POST and PUT /api/v1/videos.
func (h VideoHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Catalog == nil {
		logger.Error("video catalog unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video service unavailable"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		list := h.Catalog.List()
		if list == nil {
			list = []models.Video{}
		}
		respondJSON(ctx, w, http.StatusOK, map[string][]models.Video{"videos": list})

	case http.MethodPost:
		var video models.Video
		if err := json.NewDecoder(r.Body).Decode(&video); err != nil {
			logger.Warn("invalid video payload", "error", err)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		video.Title = strings.TrimSpace(video.Title)
		if video.Title == "" {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title is required"})
			return
		}
		if video.ID == "" {
			video.ID = uuid.NewString()
		}
		if video.UploadedAt.IsZero() {
			video.UploadedAt = h.now()
		}
		if video.UserID == "" {
			if user := currentUser(h.Sessions); user != nil {
				video.UserID = user.ID
			}
		}
		h.Catalog.Add(ctx, video)
		logger.Info("video added", "videoId", video.ID)
		respondJSON(ctx, w, http.StatusCreated, video)

	case http.MethodPut:
		var req struct {
			Videos []models.Video `json:"videos"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid catalog payload", "error", err)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		h.Catalog.ReplaceAll(ctx, req.Videos)
		logger.Info("catalog replaced", "videos", len(req.Videos))
		w.WriteHeader(http.StatusNoContent)
	}
}

// Item handles GET and DELETE /api/v1/videos/{id}. Deleting an unknown id is
// not an error.
func (h VideoHandler) Item(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if h.Catalog == nil {
		logging.FromContext(ctx).Error("video catalog unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video service unavailable"})
		return
	}

	id := r.PathValue("id")
	if r.Method == http.MethodDelete {
		h.Catalog.Delete(ctx, id)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	video, ok := h.Catalog.Get(id)
	if !ok {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
		return
	}
	respondJSON(ctx, w, http.StatusOK, video)
}

// Upload handles POST /api/v1/videos/upload. The request is a multipart form
// carrying the file under "video" alongside title, description, thumbnail and
// duration fields.
func (h VideoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Studio == nil {
		logger.Error("video studio unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "upload service unavailable"})
		return
	}

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondJSON(ctx, w, http.StatusRequestEntityTooLarge, map[string]string{"error": "video file is too large"})
			return
		}
		logger.Warn("invalid upload form", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid upload form"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "video file is required"})
		return
	}
	defer file.Close()

	video, err := h.Studio.Publish(ctx, catalog.Upload{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Thumbnail:   r.FormValue("thumbnail"),
		Duration:    r.FormValue("duration"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, currentUser(h.Sessions))
	switch {
	case errors.Is(err, catalog.ErrMissingTitle):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	case errors.Is(err, catalog.ErrUnsupportedMedia):
		respondJSON(ctx, w, http.StatusUnsupportedMediaType, map[string]string{"error": "unsupported video format"})
		return
	case err != nil:
		logger.Error("upload failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store video"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, video)
}

// Import handles POST /api/v1/videos/import.
func (h VideoHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Studio == nil {
		logger.Error("video studio unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "import service unavailable"})
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid import payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	video, err := h.Studio.Import(ctx, req.URL, currentUser(h.Sessions))
	switch {
	case errors.Is(err, catalog.ErrInvalidURL):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "a valid http or https url is required"})
		return
	case errors.Is(err, videos.ErrProviderUnavailable):
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"error": "video metadata is unavailable"})
		return
	case errors.Is(err, videos.ErrEmptyMetadata):
		respondJSON(ctx, w, http.StatusUnprocessableEntity, map[string]string{"error": "no video found at that url"})
		return
	case err != nil:
		logger.Error("import failed", "error", err, "url", req.URL)
		respondJSON(ctx, w, http.StatusBadGateway, map[string]string{"error": "unable to import video"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, video)
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
