package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/threeplay/backend/internal/logging"
	"github.com/threeplay/backend/internal/models"
)

// NotificationHandler exposes the notification center.
type NotificationHandler struct {
	Center NotificationCenter
}

type notificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

// Collection handles GET and POST /api/v1/notifications.
func (h NotificationHandler) Collection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.available(w, r) {
		return
	}

	if r.Method == http.MethodGet {
		h.list(w, r)
		return
	}
	h.add(w, r)
}

func (h NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	items := h.Center.List()
	if items == nil {
		items = []models.Notification{}
	}
	respondJSON(r.Context(), w, http.StatusOK, notificationListResponse{
		Notifications: items,
		UnreadCount:   h.Center.UnreadCount(),
	})
}

func (h NotificationHandler) add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req models.NewNotification
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid notification payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if !req.Type.Valid() {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unknown notification type"})
		return
	}

	created := h.Center.Add(req)
	logger.Info("notification added", "notificationId", created.ID, "type", created.Type)
	respondJSON(ctx, w, http.StatusCreated, created)
}

// ReadAll handles POST /api/v1/notifications/read-all.
func (h NotificationHandler) ReadAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.available(w, r) {
		return
	}

	h.Center.MarkAllAsRead()
	w.WriteHeader(http.StatusNoContent)
}

// Read handles POST /api/v1/notifications/{id}/read. Unknown ids are ignored.
func (h NotificationHandler) Read(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.available(w, r) {
		return
	}

	h.Center.MarkAsRead(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// Item handles DELETE /api/v1/notifications/{id}. Unknown ids are ignored.
func (h NotificationHandler) Item(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.available(w, r) {
		return
	}

	h.Center.Remove(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h NotificationHandler) available(w http.ResponseWriter, r *http.Request) bool {
	if h.Center != nil {
		return true
	}
	ctx := r.Context()
	logging.FromContext(ctx).Error("notification center unavailable")
	respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "notification service unavailable"})
	return false
}
