package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/threeplay/backend/internal/chat"
	"github.com/threeplay/backend/internal/logging"
	"github.com/threeplay/backend/internal/models"
)

// ChatHandler exposes the per-video chat sessions.
// Rooms are only opened for videos the catalog knows.
type ChatHandler struct {
	Rooms    ChatRooms
	Catalog  VideoCatalog
	Sessions SessionStore
}

type chatResponse struct {
	Messages []models.ChatMessage `json:"messages"`
	IsTyping bool                 `json:"isTyping"`
}

type sendMessageRequest struct {
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}

// Messages handles GET and POST /api/v1/videos/{id}/chat. Posting requires a
// signed-in user.
func (h ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Rooms == nil {
		logger.Error("chat unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "chat service unavailable"})
		return
	}

	room, ok := h.room(w, r)
	if !ok {
		return
	}
	if r.Method == http.MethodGet {
		respondJSON(ctx, w, http.StatusOK, chatResponse{Messages: room.Messages(), IsTyping: room.IsTyping()})
		return
	}

	user := currentUser(h.Sessions)
	if user == nil {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "sign in to chat"})
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid chat payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	msg, err := room.Send(ctx, *user, req.Text, req.Color)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "message is empty"})
		return
	case errors.Is(err, chat.ErrMessageTooLong):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "message is too long"})
		return
	case errors.Is(err, chat.ErrInvalidColor):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid colour"})
		return
	case errors.Is(err, chat.ErrClosed):
		respondJSON(ctx, w, http.StatusGone, map[string]string{"error": "chat is closed"})
		return
	case err != nil:
		logger.Error("send chat message failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to send message"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, msg)
}

// Typing handles POST /api/v1/videos/{id}/chat/typing.
func (h ChatHandler) Typing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if h.Rooms == nil {
		logging.FromContext(ctx).Error("chat unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "chat service unavailable"})
		return
	}

	room, ok := h.room(w, r)
	if !ok {
		return
	}
	room.Typing()
	w.WriteHeader(http.StatusNoContent)
}

// Message handles DELETE /api/v1/videos/{id}/chat/{messageId}. Only the
// author may delete; unknown ids are ignored.
func (h ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if h.Rooms == nil {
		logging.FromContext(ctx).Error("chat unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "chat service unavailable"})
		return
	}

	user := currentUser(h.Sessions)
	if user == nil {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "sign in to chat"})
		return
	}

	room, ok := h.room(w, r)
	if !ok {
		return
	}

	err := room.Delete(ctx, r.PathValue("messageId"), user.ID)
	if errors.Is(err, chat.ErrNotAuthor) {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "you can only delete your own messages"})
		return
	}
	if err != nil {
		logging.FromContext(ctx).Error("delete chat message failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to delete message"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// room opens the chat of the video named in the path, answering 404 when the
// video is not in the catalog.
func (h ChatHandler) room(w http.ResponseWriter, r *http.Request) (*chat.Session, bool) {
	videoID := r.PathValue("id")
	if h.Catalog != nil {
		if _, ok := h.Catalog.Get(videoID); !ok {
			respondJSON(r.Context(), w, http.StatusNotFound, map[string]string{"error": "video not found"})
			return nil, false
		}
	}
	return h.Rooms.Open(videoID), true
}
