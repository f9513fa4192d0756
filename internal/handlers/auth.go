package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/threeplay/backend/internal/auth"
	"github.com/threeplay/backend/internal/logging"
	"github.com/threeplay/backend/internal/models"
)

// AuthHandler implements the device session and sign-in endpoints.
type AuthHandler struct {
	Sessions   SessionStore
	Logins     LoginFlow
	Limiter    RateLimiter
	TrustProxy bool
}

// Session handles GET /api/v1/session.
func (h AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if h.Sessions == nil {
		logging.FromContext(ctx).Error("session store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "session service unavailable"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, h.Sessions.Session())
}

// UpdateUser handles PATCH /api/v1/session/user requests.
func (h AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "session service unavailable"})
		return
	}

	var update models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logger.Warn("invalid profile payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	session, ok := h.Sessions.UpdateUser(ctx, update)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, session)
}

// Login handles POST /api/v1/auth/login requests. It starts the two-step
// sign-in and answers with the verification challenge.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Logins == nil {
		logger.Error("login flow unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication services unavailable"})
		return
	}
	if throttled(h.Limiter, w, r, "login", h.TrustProxy) {
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	challenge, err := h.Logins.Begin(ctx, req.Email, req.Password, req.Method)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	case errors.Is(err, auth.ErrInvalidEmail):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
		return
	case err != nil:
		logger.Error("login failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to start sign-in"})
		return
	}

	respondJSON(ctx, w, http.StatusAccepted, challenge)
}

// Verify handles POST /api/v1/auth/verify requests.
func (h AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Logins == nil {
		logger.Error("login flow unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication services unavailable"})
		return
	}
	if throttled(h.Limiter, w, r, "verify", h.TrustProxy) {
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid verification payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	session, err := h.Logins.Complete(ctx, req.Code)
	switch {
	case errors.Is(err, auth.ErrNoPendingLogin):
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "sign in with your email first"})
		return
	case errors.Is(err, auth.ErrInvalidCode):
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid code, please try again"})
		return
	case err != nil:
		logger.Error("verification failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to verify code"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, session)
}

// Logout handles POST /api/v1/auth/logout requests.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if h.Sessions == nil {
		logging.FromContext(ctx).Error("session store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "session service unavailable"})
		return
	}

	h.Sessions.Logout(ctx)
	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	Email    string              `json:"email"`
	Password string              `json:"password"`
	Method   auth.DeliveryMethod `json:"method"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

// currentUser returns the signed-in user, or nil.
func currentUser(sessions SessionStore) *models.User {
	if sessions == nil {
		return nil
	}
	return sessions.Session().User
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
