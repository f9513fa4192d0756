package handlers

import "net/http"

// HealthHandler responds with service health information.
type HealthHandler struct {
	Persistence string
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	payload := map[string]string{
		"status": "ok",
	}
	if h.Persistence != "" {
		payload["persistence"] = h.Persistence
	}

	respondJSON(r.Context(), w, http.StatusOK, payload)
}
