package handlers

import (
	"net/http"
	"time"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Persistence: deps.Persistence}
	auth := AuthHandler{Sessions: deps.Sessions, Logins: deps.Logins, Limiter: deps.LoginLimiter, TrustProxy: deps.TrustProxy}
	notifications := NotificationHandler{Center: deps.Notifications}
	videos := VideoHandler{Catalog: deps.Catalog, Studio: deps.Studio, Sessions: deps.Sessions, MaxUploadBytes: deps.MaxUploadBytes, NowFunc: deps.Now}
	chat := ChatHandler{Rooms: deps.Chat, Catalog: deps.Catalog, Sessions: deps.Sessions}

	mux.HandleFunc("/healthz", health.Handle)

	mux.HandleFunc("/api/v1/session", auth.Session)
	mux.HandleFunc("/api/v1/session/user", auth.UpdateUser)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/verify", auth.Verify)
	mux.HandleFunc("/api/v1/auth/logout", auth.Logout)

	mux.HandleFunc("/api/v1/notifications", notifications.Collection)
	mux.HandleFunc("/api/v1/notifications/read-all", notifications.ReadAll)
	mux.HandleFunc("/api/v1/notifications/{id}/read", notifications.Read)
	mux.HandleFunc("/api/v1/notifications/{id}", notifications.Item)

	mux.HandleFunc("/api/v1/videos", videos.Collection)
	mux.HandleFunc("/api/v1/videos/upload", videos.Upload)
	mux.HandleFunc("/api/v1/videos/import", videos.Import)
	mux.HandleFunc("/api/v1/videos/{id}", videos.Item)

	mux.HandleFunc("/api/v1/videos/{id}/chat", chat.Messages)
	mux.HandleFunc("/api/v1/videos/{id}/chat/typing", chat.Typing)
	mux.HandleFunc("/api/v1/videos/{id}/chat/{messageId}", chat.Message)

	if deps.Media != nil {
		mux.Handle("/media/", http.StripPrefix("/media/", deps.Media))
	}
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Persistence    string
	Sessions       SessionStore
	Logins         LoginFlow
	LoginLimiter   RateLimiter
	TrustProxy     bool
	Notifications  NotificationCenter
	Catalog        VideoCatalog
	Studio         VideoPublisher
	MaxUploadBytes int64
	Chat           ChatRooms
	Media          http.Handler
	Now            func() time.Time
}
