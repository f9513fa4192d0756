package handlers

import (
	"context"

	"github.com/threeplay/backend/internal/auth"
	"github.com/threeplay/backend/internal/catalog"
	"github.com/threeplay/backend/internal/chat"
	"github.com/threeplay/backend/internal/models"
)

// SessionStore exposes the device session to the handlers.
type SessionStore interface {
	Session() models.AuthSession
	Logout(ctx context.Context)
	UpdateUser(ctx context.Context, update models.UserUpdate) (models.AuthSession, bool)
}

// LoginFlow drives the two-step sign-in.
type LoginFlow interface {
	Begin(ctx context.Context, email, password string, method auth.DeliveryMethod) (auth.Challenge, error)
	Pending() (auth.Challenge, bool)
	Complete(ctx context.Context, code string) (models.AuthSession, error)
}

// NotificationCenter captures the notification operations exposed over HTTP.
type NotificationCenter interface {
	Add(n models.NewNotification) models.Notification
	MarkAsRead(id string) bool
	MarkAllAsRead()
	Remove(id string) bool
	List() []models.Notification
	UnreadCount() int
}

// VideoCatalog captures the catalog operations exposed over HTTP.
type VideoCatalog interface {
	Add(ctx context.Context, video models.Video)
	Delete(ctx context.Context, id string) bool
	ReplaceAll(ctx context.Context, videos []models.Video)
	List() []models.Video
	Get(id string) (models.Video, bool)
}

// VideoPublisher adds uploaded or imported videos to the catalog.
type VideoPublisher interface {
	Publish(ctx context.Context, upload catalog.Upload, owner *models.User) (models.Video, error)
	Import(ctx context.Context, url string, owner *models.User) (models.Video, error)
}

// ChatRooms hands out the chat session of a video.
type ChatRooms interface {
	Open(videoID string) *chat.Session
}
