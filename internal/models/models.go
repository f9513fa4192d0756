package models

import "time"

// SocialAccounts holds the identifiers of external accounts linked to a user.
type SocialAccounts struct {
	Google    string `json:"google,omitempty" yaml:"google,omitempty"`
	Facebook  string `json:"facebook,omitempty" yaml:"facebook,omitempty"`
	Microsoft string `json:"microsoft,omitempty" yaml:"microsoft,omitempty"`
	Seznam    string `json:"seznam,omitempty" yaml:"seznam,omitempty"`
	TikTok    string `json:"tiktok,omitempty" yaml:"tiktok,omitempty"`
	Instagram string `json:"instagram,omitempty" yaml:"instagram,omitempty"`
	Telegram  string `json:"telegram,omitempty" yaml:"telegram,omitempty"`
	WhatsApp  string `json:"whatsapp,omitempty" yaml:"whatsapp,omitempty"`
	Snapchat  string `json:"snapchat,omitempty" yaml:"snapchat,omitempty"`
	Apple     string `json:"apple,omitempty" yaml:"apple,omitempty"`
	OnePlay   string `json:"oneplay,omitempty" yaml:"oneplay,omitempty"`
}

// User represents an account within the 3Play platform.
type User struct {
	ID               string          `json:"id"`
	Username         string          `json:"username"`
	Email            string          `json:"email"`
	Avatar           string          `json:"avatar,omitempty"`
	Banner           string          `json:"banner,omitempty"`
	Description      string          `json:"description,omitempty"`
	Subscribers      int64           `json:"subscribers"`
	IsVerified       bool            `json:"isVerified"`
	CreatedAt        time.Time       `json:"createdAt"`
	ChatColor        string          `json:"chatColor,omitempty"`
	TwoFactorEnabled bool            `json:"twoFactorEnabled"`
	SocialAccounts   *SocialAccounts `json:"socialAccounts,omitempty"`
}

// UserUpdate carries a partial profile change. Nil fields are left untouched.
type UserUpdate struct {
	Username         *string         `json:"username,omitempty"`
	Email            *string         `json:"email,omitempty"`
	Avatar           *string         `json:"avatar,omitempty"`
	Banner           *string         `json:"banner,omitempty"`
	Description      *string         `json:"description,omitempty"`
	Subscribers      *int64          `json:"subscribers,omitempty"`
	IsVerified       *bool           `json:"isVerified,omitempty"`
	ChatColor        *string         `json:"chatColor,omitempty"`
	TwoFactorEnabled *bool           `json:"twoFactorEnabled,omitempty"`
	SocialAccounts   *SocialAccounts `json:"socialAccounts,omitempty"`
}

// Apply merges the update into u and returns the result.
func (up UserUpdate) Apply(u User) User {
	if up.Username != nil {
		u.Username = *up.Username
	}
	if up.Email != nil {
		u.Email = *up.Email
	}
	if up.Avatar != nil {
		u.Avatar = *up.Avatar
	}
	if up.Banner != nil {
		u.Banner = *up.Banner
	}
	if up.Description != nil {
		u.Description = *up.Description
	}
	if up.Subscribers != nil {
		u.Subscribers = *up.Subscribers
	}
	if up.IsVerified != nil {
		u.IsVerified = *up.IsVerified
	}
	if up.ChatColor != nil {
		u.ChatColor = *up.ChatColor
	}
	if up.TwoFactorEnabled != nil {
		u.TwoFactorEnabled = *up.TwoFactorEnabled
	}
	if up.SocialAccounts != nil {
		accounts := *up.SocialAccounts
		u.SocialAccounts = &accounts
	}
	return u
}

// AuthSession is the current identity held by the device.
// IsAuthenticated is true iff User is non-nil.
type AuthSession struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
}

// NotificationType enumerates the kinds of notifications a user receives.
type NotificationType string

const (
	NotificationLike      NotificationType = "like"
	NotificationComment   NotificationType = "comment"
	NotificationSubscribe NotificationType = "subscribe"
	NotificationSystem    NotificationType = "system"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationSubscribe, NotificationSystem:
		return true
	}
	return false
}

// Notification is a single entry in the notification center.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
	Link      string           `json:"link,omitempty"`
}

// NewNotification is a notification before the center assigns its identity.
type NewNotification struct {
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
	Link    string           `json:"link,omitempty"`
}

// Video is an uploaded or mock catalog entry.
type Video struct {
	ID            string    `json:"id" yaml:"id"`
	Title         string    `json:"title" yaml:"title"`
	Description   string    `json:"description,omitempty" yaml:"description,omitempty"`
	Thumbnail     string    `json:"thumbnail" yaml:"thumbnail"`
	VideoURL      string    `json:"videoUrl,omitempty" yaml:"videoUrl,omitempty"`
	ChannelName   string    `json:"channelName" yaml:"channelName"`
	ChannelAvatar string    `json:"channelAvatar" yaml:"channelAvatar"`
	Views         int64     `json:"views" yaml:"views"`
	UploadedAt    time.Time `json:"uploadedAt" yaml:"uploadedAt"`
	Duration      string    `json:"duration" yaml:"duration"`
	UserID        string    `json:"userId,omitempty" yaml:"userId,omitempty"`
}

// ChatMessage is a live chat entry. It is never persisted.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Color     string    `json:"color,omitempty"`
	IsRead    bool      `json:"isRead"`
}
