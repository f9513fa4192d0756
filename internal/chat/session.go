// Package chat simulates a live chat feed for a single device. Messages are
// held in memory only; delivery is modelled with a read receipt that flips
// after a fixed delay, and the typing indicator is debounced.
package chat

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/threeplay/backend/internal/logging"
	"github.com/threeplay/backend/internal/models"
)

const (
	// DefaultReadReceiptDelay is how long a sent message stays unread.
	DefaultReadReceiptDelay = 2 * time.Second
	// DefaultTypingIdleDelay is how long the typing indicator outlives the last keystroke.
	DefaultTypingIdleDelay = time.Second
	// MaxMessageLength bounds message text, in runes.
	MaxMessageLength = 200
)

var (
	// ErrEmptyMessage indicates a message with no text after trimming.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrMessageTooLong indicates a message over MaxMessageLength runes.
	ErrMessageTooLong = errors.New("message is too long")
	// ErrNotAuthor indicates a delete by someone other than the message author.
	ErrNotAuthor = errors.New("only the author can delete a message")
	// ErrInvalidColor indicates a display colour that is not a #RRGGBB value.
	ErrInvalidColor = errors.New("invalid chat colour")
	// ErrClosed indicates the session has been closed.
	ErrClosed = errors.New("chat session closed")
)

// Palette holds the display colours offered to chat authors.
var Palette = []string{
	"#FF0000", "#00FF00", "#0000FF", "#FFFF00", "#00FFFF", "#FF00FF",
	"#FFA500", "#800080", "#008080", "#FFC0CB", "#4B0082", "#A52A2A",
}

// Options tune a chat session. Zero values select the defaults.
type Options struct {
	ReadReceiptDelay time.Duration
	TypingIdleDelay  time.Duration
	Scheduler        Scheduler
	Now              func() time.Time
	NewID            func() string
	PickColor        func() string
}

func (o Options) withDefaults() Options {
	if o.ReadReceiptDelay <= 0 {
		o.ReadReceiptDelay = DefaultReadReceiptDelay
	}
	if o.TypingIdleDelay <= 0 {
		o.TypingIdleDelay = DefaultTypingIdleDelay
	}
	if o.Scheduler == nil {
		o.Scheduler = SystemScheduler{}
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.PickColor == nil {
		o.PickColor = func() string { return Palette[rand.IntN(len(Palette))] }
	}
	return o
}

// Session is the chat feed of one video.
type Session struct {
	mu       sync.Mutex
	videoID  string
	opts     Options
	messages []models.ChatMessage
	typing   bool
	idle     Timer
	receipts map[string]Timer
	closed   bool
}

// NewSession opens the chat of videoID with the two canned greetings.
func NewSession(videoID string, opts Options) *Session {
	opts = opts.withDefaults()
	now := opts.Now()
	return &Session{
		videoID: videoID,
		opts:    opts,
		messages: []models.ChatMessage{
			{ID: "1", UserID: "2", Username: "Fanoušek1", Text: "Super video!", Timestamp: now, Color: "#FF0000", IsRead: true},
			{ID: "2", UserID: "3", Username: "Hater123", Text: "Nuda...", Timestamp: now, Color: "#0000FF", IsRead: true},
		},
		receipts: make(map[string]Timer),
	}
}

// VideoID returns the video this session belongs to.
func (s *Session) VideoID() string {
	return s.videoID
}

// Messages returns a snapshot of the feed in send order.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

// Send appends an unread message by author and schedules its read receipt.
// The display colour is color when given, then the author's chat colour, then
// a random palette entry. Sending clears the typing indicator.
func (s *Session) Send(ctx context.Context, author models.User, text, color string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return models.ChatMessage{}, ErrMessageTooLong
	}
	if color == "" {
		color = author.ChatColor
	}
	if color == "" {
		color = s.opts.PickColor()
	}
	if !ValidColor(color) {
		return models.ChatMessage{}, ErrInvalidColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.ChatMessage{}, ErrClosed
	}

	msg := models.ChatMessage{
		ID:        s.opts.NewID(),
		UserID:    author.ID,
		Username:  author.Username,
		Text:      text,
		Timestamp: s.opts.Now(),
		Color:     color,
	}
	s.messages = append(s.messages, msg)
	s.stopTypingLocked()

	id := msg.ID
	s.receipts[id] = s.opts.Scheduler.AfterFunc(s.opts.ReadReceiptDelay, func() { s.markRead(id) })

	logging.FromContext(ctx).Debug("chat message sent", "videoId", s.videoID, "messageId", id, "userId", author.ID)
	return msg, nil
}

// Typing records a keystroke. The indicator stays on until the idle delay
// passes without another keystroke.
func (s *Session) Typing() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.idle != nil {
		s.idle.Stop()
	}
	s.typing = true

	var timer Timer
	timer = s.opts.Scheduler.AfterFunc(s.opts.TypingIdleDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.idle == timer {
			s.typing = false
			s.idle = nil
		}
	})
	s.idle = timer
}

// IsTyping reports whether the typing indicator is on.
func (s *Session) IsTyping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// Delete removes a message written by userID. An unknown id is ignored.
func (s *Session) Delete(ctx context.Context, messageID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, m := range s.messages {
		if m.ID == messageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	if s.messages[idx].UserID != userID {
		return ErrNotAuthor
	}

	s.messages = append(s.messages[:idx:idx], s.messages[idx+1:]...)
	if t, ok := s.receipts[messageID]; ok {
		t.Stop()
		delete(s.receipts, messageID)
	}

	logging.FromContext(ctx).Debug("chat message deleted", "videoId", s.videoID, "messageId", messageID)
	return nil
}

// Close cancels every pending timer. A closed session rejects new messages.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.stopTypingLocked()
	for id, t := range s.receipts {
		t.Stop()
		delete(s.receipts, id)
	}
}

func (s *Session) markRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.receipts, id)
	if s.closed {
		return
	}
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].IsRead = true
			return
		}
	}
}

func (s *Session) stopTypingLocked() {
	if s.idle != nil {
		s.idle.Stop()
		s.idle = nil
	}
	s.typing = false
}

// ValidColor reports whether c is a #RRGGBB colour.
func ValidColor(c string) bool {
	if len(c) != 7 || c[0] != '#' {
		return false
	}
	for _, r := range c[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
