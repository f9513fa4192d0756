package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/threeplay/backend/internal/models"
)

// Center keeps the device's notifications newest first together with an
// unread counter. The counter always equals the number of unread records.
type Center struct {
	mu     sync.Mutex
	items  []models.Notification
	unread int
	now    func() time.Time
	newID  func() string
}

// Option customises a Center.
type Option func(*Center)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// WithSeed preloads records, newest first. The unread counter is derived
// from the records.
func WithSeed(items []models.Notification) Option {
	return func(c *Center) {
		c.items = append([]models.Notification(nil), items...)
		c.unread = 0
		for _, n := range c.items {
			if !n.IsRead {
				c.unread++
			}
		}
	}
}

// NewCenter returns an empty center unless seeded.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add assigns an id and timestamp, marks the record unread and puts it first.
func (c *Center) Add(n models.NewNotification) models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	record := models.Notification{
		ID:        c.newID(),
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Link:      n.Link,
		IsRead:    false,
		CreatedAt: c.now(),
	}
	c.items = append([]models.Notification{record}, c.items...)
	c.unread++
	return record
}

// MarkAsRead flips an unread record to read. Unknown ids and records that
// are already read are ignored.
func (c *Center) MarkAsRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		if c.items[i].IsRead {
			return false
		}
		c.items[i].IsRead = true
		c.unread--
		return true
	}
	return false
}

// MarkAllAsRead marks every record read.
func (c *Center) MarkAllAsRead() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		c.items[i].IsRead = true
	}
	c.unread = 0
}

// Remove deletes the record with id and reports whether one existed.
func (c *Center) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.items {
		if n.ID != id {
			continue
		}
		c.items = append(c.items[:i:i], c.items[i+1:]...)
		if !n.IsRead {
			c.unread--
		}
		return true
	}
	return false
}

// List returns a snapshot of the records, newest first.
func (c *Center) List() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Notification(nil), c.items...)
}

// UnreadCount returns the number of unread records.
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Welcome returns the notifications a fresh device starts with.
func Welcome(now time.Time) []models.Notification {
	return []models.Notification{
		{
			ID:        "1",
			Title:     "Nový odběratel",
			Message:   "Uživatel Jan Novák vás začal odebírat",
			Type:      models.NotificationSubscribe,
			CreatedAt: now,
		},
		{
			ID:        "2",
			Title:     "Nový komentář",
			Message:   "Petr napsal komentář k vašemu videu",
			Type:      models.NotificationComment,
			CreatedAt: now.Add(-time.Hour),
			Link:      "/watch/1",
		},
		{
			ID:        "3",
			Title:     "Systémová zpráva",
			Message:   "Vítejte v nové verzi aplikace 3Play!",
			Type:      models.NotificationSystem,
			IsRead:    true,
			CreatedAt: now.Add(-24 * time.Hour),
		},
	}
}
