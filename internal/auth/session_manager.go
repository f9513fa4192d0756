package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/threeplay/backend/internal/logging"
	"github.com/threeplay/backend/internal/models"
	"github.com/threeplay/backend/internal/persist"
)

const (
	// SessionSliceName is the persisted slice holding the device session.
	SessionSliceName = "auth-storage"
	// SessionSliceVersion is the current schema version of the session slice.
	SessionSliceVersion = 1

	// VerificationCode is the only code the mock two-factor check accepts.
	VerificationCode = "123456"
)

// Manager holds the identity signed in on this device. Every mutation is
// written through to the persisted session slice.
type Manager struct {
	mu      sync.Mutex
	session models.AuthSession
	slice   *persist.Slice[models.AuthSession]
}

// NewSessionSlice describes the persisted session. When demo is set, a device
// with no stored session starts signed in as DemoUser.
func NewSessionSlice(backend persist.Backend, namespace string, demo bool) *persist.Slice[models.AuthSession] {
	def := func() models.AuthSession { return models.AuthSession{} }
	if demo {
		def = func() models.AuthSession {
			user := DemoUser(time.Now().UTC())
			return models.AuthSession{User: &user, IsAuthenticated: true}
		}
	}
	return persist.NewSlice(backend, namespace, SessionSliceName, SessionSliceVersion, def, migrateSession)
}

// migrateSession upgrades unversioned sessions. Version 0 had the same shape
// but could carry a flag that disagreed with the user field.
func migrateSession(from int, raw json.RawMessage) (models.AuthSession, error) {
	if from != 0 {
		return models.AuthSession{}, fmt.Errorf("unknown session version %d", from)
	}
	var session models.AuthSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return models.AuthSession{}, err
	}
	return normalize(session), nil
}

// NewManager restores the session from slice.
func NewManager(ctx context.Context, slice *persist.Slice[models.AuthSession]) *Manager {
	if slice == nil {
		panic("auth: session slice must not be nil")
	}
	return &Manager{
		session: normalize(slice.Load(ctx)),
		slice:   slice,
	}
}

// Session returns a copy of the current session.
func (m *Manager) Session() models.AuthSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.session)
}

// Login signs user in, replacing any current identity.
func (m *Manager) Login(ctx context.Context, user models.User) models.AuthSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = models.AuthSession{User: &user, IsAuthenticated: true}
	m.persistLocked(ctx)
	logging.FromContext(ctx).Info("user signed in", "userId", user.ID)
	return copySession(m.session)
}

// Logout clears the identity. Calling it while signed out is harmless.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var userID string
	if m.session.User != nil {
		userID = m.session.User.ID
	}
	m.session = models.AuthSession{}
	m.persistLocked(ctx)
	if userID != "" {
		logging.FromContext(ctx).Info("user signed out", "userId", userID)
	}
}

// UpdateUser merges update into the signed-in identity. It reports false and
// leaves the session untouched when nobody is signed in.
func (m *Manager) UpdateUser(ctx context.Context, update models.UserUpdate) (models.AuthSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.User == nil {
		return copySession(m.session), false
	}

	updated := update.Apply(*m.session.User)
	m.session.User = &updated
	m.persistLocked(ctx)
	return copySession(m.session), true
}

// Verify2FA checks a two-factor code. It never changes the session; callers
// sign the user in themselves on success.
func (m *Manager) Verify2FA(ctx context.Context, code string) bool {
	ok := code == VerificationCode
	logging.FromContext(ctx).Debug("two-factor code checked", "accepted", ok)
	return ok
}

func (m *Manager) persistLocked(ctx context.Context) {
	if err := m.slice.Save(ctx, m.session); err != nil {
		logging.FromContext(ctx).Warn("persist session failed", "error", err)
	}
}

func normalize(session models.AuthSession) models.AuthSession {
	session.IsAuthenticated = session.User != nil
	return session
}

func copySession(session models.AuthSession) models.AuthSession {
	if session.User == nil {
		return session
	}
	user := *session.User
	if user.SocialAccounts != nil {
		accounts := *user.SocialAccounts
		user.SocialAccounts = &accounts
	}
	session.User = &user
	return session
}

// DemoUser is the development identity the device may start with.
func DemoUser(now time.Time) models.User {
	return models.User{
		ID:               "1",
		Username:         "Demo User",
		Email:            "demo@3play.cz",
		Avatar:           "https://api.dicebear.com/7.x/avataaars/svg?seed=Felix",
		CreatedAt:        now,
		ChatColor:        "#000000",
		TwoFactorEnabled: false,
	}
}
