package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/threeplay/backend/internal/logging"
	"github.com/threeplay/backend/internal/models"
)

var (
	// ErrInvalidCredentials indicates the credentials step was incomplete.
	ErrInvalidCredentials = errors.New("email and password are required")
	// ErrInvalidEmail indicates the email address could not be parsed.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrNoPendingLogin indicates a code was submitted before the credentials step.
	ErrNoPendingLogin = errors.New("no login awaiting verification")
	// ErrInvalidCode indicates the two-factor code was rejected. The pending
	// login survives so the user can retry.
	ErrInvalidCode = errors.New("invalid verification code")
)

// DeliveryMethod selects how the verification code reaches the user.
type DeliveryMethod string

const (
	DeliveryEmail DeliveryMethod = "email"
	DeliverySMS   DeliveryMethod = "sms"
)

// Challenge describes the code step the caller must complete.
type Challenge struct {
	Email  string         `json:"email"`
	Method DeliveryMethod `json:"method"`
}

// LoginFlow drives the two-step sign-in: credentials, then a verification code.
// Credentials are not checked against any account directory.
type LoginFlow struct {
	manager *Manager
	now     func() time.Time

	mu      sync.Mutex
	pending *Challenge
}

// NewLoginFlow binds the flow to the session it signs into.
func NewLoginFlow(manager *Manager) *LoginFlow {
	if manager == nil {
		panic("auth: manager must not be nil")
	}
	return &LoginFlow{manager: manager, now: func() time.Time { return time.Now().UTC() }}
}

// Begin accepts credentials and moves the flow to the code step. A repeated
// call replaces the pending challenge.
func (f *LoginFlow) Begin(ctx context.Context, email, password string, method DeliveryMethod) (Challenge, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Challenge{}, ErrInvalidCredentials
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Challenge{}, ErrInvalidEmail
	}
	if method != DeliverySMS {
		method = DeliveryEmail
	}

	challenge := Challenge{Email: email, Method: method}

	f.mu.Lock()
	f.pending = &challenge
	f.mu.Unlock()

	logging.FromContext(ctx).Info("verification code dispatched", "method", method, "email", email)
	return challenge, nil
}

// Pending returns the challenge awaiting a code, if any.
func (f *LoginFlow) Pending() (Challenge, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return Challenge{}, false
	}
	return *f.pending, true
}

// Complete verifies code and, on success, signs in a user derived from the
// pending email address.
func (f *LoginFlow) Complete(ctx context.Context, code string) (models.AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending == nil {
		return models.AuthSession{}, ErrNoPendingLogin
	}
	if !f.manager.Verify2FA(ctx, strings.TrimSpace(code)) {
		logging.FromContext(ctx).Warn("verification code rejected", "email", f.pending.Email)
		return models.AuthSession{}, ErrInvalidCode
	}

	email := f.pending.Email
	f.pending = nil

	username := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		username = email[:at]
	}

	return f.manager.Login(ctx, models.User{
		ID:               uuid.NewString(),
		Username:         username,
		Email:            email,
		IsVerified:       true,
		CreatedAt:        f.now(),
		ChatColor:        "#000000",
		TwoFactorEnabled: true,
	}), nil
}
