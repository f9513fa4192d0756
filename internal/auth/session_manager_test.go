package auth

import (
	"context"
	"testing"
	"time"

	"github.com/threeplay/backend/internal/models"
	"github.com/threeplay/backend/internal/persist"
)

func newTestManager(t *testing.T) (*Manager, *persist.MemoryBackend) {
	t.Helper()
	backend := persist.NewMemoryBackend()
	return NewManager(context.Background(), NewSessionSlice(backend, "test", false)), backend
}

func testUser() models.User {
	return models.User{
		ID:        "user-1",
		Username:  "jan",
		Email:     "jan@example.com",
		CreatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestManagerStartsAnonymous(t *testing.T) {
	manager, _ := newTestManager(t)

	session := manager.Session()
	if session.IsAuthenticated || session.User != nil {
		t.Fatalf("expected anonymous session got %+v", session)
	}
}

func TestManagerLoginLogout(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	session := manager.Login(ctx, testUser())
	if !session.IsAuthenticated || session.User == nil || session.User.ID != "user-1" {
		t.Fatalf("unexpected session after login: %+v", session)
	}

	again := manager.Login(ctx, testUser())
	if !again.IsAuthenticated || again.User.ID != "user-1" {
		t.Fatalf("login should be idempotent: %+v", again)
	}

	manager.Logout(ctx)
	session = manager.Session()
	if session.IsAuthenticated || session.User != nil {
		t.Fatalf("expected anonymous session after logout got %+v", session)
	}

	manager.Logout(ctx)
	if manager.Session().IsAuthenticated {
		t.Fatal("logout should be idempotent")
	}
}

func TestManagerUpdateUser(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	description := "channel about go"
	if _, ok := manager.UpdateUser(ctx, models.UserUpdate{Description: &description}); ok {
		t.Fatal("expected update without identity to be a no-op")
	}
	if session := manager.Session(); session.User != nil || session.IsAuthenticated {
		t.Fatalf("state changed by no-op update: %+v", session)
	}

	manager.Login(ctx, testUser())
	color := "#FF0000"
	session, ok := manager.UpdateUser(ctx, models.UserUpdate{Description: &description, ChatColor: &color})
	if !ok {
		t.Fatal("expected update to apply")
	}
	if session.User.Description != description || session.User.ChatColor != color {
		t.Fatalf("update not merged: %+v", session.User)
	}
	if session.User.Username != "jan" || session.User.Email != "jan@example.com" {
		t.Fatalf("unrelated fields changed: %+v", session.User)
	}
}

func TestManagerSessionIsACopy(t *testing.T) {
	manager, _ := newTestManager(t)
	manager.Login(context.Background(), testUser())

	session := manager.Session()
	session.User.Username = "mutated"

	if manager.Session().User.Username != "jan" {
		t.Fatal("callers must not be able to mutate the stored session")
	}
}

func TestManagerVerify2FA(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	if !manager.Verify2FA(ctx, "123456") {
		t.Fatal("expected sentinel code to pass")
	}
	for _, code := range []string{"", "000000", "1234567", " 123456"} {
		if manager.Verify2FA(ctx, code) {
			t.Fatalf("expected %q to fail", code)
		}
	}
	if manager.Session().IsAuthenticated {
		t.Fatal("verification must not change the session")
	}
}

func TestManagerRestoresPersistedSession(t *testing.T) {
	backend := persist.NewMemoryBackend()
	ctx := context.Background()

	first := NewManager(ctx, NewSessionSlice(backend, "test", false))
	first.Login(ctx, testUser())

	second := NewManager(ctx, NewSessionSlice(backend, "test", false))
	session := second.Session()
	if !session.IsAuthenticated || session.User == nil || session.User.ID != "user-1" {
		t.Fatalf("expected restored session got %+v", session)
	}

	second.Logout(ctx)
	third := NewManager(ctx, NewSessionSlice(backend, "test", true))
	if third.Session().IsAuthenticated {
		t.Fatal("a stored signed-out session must win over the demo default")
	}
}

func TestManagerDemoDefault(t *testing.T) {
	manager := NewManager(context.Background(), NewSessionSlice(persist.NewMemoryBackend(), "test", true))

	session := manager.Session()
	if !session.IsAuthenticated || session.User == nil || session.User.Email != "demo@3play.cz" {
		t.Fatalf("expected demo session got %+v", session)
	}
}

func TestSessionMigrationRepairsFlag(t *testing.T) {
	backend := persist.NewMemoryBackend()
	ctx := context.Background()
	raw := `{"version":0,"state":{"user":null,"isAuthenticated":true}}`
	if err := backend.Set(ctx, "test:auth-storage", []byte(raw)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	manager := NewManager(ctx, NewSessionSlice(backend, "test", false))
	if manager.Session().IsAuthenticated {
		t.Fatal("expected flag to follow the missing user")
	}
}
