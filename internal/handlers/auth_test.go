package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/threeplay/backend/internal/auth"
	"github.com/threeplay/backend/internal/middleware"
	"github.com/threeplay/backend/internal/models"
)

func TestAuthHandlerTwoStepLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": " Jana@Example.com ", "password": "secret", "method": "sms",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status %d got %d", http.StatusAccepted, rec.Code)
	}
	challenge := decode[auth.Challenge](t, rec)
	if challenge.Email != "jana@example.com" || challenge.Method != auth.DeliverySMS {
		t.Fatalf("unexpected challenge %+v", challenge)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/auth/verify", map[string]string{"code": "000000"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected wrong code to be rejected, got %d", rec.Code)
	}
	if env.manager.Session().IsAuthenticated {
		t.Fatal("wrong code must not sign in")
	}

	rec = env.do(t, http.MethodPost, "/api/v1/auth/verify", map[string]string{"code": auth.VerificationCode})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	session := decode[models.AuthSession](t, rec)
	if !session.IsAuthenticated || session.User == nil || session.User.Username != "jana" {
		t.Fatalf("unexpected session %+v", session)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/session", nil)
	if got := decode[models.AuthSession](t, rec); !got.IsAuthenticated {
		t.Fatal("session endpoint should report the signed-in user")
	}
}

func TestAuthHandlerLoginValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{name: "missing password", body: map[string]string{"email": "a@example.com"}, want: http.StatusBadRequest},
		{name: "bad email", body: map[string]string{"email": "nope", "password": "x"}, want: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if rec := env.do(t, http.MethodPost, "/api/v1/auth/login", tc.body); rec.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, rec.Code)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected malformed body to be rejected, got %d", rec.Code)
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/auth/login", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected method not allowed got %d", rec.Code)
	}
}

func TestAuthHandlerVerifyWithoutLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/verify", map[string]string{"code": auth.VerificationCode})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected conflict got %d", rec.Code)
	}
}

func TestAuthHandlerRateLimited(t *testing.T) {
	env := newTestEnv(t)
	handler := AuthHandler{Sessions: env.manager, Logins: auth.NewLoginFlow(env.manager), Limiter: allowNone{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/verify", bytes.NewBufferString(`{"code":"123456"}`))
	rec := httptest.NewRecorder()
	handler.Verify(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected too many requests got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestAuthHandlerUpdateUserAndLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPatch, "/api/v1/session/user", map[string]string{"description": "ahoj"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected update without identity to be refused, got %d", rec.Code)
	}
	if env.manager.Session().User != nil {
		t.Fatal("update without identity must leave the session untouched")
	}

	env.signIn(t)
	rec = env.do(t, http.MethodPatch, "/api/v1/session/user", map[string]string{"description": "ahoj", "chatColor": "#FF0000"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	session := decode[models.AuthSession](t, rec)
	if session.User.Description != "ahoj" || session.User.ChatColor != "#FF0000" || session.User.Username != "jan" {
		t.Fatalf("unexpected user after update %+v", session.User)
	}

	if rec := env.do(t, http.MethodPost, "/api/v1/auth/logout", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected no content got %d", rec.Code)
	}
	if got := env.manager.Session(); got.IsAuthenticated || got.User != nil {
		t.Fatalf("expected anonymous session got %+v", got)
	}
	if rec := env.do(t, http.MethodPost, "/api/v1/auth/logout", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("logout should be idempotent, got %d", rec.Code)
	}
}

func TestAuthHandlerRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	env := newTestEnv(t)
	limiter := middleware.NewIPRateLimiter(5, time.Minute).WithClock(func() time.Time { return fixedNow })
	handler := AuthHandler{Sessions: env.manager, Logins: auth.NewLoginFlow(env.manager), Limiter: limiter}

	throttledCount := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/verify", bytes.NewBufferString(`{"code":"000000"}`))
		req.RemoteAddr = "198.51.100.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.1.%d.%d", i/250, i%250))
		rec := httptest.NewRecorder()
		handler.Verify(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			throttledCount++
		}
	}
	if throttledCount != 45 {
		t.Fatalf("expected 45 throttled attempts from one peer, got %d", throttledCount)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := rateLimitKey(req, "login", false); got != "login:10.0.0.1" {
		t.Fatalf("unexpected key %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	if got := clientIP(req, false); got != "10.0.0.1" {
		t.Fatalf("forwarded header must be ignored without a trusted proxy, got %q", got)
	}
	if got := clientIP(req, true); got != "10.0.0.2" {
		t.Fatalf("expected hop appended by the proxy got %q", got)
	}

	req.Header.Add("X-Forwarded-For", "192.0.2.4")
	if got := clientIP(req, true); got != "192.0.2.4" {
		t.Fatalf("expected last header line hop got %q", got)
	}

	req.Header.Set("X-Forwarded-For", " ")
	if got := clientIP(req, true); got != "10.0.0.1" {
		t.Fatalf("expected fallback to peer address got %q", got)
	}
}
