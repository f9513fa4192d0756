package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/threeplay/backend/internal/auth"
	"github.com/threeplay/backend/internal/catalog"
	"github.com/threeplay/backend/internal/chat"
	"github.com/threeplay/backend/internal/models"
	"github.com/threeplay/backend/internal/notifications"
	"github.com/threeplay/backend/internal/persist"
	"github.com/threeplay/backend/internal/videos"
)

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type mediaStub struct {
	names []string
}

func (m *mediaStub) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.names = append(m.names, name)
	return "/media/" + name, nil
}

type allowNone struct{}

func (allowNone) Allow(string) bool { return false }

type testEnv struct {
	mux       *http.ServeMux
	manager   *auth.Manager
	center    *notifications.Center
	store     *catalog.Store
	hub       *chat.Hub
	scheduler *chat.ManualScheduler
	media     *mediaStub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	backend := persist.NewMemoryBackend()

	manager := auth.NewManager(ctx, auth.NewSessionSlice(backend, "test", false))
	store := catalog.NewStore(ctx, catalog.NewSlice(backend, "test", func() time.Time { return fixedNow }))
	store.ReplaceAll(ctx, []models.Video{{ID: "v1", Title: "First"}, {ID: "v2", Title: "Second"}})

	scheduler := chat.NewManualScheduler()
	hub := chat.NewHub(chat.Options{Scheduler: scheduler})
	t.Cleanup(hub.Close)

	media := &mediaStub{}
	env := &testEnv{
		mux:       http.NewServeMux(),
		manager:   manager,
		center:    notifications.NewCenter(notifications.WithClock(func() time.Time { return fixedNow })),
		store:     store,
		hub:       hub,
		scheduler: scheduler,
		media:     media,
	}

	RegisterRoutes(env.mux, Dependencies{
		Persistence:   "memory",
		Sessions:      manager,
		Logins:        auth.NewLoginFlow(manager),
		Notifications: env.center,
		Catalog:       store,
		Studio: catalog.Studio{
			Store: store,
			Media: media,
			Metadata: videos.ProviderFunc(func(ctx context.Context, url string) (videos.Metadata, error) {
				return videos.Metadata{Title: "Imported", Uploader: "Remote", DurationSeconds: 75}, nil
			}),
			NowFunc: func() time.Time { return fixedNow },
		},
		Chat: hub,
		Now:  func() time.Time { return fixedNow },
	})
	return env
}

func (e *testEnv) signIn(t *testing.T) models.User {
	t.Helper()
	user := models.User{ID: "user-1", Username: "jan", Email: "jan@example.com"}
	e.manager.Login(context.Background(), user)
	return user
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}
