package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/threeplay/backend/internal/auth"
	"github.com/threeplay/backend/internal/catalog"
	"github.com/threeplay/backend/internal/chat"
	"github.com/threeplay/backend/internal/config"
	"github.com/threeplay/backend/internal/db"
	"github.com/threeplay/backend/internal/handlers"
	"github.com/threeplay/backend/internal/logging"
	"github.com/threeplay/backend/internal/middleware"
	"github.com/threeplay/backend/internal/notifications"
	"github.com/threeplay/backend/internal/persist"
	"github.com/threeplay/backend/internal/storage"
	"github.com/threeplay/backend/internal/videos"
)

// mediaURLPrefix is where locally stored uploads are served from.
const mediaURLPrefix = "/media"

type cleanupFunc func(ctx context.Context) error

// openBackend connects the persisted state backend selected in cfg.
func openBackend(ctx context.Context, cfg config.PersistenceConfig) (persist.Backend, cleanupFunc, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Backend {
	case config.BackendMemory:
		return persist.NewMemoryBackend(), noop, nil
	case config.BackendFile:
		backend, err := persist.NewFileBackend(cfg.StateDir)
		if err != nil {
			return nil, nil, err
		}
		return backend, noop, nil
	case config.BackendPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return persist.NewPostgresBackend(pool), func(context.Context) error {
			pool.Close()
			return nil
		}, nil
	case config.BackendRedis:
		client, err := persist.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return persist.NewRedisBackend(client), func(context.Context) error {
			return client.Close()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown persistence backend %q", cfg.Backend)
	}
}

// openMedia selects the object store when a bucket is configured and the
// local media directory otherwise. The returned handler serves local files
// and is nil for the object store.
func openMedia(ctx context.Context, cfg config.Config) (catalog.MediaStorage, http.Handler, error) {
	if cfg.ObjectStore.Bucket != "" {
		s3, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return nil, nil, err
		}
		return s3, nil, nil
	}

	local, err := storage.NewLocalStorage(cfg.MediaDir, mediaURLPrefix)
	if err != nil {
		return nil, nil, err
	}
	return local, http.FileServer(http.Dir(local.Dir())), nil
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, cfg config.Config) (handlers.Dependencies, cleanupFunc, error) {
	logger := logging.FromContext(ctx)

	backend, closeBackend, err := openBackend(ctx, cfg.Persistence)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("open %s persistence: %w", cfg.Persistence.Backend, err)
	}

	media, mediaHandler, err := openMedia(ctx, cfg)
	if err != nil {
		_ = closeBackend(ctx)
		return handlers.Dependencies{}, nil, fmt.Errorf("open media storage: %w", err)
	}

	ns := cfg.Persistence.Namespace
	sessions := auth.NewManager(ctx, auth.NewSessionSlice(backend, ns, cfg.DemoSession))
	store := catalog.NewStore(ctx, catalog.NewSlice(backend, ns, nil))

	ytDlp := videos.NewYTDLPProvider(cfg.YTDLPPath, cfg.YTDLPTimeout)
	metadataProvider := videos.NewCachingProvider(ytDlp, cfg.MetadataCacheTTL)

	hub := chat.NewHub(chat.Options{
		ReadReceiptDelay: cfg.ReadReceiptDelay,
		TypingIdleDelay:  cfg.TypingIdleDelay,
	})

	center := notifications.NewCenter(notifications.WithSeed(notifications.Welcome(time.Now().UTC())))

	logger.Info("dependencies ready",
		"persistence", cfg.Persistence.Backend,
		"objectStore", cfg.ObjectStore.Bucket != "",
		"videos", len(store.List()),
		"signedIn", sessions.Session().IsAuthenticated,
	)

	deps := handlers.Dependencies{
		Persistence:   cfg.Persistence.Backend,
		Sessions:      sessions,
		Logins:        auth.NewLoginFlow(sessions),
		LoginLimiter:  middleware.NewIPRateLimiter(cfg.VerifyRateLimit, time.Minute),
		Notifications: center,
		Catalog:       store,
		Studio: catalog.Studio{
			Store:    store,
			Media:    media,
			Metadata: metadataProvider,
		},
		MaxUploadBytes: cfg.MaxUploadBytes,
		Chat:           hub,
		Media:          mediaHandler,
		TrustProxy:     cfg.TrustProxy,
	}

	cleanup := func(ctx context.Context) error {
		hub.Close()
		return closeBackend(ctx)
	}
	return deps, cleanup, nil
}
