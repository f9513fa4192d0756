// Package persist stores named, versioned state slices in a key-value backend.
//
// A slice is written as a JSON envelope carrying its schema version. Loading a
// slice never fails: missing or unreadable data falls back to the slice's
// default state, and records written by an older version are passed through the
// slice's migration before use.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/threeplay/backend/internal/logging"
)

// ErrNotFound indicates the backend holds no value for the requested key.
var ErrNotFound = errors.New("persisted key not found")

// Backend is a durable key-value store holding raw slice envelopes.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MigrateFunc upgrades a state recorded at version from to the current
// version. It must be pure and total over every version below the current one.
type MigrateFunc[T any] func(from int, raw json.RawMessage) (T, error)

// Slice describes one persisted piece of state.
type Slice[T any] struct {
	Key     string
	Version int
	Default func() T
	Migrate MigrateFunc[T]

	backend Backend
}

type envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// NewSlice binds a slice definition to a backend. The key is prefixed with
// namespace when one is given.
func NewSlice[T any](backend Backend, namespace, name string, version int, def func() T, migrate MigrateFunc[T]) *Slice[T] {
	if backend == nil {
		panic("persist: backend must not be nil")
	}
	if def == nil {
		panic("persist: default state must not be nil")
	}
	return &Slice[T]{
		Key:     Key(namespace, name),
		Version: version,
		Default: def,
		Migrate: migrate,
		backend: backend,
	}
}

// Key namespaces a slice name.
func Key(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + ":" + name
}

// Load returns the stored state, migrated to the current version, or the
// default state when nothing usable is stored.
func (s *Slice[T]) Load(ctx context.Context) T {
	ctx, span := logging.StartSpan(ctx, "persist.load")
	defer span.End()

	logger := logging.FromContext(ctx).With("key", s.Key)

	raw, err := s.backend.Get(ctx, s.Key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("persisted state unreadable, using default", "error", err)
		}
		return s.Default()
	}

	state, err := s.decode(raw)
	if err != nil {
		logger.Warn("persisted state discarded, using default", "error", err)
		return s.Default()
	}
	return state
}

// Save writes state under the slice's current version.
func (s *Slice[T]) Save(ctx context.Context, state T) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.Key, err)
	}
	payload, err := json.Marshal(envelope{Version: s.Version, State: body})
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", s.Key, err)
	}
	if err := s.backend.Set(ctx, s.Key, payload); err != nil {
		return fmt.Errorf("store %s: %w", s.Key, err)
	}
	return nil
}

// Clear removes the stored state. A missing key is not an error.
func (s *Slice[T]) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.Key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("clear %s: %w", s.Key, err)
	}
	return nil
}

func (s *Slice[T]) decode(raw []byte) (T, error) {
	var zero T

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.State) == 0 || bytes.Equal(bytes.TrimSpace(env.State), []byte("null")) {
		return zero, errors.New("envelope has no state")
	}

	switch {
	case env.Version == s.Version:
		var state T
		if err := json.Unmarshal(env.State, &state); err != nil {
			return zero, fmt.Errorf("decode state: %w", err)
		}
		return state, nil
	case env.Version > s.Version:
		return zero, fmt.Errorf("stored version %d is newer than %d", env.Version, s.Version)
	case s.Migrate == nil:
		return zero, fmt.Errorf("no migration from version %d", env.Version)
	default:
		state, err := s.Migrate(env.Version, env.State)
		if err != nil {
			return zero, fmt.Errorf("migrate from version %d: %w", env.Version, err)
		}
		return state, nil
	}
}
