package chat

import (
	"context"
	"errors"
	"testing"
)

func TestHubOpenReusesSessions(t *testing.T) {
	sched := NewManualScheduler()
	hub := NewHub(Options{Scheduler: sched})
	t.Cleanup(hub.Close)

	a := hub.Open("video-1")
	if hub.Open("video-1") != a {
		t.Fatal("expected the same session for the same video")
	}
	if hub.Open("video-2") == a {
		t.Fatal("expected separate sessions per video")
	}
	if got, ok := hub.Get("video-2"); !ok || got.VideoID() != "video-2" {
		t.Fatalf("unexpected session lookup %v %v", got, ok)
	}
	if _, ok := hub.Get("video-3"); ok {
		t.Fatal("video-3 was never opened")
	}
}

func TestHubLeaveAndClose(t *testing.T) {
	sched := NewManualScheduler()
	hub := NewHub(Options{Scheduler: sched})
	ctx := context.Background()

	first := hub.Open("video-1")
	if _, err := first.Send(ctx, author, "hi", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !hub.Leave("video-1") {
		t.Fatal("expected leave to close the open session")
	}
	if hub.Leave("video-1") {
		t.Fatal("second leave should report false")
	}
	if sched.Pending() != 0 {
		t.Fatal("leave should cancel pending timers")
	}

	second := hub.Open("video-2")
	hub.Close()
	if _, err := second.Send(ctx, author, "late", ""); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected closed session got %v", err)
	}
	if _, ok := hub.Get("video-2"); ok {
		t.Fatal("close should forget every session")
	}
}
