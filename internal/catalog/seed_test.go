package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSeed(t *testing.T) {
	videos, err := LoadSeed(strings.NewReader(`
videos:
  - id: seed-1
    title: První video
    channelName: 3Play
    views: 1200
    uploadedAt: 2026-01-15T10:00:00Z
    duration: "3:15"
  - id: seed-2
    title: Druhé video
    videoUrl: https://cdn.example.com/seed-2.mp4
`))
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos got %d", len(videos))
	}
	if videos[0].VideoURL != FallbackVideoURL || videos[0].Views != 1200 || videos[0].UploadedAt.IsZero() {
		t.Fatalf("unexpected first video %+v", videos[0])
	}
	if videos[1].VideoURL != "https://cdn.example.com/seed-2.mp4" {
		t.Fatalf("unexpected media reference %q", videos[1].VideoURL)
	}
}

func TestLoadSeedRejectsInvalidFixtures(t *testing.T) {
	cases := map[string]string{
		"missing title": "videos:\n  - id: a\n",
		"duplicate id":  "videos:\n  - id: a\n    title: A\n  - id: a\n    title: B\n",
		"unknown field": "videos:\n  - id: a\n    title: A\n    rating: 5\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadSeed(strings.NewReader(doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadSeedFileShipsDevCatalog(t *testing.T) {
	videos, err := LoadSeedFile(filepath.Join("..", "..", "seeds", "dev_catalog.yaml"))
	if err != nil {
		t.Fatalf("load dev catalog: %v", err)
	}
	if len(videos) == 0 {
		t.Fatal("expected dev catalog to contain videos")
	}

	if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error got %v", err)
	}
}
