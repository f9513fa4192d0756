package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/threeplay/backend/internal/models"
)

// Seed is a catalog fixture loaded by the seed command.
type Seed struct {
	Videos []models.Video `yaml:"videos"`
}

// LoadSeedFile reads a YAML catalog fixture from path.
func LoadSeedFile(path string) ([]models.Video, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed %s: %w", path, err)
	}
	defer f.Close()

	return LoadSeed(f)
}

// LoadSeed decodes a YAML catalog fixture. Every video needs an id and a
// title; a missing media reference falls back to FallbackVideoURL.
func LoadSeed(r io.Reader) ([]models.Video, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed Seed
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	seen := make(map[string]struct{}, len(seed.Videos))
	for i := range seed.Videos {
		v := &seed.Videos[i]
		v.ID = strings.TrimSpace(v.ID)
		if v.ID == "" || strings.TrimSpace(v.Title) == "" {
			return nil, fmt.Errorf("seed video %d: id and title are required", i)
		}
		if _, dup := seen[v.ID]; dup {
			return nil, fmt.Errorf("seed video %d: duplicate id %q", i, v.ID)
		}
		seen[v.ID] = struct{}{}
		if v.VideoURL == "" {
			v.VideoURL = FallbackVideoURL
		}
	}
	return seed.Videos, nil
}
