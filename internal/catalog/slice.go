package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/threeplay/backend/internal/models"
	"github.com/threeplay/backend/internal/persist"
)

const (
	// SliceName is the persisted slice holding the catalog.
	SliceName = "video-storage"
	// SliceVersion is the current schema version of the catalog slice.
	// Version 0 records may lack a media reference.
	SliceVersion = 1

	// FallbackVideoURL is the media reference given to records that predate
	// media references.
	FallbackVideoURL = "https://test-videos.co.uk/vids/bigbuckbunny/mp4/h264/720/Big_Buck_Bunny_720_10s_1MB.mp4"
)

// State is the persisted form of the catalog.
type State struct {
	Videos []models.Video `json:"videos"`
}

// NewSlice describes the persisted catalog. A device without stored state
// starts from the mock catalog.
func NewSlice(backend persist.Backend, namespace string, now func() time.Time) *persist.Slice[State] {
	if now == nil {
		now = time.Now
	}
	return persist.NewSlice(backend, namespace, SliceName, SliceVersion,
		func() State { return State{Videos: MockVideos(now().UTC())} },
		Migrate)
}

// Migrate upgrades a catalog recorded at version from. It is total over every
// version up to SliceVersion; the current version passes through unchanged.
func Migrate(from int, raw json.RawMessage) (State, error) {
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("decode catalog v%d: %w", from, err)
	}

	switch {
	case from < 0 || from > SliceVersion:
		return State{}, fmt.Errorf("unknown catalog version %d", from)
	case from == SliceVersion:
		return state, nil
	}

	for i := range state.Videos {
		if strings.TrimSpace(state.Videos[i].VideoURL) == "" {
			state.Videos[i].VideoURL = FallbackVideoURL
		}
	}
	return state, nil
}
