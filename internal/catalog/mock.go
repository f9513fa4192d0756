package catalog

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/threeplay/backend/internal/models"
)

const mockVideoCount = 8

// MockVideos returns the catalog a fresh device starts with. Views and
// upload times are pseudo-random but stable for a given now.
func MockVideos(now time.Time) []models.Video {
	videos := make([]models.Video, 0, mockVideoCount)
	for i := 0; i < mockVideoCount; i++ {
		rng := rand.New(rand.NewSource(int64(i + 1)))
		age := time.Duration(rng.Int63n(int64(10_000_000 * time.Second)))
		videos = append(videos, models.Video{
			ID:            fmt.Sprintf("mock-%d", i),
			Title:         fmt.Sprintf("Video Title %d - Ukázka obsahu", i+1),
			Description:   "Toto je ukázkové video pro testování platformy.",
			Thumbnail:     fmt.Sprintf("https://picsum.photos/seed/%d/320/180", i),
			VideoURL:      FallbackVideoURL,
			ChannelName:   fmt.Sprintf("Kanál %d", i+1),
			ChannelAvatar: fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%d", i),
			Views:         rng.Int63n(1_000_000),
			UploadedAt:    now.Add(-age),
			Duration:      "10:30",
		})
	}
	return videos
}
