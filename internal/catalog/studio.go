package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/threeplay/backend/internal/logging"
	"github.com/threeplay/backend/internal/models"
	"github.com/threeplay/backend/internal/videos"
)

var (
	// ErrUnsupportedMedia indicates an upload whose content type is not an accepted video format.
	ErrUnsupportedMedia = errors.New("unsupported video format")
	// ErrMissingTitle indicates an upload without a title.
	ErrMissingTitle = errors.New("video title is required")
	// ErrInvalidURL indicates an import of something that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid video url")
	// ErrStorageUnavailable indicates no media storage is configured.
	ErrStorageUnavailable = errors.New("media storage unavailable")
)

// AcceptedVideoTypes lists the content types an upload may carry.
var AcceptedVideoTypes = map[string]string{
	"video/mp4":        ".mp4",
	"video/webm":       ".webm",
	"video/ogg":        ".ogv",
	"video/quicktime":  ".mov",
	"video/x-msvideo":  ".avi",
	"video/x-matroska": ".mkv",
}

// MediaStorage persists uploaded media and returns the reference stored on
// the video.
type MediaStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Studio publishes new videos into a Store.
type Studio struct {
	Store    *Store
	Media    MediaStorage
	Metadata videos.Provider
	NowFunc  func() time.Time
}

// Upload describes a video file published from the editor.
type Upload struct {
	Title       string
	Description string
	Thumbnail   string
	Duration    string
	Filename    string
	ContentType string
	Body        io.Reader
}

// Publish stores the media file and adds the resulting video to the catalog.
// The owner, when signed in, becomes the video's channel.
func (s Studio) Publish(ctx context.Context, upload Upload, owner *models.User) (models.Video, error) {
	if s.Media == nil {
		return models.Video{}, ErrStorageUnavailable
	}

	title := strings.TrimSpace(upload.Title)
	if title == "" {
		return models.Video{}, ErrMissingTitle
	}

	ext, ok := videoExtension(upload.ContentType, upload.Filename)
	if !ok {
		return models.Video{}, fmt.Errorf("%w: %q", ErrUnsupportedMedia, upload.ContentType)
	}

	id := uuid.NewString()
	ref, err := s.Media.Save(ctx, path.Join(id, "video"+ext), upload.Body)
	if err != nil {
		return models.Video{}, fmt.Errorf("store media: %w", err)
	}

	duration := upload.Duration
	if duration == "" {
		duration = "0:00"
	}

	video := s.newVideo(id, owner)
	video.Title = title
	video.Description = upload.Description
	video.Thumbnail = upload.Thumbnail
	video.VideoURL = ref
	video.Duration = duration

	s.Store.Add(ctx, video)
	logging.FromContext(ctx).Info("video published", "videoId", id, "media", ref)
	return video, nil
}

// Import adds a remote video to the catalog using the metadata provider.
func (s Studio) Import(ctx context.Context, rawURL string, owner *models.User) (models.Video, error) {
	if s.Metadata == nil {
		return models.Video{}, videos.ErrProviderUnavailable
	}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return models.Video{}, ErrInvalidURL
	}

	meta, err := s.Metadata.Lookup(ctx, u.String())
	if err != nil {
		return models.Video{}, fmt.Errorf("lookup metadata: %w", err)
	}

	video := s.newVideo(uuid.NewString(), owner)
	video.Title = meta.Title
	video.Description = meta.Description
	video.Thumbnail = meta.Thumbnail
	video.VideoURL = u.String()
	video.Views = meta.ViewCount
	video.Duration = videos.DurationLabel(meta.DurationSeconds)
	if meta.Uploader != "" {
		video.ChannelName = meta.Uploader
	}

	s.Store.Add(ctx, video)
	logging.FromContext(ctx).Info("video imported", "videoId", video.ID, "url", video.VideoURL)
	return video, nil
}

// videoExtension resolves the stored file extension from the declared content
// type, falling back to the filename when the type is missing or generic.
func videoExtension(contentType, filename string) (string, bool) {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = strings.ToLower(mediaType)
		if ext, ok := AcceptedVideoTypes[mediaType]; ok {
			return ext, true
		}
		if mediaType != "application/octet-stream" {
			return "", false
		}
	}

	want := strings.ToLower(path.Ext(filename))
	if want == "" {
		return "", false
	}
	for _, ext := range AcceptedVideoTypes {
		if ext == want {
			return ext, true
		}
	}
	return "", false
}

func (s Studio) newVideo(id string, owner *models.User) models.Video {
	video := models.Video{ID: id, UploadedAt: s.now()}
	if owner != nil {
		video.UserID = owner.ID
		video.ChannelName = owner.Username
		video.ChannelAvatar = owner.Avatar
	}
	return video
}

func (s Studio) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}
