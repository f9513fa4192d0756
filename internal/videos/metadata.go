package videos

import (
	"context"
	"fmt"
)

// Metadata captures the details of a remote video needed to list it in the catalog.
type Metadata struct {
	Title       string
	Description string
	Thumbnail   string
	Uploader    string
	ViewCount   int64
	// DurationSeconds is zero when the source does not report a length.
	DurationSeconds float64
}

// Provider returns metadata for the supplied video URL.
type Provider interface {
	Lookup(ctx context.Context, url string) (Metadata, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, url string) (Metadata, error)

// Lookup calls f.
func (f ProviderFunc) Lookup(ctx context.Context, url string) (Metadata, error) {
	return f(ctx, url)
}

// DurationLabel renders a length as m:ss, or h:mm:ss from one hour up.
func DurationLabel(seconds float64) string {
	if seconds <= 0 {
		return "0:00"
	}
	total := int64(seconds + 0.5)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
