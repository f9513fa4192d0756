package videos

import "errors"

var (
	// ErrProviderUnavailable indicates the metadata provider is not configured.
	ErrProviderUnavailable = errors.New("video metadata provider unavailable")
	// ErrEmptyMetadata indicates the source answered without any usable detail.
	ErrEmptyMetadata = errors.New("video metadata is empty")
)
