package pipeline

import "errors"

var (
	// ErrUnknownQuality is returned when a quality label has no preset.
	ErrUnknownQuality = errors.New("unknown quality preset")

	// ErrContextInitFailed is returned when the render context cannot be created.
	ErrContextInitFailed = errors.New("failed to initialize render context")

	// ErrTextureLoadFailed is returned when a source image cannot be decoded or uploaded.
	ErrTextureLoadFailed = errors.New("failed to load image texture")

	// ErrInvalidDuration is returned for out-of-range durations or an empty timeline.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrNoSupportedCodec is returned when the host supports none of the preferred types.
	ErrNoSupportedCodec = errors.New("no supported video codec")

	// ErrExportLimitReached is returned when the user's export quota is exhausted.
	ErrExportLimitReached = errors.New("export limit reached")

	// ErrAuthenticationRequired is returned when no user identity is available.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrNoImages is returned for a job without images.
	ErrNoImages = errors.New("no images to export")

	// ErrTooManyImages is returned for a job with more than MaxImages images.
	ErrTooManyImages = errors.New("too many images")

	// ErrInvalidSettings is returned for malformed or out-of-range animation settings.
	ErrInvalidSettings = errors.New("invalid animation settings")
)
