package ports

import (
	"image"
)

// VideoEncoder abstracts video encoding operations.
type VideoEncoder interface {
	// Begin initializes the encoder with the specified dimensions and frame rate.
	Begin(width, height int, fps float64, opts EncoderOptions) error

	// EncodeFrame encodes a single frame at the specified timestamp.
	EncodeFrame(img image.Image, timestampMs int) error

	// End finalizes encoding and returns the video data.
	End() ([]byte, error)
}

// EncoderOptions configures video encoding parameters.
type EncoderOptions struct {
	MIMEType      string // negotiated container and codec, e.g. "video/webm;codecs=vp9"
	BitsPerSecond int
	Quality       int // CRF value: 0-63 (lower is higher quality), 0 for encoder default
}

// CodecSupport reports which container/codec types the host can produce.
type CodecSupport interface {
	IsTypeSupported(mimeType string) bool
}

// ContainerInfo describes an encoded video.
type ContainerInfo struct {
	Codec      string
	DurationMs int
	Width      int
	Height     int
}

// ContainerProbe reads metadata from an encoded video.
type ContainerProbe interface {
	Probe(data []byte) (ContainerInfo, error)
}
