package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
// It allows saving intermediate processing results for debugging purposes.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveJobJSON saves the resolved job description as JSON.
	SaveJobJSON(data []byte) error

	// SaveFrame saves a rendered frame.
	SaveFrame(unitIndex, frameIndex int, img image.Image) error

	// Flush writes summaries built from the saved frames.
	Flush() error
}
