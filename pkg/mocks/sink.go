package mocks

import (
	"image"
	"sync"

	"github.com/user/screenreel/pkg/ports"
)

// FrameKey identifies a saved frame.
type FrameKey struct {
	Unit  int
	Frame int
}

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	JobJSON []byte
	Frames  map[FrameKey]image.Image
	Flushed int
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
		Frames:  make(map[FrameKey]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveJobJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JobJSON = data
	return nil
}

func (m *DebugSink) SaveFrame(unitIndex, frameIndex int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames[FrameKey{Unit: unitIndex, Frame: frameIndex}] = img
	return nil
}

func (m *DebugSink) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Flushed++
	return nil
}

// FrameCount returns the number of saved frames.
func (m *DebugSink) FrameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Frames)
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                                              { return false }
func (m *NullSink) SaveJobJSON(data []byte) error                              { return nil }
func (m *NullSink) SaveFrame(unitIndex, frameIndex int, img image.Image) error { return nil }
func (m *NullSink) Flush() error                                               { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
