package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/screenreel/pkg/pipeline"
)

// FrameRenderer is a mock implementation of pipeline.FrameRenderer.
// By default it returns a frame filled with a gray level derived from progress.
type FrameRenderer struct {
	RenderFrameFunc func(ctx context.Context, unitIndex int, unit pipeline.ImageUnit, progress float64, preset pipeline.QualityPreset) (pipeline.Frame, error)

	mu    sync.Mutex
	Calls []RenderFrameCall
}

// RenderFrameCall records a call to RenderFrame.
type RenderFrameCall struct {
	UnitIndex int
	Progress  float64
}

func (m *FrameRenderer) RenderFrame(ctx context.Context, unitIndex int, unit pipeline.ImageUnit, progress float64, preset pipeline.QualityPreset) (pipeline.Frame, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, RenderFrameCall{UnitIndex: unitIndex, Progress: progress})
	m.mu.Unlock()
	if m.RenderFrameFunc != nil {
		return m.RenderFrameFunc(ctx, unitIndex, unit, progress, preset)
	}
	img := image.NewRGBA(image.Rect(0, 0, preset.Width, preset.Height))
	level := uint8(progress * 255)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = level, level, level, 255
	}
	return pipeline.Frame{UnitIndex: unitIndex, Progress: progress, Image: img}, nil
}

// CallCount returns the number of RenderFrame calls.
func (m *FrameRenderer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

var _ pipeline.FrameRenderer = (*FrameRenderer)(nil)
