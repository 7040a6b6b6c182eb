package mocks

import (
	"image"

	"github.com/user/screenreel/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder.
type VideoEncoder struct {
	BeginFunc       func(width, height int, fps float64, opts ports.EncoderOptions) error
	EncodeFrameFunc func(img image.Image, timestampMs int) error
	EndFunc         func() ([]byte, error)

	// Recorded calls for verification
	BeginCalled      bool
	BeginOptions     ports.EncoderOptions
	BeginWidth       int
	BeginHeight      int
	BeginFPS         float64
	EncodeFrameCalls []EncodeFrameCall
	EndCalled        bool
}

// EncodeFrameCall records a call to EncodeFrame.
type EncodeFrameCall struct {
	TimestampMs int
	Image       image.Image
}

func (m *VideoEncoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	m.BeginCalled = true
	m.BeginWidth, m.BeginHeight, m.BeginFPS = width, height, fps
	m.BeginOptions = opts
	if m.BeginFunc != nil {
		return m.BeginFunc(width, height, fps, opts)
	}
	return nil
}

func (m *VideoEncoder) EncodeFrame(img image.Image, timestampMs int) error {
	m.EncodeFrameCalls = append(m.EncodeFrameCalls, EncodeFrameCall{TimestampMs: timestampMs, Image: img})
	if m.EncodeFrameFunc != nil {
		return m.EncodeFrameFunc(img, timestampMs)
	}
	return nil
}

func (m *VideoEncoder) End() ([]byte, error) {
	m.EndCalled = true
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	// Return minimal WebM header
	return []byte{0x1A, 0x45, 0xDF, 0xA3}, nil
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)

// CodecSupport is a mock implementation of ports.CodecSupport.
// Types listed in Supported are accepted; everything else is rejected.
type CodecSupport struct {
	Supported []string
	Queried   []string
}

func (m *CodecSupport) IsTypeSupported(mimeType string) bool {
	m.Queried = append(m.Queried, mimeType)
	for _, s := range m.Supported {
		if s == mimeType {
			return true
		}
	}
	return false
}

var _ ports.CodecSupport = (*CodecSupport)(nil)

// ContainerProbe is a mock implementation of ports.ContainerProbe.
type ContainerProbe struct {
	ProbeFunc func(data []byte) (ports.ContainerInfo, error)
	Calls     int
}

func (m *ContainerProbe) Probe(data []byte) (ports.ContainerInfo, error) {
	m.Calls++
	if m.ProbeFunc != nil {
		return m.ProbeFunc(data)
	}
	return ports.ContainerInfo{}, nil
}

var _ ports.ContainerProbe = (*ContainerProbe)(nil)
