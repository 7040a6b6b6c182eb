package mocks

import (
	"errors"
	"image"
	"sync"

	"github.com/user/screenreel/pkg/ports"
)

// GPUDevice is a mock implementation of ports.GPUDevice.
type GPUDevice struct {
	OpenFunc func(width, height int) (ports.GPUContext, error)

	mu        sync.Mutex
	OpenCalls int
	Contexts  []*GPUContext
}

func (m *GPUDevice) Open(width, height int) (ports.GPUContext, error) {
	m.mu.Lock()
	m.OpenCalls++
	m.mu.Unlock()
	if m.OpenFunc != nil {
		return m.OpenFunc(width, height)
	}
	ctx := NewGPUContext(width, height)
	m.mu.Lock()
	m.Contexts = append(m.Contexts, ctx)
	m.mu.Unlock()
	return ctx, nil
}

// Opened returns the number of Open calls.
func (m *GPUDevice) Opened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.OpenCalls
}

var _ ports.GPUDevice = (*GPUDevice)(nil)

// GPUContext is a mock implementation of ports.GPUContext.
// ReadPixels fills every byte of bottom-up row r with r%256.
type GPUContext struct {
	UploadTextureFunc func(img image.Image) error
	RenderFunc        func(call ports.DrawCall) error

	mu          sync.Mutex
	width       int
	height      int
	live        ports.ResourceCounts
	Closed      bool
	RenderCalls []ports.DrawCall
}

// NewGPUContext creates a new mock GPUContext.
func NewGPUContext(width, height int) *GPUContext {
	return &GPUContext{width: width, height: height}
}

var errMockClosed = errors.New("mock gpu: context closed")

func (m *GPUContext) UploadTexture(img image.Image) (ports.Texture, error) {
	if m.UploadTextureFunc != nil {
		if err := m.UploadTextureFunc(img); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return nil, errMockClosed
	}
	m.live.Textures++
	b := img.Bounds()
	return &mockTexture{ctx: m, w: b.Dx(), h: b.Dy()}, nil
}

func (m *GPUContext) NewPlane(width, height float64) (ports.Geometry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return nil, errMockClosed
	}
	m.live.Geometries++
	return &mockResource{release: func() { m.live.Geometries-- }, mu: &m.mu}, nil
}

func (m *GPUContext) NewMaterial(tex ports.Texture) (ports.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return nil, errMockClosed
	}
	m.live.Materials++
	return &mockResource{release: func() { m.live.Materials-- }, mu: &m.mu}, nil
}

func (m *GPUContext) Render(call ports.DrawCall) error {
	if m.RenderFunc != nil {
		if err := m.RenderFunc(call); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return errMockClosed
	}
	m.RenderCalls = append(m.RenderCalls, call)
	return nil
}

func (m *GPUContext) ReadPixels(dst []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return errMockClosed
	}
	stride := m.width * 4
	for r := 0; r < m.height; r++ {
		row := dst[r*stride : (r+1)*stride]
		for i := range row {
			row[i] = byte(r % 256)
		}
	}
	return nil
}

func (m *GPUContext) Size() (int, int) {
	return m.width, m.height
}

func (m *GPUContext) Live() ports.ResourceCounts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live
}

func (m *GPUContext) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *GPUContext) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}

// Renders returns a copy of the recorded draw calls.
func (m *GPUContext) Renders() []ports.DrawCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.DrawCall, len(m.RenderCalls))
	copy(out, m.RenderCalls)
	return out
}

var _ ports.GPUContext = (*GPUContext)(nil)

type mockTexture struct {
	ctx      *GPUContext
	w, h     int
	disposed bool
}

func (t *mockTexture) Size() (int, int) { return t.w, t.h }

func (t *mockTexture) Dispose() {
	t.ctx.mu.Lock()
	defer t.ctx.mu.Unlock()
	if !t.disposed {
		t.disposed = true
		t.ctx.live.Textures--
	}
}

type mockResource struct {
	mu       *sync.Mutex
	release  func()
	disposed bool
}

func (r *mockResource) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.disposed {
		r.disposed = true
		r.release()
	}
}
