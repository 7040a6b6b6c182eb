// Package scene renders animation frames of an image on a GPU context.
//
// A Renderer owns one render context at a time. Jobs Acquire a Session,
// which creates the context lazily at the target resolution and closes it
// on Release. Per-frame GPU objects are always disposed before RenderFrame
// returns.
package scene

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/user/screenreel/pkg/pipeline"
	"github.com/user/screenreel/pkg/ports"
	"github.com/user/screenreel/pkg/transform"
)

// ErrSessionReleased is returned when a released session is used.
var ErrSessionReleased = errors.New("scene: session released")

// Options configures the camera and framing.
type Options struct {
	FOV       float64 // vertical, degrees (default: 75)
	Near      float64 // default: 0.1
	Far       float64 // default: 1000
	CameraZ   float64 // default: 5
	PlaneFill float64 // fraction of the viewport the plane may occupy (default: 0.8)
}

// DefaultOptions returns the standard framing.
func DefaultOptions() Options {
	return Options{
		FOV:       75,
		Near:      0.1,
		Far:       1000,
		CameraZ:   5,
		PlaneFill: 0.8,
	}
}

// Renderer grants exclusive use of a GPU device to one job at a time.
type Renderer struct {
	device ports.GPUDevice
	logger ports.Logger
	opts   Options
	sem    chan struct{}
}

// NewRenderer creates a new Renderer.
func NewRenderer(device ports.GPUDevice, logger ports.Logger, opts Options) *Renderer {
	def := DefaultOptions()
	if opts.FOV <= 0 {
		opts.FOV = def.FOV
	}
	if opts.Near <= 0 {
		opts.Near = def.Near
	}
	if opts.Far <= opts.Near {
		opts.Far = def.Far
	}
	if opts.CameraZ <= 0 {
		opts.CameraZ = def.CameraZ
	}
	if opts.PlaneFill <= 0 {
		opts.PlaneFill = def.PlaneFill
	}
	return &Renderer{
		device: device,
		logger: logger.WithComponent("scene"),
		opts:   opts,
		sem:    make(chan struct{}, 1),
	}
}

// Acquire waits until no other session is active and returns a new one.
func (r *Renderer) Acquire(ctx context.Context) (*Session, error) {
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Session{
		r:      r,
		images: make(map[int]*sourceImage),
	}, nil
}

// Session is one job's exclusive use of the render context.
type Session struct {
	r *Renderer

	// gpuMu serializes every call on the GPU context.
	gpuMu    sync.Mutex
	gpu      ports.GPUContext
	opened   int
	released bool

	cacheMu sync.Mutex
	images  map[int]*sourceImage

	releaseOnce sync.Once
}

type sourceImage struct {
	once sync.Once
	img  image.Image
	err  error
}

var _ pipeline.FrameRenderer = (*Session)(nil)

// RenderFrame renders one frame of a unit at the preset resolution.
func (s *Session) RenderFrame(ctx context.Context, unitIndex int, unit pipeline.ImageUnit, progress float64, preset pipeline.QualityPreset) (pipeline.Frame, error) {
	frame := pipeline.Frame{UnitIndex: unitIndex, Progress: progress}
	if err := ctx.Err(); err != nil {
		return frame, err
	}

	// Decoding runs outside the GPU lock so frames of a batch overlap here.
	img, err := s.source(unitIndex, unit.Image)
	if errors.Is(err, ErrSessionReleased) {
		return frame, err
	}
	if err != nil {
		return frame, fmt.Errorf("%w: image %d: %v", pipeline.ErrTextureLoadFailed, unitIndex+1, err)
	}
	bg, err := pipeline.ParseHexColor(unit.Settings.BackgroundColor)
	if err != nil {
		return frame, err
	}

	s.gpuMu.Lock()
	defer s.gpuMu.Unlock()
	if s.released {
		return frame, ErrSessionReleased
	}

	gpu, err := s.ensureContext(preset.Width, preset.Height)
	if err != nil {
		return frame, err
	}

	tex, err := gpu.UploadTexture(img)
	if err != nil {
		s.r.logger.Warn("Texture upload for image %d failed, retrying: %s", unitIndex+1, err)
		tex, err = gpu.UploadTexture(img)
	}
	if err != nil {
		return frame, fmt.Errorf("%w: image %d: %v", pipeline.ErrTextureLoadFailed, unitIndex+1, err)
	}
	defer tex.Dispose()

	b := img.Bounds()
	pw, ph := PlaneSize(float64(b.Dx())/float64(b.Dy()), float64(preset.Width)/float64(preset.Height), s.r.opts)
	geo, err := gpu.NewPlane(pw, ph)
	if err != nil {
		return frame, fmt.Errorf("create plane: %w", err)
	}
	defer geo.Dispose()

	mat, err := gpu.NewMaterial(tex)
	if err != nil {
		return frame, fmt.Errorf("create material: %w", err)
	}
	defer mat.Dispose()

	pose := transform.Compute(transform.ParamsFor(unit.Settings, progress))
	call := ports.DrawCall{
		Background: bg,
		Camera: ports.Camera{
			FOV:      s.r.opts.FOV,
			Near:     s.r.opts.Near,
			Far:      s.r.opts.Far,
			Position: [3]float64{0, 0, s.r.opts.CameraZ},
		},
		Geometry: geo,
		Material: mat,
		Transform: ports.Transform{
			Position: [3]float64{pose.Position.X, pose.Position.Y, pose.Position.Z},
			Rotation: [3]float64{pose.Rotation.X, pose.Rotation.Y, pose.Rotation.Z},
			Scale:    pose.Scale,
		},
	}
	if blur := unit.Settings.Blur; blur.Enabled {
		call.Passes = append(call.Passes, ports.RadialBlurPass{Radius: blur.Radius, Intensity: blur.Intensity})
	}

	if err := gpu.Render(call); err != nil {
		return frame, fmt.Errorf("render: %w", err)
	}

	w, h := preset.Width, preset.Height
	pixels := make([]byte, w*h*4)
	if err := gpu.ReadPixels(pixels); err != nil {
		return frame, fmt.Errorf("read pixels: %w", err)
	}

	frame.Image = flipRows(pixels, w, h)
	return frame, nil
}

// ensureContext returns the GPU context, opening or resizing it as needed.
// Callers hold gpuMu.
func (s *Session) ensureContext(width, height int) (ports.GPUContext, error) {
	if s.gpu != nil {
		if w, h := s.gpu.Size(); w == width && h == height {
			return s.gpu, nil
		}
		if err := s.gpu.Close(); err != nil {
			s.r.logger.Warn("Failed to close render context: %s", err)
		}
		s.gpu = nil
	}

	gpu, err := s.r.device.Open(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrContextInitFailed, err)
	}
	s.gpu = gpu
	s.opened++
	s.r.logger.Debug("Render context created: %dx%d", width, height)
	return gpu, nil
}

// source decodes a unit's image once per session. A failed decode is retried once.
func (s *Session) source(unitIndex int, data []byte) (image.Image, error) {
	s.cacheMu.Lock()
	if s.images == nil {
		s.cacheMu.Unlock()
		return nil, ErrSessionReleased
	}
	entry, ok := s.images[unitIndex]
	if !ok {
		entry = &sourceImage{}
		s.images[unitIndex] = entry
	}
	s.cacheMu.Unlock()

	entry.once.Do(func() {
		entry.img, entry.err = decodeImage(data)
		if entry.err != nil {
			s.r.logger.Warn("Image %d failed to decode, retrying: %s", unitIndex+1, entry.err)
			entry.img, entry.err = decodeImage(data)
		}
		if entry.err == nil {
			b := entry.img.Bounds()
			s.r.logger.Debug("Decoded image %d: %dx%d", unitIndex+1, b.Dx(), b.Dy())
		}
	})
	return entry.img, entry.err
}

// LiveObjects reports GPU objects still allocated on the context.
func (s *Session) LiveObjects() ports.ResourceCounts {
	s.gpuMu.Lock()
	defer s.gpuMu.Unlock()
	if s.gpu == nil {
		return ports.ResourceCounts{}
	}
	return s.gpu.Live()
}

// ContextsOpened returns how many render contexts this session created.
func (s *Session) ContextsOpened() int {
	s.gpuMu.Lock()
	defer s.gpuMu.Unlock()
	return s.opened
}

// Release closes the render context and lets the next job acquire the renderer.
// It is safe to call more than once.
func (s *Session) Release() error {
	var err error
	s.releaseOnce.Do(func() {
		s.gpuMu.Lock()
		s.released = true
		if s.gpu != nil {
			err = s.gpu.Close()
			s.gpu = nil
			s.r.logger.Debug("Render context released")
		}
		s.gpuMu.Unlock()

		s.cacheMu.Lock()
		s.images = nil
		s.cacheMu.Unlock()

		<-s.r.sem
	})
	return err
}

// PlaneSize returns the largest plane of the image's aspect that fits within
// the fill fraction of the visible area at z=0.
func PlaneSize(imageAspect, viewAspect float64, opts Options) (width, height float64) {
	viewHeight := math.Tan(opts.FOV*math.Pi/360) * opts.CameraZ * 2
	viewWidth := viewHeight * viewAspect
	width = math.Min(viewWidth*opts.PlaneFill, viewHeight*opts.PlaneFill*imageAspect)
	height = width / imageAspect
	return width, height
}

// flipRows converts bottom-up RGBA rows into a top-down image.
func flipRows(pixels []byte, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	stride := w * 4
	for y := 0; y < h; y++ {
		src := pixels[(h-1-y)*stride : (h-y)*stride]
		copy(img.Pix[y*img.Stride:y*img.Stride+stride], src)
	}
	return img
}
