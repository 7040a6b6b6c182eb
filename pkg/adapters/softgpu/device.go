// Package softgpu provides a CPU implementation of the GPU port.
//
// It draws a single textured plane through a perspective camera, with
// linear-light blending and sRGB output, and runs post-process passes on
// the linear framebuffer. Work is split across row bands.
package softgpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/screenreel/pkg/ports"
)

var (
	// ErrBackendUnavailable is returned by a device that cannot create contexts.
	ErrBackendUnavailable = errors.New("softgpu: no rendering backend available")

	// ErrTargetSize is returned for a render target outside the supported size.
	ErrTargetSize = errors.New("softgpu: unsupported render target size")

	// ErrContextClosed is returned for calls on a closed context.
	ErrContextClosed = errors.New("softgpu: context closed")

	// ErrDisposed is returned when a disposed resource is used.
	ErrDisposed = errors.New("softgpu: resource disposed")

	// ErrForeignResource is returned when a resource from another context is used.
	ErrForeignResource = errors.New("softgpu: resource belongs to another context")
)

// Options configures a Device.
type Options struct {
	// MaxTargetEdge is the largest render target width or height (default: 8192).
	MaxTargetEdge int
	// MaxTextureSize is the largest texture edge; larger images are downscaled (default: 4096).
	MaxTextureSize int
	// Workers is the number of row bands rendered in parallel (default: NumCPU).
	Workers int
}

// Device implements ports.GPUDevice on the CPU.
type Device struct {
	opts        Options
	unavailable bool
}

// New creates a new Device.
func New(opts Options) *Device {
	if opts.MaxTargetEdge <= 0 {
		opts.MaxTargetEdge = 8192
	}
	if opts.MaxTextureSize <= 0 {
		opts.MaxTextureSize = 4096
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	initLUTs()
	return &Device{opts: opts}
}

// Unavailable returns a device whose Open always fails.
func Unavailable() *Device {
	return &Device{unavailable: true}
}

// Open creates a render target.
func (d *Device) Open(width, height int) (ports.GPUContext, error) {
	if d.unavailable {
		return nil, ErrBackendUnavailable
	}
	if width <= 0 || height <= 0 || width > d.opts.MaxTargetEdge || height > d.opts.MaxTargetEdge {
		return nil, fmt.Errorf("%w: %dx%d (max edge %d)", ErrTargetSize, width, height, d.opts.MaxTargetEdge)
	}

	dc := gg.NewContext(width, height)
	target, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("softgpu: unexpected render target type %T", dc.Image())
	}

	return &Context{
		opts:   d.opts,
		width:  width,
		height: height,
		dc:     dc,
		target: target,
		linear: make([]float32, width*height*3),
	}, nil
}

var _ ports.GPUDevice = (*Device)(nil)

// Context implements ports.GPUContext.
type Context struct {
	opts   Options
	width  int
	height int

	mu     sync.Mutex
	dc     *gg.Context
	target *image.RGBA
	linear []float32 // RGB, linear light, row-major top-down
	closed bool

	textures   atomic.Int64
	geometries atomic.Int64
	materials  atomic.Int64
}

// Size returns the render target dimensions.
func (c *Context) Size() (int, int) {
	return c.width, c.height
}

// UploadTexture converts img to a premultiplied linear texture.
func (c *Context) UploadTexture(img image.Image) (ports.Texture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrContextClosed
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("softgpu: empty texture image")
	}

	rgba := c.textureSource(img)
	tex := newTexture(c, rgba)
	c.textures.Add(1)
	return tex, nil
}

// textureSource returns img as non-premultiplied RGBA, downscaled to the texture limit.
func (c *Context) textureSource(img image.Image) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	limit := c.opts.MaxTextureSize
	if w > limit || h > limit {
		if w >= h {
			h = max(1, h*limit/w)
			w = limit
		} else {
			w = max(1, w*limit/h)
			h = limit
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}
	return dst
}

// NewPlane creates a plane geometry.
func (c *Context) NewPlane(width, height float64) (ports.Geometry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrContextClosed
	}
	if !(width > 0) || !(height > 0) {
		return nil, fmt.Errorf("softgpu: invalid plane size %gx%g", width, height)
	}
	c.geometries.Add(1)
	return &plane{ctx: c, width: width, height: height}, nil
}

// NewMaterial creates a material bound to tex.
func (c *Context) NewMaterial(tex ports.Texture) (ports.Material, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrContextClosed
	}
	t, ok := tex.(*texture)
	if !ok || t.ctx != c {
		return nil, ErrForeignResource
	}
	if t.disposed.Load() {
		return nil, ErrDisposed
	}
	c.materials.Add(1)
	return &material{ctx: c, tex: t}, nil
}

// Render draws the frame into the render target.
func (c *Context) Render(call ports.DrawCall) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrContextClosed
	}

	geo, ok := call.Geometry.(*plane)
	if !ok || geo.ctx != c {
		return ErrForeignResource
	}
	mat, ok := call.Material.(*material)
	if !ok || mat.ctx != c {
		return ErrForeignResource
	}
	if geo.disposed.Load() || mat.disposed.Load() || mat.tex.disposed.Load() {
		return ErrDisposed
	}

	bg := call.Background
	if bg == nil {
		bg = color.Black
	}
	c.dc.SetColor(bg)
	c.dc.Clear()
	c.loadLinear()

	c.drawPlane(geo, mat.tex, call.Camera, call.Transform)

	for _, pass := range call.Passes {
		switch p := pass.(type) {
		case ports.RadialBlurPass:
			c.radialBlur(p)
		case *ports.RadialBlurPass:
			c.radialBlur(*p)
		default:
			return fmt.Errorf("softgpu: unsupported post pass %T", pass)
		}
	}

	c.resolve()
	return nil
}

// ReadPixels copies the render target into dst, rows bottom-up.
func (c *Context) ReadPixels(dst []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrContextClosed
	}
	stride := c.width * 4
	if len(dst) < stride*c.height {
		return fmt.Errorf("softgpu: read buffer holds %d bytes, need %d", len(dst), stride*c.height)
	}
	for y := 0; y < c.height; y++ {
		src := c.target.Pix[y*c.target.Stride : y*c.target.Stride+stride]
		row := c.height - 1 - y
		copy(dst[row*stride:(row+1)*stride], src)
	}
	return nil
}

// Live returns the number of undisposed resources.
func (c *Context) Live() ports.ResourceCounts {
	return ports.ResourceCounts{
		Textures:   int(c.textures.Load()),
		Geometries: int(c.geometries.Load()),
		Materials:  int(c.materials.Load()),
	}
}

// Close releases the render target.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.dc = nil
	c.target = nil
	c.linear = nil
	return nil
}

var _ ports.GPUContext = (*Context)(nil)

// loadLinear fills the linear buffer from the cleared render target.
func (c *Context) loadLinear() {
	c.bands(func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			src := c.target.Pix[y*c.target.Stride:]
			dst := c.linear[y*c.width*3:]
			for x := 0; x < c.width; x++ {
				dst[x*3] = decodeLUT[src[x*4]]
				dst[x*3+1] = decodeLUT[src[x*4+1]]
				dst[x*3+2] = decodeLUT[src[x*4+2]]
			}
		}
	})
}

// resolve writes the linear buffer back to the render target as opaque sRGB.
func (c *Context) resolve() {
	c.bands(func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			src := c.linear[y*c.width*3:]
			dst := c.target.Pix[y*c.target.Stride:]
			for x := 0; x < c.width; x++ {
				dst[x*4] = encode(src[x*3])
				dst[x*4+1] = encode(src[x*3+1])
				dst[x*4+2] = encode(src[x*3+2])
				dst[x*4+3] = 255
			}
		}
	})
}
