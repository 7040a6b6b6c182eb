package softgpu

import (
	"image"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// texture holds premultiplied linear RGBA texels, row 0 at the top of the image.
type texture struct {
	ctx      *Context
	width    int
	height   int
	texels   []float32
	opaque   bool
	disposed atomic.Bool
}

func newTexture(c *Context, img *image.NRGBA) *texture {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	t := &texture{
		ctx:    c,
		width:  w,
		height: h,
		texels: make([]float32, w*h*4),
		opaque: true,
	}
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride:]
		dst := t.texels[y*w*4:]
		for x := 0; x < w; x++ {
			a := float32(src[x*4+3]) / 255
			if src[x*4+3] != 255 {
				t.opaque = false
			}
			dst[x*4] = decodeLUT[src[x*4]] * a
			dst[x*4+1] = decodeLUT[src[x*4+1]] * a
			dst[x*4+2] = decodeLUT[src[x*4+2]] * a
			dst[x*4+3] = a
		}
	}
	return t
}

func (t *texture) Size() (int, int) {
	return t.width, t.height
}

func (t *texture) Dispose() {
	if t.disposed.CompareAndSwap(false, true) {
		t.texels = nil
		t.ctx.textures.Add(-1)
	}
}

// sample returns the bilinear-filtered texel at uv with clamp-to-edge wrapping.
// v=1 is the top row of the source image.
func (t *texture) sample(u, v float64) [4]float32 {
	fx := u*float64(t.width) - 0.5
	fy := (1-v)*float64(t.height) - 0.5

	x0 := floorInt(fx)
	y0 := floorInt(fy)
	wx := float32(fx - float64(x0))
	wy := float32(fy - float64(y0))

	x1 := clampInt(x0+1, 0, t.width-1)
	y1 := clampInt(y0+1, 0, t.height-1)
	x0 = clampInt(x0, 0, t.width-1)
	y0 = clampInt(y0, 0, t.height-1)

	i00 := (y0*t.width + x0) * 4
	i10 := (y0*t.width + x1) * 4
	i01 := (y1*t.width + x0) * 4
	i11 := (y1*t.width + x1) * 4

	var out [4]float32
	for ch := 0; ch < 4; ch++ {
		top := t.texels[i00+ch]*(1-wx) + t.texels[i10+ch]*wx
		bottom := t.texels[i01+ch]*(1-wx) + t.texels[i11+ch]*wx
		out[ch] = top*(1-wy) + bottom*wy
	}
	return out
}

type plane struct {
	ctx      *Context
	width    float64
	height   float64
	disposed atomic.Bool
}

func (p *plane) Dispose() {
	if p.disposed.CompareAndSwap(false, true) {
		p.ctx.geometries.Add(-1)
	}
}

type material struct {
	ctx      *Context
	tex      *texture
	disposed atomic.Bool
}

func (m *material) Dispose() {
	if m.disposed.CompareAndSwap(false, true) {
		m.ctx.materials.Add(-1)
	}
}

// bands runs fn over disjoint row ranges covering the render target.
func (c *Context) bands(fn func(y0, y1 int)) {
	workers := c.opts.Workers
	if workers > c.height {
		workers = c.height
	}
	if workers <= 1 {
		fn(0, c.height)
		return
	}

	rows := (c.height + workers - 1) / workers
	var g errgroup.Group
	for y0 := 0; y0 < c.height; y0 += rows {
		y0 := y0
		y1 := min(y0+rows, c.height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}

func floorInt(f float64) int {
	i := int(f)
	if f < float64(i) {
		i--
	}
	return i
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
