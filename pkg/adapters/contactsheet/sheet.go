// Package contactsheet draws a grid of labelled frame thumbnails.
package contactsheet

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// Options configures the sheet layout.
type Options struct {
	Columns    int         // default: 6
	ThumbWidth int         // default: 240
	Gap        int         // default: 8
	LabelSpace int         // height reserved under each thumbnail (default: 18)
	Background color.Color // default: #1a1a2e
	Border     color.Color // default: #333355
	Text       color.Color // default: white
}

func (o Options) withDefaults() Options {
	if o.Columns <= 0 {
		o.Columns = 6
	}
	if o.ThumbWidth <= 0 {
		o.ThumbWidth = 240
	}
	if o.Gap <= 0 {
		o.Gap = 8
	}
	if o.LabelSpace <= 0 {
		o.LabelSpace = 18
	}
	if o.Background == nil {
		o.Background = color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}
	}
	if o.Border == nil {
		o.Border = color.RGBA{R: 0x33, G: 0x33, B: 0x55, A: 0xff}
	}
	if o.Text == nil {
		o.Text = color.White
	}
	return o
}

type entry struct {
	label string
	thumb *image.RGBA
}

// Sheet accumulates thumbnails. Images are scaled down as they are added,
// so the sheet never holds full-size frames.
type Sheet struct {
	opts Options

	mu          sync.Mutex
	entries     []entry
	thumbHeight int
}

// New creates an empty Sheet.
func New(opts Options) *Sheet {
	return &Sheet{opts: opts.withDefaults()}
}

// Add appends a thumbnail of img. The first image fixes the thumbnail aspect.
func (s *Sheet) Add(label string, img image.Image) {
	b := img.Bounds()
	if b.Empty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.thumbHeight == 0 {
		s.thumbHeight = max(1, s.opts.ThumbWidth*b.Dy()/b.Dx())
	}

	dst := image.NewRGBA(image.Rect(0, 0, s.opts.ThumbWidth, s.thumbHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	s.entries = append(s.entries, entry{label: label, thumb: dst})
}

// Len returns the number of thumbnails.
func (s *Sheet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Size returns the pixel size Render will produce.
func (s *Sheet) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size()
}

func (s *Sheet) size() (int, int) {
	n := len(s.entries)
	if n == 0 {
		return 0, 0
	}
	cols := min(n, s.opts.Columns)
	rows := (n + s.opts.Columns - 1) / s.opts.Columns
	cellW := s.opts.ThumbWidth
	cellH := s.thumbHeight + s.opts.LabelSpace
	return cols*cellW + (cols+1)*s.opts.Gap, rows*cellH + (rows+1)*s.opts.Gap
}

// Render draws the sheet. It returns nil when no thumbnails were added.
func (s *Sheet) Render() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, h := s.size()
	if w == 0 {
		return nil
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(s.opts.Background)
	dc.Clear()

	cellH := s.thumbHeight + s.opts.LabelSpace
	for i, e := range s.entries {
		col, row := i%s.opts.Columns, i/s.opts.Columns
		x := s.opts.Gap + col*(s.opts.ThumbWidth+s.opts.Gap)
		y := s.opts.Gap + row*(cellH+s.opts.Gap)

		dc.DrawImage(e.thumb, x, y)

		dc.SetColor(s.opts.Border)
		dc.SetLineWidth(1)
		dc.DrawRectangle(float64(x)+0.5, float64(y)+0.5, float64(s.opts.ThumbWidth-1), float64(s.thumbHeight-1))
		dc.Stroke()

		dc.SetColor(s.opts.Text)
		dc.DrawStringAnchored(e.label, float64(x)+float64(s.opts.ThumbWidth)/2, float64(y+s.thumbHeight)+float64(s.opts.LabelSpace)/2, 0.5, 0.5)
	}
	return dc.Image()
}
