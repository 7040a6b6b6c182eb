package softgpu

import (
	"math"

	"github.com/user/screenreel/pkg/ports"
)

const (
	blurMinFactor  = 0.01
	blurMaxSamples = 12
)

// blurFactor returns the blur strength at a uv distance from the frame center.
func blurFactor(dist float64, p ports.RadialBlurPass) float64 {
	return smoothstep(p.Radius*0.5, p.Radius, dist) * p.Intensity
}

func smoothstep(e0, e1, x float64) float64 {
	t := (x - e0) / (e1 - e0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// radialBlur applies a Gaussian blur whose strength grows with distance from
// the center. Pixels with a negligible factor are left untouched. Taps are
// whole texels, so sampling never interpolates; reads clamp to the edge.
func (c *Context) radialBlur(p ports.RadialBlurPass) {
	if p.Intensity <= 0 {
		return
	}

	src := make([]float32, len(c.linear))
	copy(src, c.linear)

	w, h := c.width, c.height
	pixelW := 1 / float64(w)
	pixelH := 1 / float64(h)

	c.bands(func(y0, y1 int) {
		var wx, wy [2*blurMaxSamples + 1]float64
		for y := y0; y < y1; y++ {
			v := (float64(y) + 0.5) * pixelH
			for x := 0; x < w; x++ {
				u := (float64(x) + 0.5) * pixelW
				dist := math.Hypot(u-0.5, v-0.5)
				bf := blurFactor(dist, p)
				if bf < blurMinFactor {
					continue
				}

				samples := min(int(bf*4*2), blurMaxSamples)
				// exp(-|offset|^2 / (2 bf^2)) separates into x and y factors.
				k := 1 / (2 * bf * bf)
				var sumX, sumY float64
				for d := -samples; d <= samples; d++ {
					ox := float64(d) * pixelW
					oy := float64(d) * pixelH
					wx[d+samples] = math.Exp(-ox * ox * k)
					wy[d+samples] = math.Exp(-oy * oy * k)
					sumX += wx[d+samples]
					sumY += wy[d+samples]
				}

				var r, g, b float64
				for dy := -samples; dy <= samples; dy++ {
					sy := clampInt(y+dy, 0, h-1)
					srow := src[sy*w*3:]
					var sr, sg, sb float64
					for dx := -samples; dx <= samples; dx++ {
						sx := clampInt(x+dx, 0, w-1) * 3
						weight := wx[dx+samples]
						sr += float64(srow[sx]) * weight
						sg += float64(srow[sx+1]) * weight
						sb += float64(srow[sx+2]) * weight
					}
					weight := wy[dy+samples]
					r += sr * weight
					g += sg * weight
					b += sb * weight
				}

				total := sumX * sumY
				i := (y*w + x) * 3
				c.linear[i] = float32(r / total)
				c.linear[i+1] = float32(g / total)
				c.linear[i+2] = float32(b / total)
			}
		}
	})
}
