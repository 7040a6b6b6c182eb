package softgpu

import (
	"github.com/user/screenreel/pkg/ports"
)

// clipVertex is a vertex in clip space with its texture coordinate.
type clipVertex struct {
	pos  vec4
	u, v float64
}

// screenVertex is a projected vertex ready for rasterization.
type screenVertex struct {
	x, y   float64 // pixels, y down
	invW   float64
	uOverW float64
	vOverW float64
}

// drawPlane rasterizes the textured plane into the linear buffer.
func (c *Context) drawPlane(geo *plane, tex *texture, cam ports.Camera, xf ports.Transform) {
	aspect := float64(c.width) / float64(c.height)
	proj := perspective(cam.FOV, aspect, cam.Near, cam.Far)
	view := translation(-cam.Position[0], -cam.Position[1], -cam.Position[2])
	model := translation(xf.Position[0], xf.Position[1], xf.Position[2]).
		mul(eulerXYZ(xf.Rotation[0], xf.Rotation[1], xf.Rotation[2])).
		mul(scaling(xf.Scale))
	mvp := proj.mul(view).mul(model)

	hw, hh := geo.width/2, geo.height/2
	quad := []clipVertex{
		{pos: mvp.apply(vec4{-hw, -hh, 0, 1}), u: 0, v: 0},
		{pos: mvp.apply(vec4{hw, -hh, 0, 1}), u: 1, v: 0},
		{pos: mvp.apply(vec4{hw, hh, 0, 1}), u: 1, v: 1},
		{pos: mvp.apply(vec4{-hw, hh, 0, 1}), u: 0, v: 1},
	}

	poly := clipNear(quad)
	if len(poly) < 3 {
		return
	}

	verts := make([]screenVertex, len(poly))
	for i, cv := range poly {
		invW := 1 / cv.pos[3]
		verts[i] = screenVertex{
			x:      (cv.pos[0]*invW + 1) * 0.5 * float64(c.width),
			y:      (1 - cv.pos[1]*invW) * 0.5 * float64(c.height),
			invW:   invW,
			uOverW: cv.u * invW,
			vOverW: cv.v * invW,
		}
	}

	c.bands(func(y0, y1 int) {
		for i := 1; i+1 < len(verts); i++ {
			c.fillTriangle(verts[0], verts[i], verts[i+1], tex, y0, y1)
		}
	})
}

// clipNear clips a convex polygon against the near plane (z >= -w).
func clipNear(in []clipVertex) []clipVertex {
	dist := func(v clipVertex) float64 { return v.pos[2] + v.pos[3] }

	out := make([]clipVertex, 0, len(in)+1)
	for i := range in {
		a := in[i]
		b := in[(i+1)%len(in)]
		da, db := dist(a), dist(b)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			var p vec4
			for k := range p {
				p[k] = a.pos[k] + (b.pos[k]-a.pos[k])*t
			}
			out = append(out, clipVertex{
				pos: p,
				u:   a.u + (b.u-a.u)*t,
				v:   a.v + (b.v-a.v)*t,
			})
		}
	}
	return out
}

func edge(a, b screenVertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// isTopLeft reports whether edge a->b owns pixels lying exactly on it.
// Triangles are wound clockwise on screen.
func isTopLeft(a, b screenVertex) bool {
	dy := b.y - a.y
	dx := b.x - a.x
	return dy < 0 || (dy == 0 && dx > 0)
}

func covers(e float64, topLeft bool) bool {
	return e > 0 || (e == 0 && topLeft)
}

// fillTriangle draws rows [y0, y1) of a triangle. Back faces are culled.
func (c *Context) fillTriangle(v0, v1, v2 screenVertex, tex *texture, y0, y1 int) {
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 {
		return
	}
	// Front faces are counter-clockwise in NDC, which is clockwise-negative here.
	if area > 0 {
		return
	}
	v1, v2 = v2, v1
	area = -area

	minX := max(0, floorInt(min(v0.x, v1.x, v2.x)))
	maxX := min(c.width-1, floorInt(max(v0.x, v1.x, v2.x)))
	minY := max(y0, floorInt(min(v0.y, v1.y, v2.y)))
	maxY := min(y1-1, floorInt(max(v0.y, v1.y, v2.y)))
	if minX > maxX || minY > maxY {
		return
	}

	tl0 := isTopLeft(v1, v2)
	tl1 := isTopLeft(v2, v0)
	tl2 := isTopLeft(v0, v1)
	invArea := 1 / area

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		row := c.linear[y*c.width*3:]
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			e0 := edge(v1, v2, px, py)
			e1 := edge(v2, v0, px, py)
			e2 := edge(v0, v1, px, py)
			if !covers(e0, tl0) || !covers(e1, tl1) || !covers(e2, tl2) {
				continue
			}

			l0, l1, l2 := e0*invArea, e1*invArea, e2*invArea
			invW := l0*v0.invW + l1*v1.invW + l2*v2.invW
			u := (l0*v0.uOverW + l1*v1.uOverW + l2*v2.uOverW) / invW
			v := (l0*v0.vOverW + l1*v1.vOverW + l2*v2.vOverW) / invW

			s := tex.sample(u, v)
			inv := 1 - s[3]
			row[x*3] = s[0] + row[x*3]*inv
			row[x*3+1] = s[1] + row[x*3+1]*inv
			row[x*3+2] = s[2] + row[x*3+2]*inv
		}
	}
}
