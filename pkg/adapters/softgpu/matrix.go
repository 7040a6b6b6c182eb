package softgpu

import "math"

// mat4 is a column-major 4x4 matrix, matching GL conventions.
type mat4 [16]float64

type vec4 [4]float64

func identity() mat4 {
	return mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// mul returns a*b.
func (a mat4) mul(b mat4) mat4 {
	var m mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var s float64
			for k := 0; k < 4; k++ {
				s += a[k*4+row] * b[col*4+k]
			}
			m[col*4+row] = s
		}
	}
	return m
}

func (a mat4) apply(v vec4) vec4 {
	var out vec4
	for row := 0; row < 4; row++ {
		out[row] = a[row]*v[0] + a[4+row]*v[1] + a[8+row]*v[2] + a[12+row]*v[3]
	}
	return out
}

func translation(x, y, z float64) mat4 {
	m := identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

func scaling(s float64) mat4 {
	m := identity()
	m[0], m[5], m[10] = s, s, s
	return m
}

func rotationX(a float64) mat4 {
	c, s := math.Cos(a), math.Sin(a)
	m := identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

func rotationY(a float64) mat4 {
	c, s := math.Cos(a), math.Sin(a)
	m := identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

func rotationZ(a float64) mat4 {
	c, s := math.Cos(a), math.Sin(a)
	m := identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// eulerXYZ builds the rotation for intrinsic XYZ order: Rx * Ry * Rz.
func eulerXYZ(x, y, z float64) mat4 {
	return rotationX(x).mul(rotationY(y)).mul(rotationZ(z))
}

// perspective builds a GL projection from a vertical field of view in degrees.
func perspective(fovDeg, aspect, near, far float64) mat4 {
	top := near * math.Tan(fovDeg*math.Pi/360)
	height := 2 * top
	width := aspect * height
	left := -0.5 * width
	right := left + width
	bottom := top - height

	var m mat4
	m[0] = 2 * near / (right - left)
	m[5] = 2 * near / (top - bottom)
	m[8] = (right + left) / (right - left)
	m[9] = (top + bottom) / (top - bottom)
	m[10] = -(far + near) / (far - near)
	m[11] = -1
	m[14] = -2 * far * near / (far - near)
	return m
}
