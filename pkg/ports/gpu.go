package ports

import (
	"image"
	"image/color"
)

// GPUDevice opens render contexts on a graphics backend.
type GPUDevice interface {
	// Open creates an offscreen render target of the given size.
	Open(width, height int) (GPUContext, error)
}

// GPUContext is an offscreen render target and the resources allocated on it.
// Implementations need not be safe for concurrent use.
type GPUContext interface {
	// UploadTexture creates a texture from an sRGB image.
	UploadTexture(img image.Image) (Texture, error)

	// NewPlane creates a plane geometry of the given world-space size, centered at the origin.
	NewPlane(width, height float64) (Geometry, error)

	// NewMaterial creates an unlit textured material.
	NewMaterial(tex Texture) (Material, error)

	// Render draws one mesh over the background and runs the post-process passes.
	Render(call DrawCall) error

	// ReadPixels copies the render target into dst as RGBA8, rows bottom-up.
	// dst must hold width*height*4 bytes.
	ReadPixels(dst []byte) error

	// Size returns the render target dimensions.
	Size() (width, height int)

	// Live returns the number of resources not yet disposed.
	Live() ResourceCounts

	// Close releases the render target. Further calls fail.
	Close() error
}

// Texture is an uploaded image.
type Texture interface {
	Size() (width, height int)
	Dispose()
}

// Geometry is a mesh shape.
type Geometry interface {
	Dispose()
}

// Material binds a texture for drawing.
type Material interface {
	Dispose()
}

// Camera is a perspective camera looking down -z.
type Camera struct {
	FOV      float64 // vertical, degrees
	Near     float64
	Far      float64
	Position [3]float64
}

// Transform places a mesh in world space. Rotation is Euler XYZ in radians.
type Transform struct {
	Position [3]float64
	Rotation [3]float64
	Scale    float64
}

// DrawCall describes a complete frame.
type DrawCall struct {
	Background color.Color
	Camera     Camera
	Geometry   Geometry
	Material   Material
	Transform  Transform
	Passes     []PostPass
}

// PostPass is a full-screen effect applied after the mesh is drawn.
type PostPass interface {
	postPass()
}

// RadialBlurPass blurs pixels in proportion to their distance from the frame center.
type RadialBlurPass struct {
	Radius    float64 // uv distance at which blur reaches full strength
	Intensity float64 // 0..1
}

func (RadialBlurPass) postPass() {}

// ResourceCounts reports live GPU objects.
type ResourceCounts struct {
	Textures   int
	Geometries int
	Materials  int
}

// Total returns the sum of all live objects.
func (c ResourceCounts) Total() int {
	return c.Textures + c.Geometries + c.Materials
}
