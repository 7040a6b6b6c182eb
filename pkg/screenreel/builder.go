// Package screenreel provides a high-level API for turning images into
// animated videos.
package screenreel

import (
	"math"

	"github.com/user/screenreel/pkg/pipeline"
)

// UnitBuilder provides a fluent interface for building an ImageUnit.
type UnitBuilder struct {
	unit pipeline.ImageUnit
}

// NewUnitBuilder creates a builder with the default animation settings.
func NewUnitBuilder(name string, data []byte) *UnitBuilder {
	return &UnitBuilder{
		unit: pipeline.ImageUnit{
			Name:     name,
			Image:    data,
			Settings: pipeline.DefaultAnimationSettings(),
		},
	}
}

// Build returns the final ImageUnit. Numeric settings are clamped into the
// supported ranges.
func (b *UnitBuilder) Build() pipeline.ImageUnit {
	u := b.unit
	s := &u.Settings

	s.Duration = clamp(s.Duration, pipeline.MinUnitDuration, pipeline.MaxUnitDuration)
	s.Speed = clamp(s.Speed, pipeline.MinSpeed, pipeline.MaxSpeed)
	s.Zoom = clamp(s.Zoom, pipeline.MinZoom, pipeline.MaxZoom)
	s.Tilt = clamp(s.Tilt, -pipeline.MaxTilt, pipeline.MaxTilt)
	s.XRotation = clamp(s.XRotation, -pipeline.MaxRotation, pipeline.MaxRotation)
	s.YRotation = clamp(s.YRotation, -pipeline.MaxRotation, pipeline.MaxRotation)
	s.Blur.Intensity = clamp(s.Blur.Intensity, 0, 1)
	if s.Blur.Enabled {
		s.Blur.Radius = clamp(s.Blur.Radius, pipeline.MinBlurRadius, pipeline.MaxBlurRadius)
	}
	return u
}

// WithDuration sets the animation length in seconds.
func (b *UnitBuilder) WithDuration(seconds float64) *UnitBuilder {
	b.unit.Settings.Duration = seconds
	return b
}

// WithAnimation sets the motion variant.
func (b *UnitBuilder) WithAnimation(t pipeline.AnimationType) *UnitBuilder {
	b.unit.Settings.Type = t
	return b
}

// WithEasing sets the progress curve.
func (b *UnitBuilder) WithEasing(e pipeline.Easing) *UnitBuilder {
	b.unit.Settings.Easing = e
	return b
}

// WithSpeed sets the travel multiplier (0.5-2.0).
func (b *UnitBuilder) WithSpeed(speed float64) *UnitBuilder {
	b.unit.Settings.Speed = speed
	return b
}

// WithZoom sets the start distance multiplier (1.2-5.0).
func (b *UnitBuilder) WithZoom(zoom float64) *UnitBuilder {
	b.unit.Settings.Zoom = zoom
	return b
}

// WithTiltDegrees sets the z rotation in degrees (-50 to 50).
func (b *UnitBuilder) WithTiltDegrees(deg float64) *UnitBuilder {
	b.unit.Settings.Tilt = Radians(deg)
	return b
}

// WithRotationDegrees sets the x and y rotations in degrees (-30 to 30).
func (b *UnitBuilder) WithRotationDegrees(x, y float64) *UnitBuilder {
	b.unit.Settings.XRotation = Radians(x)
	b.unit.Settings.YRotation = Radians(y)
	return b
}

// WithBackground sets the clear colour as #rrggbb.
func (b *UnitBuilder) WithBackground(hex string) *UnitBuilder {
	b.unit.Settings.BackgroundColor = hex
	return b
}

// WithQuality sets the quality preset label.
func (b *UnitBuilder) WithQuality(label string) *UnitBuilder {
	b.unit.Settings.Quality = label
	return b
}

// WithFormat sets the output container.
func (b *UnitBuilder) WithFormat(c pipeline.Container) *UnitBuilder {
	b.unit.Settings.Format = c
	return b
}

// WithBlur enables the radial blur.
func (b *UnitBuilder) WithBlur(intensity, radius float64) *UnitBuilder {
	b.unit.Settings.Blur = pipeline.BlurEffect{Enabled: true, Intensity: intensity, Radius: radius}
	return b
}

// WithoutBlur disables the radial blur.
func (b *UnitBuilder) WithoutBlur() *UnitBuilder {
	b.unit.Settings.Blur.Enabled = false
	return b
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
