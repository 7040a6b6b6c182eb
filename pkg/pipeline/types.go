package pipeline

import (
	"context"
	"fmt"
	"image"
	"math"
)

// =============================================================================
// Animation Settings
// =============================================================================

// AnimationType selects one of the closed set of camera-relative motion variants.
type AnimationType int

const (
	AnimationRise AnimationType = iota
	AnimationPushForward
	AnimationRiseLeft
	AnimationRiseRight
	AnimationRevealUp
	AnimationRevealDown
	AnimationSCurveLeft
	AnimationSCurveRight
	AnimationSCurveUp
	AnimationSCurveDown

	// AnimationTypeCount is the number of defined variants.
	AnimationTypeCount
)

var animationNames = [AnimationTypeCount]string{
	AnimationRise:        "rise",
	AnimationPushForward: "push-forward",
	AnimationRiseLeft:    "rise-left",
	AnimationRiseRight:   "rise-right",
	AnimationRevealUp:    "reveal-up",
	AnimationRevealDown:  "reveal-down",
	AnimationSCurveLeft:  "s-curve-left",
	AnimationSCurveRight: "s-curve-right",
	AnimationSCurveUp:    "s-curve-up",
	AnimationSCurveDown:  "s-curve-down",
}

// AnimationTypes returns all variants in declaration order.
func AnimationTypes() []AnimationType {
	types := make([]AnimationType, 0, AnimationTypeCount)
	for t := AnimationType(0); t < AnimationTypeCount; t++ {
		types = append(types, t)
	}
	return types
}

// Valid reports whether t names a defined variant.
func (t AnimationType) Valid() bool {
	return t >= 0 && t < AnimationTypeCount
}

// String returns the kebab-case name of the variant.
func (t AnimationType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("AnimationType(%d)", int(t))
	}
	return animationNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t AnimationType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: animation type %d", ErrInvalidSettings, int(t))
	}
	return []byte(animationNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *AnimationType) UnmarshalText(text []byte) error {
	parsed, err := ParseAnimationType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseAnimationType parses a kebab-case variant name.
func ParseAnimationType(s string) (AnimationType, error) {
	for i, name := range animationNames {
		if name == s {
			return AnimationType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown animation type %q", ErrInvalidSettings, s)
}

// Easing selects the progress easing curve.
type Easing string

const (
	EasingSmooth Easing = "smooth"
	EasingLinear Easing = "linear"
)

// Valid reports whether e is a known easing.
func (e Easing) Valid() bool {
	return e == EasingSmooth || e == EasingLinear
}

// Container is the user-facing output format.
type Container string

const (
	ContainerMP4  Container = "mp4"
	ContainerWebM Container = "webm"
)

// Valid reports whether c is a known container.
func (c Container) Valid() bool {
	return c == ContainerMP4 || c == ContainerWebM
}

// BlurEffect configures the radial depth-of-field post-process.
type BlurEffect struct {
	Enabled   bool    `json:"enabled"`
	Intensity float64 `json:"intensity"` // 0..1
	Radius    float64 `json:"radius"`    // 0.1..0.9, fraction of the half diagonal in uv space
}

// AnimationSettings describes how a single image is animated.
// Angles are in radians.
type AnimationSettings struct {
	Duration        float64       `json:"duration"` // seconds
	Type            AnimationType `json:"type"`
	Easing          Easing        `json:"easing"`
	Speed           float64       `json:"speed"`
	Zoom            float64       `json:"zoom"`
	Tilt            float64       `json:"tilt"`
	XRotation       float64       `json:"xRotation"`
	YRotation       float64       `json:"yRotation"`
	BackgroundColor string        `json:"backgroundColor"`
	Quality         string        `json:"quality"`
	Format          Container     `json:"format"`
	Blur            BlurEffect    `json:"blur"`
}

// DefaultAnimationSettings returns the settings applied to a newly added image.
func DefaultAnimationSettings() AnimationSettings {
	return AnimationSettings{
		Duration:        5,
		Type:            AnimationRise,
		Easing:          EasingSmooth,
		Speed:           1.0,
		Zoom:            3.0,
		Tilt:            -17 * math.Pi / 180,
		XRotation:       17 * math.Pi / 180,
		YRotation:       16 * math.Pi / 180,
		BackgroundColor: "#f8f9fa",
		Quality:         "high",
		Format:          ContainerMP4,
		Blur: BlurEffect{
			Enabled:   false,
			Intensity: 0.5,
			Radius:    0.4,
		},
	}
}

// ImageUnit is one source image with its animation settings.
type ImageUnit struct {
	Name     string            `json:"name,omitempty"`
	Image    []byte            `json:"-"`
	Settings AnimationSettings `json:"settings"`
}

// QualityPreset fixes the output resolution, frame rate and bitrate scale.
type QualityPreset struct {
	Label        string  `json:"label"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	FPS          int     `json:"fps"`
	BitrateScale float64 `json:"bitrateScale"`
}

// BaseBitrate is the bitrate of a preset with scale 1.0, in bits per second.
const BaseBitrate = 8_000_000

// Bitrate returns the target bitrate in bits per second.
func (p QualityPreset) Bitrate() int {
	return int(math.Floor(BaseBitrate * p.BitrateScale))
}

// FrameBytes returns the size of one RGBA frame at the preset resolution.
func (p QualityPreset) FrameBytes() uint64 {
	return uint64(p.Width) * uint64(p.Height) * 4
}

// =============================================================================
// Geometry
// =============================================================================

// Vec3 is a three-component vector.
type Vec3 struct {
	X, Y, Z float64
}

// Pose is the transform applied to the image plane for one frame.
type Pose struct {
	Position Vec3
	Rotation Vec3 // Euler angles in radians, XYZ order
	Scale    float64
}

// =============================================================================
// Render Stage Types
// =============================================================================

// Frame is one rendered image, rows top-down.
type Frame struct {
	UnitIndex int
	Index     int // index within the unit
	Progress  float64
	Image     *image.RGBA
}

// ProgressFunc receives human-readable status updates.
type ProgressFunc func(status string)

// FrameRenderer produces a single frame of a unit.
type FrameRenderer interface {
	RenderFrame(ctx context.Context, unitIndex int, unit ImageUnit, progress float64, preset QualityPreset) (Frame, error)
}

// RenderInput contains parameters for the frame batch scheduler.
type RenderInput struct {
	Units    []ImageUnit
	Preset   QualityPreset
	Renderer FrameRenderer
	Progress ProgressFunc
}

// RenderResult contains every frame in playback order.
type RenderResult struct {
	Frames      []Frame
	FrameCounts []int // per unit
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput contains parameters for video encoding.
type EncodeInput struct {
	Frames        []Frame
	Preset        QualityPreset
	TotalDuration float64 // seconds, sum of unit durations
}

// EncodeResult contains the encoded video.
type EncodeResult struct {
	VideoData  []byte
	MIMEType   string
	DurationMs int
	FrameCount int // frames actually submitted to the encoder
	FileSize   int64
}
