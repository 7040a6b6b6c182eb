package pipeline

import (
	"fmt"
	"math"
)

// Limits on a single job.
const (
	MaxImages = 10

	MinUnitDuration  = 1.0  // seconds
	MaxUnitDuration  = 10.0 // seconds
	MaxTotalDuration = 30.0 // seconds

	MinSpeed = 0.5
	MaxSpeed = 2.0
	MinZoom  = 1.2
	MaxZoom  = 5.0

	MaxTilt     = 50 * math.Pi / 180
	MaxRotation = 30 * math.Pi / 180

	MinBlurRadius = 0.1
	MaxBlurRadius = 0.9
)

// floatTolerance absorbs binary rounding in sums and products of decimal inputs.
const floatTolerance = 1e-9

// ValidateUnits checks every unit's settings and the combined timeline length.
func ValidateUnits(units []ImageUnit) error {
	if len(units) == 0 {
		return ErrNoImages
	}
	if len(units) > MaxImages {
		return fmt.Errorf("%w: %d, at most %d", ErrTooManyImages, len(units), MaxImages)
	}

	total := 0.0
	for i, u := range units {
		if err := validateSettings(u.Settings); err != nil {
			return fmt.Errorf("image %d: %w", i+1, err)
		}
		total += u.Settings.Duration
	}

	if total > MaxTotalDuration+floatTolerance {
		return fmt.Errorf("%w: total %.2fs exceeds %.0fs", ErrInvalidDuration, total, MaxTotalDuration)
	}
	return nil
}

// TotalDuration returns the summed duration of all units in seconds.
func TotalDuration(units []ImageUnit) float64 {
	total := 0.0
	for _, u := range units {
		total += u.Settings.Duration
	}
	return total
}

func validateSettings(s AnimationSettings) error {
	d := s.Duration
	if math.IsNaN(d) || d < MinUnitDuration-floatTolerance || d > MaxUnitDuration+floatTolerance {
		return fmt.Errorf("%w: %.2fs is outside %.0f-%.0fs", ErrInvalidDuration, d, MinUnitDuration, MaxUnitDuration)
	}
	if !s.Type.Valid() {
		return fmt.Errorf("%w: animation type %d", ErrInvalidSettings, int(s.Type))
	}
	if !s.Easing.Valid() {
		return fmt.Errorf("%w: easing %q", ErrInvalidSettings, s.Easing)
	}
	if !s.Format.Valid() {
		return fmt.Errorf("%w: format %q", ErrInvalidSettings, s.Format)
	}
	if !inRange(s.Speed, MinSpeed, MaxSpeed) {
		return fmt.Errorf("%w: speed %.2f", ErrInvalidSettings, s.Speed)
	}
	if !inRange(s.Zoom, MinZoom, MaxZoom) {
		return fmt.Errorf("%w: zoom %.2f", ErrInvalidSettings, s.Zoom)
	}
	if !inRange(s.Tilt, -MaxTilt, MaxTilt) {
		return fmt.Errorf("%w: tilt %.4f rad", ErrInvalidSettings, s.Tilt)
	}
	if !inRange(s.XRotation, -MaxRotation, MaxRotation) || !inRange(s.YRotation, -MaxRotation, MaxRotation) {
		return fmt.Errorf("%w: rotation (%.4f, %.4f) rad", ErrInvalidSettings, s.XRotation, s.YRotation)
	}
	if !inRange(s.Blur.Intensity, 0, 1) {
		return fmt.Errorf("%w: blur intensity %.2f", ErrInvalidSettings, s.Blur.Intensity)
	}
	if s.Blur.Enabled && !inRange(s.Blur.Radius, MinBlurRadius, MaxBlurRadius) {
		return fmt.Errorf("%w: blur radius %.2f", ErrInvalidSettings, s.Blur.Radius)
	}
	if _, err := ParseHexColor(s.BackgroundColor); err != nil {
		return err
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo-floatTolerance && v <= hi+floatTolerance
}

// FrameCount returns the number of frames for a unit: ceil(duration * fps).
func FrameCount(duration float64, fps int) int {
	if duration <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Ceil(duration*float64(fps) - floatTolerance))
}

// FrameProgress maps frame i of n onto [0, 1]. A single frame sits at 0.
func FrameProgress(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}
