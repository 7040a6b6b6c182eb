package screenreel

import (
	"math"
	"testing"

	"github.com/user/screenreel/pkg/pipeline"
)

func TestUnitBuilder_Defaults(t *testing.T) {
	u := NewUnitBuilder("a.png", []byte{1, 2}).Build()

	if u.Name != "a.png" || len(u.Image) != 2 {
		t.Errorf("unexpected unit %+v", u)
	}
	if u.Settings != pipeline.DefaultAnimationSettings() {
		t.Errorf("expected default settings, got %+v", u.Settings)
	}
	if err := pipeline.ValidateUnits([]pipeline.ImageUnit{u}); err != nil {
		t.Errorf("default unit should validate: %v", err)
	}
}

func TestUnitBuilder_Setters(t *testing.T) {
	u := NewUnitBuilder("b.png", nil).
		WithDuration(3).
		WithAnimation(pipeline.AnimationSCurveLeft).
		WithEasing(pipeline.EasingLinear).
		WithSpeed(1.5).
		WithZoom(2).
		WithTiltDegrees(10).
		WithRotationDegrees(-5, 20).
		WithBackground("#000000").
		WithQuality("low").
		WithFormat(pipeline.ContainerWebM).
		WithBlur(0.8, 0.3).
		Build()

	s := u.Settings
	if s.Duration != 3 || s.Type != pipeline.AnimationSCurveLeft || s.Easing != pipeline.EasingLinear {
		t.Errorf("unexpected timing settings %+v", s)
	}
	if s.Speed != 1.5 || s.Zoom != 2 || s.Quality != "low" || s.Format != pipeline.ContainerWebM {
		t.Errorf("unexpected settings %+v", s)
	}
	if math.Abs(s.Tilt-10*math.Pi/180) > 1e-12 || math.Abs(s.XRotation+5*math.Pi/180) > 1e-12 {
		t.Errorf("angles not converted: tilt %v x %v", s.Tilt, s.XRotation)
	}
	if !s.Blur.Enabled || s.Blur.Intensity != 0.8 || s.Blur.Radius != 0.3 {
		t.Errorf("unexpected blur %+v", s.Blur)
	}

	if NewUnitBuilder("c", nil).WithBlur(0.5, 0.5).WithoutBlur().Build().Settings.Blur.Enabled {
		t.Error("WithoutBlur should disable the blur")
	}
}

func TestUnitBuilder_Clamps(t *testing.T) {
	u := NewUnitBuilder("c.png", nil).
		WithDuration(60).
		WithSpeed(0.1).
		WithZoom(math.NaN()).
		WithTiltDegrees(90).
		WithRotationDegrees(-45, 45).
		WithBlur(2, 0.95).
		Build()

	s := u.Settings
	if s.Duration != pipeline.MaxUnitDuration || s.Speed != pipeline.MinSpeed || s.Zoom != pipeline.MinZoom {
		t.Errorf("expected clamped scalars, got %+v", s)
	}
	if s.Tilt != pipeline.MaxTilt || s.XRotation != -pipeline.MaxRotation || s.YRotation != pipeline.MaxRotation {
		t.Errorf("expected clamped angles, got %v %v %v", s.Tilt, s.XRotation, s.YRotation)
	}
	if s.Blur.Intensity != 1 || s.Blur.Radius != pipeline.MaxBlurRadius {
		t.Errorf("expected clamped blur, got %+v", s.Blur)
	}
	if err := pipeline.ValidateUnits([]pipeline.ImageUnit{u}); err != nil {
		t.Errorf("clamped unit should validate: %v", err)
	}
}

func TestDegreesRadians(t *testing.T) {
	if got := Degrees(Radians(17)); math.Abs(got-17) > 1e-12 {
		t.Errorf("round trip gave %v", got)
	}
}
