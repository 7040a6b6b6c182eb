package transform

import (
	"math"
	"testing"

	"github.com/user/screenreel/pkg/pipeline"
)

const eps = 1e-12

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func baseParams(typ pipeline.AnimationType, progress float64) Params {
	return Params{
		Type:      typ,
		Easing:    pipeline.EasingLinear,
		Progress:  progress,
		Speed:     1,
		Zoom:      3,
		Tilt:      -0.3,
		XRotation: 0.3,
		YRotation: 0.28,
	}
}

func TestEase(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 0},
		{0.25, 0.125},
		{0.5, 0.5},
		{0.75, 0.875},
		{1, 1},
	}
	for _, tt := range tests {
		if got := Ease(tt.p, pipeline.EasingSmooth); !near(got, tt.want) {
			t.Errorf("smooth(%v) = %v, want %v", tt.p, got, tt.want)
		}
		if got := Ease(tt.p, pipeline.EasingLinear); got != tt.p {
			t.Errorf("linear(%v) = %v", tt.p, got)
		}
	}
}

func TestCompute_Rise(t *testing.T) {
	p := baseParams(pipeline.AnimationRise, 0)
	p.Easing = pipeline.EasingSmooth

	start := Compute(p)
	if !near(start.Position.Y, -2) || !near(start.Scale, 3) || !near(start.Rotation.X, 0.3) {
		t.Errorf("unexpected start pose %+v", start)
	}

	p.Progress = 1
	end := Compute(p)
	if !near(end.Position.Y, 2) {
		t.Errorf("expected y=2 at end, got %v", end.Position.Y)
	}
	if !near(end.Scale, 3*1.2) {
		t.Errorf("expected scale 3.6 at end, got %v", end.Scale)
	}
	if !near(end.Rotation.X, 0.45) {
		t.Errorf("expected rotation.x 0.45, got %v", end.Rotation.X)
	}
	if !near(end.Rotation.Z, -0.3) {
		t.Errorf("expected tilt preserved, got %v", end.Rotation.Z)
	}
}

func TestCompute_AllVariantsEndpoints(t *testing.T) {
	tests := []struct {
		typ        pipeline.AnimationType
		start, end pipeline.Vec3
		endScale   float64
	}{
		{pipeline.AnimationRise, pipeline.Vec3{Y: -2}, pipeline.Vec3{Y: 2}, 3.6},
		{pipeline.AnimationPushForward, pipeline.Vec3{Z: -2}, pipeline.Vec3{Z: 2}, 4.5},
		{pipeline.AnimationRiseLeft, pipeline.Vec3{X: 2, Y: -1}, pipeline.Vec3{X: -2, Y: 1}, 3.6},
		{pipeline.AnimationRiseRight, pipeline.Vec3{X: -2, Y: -1}, pipeline.Vec3{X: 2, Y: 1}, 3.6},
		{pipeline.AnimationRevealUp, pipeline.Vec3{Y: -2}, pipeline.Vec3{Y: 2}, 3.3},
		{pipeline.AnimationRevealDown, pipeline.Vec3{Y: 2}, pipeline.Vec3{Y: -2}, 3.3},
		{pipeline.AnimationSCurveLeft, pipeline.Vec3{X: 2}, pipeline.Vec3{X: -2}, 3},
		{pipeline.AnimationSCurveRight, pipeline.Vec3{X: -2}, pipeline.Vec3{X: 2}, 3},
		{pipeline.AnimationSCurveUp, pipeline.Vec3{Y: -2}, pipeline.Vec3{Y: 2}, 3},
		{pipeline.AnimationSCurveDown, pipeline.Vec3{Y: 2}, pipeline.Vec3{Y: -2}, 3},
	}

	const tol = 1e-9
	closeVec := func(a, b pipeline.Vec3) bool {
		return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			start := Compute(baseParams(tt.typ, 0))
			if !closeVec(start.Position, tt.start) {
				t.Errorf("start position %+v, want %+v", start.Position, tt.start)
			}
			end := Compute(baseParams(tt.typ, 1))
			if !closeVec(end.Position, tt.end) {
				t.Errorf("end position %+v, want %+v", end.Position, tt.end)
			}
			if math.Abs(end.Scale-tt.endScale) > tol {
				t.Errorf("end scale %v, want %v", end.Scale, tt.endScale)
			}
		})
	}
}

func TestCompute_SCurveReplacesTilt(t *testing.T) {
	mid := Compute(baseParams(pipeline.AnimationSCurveLeft, 0.5))
	if !near(mid.Rotation.Z, 0.2) {
		t.Errorf("expected rotation.z 0.2 at midpoint, got %v", mid.Rotation.Z)
	}
	if !near(mid.Scale, 3*1.2) {
		t.Errorf("expected scale peak 3.6, got %v", mid.Scale)
	}

	up := Compute(baseParams(pipeline.AnimationSCurveUp, 0))
	if !near(up.Rotation.Z, 0.2) {
		t.Errorf("s-curve-up starts at cos(0)*0.2, got %v", up.Rotation.Z)
	}
	down := Compute(baseParams(pipeline.AnimationSCurveDown, 0))
	if !near(down.Rotation.Z, -0.2) {
		t.Errorf("s-curve-down starts at -0.2, got %v", down.Rotation.Z)
	}
}

func TestCompute_SpeedOvershoots(t *testing.T) {
	p := baseParams(pipeline.AnimationRevealUp, 1)
	p.Speed = 2
	pose := Compute(p)
	if !near(pose.Position.Y, 6) {
		t.Errorf("speed is not clamped: expected y=6, got %v", pose.Position.Y)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	for _, typ := range pipeline.AnimationTypes() {
		for i := 0; i <= 20; i++ {
			p := baseParams(typ, float64(i)/20)
			p.Easing = pipeline.EasingSmooth
			p.Speed = 1.37
			if Compute(p) != Compute(p) {
				t.Fatalf("%s: non-deterministic pose at %d", typ, i)
			}
		}
	}
}

func TestCompute_InvalidTypeReturnsBase(t *testing.T) {
	p := baseParams(pipeline.AnimationTypeCount, 0.7)
	if Compute(p) != BasePose(p) {
		t.Error("expected base pose for an invalid animation type")
	}
}
