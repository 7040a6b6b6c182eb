// Package transform computes the per-frame pose of the image plane.
//
// Every variant is a closed-form function of the eased, speed-scaled
// progress. No state is carried between frames, so any frame can be
// computed independently and the result is bit-for-bit reproducible.
package transform

import (
	"math"

	"github.com/user/screenreel/pkg/pipeline"
)

// Params are the inputs for one frame.
type Params struct {
	Type      pipeline.AnimationType
	Easing    pipeline.Easing
	Progress  float64 // 0..1
	Speed     float64
	Zoom      float64
	Tilt      float64 // radians, z axis
	XRotation float64 // radians
	YRotation float64 // radians
}

// ParamsFor builds Params from unit settings.
func ParamsFor(s pipeline.AnimationSettings, progress float64) Params {
	return Params{
		Type:      s.Type,
		Easing:    s.Easing,
		Progress:  progress,
		Speed:     s.Speed,
		Zoom:      s.Zoom,
		Tilt:      s.Tilt,
		XRotation: s.XRotation,
		YRotation: s.YRotation,
	}
}

// variantFunc adjusts the base pose for an animated progress value t.
type variantFunc func(pose *pipeline.Pose, t float64)

var variants = [pipeline.AnimationTypeCount]variantFunc{
	pipeline.AnimationRise: func(p *pipeline.Pose, t float64) {
		p.Position.Y = -2 + 4*t
		p.Rotation.X += 0.15 * t
		p.Scale *= 1 + 0.2*t
	},
	pipeline.AnimationPushForward: func(p *pipeline.Pose, t float64) {
		p.Position.Z = -2 + 4*t
		p.Scale *= 1 + 0.5*t
	},
	pipeline.AnimationRiseLeft: func(p *pipeline.Pose, t float64) {
		p.Position.X = 2 - 4*t
		p.Position.Y = -1 + 2*t
		p.Rotation.Y -= 0.15 * t
		p.Scale *= 1 + 0.2*t
	},
	pipeline.AnimationRiseRight: func(p *pipeline.Pose, t float64) {
		p.Position.X = -2 + 4*t
		p.Position.Y = -1 + 2*t
		p.Rotation.Y += 0.15 * t
		p.Scale *= 1 + 0.2*t
	},
	pipeline.AnimationRevealUp: func(p *pipeline.Pose, t float64) {
		p.Position.Y = -2 + 4*t
		p.Scale *= 1 + 0.1*t
	},
	pipeline.AnimationRevealDown: func(p *pipeline.Pose, t float64) {
		p.Position.Y = 2 - 4*t
		p.Scale *= 1 + 0.1*t
	},
	// The s-curves replace the base tilt on z.
	pipeline.AnimationSCurveLeft: func(p *pipeline.Pose, t float64) {
		p.Position.X = 2 - 4*t
		p.Position.Y = math.Sin(t*2*math.Pi) * 0.5
		p.Rotation.Z = math.Sin(t*math.Pi) * 0.2
		p.Scale *= 1 + math.Sin(t*math.Pi)*0.2
	},
	pipeline.AnimationSCurveRight: func(p *pipeline.Pose, t float64) {
		p.Position.X = -2 + 4*t
		p.Position.Y = math.Sin(t*2*math.Pi) * 0.5
		p.Rotation.Z = -math.Sin(t*math.Pi) * 0.2
		p.Scale *= 1 + math.Sin(t*math.Pi)*0.2
	},
	pipeline.AnimationSCurveUp: func(p *pipeline.Pose, t float64) {
		p.Position.Y = -2 + 4*t
		p.Position.X = math.Sin(t*2*math.Pi) * 0.5
		p.Rotation.Z = math.Cos(t*math.Pi) * 0.2
		p.Scale *= 1 + math.Sin(t*math.Pi)*0.2
	},
	pipeline.AnimationSCurveDown: func(p *pipeline.Pose, t float64) {
		p.Position.Y = 2 - 4*t
		p.Position.X = math.Sin(t*2*math.Pi) * 0.5
		p.Rotation.Z = -math.Cos(t*math.Pi) * 0.2
		p.Scale *= 1 + math.Sin(t*math.Pi)*0.2
	},
}

// Compute returns the pose for one frame. An invalid animation type
// yields the base pose.
func Compute(p Params) pipeline.Pose {
	pose := BasePose(p)
	if !p.Type.Valid() {
		return pose
	}
	t := Ease(p.Progress, p.Easing) * p.Speed
	variants[p.Type](&pose, t)
	return pose
}

// BasePose is the pose before any animation is applied.
func BasePose(p Params) pipeline.Pose {
	return pipeline.Pose{
		Rotation: pipeline.Vec3{X: p.XRotation, Y: p.YRotation, Z: p.Tilt},
		Scale:    p.Zoom,
	}
}

// Ease maps linear progress onto the easing curve. Unknown easings are linear.
func Ease(p float64, easing pipeline.Easing) float64 {
	if easing != pipeline.EasingSmooth {
		return p
	}
	if p < 0.5 {
		return 2 * p * p
	}
	return -1 + (4-2*p)*p
}
