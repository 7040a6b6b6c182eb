// Package preset resolves quality labels into output presets.
package preset

import (
	"fmt"

	"github.com/user/screenreel/pkg/pipeline"
)

// Quality labels.
const (
	Ultra  = "ultra"
	High   = "high"
	Medium = "medium"
	Low    = "low"
)

var presets = []pipeline.QualityPreset{
	{Label: Ultra, Width: 3840, Height: 2160, FPS: 60, BitrateScale: 1.0},
	{Label: High, Width: 2560, Height: 1440, FPS: 60, BitrateScale: 0.8},
	{Label: Medium, Width: 1920, Height: 1080, FPS: 30, BitrateScale: 0.6},
	{Label: Low, Width: 1280, Height: 720, FPS: 24, BitrateScale: 0.4},
}

// Resolve returns the preset for a quality label.
func Resolve(label string) (pipeline.QualityPreset, error) {
	for _, p := range presets {
		if p.Label == label {
			return p, nil
		}
	}
	return pipeline.QualityPreset{}, fmt.Errorf("%w: %q", pipeline.ErrUnknownQuality, label)
}

// All returns every preset from highest to lowest quality.
func All() []pipeline.QualityPreset {
	out := make([]pipeline.QualityPreset, len(presets))
	copy(out, presets)
	return out
}
