package screenreel

import (
	"fmt"
	"math"

	"github.com/user/screenreel/pkg/pipeline"
)

// Timeline is an ordered list of units kept within the job limits: at most
// pipeline.MaxImages images and pipeline.MaxTotalDuration seconds in total.
type Timeline struct {
	units []pipeline.ImageUnit
}

// NewTimeline creates a timeline holding units as they are. Use Add to fit
// new units into the remaining budget.
func NewTimeline(units ...pipeline.ImageUnit) *Timeline {
	return &Timeline{units: append([]pipeline.ImageUnit(nil), units...)}
}

// Add appends a unit. Its duration is shortened to the time left on the
// timeline; a unit that would get less than pipeline.MinUnitDuration is refused.
func (t *Timeline) Add(unit pipeline.ImageUnit) error {
	if len(t.units) >= pipeline.MaxImages {
		return fmt.Errorf("%w: at most %d", pipeline.ErrTooManyImages, pipeline.MaxImages)
	}
	remaining := t.Remaining()
	if remaining < pipeline.MinUnitDuration-1e-9 {
		return fmt.Errorf("%w: %.2fs left on the timeline", pipeline.ErrInvalidDuration, remaining)
	}
	unit.Settings.Duration = math.Min(clamp(unit.Settings.Duration, pipeline.MinUnitDuration, pipeline.MaxUnitDuration), remaining)
	t.units = append(t.units, unit)
	return nil
}

// SetDuration changes one unit's duration, limited to
// min(MaxUnitDuration, MaxTotalDuration - the other units). It returns the
// duration applied.
func (t *Timeline) SetDuration(index int, seconds float64) (float64, error) {
	if index < 0 || index >= len(t.units) {
		return 0, fmt.Errorf("timeline: no image at %d", index)
	}
	others := t.Total() - t.units[index].Settings.Duration
	hi := math.Min(pipeline.MaxUnitDuration, pipeline.MaxTotalDuration-others)
	d := clamp(seconds, pipeline.MinUnitDuration, math.Max(hi, pipeline.MinUnitDuration))
	t.units[index].Settings.Duration = d
	return d, nil
}

// Remove deletes the unit at index.
func (t *Timeline) Remove(index int) error {
	if index < 0 || index >= len(t.units) {
		return fmt.Errorf("timeline: no image at %d", index)
	}
	t.units = append(t.units[:index], t.units[index+1:]...)
	return nil
}

// Move reorders the unit at from to position to.
func (t *Timeline) Move(from, to int) error {
	n := len(t.units)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("timeline: cannot move %d to %d", from, to)
	}
	u := t.units[from]
	t.units = append(t.units[:from], t.units[from+1:]...)
	t.units = append(t.units[:to], append([]pipeline.ImageUnit{u}, t.units[to:]...)...)
	return nil
}

// Total returns the summed duration in seconds.
func (t *Timeline) Total() float64 {
	return pipeline.TotalDuration(t.units)
}

// Remaining returns the seconds still available.
func (t *Timeline) Remaining() float64 {
	return math.Max(0, pipeline.MaxTotalDuration-t.Total())
}

// Len returns the number of units.
func (t *Timeline) Len() int {
	return len(t.units)
}

// Units returns a copy of the units in order.
func (t *Timeline) Units() []pipeline.ImageUnit {
	return append([]pipeline.ImageUnit(nil), t.units...)
}
