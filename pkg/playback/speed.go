package playback

import (
	"fmt"
	"math"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
)

// MinInterval is the shortest step interval the controller schedules.
const MinInterval = time.Millisecond

// SpeedRange maps a bounded speed multiplier (a UI slider) to a step interval.
// The interval is Base / multiplier, so a higher multiplier plays faster.
type SpeedRange struct {
	Base time.Duration
	Min  float64
	Max  float64
}

// DefaultSpeedRange plays one step per second at multiplier 2.
var DefaultSpeedRange = SpeedRange{Base: 2 * time.Second, Min: 1, Max: 10}

// DefaultSpeed is the multiplier a new controller starts with.
const DefaultSpeed = 2.0

// Validate checks that the range yields positive intervals.
func (r SpeedRange) Validate() error {
	if r.Base <= 0 {
		return fmt.Errorf("%w: base interval %v must be positive", domain.ErrInvalidSpeed, r.Base)
	}
	if !(r.Min > 0) || math.IsInf(r.Max, 0) || r.Max < r.Min {
		return fmt.Errorf("%w: range [%v, %v] must be positive and ordered", domain.ErrInvalidSpeed, r.Min, r.Max)
	}
	return nil
}

// Interval converts a multiplier to a step interval. Multipliers outside
// [Min, Max] are clamped; non-finite or non-positive ones are rejected.
func (r SpeedRange) Interval(multiplier float64) (time.Duration, error) {
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier <= 0 {
		return 0, fmt.Errorf("%w: multiplier %v", domain.ErrInvalidSpeed, multiplier)
	}
	m := min(max(multiplier, r.Min), r.Max)
	d := time.Duration(float64(r.Base) / m)
	if d < MinInterval {
		d = MinInterval
	}
	return d, nil
}
