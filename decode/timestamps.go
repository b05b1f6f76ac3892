package decode

import (
	"fmt"

	"github.com/strobelab/ringcap/endian"
	"github.com/strobelab/ringcap/errs"
)

// Clock converts stored (minute, second) counter pairs into trigger-relative
// seconds.
//
// The device timestamps every buffered element with two counters: Second
// counts parent-clock ticks and wraps at TicksPerMinute; Minute increments
// on each wrap. The trigger event carries an identically formed pair, so a
// sample's relative time is the tick distance to the trigger divided by the
// parent rate.
type Clock struct {
	// ParentRate is the parent device clock rate in Hz.
	ParentRate float64

	// TicksPerMinute is the wrap modulus of the Second counter.
	TicksPerMinute int64

	// Downsample is the buffering decimation factor in parent-clock ticks:
	// consecutive buffered samples are Downsample ticks apart.
	Downsample int64

	// Factor is the time-domain packing factor. When greater than 1 each
	// stored pair timestamps only the last of Factor packed samples; the
	// earlier ones are back-computed at Downsample tick spacing.
	Factor int
}

// AbsoluteTicks folds one counter pair into an absolute parent-clock tick
// index.
func (c Clock) AbsoluteTicks(minute, second int64) int64 {
	return minute*c.TicksPerMinute + second
}

// Expand computes one trigger-relative timestamp in seconds for every
// decoded sample.
//
// minutes and seconds hold the per-element counter pairs in chronological
// order; trigMinute/trigSecond is the trigger's pair. The result has
// len(minutes) x Factor entries: slot k of element e is back-offset by
// (Factor-1-k) x Downsample ticks before conversion, so the stored pair
// lands on the last packed sample.
func (c Clock) Expand(minutes, seconds []int64, trigMinute, trigSecond int64) ([]float64, error) {
	if len(minutes) != len(seconds) {
		return nil, fmt.Errorf("%w: %d minute stamps, %d second stamps", errs.ErrAlignment, len(minutes), len(seconds))
	}

	factor := c.Factor
	if factor < 1 {
		factor = 1
	}

	trigAbs := c.AbsoluteTicks(trigMinute, trigSecond)

	out := make([]float64, 0, len(minutes)*factor)
	for e := range minutes {
		abs := c.AbsoluteTicks(minutes[e], seconds[e])
		for k := 0; k < factor; k++ {
			ticks := abs - int64(factor-1-k)*c.Downsample
			out = append(out, float64(ticks-trigAbs)/c.ParentRate)
		}
	}

	return out, nil
}

// TickCounts converts a raw counter array to unsigned tick values. The
// minute, second, and trigger stores all transport 32-bit counters
// numerically in the generic float representation.
func TickCounts(raw []float64) []int64 {
	out := make([]int64, len(raw))
	for i, v := range raw {
		out[i] = int64(endian.WordOf(v))
	}

	return out
}
