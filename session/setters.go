package session

import (
	"context"
	"fmt"
	"math"

	"github.com/strobelab/ringcap/errs"
)

// Device-facing setters. Each one converts seconds to an integer sample
// count, clamps to the device maximum, writes, and reads back the applied
// value. A mismatch between requested and applied surfaces as a
// ClampWarning alongside the applied value; the session re-derives every
// dependent field after a clamp rather than assume the old derivation still
// holds.

// SetBufferSize resizes the circular stores to hold the given duration.
//
// The duration converts to elements at the buffered rate unless an explicit
// rate is supplied. Returns the applied element capacity. When the device
// clamps, the returned error wraps a ClampWarning and the response window is
// re-checked against the reduced capacity, shrinking it with a second round
// trip if it no longer fits.
func (s *BufferSession) SetBufferSize(ctx context.Context, seconds float64, rate ...float64) (int, error) {
	requested, err := s.sampleCount(seconds, s.cfg.BufferedRate/float64(s.cfg.SamplesPerElem()), rate)
	if err != nil {
		return 0, err
	}

	applied, err := s.applyScalar(ctx, CtrlCapacity, requested)
	if err != nil {
		return 0, err
	}

	s.cfg.ElemCapacity = applied
	s.cfg.SampleCapacity = applied * s.cfg.SamplesPerElem()

	if applied == requested {
		return applied, nil
	}

	warn := error(&errs.ClampWarning{Control: CtrlCapacity, Requested: requested, Applied: applied})

	// The smaller buffer may no longer accommodate the configured response
	// window; shrink it rather than leave the two inconsistent.
	if s.cfg.ResponseWindow > s.cfg.SampleCapacity {
		if _, ok := s.meta[CtrlRespWindow]; ok {
			rw, err := s.applyScalar(ctx, CtrlRespWindow, s.cfg.SampleCapacity)
			if err != nil {
				return applied, err
			}
			s.cfg.ResponseWindow = rw
			warn = fmt.Errorf("%w; response window reduced to %d samples", warn, rw)
		} else {
			s.cfg.ResponseWindow = s.cfg.SampleCapacity
		}
	}

	return applied, warn
}

// SetResponseWindow sets the post-trigger response window to the given
// duration, converted to decoded samples at the buffered rate unless an
// explicit rate is supplied. Returns the applied sample count; a device
// clamp surfaces as a ClampWarning.
func (s *BufferSession) SetResponseWindow(ctx context.Context, seconds float64, rate ...float64) (int, error) {
	if _, ok := s.meta[CtrlRespWindow]; !ok {
		return 0, fmt.Errorf("%w: scalar %q on %q", errs.ErrMissingControl, CtrlRespWindow, s.entity)
	}

	requested, err := s.sampleCount(seconds, s.cfg.BufferedRate, rate)
	if err != nil {
		return 0, err
	}

	// A window longer than the buffer can never be retrieved whole.
	capped := requested
	if capped > s.cfg.SampleCapacity {
		capped = s.cfg.SampleCapacity
	}

	applied, err := s.applyScalar(ctx, CtrlRespWindow, capped)
	if err != nil {
		return 0, err
	}
	s.cfg.ResponseWindow = applied

	if applied != requested {
		return applied, &errs.ClampWarning{Control: CtrlRespWindow, Requested: requested, Applied: applied}
	}

	return applied, nil
}

// sampleCount converts a duration to a ceiling integer sample count at the
// default or explicitly supplied rate.
func (s *BufferSession) sampleCount(seconds, defaultRate float64, rate []float64) (int, error) {
	r := defaultRate
	if len(rate) > 0 {
		r = rate[0]
	}

	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, fmt.Errorf("%w: %v seconds", errs.ErrBadDuration, seconds)
	}
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return 0, fmt.Errorf("%w: rate %v", errs.ErrBadDuration, r)
	}

	return int(math.Ceil(seconds * r)), nil
}

// applyScalar clamps a requested value to the control's declared maximum,
// writes it, and reads back what the device actually applied.
func (s *BufferSession) applyScalar(ctx context.Context, control string, requested int) (int, error) {
	value := requested
	if m, ok := s.meta[control]; ok && m.Max > 0 && float64(value) > m.Max {
		value = int(m.Max)
	}

	if err := s.client.SetScalar(ctx, s.entity, control, float64(value)); err != nil {
		return 0, err
	}

	applied, err := s.client.GetScalar(ctx, s.entity, control)
	if err != nil {
		return 0, err
	}

	return int(applied), nil
}
