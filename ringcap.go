// Package ringcap retrieves, decodes, and statistically summarizes data
// that a remote acquisition device buffers in fixed-capacity circular
// stores synchronized to a trigger event.
//
// Two cores make up the library:
//
//   - A windowed circular-buffer client that binds to a named buffer entity
//     over the device's parameter protocol, reads possibly-wrapped,
//     possibly-packed sample streams, and reconstructs one trigger-relative
//     timestamp per decoded sample.
//   - A streaming statistics accumulator that maintains numerically stable
//     running count/mean/variance over an N-dimensional index space.
//
// # Basic Usage
//
// Binding and fetching one acquisition cycle:
//
//	import "github.com/strobelab/ringcap"
//
//	sess, err := ringcap.Bind(ctx, client, "RespBuf",
//	    ringcap.WithTimeWindow(-0.05, 0.30),
//	)
//	if err != nil {
//	    return err
//	}
//
//	if err := sess.Resume(ctx); err != nil {
//	    return err
//	}
//	// ... wait out the trial ...
//	samples, err := sess.Fetch(ctx)
//
// Accumulating responses across trials:
//
//	acc, _ := ringcap.NewAccumulator(channels, bins)
//	for _, dp := range samples {
//	    // bin dp and acc.Add(...) per element
//	}
//	mean := acc.Mean(0, 12)
//
// The session owns its configuration exclusively, so independent entities
// may be driven concurrently with one session each. The accumulator is
// owned by the caller and is independent of the buffer client.
//
// This file provides convenience wrappers around the session and stats
// packages; use those directly for fine-grained control.
package ringcap

import (
	"context"

	"github.com/strobelab/ringcap/internal/hash"
	"github.com/strobelab/ringcap/param"
	"github.com/strobelab/ringcap/session"
	"github.com/strobelab/ringcap/stats"
)

// Option configures a buffer session at bind time.
type Option = session.Option

// WithTimeWindow crops decoded samples to the inclusive trigger-relative
// range [lo, hi] seconds.
func WithTimeWindow(lo, hi float64) Option {
	return session.WithTimeWindow(lo, hi)
}

// WithChannelSelection keeps only the first n decoded channels.
func WithChannelSelection(n int) Option {
	return session.WithChannelSelection(n)
}

// Bind attaches to a named buffer entity through an explicit client handle.
// The device must be in an active run-time mode.
func Bind(ctx context.Context, client param.Client, entity string, opts ...Option) (*session.BufferSession, error) {
	return session.Bind(ctx, client, entity, opts...)
}

// NewAccumulator creates a zeroed Welford accumulator with the given shape,
// one (count, mean, M2) triple per element.
func NewAccumulator(shape ...int) (*stats.Accumulator, error) {
	return stats.New(shape...)
}

// EntityID converts an entity name to its 64-bit xxHash64 identifier, the
// same ID a bound session reports.
func EntityID(name string) uint64 {
	return hash.EntityID(name)
}
