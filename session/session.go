package session

import (
	"context"
	"fmt"
	"math"

	"github.com/strobelab/ringcap/errs"
	"github.com/strobelab/ringcap/internal/hash"
	"github.com/strobelab/ringcap/internal/options"
	"github.com/strobelab/ringcap/param"
)

// BufferSession is a bound client for one remote circular-buffer entity.
//
// Not safe for concurrent use; drive independent sessions for independent
// entities instead.
type BufferSession struct {
	client param.Client
	entity string
	id     uint64
	cfg    Config
	meta   map[string]param.Metadata
}

// Option configures a BufferSession at bind time.
type Option = options.Option[*BufferSession]

// WithTimeWindow crops decoded samples to the inclusive trigger-relative
// range [lo, hi] seconds. Infinities leave a side open; NaN or a misordered
// pair fails the bind.
func WithTimeWindow(lo, hi float64) Option {
	return options.New(func(s *BufferSession) error {
		return s.SetTimeWindow(lo, hi)
	})
}

// WithChannelSelection keeps only the first n decoded channels.
func WithChannelSelection(n int) Option {
	return options.New(func(s *BufferSession) error {
		return s.SetChannelSelection(n)
	})
}

// WithTicksPerMinute overrides the second-counter wrap modulus for devices
// whose circuits wrap at a non-standard tick count.
func WithTicksPerMinute(ticks int64) Option {
	return options.New(func(s *BufferSession) error {
		if ticks < 1 {
			return fmt.Errorf("%w: %d ticks per minute", errs.ErrBadDuration, ticks)
		}
		s.cfg.TicksPerMinute = ticks

		return nil
	})
}

// Bind attaches to a named buffer entity through the given client handle.
//
// The device must be in an active run-time mode and the entity must expose
// the required control schema; otherwise Bind fails with ErrDeviceInactive,
// ErrEntityNotFound, or ErrMissingControl. The derived configuration is
// immutable except through the session's setters.
func Bind(ctx context.Context, client param.Client, entity string, opts ...Option) (*BufferSession, error) {
	cfg, meta, err := resolveSchema(ctx, client, entity)
	if err != nil {
		return nil, err
	}

	s := &BufferSession{
		client: client,
		entity: entity,
		id:     hash.EntityID(entity),
		cfg:    cfg,
		meta:   meta,
	}

	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

// Entity returns the bound entity name.
func (s *BufferSession) Entity() string {
	return s.entity
}

// ID returns the xxHash64 of the entity name, for caller-side keying of
// concurrent sessions.
func (s *BufferSession) ID() uint64 {
	return s.id
}

// Config returns a snapshot of the derived configuration.
func (s *BufferSession) Config() Config {
	return s.cfg
}

// SetChannelSelection restricts decoding to the first n channels.
// n must lie in [1, MaxChannels].
func (s *BufferSession) SetChannelSelection(n int) error {
	if n < 1 || n > s.cfg.MaxChannels() {
		return fmt.Errorf("%w: %d of %d", errs.ErrChannelRange, n, s.cfg.MaxChannels())
	}
	s.cfg.Channels = n

	return nil
}

// SetTimeWindow crops decoded samples to the inclusive trigger-relative
// range [lo, hi] seconds. The pair must be strictly ordered and free of NaN;
// infinities leave a side open. No state changes on rejection.
func (s *BufferSession) SetTimeWindow(lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo >= hi {
		return fmt.Errorf("%w: [%v, %v]", errs.ErrBadWindow, lo, hi)
	}
	s.cfg.WindowLo = lo
	s.cfg.WindowHi = hi

	return nil
}
