package session

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strobelab/ringcap/errs"
	"github.com/strobelab/ringcap/format"
	"github.com/strobelab/ringcap/param"
)

// fakeClient is an in-memory param.Client backed by map-based entities. It
// mirrors the device's observable behavior: scalar writes may clamp to a
// per-control limit, and callers learn the applied value only by reading
// back.
type fakeClient struct {
	mode     format.DeviceMode
	entities map[string]*fakeEntity
}

type fakeEntity struct {
	name    string
	rate    float64
	meta    map[string]param.Metadata
	scalars map[string]float64
	arrays  map[string][]float64
	limits  map[string]float64
}

func newFakeClient(mode format.DeviceMode, entities ...*fakeEntity) *fakeClient {
	c := &fakeClient{mode: mode, entities: make(map[string]*fakeEntity, len(entities))}
	for _, e := range entities {
		c.entities[e.name] = e
	}

	return c
}

func (c *fakeClient) Mode(_ context.Context) (format.DeviceMode, error) {
	return c.mode, nil
}

func (c *fakeClient) HasEntity(_ context.Context, entity string) (bool, error) {
	_, ok := c.entities[entity]

	return ok, nil
}

func (c *fakeClient) entity(name string) (*fakeEntity, error) {
	e, ok := c.entities[name]
	if !ok {
		return nil, fmt.Errorf("fake device: no entity %q", name)
	}

	return e, nil
}

func (c *fakeClient) SampleRate(_ context.Context, entity string) (float64, error) {
	e, err := c.entity(entity)
	if err != nil {
		return 0, err
	}

	return e.rate, nil
}

func (c *fakeClient) Controls(_ context.Context, entity string) (map[string]param.Metadata, error) {
	e, err := c.entity(entity)
	if err != nil {
		return nil, err
	}

	return e.meta, nil
}

func (c *fakeClient) GetScalar(_ context.Context, entity, control string) (float64, error) {
	e, err := c.entity(entity)
	if err != nil {
		return 0, err
	}
	v, ok := e.scalars[control]
	if !ok {
		return 0, fmt.Errorf("fake device: no scalar %q on %q", control, entity)
	}

	return v, nil
}

func (c *fakeClient) SetScalar(_ context.Context, entity, control string, value float64) error {
	e, err := c.entity(entity)
	if err != nil {
		return err
	}
	if limit, ok := e.limits[control]; ok && value > limit {
		value = limit
	}
	e.scalars[control] = value

	return nil
}

func (c *fakeClient) ReadArray(_ context.Context, entity, control string, offset, count int) ([]float64, error) {
	e, err := c.entity(entity)
	if err != nil {
		return nil, err
	}
	arr, ok := e.arrays[control]
	if !ok {
		return nil, fmt.Errorf("fake device: no array %q on %q", control, entity)
	}
	if offset < 0 || count < 0 || offset+count > len(arr) {
		return nil, fmt.Errorf("fake device: range [%d, %d) out of %d", offset, offset+count, len(arr))
	}

	return append([]float64(nil), arr[offset:offset+count]...), nil
}

// newBufferEntity builds an entity exposing the full required control
// schema: a parent rate of 1000 Hz, unsigned-safe scalar metadata, and
// zeroed store arrays.
func newBufferEntity(name string, capacity, chans, downsample int) *fakeEntity {
	e := &fakeEntity{
		name:    name,
		rate:    1000,
		meta:    make(map[string]param.Metadata),
		scalars: make(map[string]float64),
		arrays:  make(map[string][]float64),
		limits:  make(map[string]float64),
	}

	for _, n := range requiredScalars {
		e.meta[n] = param.Metadata{Name: n, Type: param.TypeInteger, Max: 1 << 24}
		e.scalars[n] = 0
	}
	e.meta[ArrMinutes] = param.Metadata{Name: ArrMinutes, Type: param.TypeInteger, IsArray: true, Length: capacity}
	e.meta[ArrSeconds] = param.Metadata{Name: ArrSeconds, Type: param.TypeInteger, IsArray: true, Length: capacity}
	e.meta[ArrSamples] = param.Metadata{Name: ArrSamples, Type: param.TypeFloat, IsArray: true, Length: capacity * chans}

	e.scalars[CtrlCapacity] = float64(capacity)
	e.scalars[CtrlChansPer] = float64(chans)
	e.scalars[CtrlDownsample] = float64(downsample)

	e.arrays[ArrMinutes] = make([]float64, capacity)
	e.arrays[ArrSeconds] = make([]float64, capacity)
	e.arrays[ArrSamples] = make([]float64, capacity*chans)

	return e
}

// withCompression adds the packed-storage extension controls and switches
// the sample store to integer metadata.
func (e *fakeEntity) withCompression(code, bits int, scale float64, signed bool) *fakeEntity {
	e.meta[CtrlBitsPerVal] = param.Metadata{Name: CtrlBitsPerVal, Type: param.TypeInteger}
	e.meta[CtrlScale] = param.Metadata{Name: CtrlScale, Type: param.TypeFloat}
	e.meta[CtrlDomain] = param.Metadata{Name: CtrlDomain, Type: param.TypeInteger}
	e.scalars[CtrlBitsPerVal] = float64(bits)
	e.scalars[CtrlScale] = scale
	e.scalars[CtrlDomain] = float64(code)

	m := e.meta[ArrSamples]
	m.Type = param.TypeInteger
	if signed {
		m.Min = -math.Pow(2, float64(bits-1))
	}
	e.meta[ArrSamples] = m

	return e
}

func (e *fakeEntity) withRespWindow(samples int) *fakeEntity {
	e.meta[CtrlRespWindow] = param.Metadata{Name: CtrlRespWindow, Type: param.TypeInteger, Max: 1 << 24}
	e.scalars[CtrlRespWindow] = float64(samples)

	return e
}

func (e *fakeEntity) withTicksPerMinute(ticks int64) *fakeEntity {
	e.meta[CtrlTicksPerMin] = param.Metadata{Name: CtrlTicksPerMin, Type: param.TypeInteger}
	e.scalars[CtrlTicksPerMin] = float64(ticks)

	return e
}

func (e *fakeEntity) withLimit(control string, limit float64) *fakeEntity {
	e.limits[control] = limit

	return e
}

// setState positions the circular-buffer write state for a fetch cycle.
func (e *fakeEntity) setState(minIdx, secIdx, sampIdx, writes int, trigMin, trigSec int64) {
	e.scalars[CtrlMinIndex] = float64(minIdx)
	e.scalars[CtrlSecIndex] = float64(secIdx)
	e.scalars[CtrlSampIndex] = float64(sampIdx)
	e.scalars[CtrlWrites] = float64(writes)
	e.scalars[CtrlTrigMin] = float64(trigMin)
	e.scalars[CtrlTrigSec] = float64(trigSec)
}

func TestBindSchemaValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("device inactive", func(t *testing.T) {
		client := newFakeClient(format.ModeIdle, newBufferEntity("Buf1", 8, 2, 10))
		_, err := Bind(ctx, client, "Buf1")
		require.ErrorIs(t, err, errs.ErrDeviceInactive)
	})

	t.Run("entity not found", func(t *testing.T) {
		client := newFakeClient(format.ModePreview, newBufferEntity("Buf1", 8, 2, 10))
		_, err := Bind(ctx, client, "Nope")
		require.ErrorIs(t, err, errs.ErrEntityNotFound)
	})

	t.Run("missing required scalar", func(t *testing.T) {
		e := newBufferEntity("Buf1", 8, 2, 10)
		delete(e.meta, CtrlWrites)
		_, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.ErrorIs(t, err, errs.ErrMissingControl)
	})

	t.Run("missing required array", func(t *testing.T) {
		e := newBufferEntity("Buf1", 8, 2, 10)
		delete(e.meta, ArrSamples)
		_, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.ErrorIs(t, err, errs.ErrMissingControl)
	})

	t.Run("partial compression extension", func(t *testing.T) {
		e := newBufferEntity("Buf1", 8, 2, 10).withCompression(1, 16, 1, false)
		delete(e.meta, CtrlDomain)
		_, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.ErrorIs(t, err, errs.ErrMissingControl)
	})

	t.Run("unknown domain code", func(t *testing.T) {
		e := newBufferEntity("Buf1", 8, 2, 10).withCompression(9, 16, 1, false)
		_, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.ErrorIs(t, err, errs.ErrUnknownDomain)
	})

	t.Run("non-divisor bit width", func(t *testing.T) {
		e := newBufferEntity("Buf1", 8, 2, 10).withCompression(domainCodeChannel, 24, 1, false)
		_, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.ErrorIs(t, err, errs.ErrBitWidth)
	})

	t.Run("packed float storage", func(t *testing.T) {
		e := newBufferEntity("Buf1", 8, 2, 10).withCompression(domainCodeChannel, 16, 1, false)
		m := e.meta[ArrSamples]
		m.Type = param.TypeFloat
		e.meta[ArrSamples] = m
		_, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.ErrorIs(t, err, errs.ErrUnknownKind)
	})
}

func TestBindDerivedConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("plain float store", func(t *testing.T) {
		client := newFakeClient(format.ModeRecord, newBufferEntity("Buf1", 8, 2, 10))
		s, err := Bind(ctx, client, "Buf1")
		require.NoError(t, err)

		cfg := s.Config()
		require.Equal(t, "Buf1", s.Entity())
		require.Equal(t, 1000.0, cfg.ParentRate)
		require.Equal(t, 100.0, cfg.BufferedRate)
		require.Equal(t, 8, cfg.ElemCapacity)
		require.Equal(t, 8, cfg.SampleCapacity)
		require.Equal(t, 2, cfg.ChansPerElem)
		require.Equal(t, format.DomainNone, cfg.Domain)
		require.Equal(t, 1, cfg.Factor)
		require.Equal(t, 32, cfg.BitsPerValue)
		require.Equal(t, format.KindFloat32, cfg.Kind)
		require.Equal(t, 2, cfg.Channels)
		require.False(t, cfg.SupportsCompression)
		require.Equal(t, int64(60000), cfg.TicksPerMinute)
		require.True(t, math.IsInf(cfg.WindowLo, -1))
		require.True(t, math.IsInf(cfg.WindowHi, 1))
	})

	t.Run("channel packed store", func(t *testing.T) {
		e := newBufferEntity("Buf1", 16, 2, 10).withCompression(domainCodeChannel, 8, 4, false)
		s, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.NoError(t, err)

		cfg := s.Config()
		require.Equal(t, format.DomainChannel, cfg.Domain)
		require.Equal(t, 4, cfg.Factor)
		require.Equal(t, 8, cfg.BitsPerValue)
		require.Equal(t, 4.0, cfg.Scale)
		require.Equal(t, format.KindUint32, cfg.Kind)
		require.Equal(t, 8, cfg.MaxChannels())
		require.Equal(t, 8, cfg.Channels)
		require.Equal(t, 16, cfg.SampleCapacity)
		require.True(t, cfg.SupportsCompression)
	})

	t.Run("time packed store", func(t *testing.T) {
		e := newBufferEntity("Buf1", 4, 1, 10).withCompression(domainCodeTime, 16, 1, true)
		s, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.NoError(t, err)

		cfg := s.Config()
		require.Equal(t, format.DomainTime, cfg.Domain)
		require.Equal(t, 2, cfg.Factor)
		require.Equal(t, format.KindInt32, cfg.Kind)
		require.Equal(t, 1, cfg.MaxChannels())
		require.Equal(t, 8, cfg.SampleCapacity)
	})

	t.Run("ticks per minute control", func(t *testing.T) {
		e := newBufferEntity("Buf1", 8, 2, 10).withTicksPerMinute(12345)
		s, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.NoError(t, err)
		require.Equal(t, int64(12345), s.Config().TicksPerMinute)
	})
}

func TestBindOptions(t *testing.T) {
	ctx := context.Background()
	entity := func() *fakeEntity { return newBufferEntity("Buf1", 8, 4, 10) }

	t.Run("window and channels", func(t *testing.T) {
		s, err := Bind(ctx, newFakeClient(format.ModePreview, entity()), "Buf1",
			WithTimeWindow(-0.5, 2), WithChannelSelection(2))
		require.NoError(t, err)
		require.Equal(t, -0.5, s.Config().WindowLo)
		require.Equal(t, 2.0, s.Config().WindowHi)
		require.Equal(t, 2, s.Config().Channels)
	})

	t.Run("ticks override", func(t *testing.T) {
		s, err := Bind(ctx, newFakeClient(format.ModePreview, entity()), "Buf1",
			WithTicksPerMinute(100))
		require.NoError(t, err)
		require.Equal(t, int64(100), s.Config().TicksPerMinute)

		_, err = Bind(ctx, newFakeClient(format.ModePreview, entity()), "Buf1",
			WithTicksPerMinute(0))
		require.ErrorIs(t, err, errs.ErrBadDuration)
	})

	t.Run("bad option fails the bind", func(t *testing.T) {
		_, err := Bind(ctx, newFakeClient(format.ModePreview, entity()), "Buf1",
			WithChannelSelection(5))
		require.ErrorIs(t, err, errs.ErrChannelRange)
	})
}

func TestSetChannelSelection(t *testing.T) {
	ctx := context.Background()
	s, err := Bind(ctx, newFakeClient(format.ModePreview, newBufferEntity("Buf1", 8, 4, 10)), "Buf1")
	require.NoError(t, err)

	require.NoError(t, s.SetChannelSelection(3))
	require.Equal(t, 3, s.Config().Channels)

	require.ErrorIs(t, s.SetChannelSelection(0), errs.ErrChannelRange)
	require.ErrorIs(t, s.SetChannelSelection(5), errs.ErrChannelRange)
	require.Equal(t, 3, s.Config().Channels)
}

func TestSetTimeWindow(t *testing.T) {
	ctx := context.Background()
	s, err := Bind(ctx, newFakeClient(format.ModePreview, newBufferEntity("Buf1", 8, 2, 10)), "Buf1")
	require.NoError(t, err)

	require.NoError(t, s.SetTimeWindow(-1, 1))
	require.Equal(t, -1.0, s.Config().WindowLo)

	require.ErrorIs(t, s.SetTimeWindow(math.NaN(), 1), errs.ErrBadWindow)
	require.ErrorIs(t, s.SetTimeWindow(-1, math.NaN()), errs.ErrBadWindow)
	require.ErrorIs(t, s.SetTimeWindow(2, 2), errs.ErrBadWindow)
	require.ErrorIs(t, s.SetTimeWindow(3, 1), errs.ErrBadWindow)

	// Rejections leave the window untouched.
	require.Equal(t, -1.0, s.Config().WindowLo)
	require.Equal(t, 1.0, s.Config().WindowHi)

	require.NoError(t, s.SetTimeWindow(math.Inf(-1), 0.5))
}
