package session

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strobelab/ringcap/errs"
	"github.com/strobelab/ringcap/format"
)

func TestSetBufferSize(t *testing.T) {
	ctx := context.Background()

	t.Run("applied as requested", func(t *testing.T) {
		e := newBufferEntity("Buf1", 8, 2, 10)
		s, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.NoError(t, err)

		// 2 s at the 100 Hz buffered rate.
		applied, err := s.SetBufferSize(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, 200, applied)
		require.Equal(t, 200, s.Config().ElemCapacity)
		require.Equal(t, 200, s.Config().SampleCapacity)
		require.Equal(t, 200.0, e.scalars[CtrlCapacity])
	})

	t.Run("explicit rate", func(t *testing.T) {
		e := newBufferEntity("Buf1", 8, 2, 10)
		s, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.NoError(t, err)

		applied, err := s.SetBufferSize(ctx, 1.5, 10)
		require.NoError(t, err)
		require.Equal(t, 15, applied)
	})

	t.Run("metadata maximum pre-clamps the write", func(t *testing.T) {
		e := newBufferEntity("Buf1", 8, 2, 10)
		m := e.meta[CtrlCapacity]
		m.Max = 1000
		e.meta[CtrlCapacity] = m
		s, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.NoError(t, err)

		applied, err := s.SetBufferSize(ctx, 50)
		require.Equal(t, 1000, applied)
		require.True(t, errs.IsClamp(err))

		var warn *errs.ClampWarning
		require.ErrorAs(t, err, &warn)
		require.Equal(t, CtrlCapacity, warn.Control)
		require.Equal(t, 5000, warn.Requested)
		require.Equal(t, 1000, warn.Applied)
	})

	t.Run("device clamp surfaces as warning", func(t *testing.T) {
		e := newBufferEntity("Buf1", 8, 2, 10).withLimit(CtrlCapacity, 256)
		s, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.NoError(t, err)

		applied, err := s.SetBufferSize(ctx, 50)
		require.Equal(t, 256, applied)
		require.True(t, errs.IsClamp(err))
		require.Equal(t, 256, s.Config().ElemCapacity)
		require.Equal(t, 256, s.Config().SampleCapacity)
	})

	t.Run("clamp shrinks the response window", func(t *testing.T) {
		e := newBufferEntity("Buf1", 300, 1, 10).
			withRespWindow(290).
			withLimit(CtrlCapacity, 256)
		s, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.NoError(t, err)
		require.Equal(t, 290, s.Config().ResponseWindow)

		applied, err := s.SetBufferSize(ctx, 50)
		require.Equal(t, 256, applied)
		require.True(t, errs.IsClamp(err))
		require.Contains(t, err.Error(), "response window reduced to 256 samples")
		require.Equal(t, 256, s.Config().ResponseWindow)
		require.Equal(t, 256.0, e.scalars[CtrlRespWindow])
	})

	t.Run("bad durations", func(t *testing.T) {
		s, err := Bind(ctx, newFakeClient(format.ModePreview, newBufferEntity("Buf1", 8, 2, 10)), "Buf1")
		require.NoError(t, err)

		for _, seconds := range []float64{math.NaN(), math.Inf(1), 0, -1} {
			_, err := s.SetBufferSize(ctx, seconds)
			require.ErrorIs(t, err, errs.ErrBadDuration)
		}

		_, err = s.SetBufferSize(ctx, 1, 0)
		require.ErrorIs(t, err, errs.ErrBadDuration)
	})
}

func TestSetResponseWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("control absent", func(t *testing.T) {
		s, err := Bind(ctx, newFakeClient(format.ModePreview, newBufferEntity("Buf1", 8, 2, 10)), "Buf1")
		require.NoError(t, err)

		_, err = s.SetResponseWindow(ctx, 1)
		require.ErrorIs(t, err, errs.ErrMissingControl)
	})

	t.Run("applied as requested", func(t *testing.T) {
		e := newBufferEntity("Buf1", 800, 1, 10).withRespWindow(0)
		s, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.NoError(t, err)

		applied, err := s.SetResponseWindow(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, 200, applied)
		require.Equal(t, 200, s.Config().ResponseWindow)
	})

	t.Run("capped at the buffer capacity", func(t *testing.T) {
		e := newBufferEntity("Buf1", 800, 1, 10).withRespWindow(0)
		s, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
		require.NoError(t, err)

		applied, err := s.SetResponseWindow(ctx, 20)
		require.Equal(t, 800, applied)
		require.True(t, errs.IsClamp(err))

		var warn *errs.ClampWarning
		require.ErrorAs(t, err, &warn)
		require.Equal(t, 2000, warn.Requested)
		require.Equal(t, 800, warn.Applied)
	})
}

func TestResumeHalt(t *testing.T) {
	ctx := context.Background()
	e := newBufferEntity("Buf1", 8, 2, 10)
	s, err := Bind(ctx, newFakeClient(format.ModePreview, e), "Buf1")
	require.NoError(t, err)

	require.NoError(t, s.Resume(ctx))
	require.Equal(t, 1.0, e.scalars[CtrlResume])

	require.NoError(t, s.Halt(ctx))
	require.Equal(t, 0.0, e.scalars[CtrlResume])
}
