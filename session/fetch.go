package session

import (
	"context"
	"fmt"

	"github.com/strobelab/ringcap/decode"
	"github.com/strobelab/ringcap/errs"
	"github.com/strobelab/ringcap/internal/pool"
)

// DecodedSample is one trigger-relative timestamp with its channel value
// vector, post-unpack, post-crop, post-rescale.
type DecodedSample struct {
	// Time is seconds relative to the trigger event; negative values
	// precede it.
	Time float64

	// Values holds one value per selected channel.
	Values []float64
}

// Resume sets the entity's start/resume flag so the device begins (or
// continues) filling its circular stores.
func (s *BufferSession) Resume(ctx context.Context) error {
	return s.client.SetScalar(ctx, s.entity, CtrlResume, 1)
}

// Halt clears the start/resume flag.
func (s *BufferSession) Halt(ctx context.Context) error {
	return s.client.SetScalar(ctx, s.entity, CtrlResume, 0)
}

// Fetch performs one acquisition cycle: snapshot the write state, read the
// buffered segments of all three sub-buffers, decode, and crop to the
// session's time window.
//
// The cycle is atomic from the caller's view: it is not cancellable
// mid-flight beyond the context's effect on individual remote calls, and
// remote failures propagate as-is with no internal retry. An empty buffer
// yields an empty result and no error.
func (s *BufferSession) Fetch(ctx context.Context) ([]DecodedSample, error) {
	st, err := s.readState(ctx)
	if err != nil {
		return nil, err
	}
	if st.Writes == 0 {
		return nil, nil
	}

	cpe := s.cfg.ChansPerElem

	minSegs := PlanSegments(s.cfg.ElemCapacity, st.Writes, st.MinIndex)
	secSegs := PlanSegments(s.cfg.ElemCapacity, st.Writes, st.SecIndex)
	sampSegs := PlanSegments(s.cfg.ElemCapacity*cpe, st.Writes*cpe, st.SampIndex)

	elems := segmentTotal(minSegs)
	if segmentTotal(secSegs) != elems || segmentTotal(sampSegs) != elems*cpe {
		return nil, fmt.Errorf("%w: %d minute, %d second, %d sample elements",
			errs.ErrAlignment, elems, segmentTotal(secSegs), segmentTotal(sampSegs)/cpe)
	}
	if elems == 0 {
		return nil, nil
	}

	minRaw, minDone := pool.GetFloat64Slice(elems)
	defer minDone()
	secRaw, secDone := pool.GetFloat64Slice(elems)
	defer secDone()
	sampRaw, sampDone := pool.GetFloat64Slice(elems * cpe)
	defer sampDone()

	if err := s.readSegments(ctx, ArrMinutes, minSegs, minRaw); err != nil {
		return nil, err
	}
	if err := s.readSegments(ctx, ArrSeconds, secSegs, secRaw); err != nil {
		return nil, err
	}
	if err := s.readSegments(ctx, ArrSamples, sampSegs, sampRaw); err != nil {
		return nil, err
	}

	matrix, err := decode.Unpack(s.plan(), sampRaw)
	if err != nil {
		return nil, err
	}

	clock := s.clock()
	times, err := clock.Expand(decode.TickCounts(minRaw), decode.TickCounts(secRaw), st.TrigMinute, st.TrigSecond)
	if err != nil {
		return nil, err
	}

	samples := 0
	if len(matrix) > 0 {
		samples = len(matrix[0])
	}
	if len(times) != samples {
		return nil, fmt.Errorf("%w: %d timestamps for %d samples", errs.ErrAlignment, len(times), samples)
	}

	return s.window(times, matrix), nil
}

// window applies the inclusive [lo, hi] time crop and assembles the result.
// Cropping happens only after full decode: unpacking needs contiguous runs.
func (s *BufferSession) window(times []float64, matrix [][]float64) []DecodedSample {
	out := make([]DecodedSample, 0, len(times))
	for i, t := range times {
		if t < s.cfg.WindowLo || t > s.cfg.WindowHi {
			continue
		}

		values := make([]float64, len(matrix))
		for ch := range matrix {
			values[ch] = matrix[ch][i]
		}
		out = append(out, DecodedSample{Time: t, Values: values})
	}

	return out
}

func (s *BufferSession) plan() decode.Plan {
	return decode.Plan{
		Domain:       s.cfg.Domain,
		Kind:         s.cfg.Kind,
		WordsPerElem: s.cfg.ChansPerElem,
		Factor:       s.cfg.Factor,
		BitsPerValue: s.cfg.BitsPerValue,
		Scale:        s.cfg.Scale,
		Channels:     s.cfg.Channels,
	}
}

func (s *BufferSession) clock() decode.Clock {
	return decode.Clock{
		ParentRate:     s.cfg.ParentRate,
		TicksPerMinute: s.cfg.TicksPerMinute,
		Downsample:     int64(s.cfg.Downsample),
		Factor:         s.cfg.SamplesPerElem(),
	}
}

func segmentTotal(segs []Segment) int {
	total := 0
	for _, seg := range segs {
		total += seg.Count
	}

	return total
}
