package session

import (
	"context"
	"fmt"

	"github.com/strobelab/ringcap/errs"
)

// Segment is one contiguous run to read from a circular sub-buffer array.
type Segment struct {
	Offset int
	Count  int
}

// PlanSegments computes the minimal contiguous reads that retrieve every
// valid element of a circular buffer in chronological order.
//
// capacity is the array capacity, counter the lifetime write count, and
// index the current write position (mod capacity). An unwrapped buffer
// (counter <= capacity) yields one read of the leading index elements; a
// wrapped buffer yields the head run [index, capacity), which holds the
// oldest data, followed by the tail run [0, index). Zero-length runs are
// omitted.
func PlanSegments(capacity, counter, index int) []Segment {
	if counter <= 0 || capacity <= 0 {
		return nil
	}

	if counter <= capacity {
		if index == 0 {
			return nil
		}

		return []Segment{{Offset: 0, Count: index}}
	}

	segs := make([]Segment, 0, 2)
	if head := capacity - index; head > 0 {
		segs = append(segs, Segment{Offset: index, Count: head})
	}
	if index > 0 {
		segs = append(segs, Segment{Offset: 0, Count: index})
	}

	return segs
}

// State is the circular-buffer write state captured at the start of a fetch
// cycle. It is transient: read fresh each cycle, never cached.
type State struct {
	MinIndex  int
	SecIndex  int
	SampIndex int
	Writes    int

	TrigMinute int64
	TrigSecond int64
}

// readState snapshots every scalar index, counter, and trigger control in
// one pass. All of them must be captured before any segment read so a write
// between calls cannot misalign timestamps against samples.
func (s *BufferSession) readState(ctx context.Context) (State, error) {
	var st State

	reads := []struct {
		control string
		intDst  *int
		i64Dst  *int64
	}{
		{control: CtrlMinIndex, intDst: &st.MinIndex},
		{control: CtrlSecIndex, intDst: &st.SecIndex},
		{control: CtrlSampIndex, intDst: &st.SampIndex},
		{control: CtrlWrites, intDst: &st.Writes},
		{control: CtrlTrigMin, i64Dst: &st.TrigMinute},
		{control: CtrlTrigSec, i64Dst: &st.TrigSecond},
	}

	for _, r := range reads {
		v, err := s.client.GetScalar(ctx, s.entity, r.control)
		if err != nil {
			return State{}, err
		}
		if r.intDst != nil {
			*r.intDst = int(v)
		} else {
			*r.i64Dst = int64(v)
		}
	}

	return st, nil
}

// readSegments fetches the planned runs of one array control into dst,
// which must have room for the total element count. A response shorter than
// the planned run would leave stale scratch data in dst, so it is rejected
// rather than padded.
func (s *BufferSession) readSegments(ctx context.Context, control string, segs []Segment, dst []float64) error {
	pos := 0
	for _, seg := range segs {
		values, err := s.client.ReadArray(ctx, s.entity, control, seg.Offset, seg.Count)
		if err != nil {
			return err
		}
		if len(values) != seg.Count {
			return fmt.Errorf("%w: %q returned %d of %d values at offset %d",
				errs.ErrSegmentShape, control, len(values), seg.Count, seg.Offset)
		}
		pos += copy(dst[pos:], values)
	}

	return nil
}
