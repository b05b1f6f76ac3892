package stats

import (
	"fmt"

	"github.com/strobelab/ringcap/errs"
)

// Structural operations. Each one applies to the count, mean, and M2 arrays
// identically, so an element's triple never separates from its origin data.
// Operations that return a new accumulator copy state; the source is never
// aliased.

// Slice copies the sub-range described by one Range per axis into a new
// accumulator of the region's shape.
func (a *Accumulator) Slice(region ...Range) (*Accumulator, error) {
	dims, err := a.checkRegion(region)
	if err != nil {
		return nil, err
	}

	out, _ := New(dims...)
	out.binary = a.binary

	srcStrides := stridesOf(a.shape)
	dstStrides := stridesOf(out.shape)

	eachIndex(dims, func(index []int) {
		src := 0
		dst := 0
		for axis, i := range index {
			src += (region[axis].Lo + i) * srcStrides[axis]
			dst += i * dstStrides[axis]
		}
		out.copyElem(dst, a, src)
	})

	return out, nil
}

// SetRange overwrites the triples of a sub-range with those of src, whose
// shape must equal the region's shape. Elements outside the region keep
// their state.
func (a *Accumulator) SetRange(src *Accumulator, region ...Range) error {
	dims, err := a.checkRegion(region)
	if err != nil {
		return err
	}
	if !shapeEqual(src.shape, dims) {
		return fmt.Errorf("%w: source shape %v into region shape %v", errs.ErrShapeMismatch, src.shape, dims)
	}

	srcStrides := stridesOf(src.shape)
	dstStrides := stridesOf(a.shape)

	eachIndex(dims, func(index []int) {
		from := 0
		to := 0
		for axis, i := range index {
			from += i * srcStrides[axis]
			to += (region[axis].Lo + i) * dstStrides[axis]
		}
		a.copyElem(to, src, from)
	})

	a.binary = a.binary && src.binary

	return nil
}

// Concat joins two accumulators along an axis. All other axes must have
// equal extents.
func (a *Accumulator) Concat(other *Accumulator, axis int) (*Accumulator, error) {
	if axis < 0 || axis >= len(a.shape) {
		return nil, fmt.Errorf("%w: axis %d on rank %d container", errs.ErrAxisRange, axis, len(a.shape))
	}
	if len(other.shape) != len(a.shape) {
		return nil, fmt.Errorf("%w: rank %d with rank %d", errs.ErrShapeMismatch, len(a.shape), len(other.shape))
	}
	for i := range a.shape {
		if i != axis && a.shape[i] != other.shape[i] {
			return nil, fmt.Errorf("%w: axis %d extents %d and %d", errs.ErrShapeMismatch, i, a.shape[i], other.shape[i])
		}
	}

	outShape := a.Shape()
	outShape[axis] += other.shape[axis]

	out, _ := New(outShape...)
	out.binary = a.binary && other.binary
	outStrides := stridesOf(outShape)

	for _, part := range []struct {
		src  *Accumulator
		base int
	}{
		{src: a, base: 0},
		{src: other, base: a.shape[axis]},
	} {
		srcStrides := stridesOf(part.src.shape)
		base := part.base
		src := part.src
		eachIndex(src.shape, func(index []int) {
			from := 0
			to := 0
			for i, v := range index {
				from += v * srcStrides[i]
				if i == axis {
					v += base
				}
				to += v * outStrides[i]
			}
			out.copyElem(to, src, from)
		})
	}

	return out, nil
}

// Reshape returns a copy with a new shape of the same total element count.
// Row-major element order is preserved.
func (a *Accumulator) Reshape(shape ...int) (*Accumulator, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	if sizeOf(shape) != len(a.count) {
		return nil, fmt.Errorf("%w: %d elements into shape %v", errs.ErrShapeMismatch, len(a.count), shape)
	}

	out, _ := New(shape...)
	out.binary = a.binary
	copy(out.count, a.count)
	copy(out.mean, a.mean)
	copy(out.m2, a.m2)

	return out, nil
}

// Permute reorders axes: result axis i takes source axis order[i]. order
// must be a permutation of [0, rank).
func (a *Accumulator) Permute(order ...int) (*Accumulator, error) {
	if len(order) != len(a.shape) {
		return nil, fmt.Errorf("%w: %d axes for rank %d container", errs.ErrAxisRange, len(order), len(a.shape))
	}

	seen := make([]bool, len(order))
	outShape := make([]int, len(order))
	for i, axis := range order {
		if axis < 0 || axis >= len(a.shape) || seen[axis] {
			return nil, fmt.Errorf("%w: order %v is not a permutation", errs.ErrAxisRange, order)
		}
		seen[axis] = true
		outShape[i] = a.shape[axis]
	}

	out, _ := New(outShape...)
	out.binary = a.binary

	srcStrides := stridesOf(a.shape)
	dstStrides := stridesOf(outShape)

	eachIndex(a.shape, func(index []int) {
		from := 0
		for i, v := range index {
			from += v * srcStrides[i]
		}
		to := 0
		for i, axis := range order {
			to += index[axis] * dstStrides[i]
		}
		out.copyElem(to, a, from)
	})

	return out, nil
}

// Replicate tiles the accumulator reps[i] times along each axis, duplicating
// every triple.
func (a *Accumulator) Replicate(reps ...int) (*Accumulator, error) {
	if len(reps) != len(a.shape) {
		return nil, fmt.Errorf("%w: %d factors for rank %d container", errs.ErrAxisRange, len(reps), len(a.shape))
	}

	outShape := make([]int, len(a.shape))
	for i, rep := range reps {
		if rep < 1 {
			return nil, fmt.Errorf("%w: replication factor %d", errs.ErrShapeMismatch, rep)
		}
		outShape[i] = a.shape[i] * rep
	}

	out, _ := New(outShape...)
	out.binary = a.binary

	srcStrides := stridesOf(a.shape)
	dstStrides := stridesOf(outShape)

	eachIndex(outShape, func(index []int) {
		from := 0
		to := 0
		for i, v := range index {
			from += (v % a.shape[i]) * srcStrides[i]
			to += v * dstStrides[i]
		}
		out.copyElem(to, a, from)
	})

	return out, nil
}

func (a *Accumulator) copyElem(to int, src *Accumulator, from int) {
	a.count[to] = src.count[from]
	a.mean[to] = src.mean[from]
	a.m2[to] = src.m2[from]
}
