package stats

import (
	"fmt"
	"math"

	"github.com/strobelab/ringcap/errs"
)

// DefaultConfidence is the two-sided confidence level used by
// BernoulliHalfWidth when the caller passes 0.
const DefaultConfidence = 0.95

// Accumulator maintains a running (count, mean, M2) triple per element of an
// N-dimensional index space.
//
// The three state arrays always share the accumulator's shape; structural
// operations move them together. Variance-family queries are undefined below
// a count of 2 and return NaN.
//
// Not safe for concurrent use.
type Accumulator struct {
	shape []int
	count []int64
	mean  []float64
	m2    []float64

	// binary stays true while every accumulated value was exactly 0 or 1,
	// the precondition for Bernoulli confidence queries.
	binary bool
}

// New creates a zeroed accumulator with the given shape. New() is shorthand
// for a single-element accumulator.
func New(shape ...int) (*Accumulator, error) {
	if len(shape) == 0 {
		shape = []int{1}
	}
	if err := checkShape(shape); err != nil {
		return nil, err
	}

	size := sizeOf(shape)

	return &Accumulator{
		shape:  append([]int(nil), shape...),
		count:  make([]int64, size),
		mean:   make([]float64, size),
		m2:     make([]float64, size),
		binary: true,
	}, nil
}

// Shape returns a copy of the accumulator's shape.
func (a *Accumulator) Shape() []int {
	return append([]int(nil), a.shape...)
}

// Add folds one observation into the element at index.
//
// The update is Welford's single-pass recurrence: count increments, the mean
// moves by delta/count, and M2 absorbs delta*delta2. A malformed index is
// rejected before any state changes.
func (a *Accumulator) Add(x float64, index ...int) error {
	offset, err := offsetOf(a.shape, index)
	if err != nil {
		return err
	}

	a.update(offset, x)

	return nil
}

// AddBlock folds one observation per element of a sub-range.
//
// values must have exactly the region's shape; element (i0,i1,...) of values
// lands on element (region[0].Lo+i0, region[1].Lo+i1, ...) of the
// accumulator. Validation completes before any element mutates, and elements
// outside the region are untouched.
func (a *Accumulator) AddBlock(values *Dense, region ...Range) error {
	dims, err := a.checkRegion(region)
	if err != nil {
		return err
	}
	if !shapeEqual(values.shape, dims) {
		return fmt.Errorf("%w: block shape %v into region shape %v", errs.ErrShapeMismatch, values.shape, dims)
	}

	valStrides := stridesOf(values.shape)
	accStrides := stridesOf(a.shape)

	eachIndex(dims, func(index []int) {
		src := 0
		dst := 0
		for axis, i := range index {
			src += i * valStrides[axis]
			dst += (region[axis].Lo + i) * accStrides[axis]
		}
		a.update(dst, values.data[src])
	})

	return nil
}

func (a *Accumulator) update(offset int, x float64) {
	if x != 0 && x != 1 {
		a.binary = false
	}

	a.count[offset]++
	delta := x - a.mean[offset]
	a.mean[offset] += delta / float64(a.count[offset])
	delta2 := x - a.mean[offset]
	a.m2[offset] += delta * delta2
}

// Count returns the observation count of one element. Panics on a malformed
// index, matching native array indexing.
func (a *Accumulator) Count(index ...int) int64 {
	return a.count[mustOffset(a.shape, index)]
}

// Mean returns the running mean of one element. Zero before the first
// observation.
func (a *Accumulator) Mean(index ...int) float64 {
	return a.mean[mustOffset(a.shape, index)]
}

// Variance returns the unbiased sample variance M2/(count-1) of one
// element, or NaN below a count of 2.
func (a *Accumulator) Variance(index ...int) float64 {
	offset := mustOffset(a.shape, index)
	if a.count[offset] < 2 {
		return math.NaN()
	}

	return a.m2[offset] / float64(a.count[offset]-1)
}

// Stddev returns the sample standard deviation of one element, or NaN below
// a count of 2.
func (a *Accumulator) Stddev(index ...int) float64 {
	return math.Sqrt(a.Variance(index...))
}

// Stderr returns the standard error of the mean, stddev/sqrt(count), or NaN
// below a count of 2.
func (a *Accumulator) Stderr(index ...int) float64 {
	offset := mustOffset(a.shape, index)
	if a.count[offset] < 2 {
		return math.NaN()
	}

	return math.Sqrt(a.m2[offset]/float64(a.count[offset]-1)) / math.Sqrt(float64(a.count[offset]))
}

// BernoulliHalfWidth returns the half-width of the two-sided confidence
// interval for a proportion, z(p) * sqrt(mean*(1-mean)/count).
//
// Valid only while every accumulated value has been exactly 0 or 1;
// otherwise ErrNotBinary. confidence 0 selects DefaultConfidence. Returns
// NaN for an element with no observations.
func (a *Accumulator) BernoulliHalfWidth(confidence float64, index ...int) (float64, error) {
	if !a.binary {
		return 0, errs.ErrNotBinary
	}
	if confidence == 0 {
		confidence = DefaultConfidence
	}
	if confidence <= 0 || confidence >= 1 {
		return 0, fmt.Errorf("%w: confidence %v", errs.ErrBadWindow, confidence)
	}

	offset, err := offsetOf(a.shape, index)
	if err != nil {
		return 0, err
	}
	if a.count[offset] == 0 {
		return math.NaN(), nil
	}

	// Two-sided z: the inverse normal CDF at (1-confidence)/2, magnitude.
	z := math.Sqrt2 * math.Erfinv(confidence)
	p := a.mean[offset]
	n := float64(a.count[offset])

	return z * math.Sqrt(p*(1-p)/n), nil
}

// Means returns a Dense snapshot of every element's running mean.
func (a *Accumulator) Means() *Dense {
	return &Dense{shape: a.Shape(), data: append([]float64(nil), a.mean...)}
}

// Variances returns a Dense snapshot of every element's sample variance,
// NaN where the count is below 2.
func (a *Accumulator) Variances() *Dense {
	out := make([]float64, len(a.m2))
	for i := range out {
		if a.count[i] < 2 {
			out[i] = math.NaN()
		} else {
			out[i] = a.m2[i] / float64(a.count[i]-1)
		}
	}

	return &Dense{shape: a.Shape(), data: out}
}

// Counts returns a copy of every element's observation count, row-major.
func (a *Accumulator) Counts() []int64 {
	return append([]int64(nil), a.count...)
}

func (a *Accumulator) checkRegion(region []Range) ([]int, error) {
	if len(region) != len(a.shape) {
		return nil, fmt.Errorf("%w: rank %d region on rank %d container", errs.ErrShapeMismatch, len(region), len(a.shape))
	}

	dims := make([]int, len(region))
	for axis, r := range region {
		if r.Lo < 0 || r.Hi > a.shape[axis] || r.Lo >= r.Hi {
			return nil, fmt.Errorf("%w: range [%d,%d) on axis %d of extent %d", errs.ErrIndexRange, r.Lo, r.Hi, axis, a.shape[axis])
		}
		dims[axis] = r.Len()
	}

	return dims, nil
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
