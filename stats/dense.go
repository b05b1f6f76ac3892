package stats

import (
	"fmt"

	"github.com/strobelab/ringcap/errs"
)

// Range is a half-open index interval [Lo, Hi) along one axis.
type Range struct {
	Lo, Hi int
}

// Span constructs a Range.
func Span(lo, hi int) Range {
	return Range{Lo: lo, Hi: hi}
}

// Len returns the number of indices the range covers.
func (r Range) Len() int {
	return r.Hi - r.Lo
}

// Dense is a row-major N-dimensional float64 array. It carries the sample
// blocks fed into an Accumulator and the mean/variance snapshots read back
// out.
type Dense struct {
	shape []int
	data  []float64
}

// NewDense allocates a zero-filled Dense with the given shape. Every
// dimension must be positive.
func NewDense(shape ...int) (*Dense, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}

	return &Dense{
		shape: append([]int(nil), shape...),
		data:  make([]float64, sizeOf(shape)),
	}, nil
}

// DenseOf wraps existing row-major data in a Dense. The data length must
// match the shape's element count; the slice is not copied.
func DenseOf(data []float64, shape ...int) (*Dense, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	if len(data) != sizeOf(shape) {
		return nil, fmt.Errorf("%w: %d values for shape %v", errs.ErrShapeMismatch, len(data), shape)
	}

	return &Dense{
		shape: append([]int(nil), shape...),
		data:  data,
	}, nil
}

// Shape returns a copy of the array's shape.
func (d *Dense) Shape() []int {
	return append([]int(nil), d.shape...)
}

// Len returns the total element count.
func (d *Dense) Len() int {
	return len(d.data)
}

// At returns the element at the given index. Panics on a malformed index,
// matching native slice indexing.
func (d *Dense) At(index ...int) float64 {
	return d.data[mustOffset(d.shape, index)]
}

// Set assigns the element at the given index. Panics on a malformed index.
func (d *Dense) Set(v float64, index ...int) {
	d.data[mustOffset(d.shape, index)] = v
}

// Data returns the underlying row-major slice. Mutations are visible to the
// Dense.
func (d *Dense) Data() []float64 {
	return d.data
}

func checkShape(shape []int) error {
	if len(shape) == 0 {
		return fmt.Errorf("%w: empty shape", errs.ErrShapeMismatch)
	}
	for _, dim := range shape {
		if dim < 1 {
			return fmt.Errorf("%w: dimension %d", errs.ErrShapeMismatch, dim)
		}
	}

	return nil
}

func sizeOf(shape []int) int {
	size := 1
	for _, dim := range shape {
		size *= dim
	}

	return size
}

// stridesOf returns row-major strides for a shape.
func stridesOf(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}

	return strides
}

func offsetOf(shape, index []int) (int, error) {
	if len(index) != len(shape) {
		return 0, fmt.Errorf("%w: rank %d index into rank %d container", errs.ErrIndexRange, len(index), len(shape))
	}

	offset := 0
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		if index[i] < 0 || index[i] >= shape[i] {
			return 0, fmt.Errorf("%w: index %d on axis %d of extent %d", errs.ErrIndexRange, index[i], i, shape[i])
		}
		offset += index[i] * acc
		acc *= shape[i]
	}

	return offset, nil
}

func mustOffset(shape, index []int) int {
	offset, err := offsetOf(shape, index)
	if err != nil {
		panic(err)
	}

	return offset
}

// eachIndex walks every index of a shape in row-major order. dims with a
// zero extent yield no calls.
func eachIndex(dims []int, fn func(index []int)) {
	for _, dim := range dims {
		if dim <= 0 {
			return
		}
	}

	index := make([]int, len(dims))
	for {
		fn(index)

		axis := len(dims) - 1
		for ; axis >= 0; axis-- {
			index[axis]++
			if index[axis] < dims[axis] {
				break
			}
			index[axis] = 0
		}
		if axis < 0 {
			return
		}
	}
}
