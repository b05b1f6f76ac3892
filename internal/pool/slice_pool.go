// Package pool provides pooled scratch slices for per-cycle segment
// assembly. A fetch cycle concatenates up to two raw segments per sub-buffer
// before decoding; pooling the staging slices keeps steady-state cycles
// allocation-free.
package pool

import "sync"

var float64SlicePool = sync.Pool{
	New: func() any { return &[]float64{} },
}

// GetFloat64Slice returns a pooled float64 slice with the requested length
// and a cleanup function that must be called (typically with defer) once the
// slice's contents have been consumed.
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
		*ptr = slice
	} else {
		slice = slice[:size]
	}

	return slice, func() { float64SlicePool.Put(ptr) }
}
