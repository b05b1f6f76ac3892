// Package endian provides byte-order utilities for wire framing plus the
// 32-bit word conversion helpers shared by the decode and param packages.
//
// The device's parameter protocol transports every array element as a
// generic float64 value. Integer and packed stores send the stored 32-bit
// word numerically; float stores send the sample value itself. WordOf and
// ValueOf convert between the numeric representation and the raw word. The
// conversion is exact: a float64 mantissa holds every uint32 without
// rounding, and no bit pattern is ever routed through a float container
// where a NaN payload could be rewritten in transit.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// Engine combines ByteOrder and AppendByteOrder from encoding/binary into a
// single interface for frame encoding. binary.LittleEndian and
// binary.BigEndian both satisfy it.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Native returns the host's byte order, determined from a fixed probe value.
func Native() binary.ByteOrder {
	// For a little-endian host the LSB (0x00) sits at the lowest address.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// Little returns the little-endian engine, the default for device links.
func Little() Engine {
	return binary.LittleEndian
}

// Big returns the big-endian engine.
func Big() Engine {
	return binary.BigEndian
}

// WordOf recovers the stored 32-bit word from its generic numeric value.
// The value must lie in [0, 1<<32); every counter and packed-word store the
// device exposes stays in that range.
func WordOf(v float64) uint32 {
	return uint32(v)
}

// ValueOf converts a stored 32-bit word into the generic numeric
// representation used on the wire. Exact inverse of WordOf.
func ValueOf(w uint32) float64 {
	return float64(w)
}
