// Package param defines the remote parameter protocol surface a buffer
// session drives.
//
// The protocol itself lives outside this module; sessions receive an
// explicit Client handle at bind time and never reach for ambient global
// connections. The package also provides FrameCodec and FrameReader for
// byte-oriented links that frame array payloads with optional block
// compression.
package param

import (
	"context"

	"github.com/strobelab/ringcap/format"
)

// ValueType is the declared type of a remote control.
type ValueType uint8

const (
	TypeInteger ValueType = 0x1 // TypeInteger declares an integer-valued control.
	TypeFloat   ValueType = 0x2 // TypeFloat declares a float-valued control.
	TypeLogical ValueType = 0x3 // TypeLogical declares a boolean flag control.
)

func (t ValueType) String() string {
	switch t {
	case TypeInteger:
		return "Integer"
	case TypeFloat:
		return "Float"
	case TypeLogical:
		return "Logical"
	default:
		return "Unknown"
	}
}

// Metadata describes one control of a buffer entity as reported by the
// device. Min carries the declared lower bound; for integer sample stores a
// negative Min marks the storage as signed.
type Metadata struct {
	Name    string
	Type    ValueType
	Min     float64
	Max     float64
	IsArray bool
	Length  int
}

// Client is the synchronous request/response handle to the remote device.
//
// Every call is a full round trip. Implementations own their transport;
// sessions never retry internally, so transient link failures surface to the
// caller as-is. A Client must be safe to share across independent sessions.
type Client interface {
	// Mode reports the device's current run state.
	Mode(ctx context.Context) (format.DeviceMode, error)

	// HasEntity reports whether a named buffer entity exists on the device.
	HasEntity(ctx context.Context, entity string) (bool, error)

	// SampleRate returns the parent device clock rate of the entity, in Hz.
	SampleRate(ctx context.Context, entity string) (float64, error)

	// Controls returns the entity's full control schema as a name to
	// metadata mapping. Unknown or missing names are the caller's problem
	// to detect; the device reports only what exists.
	Controls(ctx context.Context, entity string) (map[string]Metadata, error)

	// GetScalar reads a scalar control value.
	GetScalar(ctx context.Context, entity, control string) (float64, error)

	// SetScalar writes a scalar control value. The device may clamp;
	// callers read back to learn the applied value.
	SetScalar(ctx context.Context, entity, control string, value float64) error

	// ReadArray reads the contiguous range [offset, offset+count) of an
	// array control as generic float values.
	ReadArray(ctx context.Context, entity, control string, offset, count int) ([]float64, error)
}
