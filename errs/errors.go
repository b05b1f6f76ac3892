// Package errs defines the sentinel errors shared across ringcap packages.
//
// Callers should match errors with errors.Is since most failures are wrapped
// with additional context at the point of detection.
package errs

import (
	"errors"
	"fmt"
)

// Binding errors: the session could not attach to the remote buffer entity.
var (
	// ErrEntityNotFound indicates the named buffer entity does not exist on
	// the device.
	ErrEntityNotFound = errors.New("buffer entity not found")

	// ErrDeviceInactive indicates the device is not in a run-time mode, so
	// control metadata is not trustworthy and binding is refused.
	ErrDeviceInactive = errors.New("device is not in an active mode")
)

// Schema errors: the entity exists but does not expose a usable control set.
var (
	// ErrMissingControl indicates a required control is absent from the
	// entity's schema.
	ErrMissingControl = errors.New("required control missing from entity schema")

	// ErrUnknownDomain indicates the entity reported a compression-domain
	// code this client does not understand.
	ErrUnknownDomain = errors.New("unknown compression domain code")

	// ErrUnknownKind indicates the sample control's declared type could not
	// be mapped to a native storage kind.
	ErrUnknownKind = errors.New("unknown sample storage kind")
)

// Validation errors: a setter argument was malformed. No device state is
// mutated when these are returned.
var (
	// ErrChannelRange indicates a channel sub-selection outside
	// [1, maxChannels].
	ErrChannelRange = errors.New("channel selection out of range")

	// ErrBadWindow indicates a time window that is not strictly ordered or
	// contains NaN.
	ErrBadWindow = errors.New("time window must be ordered and not NaN")

	// ErrBadDuration indicates a non-finite or non-positive duration
	// argument.
	ErrBadDuration = errors.New("duration must be finite and positive")
)

// Decode errors.
var (
	// ErrAlignment indicates the decoded sample count does not match the
	// decoded timestamp count. This is an invariant violation, not a
	// recoverable condition.
	ErrAlignment = errors.New("sample/timestamp alignment mismatch")

	// ErrSegmentShape indicates a fetched segment's length is not a whole
	// number of stored elements.
	ErrSegmentShape = errors.New("segment length is not a whole element count")

	// ErrBitWidth indicates a bits-per-value that does not divide the native
	// word width.
	ErrBitWidth = errors.New("bits per value must divide the word width")
)

// Accumulator errors.
var (
	// ErrShapeMismatch indicates two containers (or a container and a
	// region) whose shapes are incompatible for the requested operation.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrIndexRange indicates an element index outside the container shape.
	ErrIndexRange = errors.New("index out of range")

	// ErrAxisRange indicates an axis argument outside the container rank.
	ErrAxisRange = errors.New("axis out of range")

	// ErrNotBinary indicates a Bernoulli confidence query on an accumulator
	// that has received values other than 0 and 1.
	ErrNotBinary = errors.New("accumulator holds non-binary values")
)

// Wire errors.
var (
	// ErrFrameSize indicates a wire frame whose payload is not a whole
	// number of wire words.
	ErrFrameSize = errors.New("frame payload is not a whole word count")
)

// ClampWarning reports that the device applied a smaller value than the one
// requested by a setter. The applied value is already in effect; the warning
// exists so the caller can re-plan around the reduced capacity.
//
// ClampWarning implements error but is non-fatal: setters return it alongside
// the applied value, and callers detect it with errors.As.
type ClampWarning struct {
	Control   string
	Requested int
	Applied   int
}

func (w *ClampWarning) Error() string {
	return fmt.Sprintf("device clamped %s: requested %d, applied %d", w.Control, w.Requested, w.Applied)
}

// IsClamp reports whether err is (or wraps) a ClampWarning, which callers may
// treat as success with a caveat.
func IsClamp(err error) bool {
	var cw *ClampWarning
	return errors.As(err, &cw)
}
