// Package decode reconstructs channel sample matrices and trigger-relative
// timestamps from the packed word streams a buffer entity stores.
//
// The device stores each buffered element as a fixed run of 32-bit words.
// Depending on the entity's compression plan, one word holds a single value,
// several adjacent channels (channel-domain packing), or several consecutive
// time samples of one channel (time-domain packing). Unpack reverses that
// layout into a channel-major matrix; Pack is its exact inverse and exists
// for round-trip tests and device simulators.
//
// Timestamps are stored per element as a (minute, second) counter pair where
// the second counter counts parent-clock ticks and wraps at the clock's
// ticks-per-minute modulus. Clock.Expand converts those pairs into one
// trigger-relative timestamp per decoded sample, back-computing the packed
// samples a time-domain word collapses into a single stored pair.
package decode
