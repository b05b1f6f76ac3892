// Package stats maintains numerically stable running statistics over an
// N-dimensional indexable space.
//
// An Accumulator holds a (count, mean, M2) triple per element, updated with
// Welford's single-pass algorithm. M2 is the running sum of squared
// deviations from the current mean, which keeps variance stable where naive
// sum-of-squares accumulation cancels catastrophically.
//
// The container is opaque: sub-range selection, concatenation, reshaping,
// permutation, and replication are explicit named operations that move all
// three state arrays in lockstep, so every element's triple stays attached
// to its origin data. One accumulator has a single logical owner; concurrent
// accumulation must be serialized by the caller.
package stats
