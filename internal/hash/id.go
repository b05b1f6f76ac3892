package hash

import "github.com/cespare/xxhash/v2"

// EntityID computes the xxHash64 of a buffer entity name. Sessions expose it
// so callers can key per-entity state with a fixed-size identifier instead
// of the name string.
func EntityID(name string) uint64 {
	return xxhash.Sum64String(name)
}
