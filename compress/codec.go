// Package compress provides the block codecs applied to array payloads on
// the device link.
//
// The device packs samples into words on its own (that is the decode
// package's concern); these codecs only shrink the payload of an array read
// while it crosses the wire. Zstd gives the best ratio, S2 and LZ4 trade
// ratio for speed, and None passes payloads through untouched.
package compress

import (
	"fmt"

	"github.com/strobelab/ringcap/format"
)

// Codec compresses and decompresses a complete array payload.
//
// Implementations must treat the input as immutable and return freshly
// allocated output owned by the caller. All built-in codecs are safe for
// concurrent use.
type Codec interface {
	// Compress compresses data and returns the result.
	Compress(data []byte) ([]byte, error)

	// Decompress restores data previously compressed by the same codec.
	// Corrupted or foreign input yields an error.
	Decompress(data []byte) ([]byte, error)
}

var builtinCodecs = map[format.WireCompression]Codec{
	format.WireNone: NewNoOpCodec(),
	format.WireZstd: NewZstdCodec(),
	format.WireS2:   NewS2Codec(),
	format.WireLZ4:  NewLZ4Codec(),
}

// GetCodec returns the built-in Codec for the given wire compression type.
func GetCodec(wc format.WireCompression) (Codec, error) {
	if codec, ok := builtinCodecs[wc]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported wire compression: %s", wc)
}
