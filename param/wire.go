package param

import (
	"context"
	"fmt"
	"math"

	"github.com/strobelab/ringcap/compress"
	"github.com/strobelab/ringcap/endian"
	"github.com/strobelab/ringcap/errs"
	"github.com/strobelab/ringcap/format"
)

// FrameCodec converts between the generic float representation of array
// payloads and their framed byte form on a remote link.
//
// Each value travels as one IEEE-754 64-bit word through the configured
// byte order; the whole frame then passes through the block codec. The
// 64-bit width keeps both float samples and full 32-bit counter words exact.
// The zero value is not usable; construct with NewFrameCodec.
type FrameCodec struct {
	engine endian.Engine
	codec  compress.Codec
}

// NewFrameCodec creates a FrameCodec for the given byte order and wire
// compression.
func NewFrameCodec(engine endian.Engine, wc format.WireCompression) (FrameCodec, error) {
	codec, err := compress.GetCodec(wc)
	if err != nil {
		return FrameCodec{}, err
	}

	return FrameCodec{engine: engine, codec: codec}, nil
}

// Encode frames the generic values into compressed wire bytes.
func (fc FrameCodec) Encode(values []float64) ([]byte, error) {
	buf := make([]byte, 0, 8*len(values))
	for _, v := range values {
		buf = fc.engine.AppendUint64(buf, math.Float64bits(v))
	}

	return fc.codec.Compress(buf)
}

// Decode restores generic values from compressed wire bytes.
func (fc FrameCodec) Decode(data []byte) ([]float64, error) {
	raw, err := fc.codec.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("frame payload: %w", err)
	}

	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrFrameSize, len(raw))
	}

	values := make([]float64, len(raw)/8)
	for i := range values {
		values[i] = math.Float64frombits(fc.engine.Uint64(raw[8*i:]))
	}

	return values, nil
}

// ByteTransport is the byte-oriented array-read half of a remote link whose
// payloads are framed by a FrameCodec on the device side.
type ByteTransport interface {
	ReadFrame(ctx context.Context, entity, control string, offset, count int) ([]byte, error)
}

// FrameReader adapts a ByteTransport into the array-read shape of Client,
// decoding each frame through a FrameCodec. Scalar and schema traffic is
// cheap enough to stay uncompressed, so FrameReader covers only ReadArray;
// compose it with a plain Client for the rest.
type FrameReader struct {
	transport ByteTransport
	codec     FrameCodec
}

// NewFrameReader creates a FrameReader over the given transport and codec.
func NewFrameReader(transport ByteTransport, codec FrameCodec) *FrameReader {
	return &FrameReader{transport: transport, codec: codec}
}

// ReadArray fetches and decodes one framed array range.
func (r *FrameReader) ReadArray(ctx context.Context, entity, control string, offset, count int) ([]float64, error) {
	frame, err := r.transport.ReadFrame(ctx, entity, control, offset, count)
	if err != nil {
		return nil, err
	}

	values, err := r.codec.Decode(frame)
	if err != nil {
		return nil, err
	}

	if len(values) != count {
		return nil, fmt.Errorf("%w: requested %d values, frame held %d", errs.ErrFrameSize, count, len(values))
	}

	return values, nil
}
