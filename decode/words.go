package decode

import (
	"fmt"

	"github.com/strobelab/ringcap/endian"
	"github.com/strobelab/ringcap/errs"
	"github.com/strobelab/ringcap/format"
)

// WordBits is the native width of a stored word.
const WordBits = 32

// Plan describes how a buffer entity's stored words map to channel values.
// The session derives one Plan at bind time from the entity's schema.
type Plan struct {
	// Domain is the packing axis. DomainNone means one value per word.
	Domain format.CompressionDomain

	// Kind is the native storage kind of the unpacked values.
	Kind format.SampleKind

	// WordsPerElem is the number of stored words per buffered element.
	WordsPerElem int

	// Factor is the number of sub-words packed into each word. Always 1
	// when Domain is DomainNone.
	Factor int

	// BitsPerValue is the width of one packed sub-word. Equal to WordBits
	// when Domain is DomainNone.
	BitsPerValue int

	// Scale divides every decoded value when not 1. Quantized stores use it
	// to recover physical units from integer sub-words.
	Scale float64

	// Channels is the channel sub-selection applied after unpacking.
	Channels int
}

// TotalChannels returns the channel count the plan yields before cropping.
func (p Plan) TotalChannels() int {
	if p.Domain == format.DomainChannel {
		return p.WordsPerElem * p.Factor
	}

	return p.WordsPerElem
}

// SamplesPerElem returns how many time samples one buffered element carries.
func (p Plan) SamplesPerElem() int {
	if p.Domain == format.DomainTime {
		return p.Factor
	}

	return 1
}

func (p Plan) validate() error {
	if p.WordsPerElem < 1 {
		return fmt.Errorf("%w: %d words per element", errs.ErrSegmentShape, p.WordsPerElem)
	}
	if p.Factor < 1 || p.BitsPerValue < 1 || p.Factor*p.BitsPerValue != WordBits {
		return fmt.Errorf("%w: factor %d x %d bits", errs.ErrBitWidth, p.Factor, p.BitsPerValue)
	}
	if p.Channels < 1 || p.Channels > p.TotalChannels() {
		return fmt.Errorf("%w: %d of %d channels", errs.ErrChannelRange, p.Channels, p.TotalChannels())
	}

	return nil
}

// Unpack decodes a raw word stream into a channel-major sample matrix.
//
// raw holds the generic float values of one chronologically ordered run of
// buffered elements. The result has p.Channels rows; every row has one value
// per time sample, already rescaled by p.Scale. The input length must be a
// whole number of elements.
func Unpack(p Plan, raw []float64) ([][]float64, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(raw)%p.WordsPerElem != 0 {
		return nil, fmt.Errorf("%w: %d words, %d per element", errs.ErrSegmentShape, len(raw), p.WordsPerElem)
	}

	elems := len(raw) / p.WordsPerElem
	samples := elems * p.SamplesPerElem()

	matrix := make([][]float64, p.Channels)
	for ch := range matrix {
		matrix[ch] = make([]float64, samples)
	}

	switch p.Domain {
	case format.DomainNone:
		// One word per value, element = one time sample of WordsPerElem channels.
		for e := 0; e < elems; e++ {
			for ch := 0; ch < p.Channels; ch++ {
				matrix[ch][e] = nativeValue(p.Kind, raw[e*p.WordsPerElem+ch])
			}
		}

	case format.DomainChannel:
		// Each word packs Factor adjacent channels; element = one time sample.
		for e := 0; e < elems; e++ {
			base := e * p.WordsPerElem
			for ch := 0; ch < p.Channels; ch++ {
				word := endian.WordOf(raw[base+ch/p.Factor])
				matrix[ch][e] = float64(subWord(word, ch%p.Factor, p.BitsPerValue, p.Kind.Signed()))
			}
		}

	case format.DomainTime:
		// Each word packs Factor consecutive time samples of one channel;
		// element = Factor time samples of WordsPerElem channels.
		for e := 0; e < elems; e++ {
			base := e * p.WordsPerElem
			for ch := 0; ch < p.Channels; ch++ {
				word := endian.WordOf(raw[base+ch])
				for k := 0; k < p.Factor; k++ {
					matrix[ch][e*p.Factor+k] = float64(subWord(word, k, p.BitsPerValue, p.Kind.Signed()))
				}
			}
		}

	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownDomain, p.Domain)
	}

	if p.Scale != 1 && p.Scale != 0 {
		for ch := range matrix {
			for i := range matrix[ch] {
				matrix[ch][i] /= p.Scale
			}
		}
	}

	return matrix, nil
}

// Pack is the inverse of Unpack: it encodes a full channel-major matrix
// (all TotalChannels rows, pre-crop) into the raw word stream the device
// would store. Values are multiplied by p.Scale and truncated to the packed
// integer width, matching the device's quantization.
func Pack(p Plan, matrix [][]float64) ([]float64, error) {
	full := p
	full.Channels = p.TotalChannels()
	if err := full.validate(); err != nil {
		return nil, err
	}
	if len(matrix) != full.Channels {
		return nil, fmt.Errorf("%w: %d rows, plan yields %d channels", errs.ErrSegmentShape, len(matrix), full.Channels)
	}

	samples := 0
	if full.Channels > 0 {
		samples = len(matrix[0])
	}
	for _, row := range matrix {
		if len(row) != samples {
			return nil, fmt.Errorf("%w: ragged channel rows", errs.ErrSegmentShape)
		}
	}
	if samples%p.SamplesPerElem() != 0 {
		return nil, fmt.Errorf("%w: %d samples, %d per element", errs.ErrSegmentShape, samples, p.SamplesPerElem())
	}

	scale := p.Scale
	if scale == 0 {
		scale = 1
	}

	elems := samples / p.SamplesPerElem()
	raw := make([]float64, elems*p.WordsPerElem)

	switch p.Domain {
	case format.DomainNone:
		for e := 0; e < elems; e++ {
			for ch := 0; ch < full.Channels; ch++ {
				raw[e*p.WordsPerElem+ch] = nativeWord(p.Kind, matrix[ch][e]*scale)
			}
		}

	case format.DomainChannel:
		for e := 0; e < elems; e++ {
			base := e * p.WordsPerElem
			for w := 0; w < p.WordsPerElem; w++ {
				var word uint32
				for k := 0; k < p.Factor; k++ {
					word |= packSub(matrix[w*p.Factor+k][e]*scale, k, p.BitsPerValue)
				}
				raw[base+w] = endian.ValueOf(word)
			}
		}

	case format.DomainTime:
		for e := 0; e < elems; e++ {
			base := e * p.WordsPerElem
			for ch := 0; ch < p.WordsPerElem; ch++ {
				var word uint32
				for k := 0; k < p.Factor; k++ {
					word |= packSub(matrix[ch][e*p.Factor+k]*scale, k, p.BitsPerValue)
				}
				raw[base+ch] = endian.ValueOf(word)
			}
		}

	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownDomain, p.Domain)
	}

	return raw, nil
}

// subWord extracts sub-word k from a packed word, low bits first, with
// optional sign extension.
func subWord(word uint32, k, bits int, signed bool) int64 {
	mask := uint32(1)<<bits - 1
	sub := (word >> (k * bits)) & mask

	if signed && sub&(1<<(bits-1)) != 0 {
		return int64(sub) - int64(1)<<bits
	}

	return int64(sub)
}

// packSub places a quantized value into sub-word slot k of a word.
func packSub(v float64, k, bits int) uint32 {
	mask := uint32(1)<<bits - 1

	return (uint32(int64(v)) & mask) << (k * bits)
}

// nativeValue interprets one unpacked generic value per the storage kind.
func nativeValue(kind format.SampleKind, v float64) float64 {
	switch kind {
	case format.KindInt32:
		return float64(int32(endian.WordOf(v)))
	case format.KindUint32:
		return float64(endian.WordOf(v))
	default:
		return v
	}
}

// nativeWord encodes one value into its generic wire form per the storage
// kind. Inverse of nativeValue.
func nativeWord(kind format.SampleKind, v float64) float64 {
	switch kind {
	case format.KindInt32:
		return endian.ValueOf(uint32(int32(int64(v))))
	case format.KindUint32:
		return endian.ValueOf(uint32(int64(v)))
	default:
		return v
	}
}
