package compress

// NoOpCodec passes payloads through unchanged. Used when the link is local
// or the payload is already dense packed-word data that will not shrink.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a pass-through codec.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

func (c NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (c NoOpCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
