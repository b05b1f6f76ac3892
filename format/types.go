package format

type (
	// CompressionDomain identifies the axis along which multiple raw values
	// are packed into one stored 32-bit word on the device.
	CompressionDomain uint8

	// SampleKind identifies the native storage width and signedness of the
	// values held in the device's sample store.
	SampleKind uint8

	// WireCompression identifies the block codec applied to array payloads
	// on the transport link, independent of device-side word packing.
	WireCompression uint8

	// DeviceMode is the run state reported by the acquisition device.
	DeviceMode uint8
)

const (
	DomainNone    CompressionDomain = 0x1 // DomainNone stores one value per word.
	DomainChannel CompressionDomain = 0x2 // DomainChannel packs adjacent channels into one word.
	DomainTime    CompressionDomain = 0x3 // DomainTime packs consecutive time samples into one word.

	KindFloat32 SampleKind = 0x1 // KindFloat32 stores IEEE-754 single precision values.
	KindInt32   SampleKind = 0x2 // KindInt32 stores signed 32-bit integers.
	KindUint32  SampleKind = 0x3 // KindUint32 stores unsigned 32-bit integers.

	WireNone WireCompression = 0x1 // WireNone transports payloads uncompressed.
	WireZstd WireCompression = 0x2 // WireZstd transports payloads with Zstandard.
	WireS2   WireCompression = 0x3 // WireS2 transports payloads with S2.
	WireLZ4  WireCompression = 0x4 // WireLZ4 transports payloads with LZ4 block compression.

	ModeIdle    DeviceMode = 0x0 // ModeIdle means the device is loaded but not running.
	ModePreview DeviceMode = 0x1 // ModePreview means the device is running without recording.
	ModeRecord  DeviceMode = 0x2 // ModeRecord means the device is running and recording.
)

// Active reports whether the device is in a run-time mode that permits
// binding a buffer session.
func (m DeviceMode) Active() bool {
	return m == ModePreview || m == ModeRecord
}

// Signed reports whether values of this kind carry a sign bit, which
// controls sign extension when unpacking sub-words.
func (k SampleKind) Signed() bool {
	return k == KindInt32
}

func (d CompressionDomain) String() string {
	switch d {
	case DomainNone:
		return "None"
	case DomainChannel:
		return "Channel"
	case DomainTime:
		return "Time"
	default:
		return "Unknown"
	}
}

func (k SampleKind) String() string {
	switch k {
	case KindFloat32:
		return "Float32"
	case KindInt32:
		return "Int32"
	case KindUint32:
		return "Uint32"
	default:
		return "Unknown"
	}
}

func (w WireCompression) String() string {
	switch w {
	case WireNone:
		return "None"
	case WireZstd:
		return "Zstd"
	case WireS2:
		return "S2"
	case WireLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (m DeviceMode) String() string {
	switch m {
	case ModeIdle:
		return "Idle"
	case ModePreview:
		return "Preview"
	case ModeRecord:
		return "Record"
	default:
		return "Unknown"
	}
}
