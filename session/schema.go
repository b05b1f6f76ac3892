package session

import (
	"context"
	"fmt"
	"math"

	"github.com/strobelab/ringcap/decode"
	"github.com/strobelab/ringcap/errs"
	"github.com/strobelab/ringcap/format"
	"github.com/strobelab/ringcap/param"
)

// Control names a buffer entity must expose. Entities additionally
// supporting packed storage expose the compression extension controls;
// without them the session resolves to DomainNone with one value per word.
const (
	CtrlCapacity   = "BufSize"  // raw element capacity of each sub-buffer
	CtrlChansPer   = "NChans"   // stored words per buffered element
	CtrlDownsample = "Downsamp" // buffering decimation in parent-clock ticks
	CtrlResume     = "Run"      // start/resume flag
	CtrlMinIndex   = "MinIdx"   // minute sub-buffer write index
	CtrlSecIndex   = "SecIdx"   // second sub-buffer write index
	CtrlSampIndex  = "SampIdx"  // sample sub-buffer write index, in words
	CtrlWrites     = "NWrites"  // lifetime element write counter
	CtrlTrigMin    = "TrigMin"  // trigger event minute counter
	CtrlTrigSec    = "TrigSec"  // trigger event second counter

	ArrMinutes = "Mins"  // minute counter array
	ArrSeconds = "Secs"  // second counter array
	ArrSamples = "Samps" // packed sample word array
)

// Compression extension controls.
const (
	CtrlBitsPerVal = "BitsPerVal" // packed sub-word width in bits
	CtrlScale      = "Scale"      // quantization scale factor
	CtrlDomain     = "CompDomain" // packing axis code
)

// CtrlRespWindow and CtrlTicksPerMin are optional controls.
const (
	CtrlRespWindow  = "RespWin"     // response window length in samples
	CtrlTicksPerMin = "TicksPerMin" // second counter wrap modulus
)

// Device codes for the compression-domain control.
const (
	domainCodeNone    = 0
	domainCodeChannel = 1
	domainCodeTime    = 2
)

var requiredScalars = []string{
	CtrlCapacity, CtrlChansPer, CtrlDownsample, CtrlResume,
	CtrlMinIndex, CtrlSecIndex, CtrlSampIndex, CtrlWrites,
	CtrlTrigMin, CtrlTrigSec,
}

var requiredArrays = []string{ArrMinutes, ArrSeconds, ArrSamples}

var compressionControls = []string{CtrlBitsPerVal, CtrlScale, CtrlDomain}

// Config is the static configuration a session derives at bind time. It is
// a snapshot; mutate it only through the session's setters, which round-trip
// to the device.
type Config struct {
	Entity       string
	ParentRate   float64
	BufferedRate float64

	// ElemCapacity is the stored element capacity of each sub-buffer;
	// SampleCapacity is the decoded sample capacity after unpacking.
	ElemCapacity   int
	SampleCapacity int

	ChansPerElem int
	Domain       format.CompressionDomain
	Factor       int
	BitsPerValue int
	Scale        float64
	Kind         format.SampleKind

	Downsample     int
	TicksPerMinute int64

	// ResponseWindow is the configured response window in decoded samples,
	// 0 when the entity does not expose the control.
	ResponseWindow int

	// Channels is the channel sub-selection applied when decoding.
	Channels int

	// WindowLo and WindowHi crop decoded samples to an inclusive
	// trigger-relative time range. Defaults to (-Inf, +Inf).
	WindowLo float64
	WindowHi float64

	SupportsCompression bool
}

// MaxChannels returns the channel count available after unpacking.
func (c Config) MaxChannels() int {
	if c.Domain == format.DomainChannel {
		return c.ChansPerElem * c.Factor
	}

	return c.ChansPerElem
}

// SamplesPerElem returns how many decoded samples one stored element yields.
func (c Config) SamplesPerElem() int {
	if c.Domain == format.DomainTime {
		return c.Factor
	}

	return 1
}

// resolveSchema validates the entity's control set and derives the static
// configuration.
func resolveSchema(ctx context.Context, client param.Client, entity string) (Config, map[string]param.Metadata, error) {
	cfg := Config{Entity: entity}

	mode, err := client.Mode(ctx)
	if err != nil {
		return cfg, nil, err
	}
	if !mode.Active() {
		return cfg, nil, fmt.Errorf("%w: mode %s", errs.ErrDeviceInactive, mode)
	}

	ok, err := client.HasEntity(ctx, entity)
	if err != nil {
		return cfg, nil, err
	}
	if !ok {
		return cfg, nil, fmt.Errorf("%w: %q", errs.ErrEntityNotFound, entity)
	}

	meta, err := client.Controls(ctx, entity)
	if err != nil {
		return cfg, nil, err
	}

	for _, name := range requiredScalars {
		m, ok := meta[name]
		if !ok || m.IsArray {
			return cfg, nil, fmt.Errorf("%w: scalar %q on %q", errs.ErrMissingControl, name, entity)
		}
	}
	for _, name := range requiredArrays {
		m, ok := meta[name]
		if !ok || !m.IsArray {
			return cfg, nil, fmt.Errorf("%w: array %q on %q", errs.ErrMissingControl, name, entity)
		}
	}

	cfg.ParentRate, err = client.SampleRate(ctx, entity)
	if err != nil {
		return cfg, nil, err
	}

	scalars := map[string]*int{
		CtrlCapacity:   &cfg.ElemCapacity,
		CtrlChansPer:   &cfg.ChansPerElem,
		CtrlDownsample: &cfg.Downsample,
	}
	for name, dst := range scalars {
		v, err := client.GetScalar(ctx, entity, name)
		if err != nil {
			return cfg, nil, err
		}
		*dst = int(v)
	}

	if err := resolveCompression(ctx, client, entity, meta, &cfg); err != nil {
		return cfg, nil, err
	}
	if err := resolveKind(meta[ArrSamples], &cfg); err != nil {
		return cfg, nil, err
	}

	cfg.BufferedRate = cfg.ParentRate / float64(cfg.Downsample)
	cfg.SampleCapacity = cfg.ElemCapacity * cfg.SamplesPerElem()
	cfg.Channels = cfg.MaxChannels()
	cfg.WindowLo = math.Inf(-1)
	cfg.WindowHi = math.Inf(1)

	cfg.TicksPerMinute = int64(math.Round(60 * cfg.ParentRate))
	if _, ok := meta[CtrlTicksPerMin]; ok {
		v, err := client.GetScalar(ctx, entity, CtrlTicksPerMin)
		if err != nil {
			return cfg, nil, err
		}
		cfg.TicksPerMinute = int64(v)
	}

	if _, ok := meta[CtrlRespWindow]; ok {
		v, err := client.GetScalar(ctx, entity, CtrlRespWindow)
		if err != nil {
			return cfg, nil, err
		}
		cfg.ResponseWindow = int(v)
	}

	return cfg, meta, nil
}

// resolveCompression derives the packing plan. All three extension controls
// must be present for the entity to count as compression-capable; a partial
// set is a schema defect.
func resolveCompression(ctx context.Context, client param.Client, entity string, meta map[string]param.Metadata, cfg *Config) error {
	present := 0
	for _, name := range compressionControls {
		if _, ok := meta[name]; ok {
			present++
		}
	}

	if present == 0 {
		cfg.Domain = format.DomainNone
		cfg.Factor = 1
		cfg.BitsPerValue = decode.WordBits
		cfg.Scale = 1

		return nil
	}
	if present < len(compressionControls) {
		return fmt.Errorf("%w: partial compression extension on %q", errs.ErrMissingControl, entity)
	}

	cfg.SupportsCompression = true

	code, err := client.GetScalar(ctx, entity, CtrlDomain)
	if err != nil {
		return err
	}
	switch int(code) {
	case domainCodeNone:
		cfg.Domain = format.DomainNone
	case domainCodeChannel:
		cfg.Domain = format.DomainChannel
	case domainCodeTime:
		cfg.Domain = format.DomainTime
	default:
		return fmt.Errorf("%w: code %d on %q", errs.ErrUnknownDomain, int(code), entity)
	}

	bits, err := client.GetScalar(ctx, entity, CtrlBitsPerVal)
	if err != nil {
		return err
	}
	cfg.BitsPerValue = int(bits)
	if cfg.Domain == format.DomainNone {
		cfg.BitsPerValue = decode.WordBits
	}
	if cfg.BitsPerValue < 1 || decode.WordBits%cfg.BitsPerValue != 0 {
		return fmt.Errorf("%w: %d bits per value", errs.ErrBitWidth, cfg.BitsPerValue)
	}
	cfg.Factor = decode.WordBits / cfg.BitsPerValue

	cfg.Scale, err = client.GetScalar(ctx, entity, CtrlScale)
	if err != nil {
		return err
	}
	if cfg.Scale == 0 {
		cfg.Scale = 1
	}

	return nil
}

// resolveKind infers the native storage kind from the sample control's
// declared type and lower bound.
func resolveKind(m param.Metadata, cfg *Config) error {
	switch m.Type {
	case param.TypeFloat:
		if cfg.Domain != format.DomainNone {
			return fmt.Errorf("%w: packed float storage", errs.ErrUnknownKind)
		}
		cfg.Kind = format.KindFloat32
	case param.TypeInteger, param.TypeLogical:
		if m.Min < 0 {
			cfg.Kind = format.KindInt32
		} else {
			cfg.Kind = format.KindUint32
		}
	default:
		return fmt.Errorf("%w: declared type %s", errs.ErrUnknownKind, m.Type)
	}

	return nil
}
