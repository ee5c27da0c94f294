package pitch

import (
	"github.com/go-audio/audio"
)

// Type selects the pitch algorithm of CommonPitchUtil.
type Type int

// Pitch algorithms.
const (
	Fast Type = iota
	HQ
	FluidInterpolateNone
	FluidInterpolateLinear
	FluidInterpolate4thOrder
	FluidInterpolate7thOrder
)

var typeNames = [...]string{
	Fast:                     "fast",
	HQ:                       "hq",
	FluidInterpolateNone:     "fluid-none",
	FluidInterpolateLinear:   "fluid-linear",
	FluidInterpolate4thOrder: "fluid-4th-order",
	FluidInterpolate7thOrder: "fluid-7th-order",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// Types returns all pitch algorithms.
func Types() []Type {
	types := make([]Type, len(typeNames))
	for i := range typeNames {
		types[i] = Type(i)
	}
	return types
}

// ParseType returns type by its name.
func ParseType(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return Type(t), true
		}
	}
	return 0, false
}

// CommonPitchUtil is a tagged union over the pitch algorithms.
type CommonPitchUtil struct {
	typ  Type
	util interface{}
}

// NewCommonPitchUtil allocates util of provided type. Unknown type
// results in util with nil algorithm, all calls are no-op.
func NewCommonPitchUtil(t Type) *CommonPitchUtil {
	c := &CommonPitchUtil{typ: t}
	switch t {
	case Fast:
		c.util = NewFastPitchUtil()
	case HQ:
		c.util = NewHQPitchUtil()
	case FluidInterpolateNone:
		c.util = NewFluidInterpolateNoneUtil()
	case FluidInterpolateLinear:
		c.util = NewFluidInterpolateLinearUtil()
	case FluidInterpolate4thOrder:
		c.util = NewFluidInterpolate4thOrderUtil()
	case FluidInterpolate7thOrder:
		c.util = NewFluidInterpolate7thOrderUtil()
	default:
		logger.Warnf("unknown pitch type %d", t)
	}
	return c
}

// Type returns the discriminant.
func (c *CommonPitchUtil) Type() Type {
	return c.typ
}

// Util returns the concrete algorithm.
func (c *CommonPitchUtil) Util() interface{} {
	return c.util
}

func (c *CommonPitchUtil) params() *Params {
	switch c.typ {
	case Fast:
		return &c.util.(*FastPitchUtil).Params
	case HQ:
		return &c.util.(*HQPitchUtil).Params
	case FluidInterpolateNone:
		return &c.util.(*FluidInterpolateNoneUtil).Params
	case FluidInterpolateLinear:
		return &c.util.(*FluidInterpolateLinearUtil).Params
	case FluidInterpolate4thOrder:
		return &c.util.(*FluidInterpolate4thOrderUtil).Params
	case FluidInterpolate7thOrder:
		return &c.util.(*FluidInterpolate7thOrderUtil).Params
	}
	return nil
}

var pitchTable = [...]func(interface{}){
	Fast:                     func(u interface{}) { u.(*FastPitchUtil).Pitch() },
	HQ:                       func(u interface{}) { u.(*HQPitchUtil).Pitch() },
	FluidInterpolateNone:     func(u interface{}) { u.(*FluidInterpolateNoneUtil).Pitch() },
	FluidInterpolateLinear:   func(u interface{}) { u.(*FluidInterpolateLinearUtil).Pitch() },
	FluidInterpolate4thOrder: func(u interface{}) { u.(*FluidInterpolate4thOrderUtil).Pitch() },
	FluidInterpolate7thOrder: func(u interface{}) { u.(*FluidInterpolate7thOrderUtil).Pitch() },
}

// Pitch runs the selected algorithm.
func (c *CommonPitchUtil) Pitch() {
	if c.util == nil || c.typ < 0 || int(c.typ) >= len(pitchTable) {
		return
	}
	pitchTable[c.typ](c.util)
}

// SetBuffers binds source and destination buffers. Stride is the number
// of interleaved channels.
func (c *CommonPitchUtil) SetBuffers(source, destination *audio.FloatBuffer) {
	p := c.params()
	if p == nil || source == nil || destination == nil {
		return
	}
	stride := 1
	if source.Format != nil {
		if source.Format.NumChannels > 0 {
			stride = source.Format.NumChannels
		}
		p.Samplerate = source.Format.SampleRate
	}
	p.Source = source.Data
	p.SourceStride = stride
	p.Destination = destination.Data
	p.DestinationStride = stride
	p.BufferLength = len(source.Data) / stride
}

// Source returns source buffer.
func (c *CommonPitchUtil) Source() []float64 {
	if p := c.params(); p != nil {
		return p.Source
	}
	return nil
}

// SetSource sets source buffer.
func (c *CommonPitchUtil) SetSource(v []float64) {
	if p := c.params(); p != nil {
		p.Source = v
	}
}

// SourceStride returns source stride.
func (c *CommonPitchUtil) SourceStride() int {
	if p := c.params(); p != nil {
		return p.SourceStride
	}
	return 0
}

// SetSourceStride sets source stride.
func (c *CommonPitchUtil) SetSourceStride(v int) {
	if p := c.params(); p != nil {
		p.SourceStride = v
	}
}

// Destination returns destination buffer.
func (c *CommonPitchUtil) Destination() []float64 {
	if p := c.params(); p != nil {
		return p.Destination
	}
	return nil
}

// SetDestination sets destination buffer.
func (c *CommonPitchUtil) SetDestination(v []float64) {
	if p := c.params(); p != nil {
		p.Destination = v
	}
}

// DestinationStride returns destination stride.
func (c *CommonPitchUtil) DestinationStride() int {
	if p := c.params(); p != nil {
		return p.DestinationStride
	}
	return 0
}

// SetDestinationStride sets destination stride.
func (c *CommonPitchUtil) SetDestinationStride(v int) {
	if p := c.params(); p != nil {
		p.DestinationStride = v
	}
}

// BufferLength returns buffer length in frames.
func (c *CommonPitchUtil) BufferLength() int {
	if p := c.params(); p != nil {
		return p.BufferLength
	}
	return 0
}

// SetBufferLength sets buffer length in frames.
func (c *CommonPitchUtil) SetBufferLength(v int) {
	if p := c.params(); p != nil {
		p.BufferLength = v
	}
}

// Format returns sample format.
func (c *CommonPitchUtil) Format() Format {
	if p := c.params(); p != nil {
		return p.Format
	}
	return Double
}

// SetFormat sets sample format.
func (c *CommonPitchUtil) SetFormat(v Format) {
	if p := c.params(); p != nil {
		p.Format = v
	}
}

// Samplerate returns samplerate.
func (c *CommonPitchUtil) Samplerate() int {
	if p := c.params(); p != nil {
		return p.Samplerate
	}
	return 0
}

// SetSamplerate sets samplerate.
func (c *CommonPitchUtil) SetSamplerate(v int) {
	if p := c.params(); p != nil {
		p.Samplerate = v
	}
}

// BaseKey returns base key relative to A4.
func (c *CommonPitchUtil) BaseKey() float64 {
	if p := c.params(); p != nil {
		return p.BaseKey
	}
	return 0
}

// SetBaseKey sets base key.
func (c *CommonPitchUtil) SetBaseKey(v float64) {
	if p := c.params(); p != nil {
		p.BaseKey = v
	}
}

// Tuning returns tuning in cents.
func (c *CommonPitchUtil) Tuning() float64 {
	if p := c.params(); p != nil {
		return p.Tuning
	}
	return 0
}

// SetTuning sets tuning in cents.
func (c *CommonPitchUtil) SetTuning(v float64) {
	if p := c.params(); p != nil {
		p.Tuning = v
	}
}

// VibratoEnabled reports if vibrato is on.
func (c *CommonPitchUtil) VibratoEnabled() bool {
	if p := c.params(); p != nil {
		return p.VibratoEnabled
	}
	return false
}

// SetVibratoEnabled turns vibrato on or off.
func (c *CommonPitchUtil) SetVibratoEnabled(v bool) {
	if p := c.params(); p != nil {
		p.VibratoEnabled = v
	}
}

// VibratoGain returns vibrato gain.
func (c *CommonPitchUtil) VibratoGain() float64 {
	if p := c.params(); p != nil {
		return p.VibratoGain
	}
	return 0
}

// SetVibratoGain sets vibrato gain.
func (c *CommonPitchUtil) SetVibratoGain(v float64) {
	if p := c.params(); p != nil {
		p.VibratoGain = v
	}
}

// VibratoLFODepth returns vibrato depth in cents.
func (c *CommonPitchUtil) VibratoLFODepth() float64 {
	if p := c.params(); p != nil {
		return p.VibratoLFODepth
	}
	return 0
}

// SetVibratoLFODepth sets vibrato depth in cents.
func (c *CommonPitchUtil) SetVibratoLFODepth(v float64) {
	if p := c.params(); p != nil {
		p.VibratoLFODepth = v
	}
}

// VibratoLFOFreq returns vibrato frequency.
func (c *CommonPitchUtil) VibratoLFOFreq() float64 {
	if p := c.params(); p != nil {
		return p.VibratoLFOFreq
	}
	return 0
}

// SetVibratoLFOFreq sets vibrato frequency.
func (c *CommonPitchUtil) SetVibratoLFOFreq(v float64) {
	if p := c.params(); p != nil {
		p.VibratoLFOFreq = v
	}
}

// VibratoTuning returns vibrato tuning offset in cents.
func (c *CommonPitchUtil) VibratoTuning() float64 {
	if p := c.params(); p != nil {
		return p.VibratoTuning
	}
	return 0
}

// SetVibratoTuning sets vibrato tuning offset in cents.
func (c *CommonPitchUtil) SetVibratoTuning(v float64) {
	if p := c.params(); p != nil {
		p.VibratoTuning = v
	}
}
