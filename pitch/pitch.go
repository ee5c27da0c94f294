// Package pitch provides pitch shifting algorithms sharing one parameter
// contract and a dispatcher selecting between them.
package pitch

import (
	"math"

	"github.com/gsequencer/ags/log"
)

var logger = log.GetLogger()

// Format is the sample format of source and destination.
type Format int

// Sample formats. Integer formats keep values in the integer scale.
const (
	Signed8Bit Format = iota
	Signed16Bit
	Signed24Bit
	Signed32Bit
	Signed64Bit
	Float
	Double
)

// DefaultBufferLength and DefaultSamplerate used by new utils.
const (
	DefaultBufferLength = 512
	DefaultSamplerate   = 44100
)

// Params is the contract every pitch algorithm exposes.
type Params struct {
	Source            []float64
	SourceStride      int
	Destination       []float64
	DestinationStride int
	BufferLength      int
	Format            Format
	Samplerate        int

	BaseKey float64
	// Tuning is in cents.
	Tuning float64

	VibratoEnabled  bool
	VibratoGain     float64
	VibratoLFODepth float64
	VibratoLFOFreq  float64
	VibratoTuning   float64

	lfoOffset uint64
}

func defaultParams() Params {
	return Params{
		SourceStride:      1,
		DestinationStride: 1,
		BufferLength:      DefaultBufferLength,
		Format:            Double,
		Samplerate:        DefaultSamplerate,
		VibratoGain:       1,
		VibratoLFOFreq:    8.172,
	}
}

func (p *Params) valid() bool {
	return p.Source != nil && p.Destination != nil && p.SourceStride > 0 && p.DestinationStride > 0
}

// Frequency returns frequency of key relative to A4.
func Frequency(key float64) float64 {
	return math.Exp2(key/12.0) * 440.0
}

// ratio returns playback speed at the output frame i.
func (p *Params) ratio(i int) float64 {
	tuning := p.Tuning
	if p.VibratoEnabled && p.Samplerate > 0 {
		t := float64(p.lfoOffset+uint64(i)) / float64(p.Samplerate)
		tuning += p.VibratoTuning + p.VibratoGain*p.VibratoLFODepth*math.Sin(2*math.Pi*p.VibratoLFOFreq*t)
	}
	return Frequency(p.BaseKey+tuning/100.0) / Frequency(p.BaseKey)
}

// sourceLen returns number of readable source frames.
func (p *Params) sourceLen() int {
	n := (len(p.Source) + p.SourceStride - 1) / p.SourceStride
	if p.BufferLength < n {
		n = p.BufferLength
	}
	return n
}

func (p *Params) at(i int) float64 {
	n := p.sourceLen()
	if i < 0 {
		i = 0
	} else if i >= n {
		i = n - 1
	}
	return p.Source[i*p.SourceStride]
}

func (p *Params) write(i int, v float64) bool {
	j := i * p.DestinationStride
	if j >= len(p.Destination) {
		return false
	}
	p.Destination[j] = quantize(p.Format, v)
	return true
}

// resample walks the source with the pitch ratio and lets kernel
// interpolate each output frame. Frames past the source end are zeroed.
func (p *Params) resample(kernel func(index int, fract float64) float64) {
	if !p.valid() {
		return
	}
	n := p.sourceLen()
	if n == 0 {
		return
	}
	var phase float64
	i := 0
	for ; i < p.BufferLength; i++ {
		index := int(phase)
		if index > n-1 {
			break
		}
		if !p.write(i, kernel(index, phase-float64(index))) {
			break
		}
		phase += p.ratio(i)
	}
	for ; i < p.BufferLength; i++ {
		if !p.write(i, 0) {
			break
		}
	}
	if p.VibratoEnabled {
		p.lfoOffset += uint64(p.BufferLength)
	}
}

func quantize(f Format, v float64) float64 {
	var limit float64
	switch f {
	case Signed8Bit:
		limit = math.MaxInt8
	case Signed16Bit:
		limit = math.MaxInt16
	case Signed24Bit:
		limit = 1<<23 - 1
	case Signed32Bit:
		limit = math.MaxInt32
	case Signed64Bit:
		limit = math.MaxInt64
	case Float:
		return float64(float32(v))
	default:
		return v
	}
	v = math.Round(v)
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
