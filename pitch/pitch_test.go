package pitch_test

import (
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"

	"github.com/gsequencer/ags/pitch"
)

var types = []pitch.Type{
	pitch.Fast,
	pitch.HQ,
	pitch.FluidInterpolateNone,
	pitch.FluidInterpolateLinear,
	pitch.FluidInterpolate4thOrder,
	pitch.FluidInterpolate7thOrder,
}

func ramp(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i)
	}
	return s
}

func TestIdentity(t *testing.T) {
	for _, typ := range types {
		u := pitch.NewCommonPitchUtil(typ)
		src := ramp(16)
		dst := make([]float64, 16)
		u.SetSource(src)
		u.SetDestination(dst)
		u.SetBufferLength(16)
		u.Pitch()
		for i := range src {
			assert.InDelta(t, src[i], dst[i], 1e-9, "type %v frame %d", typ, i)
		}
	}
}

func TestOctaveUp(t *testing.T) {
	u := pitch.NewCommonPitchUtil(pitch.FluidInterpolateLinear)
	src := ramp(8)
	dst := make([]float64, 8)
	u.SetSource(src)
	u.SetDestination(dst)
	u.SetBufferLength(8)
	u.SetTuning(1200)
	u.Pitch()
	assert.InDeltaSlice(t, []float64{0, 2, 4, 6, 0, 0, 0, 0}, dst, 1e-9)
}

func TestStride(t *testing.T) {
	u := pitch.NewCommonPitchUtil(pitch.Fast)
	src := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: 48000},
		Data:   []float64{1, 10, 2, 20, 3, 30},
	}
	dst := &audio.FloatBuffer{
		Format: src.Format,
		Data:   make([]float64, 6),
	}
	u.SetBuffers(src, dst)
	assert.Equal(t, 3, u.BufferLength())
	assert.Equal(t, 2, u.SourceStride())
	assert.Equal(t, 48000, u.Samplerate())
	u.Pitch()
	assert.Equal(t, []float64{1, 0, 2, 0, 3, 0}, dst.Data)
}

func TestFormat(t *testing.T) {
	u := pitch.NewCommonPitchUtil(pitch.HQ)
	dst := make([]float64, 2)
	u.SetSource([]float64{40000.4, -40000})
	u.SetDestination(dst)
	u.SetBufferLength(2)
	u.SetFormat(pitch.Signed16Bit)
	u.Pitch()
	assert.Equal(t, []float64{32767, -32767}, dst)
}

func TestAccessors(t *testing.T) {
	for _, typ := range types {
		u := pitch.NewCommonPitchUtil(typ)
		assert.Equal(t, typ, u.Type())
		u.SetBaseKey(-48)
		u.SetTuning(50)
		u.SetSamplerate(22050)
		u.SetSourceStride(2)
		u.SetDestinationStride(3)
		u.SetFormat(pitch.Float)
		u.SetVibratoEnabled(true)
		u.SetVibratoGain(0.5)
		u.SetVibratoLFODepth(10)
		u.SetVibratoLFOFreq(6)
		u.SetVibratoTuning(-5)
		assert.Equal(t, -48.0, u.BaseKey())
		assert.Equal(t, 50.0, u.Tuning())
		assert.Equal(t, 22050, u.Samplerate())
		assert.Equal(t, 2, u.SourceStride())
		assert.Equal(t, 3, u.DestinationStride())
		assert.Equal(t, pitch.Float, u.Format())
		assert.True(t, u.VibratoEnabled())
		assert.Equal(t, 0.5, u.VibratoGain())
		assert.Equal(t, 10.0, u.VibratoLFODepth())
		assert.Equal(t, 6.0, u.VibratoLFOFreq())
		assert.Equal(t, -5.0, u.VibratoTuning())
		assert.Equal(t, typ.String(), func() string {
			p, ok := pitch.ParseType(typ.String())
			assert.True(t, ok)
			return p.String()
		}())
	}

	unknown := pitch.NewCommonPitchUtil(pitch.Type(42))
	assert.Nil(t, unknown.Util())
	unknown.SetTuning(100)
	assert.Equal(t, 0.0, unknown.Tuning())
	unknown.Pitch()
	assert.Equal(t, "unknown", unknown.Type().String())
}

func TestVibrato(t *testing.T) {
	u := pitch.NewCommonPitchUtil(pitch.FluidInterpolate4thOrder)
	src := ramp(64)
	dst := make([]float64, 64)
	u.SetSource(src)
	u.SetDestination(dst)
	u.SetBufferLength(64)
	u.SetVibratoEnabled(true)
	u.SetVibratoLFODepth(100)
	u.SetVibratoLFOFreq(1000)
	u.Pitch()
	assert.NotEqual(t, src, dst)
	assert.Equal(t, 0.0, dst[0])
}

func TestTypes(t *testing.T) {
	assert.Equal(t, types, pitch.Types())
}
