package recall_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/recall"
	"github.com/gsequencer/ags/notation"
)

func TestDeltaTime(t *testing.T) {
	tests := []struct {
		countBeats    uint64
		notationDelay float64
		delayCounter  uint64
		bufferLength  int
		bpm           float64
		expected      float64
	}{
		{
			countBeats:    0,
			notationDelay: 5.38,
			delayCounter:  0,
			bufferLength:  256,
			bpm:           120,
			expected:      0,
		},
		{
			countBeats:    1,
			notationDelay: 4,
			delayCounter:  2,
			bufferLength:  256,
			bpm:           120,
			expected:      768,
		},
		{
			countBeats:    2,
			notationDelay: 1,
			delayCounter:  0,
			bufferLength:  512,
			bpm:           60,
			expected:      1024,
		},
		{
			countBeats:    1,
			notationDelay: 1,
			bufferLength:  512,
			bpm:           0,
			expected:      0,
		},
	}
	for _, test := range tests {
		result := recall.DeltaTime(test.countBeats, test.notationDelay, test.delayCounter, test.bufferLength, test.bpm)
		assert.InDelta(t, test.expected, result, 1e-9)
		assert.Equal(t, result, recall.DeltaTime(test.countBeats, test.notationDelay, test.delayCounter, test.bufferLength, test.bpm))
	}
}

func TestRouteRunPost(t *testing.T) {
	m := newMachine(t, 1, true)
	m.delay.Behaviour().(*recall.DelayAudio).NotationDelay.SafeWrite(4)
	id := m.audio.StartAudio(audio.ScopeNotation)[0]
	route := running(t, m.audio, m.routeRun, id).Behaviour().(*recall.RouteAudioRun)

	// first tick is a boundary with notation counter 0
	m.audio.Tick(id)
	bufferSize := m.audio.BufferSize()
	assert.InDelta(t, recall.DeltaTime(1, 4, 0, bufferSize, m.audio.BPM()), route.DeltaTime(), 1e-9)
	m.audio.Tick(id)
	assert.InDelta(t, recall.DeltaTime(1, 4, 1, bufferSize, m.audio.BPM()), route.DeltaTime(), 1e-9)
	m.audio.StopAudio(audio.ScopeDefault)
}

func TestRouteFeedMIDI(t *testing.T) {
	tests := []struct {
		pads     int
		mapping  []int
		reverse  bool
		y        uint32
		expected int
	}{
		{pads: 2, y: 0, expected: 0},
		{pads: 2, y: 1, expected: 1},
		{pads: 2, reverse: true, y: 0, expected: 1},
		{pads: 2, reverse: true, y: 1, expected: 0},
		{pads: 2, mapping: []int{0, 2, 60, 61}, y: 0, expected: 0},
		// key 61 is the midi end
		{pads: 2, mapping: []int{0, 2, 60, 61}, y: 1, expected: -1},
		{pads: 3, mapping: []int{1, 3, 60, 63}, y: 1, expected: 2},
		{pads: 3, mapping: []int{1, 3, 60, 63}, y: 0, expected: -1},
		{pads: 3, mapping: []int{1, 3, 60, 63}, y: 2, expected: -1},
		{pads: 3, mapping: []int{1, 3, 60, 63}, reverse: true, y: 1, expected: 2},
		{pads: 3, mapping: []int{1, 3, 60, 63}, reverse: true, y: 2, expected: 1},
		{pads: 3, mapping: []int{1, 3, 60, 61}, reverse: true, y: 1, expected: -1},
	}
	for _, test := range tests {
		m := newMachine(t, test.pads, true)
		if test.mapping != nil {
			m.audio.SetMapping(test.mapping[0], test.mapping[1], test.mapping[2], test.mapping[3])
		}
		if test.reverse {
			m.audio.SetFlags(audio.AudioReverseMapping)
		}
		note := notation.NewNote(0, 2, test.y)
		m.audio.AddNote(0, note)
		id := m.audio.StartAudio(audio.ScopeNotation)[0]
		route := running(t, m.audio, m.routeRun, id).Behaviour().(*recall.RouteAudioRun)
		runs := pluginRuns(m.audio, id)
		assert.Equal(t, test.pads, len(runs))

		m.audio.Tick(id)
		if test.expected < 0 {
			assert.Empty(t, route.Fed())
		} else {
			assert.Equal(t, []*notation.Note{note}, route.Fed())
		}
		for pad, r := range runs {
			voices := sounding(r)
			if pad == test.expected {
				assert.Equal(t, []*notation.Note{note}, voices)
			} else {
				assert.Empty(t, voices)
			}
		}
		m.audio.StopAudio(audio.ScopeDefault)
	}
}

func TestRouteMappingWindow(t *testing.T) {
	m := newMachine(t, 3, true)
	m.audio.SetMapping(1, 2, 60, 62)
	outside := notation.NewNote(0, 1, 0)
	inside := notation.NewNote(0, 1, 1)
	late := notation.NewNote(1, 2, 1)
	m.audio.AddNote(0, outside)
	m.audio.AddNote(0, inside)
	m.audio.AddNote(0, late)
	id := m.audio.StartAudio(audio.ScopeNotation)[0]
	route := running(t, m.audio, m.routeRun, id).Behaviour().(*recall.RouteAudioRun)

	m.audio.Tick(id)
	assert.Equal(t, []*notation.Note{inside}, route.Fed())
	m.audio.Tick(id)
	assert.Equal(t, []*notation.Note{inside, late}, route.Fed())
	m.audio.StopAudio(audio.ScopeDefault)
}

func TestRoutePreviousSegment(t *testing.T) {
	m := newMachine(t, 1, true)
	n := notation.New(0, 0)
	note := notation.NewNote(notation.DefaultOffset+1, notation.DefaultOffset+2, 0)
	n.AddNote(note)
	m.audio.AddNotation(n)
	id := m.audio.StartAudio(audio.ScopeNotation)[0]
	cbRun := running(t, m.audio, m.cbRun, id).Behaviour().(*recall.CountBeatsAudioRun)
	route := running(t, m.audio, m.routeRun, id).Behaviour().(*recall.RouteAudioRun)

	cbRun.SeekCounter(int64(notation.DefaultOffset+1), recall.SeekSet)
	m.audio.Tick(id)
	assert.Equal(t, []*notation.Note{note}, route.Fed())
	m.audio.StopAudio(audio.ScopeDefault)
}

func sounding(r *audio.Recall) []*notation.Note {
	var notes []*notation.Note
	for _, v := range r.Children() {
		if voice, ok := v.Behaviour().(*recall.PluginVoiceRun); ok && voice.Note() != nil {
			notes = append(notes, voice.Note())
		}
	}
	return notes
}
