package recall_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/recall"
)

func TestDelayAudioRun(t *testing.T) {
	tests := []struct {
		delay    float64
		ticks    int
		expected []float64
	}{
		{
			delay:    1,
			ticks:    4,
			expected: []float64{0, 0, 0, 0},
		},
		{
			delay:    3,
			ticks:    7,
			expected: []float64{0, 1, 2, 0, 1, 2, 0},
		},
		{
			delay:    2.5,
			ticks:    5,
			expected: []float64{0, 1, 0, 1, 0},
		},
	}

	for _, test := range tests {
		m := newMachine(t, 1, true)
		m.delay.Behaviour().(*recall.DelayAudio).NotationDelay.SafeWrite(test.delay)
		id := m.audio.StartAudio(audio.ScopeNotation)[0]
		run := running(t, m.audio, m.delayRun, id)
		var delays []float64
		var boundaries int
		run.Behaviour().(*recall.DelayAudioRun).OnCount(func(e recall.DelayEvent) {
			delays = append(delays, e.Delay)
			if e.Boundary() {
				boundaries++
			}
			assert.Equal(t, audio.ScopeNotation, e.Scope)
		})
		for i := 0; i < test.ticks; i++ {
			assert.False(t, m.audio.Tick(id))
		}
		assert.Equal(t, test.expected, delays)
		n := 0
		for _, d := range test.expected {
			if d == 0 {
				n++
			}
		}
		assert.Equal(t, n, boundaries)
		m.audio.StopAudio(audio.ScopeDefault)
	}
}

func TestDelayAudioRunOrder(t *testing.T) {
	m := newMachine(t, 1, true)
	id := m.audio.StartAudio(audio.ScopeNotation)[0]
	d := running(t, m.audio, m.delayRun, id).Behaviour().(*recall.DelayAudioRun)
	var order []string
	d.OnCount(func(recall.DelayEvent) { order = append(order, "count") })
	d.OnAllocInput(func(recall.DelayEvent) { order = append(order, "alloc-input") })
	d.OnAllocOutput(func(recall.DelayEvent) { order = append(order, "alloc-output") })
	m.audio.Tick(id)
	assert.Equal(t, []string{"alloc-output", "alloc-input", "count"}, order)
	m.audio.StopAudio(audio.ScopeDefault)
}

func TestDelayAudioRunRefs(t *testing.T) {
	m := newMachine(t, 2, false)
	id := m.audio.StartAudio(audio.ScopeNotation)[0]
	run := running(t, m.audio, m.delayRun, id)
	d := run.Behaviour().(*recall.DelayAudioRun)
	// one plugin channel run per input pad
	assert.Equal(t, 2, d.DependencyRef())
	// count beats and route
	assert.Equal(t, 2, d.HideRef())

	for _, r := range pluginRuns(m.audio, id) {
		r.Done()
	}
	assert.Equal(t, 0, d.DependencyRef())
	m.audio.Tick(id)
	assert.True(t, run.IsDone())
	assert.Equal(t, uint64(0), d.Counter(audio.ScopeNotation))
	m.audio.StopAudio(audio.ScopeDefault)
}

func TestDelayAudioRunWithoutDependents(t *testing.T) {
	a := audio.NewAudio(audio.WithAudioAbility(audio.AbilitySequencer))
	c := audio.NewContainer()
	delay := recall.NewDelayAudio(a)
	run := recall.NewDelayAudioRun(a)
	c.Add(delay)
	c.Add(run)
	a.AddRecallContainer(c)
	a.AddRecall(run, true)

	id := a.StartAudio(audio.ScopeSequencer)[0]
	assert.True(t, a.Tick(id))
	assert.True(t, id.HasState(audio.StateDone))
	assert.Empty(t, a.Recalls(true)[1:])
}

func TestDelayPorts(t *testing.T) {
	a := audio.NewAudio()
	d := recall.NewDelayAudio(a).Behaviour().(*recall.DelayAudio)
	assert.Equal(t, a.BPM(), d.BPM.SafeRead())
	for _, s := range []audio.SoundScope{audio.ScopeSequencer, audio.ScopeNotation, audio.ScopeWave, audio.ScopeMidi} {
		if assert.NotNil(t, d.Delay(s)) {
			assert.Equal(t, a.Delay(), d.Delay(s).SafeRead())
		}
	}
	assert.Nil(t, d.Delay(audio.ScopePlayback))
}
