package recall_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/recall"
	"github.com/gsequencer/ags/notation"
	"github.com/gsequencer/ags/plugin"
)

func energy(data []float64) float64 {
	var sum float64
	for _, v := range data {
		sum += math.Abs(v)
	}
	return sum
}

func TestPluginRender(t *testing.T) {
	m := newMachine(t, 2, true)
	note := notation.NewNote(0, 1, 1)
	m.audio.AddNote(0, note)
	id := m.audio.StartAudio(audio.ScopeNotation)[0]
	runs := pluginRuns(m.audio, id)
	pr := runs[1].Behaviour().(*recall.PluginChannelRun)
	sine, ok := pr.Instance().(*plugin.Sine)
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, recall.DefaultVoices, len(runs[1].Children()))
	out := m.audio.Outputs()[0].Recycling().Output(id)

	m.audio.Tick(id)
	assert.Equal(t, 1, sine.Active())
	assert.Equal(t, []*notation.Note{note}, sounding(runs[1]))
	assert.True(t, energy(out.Buffer().Data) > 0)
	assert.Empty(t, pr.Events())

	// note length is one tick
	m.audio.Tick(id)
	assert.Equal(t, 0, sine.Active())
	assert.Empty(t, sounding(runs[1]))
	assert.Equal(t, 0.0, energy(out.Buffer().Data))
	m.audio.StopAudio(audio.ScopeDefault)
}

func TestPluginVoices(t *testing.T) {
	m := newMachine(t, 1, true)
	in := m.audio.Inputs()[0]
	pc := audio.FindType(in.Recalls(false), recall.PluginChannelType)[0]
	pc.Behaviour().(*recall.PluginChannel).Voices.WriteUint(2)
	for _, x := range []uint64{0, 0, 0} {
		m.audio.AddNote(0, notation.NewNote(x, x+4, 0))
	}
	id := m.audio.StartAudio(audio.ScopeNotation)[0]
	r := pluginRuns(m.audio, id)[0]
	assert.Equal(t, 2, len(r.Children()))

	m.audio.Tick(id)
	assert.Equal(t, 2, len(sounding(r)))
	assert.Nil(t, r.Behaviour().(*recall.PluginChannelRun).FreeVoice(r))
	m.audio.StopAudio(audio.ScopeDefault)
}

func TestPluginAtomSequence(t *testing.T) {
	m := newMachine(t, 1, true)
	in := m.audio.Inputs()[0]
	pc := audio.FindType(in.Recalls(false), recall.PluginChannelType)[0]
	pc.Behaviour().(*recall.PluginChannel).Atom = true
	id := m.audio.StartAudio(audio.ScopeNotation)[0]
	pr := pluginRuns(m.audio, id)[0].Behaviour().(*recall.PluginChannelRun)
	assert.True(t, pr.AppendMIDI(0, []byte{0x90, 60, 100}))
	assert.Equal(t, 1, len(pr.Events()))
	m.audio.StopAudio(audio.ScopeDefault)
}

func TestPluginUnknownEffect(t *testing.T) {
	a := audio.NewAudio(audio.WithAudioAbility(audio.AbilityNotation))
	a.SetAudioChannels(1)
	a.SetPads(true, 1)
	a.SetPads(false, 1)
	in := a.Inputs()[0]
	c := audio.NewContainer()
	delay := recall.NewDelayAudioRun(a, audio.WithFlags(audio.Persistent))
	c.Add(recall.NewDelayAudio(a))
	c.Add(delay)
	a.AddRecall(delay, true)

	pc := recall.NewPluginChannel(in, "missing.so", "missing")
	pr := recall.NewPluginChannelRun(in, "missing.so", "missing", delay, nil)
	pcc := audio.NewContainer()
	pcc.Add(pc)
	pcc.Add(pr)
	in.AddRecall(pc, false)
	in.AddRecall(pr, false)

	id := a.StartAudio(audio.ScopeNotation)[0]
	r := pluginRuns(a, id)[0]
	assert.Nil(t, r.Behaviour().(*recall.PluginChannelRun).Instance())
	assert.False(t, a.Tick(id))
	a.StopAudio(audio.ScopeDefault)
}
