package recall_test

import (
	"testing"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/recall"
	"github.com/gsequencer/ags/plugin"
)

// machine is a notation driven instrument built the way the synth fx
// lays out its containers.
type machine struct {
	audio      *audio.Audio
	delay      *audio.Recall
	delayRun   *audio.Recall
	countBeats *audio.Recall
	cbRun      *audio.Recall
	route      *audio.Recall
	routeRun   *audio.Recall
}

func newMachine(t *testing.T, inputPads int, persistent bool) *machine {
	t.Helper()
	a := audio.NewAudio(
		audio.Named("synth"),
		audio.WithAudioAbility(audio.AbilityNotation),
		audio.WithAudioFlags(audio.AudioHasNotation),
		audio.WithMapping(0, inputPads, 60, 60+inputPads),
	)
	a.SetAudioChannels(1)
	a.SetPads(true, 1)
	a.SetPads(false, inputPads)

	m := &machine{audio: a}
	var runFlags []audio.Option
	if persistent {
		runFlags = append(runFlags, audio.WithFlags(audio.Persistent))
	}

	delay := audio.NewContainer()
	m.delay = recall.NewDelayAudio(a)
	m.delayRun = recall.NewDelayAudioRun(a, runFlags...)
	delay.Add(m.delay)
	delay.Add(m.delayRun)
	m.delay.Behaviour().(*recall.DelayAudio).NotationDelay.SafeWrite(1)

	countBeats := audio.NewContainer()
	m.countBeats = recall.NewCountBeatsAudio(a)
	m.cbRun = recall.NewCountBeatsAudioRun(a, m.delayRun)
	countBeats.Add(m.countBeats)
	countBeats.Add(m.cbRun)

	route := audio.NewContainer()
	m.route = recall.NewRouteAudio(a)
	m.routeRun = recall.NewRouteAudioRun(a, m.delayRun, m.cbRun)
	route.Add(m.route)
	route.Add(m.routeRun)

	for _, c := range []*audio.Container{delay, countBeats, route} {
		a.AddRecallContainer(c)
	}
	for _, r := range []*audio.Recall{m.delayRun, m.cbRun, m.routeRun} {
		a.AddRecall(r, true)
	}

	for _, in := range a.Inputs() {
		in.AddRecallContainer(route)
		pc := recall.NewPluginChannel(in, "", plugin.SineEffect)
		pr := recall.NewPluginChannelRun(in, "", plugin.SineEffect, m.delayRun, m.cbRun)
		route.Add(pc)
		route.Add(pr)
		in.AddRecall(pc, false)
		in.AddRecall(pr, false)
	}

	playback := audio.NewContainer()
	for _, out := range a.Outputs() {
		out.AddRecallContainer(playback)
		pc := recall.NewPlaybackChannel(out)
		pr := recall.NewPlaybackChannelRun(out)
		playback.Add(pc)
		playback.Add(pr)
		out.AddRecall(pc, true)
		out.AddRecall(pr, true)
	}
	return m
}

// running returns the duplicate of template bound to the toplevel run id.
func running(t *testing.T, a *audio.Audio, template *audio.Recall, id *audio.RecallID) *audio.Recall {
	t.Helper()
	for _, r := range a.Recalls(true) {
		if r.Template() == template && r.RecallID() == id {
			return r
		}
	}
	t.Fatalf("no %v running in %v", template.Type(), id)
	return nil
}

// pluginRuns returns running plugin channel runs per input pad.
func pluginRuns(a *audio.Audio, id *audio.RecallID) map[int]*audio.Recall {
	runs := make(map[int]*audio.Recall)
	for _, in := range a.Inputs() {
		childID := in.FindRecallID(id.RecyclingContext())
		for _, r := range audio.FindType(in.Recalls(false), recall.PluginChannelRunType) {
			if r.Type() == recall.PluginChannelRunType && r.RecallID() == childID {
				runs[in.Pad()] = r
			}
		}
	}
	return runs
}
