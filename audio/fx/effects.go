package fx

import (
	"fmt"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/recall"
	"github.com/gsequencer/ags/pitch"
)

const timingAbility = audio.AbilitySequencer | audio.AbilityNotation

func createPlayback(p Params) ([]*audio.Recall, error) {
	var created []*audio.Recall
	for _, c := range p.containers() {
		for _, ch := range p.channels() {
			pc := recall.NewPlaybackChannel(ch)
			pr := recall.NewPlaybackChannelRun(ch)
			p.addChannel(c.c, c.play, pc, pr)
			created = append(created, pc, pr)
		}
	}
	return created, nil
}

func createVolume(p Params) ([]*audio.Recall, error) {
	var created []*audio.Recall
	for _, c := range p.containers() {
		for _, ch := range p.channels() {
			vc := recall.NewVolumeChannel(ch)
			vr := recall.NewVolumeChannelRun(ch)
			p.addChannel(c.c, c.play, vc, vr)
			created = append(created, vc, vr)
		}
	}
	return created, nil
}

func createPitch(p Params) ([]*audio.Recall, error) {
	t := pitch.FluidInterpolate4thOrder
	if p.Effect != "" {
		var ok bool
		if t, ok = pitch.ParseType(p.Effect); !ok {
			return nil, fmt.Errorf("%w: pitch %s", ErrUnknownFx, p.Effect)
		}
	}
	var created []*audio.Recall
	for _, c := range p.containers() {
		for _, ch := range p.channels() {
			pc := recall.NewPitchChannel(ch, t)
			pr := recall.NewPitchChannelRun(ch)
			p.addChannel(c.c, c.play, pc, pr)
			created = append(created, pc, pr)
		}
	}
	return created, nil
}

// createNotation creates delay in the provided containers and count beats
// in containers of its own. It has no channel level.
func createNotation(p Params) ([]*audio.Recall, error) {
	if p.CreateFlags&Add == 0 {
		return nil, nil
	}
	var created []*audio.Recall
	for _, c := range p.containers() {
		delay := recall.NewDelayAudio(p.Audio, audio.WithAbility(timingAbility))
		delayRun := recall.NewDelayAudioRun(p.Audio, audio.WithAbility(timingAbility))
		p.addAudio(c.c, c.play, delay, delayRun)
		created = append(created, delay, delayRun)
	}
	for _, c := range p.containers() {
		delayRun := audio.TemplateFindType(p.Audio.Recalls(c.play), recall.DelayAudioRunType)
		countBeats := recall.NewCountBeatsAudio(p.Audio, audio.WithAbility(timingAbility))
		cbRun := recall.NewCountBeatsAudioRun(p.Audio, delayRun[0], audio.WithAbility(timingAbility))
		p.addAudio(audio.NewContainer(), c.play, countBeats, cbRun)
		created = append(created, countBeats, cbRun)
	}
	return created, nil
}

// createPlugin creates route audio and plugin channels of effect. It
// depends on the timing recalls of the notation fx.
func createPlugin(p Params) ([]*audio.Recall, error) {
	var created []*audio.Recall
	for _, c := range p.containers() {
		list := p.Audio.Recalls(c.play)
		delay := audio.TemplateFindType(list, recall.DelayAudioRunType)
		countBeats := audio.TemplateFindType(list, recall.CountBeatsAudioRunType)
		if len(delay) == 0 || len(countBeats) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingDependency, NotationFx)
		}
		if p.CreateFlags&Add != 0 {
			route := recall.NewRouteAudio(p.Audio, audio.WithAbility(audio.AbilityNotation))
			routeRun := recall.NewRouteAudioRun(p.Audio, delay[0], countBeats[0], audio.WithAbility(audio.AbilityNotation))
			p.addAudio(c.c, c.play, route, routeRun)
			created = append(created, route, routeRun)
		}
		for _, ch := range p.channels() {
			pc := recall.NewPluginChannel(ch, p.Filename, p.Effect, audio.WithAbility(timingAbility))
			pr := recall.NewPluginChannelRun(ch, p.Filename, p.Effect, delay[0], countBeats[0], audio.WithAbility(timingAbility))
			p.addChannel(c.c, c.play, pc, pr)
			created = append(created, pc, pr)
		}
	}
	return created, nil
}
