// Package recall implements the concrete recalls: delay and count beats
// timing, notation routing to plugins, plugin voices, playback, volume and
// pitch.
package recall

import (
	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/log"
)

var logger log.Logger = log.GetLogger()

// Recall types.
var (
	DelayAudioType         = audio.NewType("ags-delay-audio", audio.KindAudio)
	DelayAudioRunType      = audio.NewType("ags-delay-audio-run", audio.KindAudioRun)
	CountBeatsAudioType    = audio.NewType("ags-count-beats-audio", audio.KindAudio)
	CountBeatsAudioRunType = audio.NewType("ags-count-beats-audio-run", audio.KindAudioRun)
	RouteAudioType         = audio.NewType("ags-route-audio", audio.KindAudio)
	RouteAudioRunType      = audio.NewType("ags-route-audio-run", audio.KindAudioRun)
	PluginChannelType      = audio.NewType("ags-plugin-channel", audio.KindChannel)
	PluginChannelRunType   = audio.NewType("ags-plugin-channel-run", audio.KindChannelRun)
	PluginVoiceRunType     = audio.NewType("ags-plugin-voice-run", audio.KindAudioSignal)
	PlaybackChannelType    = audio.NewType("ags-playback-channel", audio.KindChannel)
	PlaybackChannelRunType = audio.NewType("ags-playback-channel-run", audio.KindChannelRun)
	VolumeChannelType      = audio.NewType("ags-volume-channel", audio.KindChannel)
	VolumeChannelRunType   = audio.NewType("ags-volume-channel-run", audio.KindChannelRun)
	PitchChannelType       = audio.NewType("ags-pitch-channel", audio.KindChannel)
	PitchChannelRunType    = audio.NewType("ags-pitch-channel-run", audio.KindChannelRun)
)

func delayAudioOf(r *audio.Recall) *DelayAudio {
	if r == nil {
		return nil
	}
	b, _ := r.Behaviour().(*DelayAudio)
	return b
}

func delayRunOf(r *audio.Recall) *DelayAudioRun {
	if r == nil {
		return nil
	}
	b, _ := r.Behaviour().(*DelayAudioRun)
	return b
}

func countBeatsAudioOf(r *audio.Recall) *CountBeatsAudio {
	if r == nil {
		return nil
	}
	b, _ := r.Behaviour().(*CountBeatsAudio)
	return b
}

func countBeatsRunOf(r *audio.Recall) *CountBeatsAudioRun {
	if r == nil {
		return nil
	}
	b, _ := r.Behaviour().(*CountBeatsAudioRun)
	return b
}

// resolveTiming resolves the delay and count beats dependencies of r and
// notifies them with kind.
func resolveTiming(r *audio.Recall, kind audio.DependencyKind) (delay, countBeats *audio.Recall) {
	template := r.Template()
	if template == nil {
		logger.Warn("resolve dependency: missing template")
		return nil, nil
	}
	for _, d := range template.Dependencies() {
		dep := d.Dependency()
		if dep == nil {
			continue
		}
		switch dep.Type() {
		case DelayAudioRunType:
			delay = d.Resolve(d.RecallIDFor(r))
		case CountBeatsAudioRunType:
			countBeats = d.Resolve(d.RecallIDFor(r))
		}
	}
	if delay != nil {
		delay.NotifyDependency(kind, 1)
	}
	if countBeats != nil {
		countBeats.NotifyDependency(kind, 1)
	}
	return delay, countBeats
}

// releaseTiming undoes notifications of resolveTiming.
func releaseTiming(kind audio.DependencyKind, recalls ...*audio.Recall) {
	for _, r := range recalls {
		if r != nil {
			r.NotifyDependency(kind, -1)
		}
	}
}
