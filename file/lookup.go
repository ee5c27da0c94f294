package file

import (
	"fmt"
	"io"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/recall"
	"github.com/gsequencer/ags/pitch"
)

// RecallLookup returns lookup creating built-in recalls of a. Channel level
// recalls are bound to the channel named by the node. Dependencies are
// left empty until read resolves them.
func RecallLookup(a *audio.Audio) Lookup {
	return func(n RecallNode) (*audio.Recall, error) {
		var c *audio.Channel
		if n.Channel != nil {
			c = a.Channel(n.Channel.Output, n.Channel.Pad, n.Channel.AudioChannel)
			if c == nil {
				return nil, fmt.Errorf("no channel %+v: %w", *n.Channel, ErrUnresolved)
			}
		}
		switch n.Type {
		case recall.DelayAudioType.Name:
			return recall.NewDelayAudio(a), nil
		case recall.DelayAudioRunType.Name:
			return recall.NewDelayAudioRun(a), nil
		case recall.CountBeatsAudioType.Name:
			return recall.NewCountBeatsAudio(a), nil
		case recall.CountBeatsAudioRunType.Name:
			return recall.NewCountBeatsAudioRun(a, nil), nil
		case recall.RouteAudioType.Name:
			return recall.NewRouteAudio(a), nil
		case recall.RouteAudioRunType.Name:
			return recall.NewRouteAudioRun(a, nil, nil), nil
		}
		if c == nil {
			return nil, fmt.Errorf("%s without channel: %w", n.Type, ErrMalformed)
		}
		switch n.Type {
		case recall.PluginChannelType.Name:
			return recall.NewPluginChannel(c, n.Filename, n.Effect), nil
		case recall.PluginChannelRunType.Name:
			return recall.NewPluginChannelRun(c, n.Filename, n.Effect, nil, nil), nil
		case recall.PlaybackChannelType.Name:
			return recall.NewPlaybackChannel(c), nil
		case recall.PlaybackChannelRunType.Name:
			return recall.NewPlaybackChannelRun(c), nil
		case recall.VolumeChannelType.Name:
			return recall.NewVolumeChannel(c), nil
		case recall.VolumeChannelRunType.Name:
			return recall.NewVolumeChannelRun(c), nil
		case recall.PitchChannelType.Name:
			t, ok := pitch.ParseType(n.Effect)
			if !ok {
				t = pitch.FluidInterpolate4thOrder
			}
			return recall.NewPitchChannel(c, t), nil
		case recall.PitchChannelRunType.Name:
			return recall.NewPitchChannelRun(c), nil
		}
		return nil, fmt.Errorf("recall type %q: %w", n.Type, ErrMalformed)
	}
}

// Load reads containers into a. Recalls are added to the lists of their
// audio or channel and containers to every provider of their recalls.
func Load(r io.Reader, a *audio.Audio) ([]*audio.Container, error) {
	plays := make(map[*audio.Recall]bool)
	lookup := RecallLookup(a)
	containers, err := Read(r, func(n RecallNode) (*audio.Recall, error) {
		rec, err := lookup(n)
		if err == nil {
			plays[rec] = n.Play
		}
		return rec, err
	})
	if err != nil {
		return nil, err
	}
	for _, c := range containers {
		for _, rec := range c.Recalls() {
			p := providerOf(rec)
			if p == nil {
				continue
			}
			p.AddRecallContainer(c)
			p.AddRecall(rec, plays[rec])
		}
	}
	return containers, nil
}
