package recall

import (
	"github.com/gsequencer/ags/audio"
)

// PlaybackChannel is the channel level of output playback.
type PlaybackChannel struct {
	audio.NopBehaviour
}

// NewPlaybackChannel returns playback channel template of output c.
func NewPlaybackChannel(c *audio.Channel, options ...audio.Option) *audio.Recall {
	options = append([]audio.Option{audio.WithChannel(c)}, options...)
	return audio.NewRecall(PlaybackChannelType, &PlaybackChannel{}, options...)
}

// Duplicate returns pc.
func (pc *PlaybackChannel) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return pc
}

// PlaybackChannelRun mixes input recyclings of its audio channel into the
// output recycling every buffer.
type PlaybackChannelRun struct {
	audio.NopBehaviour
}

// NewPlaybackChannelRun returns playback channel run template of output c.
func NewPlaybackChannelRun(c *audio.Channel, options ...audio.Option) *audio.Recall {
	options = append([]audio.Option{audio.WithChannel(c)}, options...)
	return audio.NewRecall(PlaybackChannelRunType, &PlaybackChannelRun{}, options...)
}

// RunPre clears the run output of the recycling.
func (p *PlaybackChannelRun) RunPre(r *audio.Recall) {
	if c := r.Channel(); c != nil {
		c.Recycling().Output(r.RecallID()).Clear()
	}
}

// RunPost sums inputs of the output audio channel.
func (p *PlaybackChannelRun) RunPost(r *audio.Recall) {
	c := r.Channel()
	if c == nil || c.Audio() == nil {
		return
	}
	out := c.Recycling().Output(r.RecallID())
	for _, in := range c.Audio().Inputs() {
		if in.AudioChannel() != c.AudioChannel() {
			continue
		}
		in.Recycling().Output(r.RecallID()).MixInto(out)
	}
}

// Duplicate returns p.
func (p *PlaybackChannelRun) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return p
}
