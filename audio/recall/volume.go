package recall

import (
	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/port"
)

// VolumePort is specifier of volume port.
const VolumePort = "volume"

// VolumeChannel holds channel gain.
type VolumeChannel struct {
	audio.NopBehaviour
	Volume *port.Port
}

// NewVolumeChannel returns volume channel template of c.
func NewVolumeChannel(c *audio.Channel, options ...audio.Option) *audio.Recall {
	vc := &VolumeChannel{
		Volume: port.New(VolumePort, port.WithRange(0, 2), port.WithDefault(1), port.WithControl("slider")),
	}
	options = append([]audio.Option{
		audio.WithChannel(c),
		audio.WithPorts(vc.Volume),
	}, options...)
	return audio.NewRecall(VolumeChannelType, vc, options...)
}

// Duplicate returns vc.
func (vc *VolumeChannel) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return vc
}

// VolumeChannelRun scales the channel recycling by the volume port.
type VolumeChannelRun struct {
	audio.NopBehaviour
}

// NewVolumeChannelRun returns volume channel run template of c.
func NewVolumeChannelRun(c *audio.Channel, options ...audio.Option) *audio.Recall {
	options = append([]audio.Option{audio.WithChannel(c)}, options...)
	return audio.NewRecall(VolumeChannelRunType, &VolumeChannelRun{}, options...)
}

// RunPost scales current buffer rendered by the inter stage.
func (v *VolumeChannelRun) RunPost(r *audio.Recall) {
	c := r.Channel()
	if c == nil {
		return
	}
	vc, ok := channelBehaviour(r).(*VolumeChannel)
	if !ok {
		return
	}
	buf := c.Recycling().Output(r.RecallID()).Buffer()
	if buf == nil {
		return
	}
	gain := vc.Volume.SafeRead()
	if gain == 1 {
		return
	}
	for i := range buf.Data {
		buf.Data[i] *= gain
	}
}

// Duplicate returns v.
func (v *VolumeChannelRun) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return v
}
