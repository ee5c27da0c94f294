package recall

import (
	"sync"

	goaudio "github.com/go-audio/audio"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/pitch"
	"github.com/gsequencer/ags/port"
)

// Pitch port specifiers.
const (
	BaseKeyPort = "base-key"
	TuningPort  = "tuning"
)

// PitchChannel holds pitch shift parameters and algorithm.
type PitchChannel struct {
	audio.NopBehaviour
	BaseKey *port.Port
	Tuning  *port.Port
	Type    pitch.Type
}

// NewPitchChannel returns pitch channel template of c using algorithm t.
func NewPitchChannel(c *audio.Channel, t pitch.Type, options ...audio.Option) *audio.Recall {
	pc := &PitchChannel{
		BaseKey: port.New(BaseKeyPort, port.WithRange(-78, 49), port.WithDefault(-48)),
		Tuning:  port.New(TuningPort, port.WithRange(-1200, 1200)),
		Type:    t,
	}
	options = append([]audio.Option{
		audio.WithChannel(c),
		audio.WithEffect("", t.String(), 0),
		audio.WithPorts(pc.BaseKey, pc.Tuning),
	}, options...)
	return audio.NewRecall(PitchChannelType, pc, options...)
}

// Duplicate returns pc.
func (pc *PitchChannel) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return pc
}

// PitchChannelRun shifts the channel recycling by the tuning port.
type PitchChannelRun struct {
	audio.NopBehaviour

	mu     sync.Mutex
	util   *pitch.CommonPitchUtil
	source *goaudio.FloatBuffer
}

// NewPitchChannelRun returns pitch channel run template of c.
func NewPitchChannelRun(c *audio.Channel, options ...audio.Option) *audio.Recall {
	options = append([]audio.Option{audio.WithChannel(c)}, options...)
	return audio.NewRecall(PitchChannelRunType, &PitchChannelRun{}, options...)
}

// RunInitPre allocates the pitch util of the channel algorithm.
func (p *PitchChannelRun) RunInitPre(r *audio.Recall) {
	pc, ok := channelBehaviour(r).(*PitchChannel)
	if !ok {
		logger.Warn("pitch channel run: missing pitch channel")
		return
	}
	p.mu.Lock()
	p.util = pitch.NewCommonPitchUtil(pc.Type)
	p.mu.Unlock()
}

// RunPost resamples current buffer in place. Zero tuning is a no-op.
func (p *PitchChannelRun) RunPost(r *audio.Recall) {
	c := r.Channel()
	pc, ok := channelBehaviour(r).(*PitchChannel)
	if c == nil || !ok {
		return
	}
	tuning := pc.Tuning.SafeRead()
	if tuning == 0 {
		return
	}
	dst := c.Recycling().Output(r.RecallID()).Buffer()
	if dst == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.util == nil {
		return
	}
	if p.source == nil || len(p.source.Data) != len(dst.Data) {
		p.source = &goaudio.FloatBuffer{
			Format: dst.Format,
			Data:   make([]float64, len(dst.Data)),
		}
	}
	copy(p.source.Data, dst.Data)
	p.util.SetBuffers(p.source, dst)
	p.util.SetBaseKey(pc.BaseKey.SafeRead())
	p.util.SetTuning(tuning)
	p.util.Pitch()
}

// Duplicate returns run without util.
func (p *PitchChannelRun) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return &PitchChannelRun{}
}
