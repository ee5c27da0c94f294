package recall

import (
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/notation"
	"github.com/gsequencer/ags/plugin"
	"github.com/gsequencer/ags/port"
)

// VoicesPort is specifier of plugin channel voice count port.
const VoicesPort = "voices"

// DefaultVoices is the number of voices of a plugin channel run.
const DefaultVoices = 8

// PluginChannel is the channel level of a plugin bridged as instrument.
type PluginChannel struct {
	audio.NopBehaviour
	Voices *port.Port
	// Atom selects atom sequence event port over event buffer.
	Atom bool
}

// NewPluginChannel returns plugin channel template of c running effect.
func NewPluginChannel(c *audio.Channel, filename, effect string, options ...audio.Option) *audio.Recall {
	pc := &PluginChannel{
		Voices: port.New(VoicesPort, port.WithRange(1, 128), port.WithDefault(DefaultVoices)),
	}
	options = append([]audio.Option{
		audio.WithChannel(c),
		audio.WithEffect(filename, effect, 0),
		audio.WithPorts(pc.Voices),
	}, options...)
	return audio.NewRecall(PluginChannelType, pc, options...)
}

// Duplicate returns pc.
func (pc *PluginChannel) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return pc
}

// PluginChannelRun renders plugin instance into the channel recycling.
// Voices are spawned as children at run init.
type PluginChannelRun struct {
	audio.NopBehaviour

	mu         sync.Mutex
	delay      *audio.Recall
	countBeats *audio.Recall
	instance   plugin.Instance
	events     plugin.MIDIWriter
}

// NewPluginChannelRun returns plugin channel run template of c depending
// on delay and count beats run templates.
func NewPluginChannelRun(c *audio.Channel, filename, effect string, delay, countBeats *audio.Recall, options ...audio.Option) *audio.Recall {
	options = append([]audio.Option{
		audio.WithChannel(c),
		audio.WithEffect(filename, effect, 0),
	}, options...)
	r := audio.NewRecall(PluginChannelRunType, &PluginChannelRun{}, options...)
	r.AddDependency(audio.NewDependency(delay))
	r.AddDependency(audio.NewDependency(countBeats))
	return r
}

// Instance returns plugin instance.
func (p *PluginChannelRun) Instance() plugin.Instance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.instance
}

// Events returns pending events of the event port.
func (p *PluginChannelRun) Events() []plugin.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		return nil
	}
	return append([]plugin.Event(nil), p.events.Events()...)
}

// AppendMIDI appends messages to the event port.
func (p *PluginChannelRun) AppendMIDI(frames uint32, msgs ...midi.Message) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		return false
	}
	return p.events.AppendMIDI(frames, msgs...)
}

// DelayRun returns resolved delay run.
func (p *PluginChannelRun) DelayRun() *audio.Recall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delay
}

// FreeVoice returns the first voice of r without note.
func (p *PluginChannelRun) FreeVoice(r *audio.Recall) *audio.Recall {
	for _, v := range r.Children() {
		if voice := pluginVoiceOf(v); voice != nil && voice.Note() == nil && !v.IsDone() {
			return v
		}
	}
	return nil
}

// ResolveDependency resolves delay and count beats as channel run
// dependent.
func (p *PluginChannelRun) ResolveDependency(r *audio.Recall) {
	delay, countBeats := resolveTiming(r, audio.NotifyChannelRun)
	p.mu.Lock()
	p.delay = delay
	p.countBeats = countBeats
	p.mu.Unlock()
}

// RunInitPre instantiates the plugin, allocates the event port and spawns
// voices.
func (p *PluginChannelRun) RunInitPre(r *audio.Recall) {
	samplerate := 0
	if a := r.Audio(); a != nil {
		samplerate = a.Samplerate()
	} else if c := r.Channel(); c != nil && c.Audio() != nil {
		samplerate = c.Audio().Samplerate()
	}
	instance, err := plugin.Instantiate(r.Effect(), samplerate)
	if err != nil {
		logger.Warnf("plugin channel run: %s %s: %v", r.Filename(), r.Effect(), err)
	}

	voices := DefaultVoices
	var events plugin.MIDIWriter = plugin.NewEventBuffer(plugin.DefaultEventCount)
	if pc, ok := channelBehaviour(r).(*PluginChannel); ok {
		voices = int(pc.Voices.ReadUint())
		if pc.Atom {
			events = plugin.NewAtomSequence(plugin.DefaultEventCount * 24)
		}
	}

	p.mu.Lock()
	p.instance = instance
	p.events = events
	p.mu.Unlock()

	for i := 0; i < voices; i++ {
		r.AddChild(NewPluginVoiceRun(r.Channel()))
	}
}

func channelBehaviour(r *audio.Recall) audio.Behaviour {
	if peer := r.RecallChannel(); peer != nil {
		return peer.Behaviour()
	}
	return nil
}

// RunPre clears the channel recycling.
func (p *PluginChannelRun) RunPre(r *audio.Recall) {
	if c := r.Channel(); c != nil {
		c.Recycling().Output(r.RecallID()).Clear()
	}
}

// RunInter renders pending events into the channel recycling.
func (p *PluginChannelRun) RunInter(r *audio.Recall) {
	c := r.Channel()
	if c == nil {
		return
	}
	buf := c.Recycling().Output(r.RecallID()).Buffer()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		return
	}
	if p.instance != nil && buf != nil {
		p.instance.Run(p.events.Events(), buf.Data)
	}
	p.events.Clear()
}

// Done releases timing dependencies.
func (p *PluginChannelRun) Done(*audio.Recall) {
	p.mu.Lock()
	delay, countBeats := p.delay, p.countBeats
	p.mu.Unlock()
	releaseTiming(audio.NotifyChannelRun, delay, countBeats)
}

// Duplicate returns channel run without instance.
func (p *PluginChannelRun) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return &PluginChannelRun{}
}

// PluginVoiceRun holds one sounding note of a plugin channel run. The
// voice sends note-off once the note length in ticks passed and becomes
// free again.
type PluginVoiceRun struct {
	audio.NopBehaviour

	mu       sync.Mutex
	note     *notation.Note
	key      uint8
	attached bool
	ticks    uint64
}

// NewPluginVoiceRun returns free voice of c.
func NewPluginVoiceRun(c *audio.Channel, options ...audio.Option) *audio.Recall {
	options = append([]audio.Option{audio.WithChannel(c)}, options...)
	return audio.NewRecall(PluginVoiceRunType, &PluginVoiceRun{}, options...)
}

func pluginVoiceOf(r *audio.Recall) *PluginVoiceRun {
	if r == nil {
		return nil
	}
	b, _ := r.Behaviour().(*PluginVoiceRun)
	return b
}

// Note returns sounding note, nil for a free voice.
func (v *PluginVoiceRun) Note() *notation.Note {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.note
}

// Attach binds note sounding at midi key to voice.
func (v *PluginVoiceRun) Attach(note *notation.Note, key uint8) {
	v.mu.Lock()
	v.note = note
	v.key = key
	v.attached = true
	v.ticks = 0
	v.mu.Unlock()
}

// Release frees voice.
func (v *PluginVoiceRun) Release() {
	v.mu.Lock()
	v.note = nil
	v.attached = false
	v.ticks = 0
	v.mu.Unlock()
}

// RunPre counts tick boundaries after the note-on and sends note-off
// through the parent event port once the note length is reached.
func (v *PluginVoiceRun) RunPre(r *audio.Recall) {
	parent := r.Parent()
	if parent == nil {
		return
	}
	pr, ok := parent.Behaviour().(*PluginChannelRun)
	if !ok {
		return
	}
	delay := pr.DelayRun()
	d := delayRunOf(delay)
	if d == nil || d.Counter(delay.SoundScope()) != 0 {
		return
	}

	v.mu.Lock()
	if v.note == nil {
		v.mu.Unlock()
		return
	}
	if v.attached {
		v.attached = false
		v.mu.Unlock()
		return
	}
	v.ticks++
	length := uint64(1)
	if v.note.X1 > v.note.X0 {
		length = v.note.X1 - v.note.X0
	}
	if v.ticks < length {
		v.mu.Unlock()
		return
	}
	key := v.key
	v.mu.Unlock()

	if !pr.AppendMIDI(0, midi.NoteOff(0, key)) {
		logger.Warn("plugin voice run: event port full")
	}
	v.Release()
}

// Cancel releases voice.
func (v *PluginVoiceRun) Cancel(*audio.Recall) {
	v.Release()
}

// Duplicate returns free voice.
func (v *PluginVoiceRun) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return &PluginVoiceRun{}
}
