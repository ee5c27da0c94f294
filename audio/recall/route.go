package recall

import (
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/notation"
	"github.com/gsequencer/ags/port"
)

// VelocityPort is specifier of route velocity port.
const VelocityPort = "velocity"

// DeltaTime returns the event time of the current notation position:
//
//	x = ((countBeatsCounter * notationDelay) + delayCounter) * bufferLength
//	x / 16 / bpm * 60 / ((1e6 * bpm / 4) / (4 * bpm) / 1e6)
func DeltaTime(countBeatsCounter uint64, notationDelay float64, delayCounter uint64, bufferLength int, bpm float64) float64 {
	if bpm <= 0 {
		return 0
	}
	x := ((float64(countBeatsCounter) * notationDelay) + float64(delayCounter)) * float64(bufferLength)
	return x / 16 / bpm * 60 / ((1e6 * bpm / 4) / (4 * bpm) / 1e6)
}

// RouteAudio holds the velocity of routed notes.
type RouteAudio struct {
	audio.NopBehaviour
	Velocity *port.Port
}

// NewRouteAudio returns route audio template of a.
func NewRouteAudio(a *audio.Audio, options ...audio.Option) *audio.Recall {
	ra := &RouteAudio{
		Velocity: port.New(VelocityPort, port.WithRange(0, 127), port.WithDefault(127)),
	}
	options = append([]audio.Option{
		audio.WithAudio(a),
		audio.WithPorts(ra.Velocity),
	}, options...)
	return audio.NewRecall(RouteAudioType, ra, options...)
}

// Duplicate returns ra.
func (ra *RouteAudio) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return ra
}

// RouteAudioRun feeds notes of the audio notation to plugin channel runs
// of input channels. Notes starting at the count beats notation counter
// are fed at every tick boundary.
type RouteAudioRun struct {
	audio.NopBehaviour

	mu         sync.Mutex
	delay      *audio.Recall
	countBeats *audio.Recall
	deltaTime  float64
	fed        []*notation.Note
}

// NewRouteAudioRun returns route run template depending on delay and count
// beats run templates.
func NewRouteAudioRun(a *audio.Audio, delay, countBeats *audio.Recall, options ...audio.Option) *audio.Recall {
	options = append([]audio.Option{audio.WithAudio(a)}, options...)
	r := audio.NewRecall(RouteAudioRunType, &RouteAudioRun{}, options...)
	r.AddDependency(audio.NewDependency(delay))
	r.AddDependency(audio.NewDependency(countBeats))
	return r
}

// DeltaTime returns delta time computed by the last run post.
func (ra *RouteAudioRun) DeltaTime() float64 {
	ra.mu.Lock()
	defer ra.mu.Unlock()
	return ra.deltaTime
}

// Fed returns notes fed to plugins so far.
func (ra *RouteAudioRun) Fed() []*notation.Note {
	ra.mu.Lock()
	defer ra.mu.Unlock()
	return append([]*notation.Note(nil), ra.fed...)
}

// ResolveDependency resolves delay and count beats and observes alloc
// input of delay.
func (ra *RouteAudioRun) ResolveDependency(r *audio.Recall) {
	delay, countBeats := resolveTiming(r, audio.NotifyRun)
	ra.mu.Lock()
	ra.delay = delay
	ra.countBeats = countBeats
	ra.mu.Unlock()
	if d := delayRunOf(delay); d != nil {
		d.OnAllocInput(func(e DelayEvent) { ra.allocInput(r, e) })
	}
}

func (ra *RouteAudioRun) timing() (delay, countBeats *audio.Recall) {
	ra.mu.Lock()
	defer ra.mu.Unlock()
	return ra.delay, ra.countBeats
}

// allocInput feeds notes of every audio channel starting at the current
// notation counter. The notation segment before the current one is
// searched when the current has none.
func (ra *RouteAudioRun) allocInput(r *audio.Recall, e DelayEvent) {
	if !e.Boundary() || r.IsDone() || e.Scope != audio.ScopeNotation {
		return
	}
	_, countBeats := ra.timing()
	cb := countBeatsRunOf(countBeats)
	if cb == nil {
		logger.Warn("route audio run: missing count beats audio run")
		return
	}
	a := r.Audio()
	if a == nil {
		return
	}
	counter := cb.NotationCounter()
	offset := notation.SegmentOffset(counter)
	for ch := 0; ch < a.AudioChannels(); ch++ {
		n := a.FindNotation(ch, offset)
		if n == nil && offset >= notation.DefaultOffset {
			n = a.FindNotation(ch, offset-notation.DefaultOffset)
		}
		if n == nil {
			continue
		}
		for _, note := range n.NotesAt(counter) {
			ra.FeedMIDI(r, e.Run, ch, note)
		}
	}
}

// FeedMIDI attaches note to a free voice of every plugin channel run of
// the input channel the note maps to and appends a note-on to its event
// port. The input pad is audio start mapping plus note y, counted from the
// last pad with reverse mapping. Its key must lie in the midi mapping
// window. An empty window, end not above start, doesn't restrict.
func (ra *RouteAudioRun) FeedMIDI(r, delay *audio.Recall, audioChannel int, note *notation.Note) {
	a := r.Audio()
	if a == nil || delay == nil || note == nil {
		return
	}
	audioStart, audioEnd, midiStart, midiEnd := a.Mapping()
	y := int(note.Y)
	if y < audioStart || (audioEnd > audioStart && y >= audioEnd) {
		return
	}
	pads := a.Pads(false)
	pad := audioStart + y
	if a.TestFlags(audio.AudioReverseMapping) {
		pad = audioStart + pads - y - 1
	}
	if pad < 0 || pad >= pads {
		return
	}
	key := pad - audioStart + midiStart
	if key < midiStart || (midiEnd > midiStart && key >= midiEnd) || key > 127 {
		return
	}
	channel := a.Channel(false, pad, audioChannel)
	if channel == nil {
		return
	}
	childID := channel.FindRecallID(delay.RecallID().RecyclingContext())
	if childID == nil {
		logger.Debugf("route audio run: no run of input %d", channel.Line())
		return
	}

	velocity := uint8(127)
	if peer := r.RecallAudio(); peer != nil {
		if route, ok := peer.Behaviour().(*RouteAudio); ok {
			velocity = uint8(route.Velocity.ReadUint())
		}
	}

	fed := false
	for _, cr := range ra.pluginRuns(channel, childID) {
		pr, ok := cr.Behaviour().(*PluginChannelRun)
		if !ok {
			continue
		}
		voice := pr.FreeVoice(cr)
		if voice == nil {
			logger.Debugf("route audio run: no free voice on input %d", channel.Line())
			continue
		}
		if pr.AppendMIDI(0, midi.NoteOn(0, uint8(key), velocity)) {
			pluginVoiceOf(voice).Attach(note, uint8(key))
			fed = true
		} else {
			logger.Warn("route audio run: event port full")
		}
	}
	if fed {
		ra.mu.Lock()
		ra.fed = append(ra.fed, note)
		ra.mu.Unlock()
	}
}

// pluginRuns returns plugin channel runs of channel in the context of
// childID.
func (ra *RouteAudioRun) pluginRuns(channel *audio.Channel, childID *audio.RecallID) []*audio.Recall {
	ctx := childID.RecyclingContext()
	var runs []*audio.Recall
	for list := audio.FindRecyclingContext(channel.Recalls(false), ctx); len(list) > 0; list = audio.FindRecyclingContext(list[1:], ctx) {
		if list[0].Type() == PluginChannelRunType {
			runs = append(runs, list[0])
		}
	}
	return runs
}

// RunPost computes delta time of the current notation position.
func (ra *RouteAudioRun) RunPost(r *audio.Recall) {
	delay, countBeats := ra.timing()
	d := delayRunOf(delay)
	cb := countBeatsRunOf(countBeats)
	if d == nil || cb == nil {
		return
	}
	da := delayAudioOf(delay.RecallAudio())
	if da == nil {
		return
	}
	a := r.Audio()
	if a == nil {
		return
	}
	bpm := da.BPM.SafeRead()
	delta := DeltaTime(cb.NotationCounter(), da.NotationDelay.SafeRead(), d.Counter(audio.ScopeNotation), a.BufferSize(), bpm)
	ra.mu.Lock()
	ra.deltaTime = delta
	ra.mu.Unlock()
}

// Done releases timing dependencies.
func (ra *RouteAudioRun) Done(*audio.Recall) {
	delay, countBeats := ra.timing()
	releaseTiming(audio.NotifyRun, delay, countBeats)
}

// Duplicate returns route run without resolved dependencies.
func (ra *RouteAudioRun) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return &RouteAudioRun{}
}
