package audio

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gsequencer/ags/log"
	"github.com/gsequencer/ags/port"
)

var logger log.Logger = log.GetLogger()

// Recall is a node of the recall tree. Templates are created by the fx
// factory and duplicated per run; duplicates carry exactly one RecallID.
type Recall struct {
	mu sync.RWMutex

	uuid    uuid.UUID
	typ     *Type
	name    string
	version string
	buildID string
	xmlType string

	filename    string
	effect      string
	effectIndex int

	container *Container

	flags            Flags
	ability          Ability
	behaviourFlags   BehaviourFlags
	staging          Staging
	stagingCompleted Staging
	state            State
	soundScope       SoundScope

	parent   *Recall
	children []*Recall

	ports           []*port.Port
	automationPorts []*port.Port

	recallID     *RecallID
	dependencies []*Dependency
	template     *Recall

	audio       *Audio
	channel     *Channel
	recycling   *Recycling
	audioSignal *AudioSignal

	recallAudio    *Recall
	recallAudioRun *Recall
	recallChannel  *Recall

	behaviour Behaviour

	doneHandlers   []func(*Recall)
	cancelHandlers []func(*Recall)

	cancelRequested int32
}

// Option configures recall.
type Option func(*Recall)

// WithName sets name, version and build id.
func WithName(name, version, buildID string) Option {
	return func(r *Recall) {
		r.name = name
		r.version = version
		r.buildID = buildID
	}
}

// WithEffect binds recall to a plugin effect.
func WithEffect(filename, effect string, index int) Option {
	return func(r *Recall) {
		r.filename = filename
		r.effect = effect
		r.effectIndex = index
	}
}

// WithAbility sets sound scopes the recall can run in.
func WithAbility(a Ability) Option {
	return func(r *Recall) {
		r.ability = a
	}
}

// WithFlags sets recall flags. Template flag is managed by recall id.
func WithFlags(f Flags) Option {
	return func(r *Recall) {
		r.flags |= f &^ Template
	}
}

// WithBehaviourFlags sets behaviour flags.
func WithBehaviourFlags(f BehaviourFlags) Option {
	return func(r *Recall) {
		r.behaviourFlags = f
	}
}

// WithAudio sets owning audio.
func WithAudio(a *Audio) Option {
	return func(r *Recall) {
		r.audio = a
	}
}

// WithChannel sets owning channel. Audio is set to the channel's audio.
func WithChannel(c *Channel) Option {
	return func(r *Recall) {
		r.channel = c
		if c != nil {
			r.audio = c.Audio()
		}
	}
}

// WithPorts adds ports to recall.
func WithPorts(ports ...*port.Port) Option {
	return func(r *Recall) {
		r.ports = append(r.ports, ports...)
	}
}

// NewRecall returns a template recall of provided type. Nil behaviour
// results in NopBehaviour.
func NewRecall(typ *Type, b Behaviour, options ...Option) *Recall {
	if b == nil {
		b = NopBehaviour{}
	}
	r := &Recall{
		uuid:       uuid.New(),
		typ:        typ,
		xmlType:    typ.Name,
		flags:      Template,
		ability:    AbilityAll,
		soundScope: ScopeDefault,
		behaviour:  b,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// UUID of the recall.
func (r *Recall) UUID() uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.uuid
}

// SetUUID overrides uuid. Used when recall is read from file.
func (r *Recall) SetUUID(id uuid.UUID) {
	r.mu.Lock()
	r.uuid = id
	r.mu.Unlock()
}

// Type of the recall.
func (r *Recall) Type() *Type {
	return r.typ
}

// Kind of the recall type.
func (r *Recall) Kind() Kind {
	if r.typ == nil {
		return KindRecall
	}
	return r.typ.Kind
}

// Name of recall.
func (r *Recall) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.name
}

// Version of recall.
func (r *Recall) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// BuildID of recall.
func (r *Recall) BuildID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.buildID
}

// XMLType returns persisted type name.
func (r *Recall) XMLType() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.xmlType
}

// Filename of bound plugin.
func (r *Recall) Filename() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filename
}

// Effect of bound plugin.
func (r *Recall) Effect() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.effect
}

// EffectIndex of bound plugin.
func (r *Recall) EffectIndex() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.effectIndex
}

// Container returns owning container.
func (r *Recall) Container() *Container {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.container
}

func (r *Recall) setContainer(c *Container) {
	r.mu.Lock()
	r.container = c
	r.mu.Unlock()
}

// Flags returns recall flags.
func (r *Recall) Flags() Flags {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flags
}

// TestFlags returns true if all flags are set.
func (r *Recall) TestFlags(f Flags) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flags&f == f
}

// SetFlags sets flags. Template flag can't be set directly.
func (r *Recall) SetFlags(f Flags) {
	r.mu.Lock()
	r.flags |= f &^ Template
	r.mu.Unlock()
}

// UnsetFlags clears flags. Template flag can't be cleared directly.
func (r *Recall) UnsetFlags(f Flags) {
	r.mu.Lock()
	r.flags &^= f &^ Template
	r.mu.Unlock()
}

// IsTemplate returns true if recall isn't bound to a run.
func (r *Recall) IsTemplate() bool {
	return r.TestFlags(Template)
}

// Ability returns sound scopes recall can run in.
func (r *Recall) Ability() Ability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ability
}

// SetAbility replaces ability.
func (r *Recall) SetAbility(a Ability) {
	r.mu.Lock()
	r.ability = a
	r.mu.Unlock()
}

// CheckAbility returns true if recall can run in sound scope.
func (r *Recall) CheckAbility(s SoundScope) bool {
	return r.Ability().Has(s)
}

// BehaviourFlags of recall.
func (r *Recall) BehaviourFlags() BehaviourFlags {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.behaviourFlags
}

// TestBehaviourFlags returns true if all flags are set.
func (r *Recall) TestBehaviourFlags(f BehaviourFlags) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.behaviourFlags&f == f
}

// SetBehaviourFlags sets behaviour flags.
func (r *Recall) SetBehaviourFlags(f BehaviourFlags) {
	r.mu.Lock()
	r.behaviourFlags |= f
	r.mu.Unlock()
}

// UnsetBehaviourFlags clears behaviour flags.
func (r *Recall) UnsetBehaviourFlags(f BehaviourFlags) {
	r.mu.Lock()
	r.behaviourFlags &^= f
	r.mu.Unlock()
}

// SoundScope the recall is running in.
func (r *Recall) SoundScope() SoundScope {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.soundScope
}

// SetSoundScope sets sound scope of recall and its children.
func (r *Recall) SetSoundScope(s SoundScope) {
	r.mu.Lock()
	r.soundScope = s
	children := r.snapshotChildren()
	r.mu.Unlock()
	for _, c := range children {
		c.SetSoundScope(s)
	}
}

// StagingFlags returns stages run within current tick.
func (r *Recall) StagingFlags() Staging {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.staging
}

// StagingCompleted returns once-only stages already run.
func (r *Recall) StagingCompleted() Staging {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stagingCompleted
}

// StateFlags returns recall state.
func (r *Recall) StateFlags() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// IsDone returns true if recall reached terminal state.
func (r *Recall) IsDone() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state&StateDone != 0
}

// Parent returns the enclosing recall.
func (r *Recall) Parent() *Recall {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parent
}

// Children returns snapshot of child recalls.
func (r *Recall) Children() []*Recall {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotChildren()
}

func (r *Recall) snapshotChildren() []*Recall {
	children := make([]*Recall, len(r.children))
	copy(children, r.children)
	return children
}

// Ports returns snapshot of ports.
func (r *Recall) Ports() []*port.Port {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ports := make([]*port.Port, len(r.ports))
	copy(ports, r.ports)
	return ports
}

// AddPort appends port.
func (r *Recall) AddPort(p *port.Port) {
	r.mu.Lock()
	r.ports = append(r.ports, p)
	r.mu.Unlock()
}

// FindPort returns port by specifier.
func (r *Recall) FindPort(specifier string) *port.Port {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.ports {
		if p.Specifier() == specifier {
			return p
		}
	}
	return nil
}

// AutomationPorts returns snapshot of automated ports.
func (r *Recall) AutomationPorts() []*port.Port {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ports := make([]*port.Port, len(r.automationPorts))
	copy(ports, r.automationPorts)
	return ports
}

// AddAutomationPort marks port as automated.
func (r *Recall) AddAutomationPort(p *port.Port) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ap := range r.automationPorts {
		if ap == p {
			return
		}
	}
	r.automationPorts = append(r.automationPorts, p)
}

// RecallID returns run of the recall. Nil for templates.
func (r *Recall) RecallID() *RecallID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recallID
}

// SetRecallID binds recall and its children to the run. Nil id turns the
// recall into a template.
func (r *Recall) SetRecallID(id *RecallID) {
	r.mu.Lock()
	r.recallID = id
	if id == nil {
		r.flags |= Template
	} else {
		r.flags &^= Template
		r.soundScope = id.SoundScope()
	}
	children := r.snapshotChildren()
	r.mu.Unlock()
	for _, c := range children {
		c.SetRecallID(id)
	}
}

// Dependencies returns snapshot of dependencies.
func (r *Recall) Dependencies() []*Dependency {
	r.mu.RLock()
	defer r.mu.RUnlock()
	deps := make([]*Dependency, len(r.dependencies))
	copy(deps, r.dependencies)
	return deps
}

// AddDependency appends dependency.
func (r *Recall) AddDependency(d *Dependency) {
	if d == nil {
		return
	}
	r.mu.Lock()
	r.dependencies = append(r.dependencies, d)
	r.mu.Unlock()
}

// RemoveDependency removes dependency.
func (r *Recall) RemoveDependency(d *Dependency) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.dependencies {
		if r.dependencies[i] == d {
			r.dependencies = append(r.dependencies[:i], r.dependencies[i+1:]...)
			return
		}
	}
}

// Template returns the template this recall was duplicated from.
func (r *Recall) Template() *Recall {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.template
}

// Audio returns owning audio.
func (r *Recall) Audio() *Audio {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.audio
}

// Channel returns owning channel.
func (r *Recall) Channel() *Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

// SetChannel sets owning channel.
func (r *Recall) SetChannel(c *Channel) {
	r.mu.Lock()
	r.channel = c
	r.mu.Unlock()
}

// Provider returns channel if recall is channel level, audio otherwise.
func (r *Recall) Provider() interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.channel != nil {
		return r.channel
	}
	if r.audio != nil {
		return r.audio
	}
	return nil
}

// Recycling returns recycling of a recycling level recall.
func (r *Recall) Recycling() *Recycling {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recycling
}

// SetRecycling sets recycling.
func (r *Recall) SetRecycling(rec *Recycling) {
	r.mu.Lock()
	r.recycling = rec
	r.mu.Unlock()
}

// AudioSignal returns audio signal of a signal level recall.
func (r *Recall) AudioSignal() *AudioSignal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.audioSignal
}

// SetAudioSignal sets audio signal.
func (r *Recall) SetAudioSignal(s *AudioSignal) {
	r.mu.Lock()
	r.audioSignal = s
	r.mu.Unlock()
}

// RecallAudio returns audio level peer.
func (r *Recall) RecallAudio() *Recall {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recallAudio
}

// SetRecallAudio sets audio level peer.
func (r *Recall) SetRecallAudio(peer *Recall) {
	r.mu.Lock()
	r.recallAudio = peer
	r.mu.Unlock()
}

// RecallAudioRun returns audio run level peer.
func (r *Recall) RecallAudioRun() *Recall {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recallAudioRun
}

// SetRecallAudioRun sets audio run level peer.
func (r *Recall) SetRecallAudioRun(peer *Recall) {
	r.mu.Lock()
	r.recallAudioRun = peer
	r.mu.Unlock()
}

// RecallChannel returns channel level peer.
func (r *Recall) RecallChannel() *Recall {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recallChannel
}

// SetRecallChannel sets channel level peer.
func (r *Recall) SetRecallChannel(peer *Recall) {
	r.mu.Lock()
	r.recallChannel = peer
	r.mu.Unlock()
}

// Behaviour returns concrete implementation of recall.
func (r *Recall) Behaviour() Behaviour {
	return r.behaviour
}

// OnDone registers handler called when recall is done.
func (r *Recall) OnDone(fn func(*Recall)) {
	r.mu.Lock()
	r.doneHandlers = append(r.doneHandlers, fn)
	r.mu.Unlock()
}

// OnCancel registers handler called when recall is cancelled.
func (r *Recall) OnCancel(fn func(*Recall)) {
	r.mu.Lock()
	r.cancelHandlers = append(r.cancelHandlers, fn)
	r.mu.Unlock()
}
