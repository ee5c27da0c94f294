package audio

import (
	"sync"
)

// Kind is the level of the recall tree a recall type lives on.
type Kind int

// Recall kinds.
const (
	KindRecall Kind = iota
	KindAudio
	KindAudioRun
	KindChannel
	KindChannelRun
	KindRecycling
	KindAudioSignal
)

var kindNames = [...]string{
	KindRecall:      "recall",
	KindAudio:       "recall-audio",
	KindAudioRun:    "recall-audio-run",
	KindChannel:     "recall-channel",
	KindChannelRun:  "recall-channel-run",
	KindRecycling:   "recall-recycling",
	KindAudioSignal: "recall-audio-signal",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsRun returns true for kinds which are duplicated per run.
func (k Kind) IsRun() bool {
	switch k {
	case KindAudioRun, KindChannelRun, KindRecycling, KindAudioSignal:
		return true
	}
	return false
}

// Type identifies concrete recall implementation. Types are compared by
// pointer.
type Type struct {
	Name string
	Kind Kind
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

var types = struct {
	sync.RWMutex
	m map[string]*Type
}{
	m: make(map[string]*Type),
}

// NewType registers recall type. Registering the same name twice returns
// the existing type.
func NewType(name string, kind Kind) *Type {
	types.Lock()
	defer types.Unlock()
	if t, ok := types.m[name]; ok {
		return t
	}
	t := &Type{Name: name, Kind: kind}
	types.m[name] = t
	return t
}

// LookupType returns registered type by name.
func LookupType(name string) (*Type, bool) {
	types.RLock()
	defer types.RUnlock()
	t, ok := types.m[name]
	return t, ok
}

// Generic recall types.
var (
	RecallType           = NewType("recall", KindRecall)
	RecallAudioType      = NewType("recall-audio", KindAudio)
	RecallAudioRunType   = NewType("recall-audio-run", KindAudioRun)
	RecallChannelType    = NewType("recall-channel", KindChannel)
	RecallChannelRunType = NewType("recall-channel-run", KindChannelRun)
	RecallRecyclingType  = NewType("recall-recycling", KindRecycling)
	RecallSignalType     = NewType("recall-audio-signal", KindAudioSignal)
)
