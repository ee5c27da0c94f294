package audio

// SoundScope selects one of the concurrent processing contexts.
type SoundScope int

// Sound scopes.
const (
	ScopeDefault SoundScope = iota - 1
	ScopePlayback
	ScopeSequencer
	ScopeNotation
	ScopeWave
	ScopeMidi
	ScopeLast
)

var scopeNames = [...]string{
	ScopePlayback:  "playback",
	ScopeSequencer: "sequencer",
	ScopeNotation:  "notation",
	ScopeWave:      "wave",
	ScopeMidi:      "midi",
}

func (s SoundScope) String() string {
	if s < 0 || s >= ScopeLast {
		return "default"
	}
	return scopeNames[s]
}

// Scopes returns all sound scopes.
func Scopes() []SoundScope {
	return []SoundScope{ScopePlayback, ScopeSequencer, ScopeNotation, ScopeWave, ScopeMidi}
}

// Ability is a set of sound scopes a recall can be run in.
type Ability uint32

// Abilities.
const (
	AbilityPlayback Ability = 1 << iota
	AbilitySequencer
	AbilityNotation
	AbilityWave
	AbilityMidi

	AbilityAll = AbilityPlayback | AbilitySequencer | AbilityNotation | AbilityWave | AbilityMidi
)

// AbilityOf returns ability for sound scope.
func AbilityOf(s SoundScope) Ability {
	if s < 0 || s >= ScopeLast {
		return 0
	}
	return 1 << uint(s)
}

// Has returns true if ability contains sound scope.
func (a Ability) Has(s SoundScope) bool {
	if s == ScopeDefault {
		return a != 0
	}
	return a&AbilityOf(s) != 0
}
