package audio

// Flags of recall.
type Flags uint32

// Recall flags.
const (
	Template Flags = 1 << iota
	DefaultTemplate
	Bypass
	InitialRun
	RunInitialized
	PropagateDone
	Persistent
	PersistentPlayback
	PersistentSequencer
	PersistentNotation
	PersistentWave
	PersistentMidi
	MIDI1
	MIDI2
	InputOrientated
	OutputOrientated

	persistentMask = Persistent | PersistentPlayback | PersistentSequencer |
		PersistentNotation | PersistentWave | PersistentMidi
)

// BehaviourFlags modify how recall treats its channels.
type BehaviourFlags uint32

// Behaviour flags.
const (
	ReverseMapping BehaviourFlags = 1 << iota
	DefaultsToInput
	PatternMode
	ChainedToOutput
	ChainedToInput
)

// Staging is a set of lifecycle stages.
type Staging uint32

// Stages in canonical order.
const (
	StageResolveDependency Staging = 1 << iota
	StageCheckRtData
	StageRunInitPre
	StageRunInitInter
	StageRunInitPost
	StageFeedInputQueue
	StageAutomate
	StageRunPre
	StageRunInter
	StageRunPost
	StageDoFeedback
	StageFeedOutputQueue

	// StageInit is the once-only part of lifecycle.
	StageInit = StageResolveDependency | StageCheckRtData | StageRunInitPre | StageRunInitInter | StageRunInitPost
	// StageTick is the repeating part of lifecycle.
	StageTick = StageFeedInputQueue | StageAutomate | StageRunPre | StageRunInter | StageRunPost | StageDoFeedback | StageFeedOutputQueue
	// StageAll is full lifecycle of one tick.
	StageAll = StageInit | StageTick

	// stages implied by a later stage in the same call.
	stageCatchUp = StageInit | StageRunPre | StageRunInter | StageRunPost
)

var stageOrder = []Staging{
	StageResolveDependency,
	StageCheckRtData,
	StageRunInitPre,
	StageRunInitInter,
	StageRunInitPost,
	StageFeedInputQueue,
	StageAutomate,
	StageRunPre,
	StageRunInter,
	StageRunPost,
	StageDoFeedback,
	StageFeedOutputQueue,
}

// TickStages returns the per-tick stages in play order.
func TickStages() []Staging {
	var stages []Staging
	for _, st := range stageOrder {
		if st&StageTick != 0 {
			stages = append(stages, st)
		}
	}
	return stages
}

var stageNames = map[Staging]string{
	StageResolveDependency: "resolve-dependency",
	StageCheckRtData:       "check-rt-data",
	StageRunInitPre:        "run-init-pre",
	StageRunInitInter:      "run-init-inter",
	StageRunInitPost:       "run-init-post",
	StageFeedInputQueue:    "feed-input-queue",
	StageAutomate:          "automate",
	StageRunPre:            "run-pre",
	StageRunInter:          "run-inter",
	StageRunPost:           "run-post",
	StageDoFeedback:        "do-feedback",
	StageFeedOutputQueue:   "feed-output-queue",
}

func (s Staging) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	var out string
	for _, st := range stageOrder {
		if s&st != 0 {
			if out != "" {
				out += "|"
			}
			out += stageNames[st]
		}
	}
	return out
}

// State of recall.
type State uint32

// Recall states.
const (
	StateRunning State = 1 << iota
	StateDone
	StateCancelled
)

// DependencyKind describes which reference count of a recall has changed.
type DependencyKind int

// Dependency kinds.
const (
	NotifyRun DependencyKind = iota
	NotifyAudio
	NotifyAudioRun
	NotifyChannel
	NotifyChannelRun
	NotifyRecall
)
