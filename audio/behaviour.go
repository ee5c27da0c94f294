package audio

// Behaviour is implemented by concrete recalls. The base Recall calls it
// after the children of the recall have been staged.
type Behaviour interface {
	ResolveDependency(r *Recall)
	CheckRtData(r *Recall)
	RunInitPre(r *Recall)
	RunInitInter(r *Recall)
	RunInitPost(r *Recall)
	FeedInputQueue(r *Recall)
	Automate(r *Recall)
	RunPre(r *Recall)
	RunInter(r *Recall)
	RunPost(r *Recall)
	DoFeedback(r *Recall)
	FeedOutputQueue(r *Recall)
	Done(r *Recall)
	Cancel(r *Recall)
	NotifyDependency(r *Recall, kind DependencyKind, delta int)
	// Duplicate returns behaviour for a recall duplicated from template.
	Duplicate(template, dup *Recall) Behaviour
}

// NopBehaviour can be embedded to implement only needed stages.
type NopBehaviour struct{}

// ResolveDependency does nothing.
func (NopBehaviour) ResolveDependency(*Recall) {}

// CheckRtData does nothing.
func (NopBehaviour) CheckRtData(*Recall) {}

// RunInitPre does nothing.
func (NopBehaviour) RunInitPre(*Recall) {}

// RunInitInter does nothing.
func (NopBehaviour) RunInitInter(*Recall) {}

// RunInitPost does nothing.
func (NopBehaviour) RunInitPost(*Recall) {}

// FeedInputQueue does nothing.
func (NopBehaviour) FeedInputQueue(*Recall) {}

// Automate does nothing.
func (NopBehaviour) Automate(*Recall) {}

// RunPre does nothing.
func (NopBehaviour) RunPre(*Recall) {}

// RunInter does nothing.
func (NopBehaviour) RunInter(*Recall) {}

// RunPost does nothing.
func (NopBehaviour) RunPost(*Recall) {}

// DoFeedback does nothing.
func (NopBehaviour) DoFeedback(*Recall) {}

// FeedOutputQueue does nothing.
func (NopBehaviour) FeedOutputQueue(*Recall) {}

// Done does nothing.
func (NopBehaviour) Done(*Recall) {}

// Cancel does nothing.
func (NopBehaviour) Cancel(*Recall) {}

// NotifyDependency does nothing.
func (NopBehaviour) NotifyDependency(*Recall, DependencyKind, int) {}

// Duplicate returns NopBehaviour.
func (NopBehaviour) Duplicate(*Recall, *Recall) Behaviour {
	return NopBehaviour{}
}

var stageTable = map[Staging]func(Behaviour, *Recall){
	StageResolveDependency: Behaviour.ResolveDependency,
	StageCheckRtData:       Behaviour.CheckRtData,
	StageRunInitPre:        Behaviour.RunInitPre,
	StageRunInitInter:      Behaviour.RunInitInter,
	StageRunInitPost:       Behaviour.RunInitPost,
	StageFeedInputQueue:    Behaviour.FeedInputQueue,
	StageAutomate:          Behaviour.Automate,
	StageRunPre:            Behaviour.RunPre,
	StageRunInter:          Behaviour.RunInter,
	StageRunPost:           Behaviour.RunPost,
	StageDoFeedback:        Behaviour.DoFeedback,
	StageFeedOutputQueue:   Behaviour.FeedOutputQueue,
}
