package audio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/mock"
	"github.com/gsequencer/ags/port"
)

var (
	typeA = audio.NewType("test-a", audio.KindAudioRun)
	typeB = audio.NewType("test-b", audio.KindAudioRun)
	typeC = audio.NewType("test-c", audio.KindChannelRun)
)

func newID() *audio.RecallID {
	return audio.NewRecallID(audio.ScopePlayback, audio.NewRecyclingContext(audio.ScopePlayback))
}

func TestTemplateInvariant(t *testing.T) {
	tests := []struct {
		typ *audio.Type
	}{
		{typ: audio.RecallAudioType},
		{typ: audio.RecallAudioRunType},
		{typ: audio.RecallChannelRunType},
		{typ: audio.RecallSignalType},
	}
	for _, test := range tests {
		r := audio.NewRecall(test.typ, nil)
		assert.True(t, r.IsTemplate())
		assert.Nil(t, r.RecallID())

		id := newID()
		dup := r.Duplicate(id)
		assert.False(t, dup.IsTemplate())
		assert.Equal(t, id, dup.RecallID())
		assert.Equal(t, r, dup.Template())
		assert.True(t, r.IsTemplate())

		dup.SetRecallID(nil)
		assert.True(t, dup.IsTemplate())
		assert.Nil(t, dup.RecallID())

		// template flag can't be set directly
		r.UnsetFlags(audio.Template)
		assert.True(t, r.IsTemplate())
	}
}

func TestStagingCatchUp(t *testing.T) {
	log := &mock.Log{}
	template, _ := mock.Recall(typeA, "a", log)
	r := template.Duplicate(newID())

	r.SetStagingFlags(audio.StageRunInter)
	assert.Equal(t, []string{
		"a:resolve-dependency",
		"a:check-rt-data",
		"a:run-init-pre",
		"a:run-init-inter",
		"a:run-init-post",
		"a:run-pre",
		"a:run-inter",
	}, log.Entries())

	log.Reset()
	r.SetStagingFlags(audio.StageRunInter)
	assert.Empty(t, log.Entries())

	r.SetStagingFlags(audio.StageRunPost)
	assert.Equal(t, []string{"a:run-post"}, log.Entries())

	log.Reset()
	r.UnsetStagingFlags(audio.StageTick)
	r.SetStagingFlags(audio.StageRunPost)
	assert.Equal(t, []string{"a:run-pre", "a:run-inter", "a:run-post"}, log.Entries())
	assert.True(t, r.TestFlags(audio.RunInitialized))
	assert.False(t, r.TestFlags(audio.InitialRun))
}

func TestStagingTemplate(t *testing.T) {
	log := &mock.Log{}
	template, _ := mock.Recall(typeA, "a", log)
	template.SetStagingFlags(audio.StageAll)
	assert.Empty(t, log.Entries())
}

func TestChildrenStagedFirst(t *testing.T) {
	log := &mock.Log{}
	parentTemplate, _ := mock.Recall(typeA, "parent", log)
	childTemplate, _ := mock.Recall(typeC, "child", log)
	id := newID()
	parent := parentTemplate.Duplicate(id)
	child := childTemplate.Duplicate(newID())

	parent.AddChild(child)
	assert.Equal(t, parent, child.Parent())
	assert.Equal(t, id, child.RecallID())

	parent.SetStagingFlags(audio.StageRunPre)
	entries := log.Entries()
	assert.Equal(t, "child:resolve-dependency", entries[0])
	assert.Equal(t, "parent:resolve-dependency", entries[1])
	assert.Equal(t, "child:run-pre", entries[len(entries)-2])
	assert.Equal(t, "parent:run-pre", entries[len(entries)-1])
}

func TestAddChildInitialized(t *testing.T) {
	log := &mock.Log{}
	parentTemplate, _ := mock.Recall(typeA, "parent", log)
	childTemplate, _ := mock.Recall(typeC, "child", log)
	parent := parentTemplate.Duplicate(newID())
	parent.SetStagingFlags(audio.StageInit)
	log.Reset()

	child := childTemplate.Duplicate(newID())
	parent.AddChild(child)
	assert.Equal(t, []string{
		"child:resolve-dependency",
		"child:check-rt-data",
		"child:run-init-pre",
		"child:run-init-inter",
		"child:run-init-post",
	}, log.Entries())
	assert.True(t, child.TestFlags(audio.RunInitialized))
}

func TestDone(t *testing.T) {
	tests := []struct {
		flags    audio.Flags
		done     bool
		children int
	}{
		{flags: 0, done: true},
		{flags: audio.Persistent, done: false},
		{flags: audio.PersistentPlayback, done: false},
		{flags: audio.PropagateDone, done: true, children: 2},
	}
	for _, test := range tests {
		log := &mock.Log{}
		template, _ := mock.Recall(typeA, "a", log, audio.WithFlags(test.flags))
		r := template.Duplicate(newID())
		var handled int
		r.OnDone(func(*audio.Recall) { handled++ })

		var children []*audio.Recall
		for i := 0; i < test.children; i++ {
			childTemplate, _ := mock.Recall(typeC, "child", log)
			child := childTemplate.Duplicate(newID())
			r.AddChild(child)
			children = append(children, child)
		}
		for i, child := range children {
			child.Done()
			assert.Nil(t, child.Parent())
			if i < len(children)-1 {
				assert.False(t, r.IsDone())
			}
		}
		if test.children == 0 {
			r.Done()
		}
		assert.Equal(t, test.done, r.IsDone())
		if test.done {
			assert.Equal(t, 1, handled)
			assert.Equal(t, 1, log.Count("a:done"))
		}
		template.Done()
		assert.False(t, template.IsDone())
	}
}

func TestCancel(t *testing.T) {
	log := &mock.Log{}
	template, _ := mock.Recall(typeA, "a", log, audio.WithFlags(audio.Persistent))
	var cancelled bool
	template.OnCancel(func(*audio.Recall) { cancelled = true })
	r := template.Duplicate(newID())

	r.RequestCancel()
	assert.True(t, r.CancelRequested())
	r.SetStagingFlags(audio.StageRunPre)
	assert.True(t, cancelled)
	assert.True(t, r.IsDone())
	assert.Equal(t, audio.StateCancelled, r.StateFlags()&audio.StateCancelled)
	assert.Equal(t, []string{"a:cancel", "a:done"}, log.Entries())
	assert.False(t, r.TestFlags(audio.Persistent))

	log.Reset()
	r.SetStagingFlags(audio.StageRunPre)
	assert.Empty(t, log.Entries())
}

func TestAutomate(t *testing.T) {
	p := port.New("volume", port.WithRange(0, 1))
	a := port.NewAutomation(0, 1)
	a.Add(port.Acceleration{X: 0, Y: 0})
	a.Add(port.Acceleration{X: 10, Y: 1})
	p.SetAutomation(a)

	template := audio.NewRecall(typeA, nil, audio.WithPorts(p))
	template.AddAutomationPort(p)
	id := newID()
	r := template.Duplicate(id)
	for i := 0; i < 5; i++ {
		id.Advance()
	}
	r.SetStagingFlags(audio.StageAutomate)
	assert.InDelta(t, 0.5, p.SafeRead(), 1e-9)
	assert.Equal(t, p, r.FindPort("volume"))
}
