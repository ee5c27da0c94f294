package audio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gsequencer/ags/audio"
)

func TestFindRecyclingContextExact(t *testing.T) {
	root := audio.NewRecyclingContext(audio.ScopeNotation)
	parent := audio.NewRecyclingContext(audio.ScopeNotation)
	child := audio.NewRecyclingContext(audio.ScopeNotation)
	root.AddChild(parent)
	parent.AddChild(child)

	template := audio.NewRecall(typeA, nil)
	rootRun := template.Duplicate(audio.NewRecallID(audio.ScopeNotation, root))
	parentRun := template.Duplicate(audio.NewRecallID(audio.ScopeNotation, parent))
	list := []*audio.Recall{template, rootRun, parentRun}

	assert.Empty(t, audio.FindRecyclingContext(list, child))
	assert.Empty(t, audio.FindTypeWithRecyclingContext(list, typeA, child))

	childRun := template.Duplicate(audio.NewRecallID(audio.ScopeNotation, child))
	list = append(list, childRun)
	found := audio.FindRecyclingContext(list, child)
	if assert.NotEmpty(t, found) {
		assert.Equal(t, childRun, found[0])
	}
	found = audio.FindRecyclingContext(list, parent)
	if assert.NotEmpty(t, found) {
		assert.Equal(t, parentRun, found[0])
	}
	assert.Equal(t, 3, child.Depth()-root.Depth()+1)
}

func TestFindFamily(t *testing.T) {
	a := audio.NewAudio()
	a.SetAudioChannels(1)
	a.SetPads(false, 2)
	in := a.Inputs()

	id := newID()
	tA := audio.NewRecall(typeA, nil, audio.WithAudio(a), audio.WithEffect("ags", "sine", 0))
	tC := audio.NewRecall(typeC, nil, audio.WithChannel(in[1]))
	dA := tA.Duplicate(id)
	dC := tC.Duplicate(id)
	list := []*audio.Recall{tA, tC, dA, dC}

	tests := []struct {
		description string
		found       []*audio.Recall
		expected    *audio.Recall
	}{
		{"type", audio.FindType(list, typeC), tC},
		{"template", audio.FindTemplate(list[2:]), nil},
		{"template find type", audio.TemplateFindType(list, typeC), tC},
		{"template find all type", audio.TemplateFindAllType(list, typeB, typeC), tC},
		{"provider channel", audio.FindProvider(list, in[1]), tC},
		{"provider other channel", audio.FindProvider(list, in[0]), nil},
		{"provider audio", audio.FindProvider(list, a), tA},
		{"template provider", audio.TemplateFindProvider(list[1:], a), nil},
		{"provider with context", audio.FindProviderWithRecyclingContext(list, in[1], id.RecyclingContext()), dC},
	}
	for _, test := range tests {
		if test.expected == nil {
			assert.Empty(t, test.found, test.description)
			continue
		}
		if assert.NotEmpty(t, test.found, test.description) {
			assert.Equal(t, test.expected, test.found[0], test.description)
		}
	}

	assert.Equal(t, []*audio.Recall{tA, dA}, audio.GetByEffect(list, "ags", "sine"))
	assert.Equal(t, dA, audio.FindRecallIDWithEffect(list, id, "ags", "sine"))
	assert.Nil(t, audio.FindRecallIDWithEffect(list, newID(), "ags", "sine"))
}

func TestIsDone(t *testing.T) {
	id := newID()
	ctx := id.RecyclingContext()
	level := audio.NewRecall(audio.RecallAudioType, nil)
	first := audio.NewRecall(typeA, nil).Duplicate(id)
	second := audio.NewRecall(typeB, nil).Duplicate(id)
	other := audio.NewRecall(typeB, nil).Duplicate(newID())
	list := []*audio.Recall{level, first, second, other}

	assert.False(t, audio.IsDone(nil, ctx))
	assert.False(t, audio.IsDone(list, ctx))
	first.Done()
	assert.False(t, audio.IsDone(list, ctx))
	second.Done()
	assert.True(t, audio.IsDone(list, ctx))
}

func TestFindRecallIDWithRecyclingContext(t *testing.T) {
	parent := audio.NewRecyclingContext(audio.ScopeSequencer)
	child := audio.NewRecyclingContext(audio.ScopeSequencer)
	parent.AddChild(child)
	parentID := audio.NewRecallID(audio.ScopeSequencer, parent)
	childID := audio.NewRecallID(audio.ScopeSequencer, child)
	ids := []*audio.RecallID{childID, parentID}

	assert.Equal(t, childID, audio.FindRecallIDWithRecyclingContext(ids, child))
	assert.Equal(t, parentID, audio.FindParentRecyclingContext(ids, child))
	assert.Nil(t, audio.FindParentRecyclingContext(ids, parent))
	assert.Nil(t, audio.FindParentRecyclingContext(ids, nil))
	assert.Nil(t, audio.FindRecallIDWithRecyclingContext(ids[:1], parent))
}
