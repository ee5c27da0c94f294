package fx_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/fx"
	"github.com/gsequencer/ags/audio/recall"
	"github.com/gsequencer/ags/notation"
	"github.com/gsequencer/ags/plugin"
)

func newAudio(inputPads int) *audio.Audio {
	a := audio.NewAudio(audio.Named("fx"), audio.WithMapping(0, inputPads, 60, 60+inputPads))
	a.SetAudioChannels(1)
	a.SetPads(true, 1)
	a.SetPads(false, inputPads)
	return a
}

func TestCreateAddInput(t *testing.T) {
	tests := []struct {
		name     string
		runs     int
		channels int
	}{
		{name: fx.VolumeFx, runs: 2, channels: 2},
		{name: fx.PlaybackFx, runs: 2, channels: 2},
		{name: fx.PitchFx, runs: 2, channels: 2},
	}
	for _, test := range tests {
		a := newAudio(2)
		play, rec := audio.NewContainer(), audio.NewContainer()
		recalls, err := fx.Create(a, play, rec, test.name, "", "", 0, 1, 0, 2, -1, fx.Add|fx.Input, 0)
		assert.Nil(t, err)
		assert.Equal(t, 2*(test.runs+test.channels), len(recalls))
		assert.Equal(t, test.runs, len(rec.ChannelRuns()))
		assert.Equal(t, test.channels, len(rec.Channels()))
		assert.Equal(t, test.runs, len(play.ChannelRuns()))
		for _, r := range rec.ChannelRuns() {
			assert.True(t, r.IsTemplate())
			assert.True(t, r.TestFlags(audio.InputOrientated))
			assert.False(t, r.Channel().IsOutput())
			assert.NotNil(t, r.RecallChannel())
		}
		for _, in := range a.Inputs() {
			assert.Equal(t, 2, len(in.Recalls(false)))
			assert.Equal(t, 2, len(in.Recalls(true)))
			assert.Equal(t, 2, len(in.RecallContainers()))
		}
	}
}

func TestCreateErrors(t *testing.T) {
	tests := []struct {
		name        string
		effect      string
		acStart     int
		acEnd       int
		padStart    int
		padEnd      int
		expectedErr error
	}{
		{name: "ags-fx-missing", acEnd: 1, padEnd: 1, expectedErr: fx.ErrUnknownFx},
		{name: fx.PluginFx, acEnd: 1, padEnd: 1, expectedErr: fx.ErrMissingDependency},
		{name: fx.VolumeFx, acStart: 1, acEnd: 0, padEnd: 1, expectedErr: fx.ErrInvalidRange},
		{name: fx.VolumeFx, acEnd: 1, padStart: -1, padEnd: 1, expectedErr: fx.ErrInvalidRange},
		{name: fx.PitchFx, effect: "cubic", acEnd: 1, padEnd: 1, expectedErr: fx.ErrUnknownFx},
	}
	for _, test := range tests {
		a := newAudio(1)
		recalls, err := fx.Create(a, audio.NewContainer(), audio.NewContainer(), test.name, "", test.effect,
			test.acStart, test.acEnd, test.padStart, test.padEnd, -1, fx.Add|fx.Input, 0)
		assert.True(t, errors.Is(err, test.expectedErr), "%s: %v", test.name, err)
		assert.Nil(t, recalls)
	}
}

func TestCreateRemap(t *testing.T) {
	a := newAudio(2)
	play, rec := audio.NewContainer(), audio.NewContainer()
	_, err := fx.Create(a, play, rec, fx.NotationFx, "", "", 0, 1, 0, 2, -1, fx.Add|fx.Input, 0)
	assert.Nil(t, err)
	pplay, prec := audio.NewContainer(), audio.NewContainer()
	_, err = fx.Create(a, pplay, prec, fx.PluginFx, "", plugin.SineEffect, 0, 1, 0, 2, -1, fx.Add|fx.Input|fx.Live, 0)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(prec.ChannelRuns()))
	assert.Equal(t, 1, len(prec.AudioRuns()))

	a.SetPads(false, 4)
	recalls, err := fx.Create(a, pplay, prec, fx.PluginFx, "", plugin.SineEffect, 0, 1, 2, 4, -1, fx.Remap|fx.Input|fx.Live, 0)
	assert.Nil(t, err)
	assert.Equal(t, 8, len(recalls))
	assert.Equal(t, 4, len(prec.ChannelRuns()))
	assert.Equal(t, 1, len(prec.AudioRuns()))

	recalls, err = fx.Create(a, play, rec, fx.NotationFx, "", "", 0, 1, 2, 4, -1, fx.Remap|fx.Input, 0)
	assert.Nil(t, err)
	assert.Empty(t, recalls)
}

func TestCreatePosition(t *testing.T) {
	a := newAudio(1)
	in := a.Inputs()[0]
	_, err := fx.Create(a, audio.NewContainer(), audio.NewContainer(), fx.VolumeFx, "", "", 0, 1, 0, 1, -1, fx.Add|fx.Input, 0)
	assert.Nil(t, err)
	_, err = fx.Create(a, audio.NewContainer(), audio.NewContainer(), fx.PitchFx, "", "", 0, 1, 0, 1, 0, fx.Add|fx.Input, 0)
	assert.Nil(t, err)
	list := in.Recalls(false)
	assert.Equal(t, recall.PitchChannelType, list[0].Type())
	assert.Equal(t, recall.PitchChannelRunType, list[1].Type())
	assert.Equal(t, recall.VolumeChannelType, list[2].Type())
}

func TestCreateRecallFlags(t *testing.T) {
	a := newAudio(1)
	recalls, err := fx.Create(a, audio.NewContainer(), audio.NewContainer(), fx.PlaybackFx, "", "", 0, 1, 0, 1, -1, fx.Add|fx.Output, audio.Persistent)
	assert.Nil(t, err)
	for _, r := range recalls {
		assert.True(t, r.TestFlags(audio.Persistent))
		assert.True(t, r.TestFlags(audio.OutputOrientated))
		assert.True(t, r.Channel().IsOutput())
	}
}

func TestSynth(t *testing.T) {
	a := newAudio(2)
	a.SetFlags(audio.AudioHasNotation)
	steps := []struct {
		name   string
		effect string
		flags  fx.CreateFlags
	}{
		{name: fx.NotationFx, flags: fx.Add | fx.Input},
		{name: fx.PluginFx, effect: plugin.SineEffect, flags: fx.Add | fx.Input | fx.Live},
		{name: fx.VolumeFx, flags: fx.Add | fx.Input},
	}
	for _, step := range steps {
		_, err := fx.Create(a, audio.NewContainer(), audio.NewContainer(), step.name, "", step.effect, 0, 1, 0, 2, -1, step.flags, 0)
		assert.Nil(t, err)
	}
	_, err := fx.Create(a, audio.NewContainer(), audio.NewContainer(), fx.PlaybackFx, "", "", 0, 1, 0, 1, -1, fx.Add|fx.Output, 0)
	assert.Nil(t, err)
	a.AddNote(0, notation.NewNote(0, 4, 1))

	id := a.StartAudio(audio.ScopeNotation)[0]
	assert.False(t, a.Tick(id))
	var sum float64
	for _, v := range a.Outputs()[0].Recycling().Output(id).Buffer().Data {
		sum += math.Abs(v)
	}
	assert.True(t, sum > 0)
	assert.Equal(t, 1, len(a.RecallIDs()))
	a.StopAudio(audio.ScopeDefault)
	assert.Empty(t, a.RecallIDs())
}

func TestNames(t *testing.T) {
	names := fx.Names()
	for _, name := range []string{fx.NotationFx, fx.PitchFx, fx.PlaybackFx, fx.PluginFx, fx.VolumeFx} {
		assert.Contains(t, names, name)
	}
	fx.Register("ags-fx-test", func(fx.Params) ([]*audio.Recall, error) { return nil, nil })
	assert.Contains(t, fx.Names(), "ags-fx-test")
}
