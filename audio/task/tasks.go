package task

import (
	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/fx"
	"github.com/gsequencer/ags/audio/recall"
)

// Registry holds audios played by an audio loop.
type Registry interface {
	AddAudio(a *audio.Audio)
	RemoveAudio(a *audio.Audio)
}

// StartAudio starts runs of audio in scope.
func StartAudio(a *audio.Audio, scope audio.SoundScope) Task {
	return Func(func() error {
		a.StartAudio(scope)
		return nil
	})
}

// CancelAudio requests cancel of runs of audio in scope.
func CancelAudio(a *audio.Audio, scope audio.SoundScope) Task {
	return Func(func() error {
		a.CancelAudio(scope)
		return nil
	})
}

// AddAudio adds audio to registry.
func AddAudio(r Registry, a *audio.Audio) Task {
	return Func(func() error {
		r.AddAudio(a)
		return nil
	})
}

// RemoveAudio stops all runs of audio and removes it from registry.
func RemoveAudio(r Registry, a *audio.Audio) Task {
	return Func(func() error {
		a.StopAudio(audio.ScopeDefault)
		r.RemoveAudio(a)
		return nil
	})
}

// Provider is an audio or channel holding recalls.
type Provider interface {
	AddRecall(r *audio.Recall, play bool)
	RemoveRecall(r *audio.Recall, play bool)
	AddRecallContainer(c *audio.Container)
}

// AddRecallContainer adds container to provider.
func AddRecallContainer(p Provider, c *audio.Container) Task {
	return Func(func() error {
		p.AddRecallContainer(c)
		return nil
	})
}

// AddRecall adds recall to the play or recall list of provider.
func AddRecall(p Provider, r *audio.Recall, play bool) Task {
	return Func(func() error {
		p.AddRecall(r, play)
		return nil
	})
}

// RemoveRecall removes recall from the play or recall list of provider
// and cancels it unless it's a template.
func RemoveRecall(p Provider, r *audio.Recall, play bool) Task {
	return Func(func() error {
		p.RemoveRecall(r, play)
		if c := r.Container(); c != nil {
			c.Remove(r)
		}
		if !r.IsTemplate() {
			r.Cancel()
		}
		return nil
	})
}

// ResizeAudio sets pads and audio channels. Negative values are left
// untouched.
func ResizeAudio(a *audio.Audio, outputPads, inputPads, audioChannels int) Task {
	return Func(func() error {
		if audioChannels >= 0 {
			a.SetAudioChannels(audioChannels)
		}
		if outputPads >= 0 {
			a.SetPads(true, outputPads)
		}
		if inputPads >= 0 {
			a.SetPads(false, inputPads)
		}
		return nil
	})
}

// AddEffect creates recalls of fx name with params. Created recalls are
// passed to done if it's not nil.
func AddEffect(name string, p fx.Params, done func([]*audio.Recall)) Task {
	return Func(func() error {
		recalls, err := fx.CreateWith(name, p)
		if err != nil {
			return err
		}
		if done != nil {
			done(recalls)
		}
		return nil
	})
}

// SetLoop sets notation and sequencer loop of count beats audio.
func SetLoop(countBeats *audio.Recall, loop bool, start, end uint64) Task {
	return Func(func() error {
		if cb, ok := countBeats.Behaviour().(*recall.CountBeatsAudio); ok {
			cb.SetLoop(loop, start, end)
		}
		return nil
	})
}
