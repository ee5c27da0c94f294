// Package fx creates the recalls of named effects on a range of audio
// channels and pads.
package fx

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/log"
)

var logger log.Logger = log.GetLogger()

var (
	// ErrUnknownFx is returned when no factory is registered for name.
	ErrUnknownFx = errors.New("unknown fx")
	// ErrMissingDependency is returned when an effect requires recalls
	// of another effect which wasn't created yet.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrInvalidRange is returned for empty or reversed ranges.
	ErrInvalidRange = errors.New("invalid range")
)

// CreateFlags select the mode and direction of Create.
type CreateFlags uint32

// Create flags.
const (
	// Add creates audio level recalls and channel level recalls of the
	// range.
	Add CreateFlags = 1 << iota
	// Remap creates channel level recalls of the range only.
	Remap
	// Input maps input channels.
	Input
	// Output maps output channels.
	Output
	// Live marks a plugin backed effect.
	Live
)

// Names of built-in effects.
const (
	PlaybackFx = "ags-fx-playback"
	VolumeFx   = "ags-fx-volume"
	PitchFx    = "ags-fx-pitch"
	NotationFx = "ags-fx-notation"
	PluginFx   = "ags-fx-plugin"
)

// Params of a single Create call.
type Params struct {
	Audio             *audio.Audio
	PlayContainer     *audio.Container
	RecallContainer   *audio.Container
	Filename          string
	Effect            string
	AudioChannelStart int
	AudioChannelEnd   int
	PadStart          int
	PadEnd            int
	Position          int
	CreateFlags       CreateFlags
	RecallFlags       audio.Flags
}

// Factory creates recalls of one effect.
type Factory func(p Params) ([]*audio.Recall, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		PlaybackFx: createPlayback,
		VolumeFx:   createVolume,
		PitchFx:    createPitch,
		NotationFx: createNotation,
		PluginFx:   createPlugin,
	}
)

// Register adds factory of effect name.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Names returns sorted names of registered effects.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create instantiates templates of effect name into play and recall
// containers. Audio level recalls are created in Add mode only, channel
// level recalls for every channel of the pad and audio channel range.
// Returned recalls are already registered in containers and lists.
func Create(a *audio.Audio, playContainer, recallContainer *audio.Container,
	name, filename, effect string,
	audioChannelStart, audioChannelEnd, padStart, padEnd, position int,
	createFlags CreateFlags, recallFlags audio.Flags) ([]*audio.Recall, error) {
	return CreateWith(name, Params{
		Audio:             a,
		PlayContainer:     playContainer,
		RecallContainer:   recallContainer,
		Filename:          filename,
		Effect:            effect,
		AudioChannelStart: audioChannelStart,
		AudioChannelEnd:   audioChannelEnd,
		PadStart:          padStart,
		PadEnd:            padEnd,
		Position:          position,
		CreateFlags:       createFlags,
		RecallFlags:       recallFlags,
	})
}

// CreateWith is Create with params.
func CreateWith(name string, p Params) ([]*audio.Recall, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFx, name)
	}
	if p.Audio == nil || p.PlayContainer == nil || p.RecallContainer == nil {
		return nil, fmt.Errorf("%s: missing audio or container", name)
	}
	if p.AudioChannelStart < 0 || p.AudioChannelEnd < p.AudioChannelStart ||
		p.PadStart < 0 || p.PadEnd < p.PadStart {
		return nil, fmt.Errorf("%s: %w", name, ErrInvalidRange)
	}
	recalls, err := f(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	logger.Debugf("fx %s: created %d recalls on %s", name, len(recalls), p.Audio.Name())
	return recalls, nil
}

// output reports if channel level recalls go to outputs.
func (p Params) output() bool {
	return p.CreateFlags&Output != 0
}

// channels returns channels of the range.
func (p Params) channels() []*audio.Channel {
	var channels []*audio.Channel
	output := p.output()
	for pad := p.PadStart; pad < p.PadEnd; pad++ {
		for ch := p.AudioChannelStart; ch < p.AudioChannelEnd; ch++ {
			if c := p.Audio.Channel(output, pad, ch); c != nil {
				channels = append(channels, c)
			}
		}
	}
	return channels
}

// containers returns play and recall container with the list flag.
func (p Params) containers() []struct {
	c    *audio.Container
	play bool
} {
	return []struct {
		c    *audio.Container
		play bool
	}{
		{c: p.PlayContainer, play: true},
		{c: p.RecallContainer, play: false},
	}
}

// addAudio registers audio level recall r in container c and the play or
// recall list of audio.
func (p Params) addAudio(c *audio.Container, play bool, recalls ...*audio.Recall) {
	p.Audio.AddRecallContainer(c)
	position := p.Position
	for _, r := range recalls {
		r.SetFlags(p.RecallFlags)
		c.Add(r)
		p.Audio.InsertRecall(r, play, position)
		if position >= 0 {
			position++
		}
	}
}

// addChannel registers channel level recall r in container c and the play
// or recall list of its channel.
func (p Params) addChannel(c *audio.Container, play bool, recalls ...*audio.Recall) {
	orientation := audio.InputOrientated
	if p.output() {
		orientation = audio.OutputOrientated
	}
	position := p.Position
	for _, r := range recalls {
		r.SetFlags(p.RecallFlags | orientation)
		ch := r.Channel()
		ch.AddRecallContainer(c)
		c.Add(r)
		ch.InsertRecall(r, play, position)
		if position >= 0 {
			position++
		}
	}
}
