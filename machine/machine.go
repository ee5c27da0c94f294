// Package machine maps effects onto the channels of an audio and keeps the
// mapping in sync when the audio is resized.
package machine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/fx"
	"github.com/gsequencer/ags/log"
)

var logger log.Logger = log.GetLogger()

// Flags of a machine.
type Flags uint32

const (
	// MappedRecall is set once the effects are mapped.
	MappedRecall Flags = 1 << iota
	// PremappedRecall is set when recalls were created elsewhere, e.g. read
	// from a file, and must not be mapped again.
	PremappedRecall
)

// Effect is a named effect slot of a machine. Each slot owns its play and
// recall containers. Recalls are inserted at Position of the lists,
// appended if it's negative.
type Effect struct {
	Name        string
	Filename    string
	Effect      string
	Output      bool
	Live        bool
	Position    int
	RecallFlags audio.Flags

	play   *audio.Container
	recall *audio.Container
}

// Containers returns play and recall container of effect.
func (e *Effect) Containers() (play, recall *audio.Container) {
	return e.play, e.recall
}

func (e *Effect) flags(mode fx.CreateFlags) fx.CreateFlags {
	flags := mode | fx.Input
	if e.Output {
		flags = mode | fx.Output
	}
	if e.Live {
		flags |= fx.Live
	}
	return flags
}

// Mapped holds the counters of mapped pads and audio channels.
type Mapped struct {
	InputPad           int
	OutputPad          int
	InputAudioChannel  int
	OutputAudioChannel int
}

// MapFunc is called for every input or output map call.
type MapFunc func(output bool, audioChannelStart, padStart int)

// line identifies a channel by pad and audio channel.
type line struct {
	pad          int
	audioChannel int
}

// Machine binds effects to an audio.
type Machine struct {
	audio   *audio.Audio
	effects []*Effect

	mu          sync.Mutex
	flags       Flags
	mapped      Mapped
	inputLines  map[line]bool
	outputLines map[line]bool
	mapHandlers []MapFunc
}

// New creates a machine for audio with effects in their mapping order.
// Resizes of the audio are followed once the machine is mapped.
func New(a *audio.Audio, effects ...*Effect) *Machine {
	m := &Machine{
		audio:       a,
		effects:     effects,
		inputLines:  make(map[line]bool),
		outputLines: make(map[line]bool),
	}
	for _, e := range effects {
		e.play = audio.NewContainer()
		e.recall = audio.NewContainer()
	}
	a.OnResizeAudioChannels(func(_ *audio.Audio, n, old int) {
		m.ResizeAudioChannels(n, old)
	})
	a.OnResizePads(func(_ *audio.Audio, output bool, n, old int) {
		m.ResizePads(output, n, old)
	})
	return m
}

// Audio returns audio of the machine.
func (m *Machine) Audio() *audio.Audio {
	return m.audio
}

// Effects returns effect slots of the machine.
func (m *Machine) Effects() []*Effect {
	return m.effects
}

// Effect returns slot of effect name or nil.
func (m *Machine) Effect(name string) *Effect {
	for _, e := range m.effects {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// TestFlags returns true if all of f are set.
func (m *Machine) TestFlags(f Flags) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags&f == f
}

// SetFlags sets f.
func (m *Machine) SetFlags(f Flags) {
	m.mu.Lock()
	m.flags |= f
	m.mu.Unlock()
}

// Mapped returns the mapped counters.
func (m *Machine) Mapped() Mapped {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mapped
}

// OnMap registers handler called for every input or output map call.
func (m *Machine) OnMap(fn MapFunc) {
	m.mu.Lock()
	m.mapHandlers = append(m.mapHandlers, fn)
	m.mu.Unlock()
}

// MapRecall creates the audio level recalls of every effect and maps all
// existing channels. It's a no-op for mapped and premapped machines.
func (m *Machine) MapRecall() error {
	m.mu.Lock()
	if m.flags&(MappedRecall|PremappedRecall) != 0 {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	var errs mapErrors
	for _, e := range m.effects {
		if _, err := fx.Create(m.audio, e.play, e.recall, e.Name, e.Filename, e.Effect,
			0, 0, 0, 0, e.Position, e.flags(fx.Add), e.RecallFlags); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errs.ret(); err != nil {
		return fmt.Errorf("map %s: %w", m.audio.Name(), err)
	}
	if err := m.InputMapRecall(0, 0); err != nil {
		return err
	}
	if err := m.OutputMapRecall(0, 0); err != nil {
		return err
	}
	m.SetFlags(MappedRecall)
	return nil
}

// InputMapRecall maps input channels from pad and audio channel start.
// Channels mapped already are skipped.
func (m *Machine) InputMapRecall(audioChannelStart, padStart int) error {
	return m.mapRecall(false, audioChannelStart, padStart)
}

// OutputMapRecall maps output channels from pad and audio channel start.
// Channels mapped already are skipped.
func (m *Machine) OutputMapRecall(audioChannelStart, padStart int) error {
	return m.mapRecall(true, audioChannelStart, padStart)
}

func (m *Machine) mapRecall(output bool, audioChannelStart, padStart int) error {
	m.mu.Lock()
	handlers := make([]MapFunc, len(m.mapHandlers))
	copy(handlers, m.mapHandlers)
	m.mu.Unlock()
	for _, h := range handlers {
		h(output, audioChannelStart, padStart)
	}

	pads := m.audio.Pads(output)
	audioChannels := m.audio.AudioChannels()
	var errs mapErrors
	for pad := padStart; pad < pads; pad++ {
		for ch := audioChannelStart; ch < audioChannels; ch++ {
			l := line{pad: pad, audioChannel: ch}
			if m.isMapped(output, l) {
				continue
			}
			for _, e := range m.effects {
				if e.Output != output {
					continue
				}
				if _, err := fx.Create(m.audio, e.play, e.recall, e.Name, e.Filename, e.Effect,
					ch, ch+1, pad, pad+1, e.Position, e.flags(fx.Remap), e.RecallFlags); err != nil {
					errs = append(errs, err)
				}
			}
			m.setMapped(output, l)
		}
	}

	m.mu.Lock()
	if output {
		m.mapped.OutputAudioChannel = audioChannels
		m.mapped.OutputPad = pads
	} else {
		m.mapped.InputAudioChannel = audioChannels
		m.mapped.InputPad = pads
	}
	m.mu.Unlock()
	return errs.ret()
}

func (m *Machine) lines(output bool) map[line]bool {
	if output {
		return m.outputLines
	}
	return m.inputLines
}

func (m *Machine) isMapped(output bool, l line) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lines(output)[l]
}

func (m *Machine) setMapped(output bool, l line) {
	m.mu.Lock()
	m.lines(output)[l] = true
	m.mu.Unlock()
}

// ResizeAudioChannels maps the added audio channels of a mapped machine.
// Shrinking forgets the removed channels.
func (m *Machine) ResizeAudioChannels(n, old int) {
	if n <= old {
		m.mu.Lock()
		for _, lines := range []map[line]bool{m.inputLines, m.outputLines} {
			for l := range lines {
				if l.audioChannel >= n {
					delete(lines, l)
				}
			}
		}
		m.mapped.InputAudioChannel = n
		m.mapped.OutputAudioChannel = n
		m.mu.Unlock()
		return
	}
	if !m.TestFlags(MappedRecall) {
		return
	}
	if err := m.InputMapRecall(old, 0); err != nil {
		logger.Warnf("machine %s: %v", m.audio.Name(), err)
	}
	if err := m.OutputMapRecall(old, 0); err != nil {
		logger.Warnf("machine %s: %v", m.audio.Name(), err)
	}
}

// ResizePads maps the added pads of a mapped machine. Shrinking forgets
// the removed pads.
func (m *Machine) ResizePads(output bool, n, old int) {
	if n <= old {
		m.mu.Lock()
		lines := m.lines(output)
		for l := range lines {
			if l.pad >= n {
				delete(lines, l)
			}
		}
		if output {
			m.mapped.OutputPad = n
		} else {
			m.mapped.InputPad = n
		}
		m.mu.Unlock()
		return
	}
	if !m.TestFlags(MappedRecall) {
		return
	}
	var err error
	if output {
		err = m.OutputMapRecall(0, old)
	} else {
		err = m.InputMapRecall(0, old)
	}
	if err != nil {
		logger.Warnf("machine %s: %v", m.audio.Name(), err)
	}
}

// mapErrors is a list of errors occurred while mapping.
type mapErrors []error

func (e mapErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e), []error(e))
}

// Is reports if any of errors matches target.
func (e mapErrors) Is(target error) bool {
	for _, err := range e {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ret returns untyped nil if list is empty.
func (e mapErrors) ret() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
