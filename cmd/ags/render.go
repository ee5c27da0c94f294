package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/task"
	"github.com/gsequencer/ags/audio/thread"
	"github.com/gsequencer/ags/config"
	"github.com/gsequencer/ags/file"
	"github.com/gsequencer/ags/log"
	"github.com/gsequencer/ags/machine"
	"github.com/gsequencer/ags/notation"
	"github.com/gsequencer/ags/plugin"
)

var logger log.Logger = log.Component(log.GetLogger(), "render")

// ErrInvalidNote is returned for notes not in x0:x1:y form.
var ErrInvalidNote = errors.New("invalid note")

type renderCommand struct {
	out      string
	save     string
	config   string
	effect   string
	notes    stringList
	ticks    int
	pads     int
	bitDepth int
}

func (cmd *renderCommand) Name() string {
	return "render"
}

func (cmd *renderCommand) Help() string {
	return "Render notes with a synth into a wav file"
}

func (cmd *renderCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.out, "out", "", "output wav file (required)")
	fs.StringVar(&cmd.save, "save", "", "file to save the synth recalls as xml")
	fs.StringVar(&cmd.config, "config", "", "yaml config file")
	fs.StringVar(&cmd.effect, "effect", plugin.SineEffect, "plugin effect of the synth")
	fs.Var(&cmd.notes, "notes", "semicolon separated notes as x0:x1:y (required)")
	fs.IntVar(&cmd.ticks, "ticks", 256, "number of buffers to render")
	fs.IntVar(&cmd.pads, "pads", 12, "number of input pads")
	fs.IntVar(&cmd.bitDepth, "bitdepth", 16, "bit depth of output file")
}

func (cmd *renderCommand) Validate() error {
	var message string
	if cmd.out == "" {
		message = message + "Missing -out required flag\n"
	}
	if len(cmd.notes) == 0 {
		message = message + "Missing -notes required flag\n"
	}
	if cmd.ticks <= 0 || cmd.pads <= 0 {
		message = message + "Flags -ticks and -pads must be positive\n"
	}
	if message != "" {
		return errors.New(message)
	}
	return nil
}

func (cmd *renderCommand) Run(out io.Writer) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	notes, err := parseNotes(cmd.notes)
	if err != nil {
		return err
	}
	c := config.Default()
	if cmd.config != "" {
		if c, err = config.Load(cmd.config); err != nil {
			return err
		}
	}

	a := audio.NewAudio(
		audio.Named("render"),
		audio.WithConfig(c),
		audio.WithAudioAbility(audio.AbilityNotation),
		audio.WithMapping(0, cmd.pads, 60, 60+cmd.pads),
	)
	a.SetAudioChannels(c.PcmChannels())
	a.SetPads(true, 1)
	a.SetPads(false, cmd.pads)
	m := machine.NewSynth(a, "", cmd.effect)
	if err := m.MapRecall(); err != nil {
		return err
	}
	for ch := 0; ch < a.AudioChannels(); ch++ {
		for _, n := range notes {
			a.AddNote(ch, notation.NewNote(n.X0, n.X1, n.Y))
		}
	}
	if cmd.save != "" {
		if err := saveRecalls(cmd.save, a); err != nil {
			return err
		}
	}

	sink, err := newWavSink(cmd.out, a.Samplerate(), a.AudioChannels(), cmd.bitDepth)
	if err != nil {
		return err
	}
	l := thread.New(
		thread.WithBufferTime(a.Samplerate(), a.BufferSize()),
		thread.WithLogger(logger),
	)
	l.Tasks().ScheduleTaskAll(
		task.AddAudio(l, a),
		task.StartAudio(a, audio.ScopeNotation),
	)
	for i := 0; i < cmd.ticks; i++ {
		if err := l.Tick(); err != nil {
			sink.close()
			return err
		}
		if err := sink.write(outputs(a)); err != nil {
			sink.close()
			return err
		}
	}
	l.Tasks().ScheduleTask(task.RemoveAudio(l, a))
	if err := l.Tick(); err != nil {
		logger.Warnf("render: %v", err)
	}
	if err := sink.close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Rendered %d buffers into %s\n", cmd.ticks, cmd.out)
	return nil
}

// outputs returns buffers of the first output pad. Silence is returned
// once the run is done.
func outputs(a *audio.Audio) [][]float64 {
	live := len(a.RecallIDs()) > 0
	channels := a.Pad(true, 0)
	result := make([][]float64, len(channels))
	for i, c := range channels {
		data := make([]float64, a.BufferSize())
		if live {
			copy(data, c.Recycling().Template().Buffer().Data)
		}
		result[i] = data
	}
	return result
}

func saveRecalls(path string, a *audio.Audio) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := file.Write(f, file.Containers(a)...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseNotes parses x0:x1:y notes.
func parseNotes(values []string) ([]*notation.Note, error) {
	notes := make([]*notation.Note, 0, len(values))
	for _, v := range values {
		parts := strings.Split(v, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%q: %w", v, ErrInvalidNote)
		}
		var n [3]uint64
		for i, p := range parts {
			x, err := strconv.ParseUint(p, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", v, ErrInvalidNote)
			}
			n[i] = x
		}
		if n[1] <= n[0] {
			return nil, fmt.Errorf("%q: %w", v, ErrInvalidNote)
		}
		notes = append(notes, notation.NewNote(n[0], n[1], uint32(n[2])))
	}
	return notes, nil
}
