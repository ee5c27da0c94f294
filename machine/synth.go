package machine

import (
	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/audio/fx"
)

// NewSynth returns a notation driven instrument: the plugin effect renders
// notes routed to input pads, volume scales the inputs and playback mixes
// them into the outputs.
func NewSynth(a *audio.Audio, filename, effect string) *Machine {
	a.SetFlags(audio.AudioHasNotation)
	return New(a,
		&Effect{Name: fx.NotationFx, Position: -1},
		&Effect{Name: fx.PluginFx, Filename: filename, Effect: effect, Live: true, Position: -1},
		&Effect{Name: fx.VolumeFx, Position: -1},
		&Effect{Name: fx.PlaybackFx, Output: true, Position: -1},
	)
}

// NewPanel returns a machine passing its inputs through to the outputs.
func NewPanel(a *audio.Audio) *Machine {
	return New(a,
		&Effect{Name: fx.VolumeFx, Position: -1},
		&Effect{Name: fx.PlaybackFx, Output: true, Position: -1},
	)
}
