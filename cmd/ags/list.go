package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/gsequencer/ags/audio/fx"
	"github.com/gsequencer/ags/pitch"
	"github.com/gsequencer/ags/plugin"
)

type listCommand struct{}

func (cmd *listCommand) Name() string {
	return "list"
}

func (cmd *listCommand) Help() string {
	return "Show the list of available effects"
}

func (cmd *listCommand) Register(fs *flag.FlagSet) {}

func (cmd *listCommand) Run(out io.Writer) error {
	fmt.Fprintf(out, "Effects:\n %v\n", fx.Names())
	fmt.Fprintf(out, "Plugins:\n %v\n", plugin.Effects())
	fmt.Fprintf(out, "Pitch algorithms:\n %v\n", pitch.Types())
	return nil
}
