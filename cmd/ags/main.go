package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

type app struct {
	args []string
	out  io.Writer
}

type command interface {
	Name() string
	Help() string
	Run(out io.Writer) error
	Register(*flag.FlagSet)
}

func (app *app) run() int {
	cmdName, args := parseArgs(app.args)
	if cmdName == "" {
		printUsage(app.out)
		return errorExitCode
	}

	for _, cmd := range commands() {
		if cmd.Name() == cmdName {
			flags := flag.NewFlagSet(cmdName, flag.ContinueOnError)
			cmd.Register(flags)
			if err := flags.Parse(args); err != nil {
				return errorExitCode
			}
			if err := cmd.Run(app.out); err != nil {
				fmt.Fprintf(app.out, "Command failed: %v\n", err)
				return errorExitCode
			}
			return successExitCode
		}
	}
	printUsage(app.out)
	return errorExitCode
}

var (
	successExitCode = 0
	errorExitCode   = 1
)

func commands() []command {
	return []command{&listCommand{}, &renderCommand{}}
}

func main() {
	c := app{
		args: os.Args,
		out:  os.Stdout,
	}
	os.Exit(c.run())
}

func parseArgs(args []string) (string, []string) {
	if len(args) < 2 {
		return "", nil
	}
	return args[1], args[2:]
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "ags renders notation with the audio engine")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: ags <command>")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range commands() {
		fmt.Fprintf(out, "\t%s\t%s\n", cmd.Name(), cmd.Help())
	}
}

// stringList is a semicolon separated flag value.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ";")
}

func (l *stringList) Set(value string) error {
	for _, v := range strings.Split(value, ";") {
		if v = strings.TrimSpace(v); v != "" {
			*l = append(*l, v)
		}
	}
	return nil
}
