// Command whisper is the command-line interface to a RISC-V hart simulator core.
package main

import (
	"context"
	"os"

	"github.com/tenstorrent/whisper-sub006/internal/cli"
	"github.com/tenstorrent/whisper-sub006/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Runner(),
	cmd.Stepper(),
	cmd.Disassembler(),
	cmd.Snapshotter(),
}

// Entry point.
func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
