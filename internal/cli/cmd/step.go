package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tenstorrent/whisper-sub006/internal/cli"
	"github.com/tenstorrent/whisper-sub006/internal/hart"
	"github.com/tenstorrent/whisper-sub006/internal/log"
)

// Stepper returns the `step` command: single-step a hart a fixed number of
// times, printing one line per retired or trapped instruction.
func Stepper() cli.Command {
	return &stepper{count: 1}
}

type stepper struct {
	count uint64
}

func (stepper) Description() string {
	return "single-step a hart over a flat memory image"
}

func (stepper) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `step image.bin

Loads a flat binary image at the hart's reset PC and steps it -count
times, printing the PC, decoded op and outcome of each step.`)

	return err
}

func (s *stepper) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("step", flag.ExitOnError)
	fs.Uint64Var(&s.count, "count", 1, "number of instructions to step")

	return fs
}

func (s *stepper) Run(_ context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if len(args) == 0 {
		logger.Error("step requires an image argument")
		return -1
	}

	image, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("error loading image", "err", err)
		return -1
	}

	cfg := hart.DefaultConfig()

	mem, err := hart.NewMemory(0, 1<<24, cfg.PMA)
	if err != nil {
		logger.Error("error allocating memory", "err", err)
		return -1
	}

	for i, b := range image {
		if err := mem.StorePhysical(cfg.ResetPC+uint64(i), 1, uint64(b), false); err != nil {
			logger.Error("error loading image into memory", "err", err)
			return -1
		}
	}

	h, err := hart.NewHart(cfg, mem, nil)
	if err != nil {
		logger.Error("error constructing hart", "err", err)
		return -1
	}

	for i := uint64(0); i < s.count; i++ {
		pc := h.PC
		outcome := h.Step()

		fmt.Fprintf(stdout, "%04d  pc=%#010x  %s\n", i, pc, outcome)

		if outcome != hart.OutcomeRetired && outcome != hart.OutcomeTrapTaken {
			break
		}
	}

	return 0
}
