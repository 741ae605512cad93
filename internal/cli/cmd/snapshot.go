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

// Snapshotter returns the `snapshot` command: run an image for a budget of
// instructions, then write the hart's architectural state.
func Snapshotter() cli.Command {
	return &snapshotter{budget: 1000}
}

type snapshotter struct {
	budget uint64
	out    string
}

func (snapshotter) Description() string {
	return "run a flat memory image and write a hart snapshot"
}

func (snapshotter) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `snapshot image.bin

Loads a flat binary image, runs it for -budget instructions (or until
it terminates, if sooner), then writes the hart's register and CSR
state to -out in the line-oriented snapshot format.`)

	return err
}

func (s *snapshotter) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	fs.Uint64Var(&s.budget, "budget", 1000, "instructions to run before snapshotting")
	fs.StringVar(&s.out, "out", "snapshot.txt", "snapshot output path")

	return fs
}

func (s *snapshotter) Run(_ context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if len(args) == 0 {
		logger.Error("snapshot requires an image argument")
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

	outcome, n := h.Run(s.budget)
	logger.Info("stopped", "outcome", outcome.String(), "retired", n)

	f, err := os.Create(s.out)
	if err != nil {
		logger.Error("error creating snapshot file", "err", err)
		return -1
	}
	defer f.Close()

	if err := h.WriteSnapshot(f); err != nil {
		logger.Error("error writing snapshot", "err", err)
		return -1
	}

	fmt.Fprintf(stdout, "wrote snapshot to %s\n", s.out)

	return 0
}
