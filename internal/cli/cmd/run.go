package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tenstorrent/whisper-sub006/internal/cli"
	"github.com/tenstorrent/whisper-sub006/internal/hart"
	"github.com/tenstorrent/whisper-sub006/internal/log"
)

// Runner returns the `run` command: load a flat binary image at the hart's
// reset PC and run it until the hart stops.
func Runner() cli.Command {
	return &runner{log: log.DefaultLogger()}
}

type runner struct {
	logLevel slog.Level
	budget   uint64
	log      *log.Logger
}

func (runner) Description() string {
	return "run a flat memory image on a hart"
}

func (runner) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `run image.bin

Loads a flat binary image at the hart's reset PC and runs it until the
hart takes a trap, stops on a debug trigger, or the instruction budget is
exhausted.`)

	return err
}

func (r *runner) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Func("loglevel", "set log `level`", func(s string) error {
		return r.logLevel.UnmarshalText([]byte(s))
	})
	fs.Uint64Var(&r.budget, "budget", 0, "maximum instructions to retire (0: unbounded)")

	return fs
}

func (r *runner) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	log.LogLevel.Set(r.logLevel)

	if len(args) == 0 {
		logger.Error("run requires an image argument")
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

	h.SetTraceSink(traceLogger{logger})

	logger.Info("starting hart", "resetpc", fmt.Sprintf("%#x", cfg.ResetPC), "bytes", len(image))

	outcome, n := h.Run(r.budget)

	logger.Info("stopped", "outcome", outcome.String(), "retired", n, "pc", fmt.Sprintf("%#x", h.PC))

	if outcome == hart.OutcomeTerminated {
		return 0
	}

	return 1
}

// traceLogger adapts a *log.Logger to hart.TraceSink, emitting one debug
// line per Step, whether the instruction retired, trapped or stopped.
type traceLogger struct {
	log *log.Logger
}

func (t traceLogger) Trace(rec hart.TraceRecord) {
	t.log.Debug("step",
		"pc", fmt.Sprintf("%#x", rec.PC),
		"op", rec.Op.String(),
		"outcome", rec.Outcome.String(),
	)
}
