// Package tty_test tries to test ttys.
//
// The test is skipped when stdin is not a terminal (ErrNoTTY). Notably, this includes when run with
// "go test" because it redirects tests' standard input/output streams. You can test it by building
// a test binary and running it directly:
//
//	$ go test -c && ./tty.test
package tty_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tenstorrent/whisper-sub006/internal/hart"
	"github.com/tenstorrent/whisper-sub006/internal/tty"
)

type testHarness struct {
	*testing.T
}

const timeout = 100 * time.Millisecond

func (testHarness) Context() (context.Context, context.CancelFunc) {
	ctx := context.Background()
	return context.WithTimeoutCause(ctx, timeout, context.DeadlineExceeded)
}

func newTestHart(t *testing.T) *hart.Hart {
	t.Helper()

	cfg := hart.DefaultConfig()

	mem, err := hart.NewMemory(0, 1<<20, cfg.PMA)
	if err != nil {
		t.Fatalf("mem: %s", err)
	}

	h, err := hart.NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("hart: %s", err)
	}

	return h
}

func TestTerminal(tt *testing.T) {
	t := testHarness{tt}
	h := newTestHart(tt)

	ctx, cancel := t.Context()
	defer cancel()

	ctx, console, cancel := tty.ConsoleContext(ctx, h)
	defer cancel()

	if err := context.Cause(ctx); errors.Is(err, tty.ErrNoTTY) {
		t.Skipf("error: %s", context.Cause(ctx))
		t.SkipNow()
	}

	stepped := make(chan struct{})

	go func() {
		defer close(stepped)
		console.Press('s')
	}()

	select {
	case <-ctx.Done(): // Just wait.
	case <-stepped:
	}

	cancel()

	if err := ctx.Err(); err != nil {
		t.Errorf("cause: %s", err)
	}
}
