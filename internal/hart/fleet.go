package hart

// fleet.go implements the multi-hart runner: N harts sharing one physical
// memory image, one reservation table, and a monotonic time counter,
// driven by one goroutine per hart under an errgroup so the first hart to
// fail (a host-simulator error, not an architectural trap) cancels the
// others cleanly -- grounded on maxnasonov-gvisor's use of
// golang.org/x/sync/errgroup for its own per-goroutine worker fleet,
// wired into SPEC_FULL.md's Fleet component rather than the VM-level
// demultiplexing the teacher itself has no analog for.

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// SharedClock is the monotonic counter every hart in a Fleet reads for the
// `time` CSR, advanced by one designated driver (or by the fleet itself
// between rounds) and downsampled by a configurable power-of-two divisor
// so per-cycle granularity doesn't have to match per-hart instruction
// rate 1:1.
type SharedClock struct {
	raw      atomic.Uint64
	divisorLog2 uint
}

// NewSharedClock creates a clock that advances by `ticks` raw units per
// Advance call, exposing raw>>divisorLog2 as the architectural time value.
func NewSharedClock(divisorLog2 uint) *SharedClock {
	return &SharedClock{divisorLog2: divisorLog2}
}

func (c *SharedClock) Advance(ticks uint64) { c.raw.Add(ticks) }

func (c *SharedClock) Read() uint64 { return c.raw.Load() >> c.divisorLog2 }

// TiedCSR identifies a CSR address shared verbatim across every hart in a
// group (e.g. a platform-level HGEIP mirrored to every VS context),
// protected by a per-group mutex since harts run concurrently.
type TiedCSR struct {
	mu   sync.Mutex
	addr uint16
}

// Fleet runs a group of harts concurrently, each on its own goroutine,
// sharing one Memory, one ReservationTable and one SharedClock.
type Fleet struct {
	Harts []*Hart
	Mem   *Memory
	Resv  *ReservationTable
	Clock *SharedClock
}

// NewFleet constructs n harts from the given per-hart configs (len(cfgs)
// == n), all sharing mem and a single reservation table.
func NewFleet(cfgs []Config, mem *Memory, clockDivisorLog2 uint) (*Fleet, error) {
	resv := NewReservationTable()
	clock := NewSharedClock(clockDivisorLog2)
	harts := make([]*Hart, len(cfgs))

	for i, cfg := range cfgs {
		cfg.HartIndex = uint(i)

		h, err := NewHart(cfg, mem, resv)
		if err != nil {
			return nil, err
		}

		h.Clock = clock
		harts[i] = h
	}

	return &Fleet{Harts: harts, Mem: mem, Resv: resv, Clock: clock}, nil
}

// FleetOutcome pairs a hart index with the StepOutcome and instruction
// count its Run call returned.
type FleetOutcome struct {
	HartIndex uint
	Outcome   StepOutcome
	Retired   uint64
	Err       error
}

// RunAll runs every hart's Run(budget) concurrently via an errgroup,
// returning once every hart has stopped retiring or ctx is cancelled.
// Unlike a single hart's Run, a per-hart error here means a host-side
// problem (e.g. a snapshot restore failure surfaced mid-run through a
// hart's own bookkeeping), not an architectural trap -- an architectural
// trap is a normal StepOutcome, not a Go error.
func (f *Fleet) RunAll(ctx context.Context, budget uint64) []FleetOutcome {
	results := make([]FleetOutcome, len(f.Harts))

	g, gctx := errgroup.WithContext(ctx)

	for i, h := range f.Harts {
		i, h := i, h

		g.Go(func() error {
			var n uint64

			for budget == 0 || n < budget {
				select {
				case <-gctx.Done():
					results[i] = FleetOutcome{HartIndex: uint(i), Outcome: OutcomeTerminated, Retired: n}
					return nil
				default:
				}

				outcome := h.Step()
				f.Clock.Advance(1)

				if outcome == OutcomeRetired {
					n++
					continue
				}

				results[i] = FleetOutcome{HartIndex: uint(i), Outcome: outcome, Retired: n}

				return nil
			}

			results[i] = FleetOutcome{HartIndex: uint(i), Outcome: OutcomeRetired, Retired: n}

			return nil
		})
	}

	_ = g.Wait()

	return results
}
