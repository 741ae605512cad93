package hart

import (
	"context"
	"testing"
)

// TestFleetRunAllAdvancesSharedClock exercises NewFleet/RunAll end-to-end:
// two harts sharing one memory image each retire a run of NOPs
// concurrently, and the `time` CSR each hart reads back must never exceed
// the fleet's shared clock.
func TestFleetRunAllAdvancesSharedClock(t *testing.T) {
	cfg := DefaultConfig()
	mem := newTestMemory(t, cfg.ResetPC, 0x100, cfg.PMA)

	nop := encIType(0b0010011, 0, 0, 0, 0) // addi x0, x0, 0

	for i := uint64(0); i < 8; i++ {
		if err := mem.StorePhysical(cfg.ResetPC+i*4, 4, uint64(nop), false); err != nil {
			t.Fatalf("seed instruction %d: %v", i, err)
		}
	}

	const budget = 5

	fleet, err := NewFleet([]Config{cfg, cfg}, mem, 0)
	if err != nil {
		t.Fatalf("NewFleet: %v", err)
	}

	for i, h := range fleet.Harts {
		if h.Clock != fleet.Clock {
			t.Fatalf("hart %d: Clock not wired to the fleet's shared clock", i)
		}
	}

	results := fleet.RunAll(context.Background(), budget)

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	for _, r := range results {
		if r.Outcome != OutcomeRetired {
			t.Fatalf("hart %d: outcome = %v, want retired", r.HartIndex, r.Outcome)
		}

		if r.Retired != budget {
			t.Fatalf("hart %d: retired = %d, want %d", r.HartIndex, r.Retired, budget)
		}
	}

	if got := fleet.Clock.Read(); got != 2*budget {
		t.Fatalf("Clock.Read() = %d, want %d", got, 2*budget)
	}

	for i, h := range fleet.Harts {
		if got := h.CSR.PeekRaw(CSRTime); got > fleet.Clock.Read() {
			t.Fatalf("hart %d: time CSR = %d, want <= %d", i, got, fleet.Clock.Read())
		}
	}
}

// fleetPerfCounter is a test ExternalDevice that counts how many times it
// was notified, exercising the attach_perfapi hook.
type fleetPerfCounter struct {
	notifications int
}

func (p *fleetPerfCounter) Notify(hartIndex uint, retired uint64) {
	p.notifications++
}

func TestHartNotifiesAttachedPerfAPIOnEveryRetire(t *testing.T) {
	cfg := DefaultConfig()
	mem := newTestMemory(t, cfg.ResetPC, 0x100, cfg.PMA)

	nop := encIType(0b0010011, 0, 0, 0, 0)

	for i := uint64(0); i < 3; i++ {
		if err := mem.StorePhysical(cfg.ResetPC+i*4, 4, uint64(nop), false); err != nil {
			t.Fatalf("seed instruction %d: %v", i, err)
		}
	}

	h, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart: %v", err)
	}

	perf := &fleetPerfCounter{}
	h.AttachPerfAPI(perf)

	if _, n := h.Run(3); n != 3 {
		t.Fatalf("retired = %d, want 3", n)
	}

	if perf.notifications != 3 {
		t.Fatalf("perf.notifications = %d, want 3", perf.notifications)
	}
}
