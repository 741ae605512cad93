package hart

import "testing"

func hypervisorConfig() Config {
	cfg := DefaultConfig()
	cfg.Extensions = NewExtensionSet(ExtM, ExtA, ExtC, ExtS, ExtU, ExtH, ExtZicntr)

	return cfg
}

// TestHypervisorExceptionDelegationHonoursHedeleg: an EBREAK taken while
// running in VS must stay in VS when HEDELEG delegates the cause further,
// and exit to HS when it doesn't -- DelegationTarget's enterGuest return,
// not the pre-trap Virtual flag, decides which.
func TestHypervisorExceptionDelegationHonoursHedeleg(t *testing.T) {
	cfg := hypervisorConfig()

	run := func(t *testing.T, hedelegBit uint64) *Hart {
		t.Helper()

		mem := newTestMemory(t, cfg.ResetPC, 0x100, cfg.PMA)

		ebreak := uint32(0x0010_0073)
		if err := mem.StorePhysical(cfg.ResetPC, 4, uint64(ebreak), false); err != nil {
			t.Fatalf("seed instruction: %v", err)
		}

		h, err := NewHart(cfg, mem, nil)
		if err != nil {
			t.Fatalf("NewHart: %v", err)
		}

		h.Priv = PrivSupervisor
		h.Virtual = true

		h.CSR.Poke(CSRMedeleg, uint64(1)<<uint(ExcBreakpoint))
		h.CSR.Poke(CSRHedeleg, hedelegBit)

		outcome := h.Step()
		if outcome != OutcomeTrapTaken {
			t.Fatalf("outcome = %v, want trap-taken", outcome)
		}

		return h
	}

	t.Run("delegated to VS", func(t *testing.T) {
		h := run(t, uint64(1)<<uint(ExcBreakpoint))

		if h.Priv != PrivSupervisor || !h.Virtual {
			t.Fatalf("priv=%v virtual=%v, want S/virtual (VS)", h.Priv, h.Virtual)
		}

		if got := h.CSR.PeekRaw(CSRVsepc); got != cfg.ResetPC {
			t.Fatalf("vsepc = %#x, want %#x", got, cfg.ResetPC)
		}

		if got := h.CSR.PeekRaw(CSRSepc); got != 0 {
			t.Fatalf("sepc = %#x, want untouched (0)", got)
		}
	})

	t.Run("exits to HS", func(t *testing.T) {
		h := run(t, 0)

		if h.Priv != PrivSupervisor || h.Virtual {
			t.Fatalf("priv=%v virtual=%v, want S/non-virtual (HS)", h.Priv, h.Virtual)
		}

		if got := h.CSR.PeekRaw(CSRSepc); got != cfg.ResetPC {
			t.Fatalf("sepc = %#x, want %#x", got, cfg.ResetPC)
		}

		if got := h.CSR.PeekRaw(CSRVsepc); got != 0 {
			t.Fatalf("vsepc = %#x, want untouched (0)", got)
		}
	})
}

// TestVSLevelInterruptRoutesToVS: a VS-timer interrupt delegated by HIDELEG
// and pending in HVIP is only taken while the hart is virtualized, and
// lands in VS, not HS or M.
func TestVSLevelInterruptRoutesToVS(t *testing.T) {
	cfg := hypervisorConfig()
	mem := newTestMemory(t, cfg.ResetPC, 0x100, cfg.PMA)

	nop := encIType(0b0010011, 0, 0, 0, 0)
	if err := mem.StorePhysical(cfg.ResetPC, 4, uint64(nop), false); err != nil {
		t.Fatalf("seed instruction: %v", err)
	}

	h, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart: %v", err)
	}

	h.Priv = PrivSupervisor
	h.Virtual = true

	const vsTimerBit = uint64(1) << 6  // HVIP/HIDELEG cause-numbered bit (cause 6)
	const vsieTimerBit = uint64(1) << 5 // VSIE's sie-shaped view of the same cause

	h.CSR.Poke(CSRHideleg, vsTimerBit)
	h.CSR.Poke(CSRHvip, vsTimerBit)
	h.CSR.Poke(CSRVsie, vsieTimerBit)
	h.CSR.Poke(CSRVsstatus, MstatusSIE)

	cause, ok := PendingInterrupt(h.CSR, TrapState{Priv: h.Priv, Virtual: h.Virtual}, cfg.InterruptPriority)
	if !ok || cause != IntVirtualSupervisorTimer {
		t.Fatalf("PendingInterrupt = (%v, %v), want (IntVirtualSupervisorTimer, true)", cause, ok)
	}

	outcome := h.Step()
	if outcome != OutcomeTrapTaken {
		t.Fatalf("outcome = %v, want trap-taken", outcome)
	}

	if h.Priv != PrivSupervisor || !h.Virtual {
		t.Fatalf("priv=%v virtual=%v, want S/virtual (VS)", h.Priv, h.Virtual)
	}

	if got := h.CSR.PeekRaw(CSRVscause); got&(1<<63) == 0 || InterruptCause(got&0xff) != IntVirtualSupervisorTimer {
		t.Fatalf("vscause = %#x, want interrupt bit set and cause %d", got, IntVirtualSupervisorTimer)
	}
}

// TestVSLevelInterruptNeverTakenOutsideGuest: the same pending VS-timer
// interrupt must not be taken while the hart isn't virtualized -- it's the
// guest's own interrupt, not the host's.
func TestVSLevelInterruptNeverTakenOutsideGuest(t *testing.T) {
	cfg := hypervisorConfig()

	csr := NewCSRFile()

	const vsTimerBit = uint64(1) << 6

	csr.Poke(CSRHideleg, vsTimerBit)
	csr.Poke(CSRHvip, vsTimerBit)
	csr.Poke(CSRVsie, uint64(1)<<5)
	csr.Poke(CSRVsstatus, MstatusSIE)

	if _, ok := PendingInterrupt(csr, TrapState{Priv: PrivSupervisor, Virtual: false}, cfg.InterruptPriority); ok {
		t.Fatalf("PendingInterrupt fired for a VS cause while not virtualized")
	}
}
