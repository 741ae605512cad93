package hart

import (
	"bytes"
	"testing"
)

// TestEffectiveBigEndianFollowsPrivilegeAndVirtualization exercises each of
// effectiveBigEndian's four branches: M mode consults MSTATUS.MBE, HS/U
// consult MSTATUS.SBE/UBE, and VS/VU consult HSTATUS.VSBE instead.
func TestEffectiveBigEndianFollowsPrivilegeAndVirtualization(t *testing.T) {
	cfg := hypervisorConfig()
	mem := newTestMemory(t, cfg.ResetPC, 0x100, cfg.PMA)

	h, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart: %v", err)
	}

	cases := []struct {
		name    string
		priv    Privilege
		virtual bool
		set     uint64 // bit to poke before the check
		csr     uint16
	}{
		{"machine", PrivMachine, false, MstatusMBE, CSRMstatus},
		{"supervisor", PrivSupervisor, false, MstatusSBE, CSRMstatus},
		{"user", PrivUser, false, MstatusUBE, CSRMstatus},
		{"virtual-supervisor", PrivSupervisor, true, HstatusVSBE, CSRHstatus},
		{"virtual-user", PrivUser, true, HstatusVSBE, CSRHstatus},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h.CSR.Poke(CSRMstatus, 0)
			h.CSR.Poke(CSRHstatus, 0)
			h.Priv = c.priv
			h.Virtual = c.virtual

			if got := h.effectiveBigEndian(); got {
				t.Fatalf("effectiveBigEndian() = true before setting the endianness bit")
			}

			h.CSR.Poke(c.csr, c.set)

			if got := h.effectiveBigEndian(); !got {
				t.Fatalf("effectiveBigEndian() = false after setting the endianness bit")
			}
		})
	}
}

// TestBigEndianStoreAndLoadRoundTripThroughMemory confirms a big-endian
// store actually swaps bytes relative to little-endian, and that the
// matching big-endian load reads the same value back.
func TestBigEndianStoreAndLoadRoundTripThroughMemory(t *testing.T) {
	cfg := DefaultConfig()
	mem := newTestMemory(t, 0, 0x100, cfg.PMA)

	h, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart: %v", err)
	}

	h.Priv = PrivMachine
	h.CSR.Poke(CSRMstatus, MstatusMBE)

	const addr = uint64(0x40)
	const word = uint64(0x11223344)

	if trap := storeVirtual(h, addr, 4, word); trap != nil {
		t.Fatalf("storeVirtual: %v", trap)
	}

	raw, err := mem.LoadPhysical(addr, 4, false)
	if err != nil {
		t.Fatalf("LoadPhysical (little-endian view): %v", err)
	}

	if raw == word {
		t.Fatalf("raw little-endian bytes equal %#x, want byte-swapped", word)
	}

	if raw != 0x44332211 {
		t.Fatalf("raw bytes = %#x, want swapped representation 0x44332211", raw)
	}

	got, trap := loadVirtual(h, addr, 4)
	if trap != nil {
		t.Fatalf("loadVirtual: %v", trap)
	}

	if got != word {
		t.Fatalf("loadVirtual (big-endian) = %#x, want %#x", got, word)
	}
}

// TestInjectExceptionFiresOnceThenClears exercises the inject-exception
// Runtime API surface: an armed fault faults exactly the next matching
// fetch or load, and a subsequent access of the same kind goes through.
func TestInjectExceptionFiresOnceThenClears(t *testing.T) {
	cfg := DefaultConfig()
	mem := newTestMemory(t, 0, 0x100, cfg.PMA)

	if err := mem.StorePhysical(0x20, 8, 0xdeadbeef, false); err != nil {
		t.Fatalf("seed memory: %v", err)
	}

	h, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart: %v", err)
	}

	h.InjectException(InjectLoad, ExcLoadAccessFault, 0, 0x20)

	if _, trap := loadVirtual(h, 0x20, 8); trap == nil || trap.ExcCause != ExcLoadAccessFault {
		t.Fatalf("first load: trap = %v, want ExcLoadAccessFault", trap)
	}

	got, trap := loadVirtual(h, 0x20, 8)
	if trap != nil {
		t.Fatalf("second load: unexpected trap %v, injected fault should have been consumed", trap)
	}

	if got != 0xdeadbeef {
		t.Fatalf("second load = %#x, want 0xdeadbeef", got)
	}
}

// TestInjectExceptionIgnoresMismatchedKind confirms an armed load fault
// doesn't leak into a fetch.
func TestInjectExceptionIgnoresMismatchedKind(t *testing.T) {
	cfg := DefaultConfig()
	mem := newTestMemory(t, cfg.ResetPC, 0x100, cfg.PMA)

	nop := encIType(0b0010011, 0, 0, 0, 0)
	if err := mem.StorePhysical(cfg.ResetPC, 4, uint64(nop), false); err != nil {
		t.Fatalf("seed instruction: %v", err)
	}

	h, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart: %v", err)
	}

	h.InjectException(InjectLoad, ExcLoadAccessFault, 0, cfg.ResetPC)

	if _, trap := fetchVirtual(h, cfg.ResetPC, 4); trap != nil {
		t.Fatalf("fetchVirtual: unexpected trap %v for a load-kind injected fault", trap)
	}
}

// TestSnapshotRoundTripsProgramBreakAndToleratesUnknownTags covers the `pb`
// record added alongside `priv`/`virt`, and confirms ReadSnapshot tolerates
// a tag it doesn't recognize instead of failing the whole restore.
func TestSnapshotRoundTripsProgramBreakAndToleratesUnknownTags(t *testing.T) {
	cfg := DefaultConfig()
	mem := newTestMemory(t, cfg.ResetPC, 0x100, cfg.PMA)

	h, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart: %v", err)
	}

	h.programBreak = 0x8000_1000

	var buf bytes.Buffer
	if err := h.WriteSnapshot(&buf); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	restored, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart (restore target): %v", err)
	}

	if err := restored.ReadSnapshot(&buf); err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}

	if restored.programBreak != h.programBreak {
		t.Fatalf("programBreak = %#x, want %#x", restored.programBreak, h.programBreak)
	}

	stream := "pb 0x2000\nfuture-tag 1 2 3\npriv 0\n"

	again, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart (tolerant-reader target): %v", err)
	}

	if err := again.ReadSnapshot(bytes.NewBufferString(stream)); err != nil {
		t.Fatalf("ReadSnapshot with an unrecognized tag: %v", err)
	}

	if again.programBreak != 0x2000 {
		t.Fatalf("programBreak = %#x, want 0x2000", again.programBreak)
	}
}
