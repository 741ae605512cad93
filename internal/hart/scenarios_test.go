package hart

import "testing"

// scenarios_test.go exercises the hart end-to-end, one explicit scenario
// per test, wiring Hart/Execute/Step together the way a real caller would
// rather than unit-testing a single component in isolation.

func encIType(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xfff)<<20 | (rs1&0x1f)<<15 | (funct3&0x7)<<12 | (rd&0x1f)<<7 | (opcode & 0x7f)
}

func newTestMemory(t *testing.T, base, size uint64, regions []PMARegion) *Memory {
	t.Helper()

	m, err := NewMemory(base, size, regions)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}

	return m
}

// TestLoadReservedStoreConditionalAcrossHarts: hart0 reserves with LR.W,
// hart1 stores to the same address invalidating the reservation, and
// hart0's SC.W then reports failure without re-writing memory.
func TestLoadReservedStoreConditionalAcrossHarts(t *testing.T) {
	cfg := DefaultConfig()
	mem := newTestMemory(t, 0, 0x1000, cfg.PMA)
	resv := NewReservationTable()

	cfg0 := cfg
	cfg0.HartIndex = 0
	cfg1 := cfg
	cfg1.HartIndex = 1

	h0, err := NewHart(cfg0, mem, resv)
	if err != nil {
		t.Fatalf("NewHart(hart0): %v", err)
	}

	h1, err := NewHart(cfg1, mem, resv)
	if err != nil {
		t.Fatalf("NewHart(hart1): %v", err)
	}

	const addr = 0x200

	if err := mem.StorePhysical(addr, 4, 0, false); err != nil {
		t.Fatalf("seed memory: %v", err)
	}

	h0.Int.Write(1, addr)

	if trap := Execute(h0, DecodedInst{Op: OpLRW, RD: 2, RS1: 1}); trap != nil {
		t.Fatalf("LR.W trapped: %v", trap)
	}

	if !resv.Check(0, addr) {
		t.Fatalf("hart0 should hold a reservation after LR.W")
	}

	h1.Int.Write(1, addr)
	h1.Int.Write(2, 5)

	if trap := Execute(h1, DecodedInst{Op: OpSW, RS1: 1, RS2: 2}); trap != nil {
		t.Fatalf("hart1 SW trapped: %v", trap)
	}

	if resv.Check(0, addr) {
		t.Fatalf("hart1's store should have invalidated hart0's reservation")
	}

	h0.Int.Write(2, 99)

	if trap := Execute(h0, DecodedInst{Op: OpSCW, RD: 3, RS1: 1, RS2: 2}); trap != nil {
		t.Fatalf("SC.W trapped: %v", trap)
	}

	if got := h0.Int.Peek(3); got != 1 {
		t.Fatalf("SC.W result = %d, want 1 (failure)", got)
	}

	v, err := mem.LoadPhysical(addr, 4, false)
	if err != nil {
		t.Fatalf("LoadPhysical: %v", err)
	}

	if v != 5 {
		t.Fatalf("memory = %d, want 5 (hart1's store, unmodified by the failed SC)", v)
	}
}

// TestAMOOnNonAMOCapableRegionFaults: an AMOADD.W against a PMA region
// that permits loads and stores but not AMOs must fault before either half
// of the read-modify-write is observed.
func TestAMOOnNonAMOCapableRegionFaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PMA = []PMARegion{
		{Base: 0, Size: 1 << 32, Attrs: PMA{Readable: true, Writable: true, AMOCapable: false}},
	}

	mem := newTestMemory(t, 0, 0x1000, cfg.PMA)

	h, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart: %v", err)
	}

	const addr = 0x100

	if err := mem.StorePhysical(addr, 4, 42, false); err != nil {
		t.Fatalf("seed memory: %v", err)
	}

	h.Int.Write(1, addr)
	h.Int.Write(2, 5)

	trap := Execute(h, DecodedInst{Op: OpAMOADDW, RD: 3, RS1: 1, RS2: 2})
	if trap == nil {
		t.Fatalf("AMOADD.W on non-AMO-capable region did not trap")
	}

	if !trap.Exception || trap.ExcCause != ExcStoreAccessFault {
		t.Fatalf("trap = %+v, want StoreAccessFault", trap)
	}

	if got := h.Int.Peek(3); got != 0 {
		t.Fatalf("rd = %d, want 0 (handler must not write rd before faulting)", got)
	}

	v, err := mem.LoadPhysical(addr, 4, false)
	if err != nil {
		t.Fatalf("LoadPhysical: %v", err)
	}

	if v != 42 {
		t.Fatalf("memory = %d, want 42 (unchanged by the faulted AMO)", v)
	}
}

// TestICountTriggerStopsAfterThirdRetiredInstructionWithDPC exercises the
// icount trigger through the real fetch/decode/execute/retire loop: a
// goal of 3 must fire once the third instruction has retired, not before,
// and DPC must equal the PC of what would have been the fourth
// instruction.
func TestICountTriggerStopsAfterThirdRetiredInstructionWithDPC(t *testing.T) {
	cfg := DefaultConfig()
	mem := newTestMemory(t, cfg.ResetPC, 0x100, cfg.PMA)

	nop := encIType(0b0010011, 0, 0, 0, 0) // addi x0, x0, 0

	for i := uint64(0); i < 4; i++ {
		if err := mem.StorePhysical(cfg.ResetPC+i*4, 4, uint64(nop), false); err != nil {
			t.Fatalf("seed instruction %d: %v", i, err)
		}
	}

	h, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart: %v", err)
	}

	h.Trig.Set(0, Trigger{Kind: TriggerICount, Enabled: true, MatchM: true, ICountGoal: 3, Action: ActionBreak})
	h.Trig.ResetICount(0)

	outcome, _ := h.Run(10)

	if outcome != OutcomeDebugStop {
		t.Fatalf("outcome = %v, want debug-stop", outcome)
	}

	if h.Retired() != 3 {
		t.Fatalf("retired = %d, want 3", h.Retired())
	}

	wantPC := cfg.ResetPC + 3*4

	if h.PC != wantPC {
		t.Fatalf("PC = %#x, want %#x (successor of the third instruction)", h.PC, wantPC)
	}

	if dpc := h.CSR.PeekRaw(CSRDpc); dpc != wantPC {
		t.Fatalf("dpc = %#x, want %#x", dpc, wantPC)
	}
}

// TestDelegatedEcallFromUserTrapsToSupervisor: with MEDELEG bit 8 set, an
// ECALL taken from U-mode must land in S-mode with SEPC/SCAUSE set from
// the faulting instruction, not M-mode.
func TestDelegatedEcallFromUserTrapsToSupervisor(t *testing.T) {
	cfg := DefaultConfig()
	mem := newTestMemory(t, cfg.ResetPC, 0x100, cfg.PMA)

	ecall := uint32(0x0000_0073)

	if err := mem.StorePhysical(cfg.ResetPC, 4, uint64(ecall), false); err != nil {
		t.Fatalf("seed instruction: %v", err)
	}

	h, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart: %v", err)
	}

	h.Priv = PrivUser
	h.CSR.Poke(CSRMedeleg, 1<<8)
	h.CSR.Poke(CSRStvec, 0x8000_1000)

	outcome := h.Step()

	if outcome != OutcomeTrapTaken {
		t.Fatalf("outcome = %v, want trap-taken", outcome)
	}

	if h.Priv != PrivSupervisor {
		t.Fatalf("priv = %v, want supervisor (delegated)", h.Priv)
	}

	if sepc := h.CSR.PeekRaw(CSRSepc); sepc != cfg.ResetPC {
		t.Fatalf("sepc = %#x, want %#x", sepc, cfg.ResetPC)
	}

	if scause := h.CSR.PeekRaw(CSRScause); ExceptionCause(scause) != ExcEcallFromU {
		t.Fatalf("scause = %d, want %d (ecall-from-u)", scause, ExcEcallFromU)
	}

	if h.PC != 0x8000_1000 {
		t.Fatalf("PC = %#x, want stvec target 0x8000_1000", h.PC)
	}
}

// TestVectorMaskedUnitStrideLoadHonoursUndisturbedPolicies runs a real
// vsetvli followed by a masked vle32.v: elements outside the mask or past
// vl must retain their prior register contents under mask-/tail-
// undisturbed (vma=0, vta=0), while selected elements load from memory.
func TestVectorMaskedUnitStrideLoadHonoursUndisturbedPolicies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extensions = NewExtensionSet(ExtI, ExtM, ExtA, ExtC, ExtS, ExtU, ExtV, ExtZicntr)
	cfg.Vector = VectorGeometry{VLEN: 128, MinEEW: 8, MaxEEW: 64}

	mem := newTestMemory(t, 0, 0x1000, cfg.PMA)

	h, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart: %v", err)
	}

	h.CSR.Poke(CSRMstatus, uint64(MstatusVS)) // VS = dirty, nonzero

	const base = 0x100

	words := []uint32{0x1111_1111, 0x2222_2222, 0x3333_3333, 0x4444_4444}
	for i, w := range words {
		if err := mem.StorePhysical(base+uint64(i)*4, 4, uint64(w), false); err != nil {
			t.Fatalf("seed word %d: %v", i, err)
		}
	}

	for idx := uint(0); idx < 4; idx++ {
		h.Vec.SetElement(1, idx, 32, 0xEEEE_EEEE)
	}
	h.Vec.ResetLog()

	// mask v0.t: bit0=1 (select elem0), bit1=0 (mask out elem1), bit2=1
	// (select elem2), bit3 unused (elem3 is past vl, a tail element).
	h.Vec.SetElement(0, 0, 8, 0x05)

	h.Int.Write(11, 3) // AVL = 3

	const vtypeRaw = uint64(2 << 3) // e32, m1, vta=0, vma=0

	if trap := Execute(h, DecodedInst{Op: OpVSETVLI, RD: 10, RS1: 11, Imm: int64(vtypeRaw)}); trap != nil {
		t.Fatalf("vsetvli trapped: %v", trap)
	}

	if vl := h.CSR.PeekRaw(CSRVl); vl != 3 {
		t.Fatalf("vl = %d, want 3", vl)
	}

	h.Int.Write(12, base)

	if trap := Execute(h, DecodedInst{Op: OpVLE32, RD: 1, RS1: 12, VM: false}); trap != nil {
		t.Fatalf("vle32.v trapped: %v", trap)
	}

	cases := []struct {
		idx  uint
		want uint64
	}{
		{0, 0x1111_1111}, // selected
		{1, 0xEEEE_EEEE}, // masked out, mask-undisturbed
		{2, 0x3333_3333}, // selected
		{3, 0xEEEE_EEEE}, // tail, tail-undisturbed
	}

	for _, c := range cases {
		if got := h.Vec.Element(1, c.idx, 32); got != c.want {
			t.Fatalf("v1[%d] = %#x, want %#x", c.idx, got, c.want)
		}
	}

	if vstart := h.CSR.PeekRaw(CSRVstart); vstart != 0 {
		t.Fatalf("vstart = %d, want 0", vstart)
	}
}

// TestLoadSpanningUnmappedPageFaults builds a real two-level Sv32 page
// table where the first page of a misaligned 4-byte load is mapped and
// readable but the second is not present, and checks that the load faults
// with stval pointing at the second page's base rather than silently
// reading only the first page.
func TestLoadSpanningUnmappedPageFaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.XLEN = XLEN32

	mem := newTestMemory(t, 0, 0x10000, cfg.PMA)

	const (
		rootPPN = 2 // root table at phys 0x2000
		ptPPN   = 3 // second-level table at phys 0x3000
		dataPPN = 4 // backing page for VA [0, 0x1000) at phys 0x4000
	)

	rootEntry := uint64(ptPPN<<10) | pteV // non-leaf, points at the level-0 table
	if err := mem.StorePhysical(rootPPN*4096, 4, rootEntry, false); err != nil {
		t.Fatalf("seed root PTE: %v", err)
	}

	// VPN0=0 (VA [0,0x1000)): leaf, readable, accessed bit pre-set so the
	// walk doesn't need Svadu to update it.
	leaf0 := uint64(dataPPN<<10) | pteV | pteR | pteA
	if err := mem.StorePhysical(ptPPN*4096, 4, leaf0, false); err != nil {
		t.Fatalf("seed leaf PTE 0: %v", err)
	}

	// VPN0=1 (VA [0x1000,0x2000)): left invalid.
	if err := mem.StorePhysical(ptPPN*4096+4, 4, 0, false); err != nil {
		t.Fatalf("seed leaf PTE 1: %v", err)
	}

	h, err := NewHart(cfg, mem, nil)
	if err != nil {
		t.Fatalf("NewHart: %v", err)
	}

	h.CSR.Poke(CSRSatp, (1<<31)|uint64(rootPPN))

	_, trap := loadVirtual(h, 0x0FFE, 4)
	if trap == nil {
		t.Fatalf("page-crossing load did not trap")
	}

	if !trap.Exception || trap.ExcCause != ExcLoadPageFault {
		t.Fatalf("trap = %+v, want LoadPageFault", trap)
	}

	if trap.Tval != 0x1000 {
		t.Fatalf("tval = %#x, want 0x1000 (base of the unmapped second page)", trap.Tval)
	}
}
