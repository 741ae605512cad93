package hart

// regs.go implements component A: typed word storage for the integer, FP
// and vector register files, each with per-instruction write-tracking so
// the tracing sink (component I) can report a change record and the trap
// path can roll back uncommitted writes (spec §3, §4.A).

import "fmt"

// WriteEntry records one register mutation: which index changed and what
// it held before, so a trap can restore it and a trace sink can report it.
type WriteEntry struct {
	Index uint
	Prior uint64
}

// WriteLog accumulates WriteEntry values for a single instruction. Reads
// never append to it.
type WriteLog struct {
	entries []WriteEntry
}

func (l *WriteLog) record(index uint, prior uint64) {
	l.entries = append(l.entries, WriteEntry{Index: index, Prior: prior})
}

// Entries returns the writes logged since the last Reset, oldest first.
func (l *WriteLog) Entries() []WriteEntry { return l.entries }

// Reset clears the log, typically at the start of the next instruction.
func (l *WriteLog) Reset() { l.entries = l.entries[:0] }

// IntRegs is the integer register file: 32 XLEN registers, x0 hardwired to
// zero.
type IntRegs struct {
	xlen XLEN
	x    [32]uint64
	log  WriteLog
}

func newIntRegs(xlen XLEN) *IntRegs {
	return &IntRegs{xlen: xlen}
}

// Peek reads a register without affecting any log.
func (r *IntRegs) Peek(i uint) uint64 {
	if i == 0 {
		return 0
	}

	return r.xlen.Mask(r.x[i&31])
}

// Write sets a register and appends to the write log, used for
// instruction-driven writes that must be traceable and rollback-able. x0
// writes are accepted and silently discarded, per spec §3.
func (r *IntRegs) Write(i uint, v uint64) {
	if i == 0 || i > 31 {
		return
	}

	r.log.record(i, r.x[i])
	r.x[i] = r.xlen.Mask(v)
}

// Poke sets a register bypassing the write log -- used by snapshot restore
// and test-bench pokes, which should not appear in an instruction's trace.
func (r *IntRegs) Poke(i uint, v uint64) {
	if i == 0 || i > 31 {
		return
	}

	r.x[i] = r.xlen.Mask(v)
}

func (r *IntRegs) Log() *WriteLog { return &r.log }

// Rollback undoes every entry in the write log, in reverse order, then
// clears it. Used when an instruction raises a trap after already writing a
// destination register (spec §3: "a taken trap never commits ... register
// writes").
func (r *IntRegs) Rollback() {
	entries := r.log.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Index != 0 {
			r.x[e.Index] = e.Prior
		}
	}

	r.log.Reset()
}

func (r *IntRegs) String() string {
	return fmt.Sprintf("IntRegs(x1=%#x ... x31=%#x)", r.x[1], r.x[31])
}

// FPRegs is the floating-point register file: 32 64-bit registers, always
// stored widened, with NaN-boxing applied when a narrower format is
// written (spec §3, §4.H item 4).
type FPRegs struct {
	f   [32]uint64
	log WriteLog
}

const nanBoxUpper32 = 0xffff_ffff_0000_0000

// WriteSingle writes a 32-bit result, NaN-boxed into the 64-bit register.
func (r *FPRegs) WriteSingle(i uint, v uint32) {
	r.log.record(i, r.f[i&31])
	r.f[i&31] = nanBoxUpper32 | uint64(v)
}

// WriteDouble writes a full 64-bit result.
func (r *FPRegs) WriteDouble(i uint, v uint64) {
	r.log.record(i, r.f[i&31])
	r.f[i&31] = v
}

// ReadDouble returns the raw 64-bit register contents.
func (r *FPRegs) ReadDouble(i uint) uint64 { return r.f[i&31] }

// ReadSingle returns the low 32 bits if the register is properly NaN-boxed,
// or the canonical quiet NaN otherwise (RISC-V F/D spec requirement).
func (r *FPRegs) ReadSingle(i uint) uint32 {
	v := r.f[i&31]
	if v&nanBoxUpper32 != nanBoxUpper32 {
		return 0x7fc0_0000 // canonical single-precision qNaN
	}

	return uint32(v)
}

func (r *FPRegs) Poke(i uint, v uint64) { r.f[i&31] = v }

func (r *FPRegs) Log() *WriteLog { return &r.log }

func (r *FPRegs) Rollback() {
	entries := r.log.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		r.f[e.Index&31] = e.Prior
	}

	r.log.Reset()
}

// VecRegs is the vector register file: 32 registers of VLEN bits each,
// stored as byte slices since VLEN is configured at construction (spec
// §4.H item 5, §6). Write-tracking is whole-register, not per-element:
// the first write to a register within an instruction snapshots its prior
// bytes so Rollback can restore it, matching the "a taken trap never
// commits ... vector register writes" invariant (spec §3) without the
// cost of per-element log entries vector loops can generate in bulk.
type VecRegs struct {
	vlenBytes int
	v         [32][]byte
	touched   map[uint][]byte
}

func newVecRegs(vlenBits uint) *VecRegs {
	vr := &VecRegs{touched: make(map[uint][]byte)}

	if vlenBits == 0 {
		return vr
	}

	vr.vlenBytes = int(vlenBits / 8)
	for i := range vr.v {
		vr.v[i] = make([]byte, vr.vlenBytes)
	}

	return vr
}

func (r *VecRegs) touch(i uint) {
	i &= 31
	if _, ok := r.touched[i]; ok {
		return
	}

	prior := make([]byte, len(r.v[i]))
	copy(prior, r.v[i])
	r.touched[i] = prior
}

// ResetLog clears the per-instruction touched set, typically at the start
// of the next instruction.
func (r *VecRegs) ResetLog() { r.touched = make(map[uint][]byte) }

// Rollback restores every register touched since the last ResetLog to its
// prior bytes, then clears the touched set.
func (r *VecRegs) Rollback() {
	for i, prior := range r.touched {
		copy(r.v[i], prior)
	}

	r.touched = make(map[uint][]byte)
}

// Element reads an eew-bit element at elemIdx from register i.
func (r *VecRegs) Element(i uint, elemIdx uint, eew uint) uint64 {
	reg := r.v[i&31]
	off := int(elemIdx) * int(eew) / 8
	width := int(eew) / 8

	var val uint64
	for b := width - 1; b >= 0; b-- {
		val = (val << 8) | uint64(reg[off+b])
	}

	return val
}

// SetElement writes an eew-bit element and logs the prior register bytes
// the first time a given register is touched in an instruction (coarse,
// whole-register granularity matches the teacher's whole-word write log;
// vector writes are too fine-grained for per-element entries to be useful
// for rollback).
func (r *VecRegs) SetElement(i uint, elemIdx uint, eew uint, val uint64) {
	r.touch(i)

	reg := r.v[i&31]
	off := int(elemIdx) * int(eew) / 8
	width := int(eew) / 8

	for b := 0; b < width; b++ {
		reg[off+b] = byte(val)
		val >>= 8
	}
}

// SnapshotRegister copies out the raw bytes of register i, most significant
// byte first, for the `v` snapshot record (spec §6).
func (r *VecRegs) SnapshotRegister(i uint) []byte {
	reg := r.v[i&31]

	out := make([]byte, len(reg))
	for k := range reg {
		out[k] = reg[len(reg)-1-k]
	}

	return out
}

// RestoreRegister loads register i from most-significant-byte-first bytes.
func (r *VecRegs) RestoreRegister(i uint, msbFirst []byte) {
	reg := r.v[i&31]
	for k := range reg {
		reg[k] = msbFirst[len(msbFirst)-1-k]
	}
}
