package hart

// csr.go implements the CSR file half of component A: 4096 addressable
// control/status registers, each with read/write/poke masks and an
// implemented flag, plus the per-privilege/per-virtual-mode accessibility
// check spec §4.A requires before any CSR access is attempted.

import "fmt"

// Privilege is the hart's current privilege mode.
type Privilege uint8

const (
	PrivUser       Privilege = 0
	PrivSupervisor Privilege = 1
	PrivReserved   Privilege = 2
	PrivMachine    Privilege = 3
)

func (p Privilege) String() string {
	switch p {
	case PrivUser:
		return "U"
	case PrivSupervisor:
		return "S"
	case PrivMachine:
		return "M"
	default:
		return "?"
	}
}

// csrMinPrivilege and csrReadOnly classify how CSR address bits [11:8]
// constrain access: bits [9:8] give the minimum privilege, and bits [11:10]
// equal to 0b11 mark read-only, per the privileged spec's CSR address
// convention.
func csrMinPrivilege(addr uint16) Privilege {
	return Privilege((addr >> 8) & 0x3)
}

func csrReadOnly(addr uint16) bool {
	return (addr>>10)&0x3 == 0x3
}

// CSREntry is one control/status register's storage and access policy.
type CSREntry struct {
	Name        string
	Implemented bool
	ReadMask    uint64 // bits that read back as written (others read 0)
	WriteMask   uint64 // bits a CSR instruction may alter
	PokeMask    uint64 // bits a test-bench poke may alter (spec §4.A)
	value       uint64
}

// CSRFile is the control/status register file, addressable by a 12-bit
// number (spec §3, §4.A). Writes caused by a CSR instruction and writes
// caused as a side effect of a trap are logged separately so tracing can
// distinguish them.
type CSRFile struct {
	regs        map[uint16]*CSREntry
	instrLog    WriteLog // writes from a CSR instruction
	trapLog     []TrapCSRWrite
}

// TrapCSRWrite records a CSR write performed by the trap controller itself
// (xEPC, xCAUSE, xTVAL, xSTATUS, ...), kept apart from instruction writes
// (spec §4.A).
type TrapCSRWrite struct {
	Addr  uint16
	Prior uint64
}

// NewCSRFile builds an empty CSR file; callers populate it with Define.
func NewCSRFile() *CSRFile {
	return &CSRFile{regs: make(map[uint16]*CSREntry)}
}

// Define registers a CSR's storage and access masks. Re-defining an address
// replaces the entry, which is how a Config can narrow or widen the default
// layout per extension.
func (f *CSRFile) Define(addr uint16, e CSREntry) {
	entry := e
	entry.Implemented = true
	f.regs[addr] = &entry
}

// CSRAccessError reports why a CSR access was refused, before any value is
// touched (spec §4.A).
type CSRAccessError struct {
	Addr    uint16
	Virtual bool
}

func (e *CSRAccessError) Error() string {
	return fmt.Sprintf("csr %#03x: access denied (virtual=%v)", e.Addr, e.Virtual)
}

// checkAccess applies the per-privilege, per-virtual-mode accessibility
// check: requesting at privilege below the CSR's minimum, or writing a
// read-only CSR, fails before the value is read. A virtual-mode (V=1)
// access to an H-prefixed or hypervisor-reserved register is reported as a
// virtual-instruction exception rather than illegal-instruction, matching
// the privileged spec's distinction.
func (f *CSRFile) checkAccess(addr uint16, priv Privilege, virtual bool, write bool) error {
	entry := f.regs[addr]
	if entry == nil || !entry.Implemented {
		return NewException(ExcIllegalInstruction, uint64(addr))
	}

	if write && csrReadOnly(addr) {
		return NewException(ExcIllegalInstruction, uint64(addr))
	}

	if priv < csrMinPrivilege(addr) {
		if virtual {
			return NewException(ExcVirtualInstruction, 0)
		}

		return NewException(ExcIllegalInstruction, uint64(addr))
	}

	return nil
}

// Read returns a CSR's value after the accessibility check, masked to its
// ReadMask.
func (f *CSRFile) Read(addr uint16, priv Privilege, virtual bool) (uint64, error) {
	if err := f.checkAccess(addr, priv, virtual, false); err != nil {
		return 0, err
	}

	entry := f.regs[addr]

	return entry.value & entry.ReadMask, nil
}

// Write performs a CSR-instruction write: check access, log the prior
// value on the instruction log, then apply WriteMask.
func (f *CSRFile) Write(addr uint16, priv Privilege, virtual bool, v uint64) error {
	if err := f.checkAccess(addr, priv, virtual, true); err != nil {
		return err
	}

	entry := f.regs[addr]
	f.instrLog.record(uint(addr), entry.value)
	entry.value = (entry.value &^ entry.WriteMask) | (v & entry.WriteMask)

	return nil
}

// Poke sets a CSR's value bypassing the accessibility check and using
// PokeMask, logging the write on the trap-write log so it is distinguished
// from an architected CSR instruction (spec §4.A). Used by the trap
// controller (xEPC/xCAUSE/xTVAL/xSTATUS) and by snapshot restore.
func (f *CSRFile) Poke(addr uint16, v uint64) {
	entry := f.regs[addr]
	if entry == nil {
		entry = &CSREntry{Implemented: true, ReadMask: ^uint64(0), WriteMask: ^uint64(0), PokeMask: ^uint64(0)}
		f.regs[addr] = entry
	}

	f.trapLog = append(f.trapLog, TrapCSRWrite{Addr: addr, Prior: entry.value})
	entry.value = (entry.value &^ entry.PokeMask) | (v & entry.PokeMask)
}

// PeekRaw reads the raw stored value with no masking or access check, for
// internal fast-path cache refreshes and snapshotting.
func (f *CSRFile) PeekRaw(addr uint16) uint64 {
	if e := f.regs[addr]; e != nil {
		return e.value
	}

	return 0
}

// InstrLog returns the CSR-instruction write log for the current
// instruction.
func (f *CSRFile) InstrLog() *WriteLog { return &f.instrLog }

// TrapLog returns the trap-caused CSR writes for the current instruction.
func (f *CSRFile) TrapLog() []TrapCSRWrite { return f.trapLog }

// ResetLogs clears both write logs, at an instruction boundary.
func (f *CSRFile) ResetLogs() {
	f.instrLog.Reset()
	f.trapLog = f.trapLog[:0]
}

// RollbackInstrWrites undoes every CSR-instruction write logged this
// instruction (trap-caused writes are never rolled back -- they are the
// trap's own required side effect, spec §7).
func (f *CSRFile) RollbackInstrWrites() {
	entries := f.instrLog.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if entry := f.regs[uint16(e.Index)]; entry != nil {
			entry.value = e.Prior
		}
	}

	f.instrLog.Reset()
}
