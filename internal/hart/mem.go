package hart

// mem.go implements component B: a flat physical memory with per-region
// attributes. Regions are kept in a google/btree-ordered index keyed by
// base address so a faulting or translating access can find "the region
// containing this address" in O(log n) instead of scanning a flat slice --
// the TLB's range-invalidation index (component D) uses the same
// structure, while the PMP table (component C) is a plain slice scanned in
// priority order. Grounded on maxnasonov-gvisor's go.mod dependency on
// github.com/google/btree.

import (
	"fmt"

	"github.com/google/btree"
)

// PMA is the per-region physical memory attribute set (spec §4.B).
type PMA struct {
	Readable                bool
	Writable                bool
	Executable               bool
	Cacheable                bool
	IO                       bool
	Reservable               bool
	AMOCapable               bool
	Idempotent               bool
	MisalignedOK             bool
	MisalignedAccessFault    bool
}

// PMARegion is one entry in the PMA table: a naturally-ordered half-open
// byte range [Base, Base+Size) and its attributes.
type PMARegion struct {
	Base  uint64
	Size  uint64
	Attrs PMA
}

func (r PMARegion) contains(addr uint64) bool {
	return addr >= r.Base && addr < r.Base+r.Size
}

// pmaItem adapts PMARegion to btree.Item, ordered by Base.
type pmaItem struct{ PMARegion }

func (a pmaItem) Less(than btree.Item) bool {
	return a.Base < than.(pmaItem).Base
}

// PBMTCode is the page-based memory type tag a leaf PTE can carry (spec
// §4.B overrides, §4.D TLB entry fields).
type PBMTCode uint8

const (
	PBMTPma PBMTCode = 0 // no override: PMA attributes apply unmodified
	PBMTNc  PBMTCode = 1 // non-cacheable, idempotent, misaligned-OK
	PBMTIo  PBMTCode = 2 // IO, non-idempotent, misaligned causes access-fault
)

// Apply returns the effective attributes after a PBMT override (spec
// §4.B).
func (c PBMTCode) Apply(base PMA) PMA {
	switch c {
	case PBMTNc:
		base.Cacheable = false
		base.IO = false
		base.Idempotent = true
		base.MisalignedOK = true
	case PBMTIo:
		base.Cacheable = false
		base.IO = true
		base.Idempotent = false
		base.MisalignedAccessFault = true
	}

	return base
}

// Memory is the physical memory and PMA manager. It owns the byte array
// and the memory-mapped-register overlay; the PMP manager and the virtual
// memory engine sit in front of it.
type Memory struct {
	bytes  []byte
	base   uint64 // physical address of bytes[0]
	regions *btree.BTree

	mmio map[uint64]*mmioRegister
}

// mmioRegister is a memory-mapped register whose writes are masked.
type mmioRegister struct {
	widthBytes int
	writeMask  uint64
	value      uint64
}

// NewMemory allocates size bytes of backing physical memory starting at
// base, with the given PMA layout. Returns ErrMemoryImage if size is zero,
// per spec §7.2.
func NewMemory(base, size uint64, regions []PMARegion) (*Memory, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: zero-size memory image", ErrMemoryImage)
	}

	m := &Memory{
		bytes:   make([]byte, size),
		base:    base,
		regions: btree.New(32),
		mmio:    make(map[uint64]*mmioRegister),
	}

	for _, r := range regions {
		m.regions.ReplaceOrInsert(pmaItem{r})
	}

	return m, nil
}

// RegionFor returns the PMA region containing addr, and whether one was
// found (spec §4.B: an address with no declared region has no attributes,
// and accesses to it are access-faults).
func (m *Memory) RegionFor(addr uint64) (PMARegion, bool) {
	var found PMARegion
	var ok bool

	// Walk backwards from the first region whose base is > addr to find the
	// highest-based region that could contain it.
	m.regions.DescendLessOrEqual(pmaItem{PMARegion{Base: addr}}, func(it btree.Item) bool {
		r := it.(pmaItem).PMARegion
		if r.contains(addr) {
			found, ok = r, true
		}

		return false
	})

	return found, ok
}

// MapRegister installs a memory-mapped register at addr with the given
// write-mask width (spec §4.B: "Memory-mapped registers are a subset of
// locations whose writes are masked through a per-register write-mask of
// width 4 or 8 bytes").
func (m *Memory) MapRegister(addr uint64, widthBytes int, writeMask uint64) {
	m.mmio[addr] = &mmioRegister{widthBytes: widthBytes, writeMask: writeMask}
}

// LoadPhysical reads size bytes (1,2,4,8) at the physical address, applying
// the effective endianness. It does not consult PMP; callers (the
// translation engine, or a bare-metal fast path) are expected to have
// already authorized the access.
func (m *Memory) LoadPhysical(addr uint64, size int, bigEndian bool) (uint64, error) {
	if reg, ok := m.mmio[addr]; ok {
		return reg.value, nil
	}

	off := addr - m.base
	if off+uint64(size) > uint64(len(m.bytes)) {
		return 0, fmt.Errorf("%w: physical address %#x out of range", ErrMemoryImage, addr)
	}

	var v uint64
	for i := 0; i < size; i++ {
		v |= uint64(m.bytes[off+uint64(i)]) << (8 * i)
	}

	if bigEndian {
		v = byteSwap(v, size)
	}

	return v, nil
}

// StorePhysical writes size bytes at the physical address, applying the
// effective endianness and, for a memory-mapped register, its write mask.
func (m *Memory) StorePhysical(addr uint64, size int, v uint64, bigEndian bool) error {
	if bigEndian {
		v = byteSwap(v, size)
	}

	if reg, ok := m.mmio[addr]; ok {
		reg.value = (reg.value &^ reg.writeMask) | (v & reg.writeMask)
		return nil
	}

	off := addr - m.base
	if off+uint64(size) > uint64(len(m.bytes)) {
		return fmt.Errorf("%w: physical address %#x out of range", ErrMemoryImage, addr)
	}

	for i := 0; i < size; i++ {
		m.bytes[off+uint64(i)] = byte(v >> (8 * i))
	}

	return nil
}

// byteSwap reverses the byte order of the low `size` bytes of v (spec
// §4.B: "big-endian causes a byte-swap of the data value after assembly").
func byteSwap(v uint64, size int) uint64 {
	var out uint64
	for i := 0; i < size; i++ {
		out |= ((v >> (8 * i)) & 0xff) << (8 * (size - 1 - i))
	}

	return out
}

// Snapshot returns an opaque copy of the physical memory block (spec §6:
// "Memory snapshot is an opaque block managed by the memory component").
func (m *Memory) Snapshot() []byte {
	out := make([]byte, len(m.bytes))
	copy(out, m.bytes)

	return out
}

// Restore replaces the physical memory block from a prior Snapshot.
func (m *Memory) Restore(image []byte) error {
	if len(image) != len(m.bytes) {
		return fmt.Errorf("%w: snapshot size %d does not match memory size %d",
			ErrSnapshot, len(image), len(m.bytes))
	}

	copy(m.bytes, image)

	return nil
}

// Size returns the backing memory's byte length.
func (m *Memory) Size() uint64 { return uint64(len(m.bytes)) }
