package hart

// translate.go implements component D: the single-stage and two-stage
// address translation engine, its TLB, and the fence operations that
// invalidate it.

import (
	"github.com/google/btree"
)

// PagingMode selects the page-table format for one translation stage (spec
// §4.D).
type PagingMode uint8

const (
	PagingBare PagingMode = iota
	PagingSv32
	PagingSv39
	PagingSv48
	PagingSv57
)

// levels returns the page-table depth and per-level bit widths for a
// paging mode. Sv32 is a two-level, 4-byte-PTE format; Sv39/48/57 are
// three/four/five-level, 8-byte-PTE formats (spec §4.D).
func (m PagingMode) levels() (count int, vpnBits, ptShift uint) {
	switch m {
	case PagingSv32:
		return 2, 10, 2
	case PagingSv39:
		return 3, 9, 3
	case PagingSv48:
		return 4, 9, 3
	case PagingSv57:
		return 5, 9, 3
	default:
		return 0, 0, 0
	}
}

// PTE bit positions, common to Sv32/39/48/57.
const (
	pteV = 1 << 0
	pteR = 1 << 1
	pteW = 1 << 2
	pteX = 1 << 3
	pteU = 1 << 4
	pteG = 1 << 5
	pteA = 1 << 6
	pteD = 1 << 7
	pteN = 1 << 63 // Svnapot
)

// pbmtFromPTE extracts the Svpbmt PBMT field (bits 62:61) from a 64-bit PTE.
func pbmtFromPTE(pte uint64) PBMTCode {
	return PBMTCode((pte >> 61) & 0x3)
}

// AccessKind is the kind of access a translation is being performed for.
type AccessKind uint8

const (
	AccessFetch AccessKind = iota
	AccessLoad
	AccessStore
)

// TranslationResult carries a resolved physical address plus everything
// the caller needs to update a TLB entry and produce a page-walk trace.
type TranslationResult struct {
	PAddr       uint64
	Attrs       PMA
	PBMT        PBMTCode
	Global      bool
	User        bool
	WalkDepth   int // number of PTE fetches performed; 0 on a TLB hit
	NAPOTBits   uint8
}

// PageFaultKind distinguishes which of the fault variants to raise, so the
// caller can pick the right ExceptionCause for the access kind (spec
// §4.D).
type PageFaultKind uint8

const (
	FaultNone PageFaultKind = iota
	FaultPage
	FaultGuestPage
	FaultAccess
)

// TranslateError reports a failed translation.
type TranslateError struct {
	Kind PageFaultKind
	Addr uint64
}

func (e *TranslateError) Error() string { return "translate: page fault" }

// tlbKey identifies a cached translation.
type tlbKey struct {
	asid  uint32
	vpn   uint64
	stage uint8 // 0: single/VS-stage, 1: G-stage
}

type tlbEntry struct {
	key    tlbKey
	pageBits uint // log2(page size): 12 for a 4K leaf, larger for superpages/NAPOT
	result TranslationResult
	vaLow, vaHigh uint64
}

func (e *tlbEntry) Less(than btree.Item) bool {
	return e.vaLow < than.(*tlbEntry).vaLow
}

// TLB is a software TLB keyed on {asid-or-vmid, vpn, stage}. Lookup is a
// direct map hit; range invalidation (SFENCE.VMA with an address, or
// HFENCE with a guest range) walks a btree ordered by virtual address so a
// superpage or NAPOT entry covering the target address is found without a
// linear scan (spec §4.D).
type TLB struct {
	byKey   map[tlbKey]*tlbEntry
	byVAddr *btree.BTree
}

// NewTLB creates an empty, set-associative-in-spirit (here: fully
// software-sized, no fixed associativity limit) TLB.
func NewTLB() *TLB {
	return &TLB{byKey: make(map[tlbKey]*tlbEntry), byVAddr: btree.New(32)}
}

func (t *TLB) lookup(asid uint32, vaddr uint64, stage uint8, pageBits uint) (*tlbEntry, bool) {
	vpn := vaddr >> 12
	e, ok := t.byKey[tlbKey{asid, vpn, stage}]

	return e, ok
}

func (t *TLB) insert(asid uint32, vaddr uint64, stage uint8, pageBits uint, res TranslationResult) {
	vpn := vaddr >> 12
	low := vaddr &^ ((uint64(1) << pageBits) - 1)
	high := low + (uint64(1) << pageBits)

	e := &tlbEntry{
		key:      tlbKey{asid, vpn, stage},
		pageBits: pageBits,
		result:   res,
		vaLow:    low,
		vaHigh:   high,
	}

	t.byKey[e.key] = e
	t.byVAddr.ReplaceOrInsert(e)
}

// FlushAll invalidates every entry.
func (t *TLB) FlushAll() {
	t.byKey = make(map[tlbKey]*tlbEntry)
	t.byVAddr = btree.New(32)
}

// FlushASID invalidates every entry for the given ASID/VMID, across all
// addresses.
func (t *TLB) FlushASID(asid uint32) {
	for k, e := range t.byKey {
		if k.asid == asid {
			delete(t.byKey, k)
			t.byVAddr.Delete(e)
		}
	}
}

// FlushVAddr invalidates whichever entry (of any size) covers vaddr for
// the given asid and stage.
func (t *TLB) FlushVAddr(asid uint32, vaddr uint64, stage uint8) {
	var hit *tlbEntry

	t.byVAddr.DescendLessOrEqual(&tlbEntry{vaLow: vaddr}, func(it btree.Item) bool {
		e := it.(*tlbEntry)
		if e.key.asid == asid && e.key.stage == stage && vaddr >= e.vaLow && vaddr < e.vaHigh {
			hit = e
			return false
		}

		return true
	})

	if hit != nil {
		delete(t.byKey, hit.key)
		t.byVAddr.Delete(hit)
	}
}

// Translator runs the address translation engine (component D): single
// stage for ordinary (V=0) accesses, two-stage (VS then G) when V=1.
type Translator struct {
	pmp *PMPManager
	mem *Memory
	tlb *TLB

	cfg *Config
}

// NewTranslator wires component D to its collaborators.
func NewTranslator(pmp *PMPManager, mem *Memory, cfg *Config) *Translator {
	return &Translator{pmp: pmp, mem: mem, tlb: NewTLB(), cfg: cfg}
}

// translateCtx bundles the inputs a single-stage walk needs, so VS-stage
// and G-stage calls share one implementation.
type translateCtx struct {
	mode     PagingMode
	rootPPN  uint64
	asid     uint32
	priv     Privilege
	mxr      bool
	sum      bool
	kind     AccessKind
	aduEnabled bool
}

// walk performs one single-stage page-table walk (spec §4.D). It does not
// consult the TLB; callers check the TLB first.
func (tr *Translator) walk(ctx translateCtx, vaddr uint64) (TranslationResult, int, *TranslateError) {
	count, vpnBits, shift := ctx.mode.levels()
	if count == 0 {
		// Bare: identity map, full PMA permissions.
		region, ok := tr.mem.RegionFor(vaddr)
		if !ok {
			return TranslationResult{}, 0, &TranslateError{Kind: FaultAccess, Addr: vaddr}
		}

		return TranslationResult{PAddr: vaddr, Attrs: region.Attrs}, 0, nil
	}

	pteSize := uint64(4)
	if shift == 3 {
		pteSize = 8
	}

	ppn := ctx.rootPPN
	var pte uint64
	level := count - 1
	walks := 0

	for level >= 0 {
		vpnShift := 12 + uint(level)*vpnBits
		vpn := (vaddr >> vpnShift) & ((1 << vpnBits) - 1)

		pteAddr := ppn<<12 + vpn*pteSize

		// Every PTE fetch visits PMP and PMA, per spec §4.D.
		region, ok := tr.mem.RegionFor(pteAddr)
		if !ok {
			return TranslationResult{}, walks + 1, &TranslateError{Kind: FaultAccess, Addr: vaddr}
		}

		if tr.pmp.Evaluate(pteAddr, pteSize, PrivMachine, IntentLoad) != Allow {
			return TranslationResult{}, walks + 1, &TranslateError{Kind: FaultAccess, Addr: vaddr}
		}

		raw, err := tr.mem.LoadPhysical(pteAddr, int(pteSize), false)
		walks++

		if err != nil {
			return TranslationResult{}, walks, &TranslateError{Kind: FaultAccess, Addr: vaddr}
		}

		pte = raw
		_ = region

		if pte&pteV == 0 || (pte&pteR == 0 && pte&pteW != 0) {
			return TranslationResult{}, walks, &TranslateError{Kind: FaultPage, Addr: vaddr}
		}

		leaf := pte&(pteR|pteX) != 0

		if !leaf {
			ppn = (pte >> 10) & ((1 << 44) - 1)
			level--

			continue
		}

		if !tr.permitted(ctx, pte) {
			return TranslationResult{}, walks, &TranslateError{Kind: FaultPage, Addr: vaddr}
		}

		if level > 0 {
			// Superpage: lower PPN bits must be zero unless Svnapot covers them.
			lowMask := uint64(1)<<(uint(level)*vpnBits) - 1
			if (pte>>10)&lowMask != 0 && pte&pteN == 0 {
				return TranslationResult{}, walks, &TranslateError{Kind: FaultPage, Addr: vaddr}
			}
		}

		if err := tr.updateAD(ctx, pteAddr, &pte); err != nil {
			return TranslationResult{}, walks, err
		}

		ppnFull := (pte >> 10) & ((1 << 44) - 1)
		pageOffsetBits := 12 + uint(level)*vpnBits
		offsetMask := uint64(1)<<pageOffsetBits - 1

		paddr := (ppnFull << 12 & ^offsetMask) | (vaddr & offsetMask)

		region, ok = tr.mem.RegionFor(paddr)
		if !ok {
			return TranslationResult{}, walks, &TranslateError{Kind: FaultAccess, Addr: vaddr}
		}

		attrs := pbmtFromPTE(pte).Apply(region.Attrs)

		return TranslationResult{
			PAddr:     paddr,
			Attrs:     attrs,
			PBMT:      pbmtFromPTE(pte),
			Global:    pte&pteG != 0,
			User:      pte&pteU != 0,
			WalkDepth: walks,
		}, walks, nil
	}

	return TranslationResult{}, walks, &TranslateError{Kind: FaultPage, Addr: vaddr}
}

// permitted checks a leaf PTE's R/W/X/U bits against the requested access
// kind, privilege, MXR and SUM (spec §4.D).
func (tr *Translator) permitted(ctx translateCtx, pte uint64) bool {
	if ctx.priv == PrivUser && pte&pteU == 0 {
		return false
	}

	if ctx.priv != PrivUser && pte&pteU != 0 && !ctx.sum {
		return false
	}

	switch ctx.kind {
	case AccessFetch:
		return pte&pteX != 0
	case AccessLoad:
		return pte&pteR != 0 || (ctx.mxr && pte&pteX != 0)
	case AccessStore:
		return pte&pteW != 0
	}

	return false
}

// updateAD sets the A bit (and D, on a store) per Svadu, or returns a page
// fault if the bits are stale and Svadu/ADUE do not authorize hardware
// update (spec §4.D "A/D bits").
func (tr *Translator) updateAD(ctx translateCtx, pteAddr uint64, pte *uint64) *TranslateError {
	needsA := *pte&pteA == 0
	needsD := ctx.kind == AccessStore && *pte&pteD == 0

	if !needsA && !needsD {
		return nil
	}

	if !ctx.aduEnabled {
		return &TranslateError{Kind: FaultPage, Addr: pteAddr}
	}

	updated := *pte | pteA
	if needsD {
		updated |= pteD
	}

	if err := tr.mem.StorePhysical(pteAddr, 8, updated, false); err != nil {
		return &TranslateError{Kind: FaultAccess, Addr: pteAddr}
	}

	*pte = updated

	return nil
}

// Translate resolves a virtual address through one or two stages,
// consulting the TLB first (spec §4.D).
func (tr *Translator) Translate(
	stage1 translateCtx, stage2 *translateCtx, vaddr uint64, asid uint32,
) (TranslationResult, int, *TranslateError) {
	if e, ok := tr.tlb.lookup(asid, vaddr, 0, 12); ok {
		result := e.result
		result.WalkDepth = 0

		if stage2 == nil {
			return result, 0, nil
		}

		return tr.translateStage2(*stage2, result.PAddr, asid)
	}

	result, walks, ferr := tr.walk(stage1, vaddr)
	if ferr != nil {
		return TranslationResult{}, walks, ferr
	}

	tr.tlb.insert(asid, vaddr, 0, 12, result)

	if stage2 == nil {
		return result, walks, nil
	}

	final, walks2, ferr := tr.translateStage2(*stage2, result.PAddr, asid)

	return final, walks + walks2, ferr
}

// translateStage2 walks the G-stage page tables over a guest-physical
// address (spec §4.D: "the VS-stage walks VS page tables producing a
// guest-physical address, which the G-stage walks ... to a real physical
// address").
func (tr *Translator) translateStage2(ctx translateCtx, gpa uint64, vmid uint32) (TranslationResult, int, *TranslateError) {
	if e, ok := tr.tlb.lookup(vmid, gpa, 1, 12); ok {
		result := e.result
		result.WalkDepth = 0

		return result, 0, nil
	}

	result, walks, ferr := tr.walk(ctx, gpa)
	if ferr != nil {
		ferr.Kind = FaultGuestPage
		return TranslationResult{}, walks, ferr
	}

	tr.tlb.insert(vmid, gpa, 1, 12, result)

	return result, walks, nil
}

// PointerMask applies Ssnpm/Smnpm/Smmpm pointer masking to a data virtual
// address, replacing the top bits with sign- or zero-extension of bit
// 63-pmm (spec §4.D). Instruction fetch is never masked. MXR disables
// masking.
func PointerMask(vaddr uint64, pmmBits uint, signExtend bool, mxrActive bool) uint64 {
	if pmmBits == 0 || mxrActive {
		return vaddr
	}

	keep := 64 - pmmBits
	if signExtend {
		return Sext(vaddr, keep)
	}

	return Zext(vaddr, keep)
}
