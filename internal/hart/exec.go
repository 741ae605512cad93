package hart

// exec.go implements the shared machinery of component H: the dispatch
// table from OpID to a handler, and the virtual-memory-aware load/store/
// fetch helpers every instruction class uses. Handlers return a *Trap
// (nil on success); they never apply a register or memory write once a
// trap condition has been detected; teacher's operation.Execute follows
// the same discipline (internal/vm/exec.go: an operation's Execute either
// mutates state or returns an error, never both).

// execContext threads the fields every handler needs without repeating
// them across forty-odd function signatures.
type execContext struct {
	h *Hart
	d DecodedInst
}

// dispatchTable maps an OpID to its handler. Populated by the register*Ops
// calls in init below; indexed by OpID so lookup is a slice access, not a
// map access.
var dispatchTable [opCount]func(execContext) *Trap

func init() {
	registerIntOps()
	registerMOps()
	registerAOps()
	registerFOps()
	registerVOps()
	registerSystemOps()
}

func register(op OpID, fn func(execContext) *Trap) {
	dispatchTable[op] = fn
}

// Execute runs one decoded instruction against the hart's current state.
// A nil return means the instruction retired normally; the caller
// (step.go) is responsible for advancing PC unless the handler already
// did so (branches, jumps, MRET/SRET).
func Execute(h *Hart, d DecodedInst) *Trap {
	if trap := checkClassPreconditions(h, d); trap != nil {
		return trap
	}

	fn := dispatchTable[d.Op]
	if fn == nil {
		return NewException(ExcIllegalInstruction, uint64(d.Bits))
	}

	return fn(execContext{h: h, d: d})
}

// checkClassPreconditions enforces spec §3's FP- and V-class gating: an
// instruction in either class raises Illegal-Instruction before any side
// effect if its extension isn't enabled or MSTATUS.FS/VS is Off, ahead of
// whatever the handler itself would check.
func checkClassPreconditions(h *Hart, d DecodedInst) *Trap {
	mstatus := h.CSR.PeekRaw(CSRMstatus)

	switch {
	case d.Op >= OpFLW && d.Op <= OpFMVWX:
		if !h.cfg.Extensions.Has(ExtF) && !h.cfg.Extensions.Has(ExtD) {
			return NewException(ExcIllegalInstruction, uint64(d.Bits))
		}

		if (mstatus&MstatusFS)>>MstatusFSShift == FSOff {
			return NewException(ExcIllegalInstruction, uint64(d.Bits))
		}
	case d.Op >= OpVSETVLI && d.Op <= OpVXORVX:
		if !h.cfg.Extensions.Has(ExtV) {
			return NewException(ExcIllegalInstruction, uint64(d.Bits))
		}

		if (mstatus&MstatusVS)>>MstatusVSShift == FSOff {
			return NewException(ExcIllegalInstruction, uint64(d.Bits))
		}
	}

	return nil
}

// effectiveBigEndian reports the data endianness of a load/store, selected
// from the MSTATUS-family endianness bit of the effective privilege mode
// (spec §4.B): MBE for M, SBE for S, UBE for U, and HSTATUS.VSBE for either
// guest mode (VS, VU) instead of the host's own SBE/UBE.
func (h *Hart) effectiveBigEndian() bool {
	mstatus := h.CSR.PeekRaw(CSRMstatus)

	switch effectivePriv(h) {
	case PrivMachine:
		return mstatus&MstatusMBE != 0
	case PrivSupervisor:
		if h.Virtual {
			return h.CSR.PeekRaw(CSRHstatus)&HstatusVSBE != 0
		}

		return mstatus&MstatusSBE != 0
	default: // PrivUser
		if h.Virtual {
			return h.CSR.PeekRaw(CSRHstatus)&HstatusVSBE != 0
		}

		return mstatus&MstatusUBE != 0
	}
}

// effectivePriv returns the privilege an access should be checked against,
// honoring MPRV (spec §4.D: "a load/store under MPRV is checked as if
// executed at MPP, not the current privilege").
func effectivePriv(h *Hart) Privilege {
	mstatus := h.CSR.PeekRaw(CSRMstatus)
	if h.Priv == PrivMachine && mstatus&MstatusMPRV != 0 {
		return Privilege((mstatus & MstatusMPP) >> MstatusMPPShift)
	}

	return h.Priv
}

// pagingMode derives the active first-stage paging mode from satp (or
// vsatp, under virtualization) and the hart's XLEN.
func (h *Hart) pagingMode() (PagingMode, uint64, uint32) {
	addr := uint16(CSRSatp)
	if h.Virtual {
		addr = CSRVsatp
	}

	satp := h.CSR.PeekRaw(addr)

	if h.cfg.XLEN == XLEN32 {
		mode := PagingBare
		if satp&(1<<31) != 0 {
			mode = PagingSv32
		}

		return mode, (satp & 0x3f_ffff) , uint32(satp>>22) & 0x1ff
	}

	field := satp >> 60
	asid := uint32(satp>>44) & 0xffff
	ppn := satp & ((1 << 44) - 1)

	switch field {
	case 8:
		return PagingSv39, ppn, asid
	case 9:
		return PagingSv48, ppn, asid
	case 10:
		return PagingSv57, ppn, asid
	default:
		return PagingBare, ppn, asid
	}
}

func (h *Hart) gStageMode() (PagingMode, uint64, uint32) {
	hgatp := h.CSR.PeekRaw(CSRHgatp)

	if h.cfg.XLEN == XLEN32 {
		mode := PagingBare
		if hgatp&(1<<31) != 0 {
			mode = PagingSv32
		}

		return mode, hgatp & 0x3f_ffff, uint32(hgatp>>22) & 0x1ff
	}

	field := hgatp >> 60
	vmid := uint32(hgatp>>44) & 0x3fff
	ppn := hgatp & ((1 << 44) - 1)

	switch field {
	case 8:
		return PagingSv39, ppn, vmid
	case 9:
		return PagingSv48, ppn, vmid
	case 10:
		return PagingSv57, ppn, vmid
	default:
		return PagingBare, ppn, vmid
	}
}

func (h *Hart) translateCtxFor(kind AccessKind) (translateCtx, *translateCtx) {
	mstatus := h.CSR.PeekRaw(CSRMstatus)
	priv := effectivePriv(h)
	mode, ppn, asid := h.pagingMode()

	stage1 := translateCtx{
		mode: mode, rootPPN: ppn, asid: asid, priv: priv,
		mxr: mstatus&MstatusMXR != 0, sum: mstatus&MstatusSUM != 0,
		kind: kind, aduEnabled: h.cfg.Extensions.Has(ExtSvadu),
	}

	if !h.Virtual {
		return stage1, nil
	}

	gmode, gppn, vmid := h.gStageMode()
	stage2 := translateCtx{
		mode: gmode, rootPPN: gppn, asid: vmid, priv: PrivSupervisor,
		mxr: mstatus&MstatusMXR != 0, sum: true,
		kind: kind, aduEnabled: h.cfg.Extensions.Has(ExtSvadu),
	}

	return stage1, &stage2
}

// resolveVirtual runs the full access pipeline (translate, PMA lookup,
// PMP check) for a single access, producing either a physical address and
// attributes or the Trap to raise (spec §4.D, §4.C order of checks:
// translation happens first, then PMP against the resulting physical
// address).
func resolveVirtual(h *Hart, vaddr uint64, size uint64, kind AccessKind) (uint64, PMA, *Trap) {
	stage1, stage2 := h.translateCtxFor(kind)

	if stage1.mode == PagingBare && stage2 == nil {
		region, ok := h.Mem.RegionFor(vaddr)
		if !ok {
			return 0, PMA{}, faultFor(kind, vaddr)
		}

		if t := checkPMP(h, vaddr, size, kind); t != nil {
			return 0, PMA{}, t
		}

		return vaddr, region.Attrs, nil
	}

	res, _, ferr := h.XLAT.Translate(stage1, stage2, vaddr, stage1.asid)
	if ferr != nil {
		return 0, PMA{}, pageFaultFor(kind, ferr, vaddr)
	}

	if t := checkPageExtent(h, stage1, stage2, vaddr, size, kind); t != nil {
		return 0, PMA{}, t
	}

	if t := checkPMP(h, res.PAddr, size, kind); t != nil {
		return 0, PMA{}, t
	}

	return res.PAddr, res.Attrs, nil
}

// pageSize is the base page size of every supported Sv* mode (spec §4.D).
const pageSize = 4096

func crossesPage(vaddr, size uint64) bool {
	return size > 1 && (vaddr&(pageSize-1))+size > pageSize
}

// checkPageExtent additionally translates the first byte of the second
// page of an access that straddles a page boundary, so a multi-byte access whose second page is
// unmapped or unreadable faults with stval pointing at that page's first
// byte (spec §8 scenario: "4-byte load spanning a readable/unreadable page
// boundary -> LoadPageFault with stval = first faulting byte's VA") rather
// than only ever checking the page the access starts in.
func checkPageExtent(h *Hart, stage1 translateCtx, stage2 *translateCtx, vaddr, size uint64, kind AccessKind) *Trap {
	if !crossesPage(vaddr, size) {
		return nil
	}

	secondVA := (vaddr &^ (pageSize - 1)) + pageSize

	res, _, ferr := h.XLAT.Translate(stage1, stage2, secondVA, stage1.asid)
	if ferr != nil {
		return pageFaultFor(kind, ferr, secondVA)
	}

	return checkPMP(h, res.PAddr, 1, kind)
}

func checkPMP(h *Hart, paddr, size uint64, kind AccessKind) *Trap {
	intent := IntentLoad
	switch kind {
	case AccessFetch:
		intent = IntentFetch
	case AccessStore:
		intent = IntentStore
	}

	if h.PMP.Evaluate(paddr, size, effectivePriv(h), intent) != Allow {
		return faultFor(kind, paddr)
	}

	return nil
}

func faultFor(kind AccessKind, addr uint64) *Trap {
	switch kind {
	case AccessFetch:
		return NewException(ExcInstrAccessFault, addr)
	case AccessStore:
		return NewException(ExcStoreAccessFault, addr)
	default:
		return NewException(ExcLoadAccessFault, addr)
	}
}

func pageFaultFor(kind AccessKind, ferr *TranslateError, addr uint64) *Trap {
	if ferr.Kind == FaultAccess {
		return faultFor(kind, addr)
	}

	guest := ferr.Kind == FaultGuestPage

	var cause ExceptionCause

	switch {
	case kind == AccessFetch && guest:
		cause = ExcInstrGuestPageFault
	case kind == AccessFetch:
		cause = ExcInstrPageFault
	case kind == AccessLoad && guest:
		cause = ExcLoadGuestPageFault
	case kind == AccessLoad:
		cause = ExcLoadPageFault
	case guest:
		cause = ExcStoreGuestPageFault
	default:
		cause = ExcStorePageFault
	}

	return NewException(cause, addr)
}

// checkAlignment enforces the misaligned-access policy: faults unless the
// region declares MisalignedOK (spec §4.B, §4.D).
func checkAlignment(h *Hart, addr, size uint64, attrs PMA, kind AccessKind) *Trap {
	if size <= 1 || addr%size == 0 {
		return nil
	}

	if attrs.MisalignedOK && !attrs.MisalignedAccessFault {
		return nil
	}

	if kind == AccessStore {
		return NewException(ExcStoreAddrMisaligned, addr)
	}

	return NewException(ExcLoadAddrMisaligned, addr)
}

// loadVirtual performs a full load: translate, PMP, alignment, physical
// read, sign/zero extension handled by the caller.
func loadVirtual(h *Hart, vaddr uint64, size uint64) (uint64, *Trap) {
	if trap := h.takeInjected(InjectLoad, vaddr); trap != nil {
		return 0, trap
	}

	paddr, attrs, trap := resolveVirtual(h, vaddr, size, AccessLoad)
	if trap != nil {
		return 0, trap
	}

	if trap := checkAlignment(h, vaddr, size, attrs, AccessLoad); trap != nil {
		return 0, trap
	}

	if !attrs.Readable {
		return 0, NewException(ExcLoadAccessFault, vaddr)
	}

	v, err := h.Mem.LoadPhysical(paddr, int(size), h.effectiveBigEndian())
	if err != nil {
		return 0, NewException(ExcLoadAccessFault, vaddr)
	}

	return v, nil
}

// storeVirtual performs a full store and, on success, invalidates any
// overlapping LR/SC reservation, including the storing hart's own.
func storeVirtual(h *Hart, vaddr uint64, size uint64, v uint64) *Trap {
	paddr, attrs, trap := resolveVirtual(h, vaddr, size, AccessStore)
	if trap != nil {
		return trap
	}

	if trap := checkAlignment(h, vaddr, size, attrs, AccessStore); trap != nil {
		return trap
	}

	if !attrs.Writable {
		return NewException(ExcStoreAccessFault, vaddr)
	}

	if err := h.Mem.StorePhysical(paddr, int(size), v, h.effectiveBigEndian()); err != nil {
		return NewException(ExcStoreAccessFault, vaddr)
	}

	h.lastStoreAddr, h.lastStoreVal, h.lastStoreValid = vaddr, v, true

	h.Resv.NotifyStore(h.cfg.HartIndex, paddr, size)

	if h.cfg.ToHostAddr != 0 && paddr == h.cfg.ToHostAddr {
		h.pendingTermination = &Termination{Kind: TermToHost, StatusWord: v}
	}

	return nil
}

func fetchVirtual(h *Hart, vaddr uint64, size uint64) (uint64, *Trap) {
	if trap := h.takeInjected(InjectFetch, vaddr); trap != nil {
		return 0, trap
	}

	paddr, attrs, trap := resolveVirtual(h, vaddr, size, AccessFetch)
	if trap != nil {
		return 0, trap
	}

	if trap := checkAlignment(h, vaddr, size, attrs, AccessFetch); trap != nil {
		return 0, trap
	}

	if !attrs.Executable {
		return 0, NewException(ExcInstrAccessFault, vaddr)
	}

	v, err := h.Mem.LoadPhysical(paddr, int(size), h.effectiveBigEndian())
	if err != nil {
		return 0, NewException(ExcInstrAccessFault, vaddr)
	}

	return v, nil
}
