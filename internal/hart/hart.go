package hart

// hart.go assembles the components into a single hardware thread, the way
// the teacher's internal/vm/vm.go assembles an LC3 from a RegisterFile, a
// Memory and a Dispatcher. NewHart wires each component's dependencies exactly
// once at construction, so the rest of the package can assume they're
// never nil.

// Hart is one instruction-accurate RISC-V hardware thread.
type Hart struct {
	cfg Config

	Int *IntRegs
	FP  *FPRegs
	Vec *VecRegs
	CSR *CSRFile

	Mem   *Memory
	PMP   *PMPManager
	XLAT  *Translator
	Trig  *TriggerSet
	Resv  *ReservationTable

	// Clock is the Fleet-shared time reference (spec §5); nil for a
	// standalone hart, in which case the `time` CSR is a free-running
	// software register like any other.
	Clock *SharedClock

	PC      uint64
	Priv    Privilege
	Virtual bool

	// lastStore{Addr,Val,Valid} record the most recent successful store
	// this instruction performed, so PostExecute's data/address-after
	// triggers (spec §4.F) can match against what actually happened rather
	// than a constant.
	lastStoreAddr  uint64
	lastStoreVal   uint64
	lastStoreValid bool

	// hooks are the optional preCsrInst/postCsrInst/preInst callbacks spec
	// §6's Runtime API names.
	hooks RuntimeHooks

	// devices are the attach_{imsic,aplic,iommu,pci,mcm,perfapi} hook
	// points (spec §6); nil entries are simply not notified.
	devices AttachedDevices

	// injected is a single pending host-injected fault (spec §6
	// inject-exception), consumed by the next matching fetch or load.
	injected *InjectedFault

	// programBreak is the `pb` snapshot record (spec §6): inert state this
	// core only round-trips, since no syscall-emulation layer owns it here.
	programBreak uint64

	// cachedSatpMode and cachedHgatpMode are not written or read by any
	// code: PendingInterrupt and translation mode selection (pagingMode,
	// gStageMode) read the CSR file on every access.
	cachedSatpMode  PagingMode
	cachedHgatpMode PagingMode

	decodeCache map[decodeCacheKey]DecodedInst

	retired uint64
	cycles  uint64

	trace TraceSink

	// pendingTermination is set mid-instruction (e.g. by a tohost store)
	// and consumed by the hart loop once the instruction finishes
	// retiring, so a terminating store still commits normally.
	pendingTermination *Termination
}

// decodeCacheKey identifies a cached decode by the fetch PC (the virtual
// address, despite the field name) and the raw opcode bits fetched there.
// Nothing invalidates the cache: because the bits are part of the key, an
// instruction rewritten by a store misses and is decoded afresh.
type decodeCacheKey struct {
	paddr uint64
	bits  uint32
}

// NewHart validates cfg and wires every component together. mem is shared
// with the rest of a Fleet; reservations is optional and, if nil, a
// private single-hart table is allocated.
func NewHart(cfg Config, mem *Memory, reservations *ReservationTable) (*Hart, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if reservations == nil {
		reservations = NewReservationTable()
	}

	h := &Hart{
		cfg:         cfg,
		Int:         newIntRegs(cfg.XLEN),
		FP:          &FPRegs{},
		Vec:         newVecRegs(cfg.Vector.VLEN),
		CSR:         NewCSRFile(),
		Mem:         mem,
		PMP:         NewPMPManager(cfg.PMP),
		Trig:        NewTriggerSet(cfg.Triggers.Count),
		Resv:        reservations,
		PC:          cfg.ResetPC,
		Priv:        PrivMachine,
		decodeCache: make(map[decodeCacheKey]DecodedInst),
	}

	h.XLAT = NewTranslator(h.PMP, h.Mem, &h.cfg)
	h.defineCSRs()

	return h, nil
}

// defineCSRs populates the CSR file with the registers implied by the
// configured extension set. Unconditionally-present registers (mstatus,
// mtvec, ...) are defined first; extension-gated ones follow.
func (h *Hart) defineCSRs() {
	rw := func(addr uint16, name string, mask uint64) {
		h.CSR.Define(addr, CSREntry{Name: name, ReadMask: mask, WriteMask: mask, PokeMask: ^uint64(0)})
	}
	ro := func(addr uint16, name string, value uint64) {
		h.CSR.Define(addr, CSREntry{Name: name, ReadMask: ^uint64(0), WriteMask: 0, PokeMask: ^uint64(0)})
		h.CSR.Poke(addr, value)
	}

	rw(CSRMstatus, "mstatus", ^uint64(0))
	rw(CSRMisa, "misa", ^uint64(0))
	rw(CSRMedeleg, "medeleg", ^uint64(0))
	rw(CSRMideleg, "mideleg", ^uint64(0))
	rw(CSRMie, "mie", ^uint64(0))
	rw(CSRMtvec, "mtvec", ^uint64(0))
	rw(CSRMcounteren, "mcounteren", ^uint64(0))
	rw(CSRMscratch, "mscratch", ^uint64(0))
	rw(CSRMepc, "mepc", ^uint64(0))
	rw(CSRMcause, "mcause", ^uint64(0))
	rw(CSRMtval, "mtval", ^uint64(0))
	rw(CSRMip, "mip", ^uint64(0))
	ro(CSRMvendorid, "mvendorid", 0)
	ro(CSRMarchid, "marchid", 0)
	ro(CSRMimpid, "mimpid", 0)
	ro(CSRMhartid, "mhartid", h.cfg.HartID)

	rw(CSRCycle, "cycle", ^uint64(0))
	rw(CSRTime, "time", ^uint64(0))
	rw(CSRInstret, "instret", ^uint64(0))

	if h.cfg.Extensions.Has(ExtS) {
		rw(CSRSstatus, "sstatus", ^uint64(0))
		rw(CSRSedeleg, "sedeleg", ^uint64(0))
		rw(CSRSideleg, "sideleg", ^uint64(0))
		rw(CSRSie, "sie", ^uint64(0))
		rw(CSRStvec, "stvec", ^uint64(0))
		rw(CSRScounteren, "scounteren", ^uint64(0))
		rw(CSRSscratch, "sscratch", ^uint64(0))
		rw(CSRSepc, "sepc", ^uint64(0))
		rw(CSRScause, "scause", ^uint64(0))
		rw(CSRStval, "stval", ^uint64(0))
		rw(CSRSip, "sip", ^uint64(0))
		rw(CSRSatp, "satp", ^uint64(0))
	}

	if h.cfg.Extensions.Has(ExtH) {
		rw(CSRHstatus, "hstatus", ^uint64(0))
		rw(CSRHedeleg, "hedeleg", ^uint64(0))
		rw(CSRHideleg, "hideleg", ^uint64(0))
		rw(CSRHie, "hie", ^uint64(0))
		rw(CSRHip, "hip", ^uint64(0))
		rw(CSRHvip, "hvip", ^uint64(0))
		rw(CSRHgatp, "hgatp", ^uint64(0))
		rw(CSRVsstatus, "vsstatus", ^uint64(0))
		rw(CSRVsie, "vsie", ^uint64(0))
		rw(CSRVstvec, "vstvec", ^uint64(0))
		rw(CSRVsscratch, "vsscratch", ^uint64(0))
		rw(CSRVsepc, "vsepc", ^uint64(0))
		rw(CSRVscause, "vscause", ^uint64(0))
		rw(CSRVstval, "vstval", ^uint64(0))
		rw(CSRVsip, "vsip", ^uint64(0))
		rw(CSRVsatp, "vsatp", ^uint64(0))
	}

	if h.cfg.Extensions.Has(ExtF) || h.cfg.Extensions.Has(ExtD) {
		rw(CSRFflags, "fflags", 0x1f)
		rw(CSRFrm, "frm", 0x7)
		rw(CSRFcsr, "fcsr", 0xff)
	}

	if h.cfg.Extensions.Has(ExtV) {
		rw(CSRVstart, "vstart", ^uint64(0))
		rw(CSRVxsat, "vxsat", 0x1)
		rw(CSRVxrm, "vxrm", 0x3)
		rw(CSRVcsr, "vcsr", 0xf)
		ro(CSRVl, "vl", 0)
		ro(CSRVtype, "vtype", 0)
		ro(CSRVlenb, "vlenb", uint64(h.cfg.Vector.VLEN/8))
	}

	if len(h.cfg.PMP) > 0 {
		rw(CSRPmpcfg0, "pmpcfg0", ^uint64(0))
		rw(CSRPmpaddr0, "pmpaddr0", ^uint64(0))
	}

	if h.cfg.Triggers.Count > 0 {
		rw(CSRTselect, "tselect", ^uint64(0))
		rw(CSRTdata1, "tdata1", ^uint64(0))
		rw(CSRTdata2, "tdata2", ^uint64(0))
		rw(CSRTdata3, "tdata3", ^uint64(0))
		rw(CSRDcsr, "dcsr", ^uint64(0))
		rw(CSRDpc, "dpc", ^uint64(0))
		rw(CSRDscratch0, "dscratch0", ^uint64(0))
		rw(CSRDscratch1, "dscratch1", ^uint64(0))
	}

	// Config.BigEndianDefault only sets the boot-time value of the
	// MSTATUS/HSTATUS endianness bits; the effective endianness of any
	// given access is always read back from those bits at runtime (spec
	// §4.B), never cached here.
	if h.cfg.BigEndianDefault {
		mstatus := h.CSR.PeekRaw(CSRMstatus) | MstatusMBE | MstatusSBE | MstatusUBE
		h.CSR.Poke(CSRMstatus, mstatus)

		if h.cfg.Extensions.Has(ExtH) {
			hstatus := h.CSR.PeekRaw(CSRHstatus) | HstatusVSBE
			h.CSR.Poke(CSRHstatus, hstatus)
		}
	}
}

// Reset restores the hart to its post-reset state (spec §7.1). If
// clearMMReg is true, the values of memory-mapped registers are also
// zeroed; by default a reset only reinitializes hart-local state, leaving
// shared devices alone.
func (h *Hart) Reset(clearMMReg bool) {
	h.Int = newIntRegs(h.cfg.XLEN)
	h.FP = &FPRegs{}
	h.Vec = newVecRegs(h.cfg.Vector.VLEN)

	h.PC = h.cfg.ResetPC
	h.Priv = PrivMachine
	h.Virtual = false
	h.retired = 0
	h.cycles = 0
	h.decodeCache = make(map[decodeCacheKey]DecodedInst)
	h.lastStoreValid = false
	h.injected = nil

	h.defineCSRs()

	if clearMMReg {
		for _, reg := range h.Mem.mmio {
			reg.value = 0
		}
	}
}

// SetTraceSink installs the per-instruction trace sink (component I); nil
// disables tracing.
func (h *Hart) SetTraceSink(sink TraceSink) { h.trace = sink }

// Retired returns the number of instructions this hart has retired.
func (h *Hart) Retired() uint64 { return h.retired }
