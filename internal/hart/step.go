package hart

// step.go implements component I: the hart loop itself. Each call to Step
// runs exactly one instruction (or one trap-taking in its place) through
// fetch, decode, trigger evaluation, execute and commit, following a
// staged Fetch/Decode/Execute/Writeback cycle generalized to a variable-
// width fetch that pulls 2 or 4 bytes depending on what it finds.
//
// Rather than unwinding through panics or a single catch-all error type,
// a step reports what happened as a StepOutcome value -- normal retire,
// trap taken, or host-visible termination -- per the spec §9 design note
// that trap delivery is ordinary control flow, not an exceptional one.

// StepOutcome classifies what a single Step call did.
type StepOutcome uint8

const (
	OutcomeRetired StepOutcome = iota
	OutcomeTrapTaken
	OutcomeTerminated
	OutcomeDebugStop
)

func (o StepOutcome) String() string {
	switch o {
	case OutcomeRetired:
		return "retired"
	case OutcomeTrapTaken:
		return "trap"
	case OutcomeTerminated:
		return "terminated"
	case OutcomeDebugStop:
		return "debug-stop"
	default:
		return "unknown"
	}
}

// TraceRecord is the per-instruction artifact handed to a trace sink
// (spec §4.I). Walk has room for the page-table-walk steps of the
// instruction's fetch and data accesses, but Step never fills it: the
// translator reports only a walk count, which is discarded, so Walk is
// always nil.
type TraceRecord struct {
	PC       uint64
	Bits     uint32
	Size     uint8
	Op       OpID
	Outcome  StepOutcome
	Trap     *Trap
	RegWrite []WriteEntry
	CSRWrite []WriteEntry
	Walk     []WalkStep
}

// WalkStep is one PTE fetch performed while resolving a translation.
type WalkStep struct {
	Level int
	Addr  uint64
	PTE   uint64
}

// TraceSink receives a TraceRecord after every Step call, successful or
// not.
type TraceSink interface {
	Trace(TraceRecord)
}

// Step executes exactly one instruction cycle: interrupt check, fetch,
// decode, trigger evaluation, execute, and commit-or-rollback (spec
// §4.G-I).
func (h *Hart) Step() StepOutcome {
	h.Int.Log().Reset()
	h.FP.Log().Reset()
	h.Vec.ResetLog()
	h.CSR.ResetLogs()
	h.pendingTermination = nil
	h.lastStoreValid = false

	if h.hooks.PreInst != nil {
		halt, reset := h.hooks.PreInst(h.cfg.HartIndex)
		if reset {
			h.Reset(false)
		}

		if halt {
			return h.reportDebugStop()
		}
	}

	if h.Clock != nil {
		h.CSR.Poke(CSRTime, h.Clock.Read())
	}

	if cause, ok := PendingInterrupt(h.CSR, TrapState{Priv: h.Priv, Virtual: h.Virtual}, h.cfg.InterruptPriority); ok {
		return h.takeTrapAndReport(NewInterrupt(cause))
	}

	if fire := h.Trig.PreFetch(h.PC, h.Priv, h.Virtual); fire.Fired {
		return h.reportDebugStop()
	}

	lowHalf, trap16 := fetchVirtual(h, h.PC, 2)
	if trap16 != nil {
		return h.takeTrapAndReport(trap16)
	}

	compressed := lowHalf&0x3 != 3

	var raw uint32

	if compressed {
		raw = uint32(lowHalf)
	} else {
		highHalf, trapHi := fetchVirtual(h, h.PC+2, 2)
		if trapHi != nil {
			return h.takeTrapAndReport(trapHi)
		}

		raw = uint32(lowHalf) | uint32(highHalf)<<16
	}

	key := decodeCacheKey{paddr: h.PC, bits: raw}

	d, ok := h.decodeCache[key]
	if !ok {
		d = Decode(raw, compressed)
		h.decodeCache[key] = d
	}

	pcBefore := h.PC

	execTrap := Execute(h, d)
	if execTrap != nil {
		h.Int.Rollback()
		h.FP.Rollback()
		h.Vec.Rollback()
		h.CSR.RollbackInstrWrites()

		return h.takeTrapAndReportAt(execTrap, pcBefore)
	}

	if d.Op != OpJAL && d.Op != OpJALR && d.Op != OpMRET && d.Op != OpSRET &&
		d.Op != OpBEQ && d.Op != OpBNE && d.Op != OpBLT && d.Op != OpBGE &&
		d.Op != OpBLTU && d.Op != OpBGEU {
		h.PC = pcBefore + uint64(d.Size)
	}

	h.retired++
	h.cycles++

	if fire := h.Trig.RetireICount(h.Priv, h.Virtual); fire.Fired {
		h.CSR.Poke(CSRDpc, h.PC)
		h.emitTrace(pcBefore, d, OutcomeDebugStop, nil)

		return OutcomeDebugStop
	}

	if fire := h.Trig.PostExecute(h.Priv, h.Virtual, h.lastStoreAddr, h.lastStoreVal, h.lastStoreValid, nil); fire.Fired {
		h.CSR.Poke(CSRDpc, h.PC)
		h.emitTrace(pcBefore, d, OutcomeDebugStop, nil)
		return OutcomeDebugStop
	}

	h.notifyDevices()

	outcome := OutcomeRetired
	if h.pendingTermination != nil {
		outcome = OutcomeTerminated
	}

	h.emitTrace(pcBefore, d, outcome, nil)

	return outcome
}

func (h *Hart) reportDebugStop() StepOutcome {
	h.CSR.Poke(CSRDpc, h.PC)
	h.emitTrace(h.PC, DecodedInst{}, OutcomeDebugStop, nil)

	return OutcomeDebugStop
}

func (h *Hart) takeTrapAndReport(trap *Trap) StepOutcome {
	return h.takeTrapAndReportAt(trap, h.PC)
}

func (h *Hart) takeTrapAndReportAt(trap *Trap, pc uint64) StepOutcome {
	var (
		target     Privilege
		enterGuest bool
	)

	if trap.Exception {
		target, enterGuest = DelegationTarget(h.CSR, TrapState{Priv: h.Priv, Virtual: h.Virtual}, trap.ExcCause)
	} else {
		target, enterGuest = h.interruptTarget(trap.IntCause)
	}

	priv, virtual, newPC := TakeTrap(h.CSR, TrapState{Priv: h.Priv, Virtual: h.Virtual}, *trap, pc, target, enterGuest)

	h.Priv, h.Virtual, h.PC = priv, virtual, newPC

	h.Resv.NotifyEvent(h.cfg.HartIndex, CancelInterrupt, h.cfg.SCKeepsReservationOnTrap)

	if fire := h.Trig.PostExecute(h.Priv, h.Virtual, h.lastStoreAddr, h.lastStoreVal, h.lastStoreValid, trap); fire.Fired {
		h.CSR.Poke(CSRDpc, h.PC)
		h.emitTrace(pc, DecodedInst{}, OutcomeDebugStop, trap)

		return OutcomeDebugStop
	}

	h.emitTrace(pc, DecodedInst{}, OutcomeTrapTaken, trap)

	return OutcomeTrapTaken
}

// interruptTarget decides which privilege level an interrupt traps to and
// whether it stays inside the guest, honoring MIDELEG for M/S-level causes
// and routing VS-level causes straight to VS (they are never pending unless
// HIDELEG/HVIP/VSIE already gated them in PendingInterrupt).
func (h *Hart) interruptTarget(cause InterruptCause) (Privilege, bool) {
	if isVSCause(cause) {
		return PrivSupervisor, true
	}

	mideleg := h.CSR.PeekRaw(CSRMideleg)
	bit := uint64(1) << causeBit(cause)

	if mideleg&bit != 0 {
		return PrivSupervisor, false
	}

	return PrivMachine, false
}

func (h *Hart) emitTrace(pc uint64, d DecodedInst, outcome StepOutcome, trap *Trap) {
	if h.trace == nil {
		return
	}

	h.trace.Trace(TraceRecord{
		PC: pc, Bits: d.Bits, Size: d.Size, Op: d.Op,
		Outcome:  outcome,
		Trap:     trap,
		RegWrite: append([]WriteEntry(nil), h.Int.Log().Entries()...),
		CSRWrite: csrWriteEntries(h.CSR.InstrLog().Entries()),
	})
}

func csrWriteEntries(entries []WriteEntry) []WriteEntry {
	return append([]WriteEntry(nil), entries...)
}

// Run executes Step in a loop until budget instructions have retired (0
// means unbounded) or a non-retiring outcome occurs, returning the final
// outcome and the number of instructions retired during the call.
func (h *Hart) Run(budget uint64) (StepOutcome, uint64) {
	var n uint64

	for budget == 0 || n < budget {
		outcome := h.Step()

		if outcome == OutcomeRetired {
			n++
			continue
		}

		return outcome, n
	}

	return OutcomeRetired, n
}

// RunUntil runs until the PC equals stopPC, a non-retiring outcome occurs,
// or maxSteps instructions have been attempted (0 means unbounded).
func (h *Hart) RunUntil(stopPC uint64, maxSteps uint64) (StepOutcome, uint64) {
	var n uint64

	for maxSteps == 0 || n < maxSteps {
		if h.PC == stopPC {
			return OutcomeTerminated, n
		}

		outcome := h.Step()
		n++

		if outcome != OutcomeRetired {
			return outcome, n
		}
	}

	return OutcomeRetired, n
}
