package hart

// pmp.go implements component C: up to 64 entries of machine-mode physical
// memory protection.

// PMPMode is a PMP entry's addressing mode.
type PMPMode uint8

const (
	PMPOff   PMPMode = 0
	PMPTOR   PMPMode = 1
	PMPNA4   PMPMode = 2
	PMPNAPOT PMPMode = 3
)

// AccessIntent classifies the kind of access being checked.
type AccessIntent uint8

const (
	IntentFetch AccessIntent = iota
	IntentLoad
	IntentStore
)

// PMPEntryConfig is the construction-time form of a PMP entry (spec §6).
type PMPEntryConfig struct {
	Mode      PMPMode
	Addr      uint64 // pmpaddrN encoding (already shifted per TOR/NAPOT rules)
	Readable  bool
	Writable  bool
	Executable bool
	Locked    bool
}

// pmpEntry is the runtime, resolved form: an explicit [Low, High) range so
// matching doesn't need to re-decode NAPOT bits on every access.
type pmpEntry struct {
	PMPEntryConfig
	low, high uint64 // resolved half-open byte range; meaningless when Mode == PMPOff
}

// PMPManager evaluates accesses against the configured entries (component
// C). Entries are scanned in priority order (low index first); the first
// match decides, matching the privileged spec's "lowest-numbered PMP entry
// matching" rule (spec §4.C).
type PMPManager struct {
	entries []pmpEntry
}

// NewPMPManager resolves the given entry configs into scannable ranges.
func NewPMPManager(cfgs []PMPEntryConfig) *PMPManager {
	mgr := &PMPManager{entries: make([]pmpEntry, len(cfgs))}

	var priorAddr uint64

	for i, c := range cfgs {
		e := pmpEntry{PMPEntryConfig: c}

		switch c.Mode {
		case PMPTOR:
			e.low = priorAddr << 2
			e.high = c.Addr << 2
		case PMPNA4:
			e.low = c.Addr << 2
			e.high = e.low + 4
		case PMPNAPOT:
			e.low, e.high = decodeNAPOT(c.Addr)
		}

		mgr.entries[i] = e
		priorAddr = c.Addr
	}

	return mgr
}

// decodeNAPOT decodes a pmpaddr value with NAPOT encoding: the address
// followed by a run of 1 bits whose count gives the log2(region size) - 3.
func decodeNAPOT(addr uint64) (low, high uint64) {
	if addr == 0xffff_ffff_ffff_ffff {
		return 0, ^uint64(0) // degenerate: entire address space (high is exclusive, so the top byte is left out)
	}

	// Count trailing ones.
	n := 0
	for addr&1 == 1 {
		n++
		addr >>= 1
	}

	base := addr << (n + 3)
	size := uint64(8) << n

	return base, base + size
}

// Result is the outcome of a PMP (or translation) access check.
type Result uint8

const (
	Allow Result = iota
	AccessFault
)

// Evaluate checks an access of `size` bytes at `paddr` by `mode` with the
// given intent (spec §4.C).
func (p *PMPManager) Evaluate(paddr uint64, size uint64, mode Privilege, intent AccessIntent) Result {
	for _, e := range p.entries {
		if e.Mode == PMPOff {
			continue
		}

		startIn := paddr >= e.low && paddr < e.high
		endIn := paddr+size-1 >= e.low && paddr+size-1 < e.high
		fullyIn := startIn && endIn

		if !startIn && !endIn {
			continue
		}

		if !fullyIn {
			// Straddles the boundary of a matching region: fault, unless the
			// adjacent bytes fall in another matching region of identical
			// permission (checked by fullyCoveredByAdjacent).
			if adj, ok := p.fullyCoveredByAdjacent(paddr, size, e); ok {
				return p.permit(adj, mode, intent, e.Locked)
			}

			return AccessFault
		}

		return p.permit(e, mode, intent, e.Locked)
	}

	// No matching entry. Machine mode is allowed whether or not any entries
	// are implemented; other modes are denied if at least one entry exists
	// (default-deny once PMP is populated) and allowed if PMP is unpopulated.
	if mode == PrivMachine {
		return Allow
	}

	if len(p.entries) == 0 {
		return Allow
	}

	return AccessFault
}

// fullyCoveredByAdjacent checks whether the byte range spans exactly two
// adjacent matching entries of identical permission (spec §4.C boundary
// exception).
func (p *PMPManager) fullyCoveredByAdjacent(paddr, size uint64, first pmpEntry) (pmpEntry, bool) {
	for _, e := range p.entries {
		if e.Mode == PMPOff || e.low == first.low {
			continue
		}

		sameRights := e.Readable == first.Readable && e.Writable == first.Writable &&
			e.Executable == first.Executable && e.Locked == first.Locked

		covers := first.low <= paddr && e.high >= paddr+size && e.low <= first.high
		if sameRights && covers {
			return e, true
		}
	}

	return pmpEntry{}, false
}

func (p *PMPManager) permit(e pmpEntry, mode Privilege, intent AccessIntent, locked bool) Result {
	// A matching locked entry applies to all modes, including Machine (spec
	// §4.C). An unlocked entry only constrains modes below Machine.
	if mode == PrivMachine && !locked {
		return Allow
	}

	switch intent {
	case IntentFetch:
		if !e.Executable {
			return AccessFault
		}
	case IntentLoad:
		if !e.Readable {
			return AccessFault
		}
	case IntentStore:
		if !e.Writable {
			return AccessFault
		}
	}

	return Allow
}

func (r Result) String() string {
	if r == Allow {
		return "allow"
	}

	return "access-fault"
}

func (i AccessIntent) String() string {
	switch i {
	case IntentFetch:
		return "fetch"
	case IntentLoad:
		return "load"
	default:
		return "store"
	}
}
