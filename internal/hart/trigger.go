package hart

// trigger.go implements component F: the debug trigger (breakpoint)
// subsystem. Triggers are evaluated at three points in the hart loop --
// before fetch (PreFetch), after an instruction retires (RetireICount), and
// after execute (PostExecute); there is no evaluation between decode and
// execute -- and can chain so that a match on one only fires if the next in
// the chain also matches (spec §4.F).

// TriggerKind selects which physical quantity a trigger compares.
type TriggerKind uint8

const (
	TriggerAddress TriggerKind = iota
	TriggerData
	TriggerICount
	TriggerInterrupt
	TriggerException
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerAddress:
		return "address"
	case TriggerData:
		return "data"
	case TriggerICount:
		return "icount"
	case TriggerInterrupt:
		return "interrupt"
	case TriggerException:
		return "exception"
	default:
		return "unknown"
	}
}

// TriggerTiming selects whether an address/data trigger fires before the
// access completes or after.
type TriggerTiming uint8

const (
	TimingBefore TriggerTiming = iota
	TimingAfter
)

// TriggerAction is what happens when a trigger (or the last link of a
// chain) fires.
type TriggerAction uint8

const (
	ActionBreak TriggerAction = iota // enter debug mode
	ActionTrace                      // record but continue
)

// Trigger is one entry of the trigger subsystem (tdata1/tdata2/tdata3
// triple in the privileged spec, flattened to named fields here since this
// package is not a CSR-bit-compatible model of the debug module, only its
// observable firing behavior).
type Trigger struct {
	Kind    TriggerKind
	Timing  TriggerTiming
	Action  TriggerAction
	Enabled bool

	Address    uint64 // TriggerAddress: matched against the virtual fetch PC or virtual store address
	Virtual    bool   // not consulted by any evaluation pass
	Data       uint64 // TriggerData: value to match on store/load
	DataMask   uint64
	ICountGoal uint64 // TriggerICount: fires when the live counter reaches this value
	Cause      InterruptCause
	ExcCause   ExceptionCause

	Chain     bool // this trigger only arms the next index; doesn't fire on its own
	MatchU    bool
	MatchS    bool
	MatchM    bool
	MatchVU   bool
	MatchVS   bool

	icount uint64 // live countdown for TriggerICount
	armed  bool   // chain predecessor already matched this evaluation
}

// TriggerSet is the hart's trigger subsystem (component F). Triggers are
// evaluated in index order; a Chain entry only contributes an "armed" gate
// to the entries that follow, continuing the chain until a non-Chain entry
// is reached.
type TriggerSet struct {
	triggers []Trigger
}

// NewTriggerSet allocates count disabled trigger slots, per
// Config.Triggers.Count.
func NewTriggerSet(count int) *TriggerSet {
	return &TriggerSet{triggers: make([]Trigger, count)}
}

func (t *TriggerSet) Get(i int) Trigger { return t.triggers[i] }

func (t *TriggerSet) Set(i int, tr Trigger) { t.triggers[i] = tr }

func (t *TriggerSet) Len() int { return len(t.triggers) }

// modeMatches reports whether the trigger is configured to fire in the
// given privilege/virtualization context.
func (tr Trigger) modeMatches(priv Privilege, virtual bool) bool {
	switch {
	case virtual && priv == PrivUser:
		return tr.MatchVU
	case virtual && priv == PrivSupervisor:
		return tr.MatchVS
	case !virtual && priv == PrivUser:
		return tr.MatchU
	case !virtual && priv == PrivSupervisor:
		return tr.MatchS
	case priv == PrivMachine:
		return tr.MatchM
	default:
		return false
	}
}

// FireResult reports what, if anything, happened during an evaluation
// pass.
type FireResult struct {
	Fired  bool
	Index  int
	Action TriggerAction
}

// evalChain walks the trigger list applying the chain-arming rule: a Chain
// trigger that matches arms the following entry instead of firing
// directly; a non-Chain (or last-in-chain) trigger that matches, with all
// of its chain predecessors armed, fires.
func (t *TriggerSet) evalChain(matches []bool) FireResult {
	armed := true

	for i, tr := range t.triggers {
		if !tr.Enabled {
			armed = true
			continue
		}

		if !matches[i] {
			// A failed Chain link disarms the rest of its chain; a non-Chain
			// entry ends the chain, so the next one starts armed.
			armed = !tr.Chain

			continue
		}

		if tr.Chain {
			// This link matched; require the next link to also match before
			// firing. armed carries forward as true only if this one matched.
			continue
		}

		if armed {
			return FireResult{Fired: true, Index: i, Action: tr.Action}
		}

		armed = true
	}

	return FireResult{}
}

// PreFetch evaluates address triggers timed Before against the next fetch
// address (spec §4.F: "before fetch").
func (t *TriggerSet) PreFetch(addr uint64, priv Privilege, virtual bool) FireResult {
	matches := make([]bool, len(t.triggers))

	for i, tr := range t.triggers {
		if tr.Kind == TriggerAddress && tr.Timing == TimingBefore && tr.modeMatches(priv, virtual) {
			matches[i] = tr.Address == addr
		}
	}

	return t.evalChain(matches)
}

// RetireICount decrements every enabled icount trigger once an instruction
// has retired and reports whether one reached zero (spec §4.F: "icount
// counts down on committed qualifying instructions"; called after PC
// advances, not before fetch, so the goal counts retirements, not attempts).
func (t *TriggerSet) RetireICount(priv Privilege, virtual bool) FireResult {
	matches := make([]bool, len(t.triggers))

	for i := range t.triggers {
		tr := &t.triggers[i]
		if !tr.Enabled || !tr.modeMatches(priv, virtual) {
			continue
		}

		if tr.Kind == TriggerICount {
			if tr.icount > 0 {
				tr.icount--
			}

			matches[i] = tr.icount == 0
		}
	}

	return t.evalChain(matches)
}

// PostExecute evaluates After-timed address/data triggers plus
// interrupt/exception triggers against what the instruction actually did
// (spec §4.F: "after execute").
func (t *TriggerSet) PostExecute(priv Privilege, virtual bool, storeAddr, storeVal uint64, stored bool, trap *Trap) FireResult {
	matches := make([]bool, len(t.triggers))

	for i, tr := range t.triggers {
		if !tr.Enabled || !tr.modeMatches(priv, virtual) {
			continue
		}

		switch tr.Kind {
		case TriggerAddress:
			if tr.Timing == TimingAfter && stored {
				matches[i] = tr.Address == storeAddr
			}
		case TriggerData:
			if stored {
				matches[i] = (storeVal & tr.DataMask) == (tr.Data & tr.DataMask)
			}
		case TriggerInterrupt:
			matches[i] = trap != nil && !trap.Exception && trap.IntCause == tr.Cause
		case TriggerException:
			matches[i] = trap != nil && trap.Exception && trap.ExcCause == tr.ExcCause
		}
	}

	return t.evalChain(matches)
}

// ResetICount reloads an icount trigger's live countdown from its
// configured goal (spec §4.F: icount is a live down-counter). Set does not
// reload it; the host calls ResetICount after writing a new goal.
func (t *TriggerSet) ResetICount(i int) {
	t.triggers[i].icount = t.triggers[i].ICountGoal
}
