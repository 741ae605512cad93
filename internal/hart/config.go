package hart

// config.go is the construction-time configuration surface (spec §6). A
// Config is validated once, in NewHart, following the teacher's pattern of
// applying option functions and failing loudly (teacher: internal/vm/vm.go,
// New panicking on a device-mapping conflict) -- except here failures are
// returned, not panicked, since they are host-simulator failures a
// test-bench must be able to recover from.

import "fmt"

// Extension names an optional RISC-V ISA extension. The zero value of the
// set (no extensions) describes a bare RV32I/RV64I machine.
type Extension string

// Extensions drawn from spec §6. Not every named extension has an
// execution-core handler yet; unimplemented-but-enabled extensions fail
// closed with Illegal-Instruction, which is architecturally indistinguishable
// from "not implemented" per the privileged spec.
const (
	ExtI         Extension = "I"
	ExtM         Extension = "M"
	ExtA         Extension = "A"
	ExtF         Extension = "F"
	ExtD         Extension = "D"
	ExtC         Extension = "C"
	ExtB         Extension = "B"
	ExtV         Extension = "V"
	ExtS         Extension = "S"
	ExtU         Extension = "U"
	ExtH         Extension = "H"
	ExtZicntr    Extension = "Zicntr"
	ExtZihpm     Extension = "Zihpm"
	ExtZkr       Extension = "Zkr"
	ExtZicond    Extension = "Zicond"
	ExtZca       Extension = "Zca"
	ExtZcb       Extension = "Zcb"
	ExtZcd       Extension = "Zcd"
	ExtZfa       Extension = "Zfa"
	ExtZfh       Extension = "Zfh"
	ExtZfhmin    Extension = "Zfhmin"
	ExtZfbfmin   Extension = "Zfbfmin"
	ExtZvfh      Extension = "Zvfh"
	ExtZvfhmin   Extension = "Zvfhmin"
	ExtZvfbfmin  Extension = "Zvfbfmin"
	ExtZvfbfwma  Extension = "Zvfbfwma"
	ExtZbb       Extension = "Zbb"
	ExtZbc       Extension = "Zbc"
	ExtZbs       Extension = "Zbs"
	ExtZba       Extension = "Zba"
	ExtZbkb      Extension = "Zbkb"
	ExtZbkx      Extension = "Zbkx"
	ExtZknd      Extension = "Zknd"
	ExtZkne      Extension = "Zkne"
	ExtZksed     Extension = "Zksed"
	ExtZksh      Extension = "Zksh"
	ExtZknh      Extension = "Zknh"
	ExtSvinval   Extension = "Svinval"
	ExtSvnapot   Extension = "Svnapot"
	ExtSvpbmt    Extension = "Svpbmt"
	ExtSvadu     Extension = "Svadu"
	ExtSscofpmf  Extension = "Sscofpmf"
	ExtSmstateen Extension = "Smstateen"
	ExtSsqosid   Extension = "Ssqosid"
	ExtSmrnmi    Extension = "Smrnmi"
	ExtSmaia     Extension = "Smaia"
	ExtSmmpm     Extension = "Smmpm"
	ExtSsnpm     Extension = "Ssnpm"
	ExtSmnpm     Extension = "Smnpm"
	ExtZicfilp   Extension = "Zicfilp"
	ExtZicbom    Extension = "Zicbom"
	ExtZicboz    Extension = "Zicboz"
	ExtZicbop    Extension = "Zicbop"
	ExtZawrs     Extension = "Zawrs"
	ExtZmmul     Extension = "Zmmul"
	ExtZacas     Extension = "Zacas"
	ExtZimop     Extension = "Zimop"
	ExtZcmop     Extension = "Zcmop"
	ExtZvbb      Extension = "Zvbb"
	ExtZvbc      Extension = "Zvbc"
	ExtZvkg      Extension = "Zvkg"
	ExtZvkned    Extension = "Zvkned"
	ExtZvknha    Extension = "Zvknha"
	ExtZvknhb    Extension = "Zvknhb"
	ExtZvksed    Extension = "Zvksed"
	ExtZvksh     Extension = "Zvksh"
	ExtZvkb      Extension = "Zvkb"
)

// ExtensionSet is a membership set of enabled extensions, the way the
// teacher keys its device map by address (internal/vm/vm.go's devices map)
// -- a flat map queried by accessor, not a bespoke bitset type per caller.
type ExtensionSet map[Extension]bool

// NewExtensionSet builds a set from a list, always including the mandatory
// base extensions.
func NewExtensionSet(exts ...Extension) ExtensionSet {
	set := make(ExtensionSet, len(exts)+1)
	set[ExtI] = true

	for _, e := range exts {
		set[e] = true
	}

	return set
}

// Has reports whether an extension is enabled.
func (s ExtensionSet) Has(e Extension) bool { return s[e] }

// VectorGeometry configures the vector unit (component H vector ops, spec
// §4.H item 5).
type VectorGeometry struct {
	VLEN   uint   // vector register length, in bits; must be a power of two
	MinEEW uint   // minimum element width, in bits, across supported LMUL
	MaxEEW uint   // maximum element width, in bits
}

// TriggerConfig configures the debug trigger subsystem (component F).
type TriggerConfig struct {
	Count       int // number of trigger slots
	SupportAddr bool
	SupportData bool
	SupportIcount bool
	SupportInterrupt bool
	SupportException bool
}

// Config holds every construction-time parameter spec §6 names.
type Config struct {
	XLEN XLEN

	HartIndex uint
	HartID    uint64

	Extensions ExtensionSet
	ResetPC    uint64

	PMP []PMPEntryConfig
	PMA []PMARegion

	Triggers TriggerConfig

	Vector VectorGeometry

	ReservationBytes uint // LR/SC reservation block size, power of two
	CacheLineBytes   uint // power of two

	// BigEndianDefault sets the hart's boot-time data endianness; the
	// effective endianness is still read from the MSTATUS-family bit at
	// runtime (spec §4.B).
	BigEndianDefault bool

	// RoundingModeOverride names a rounding mode for every FP op. It is
	// stored but not read by the execution core, whose FP ops always use
	// Go's native round-to-nearest-even (see exec_f.go).
	RoundingModeOverride *RoundingMode

	// MisalignedHasPriority names the spec §9 open question: whether a
	// misaligned-access fault takes priority over a page fault on the same
	// access, when both could apply. It is stored but not read: loads,
	// stores and fetches always check translation and PMP first and
	// alignment second, so a page or access fault wins.
	MisalignedHasPriority bool

	// SCKeepsReservationOnTrap resolves the other spec §9 open question:
	// whether a trap taken between LR and SC preserves the reservation
	// rather than cancelling it like an ordinary mode switch would.
	SCKeepsReservationOnTrap bool

	// MisalignedFaultPolicy names which half of a page-crossing misaligned
	// access is reported in xTVAL (spec §4.D stval/xtval contract). It is
	// stored but not read: a fault on the first page reports the access
	// address, and a fault found only on the second page reports that
	// page's first byte (exec.go's checkPageExtent).
	MisalignedFaultPolicy MisalignedPolicy

	// WFITimeout is a bound on WFI/WRS in retired instructions (spec §5);
	// zero means unbounded. It is stored but not read: WFI never waits and
	// retires like a NOP.
	WFITimeout uint64

	// InterruptPriority breaks ties among simultaneously pending,
	// equal-privilege interrupt causes (spec §4.G step 4). Earlier entries
	// win.
	InterruptPriority []InterruptCause

	// ToHostAddr, if non-zero, is the magic address whose store terminates
	// the run (spec §6).
	ToHostAddr uint64
}

// MisalignedPolicy selects which half of a page-crossing misaligned access
// is blamed in the fault address.
type MisalignedPolicy uint8

const (
	MisalignedFaultFirstHalf MisalignedPolicy = iota
	MisalignedFaultSecondHalf
)

// RoundingMode mirrors the FCSR.FRM encoding.
type RoundingMode uint8

const (
	RMRNE RoundingMode = iota // round to nearest, ties to even
	RMRTZ                     // round towards zero
	RMRDN                     // round down (towards -inf)
	RMRUP                     // round up (towards +inf)
	RMRMM                     // round to nearest, ties to max magnitude
	_
	_
	RMDynamic // use FCSR.FRM
)

// DefaultConfig returns a minimal, internally consistent RV64IMAC
// configuration with a single PMP-less, fully-permissive PMA region
// spanning all of memory -- a reasonable "everything is RAM" starting
// point for tests.
func DefaultConfig() Config {
	return Config{
		XLEN:       XLEN64,
		Extensions: NewExtensionSet(ExtM, ExtA, ExtC, ExtS, ExtU, ExtZicntr),
		ResetPC:    0x8000_0000,
		PMA: []PMARegion{
			{
				Base: 0, Size: 1 << 40,
				Attrs: PMA{Readable: true, Writable: true, Executable: true,
					Cacheable: true, Reservable: true, AMOCapable: true, Idempotent: true},
			},
		},
		Triggers:         TriggerConfig{Count: 4, SupportAddr: true, SupportData: true, SupportIcount: true},
		ReservationBytes: 64,
		CacheLineBytes:   64,
		InterruptPriority: []InterruptCause{
			IntMachineExternal, IntMachineSoftware, IntMachineTimer,
			IntSupervisorExternal, IntSupervisorSoftware, IntSupervisorTimer,
			IntVirtualSupervisorExternal, IntVirtualSupervisorSoftware, IntVirtualSupervisorTimer,
		},
	}
}

// Validate checks internal consistency, returning a *ConfigError naming the
// first offending field (spec §7.2: host-simulator failures name the
// offending input).
func (c *Config) Validate() error {
	if c.XLEN != XLEN32 && c.XLEN != XLEN64 {
		return &ConfigError{"XLEN", fmt.Sprintf("must be 32 or 64, got %d", c.XLEN)}
	}

	if len(c.PMA) == 0 {
		return &ConfigError{"PMA", "at least one physical memory attribute region is required"}
	}

	if len(c.PMP) > 64 {
		return &ConfigError{"PMP", "at most 64 entries are supported"}
	}

	if c.Extensions.Has(ExtV) {
		if c.Vector.VLEN == 0 || c.Vector.VLEN&(c.Vector.VLEN-1) != 0 {
			return &ConfigError{"Vector.VLEN", "must be a nonzero power of two when V is enabled"}
		}

		if c.Vector.MinEEW == 0 || c.Vector.MaxEEW < c.Vector.MinEEW {
			return &ConfigError{"Vector", "MinEEW/MaxEEW must describe a nonempty element-width range"}
		}
	}

	if c.ReservationBytes == 0 || c.ReservationBytes&(c.ReservationBytes-1) != 0 {
		return &ConfigError{"ReservationBytes", "must be a nonzero power of two"}
	}

	if c.CacheLineBytes == 0 || c.CacheLineBytes&(c.CacheLineBytes-1) != 0 {
		return &ConfigError{"CacheLineBytes", "must be a nonzero power of two"}
	}

	if c.Triggers.Count < 0 {
		return &ConfigError{"Triggers.Count", "must not be negative"}
	}

	return nil
}
