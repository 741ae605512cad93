package hart

// errors.go separates the three error categories spec'd for the core:
// architectural traps, host-simulator failures, and test-bench control
// events. The pattern follows the teacher's MemoryError/ErrAccessControl
// convention: a sentinel plus a detail struct satisfying errors.Is.

import (
	"errors"
	"fmt"
)

// ExceptionCause enumerates the synchronous exception causes from the
// privileged architecture. Values match the RISC-V privileged spec's mcause
// encoding for the exception (non-interrupt) class.
type ExceptionCause uint

const (
	ExcInstrAddrMisaligned ExceptionCause = 0
	ExcInstrAccessFault    ExceptionCause = 1
	ExcIllegalInstruction  ExceptionCause = 2
	ExcBreakpoint          ExceptionCause = 3
	ExcLoadAddrMisaligned  ExceptionCause = 4
	ExcLoadAccessFault     ExceptionCause = 5
	ExcStoreAddrMisaligned ExceptionCause = 6
	ExcStoreAccessFault    ExceptionCause = 7
	ExcEcallFromU          ExceptionCause = 8
	ExcEcallFromS          ExceptionCause = 9
	ExcEcallFromVS         ExceptionCause = 10
	ExcEcallFromM          ExceptionCause = 11
	ExcInstrPageFault      ExceptionCause = 12
	ExcLoadPageFault       ExceptionCause = 13
	ExcStorePageFault      ExceptionCause = 15
	ExcInstrGuestPageFault ExceptionCause = 20
	ExcLoadGuestPageFault  ExceptionCause = 21
	ExcVirtualInstruction  ExceptionCause = 22
	ExcStoreGuestPageFault ExceptionCause = 23
)

//go:generate stringer -type=ExceptionCause
func (c ExceptionCause) String() string {
	switch c {
	case ExcInstrAddrMisaligned:
		return "instruction-address-misaligned"
	case ExcInstrAccessFault:
		return "instruction-access-fault"
	case ExcIllegalInstruction:
		return "illegal-instruction"
	case ExcBreakpoint:
		return "breakpoint"
	case ExcLoadAddrMisaligned:
		return "load-address-misaligned"
	case ExcLoadAccessFault:
		return "load-access-fault"
	case ExcStoreAddrMisaligned:
		return "store-address-misaligned"
	case ExcStoreAccessFault:
		return "store-access-fault"
	case ExcEcallFromU:
		return "ecall-from-u"
	case ExcEcallFromS:
		return "ecall-from-s"
	case ExcEcallFromVS:
		return "ecall-from-vs"
	case ExcEcallFromM:
		return "ecall-from-m"
	case ExcInstrPageFault:
		return "instruction-page-fault"
	case ExcLoadPageFault:
		return "load-page-fault"
	case ExcStorePageFault:
		return "store-page-fault"
	case ExcInstrGuestPageFault:
		return "instruction-guest-page-fault"
	case ExcLoadGuestPageFault:
		return "load-guest-page-fault"
	case ExcVirtualInstruction:
		return "virtual-instruction"
	case ExcStoreGuestPageFault:
		return "store-guest-page-fault"
	default:
		return fmt.Sprintf("exception(%d)", uint(c))
	}
}

// InterruptCause enumerates the asynchronous interrupt causes. The mcause
// value is this cause with the top bit set; see [InterruptCause.Code].
type InterruptCause uint

const (
	IntSupervisorSoftware        InterruptCause = 1
	IntVirtualSupervisorSoftware InterruptCause = 2
	IntMachineSoftware           InterruptCause = 3
	IntSupervisorTimer           InterruptCause = 5
	IntVirtualSupervisorTimer    InterruptCause = 6
	IntMachineTimer              InterruptCause = 7
	IntSupervisorExternal        InterruptCause = 9
	IntVirtualSupervisorExternal InterruptCause = 10
	IntMachineExternal           InterruptCause = 11
	IntNMI                       InterruptCause = 0xffff // sentinel, not a real mcause bit
)

// Code returns the mcause value, with the interrupt bit set, for an XLEN.
func (c InterruptCause) Code(x XLEN) uint64 {
	top := uint64(1) << (uint64(x) - 1)
	return top | uint64(c)
}

// Trap wraps either an exception or interrupt cause as it propagates up
// through the execution core to the trap controller. A taken trap never
// commits register or memory writes from the faulting instruction (spec
// §3 invariants); handlers return *Trap instead of applying side effects
// themselves.
type Trap struct {
	Exception bool // true: synchronous exception; false: interrupt
	ExcCause  ExceptionCause
	IntCause  InterruptCause
	Tval      uint64 // xTVAL: faulting address or instruction bits
	Tval2     uint64 // xTVAL2: guest physical address, for guest-page-faults
	Tinst     uint64 // xTINST: transformed instruction, for guest traps
	GuestAddr bool   // classifies the Tval2/Tinst contents as hypervisor-relevant
}

func (t *Trap) Error() string {
	if t.Exception {
		return fmt.Sprintf("trap: exception: %s tval=%#x", t.ExcCause, t.Tval)
	}

	return fmt.Sprintf("trap: interrupt: cause=%d", t.IntCause)
}

// NewException constructs a synchronous exception trap.
func NewException(cause ExceptionCause, tval uint64) *Trap {
	return &Trap{Exception: true, ExcCause: cause, Tval: tval}
}

// NewInterrupt constructs an asynchronous interrupt trap.
func NewInterrupt(cause InterruptCause) *Trap {
	return &Trap{Exception: false, IntCause: cause}
}

// Host-simulator failures: construction-time or runtime conditions that
// abort the simulation because an input, not the simulated program, is
// inconsistent. These are never routed through the trap controller.
var (
	// ErrConfig is returned when a Config is internally inconsistent, e.g.
	// enabling V without a valid VLEN, or a PMP/PMA layout with overlapping
	// locked entries of different permission.
	ErrConfig = errors.New("host: configuration error")

	// ErrMemoryImage is returned when the backing memory handle is absent or
	// too small for the configured address space.
	ErrMemoryImage = errors.New("host: memory image error")

	// ErrSnapshot is returned when a snapshot file is corrupt or targets an
	// incompatible configuration.
	ErrSnapshot = errors.New("host: snapshot error")
)

// ConfigError names the offending configuration field.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", ErrConfig, e.Field, e.Msg)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func (e *ConfigError) Unwrap() error { return ErrConfig }

// TerminationKind classifies a test-bench control event: a reason the
// simulation stopped that is not an architectural trap.
type TerminationKind uint8

const (
	TermNone          TerminationKind = iota
	TermStopAddress                   // run-until address reached
	TermToHost                        // store to the configured tohost address
	TermExitSyscall                   // an exit-class system call was taken
	TermSnapshot                      // externally signalled snapshot request
	TermROIBoundary                   // region-of-interest boundary crossed
	TermStepBudget                    // bounded run exhausted its step count
	TermBreakpoint                    // a debug trigger requested a stop
	TermCancelled                     // caller-supplied context was cancelled
)

func (k TerminationKind) String() string {
	switch k {
	case TermStopAddress:
		return "stop-address"
	case TermToHost:
		return "tohost"
	case TermExitSyscall:
		return "exit-syscall"
	case TermSnapshot:
		return "snapshot"
	case TermROIBoundary:
		return "roi-boundary"
	case TermStepBudget:
		return "step-budget"
	case TermBreakpoint:
		return "breakpoint"
	case TermCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Termination is surfaced from Run/RunUntil to distinguish successful
// completion of the target program from an architectural fault. A
// test-bench checks Kind and, for TermToHost, the StatusWord's pass/fail
// bit.
type Termination struct {
	Kind       TerminationKind
	StatusWord uint64 // low bit: pass(0)/fail(1); remaining bits: exit code
}

func (t Termination) Error() string {
	return fmt.Sprintf("termination: %s (status=%#x)", t.Kind, t.StatusWord)
}
