package hart

// trap.go implements component G: interrupt pending/enabled evaluation,
// M -> HS -> VS -> U delegation routing, and the trap-taking sequence
// (spec §4.G). It operates purely on the CSR file and Privilege state; the
// hart loop (step.go) calls TakeTrap once a Trap has been decided.

// TrapState is the minimal privilege/virtualization context the trap
// controller needs, mirrored in and out of the hart's cached fast-path
// fields (spec §9 design note on MSTATUS caching).
type TrapState struct {
	Priv    Privilege
	Virtual bool // V bit: currently executing a guest (VS or VU)
}

// PendingInterrupt evaluates MIP & MIE (and, when virtualized, HIDELEG/HVIP/
// VSIE/VSSTATUS) against the delegation CSRs and the current privilege to
// decide which interrupt, if any, is taken next. Returns false if no
// interrupt is both pending and enabled for the current context.
//
// VS-level causes (spec §4.G/§2 row G: "M -> HS -> VS -> U") are only ever
// taken while the hart is virtualized: they are the guest's own interrupts,
// never injected directly into a non-virtual HS/M context.
func PendingInterrupt(csr *CSRFile, st TrapState, priority []InterruptCause) (InterruptCause, bool) {
	mie := csr.PeekRaw(CSRMie)
	mip := csr.PeekRaw(CSRMip)
	mideleg := csr.PeekRaw(CSRMideleg)
	mstatus := csr.PeekRaw(CSRMstatus)

	hideleg := csr.PeekRaw(CSRHideleg)
	hvip := csr.PeekRaw(CSRHvip)
	vsie := csr.PeekRaw(CSRVsie)
	vsstatus := csr.PeekRaw(CSRVsstatus)

	pending := mip & mie

	globallyEnabled := func(target Privilege) bool {
		switch {
		case st.Priv == PrivMachine:
			return mstatus&MstatusMIE != 0
		case st.Priv == PrivSupervisor && target == PrivSupervisor:
			return mstatus&MstatusSIE != 0
		case target == PrivMachine:
			return true // a trap delegated to a lower level never reaches here; M always taken if pending+enabled
		default:
			return true
		}
	}

	for _, cause := range priority {
		bit := uint64(1) << causeBit(cause)

		if isVSCause(cause) {
			if !st.Virtual {
				continue
			}

			// vsie/vsip are the sip/sie-shaped view of hvip/hideleg: cause 2/6/10
			// there show up at bit 1/5/9.
			vsBit := uint64(1) << (causeBit(cause) - 1)

			if hideleg&bit == 0 || hvip&bit == 0 || vsie&vsBit == 0 {
				continue
			}

			// From VU the guest's own supervisor is a higher privilege and the
			// interrupt is always taken; from VS it is gated by VSSTATUS.SIE.
			if st.Priv == PrivSupervisor && vsstatus&MstatusSIE == 0 {
				continue
			}

			return cause, true
		}

		if pending&bit == 0 {
			continue
		}

		delegatedToS := mideleg&bit != 0
		target := PrivMachine
		if delegatedToS {
			target = PrivSupervisor
		}

		// An interrupt whose target level is below the current privilege is
		// not taken; one targeting the current level is taken only if enabled
		// there; one targeting a level above current privilege is always taken.
		if privilegeRank(target) < privilegeRank(st.Priv) {
			continue
		}

		if privilegeRank(target) == privilegeRank(st.Priv) && !globallyEnabled(target) {
			continue
		}

		return cause, true
	}

	return 0, false
}

func causeBit(c InterruptCause) uint {
	switch c {
	case IntSupervisorSoftware:
		return 1
	case IntVirtualSupervisorSoftware:
		return 2
	case IntMachineSoftware:
		return 3
	case IntSupervisorTimer:
		return 5
	case IntVirtualSupervisorTimer:
		return 6
	case IntMachineTimer:
		return 7
	case IntSupervisorExternal:
		return 9
	case IntVirtualSupervisorExternal:
		return 10
	case IntMachineExternal:
		return 11
	default:
		return 63
	}
}

// isVSCause reports whether c is one of the guest-visible VS-level
// interrupt causes, routed through HIDELEG/HVIP/VSIE rather than MIP/MIE.
func isVSCause(c InterruptCause) bool {
	switch c {
	case IntVirtualSupervisorSoftware, IntVirtualSupervisorTimer, IntVirtualSupervisorExternal:
		return true
	default:
		return false
	}
}

func privilegeRank(p Privilege) int {
	switch p {
	case PrivUser:
		return 0
	case PrivSupervisor:
		return 1
	default:
		return 3
	}
}

// DelegationTarget decides which privilege level a synchronous exception
// traps to, honoring MEDELEG/HEDELEG (spec §4.G: "M -> HS -> VS -> U
// delegation routing"). The second return value is enterGuest: whether the
// trap stays inside the guest (VS) or exits it (HS), as HEDELEG decides for
// an exception taken while virtual. Callers must thread this into
// TakeTrap's enterGuest parameter rather than reusing the pre-trap Virtual
// flag, since HEDELEG can route the same cause either way depending on its
// bit.
func DelegationTarget(csr *CSRFile, st TrapState, cause ExceptionCause) (Privilege, bool) {
	medeleg := csr.PeekRaw(CSRMedeleg)
	bit := uint64(1) << uint(cause)

	if medeleg&bit == 0 {
		return PrivMachine, false
	}

	if st.Virtual {
		hedeleg := csr.PeekRaw(CSRHedeleg)
		return PrivSupervisor, hedeleg&bit != 0 // true: stays in VS; false: exits to HS
	}

	return PrivSupervisor, false
}

// TakeTrap performs the full trap-entry sequence: save epc/cause/tval,
// update the xIE/xPIE/xPP fields, and compute the new PC from xTVEC (spec
// §4.G). It returns the new (Priv, Virtual, PC).
func TakeTrap(csr *CSRFile, st TrapState, trap Trap, pc uint64, target Privilege, enterGuest bool) (Privilege, bool, uint64) {
	var epcCSR, causeCSR, tvalCSR, statusCSR, tvecCSR uint16

	switch target {
	case PrivMachine:
		epcCSR, causeCSR, tvalCSR, statusCSR, tvecCSR = CSRMepc, CSRMcause, CSRMtval, CSRMstatus, CSRMtvec
	default:
		if enterGuest {
			epcCSR, causeCSR, tvalCSR, statusCSR, tvecCSR = CSRVsepc, CSRVscause, CSRVstval, CSRVsstatus, CSRVstvec
		} else {
			epcCSR, causeCSR, tvalCSR, statusCSR, tvecCSR = CSRSepc, CSRScause, CSRStval, CSRSstatus, CSRStvec
		}
	}

	csr.Poke(epcCSR, pc)
	csr.Poke(tvalCSR, trap.Tval)

	cause := uint64(trap.ExcCause)
	if !trap.Exception {
		cause = (1 << 63) | uint64(trap.IntCause)
	}

	csr.Poke(causeCSR, cause)

	status := csr.PeekRaw(statusCSR)

	if target == PrivMachine {
		if status&MstatusMIE != 0 {
			status |= MstatusMPIE
		} else {
			status &^= MstatusMPIE
		}

		status &^= MstatusMIE
		status &^= MstatusMPP
		status |= uint64(st.Priv) << MstatusMPPShift

		if trap.GuestAddr {
			status |= MstatusMPV
		} else {
			status &^= MstatusMPV
		}
	} else {
		if status&MstatusSIE != 0 {
			status |= MstatusSPIE
		} else {
			status &^= MstatusSPIE
		}

		status &^= MstatusSIE

		if st.Priv == PrivUser {
			status &^= MstatusSPP
		} else {
			status |= MstatusSPP
		}
	}

	csr.Poke(statusCSR, status)

	newPC := csr.PeekRaw(tvecCSR)
	base := newPC &^ 0x3
	mode := newPC & 0x3

	if mode == 1 && !trap.Exception {
		newPC = base + 4*causeBit(trap.IntCause)
	} else {
		newPC = base
	}

	newVirtual := target == PrivSupervisor && enterGuest

	return target, newVirtual, newPC
}

// ReturnFromTrap implements MRET/SRET: restore Priv/Virtual/PC from the
// xPP/xPIE/xEPC fields of the level being returned from (spec §4.H system
// instructions, listed here since it's the trap controller's inverse
// operation).
func ReturnFromTrap(csr *CSRFile, fromMachine bool) (Privilege, bool, uint64) {
	if fromMachine {
		status := csr.PeekRaw(CSRMstatus)
		mpp := Privilege((status & MstatusMPP) >> MstatusMPPShift)
		mpie := status&MstatusMPIE != 0

		if mpie {
			status |= MstatusMIE
		} else {
			status &^= MstatusMIE
		}

		status |= MstatusMPIE
		status &^= MstatusMPP
		status &^= MstatusMPRV

		mpv := status&MstatusMPV != 0
		status &^= MstatusMPV

		csr.Poke(CSRMstatus, status)

		pc := csr.PeekRaw(CSRMepc)

		return mpp, mpv && mpp != PrivMachine, pc
	}

	status := csr.PeekRaw(CSRSstatus)
	spp := PrivUser
	if status&MstatusSPP != 0 {
		spp = PrivSupervisor
	}

	spie := status&MstatusSPIE != 0
	if spie {
		status |= MstatusSIE
	} else {
		status &^= MstatusSIE
	}

	status |= MstatusSPIE
	status &^= MstatusSPP

	csr.Poke(CSRSstatus, status)

	pc := csr.PeekRaw(CSRSepc)

	return spp, false, pc
}
