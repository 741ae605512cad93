package hart

// exec_system.go implements ECALL/EBREAK/MRET/SRET/WFI and the Zicsr
// instructions (spec §4.H items 6-7). CSR instructions go through
// CSRFile.Read/Write so the privilege/read-only checks of component A
// apply uniformly.

func registerSystemOps() {
	register(OpECALL, func(c execContext) *Trap {
		switch c.h.Priv {
		case PrivUser:
			return NewException(ExcEcallFromU, 0)
		case PrivSupervisor:
			if c.h.Virtual {
				return NewException(ExcEcallFromVS, 0)
			}

			return NewException(ExcEcallFromS, 0)
		default:
			return NewException(ExcEcallFromM, 0)
		}
	})

	register(OpEBREAK, func(c execContext) *Trap {
		return NewException(ExcBreakpoint, c.h.PC)
	})

	register(OpMRET, func(c execContext) *Trap {
		priv, virtual, pc := ReturnFromTrap(c.h.CSR, true)
		c.h.Priv, c.h.Virtual, c.h.PC = priv, virtual, pc
		c.h.Resv.NotifyEvent(c.h.cfg.HartIndex, CancelModeSwitch, c.h.cfg.SCKeepsReservationOnTrap)

		return nil
	})

	register(OpSRET, func(c execContext) *Trap {
		mstatus := c.h.CSR.PeekRaw(CSRMstatus)
		if mstatus&MstatusTSR != 0 && c.h.Priv == PrivSupervisor {
			return NewException(ExcIllegalInstruction, uint64(c.d.Bits))
		}

		priv, virtual, pc := ReturnFromTrap(c.h.CSR, false)
		c.h.Priv, c.h.Virtual, c.h.PC = priv, virtual, pc
		c.h.Resv.NotifyEvent(c.h.cfg.HartIndex, CancelModeSwitch, c.h.cfg.SCKeepsReservationOnTrap)

		return nil
	})

	register(OpWFI, func(c execContext) *Trap {
		mstatus := c.h.CSR.PeekRaw(CSRMstatus)
		if mstatus&MstatusTW != 0 && c.h.Priv != PrivMachine {
			return NewException(ExcIllegalInstruction, uint64(c.d.Bits))
		}

		c.h.PC += uint64(c.d.Size)

		return nil
	})

	csrOp := func(applyNew func(old, rs1 uint64) uint64, immForm bool) func(execContext) *Trap {
		return func(c execContext) *Trap {
			if c.h.hooks.PreCSRInst != nil {
				c.h.hooks.PreCSRInst(c.h.cfg.HartIndex, c.d.CSR)
			}

			old, err := c.h.CSR.Read(c.d.CSR, c.h.Priv, c.h.Virtual)
			if err != nil {
				return err.(*Trap)
			}

			var operand uint64
			if immForm {
				operand = uint64(c.d.Imm)
			} else {
				operand = c.h.Int.Peek(uint(c.d.RS1))
			}

			newVal := applyNew(old, operand)

			// CSRRW[I] with rd=x0 still reads (for side effects) but never
			// writes rd; CSRRS/CSRRC with rs1=x0 (or a zero immediate) reads
			// without writing the CSR at all, per the privileged spec.
			skipWrite := !immForm && c.d.RS1 == 0 && c.d.Op != OpCSRRW
			if immForm && operand == 0 && c.d.Op != OpCSRRWI {
				skipWrite = true
			}

			if !skipWrite {
				if err := c.h.CSR.Write(c.d.CSR, c.h.Priv, c.h.Virtual, newVal); err != nil {
					return err.(*Trap)
				}
			}

			c.h.Int.Write(uint(c.d.RD), old)

			if c.h.hooks.PostCSRInst != nil {
				result := old
				if !skipWrite {
					result = newVal
				}

				c.h.hooks.PostCSRInst(c.h.cfg.HartIndex, c.d.CSR, old, result)
			}

			return nil
		}
	}

	register(OpCSRRW, csrOp(func(_, rs1 uint64) uint64 { return rs1 }, false))
	register(OpCSRRS, csrOp(func(old, rs1 uint64) uint64 { return old | rs1 }, false))
	register(OpCSRRC, csrOp(func(old, rs1 uint64) uint64 { return old &^ rs1 }, false))
	register(OpCSRRWI, csrOp(func(_, imm uint64) uint64 { return imm }, true))
	register(OpCSRRSI, csrOp(func(old, imm uint64) uint64 { return old | imm }, true))
	register(OpCSRRCI, csrOp(func(old, imm uint64) uint64 { return old &^ imm }, true))

	register(OpSFENCEVMA, func(c execContext) *Trap {
		mstatus := c.h.CSR.PeekRaw(CSRMstatus)
		if mstatus&MstatusTVM != 0 && c.h.Priv == PrivSupervisor {
			return NewException(ExcIllegalInstruction, uint64(c.d.Bits))
		}

		if c.d.RS1 == 0 {
			c.h.XLAT.tlb.FlushAll()
		} else {
			addr := c.h.Int.Peek(uint(c.d.RS1))
			_, _, asid := c.h.pagingMode()
			c.h.XLAT.tlb.FlushVAddr(asid, addr, 0)
		}

		return nil
	})

	register(OpHFENCEVVMA, func(c execContext) *Trap {
		c.h.XLAT.tlb.FlushAll()
		return nil
	})

	register(OpHFENCEGVMA, func(c execContext) *Trap {
		c.h.XLAT.tlb.FlushAll()
		return nil
	})
}
