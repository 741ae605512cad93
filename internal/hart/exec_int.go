package hart

// exec_int.go implements the RV32I/RV64I base: integer arithmetic,
// branches, jumps, loads/stores and the memory fence (spec §4.H items 1,
// 3).

func registerIntOps() {
	register(OpLUI, func(c execContext) *Trap {
		c.h.Int.Write(uint(c.d.RD), uint64(c.d.Imm))
		return nil
	})

	register(OpAUIPC, func(c execContext) *Trap {
		c.h.Int.Write(uint(c.d.RD), c.h.PC+uint64(c.d.Imm))
		return nil
	})

	register(OpJAL, func(c execContext) *Trap {
		link := c.h.PC + uint64(c.d.Size)
		target := c.h.PC + uint64(c.d.Imm)

		if target%2 != 0 {
			return NewException(ExcInstrAddrMisaligned, target)
		}

		c.h.Int.Write(uint(c.d.RD), link)
		c.h.PC = target

		return nil
	})

	register(OpJALR, func(c execContext) *Trap {
		link := c.h.PC + uint64(c.d.Size)
		target := (c.h.Int.Peek(uint(c.d.RS1)) + uint64(c.d.Imm)) &^ 1

		if target%2 != 0 {
			return NewException(ExcInstrAddrMisaligned, target)
		}

		c.h.Int.Write(uint(c.d.RD), link)
		c.h.PC = target

		return nil
	})

	branch := func(cond func(xlen XLEN, a, b uint64) bool) func(execContext) *Trap {
		return func(c execContext) *Trap {
			a := c.h.Int.Peek(uint(c.d.RS1))
			b := c.h.Int.Peek(uint(c.d.RS2))

			if cond(c.h.cfg.XLEN, a, b) {
				target := c.h.PC + uint64(c.d.Imm)
				if target%2 != 0 {
					return NewException(ExcInstrAddrMisaligned, target)
				}

				c.h.PC = target
				return nil
			}

			c.h.PC += uint64(c.d.Size)

			return nil
		}
	}

	register(OpBEQ, branch(func(_ XLEN, a, b uint64) bool { return a == b }))
	register(OpBNE, branch(func(_ XLEN, a, b uint64) bool { return a != b }))
	register(OpBLT, branch(func(x XLEN, a, b uint64) bool { return x.SignedLT(a, b) }))
	register(OpBGE, branch(func(x XLEN, a, b uint64) bool { return !x.SignedLT(a, b) }))
	register(OpBLTU, branch(func(_ XLEN, a, b uint64) bool { return a < b }))
	register(OpBGEU, branch(func(_ XLEN, a, b uint64) bool { return a >= b }))

	loadOp := func(size uint64, signed bool) func(execContext) *Trap {
		return func(c execContext) *Trap {
			addr := c.h.Int.Peek(uint(c.d.RS1)) + uint64(c.d.Imm)

			v, trap := loadVirtual(c.h, addr, size)
			if trap != nil {
				return trap
			}

			if signed {
				v = Sext(v, uint(size*8))
			}

			c.h.Int.Write(uint(c.d.RD), v)

			return nil
		}
	}

	register(OpLB, loadOp(1, true))
	register(OpLH, loadOp(2, true))
	register(OpLW, loadOp(4, true))
	register(OpLD, loadOp(8, true))
	register(OpLBU, loadOp(1, false))
	register(OpLHU, loadOp(2, false))
	register(OpLWU, loadOp(4, false))

	storeOp := func(size uint64) func(execContext) *Trap {
		return func(c execContext) *Trap {
			addr := c.h.Int.Peek(uint(c.d.RS1)) + uint64(c.d.Imm)
			v := c.h.Int.Peek(uint(c.d.RS2))

			return storeVirtual(c.h, addr, size, v)
		}
	}

	register(OpSB, storeOp(1))
	register(OpSH, storeOp(2))
	register(OpSW, storeOp(4))
	register(OpSD, storeOp(8))

	register(OpADDI, func(c execContext) *Trap {
		c.h.Int.Write(uint(c.d.RD), c.h.Int.Peek(uint(c.d.RS1))+uint64(c.d.Imm))
		return nil
	})

	register(OpSLTI, func(c execContext) *Trap {
		set := c.h.cfg.XLEN.SignedLT(c.h.Int.Peek(uint(c.d.RS1)), uint64(c.d.Imm))
		c.h.Int.Write(uint(c.d.RD), boolWord(set))

		return nil
	})

	register(OpSLTIU, func(c execContext) *Trap {
		set := c.h.Int.Peek(uint(c.d.RS1)) < uint64(c.d.Imm)
		c.h.Int.Write(uint(c.d.RD), boolWord(set))

		return nil
	})

	register(OpXORI, func(c execContext) *Trap {
		c.h.Int.Write(uint(c.d.RD), c.h.Int.Peek(uint(c.d.RS1))^uint64(c.d.Imm))
		return nil
	})

	register(OpORI, func(c execContext) *Trap {
		c.h.Int.Write(uint(c.d.RD), c.h.Int.Peek(uint(c.d.RS1))|uint64(c.d.Imm))
		return nil
	})

	register(OpANDI, func(c execContext) *Trap {
		c.h.Int.Write(uint(c.d.RD), c.h.Int.Peek(uint(c.d.RS1))&uint64(c.d.Imm))
		return nil
	})

	shiftWidth := func(c execContext) uint {
		if c.h.cfg.XLEN == XLEN32 {
			return 31
		}

		return 63
	}

	register(OpSLLI, func(c execContext) *Trap {
		shamt := uint64(c.d.Imm) & uint64(shiftWidth(c))
		c.h.Int.Write(uint(c.d.RD), c.h.Int.Peek(uint(c.d.RS1))<<shamt)

		return nil
	})

	register(OpSRLI, func(c execContext) *Trap {
		shamt := uint64(c.d.Imm) & uint64(shiftWidth(c))
		c.h.Int.Write(uint(c.d.RD), c.h.Int.Peek(uint(c.d.RS1))>>shamt)

		return nil
	})

	register(OpSRAI, func(c execContext) *Trap {
		shamt := uint64(c.d.Imm) & uint64(shiftWidth(c))
		v := c.h.Int.Peek(uint(c.d.RS1))

		var result uint64
		if c.h.cfg.XLEN == XLEN32 {
			result = uint64(uint32(int32(uint32(v)) >> shamt))
		} else {
			result = uint64(int64(v) >> shamt)
		}

		c.h.Int.Write(uint(c.d.RD), result)

		return nil
	})

	rtype := func(fn func(xlen XLEN, a, b uint64) uint64) func(execContext) *Trap {
		return func(c execContext) *Trap {
			a := c.h.Int.Peek(uint(c.d.RS1))
			b := c.h.Int.Peek(uint(c.d.RS2))
			c.h.Int.Write(uint(c.d.RD), fn(c.h.cfg.XLEN, a, b))

			return nil
		}
	}

	register(OpADD, rtype(func(_ XLEN, a, b uint64) uint64 { return a + b }))
	register(OpSUB, rtype(func(_ XLEN, a, b uint64) uint64 { return a - b }))
	register(OpSLL, rtype(func(x XLEN, a, b uint64) uint64 {
		mask := uint64(63)
		if x == XLEN32 {
			mask = 31
		}

		return a << (b & mask)
	}))
	register(OpSLT, rtype(func(x XLEN, a, b uint64) uint64 { return boolWord(x.SignedLT(a, b)) }))
	register(OpSLTU, rtype(func(_ XLEN, a, b uint64) uint64 { return boolWord(a < b) }))
	register(OpXOR, rtype(func(_ XLEN, a, b uint64) uint64 { return a ^ b }))
	register(OpSRL, rtype(func(x XLEN, a, b uint64) uint64 {
		mask := uint64(63)
		if x == XLEN32 {
			mask = 31
		}

		return x.Mask(a) >> (b & mask)
	}))
	register(OpSRA, rtype(func(x XLEN, a, b uint64) uint64 {
		if x == XLEN32 {
			return uint64(uint32(int32(uint32(a)) >> (b & 31)))
		}

		return uint64(int64(a) >> (b & 63))
	}))
	register(OpOR, rtype(func(_ XLEN, a, b uint64) uint64 { return a | b }))
	register(OpAND, rtype(func(_ XLEN, a, b uint64) uint64 { return a & b }))

	register(OpADDIW, func(c execContext) *Trap {
		v := uint32(c.h.Int.Peek(uint(c.d.RS1))) + uint32(c.d.Imm)
		c.h.Int.Write(uint(c.d.RD), uint64(int64(int32(v))))

		return nil
	})

	register(OpSLLIW, func(c execContext) *Trap {
		v := uint32(c.h.Int.Peek(uint(c.d.RS1))) << (uint64(c.d.Imm) & 31)
		c.h.Int.Write(uint(c.d.RD), uint64(int64(int32(v))))

		return nil
	})

	register(OpSRLIW, func(c execContext) *Trap {
		v := uint32(c.h.Int.Peek(uint(c.d.RS1))) >> (uint64(c.d.Imm) & 31)
		c.h.Int.Write(uint(c.d.RD), uint64(int64(int32(v))))

		return nil
	})

	register(OpSRAIW, func(c execContext) *Trap {
		v := int32(uint32(c.h.Int.Peek(uint(c.d.RS1)))) >> (uint64(c.d.Imm) & 31)
		c.h.Int.Write(uint(c.d.RD), uint64(int64(v)))

		return nil
	})

	rtypeW := func(fn func(a, b uint32) uint32) func(execContext) *Trap {
		return func(c execContext) *Trap {
			a := uint32(c.h.Int.Peek(uint(c.d.RS1)))
			b := uint32(c.h.Int.Peek(uint(c.d.RS2)))
			c.h.Int.Write(uint(c.d.RD), uint64(int64(int32(fn(a, b)))))

			return nil
		}
	}

	register(OpADDW, rtypeW(func(a, b uint32) uint32 { return a + b }))
	register(OpSUBW, rtypeW(func(a, b uint32) uint32 { return a - b }))
	register(OpSLLW, rtypeW(func(a, b uint32) uint32 { return a << (b & 31) }))
	register(OpSRLW, rtypeW(func(a, b uint32) uint32 { return a >> (b & 31) }))
	register(OpSRAW, func(c execContext) *Trap {
		a := int32(uint32(c.h.Int.Peek(uint(c.d.RS1))))
		b := uint32(c.h.Int.Peek(uint(c.d.RS2))) & 31
		c.h.Int.Write(uint(c.d.RD), uint64(int64(a>>b)))

		return nil
	})

	register(OpFENCE, func(c execContext) *Trap { return nil })
	register(OpFENCEI, func(c execContext) *Trap {
		c.h.decodeCache = make(map[decodeCacheKey]DecodedInst)
		return nil
	})
}

func boolWord(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}
