package hart

// exec_a.go implements the A extension: load-reserved/store-conditional
// and the read-modify-write AMOs, using the reservation table for LR/SC
// and a plain load-then-store for AMOs (spec §4.H item 3; this simulator
// is single-instruction-atomic, so no inter-hart ordering window exists
// for the AMO's own read-modify-write beyond NotifyStore's reservation
// cancellation).

// checkAMOCapable resolves addr through translation and PMP like any
// store, then additionally requires the PMA AMO-capable attribute (spec
// §4.B, §4.C scenario "AMOADD.W to an address whose PMA disallows AMO ->
// StoreAccessFault; memory unchanged" -- checked before the read half of
// the read-modify-write so neither half is observed to commit).
func checkAMOCapable(h *Hart, addr, size uint64) *Trap {
	_, attrs, trap := resolveVirtual(h, addr, size, AccessStore)
	if trap != nil {
		return trap
	}

	if !attrs.AMOCapable {
		return NewException(ExcStoreAccessFault, addr)
	}

	return nil
}

func registerAOps() {
	lr := func(size uint64) func(execContext) *Trap {
		return func(c execContext) *Trap {
			addr := c.h.Int.Peek(uint(c.d.RS1))

			v, trap := loadVirtual(c.h, addr, size)
			if trap != nil {
				return trap
			}

			resvAddr := addr
			if paddr, _, trap := resolveVirtual(c.h, addr, size, AccessLoad); trap == nil {
				resvAddr = paddr
			}

			c.h.Resv.Reserve(c.h.cfg.HartIndex, resvAddr, uint64(c.h.cfg.ReservationBytes))

			if size == 4 {
				v = Sext(v, 32)
			}

			c.h.Int.Write(uint(c.d.RD), v)

			return nil
		}
	}

	register(OpLRW, lr(4))
	register(OpLRD, lr(8))

	sc := func(size uint64) func(execContext) *Trap {
		return func(c execContext) *Trap {
			addr := c.h.Int.Peek(uint(c.d.RS1))
			v := c.h.Int.Peek(uint(c.d.RS2))

			resvAddr := addr
			if paddr, _, trap := resolveVirtual(c.h, addr, size, AccessStore); trap == nil {
				resvAddr = paddr
			}

			if !c.h.Resv.Check(c.h.cfg.HartIndex, resvAddr) {
				c.h.Resv.Clear(c.h.cfg.HartIndex)
				c.h.Int.Write(uint(c.d.RD), 1) // failure

				return nil
			}

			if trap := storeVirtual(c.h, addr, size, v); trap != nil {
				c.h.Resv.Clear(c.h.cfg.HartIndex)
				return trap
			}

			c.h.Resv.Clear(c.h.cfg.HartIndex)
			c.h.Int.Write(uint(c.d.RD), 0) // success

			return nil
		}
	}

	register(OpSCW, sc(4))
	register(OpSCD, sc(8))

	amo := func(size uint64, signed bool, fn func(old, rs2 uint64) uint64) func(execContext) *Trap {
		return func(c execContext) *Trap {
			addr := c.h.Int.Peek(uint(c.d.RS1))
			rs2 := c.h.Int.Peek(uint(c.d.RS2))

			if trap := checkAMOCapable(c.h, addr, size); trap != nil {
				return trap
			}

			old, trap := loadVirtual(c.h, addr, size)
			if trap != nil {
				return trap
			}

			if signed && size == 4 {
				old = Sext(old, 32)
			}

			newVal := fn(old, rs2)

			if trap := storeVirtual(c.h, addr, size, newVal); trap != nil {
				return trap
			}

			c.h.Int.Write(uint(c.d.RD), old)

			return nil
		}
	}

	register(OpAMOSWAPW, amo(4, true, func(_, b uint64) uint64 { return b }))
	register(OpAMOADDW, amo(4, true, func(a, b uint64) uint64 { return a + b }))
	register(OpAMOXORW, amo(4, true, func(a, b uint64) uint64 { return a ^ b }))
	register(OpAMOANDW, amo(4, true, func(a, b uint64) uint64 { return a & b }))
	register(OpAMOORW, amo(4, true, func(a, b uint64) uint64 { return a | b }))
	register(OpAMOMINW, amo(4, true, func(a, b uint64) uint64 {
		if int32(a) < int32(b) {
			return a
		}

		return b
	}))
	register(OpAMOMAXW, amo(4, true, func(a, b uint64) uint64 {
		if int32(a) > int32(b) {
			return a
		}

		return b
	}))
	register(OpAMOMINUW, amo(4, true, func(a, b uint64) uint64 {
		if uint32(a) < uint32(b) {
			return a
		}

		return b
	}))
	register(OpAMOMAXUW, amo(4, true, func(a, b uint64) uint64 {
		if uint32(a) > uint32(b) {
			return a
		}

		return b
	}))

	register(OpAMOSWAPD, amo(8, false, func(_, b uint64) uint64 { return b }))
	register(OpAMOADDD, amo(8, false, func(a, b uint64) uint64 { return a + b }))
	register(OpAMOXORD, amo(8, false, func(a, b uint64) uint64 { return a ^ b }))
	register(OpAMOANDD, amo(8, false, func(a, b uint64) uint64 { return a & b }))
	register(OpAMOORD, amo(8, false, func(a, b uint64) uint64 { return a | b }))
	register(OpAMOMIND, amo(8, false, func(a, b uint64) uint64 {
		if int64(a) < int64(b) {
			return a
		}

		return b
	}))
	register(OpAMOMAXD, amo(8, false, func(a, b uint64) uint64 {
		if int64(a) > int64(b) {
			return a
		}

		return b
	}))
	register(OpAMOMINUD, amo(8, false, func(a, b uint64) uint64 {
		if a < b {
			return a
		}

		return b
	}))
	register(OpAMOMAXUD, amo(8, false, func(a, b uint64) uint64 {
		if a > b {
			return a
		}

		return b
	}))
}
