package hart

// exec_m.go implements the M extension: integer multiply/divide (spec
// §4.H item 2), plus the 32-bit *W variants on RV64.

func registerMOps() {
	register(OpMUL, func(c execContext) *Trap {
		a := c.h.Int.Peek(uint(c.d.RS1))
		b := c.h.Int.Peek(uint(c.d.RS2))
		c.h.Int.Write(uint(c.d.RD), a*b)

		return nil
	})

	register(OpMULH, func(c execContext) *Trap {
		a := int64(c.h.Int.Peek(uint(c.d.RS1)))
		b := int64(c.h.Int.Peek(uint(c.d.RS2)))
		hi, _ := mulHiLoSigned(a, b)
		c.h.Int.Write(uint(c.d.RD), uint64(hi))

		return nil
	})

	register(OpMULHU, func(c execContext) *Trap {
		a := c.h.Int.Peek(uint(c.d.RS1))
		b := c.h.Int.Peek(uint(c.d.RS2))
		hi, _ := mulHiLoUnsigned(a, b)
		c.h.Int.Write(uint(c.d.RD), hi)

		return nil
	})

	register(OpMULHSU, func(c execContext) *Trap {
		a := int64(c.h.Int.Peek(uint(c.d.RS1)))
		b := c.h.Int.Peek(uint(c.d.RS2))

		neg := a < 0

		ua := uint64(a)
		if neg {
			ua = uint64(-a)
		}

		hi, _ := mulHiLoUnsigned(ua, b)
		if neg {
			lo := ua * b
			hi = ^hi
			if lo == 0 {
				hi++
			}
		}

		c.h.Int.Write(uint(c.d.RD), hi)

		return nil
	})

	register(OpDIV, func(c execContext) *Trap {
		a := int64(c.h.Int.Peek(uint(c.d.RS1)))
		b := int64(c.h.Int.Peek(uint(c.d.RS2)))

		switch {
		case b == 0:
			c.h.Int.Write(uint(c.d.RD), ^uint64(0))
		case a == minInt64 && b == -1:
			c.h.Int.Write(uint(c.d.RD), uint64(a))
		default:
			c.h.Int.Write(uint(c.d.RD), uint64(a/b))
		}

		return nil
	})

	register(OpDIVU, func(c execContext) *Trap {
		a := c.h.Int.Peek(uint(c.d.RS1))
		b := c.h.Int.Peek(uint(c.d.RS2))

		if b == 0 {
			c.h.Int.Write(uint(c.d.RD), ^uint64(0))
		} else {
			c.h.Int.Write(uint(c.d.RD), a/b)
		}

		return nil
	})

	register(OpREM, func(c execContext) *Trap {
		a := int64(c.h.Int.Peek(uint(c.d.RS1)))
		b := int64(c.h.Int.Peek(uint(c.d.RS2)))

		switch {
		case b == 0:
			c.h.Int.Write(uint(c.d.RD), uint64(a))
		case a == minInt64 && b == -1:
			c.h.Int.Write(uint(c.d.RD), 0)
		default:
			c.h.Int.Write(uint(c.d.RD), uint64(a%b))
		}

		return nil
	})

	register(OpREMU, func(c execContext) *Trap {
		a := c.h.Int.Peek(uint(c.d.RS1))
		b := c.h.Int.Peek(uint(c.d.RS2))

		if b == 0 {
			c.h.Int.Write(uint(c.d.RD), a)
		} else {
			c.h.Int.Write(uint(c.d.RD), a%b)
		}

		return nil
	})

	register(OpMULW, func(c execContext) *Trap {
		a := int32(uint32(c.h.Int.Peek(uint(c.d.RS1))))
		b := int32(uint32(c.h.Int.Peek(uint(c.d.RS2))))
		c.h.Int.Write(uint(c.d.RD), uint64(int64(a*b)))

		return nil
	})

	register(OpDIVW, func(c execContext) *Trap {
		a := int32(uint32(c.h.Int.Peek(uint(c.d.RS1))))
		b := int32(uint32(c.h.Int.Peek(uint(c.d.RS2))))

		switch {
		case b == 0:
			c.h.Int.Write(uint(c.d.RD), ^uint64(0))
		case a == minInt32 && b == -1:
			c.h.Int.Write(uint(c.d.RD), uint64(int64(a)))
		default:
			c.h.Int.Write(uint(c.d.RD), uint64(int64(a/b)))
		}

		return nil
	})

	register(OpDIVUW, func(c execContext) *Trap {
		a := uint32(c.h.Int.Peek(uint(c.d.RS1)))
		b := uint32(c.h.Int.Peek(uint(c.d.RS2)))

		if b == 0 {
			c.h.Int.Write(uint(c.d.RD), ^uint64(0))
		} else {
			c.h.Int.Write(uint(c.d.RD), uint64(int64(int32(a/b))))
		}

		return nil
	})

	register(OpREMW, func(c execContext) *Trap {
		a := int32(uint32(c.h.Int.Peek(uint(c.d.RS1))))
		b := int32(uint32(c.h.Int.Peek(uint(c.d.RS2))))

		switch {
		case b == 0:
			c.h.Int.Write(uint(c.d.RD), uint64(int64(a)))
		case a == minInt32 && b == -1:
			c.h.Int.Write(uint(c.d.RD), 0)
		default:
			c.h.Int.Write(uint(c.d.RD), uint64(int64(a%b)))
		}

		return nil
	})

	register(OpREMUW, func(c execContext) *Trap {
		a := uint32(c.h.Int.Peek(uint(c.d.RS1)))
		b := uint32(c.h.Int.Peek(uint(c.d.RS2)))

		if b == 0 {
			c.h.Int.Write(uint(c.d.RD), uint64(int64(int32(a))))
		} else {
			c.h.Int.Write(uint(c.d.RD), uint64(int64(int32(a%b))))
		}

		return nil
	})
}

const (
	minInt64 = int64(-1) << 63
	minInt32 = int32(-1) << 31
)

func mulHiLoUnsigned(a, b uint64) (hi, lo uint64) {
	const mask32 = 0xffff_ffff

	aLo, aHi := a&mask32, a>>32
	bLo, bHi := b&mask32, b>>32

	t := aLo * bLo
	w0 := t & mask32
	k := t >> 32

	t = aHi*bLo + k
	w1 := t & mask32
	w2 := t >> 32

	t = aLo*bHi + w1
	k = t >> 32

	lo = (t << 32) | w0
	hi = aHi*bHi + w2 + k

	return hi, lo
}

func mulHiLoSigned(a, b int64) (hi, lo int64) {
	negA, negB := a < 0, b < 0

	ua, ub := uint64(a), uint64(b)
	if negA {
		ua = uint64(-a)
	}

	if negB {
		ub = uint64(-b)
	}

	uhi, ulo := mulHiLoUnsigned(ua, ub)

	if negA != negB {
		ulo = ^ulo + 1
		uhi = ^uhi

		if ulo == 0 {
			uhi++
		}
	}

	return int64(uhi), int64(ulo)
}
