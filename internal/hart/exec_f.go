package hart

// exec_f.go implements a representative subset of the F/D extensions:
// loads/stores, the four basic arithmetic ops, single<->double
// conversion, int<->float conversion, sign-injection, classification and
// the raw bit-move instructions (spec §4.H item 4). Arithmetic follows Go's
// native float32/float64 semantics (round to nearest, ties to even) rather
// than a bit-exact soft-float implementation: the instruction's rm field,
// FCSR.FRM and Config.RoundingModeOverride are not consulted, and FFLAGS is
// not updated.

import "math"

func registerFOps() {
	register(OpFLW, func(c execContext) *Trap {
		addr := c.h.Int.Peek(uint(c.d.RS1)) + uint64(c.d.Imm)

		v, trap := loadVirtual(c.h, addr, 4)
		if trap != nil {
			return trap
		}

		c.h.FP.WriteSingle(uint(c.d.RD), uint32(v))

		return nil
	})

	register(OpFLD, func(c execContext) *Trap {
		addr := c.h.Int.Peek(uint(c.d.RS1)) + uint64(c.d.Imm)

		v, trap := loadVirtual(c.h, addr, 8)
		if trap != nil {
			return trap
		}

		c.h.FP.WriteDouble(uint(c.d.RD), v)

		return nil
	})

	register(OpFSW, func(c execContext) *Trap {
		addr := c.h.Int.Peek(uint(c.d.RS1)) + uint64(c.d.Imm)
		return storeVirtual(c.h, addr, 4, uint64(c.h.FP.ReadSingle(uint(c.d.RS2))))
	})

	register(OpFSD, func(c execContext) *Trap {
		addr := c.h.Int.Peek(uint(c.d.RS1)) + uint64(c.d.Imm)
		return storeVirtual(c.h, addr, 8, c.h.FP.ReadDouble(uint(c.d.RS2)))
	})

	fbinS := func(fn func(a, b float32) float32) func(execContext) *Trap {
		return func(c execContext) *Trap {
			a := math.Float32frombits(c.h.FP.ReadSingle(uint(c.d.RS1)))
			b := math.Float32frombits(c.h.FP.ReadSingle(uint(c.d.RS2)))
			c.h.FP.WriteSingle(uint(c.d.RD), math.Float32bits(fn(a, b)))

			return nil
		}
	}

	register(OpFADDS, fbinS(func(a, b float32) float32 { return a + b }))
	register(OpFSUBS, fbinS(func(a, b float32) float32 { return a - b }))
	register(OpFMULS, fbinS(func(a, b float32) float32 { return a * b }))
	register(OpFDIVS, fbinS(func(a, b float32) float32 { return a / b }))

	fbinD := func(fn func(a, b float64) float64) func(execContext) *Trap {
		return func(c execContext) *Trap {
			a := math.Float64frombits(c.h.FP.ReadDouble(uint(c.d.RS1)))
			b := math.Float64frombits(c.h.FP.ReadDouble(uint(c.d.RS2)))
			c.h.FP.WriteDouble(uint(c.d.RD), math.Float64bits(fn(a, b)))

			return nil
		}
	}

	register(OpFADDD, fbinD(func(a, b float64) float64 { return a + b }))
	register(OpFSUBD, fbinD(func(a, b float64) float64 { return a - b }))
	register(OpFMULD, fbinD(func(a, b float64) float64 { return a * b }))
	register(OpFDIVD, fbinD(func(a, b float64) float64 { return a / b }))

	register(OpFCVTSD, func(c execContext) *Trap {
		d := math.Float64frombits(c.h.FP.ReadDouble(uint(c.d.RS1)))
		c.h.FP.WriteSingle(uint(c.d.RD), math.Float32bits(float32(d)))

		return nil
	})

	register(OpFCVTDS, func(c execContext) *Trap {
		s := math.Float32frombits(c.h.FP.ReadSingle(uint(c.d.RS1)))
		c.h.FP.WriteDouble(uint(c.d.RD), math.Float64bits(float64(s)))

		return nil
	})

	register(OpFCVTWS, func(c execContext) *Trap {
		s := math.Float32frombits(c.h.FP.ReadSingle(uint(c.d.RS1)))
		c.h.Int.Write(uint(c.d.RD), uint64(int64(int32(s))))

		return nil
	})

	register(OpFCVTWUS, func(c execContext) *Trap {
		s := math.Float32frombits(c.h.FP.ReadSingle(uint(c.d.RS1)))
		c.h.Int.Write(uint(c.d.RD), uint64(int64(int32(uint32(s)))))

		return nil
	})

	register(OpFCVTSW, func(c execContext) *Trap {
		v := int32(c.h.Int.Peek(uint(c.d.RS1)))
		c.h.FP.WriteSingle(uint(c.d.RD), math.Float32bits(float32(v)))

		return nil
	})

	register(OpFCVTSWU, func(c execContext) *Trap {
		v := uint32(c.h.Int.Peek(uint(c.d.RS1)))
		c.h.FP.WriteSingle(uint(c.d.RD), math.Float32bits(float32(v)))

		return nil
	})

	register(OpFCVTLD, func(c execContext) *Trap {
		d := math.Float64frombits(c.h.FP.ReadDouble(uint(c.d.RS1)))
		c.h.Int.Write(uint(c.d.RD), uint64(int64(d)))

		return nil
	})

	register(OpFCVTDL, func(c execContext) *Trap {
		v := int64(c.h.Int.Peek(uint(c.d.RS1)))
		c.h.FP.WriteDouble(uint(c.d.RD), math.Float64bits(float64(v)))

		return nil
	})

	register(OpFCLASSS, func(c execContext) *Trap {
		raw := c.h.FP.ReadSingle(uint(c.d.RS1))
		s := math.Float32frombits(raw)

		cls := fclass64(float64(s), 0x1p-126)
		if math.IsNaN(float64(s)) && raw&(1<<22) == 0 {
			cls = 1 << 8 // signaling NaN; widening to float64 quiets it
		}

		c.h.Int.Write(uint(c.d.RD), cls)

		return nil
	})

	register(OpFCLASSD, func(c execContext) *Trap {
		d := math.Float64frombits(c.h.FP.ReadDouble(uint(c.d.RS1)))
		c.h.Int.Write(uint(c.d.RD), fclass64(d, 0x1p-1022))

		return nil
	})

	register(OpFSGNJS, func(c execContext) *Trap {
		a := c.h.FP.ReadSingle(uint(c.d.RS1))
		b := c.h.FP.ReadSingle(uint(c.d.RS2))
		c.h.FP.WriteSingle(uint(c.d.RD), (a&0x7fff_ffff)|(b&0x8000_0000))

		return nil
	})

	register(OpFSGNJD, func(c execContext) *Trap {
		a := c.h.FP.ReadDouble(uint(c.d.RS1))
		b := c.h.FP.ReadDouble(uint(c.d.RS2))
		c.h.FP.WriteDouble(uint(c.d.RD), (a&0x7fff_ffff_ffff_ffff)|(b&0x8000_0000_0000_0000))

		return nil
	})

	register(OpFMVXW, func(c execContext) *Trap {
		c.h.Int.Write(uint(c.d.RD), Sext(uint64(c.h.FP.ReadSingle(uint(c.d.RS1))), 32))
		return nil
	})

	register(OpFMVWX, func(c execContext) *Trap {
		c.h.FP.WriteSingle(uint(c.d.RD), uint32(c.h.Int.Peek(uint(c.d.RS1))))
		return nil
	})
}

// fclass64 computes the RISC-V FCLASS bitmask for a float64 value; nonzero
// magnitudes below minNormal (the smallest normal number of the value's
// original precision) classify as subnormal.
func fclass64(f float64, minNormal float64) uint64 {
	switch {
	case math.IsNaN(f):
		bits := math.Float64bits(f)
		if bits&(1<<51) != 0 {
			return 1 << 9 // quiet NaN
		}

		return 1 << 8 // signaling NaN
	case math.IsInf(f, -1):
		return 1 << 0
	case math.IsInf(f, 1):
		return 1 << 7
	case f == 0:
		if math.Signbit(f) {
			return 1 << 3
		}

		return 1 << 4
	case math.Signbit(f):
		if math.Abs(f) < minNormal {
			return 1 << 2
		}

		return 1 << 1
	default:
		if math.Abs(f) < minNormal {
			return 1 << 5
		}

		return 1 << 6
	}
}
