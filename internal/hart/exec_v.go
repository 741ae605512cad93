package hart

// exec_v.go implements a representative slice of component H's vector
// instruction class (spec §4.H item 5): vsetvli/vsetivli/vsetvl, masked
// unit-stride loads/stores, and integer vector-vector/vector-scalar
// ADD/SUB/AND/OR/XOR. As with exec_f.go's F/D subset, the handful of forms
// here exercise the vstart/vl loop, mask-agnostic/undisturbed and
// tail-agnostic/undisturbed element policies the spec calls out rather
// than the full RVV opcode space.

func registerVOps() {
	register(OpVSETVLI, func(c execContext) *Trap {
		rs1 := c.h.Int.Peek(uint(c.d.RS1))
		return applyVset(c.h, uint(c.d.RD), uint64(c.d.Imm), rs1, c.d.RS1 == 0, c.d.RD == 0)
	})

	register(OpVSETIVLI, func(c execContext) *Trap {
		return applyVset(c.h, uint(c.d.RD), uint64(c.d.Imm), uint64(c.d.AVLImm), false, false)
	})

	register(OpVSETVL, func(c execContext) *Trap {
		rs1 := c.h.Int.Peek(uint(c.d.RS1))
		vtypeVal := c.h.Int.Peek(uint(c.d.RS2))
		return applyVset(c.h, uint(c.d.RD), vtypeVal, rs1, c.d.RS1 == 0, c.d.RD == 0)
	})

	register(OpVLE8, vectorLoad(8))
	register(OpVLE16, vectorLoad(16))
	register(OpVLE32, vectorLoad(32))
	register(OpVLE64, vectorLoad(64))
	register(OpVSE8, vectorStore(8))
	register(OpVSE16, vectorStore(16))
	register(OpVSE32, vectorStore(32))
	register(OpVSE64, vectorStore(64))

	register(OpVADDVV, vectorBinary(func(a, b uint64) uint64 { return a + b }, false))
	register(OpVADDVX, vectorBinary(func(a, b uint64) uint64 { return a + b }, true))
	register(OpVSUBVV, vectorBinary(func(a, b uint64) uint64 { return a - b }, false))
	register(OpVSUBVX, vectorBinary(func(scalar, vs2 uint64) uint64 { return vs2 - scalar }, true))
	register(OpVANDVV, vectorBinary(func(a, b uint64) uint64 { return a & b }, false))
	register(OpVANDVX, vectorBinary(func(a, b uint64) uint64 { return a & b }, true))
	register(OpVORVV, vectorBinary(func(a, b uint64) uint64 { return a | b }, false))
	register(OpVORVX, vectorBinary(func(a, b uint64) uint64 { return a | b }, true))
	register(OpVXORVV, vectorBinary(func(a, b uint64) uint64 { return a ^ b }, false))
	register(OpVXORVX, vectorBinary(func(a, b uint64) uint64 { return a ^ b }, true))
}

// vtypeFields unpacks the fields of VTYPE that the vl/vl-loop and element
// policies need (spec §4.H item 5, glossary NAPOT/tail-agnostic terms).
type vtypeFields struct {
	sew              uint
	lmulNum, lmulDen uint64
	vta, vma         bool
}

func decodeVtype(raw uint64) vtypeFields {
	sewCode := (raw >> 3) & 0x7
	lmulCode := raw & 0x7

	vt := vtypeFields{
		sew: 8 << sewCode,
		vta: raw&(1<<6) != 0,
		vma: raw&(1<<7) != 0,
	}

	switch lmulCode {
	case 1:
		vt.lmulNum, vt.lmulDen = 2, 1
	case 2:
		vt.lmulNum, vt.lmulDen = 4, 1
	case 3:
		vt.lmulNum, vt.lmulDen = 8, 1
	case 5:
		vt.lmulNum, vt.lmulDen = 1, 8
	case 6:
		vt.lmulNum, vt.lmulDen = 1, 4
	case 7:
		vt.lmulNum, vt.lmulDen = 1, 2
	default:
		vt.lmulNum, vt.lmulDen = 1, 1
	}

	return vt
}

// vlmax returns VLEN/SEW*LMUL, the largest legal vl for the configured
// geometry and the active vtype (spec §6 "vector geometry (VLEN, min/max
// EEW per LMUL)").
func vlmax(h *Hart, vt vtypeFields) uint64 {
	if vt.sew == 0 {
		return 0
	}

	return uint64(h.cfg.Vector.VLEN) * vt.lmulNum / (uint64(vt.sew) * vt.lmulDen)
}

// applyVset is the shared body of vsetvli/vsetivli/vsetvl: compute VLMAX
// from the requested vtype, clamp AVL to it (or keep the current vl when
// rd=x0/rs1=x0, the "no change" encoding), and commit vl/vtype/vstart via
// Poke since these are side effects of the instruction's own semantics,
// not instruction-driven CSR writes (spec §4.A CSRFile.Poke vs Write).
func applyVset(h *Hart, rd uint, vtypeRaw, avl uint64, rs1IsZero, rdIsZero bool) *Trap {
	vt := decodeVtype(vtypeRaw)
	vmax := vlmax(h, vt)

	var vl uint64

	switch {
	case rs1IsZero && rdIsZero:
		vl = h.CSR.PeekRaw(CSRVl)
		if vl > vmax {
			vl = vmax
		}
	case rs1IsZero:
		vl = vmax
	default:
		vl = avl
		if vl > vmax {
			vl = vmax
		}
	}

	h.CSR.Poke(CSRVl, vl)
	h.CSR.Poke(CSRVtype, vtypeRaw&0xff)
	h.CSR.Poke(CSRVstart, 0)
	h.Int.Write(rd, vl)

	return nil
}

// maskBit reports whether element idx is selected in mask register v0
// (spec §4.H item 5 "honours mask register with ... policies").
func maskBit(h *Hart, idx uint64) bool {
	return h.Vec.Element(0, uint(idx/8), 8)&(1<<(idx%8)) != 0
}

func maskForWidth(eew uint) uint64 {
	if eew >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << eew) - 1
}

// vectorLoop walks [vstart, vmax) once for every vector handler, applying
// tail-agnostic/undisturbed past vl and mask-agnostic/undisturbed for
// unselected elements under a mask (spec §4.H item 5). body is called only
// for elements that are both within vl and mask-selected; it returns the
// trap, if any, raised performing that element (used by loads/stores).
func vectorLoop(h *Hart, vd uint, eew uint, vm bool, body func(idx uint64) (uint64, *Trap, bool)) *Trap {
	vl := h.CSR.PeekRaw(CSRVl)
	vstart := h.CSR.PeekRaw(CSRVstart)
	vt := decodeVtype(h.CSR.PeekRaw(CSRVtype))
	vmax := vlmax(h, vt)
	masked := !vm

	for idx := vstart; idx < vmax; idx++ {
		if idx >= vl {
			if vt.vta {
				h.Vec.SetElement(vd, uint(idx), eew, maskForWidth(eew))
			}

			continue
		}

		if masked && !maskBit(h, idx) {
			if vt.vma {
				h.Vec.SetElement(vd, uint(idx), eew, maskForWidth(eew))
			}

			continue
		}

		val, trap, writes := body(idx)
		if trap != nil {
			h.CSR.Poke(CSRVstart, idx)
			return trap
		}

		if writes {
			h.Vec.SetElement(vd, uint(idx), eew, val&maskForWidth(eew))
		}
	}

	h.CSR.Poke(CSRVstart, 0)

	return nil
}

func vectorLoad(eew uint) func(execContext) *Trap {
	return func(c execContext) *Trap {
		base := c.h.Int.Peek(uint(c.d.RS1))
		eewBytes := uint64(eew) / 8

		return vectorLoop(c.h, uint(c.d.RD), eew, c.d.VM, func(idx uint64) (uint64, *Trap, bool) {
			v, trap := loadVirtual(c.h, base+idx*eewBytes, eewBytes)
			return v, trap, true
		})
	}
}

// vectorStore doesn't go through vectorLoop's write-back policy (a store
// never writes a vector register); it only honours vstart/vl and masking.
// The source-data register is encoded in the instruction's rd bit
// position (vs3), mirroring the scalar S-format's reuse of rs2 for FSW/FSD.
func vectorStore(eew uint) func(execContext) *Trap {
	return func(c execContext) *Trap {
		h := c.h
		base := h.Int.Peek(uint(c.d.RS1))
		eewBytes := uint64(eew) / 8

		vl := h.CSR.PeekRaw(CSRVl)
		vstart := h.CSR.PeekRaw(CSRVstart)
		masked := !c.d.VM

		for idx := vstart; idx < vl; idx++ {
			if masked && !maskBit(h, idx) {
				continue
			}

			v := h.Vec.Element(uint(c.d.RD), uint(idx), eew)
			if trap := storeVirtual(h, base+idx*eewBytes, eewBytes, v); trap != nil {
				h.CSR.Poke(CSRVstart, idx)
				return trap
			}
		}

		h.CSR.Poke(CSRVstart, 0)

		return nil
	}
}

// vectorBinary builds an OPIVV/OPIVX handler: op's first argument is the
// scalar (for *.vx) or vs1 element (for *.vv), its second is always the
// vs2 element -- callers needing a non-commutative *.vx op (VSUB.VX is
// vs2-minus-scalar, not scalar-minus-vs2) write op accordingly.
func vectorBinary(op func(a, b uint64) uint64, scalarRS bool) func(execContext) *Trap {
	return func(c execContext) *Trap {
		h := c.h
		vt := decodeVtype(h.CSR.PeekRaw(CSRVtype))
		eew := vt.sew

		var scalar uint64
		if scalarRS {
			scalar = h.Int.Peek(uint(c.d.RS1))
		}

		return vectorLoop(h, uint(c.d.RD), eew, c.d.VM, func(idx uint64) (uint64, *Trap, bool) {
			b := h.Vec.Element(uint(c.d.RS2), uint(idx), eew)

			a := scalar
			if !scalarRS {
				a = h.Vec.Element(uint(c.d.RS1), uint(idx), eew)
			}

			return op(a, b), nil, true
		})
	}
}
