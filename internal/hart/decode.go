package hart

// decode.go implements component E: a pure function from a 16- or 32-bit
// opcode word to a DecodedInst. The decoder never touches hart state; the
// hart is responsible for memoizing it (see decodeCache in step.go).

import "fmt"

// OpID names a decoded operation. The table below covers the RV32/64I base,
// M, A, Zicsr, the system/trap instructions, and a representative slice of
// F/D -- the classes component H implements handlers for. An opcode that
// decodes successfully but whose class is disabled by Config raises
// Illegal-Instruction at execute time (spec §4.H step 1), not at decode
// time, since legality depends on hart state (FS, V, extension set).
type OpID uint16

//go:generate stringer -type=OpID
const (
	OpIllegal OpID = iota

	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLD
	OpLBU
	OpLHU
	OpLWU
	OpSB
	OpSH
	OpSW
	OpSD
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpADDIW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpADDW
	OpSUBW
	OpSLLW
	OpSRLW
	OpSRAW
	OpFENCE
	OpFENCEI
	OpECALL
	OpEBREAK

	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU
	OpMULW
	OpDIVW
	OpDIVUW
	OpREMW
	OpREMUW

	OpLRW
	OpSCW
	OpAMOSWAPW
	OpAMOADDW
	OpAMOXORW
	OpAMOANDW
	OpAMOORW
	OpAMOMINW
	OpAMOMAXW
	OpAMOMINUW
	OpAMOMAXUW
	OpLRD
	OpSCD
	OpAMOSWAPD
	OpAMOADDD
	OpAMOXORD
	OpAMOANDD
	OpAMOORD
	OpAMOMIND
	OpAMOMAXD
	OpAMOMINUD
	OpAMOMAXUD

	OpFLW
	OpFSW
	OpFLD
	OpFSD
	OpFADDS
	OpFSUBS
	OpFMULS
	OpFDIVS
	OpFADDD
	OpFSUBD
	OpFMULD
	OpFDIVD
	OpFCVTSD
	OpFCVTDS
	OpFCVTWS
	OpFCVTWUS
	OpFCVTSW
	OpFCVTSWU
	OpFCVTLD
	OpFCVTDL
	OpFCLASSS
	OpFCLASSD
	OpFSGNJS
	OpFSGNJD
	OpFMVXW
	OpFMVWX

	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI
	OpMRET
	OpSRET
	OpWFI
	OpSFENCEVMA
	OpHFENCEVVMA
	OpHFENCEGVMA

	OpVSETVLI
	OpVSETIVLI
	OpVSETVL
	OpVLE8
	OpVLE16
	OpVLE32
	OpVLE64
	OpVSE8
	OpVSE16
	OpVSE32
	OpVSE64
	OpVADDVV
	OpVADDVX
	OpVSUBVV
	OpVSUBVX
	OpVANDVV
	OpVANDVX
	OpVORVV
	OpVORVX
	OpVXORVV
	OpVXORVX

	opCount
)

// OperandKind distinguishes which fields of an Instruction are meaningful.
type OperandKind uint8

const (
	FormatR OperandKind = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatCSR
	FormatAMO
	FormatFence
	FormatVector
)

// DecodedInst is the decoder's output: an opcode id plus up to four
// operand slots (spec §4.E).
type DecodedInst struct {
	Op     OpID
	Format OperandKind
	Bits   uint32 // original encoding, for re-disassembly and cause/tval reporting
	Size   uint8  // 2 or 4

	RD, RS1, RS2, RS3 uint8
	Imm               int64
	CSR               uint16
	RM                uint8 // rounding mode field
	Aq, Rl            bool  // AMO ordering bits
	Pred, Succ        uint8 // FENCE bits

	// Vector-class fields (spec §4.H item 5). VM is the inverted mask-use
	// bit (vm=0 selects v0.t masking); AVLImm carries vsetivli's 5-bit
	// immediate AVL, which doesn't fit in RS1's register-index role. Store
	// instructions encode their data register (vs3) in RD's bit position,
	// mirroring the scalar S-format's reuse of the rs2 slot.
	VM     bool
	AVLImm uint8
}

func (d DecodedInst) String() string {
	return fmt.Sprintf("%s rd=x%d rs1=x%d rs2=x%d imm=%#x", opName(d.Op), d.RD, d.RS1, d.RS2, d.Imm)
}

// Decode expands a fetched opcode into a DecodedInst (spec §4.E). A 16-bit
// word with low two bits != 0b11 is a compressed instruction and is first
// expanded to its 32-bit equivalent; anything that fails to decode becomes
// the canonical Illegal instruction rather than an error return, matching
// the teacher's pattern of always producing an operation value (teacher:
// internal/vm/exec.go Decode always assigns `oper`).
func Decode(word uint32, compressed bool) DecodedInst {
	if compressed {
		expanded, ok := expandCompressed(uint16(word))
		if !ok {
			return DecodedInst{Op: OpIllegal, Bits: word, Size: 2}
		}

		d := decode32(expanded)
		d.Size = 2
		d.Bits = word

		return d
	}

	d := decode32(word)
	d.Size = 4

	return d
}

func decode32(w uint32) DecodedInst {
	opcode := bits(w, 6, 0)
	funct3 := bits(w, 14, 12)
	funct7 := bits(w, 31, 25)
	rd := uint8(bits(w, 11, 7))
	rs1 := uint8(bits(w, 19, 15))
	rs2 := uint8(bits(w, 24, 20))

	d := DecodedInst{Bits: w, RD: rd, RS1: rs1, RS2: rs2}

	switch opcode {
	case 0b0110111:
		d.Op, d.Format = OpLUI, FormatU
		d.Imm = int64(int32(w & 0xffff_f000))
	case 0b0010111:
		d.Op, d.Format = OpAUIPC, FormatU
		d.Imm = int64(int32(w & 0xffff_f000))
	case 0b1101111:
		d.Op, d.Format = OpJAL, FormatJ
		d.Imm = decodeJImm(w)
	case 0b1100111:
		d.Op, d.Format = OpJALR, FormatI
		d.Imm = int64(Sext(uint64(bits(w, 31, 20)), 12))
	case 0b1100011:
		d.Format = FormatB
		d.Imm = decodeBImm(w)

		switch funct3 {
		case 0b000:
			d.Op = OpBEQ
		case 0b001:
			d.Op = OpBNE
		case 0b100:
			d.Op = OpBLT
		case 0b101:
			d.Op = OpBGE
		case 0b110:
			d.Op = OpBLTU
		case 0b111:
			d.Op = OpBGEU
		default:
			d.Op = OpIllegal
		}
	case 0b0000011:
		d.Format = FormatI
		d.Imm = int64(Sext(uint64(bits(w, 31, 20)), 12))

		switch funct3 {
		case 0b000:
			d.Op = OpLB
		case 0b001:
			d.Op = OpLH
		case 0b010:
			d.Op = OpLW
		case 0b011:
			d.Op = OpLD
		case 0b100:
			d.Op = OpLBU
		case 0b101:
			d.Op = OpLHU
		case 0b110:
			d.Op = OpLWU
		default:
			d.Op = OpIllegal
		}
	case 0b0100011:
		d.Format = FormatS
		d.Imm = decodeSImm(w)

		switch funct3 {
		case 0b000:
			d.Op = OpSB
		case 0b001:
			d.Op = OpSH
		case 0b010:
			d.Op = OpSW
		case 0b011:
			d.Op = OpSD
		default:
			d.Op = OpIllegal
		}
	case 0b0010011:
		d.Format = FormatI
		d.Imm = int64(Sext(uint64(bits(w, 31, 20)), 12))
		shamt := bits(w, 25, 20)

		switch funct3 {
		case 0b000:
			d.Op = OpADDI
		case 0b010:
			d.Op = OpSLTI
		case 0b011:
			d.Op = OpSLTIU
		case 0b100:
			d.Op = OpXORI
		case 0b110:
			d.Op = OpORI
		case 0b111:
			d.Op = OpANDI
		case 0b001:
			d.Op, d.Imm = OpSLLI, int64(shamt)
		case 0b101:
			if bit(w, 30) == 1 {
				d.Op = OpSRAI
			} else {
				d.Op = OpSRLI
			}

			d.Imm = int64(shamt)
		default:
			d.Op = OpIllegal
		}
	case 0b0110011:
		d.Format = FormatR
		d.Op = decodeRType(funct3, funct7, false)
	case 0b0111011:
		d.Format = FormatR
		d.Op = decodeRType(funct3, funct7, true)
	case 0b0011011:
		d.Format = FormatI
		d.Imm = int64(Sext(uint64(bits(w, 31, 20)), 12))
		shamt := bits(w, 24, 20)

		switch funct3 {
		case 0b000:
			d.Op = OpADDIW
		case 0b001:
			d.Op, d.Imm = OpSLLIW, int64(shamt)
		case 0b101:
			if bit(w, 30) == 1 {
				d.Op = OpSRAIW
			} else {
				d.Op = OpSRLIW
			}

			d.Imm = int64(shamt)
		default:
			d.Op = OpIllegal
		}
	case 0b0001111:
		d.Format = FormatFence
		d.Pred = uint8(bits(w, 27, 24))
		d.Succ = uint8(bits(w, 23, 20))
		d.Op = OpFENCE

		if funct3 == 1 {
			d.Op = OpFENCEI
		}
	case 0b1110011:
		d.Format = FormatCSR
		d.CSR = uint16(bits(w, 31, 20))

		switch {
		case w == 0x0000_0073:
			d.Op = OpECALL
		case w == 0x0010_0073:
			d.Op = OpEBREAK
		case w == 0x3020_0073:
			d.Op = OpMRET
		case w == 0x1020_0073:
			d.Op = OpSRET
		case w == 0x1050_0073:
			d.Op = OpWFI
		case funct7 == 0b0001001:
			d.Op = OpSFENCEVMA
		case funct7 == 0b0010001:
			d.Op = OpHFENCEVVMA
		case funct7 == 0b0110001:
			d.Op = OpHFENCEGVMA
		default:
			switch funct3 {
			case 0b001:
				d.Op = OpCSRRW
			case 0b010:
				d.Op = OpCSRRS
			case 0b011:
				d.Op = OpCSRRC
			case 0b101:
				d.Op, d.Imm = OpCSRRWI, int64(rs1)
			case 0b110:
				d.Op, d.Imm = OpCSRRSI, int64(rs1)
			case 0b111:
				d.Op, d.Imm = OpCSRRCI, int64(rs1)
			default:
				d.Op = OpIllegal
			}
		}
	case 0b0101111:
		d.Format = FormatAMO
		d.Aq = bit(w, 26) == 1
		d.Rl = bit(w, 25) == 1
		d.Op = decodeAMO(funct3, bits(w, 31, 27))
	case 0b0000111:
		switch funct3 {
		case 0b010:
			d.Format = FormatI
			d.Imm = int64(Sext(uint64(bits(w, 31, 20)), 12))
			d.Op = OpFLW
		case 0b011:
			d.Format = FormatI
			d.Imm = int64(Sext(uint64(bits(w, 31, 20)), 12))
			d.Op = OpFLD
		case 0b000, 0b101, 0b110, 0b111:
			d.Op = decodeVUnitStrideLoad(w, funct3)
			d.Format = FormatVector
			d.VM = bit(w, 25) == 1
		default:
			d.Op = OpIllegal
		}
	case 0b0100111:
		switch funct3 {
		case 0b010:
			d.Format = FormatS
			d.Imm = decodeSImm(w)
			d.Op = OpFSW
		case 0b011:
			d.Format = FormatS
			d.Imm = decodeSImm(w)
			d.Op = OpFSD
		case 0b000, 0b101, 0b110, 0b111:
			d.Op = decodeVUnitStrideStore(w, funct3)
			d.Format = FormatVector
			d.VM = bit(w, 25) == 1
		default:
			d.Op = OpIllegal
		}
	case 0b1010011:
		d.Format = FormatR
		d.RM = uint8(funct3)
		d.Op = decodeFPOp(funct7, rs2)

		// FMV.X.W and FMV.W.X share funct7 with FCLASS.S and are told apart
		// by funct3 = 000.
		switch {
		case funct7 == 0b1110000 && funct3 == 0b000:
			d.Op = OpFMVXW
		case funct7 == 0b1111000 && funct3 == 0b000:
			d.Op = OpFMVWX
		}
	case 0b1010111:
		d.Format = FormatVector
		d.VM = bit(w, 25) == 1

		switch funct3 {
		case 0b111: // OPCFG: vsetvli/vsetivli/vsetvl
			switch {
			case bits(w, 31, 31) == 0:
				d.Op = OpVSETVLI
				d.Imm = int64(bits(w, 30, 20))
			case bits(w, 31, 30) == 0b11:
				d.Op = OpVSETIVLI
				d.Imm = int64(bits(w, 29, 20))
				d.AVLImm = uint8(bits(w, 19, 15))
			default:
				d.Op = OpVSETVL
			}
		case 0b000: // OPIVV
			d.Op = decodeVArith(funct7>>1, false)
		case 0b100: // OPIVX
			d.Op = decodeVArith(funct7>>1, true)
		default:
			d.Op = OpIllegal
		}
	default:
		d.Op = OpIllegal
	}

	return d
}

func decodeRType(funct3, funct7 uint32, word bool) OpID {
	switch {
	case funct7 == 0b0000001 && !word:
		switch funct3 {
		case 0b000:
			return OpMUL
		case 0b001:
			return OpMULH
		case 0b010:
			return OpMULHSU
		case 0b011:
			return OpMULHU
		case 0b100:
			return OpDIV
		case 0b101:
			return OpDIVU
		case 0b110:
			return OpREM
		case 0b111:
			return OpREMU
		}
	case funct7 == 0b0000001 && word:
		switch funct3 {
		case 0b000:
			return OpMULW
		case 0b100:
			return OpDIVW
		case 0b101:
			return OpDIVUW
		case 0b110:
			return OpREMW
		case 0b111:
			return OpREMUW
		}
	case !word:
		switch funct3 {
		case 0b000:
			if funct7 == 0b0100000 {
				return OpSUB
			}

			return OpADD
		case 0b001:
			return OpSLL
		case 0b010:
			return OpSLT
		case 0b011:
			return OpSLTU
		case 0b100:
			return OpXOR
		case 0b101:
			if funct7 == 0b0100000 {
				return OpSRA
			}

			return OpSRL
		case 0b110:
			return OpOR
		case 0b111:
			return OpAND
		}
	default: // word-sized, not M
		switch funct3 {
		case 0b000:
			if funct7 == 0b0100000 {
				return OpSUBW
			}

			return OpADDW
		case 0b001:
			return OpSLLW
		case 0b101:
			if funct7 == 0b0100000 {
				return OpSRAW
			}

			return OpSRLW
		}
	}

	return OpIllegal
}

// decodeVUnitStrideLoad/Store cover only the unit-stride addressing mode
// (mop=00, lumop/sumop=00000, nf=0): a representative slice of the V
// extension's load/store forms, the way exec_f.go covers a representative
// slice of F/D rather than every rounding/conversion variant.
func decodeVUnitStrideLoad(w uint32, funct3 uint32) OpID {
	mop := bits(w, 27, 26)
	lumop := bits(w, 24, 20)
	nf := bits(w, 31, 29)

	if mop != 0 || lumop != 0 || nf != 0 {
		return OpIllegal
	}

	switch funct3 {
	case 0b000:
		return OpVLE8
	case 0b101:
		return OpVLE16
	case 0b110:
		return OpVLE32
	case 0b111:
		return OpVLE64
	default:
		return OpIllegal
	}
}

func decodeVUnitStrideStore(w uint32, funct3 uint32) OpID {
	mop := bits(w, 27, 26)
	sumop := bits(w, 24, 20)
	nf := bits(w, 31, 29)

	if mop != 0 || sumop != 0 || nf != 0 {
		return OpIllegal
	}

	switch funct3 {
	case 0b000:
		return OpVSE8
	case 0b101:
		return OpVSE16
	case 0b110:
		return OpVSE32
	case 0b111:
		return OpVSE64
	default:
		return OpIllegal
	}
}

// decodeVArith covers a representative slice of OPIVV/OPIVX integer
// arithmetic (ADD/SUB/AND/OR/XOR), keyed on the RVV funct6 field.
func decodeVArith(funct6 uint32, scalar bool) OpID {
	switch funct6 {
	case 0b000000:
		if scalar {
			return OpVADDVX
		}

		return OpVADDVV
	case 0b000010:
		if scalar {
			return OpVSUBVX
		}

		return OpVSUBVV
	case 0b001001:
		if scalar {
			return OpVANDVX
		}

		return OpVANDVV
	case 0b001010:
		if scalar {
			return OpVORVX
		}

		return OpVORVV
	case 0b001011:
		if scalar {
			return OpVXORVX
		}

		return OpVXORVV
	default:
		return OpIllegal
	}
}

func decodeAMO(funct3 uint32, funct5 uint32) OpID {
	word := funct3 == 0b010

	switch funct5 {
	case 0b00010:
		if word {
			return OpLRW
		}

		return OpLRD
	case 0b00011:
		if word {
			return OpSCW
		}

		return OpSCD
	case 0b00001:
		if word {
			return OpAMOSWAPW
		}

		return OpAMOSWAPD
	case 0b00000:
		if word {
			return OpAMOADDW
		}

		return OpAMOADDD
	case 0b00100:
		if word {
			return OpAMOXORW
		}

		return OpAMOXORD
	case 0b01100:
		if word {
			return OpAMOANDW
		}

		return OpAMOANDD
	case 0b01000:
		if word {
			return OpAMOORW
		}

		return OpAMOORD
	case 0b10000:
		if word {
			return OpAMOMINW
		}

		return OpAMOMIND
	case 0b10100:
		if word {
			return OpAMOMAXW
		}

		return OpAMOMAXD
	case 0b11000:
		if word {
			return OpAMOMINUW
		}

		return OpAMOMINUD
	case 0b11100:
		if word {
			return OpAMOMAXUW
		}

		return OpAMOMAXUD
	}

	return OpIllegal
}

func decodeFPOp(funct7, rs2 uint32) OpID {
	switch funct7 {
	case 0b0000000:
		return OpFADDS
	case 0b0000100:
		return OpFSUBS
	case 0b0001000:
		return OpFMULS
	case 0b0001100:
		return OpFDIVS
	case 0b0000001:
		return OpFADDD
	case 0b0000101:
		return OpFSUBD
	case 0b0001001:
		return OpFMULD
	case 0b0001101:
		return OpFDIVD
	case 0b0100000:
		return OpFCVTSD
	case 0b0100001:
		return OpFCVTDS
	case 0b1100000:
		if rs2 == 0 {
			return OpFCVTWS
		}

		return OpFCVTWUS
	case 0b1101000:
		if rs2 == 0 {
			return OpFCVTSW
		}

		return OpFCVTSWU
	case 0b1100001:
		return OpFCVTLD
	case 0b1101001:
		return OpFCVTDL
	case 0b1110000:
		return OpFCLASSS
	case 0b1110001:
		return OpFCLASSD
	case 0b0010000:
		return OpFSGNJS
	case 0b0010001:
		return OpFSGNJD
	}

	return OpIllegal
}

func decodeJImm(w uint32) int64 {
	imm := (bit(w, 31) << 20) | (bits(w, 19, 12) << 12) | (bit(w, 20) << 11) | (bits(w, 30, 21) << 1)
	return int64(Sext(uint64(imm), 21))
}

func decodeBImm(w uint32) int64 {
	imm := (bit(w, 31) << 12) | (bit(w, 7) << 11) | (bits(w, 30, 25) << 5) | (bits(w, 11, 8) << 1)
	return int64(Sext(uint64(imm), 13))
}

func decodeSImm(w uint32) int64 {
	imm := (bits(w, 31, 25) << 5) | bits(w, 11, 7)
	return int64(Sext(uint64(imm), 12))
}

// expandCompressed expands a 16-bit C-extension opcode to its 32-bit
// equivalent. Only a handful of forms (C.NOP, C.ADDI, C.JR, C.JALR, C.MV,
// C.ADD) are modeled; anything else, including C.LI, C.J and C.LW/C.SW,
// reports !ok and decodes as Illegal, per spec §4.E.
func expandCompressed(w uint16) (uint32, bool) {
	op := w & 0x3
	funct3 := (w >> 13) & 0x7

	switch {
	case w == 0x0001: // C.NOP
		return 0x0000_0013, true // ADDI x0, x0, 0
	case op == 0b01 && funct3 == 0b000: // C.ADDI
		rd := uint32(w>>7) & 0x1f
		imm := Sext(uint64((w>>12)&1)<<5|uint64((w>>2)&0x1f), 6)

		return encodeIType(uint32(imm), rd, rd, 0b000, 0b0010011), true
	case op == 0b10 && funct3 == 0b100 && (w>>12)&1 == 0 && (w>>2)&0x1f == 0: // C.JR
		rs1 := uint32(w>>7) & 0x1f
		if rs1 == 0 {
			return 0, false
		}

		return encodeIType(0, 0, rs1, 0, 0b1100111), true
	case op == 0b10 && funct3 == 0b100 && (w>>12)&1 == 1 && (w>>2)&0x1f == 0: // C.JALR
		rs1 := uint32(w>>7) & 0x1f
		if rs1 == 0 {
			return 0, false
		}

		return encodeIType(0, 1, rs1, 0, 0b1100111), true
	case op == 0b10 && funct3 == 0b100: // C.MV / C.ADD
		rd := uint32(w>>7) & 0x1f
		rs2 := uint32(w>>2) & 0x1f

		if (w>>12)&1 == 0 {
			return encodeRType(0, rs2, rd, 0b000, 0b0000000, 0b0110011), true // ADD rd, x0, rs2
		}

		return encodeRType(rd, rs2, rd, 0b000, 0b0000000, 0b0110011), true // ADD rd, rd, rs2
	default:
		return 0, false
	}
}

func encodeIType(imm uint32, rd, rs1 uint32, funct3 uint32, opcode uint32) uint32 {
	return (imm&0xfff)<<20 | (rs1&0x1f)<<15 | (funct3&0x7)<<12 | (rd&0x1f)<<7 | opcode&0x7f
}

func encodeRType(rs1, rs2, rd uint32, funct3 uint32, funct7 uint32, opcode uint32) uint32 {
	return funct7<<25 | (rs2&0x1f)<<20 | (rs1&0x1f)<<15 | (funct3&0x7)<<12 | (rd&0x1f)<<7 | opcode&0x7f
}

func opName(op OpID) string {
	if int(op) < len(opNames) {
		return opNames[op]
	}

	return "UNKNOWN"
}

// String returns the instruction mnemonic for op.
func (op OpID) String() string { return opName(op) }

var opNames = [...]string{
	OpIllegal: "illegal",
	OpLUI: "lui", OpAUIPC: "auipc", OpJAL: "jal", OpJALR: "jalr",
	OpBEQ: "beq", OpBNE: "bne", OpBLT: "blt", OpBGE: "bge", OpBLTU: "bltu", OpBGEU: "bgeu",
	OpLB: "lb", OpLH: "lh", OpLW: "lw", OpLD: "ld", OpLBU: "lbu", OpLHU: "lhu", OpLWU: "lwu",
	OpSB: "sb", OpSH: "sh", OpSW: "sw", OpSD: "sd",
	OpADDI: "addi", OpSLTI: "slti", OpSLTIU: "sltiu", OpXORI: "xori", OpORI: "ori", OpANDI: "andi",
	OpSLLI: "slli", OpSRLI: "srli", OpSRAI: "srai",
	OpADD: "add", OpSUB: "sub", OpSLL: "sll", OpSLT: "slt", OpSLTU: "sltu", OpXOR: "xor",
	OpSRL: "srl", OpSRA: "sra", OpOR: "or", OpAND: "and",
	OpADDIW: "addiw", OpSLLIW: "slliw", OpSRLIW: "srliw", OpSRAIW: "sraiw",
	OpADDW: "addw", OpSUBW: "subw", OpSLLW: "sllw", OpSRLW: "srlw", OpSRAW: "sraw",
	OpFENCE: "fence", OpFENCEI: "fence.i", OpECALL: "ecall", OpEBREAK: "ebreak",
	OpMUL: "mul", OpMULH: "mulh", OpMULHSU: "mulhsu", OpMULHU: "mulhu",
	OpDIV: "div", OpDIVU: "divu", OpREM: "rem", OpREMU: "remu",
	OpMULW: "mulw", OpDIVW: "divw", OpDIVUW: "divuw", OpREMW: "remw", OpREMUW: "remuw",
	OpLRW: "lr.w", OpSCW: "sc.w", OpAMOSWAPW: "amoswap.w", OpAMOADDW: "amoadd.w",
	OpAMOXORW: "amoxor.w", OpAMOANDW: "amoand.w", OpAMOORW: "amoor.w",
	OpAMOMINW: "amomin.w", OpAMOMAXW: "amomax.w", OpAMOMINUW: "amominu.w", OpAMOMAXUW: "amomaxu.w",
	OpLRD: "lr.d", OpSCD: "sc.d", OpAMOSWAPD: "amoswap.d", OpAMOADDD: "amoadd.d",
	OpAMOXORD: "amoxor.d", OpAMOANDD: "amoand.d", OpAMOORD: "amoor.d",
	OpAMOMIND: "amomin.d", OpAMOMAXD: "amomax.d", OpAMOMINUD: "amominu.d", OpAMOMAXUD: "amomaxu.d",
	OpFLW: "flw", OpFSW: "fsw", OpFLD: "fld", OpFSD: "fsd",
	OpFADDS: "fadd.s", OpFSUBS: "fsub.s", OpFMULS: "fmul.s", OpFDIVS: "fdiv.s",
	OpFADDD: "fadd.d", OpFSUBD: "fsub.d", OpFMULD: "fmul.d", OpFDIVD: "fdiv.d",
	OpFCVTSD: "fcvt.s.d", OpFCVTDS: "fcvt.d.s",
	OpFCVTWS: "fcvt.w.s", OpFCVTWUS: "fcvt.wu.s", OpFCVTSW: "fcvt.s.w", OpFCVTSWU: "fcvt.s.wu",
	OpFCVTLD: "fcvt.l.d", OpFCVTDL: "fcvt.d.l",
	OpFCLASSS: "fclass.s", OpFCLASSD: "fclass.d", OpFSGNJS: "fsgnj.s", OpFSGNJD: "fsgnj.d",
	OpFMVXW: "fmv.x.w", OpFMVWX: "fmv.w.x",
	OpCSRRW: "csrrw", OpCSRRS: "csrrs", OpCSRRC: "csrrc",
	OpCSRRWI: "csrrwi", OpCSRRSI: "csrrsi", OpCSRRCI: "csrrci",
	OpMRET: "mret", OpSRET: "sret", OpWFI: "wfi",
	OpSFENCEVMA: "sfence.vma", OpHFENCEVVMA: "hfence.vvma", OpHFENCEGVMA: "hfence.gvma",
	OpVSETVLI: "vsetvli", OpVSETIVLI: "vsetivli", OpVSETVL: "vsetvl",
	OpVLE8: "vle8.v", OpVLE16: "vle16.v", OpVLE32: "vle32.v", OpVLE64: "vle64.v",
	OpVSE8: "vse8.v", OpVSE16: "vse16.v", OpVSE32: "vse32.v", OpVSE64: "vse64.v",
	OpVADDVV: "vadd.vv", OpVADDVX: "vadd.vx", OpVSUBVV: "vsub.vv", OpVSUBVX: "vsub.vx",
	OpVANDVV: "vand.vv", OpVANDVX: "vand.vx", OpVORVV: "vor.vv", OpVORVX: "vor.vx",
	OpVXORVV: "vxor.vv", OpVXORVX: "vxor.vx",
}
