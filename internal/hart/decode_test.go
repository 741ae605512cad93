package hart

import "testing"

func TestDecodeADDI(t *testing.T) {
	// addi x5, x6, -1
	w := encodeIType(uint32(Sext(0xfff, 12)), 5, 6, 0b000, 0b0010011)

	d := Decode(w, false)

	if d.Op != OpADDI {
		t.Fatalf("op = %v, want OpADDI", d.Op)
	}

	if d.RD != 5 || d.RS1 != 6 {
		t.Fatalf("rd=%d rs1=%d, want rd=5 rs1=6", d.RD, d.RS1)
	}

	if d.Imm != -1 {
		t.Fatalf("imm = %d, want -1", d.Imm)
	}
}

func TestDecodeAMOADDW(t *testing.T) {
	// amoadd.w x3, x2, (x1): opcode 0101111, funct3=010, funct5=00000
	w := uint32(0)
	w |= 0b0101111         // opcode
	w |= 0b010 << 12       // funct3 = word
	w |= 1 << 15           // rs1 = x1
	w |= 2 << 20           // rs2 = x2
	w |= 3 << 7            // rd = x3
	w |= 0b00000 << 27     // funct5 = AMOADD

	d := Decode(w, false)

	if d.Op != OpAMOADDW {
		t.Fatalf("op = %v, want OpAMOADDW", d.Op)
	}

	if d.RS1 != 1 || d.RS2 != 2 || d.RD != 3 {
		t.Fatalf("rs1=%d rs2=%d rd=%d, want 1/2/3", d.RS1, d.RS2, d.RD)
	}
}

func TestDecodeVSETVLI(t *testing.T) {
	// vsetvli x1, x2, e32,m1,ta,ma
	vtype := uint32(0b1_1_010_000) // ma=1 ta=1 vsew=e32(010) vlmul=m1(000)
	w := uint32(0)
	w |= 0b1010111    // opcode (OP-V)
	w |= 0b111 << 12  // funct3 = OPCFG
	w |= 2 << 15      // rs1 = x2 (AVL)
	w |= 1 << 7       // rd = x1
	w |= vtype << 20  // zimm[10:0] in bits 30:20, bit31=0 selects vsetvli

	d := Decode(w, false)

	if d.Op != OpVSETVLI {
		t.Fatalf("op = %v, want OpVSETVLI", d.Op)
	}

	if d.RS1 != 2 || d.RD != 1 {
		t.Fatalf("rs1=%d rd=%d, want 2/1", d.RS1, d.RD)
	}

	if uint32(d.Imm) != vtype {
		t.Fatalf("imm = %#x, want %#x", d.Imm, vtype)
	}
}

func TestDecodeVLE32Masked(t *testing.T) {
	// vle32.v v1, (x2), masked (vm=0)
	w := uint32(0)
	w |= 0b0000111  // opcode (LOAD-FP, reused for vector unit-stride)
	w |= 0b110 << 12 // funct3 = EEW 32
	w |= 2 << 15    // rs1 (base)
	w |= 1 << 7     // vd

	d := Decode(w, false)

	if d.Op != OpVLE32 {
		t.Fatalf("op = %v, want OpVLE32", d.Op)
	}

	if d.VM {
		t.Fatalf("VM = true, want false (vm bit clear selects v0.t masking)")
	}

	if d.Format != FormatVector {
		t.Fatalf("format = %v, want FormatVector", d.Format)
	}
}

func TestDecodeVADDVV(t *testing.T) {
	// vadd.vv v3, v1, v2, unmasked (vm=1)
	w := uint32(0)
	w |= 0b1010111  // opcode OP-V
	w |= 0b000 << 12 // funct3 = OPIVV
	w |= 1 << 15    // vs1
	w |= 2 << 20    // vs2
	w |= 3 << 7     // vd
	w |= 1 << 25    // vm=1 (unmasked)
	w |= 0b000000 << 26 // funct6 = ADD, shifted so funct7 = funct6<<1 | vm

	d := Decode(w, false)

	if d.Op != OpVADDVV {
		t.Fatalf("op = %v, want OpVADDVV", d.Op)
	}

	if !d.VM {
		t.Fatalf("VM = false, want true (unmasked)")
	}
}

func TestDecodeIllegalOpcode(t *testing.T) {
	d := Decode(0b1111111, false) // opcode not assigned to any class

	if d.Op != OpIllegal {
		t.Fatalf("op = %v, want OpIllegal", d.Op)
	}
}

func TestDecodeCompressedADDI(t *testing.T) {
	// c.addi x5, 1: op=01, funct3=000, rd/rs1=5, imm=1
	w := uint16(0)
	w |= 0b01          // op
	w |= 0b000 << 13   // funct3
	w |= 5 << 7        // rd/rs1
	w |= 1 << 2        // imm[4:0] low bit

	d := Decode(uint32(w), true)

	if d.Op != OpADDI {
		t.Fatalf("op = %v, want OpADDI (expanded from c.addi)", d.Op)
	}

	if d.Size != 2 {
		t.Fatalf("size = %d, want 2", d.Size)
	}

	if d.RD != 5 || d.RS1 != 5 {
		t.Fatalf("rd=%d rs1=%d, want 5/5", d.RD, d.RS1)
	}
}
