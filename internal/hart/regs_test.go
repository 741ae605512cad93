package hart

import "testing"

func TestIntRegsX0IsHardwiredZero(t *testing.T) {
	r := newIntRegs(XLEN64)

	r.Write(0, 0xdead_beef)

	if got := r.Peek(0); got != 0 {
		t.Fatalf("x0 = %#x, want 0", got)
	}
}

func TestIntRegsRollbackRestoresPriorValue(t *testing.T) {
	r := newIntRegs(XLEN64)

	r.Write(5, 1)
	r.Log().Reset()

	r.Write(5, 2)
	r.Write(5, 3)
	r.Rollback()

	if got := r.Peek(5); got != 1 {
		t.Fatalf("x5 after rollback = %#x, want 1", got)
	}

	if n := len(r.Log().Entries()); n != 0 {
		t.Fatalf("log entries after rollback = %d, want 0", n)
	}
}

func TestIntRegsXLEN32Masks(t *testing.T) {
	r := newIntRegs(XLEN32)

	r.Write(1, 0x1_0000_0001)

	if got := r.Peek(1); got != 1 {
		t.Fatalf("x1 = %#x, want 1 (masked to 32 bits)", got)
	}
}

func TestFPRegsNaNBoxing(t *testing.T) {
	r := &FPRegs{}

	r.WriteSingle(1, 0x3f80_0000) // 1.0f

	if got := r.ReadDouble(1); got != nanBoxUpper32|0x3f80_0000 {
		t.Fatalf("f1 raw = %#x, want NaN-boxed single", got)
	}

	if got := r.ReadSingle(1); got != 0x3f80_0000 {
		t.Fatalf("f1 single = %#x, want 0x3f80_0000", got)
	}

	// A register never written through WriteSingle/WriteDouble (still zero)
	// is not properly boxed, so reading it back as single must report the
	// canonical quiet NaN rather than a fabricated zero.
	if got := r.ReadSingle(2); got != 0x7fc0_0000 {
		t.Fatalf("unboxed f2 single = %#x, want canonical qNaN", got)
	}
}

func TestVecRegsRollbackRestoresPriorBytes(t *testing.T) {
	v := newVecRegs(128)

	v.SetElement(3, 0, 32, 0x1111_1111)
	v.ResetLog()

	v.SetElement(3, 0, 32, 0xffff_ffff)
	v.SetElement(3, 1, 32, 0xaaaa_aaaa)
	v.Rollback()

	if got := v.Element(3, 0, 32); got != 0x1111_1111 {
		t.Fatalf("v3[0] after rollback = %#x, want 0x1111_1111", got)
	}

	if got := v.Element(3, 1, 32); got != 0 {
		t.Fatalf("v3[1] after rollback = %#x, want 0", got)
	}
}

func TestVecRegsTouchOnlySnapshotsOnce(t *testing.T) {
	v := newVecRegs(64)

	v.SetElement(1, 0, 32, 0x1)
	v.SetElement(1, 1, 32, 0x2) // second write to the same register, same instruction
	v.Rollback()

	if got := v.Element(1, 0, 32); got != 0 {
		t.Fatalf("v1[0] after rollback = %#x, want 0 (register untouched before this instruction)", got)
	}
}
