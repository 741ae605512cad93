package hart

import "testing"

func TestPMPTORReadOnlyDeniesWrite(t *testing.T) {
	mgr := NewPMPManager([]PMPEntryConfig{
		{Mode: PMPTOR, Addr: 0x2000 >> 2, Readable: true, Writable: false, Executable: false},
	})

	if got := mgr.Evaluate(0x1000, 4, PrivUser, IntentLoad); got != Allow {
		t.Fatalf("load within TOR range = %v, want Allow", got)
	}

	if got := mgr.Evaluate(0x1000, 4, PrivUser, IntentStore); got != AccessFault {
		t.Fatalf("store within read-only TOR range = %v, want AccessFault", got)
	}
}

func TestPMPNAPOTRange(t *testing.T) {
	// A NAPOT region of size 16 at base 0x1000: addr bits encode base>>3 with
	// (size/8 - 1) trailing ones, i.e. 0x1000>>3 | 0b1 = 0x200 | 1 = 0x201.
	mgr := NewPMPManager([]PMPEntryConfig{
		{Mode: PMPNAPOT, Addr: 0x1000>>3 | 0b1, Readable: true, Writable: true, Executable: false},
	})

	if got := mgr.Evaluate(0x1000, 4, PrivUser, IntentLoad); got != Allow {
		t.Fatalf("load inside NAPOT region = %v, want Allow", got)
	}

	if got := mgr.Evaluate(0x1010, 4, PrivUser, IntentLoad); got != AccessFault {
		t.Fatalf("load outside NAPOT region = %v, want AccessFault", got)
	}
}

func TestPMPMachineModeBypassesUnlockedEntries(t *testing.T) {
	mgr := NewPMPManager([]PMPEntryConfig{
		{Mode: PMPNA4, Addr: 0x1000 >> 2, Readable: false, Writable: false, Executable: false},
	})

	if got := mgr.Evaluate(0x1000, 4, PrivMachine, IntentStore); got != Allow {
		t.Fatalf("machine-mode store against unlocked entry = %v, want Allow", got)
	}
}

func TestPMPLockedEntryAppliesToMachineMode(t *testing.T) {
	mgr := NewPMPManager([]PMPEntryConfig{
		{Mode: PMPNA4, Addr: 0x1000 >> 2, Readable: true, Writable: false, Locked: true},
	})

	if got := mgr.Evaluate(0x1000, 4, PrivMachine, IntentStore); got != AccessFault {
		t.Fatalf("machine-mode store against locked entry = %v, want AccessFault", got)
	}
}

func TestPMPDefaultDenyOncePopulated(t *testing.T) {
	mgr := NewPMPManager([]PMPEntryConfig{
		{Mode: PMPNA4, Addr: 0x1000 >> 2, Readable: true, Writable: true, Executable: true},
	})

	if got := mgr.Evaluate(0x5000, 4, PrivUser, IntentLoad); got != AccessFault {
		t.Fatalf("unmatched address under populated PMP = %v, want AccessFault", got)
	}
}
