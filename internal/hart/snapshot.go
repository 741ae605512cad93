package hart

// snapshot.go implements the per-hart textual snapshot format (spec §6).
// Each record is one line: a tag, an index when the tag names a register
// file, and a value. Vector registers are written as MSB-first hex bytes
// since a VLEN register doesn't fit a single machine word. Restoration
// applies records in file order, using Poke throughout so a restore never
// appears in a write-log or trace.

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteSnapshot writes the hart's architectural state (not memory, which
// is the caller's responsibility via Memory.Snapshot) in the line-oriented
// format spec §6 names.
func (h *Hart) WriteSnapshot(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "po %d\n", h.retired)
	fmt.Fprintf(bw, "pb %#x\n", h.programBreak)
	fmt.Fprintf(bw, "pc %#x\n", h.PC)
	fmt.Fprintf(bw, "priv %d\n", h.Priv)

	if h.Virtual {
		fmt.Fprintf(bw, "virt 1\n")
	}

	for i := uint(0); i < 32; i++ {
		fmt.Fprintf(bw, "x %d %#x\n", i, h.Int.Peek(i))
	}

	if h.cfg.Extensions.Has(ExtF) || h.cfg.Extensions.Has(ExtD) {
		for i := uint(0); i < 32; i++ {
			fmt.Fprintf(bw, "f %d %#x\n", i, h.FP.ReadDouble(i))
		}
	}

	for addr, entry := range h.csrSnapshotEntries() {
		fmt.Fprintf(bw, "c %#x %#x\n", addr, entry)
	}

	if h.cfg.Extensions.Has(ExtV) {
		for i := uint(0); i < 32; i++ {
			fmt.Fprintf(bw, "v %d 0x%x\n", i, h.Vec.SnapshotRegister(i))
		}
	}

	return bw.Flush()
}

func (h *Hart) csrSnapshotEntries() map[uint16]uint64 {
	out := make(map[uint16]uint64, len(h.CSR.regs))
	for addr, e := range h.CSR.regs {
		out[addr] = e.value
	}

	return out
}

// ReadSnapshot restores architectural state from a prior WriteSnapshot,
// applying every record with Poke so the restore itself never appears as
// an instruction-driven write (spec §6: "restoration applies in file
// order").
func (h *Hart) ReadSnapshot(r io.Reader) error {
	sc := bufio.NewScanner(r)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)

		switch fields[0] {
		case "po":
			n, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: bad po record: %v", ErrSnapshot, err)
			}

			h.retired = n
		case "pb":
			v, err := parseHexOrDec(fields[1])
			if err != nil {
				return fmt.Errorf("%w: bad pb record: %v", ErrSnapshot, err)
			}

			h.programBreak = v
		case "pc":
			v, err := parseHexOrDec(fields[1])
			if err != nil {
				return fmt.Errorf("%w: bad pc record: %v", ErrSnapshot, err)
			}

			h.PC = v
		case "priv":
			n, err := strconv.ParseUint(fields[1], 10, 8)
			if err != nil {
				return fmt.Errorf("%w: bad priv record: %v", ErrSnapshot, err)
			}

			h.Priv = Privilege(n)
		case "virt":
			h.Virtual = fields[1] == "1"
		case "x":
			idx, v, err := parseIndexedHex(fields)
			if err != nil {
				return fmt.Errorf("%w: bad x record: %v", ErrSnapshot, err)
			}

			h.Int.Poke(idx, v)
		case "f":
			idx, v, err := parseIndexedHex(fields)
			if err != nil {
				return fmt.Errorf("%w: bad f record: %v", ErrSnapshot, err)
			}

			h.FP.Poke(idx, v)
		case "c":
			addr, v, err := parseIndexedHex(fields)
			if err != nil {
				return fmt.Errorf("%w: bad c record: %v", ErrSnapshot, err)
			}

			h.CSR.Poke(uint16(addr), v)
		case "v":
			idx, err := strconv.ParseUint(fields[1], 10, 8)
			if err != nil {
				return fmt.Errorf("%w: bad v record: %v", ErrSnapshot, err)
			}

			raw := strings.TrimPrefix(fields[2], "0x")

			bytes := make([]byte, len(raw)/2)
			for i := range bytes {
				b, err := strconv.ParseUint(raw[i*2:i*2+2], 16, 8)
				if err != nil {
					return fmt.Errorf("%w: bad v record bytes: %v", ErrSnapshot, err)
				}

				bytes[i] = byte(b)
			}

			h.Vec.RestoreRegister(uint(idx), bytes)
		default:
			// Tolerate records from a newer or differently-configured writer
			// (spec §6 format is a per-hart line set, not a fixed schema) rather
			// than failing the whole restore over one unrecognized tag.
		}
	}

	return sc.Err()
}

func parseIndexedHex(fields []string) (uint64, uint64, error) {
	idx, err := parseHexOrDec(fields[1])
	if err != nil {
		return 0, 0, err
	}

	v, err := parseHexOrDec(fields[2])

	return idx, v, err
}

func parseHexOrDec(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") {
		return strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	}

	return strconv.ParseUint(s, 10, 64)
}
