package cmd

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tenstorrent/whisper-sub006/internal/cli"
	"github.com/tenstorrent/whisper-sub006/internal/hart"
	"github.com/tenstorrent/whisper-sub006/internal/log"
)

// Disassembler returns the `disasm` command: decode a flat binary image
// and print one instruction per line, without executing anything.
func Disassembler() cli.Command {
	return &disassembler{base: 0}
}

type disassembler struct {
	base uint64
}

func (disassembler) Description() string {
	return "disassemble a flat memory image"
}

func (disassembler) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `disasm image.bin

Decodes a flat binary image starting at -base and prints one decoded
instruction per line. Compressed and 32-bit instructions are both
recognized from the low two bits of the first half-word, the way the
hart's own fetch stage does.`)

	return err
}

func (d *disassembler) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	fs.Uint64Var(&d.base, "base", 0, "address of the first byte in the image")

	return fs
}

func (d *disassembler) Run(_ context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if len(args) == 0 {
		logger.Error("disasm requires an image argument")
		return -1
	}

	image, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("error loading image", "err", err)
		return -1
	}

	for off := 0; off+2 <= len(image); {
		lowHalf := binary.LittleEndian.Uint16(image[off:])
		compressed := lowHalf&0x3 != 3

		var raw uint32

		size := 2
		if compressed {
			raw = uint32(lowHalf)
		} else if off+4 <= len(image) {
			raw = uint32(lowHalf) | uint32(binary.LittleEndian.Uint16(image[off+2:]))<<16
			size = 4
		} else {
			fmt.Fprintf(stdout, "%#010x  (truncated)\n", d.base+uint64(off))
			break
		}

		inst := hart.Decode(raw, compressed)

		fmt.Fprintf(stdout, "%#010x  %08x  %s\n", d.base+uint64(off), raw, inst.String())

		off += size
	}

	return 0
}
