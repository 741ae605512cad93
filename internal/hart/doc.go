/*
Package hart implements the core of an instruction-accurate RISC-V hardware
thread (hart) simulator: fetch-decode-execute, the privileged-architecture
state machine, address translation and memory protection, and the debug
trigger subsystem.

The design mimics a real micro-architecture on purpose: executing an
instruction walks through named stages (fetch, decode, evaluate address,
execute, writeback) rather than collapsing everything into one big switch.

# Hart

A [Hart] owns all architectural state for one RISC-V thread: integer, FP and
vector register files, the CSR file, the program counter and reservation
state. It keeps no cached copies of the status registers: MSTATUS and its
relatives are read from the CSR file on each use. It is
parameterized at construction by a [Config] (XLEN, enabled extensions, reset
PC, PMP/PMA layout, trigger geometry, vector geometry).

# Memory

Physical memory is a flat byte array partitioned into attribute-tagged
regions (the PMA table) and additionally gated by up to 64 PMP entries. A
two-level address-translation engine (single-stage Sv32/39/48/57, optional
two-stage for the hypervisor extension) sits in front of both, backed by a
TLB.

# Execution

Instruction semantics are organized as a dispatch table keyed by decoded
opcode ID: each handler is a single function that reads its operands,
performs any memory access through the shared translate/PMP/PMA helpers,
and either writes its results or returns the trap to raise.

# Concurrency

One hart runs on one goroutine for the duration of a [Hart.Step]. A [Fleet]
runs N harts on N goroutines against shared memory, a shared monotonic time
counter, and a shared reservation table.
*/
package hart
