package machine

import "wazerotools/x64machine/internal/asm"

// regSet is a bitset over a register file: bit i set means register i is
// occupied. It fits in a single machine word because both register files
// have been compile-time asserted (in internal/asm) to contain at most 32
// registers, so lowest-set-bit and union/difference operations stay O(1).
type regSet uint32

func (s regSet) has(bit int) bool { return s&(1<<uint(bit)) != 0 }
func (s *regSet) set(bit int)     { *s |= 1 << uint(bit) }
func (s *regSet) clear(bit int)   { *s &^= 1 << uint(bit) }

// lowestFree returns the lowest bit index set in candidates but not in s, or
// ok=false if every candidate bit is already set in s.
func (s regSet) lowestFree(candidates regSet) (bit int, ok bool) {
	free := candidates &^ s
	if free == 0 {
		return 0, false
	}
	return trailingZeros32(uint32(free)), true
}

// used returns every set bit in s, ascending, by repeatedly stripping the
// lowest set bit. The spec's own design notes flag the naive
// "shift by trailingZeros+1" loop as unsafe when a bit at position 31 is
// set (shifting a 32-bit value by 32 is undefined behavior in many
// languages); this formulation sidesteps that by clearing the found bit
// directly with a mask instead of shifting the whole word.
func (s regSet) used() []int {
	res := make([]int, 0, popcount32(uint32(s)))
	for v := uint32(s); v != 0; {
		bit := trailingZeros32(v)
		res = append(res, bit)
		v &^= 1 << uint(bit)
	}
	return res
}

func trailingZeros32(v uint32) int {
	if v == 0 {
		return 32
	}
	n := 0
	for v&1 == 0 {
		v >>= 1
		n++
	}
	return n
}

func popcount32(v uint32) int {
	n := 0
	for v != 0 {
		v &= v - 1
		n++
	}
	return n
}

func maskOf(regs ...int) regSet {
	var m regSet
	for _, r := range regs {
		m.set(r)
	}
	return m
}

// Candidate masks, per spec.md §4.1. The split between "value" and "temp"
// registers is load-bearing: temporaries are the ABI-scratch registers the
// code generator may clobber for short-lived helper sequences, while value
// registers are the ones allowed to hold a live Wasm operand across emitted
// instructions. The two sets are disjoint by construction below.
var (
	valueGPRCandidates = maskOf(int(asm.RSI), int(asm.RDI), int(asm.R8), int(asm.R9), int(asm.R10), int(asm.R11))
	tempGPRCandidates  = maskOf(int(asm.RAX), int(asm.RCX), int(asm.RDX))

	valueXMMCandidates = maskOf(int(asm.XMM3), int(asm.XMM4), int(asm.XMM5), int(asm.XMM6), int(asm.XMM7))
	tempXMMCandidates  = maskOf(int(asm.XMM0), int(asm.XMM1), int(asm.XMM2))
)

// localRegisters are the callee-saved GPRs reserved for the first four Wasm
// locals, in index order. They are never vendable to AcquireLocations.
var localRegisters = [4]asm.GPR{asm.R12, asm.R13, asm.R14, asm.RBX}

// reservedGPRs are never candidates for pick/acquire of any kind: the frame
// pointer, the stack pointer, the vmctx register, and the four callee-saved
// local registers.
var reservedGPRs = maskOf(int(asm.RBP), int(asm.RSP), int(asm.R15),
	int(asm.RBX), int(asm.R12), int(asm.R13), int(asm.R14))

func init() {
	// Candidate disjointness (spec.md §8): no register appears in both a
	// value mask and the corresponding temp mask, and no reserved register
	// appears in any pick mask.
	if valueGPRCandidates&tempGPRCandidates != 0 {
		panic("BUG: value/temp GPR candidate masks overlap")
	}
	if valueXMMCandidates&tempXMMCandidates != 0 {
		panic("BUG: value/temp XMM candidate masks overlap")
	}
	if (valueGPRCandidates|tempGPRCandidates)&reservedGPRs != 0 {
		panic("BUG: a reserved GPR appears in a pick mask")
	}
}

// vmctxReg is the register kept live across the whole function to hold the
// pointer to per-instance Wasm runtime data.
const vmctxReg = asm.R15
