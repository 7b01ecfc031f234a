// Package machine implements the register and stack allocator for a
// single-pass x86-64 code generator targeting WebAssembly functions. A
// Machine is created per compiled function, driven through strictly ordered
// synchronous calls by the compiler, and discarded once the function is
// done; it must never be reused across functions, since its bookkeeping is
// only meaningful relative to the current function's rbp.
package machine

import "wazerotools/x64machine/internal/asm"

// Machine tracks which GPRs/XMMs are live, how deep the native stack
// currently sits below the frame pointer, and the offset of the locals
// area. It is the sole long-lived piece of state the allocator needs.
type Machine struct {
	usedGPRs regSet
	usedXMMs regSet

	// stackOffset is the number of bytes currently pushed below rbp that
	// this Machine is tracking, always a multiple of 8. A slot at offset k
	// is addressed as Memory(RBP, -k).
	stackOffset uint32

	// saveAreaOffset is set exactly once, by InitLocals, to stackOffset
	// immediately after all callee-saved registers and vmctx have been
	// spilled. FinalizeLocals unwinds to this point regardless of any
	// intervening stack traffic.
	saveAreaOffset uint32
	saveAreaSet    bool

	// localsOffset is the byte offset from rbp to the first stack-resident
	// local, set exactly once by InitLocals.
	localsOffset uint32
}

// New returns a zero-state Machine, ready to compile one function.
func New() *Machine {
	return &Machine{}
}

// GetStackOffset returns the current stack depth in bytes below rbp.
func (m *Machine) GetStackOffset() uint32 { return m.stackOffset }

// GetVmctxReg returns the register kept live across the whole function to
// hold the vmctx pointer. It is always R15.
func GetVmctxReg() asm.GPR { return vmctxReg }

// GetUsedGPRs materializes the currently-live GPR set as an ascending slice,
// for consumption by trap/unwind metadata generation outside this package.
func (m *Machine) GetUsedGPRs() []asm.GPR {
	bits := m.usedGPRs.used()
	out := make([]asm.GPR, len(bits))
	for i, b := range bits {
		out[i] = asm.GPR(b)
	}
	return out
}

// GetUsedXMMs materializes the currently-live XMM set as an ascending slice.
func (m *Machine) GetUsedXMMs() []asm.XMM {
	bits := m.usedXMMs.used()
	out := make([]asm.XMM, len(bits))
	for i, b := range bits {
		out[i] = asm.XMM(b)
	}
	return out
}

// PickGPR returns the lowest-indexed free GPR from the value-register
// candidate mask, without marking it used. ok is false if all candidates
// are occupied.
func (m *Machine) PickGPR() (r asm.GPR, ok bool) {
	bit, ok := m.usedGPRs.lowestFree(valueGPRCandidates)
	return asm.GPR(bit), ok
}

// PickXMM is PickGPR's XMM counterpart.
func (m *Machine) PickXMM() (x asm.XMM, ok bool) {
	bit, ok := m.usedXMMs.lowestFree(valueXMMCandidates)
	return asm.XMM(bit), ok
}

// PickTempGPR returns the lowest-indexed free GPR from the temp-register
// candidate mask (the caller-clobbered ABI scratch registers), without
// marking it used.
func (m *Machine) PickTempGPR() (r asm.GPR, ok bool) {
	bit, ok := m.usedGPRs.lowestFree(tempGPRCandidates)
	return asm.GPR(bit), ok
}

// PickTempXMM is PickTempGPR's XMM counterpart.
func (m *Machine) PickTempXMM() (x asm.XMM, ok bool) {
	bit, ok := m.usedXMMs.lowestFree(tempXMMCandidates)
	return asm.XMM(bit), ok
}

func (m *Machine) gprUsed(r asm.GPR) bool  { return m.usedGPRs.has(int(r)) }
func (m *Machine) setGPRUsed(r asm.GPR)    { m.usedGPRs.set(int(r)) }
func (m *Machine) setGPRUnused(r asm.GPR)  { m.usedGPRs.clear(int(r)) }
func (m *Machine) xmmUsed(x asm.XMM) bool  { return m.usedXMMs.has(int(x)) }
func (m *Machine) setXMMUsed(x asm.XMM)    { m.usedXMMs.set(int(x)) }
func (m *Machine) setXMMUnused(x asm.XMM)  { m.usedXMMs.clear(int(x)) }

// AcquireTempGPR picks and marks-used a temp GPR atomically. ok is false if
// no temp GPR is free; the Machine never spills implicitly to make room.
func (m *Machine) AcquireTempGPR() (r asm.GPR, ok bool) {
	r, ok = m.PickTempGPR()
	if ok {
		m.setGPRUsed(r)
	}
	return
}

// ReleaseTempGPR releases a GPR previously returned by AcquireTempGPR or
// ReserveUnusedTempGPR. Panics if the register was not marked used: that
// would be a double-release, an invariant violation in the caller.
func (m *Machine) ReleaseTempGPR(r asm.GPR) {
	if !m.gprUsed(r) {
		panic("BUG: releasing a GPR that is not marked used")
	}
	m.setGPRUnused(r)
}

// ReserveUnusedTempGPR commandeers a specific register the emitter needs as
// a fixed operand. Panics if the register is already in use.
func (m *Machine) ReserveUnusedTempGPR(r asm.GPR) asm.GPR {
	if m.gprUsed(r) {
		panic("BUG: reserving a GPR that is already in use")
	}
	m.setGPRUsed(r)
	return r
}

// AcquireTempXMM is AcquireTempGPR's XMM counterpart.
func (m *Machine) AcquireTempXMM() (x asm.XMM, ok bool) {
	x, ok = m.PickTempXMM()
	if ok {
		m.setXMMUsed(x)
	}
	return
}

// ReleaseTempXMM is ReleaseTempGPR's XMM counterpart.
func (m *Machine) ReleaseTempXMM(x asm.XMM) {
	if !m.xmmUsed(x) {
		panic("BUG: releasing an XMM that is not marked used")
	}
	m.setXMMUnused(x)
}
