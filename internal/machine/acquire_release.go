package machine

import "wazerotools/x64machine/internal/asm"

const stackSlotSize = 8

// AcquireLocations allocates one Location per entry of tys, in order,
// preferring a register of the appropriate file and falling back to a
// freshly-pushed 8-byte stack slot. Register allocation in this loop never
// fails outright (it always has the stack fallback available), so this
// method either succeeds for the whole batch or panics on an unsupported
// type — there is no partial-mutation failure mode to guard against.
//
// If any stack slots were allocated, a single `sub rsp, delta` reserves them
// all at once. If zeroed is true, every returned location (register or
// memory) is then zeroed with a 64-bit mov; this is unconditional on the
// location's kind so callers can treat the whole batch uniformly, even
// though it means a caller requesting zeroed locations pays to zero
// register slots too.
func (m *Machine) AcquireLocations(e asm.Emitter, tys []ValueType, zeroed bool) []asm.Location {
	locs := make([]asm.Location, len(tys))
	var delta uint32

	for i, ty := range tys {
		if !isSupported(ty) {
			panic("BUG: acquiring a location for an unsupported value type")
		}

		var loc asm.Location
		var gotReg bool
		if isFloat(ty) {
			if x, ok := m.PickXMM(); ok {
				m.setXMMUsed(x)
				loc = asm.LocationXMM(x)
				gotReg = true
			}
		} else {
			if r, ok := m.PickGPR(); ok {
				m.setGPRUsed(r)
				loc = asm.LocationGPR(r)
				gotReg = true
			}
		}

		if !gotReg {
			m.stackOffset += stackSlotSize
			delta += stackSlotSize
			loc = asm.LocationMemory(asm.RBP, -int32(m.stackOffset))
		}

		locs[i] = loc
	}

	if delta > 0 {
		e.EmitSub(asm.S64, asm.LocationImm32(delta), asm.LocationGPR(asm.RSP))
	}
	if zeroed {
		for _, loc := range locs {
			e.EmitMov(asm.S64, asm.LocationImm32(0), loc)
		}
	}
	return locs
}

// releaseStackSlot is the shared LIFO bookkeeping used by every release
// variant that touches the stack: the offset named by the Location must be
// exactly the current stack top, or the caller has violated LIFO discipline
// and the process must abort rather than emit incorrect code.
func (m *Machine) releaseStackSlot(stackOffset *uint32, loc asm.Location) (releasedOne bool) {
	base, disp := loc.Memory()
	if base != asm.RBP || disp >= 0 {
		// Belongs to the caller (e.g. a caller-provided reference), not to
		// this frame's tracked stack slots.
		return false
	}
	offset := uint32(-disp)
	if offset != *stackOffset {
		panic("BUG: releasing a stack slot out of LIFO order")
	}
	*stackOffset -= stackSlotSize
	return true
}

// ReleaseLocations releases both the registers and the stack slots named by
// locs, in reverse order, and emits a single `add rsp, delta` for whatever
// stack was reclaimed.
func (m *Machine) ReleaseLocations(e asm.Emitter, locs []asm.Location) {
	var delta uint32
	for i := len(locs) - 1; i >= 0; i-- {
		loc := locs[i]
		switch {
		case loc.IsGPR():
			r := loc.GPR()
			if !m.gprUsed(r) {
				panic("BUG: releasing a GPR that is not marked used")
			}
			m.setGPRUnused(r)
		case loc.IsXMM():
			x := loc.XMM()
			if !m.xmmUsed(x) {
				panic("BUG: releasing an XMM that is not marked used")
			}
			m.setXMMUnused(x)
		case loc.IsMemory():
			if m.releaseStackSlot(&m.stackOffset, loc) {
				delta += stackSlotSize
			}
		}
	}
	if delta > 0 {
		e.EmitAdd(asm.S64, asm.LocationImm32(delta), asm.LocationGPR(asm.RSP))
	}
}

// ReleaseLocationsOnlyRegs releases only the register-held locations among
// locs, in reverse order. It never touches the stack and emits nothing.
func (m *Machine) ReleaseLocationsOnlyRegs(locs []asm.Location) {
	for i := len(locs) - 1; i >= 0; i-- {
		loc := locs[i]
		switch {
		case loc.IsGPR():
			r := loc.GPR()
			if !m.gprUsed(r) {
				panic("BUG: releasing a GPR that is not marked used")
			}
			m.setGPRUnused(r)
		case loc.IsXMM():
			x := loc.XMM()
			if !m.xmmUsed(x) {
				panic("BUG: releasing an XMM that is not marked used")
			}
			m.setXMMUnused(x)
		}
	}
}

// ReleaseLocationsOnlyStack releases only the stack-resident locations among
// locs, in reverse order, leaving register state untouched, and emits a
// single `add rsp, delta`.
func (m *Machine) ReleaseLocationsOnlyStack(e asm.Emitter, locs []asm.Location) {
	var delta uint32
	for i := len(locs) - 1; i >= 0; i-- {
		loc := locs[i]
		if loc.IsMemory() {
			if m.releaseStackSlot(&m.stackOffset, loc) {
				delta += stackSlotSize
			}
		}
	}
	if delta > 0 {
		e.EmitAdd(asm.S64, asm.LocationImm32(delta), asm.LocationGPR(asm.RSP))
	}
}

// ReleaseLocationsKeepState computes the same delta ReleaseLocations would
// and emits the same `add rsp, delta`, but never mutates used-register sets
// or stackOffset. It is used to unwind the physical stack to a branch
// target's height on a taken branch, while the Machine's own state must
// keep reflecting the pre-branch situation because control can still fall
// through on the non-taken path.
func (m *Machine) ReleaseLocationsKeepState(e asm.Emitter, locs []asm.Location) {
	var delta uint32
	stackOffset := m.stackOffset
	for i := len(locs) - 1; i >= 0; i-- {
		loc := locs[i]
		if loc.IsMemory() {
			if m.releaseStackSlot(&stackOffset, loc) {
				delta += stackSlotSize
			}
		}
	}
	if delta > 0 {
		e.EmitAdd(asm.S64, asm.LocationImm32(delta), asm.LocationGPR(asm.RSP))
	}
}
