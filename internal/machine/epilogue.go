package machine

import "wazerotools/x64machine/internal/asm"

// FinalizeLocals emits the function epilogue: the inverse of InitLocals,
// in reverse order. It unwinds the native stack to the top of the save
// area in one instruction regardless of whether AcquireLocations left any
// outstanding slots (it shouldn't, but this makes the epilogue independent
// of that), then pops back every register InitLocals spilled.
//
// localCount must match the n passed to the InitLocals call this epilogue
// closes out.
func (m *Machine) FinalizeLocals(e asm.Emitter, cc asm.CallingConvention, localCount uint32) {
	if !m.saveAreaSet {
		panic("BUG: FinalizeLocals called before InitLocals")
	}

	e.EmitLea(asm.S64, asm.LocationMemory(asm.RBP, -int32(m.saveAreaOffset)), asm.LocationGPR(asm.RSP))

	if cc == asm.WindowsFastcall {
		e.EmitPop(asm.S64, asm.LocationGPR(asm.RSI))
		e.EmitPop(asm.S64, asm.LocationGPR(asm.RDI))
	}

	e.EmitPop(asm.S64, asm.LocationGPR(vmctxReg))

	saved := min(uint32(len(localRegisters)), localCount)
	for i := saved; i > 0; i-- {
		e.EmitPop(asm.S64, asm.LocationGPR(localRegisters[i-1]))
	}
}
