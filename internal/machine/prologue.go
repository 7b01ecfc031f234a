package machine

import "wazerotools/x64machine/internal/asm"

// guardPageStride is the number of 8-byte local slots per 4 KiB guard page;
// the prologue's stack probe steps by this amount.
const guardPageStride = 4096 / 8

// InitLocals emits the function prologue: it spills the callee-saved
// registers reserved for locals (and vmctx, and on Windows the two extra
// ABI registers) below the frame pointer, reserves the stack space for every
// Wasm local in one `sub rsp`, pre-loads incoming arguments into their local
// locations, probes the guard page for large local counts, and zero-inits
// every local the caller didn't supply a value for.
//
// n is the total Wasm local count, including parameters; nParams is the
// parameter count alone.
func (m *Machine) InitLocals(e asm.Emitter, n, nParams uint32, cc asm.CallingConvention) {
	savedLocalRegs := min(uint32(len(localRegisters)), n)

	staticAreaSize := stackSlotSize*savedLocalRegs + stackSlotSize // local-reg spills + vmctx
	if cc == asm.WindowsFastcall {
		staticAreaSize += 2 * stackSlotSize
	}

	m.localsOffset = staticAreaSize + stackSlotSize

	var localsSize uint32
	if n > uint32(len(localRegisters)) {
		localsSize = (n - uint32(len(localRegisters))) * stackSlotSize
	}

	e.EmitSub(asm.S64, asm.LocationImm32(staticAreaSize+localsSize), asm.LocationGPR(asm.RSP))

	for i := uint32(0); i < savedLocalRegs; i++ {
		m.stackOffset += stackSlotSize
		e.EmitMov(asm.S64, asm.LocationGPR(localRegisters[i]), asm.LocationMemory(asm.RBP, -int32(m.stackOffset)))
	}

	m.stackOffset += stackSlotSize
	e.EmitMov(asm.S64, asm.LocationGPR(vmctxReg), asm.LocationMemory(asm.RBP, -int32(m.stackOffset)))

	if cc == asm.WindowsFastcall {
		for _, r := range [2]asm.GPR{asm.RDI, asm.RSI} {
			m.stackOffset += stackSlotSize
			e.EmitMov(asm.S64, asm.LocationGPR(r), asm.LocationMemory(asm.RBP, -int32(m.stackOffset)))
		}
	}

	m.saveAreaOffset = m.stackOffset
	m.saveAreaSet = true

	// Parameter loading: Wasm parameter index i corresponds to ABI argument
	// index i+1, since ABI argument 0 is reserved for vmctx.
	for i := uint32(0); i < nParams; i++ {
		src := GetParamLocation(int(i)+1, cc)
		dst := m.GetLocalLocation(i)
		switch {
		case src.IsMemory() && dst.IsMemory():
			e.EmitMov(asm.S64, src, asm.LocationGPR(asm.RAX))
			e.EmitMov(asm.S64, asm.LocationGPR(asm.RAX), dst)
		default:
			e.EmitMov(asm.S64, src, dst)
		}
	}

	e.EmitMov(asm.S64, GetParamLocation(0, cc), asm.LocationGPR(vmctxReg))

	// Guard-page probe: force a store into every guard-page candidate among
	// the stack-resident locals, skipping the first stride since the
	// initial `sub rsp` (or the first zero-store below) is assumed to have
	// already faulted there if it was going to.
	if nParams < n {
		for i := nParams + guardPageStride; i < n; i += guardPageStride {
			e.EmitMov(asm.S64, asm.LocationImm32(0), m.GetLocalLocation(i))
		}
	}

	// Zero-init remaining uninitialized locals: register-resident ones
	// first, individually, bounded by both nParams and the 4 available
	// local registers.
	for idx := nParams; idx < n && idx < uint32(len(localRegisters)); idx++ {
		e.EmitMov(asm.S64, asm.LocationImm32(0), asm.LocationGPR(localRegisters[idx]))
	}

	// Then the stack-resident ones, in one rep stosq block. The count can
	// be smaller than n-4 when nParams > 4: those slots are
	// parameter-occupied and intentionally left untouched.
	stackLocStart := max(uint32(len(localRegisters)), nParams)
	if stackLocStart < n {
		count := n - stackLocStart
		e.EmitMov(asm.S64, asm.LocationImm64(uint64(count)), asm.LocationGPR(asm.RCX))
		e.EmitXor(asm.S64, asm.LocationGPR(asm.RAX), asm.LocationGPR(asm.RAX))
		e.EmitLea(asm.S64, m.GetLocalLocation(n-1), asm.LocationGPR(asm.RDI))
		e.EmitRepStosq()
	}

	m.stackOffset += localsSize
}
