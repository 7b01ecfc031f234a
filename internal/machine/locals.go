package machine

import "wazerotools/x64machine/internal/asm"

// maxLocalIndex is a sanity ceiling on local indices, guarding against
// wildly invalid modules surviving earlier validation reaching this layer.
const maxLocalIndex = 999_999

// GetLocalLocation maps a Wasm local index to its physical location: the
// first len(localRegisters) indices live in the callee-saved registers
// reserved for locals (R12, R13, R14, RBX, in that order), and the rest live
// in the stack slots of the locals area, directly below the save area. This
// is a pure function of idx and
// localsOffset — it never consults the used-register sets, because these
// callee-saved registers are owned by the local-index space for the entire
// function and are never vendable to AcquireLocations.
func (m *Machine) GetLocalLocation(idx uint32) asm.Location {
	if idx > maxLocalIndex {
		panic("BUG: local index exceeds sanity ceiling")
	}
	if int(idx) < len(localRegisters) {
		return asm.LocationGPR(localRegisters[idx])
	}
	disp := m.localsOffset + (idx-uint32(len(localRegisters)))*stackSlotSize
	return asm.LocationMemory(asm.RBP, -int32(disp))
}

// GetParamLocation returns the location of the i-th incoming argument on
// function entry, per the given calling convention. It is a pure,
// static function of (idx, cc): it never consults Machine state.
//
// The +16 under SystemV accounts for the caller-saved return address and
// rbp; the +32 under Windows fastcall is the mandatory 32-byte shadow
// space in addition to those same two words.
func GetParamLocation(idx int, cc asm.CallingConvention) asm.Location {
	switch cc {
	case asm.WindowsFastcall:
		switch idx {
		case 0:
			return asm.LocationGPR(asm.RCX)
		case 1:
			return asm.LocationGPR(asm.RDX)
		case 2:
			return asm.LocationGPR(asm.R8)
		case 3:
			return asm.LocationGPR(asm.R9)
		default:
			return asm.LocationMemory(asm.RBP, int32(16+32+(idx-4)*8))
		}
	default: // SystemV
		switch idx {
		case 0:
			return asm.LocationGPR(asm.RDI)
		case 1:
			return asm.LocationGPR(asm.RSI)
		case 2:
			return asm.LocationGPR(asm.RDX)
		case 3:
			return asm.LocationGPR(asm.RCX)
		case 4:
			return asm.LocationGPR(asm.R8)
		case 5:
			return asm.LocationGPR(asm.R9)
		default:
			return asm.LocationMemory(asm.RBP, int32(16+(idx-6)*8))
		}
	}
}
