package asm

import "fmt"

// locationKind tags the variant held by a Location.
type locationKind byte

const (
	locationKindGPR locationKind = iota
	locationKindXMM
	locationKindMemory
	locationKindImm32
	locationKindImm64
)

// Location denotes where a value currently lives: a GPR, an XMM register, a
// memory slot addressed as base+displacement, or an immediate operand. The
// zero value reads as LocationGPR(RAX); construct Locations via the
// Location* helpers.
type Location struct {
	kind locationKind

	reg GPR
	xmm XMM

	memBase GPR
	memDisp int32

	imm uint64
}

// LocationGPR builds a Location naming a general-purpose register.
func LocationGPR(r GPR) Location { return Location{kind: locationKindGPR, reg: r} }

// LocationXMM builds a Location naming a vector register.
func LocationXMM(x XMM) Location { return Location{kind: locationKindXMM, xmm: x} }

// LocationMemory builds a Location addressed as base+disp.
func LocationMemory(base GPR, disp int32) Location {
	return Location{kind: locationKindMemory, memBase: base, memDisp: disp}
}

// LocationImm32 builds an immediate operand.
func LocationImm32(v uint32) Location { return Location{kind: locationKindImm32, imm: uint64(v)} }

// LocationImm64 builds a 64-bit immediate operand.
func LocationImm64(v uint64) Location { return Location{kind: locationKindImm64, imm: v} }

// IsGPR reports whether this Location names a general-purpose register.
func (l Location) IsGPR() bool { return l.kind == locationKindGPR }

// IsXMM reports whether this Location names a vector register.
func (l Location) IsXMM() bool { return l.kind == locationKindXMM }

// IsMemory reports whether this Location names a memory operand.
func (l Location) IsMemory() bool { return l.kind == locationKindMemory }

// GPR returns the named register. Panics if IsGPR is false.
func (l Location) GPR() GPR {
	if l.kind != locationKindGPR {
		panic("BUG: Location is not a GPR")
	}
	return l.reg
}

// XMM returns the named register. Panics if IsXMM is false.
func (l Location) XMM() XMM {
	if l.kind != locationKindXMM {
		panic("BUG: Location is not an XMM")
	}
	return l.xmm
}

// Memory returns the base register and displacement. Panics if IsMemory is false.
func (l Location) Memory() (base GPR, disp int32) {
	if l.kind != locationKindMemory {
		panic("BUG: Location is not memory")
	}
	return l.memBase, l.memDisp
}

// Imm returns the immediate value, widened to 64 bits.
func (l Location) Imm() uint64 {
	if l.kind != locationKindImm32 && l.kind != locationKindImm64 {
		panic("BUG: Location is not an immediate")
	}
	return l.imm
}

func (l Location) String() string {
	switch l.kind {
	case locationKindGPR:
		return l.reg.String()
	case locationKindXMM:
		return l.xmm.String()
	case locationKindMemory:
		return fmt.Sprintf("[%s%+d]", l.memBase, l.memDisp)
	case locationKindImm32, locationKindImm64:
		return fmt.Sprintf("$%d", l.imm)
	default:
		return "Location(?)"
	}
}
