package golangasm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wazerotools/x64machine/internal/asm"
)

func TestEmitter_AssemblesPrologueSequence(t *testing.T) {
	e, err := New(16)
	require.NoError(t, err)

	e.EmitSub(asm.S64, asm.LocationImm32(32), asm.LocationGPR(asm.RSP))
	e.EmitMov(asm.S64, asm.LocationGPR(asm.R12), asm.LocationMemory(asm.RBP, -8))
	e.EmitXor(asm.S64, asm.LocationGPR(asm.RAX), asm.LocationGPR(asm.RAX))
	e.EmitLea(asm.S64, asm.LocationMemory(asm.RBP, -8), asm.LocationGPR(asm.RDI))
	e.EmitRepStosq()
	e.EmitPop(asm.S64, asm.LocationGPR(asm.R12))
	e.EmitAdd(asm.S64, asm.LocationImm32(32), asm.LocationGPR(asm.RSP))

	code, err := e.Assemble()
	require.NoError(t, err)
	require.NotEmpty(t, code)
}

func TestToAddr_Memory(t *testing.T) {
	addr := toAddr(asm.LocationMemory(asm.RBP, -16))
	require.Equal(t, int64(-16), addr.Offset)
	require.Equal(t, gprReg[asm.RBP], addr.Reg)
}

func TestToAddr_Immediate(t *testing.T) {
	addr := toAddr(asm.LocationImm32(5))
	require.Equal(t, int64(5), addr.Offset)
}
