package machine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wazerotools/x64machine/internal/asm"
)

func TestNew_ZeroState(t *testing.T) {
	m := New()
	require.Zero(t, m.GetStackOffset())
	require.Empty(t, m.GetUsedGPRs())
	require.Empty(t, m.GetUsedXMMs())
}

func TestGetVmctxReg_IsR15(t *testing.T) {
	require.Equal(t, asm.R15, GetVmctxReg())
}

func TestPickGPR_NeverReturnsReservedRegister(t *testing.T) {
	m := New()
	reserved := map[asm.GPR]bool{
		asm.RBP: true, asm.RSP: true, asm.R15: true,
		asm.RBX: true, asm.R12: true, asm.R13: true, asm.R14: true,
	}
	for {
		r, ok := m.PickGPR()
		if !ok {
			break
		}
		require.False(t, reserved[r], "PickGPR returned reserved register %s", r)
		m.setGPRUsed(r)
	}
}

func TestPickTempGPR_NeverReturnsReservedOrValueRegister(t *testing.T) {
	m := New()
	reserved := map[asm.GPR]bool{
		asm.RBP: true, asm.RSP: true, asm.R15: true,
		asm.RBX: true, asm.R12: true, asm.R13: true, asm.R14: true,
	}
	value := map[asm.GPR]bool{asm.RSI: true, asm.RDI: true, asm.R8: true, asm.R9: true, asm.R10: true, asm.R11: true}
	for {
		r, ok := m.PickTempGPR()
		if !ok {
			break
		}
		require.False(t, reserved[r], "PickTempGPR returned reserved register %s", r)
		require.False(t, value[r], "PickTempGPR returned a value-register candidate %s", r)
		m.setGPRUsed(r)
	}
}

func TestAcquireReleaseTempGPR(t *testing.T) {
	m := New()

	r, ok := m.AcquireTempGPR()
	require.True(t, ok)
	require.Equal(t, asm.RAX, r)

	require.NotPanics(t, func() { m.ReleaseTempGPR(r) })

	require.Panics(t, func() { m.ReleaseTempGPR(r) })
}

func TestReserveUnusedTempGPR_PanicsOnAlreadyUsed(t *testing.T) {
	m := New()
	r, ok := m.AcquireTempGPR()
	require.True(t, ok)

	require.Panics(t, func() {
		m.ReserveUnusedTempGPR(r)
	})
}

func TestReserveUnusedTempGPR_MarksUsed(t *testing.T) {
	m := New()
	got := m.ReserveUnusedTempGPR(asm.RCX)
	require.Equal(t, asm.RCX, got)

	require.Contains(t, m.GetUsedGPRs(), asm.RCX)
}

func TestAcquireReleaseTempXMM(t *testing.T) {
	m := New()

	x, ok := m.AcquireTempXMM()
	require.True(t, ok)
	require.Equal(t, asm.XMM0, x)

	require.NotPanics(t, func() { m.ReleaseTempXMM(x) })
	require.Panics(t, func() { m.ReleaseTempXMM(x) })
}

// Candidate-mask disjointness is already enforced by reg.go's init(), but an
// explicit test documents the invariant at the package's public surface.
func TestCandidateMasks_Disjoint(t *testing.T) {
	require.Zero(t, uint32(valueGPRCandidates&tempGPRCandidates))
	require.Zero(t, uint32(valueXMMCandidates&tempXMMCandidates))
	require.Zero(t, uint32((valueGPRCandidates|tempGPRCandidates)&reservedGPRs))
}
