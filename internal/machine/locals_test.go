package machine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wazerotools/x64machine/internal/asm"
)

func TestGetLocalLocation_RegisterResident(t *testing.T) {
	m := New()
	m.localsOffset = 48

	want := []asm.GPR{asm.R12, asm.R13, asm.R14, asm.RBX}
	for i, r := range want {
		loc := m.GetLocalLocation(uint32(i))
		require.True(t, loc.IsGPR())
		require.Equal(t, r, loc.GPR())
	}
}

func TestGetLocalLocation_StackResident(t *testing.T) {
	m := New()
	m.localsOffset = 48

	loc := m.GetLocalLocation(4)
	require.True(t, loc.IsMemory())
	base, disp := loc.Memory()
	require.Equal(t, asm.RBP, base)
	require.EqualValues(t, -48, disp)

	loc = m.GetLocalLocation(5)
	_, disp = loc.Memory()
	require.EqualValues(t, -56, disp)
}

func TestGetLocalLocation_SanityCeilingPanics(t *testing.T) {
	m := New()
	require.Panics(t, func() {
		m.GetLocalLocation(maxLocalIndex + 1)
	})
}

func TestGetParamLocation_SystemV(t *testing.T) {
	want := []asm.GPR{asm.RDI, asm.RSI, asm.RDX, asm.RCX, asm.R8, asm.R9}
	for i, r := range want {
		loc := GetParamLocation(i, asm.SystemV)
		require.True(t, loc.IsGPR())
		require.Equal(t, r, loc.GPR())
	}

	loc := GetParamLocation(6, asm.SystemV)
	require.True(t, loc.IsMemory())
	base, disp := loc.Memory()
	require.Equal(t, asm.RBP, base)
	require.EqualValues(t, 16, disp)

	loc = GetParamLocation(7, asm.SystemV)
	_, disp = loc.Memory()
	require.EqualValues(t, 24, disp)
}

func TestGetParamLocation_WindowsFastcall(t *testing.T) {
	want := []asm.GPR{asm.RCX, asm.RDX, asm.R8, asm.R9}
	for i, r := range want {
		loc := GetParamLocation(i, asm.WindowsFastcall)
		require.True(t, loc.IsGPR())
		require.Equal(t, r, loc.GPR())
	}

	loc := GetParamLocation(4, asm.WindowsFastcall)
	require.True(t, loc.IsMemory())
	base, disp := loc.Memory()
	require.Equal(t, asm.RBP, base)
	require.EqualValues(t, 48, disp)

	loc = GetParamLocation(5, asm.WindowsFastcall)
	_, disp = loc.Memory()
	require.EqualValues(t, 56, disp)
}
