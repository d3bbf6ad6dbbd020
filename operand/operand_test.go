package operand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFitsOf(t *testing.T) {
	tests := []struct {
		v    int64
		want Fit
	}{
		{0, FitSByteWord | FitSByteDword | FitSDword | FitUDword},
		{127, FitSByteWord | FitSByteDword | FitSDword | FitUDword},
		{-128, FitSByteWord | FitSByteDword | FitSDword},
		{128, FitSDword | FitUDword},
		{-129, FitSDword},
		{1 << 31, FitUDword},
		{-(1 << 31), FitSDword},
		{1 << 32, 0},
		{-(1 << 32), 0},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, FitsOf(tc.v), "value %#x", tc.v)
	}
}

func TestLookupReg(t *testing.T) {
	tests := []struct {
		name string
		want Reg
	}{
		{"al", RegAL},
		{"spl", RegSPL},
		{"r8b", RegR8B},
		{"ax", RegAX},
		{"eax", RegEAX},
		{"r10d", RegR10D},
		{"rsp", RegRSP},
		{"gs", RegGS},
		{"st0", RegST0},
		{"mm3", RegMM0 + 3},
		{"xmm15", RegXMM0 + 15},
		{"ymm31", RegYMM0 + 31},
		{"zmm0", RegZMM0},
		{"k7", RegK0 + 7},
		{"bnd2", RegBND0 + 2},
		{"nosuch", RegNone},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, LookupReg(tc.name), tc.name)
	}
}

func TestRegProperties(t *testing.T) {
	require.Equal(t, int8(0), RegAL.Val())
	require.Equal(t, int8(9), RegR9.Val())
	require.Equal(t, int8(17), (RegXMM0 + 17).Val())

	require.True(t, RegAH.IsHigh())
	require.False(t, RegSPL.IsHigh())

	require.True(t, RegSPL.NeedsRexP())
	require.True(t, RegDIL.NeedsRexP())
	require.False(t, RegAL.NeedsRexP())
	require.False(t, RegAH.NeedsRexP())
	require.False(t, RegR8B.NeedsRexP())

	require.True(t, RegZMM0.IsVector())
	require.True(t, (RegYMM0 + 3).IsVector())
	require.False(t, RegEAX.IsVector())

	require.Equal(t, Size32, RegEAX.Size())
	require.Equal(t, Size512, RegZMM0.Size())
	require.Equal(t, ClassSegment, RegFS.Class())
}

func TestMemoryAbsolute(t *testing.T) {
	m := &Memory{Disp: 4}
	require.True(t, m.Absolute())

	m = &Memory{Disp: 4, Sym: &SymRef{Segment: 2, WRT: NoSeg}}
	require.False(t, m.Absolute())
	require.Equal(t, int32(2), m.SymSegment())

	m = &Memory{Sym: &SymRef{Segment: NoSeg, WRT: NoSeg, Relative: true}}
	require.False(t, m.Absolute())
}

func TestImmediateState(t *testing.T) {
	i := &Immediate{Value: 9}
	require.True(t, i.Absolute())
	require.False(t, i.Unknown())
	require.Equal(t, NoSeg, i.SymSegment())

	i = &Immediate{Sym: &SymRef{Segment: 0, WRT: NoSeg, Unknown: true}}
	require.True(t, i.Unknown())
	require.False(t, i.Absolute())
}

func TestDecoratorsAny(t *testing.T) {
	require.False(t, Decorators{}.Any())
	require.True(t, Decorators{Mask: RegK0 + 1}.Any())
	require.True(t, Decorators{Zeroing: true}.Any())
	require.True(t, Decorators{Broadcast: 8}.Any())
	require.True(t, Decorators{SAE: true}.Any())
}
