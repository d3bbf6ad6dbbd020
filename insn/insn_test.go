package insn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asmforge/x86enc/operand"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		m    Mnemonic
		cc   Cond
	}{
		{"mov", MOV, 0},
		{"MOV", MOV, 0},
		{"add", ADD, 0},
		{"jmp", JMP, 0},
		{"jne", Jcc, CondNZ},
		{"jz", Jcc, CondZ},
		{"jnae", Jcc, CondC},
		{"setg", SETcc, CondG},
		{"cmovle", CMOVcc, CondNG},
		{"resb", RESB, 0},
	}
	for _, tc := range tests {
		m, cc, ok := Lookup(tc.name)
		require.True(t, ok, tc.name)
		require.Equal(t, tc.m, m, tc.name)
		require.Equal(t, tc.cc, cc, tc.name)
	}

	_, _, ok := Lookup("bogus")
	require.False(t, ok)
	// the condition families have no bare form
	_, _, ok = Lookup("jcc")
	require.False(t, ok)
}

func TestCondOpcode(t *testing.T) {
	require.Equal(t, byte(0x75), byte(0x70)+CondNZ.Opcode())
	require.Equal(t, byte(0x94), byte(0x90)+CondZ.Opcode())
	require.Equal(t, byte(0x4f), byte(0x40)+CondG.Opcode())
}

func TestSegPrefix(t *testing.T) {
	require.Equal(t, PrefES, SegPrefix(operand.RegES))
	require.Equal(t, PrefGS, SegPrefix(operand.RegGS))
	require.Equal(t, PrefNone, SegPrefix(operand.RegEAX))
}

func TestBrErOp(t *testing.T) {
	i := &Instruction{Operands: []operand.Operand{
		&operand.Register{Reg: operand.RegZMM0},
		&operand.Memory{Base: operand.RegRAX, D: operand.Decorators{Broadcast: 8}},
	}}
	require.Equal(t, 1, i.BrErOp())

	i = &Instruction{Operands: []operand.Operand{
		&operand.Register{Reg: operand.RegZMM0},
	}}
	require.Equal(t, -1, i.BrErOp())
}

func TestResbBytes(t *testing.T) {
	require.Equal(t, int64(1), ResbBytes(RESB))
	require.Equal(t, int64(10), ResbBytes(REST))
	require.Equal(t, int64(64), ResbBytes(RESZ))
	require.Equal(t, int64(0), ResbBytes(MOV))
}
