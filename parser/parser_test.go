package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asmforge/x86enc/insn"
	"github.com/asmforge/x86enc/operand"
)

func parseOne(t *testing.T, line string) *insn.Instruction {
	t.Helper()
	p := &Parser{Optimizing: true}
	ins, err := p.ParseLine(line)
	require.NoError(t, err)
	require.NotNil(t, ins)
	return ins
}

func TestParseRegisterOperands(t *testing.T) {
	i := parseOne(t, "add eax, ebx")
	require.Equal(t, insn.ADD, i.Opcode)
	require.Len(t, i.Operands, 2)
	require.Equal(t, &operand.Register{Reg: operand.RegEAX}, i.Operands[0])
	require.Equal(t, &operand.Register{Reg: operand.RegEBX}, i.Operands[1])
}

func TestParseConditionFamilies(t *testing.T) {
	i := parseOne(t, "jne 0x10")
	require.Equal(t, insn.Jcc, i.Opcode)
	require.Equal(t, insn.CondNZ, i.Cond)

	i = parseOne(t, "cmovae ax, bx")
	require.Equal(t, insn.CMOVcc, i.Opcode)
	require.Equal(t, insn.CondNC, i.Cond)
}

func TestParseImmediates(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"mov eax, 10", 10},
		{"mov eax, 0x1f", 0x1f},
		{"mov eax, 1fh", 0x1f},
		{"mov eax, 0b101", 5},
		{"mov eax, -2", -2},
	}
	for _, tc := range tests {
		i := parseOne(t, tc.in)
		imm, ok := i.Operands[1].(*operand.Immediate)
		require.True(t, ok, tc.in)
		require.Equal(t, tc.want, imm.Value, tc.in)
		require.Equal(t, operand.FitsOf(tc.want), imm.Fits, tc.in)
	}
}

func TestStrictSuppressesFitClasses(t *testing.T) {
	i := parseOne(t, "add eax, strict dword 4")
	imm := i.Operands[1].(*operand.Immediate)
	require.Equal(t, operand.Fit(0), imm.Fits)
	require.Equal(t, operand.Size32, imm.Size)
	require.True(t, imm.Mods.Has(operand.ModStrict))
}

func TestParseMemory(t *testing.T) {
	i := parseOne(t, "mov ebx, [eax+ecx*4+8]")
	m := i.Operands[1].(*operand.Memory)
	require.Equal(t, operand.RegEAX, m.Base)
	require.Equal(t, operand.RegECX, m.Index)
	require.Equal(t, 4, m.Scale)
	require.Equal(t, int64(8), m.Disp)
}

func TestParseMemoryVariants(t *testing.T) {
	t.Run("scale first", func(t *testing.T) {
		m := parseOne(t, "mov ebx, [4*ecx+eax]").Operands[1].(*operand.Memory)
		require.Equal(t, operand.RegEAX, m.Base)
		require.Equal(t, operand.RegECX, m.Index)
		require.Equal(t, 4, m.Scale)
	})

	t.Run("negative displacement", func(t *testing.T) {
		m := parseOne(t, "mov ebx, [ebp-4]").Operands[1].(*operand.Memory)
		require.Equal(t, operand.RegEBP, m.Base)
		require.Equal(t, int64(-4), m.Disp)
	})

	t.Run("two plain registers", func(t *testing.T) {
		m := parseOne(t, "mov ebx, [eax+edi]").Operands[1].(*operand.Memory)
		require.Equal(t, operand.RegEAX, m.Base)
		require.Equal(t, operand.RegEDI, m.Index)
		require.Equal(t, 1, m.Scale)
	})

	t.Run("segment override", func(t *testing.T) {
		m := parseOne(t, "mov ax, [es:bx+si]").Operands[1].(*operand.Memory)
		require.Equal(t, operand.RegES, m.Segment)
		require.Equal(t, operand.RegBX, m.Base)
		require.Equal(t, operand.RegSI, m.Index)
	})

	t.Run("rel and abs keywords", func(t *testing.T) {
		m := parseOne(t, "mov rcx, [rel 0x1000]").Operands[1].(*operand.Memory)
		require.NotZero(t, m.Flags&operand.EARel)

		m = parseOne(t, "mov rcx, [abs 0x1000]").Operands[1].(*operand.Memory)
		require.NotZero(t, m.Flags&operand.EAAbs)
	})

	t.Run("nosplit keeps true scale", func(t *testing.T) {
		m := parseOne(t, "lea eax, [nosplit edx*2]").Operands[1].(*operand.Memory)
		require.NotZero(t, m.Flags&operand.EATimesTwo)
		require.Equal(t, operand.RegEDX, m.Index)
		require.Equal(t, 2, m.Scale)
	})

	t.Run("size keyword inside brackets forces width", func(t *testing.T) {
		m := parseOne(t, "mov eax, [dword eax]").Operands[1].(*operand.Memory)
		require.NotZero(t, m.Flags&operand.EAWordOffs)
		m = parseOne(t, "mov eax, [byte eax+1]").Operands[1].(*operand.Memory)
		require.NotZero(t, m.Flags&operand.EAByteOffs)
	})

	t.Run("comma splits a base,index pair", func(t *testing.T) {
		m := parseOne(t, "bndstx [rax,rbx], bnd0").Operands[0].(*operand.Memory)
		require.Equal(t, operand.RegRAX, m.Base)
		require.Equal(t, operand.RegRBX, m.Index)
		require.Equal(t, 1, m.Scale)
	})

	t.Run("explicit unit scale keeps the register an index", func(t *testing.T) {
		m := parseOne(t, "bndstx [rbx*1], bnd0").Operands[0].(*operand.Memory)
		require.Equal(t, operand.RegRBX, m.Base)
		require.Equal(t, operand.HintNotBase, m.Hint)
		require.Equal(t, operand.RegRBX, m.HintBase)
	})

	t.Run("operand size keyword outside brackets", func(t *testing.T) {
		m := parseOne(t, "inc dword [eax]").Operands[0].(*operand.Memory)
		require.Equal(t, operand.Size32, m.Size)
	})
}

func TestParsePrefixes(t *testing.T) {
	i := parseOne(t, "lock add [rbx], eax")
	require.Equal(t, insn.PrefLock, i.Prefixes[insn.SlotLock])

	i = parseOne(t, "rep movsb")
	require.Equal(t, insn.PrefRep, i.Prefixes[insn.SlotRep])

	i = parseOne(t, "o16 a32 nop")
	require.Equal(t, insn.PrefO16, i.Prefixes[insn.SlotOSize])
	require.Equal(t, insn.PrefA32, i.Prefixes[insn.SlotASize])

	i = parseOne(t, "{evex} vaddps xmm0, xmm1, xmm2")
	require.Equal(t, insn.PrefEvex, i.Prefixes[insn.SlotVex])

	i = parseOne(t, "es lodsb")
	require.Equal(t, insn.PrefES, i.Prefixes[insn.SlotSeg])
}

func TestParseDecorators(t *testing.T) {
	i := parseOne(t, "vaddps zmm0{k1}{z}, zmm1, [rax]{1to16}")
	d := i.Operands[0].Deco()
	require.Equal(t, operand.RegK0+1, d.Mask)
	require.True(t, d.Zeroing)

	md := i.Operands[2].Deco()
	require.Equal(t, uint8(16), md.Broadcast)

	i = parseOne(t, "vaddps zmm0, zmm1, zmm2{rd-sae}")
	rd := i.Operands[2].Deco()
	require.True(t, rd.ER)
	require.Equal(t, operand.RoundDown, rd.Round)

	i = parseOne(t, "vaddps zmm0, zmm1, zmm2{sae}")
	require.True(t, i.Operands[2].Deco().SAE)
}

func TestParseFarPointer(t *testing.T) {
	i := parseOne(t, "jmp 0x1234:0x5678")
	fp, ok := i.Operands[0].(*operand.FarPointer)
	require.True(t, ok)
	require.Equal(t, uint16(0x1234), fp.Segment)
	require.Equal(t, int64(0x5678), fp.Offset)
}

func TestParseModifiers(t *testing.T) {
	i := parseOne(t, "jmp short 0x10")
	require.True(t, i.Operands[0].Modifiers().Has(operand.ModShort))

	i = parseOne(t, "jmp near 0x10")
	require.True(t, i.Operands[0].Modifiers().Has(operand.ModNear))
}

func TestParseSymbols(t *testing.T) {
	p := &Parser{Syms: fixedSyms{"target": 0x40}}
	i, err := p.ParseLine("jmp target")
	require.NoError(t, err)
	imm := i.Operands[0].(*operand.Immediate)
	require.Equal(t, int64(0x40), imm.Value)
	require.NotNil(t, imm.Sym)

	_, err = p.ParseLine("jmp nowhere")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not defined")
}

type fixedSyms map[string]int64

func (s fixedSyms) Resolve(name string) (int64, *operand.SymRef, bool) {
	v, ok := s[name]
	if !ok {
		return 0, nil, false
	}
	return v, &operand.SymRef{WRT: operand.NoSeg, Relative: true}, true
}

func TestParseCommentsAndBlank(t *testing.T) {
	p := &Parser{}
	i, err := p.ParseLine("   ; just a comment")
	require.NoError(t, err)
	require.Nil(t, i)

	i, err = p.ParseLine("nop ; trailing")
	require.NoError(t, err)
	require.Equal(t, insn.NOP, i.Opcode)
}

func TestParseErrors(t *testing.T) {
	p := &Parser{}
	for _, line := range []string{
		"bogus eax",
		"mov eax, [eax",
		"mov eax, {k1}",
		"mov eax, [eax+ebx*7+ecx]",
		"lock lock nop",
		"mov eax, 0xzz",
	} {
		_, err := p.ParseLine(line)
		require.Error(t, err, line)
	}
}
