package encoder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asmforge/x86enc/insn"
	"github.com/asmforge/x86enc/operand"
)

func movFrom(m *operand.Memory) *insn.Instruction {
	return ins(insn.MOV, reg(operand.RegECX), m)
}

func TestEACanonicalization(t *testing.T) {
	tests := []struct {
		name string
		mem  *operand.Memory
		want []byte
	}{
		{"base-only", &operand.Memory{Base: operand.RegEDX},
			[]byte{0x8b, 0x0a}},
		{"index-scale1-folds-to-base", &operand.Memory{Index: operand.RegEDX, Scale: 1},
			[]byte{0x8b, 0x0a}},
		{"index-scale2-splits", &operand.Memory{Index: operand.RegEDX, Scale: 2},
			[]byte{0x8b, 0x0c, 0x12}},
		{"index-scale2-nosplit", &operand.Memory{Index: operand.RegEDX, Scale: 2, Flags: operand.EATimesTwo},
			[]byte{0x8b, 0x0c, 0x55, 0x00, 0x00, 0x00, 0x00}},
		{"scale3-decomposes", &operand.Memory{Index: operand.RegEAX, Scale: 3},
			[]byte{0x8b, 0x0c, 0x40}},
		{"scale3-written-out", &operand.Memory{Base: operand.RegEAX, Index: operand.RegEAX, Scale: 2},
			[]byte{0x8b, 0x0c, 0x40}},
		{"scale5-decomposes", &operand.Memory{Index: operand.RegEDI, Scale: 5},
			[]byte{0x8b, 0x0c, 0xbf}},
		{"esp-needs-sib", &operand.Memory{Base: operand.RegESP},
			[]byte{0x8b, 0x0c, 0x24}},
		{"esp-index-swaps", &operand.Memory{Base: operand.RegEAX, Index: operand.RegESP, Scale: 1},
			[]byte{0x8b, 0x0c, 0x04}},
		{"ebp-forces-disp", &operand.Memory{Base: operand.RegEBP},
			[]byte{0x8b, 0x4d, 0x00}},
		{"disp8", &operand.Memory{Base: operand.RegEAX, Disp: 8},
			[]byte{0x8b, 0x48, 0x08}},
		{"disp32", &operand.Memory{Base: operand.RegEAX, Disp: 0x1000},
			[]byte{0x8b, 0x88, 0x00, 0x10, 0x00, 0x00}},
		{"forced-byte-disp", &operand.Memory{Base: operand.RegEAX, Flags: operand.EAByteOffs},
			[]byte{0x8b, 0x48, 0x00}},
		{"forced-wide-disp", &operand.Memory{Base: operand.RegEAX, Disp: 8, Flags: operand.EAWordOffs},
			[]byte{0x8b, 0x88, 0x08, 0x00, 0x00, 0x00}},
		{"bare-disp", &operand.Memory{Disp: 0x1234},
			[]byte{0x8b, 0x0d, 0x34, 0x12, 0x00, 0x00}},
		{"sib-no-base", &operand.Memory{Index: operand.RegESI, Scale: 4, Disp: 8},
			[]byte{0x8b, 0x0c, 0xb5, 0x08, 0x00, 0x00, 0x00}},
	}

	c := New()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, encode(t, c, movFrom(tc.mem), 32))
		})
	}
}

// Equivalent spellings of one reference must produce identical bytes.
func TestEAEquivalentForms(t *testing.T) {
	pairs := []struct {
		name string
		a, b *operand.Memory
	}{
		{"scale3-vs-split",
			&operand.Memory{Index: operand.RegEAX, Scale: 3},
			&operand.Memory{Base: operand.RegEAX, Index: operand.RegEAX, Scale: 2}},
		{"scale9-vs-split",
			&operand.Memory{Index: operand.RegEBX, Scale: 9},
			&operand.Memory{Base: operand.RegEBX, Index: operand.RegEBX, Scale: 8}},
		{"lone-index-vs-base",
			&operand.Memory{Index: operand.RegEDX, Scale: 1},
			&operand.Memory{Base: operand.RegEDX}},
	}

	c := New()
	for _, tc := range pairs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t,
				encode(t, c, movFrom(tc.a), 32),
				encode(t, c, movFrom(tc.b), 32))
		})
	}
}

func TestEAInvalid(t *testing.T) {
	tests := []struct {
		name string
		mem  *operand.Memory
		bits int
	}{
		{"esp-scaled-index", &operand.Memory{Index: operand.RegESP, Scale: 2}, 32},
		{"two-esp", &operand.Memory{Base: operand.RegESP, Index: operand.RegESP, Scale: 1}, 32},
		{"bad-scale", &operand.Memory{Base: operand.RegEAX, Index: operand.RegEBX, Scale: 7}, 32},
		{"mixed-reg-sizes", &operand.Memory{Base: operand.RegEAX, Index: operand.RegRBX, Scale: 1}, 32},
		{"scaled-16bit", &operand.Memory{Base: operand.RegBX, Index: operand.RegSI, Scale: 2}, 16},
		{"bad-16bit-pair", &operand.Memory{Base: operand.RegAX, Index: operand.RegSI, Scale: 1}, 16},
	}

	c := New()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			sized := reg(operand.RegECX)
			if tc.bits == 16 {
				sized = reg(operand.RegCX)
			}
			_, err := c.Size(ins(insn.MOV, sized, tc.mem), tc.bits, 0, 0)
			require.Error(t, err)
			require.Contains(t, err.Error(), "effective address")
		})
	}
}

// Bound-check memory operands keep base and index literal: no scaling,
// no folding of a lone register into the base slot when the writer
// marked it an index.
func TestBoundMemoryForms(t *testing.T) {
	c := New()
	bndstx := func(m *operand.Memory) *insn.Instruction {
		return ins(insn.BNDSTX, m, reg(operand.RegBND0))
	}

	t.Run("base-and-index", func(t *testing.T) {
		m := &operand.Memory{Base: operand.RegRAX, Index: operand.RegRBX, Scale: 1}
		require.Equal(t, []byte{0x0f, 0x1b, 0x04, 0x18}, encode(t, c, bndstx(m), 64))
	})

	t.Run("lone-index-keeps-no-base-form", func(t *testing.T) {
		m := &operand.Memory{Base: operand.RegRBX,
			Hint: operand.HintNotBase, HintBase: operand.RegRBX}
		require.Equal(t, []byte{0x0f, 0x1b, 0x04, 0x1d, 0x00, 0x00, 0x00, 0x00},
			encode(t, c, bndstx(m), 64))
	})

	t.Run("summed-register-splits-back", func(t *testing.T) {
		m := &operand.Memory{Index: operand.RegRBX, Scale: 2, Hint: operand.HintSummed}
		require.Equal(t, []byte{0x0f, 0x1b, 0x04, 0x1b}, encode(t, c, bndstx(m), 64))
	})

	t.Run("scaled-index-invalid", func(t *testing.T) {
		m := &operand.Memory{Base: operand.RegRAX, Index: operand.RegRBX, Scale: 2}
		_, err := c.Size(bndstx(m), 64, 0, 0)
		require.Error(t, err)
		require.Contains(t, err.Error(), "effective address")
	})

	t.Run("rip-relative-invalid", func(t *testing.T) {
		m := &operand.Memory{Disp: 0x10, Flags: operand.EARel}
		_, err := c.Size(bndstx(m), 64, 0, 0)
		require.Error(t, err)
		require.Contains(t, err.Error(), "effective address")
	})
}

func TestEA16Combinations(t *testing.T) {
	tests := []struct {
		name string
		mem  *operand.Memory
		want []byte
	}{
		{"bx-si", &operand.Memory{Base: operand.RegBX, Index: operand.RegSI, Scale: 1},
			[]byte{0x8b, 0x08}},
		{"si-bx-swapped", &operand.Memory{Base: operand.RegSI, Index: operand.RegBX, Scale: 1},
			[]byte{0x8b, 0x08}},
		{"bp-di", &operand.Memory{Base: operand.RegBP, Index: operand.RegDI, Scale: 1},
			[]byte{0x8b, 0x0b}},
		{"si", &operand.Memory{Base: operand.RegSI},
			[]byte{0x8b, 0x0c}},
		{"bp-forces-disp", &operand.Memory{Base: operand.RegBP},
			[]byte{0x8b, 0x4e, 0x00}},
		{"bx-disp8", &operand.Memory{Base: operand.RegBX, Disp: 5},
			[]byte{0x8b, 0x4f, 0x05}},
		{"bare-disp16", &operand.Memory{Disp: 0x1234},
			[]byte{0x8b, 0x0e, 0x34, 0x12}},
	}

	c := New()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := encode(t, c, ins(insn.MOV, reg(operand.RegCX), tc.mem), 16)
			require.Equal(t, tc.want, got)
		})
	}
}

// A pure-offset reference is IP-relative in 64-bit mode when asked for,
// with the SIB absolute form as the explicit alternative; 32-bit mode
// has only the flat form.
func TestEAModeBoundary(t *testing.T) {
	c := New()

	rel := &operand.Memory{Disp: 0x1000, Flags: operand.EARel}
	got := encode(t, c, ins(insn.MOV, reg(operand.RegRCX), rel), 64)
	// delta is measured from the end of the 7-byte instruction
	require.Equal(t, []byte{0x48, 0x8b, 0x0d, 0xf9, 0x0f, 0x00, 0x00}, got)

	abs := &operand.Memory{Disp: 0x1000, Flags: operand.EAAbs}
	got = encode(t, c, ins(insn.MOV, reg(operand.RegRCX), abs), 64)
	require.Equal(t, []byte{0x48, 0x8b, 0x0c, 0x25, 0x00, 0x10, 0x00, 0x00}, got)

	flat := &operand.Memory{Disp: 0x1000}
	got = encode(t, c, ins(insn.MOV, reg(operand.RegECX), flat), 32)
	require.Equal(t, []byte{0x8b, 0x0d, 0x00, 0x10, 0x00, 0x00}, got)
}

// The resolver output is pure: re-running it on the same inputs yields
// the same encoding.
func TestEARepeatable(t *testing.T) {
	c := New()
	m := &operand.Memory{Index: operand.RegEAX, Scale: 3, Disp: 4}
	first := encode(t, c, movFrom(m), 32)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, encode(t, c, movFrom(m), 32))
	}
}
