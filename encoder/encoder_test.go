package encoder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asmforge/x86enc/insn"
	"github.com/asmforge/x86enc/operand"
	"github.com/asmforge/x86enc/output"
)

type warnRecorder struct{ warnings []string }

func (w *warnRecorder) Warnf(format string, args ...interface{}) {
	w.warnings = append(w.warnings, fmt.Sprintf(format, args...))
}

func reg(r operand.Reg) *operand.Register { return &operand.Register{Reg: r} }

func imm(v int64) *operand.Immediate {
	return &operand.Immediate{Value: v, Fits: operand.FitsOf(v)}
}

func ins(m insn.Mnemonic, ops ...operand.Operand) *insn.Instruction {
	return &insn.Instruction{Opcode: m, Operands: ops}
}

func encode(t *testing.T, c *Context, i *insn.Instruction, bits int) []byte {
	t.Helper()
	buf := output.NewBuffer()
	n, err := c.Assemble(i, bits, 0, 0, buf)
	require.NoError(t, err)
	require.Equal(t, n, buf.Len(), "sized length must match emitted length")
	return buf.Bytes()
}

func TestMovImm32(t *testing.T) {
	got := encode(t, New(), ins(insn.MOV, reg(operand.RegEAX), imm(1)), 32)
	require.Equal(t, []byte{0xb8, 0x01, 0x00, 0x00, 0x00}, got)
}

func TestMovMemSIB(t *testing.T) {
	m := &operand.Memory{Base: operand.RegEAX, Index: operand.RegECX, Scale: 4, Disp: 8}
	got := encode(t, New(), ins(insn.MOV, m, reg(operand.RegEBX)), 32)
	// mod=01 rm=100 reg=ebx, SIB scale=4 index=ecx base=eax, disp8
	require.Equal(t, []byte{0x89, 0x5c, 0x88, 0x08}, got)
}

func TestVaddpsBroadcastMasked(t *testing.T) {
	dst := &operand.Register{Reg: operand.RegZMM0,
		D: operand.Decorators{Mask: operand.RegK0 + 1, Zeroing: true}}
	mem := &operand.Memory{Base: operand.RegRAX,
		D: operand.Decorators{Broadcast: 16, BrSize: 32}}
	got := encode(t, New(), ins(insn.VADDPS, dst, reg(operand.RegZMM0+1), mem), 64)
	require.Equal(t, []byte{0x62, 0xf1, 0x74, 0xd9, 0x58, 0x00}, got)
}

func TestLockWithoutMemoryWarns(t *testing.T) {
	rec := &warnRecorder{}
	c := New()
	c.Reporter = rec

	i := ins(insn.ADD, reg(operand.RegEAX), reg(operand.RegEBX))
	i.Prefixes[insn.SlotLock] = insn.PrefLock
	got := encode(t, c, i, 64)

	require.Equal(t, []byte{0xf0, 0x01, 0xd8}, got)
	require.Len(t, rec.warnings, 1)
	require.Contains(t, rec.warnings[0], "instruction is not lockable")
}

func TestLockOnMemoryDestination(t *testing.T) {
	rec := &warnRecorder{}
	c := New()
	c.Reporter = rec

	m := &operand.Memory{Base: operand.RegRBX}
	i := ins(insn.ADD, m, reg(operand.RegEAX))
	i.Prefixes[insn.SlotLock] = insn.PrefLock
	got := encode(t, c, i, 64)

	require.Equal(t, []byte{0xf0, 0x01, 0x03}, got)
	require.Empty(t, rec.warnings)
}

func TestStoreSizedFromRegisterSource(t *testing.T) {
	t.Run("plain store", func(t *testing.T) {
		m := &operand.Memory{Base: operand.RegRBX}
		got := encode(t, New(), ins(insn.MOV, m, reg(operand.RegEAX)), 64)
		require.Equal(t, []byte{0x89, 0x03}, got)
	})

	t.Run("segment-override store", func(t *testing.T) {
		m := &operand.Memory{Segment: operand.RegFS, Disp: 0x10}
		got := encode(t, New(), ins(insn.MOV, m, reg(operand.RegEAX)), 64)
		require.Equal(t, []byte{0x64, 0x89, 0x04, 0x25, 0x10, 0x00, 0x00, 0x00}, got)
	})

	t.Run("sub on memory destination", func(t *testing.T) {
		m := &operand.Memory{Base: operand.RegEBX}
		got := encode(t, New(), ins(insn.SUB, m, reg(operand.RegECX)), 32)
		require.Equal(t, []byte{0x29, 0x0b}, got)
	})
}

func TestHLEPrefixChecks(t *testing.T) {
	run := func(t *testing.T, i *insn.Instruction) ([]byte, []string) {
		t.Helper()
		rec := &warnRecorder{}
		c := New()
		c.Reporter = rec
		return encode(t, c, i, 64), rec.warnings
	}
	memAdd := func(p insn.Prefix) *insn.Instruction {
		i := ins(insn.ADD, &operand.Memory{Base: operand.RegRBX}, reg(operand.RegEAX))
		i.Prefixes[insn.SlotRep] = p
		return i
	}
	memMov := func(p insn.Prefix) *insn.Instruction {
		i := ins(insn.MOV, &operand.Memory{Base: operand.RegRBX}, reg(operand.RegEAX))
		i.Prefixes[insn.SlotRep] = p
		return i
	}

	t.Run("xacquire with lock", func(t *testing.T) {
		i := memAdd(insn.PrefXacquire)
		i.Prefixes[insn.SlotLock] = insn.PrefLock
		got, warns := run(t, i)
		require.Equal(t, []byte{0xf2, 0xf0, 0x01, 0x03}, got)
		require.Empty(t, warns)
	})

	t.Run("xacquire without lock warns but still emits", func(t *testing.T) {
		got, warns := run(t, memAdd(insn.PrefXacquire))
		require.Equal(t, []byte{0xf2, 0x01, 0x03}, got)
		require.Len(t, warns, 1)
		require.Contains(t, warns[0], "xacquire with this instruction requires lock")
	})

	t.Run("xrelease store needs no lock", func(t *testing.T) {
		got, warns := run(t, memMov(insn.PrefXrelease))
		require.Equal(t, []byte{0xf3, 0x89, 0x03}, got)
		require.Empty(t, warns)
	})

	t.Run("xacquire on a release-only store warns", func(t *testing.T) {
		got, warns := run(t, memMov(insn.PrefXacquire))
		require.Equal(t, []byte{0xf2, 0x89, 0x03}, got)
		require.Len(t, warns, 1)
		require.Contains(t, warns[0], "xacquire invalid with this instruction")
	})

	t.Run("xrelease without memory warns", func(t *testing.T) {
		i := ins(insn.ADD, reg(operand.RegEAX), reg(operand.RegEBX))
		i.Prefixes[insn.SlotRep] = insn.PrefXrelease
		got, warns := run(t, i)
		require.Equal(t, []byte{0xf3, 0x01, 0xd8}, got)
		require.Len(t, warns, 1)
		require.Contains(t, warns[0], "xrelease invalid with this instruction")
	})
}

// cmp shares the arithmetic templates but writes nothing back, so lock
// and hle are both refused.
func TestCmpRejectsLockAndHLE(t *testing.T) {
	t.Run("lock", func(t *testing.T) {
		rec := &warnRecorder{}
		c := New()
		c.Reporter = rec
		i := ins(insn.CMP, &operand.Memory{Base: operand.RegRBX}, reg(operand.RegEAX))
		i.Prefixes[insn.SlotLock] = insn.PrefLock
		got := encode(t, c, i, 64)
		require.Equal(t, []byte{0xf0, 0x39, 0x03}, got)
		require.Len(t, rec.warnings, 1)
		require.Contains(t, rec.warnings[0], "instruction is not lockable")
	})

	t.Run("xacquire", func(t *testing.T) {
		rec := &warnRecorder{}
		c := New()
		c.Reporter = rec
		i := ins(insn.CMP, &operand.Memory{Base: operand.RegRBX}, reg(operand.RegEAX))
		i.Prefixes[insn.SlotRep] = insn.PrefXacquire
		got := encode(t, c, i, 64)
		require.Equal(t, []byte{0xf2, 0x39, 0x03}, got)
		require.Len(t, rec.warnings, 1)
		require.Contains(t, rec.warnings[0], "xacquire invalid with this instruction")
	})
}

func TestSizeIdempotent(t *testing.T) {
	c := New()
	m := &operand.Memory{Base: operand.RegRAX, Index: operand.RegRCX, Scale: 4, Disp: 0x100}
	i := ins(insn.ADD, reg(operand.RegR9), m)

	r1, err := c.Size(i, 64, 0, 0)
	require.NoError(t, err)
	r2, err := c.Size(i, 64, 0, 0)
	require.NoError(t, err)

	require.Equal(t, r1.Len(), r2.Len())
	require.Equal(t, r1.rex, r2.rex)
	require.Equal(t, r1.tmpl, r2.tmpl)

	b1, b2 := output.NewBuffer(), output.NewBuffer()
	require.NoError(t, c.Encode(r1, b1))
	require.NoError(t, c.Encode(r2, b2))
	require.Equal(t, b1.Bytes(), b2.Bytes())
}

func TestMatcherDeterministic(t *testing.T) {
	c := New()
	i := ins(insn.ADD, reg(operand.RegEAX), imm(4))
	first, res := c.findMatch(i, 32, 0, 0)
	require.Equal(t, matchGood, res)
	for n := 0; n < 10; n++ {
		tmpl, res := c.findMatch(i, 32, 0, 0)
		require.Equal(t, matchGood, res)
		require.Same(t, first, tmpl)
	}
}

// Sized length must equal emitted length across a spread of operand
// shapes.
func TestLengthEmissionConsistency(t *testing.T) {
	tests := []struct {
		name string
		ins  *insn.Instruction
		bits int
	}{
		{"reg-reg", ins(insn.ADD, reg(operand.RegEAX), reg(operand.RegEBX)), 32},
		{"reg-imm8", ins(insn.ADD, reg(operand.RegEBX), imm(4)), 32},
		{"reg-imm32", ins(insn.ADD, reg(operand.RegEBX), imm(0x12345)), 32},
		{"acc-imm", ins(insn.ADD, reg(operand.RegAL), imm(4)), 32},
		{"rex-reg", ins(insn.MOV, reg(operand.RegR10), reg(operand.RegRAX)), 64},
		{"mov-imm64", ins(insn.MOV, reg(operand.RegRAX), imm(0x123456789a)), 64},
		{"mem-base", ins(insn.MOV, reg(operand.RegECX), &operand.Memory{Base: operand.RegEDX}), 32},
		{"mem-esp", ins(insn.MOV, reg(operand.RegECX), &operand.Memory{Base: operand.RegESP}), 32},
		{"mem-ebp", ins(insn.MOV, reg(operand.RegECX), &operand.Memory{Base: operand.RegEBP}), 32},
		{"mem-disp32", ins(insn.MOV, reg(operand.RegECX), &operand.Memory{Base: operand.RegEAX, Disp: 0x1000}), 32},
		{"mem-scaled", ins(insn.MOV, reg(operand.RegECX), &operand.Memory{Index: operand.RegEDI, Scale: 8, Disp: 4}), 32},
		{"mem-bare", ins(insn.MOV, reg(operand.RegECX), &operand.Memory{Disp: 0x1234}), 32},
		{"mem-16bit", ins(insn.MOV, reg(operand.RegCX), &operand.Memory{Base: operand.RegBX, Index: operand.RegSI}), 16},
		{"mem-rip", ins(insn.MOV, reg(operand.RegRCX), &operand.Memory{Disp: 0x1000, Flags: operand.EARel}), 64},
		{"mem-abs64", ins(insn.MOV, reg(operand.RegRCX), &operand.Memory{Disp: 0x1000, Flags: operand.EAAbs}), 64},
		{"push-imm", ins(insn.PUSH, imm(0x44)), 64},
		{"xchg-acc", ins(insn.XCHG, reg(operand.RegEAX), reg(operand.RegESI)), 32},
		{"vex", ins(insn.VADDPS, reg(operand.RegXMM0), reg(operand.RegXMM0+1), reg(operand.RegXMM0+2)), 64},
		{"vex-high", ins(insn.VADDPS, reg(operand.RegXMM0+9), reg(operand.RegXMM0+1), reg(operand.RegXMM0+2)), 64},
		{"evex-high16", ins(insn.VADDPS, reg(operand.RegXMM0+17), reg(operand.RegXMM0+1), reg(operand.RegXMM0+2)), 64},
		{"no-operand", ins(insn.CPUID), 64},
		{"shift-unity", ins(insn.SHL, reg(operand.RegEAX), imm(1)), 32},
		{"shift-imm", ins(insn.SHL, reg(operand.RegEAX), imm(3)), 32},
	}

	c := New()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r, err := c.Size(tc.ins, tc.bits, 0, 0)
			require.NoError(t, err)
			buf := output.NewBuffer()
			require.NoError(t, c.Encode(r, buf))
			require.Equal(t, r.Len(), buf.Len())
		})
	}
}
