package template

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asmforge/x86enc/insn"
)

// The whole table must be internally consistent: every operand an
// encoding program references must exist in the parameter list, and
// prefix-class selectors only appear ahead of the opcode bytes.
func TestTableConsistency(t *testing.T) {
	for m, ts := range Table {
		for ti, tmpl := range ts {
			require.Equal(t, m, tmpl.Opcode, "%v[%d]", m, ti)
			require.LessOrEqual(t, len(tmpl.Params), insn.MaxOperands, "%v[%d]", m, ti)

			for oi, op := range tmpl.Ops {
				switch op.Kind {
				case OpRegInOpcode, OpImm, OpRel, OpSeg, OpIs4, OpModRM, OpVSibX, OpVSibY, OpVSibZ:
					require.Less(t, int(op.Arg), len(tmpl.Params),
						"%v[%d] op %d references a missing operand", m, ti, oi)
				case OpLiteral:
					require.NotEmpty(t, op.Bytes, "%v[%d] op %d", m, ti, oi)
				}
			}
		}
	}
}

// Short-branch forms must come before their near equivalents so the
// matcher can prefer them.
func TestBranchTemplateOrder(t *testing.T) {
	for _, m := range []insn.Mnemonic{insn.JMP, insn.Jcc} {
		short, near := -1, -1
		for i, tmpl := range Table[m] {
			switch tmpl.Jump {
			case JumpShort:
				short = i
			case JumpNear:
				near = i
			}
		}
		require.GreaterOrEqual(t, short, 0, m)
		require.GreaterOrEqual(t, near, 0, m)
		require.Less(t, short, near, m)
	}
}

// Vector templates offering both VEX and EVEX encodings must keep the
// VEX form first so it wins when either would do.
func TestVexBeforeEvex(t *testing.T) {
	for m, ts := range Table {
		vex, evex := -1, -1
		for i, tmpl := range ts {
			for _, op := range tmpl.Ops {
				switch op.Kind {
				case OpVex:
					if vex < 0 {
						vex = i
					}
				case OpEvex:
					if evex < 0 {
						evex = i
					}
				}
			}
		}
		if vex >= 0 && evex >= 0 {
			require.Less(t, vex, evex, m)
		}
	}
}

func TestSizeForWD(t *testing.T) {
	require.Equal(t, 2, SizeForWD(0, 16))
	require.Equal(t, 4, SizeForWD(0, 32))
	require.Equal(t, 4, SizeForWD(0, 64))
	require.Equal(t, 2, SizeForWD(16, 64))
	require.Equal(t, 4, SizeForWD(32, 16))
}
