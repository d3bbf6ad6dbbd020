package template

import (
	"github.com/asmforge/x86enc/insn"
	"github.com/asmforge/x86enc/operand"
)

// ParamKind classifies what a template slot accepts.
type ParamKind uint8

const (
	// PReg accepts only a register operand.
	PReg ParamKind = iota + 1
	// PRM accepts a register or a memory operand.
	PRM
	// PMem accepts only a memory operand.
	PMem
	// PImm accepts an immediate.
	PImm
	// PFar accepts a seg:offset far pointer immediate.
	PFar
)

// DecoFlags says which EVEX decorators a slot tolerates.
type DecoFlags struct {
	Mask bool
	Z    bool
	// Broadcast memory operands are accepted at element size BrSize.
	Broadcast bool
	BrSize    operand.Size
	ER        bool
	SAE       bool
}

// Param is one operand slot of a template.
type Param struct {
	Kind ParamKind
	// Class constrains register operands (PReg/PRM).
	Class operand.Class
	// Size is the operand size in bits as an operand.Size; zero means
	// the slot takes any size (registers of sizeless classes, or sized
	// elsewhere).
	Size operand.Size
	// Reg, when set, requires this exact register.
	Reg operand.Reg
	// Mods are modifiers the operand must carry (TO, SHORT, NEAR, FAR,
	// STRICT is handled by the matcher itself).
	Mods operand.Mod
	// AllowColon tolerates a spurious colon modifier (i.e. a far
	// pointer syntax accepted by a near form).
	AllowColon bool
	// Unity requires the immediate constant 1.
	Unity bool
	// Fit requires an immediate known to fit the given narrowed class.
	Fit operand.Fit
	// SetSize requires a register-set aligned start and this set size.
	SetSize uint8
	// VSIB requires a memory operand indexed by this vector class.
	VSIB operand.Class
	// NeedMask requires an opmask decorator on the operand.
	NeedMask bool
	// Deco lists the decorators this slot permits.
	Deco DecoFlags
}

// Flags carry template-wide properties.
type Flags uint32

const (
	// FlagLock marks the form lockable with a LOCK prefix.
	FlagLock Flags = 1 << iota
	// FlagBND allows a BND (F2) prefix on branches.
	FlagBND
	// FlagNoBND rejects a BND prefix.
	FlagNoBND
	// FlagMIB splits the EA into separate base and index fields.
	FlagMIB
	// FlagLong restricts the form to 64-bit mode.
	FlagLong
	// FlagNoLong rejects the form in 64-bit mode.
	FlagNoLong
	// FlagOpt marks a size-optimized form used only when optimizing.
	FlagOpt
	// FlagNoFuzzy excludes the form from the relaxed size-matching
	// retry pass.
	FlagNoFuzzy
	// FlagSM requires operands 0 and 1 to agree in size; FlagSM2 the
	// first two of three.
	FlagSM
	FlagSM2
	// FlagNoHLE rejects XACQUIRE/XRELEASE even where LOCK is legal.
	FlagNoHLE
	// FlagObsolete marks a form kept only for completeness.
	FlagObsolete
)

// CPU is the minimum processor level a template needs. Levels are
// ordered; a context at level L accepts templates with MinCPU <= L.
type CPU uint8

const (
	CPU8086 CPU = iota
	CPU186
	CPU286
	CPU386
	CPU486
	CPUPentium
	CPUP6
	CPUKatmai
	CPUWillamette
	CPUPrescott
	CPUX64
	CPUSSE42
	CPUAVX
	CPUAVX2
	CPUMPX
	CPUAVX512
	CPUAny = CPUAVX512
)

// Jump discriminates branch templates for optimistic forward sizing.
type Jump uint8

const (
	JumpNone Jump = iota
	// JumpShort is a rel8 unconditional or conditional branch.
	JumpShort
	// JumpNear is a rel16/32 branch.
	JumpNear
)

// SizeHint supplies the operand size the matcher stamps onto sizeless
// operands during the relaxed pass.
type SizeHint struct {
	// Size is an explicit size; Mode means "the mode's natural size".
	Size operand.Size
	Mode bool
	// Arg applies the hint to one operand only; All to every sizeless
	// one. Arg is ignored unless PerArg.
	Arg    int
	PerArg bool
	All    bool
}

// Template is one encodable form of a mnemonic.
type Template struct {
	Opcode insn.Mnemonic
	Params []Param
	Ops    []Op
	Flags  Flags
	MinCPU CPU
	Jump   Jump
	Hint   SizeHint
}

// Table maps each mnemonic to its candidate templates in priority
// order: the matcher takes the first full match.
var Table = map[insn.Mnemonic][]*Template{}

func def(m insn.Mnemonic, ts ...*Template) {
	for _, t := range ts {
		t.Opcode = m
	}
	Table[m] = append(Table[m], ts...)
}

// Lookup returns the candidate templates for a mnemonic.
func Lookup(m insn.Mnemonic) []*Template {
	return Table[m]
}

// Param constructors, used by the table.

func reg(c operand.Class, sz operand.Size) Param {
	return Param{Kind: PReg, Class: c, Size: sz}
}

func rmp(c operand.Class, sz operand.Size) Param {
	return Param{Kind: PRM, Class: c, Size: sz}
}

func mem(sz operand.Size) Param { return Param{Kind: PMem, Size: sz} }

func imm(sz operand.Size) Param { return Param{Kind: PImm, Size: sz} }

func immFit(sz operand.Size, f operand.Fit) Param {
	return Param{Kind: PImm, Size: sz, Fit: f}
}

func exact(r operand.Reg) Param {
	return Param{Kind: PReg, Class: r.Class(), Size: gprSize(r), Reg: r}
}

func gprSize(r operand.Reg) operand.Size {
	if r.Class() == operand.ClassGPR {
		return r.Size()
	}
	return 0
}

// gpr8/16/32/64 are the common GPR slots.
var (
	gpr8  = reg(operand.ClassGPR, operand.Size8)
	gpr16 = reg(operand.ClassGPR, operand.Size16)
	gpr32 = reg(operand.ClassGPR, operand.Size32)
	gpr64 = reg(operand.ClassGPR, operand.Size64)

	rm8  = rmp(operand.ClassGPR, operand.Size8)
	rm16 = rmp(operand.ClassGPR, operand.Size16)
	rm32 = rmp(operand.ClassGPR, operand.Size32)
	rm64 = rmp(operand.ClassGPR, operand.Size64)

	xmmreg = reg(operand.ClassXMM, 0)
	ymmreg = reg(operand.ClassYMM, 0)
	zmmreg = reg(operand.ClassZMM, 0)
	kreg   = reg(operand.ClassMask, 0)
	bndreg = reg(operand.ClassBound, 0)

	xmmrm128 = rmp(operand.ClassXMM, operand.Size128)
	ymmrm256 = rmp(operand.ClassYMM, operand.Size256)
	zmmrm512 = rmp(operand.ClassZMM, operand.Size512)
	xmmrm32  = rmp(operand.ClassXMM, operand.Size32)
	xmmrm64  = rmp(operand.ClassXMM, operand.Size64)
)

func withDeco(p Param, d DecoFlags) Param {
	p.Deco = d
	return p
}

func withMods(p Param, m operand.Mod) Param {
	p.Mods = m
	return p
}
