// Package template holds the static instruction-encoding table: for each
// mnemonic, the candidate templates with their operand constraints and the
// encoding program the size calculator and code generator both interpret.
package template

import "github.com/asmforge/x86enc/operand"

// OpKind tags one encoding operation. The program for a template is a
// sequence of Ops; the sizing walker and the emitting walker share the
// decoded form and differ only in what they do per op.
type OpKind uint8

const (
	// OpLiteral emits Bytes verbatim (a pending REX goes out first).
	OpLiteral OpKind = iota + 1
	// OpRegInOpcode emits B plus the low three bits of operand Arg's
	// register number, and accumulates that register's REX bits.
	OpRegInOpcode
	// OpImm emits operand Arg as an immediate of width W.
	OpImm
	// OpRel emits operand Arg as a self-relative displacement of width W.
	OpRel
	// OpSeg emits the 16-bit segment part of operand Arg.
	OpSeg
	// OpIs4 emits operand Arg's register number in bits 7..4 (VEX /is4).
	OpIs4
	// OpModRM encodes the effective address of operand Arg into
	// ModRM/SIB/displacement; the spare field comes from operand Spare's
	// register, or is the literal Digit when SpareIsDigit.
	OpModRM
	// OpVex selects a VEX/XOP prefix: class+map in CM, W/L/pp in WLP,
	// VEX.vvvv from operand VArg (or 1111b when VArg < 0).
	OpVex
	// OpEvex selects an EVEX prefix; Tuple drives disp8*N compression.
	OpEvex
	// OpHLE records which XACQUIRE/XRELEASE forms are legal (Mode 1..3).
	OpHLE
	// OpA16/OpA32/OpA64 fix the address size, adding 0x67 when it is not
	// the mode default.
	OpA16
	OpA32
	OpA64
	// OpO16/OpO32 fix the operand size through the prefix slot.
	OpO16
	OpO32
	// OpO64NW is 64-bit operand size with REX.W only needed for
	// register extensions.
	OpO64NW
	// OpO64 is 64-bit operand size requiring REX.W.
	OpO64
	// OpNoHi marks an instruction that always uses spl/bpl/sil/dil.
	OpNoHi
	// OpCondByte emits B XORed with the instruction's condition nibble.
	OpCondByte
	// OpF2Ext/OpF3Ext emit 0xF2/0xF3 used as an opcode extension.
	OpF2Ext
	OpF3Ext
	// OpReserve reserves operand 0's value times the mnemonic element
	// size of uninitialized storage.
	OpReserve
	// OpWait forces the WAIT pseudo-prefix.
	OpWait
	// OpNP marks "no SSE prefix": nothing to emit.
	OpNP
	// Op66SSE emits the 0x66 SSE prefix byte.
	Op66SSE
	// OpJmpLen emits 0x03 in 16-bit mode, 0x05 otherwise (the distance
	// of a conditional hop over a longer jump).
	OpJmpLen
	// OpVSibX/Y/Z declare that the EA must be a vector SIB of that width.
	OpVSibX
	OpVSibY
	OpVSibZ
)

// ImmWidth selects how OpImm/OpRel pick their byte count.
type ImmWidth uint8

const (
	// W8 is a byte immediate.
	W8 ImmWidth = iota + 1
	// W8U is a zero-extended byte immediate.
	W8U
	// W8S is a byte immediate sign-extended to the operand size.
	W8S
	// W16 is a word immediate.
	W16
	// WWD picks word or dword from the operand's size, else the mode.
	WWD
	// W32 is a dword immediate.
	W32
	// WSD is a signed dword extended to 64 bits.
	WSD
	// W64 is a qword immediate.
	W64

	// Rel8 is a byte displacement; RelWD is word or dword by operand
	// size.
	Rel8
	RelWD
)

// Op is one enum-tagged encoding operation.
type Op struct {
	Kind  OpKind
	Bytes []byte
	// Arg is the primary operand index.
	Arg int
	// B is a literal byte payload (opcode base, condition base, ModRM
	// digit).
	B byte
	// W is the immediate/relative width selector.
	W ImmWidth
	// Spare/SpareIsDigit name the ModRM spare field source.
	Spare        int
	SpareIsDigit bool
	// CM and WLP are the packed VEX/XOP/EVEX class+map and W/L/pp
	// fields; Tuple is the EVEX compressed-displacement tuple type.
	CM, WLP byte
	Tuple   Tuple
	// VArg is the VEX.vvvv source operand, -1 for none.
	VArg int
	// Mode is the OpHLE legality code.
	Mode byte
}

// Tuple is an EVEX disp8*N tuple type.
type Tuple uint8

const (
	TupleNone Tuple = iota
	FV
	HV
	FVM
	T1S8
	T1S16
	T1S
	T1F32
	T1F64
	T2
	T4
	T8
	HVM
	QVM
	OVM
	M128
	DUP
)

// VEX/EVEX field packing, as stored in Op.CM and Op.WLP.
const (
	// CM: class in bits 7..6 (0 VEX, 1 XOP, 2 EVEX), map in the low bits.
	VexM0F   = 0x01
	VexM0F38 = 0x02
	VexM0F3A = 0x03
	XopM8    = 1<<6 | 0x08
	XopM9    = 1<<6 | 0x09
	EvexM0F  = 2<<6 | 0x01
	Evex0F38 = 2<<6 | 0x02
	Evex0F3A = 2<<6 | 0x03

	// WLP: 00 ww l lpp (l is two bits for EVEX).
	VexW0  = 0 << 4
	VexW1  = 1 << 4
	VexWIG = 2 << 4
	VexWW  = 3 << 4

	VexL128 = 0 << 2
	VexL256 = 1 << 2
	VexL512 = 2 << 2
	VexLIG  = 3 << 2

	VexP0  = 0
	VexP66 = 1
	VexPF3 = 2
	VexPF2 = 3
)

// HLE legality codes for OpHLE, mirroring the template classes
// "XRELEASE ok", "either ok", "either with LOCK only".
const (
	HLEXR  byte = 1
	HLENL  byte = 2
	HLEYes byte = 3
)

// Op constructors, used by the table.

func lit(b ...byte) Op { return Op{Kind: OpLiteral, Bytes: b} }

func rb(arg int, base byte) Op { return Op{Kind: OpRegInOpcode, Arg: arg, B: base} }

func im(arg int, w ImmWidth) Op { return Op{Kind: OpImm, Arg: arg, W: w} }

func rel(arg int, w ImmWidth) Op { return Op{Kind: OpRel, Arg: arg, W: w} }

func seg(arg int) Op { return Op{Kind: OpSeg, Arg: arg} }

func rm(ea, spare int) Op { return Op{Kind: OpModRM, Arg: ea, Spare: spare} }

func rmd(ea int, digit byte) Op {
	return Op{Kind: OpModRM, Arg: ea, B: digit, SpareIsDigit: true}
}

func vex(varg int, cm, wlp byte) Op {
	return Op{Kind: OpVex, VArg: varg, CM: cm, WLP: wlp}
}

func vexNDS(cm, wlp byte) Op { return Op{Kind: OpVex, VArg: -1, CM: cm, WLP: wlp} }

func evex(varg int, cm, wlp byte, t Tuple) Op {
	return Op{Kind: OpEvex, VArg: varg, CM: cm, WLP: wlp, Tuple: t}
}

func is4(arg int) Op { return Op{Kind: OpIs4, Arg: arg} }

func cond(base byte) Op { return Op{Kind: OpCondByte, B: base} }

func hle(mode byte) Op { return Op{Kind: OpHLE, Mode: mode} }

func op(k OpKind) Op { return Op{Kind: k} }

// SizeForWD resolves a WWD/RelWD width against an operand size and the
// current mode.
func SizeForWD(opSize operand.Size, bits int) int {
	switch opSize {
	case operand.Size16:
		return 2
	case operand.Size32, operand.Size64:
		return 4
	}
	if bits == 16 {
		return 2
	}
	return 4
}
