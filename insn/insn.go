// Package insn defines the instruction record the encoder consumes: a
// mnemonic, up to four typed operands and the active prefix slots.
package insn

import (
	"strings"

	"github.com/asmforge/x86enc/operand"
)

// Mnemonic is an enumerated instruction mnemonic. The condition-code
// families (Jcc, SETcc, CMOVcc) are single mnemonics; the condition lives
// in Instruction.Cond.
type Mnemonic uint16

const (
	None Mnemonic = iota
	ADC
	ADD
	ADDPD
	ADDPS
	ADDSD
	ADDSS
	AND
	BNDMK
	BNDSTX
	CALL
	CBW
	CDQE
	CMOVcc
	CMP
	CMPSB
	CMPXCHG
	CPUID
	CWDE
	DEC
	DIV
	FADD
	FINIT
	FLD
	FNINIT
	FSTP
	HLT
	IDIV
	IMUL
	INC
	INT
	INT3
	JCXZ
	JECXZ
	JMP
	JRCXZ
	Jcc
	KMOVW
	LEA
	LODSB
	MOV
	MOVAPS
	MOVSB
	MOVSX
	MOVUPS
	MOVZX
	MUL
	NEG
	NOP
	NOT
	OR
	POP
	PUSH
	RESB
	RESD
	RESO
	RESQ
	REST
	RESW
	RESY
	RESZ
	RET
	ROL
	ROR
	SAR
	SBB
	SCASB
	SETcc
	SHL
	SHR
	STOSB
	SUB
	SYSCALL
	TEST
	VADDPD
	VADDPS
	VBLENDVPS
	VGATHERDPS
	XADD
	XCHG
	XOR
	numMnemonics
)

var mnemonicNames = map[Mnemonic]string{
	ADC: "adc", ADD: "add", ADDPD: "addpd", ADDPS: "addps",
	ADDSD: "addsd", ADDSS: "addss", AND: "and",
	BNDMK: "bndmk", BNDSTX: "bndstx",
	CALL: "call", CBW: "cbw", CDQE: "cdqe", CMOVcc: "cmovcc", CMP: "cmp",
	CMPSB: "cmpsb", CMPXCHG: "cmpxchg", CPUID: "cpuid", CWDE: "cwde",
	DEC: "dec", DIV: "div",
	FADD: "fadd", FINIT: "finit", FLD: "fld", FNINIT: "fninit", FSTP: "fstp",
	HLT: "hlt", IDIV: "idiv", IMUL: "imul", INC: "inc", INT: "int",
	INT3: "int3",
	JCXZ: "jcxz", JECXZ: "jecxz", JMP: "jmp", JRCXZ: "jrcxz", Jcc: "jcc",
	KMOVW: "kmovw", LEA: "lea", LODSB: "lodsb",
	MOV: "mov", MOVAPS: "movaps", MOVSB: "movsb", MOVSX: "movsx",
	MOVUPS: "movups", MOVZX: "movzx", MUL: "mul",
	NEG: "neg", NOP: "nop", NOT: "not", OR: "or",
	POP: "pop", PUSH: "push",
	RESB: "resb", RESD: "resd", RESO: "reso", RESQ: "resq", REST: "rest",
	RESW: "resw", RESY: "resy", RESZ: "resz", RET: "ret",
	ROL: "rol", ROR: "ror",
	SAR: "sar", SBB: "sbb", SCASB: "scasb", SETcc: "setcc", SHL: "shl",
	SHR: "shr", STOSB: "stosb", SUB: "sub", SYSCALL: "syscall",
	TEST: "test",
	VADDPD: "vaddpd", VADDPS: "vaddps", VBLENDVPS: "vblendvps",
	VGATHERDPS: "vgatherdps",
	XADD: "xadd", XCHG: "xchg", XOR: "xor",
}

func (m Mnemonic) String() string {
	if s, ok := mnemonicNames[m]; ok {
		return s
	}
	return "???"
}

// Cond is an x86 condition-code nibble, as encoded in Jcc/SETcc/CMOVcc
// opcodes.
type Cond uint8

const (
	CondO Cond = iota
	CondNO
	CondC
	CondNC
	CondZ
	CondNZ
	CondNA
	CondA
	CondS
	CondNS
	CondPE
	CondPO
	CondL
	CondNL
	CondNG
	CondG
)

// Opcode returns the condition nibble XORed into conditional opcodes.
func (c Cond) Opcode() byte { return byte(c) & 0x0f }

var condNames = map[string]Cond{
	"o": CondO, "no": CondNO,
	"b": CondC, "c": CondC, "nae": CondC,
	"ae": CondNC, "nb": CondNC, "nc": CondNC,
	"e": CondZ, "z": CondZ,
	"ne": CondNZ, "nz": CondNZ,
	"be": CondNA, "na": CondNA,
	"a": CondA, "nbe": CondA,
	"s": CondS, "ns": CondNS,
	"p": CondPE, "pe": CondPE,
	"np": CondPO, "po": CondPO,
	"l": CondL, "nge": CondL,
	"ge": CondNL, "nl": CondNL,
	"le": CondNG, "ng": CondNG,
	"g": CondG, "nle": CondG,
}

// Lookup resolves a source-level mnemonic, decomposing condition-code
// families: "jne" yields (Jcc, CondNZ, true).
func Lookup(name string) (Mnemonic, Cond, bool) {
	name = strings.ToLower(name)
	for m, n := range mnemonicNames {
		if n == name && m != Jcc && m != SETcc && m != CMOVcc {
			return m, 0, true
		}
	}
	for prefix, m := range map[string]Mnemonic{"j": Jcc, "set": SETcc, "cmov": CMOVcc} {
		if strings.HasPrefix(name, prefix) {
			if c, ok := condNames[name[len(prefix):]]; ok {
				return m, c, true
			}
		}
	}
	return None, 0, false
}

// PrefixSlot is the category a prefix occupies; at most one prefix per
// slot may be active. The slot order is also the emission order.
type PrefixSlot int

const (
	SlotWait PrefixSlot = iota
	SlotRep
	SlotLock
	SlotSeg
	SlotOSize
	SlotASize
	SlotVex
	NumPrefixSlots
)

// Prefix is one instruction prefix value.
type Prefix uint8

const (
	PrefNone Prefix = iota
	PrefWait
	PrefLock
	PrefRep
	PrefRepe
	PrefRepz
	PrefRepne
	PrefRepnz
	PrefXacquire
	PrefXrelease
	PrefBnd
	PrefNobnd
	PrefCS
	PrefDS
	PrefES
	PrefFS
	PrefGS
	PrefSS
	PrefSegR6
	PrefSegR7
	PrefA16
	PrefA32
	PrefA64
	PrefASP
	PrefO16
	PrefO32
	PrefO64
	PrefOSP
	PrefVex2
	PrefVex3
	PrefEvex
)

var prefixNames = [...]string{
	PrefNone: "", PrefWait: "wait", PrefLock: "lock",
	PrefRep: "rep", PrefRepe: "repe", PrefRepz: "repz",
	PrefRepne: "repne", PrefRepnz: "repnz",
	PrefXacquire: "xacquire", PrefXrelease: "xrelease",
	PrefBnd: "bnd", PrefNobnd: "nobnd",
	PrefCS: "cs", PrefDS: "ds", PrefES: "es", PrefFS: "fs", PrefGS: "gs",
	PrefSS: "ss", PrefSegR6: "segr6", PrefSegR7: "segr7",
	PrefA16: "a16", PrefA32: "a32", PrefA64: "a64", PrefASP: "asp",
	PrefO16: "o16", PrefO32: "o32", PrefO64: "o64", PrefOSP: "osp",
	PrefVex2: "{vex2}", PrefVex3: "{vex3}", PrefEvex: "{evex}",
}

func (p Prefix) String() string {
	if int(p) < len(prefixNames) {
		return prefixNames[p]
	}
	return "???"
}

// SegPrefix maps a segment register to its prefix value.
func SegPrefix(r operand.Reg) Prefix {
	switch r {
	case operand.RegCS:
		return PrefCS
	case operand.RegDS:
		return PrefDS
	case operand.RegES:
		return PrefES
	case operand.RegFS:
		return PrefFS
	case operand.RegGS:
		return PrefGS
	case operand.RegSS:
		return PrefSS
	case operand.RegSegR6:
		return PrefSegR6
	case operand.RegSegR7:
		return PrefSegR7
	}
	return PrefNone
}

// MaxOperands is the architectural operand-count limit.
const MaxOperands = 4

// Instruction is one instruction to encode. It is built fresh per source
// line; the encoder derives everything else per call.
type Instruction struct {
	Opcode   Mnemonic
	Cond     Cond
	Prefixes [NumPrefixSlots]Prefix
	Operands []operand.Operand
}

// HasPrefix reports whether slot holds exactly p.
func (i *Instruction) HasPrefix(slot PrefixSlot, p Prefix) bool {
	return i.Prefixes[slot] == p
}

// BrErOp returns the index of the operand carrying a broadcast, embedded
// rounding or SAE decorator, or -1.
func (i *Instruction) BrErOp() int {
	for n, op := range i.Operands {
		d := op.Deco()
		if d.Broadcast != 0 || d.ER || d.SAE {
			return n
		}
	}
	return -1
}

// ResbBytes returns the reservation element size for the RESx family,
// zero for other mnemonics.
func ResbBytes(m Mnemonic) int64 {
	switch m {
	case RESB:
		return 1
	case RESW:
		return 2
	case RESD:
		return 4
	case RESQ:
		return 8
	case REST:
		return 10
	case RESO:
		return 16
	case RESY:
		return 32
	case RESZ:
		return 64
	}
	return 0
}
