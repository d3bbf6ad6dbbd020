package template

import (
	"github.com/asmforge/x86enc/insn"
	"github.com/asmforge/x86enc/operand"
)

// Shorthand params used across many entries.
var (
	unity  = Param{Kind: PImm, Unity: true}
	fpureg = reg(operand.ClassFPU, 0)
	fpuTo  = withMods(reg(operand.ClassFPU, 0), operand.ModTo)
	sreg   = reg(operand.ClassSegment, 0)
	farImm = Param{Kind: PFar, Mods: operand.ModColon}
	memFar = withMods(mem(0), operand.ModFar)

	maskZ  = DecoFlags{Mask: true, Z: true}
	masked = DecoFlags{Mask: true}
)

func o16() Op { return op(OpO16) }
func o32() Op { return op(OpO32) }
func o64() Op { return op(OpO64) }

// defArith defines one of the eight classic ALU group instructions.
// base is the 0x00-aligned opcode base, d the /digit of the 80/81/83
// immediate group.
func defArith(m insn.Mnemonic, base, d byte) {
	def(m,
		// register/memory with register source
		&Template{Params: []Param{rm8, gpr8}, Ops: []Op{hle(HLEYes), lit(base), rm(0, 1)}, Flags: FlagLock | FlagSM},
		&Template{Params: []Param{rm16, gpr16}, Ops: []Op{hle(HLEYes), o16(), lit(base + 1), rm(0, 1)}, Flags: FlagLock | FlagSM},
		&Template{Params: []Param{rm32, gpr32}, Ops: []Op{hle(HLEYes), o32(), lit(base + 1), rm(0, 1)}, Flags: FlagLock | FlagSM, MinCPU: CPU386},
		&Template{Params: []Param{rm64, gpr64}, Ops: []Op{hle(HLEYes), o64(), lit(base + 1), rm(0, 1)}, Flags: FlagLock | FlagSM, MinCPU: CPUX64},
		// register with register/memory source
		&Template{Params: []Param{gpr8, rm8}, Ops: []Op{lit(base + 2), rm(1, 0)}, Flags: FlagSM},
		&Template{Params: []Param{gpr16, rm16}, Ops: []Op{o16(), lit(base + 3), rm(1, 0)}, Flags: FlagSM},
		&Template{Params: []Param{gpr32, rm32}, Ops: []Op{o32(), lit(base + 3), rm(1, 0)}, Flags: FlagSM, MinCPU: CPU386},
		&Template{Params: []Param{gpr64, rm64}, Ops: []Op{o64(), lit(base + 3), rm(1, 0)}, Flags: FlagSM, MinCPU: CPUX64},
		// explicit byte immediate, sign-extended
		&Template{Params: []Param{rm16, imm(operand.Size8)}, Ops: []Op{hle(HLEYes), o16(), lit(0x83), rmd(0, d), im(1, W8S)}, Flags: FlagLock},
		&Template{Params: []Param{rm32, imm(operand.Size8)}, Ops: []Op{hle(HLEYes), o32(), lit(0x83), rmd(0, d), im(1, W8S)}, Flags: FlagLock, MinCPU: CPU386},
		&Template{Params: []Param{rm64, imm(operand.Size8)}, Ops: []Op{hle(HLEYes), o64(), lit(0x83), rmd(0, d), im(1, W8S)}, Flags: FlagLock, MinCPU: CPUX64},
		// accumulator short forms
		&Template{Params: []Param{exact(operand.RegAL), imm(0)}, Ops: []Op{lit(base + 4), im(1, W8)}, Flags: FlagSM},
		&Template{Params: []Param{exact(operand.RegAX), immFit(0, operand.FitSByteWord)}, Ops: []Op{o16(), lit(0x83), rmd(0, d), im(1, W8S)}, Flags: FlagSM | FlagOpt},
		&Template{Params: []Param{exact(operand.RegAX), imm(0)}, Ops: []Op{o16(), lit(base + 5), im(1, W16)}, Flags: FlagSM},
		&Template{Params: []Param{exact(operand.RegEAX), immFit(0, operand.FitSByteDword)}, Ops: []Op{o32(), lit(0x83), rmd(0, d), im(1, W8S)}, Flags: FlagSM | FlagOpt, MinCPU: CPU386},
		&Template{Params: []Param{exact(operand.RegEAX), imm(0)}, Ops: []Op{o32(), lit(base + 5), im(1, W32)}, Flags: FlagSM, MinCPU: CPU386},
		&Template{Params: []Param{exact(operand.RegRAX), immFit(0, operand.FitSByteDword)}, Ops: []Op{o64(), lit(0x83), rmd(0, d), im(1, W8S)}, Flags: FlagSM | FlagOpt, MinCPU: CPUX64},
		&Template{Params: []Param{exact(operand.RegRAX), imm(0)}, Ops: []Op{o64(), lit(base + 5), im(1, WSD)}, Flags: FlagSM, MinCPU: CPUX64},
		// general immediate forms
		&Template{Params: []Param{rm8, imm(0)}, Ops: []Op{hle(HLEYes), lit(0x80), rmd(0, d), im(1, W8)}, Flags: FlagLock | FlagSM},
		&Template{Params: []Param{rm16, immFit(0, operand.FitSByteWord)}, Ops: []Op{hle(HLEYes), o16(), lit(0x83), rmd(0, d), im(1, W8S)}, Flags: FlagLock | FlagSM | FlagOpt},
		&Template{Params: []Param{rm16, imm(0)}, Ops: []Op{hle(HLEYes), o16(), lit(0x81), rmd(0, d), im(1, W16)}, Flags: FlagLock | FlagSM},
		&Template{Params: []Param{rm32, immFit(0, operand.FitSByteDword)}, Ops: []Op{hle(HLEYes), o32(), lit(0x83), rmd(0, d), im(1, W8S)}, Flags: FlagLock | FlagSM | FlagOpt, MinCPU: CPU386},
		&Template{Params: []Param{rm32, imm(0)}, Ops: []Op{hle(HLEYes), o32(), lit(0x81), rmd(0, d), im(1, W32)}, Flags: FlagLock | FlagSM, MinCPU: CPU386},
		&Template{Params: []Param{rm64, immFit(0, operand.FitSByteDword)}, Ops: []Op{hle(HLEYes), o64(), lit(0x83), rmd(0, d), im(1, W8S)}, Flags: FlagLock | FlagSM | FlagOpt, MinCPU: CPUX64},
		&Template{Params: []Param{rm64, imm(0)}, Ops: []Op{hle(HLEYes), o64(), lit(0x81), rmd(0, d), im(1, WSD)}, Flags: FlagLock | FlagSM, MinCPU: CPUX64},
	)
}

// defShift defines one of the D0/D2/C0 rotate/shift group; d is the
// group /digit.
func defShift(m insn.Mnemonic, d byte) {
	def(m,
		&Template{Params: []Param{rm8, unity}, Ops: []Op{lit(0xd0), rmd(0, d)}},
		&Template{Params: []Param{rm8, exact(operand.RegCL)}, Ops: []Op{lit(0xd2), rmd(0, d)}},
		&Template{Params: []Param{rm8, imm(operand.Size8)}, Ops: []Op{lit(0xc0), rmd(0, d), im(1, W8U)}, MinCPU: CPU186},
		&Template{Params: []Param{rm16, unity}, Ops: []Op{o16(), lit(0xd1), rmd(0, d)}},
		&Template{Params: []Param{rm16, exact(operand.RegCL)}, Ops: []Op{o16(), lit(0xd3), rmd(0, d)}},
		&Template{Params: []Param{rm16, imm(operand.Size8)}, Ops: []Op{o16(), lit(0xc1), rmd(0, d), im(1, W8U)}, MinCPU: CPU186},
		&Template{Params: []Param{rm32, unity}, Ops: []Op{o32(), lit(0xd1), rmd(0, d)}, MinCPU: CPU386},
		&Template{Params: []Param{rm32, exact(operand.RegCL)}, Ops: []Op{o32(), lit(0xd3), rmd(0, d)}, MinCPU: CPU386},
		&Template{Params: []Param{rm32, imm(operand.Size8)}, Ops: []Op{o32(), lit(0xc1), rmd(0, d), im(1, W8U)}, MinCPU: CPU386},
		&Template{Params: []Param{rm64, unity}, Ops: []Op{o64(), lit(0xd1), rmd(0, d)}, MinCPU: CPUX64},
		&Template{Params: []Param{rm64, exact(operand.RegCL)}, Ops: []Op{o64(), lit(0xd3), rmd(0, d)}, MinCPU: CPUX64},
		&Template{Params: []Param{rm64, imm(operand.Size8)}, Ops: []Op{o64(), lit(0xc1), rmd(0, d), im(1, W8U)}, MinCPU: CPUX64},
	)
}

// defGroup3 defines an F6/F7 group member; NEG and NOT are lockable.
func defGroup3(m insn.Mnemonic, d byte, lockable bool) {
	var f Flags
	var h []Op
	if lockable {
		f = FlagLock
		h = []Op{hle(HLEYes)}
	}
	def(m,
		&Template{Params: []Param{rm8}, Ops: append(h[:len(h):len(h)], lit(0xf6), rmd(0, d)), Flags: f},
		&Template{Params: []Param{rm16}, Ops: append(h[:len(h):len(h)], o16(), lit(0xf7), rmd(0, d)), Flags: f},
		&Template{Params: []Param{rm32}, Ops: append(h[:len(h):len(h)], o32(), lit(0xf7), rmd(0, d)), Flags: f, MinCPU: CPU386},
		&Template{Params: []Param{rm64}, Ops: append(h[:len(h):len(h)], o64(), lit(0xf7), rmd(0, d)), Flags: f, MinCPU: CPUX64},
	)
}

// defIncDec defines INC or DEC; shortBase is the one-byte 40/48 form,
// d the FE/FF /digit.
func defIncDec(m insn.Mnemonic, shortBase, d byte) {
	def(m,
		&Template{Params: []Param{gpr16}, Ops: []Op{o16(), rb(0, shortBase)}, Flags: FlagNoLong},
		&Template{Params: []Param{gpr32}, Ops: []Op{o32(), rb(0, shortBase)}, Flags: FlagNoLong, MinCPU: CPU386},
		&Template{Params: []Param{rm8}, Ops: []Op{hle(HLEYes), lit(0xfe), rmd(0, d)}, Flags: FlagLock},
		&Template{Params: []Param{rm16}, Ops: []Op{hle(HLEYes), o16(), lit(0xff), rmd(0, d)}, Flags: FlagLock},
		&Template{Params: []Param{rm32}, Ops: []Op{hle(HLEYes), o32(), lit(0xff), rmd(0, d)}, Flags: FlagLock, MinCPU: CPU386},
		&Template{Params: []Param{rm64}, Ops: []Op{hle(HLEYes), o64(), lit(0xff), rmd(0, d)}, Flags: FlagLock, MinCPU: CPUX64},
	)
}

func defMov() {
	def(insn.MOV,
		// segment register moves
		&Template{Params: []Param{mem(0), sreg}, Ops: []Op{lit(0x8c), rm(0, 1)}},
		&Template{Params: []Param{gpr16, sreg}, Ops: []Op{o16(), lit(0x8c), rm(0, 1)}},
		&Template{Params: []Param{gpr32, sreg}, Ops: []Op{o32(), lit(0x8c), rm(0, 1)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr64, sreg}, Ops: []Op{op(OpO64NW), lit(0x8c), rm(0, 1)}, MinCPU: CPUX64},
		&Template{Params: []Param{sreg, mem(0)}, Ops: []Op{lit(0x8e), rm(1, 0)}},
		&Template{Params: []Param{sreg, gpr16}, Ops: []Op{lit(0x8e), rm(1, 0)}},
		&Template{Params: []Param{sreg, gpr32}, Ops: []Op{lit(0x8e), rm(1, 0)}, MinCPU: CPU386},
		&Template{Params: []Param{sreg, gpr64}, Ops: []Op{lit(0x8e), rm(1, 0)}, MinCPU: CPUX64},
		// register moves
		&Template{Params: []Param{rm8, gpr8}, Ops: []Op{hle(HLEXR), lit(0x88), rm(0, 1)}, Flags: FlagSM},
		&Template{Params: []Param{rm16, gpr16}, Ops: []Op{hle(HLEXR), o16(), lit(0x89), rm(0, 1)}, Flags: FlagSM},
		&Template{Params: []Param{rm32, gpr32}, Ops: []Op{hle(HLEXR), o32(), lit(0x89), rm(0, 1)}, Flags: FlagSM, MinCPU: CPU386},
		&Template{Params: []Param{rm64, gpr64}, Ops: []Op{hle(HLEXR), o64(), lit(0x89), rm(0, 1)}, Flags: FlagSM, MinCPU: CPUX64},
		&Template{Params: []Param{gpr8, rm8}, Ops: []Op{lit(0x8a), rm(1, 0)}, Flags: FlagSM},
		&Template{Params: []Param{gpr16, rm16}, Ops: []Op{o16(), lit(0x8b), rm(1, 0)}, Flags: FlagSM},
		&Template{Params: []Param{gpr32, rm32}, Ops: []Op{o32(), lit(0x8b), rm(1, 0)}, Flags: FlagSM, MinCPU: CPU386},
		&Template{Params: []Param{gpr64, rm64}, Ops: []Op{o64(), lit(0x8b), rm(1, 0)}, Flags: FlagSM, MinCPU: CPUX64},
		// immediate loads
		&Template{Params: []Param{gpr8, imm(0)}, Ops: []Op{rb(0, 0xb0), im(1, W8)}, Flags: FlagSM},
		&Template{Params: []Param{gpr16, imm(0)}, Ops: []Op{o16(), rb(0, 0xb8), im(1, W16)}, Flags: FlagSM},
		&Template{Params: []Param{gpr32, imm(0)}, Ops: []Op{o32(), rb(0, 0xb8), im(1, W32)}, Flags: FlagSM, MinCPU: CPU386},
		// a 64-bit load of an unsigned 32-bit constant zero-extends,
		// and a signed one sign-extends, in fewer bytes
		&Template{Params: []Param{gpr64, immFit(0, operand.FitUDword)}, Ops: []Op{o32(), rb(0, 0xb8), im(1, W32)}, Flags: FlagOpt, MinCPU: CPUX64},
		&Template{Params: []Param{gpr64, immFit(0, operand.FitSDword)}, Ops: []Op{o64(), lit(0xc7), rmd(0, 0), im(1, WSD)}, Flags: FlagOpt, MinCPU: CPUX64},
		&Template{Params: []Param{gpr64, imm(0)}, Ops: []Op{o64(), rb(0, 0xb8), im(1, W64)}, Flags: FlagSM, MinCPU: CPUX64},
		// immediate stores
		&Template{Params: []Param{rm8, imm(0)}, Ops: []Op{hle(HLEXR), lit(0xc6), rmd(0, 0), im(1, W8)}, Flags: FlagSM},
		&Template{Params: []Param{rm16, imm(0)}, Ops: []Op{hle(HLEXR), o16(), lit(0xc7), rmd(0, 0), im(1, W16)}, Flags: FlagSM},
		&Template{Params: []Param{rm32, imm(0)}, Ops: []Op{hle(HLEXR), o32(), lit(0xc7), rmd(0, 0), im(1, W32)}, Flags: FlagSM, MinCPU: CPU386},
		&Template{Params: []Param{rm64, imm(0)}, Ops: []Op{hle(HLEXR), o64(), lit(0xc7), rmd(0, 0), im(1, WSD)}, Flags: FlagSM, MinCPU: CPUX64},
	)
}

func defPushPop() {
	def(insn.PUSH,
		&Template{Params: []Param{gpr16}, Ops: []Op{o16(), rb(0, 0x50)}},
		&Template{Params: []Param{gpr32}, Ops: []Op{o32(), rb(0, 0x50)}, Flags: FlagNoLong, MinCPU: CPU386},
		&Template{Params: []Param{gpr64}, Ops: []Op{op(OpO64NW), rb(0, 0x50)}, MinCPU: CPUX64},
		&Template{Params: []Param{rm16}, Ops: []Op{o16(), lit(0xff), rmd(0, 6)}},
		&Template{Params: []Param{rm32}, Ops: []Op{o32(), lit(0xff), rmd(0, 6)}, Flags: FlagNoLong, MinCPU: CPU386},
		&Template{Params: []Param{rm64}, Ops: []Op{op(OpO64NW), lit(0xff), rmd(0, 6)}, MinCPU: CPUX64},
		&Template{Params: []Param{imm(operand.Size8)}, Ops: []Op{lit(0x6a), im(0, W8S)}, MinCPU: CPU186},
		&Template{Params: []Param{immFit(0, operand.FitSByteDword)}, Ops: []Op{lit(0x6a), im(0, W8S)}, Flags: FlagOpt, MinCPU: CPU186},
		&Template{Params: []Param{imm(operand.Size16)}, Ops: []Op{o16(), lit(0x68), im(0, W16)}, MinCPU: CPU186},
		&Template{Params: []Param{imm(operand.Size32)}, Ops: []Op{o32(), lit(0x68), im(0, W32)}, Flags: FlagNoLong, MinCPU: CPU386},
		&Template{Params: []Param{imm(0)}, Ops: []Op{op(OpO64NW), lit(0x68), im(0, WSD)}, Flags: FlagLong, MinCPU: CPUX64},
		&Template{Params: []Param{imm(0)}, Ops: []Op{o32(), lit(0x68), im(0, W32)}, Flags: FlagNoLong, MinCPU: CPU386},
		&Template{Params: []Param{imm(0)}, Ops: []Op{o16(), lit(0x68), im(0, W16)}},
	)
	def(insn.POP,
		&Template{Params: []Param{gpr16}, Ops: []Op{o16(), rb(0, 0x58)}},
		&Template{Params: []Param{gpr32}, Ops: []Op{o32(), rb(0, 0x58)}, Flags: FlagNoLong, MinCPU: CPU386},
		&Template{Params: []Param{gpr64}, Ops: []Op{op(OpO64NW), rb(0, 0x58)}, MinCPU: CPUX64},
		&Template{Params: []Param{rm16}, Ops: []Op{o16(), lit(0x8f), rmd(0, 0)}},
		&Template{Params: []Param{rm32}, Ops: []Op{o32(), lit(0x8f), rmd(0, 0)}, Flags: FlagNoLong, MinCPU: CPU386},
		&Template{Params: []Param{rm64}, Ops: []Op{op(OpO64NW), lit(0x8f), rmd(0, 0)}, MinCPU: CPUX64},
	)
}

func defTest() {
	def(insn.TEST,
		&Template{Params: []Param{rm8, gpr8}, Ops: []Op{lit(0x84), rm(0, 1)}, Flags: FlagSM},
		&Template{Params: []Param{rm16, gpr16}, Ops: []Op{o16(), lit(0x85), rm(0, 1)}, Flags: FlagSM},
		&Template{Params: []Param{rm32, gpr32}, Ops: []Op{o32(), lit(0x85), rm(0, 1)}, Flags: FlagSM, MinCPU: CPU386},
		&Template{Params: []Param{rm64, gpr64}, Ops: []Op{o64(), lit(0x85), rm(0, 1)}, Flags: FlagSM, MinCPU: CPUX64},
		&Template{Params: []Param{gpr8, mem(0)}, Ops: []Op{lit(0x84), rm(1, 0)}},
		&Template{Params: []Param{gpr16, mem(0)}, Ops: []Op{o16(), lit(0x85), rm(1, 0)}},
		&Template{Params: []Param{gpr32, mem(0)}, Ops: []Op{o32(), lit(0x85), rm(1, 0)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr64, mem(0)}, Ops: []Op{o64(), lit(0x85), rm(1, 0)}, MinCPU: CPUX64},
		&Template{Params: []Param{exact(operand.RegAL), imm(0)}, Ops: []Op{lit(0xa8), im(1, W8)}, Flags: FlagSM},
		&Template{Params: []Param{exact(operand.RegAX), imm(0)}, Ops: []Op{o16(), lit(0xa9), im(1, W16)}, Flags: FlagSM},
		&Template{Params: []Param{exact(operand.RegEAX), imm(0)}, Ops: []Op{o32(), lit(0xa9), im(1, W32)}, Flags: FlagSM, MinCPU: CPU386},
		&Template{Params: []Param{exact(operand.RegRAX), imm(0)}, Ops: []Op{o64(), lit(0xa9), im(1, WSD)}, Flags: FlagSM, MinCPU: CPUX64},
		&Template{Params: []Param{rm8, imm(0)}, Ops: []Op{lit(0xf6), rmd(0, 0), im(1, W8)}, Flags: FlagSM},
		&Template{Params: []Param{rm16, imm(0)}, Ops: []Op{o16(), lit(0xf7), rmd(0, 0), im(1, W16)}, Flags: FlagSM},
		&Template{Params: []Param{rm32, imm(0)}, Ops: []Op{o32(), lit(0xf7), rmd(0, 0), im(1, W32)}, Flags: FlagSM, MinCPU: CPU386},
		&Template{Params: []Param{rm64, imm(0)}, Ops: []Op{o64(), lit(0xf7), rmd(0, 0), im(1, WSD)}, Flags: FlagSM, MinCPU: CPUX64},
	)
}

func defImul() {
	def(insn.IMUL,
		&Template{Params: []Param{rm8}, Ops: []Op{lit(0xf6), rmd(0, 5)}},
		&Template{Params: []Param{rm16}, Ops: []Op{o16(), lit(0xf7), rmd(0, 5)}},
		&Template{Params: []Param{rm32}, Ops: []Op{o32(), lit(0xf7), rmd(0, 5)}, MinCPU: CPU386},
		&Template{Params: []Param{rm64}, Ops: []Op{o64(), lit(0xf7), rmd(0, 5)}, MinCPU: CPUX64},
		&Template{Params: []Param{gpr16, rm16}, Ops: []Op{o16(), lit(0x0f, 0xaf), rm(1, 0)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr32, rm32}, Ops: []Op{o32(), lit(0x0f, 0xaf), rm(1, 0)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr64, rm64}, Ops: []Op{o64(), lit(0x0f, 0xaf), rm(1, 0)}, MinCPU: CPUX64},
		&Template{Params: []Param{gpr16, rm16, imm(operand.Size8)}, Ops: []Op{o16(), lit(0x6b), rm(1, 0), im(2, W8S)}, MinCPU: CPU186},
		&Template{Params: []Param{gpr16, rm16, immFit(0, operand.FitSByteWord)}, Ops: []Op{o16(), lit(0x6b), rm(1, 0), im(2, W8S)}, Flags: FlagOpt, MinCPU: CPU186},
		&Template{Params: []Param{gpr16, rm16, imm(0)}, Ops: []Op{o16(), lit(0x69), rm(1, 0), im(2, W16)}, MinCPU: CPU186},
		&Template{Params: []Param{gpr32, rm32, imm(operand.Size8)}, Ops: []Op{o32(), lit(0x6b), rm(1, 0), im(2, W8S)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr32, rm32, immFit(0, operand.FitSByteDword)}, Ops: []Op{o32(), lit(0x6b), rm(1, 0), im(2, W8S)}, Flags: FlagOpt, MinCPU: CPU386},
		&Template{Params: []Param{gpr32, rm32, imm(0)}, Ops: []Op{o32(), lit(0x69), rm(1, 0), im(2, W32)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr64, rm64, imm(operand.Size8)}, Ops: []Op{o64(), lit(0x6b), rm(1, 0), im(2, W8S)}, MinCPU: CPUX64},
		&Template{Params: []Param{gpr64, rm64, immFit(0, operand.FitSByteDword)}, Ops: []Op{o64(), lit(0x6b), rm(1, 0), im(2, W8S)}, Flags: FlagOpt, MinCPU: CPUX64},
		&Template{Params: []Param{gpr64, rm64, imm(0)}, Ops: []Op{o64(), lit(0x69), rm(1, 0), im(2, WSD)}, MinCPU: CPUX64},
	)
}

func defBranches() {
	def(insn.JMP,
		&Template{Params: []Param{withMods(imm(0), operand.ModShort)}, Ops: []Op{lit(0xeb), rel(0, Rel8)}, Flags: FlagBND},
		&Template{Params: []Param{imm(0)}, Ops: []Op{lit(0xeb), rel(0, Rel8)}, Flags: FlagBND | FlagOpt, Jump: JumpShort},
		&Template{Params: []Param{withMods(imm(0), operand.ModNear)}, Ops: []Op{lit(0xe9), rel(0, RelWD)}, Flags: FlagBND},
		&Template{Params: []Param{imm(0)}, Ops: []Op{lit(0xe9), rel(0, RelWD)}, Flags: FlagBND, Jump: JumpNear},
		&Template{Params: []Param{farImm}, Ops: []Op{lit(0xea), im(0, WWD), seg(0)}, Flags: FlagNoLong},
		&Template{Params: []Param{rm16}, Ops: []Op{o16(), lit(0xff), rmd(0, 4)}, Flags: FlagNoLong},
		&Template{Params: []Param{rm32}, Ops: []Op{o32(), lit(0xff), rmd(0, 4)}, Flags: FlagNoLong, MinCPU: CPU386},
		&Template{Params: []Param{rm64}, Ops: []Op{op(OpO64NW), lit(0xff), rmd(0, 4)}, Flags: FlagLong | FlagBND, MinCPU: CPUX64},
		&Template{Params: []Param{memFar}, Ops: []Op{lit(0xff), rmd(0, 5)}},
		&Template{Params: []Param{mem(0)}, Ops: []Op{lit(0xff), rmd(0, 4)}, Flags: FlagBND},
	)
	def(insn.CALL,
		&Template{Params: []Param{imm(0)}, Ops: []Op{lit(0xe8), rel(0, RelWD)}, Flags: FlagBND},
		&Template{Params: []Param{withMods(imm(0), operand.ModNear)}, Ops: []Op{lit(0xe8), rel(0, RelWD)}, Flags: FlagBND},
		&Template{Params: []Param{farImm}, Ops: []Op{lit(0x9a), im(0, WWD), seg(0)}, Flags: FlagNoLong},
		&Template{Params: []Param{rm16}, Ops: []Op{o16(), lit(0xff), rmd(0, 2)}, Flags: FlagNoLong},
		&Template{Params: []Param{rm32}, Ops: []Op{o32(), lit(0xff), rmd(0, 2)}, Flags: FlagNoLong, MinCPU: CPU386},
		&Template{Params: []Param{rm64}, Ops: []Op{op(OpO64NW), lit(0xff), rmd(0, 2)}, Flags: FlagLong | FlagBND, MinCPU: CPUX64},
		&Template{Params: []Param{memFar}, Ops: []Op{lit(0xff), rmd(0, 3)}},
		&Template{Params: []Param{mem(0)}, Ops: []Op{lit(0xff), rmd(0, 2)}, Flags: FlagBND},
	)
	def(insn.Jcc,
		&Template{Params: []Param{withMods(imm(0), operand.ModShort)}, Ops: []Op{cond(0x70), rel(0, Rel8)}, Flags: FlagBND},
		&Template{Params: []Param{imm(0)}, Ops: []Op{cond(0x70), rel(0, Rel8)}, Flags: FlagBND | FlagOpt, Jump: JumpShort},
		&Template{Params: []Param{withMods(imm(0), operand.ModNear)}, Ops: []Op{lit(0x0f), cond(0x80), rel(0, RelWD)}, Flags: FlagBND, MinCPU: CPU386},
		&Template{Params: []Param{imm(0)}, Ops: []Op{lit(0x0f), cond(0x80), rel(0, RelWD)}, Flags: FlagBND, Jump: JumpNear, MinCPU: CPU386},
		// inverted condition hopping over a plain jump, for targets a
		// Jcc cannot reach on pre-386 processors
		&Template{Params: []Param{imm(0)}, Ops: []Op{cond(0x71), op(OpJmpLen), lit(0xe9), rel(0, RelWD)}, Flags: FlagNoLong},
	)
	def(insn.JCXZ,
		&Template{Params: []Param{imm(0)}, Ops: []Op{op(OpA16), lit(0xe3), rel(0, Rel8)}, Flags: FlagNoLong},
	)
	def(insn.JECXZ,
		&Template{Params: []Param{imm(0)}, Ops: []Op{op(OpA32), lit(0xe3), rel(0, Rel8)}, MinCPU: CPU386},
	)
	def(insn.JRCXZ,
		&Template{Params: []Param{imm(0)}, Ops: []Op{op(OpA64), lit(0xe3), rel(0, Rel8)}, Flags: FlagLong, MinCPU: CPUX64},
	)
	def(insn.RET,
		&Template{Params: nil, Ops: []Op{lit(0xc3)}, Flags: FlagBND},
		&Template{Params: []Param{imm(0)}, Ops: []Op{lit(0xc2), im(0, W16)}, Flags: FlagBND},
	)
}

func defCond() {
	def(insn.SETcc,
		&Template{Params: []Param{rm8}, Ops: []Op{lit(0x0f), cond(0x90), rmd(0, 0)}, MinCPU: CPU386},
	)
	def(insn.CMOVcc,
		&Template{Params: []Param{gpr16, rm16}, Ops: []Op{o16(), lit(0x0f), cond(0x40), rm(1, 0)}, MinCPU: CPUP6},
		&Template{Params: []Param{gpr32, rm32}, Ops: []Op{o32(), lit(0x0f), cond(0x40), rm(1, 0)}, MinCPU: CPUP6},
		&Template{Params: []Param{gpr64, rm64}, Ops: []Op{o64(), lit(0x0f), cond(0x40), rm(1, 0)}, MinCPU: CPUX64},
	)
}

func defExtend() {
	def(insn.MOVSX,
		&Template{Params: []Param{gpr16, rm8}, Ops: []Op{o16(), lit(0x0f, 0xbe), rm(1, 0)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr32, rm8}, Ops: []Op{o32(), lit(0x0f, 0xbe), rm(1, 0)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr64, rm8}, Ops: []Op{o64(), lit(0x0f, 0xbe), rm(1, 0)}, MinCPU: CPUX64},
		&Template{Params: []Param{gpr32, rm16}, Ops: []Op{o32(), lit(0x0f, 0xbf), rm(1, 0)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr64, rm16}, Ops: []Op{o64(), lit(0x0f, 0xbf), rm(1, 0)}, MinCPU: CPUX64},
	)
	def(insn.MOVZX,
		&Template{Params: []Param{gpr16, rm8}, Ops: []Op{o16(), lit(0x0f, 0xb6), rm(1, 0)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr32, rm8}, Ops: []Op{o32(), lit(0x0f, 0xb6), rm(1, 0)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr64, rm8}, Ops: []Op{o64(), lit(0x0f, 0xb6), rm(1, 0)}, MinCPU: CPUX64},
		&Template{Params: []Param{gpr32, rm16}, Ops: []Op{o32(), lit(0x0f, 0xb7), rm(1, 0)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr64, rm16}, Ops: []Op{o64(), lit(0x0f, 0xb7), rm(1, 0)}, MinCPU: CPUX64},
	)
}

func defAtomic() {
	def(insn.XCHG,
		&Template{Params: []Param{exact(operand.RegAX), gpr16}, Ops: []Op{o16(), rb(1, 0x90)}},
		&Template{Params: []Param{gpr16, exact(operand.RegAX)}, Ops: []Op{o16(), rb(0, 0x90)}},
		&Template{Params: []Param{exact(operand.RegEAX), gpr32}, Ops: []Op{o32(), rb(1, 0x90)}, Flags: FlagNoLong, MinCPU: CPU386},
		&Template{Params: []Param{gpr32, exact(operand.RegEAX)}, Ops: []Op{o32(), rb(0, 0x90)}, Flags: FlagNoLong, MinCPU: CPU386},
		&Template{Params: []Param{exact(operand.RegRAX), gpr64}, Ops: []Op{o64(), rb(1, 0x90)}, MinCPU: CPUX64},
		&Template{Params: []Param{gpr64, exact(operand.RegRAX)}, Ops: []Op{o64(), rb(0, 0x90)}, MinCPU: CPUX64},
		&Template{Params: []Param{rm8, gpr8}, Ops: []Op{hle(HLENL), lit(0x86), rm(0, 1)}, Flags: FlagLock | FlagSM},
		&Template{Params: []Param{gpr8, mem(0)}, Ops: []Op{hle(HLENL), lit(0x86), rm(1, 0)}, Flags: FlagLock},
		&Template{Params: []Param{rm16, gpr16}, Ops: []Op{hle(HLENL), o16(), lit(0x87), rm(0, 1)}, Flags: FlagLock | FlagSM},
		&Template{Params: []Param{gpr16, mem(0)}, Ops: []Op{hle(HLENL), o16(), lit(0x87), rm(1, 0)}, Flags: FlagLock},
		&Template{Params: []Param{rm32, gpr32}, Ops: []Op{hle(HLENL), o32(), lit(0x87), rm(0, 1)}, Flags: FlagLock | FlagSM, MinCPU: CPU386},
		&Template{Params: []Param{gpr32, mem(0)}, Ops: []Op{hle(HLENL), o32(), lit(0x87), rm(1, 0)}, Flags: FlagLock, MinCPU: CPU386},
		&Template{Params: []Param{rm64, gpr64}, Ops: []Op{hle(HLENL), o64(), lit(0x87), rm(0, 1)}, Flags: FlagLock | FlagSM, MinCPU: CPUX64},
		&Template{Params: []Param{gpr64, mem(0)}, Ops: []Op{hle(HLENL), o64(), lit(0x87), rm(1, 0)}, Flags: FlagLock, MinCPU: CPUX64},
	)
	def(insn.CMPXCHG,
		&Template{Params: []Param{rm8, gpr8}, Ops: []Op{hle(HLEYes), lit(0x0f, 0xb0), rm(0, 1)}, Flags: FlagLock | FlagSM, MinCPU: CPU486},
		&Template{Params: []Param{rm16, gpr16}, Ops: []Op{hle(HLEYes), o16(), lit(0x0f, 0xb1), rm(0, 1)}, Flags: FlagLock | FlagSM, MinCPU: CPU486},
		&Template{Params: []Param{rm32, gpr32}, Ops: []Op{hle(HLEYes), o32(), lit(0x0f, 0xb1), rm(0, 1)}, Flags: FlagLock | FlagSM, MinCPU: CPU486},
		&Template{Params: []Param{rm64, gpr64}, Ops: []Op{hle(HLEYes), o64(), lit(0x0f, 0xb1), rm(0, 1)}, Flags: FlagLock | FlagSM, MinCPU: CPUX64},
	)
	def(insn.XADD,
		&Template{Params: []Param{rm8, gpr8}, Ops: []Op{hle(HLEYes), lit(0x0f, 0xc0), rm(0, 1)}, Flags: FlagLock | FlagSM, MinCPU: CPU486},
		&Template{Params: []Param{rm16, gpr16}, Ops: []Op{hle(HLEYes), o16(), lit(0x0f, 0xc1), rm(0, 1)}, Flags: FlagLock | FlagSM, MinCPU: CPU486},
		&Template{Params: []Param{rm32, gpr32}, Ops: []Op{hle(HLEYes), o32(), lit(0x0f, 0xc1), rm(0, 1)}, Flags: FlagLock | FlagSM, MinCPU: CPU486},
		&Template{Params: []Param{rm64, gpr64}, Ops: []Op{hle(HLEYes), o64(), lit(0x0f, 0xc1), rm(0, 1)}, Flags: FlagLock | FlagSM, MinCPU: CPUX64},
	)
}

func defMisc() {
	def(insn.LEA,
		&Template{Params: []Param{gpr16, mem(0)}, Ops: []Op{o16(), lit(0x8d), rm(1, 0)}},
		&Template{Params: []Param{gpr32, mem(0)}, Ops: []Op{o32(), lit(0x8d), rm(1, 0)}, MinCPU: CPU386},
		&Template{Params: []Param{gpr64, mem(0)}, Ops: []Op{o64(), lit(0x8d), rm(1, 0)}, MinCPU: CPUX64},
	)
	def(insn.NOP,
		&Template{Params: nil, Ops: []Op{lit(0x90)}},
		&Template{Params: []Param{rm16}, Ops: []Op{o16(), lit(0x0f, 0x1f), rmd(0, 0)}, MinCPU: CPUP6},
		&Template{Params: []Param{rm32}, Ops: []Op{o32(), lit(0x0f, 0x1f), rmd(0, 0)}, MinCPU: CPUP6},
		&Template{Params: []Param{rm64}, Ops: []Op{o64(), lit(0x0f, 0x1f), rmd(0, 0)}, MinCPU: CPUX64},
	)
	def(insn.HLT, &Template{Params: nil, Ops: []Op{lit(0xf4)}})
	def(insn.INT3, &Template{Params: nil, Ops: []Op{lit(0xcc)}})
	def(insn.INT, &Template{Params: []Param{imm(0)}, Ops: []Op{lit(0xcd), im(0, W8U)}})
	def(insn.CPUID, &Template{Params: nil, Ops: []Op{lit(0x0f, 0xa2)}, MinCPU: CPUPentium})
	def(insn.SYSCALL, &Template{Params: nil, Ops: []Op{lit(0x0f, 0x05)}, Flags: FlagLong, MinCPU: CPUX64})
	def(insn.CBW, &Template{Params: nil, Ops: []Op{o16(), lit(0x98)}})
	def(insn.CWDE, &Template{Params: nil, Ops: []Op{o32(), lit(0x98)}, MinCPU: CPU386})
	def(insn.CDQE, &Template{Params: nil, Ops: []Op{o64(), lit(0x98)}, Flags: FlagLong, MinCPU: CPUX64})
	def(insn.MOVSB, &Template{Params: nil, Ops: []Op{lit(0xa4)}})
	def(insn.CMPSB, &Template{Params: nil, Ops: []Op{lit(0xa6)}})
	def(insn.STOSB, &Template{Params: nil, Ops: []Op{lit(0xaa)}})
	def(insn.LODSB, &Template{Params: nil, Ops: []Op{lit(0xac)}})
	def(insn.SCASB, &Template{Params: nil, Ops: []Op{lit(0xae)}})
}

func defFPU() {
	def(insn.FADD,
		&Template{Params: []Param{mem(operand.Size32)}, Ops: []Op{lit(0xd8), rmd(0, 0)}},
		&Template{Params: []Param{mem(operand.Size64)}, Ops: []Op{lit(0xdc), rmd(0, 0)}},
		&Template{Params: []Param{fpureg}, Ops: []Op{lit(0xd8), rb(0, 0xc0)}},
		&Template{Params: []Param{fpuTo}, Ops: []Op{lit(0xdc), rb(0, 0xc0)}},
	)
	def(insn.FLD,
		&Template{Params: []Param{mem(operand.Size32)}, Ops: []Op{lit(0xd9), rmd(0, 0)}},
		&Template{Params: []Param{mem(operand.Size64)}, Ops: []Op{lit(0xdd), rmd(0, 0)}},
		&Template{Params: []Param{mem(operand.Size80)}, Ops: []Op{lit(0xdb), rmd(0, 5)}},
		&Template{Params: []Param{fpureg}, Ops: []Op{lit(0xd9), rb(0, 0xc0)}},
	)
	def(insn.FSTP,
		&Template{Params: []Param{mem(operand.Size32)}, Ops: []Op{lit(0xd9), rmd(0, 3)}},
		&Template{Params: []Param{mem(operand.Size64)}, Ops: []Op{lit(0xdd), rmd(0, 3)}},
		&Template{Params: []Param{mem(operand.Size80)}, Ops: []Op{lit(0xdb), rmd(0, 7)}},
		&Template{Params: []Param{fpureg}, Ops: []Op{lit(0xdd), rb(0, 0xd8)}},
	)
	def(insn.FINIT, &Template{Params: nil, Ops: []Op{op(OpWait), lit(0xdb, 0xe3)}})
	def(insn.FNINIT, &Template{Params: nil, Ops: []Op{lit(0xdb, 0xe3)}})
}

func defSSE() {
	def(insn.ADDPS,
		&Template{Params: []Param{xmmreg, xmmrm128}, Ops: []Op{op(OpNP), lit(0x0f, 0x58), rm(1, 0)}, MinCPU: CPUKatmai},
	)
	def(insn.ADDPD,
		&Template{Params: []Param{xmmreg, xmmrm128}, Ops: []Op{op(Op66SSE), lit(0x0f, 0x58), rm(1, 0)}, MinCPU: CPUWillamette},
	)
	def(insn.ADDSS,
		&Template{Params: []Param{xmmreg, xmmrm32}, Ops: []Op{op(OpF3Ext), lit(0x0f, 0x58), rm(1, 0)}, MinCPU: CPUKatmai},
	)
	def(insn.ADDSD,
		&Template{Params: []Param{xmmreg, xmmrm64}, Ops: []Op{op(OpF2Ext), lit(0x0f, 0x58), rm(1, 0)}, MinCPU: CPUWillamette},
	)
	def(insn.MOVAPS,
		&Template{Params: []Param{xmmreg, xmmrm128}, Ops: []Op{op(OpNP), lit(0x0f, 0x28), rm(1, 0)}, MinCPU: CPUKatmai},
		&Template{Params: []Param{xmmrm128, xmmreg}, Ops: []Op{op(OpNP), lit(0x0f, 0x29), rm(0, 1)}, MinCPU: CPUKatmai},
	)
	def(insn.MOVUPS,
		&Template{Params: []Param{xmmreg, xmmrm128}, Ops: []Op{op(OpNP), lit(0x0f, 0x10), rm(1, 0)}, MinCPU: CPUKatmai},
		&Template{Params: []Param{xmmrm128, xmmreg}, Ops: []Op{op(OpNP), lit(0x0f, 0x11), rm(0, 1)}, MinCPU: CPUKatmai},
	)
}

// defVAdd defines VADDPS/VADDPD: wlpBase carries the pp selector, w the
// EVEX element width bit, brs the broadcast element size.
func defVAdd(m insn.Mnemonic, pp byte, w byte, brs operand.Size) {
	brElem := DecoFlags{Broadcast: true, BrSize: brs}
	brElemER := DecoFlags{Broadcast: true, BrSize: brs, ER: true, SAE: true}
	def(m,
		&Template{
			Params: []Param{xmmreg, xmmreg, xmmrm128},
			Ops:    []Op{vex(1, VexM0F, VexWIG|VexL128|pp), lit(0x58), rm(2, 0)},
			MinCPU: CPUAVX,
		},
		&Template{
			Params: []Param{ymmreg, ymmreg, ymmrm256},
			Ops:    []Op{vex(1, VexM0F, VexWIG|VexL256|pp), lit(0x58), rm(2, 0)},
			MinCPU: CPUAVX,
		},
		&Template{
			Params: []Param{withDeco(xmmreg, maskZ), xmmreg, withDeco(xmmrm128, brElem)},
			Ops:    []Op{evex(1, EvexM0F, w|VexL128|pp, FV), lit(0x58), rm(2, 0)},
			MinCPU: CPUAVX512,
		},
		&Template{
			Params: []Param{withDeco(ymmreg, maskZ), ymmreg, withDeco(ymmrm256, brElem)},
			Ops:    []Op{evex(1, EvexM0F, w|VexL256|pp, FV), lit(0x58), rm(2, 0)},
			MinCPU: CPUAVX512,
		},
		&Template{
			Params: []Param{withDeco(zmmreg, maskZ), zmmreg, withDeco(zmmrm512, brElemER)},
			Ops:    []Op{evex(1, EvexM0F, w|VexL512|pp, FV), lit(0x58), rm(2, 0)},
			MinCPU: CPUAVX512,
		},
	)
}

func defAVX() {
	defVAdd(insn.VADDPS, VexP0, VexW0, operand.Size32)
	defVAdd(insn.VADDPD, VexP66, VexW1, operand.Size64)

	def(insn.VBLENDVPS,
		&Template{
			Params: []Param{xmmreg, xmmreg, xmmrm128, xmmreg},
			Ops:    []Op{vex(1, VexM0F3A, VexW0|VexL128|VexP66), lit(0x4a), rm(2, 0), is4(3)},
			MinCPU: CPUAVX,
		},
		&Template{
			Params: []Param{ymmreg, ymmreg, ymmrm256, ymmreg},
			Ops:    []Op{vex(1, VexM0F3A, VexW0|VexL256|VexP66), lit(0x4a), rm(2, 0), is4(3)},
			MinCPU: CPUAVX,
		},
	)

	def(insn.VGATHERDPS,
		&Template{
			Params: []Param{xmmreg, vsibMem(operand.ClassXMM), xmmreg},
			Ops:    []Op{vex(2, VexM0F38, VexW0|VexL128|VexP66), lit(0x92), rm(1, 0), op(OpVSibX)},
			MinCPU: CPUAVX2,
		},
		&Template{
			Params: []Param{ymmreg, vsibMem(operand.ClassYMM), ymmreg},
			Ops:    []Op{vex(2, VexM0F38, VexW0|VexL256|VexP66), lit(0x92), rm(1, 0), op(OpVSibY)},
			MinCPU: CPUAVX2,
		},
		&Template{
			Params: []Param{needMask(xmmreg), vsibMem(operand.ClassXMM)},
			Ops:    []Op{evex(-1, Evex0F38, VexW0|VexL128|VexP66, T1S), lit(0x92), rm(1, 0), op(OpVSibX)},
			MinCPU: CPUAVX512,
		},
		&Template{
			Params: []Param{needMask(ymmreg), vsibMem(operand.ClassYMM)},
			Ops:    []Op{evex(-1, Evex0F38, VexW0|VexL256|VexP66, T1S), lit(0x92), rm(1, 0), op(OpVSibY)},
			MinCPU: CPUAVX512,
		},
		&Template{
			Params: []Param{needMask(zmmreg), vsibMem(operand.ClassZMM)},
			Ops:    []Op{evex(-1, Evex0F38, VexW0|VexL512|VexP66, T1S), lit(0x92), rm(1, 0), op(OpVSibZ)},
			MinCPU: CPUAVX512,
		},
	)

	def(insn.KMOVW,
		&Template{Params: []Param{kreg, rmp(operand.ClassMask, operand.Size16)}, Ops: []Op{vexNDS(VexM0F, VexW0|VexL128|VexP0), lit(0x90), rm(1, 0)}, MinCPU: CPUAVX512},
		&Template{Params: []Param{mem(operand.Size16), kreg}, Ops: []Op{vexNDS(VexM0F, VexW0|VexL128|VexP0), lit(0x91), rm(0, 1)}, MinCPU: CPUAVX512},
		&Template{Params: []Param{kreg, gpr32}, Ops: []Op{vexNDS(VexM0F, VexW0|VexL128|VexP0), lit(0x92), rm(1, 0)}, MinCPU: CPUAVX512},
		&Template{Params: []Param{gpr32, kreg}, Ops: []Op{vexNDS(VexM0F, VexW0|VexL128|VexP0), lit(0x93), rm(1, 0)}, MinCPU: CPUAVX512},
	)
}

func defMPX() {
	def(insn.BNDMK,
		&Template{Params: []Param{bndreg, mem(0)}, Ops: []Op{op(OpF3Ext), lit(0x0f, 0x1b), rm(1, 0)}, Flags: FlagMIB, MinCPU: CPUMPX},
	)
	def(insn.BNDSTX,
		&Template{Params: []Param{mem(0), bndreg}, Ops: []Op{lit(0x0f, 0x1b), rm(0, 1)}, Flags: FlagMIB, MinCPU: CPUMPX},
	)
}

func defReserve() {
	for _, m := range []insn.Mnemonic{
		insn.RESB, insn.RESW, insn.RESD, insn.RESQ,
		insn.REST, insn.RESO, insn.RESY, insn.RESZ,
	} {
		def(m, &Template{Params: []Param{imm(0)}, Ops: []Op{op(OpReserve)}})
	}
}

func vsibMem(c operand.Class) Param {
	return Param{Kind: PMem, VSIB: c}
}

func needMask(p Param) Param {
	p.Deco = masked
	p.NeedMask = true
	return p
}

func init() {
	defArith(insn.ADD, 0x00, 0)
	defArith(insn.OR, 0x08, 1)
	defArith(insn.ADC, 0x10, 2)
	defArith(insn.SBB, 0x18, 3)
	defArith(insn.AND, 0x20, 4)
	defArith(insn.SUB, 0x28, 5)
	defArith(insn.XOR, 0x30, 6)
	defArith(insn.CMP, 0x38, 7)
	// cmp shares the ALU encodings but writes no operand, so it takes
	// neither lock nor an hle prefix
	for _, t := range Table[insn.CMP] {
		t.Flags = t.Flags&^FlagLock | FlagNoHLE
	}

	defShift(insn.ROL, 0)
	defShift(insn.ROR, 1)
	defShift(insn.SHL, 4)
	defShift(insn.SHR, 5)
	defShift(insn.SAR, 7)

	defGroup3(insn.NOT, 2, true)
	defGroup3(insn.NEG, 3, true)
	defGroup3(insn.MUL, 4, false)
	defGroup3(insn.DIV, 6, false)
	defGroup3(insn.IDIV, 7, false)

	defIncDec(insn.INC, 0x40, 0)
	defIncDec(insn.DEC, 0x48, 1)

	defMov()
	defPushPop()
	defTest()
	defImul()
	defBranches()
	defCond()
	defExtend()
	defAtomic()
	defMisc()
	defFPU()
	defSSE()
	defAVX()
	defMPX()
	defReserve()
}
