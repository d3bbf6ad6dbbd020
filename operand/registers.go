package operand

// Reg identifies one concrete machine register.
type Reg uint16

const (
	RegNone Reg = iota

	// 8-bit general purpose registers.
	RegAL
	RegCL
	RegDL
	RegBL
	RegAH
	RegCH
	RegDH
	RegBH
	RegSPL
	RegBPL
	RegSIL
	RegDIL
	RegR8B
	RegR9B
	RegR10B
	RegR11B
	RegR12B
	RegR13B
	RegR14B
	RegR15B

	// 16-bit general purpose registers.
	RegAX
	RegCX
	RegDX
	RegBX
	RegSP
	RegBP
	RegSI
	RegDI
	RegR8W
	RegR9W
	RegR10W
	RegR11W
	RegR12W
	RegR13W
	RegR14W
	RegR15W

	// 32-bit general purpose registers.
	RegEAX
	RegECX
	RegEDX
	RegEBX
	RegESP
	RegEBP
	RegESI
	RegEDI
	RegR8D
	RegR9D
	RegR10D
	RegR11D
	RegR12D
	RegR13D
	RegR14D
	RegR15D

	// 64-bit general purpose registers.
	RegRAX
	RegRCX
	RegRDX
	RegRBX
	RegRSP
	RegRBP
	RegRSI
	RegRDI
	RegR8
	RegR9
	RegR10
	RegR11
	RegR12
	RegR13
	RegR14
	RegR15

	// Segment registers.
	RegES
	RegCS
	RegSS
	RegDS
	RegFS
	RegGS
	RegSegR6
	RegSegR7

	// x87 stack registers.
	RegST0
	RegST1
	RegST2
	RegST3
	RegST4
	RegST5
	RegST6
	RegST7

	// MMX registers.
	RegMM0
	RegMM1
	RegMM2
	RegMM3
	RegMM4
	RegMM5
	RegMM6
	RegMM7

	// XMM registers.
	RegXMM0
	RegXMM31 = RegXMM0 + 31

	// YMM registers.
	RegYMM0  = RegXMM31 + 1
	RegYMM31 = RegYMM0 + 31

	// ZMM registers.
	RegZMM0  = RegYMM31 + 1
	RegZMM31 = RegZMM0 + 31

	// Opmask registers.
	RegK0 = RegZMM31 + 1
	RegK7 = RegK0 + 7

	// MPX bound registers.
	RegBND0 = RegK7 + 1
	RegBND3 = RegBND0 + 3

	regEnumLimit = RegBND3 + 1
)

// Class is the architectural register file a register belongs to.
type Class uint8

const (
	ClassNone Class = iota
	ClassGPR
	ClassSegment
	ClassFPU
	ClassMMX
	ClassXMM
	ClassYMM
	ClassZMM
	ClassMask
	ClassBound
)

func (c Class) String() string {
	switch c {
	case ClassGPR:
		return "gpr"
	case ClassSegment:
		return "sreg"
	case ClassFPU:
		return "fpureg"
	case ClassMMX:
		return "mmxreg"
	case ClassXMM:
		return "xmmreg"
	case ClassYMM:
		return "ymmreg"
	case ClassZMM:
		return "zmmreg"
	case ClassMask:
		return "kreg"
	case ClassBound:
		return "bndreg"
	default:
		return "none"
	}
}

type regInfo struct {
	name  string
	class Class
	size  Size
	// val is the hardware register number (0..31); the low three bits go
	// into ModRM/SIB, bit 3 into REX.B/X/R, bit 4 into the EVEX extensions.
	val int8
	// high marks AH/CH/DH/BH, which cannot be encoded alongside a REX prefix.
	high bool
}

var regTable [regEnumLimit]regInfo

func defReg(r Reg, name string, class Class, size Size, val int8) {
	regTable[r] = regInfo{name: name, class: class, size: size, val: val}
}

func init() {
	names8 := []string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh",
		"spl", "bpl", "sil", "dil",
		"r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"}
	vals8 := []int8{0, 1, 2, 3, 4, 5, 6, 7, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	for i, n := range names8 {
		defReg(RegAL+Reg(i), n, ClassGPR, Size8, vals8[i])
	}
	regTable[RegAH].high = true
	regTable[RegCH].high = true
	regTable[RegDH].high = true
	regTable[RegBH].high = true

	names16 := []string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
	names32 := []string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi"}
	names64 := []string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi"}
	for i := 0; i < 8; i++ {
		defReg(RegAX+Reg(i), names16[i], ClassGPR, Size16, int8(i))
		defReg(RegEAX+Reg(i), names32[i], ClassGPR, Size32, int8(i))
		defReg(RegRAX+Reg(i), names64[i], ClassGPR, Size64, int8(i))
	}
	for i := 8; i < 16; i++ {
		n := "r" + itoa(i)
		defReg(RegAX+Reg(i), n+"w", ClassGPR, Size16, int8(i))
		defReg(RegEAX+Reg(i), n+"d", ClassGPR, Size32, int8(i))
		defReg(RegRAX+Reg(i), n, ClassGPR, Size64, int8(i))
	}

	segNames := []string{"es", "cs", "ss", "ds", "fs", "gs", "segr6", "segr7"}
	for i, n := range segNames {
		defReg(RegES+Reg(i), n, ClassSegment, Size16, int8(i))
	}

	for i := 0; i < 8; i++ {
		defReg(RegST0+Reg(i), "st"+itoa(i), ClassFPU, Size80, int8(i))
		defReg(RegMM0+Reg(i), "mm"+itoa(i), ClassMMX, Size64, int8(i))
		defReg(RegK0+Reg(i), "k"+itoa(i), ClassMask, Size64, int8(i))
	}
	for i := 0; i < 32; i++ {
		defReg(RegXMM0+Reg(i), "xmm"+itoa(i), ClassXMM, Size128, int8(i))
		defReg(RegYMM0+Reg(i), "ymm"+itoa(i), ClassYMM, Size256, int8(i))
		defReg(RegZMM0+Reg(i), "zmm"+itoa(i), ClassZMM, Size512, int8(i))
	}
	for i := 0; i < 4; i++ {
		defReg(RegBND0+Reg(i), "bnd"+itoa(i), ClassBound, Size128, int8(i))
	}
}

func itoa(i int) string {
	if i < 10 {
		return string([]byte{byte('0' + i)})
	}
	return string([]byte{byte('0' + i/10), byte('0' + i%10)})
}

// IsValid reports whether r names a concrete register.
func (r Reg) IsValid() bool { return r > RegNone && r < regEnumLimit }

func (r Reg) String() string {
	if !r.IsValid() {
		return "none"
	}
	return regTable[r].name
}

// Class returns the register file r belongs to.
func (r Reg) Class() Class {
	if !r.IsValid() {
		return ClassNone
	}
	return regTable[r].class
}

// Size returns the register width.
func (r Reg) Size() Size {
	if !r.IsValid() {
		return 0
	}
	return regTable[r].size
}

// Val returns the hardware register number, or -1 for RegNone.
func (r Reg) Val() int8 {
	if !r.IsValid() {
		return -1
	}
	return regTable[r].val
}

// IsHigh reports whether r is one of AH/CH/DH/BH.
func (r Reg) IsHigh() bool { return r.IsValid() && regTable[r].high }

// NeedsRexP reports whether r is SPL/BPL/SIL/DIL, which require a REX
// prefix to be encodable at all.
func (r Reg) NeedsRexP() bool {
	return r.IsValid() && regTable[r].class == ClassGPR && regTable[r].size == Size8 &&
		!regTable[r].high && regTable[r].val >= 4 && regTable[r].val <= 7
}

// IsVector reports whether r is an XMM/YMM/ZMM register.
func (r Reg) IsVector() bool {
	switch r.Class() {
	case ClassXMM, ClassYMM, ClassZMM:
		return true
	}
	return false
}

// LookupReg resolves a register by its assembly name, such as "eax" or
// "zmm17". It returns RegNone for unknown names.
func LookupReg(name string) Reg {
	for r := Reg(1); r < regEnumLimit; r++ {
		if regTable[r].name == name {
			return r
		}
	}
	return RegNone
}
