// Package operand models the typed operands an instruction carries after
// parsing: registers, memory references, immediates and far pointers,
// together with the AVX-512 decorators that may attach to them.
package operand

import "fmt"

// Size is an operand width in bits. The zero value means "unspecified".
type Size uint16

const (
	Size8   Size = 8
	Size16  Size = 16
	Size32  Size = 32
	Size64  Size = 64
	Size80  Size = 80
	Size128 Size = 128
	Size256 Size = 256
	Size512 Size = 512
)

func (s Size) String() string {
	switch s {
	case Size8:
		return "byte"
	case Size16:
		return "word"
	case Size32:
		return "dword"
	case Size64:
		return "qword"
	case Size80:
		return "tword"
	case Size128:
		return "oword"
	case Size256:
		return "yword"
	case Size512:
		return "zword"
	default:
		return "???"
	}
}

// Bytes returns the width in bytes.
func (s Size) Bytes() int { return int(s) / 8 }

// Mod is a set of syntactic modifiers written before an operand, such as
// "short" or "strict".
type Mod uint8

const (
	ModTo Mod = 1 << iota
	ModColon
	ModShort
	ModNear
	ModFar
	ModStrict
)

// Has reports whether all modifiers in mask are present.
func (m Mod) Has(mask Mod) bool { return m&mask == mask }

// RoundMode is an EVEX embedded-rounding mode.
type RoundMode uint8

const (
	RoundNearest RoundMode = iota // {rn-sae}
	RoundDown                     // {rd-sae}
	RoundUp                       // {ru-sae}
	RoundZero                     // {rz-sae}
)

// Decorators carries the EVEX operand decorators: {k}, {z}, {1toN},
// {er} and {sae}.
type Decorators struct {
	// Mask is the opmask register (k1..k7), or RegNone.
	Mask Reg
	// Zeroing is the {z} flag; requires Mask.
	Zeroing bool
	// Broadcast is the N of a {1toN} memory decorator; zero means none.
	Broadcast uint8
	// BrSize is the broadcast element size, filled in during matching.
	BrSize Size
	// ER enables embedded rounding with the mode in Round.
	ER    bool
	Round RoundMode
	// SAE is the {sae} suppress-all-exceptions flag.
	SAE bool
}

// Any reports whether any decorator is present.
func (d Decorators) Any() bool {
	return d.Mask != RegNone || d.Zeroing || d.Broadcast != 0 || d.ER || d.SAE
}

// NoSeg is the segment value of an absolute (non-relocated) quantity.
const NoSeg int32 = -1

// SymRef attaches relocation information to a displacement or immediate
// whose value is not a plain compile-time constant.
type SymRef struct {
	// Segment is the output segment the symbol lives in.
	Segment int32
	// WRT is the segment base the value is taken relative to, or NoSeg.
	WRT int32
	// Forward marks a forward reference.
	Forward bool
	// Unknown marks a value with no usable estimate yet (pass 1).
	Unknown bool
	// Relative marks a self-relative expression such as [foo - $].
	Relative bool
}

// segmentOf returns the symbol segment, NoSeg for nil.
func segmentOf(s *SymRef) int32 {
	if s == nil {
		return NoSeg
	}
	return s.Segment
}

// wrtOf returns the WRT segment, NoSeg for nil.
func wrtOf(s *SymRef) int32 {
	if s == nil {
		return NoSeg
	}
	return s.WRT
}

// EAFlags are special effective-address constraints carried by a memory
// operand.
type EAFlags uint8

const (
	// EAByteOffs forces a byte-sized displacement.
	EAByteOffs EAFlags = 1 << iota
	// EAWordOffs forces a word/dword displacement.
	EAWordOffs
	// EATimesTwo records that [reg*2] was written as a true scale,
	// not as reg+reg.
	EATimesTwo
	// EARel requests IP-relative addressing.
	EARel
	// EAAbs requests absolute (non-IP-relative) addressing.
	EAAbs
	// EAMIB marks a bound-instruction split base/index operand.
	EAMIB
)

// HintType is the parser's advice on which register should become the
// encoded base.
type HintType uint8

const (
	HintNone HintType = iota
	// HintMakeBase asks for the hinted register to be the base.
	HintMakeBase
	// HintNotBase asks for the hinted register not to be the base.
	HintNotBase
	// HintSummed records that base and index were summed into the index.
	HintSummed
)

// Kind discriminates the operand variants.
type Kind uint8

const (
	KindRegister Kind = iota + 1
	KindMemory
	KindImmediate
	KindFarPointer
)

// Operand is one instruction operand: exactly one of Register, Memory,
// Immediate or FarPointer.
type Operand interface {
	Kind() Kind
	// OpSize is the operand's explicit or intrinsic width, zero if
	// unspecified.
	OpSize() Size
	// Modifiers returns the syntactic modifiers present on the operand.
	Modifiers() Mod
	// Deco returns the EVEX decorators attached to the operand.
	Deco() Decorators
}

// Register is a direct register operand.
type Register struct {
	Reg Reg
	// SetSize is the register-set width for AVX-512 multi-register
	// operands (a power of two); zero for a single register.
	SetSize uint8
	Mods    Mod
	D       Decorators
}

func (r *Register) Kind() Kind       { return KindRegister }
func (r *Register) OpSize() Size     { return r.Reg.Size() }
func (r *Register) Modifiers() Mod   { return r.Mods }
func (r *Register) Deco() Decorators { return r.D }
func (r *Register) String() string   { return r.Reg.String() }

// Memory is a memory reference operand.
type Memory struct {
	// Base and Index are RegNone when absent; Scale is meaningless
	// without Index.
	Base, Index Reg
	Scale       int
	Disp        int64
	// DispSize is an explicit displacement width keyword (16/32/64),
	// zero for default.
	DispSize Size
	// Segment is a segment-override register, or RegNone.
	Segment Reg
	// Size is the operand-size keyword (byte/word/...), zero if absent.
	Size Size
	// Sym is non-nil when the displacement needs relocation.
	Sym      *SymRef
	Flags    EAFlags
	HintBase Reg
	Hint     HintType
	Mods     Mod
	D        Decorators
}

func (m *Memory) Kind() Kind       { return KindMemory }
func (m *Memory) OpSize() Size     { return m.Size }
func (m *Memory) Modifiers() Mod   { return m.Mods }
func (m *Memory) Deco() Decorators { return m.D }

// Absolute reports whether the displacement is a plain constant needing
// no relocation.
func (m *Memory) Absolute() bool {
	return segmentOf(m.Sym) == NoSeg && wrtOf(m.Sym) == NoSeg &&
		(m.Sym == nil || !m.Sym.Relative)
}

// SymSegment returns the displacement's symbol segment, NoSeg if constant.
func (m *Memory) SymSegment() int32 { return segmentOf(m.Sym) }

// Unknown reports whether the displacement value is still unknown.
func (m *Memory) Unknown() bool { return m.Sym != nil && m.Sym.Unknown }

func (m *Memory) String() string {
	s := "["
	if m.Base != RegNone {
		s += m.Base.String()
	}
	if m.Index != RegNone {
		if m.Base != RegNone {
			s += "+"
		}
		s += fmt.Sprintf("%s*%d", m.Index, m.Scale)
	}
	if m.Disp != 0 || (m.Base == RegNone && m.Index == RegNone) {
		s += fmt.Sprintf("%+#x", m.Disp)
	}
	return s + "]"
}

// Fit records which narrow-immediate template classes a constant value
// qualifies for. The parser fills it in when optimization is enabled.
type Fit uint8

const (
	// FitSByteWord: fits a signed byte extended to 16 bits.
	FitSByteWord Fit = 1 << iota
	// FitSByteDword: fits a signed byte extended to 32 bits.
	FitSByteDword
	// FitSDword: fits a signed dword extended to 64 bits.
	FitSDword
	// FitUDword: fits an unsigned dword zero-extended to 64 bits.
	FitUDword
)

// FitsOf classifies a constant for narrow-immediate template matching.
func FitsOf(v int64) Fit {
	var f Fit
	if v >= -128 && v <= 127 {
		f |= FitSByteWord | FitSByteDword
	}
	if int64(int32(v)) == v {
		f |= FitSDword
	}
	if uint64(v)>>32 == 0 {
		f |= FitUDword
	}
	return f
}

// Immediate is a constant or symbolic value operand; branch targets are
// immediates whose Sym identifies the target segment.
type Immediate struct {
	Value int64
	// Size is an explicit size keyword, zero if absent.
	Size Size
	// Fits holds the narrow-immediate classes Value qualifies for; left
	// zero when optimization is off.
	Fits Fit
	Sym  *SymRef
	Mods Mod
	D    Decorators
}

func (i *Immediate) Kind() Kind       { return KindImmediate }
func (i *Immediate) OpSize() Size     { return i.Size }
func (i *Immediate) Modifiers() Mod   { return i.Mods }
func (i *Immediate) Deco() Decorators { return i.D }

// Absolute reports whether the value is a plain constant.
func (i *Immediate) Absolute() bool {
	return segmentOf(i.Sym) == NoSeg && wrtOf(i.Sym) == NoSeg &&
		(i.Sym == nil || !i.Sym.Relative)
}

// SymSegment returns the value's symbol segment, NoSeg if constant.
func (i *Immediate) SymSegment() int32 { return segmentOf(i.Sym) }

// Unknown reports whether the value is still unknown.
func (i *Immediate) Unknown() bool { return i.Sym != nil && i.Sym.Unknown }

// FarPointer is a seg:offset immediate pair, as in "jmp 0x1234:0x5678".
type FarPointer struct {
	Segment uint16
	Offset  int64
	// Size is the offset width keyword, zero if absent.
	Size Size
	Mods Mod
}

func (f *FarPointer) Kind() Kind       { return KindFarPointer }
func (f *FarPointer) OpSize() Size     { return f.Size }
func (f *FarPointer) Modifiers() Mod   { return f.Mods | ModColon }
func (f *FarPointer) Deco() Decorators { return Decorators{} }
