package encoder

import (
	"fmt"

	"github.com/asmforge/x86enc/insn"
	"github.com/asmforge/x86enc/operand"
	"github.com/asmforge/x86enc/template"
)

// matchResult grades how well a template fits an instruction. Higher
// values are closer fits; the best failure decides the error message.
type matchResult int

const (
	matchInvalOp matchResult = iota
	matchOpSizeMissing
	matchOpSizeMismatch
	matchBrNotHere
	matchBrNumMismatch
	matchMaskNotHere
	matchDecoNotHere
	matchBadCPU
	matchBadMode
	matchBadHLE
	matchEncMismatch
	matchBadBnd
	matchBadRepne
	matchRegSetSize
	matchRegSet
	// matchJump is a hit on a short-branch template still subject to a
	// range test.
	matchJump
	matchGood
)

func matchError(m matchResult, bits int) error {
	switch m {
	case matchOpSizeMissing:
		return fmt.Errorf("operation size not specified")
	case matchOpSizeMismatch:
		return fmt.Errorf("mismatch in operand sizes")
	case matchBrNotHere:
		return fmt.Errorf("broadcast not permitted on this operand")
	case matchBrNumMismatch:
		return fmt.Errorf("mismatch in the number of broadcasting elements")
	case matchMaskNotHere:
		return fmt.Errorf("mask not permitted on this operand")
	case matchDecoNotHere:
		return fmt.Errorf("decorator not permitted on this operand")
	case matchBadCPU:
		return fmt.Errorf("no instruction for this cpu level")
	case matchBadMode:
		return fmt.Errorf("instruction not supported in %d-bit mode", bits)
	case matchBadHLE:
		return fmt.Errorf("invalid hle prefix")
	case matchEncMismatch:
		return fmt.Errorf("specific encoding scheme not available")
	case matchBadBnd:
		return fmt.Errorf("bnd prefix is not allowed")
	case matchBadRepne:
		return fmt.Errorf("repne/repnz prefix is not allowed")
	case matchRegSetSize:
		return fmt.Errorf("invalid register set size")
	case matchRegSet:
		return fmt.Errorf("register set not valid")
	default:
		return fmt.Errorf("invalid combination of opcode and operands")
	}
}

// sizeBit maps an operand size to a bit for fuzzy-size accumulation.
func sizeBit(s operand.Size) uint16 {
	switch s {
	case operand.Size8:
		return 1 << 0
	case operand.Size16:
		return 1 << 1
	case operand.Size32:
		return 1 << 2
	case operand.Size64:
		return 1 << 3
	case operand.Size80:
		return 1 << 4
	case operand.Size128:
		return 1 << 5
	case operand.Size256:
		return 1 << 6
	case operand.Size512:
		return 1 << 7
	}
	return 0
}

func bitSize(b uint16) operand.Size {
	sizes := []operand.Size{
		operand.Size8, operand.Size16, operand.Size32, operand.Size64,
		operand.Size80, operand.Size128, operand.Size256, operand.Size512,
	}
	for i, s := range sizes {
		if b == 1<<uint(i) {
			return s
		}
	}
	return 0
}

// findMatch scans the candidate templates twice: first against the
// operands as written, then, if every failure was only a missing
// operand size and exactly one size would fit, once more with that
// size filled in.
func (c *Context) findMatch(ins *insn.Instruction, bits int, segment int32, offset int64) (*template.Template, matchResult) {
	ts := template.Lookup(ins.Opcode)
	merr := matchInvalOp
	var xsize [insn.MaxOperands]uint16

	for pass := 0; pass < 2; pass++ {
		for _, t := range ts {
			m := c.matches(t, ins, bits)
			if m == matchJump {
				if c.jmpMatch(t, ins, bits, segment, offset) {
					m = matchGood
				} else {
					m = matchInvalOp
				}
			} else if m == matchOpSizeMissing && t.Flags&template.FlagNoFuzzy == 0 {
				for i, p := range t.Params {
					if ins.Operands[i].OpSize() == 0 {
						xsize[i] |= sizeBit(p.Size)
					}
				}
			}
			if m > merr {
				merr = m
			}
			if m == matchGood {
				return t, matchGood
			}
		}
		if pass != 0 || merr != matchOpSizeMissing {
			break
		}
		// Relaxed retry: stamp the one size that would fit onto each
		// still-unsized non-register operand.
		changed := false
		for i, o := range ins.Operands {
			x := xsize[i]
			if x == 0 || x&(x-1) != 0 || o.OpSize() != 0 {
				continue
			}
			if o.Modifiers().Has(operand.ModStrict) {
				continue
			}
			switch v := o.(type) {
			case *operand.Memory:
				v.Size = bitSize(x)
				changed = true
			case *operand.Immediate:
				v.Size = bitSize(x)
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return nil, merr
}

// matches grades one template against the instruction.
func (c *Context) matches(t *template.Template, ins *insn.Instruction, bits int) matchResult {
	if len(t.Params) != len(ins.Operands) {
		return matchInvalOp
	}
	if t.Flags&template.FlagOpt != 0 && !c.Optimizing {
		return matchInvalOp
	}
	if t.MinCPU > c.CPU {
		return matchBadCPU
	}
	if bits == 64 && t.Flags&template.FlagNoLong != 0 {
		return matchBadMode
	}
	if bits != 64 && t.Flags&template.FlagLong != 0 {
		return matchBadMode
	}

	// requested encoding scheme
	switch ins.Prefixes[insn.SlotVex] {
	case insn.PrefEvex:
		if !hasOp(t, template.OpEvex) {
			return matchEncMismatch
		}
	case insn.PrefVex2, insn.PrefVex3:
		if !hasOp(t, template.OpVex) {
			return matchEncMismatch
		}
	}
	switch ins.Prefixes[insn.SlotRep] {
	case insn.PrefBnd:
		if t.Flags&template.FlagBND == 0 {
			return matchBadBnd
		}
	case insn.PrefRepne, insn.PrefRepnz:
		// repne shares its byte with bnd; reject it on branches
		if t.Flags&template.FlagBND != 0 {
			return matchBadRepne
		}
	}

	// 64-bit-only register operands fail every template outside long
	// mode; addresses get the finer-grained EA diagnostics instead
	if bits != 64 {
		for _, o := range ins.Operands {
			if v, ok := o.(*operand.Register); ok && regOutsideLong(v.Reg) {
				return matchBadMode
			}
		}
	}

	// registers 16-31 exist only under EVEX
	if !hasOp(t, template.OpEvex) {
		for _, o := range ins.Operands {
			switch v := o.(type) {
			case *operand.Register:
				if v.Reg.IsVector() && v.Reg.Val() > 15 {
					return matchInvalOp
				}
			case *operand.Memory:
				if v.Index.IsVector() && v.Index.Val() > 15 {
					return matchInvalOp
				}
			}
		}
	}

	// a missing size only counts against a template whose other
	// constraints all hold; anything harder fails the template outright
	sizeMissing := false
	for i, p := range t.Params {
		switch m := matchOperand(p, ins.Operands[i], bits); m {
		case matchGood:
		case matchOpSizeMissing:
			sizeMissing = true
		default:
			return m
		}
	}

	// size-match templates require explicit sizes to agree
	if t.Flags&(template.FlagSM|template.FlagSM2) != 0 {
		n := len(t.Params)
		if t.Flags&template.FlagSM2 != 0 && n > 2 {
			n = 2
		}
		var seen operand.Size
		for _, o := range ins.Operands[:n] {
			s := matchSize(o)
			if s == 0 {
				continue
			}
			if seen != 0 && s != seen {
				return matchOpSizeMismatch
			}
			seen = s
		}
	}

	if sizeMissing {
		return matchOpSizeMissing
	}

	if t.Jump == template.JumpShort {
		return matchJump
	}
	return matchGood
}

// regOutsideLong reports a register that only exists in 64-bit mode.
func regOutsideLong(r operand.Reg) bool {
	if r == operand.RegNone {
		return false
	}
	if r.Val() >= 8 {
		return true
	}
	if r.Class() == operand.ClassGPR {
		return r.Size() == operand.Size64 || r.NeedsRexP()
	}
	return false
}

// matchSize is the size an operand contributes to matching: explicit
// keywords for memory and immediates, the intrinsic width for GPRs, and
// nothing for registers of other classes.
func matchSize(o operand.Operand) operand.Size {
	if r, ok := o.(*operand.Register); ok {
		if r.Reg.Class() != operand.ClassGPR {
			return 0
		}
	}
	return o.OpSize()
}

func matchOperand(p template.Param, o operand.Operand, bits int) matchResult {
	// required modifiers
	if !o.Modifiers().Has(p.Mods) {
		return matchInvalOp
	}
	// a to or colon the slot does not take disqualifies the template
	if o.Modifiers()&^p.Mods&(operand.ModTo|operand.ModColon) != 0 {
		return matchInvalOp
	}
	d := o.Deco()

	switch p.Kind {
	case template.PReg:
		r, ok := o.(*operand.Register)
		if !ok {
			return matchInvalOp
		}
		if p.Reg != operand.RegNone && r.Reg != p.Reg {
			return matchInvalOp
		}
		if r.Reg.Class() != p.Class {
			return matchInvalOp
		}
		if p.Class == operand.ClassGPR && p.Size != 0 && r.Reg.Size() != p.Size {
			return matchInvalOp
		}
		if p.SetSize != r.SetSize {
			if r.SetSize != 0 || p.SetSize != 0 {
				return matchRegSetSize
			}
		}
		if p.SetSize > 1 && int(r.Reg.Val())%int(p.SetSize) != 0 {
			return matchRegSet
		}

	case template.PRM:
		switch v := o.(type) {
		case *operand.Register:
			if v.Reg.Class() != p.Class {
				return matchInvalOp
			}
			if p.Class == operand.ClassGPR && p.Size != 0 && v.Reg.Size() != p.Size {
				return matchInvalOp
			}
		case *operand.Memory:
			if m := matchMemory(p, v, bits, d); m != matchGood {
				return m
			}
		default:
			return matchInvalOp
		}

	case template.PMem:
		v, ok := o.(*operand.Memory)
		if !ok {
			return matchInvalOp
		}
		if m := matchMemory(p, v, bits, d); m != matchGood {
			return m
		}

	case template.PImm:
		v, ok := o.(*operand.Immediate)
		if !ok {
			return matchInvalOp
		}
		if p.Unity {
			if !v.Absolute() || v.Value != 1 {
				return matchInvalOp
			}
		}
		if p.Fit != 0 && v.Fits&p.Fit == 0 {
			return matchInvalOp
		}
		if p.Size != 0 && v.Size != p.Size {
			if v.Size != 0 {
				return matchInvalOp
			}
			return matchOpSizeMissing
		}

	case template.PFar:
		if _, ok := o.(*operand.FarPointer); !ok {
			return matchInvalOp
		}

	default:
		return matchInvalOp
	}

	// decorators the slot does not carry
	if d.Broadcast != 0 && !p.Deco.Broadcast {
		return matchBrNotHere
	}
	if d.Mask != operand.RegNone && !p.Deco.Mask {
		return matchMaskNotHere
	}
	if p.NeedMask && d.Mask == operand.RegNone {
		return matchMaskNotHere
	}
	if d.Zeroing && !p.Deco.Z {
		return matchDecoNotHere
	}
	if d.ER && !p.Deco.ER {
		return matchDecoNotHere
	}
	if d.SAE && !p.Deco.SAE && !p.Deco.ER {
		return matchDecoNotHere
	}
	return matchGood
}

func matchMemory(p template.Param, m *operand.Memory, bits int, d operand.Decorators) matchResult {
	// vector-indexed (VSIB) slots
	if p.VSIB != operand.ClassNone {
		if m.Index.Class() != p.VSIB {
			return matchInvalOp
		}
	} else if m.Index.IsVector() {
		return matchInvalOp
	}

	if d.Broadcast != 0 {
		// the memory reference is element-sized; the slot's full width
		// divided by the element width must equal the 1toN count
		if !p.Deco.Broadcast {
			return matchBrNotHere
		}
		if m.Size != 0 && m.Size != p.Deco.BrSize {
			return matchInvalOp
		}
		if p.Size != 0 && int(p.Size)/int(p.Deco.BrSize) != int(d.Broadcast) {
			return matchBrNumMismatch
		}
		return matchGood
	}

	if p.Size != 0 && m.Size != p.Size {
		if m.Size != 0 {
			return matchInvalOp
		}
		return matchOpSizeMissing
	}
	return matchGood
}

func hasOp(t *template.Template, k template.OpKind) bool {
	for _, o := range t.Ops {
		if o.Kind == k {
			return true
		}
	}
	return false
}

// jmpMatch decides whether a short-branch template can be used for a
// target that was not written with an explicit "short": known targets
// must be in byte range, unknown ones are assumed to land there and a
// later pass corrects the guess.
func (c *Context) jmpMatch(t *template.Template, ins *insn.Instruction, bits int, segment int32, offset int64) bool {
	if !c.Optimizing {
		return false
	}
	target, ok := ins.Operands[0].(*operand.Immediate)
	if !ok || target.Modifiers().Has(operand.ModStrict) {
		return false
	}

	r := &Resolved{
		ins: ins, tmpl: t,
		bits: bits, segment: segment, offset: offset,
		prefixes: ins.Prefixes,
		addrSize: bits,
	}
	n, err := c.calcsize(r)
	if err != nil {
		return false
	}
	pn, err := c.prefixLen(r)
	if err != nil {
		return false
	}
	isize := int64(n + pn)

	if target.Unknown() {
		return true
	}
	if seg := target.SymSegment(); seg != operand.NoSeg && seg != segment {
		return false
	}
	delta := target.Value - (offset + isize)
	return delta >= -128 && delta <= 127
}
