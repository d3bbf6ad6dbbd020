package encoder

import (
	"fmt"

	"github.com/asmforge/x86enc/insn"
	"github.com/asmforge/x86enc/operand"
	"github.com/asmforge/x86enc/template"
)

// REX demand flags, accumulated while walking the encoding program.
// The low nibble matches the hardware REX bit positions; the rest are
// bookkeeping that never reaches the emitted byte.
const (
	rexB = 0x01
	rexX = 0x02
	rexR = 0x04
	rexW = 0x08

	rexP    = 0x40   // REX needed even with no bits set (spl..dil)
	rexH    = 0x80   // high byte register, incompatible with any REX
	rexV    = 0x100  // VEX/XOP encoded
	rexNH   = 0x200  // high byte registers forbidden
	rexEV   = 0x400  // EVEX encoded
	rexHi   = 0x800  // a register numbered above 15 is involved
	rexRH   = 0x1000 // bit 4 of the spare register (EVEX.R')
	rexMask = 0x4f   // bits that may land in a real REX byte
)

// rexBits is the position demand of a register number alone: bit 3
// lands in pos (one of rexB, rexX, rexR), bit 4 in the EVEX extension
// for that position.
func rexBits(reg operand.Reg, pos int) int {
	v := reg.Val()
	if v < 0 {
		return 0
	}
	var f int
	if v&8 != 0 {
		f |= pos
	}
	if v&16 != 0 {
		f |= rexHi
		switch pos {
		case rexB:
			f |= rexX // ModRM.rm bit 4 travels in EVEX.X
		case rexR:
			f |= rexRH
		}
	}
	return f
}

// rexFlags adds the width and encodability attributes a register
// demands when used as a true operand.
func rexFlags(reg operand.Reg, pos int) int {
	f := rexBits(reg, pos)
	if reg.Class() == operand.ClassGPR {
		if reg.Size() == operand.Size64 {
			f |= rexW
		}
		if reg.IsHigh() {
			f |= rexH
		}
		if reg.NeedsRexP() {
			f |= rexP
		}
	}
	return f
}

func regOf(ins *insn.Instruction, i int) operand.Reg {
	if r, ok := ins.Operands[i].(*operand.Register); ok {
		return r.Reg
	}
	return operand.RegNone
}

// calcsize walks the template's encoding program and returns the byte
// count past the legacy prefixes, filling in every decision gencode
// replays: REX demands, VEX/EVEX state, per-operand EA encodings and
// derived prefix slots.
func (c *Context) calcsize(r *Resolved) (int, error) {
	ins, t := r.ins, r.tmpl
	length := 0
	rexmask := ^0

	r.rex = 0
	r.vexCM, r.vexWLP, r.vexreg = 0, 0, 0
	r.tuple = template.TupleNone
	r.evexBr, r.evexB = false, false
	r.disp8N = 0
	r.eat = eaScalar
	r.hleMode = 0

	// EA constraints trail the ModRM op in a program; settle them first
	for _, o := range t.Ops {
		switch o.Kind {
		case template.OpVSibX:
			r.eat = eaXmmVSib
		case template.OpVSibY:
			r.eat = eaYmmVSib
		case template.OpVSibZ:
			r.eat = eaZmmVSib
		}
	}
	for _, o := range ins.Operands {
		m, ok := o.(*operand.Memory)
		if !ok {
			continue
		}
		if t.Flags&template.FlagMIB != 0 {
			m.Flags |= operand.EAMIB
		}
		if m.Segment != operand.RegNone && r.prefixes[insn.SlotSeg] == insn.PrefNone {
			r.prefixes[insn.SlotSeg] = insn.SegPrefix(m.Segment)
		}
	}

	for _, o := range t.Ops {
		switch o.Kind {
		case template.OpLiteral:
			length += len(o.Bytes)

		case template.OpRegInOpcode:
			r.rex |= rexFlags(regOf(ins, o.Arg), rexB)
			length++

		case template.OpImm:
			length += immBytes(o.W, ins.Operands[o.Arg], r)

		case template.OpRel:
			length += relBytes(o.W, r)

		case template.OpSeg:
			length += 2

		case template.OpIs4, template.OpCondByte, template.OpF2Ext,
			template.OpF3Ext, template.Op66SSE, template.OpJmpLen:
			length++

		case template.OpModRM:
			n, err := c.sizeModRM(r, o)
			if err != nil {
				return 0, err
			}
			length += n

		case template.OpVex, template.OpEvex:
			r.vexCM = o.CM
			r.vexWLP = o.WLP
			if o.VArg >= 0 {
				r.vexreg = int(regOf(ins, o.VArg).Val())
			}
			if o.Kind == template.OpEvex {
				r.rex |= rexEV
				r.tuple = o.Tuple
				if i := ins.BrErOp(); i >= 0 {
					r.evexBr = ins.Operands[i].Deco().Broadcast != 0
					r.evexB = true
				}
			} else {
				r.rex |= rexV
			}

		case template.OpHLE:
			r.hleMode = o.Mode

		case template.OpA16:
			r.addrSize = 16
			if err := c.setASize(r, insn.PrefA16); err != nil {
				return 0, err
			}
		case template.OpA32:
			r.addrSize = 32
			if err := c.setASize(r, insn.PrefA32); err != nil {
				return 0, err
			}
		case template.OpA64:
			r.addrSize = 64
			if err := c.setASize(r, insn.PrefA64); err != nil {
				return 0, err
			}

		case template.OpO16:
			c.setOSize(r, insn.PrefO16)
		case template.OpO32:
			c.setOSize(r, insn.PrefO32)
			// a 32-bit form never takes REX.W, even when a 64-bit
			// register picked the template (mov r64 with a udword)
			rexmask &^= rexW
		case template.OpO64NW:
			rexmask &^= rexW
		case template.OpO64:
			r.rex |= rexW

		case template.OpNoHi:
			r.rex |= rexNH

		case template.OpWait:
			r.prefixes[insn.SlotWait] = insn.PrefWait

		case template.OpNP:
			// no SSE prefix byte

		case template.OpVSibX, template.OpVSibY, template.OpVSibZ:
			// handled in the pre-scan

		case template.OpReserve:
			n, err := reserveSize(ins)
			if err != nil {
				return 0, err
			}
			length += n

		default:
			return 0, fmt.Errorf("internal error: unhandled encoding op %d", o.Kind)
		}
	}

	r.rex &= rexmask

	if r.rex&rexNH != 0 && r.rex&rexH != 0 {
		return 0, fmt.Errorf("instruction cannot use high byte registers")
	}

	if r.rex&(rexV|rexEV) != 0 {
		// resolve the W policy against the operand-derived REX.W
		switch r.vexWLP & 0x30 {
		case template.VexW0, template.VexWIG:
			r.rex &^= rexW
		case template.VexW1:
			r.rex |= rexW
		}
		if r.rex&rexH != 0 {
			return 0, fmt.Errorf("cannot use high byte register in this instruction")
		}
		if r.bits != 64 && (r.rex&(rexW|rexB|rexX|rexR) != 0 || r.vexreg > 7) {
			return 0, fmt.Errorf("invalid operands in non-64-bit mode")
		}
		if r.rex&rexEV == 0 && (r.rex&rexHi != 0 || r.vexreg > 15) {
			return 0, fmt.Errorf("invalid high-16 register in non-EVEX instruction")
		}
		switch {
		case r.rex&rexEV != 0:
			length += 4
		case r.vexCM != template.VexM0F || r.rex&(rexW|rexX|rexB) != 0 ||
			r.prefixes[insn.SlotVex] == insn.PrefVex3:
			if r.prefixes[insn.SlotVex] == insn.PrefVex2 {
				return 0, fmt.Errorf("instruction not encodable with {vex2} prefix")
			}
			length += 3
		default:
			length += 2
		}
	} else {
		if r.rex&rexHi != 0 {
			return 0, fmt.Errorf("invalid high-16 register in non-EVEX instruction")
		}
		if r.rex&rexH != 0 && r.rex&(rexP|rexW|rexB|rexX|rexR) != 0 {
			return 0, fmt.Errorf("cannot use high register in rex instruction")
		}
		if r.rex&(rexW|rexB|rexX|rexR|rexP) != 0 {
			if r.bits != 64 {
				return 0, fmt.Errorf("invalid operands in non-64-bit mode")
			}
			length++
		}
	}

	memDest := len(ins.Operands) > 0 && ins.Operands[0].Kind() == operand.KindMemory
	anyMem := false
	for _, o := range ins.Operands {
		if o.Kind() == operand.KindMemory {
			anyMem = true
		}
	}

	if r.prefixes[insn.SlotLock] == insn.PrefLock &&
		(t.Flags&template.FlagLock == 0 || !memDest) {
		c.warnf("instruction is not lockable")
	}

	switch p := r.prefixes[insn.SlotRep]; p {
	case insn.PrefXacquire, insn.PrefXrelease:
		mode := r.hleMode
		if t.Flags&template.FlagNoHLE != 0 {
			mode = 0
		}
		name := "xacquire"
		if p == insn.PrefXrelease {
			name = "xrelease"
		}
		// misuse is advisory only; the prefix byte still goes out
		switch {
		case !anyMem, mode == 0:
			c.warnf("%s invalid with this instruction", name)
		case mode == template.HLEYes:
			if r.prefixes[insn.SlotLock] != insn.PrefLock {
				c.warnf("%s with this instruction requires lock", name)
			}
		case mode == template.HLEXR:
			if p != insn.PrefXrelease {
				c.warnf("%s invalid with this instruction", name)
			}
		}
	case insn.PrefBnd:
		if shortRel(t) {
			c.warnf("bnd prefix dropped on a short branch")
			r.prefixes[insn.SlotRep] = insn.PrefNone
		}
	}

	return length, nil
}

// sizeModRM resolves the effective-address operand of a ModRM op and
// accumulates the spare register's REX demands.
func (c *Context) sizeModRM(r *Resolved, o template.Op) (int, error) {
	ins := r.ins
	spare := int(o.B)
	if !o.SpareIsDigit {
		reg := regOf(ins, o.Spare)
		spare = int(reg.Val()) & 7
		r.rex |= rexFlags(reg, rexR)
	}
	if r.rex&rexEV != 0 {
		w := r.vexWLP&0x30 == template.VexW1
		vl := int(r.vexWLP>>2) & 3
		r.disp8N = disp8Scale(r.tuple, w, r.evexBr, vl)
	}
	ea, err := c.processEA(r, ins.Operands[o.Arg], spare, r.disp8N)
	if err != nil {
		return 0, err
	}
	if ea.vvvvHi {
		r.vexreg |= 16
	}
	r.rex |= ea.rex
	r.eas[o.Arg] = ea
	return ea.size, nil
}

// setASize applies a template-fixed address size to the prefix slot; an
// explicit conflicting user prefix is an error.
func (c *Context) setASize(r *Resolved, p insn.Prefix) error {
	switch r.prefixes[insn.SlotASize] {
	case insn.PrefNone, p:
		r.prefixes[insn.SlotASize] = p
		return nil
	}
	return fmt.Errorf("impossible combination of address sizes")
}

// setOSize applies a template-fixed operand size; a different explicit
// prefix is kept but flagged.
func (c *Context) setOSize(r *Resolved, p insn.Prefix) {
	switch r.prefixes[insn.SlotOSize] {
	case insn.PrefNone:
		r.prefixes[insn.SlotOSize] = p
	case p:
	default:
		c.warnf("invalid operand size prefix")
	}
}

func immBytes(w template.ImmWidth, o operand.Operand, r *Resolved) int {
	switch w {
	case template.W8, template.W8U, template.W8S:
		return 1
	case template.W16:
		return 2
	case template.WWD:
		return template.SizeForWD(o.OpSize(), r.bits)
	case template.W64:
		return 8
	}
	return 4
}

func relBytes(w template.ImmWidth, r *Resolved) int {
	if w == template.Rel8 {
		return 1
	}
	switch r.prefixes[insn.SlotOSize] {
	case insn.PrefO16:
		return 2
	case insn.PrefO32:
		return 4
	}
	if r.bits == 16 {
		return 2
	}
	return 4
}

func reserveSize(ins *insn.Instruction) (int, error) {
	v, ok := ins.Operands[0].(*operand.Immediate)
	if !ok || !v.Absolute() || v.Unknown() {
		return 0, fmt.Errorf("attempt to reserve non-constant quantity of BSS space")
	}
	if v.Value < 0 {
		return 0, fmt.Errorf("attempt to reserve a negative quantity of BSS space")
	}
	return int(v.Value * insn.ResbBytes(ins.Opcode)), nil
}

func shortRel(t *template.Template) bool {
	for _, o := range t.Ops {
		if o.Kind == template.OpRel && o.W == template.Rel8 {
			return true
		}
	}
	return false
}
