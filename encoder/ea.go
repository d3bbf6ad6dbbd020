package encoder

import (
	"fmt"

	"github.com/asmforge/x86enc/operand"
)

// eaKind says what the ModRM-encoded operand slot must contain.
type eaKind uint8

const (
	eaScalar eaKind = iota
	eaXmmVSib
	eaYmmVSib
	eaZmmVSib
)

// eaResult is a fully resolved ModRM/SIB/displacement encoding.
type eaResult struct {
	size     int // modrm + sib + displacement bytes
	modrm    byte
	sib      byte
	hasSIB   bool
	dispSize int
	disp     int64 // value to store; compressed disp8 already scaled
	rip      bool  // displacement is IP-relative
	rex      int
	vvvvHi   bool // VSIB index bit 4, encoded in EVEX.V'
}

func modrm(mod, spare, rm byte) byte { return mod<<6 | (spare&7)<<3 | rm&7 }

var errEA = fmt.Errorf("invalid effective address")

// processEA encodes one register-or-memory slot. rfield is the spare
// field value; disp8N the EVEX compression factor, zero outside EVEX.
func (c *Context) processEA(r *Resolved, o operand.Operand, rfield int, disp8N int) (*eaResult, error) {
	out := &eaResult{}

	if reg, ok := o.(*operand.Register); ok {
		if r.eat != eaScalar {
			return nil, errEA
		}
		v := reg.Reg.Val()
		if v < 0 {
			return nil, errEA
		}
		out.rex = rexFlags(reg.Reg, rexB)
		out.modrm = modrm(3, byte(rfield), byte(v))
		out.size = 1
		return out, nil
	}

	m, ok := o.(*operand.Memory)
	if !ok {
		return nil, errEA
	}
	if r.addrSize == 16 {
		return c.processEA16(r, m, rfield)
	}
	return c.processEA32(r, m, rfield, disp8N)
}

func (c *Context) processEA32(r *Resolved, m *operand.Memory, rfield, disp8N int) (*eaResult, error) {
	out := &eaResult{}
	base, index, scale := m.Base, m.Index, m.Scale
	if scale == 0 {
		index = operand.RegNone
	}

	// vector-indexed references bypass the scalar canonicalization
	vsib := r.eat != eaScalar
	if vsib && index == operand.RegNone {
		return nil, errEA
	}

	mib := m.Flags&operand.EAMIB != 0
	if mib {
		// bound instructions take [base,index] literally, unscaled
		switch {
		case index == operand.RegNone && base != operand.RegNone &&
			m.Hint == operand.HintNotBase && m.HintBase == base:
			// an explicitly scaled lone register stays an index and
			// encodes through the no-base SIB form
			index, base, scale = base, operand.RegNone, 1
		case base == operand.RegNone && index != operand.RegNone &&
			m.Hint == operand.HintSummed:
			// a doubled register was folded into the index; split it back
			base, scale = index, scale-1
		case base == operand.RegNone && index != operand.RegNone && scale <= 1:
			base, index = index, base
		}
		if scale > 1 {
			return nil, errEA
		}
		if index != operand.RegNone && index.Val() == 4 {
			return nil, errEA
		}
	}

	if !vsib && !mib {
		// scale tricks: an index alone can often fold into a base
		if base == operand.RegNone && index != operand.RegNone {
			switch {
			case scale == 1 && m.Hint != operand.HintNotBase:
				base, index, scale = index, operand.RegNone, 0
			case scale == 2 && m.Flags&operand.EATimesTwo == 0 && m.Hint != operand.HintNotBase:
				base, scale = index, 1
			case scale == 3 || scale == 5 || scale == 9:
				base, scale = index, scale-1
			}
		}
		// honor the parser's base preference when both orders encode
		if base != operand.RegNone && index != operand.RegNone && scale == 1 {
			switch m.Hint {
			case operand.HintMakeBase:
				if m.HintBase == index {
					base, index = index, base
				}
			case operand.HintNotBase:
				if m.HintBase == base {
					base, index = index, base
				}
			}
		}
		// sp/esp/rsp cannot be an index
		if index != operand.RegNone && index.Val() == 4 {
			if scale != 1 || (base != operand.RegNone && base.Val() == 4) {
				return nil, errEA
			}
			base, index = index, base
		}
	}

	for _, reg := range []operand.Reg{base, index} {
		if reg == operand.RegNone {
			continue
		}
		if reg.Class() == operand.ClassGPR && int(reg.Size()) != r.addrSize {
			return nil, errEA
		}
	}

	forceDisp := m.Sym != nil || m.Flags&operand.EAWordOffs != 0

	switch {
	case base == operand.RegNone && index == operand.RegNone:
		// bare displacement
		if r.bits == 64 {
			rel := m.Flags&operand.EARel != 0 ||
				(c.RelDefault && m.Flags&operand.EAAbs == 0)
			if rel && r.addrSize == 64 {
				if mib {
					// bound memory operands have no rip-relative form
					return nil, errEA
				}
				out.modrm = modrm(0, byte(rfield), 5)
				out.rip = true
				out.dispSize = 4
				out.size = 1 + 4
				return out, nil
			}
			// absolute: mod 00 rm 101 would be IP-relative here, so
			// take the SIB no-base form
			out.modrm = modrm(0, byte(rfield), 4)
			out.sib = 0x25
			out.hasSIB = true
			out.dispSize = 4
			out.disp = m.Disp
			out.size = 1 + 1 + 4
			return out, nil
		}
		out.modrm = modrm(0, byte(rfield), 5)
		out.dispSize = 4
		out.disp = m.Disp
		out.size = 1 + 4
		return out, nil

	case index == operand.RegNone && !vsib:
		bv := int(base.Val())
		out.rex = rexBits(base, rexB)
		rm := byte(bv & 7)
		mod, dispSize, disp := pickDisp(m, bv, disp8N, forceDisp)
		if rm == 4 {
			// base esp/r12 needs a SIB escape
			out.sib = 0x24 // scale 1, no index, base 100
			out.hasSIB = true
		}
		out.modrm = modrm(mod, byte(rfield), rm)
		out.dispSize = dispSize
		out.disp = disp
		out.size = 1 + dispSize
		if out.hasSIB {
			out.size++
		}
		return out, nil

	default:
		iv := int(index.Val())
		if vsib {
			if iv&8 != 0 {
				out.rex |= rexX
			}
			out.vvvvHi = iv&16 != 0
		} else {
			out.rex = rexBits(index, rexX)
		}

		var scaleBits byte
		switch scale {
		case 0, 1:
			scaleBits = 0
		case 2:
			scaleBits = 1
		case 4:
			scaleBits = 2
		case 8:
			scaleBits = 3
		default:
			return nil, errEA
		}

		if base == operand.RegNone {
			// SIB with no base: mod 00, base 101, mandatory disp32
			out.modrm = modrm(0, byte(rfield), 4)
			out.sib = scaleBits<<6 | byte(iv&7)<<3 | 5
			out.hasSIB = true
			out.dispSize = 4
			out.disp = m.Disp
			out.size = 1 + 1 + 4
			return out, nil
		}

		bv := int(base.Val())
		out.rex |= rexBits(base, rexB)
		mod, dispSize, disp := pickDisp(m, bv, disp8N, forceDisp)
		out.modrm = modrm(mod, byte(rfield), 4)
		out.sib = scaleBits<<6 | byte(iv&7)<<3 | byte(bv&7)
		out.hasSIB = true
		out.dispSize = dispSize
		out.disp = disp
		out.size = 1 + 1 + dispSize
		return out, nil
	}
}

// pickDisp chooses the mod field and displacement width for a based
// reference: no displacement when it is zero (except over rBP/r13),
// a byte when it fits (scaled by disp8N under EVEX), else four bytes.
func pickDisp(m *operand.Memory, baseVal, disp8N int, forceDisp bool) (mod byte, size int, disp int64) {
	d := m.Disp
	bp := baseVal&7 == 5 // rbp/r13 row has no disp-free form

	if !forceDisp && m.Flags&operand.EAByteOffs == 0 && d == 0 && !bp {
		return 0, 0, 0
	}
	if !forceDisp || m.Flags&operand.EAByteOffs != 0 {
		if disp8N > 0 {
			if d%int64(disp8N) == 0 {
				if s := d / int64(disp8N); s >= -128 && s <= 127 {
					return 1, 1, s
				}
			}
		} else if d >= -128 && d <= 127 {
			return 1, 1, d
		}
		if m.Flags&operand.EAByteOffs != 0 {
			// forced byte form; range checked at emission
			return 1, 1, d
		}
	}
	return 2, 4, d
}

// processEA16 encodes a 16-bit addressing-mode reference via the fixed
// bx/bp/si/di combination table.
func (c *Context) processEA16(r *Resolved, m *operand.Memory, rfield int) (*eaResult, error) {
	if r.eat != eaScalar || m.Flags&operand.EAMIB != 0 {
		return nil, errEA
	}
	out := &eaResult{}
	base, index := m.Base, m.Index
	if m.Scale > 1 {
		return nil, errEA
	}
	if m.Scale == 0 {
		index = operand.RegNone
	}

	if base == operand.RegNone && index == operand.RegNone {
		out.modrm = modrm(0, byte(rfield), 6)
		out.dispSize = 2
		out.disp = m.Disp
		out.size = 1 + 2
		return out, nil
	}

	rm := -1
	for _, try := range [2][2]operand.Reg{{base, index}, {index, base}} {
		switch [2]operand.Reg{try[0], try[1]} {
		case [2]operand.Reg{operand.RegBX, operand.RegSI}:
			rm = 0
		case [2]operand.Reg{operand.RegBX, operand.RegDI}:
			rm = 1
		case [2]operand.Reg{operand.RegBP, operand.RegSI}:
			rm = 2
		case [2]operand.Reg{operand.RegBP, operand.RegDI}:
			rm = 3
		case [2]operand.Reg{operand.RegSI, operand.RegNone}:
			rm = 4
		case [2]operand.Reg{operand.RegDI, operand.RegNone}:
			rm = 5
		case [2]operand.Reg{operand.RegBP, operand.RegNone}:
			rm = 6
		case [2]operand.Reg{operand.RegBX, operand.RegNone}:
			rm = 7
		}
		if rm >= 0 {
			break
		}
	}
	if rm < 0 {
		return nil, errEA
	}

	d := m.Disp
	forceDisp := m.Sym != nil || m.Flags&operand.EAWordOffs != 0
	switch {
	case !forceDisp && m.Flags&operand.EAByteOffs == 0 && d == 0 && rm != 6:
		out.modrm = modrm(0, byte(rfield), byte(rm))
		out.size = 1
	case !forceDisp && (m.Flags&operand.EAByteOffs != 0 || (d >= -128 && d <= 127)):
		out.modrm = modrm(1, byte(rfield), byte(rm))
		out.dispSize = 1
		out.disp = d
		out.size = 1 + 1
	default:
		out.modrm = modrm(2, byte(rfield), byte(rm))
		out.dispSize = 2
		out.disp = d
		out.size = 1 + 2
	}
	return out, nil
}
