package encoder

import (
	"fmt"

	"github.com/asmforge/x86enc/insn"
	"github.com/asmforge/x86enc/operand"
	"github.com/asmforge/x86enc/output"
	"github.com/asmforge/x86enc/template"
)

// gencode replays the encoding program against the decisions calcsize
// stored in r, emitting the final bytes to sink.
func (c *Context) gencode(r *Resolved, sink output.Sink) error {
	ins, t := r.ins, r.tmpl
	end := r.offset + r.length

	if err := c.emitPrefixes(r, func(b byte) { sink.RawData([]byte{b}) }); err != nil {
		return err
	}

	// a REX byte goes out right before the first opcode byte, after
	// any F2/F3 extension bytes
	rexDone := false
	rex := func() {
		if rexDone {
			return
		}
		rexDone = true
		if r.rex&(rexV|rexEV) != 0 {
			return
		}
		if r.rex&(rexW|rexB|rexX|rexR|rexP) != 0 {
			sink.RawData([]byte{0x40 | byte(r.rex&0x0f)})
		}
	}

	for _, o := range t.Ops {
		switch o.Kind {
		case template.OpLiteral:
			rex()
			sink.RawData(o.Bytes)

		case template.OpRegInOpcode:
			rex()
			sink.RawData([]byte{o.B + byte(regOf(ins, o.Arg).Val())&7})

		case template.OpCondByte:
			rex()
			// xor, not add: the 0x71 hop base inverts the condition
			sink.RawData([]byte{o.B ^ ins.Cond.Opcode()})

		case template.OpJmpLen:
			if r.bits == 16 {
				sink.RawData([]byte{0x03})
			} else {
				sink.RawData([]byte{0x05})
			}

		case template.OpF2Ext:
			sink.RawData([]byte{0xf2})
		case template.OpF3Ext:
			sink.RawData([]byte{0xf3})
		case template.Op66SSE:
			sink.RawData([]byte{0x66})

		case template.OpImm:
			c.emitImm(r, o, sink)

		case template.OpRel:
			if err := c.emitRel(r, o, sink, end); err != nil {
				return err
			}

		case template.OpSeg:
			fp := ins.Operands[o.Arg].(*operand.FarPointer)
			sink.Segment(fp.Segment)

		case template.OpIs4:
			v := regOf(ins, o.Arg).Val()
			sink.RawData([]byte{byte(v) << 4})

		case template.OpModRM:
			rex()
			c.emitEA(r, o, sink, end)

		case template.OpVex:
			rexDone = true
			emitVex(r, sink)

		case template.OpEvex:
			rexDone = true
			emitEvex(r, sink)

		case template.OpReserve:
			n, err := reserveSize(ins)
			if err != nil {
				return err
			}
			sink.Reserve(int64(n))

		case template.OpHLE, template.OpA16, template.OpA32, template.OpA64,
			template.OpO16, template.OpO32, template.OpO64NW, template.OpO64,
			template.OpNoHi, template.OpWait, template.OpNP,
			template.OpVSibX, template.OpVSibY, template.OpVSibZ:
			// sized into prefixes or flags, no bytes here

		default:
			return fmt.Errorf("internal error: unhandled encoding op %d", o.Kind)
		}
	}
	return nil
}

func emitLE(sink output.Sink, v int64, n int) {
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i] = byte(v >> uint(8*i))
	}
	sink.RawData(b)
}

func (c *Context) emitImm(r *Resolved, o template.Op, sink output.Sink) {
	opnd := r.ins.Operands[o.Arg]
	n := immBytes(o.W, opnd, r)

	var v int64
	var sym *operand.SymRef
	switch t := opnd.(type) {
	case *operand.Immediate:
		v, sym = t.Value, t.Sym
	case *operand.FarPointer:
		v = t.Offset
	}

	if sym != nil && sym.Segment != operand.NoSeg {
		sink.Address(v, n, sym.Segment, sym.WRT)
		return
	}

	switch o.W {
	case template.W8:
		if v < -128 || v > 255 {
			c.warnf("byte value exceeds bounds")
		}
	case template.W8U:
		if v < 0 || v > 255 {
			c.warnf("byte value exceeds bounds")
		}
	case template.W8S:
		if v < -128 || v > 127 {
			c.warnf("signed byte value exceeds bounds")
		}
	case template.W16:
		if v < -32768 || v > 65535 {
			c.warnf("word value exceeds bounds")
		}
	case template.W32:
		if v < -1<<31 || v > 1<<32-1 {
			c.warnf("dword value exceeds bounds")
		}
	case template.WSD:
		if v < -1<<31 || v > 1<<31-1 {
			c.warnf("signed dword value exceeds bounds")
		}
	case template.WWD:
		if n == 2 {
			if v < -32768 || v > 65535 {
				c.warnf("word value exceeds bounds")
			}
		} else if v < -1<<31 || v > 1<<32-1 {
			c.warnf("dword value exceeds bounds")
		}
	}
	emitLE(sink, v, n)
}

func (c *Context) emitRel(r *Resolved, o template.Op, sink output.Sink, end int64) error {
	target := r.ins.Operands[o.Arg].(*operand.Immediate)
	n := relBytes(o.W, r)

	if target.Unknown() {
		// first pass, no estimate: leave space, a later pass fills it
		emitLE(sink, 0, n)
		return nil
	}
	seg := target.SymSegment()
	if seg != operand.NoSeg && seg != r.segment {
		sink.RelAddress(target.Value, n, seg, end)
		return nil
	}
	delta := target.Value - end
	if n == 1 && (delta < -128 || delta > 127) {
		return fmt.Errorf("short jump is out of range")
	}
	if n == 2 && (delta < -32768 || delta > 32767) {
		return fmt.Errorf("jump is out of range")
	}
	emitLE(sink, delta, n)
	return nil
}

// emitEA writes the ModRM, SIB and displacement bytes resolved for the
// operand during sizing.
func (c *Context) emitEA(r *Resolved, o template.Op, sink output.Sink, end int64) {
	ea := r.eas[o.Arg]
	sink.RawData([]byte{ea.modrm})
	if ea.hasSIB {
		sink.RawData([]byte{ea.sib})
	}
	if ea.dispSize == 0 {
		return
	}

	m, _ := r.ins.Operands[o.Arg].(*operand.Memory)
	if ea.rip {
		seg := m.SymSegment()
		if seg != operand.NoSeg && seg != r.segment {
			sink.RelAddress(m.Disp, ea.dispSize, seg, end)
			return
		}
		emitLE(sink, m.Disp-end, ea.dispSize)
		return
	}
	if m != nil && m.Sym != nil && m.SymSegment() != operand.NoSeg {
		sink.Address(m.Disp, ea.dispSize, m.SymSegment(), m.Sym.WRT)
		return
	}

	switch ea.dispSize {
	case 1:
		if ea.disp < -128 || ea.disp > 127 {
			c.warnf("signed byte value exceeds bounds")
		}
	case 2:
		if ea.disp < -32768 || ea.disp > 65535 {
			c.warnf("word value exceeds bounds")
		}
	case 4:
		if ea.disp < -1<<31 || ea.disp > 1<<32-1 {
			c.warnf("dword value exceeds bounds")
		}
	}
	emitLE(sink, ea.disp, ea.dispSize)
}

// emitVex writes the 2- or 3-byte VEX (or XOP) prefix from the state
// calcsize resolved.
func emitVex(r *Resolved, sink output.Sink) {
	vvvv := byte(^r.vexreg) & 15
	l := (r.vexWLP >> 2) & 1
	pp := r.vexWLP & 3

	if r.vexCM == template.VexM0F && r.rex&(rexW|rexX|rexB) == 0 &&
		r.prefixes[insn.SlotVex] != insn.PrefVex3 {
		b1 := vvvv<<3 | l<<2 | pp
		if r.rex&rexR == 0 {
			b1 |= 0x80
		}
		sink.RawData([]byte{0xc5, b1})
		return
	}

	lead := byte(0xc4)
	if r.vexCM>>6 == 1 {
		lead = 0x8f
	}
	b1 := r.vexCM & 0x1f
	if r.rex&rexR == 0 {
		b1 |= 0x80
	}
	if r.rex&rexX == 0 {
		b1 |= 0x40
	}
	if r.rex&rexB == 0 {
		b1 |= 0x20
	}
	b2 := vvvv<<3 | l<<2 | pp
	if r.rex&rexW != 0 {
		b2 |= 0x80
	}
	sink.RawData([]byte{lead, b1, b2})
}

// emitEvex assembles the four-byte EVEX prefix; the extension bits are
// stored inverted, the opmask and rounding fields come straight from
// the operand decorators.
func emitEvex(r *Resolved, sink output.Sink) {
	p0 := r.vexCM & 3
	if r.rex&rexR == 0 {
		p0 |= 0x80
	}
	if r.rex&rexX == 0 {
		p0 |= 0x40
	}
	if r.rex&rexB == 0 {
		p0 |= 0x20
	}
	if r.rex&rexRH == 0 {
		p0 |= 0x10
	}

	p1 := byte(4) | byte(^r.vexreg)&15<<3 | r.vexWLP&3
	if r.rex&rexW != 0 {
		p1 |= 0x80
	}

	ll := (r.vexWLP >> 2) & 3
	b := r.evexB
	var aaa, z byte
	for _, op := range r.ins.Operands {
		d := op.Deco()
		if d.Mask != operand.RegNone {
			aaa = byte(d.Mask.Val()) & 7
		}
		if d.Zeroing {
			z = 0x80
		}
		if d.ER {
			ll = byte(d.Round)
		}
	}

	p2 := z | ll<<5 | aaa
	if b {
		p2 |= 0x10
	}
	if r.vexreg&16 == 0 {
		p2 |= 0x08
	}

	sink.RawData([]byte{0x62, p0, p1, p2})
}
