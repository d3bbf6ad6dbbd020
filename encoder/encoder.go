// Package encoder turns a parsed instruction into x86 machine code: it
// selects the cheapest matching encoding template, computes the encoded
// length, and emits prefixes, opcode, ModRM/SIB, displacement and
// immediates to an output sink.
package encoder

import (
	"fmt"

	"github.com/asmforge/x86enc/insn"
	"github.com/asmforge/x86enc/operand"
	"github.com/asmforge/x86enc/output"
	"github.com/asmforge/x86enc/template"
)

// Reporter receives the non-fatal diagnostics encoding can raise, such
// as prefix or overflow warnings.
type Reporter interface {
	Warnf(format string, args ...interface{})
}

type nopReporter struct{}

func (nopReporter) Warnf(string, ...interface{}) {}

// Context carries the encoding-wide settings. The zero value is not
// usable; construct with New.
type Context struct {
	// CPU is the highest instruction-set level accepted.
	CPU template.CPU
	// Optimizing enables narrow-immediate and short-branch selection.
	Optimizing bool
	// BndDefault applies a BND prefix to every branch that takes one.
	BndDefault bool
	// RelDefault makes bare 64-bit memory references IP-relative
	// unless marked abs.
	RelDefault bool
	// Reporter receives warnings; defaults to discarding them.
	Reporter Reporter
}

// New returns a Context accepting every instruction set, with
// optimization enabled and warnings discarded.
func New() *Context {
	return &Context{CPU: template.CPUAny, Optimizing: true, Reporter: nopReporter{}}
}

func (c *Context) warnf(format string, args ...interface{}) {
	if c.Reporter != nil {
		c.Reporter.Warnf(format, args...)
	}
}

// Resolved is the outcome of sizing an instruction: the chosen template
// together with every encoding decision Encode needs to reproduce the
// same bytes.
type Resolved struct {
	ins  *insn.Instruction
	tmpl *template.Template

	bits    int
	segment int32
	offset  int64
	length  int64

	prefixes [insn.NumPrefixSlots]insn.Prefix
	addrSize int

	rex     int
	vexreg  int
	vexCM   byte
	vexWLP  byte
	tuple   template.Tuple
	evexBr  bool
	evexB   bool
	disp8N  int
	eat     eaKind
	hleMode byte

	eas [insn.MaxOperands]*eaResult
}

// Len returns the encoded length in bytes.
func (r *Resolved) Len() int64 { return r.length }

// Template returns the matched encoding template.
func (r *Resolved) Template() *template.Template { return r.tmpl }

// Size resolves ins against the template table and computes its encoded
// length at segment:offset in the given mode (16, 32 or 64).
func (c *Context) Size(ins *insn.Instruction, bits int, segment int32, offset int64) (*Resolved, error) {
	if err := checkMode(bits); err != nil {
		return nil, err
	}
	addrSize, asp, err := c.addASP(ins, bits)
	if err != nil {
		return nil, err
	}

	tmpl, merr := c.findMatch(ins, bits, segment, offset)
	if merr != matchGood && merr != matchJump {
		return nil, matchError(merr, bits)
	}

	r := &Resolved{
		ins: ins, tmpl: tmpl,
		bits: bits, segment: segment, offset: offset,
		prefixes: ins.Prefixes, addrSize: addrSize,
	}
	if asp != insn.PrefNone && r.prefixes[insn.SlotASize] == insn.PrefNone {
		r.prefixes[insn.SlotASize] = asp
	}
	if c.BndDefault && tmpl.Flags&template.FlagBND != 0 &&
		r.prefixes[insn.SlotRep] == insn.PrefNone {
		r.prefixes[insn.SlotRep] = insn.PrefBnd
	}

	n, err := c.calcsize(r)
	if err != nil {
		return nil, err
	}
	pn, err := c.prefixLen(r)
	if err != nil {
		return nil, err
	}
	r.length = int64(n) + int64(pn)
	return r, nil
}

// Encode emits the resolved instruction to sink. The instruction and
// location captured by Size are reused; operand values must not have
// changed in between.
func (c *Context) Encode(r *Resolved, sink output.Sink) error {
	return c.gencode(r, sink)
}

// Assemble sizes and emits ins in one step, returning the number of
// bytes produced.
func (c *Context) Assemble(ins *insn.Instruction, bits int, segment int32, offset int64, sink output.Sink) (int64, error) {
	r, err := c.Size(ins, bits, segment, offset)
	if err != nil {
		return 0, err
	}
	if err := c.Encode(r, sink); err != nil {
		return 0, err
	}
	return r.length, nil
}

func checkMode(bits int) error {
	switch bits {
	case 16, 32, 64:
		return nil
	}
	return fmt.Errorf("invalid mode: %d-bit", bits)
}

// addASP derives the effective address size from the memory operands,
// returning the size and the address-size prefix to apply, if any.
func (c *Context) addASP(ins *insn.Instruction, bits int) (int, insn.Prefix, error) {
	valid := 16 | 32 | 64
	for _, o := range ins.Operands {
		m, ok := o.(*operand.Memory)
		if !ok {
			continue
		}
		regs := 0
		for _, r := range []operand.Reg{m.Base, m.Index} {
			if r == operand.RegNone || r.Class() != operand.ClassGPR {
				continue
			}
			regs |= int(r.Size())
		}
		switch regs {
		case 0:
			// displacement only; any address size works
		case 16, 32, 64:
			valid &= regs
		default:
			return 0, insn.PrefNone, fmt.Errorf("invalid effective address: impossible register combination")
		}
	}
	if valid == 0 {
		return 0, insn.PrefNone, fmt.Errorf("invalid effective address: registers of mixed sizes")
	}

	switch p := ins.Prefixes[insn.SlotASize]; p {
	case insn.PrefA16, insn.PrefA32, insn.PrefA64:
		want := map[insn.Prefix]int{insn.PrefA16: 16, insn.PrefA32: 32, insn.PrefA64: 64}[p]
		if valid&want == 0 {
			return 0, insn.PrefNone, fmt.Errorf("impossible combination of address sizes")
		}
		if want == 64 && bits != 64 {
			return 0, insn.PrefNone, fmt.Errorf("64-bit addressing is only available in 64-bit mode")
		}
		return want, insn.PrefNone, nil
	case insn.PrefASP:
		// explicit raw 0x67: flip the mode default
		flip := map[int]int{16: 32, 32: 16, 64: 32}[bits]
		return flip, p, nil
	}

	if valid&bits != 0 {
		return bits, insn.PrefNone, nil
	}
	// a prefix is needed; 64-bit mode can only drop to 32
	switch {
	case bits == 64 && valid&32 != 0:
		return 32, insn.PrefA32, nil
	case bits == 16 && valid&32 != 0:
		return 32, insn.PrefA32, nil
	case bits == 32 && valid&16 != 0:
		return 16, insn.PrefA16, nil
	}
	return 0, insn.PrefNone, fmt.Errorf("impossible combination of address sizes")
}
