// Package x86enc assembles x86 and x86-64 instruction text into machine
// code. It wires the NASM-syntax parser to the template-driven encoder
// and runs the multi-pass loop that settles label offsets.
package x86enc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asmforge/x86enc/encoder"
	"github.com/asmforge/x86enc/operand"
	"github.com/asmforge/x86enc/output"
	"github.com/asmforge/x86enc/parser"
)

// maxPasses bounds the sizing loop; sources whose label offsets still
// move after this many passes are cyclic.
const maxPasses = 64

// Assembler assembles a source text to a flat segment.
type Assembler struct {
	// Bits is the initial mode, overridable by a bits directive.
	Bits int
	// Ctx carries the encoding settings shared by every instruction.
	Ctx *encoder.Context
}

// NewAssembler returns an assembler for the given mode with default
// encoder settings.
func NewAssembler(bits int) *Assembler {
	return &Assembler{Bits: bits, Ctx: encoder.New()}
}

// Assemble assembles a single instruction at offset zero and returns
// its bytes.
func Assemble(line string, bits int) ([]byte, error) {
	buf := output.NewBuffer()
	if err := NewAssembler(bits).AssembleTo(line, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AssembleSource assembles a multi-line source and returns the output
// buffer with its relocations.
func (a *Assembler) AssembleSource(src string) (*output.Buffer, error) {
	buf := output.NewBuffer()
	if err := a.AssembleTo(src, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// AssembleTo assembles src into buf.
func (a *Assembler) AssembleTo(src string, buf *output.Buffer) error {
	stmts, err := prepare(src)
	if err != nil {
		return err
	}

	syms := newSymtab()
	for _, s := range stmts {
		if s.label != "" {
			if _, dup := syms.defined[s.label]; dup {
				return fmt.Errorf("line %d: label %q redefined", s.line, s.label)
			}
			syms.defined[s.label] = struct{}{}
		}
	}

	p := &parser.Parser{Syms: syms, Optimizing: a.Ctx.Optimizing}

	// Sizing passes: repeat until no label moves. Offsets only settle
	// once every forward reference has seen a stable value, so the
	// first pass never counts as converged.
	var sizes []int64
	for pass := 1; ; pass++ {
		if pass > maxPasses {
			return fmt.Errorf("label offsets did not converge after %d passes", maxPasses)
		}
		moved := pass == 1
		sizes = sizes[:0]
		bits := a.Bits
		var offset int64
		for _, s := range stmts {
			if s.label != "" {
				if old, ok := syms.values[s.label]; !ok || old != offset {
					moved = true
				}
				syms.values[s.label] = offset
			}
			if s.bits != 0 {
				bits = s.bits
			}
			if s.text == "" {
				sizes = append(sizes, 0)
				continue
			}
			syms.dot = offset
			ins, err := p.ParseLine(s.text)
			if err != nil {
				return fmt.Errorf("line %d: %w", s.line, err)
			}
			r, err := a.Ctx.Size(ins, bits, syms.seg, offset)
			if err != nil {
				return fmt.Errorf("line %d: %w", s.line, err)
			}
			sizes = append(sizes, r.Len())
			offset += r.Len()
		}
		if !moved {
			break
		}
	}

	// Emission pass over the settled offsets.
	bits := a.Bits
	var offset int64
	for i, s := range stmts {
		if s.bits != 0 {
			bits = s.bits
		}
		if s.text == "" {
			continue
		}
		syms.dot = offset
		ins, err := p.ParseLine(s.text)
		if err != nil {
			return fmt.Errorf("line %d: %w", s.line, err)
		}
		n, err := a.Ctx.Assemble(ins, bits, syms.seg, offset, buf)
		if err != nil {
			return fmt.Errorf("line %d: %w", s.line, err)
		}
		if n != sizes[i] {
			return fmt.Errorf("line %d: instruction changed size between passes", s.line)
		}
		offset += n
	}
	return nil
}

// stmt is one source line split into its label, directive and
// instruction parts.
type stmt struct {
	label string
	text  string
	bits  int
	line  int
}

func prepare(src string) ([]stmt, error) {
	var stmts []stmt
	for i, raw := range strings.Split(src, "\n") {
		line := raw
		if j := strings.IndexByte(line, ';'); j >= 0 {
			line = line[:j]
		}
		line = strings.TrimSpace(line)
		s := stmt{line: i + 1}

		if j := labelEnd(line); j > 0 {
			s.label = line[:j]
			line = strings.TrimSpace(line[j+1:])
		}

		if b, ok := bitsDirective(line); ok {
			switch b {
			case 16, 32, 64:
				s.bits = b
			default:
				return nil, fmt.Errorf("line %d: invalid bits directive", i+1)
			}
		} else {
			s.text = line
		}
		if s.label == "" && s.text == "" && s.bits == 0 {
			continue
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// labelEnd returns the index of the colon ending a leading label, or 0.
func labelEnd(line string) int {
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == ':':
			if i > 0 {
				return i
			}
			return 0
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9', c == '_', c == '.', c == '$':
		default:
			return 0
		}
	}
	return 0
}

func bitsDirective(line string) (int, bool) {
	line = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
	tok := strings.Fields(line)
	if len(tok) != 2 || !strings.EqualFold(tok[0], "bits") {
		return 0, false
	}
	n, err := strconv.Atoi(tok[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// symtab is the label table shared by every pass. Labels are
// segment-relative, so references resolve to relocatable symbols.
type symtab struct {
	defined map[string]struct{}
	values  map[string]int64
	dot     int64
	seg     int32
}

func newSymtab() *symtab {
	return &symtab{defined: map[string]struct{}{}, values: map[string]int64{}}
}

func (s *symtab) Resolve(name string) (int64, *operand.SymRef, bool) {
	sym := operand.SymRef{Segment: s.seg, WRT: operand.NoSeg, Relative: true}
	if name == "$" {
		return s.dot, &sym, true
	}
	if _, ok := s.defined[name]; !ok {
		return 0, nil, false
	}
	v, ok := s.values[name]
	if !ok {
		sym.Forward = true
		sym.Unknown = true
		return 0, &sym, true
	}
	return v, &sym, true
}
