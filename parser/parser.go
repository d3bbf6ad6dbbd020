// Package parser turns NASM-syntax instruction lines into the typed
// records the encoder consumes. It handles one instruction per line;
// label and section bookkeeping belong to the caller.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asmforge/x86enc/insn"
	"github.com/asmforge/x86enc/operand"
)

// Symbols resolves identifiers appearing in operand expressions to a
// value and its relocation state.
type Symbols interface {
	Resolve(name string) (int64, *operand.SymRef, bool)
}

// Parser holds the per-source parsing configuration. The zero value
// parses purely numeric operands.
type Parser struct {
	// Syms resolves label and symbol references.
	Syms Symbols
	// Optimizing classifies constants for the narrow-immediate forms.
	Optimizing bool
}

var sizeKeywords = map[string]operand.Size{
	"byte": operand.Size8, "word": operand.Size16,
	"dword": operand.Size32, "qword": operand.Size64,
	"tword": operand.Size80, "oword": operand.Size128,
	"yword": operand.Size256, "zword": operand.Size512,
}

var modKeywords = map[string]operand.Mod{
	"to": operand.ModTo, "short": operand.ModShort,
	"near": operand.ModNear, "far": operand.ModFar,
	"strict": operand.ModStrict,
}

type prefixDef struct {
	slot insn.PrefixSlot
	p    insn.Prefix
}

var prefixTable = map[string]prefixDef{
	"wait":     {insn.SlotWait, insn.PrefWait},
	"lock":     {insn.SlotLock, insn.PrefLock},
	"rep":      {insn.SlotRep, insn.PrefRep},
	"repe":     {insn.SlotRep, insn.PrefRepe},
	"repz":     {insn.SlotRep, insn.PrefRepz},
	"repne":    {insn.SlotRep, insn.PrefRepne},
	"repnz":    {insn.SlotRep, insn.PrefRepnz},
	"xacquire": {insn.SlotRep, insn.PrefXacquire},
	"xrelease": {insn.SlotRep, insn.PrefXrelease},
	"bnd":      {insn.SlotRep, insn.PrefBnd},
	"nobnd":    {insn.SlotRep, insn.PrefNobnd},
	"o16":      {insn.SlotOSize, insn.PrefO16},
	"o32":      {insn.SlotOSize, insn.PrefO32},
	"o64":      {insn.SlotOSize, insn.PrefO64},
	"osp":      {insn.SlotOSize, insn.PrefOSP},
	"a16":      {insn.SlotASize, insn.PrefA16},
	"a32":      {insn.SlotASize, insn.PrefA32},
	"a64":      {insn.SlotASize, insn.PrefA64},
	"asp":      {insn.SlotASize, insn.PrefASP},
	"{vex2}":   {insn.SlotVex, insn.PrefVex2},
	"{vex3}":   {insn.SlotVex, insn.PrefVex3},
	"{evex}":   {insn.SlotVex, insn.PrefEvex},
}

// ParseLine parses one instruction line. Comments are stripped; an
// empty or comment-only line yields a nil instruction.
func (p *Parser) ParseLine(line string) (*insn.Instruction, error) {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	ins := &insn.Instruction{}

	// leading prefixes, then the mnemonic
	for {
		tok, rest := nextToken(line)
		if tok == "" {
			return nil, fmt.Errorf("expected instruction")
		}
		low := strings.ToLower(tok)
		if d, ok := prefixTable[low]; ok && rest != "" {
			if ins.Prefixes[d.slot] != insn.PrefNone {
				return nil, fmt.Errorf("conflicting instruction prefixes")
			}
			ins.Prefixes[d.slot] = d.p
			line = rest
			continue
		}
		if r := operand.LookupReg(low); r.Class() == operand.ClassSegment && rest != "" {
			if ins.Prefixes[insn.SlotSeg] != insn.PrefNone {
				return nil, fmt.Errorf("conflicting segment override prefixes")
			}
			ins.Prefixes[insn.SlotSeg] = insn.SegPrefix(r)
			line = rest
			continue
		}
		m, cc, ok := insn.Lookup(low)
		if !ok {
			return nil, fmt.Errorf("unknown instruction %q", tok)
		}
		ins.Opcode = m
		ins.Cond = cc
		line = rest
		break
	}

	for _, field := range splitOperands(line) {
		o, err := p.parseOperand(field)
		if err != nil {
			return nil, err
		}
		ins.Operands = append(ins.Operands, o)
	}
	if len(ins.Operands) > insn.MaxOperands {
		return nil, fmt.Errorf("too many operands")
	}
	return ins, nil
}

func nextToken(s string) (tok, rest string) {
	s = strings.TrimSpace(s)
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' {
			return s[:i], strings.TrimSpace(s[i:])
		}
	}
	return s, ""
}

// splitOperands splits on commas outside brackets and decorator braces.
func splitOperands(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(s[start:]))
	return out
}

func (p *Parser) parseOperand(s string) (operand.Operand, error) {
	var (
		size operand.Size
		mods operand.Mod
	)
	// leading size and modifier keywords
	for {
		tok, rest := nextToken(s)
		low := strings.ToLower(tok)
		if sz, ok := sizeKeywords[low]; ok && rest != "" {
			if size != 0 {
				return nil, fmt.Errorf("conflicting operand size")
			}
			size = sz
			s = rest
			continue
		}
		if m, ok := modKeywords[low]; ok && rest != "" {
			mods |= m
			s = rest
			continue
		}
		break
	}

	s, deco, err := p.splitDecorators(s)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("expected ] in effective address")
		}
		m, err := p.parseMemory(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		m.Size = size
		m.Mods = mods
		m.D = deco
		return m, nil
	}

	if r := operand.LookupReg(strings.ToLower(s)); r != operand.RegNone {
		if size != 0 && r.Size() != size {
			return nil, fmt.Errorf("register size conflict")
		}
		return &operand.Register{Reg: r, Mods: mods, D: deco}, nil
	}

	// seg:offset far pointer
	if i := strings.IndexByte(s, ':'); i >= 0 {
		segv, err := strconv.ParseUint(strings.TrimSpace(s[:i]), 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid far pointer segment %q", s[:i])
		}
		off, sym, err := p.value(strings.TrimSpace(s[i+1:]))
		if err != nil {
			return nil, err
		}
		if sym != nil {
			return nil, fmt.Errorf("far pointer offset must be constant")
		}
		return &operand.FarPointer{
			Segment: uint16(segv), Offset: off, Size: size, Mods: mods,
		}, nil
	}

	v, sym, err := p.value(s)
	if err != nil {
		return nil, err
	}
	imm := &operand.Immediate{Value: v, Size: size, Sym: sym, Mods: mods, D: deco}
	if p.Optimizing && sym == nil && mods&operand.ModStrict == 0 {
		imm.Fits = operand.FitsOf(v)
	}
	return imm, nil
}

// splitDecorators strips trailing {..} groups and returns the bare
// operand text with the collected decorators.
func (p *Parser) splitDecorators(s string) (string, operand.Decorators, error) {
	var d operand.Decorators
	for {
		s = strings.TrimSpace(s)
		i := strings.LastIndexByte(s, '{')
		if i < 0 || !strings.HasSuffix(s, "}") || strings.HasPrefix(s, "{") {
			return s, d, nil
		}
		body := strings.ToLower(s[i+1 : len(s)-1])
		switch {
		case body == "z":
			d.Zeroing = true
		case body == "sae":
			d.SAE = true
		case strings.HasSuffix(body, "-sae"):
			var rm operand.RoundMode
			switch body {
			case "rn-sae":
				rm = operand.RoundNearest
			case "rd-sae":
				rm = operand.RoundDown
			case "ru-sae":
				rm = operand.RoundUp
			case "rz-sae":
				rm = operand.RoundZero
			default:
				return "", d, fmt.Errorf("invalid rounding decorator {%s}", body)
			}
			d.ER = true
			d.Round = rm
		case strings.HasPrefix(body, "1to"):
			n, err := strconv.Atoi(body[3:])
			if err != nil || n <= 0 {
				return "", d, fmt.Errorf("invalid broadcast decorator {%s}", body)
			}
			d.Broadcast = uint8(n)
		default:
			r := operand.LookupReg(body)
			if r.Class() != operand.ClassMask || r.Val() == 0 {
				return "", d, fmt.Errorf("invalid decorator {%s}", body)
			}
			d.Mask = r
		}
		s = s[:i]
	}
}

// parseMemory parses the inside of a bracketed effective address.
func (p *Parser) parseMemory(s string) (*operand.Memory, error) {
	m := &operand.Memory{Base: operand.RegNone, Index: operand.RegNone,
		Segment: operand.RegNone, HintBase: operand.RegNone}

	s = strings.TrimSpace(s)
	// segment override: [es:di]
	if i := strings.IndexByte(s, ':'); i >= 0 {
		r := operand.LookupReg(strings.ToLower(strings.TrimSpace(s[:i])))
		if r.Class() != operand.ClassSegment {
			return nil, fmt.Errorf("invalid segment override")
		}
		m.Segment = r
		s = s[i+1:]
	}

	// leading keywords
	for {
		tok, rest := nextToken(s)
		switch low := strings.ToLower(tok); low {
		case "rel":
			m.Flags |= operand.EARel
		case "abs":
			m.Flags |= operand.EAAbs
		case "nosplit":
			m.Flags |= operand.EATimesTwo
		case "byte":
			m.Flags |= operand.EAByteOffs
		case "word", "dword", "qword":
			m.Flags |= operand.EAWordOffs
		default:
			goto terms
		}
		s = rest
	}

terms:
	for _, t := range splitTerms(s) {
		if err := p.addTerm(m, t.text, t.neg); err != nil {
			return nil, err
		}
	}
	return m, nil
}

type term struct {
	text string
	neg  bool
}

// splitTerms breaks "eax+ecx*4+8" into signed terms. A comma, the
// split spelling of a bound-checked base,index pair, separates terms
// like a plus.
func splitTerms(s string) []term {
	var out []term
	neg := false
	start := 0
	flush := func(end int) {
		if t := strings.TrimSpace(s[start:end]); t != "" {
			out = append(out, term{t, neg})
		}
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '+', ',':
			flush(i)
			neg = false
			start = i + 1
		case '-':
			flush(i)
			neg = true
			start = i + 1
		}
	}
	flush(len(s))
	return out
}

func (p *Parser) addTerm(m *operand.Memory, t string, neg bool) error {
	// reg, reg*scale or scale*reg
	var regPart, scalePart string
	if i := strings.IndexByte(t, '*'); i >= 0 {
		regPart = strings.TrimSpace(t[:i])
		scalePart = strings.TrimSpace(t[i+1:])
		if operand.LookupReg(strings.ToLower(scalePart)) != operand.RegNone {
			regPart, scalePart = scalePart, regPart
		}
	} else {
		regPart = t
	}

	if r := operand.LookupReg(strings.ToLower(regPart)); r != operand.RegNone {
		if neg {
			return fmt.Errorf("invalid effective address: negated register")
		}
		scale := 1
		if scalePart != "" {
			n, err := strconv.Atoi(scalePart)
			if err != nil {
				return fmt.Errorf("invalid scale %q", scalePart)
			}
			scale = n
			if scale == 1 && m.Hint == operand.HintNone {
				// an explicit *1 asks for the register to stay an index
				m.Hint = operand.HintNotBase
				m.HintBase = r
			}
		}
		switch {
		case (scalePart != "" && scale != 1) || m.Base != operand.RegNone:
			if m.Index != operand.RegNone {
				// a third register can still fold into the base slot
				if scale == 1 && m.Base == operand.RegNone {
					m.Base = r
					return nil
				}
				return fmt.Errorf("invalid effective address: too many registers")
			}
			m.Index = r
			m.Scale = scale
		default:
			m.Base = r
		}
		return nil
	}

	v, sym, err := p.value(t)
	if err != nil {
		return err
	}
	if sym != nil {
		if m.Sym != nil {
			return fmt.Errorf("invalid effective address: multiple symbols")
		}
		m.Sym = sym
	}
	if neg {
		v = -v
	}
	m.Disp += v
	return nil
}

// value resolves a numeric literal or a symbol reference.
func (p *Parser) value(s string) (int64, *operand.SymRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil, fmt.Errorf("expression expected")
	}
	if v, err := parseNumber(s); err == nil {
		return v, nil, nil
	}
	if p.Syms != nil {
		if v, sym, ok := p.Syms.Resolve(s); ok {
			return v, sym, nil
		}
	}
	return 0, nil, fmt.Errorf("symbol %q not defined", s)
}

func parseNumber(s string) (int64, error) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	low := strings.ToLower(s)
	var (
		v   uint64
		err error
	)
	switch {
	case strings.HasSuffix(low, "h") && !strings.HasPrefix(low, "0x"):
		v, err = strconv.ParseUint(strings.TrimPrefix(low[:len(low)-1], "0"), 16, 64)
	default:
		v, err = strconv.ParseUint(low, 0, 64)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		return -int64(v), nil
	}
	return int64(v), nil
}
