package encoder

import (
	"fmt"

	"github.com/asmforge/x86enc/insn"
)

// prefixLen counts the legacy prefix bytes the instruction will carry.
func (c *Context) prefixLen(r *Resolved) (int, error) {
	n := 0
	err := c.emitPrefixes(r, func(byte) { n++ })
	return n, err
}

// emitPrefixes walks the prefix slots in emission order and hands each
// resulting byte to emit.
func (c *Context) emitPrefixes(r *Resolved, emit func(byte)) error {
	for slot := insn.PrefixSlot(0); slot < insn.NumPrefixSlots; slot++ {
		var b byte
		switch p := r.prefixes[slot]; p {
		case insn.PrefNone, insn.PrefNobnd:
			continue
		case insn.PrefWait:
			b = 0x9b
		case insn.PrefLock:
			b = 0xf0
		case insn.PrefXacquire, insn.PrefRepne, insn.PrefRepnz, insn.PrefBnd:
			b = 0xf2
		case insn.PrefXrelease, insn.PrefRep, insn.PrefRepe, insn.PrefRepz:
			b = 0xf3
		case insn.PrefES:
			b = 0x26
			c.warnSeg64(r, p)
		case insn.PrefCS:
			b = 0x2e
			c.warnSeg64(r, p)
		case insn.PrefSS:
			b = 0x36
			c.warnSeg64(r, p)
		case insn.PrefDS:
			b = 0x3e
			c.warnSeg64(r, p)
		case insn.PrefFS:
			b = 0x64
		case insn.PrefGS:
			b = 0x65
		case insn.PrefSegR6, insn.PrefSegR7:
			return fmt.Errorf("segr6 and segr7 cannot be used as prefixes")
		case insn.PrefO16:
			if r.bits == 16 {
				continue
			}
			b = 0x66
		case insn.PrefO32:
			if r.bits != 16 {
				continue
			}
			b = 0x66
		case insn.PrefO64:
			// carried by REX.W
			continue
		case insn.PrefOSP:
			b = 0x66
		case insn.PrefA16:
			if r.bits == 64 {
				return fmt.Errorf("16-bit addressing is not supported in 64-bit mode")
			}
			if r.bits == 16 {
				continue
			}
			b = 0x67
		case insn.PrefA32:
			if r.bits == 32 {
				continue
			}
			b = 0x67
		case insn.PrefA64:
			if r.bits != 64 {
				return fmt.Errorf("64-bit addressing is only available in 64-bit mode")
			}
			continue
		case insn.PrefASP:
			b = 0x67
		case insn.PrefVex2, insn.PrefVex3, insn.PrefEvex:
			// encoding selectors, not bytes
			continue
		default:
			return fmt.Errorf("invalid instruction prefix %q", p)
		}
		emit(b)
	}
	return nil
}

func (c *Context) warnSeg64(r *Resolved, p insn.Prefix) {
	if r.bits == 64 {
		c.warnf("%s segment base generated, but will be ignored in 64-bit mode", p)
	}
}
