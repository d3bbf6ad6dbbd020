package encoder

import "github.com/asmforge/x86enc/template"

// disp8Scale returns the N of the EVEX disp8*N compression for the
// resolved tuple type: a byte displacement is stored as disp/N when it
// is an exact multiple. w is EVEX.W, b the broadcast flag, vl the
// vector length selector (0, 1, 2 for 128, 256, 512 bits).
func disp8Scale(tuple template.Tuple, w, b bool, vl int) int {
	if vl > 2 {
		vl = 2
	}
	switch tuple {
	case template.FV:
		if b {
			if w {
				return 8
			}
			return 4
		}
		return 16 << uint(vl)
	case template.HV:
		if b {
			return 4
		}
		return 8 << uint(vl)
	case template.FVM:
		return 16 << uint(vl)
	case template.T1S8:
		return 1
	case template.T1S16:
		return 2
	case template.T1S:
		if w {
			return 8
		}
		return 4
	case template.T1F32:
		return 4
	case template.T1F64:
		return 8
	case template.T2:
		if w {
			return 16
		}
		return 8
	case template.T4:
		if w {
			return 32
		}
		return 16
	case template.T8:
		return 32
	case template.HVM:
		return 8 << uint(vl)
	case template.QVM:
		return 4 << uint(vl)
	case template.OVM:
		return 2 << uint(vl)
	case template.M128:
		return 16
	case template.DUP:
		switch vl {
		case 0:
			return 8
		case 1:
			return 32
		default:
			return 64
		}
	}
	return 0
}
