package codegen

import (
	"fmt"
	"strings"
)

// Op is one rendered instruction.
type Op interface {
	Text() string
}

type line string

func (l line) Text() string { return string(l) }

// binary renders the common three-address form: the operand type is taken
// from the first source, as all same-width encodings require matching
// operand types.
func binary(mnem string, dest, s, t Value) Op {
	return line(fmt.Sprintf("%s = %s %s %s, %s", dest.Ref(), mnem, s.Type(), s.Ref(), t.Ref()))
}

// AddOp emits an integer addition.
func AddOp(dest, s, t Value) Op { return binary("add", dest, s, t) }

// SubOp emits an integer subtraction.
func SubOp(dest, s, t Value) Op { return binary("sub", dest, s, t) }

// MulOp emits an integer multiplication.
func MulOp(dest, s, t Value) Op { return binary("mul", dest, s, t) }

// AndOp emits a bitwise and.
func AndOp(dest, s, t Value) Op { return binary("and", dest, s, t) }

// OrOp emits a bitwise or.
func OrOp(dest, s, t Value) Op { return binary("or", dest, s, t) }

// XorOp emits a bitwise xor.
func XorOp(dest, s, t Value) Op { return binary("xor", dest, s, t) }

// NotOp emits a bitwise complement, which LLVM spells as xor with all ones.
func NotOp(dest, s Value) Op {
	return line(fmt.Sprintf("%s = xor %s %s, -1", dest.Ref(), s.Type(), s.Ref()))
}

// MovOp copies a value by adding zero; LLVM has no register move.
func MovOp(dest, s Value) Op {
	return line(fmt.Sprintf("%s = add %s %s, 0", dest.Ref(), s.Type(), s.Ref()))
}

// UnsafeMovOp copies across value categories of the same underlying integer
// type, e.g. a host bool into a one-bit fix.
func UnsafeMovOp(dest, s Value) Op {
	return line(fmt.Sprintf("%s = add %s %s, 0", dest.Ref(), s.Type(), s.Ref()))
}

// ShlOp emits a logical left shift. The amount is either a literal or a
// value of the operand's width.
func ShlOp(dest, s, amount Value) Op { return binary("shl", dest, s, amount) }

// LshrOp emits a logical right shift.
func LshrOp(dest, s, amount Value) Op { return binary("lshr", dest, s, amount) }

func cmp(pred string, dest, s, t Value) Op {
	return line(fmt.Sprintf("%s = icmp %s %s %s, %s", dest.Ref(), pred, s.Type(), s.Ref(), t.Ref()))
}

// CmpEqOp emits an equality compare into a one-bit destination.
func CmpEqOp(dest, s, t Value) Op { return cmp("eq", dest, s, t) }

// CmpNeqOp emits an inequality compare.
func CmpNeqOp(dest, s, t Value) Op { return cmp("ne", dest, s, t) }

// CmpLtOp emits an unsigned less-than compare.
func CmpLtOp(dest, s, t Value) Op { return cmp("ult", dest, s, t) }

// CmpGteOp emits an unsigned greater-or-equal compare.
func CmpGteOp(dest, s, t Value) Op { return cmp("uge", dest, s, t) }

// MuxOp emits a three-operand select.
func MuxOp(dest, cond, t, u Value) Op {
	return line(fmt.Sprintf("%s = select %s %s, %s %s, %s %s",
		dest.Ref(), cond.Type(), cond.Ref(), t.Type(), t.Ref(), u.Type(), u.Ref()))
}

// ZextOp zero-extends s to the destination width. Equal widths degenerate to
// a copy, as LLVM rejects same-width casts.
func ZextOp(dest, s Value) Op {
	if bits(s) == bits(dest) {
		return MovOp(dest, s)
	}
	return line(fmt.Sprintf("%s = zext %s %s to %s", dest.Ref(), s.Type(), s.Ref(), dest.Type()))
}

// ZextTruncOp retargets s to the destination width, zero-extending or
// truncating as needed.
func ZextTruncOp(dest, s Value) Op {
	sw, dw := bits(s), bits(dest)
	switch {
	case sw < dw:
		return line(fmt.Sprintf("%s = zext %s %s to %s", dest.Ref(), s.Type(), s.Ref(), dest.Type()))
	case sw > dw:
		return line(fmt.Sprintf("%s = trunc %s %s to %s", dest.Ref(), s.Type(), s.Ref(), dest.Type()))
	default:
		return MovOp(dest, s)
	}
}

// AllocaOp reserves count stack cells of the pointer's element type.
func AllocaOp(dest Ptr, count Value) Op {
	return line(fmt.Sprintf("%s = alloca %s, %s %s", dest.Ref(), dest.Elem(), count.Type(), count.Ref()))
}

// LoadOp loads through a pointer.
func LoadOp(dest Value, p Ptr) Op {
	return line(fmt.Sprintf("%s = load %s, %s %s", dest.Ref(), dest.Type(), p.Type(), p.Ref()))
}

// StoreOp stores through a pointer.
func StoreOp(p Ptr, v Value) Op {
	return line(fmt.Sprintf("store %s %s, %s %s", v.Type(), v.Ref(), p.Type(), p.Ref()))
}

// IndexOp computes the address of cell idx, GEP style.
func IndexOp(dest Ptr, base Ptr, idx Value) Op {
	return line(fmt.Sprintf("%s = getelementptr %s, %s %s, %s %s",
		dest.Ref(), base.Elem(), base.Type(), base.Ref(), idx.Type(), idx.Ref()))
}

// CallOp invokes a declared function. A void callee produces no destination.
func CallOp(fn Function, args ...Value) Op {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, fmt.Sprintf("%s %s", a.Type(), a.Ref()))
	}
	return line(fmt.Sprintf("call %s @%s(%s)", fn.Ret(), fn.Sym(), strings.Join(parts, ", ")))
}
