// Package llvm lowers a Flo circuit program to a textual LLVM IR module
// implementing the combinational phase of one simulation cycle.
package llvm

import (
	"fmt"
	"io"

	"github.com/zhemao/flo-llvm/internal/codegen"
	"github.com/zhemao/flo-llvm/internal/flo"
)

// UnsupportedOpcodeError reports a Flo opcode the lowering table cannot
// compute.
type UnsupportedOpcodeError struct {
	Op flo.Opcode
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("unable to compute node: unsupported opcode %q", e.Op.String())
}

// Emit writes the IR module for prog: declarations for the external symbols
// the body calls into, then the clock_lo function lowered from the operation
// stream in dataflow order.
func Emit(prog *flo.Program, w io.Writer) error {
	out := codegen.NewWriter(w)

	voidTy := codegen.NewPrim(codegen.Void, "")
	charPtr := codegen.NewPtr("i8", "")

	printf := codegen.NewFunction(voidTy, "printf", charPtr, codegen.Vararg{})
	out.Declare(printf)

	memset := codegen.NewFunction(voidTy, "llvm.memset.p0i8.i64",
		charPtr,
		codegen.NewPrim(codegen.I8, ""),
		codegen.NewPrim(codegen.I64, ""),
		codegen.NewPrim(codegen.I32, ""),
		codegen.NewPrim(codegen.Bool, ""),
	)
	out.Declare(memset)

	// The accessor symbols are defined by the compat shim but still need
	// declarations so LLVM can check their types.
	for _, n := range prog.Nodes {
		if !n.Exported() || n.Mem {
			continue
		}
		out.Declare(getFunc(n))
		out.Declare(setFunc(n))
	}

	dut := codegen.NewPtr("void", "dut")
	rst := codegen.NewPrim(codegen.Bool, "rst")
	clockLo := codegen.NewFunction(voidTy,
		fmt.Sprintf("_llvmflo_%s_clock_lo", prog.Class), dut, rst)

	lo, err := out.Define(clockLo, []codegen.Value{dut, rst})
	if err != nil {
		return err
	}

	for _, op := range prog.Ops {
		if err := lowerOperation(lo, op, dut, rst); err != nil {
			return err
		}
	}

	lo.Close()
	return nil
}

// lowerOperation emits the expansion of a single Flo operation: a comment
// header, the primary computation, and the writeback marshalling when the
// destination lives in host memory.
func lowerOperation(lo *codegen.Definition, op *flo.Operation, dut codegen.Ptr, rst codegen.Prim) error {
	lo.Comment("")
	lo.Comment(" *** Chisel Node: %s", op)
	lo.Comment("")

	words := op.Dest.Words()
	width := op.Width()
	dv := fixValue(op.Dest)

	// Marshal-in operations have no combinational computation of their own;
	// their value is fetched from host storage, so no writeback follows.
	nop := false

	switch op.Op {
	case flo.OpOut, flo.OpMov:
		lo.Operate(codegen.MovOp(dv, fixValue(op.Srcs[0])))

	case flo.OpAdd:
		lo.Operate(codegen.AddOp(dv, fixValue(op.Srcs[0]), fixValue(op.Srcs[1])))

	case flo.OpSub:
		lo.Operate(codegen.SubOp(dv, fixValue(op.Srcs[0]), fixValue(op.Srcs[1])))

	case flo.OpAnd:
		lo.Operate(codegen.AndOp(dv, fixValue(op.Srcs[0]), fixValue(op.Srcs[1])))

	case flo.OpOr:
		lo.Operate(codegen.OrOp(dv, fixValue(op.Srcs[0]), fixValue(op.Srcs[1])))

	case flo.OpXor:
		lo.Operate(codegen.XorOp(dv, fixValue(op.Srcs[0]), fixValue(op.Srcs[1])))

	case flo.OpNot:
		lo.Operate(codegen.NotOp(dv, fixValue(op.Srcs[0])))

	case flo.OpMul:
		se := lo.Fix(width)
		te := lo.Fix(width)
		lo.Operate(codegen.ZextOp(se, fixValue(op.Srcs[0])))
		lo.Operate(codegen.ZextOp(te, fixValue(op.Srcs[1])))
		lo.Operate(codegen.MulOp(dv, se, te))

	case flo.OpCat, flo.OpCatD:
		se := lo.Fix(width)
		te := lo.Fix(width)
		lo.Operate(codegen.ZextOp(se, fixValue(op.Srcs[0])))
		lo.Operate(codegen.ZextOp(te, fixValue(op.Srcs[1])))

		ss := lo.Fix(width)
		lo.Operate(codegen.ShlOp(ss, se, codegen.ConstInt(64, int64(op.Srcs[1].Width))))

		lo.Operate(codegen.OrOp(dv, te, ss))

	case flo.OpEq:
		lo.Operate(codegen.CmpEqOp(dv, fixValue(op.Srcs[0]), fixValue(op.Srcs[1])))

	case flo.OpNeq:
		lo.Operate(codegen.CmpNeqOp(dv, fixValue(op.Srcs[0]), fixValue(op.Srcs[1])))

	case flo.OpLt:
		lo.Operate(codegen.CmpLtOp(dv, fixValue(op.Srcs[0]), fixValue(op.Srcs[1])))

	case flo.OpGte:
		lo.Operate(codegen.CmpGteOp(dv, fixValue(op.Srcs[0]), fixValue(op.Srcs[1])))

	case flo.OpLsh:
		es := lo.Fix(width)
		et := lo.Fix(width)
		lo.Operate(codegen.ZextOp(es, fixValue(op.Srcs[0])))
		lo.Operate(codegen.ZextOp(et, fixValue(op.Srcs[1])))
		lo.Operate(codegen.ShlOp(dv, es, et))

	case flo.OpRsh:
		// Right shifts work at the source width, then retarget to the
		// destination width.
		srcWidth := op.Srcs[0].Width
		cast := lo.Fix(srcWidth)
		lo.Operate(codegen.ZextTruncOp(cast, fixValue(op.Srcs[1])))

		shifted := lo.Fix(srcWidth)
		lo.Operate(codegen.LshrOp(shifted, fixValue(op.Srcs[0]), cast))
		lo.Operate(codegen.ZextTruncOp(dv, shifted))

	case flo.OpMux:
		lo.Operate(codegen.MuxOp(dv,
			fixValue(op.Srcs[0]),
			fixValue(op.Srcs[1]),
			fixValue(op.Srcs[2]),
		))

	case flo.OpRst:
		lo.Operate(codegen.UnsafeMovOp(dv, rst))

	case flo.OpIn, flo.OpReg:
		nop = true
		marshalIn(lo, op, dut, dv)

	default:
		return &UnsupportedOpcodeError{Op: op.Op}
	}

	if op.Writeback() && !nop {
		writeback(lo, op, dut, dv, words)
	}
	return nil
}

// marshalIn fetches the node's stored value out of host memory through the
// exported getter and reassembles it from 64-bit cells into one SSA value.
func marshalIn(lo *codegen.Definition, op *flo.Operation, dut codegen.Ptr, dv codegen.Fix) {
	words := op.Dest.Words()
	width := op.Width()

	cells := lo.Ptr("i64")
	lo.Operate(codegen.AllocaOp(cells, codegen.ConstInt(32, int64(words))))
	lo.Operate(codegen.CallOp(getFunc(op.Dest), dut, cells))

	// This series of shift/or operations will probably be compiled into
	// NOPs by the LLVM optimizer.
	ptrs := make([]codegen.Ptr, words)
	for i := 0; i < words; i++ {
		ptrs[i] = lo.Ptr("i64")
		lo.Operate(codegen.IndexOp(ptrs[i], cells, codegen.ConstInt(32, int64(i))))
	}

	loads := make([]codegen.Prim, words)
	for i := 0; i < words; i++ {
		loads[i] = lo.Prim(codegen.I64)
		lo.Operate(codegen.LoadOp(loads[i], ptrs[i]))
	}

	extended := make([]codegen.Fix, words)
	for i := 0; i < words; i++ {
		extended[i] = lo.Fix(width)
		lo.Operate(codegen.ZextTruncOp(extended[i], loads[i]))
	}

	shifted := make([]codegen.Fix, words)
	for i := 0; i < words; i++ {
		shifted[i] = lo.Fix(width)
		lo.Operate(codegen.ShlOp(shifted[i], extended[i], codegen.ConstInt(32, int64(i*64))))
	}

	ored := make([]codegen.Fix, words)
	for i := 0; i < words; i++ {
		ored[i] = lo.Fix(width)
		if i == 0 {
			lo.Operate(codegen.MovOp(ored[i], shifted[i]))
		} else {
			lo.Operate(codegen.OrOp(ored[i], shifted[i], ored[i-1]))
		}
	}

	lo.Operate(codegen.MovOp(dv, ored[words-1]))
}

// writeback splits the computed value into 64-bit cells and hands them to
// the exported setter.
func writeback(lo *codegen.Definition, op *flo.Operation, dut codegen.Ptr, dv codegen.Fix, words int) {
	lo.Comment("  Writeback")

	cells := lo.Ptr("i64")
	lo.Operate(codegen.AllocaOp(cells, codegen.ConstInt(32, int64(words))))

	shifted := make([]codegen.Fix, words)
	for i := 0; i < words; i++ {
		shifted[i] = lo.Fix(op.Dest.Width)
		lo.Operate(codegen.LshrOp(shifted[i], dv, codegen.ConstInt(32, int64(i*64))))
	}

	trunced := make([]codegen.Prim, words)
	for i := 0; i < words; i++ {
		trunced[i] = lo.Prim(codegen.I64)
		lo.Operate(codegen.ZextTruncOp(trunced[i], shifted[i]))
	}

	ptrs := make([]codegen.Ptr, words)
	for i := 0; i < words; i++ {
		ptrs[i] = lo.Ptr("i64")
		lo.Operate(codegen.IndexOp(ptrs[i], cells, codegen.ConstInt(32, int64(i))))
	}

	for i := 0; i < words; i++ {
		lo.Operate(codegen.StoreOp(ptrs[i], trunced[i]))
	}

	lo.Operate(codegen.CallOp(setFunc(op.Dest), dut, cells))
}

func fixValue(n *flo.Node) codegen.Fix {
	return codegen.NewFix(n.MangledName(), n.Width)
}

func getFunc(n *flo.Node) codegen.Function {
	return accessor(n, "get")
}

func setFunc(n *flo.Node) codegen.Function {
	return accessor(n, "set")
}

func accessor(n *flo.Node, which string) codegen.Function {
	return codegen.NewFunction(
		codegen.NewPrim(codegen.Void, ""),
		fmt.Sprintf("_llvmflo_%s_%s", n.MangledName(), which),
		codegen.NewPtr("void", ""),
		codegen.NewPtr("i64", ""),
	)
}
