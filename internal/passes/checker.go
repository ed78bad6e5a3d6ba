package passes

import (
	"fmt"

	"github.com/zhemao/flo-llvm/internal/diag"
	"github.com/zhemao/flo-llvm/internal/flo"
)

// Checker re-verifies the contract the parser promises before any code is
// generated: dataflow order, operand arity, and the width rules each opcode
// implies.
type Checker struct {
	reporter *diag.Reporter
}

// NewChecker constructs the pass. reporter is optional.
func NewChecker(reporter *diag.Reporter) *Checker {
	return &Checker{reporter: reporter}
}

// Name implements the Pass interface.
func (c *Checker) Name() string {
	return "program-check"
}

// Run executes the pass.
func (c *Checker) Run(prog *flo.Program) error {
	defined := make(map[*flo.Node]bool, len(prog.Ops))
	for _, op := range prog.Ops {
		c.checkSources(op, defined)
		c.checkWidths(op)
		defined[op.Dest] = true
	}
	if c.reporter != nil && c.reporter.HasErrors() {
		return fmt.Errorf("program check reported errors")
	}
	return nil
}

func (c *Checker) checkSources(op *flo.Operation, defined map[*flo.Node]bool) {
	// Register next-values are read during the register-update phase, so
	// they may legitimately come from later lines.
	if op.Op == flo.OpReg {
		return
	}
	for _, s := range op.Srcs {
		if s.IsLiteral() {
			continue
		}
		if !defined[s] {
			c.report(op, fmt.Sprintf("operand %q is not defined by an earlier operation", s.Name))
		}
	}
}

func (c *Checker) checkWidths(op *flo.Operation) {
	w := op.Width()
	switch op.Op {
	case flo.OpAdd, flo.OpSub, flo.OpAnd, flo.OpOr, flo.OpXor:
		if !c.arity(op, 2) {
			return
		}
		c.sameWidth(op, op.Srcs[0], w)
		c.sameWidth(op, op.Srcs[1], w)
	case flo.OpNot, flo.OpOut, flo.OpMov:
		if !c.arity(op, 1) {
			return
		}
		c.sameWidth(op, op.Srcs[0], w)
	case flo.OpMul, flo.OpCat, flo.OpCatD:
		if !c.arity(op, 2) {
			return
		}
		c.atMostWidth(op, op.Srcs[0], w)
		c.atMostWidth(op, op.Srcs[1], w)
	case flo.OpEq, flo.OpNeq, flo.OpLt, flo.OpGte:
		if !c.arity(op, 2) {
			return
		}
		if w != 1 {
			c.report(op, fmt.Sprintf("comparison destination is %d bits wide, want 1", w))
		}
		if op.Srcs[0].Width != op.Srcs[1].Width {
			c.report(op, fmt.Sprintf("comparison operands are %d and %d bits wide",
				op.Srcs[0].Width, op.Srcs[1].Width))
		}
	case flo.OpLsh:
		if !c.arity(op, 2) {
			return
		}
		c.atMostWidth(op, op.Srcs[0], w)
	case flo.OpRsh:
		c.arity(op, 2)
	case flo.OpMux:
		if !c.arity(op, 3) {
			return
		}
		c.sameWidth(op, op.Srcs[0], 1)
		c.sameWidth(op, op.Srcs[1], w)
		c.sameWidth(op, op.Srcs[2], w)
	case flo.OpIn, flo.OpRst:
		c.arity(op, 0)
	case flo.OpReg:
		if !c.arity(op, 2) {
			return
		}
		c.sameWidth(op, op.Srcs[1], w)
	default:
		// Opcodes outside the lowering table are rejected by the emitter,
		// which names them in its diagnostic.
	}
}

func (c *Checker) arity(op *flo.Operation, want int) bool {
	if len(op.Srcs) != want {
		c.report(op, fmt.Sprintf("%s takes %d operands, got %d", op.Op, want, len(op.Srcs)))
		return false
	}
	return true
}

func (c *Checker) sameWidth(op *flo.Operation, s *flo.Node, want int) {
	if s.Width != want {
		c.report(op, fmt.Sprintf("operand %q is %d bits wide, want %d", s.Name, s.Width, want))
	}
}

func (c *Checker) atMostWidth(op *flo.Operation, s *flo.Node, max int) {
	if s.Width > max {
		c.report(op, fmt.Sprintf("operand %q is %d bits wide, wider than the %d-bit result",
			s.Name, s.Width, max))
	}
}

func (c *Checker) report(op *flo.Operation, msg string) {
	if c.reporter == nil {
		return
	}
	c.reporter.Errorp(op.Line, fmt.Sprintf("%s: %s", op, msg))
}
