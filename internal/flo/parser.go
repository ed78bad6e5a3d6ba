package flo

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
)

// ParseError reports a malformed Flo input line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func errorf(line int, format string, args ...interface{}) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// ParseFile parses the Flo file at path. A path of "-" reads standard input.
func ParseFile(path string) (*Program, error) {
	if path == "-" {
		return Parse(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a Flo program. Each line has the form
//
//	dest = op/width src...
//
// and the stream is required to be in dataflow order: every non-literal
// source must be the destination of an earlier line, except a register's
// next-value operand, which may be defined on a later line.
func Parse(r io.Reader) (*Program, error) {
	prog := &Program{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 || fields[1] != "=" {
			return nil, errorf(lineno, "expected \"dest = op args...\", got %q", line)
		}

		destName := fields[0]
		op, width, err := parseOpcodeToken(lineno, fields[2])
		if err != nil {
			return nil, err
		}

		if _, dup := prog.Node(destName); dup {
			return nil, errorf(lineno, "node %q defined twice", destName)
		}

		dest := prog.claimForward(destName)
		if dest == nil {
			dest = NewNode(destName, width)
		}
		dest.Width = width
		if op == OpMem {
			dest.Mem = true
			if len(fields) > 3 {
				depth, err := strconv.Atoi(fields[3])
				if err != nil || depth < 1 {
					return nil, errorf(lineno, "bad memory depth %q", fields[3])
				}
				dest.Depth = depth
			}
		}

		operation := &Operation{Op: op, Dest: dest, Line: lineno}
		if err := prog.resolveSources(lineno, operation, fields[3:]); err != nil {
			return nil, err
		}

		prog.addNode(dest)
		prog.Ops = append(prog.Ops, operation)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for name, ref := range prog.forward {
		return nil, errorf(ref.line, "use of undefined node %q", name)
	}

	prog.finish()
	return prog, nil
}

// parseOpcodeToken splits "op/width" and validates both halves. A missing
// width annotation defaults to a single bit, which is how reset lines are
// written.
func parseOpcodeToken(lineno int, tok string) (Opcode, int, error) {
	name := tok
	width := 1
	if idx := strings.IndexByte(tok, '/'); idx >= 0 {
		name = tok[:idx]
		w, err := strconv.Atoi(tok[idx+1:])
		if err != nil {
			return 0, 0, errorf(lineno, "bad width in %q", tok)
		}
		width = w
	}
	if width < 1 || width > 1<<16 {
		return 0, 0, errorf(lineno, "width %d out of range", width)
	}
	op, ok := ParseOpcode(name)
	if !ok {
		return 0, 0, errorf(lineno, "unknown opcode %q", name)
	}
	return op, width, nil
}

// resolveSources binds source tokens to nodes. Signal references resolve
// first so that literal operands can take their width from a sibling signal.
func (p *Program) resolveSources(lineno int, op *Operation, toks []string) error {
	op.Srcs = make([]*Node, len(toks))
	for i, tok := range toks {
		if tok[0] >= '0' && tok[0] <= '9' {
			continue
		}
		src, ok := p.Node(tok)
		if !ok {
			// A register's next value may be defined later; it is only read
			// during the register-update phase.
			if op.Op == OpReg {
				src = p.forwardNode(tok, op.Dest.Width, lineno)
			} else {
				return errorf(lineno, "use of undefined node %q", tok)
			}
		}
		op.Srcs[i] = src
	}
	for i, tok := range toks {
		if op.Srcs[i] != nil {
			continue
		}
		v, ok := new(big.Int).SetString(tok, 10)
		if !ok {
			return errorf(lineno, "bad literal %q", tok)
		}
		op.Srcs[i] = Literal(v, literalWidth(op, i))
	}
	return nil
}

// literalWidth picks the width a constant operand carries: comparisons take
// the width of the signal being compared, a mux condition is a single bit,
// and everything else runs at the destination width.
func literalWidth(op *Operation, idx int) int {
	switch op.Op {
	case OpEq, OpNeq, OpLt, OpGte:
		for _, s := range op.Srcs {
			if s != nil && !s.IsLiteral() {
				return s.Width
			}
		}
		return op.Dest.Width
	case OpMux:
		if idx == 0 {
			return 1
		}
		return op.Dest.Width
	default:
		return op.Dest.Width
	}
}
