package codegen

import (
	"fmt"
	"io"
	"strings"
)

// Writer emits a textual LLVM IR module to an output sink. It performs no
// type checking beyond what the value categories structurally encode.
type Writer struct {
	w io.Writer
}

// NewWriter wraps an output sink.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// ArityMismatchError reports a Define call whose parameter count differs
// from the signature's arity.
type ArityMismatchError struct {
	Func string
	Want int
	Got  int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("define @%s: %d parameters bound to a %d-argument signature",
		e.Func, e.Got, e.Want)
}

// Declare emits a prototype-only declaration for fn.
func (w *Writer) Declare(fn Function) {
	types := make([]string, 0, len(fn.Args()))
	for _, a := range fn.Args() {
		types = append(types, a.Type())
	}
	fmt.Fprintf(w.w, "declare %s @%s(%s)\n", fn.Ret(), fn.Sym(), strings.Join(types, ", "))
}

// Define opens a function body binding the given parameter values to the
// signature's arguments, and returns the handle used to emit the body.
func (w *Writer) Define(fn Function, params []Value) (*Definition, error) {
	if fn.Arity() != len(params) {
		return nil, &ArityMismatchError{Func: fn.Sym(), Want: fn.Arity(), Got: len(params)}
	}
	parts := make([]string, 0, len(params))
	for i, p := range params {
		parts = append(parts, fmt.Sprintf("%s %s", fn.Args()[i].Type(), p.Ref()))
	}
	fmt.Fprintf(w.w, "define %s @%s(%s)\n{\n", fn.Ret(), fn.Sym(), strings.Join(parts, ", "))
	return &Definition{w: w}, nil
}

// Definition is an open function body. Temporary values created through it
// take names from a counter scoped to the definition, so output is stable
// under reordering of unrelated definitions.
type Definition struct {
	w   *Writer
	tmp int
}

// Comment emits a comment line inside the body.
func (d *Definition) Comment(format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	if text == "" {
		fmt.Fprintf(d.w.w, "  ;\n")
		return
	}
	fmt.Fprintf(d.w.w, "  ; %s\n", text)
}

// Operate emits one instruction.
func (d *Definition) Operate(op Op) {
	fmt.Fprintf(d.w.w, "  %s\n", op.Text())
}

// Close terminates the function and emits the closing brace.
func (d *Definition) Close() {
	fmt.Fprintf(d.w.w, "  ret void\n}\n\n")
}

func (d *Definition) fresh() string {
	name := fmt.Sprintf("tmp%d", d.tmp)
	d.tmp++
	return name
}

// Fix creates a fresh fixed-width temporary.
func (d *Definition) Fix(width int) Fix {
	return Fix{width: width, name: d.fresh(), temp: true}
}

// Prim creates a fresh primitive temporary.
func (d *Definition) Prim(kind PrimKind) Prim {
	return NewPrim(kind, d.fresh())
}

// Ptr creates a fresh pointer temporary to the given element type.
func (d *Definition) Ptr(elem string) Ptr {
	return NewPtr(elem, d.fresh())
}
