package passes

import (
	"io"
	"strings"
	"testing"

	"github.com/zhemao/flo-llvm/internal/diag"
	"github.com/zhemao/flo-llvm/internal/flo"
)

func parse(t *testing.T, input string) *flo.Program {
	t.Helper()
	prog, err := flo.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func runChecker(t *testing.T, input string) error {
	t.Helper()
	prog := parse(t, input)
	reporter := diag.NewReporter(io.Discard, "text")
	mgr := NewManager()
	mgr.Add(NewChecker(reporter))
	return mgr.Run(prog)
}

func TestCheckerAcceptsWellFormedProgram(t *testing.T) {
	input := `
Counter::reset = rst
Counter::c = reg/8 1 Counter::T0
Counter::T0 = add/8 Counter::c 1
Counter::cmp = eq/1 Counter::c 3
Counter::sel = mux/8 Counter::cmp Counter::T0 Counter::c
Counter::io_out = out/8 Counter::sel
`
	if err := runChecker(t, input); err != nil {
		t.Fatalf("checker rejected a valid program: %v", err)
	}
}

func TestCheckerRejectsWidthMismatch(t *testing.T) {
	prog := parse(t, "Top::a = in/8\nTop::b = in/4\nTop::c = add/8 Top::a Top::b\n")
	var sink strings.Builder
	reporter := diag.NewReporter(&sink, "text")
	if err := NewChecker(reporter).Run(prog); err == nil {
		t.Fatalf("checker accepted mismatched add widths")
	}
	if !strings.Contains(sink.String(), "4 bits wide, want 8") {
		t.Errorf("diagnostic missing width detail: %s", sink.String())
	}
}

func TestCheckerRejectsWideComparisonDestination(t *testing.T) {
	prog := parse(t, "Top::a = in/8\nTop::b = in/8\nTop::c = eq/4 Top::a Top::b\n")
	reporter := diag.NewReporter(io.Discard, "text")
	if err := NewChecker(reporter).Run(prog); err == nil {
		t.Fatalf("checker accepted a 4-bit comparison result")
	}
}

func TestCheckerRejectsMuxCondWidth(t *testing.T) {
	prog := parse(t, "Top::a = in/8\nTop::b = in/8\nTop::k = in/2\nTop::c = mux/8 Top::k Top::a Top::b\n")
	reporter := diag.NewReporter(io.Discard, "text")
	if err := NewChecker(reporter).Run(prog); err == nil {
		t.Fatalf("checker accepted a 2-bit mux condition")
	}
}

func TestCheckerRejectsBadArity(t *testing.T) {
	prog := parse(t, "Top::a = in/8\nTop::c = add/8 Top::a\n")
	reporter := diag.NewReporter(io.Discard, "text")
	if err := NewChecker(reporter).Run(prog); err == nil {
		t.Fatalf("checker accepted a one-operand add")
	}
}

func TestCheckerAllowsRegisterForwardReference(t *testing.T) {
	input := "Counter::c = reg/8 1 Counter::T0\nCounter::T0 = add/8 Counter::c 1\n"
	if err := runChecker(t, input); err != nil {
		t.Fatalf("checker rejected a register forward reference: %v", err)
	}
}

func TestManagerStopsAtFirstFailure(t *testing.T) {
	prog := parse(t, "Top::a = in/8\n")
	mgr := NewManager()
	mgr.Add(failing{})
	mgr.Add(recording{t: t})
	if err := mgr.Run(prog); err == nil {
		t.Fatalf("manager swallowed a pass failure")
	}
}

type failing struct{}

func (failing) Name() string           { return "failing" }
func (failing) Run(*flo.Program) error { return errTest }

type recording struct{ t *testing.T }

func (recording) Name() string { return "recording" }
func (r recording) Run(*flo.Program) error {
	r.t.Fatalf("pass after a failure must not run")
	return nil
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "boom" }
