package flo

import (
	"math/big"
	"testing"
)

func TestNodeExported(t *testing.T) {
	cases := []struct {
		name     string
		exported bool
	}{
		{"Top::io_out", true},
		{"Top::sub::reg", true},
		{"x", true},
		{"T0", false},
		{"T123", false},
		{"Txt", true},
		{"42", false},
	}
	for _, tc := range cases {
		n := NewNode(tc.name, 8)
		if got := n.Exported(); got != tc.exported {
			t.Errorf("Exported(%q) = %v, want %v", tc.name, got, tc.exported)
		}
	}
}

func TestNodeMangledName(t *testing.T) {
	cases := []struct {
		name    string
		mangled string
	}{
		{"Top::sub::reg", "Top__sub__reg"},
		{"Top::io_out", "Top__io_out"},
		{"x", "x"},
	}
	for _, tc := range cases {
		n := NewNode(tc.name, 1)
		if got := n.MangledName(); got != tc.mangled {
			t.Errorf("MangledName(%q) = %q, want %q", tc.name, got, tc.mangled)
		}
	}
}

func TestNodeChiselName(t *testing.T) {
	n := NewNode("Top::sub::reg", 1)
	if got := n.ChiselName(); got != "Top.sub.reg" {
		t.Errorf("ChiselName = %q, want %q", got, "Top.sub.reg")
	}
}

func TestNodeWords(t *testing.T) {
	cases := []struct {
		width int
		words int
	}{
		{1, 1},
		{63, 1},
		{64, 1},
		{65, 2},
		{128, 2},
		{129, 3},
		{1 << 16, 1024},
	}
	for _, tc := range cases {
		n := NewNode("Top::x", tc.width)
		if got := n.Words(); got != tc.words {
			t.Errorf("Words(width=%d) = %d, want %d", tc.width, got, tc.words)
		}
	}
}

func TestLiteralNode(t *testing.T) {
	n := Literal(big.NewInt(42), 8)
	if !n.IsLiteral() {
		t.Fatalf("literal node not recognized as literal")
	}
	if n.Exported() {
		t.Fatalf("literal node must not be exported")
	}
	if n.Name != "42" {
		t.Fatalf("literal name = %q, want %q", n.Name, "42")
	}
}

func TestVCDExported(t *testing.T) {
	mem := NewNode("Top::mem", 8)
	mem.Mem = true
	if mem.VCDExported() {
		t.Fatalf("memory nodes must not be VCD exported")
	}
	wire := NewNode("Top::wire", 8)
	if !wire.VCDExported() {
		t.Fatalf("exported wire must be VCD exported")
	}
}

func TestOperationString(t *testing.T) {
	a := NewNode("Top::a", 8)
	b := NewNode("Top::b", 8)
	d := NewNode("Top::c", 8)
	op := &Operation{Op: OpAdd, Dest: d, Srcs: []*Node{a, b}}
	want := "Top::c = add/8 Top::a Top::b"
	if got := op.String(); got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestOperationWriteback(t *testing.T) {
	exported := &Operation{Op: OpAdd, Dest: NewNode("Top::c", 8)}
	if !exported.Writeback() {
		t.Errorf("exported destination should write back")
	}
	temp := &Operation{Op: OpAdd, Dest: NewNode("T0", 8)}
	if temp.Writeback() {
		t.Errorf("temporary destination should not write back")
	}
	mem := &Operation{Op: OpAdd, Dest: &Node{Name: "Top::m", Width: 8, Depth: 4, Mem: true}}
	if mem.Writeback() {
		t.Errorf("memory destination should not write back")
	}
}

func TestOpcodeRoundTrip(t *testing.T) {
	for op, name := range opcodeNames {
		parsed, ok := ParseOpcode(name)
		if !ok || parsed != op {
			t.Errorf("ParseOpcode(%q) = %v, %v", name, parsed, ok)
		}
	}
	if _, ok := ParseOpcode("bogus"); ok {
		t.Errorf("ParseOpcode accepted an unknown mnemonic")
	}
	if op, ok := ParseOpcode("ADD"); !ok || op != OpAdd {
		t.Errorf("ParseOpcode is not case-insensitive")
	}
}
