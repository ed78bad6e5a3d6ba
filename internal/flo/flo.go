package flo

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// Program is a parsed Flo circuit: a class name, the nodes in declaration
// order, and the operations in dataflow order.
type Program struct {
	Class string
	Nodes []*Node
	Ops   []*Operation

	byName  map[string]*Node
	forward map[string]*forwardRef
}

// forwardRef tracks a register next-value operand used before its defining
// line. Registers are state, so the scheduler places them ahead of their
// input cone; every other opcode's operands obey strict dataflow order.
type forwardRef struct {
	node *Node
	line int
}

// Node is a named signal with a fixed bit width. Constant literals appearing
// as operands are modelled as nodes whose name is the decimal literal.
type Node struct {
	Name  string
	Width int
	Depth int
	Mem   bool

	vcd string
}

// Operation is one line of the Flo program.
type Operation struct {
	Op   Opcode
	Dest *Node
	Srcs []*Node
	Line int
}

// NewNode constructs a signal node of the given width.
func NewNode(name string, width int) *Node {
	return &Node{Name: name, Width: width, Depth: 1}
}

// Literal wraps a constant value as a node whose name is the decimal literal.
func Literal(v *big.Int, width int) *Node {
	return &Node{Name: v.String(), Width: width, Depth: 1}
}

// IsLiteral reports whether the node encodes an integer literal.
func (n *Node) IsLiteral() bool {
	return len(n.Name) > 0 && n.Name[0] >= '0' && n.Name[0] <= '9'
}

// Exported reports whether the node is reachable from the public signal
// table. Literals and the front-end's generated temporaries ("T0", "T1", …)
// are not.
func (n *Node) Exported() bool {
	return !n.IsLiteral() && !isTemp(n.Name)
}

// isTemp matches the temporary names the Chisel front-end invents: a "T"
// followed by nothing but digits.
func isTemp(name string) bool {
	if len(name) < 2 || name[0] != 'T' {
		return false
	}
	for i := 1; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}

// VCDExported reports whether the node shows up in waveform output.
func (n *Node) VCDExported() bool {
	return n.Exported() && !n.Mem
}

// MangledName returns the host-language identifier for the node: the
// hierarchical separators collapse to underscores.
func (n *Node) MangledName() string {
	mangled := strings.ReplaceAll(n.Name, "::", "__")
	return strings.ReplaceAll(mangled, ":", "_")
}

// ChiselName returns the dotted form used by the emulator's string lookup
// tables.
func (n *Node) ChiselName() string {
	return strings.ReplaceAll(n.Name, "::", ".")
}

// VCDName returns the compact identifier assigned for waveform output.
func (n *Node) VCDName() string {
	return n.vcd
}

// Words returns the number of 64-bit words the node's value occupies when
// marshalled across the host boundary.
func (n *Node) Words() int {
	return (n.Width + 63) / 64
}

// Width returns the destination width of the operation.
func (op *Operation) Width() int {
	return op.Dest.Width
}

// Writeback reports whether the computed value must be stored back into
// host-language memory after the combinational phase.
func (op *Operation) Writeback() bool {
	return op.Dest.Exported() && !op.Dest.Mem
}

// String renders the operation in its source form, e.g. "c = add/8 a b".
func (op *Operation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s/%d", op.Dest.Name, op.Op, op.Dest.Width)
	for _, s := range op.Srcs {
		b.WriteByte(' ')
		b.WriteString(s.Name)
	}
	return b.String()
}

// Node looks up a declared node by name.
func (p *Program) Node(name string) (*Node, bool) {
	n, ok := p.byName[name]
	return n, ok
}

// NodesAlpha returns the nodes sorted by hierarchical name. The VCD header
// walks modules in this order.
func (p *Program) NodesAlpha() []*Node {
	nodes := make([]*Node, len(p.Nodes))
	copy(nodes, p.Nodes)
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Name < nodes[j].Name
	})
	return nodes
}

// forwardNode hands out (and memoizes) the placeholder for a name that has
// not been defined yet.
func (p *Program) forwardNode(name string, width, line int) *Node {
	if ref, ok := p.forward[name]; ok {
		return ref.node
	}
	if p.forward == nil {
		p.forward = make(map[string]*forwardRef)
	}
	n := NewNode(name, width)
	p.forward[name] = &forwardRef{node: n, line: line}
	return n
}

// claimForward resolves a pending placeholder when its defining line
// arrives, so earlier references share the defined node.
func (p *Program) claimForward(name string) *Node {
	ref, ok := p.forward[name]
	if !ok {
		return nil
	}
	delete(p.forward, name)
	return ref.node
}

func (p *Program) addNode(n *Node) {
	if p.byName == nil {
		p.byName = make(map[string]*Node)
	}
	p.Nodes = append(p.Nodes, n)
	p.byName[n.Name] = n
}

// finish derives the class name and assigns VCD identifiers once all nodes
// are known. Identifiers follow declaration order so output is stable.
func (p *Program) finish() {
	vcd := 0
	fallback := ""
	for _, n := range p.Nodes {
		if n.Exported() {
			if idx := strings.Index(n.Name, "::"); idx >= 0 {
				if p.Class == "" {
					p.Class = n.Name[:idx]
				}
			} else if fallback == "" {
				fallback = n.Name
			}
			n.vcd = fmt.Sprintf("N%d", vcd)
			vcd++
		}
	}
	if p.Class == "" {
		p.Class = fallback
	}
}
