package flo

import (
	"fmt"
	"io"
)

// Dump writes a human-readable listing of the program.
func Dump(p *Program, w io.Writer) {
	if p == nil {
		fmt.Fprintln(w, "<nil program>")
		return
	}
	fmt.Fprintf(w, "circuit %s\n", p.Class)
	fmt.Fprintln(w, "  nodes:")
	for _, n := range p.Nodes {
		kind := "wire"
		if n.Mem {
			kind = fmt.Sprintf("mem depth=%d", n.Depth)
		}
		visibility := ""
		if n.Exported() {
			visibility = " exported"
		}
		fmt.Fprintf(w, "    %-24s %db %s%s\n", n.Name, n.Width, kind, visibility)
	}
	fmt.Fprintln(w, "  ops:")
	for _, op := range p.Ops {
		fmt.Fprintf(w, "    %s\n", op)
	}
}
