// Package cxx generates the C++ artifacts that surround the IR module: the
// class-shaped header exposing the circuit's signals and the compat shim
// bridging the emulator interface to the IR-defined symbols.
package cxx

import (
	"fmt"
	"io"

	"github.com/zhemao/flo-llvm/internal/flo"
)

// Header writes the emulator header: a mod_t subclass holding one wide
// integer per exported signal plus the virtual methods the legacy emulator
// harness expects.
func Header(prog *flo.Program, w io.Writer) error {
	fmt.Fprintf(w, "#include <stdio.h>\n")
	fmt.Fprintf(w, "#include <stdint.h>\n")
	fmt.Fprintf(w, "#include \"emulator.h\"\n")
	fmt.Fprintf(w, "class %s_t: public mod_t {\n", prog.Class)
	fmt.Fprintf(w, "  public:\n")

	for _, n := range prog.Nodes {
		if !n.Exported() {
			continue
		}
		if n.Mem {
			fmt.Fprintf(w, "    mem_t<%d, %d> %s;\n", n.Width, n.Depth, n.MangledName())
			continue
		}
		fmt.Fprintf(w, "    dat_t<%d> %s;\n", n.Width, n.MangledName())
		fmt.Fprintf(w, "    dat_t<%d> %s__prev;\n", n.Width, n.MangledName())
	}

	// These must exactly match the definitions the legacy front-end would
	// have emitted; they are implemented by the compat layer and the IR.
	fmt.Fprintf(w, "  public:\n")
	fmt.Fprintf(w, "    void init(bool random_init = false);\n")
	fmt.Fprintf(w, "    int clock(dat_t<1> reset);\n")
	fmt.Fprintf(w, "    void clock_lo(dat_t<1> reset);\n")
	fmt.Fprintf(w, "    void clock_hi(dat_t<1> reset);\n")
	fmt.Fprintf(w, "    void dump(FILE *file, int clock);\n")
	fmt.Fprintf(w, "};\n")

	fmt.Fprintf(w, "class %s_api_t : public mod_api_t {\n", prog.Class)
	fmt.Fprintf(w, "  void init_mapping_table(void);\n")
	fmt.Fprintf(w, "};\n")

	return nil
}
