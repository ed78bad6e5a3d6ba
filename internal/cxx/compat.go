package cxx

import (
	"fmt"
	"io"
	"strings"

	"github.com/zhemao/flo-llvm/internal/flo"
)

// Compat writes the shim translation unit. Its whole point is to work around
// C++ name mangling: plain C accessor symbols copy signal values in and out
// of the class, and the emulator's virtual methods bridge to the IR-defined
// entry points.
func Compat(prog *flo.Program, w io.Writer) error {
	fmt.Fprintf(w, "extern \"C\" {\n")

	for _, n := range prog.Nodes {
		if !n.Exported() || n.Mem {
			continue
		}

		fmt.Fprintf(w, "  void _llvmflo_%s_get(%s_t *d, uint64_t *a) {\n",
			n.MangledName(), prog.Class)
		for i := 0; i < n.Words(); i++ {
			fmt.Fprintf(w, "    a[%d] = d->%s.values[%d];\n", i, n.MangledName(), i)
		}
		fmt.Fprintf(w, "  }\n")

		fmt.Fprintf(w, "  void _llvmflo_%s_set(%s_t *d, uint64_t *a) {\n",
			n.MangledName(), prog.Class)
		for i := 0; i < n.Words(); i++ {
			fmt.Fprintf(w, "    d->%s.values[%d] = a[%d];\n", n.MangledName(), i, i)
		}
		fmt.Fprintf(w, "  }\n")
	}

	fmt.Fprintf(w, "  void _llvmflo_%s_init(%s_t *p, bool r);\n", prog.Class, prog.Class)
	fmt.Fprintf(w, "  void _llvmflo_%s_clock_lo(%s_t *p, bool r);\n", prog.Class, prog.Class)
	fmt.Fprintf(w, "  void _llvmflo_%s_clock_hi(%s_t *p, bool r);\n", prog.Class, prog.Class)
	fmt.Fprintf(w, "};\n")

	fmt.Fprintf(w, "int %s_t::clock(dat_t<1> rd)\n", prog.Class)
	fmt.Fprintf(w, "  { clock_lo(rd); clock_hi(rd); return 0; }\n")

	fmt.Fprintf(w, "void %s_t::clock_lo(dat_t<1> rd)\n", prog.Class)
	fmt.Fprintf(w, "  { _llvmflo_%s_clock_lo(this, rd.to_ulong()); }\n", prog.Class)

	// init zeroes every exported signal, which is short enough to keep in
	// C++ rather than IR.
	fmt.Fprintf(w, "void %s_t::init(bool r)\n{\n", prog.Class)
	for _, n := range prog.Nodes {
		if !n.Exported() || n.Mem {
			continue
		}
		fmt.Fprintf(w, "  this->%s = 0;\n", n.MangledName())
	}
	fmt.Fprintf(w, "}\n")

	// clock_hi only copies register next-values into place.
	fmt.Fprintf(w, "void %s_t::clock_hi(dat_t<1> rd)\n{\n", prog.Class)
	fmt.Fprintf(w, "  bool r = rd.to_ulong();\n")
	for _, op := range prog.Ops {
		if op.Op != flo.OpReg || len(op.Srcs) == 0 {
			continue
		}
		next := op.Srcs[len(op.Srcs)-1]
		fmt.Fprintf(w, "  %s = %s;\n", op.Dest.MangledName(), next.MangledName())
	}
	fmt.Fprintf(w, "}\n")

	dump(prog, w)
	mappingTable(prog, w)

	return nil
}

// dump emits the VCD writer: the first cycle produces the header by walking
// the module hierarchy of the alphabetized node names, every cycle dumps the
// signals whose values changed.
func dump(prog *flo.Program, w io.Writer) {
	fmt.Fprintf(w, "void %s_t::dump(FILE *f, int cycle)\n{\n", prog.Class)

	fmt.Fprintf(w, "  if (cycle == 0) {\n")
	fmt.Fprintf(w, "    fprintf(f, \"$timescale 1ps $end\\n\");\n")

	lastPath := ""
	for _, n := range prog.NodesAlpha() {
		module, signal, ok := splitScope(n.Name)
		if !ok {
			continue
		}

		switch {
		case module == lastPath:
		case strings.HasPrefix(lastPath, module):
			fmt.Fprintf(w, "    fprintf(f, \"$upscope $end\\n\");\n")
		case strings.HasPrefix(module, lastPath):
			fmt.Fprintf(w, "    fprintf(f, \"$scope module %s $end\\n\");\n",
				lastComponent(module))
		default:
			fmt.Fprintf(w, "    fprintf(f, \"$upscope $end\\n\");\n")
			fmt.Fprintf(w, "    fprintf(f, \"$scope module %s $end\\n\");\n",
				lastComponent(module))
		}

		fmt.Fprintf(w, "    fprintf(f, \"$var wire %d %s %s $end\\n\");\n",
			n.Width, n.VCDName(), signal)

		lastPath = module
	}

	colons := strings.Count(lastPath, ":")
	for i := 0; i <= colons/2; i++ {
		fmt.Fprintf(w, "    fprintf(f, \"$upscope $end\\n\");\n")
	}

	fmt.Fprintf(w, "  fprintf(f, \"$enddefinitions $end\\n\");\n")
	fmt.Fprintf(w, "  fprintf(f, \"$dumpvars\\n\");\n")
	fmt.Fprintf(w, "  fprintf(f, \"$end\\n\");\n")
	fmt.Fprintf(w, "  }\n")

	fmt.Fprintf(w, "  fprintf(f, \"#%%d\\n\", cycle);\n")

	for _, n := range prog.Nodes {
		if !n.VCDExported() {
			continue
		}
		fmt.Fprintf(w, "  if ((cycle == 0) || (%s__prev != %s).to_ulong()) {\n",
			n.MangledName(), n.MangledName())
		fmt.Fprintf(w, "    dat_dump(f, %s, \"%s\");\n", n.MangledName(), n.VCDName())
		fmt.Fprintf(w, "    %s__prev = %s;\n", n.MangledName(), n.MangledName())
		fmt.Fprintf(w, "  }\n")
	}

	fmt.Fprintf(w, "}\n")
}

// mappingTable emits the debug API wrapper holding the string-lookup tables.
func mappingTable(prog *flo.Program, w io.Writer) {
	fmt.Fprintf(w, "void %s_api_t::init_mapping_table(void) {\n", prog.Class)
	fmt.Fprintf(w, "  dat_table.clear();\n")
	fmt.Fprintf(w, "  mem_table.clear();\n")
	fmt.Fprintf(w, "  %s_t *dut = dynamic_cast<%s_t*>(module);\n", prog.Class, prog.Class)
	fmt.Fprintf(w, "  if (dut == NULL) {assert(dut != NULL); abort();}\n")

	for _, n := range prog.Nodes {
		if !n.Exported() {
			continue
		}
		if n.Mem {
			fmt.Fprintf(w, "  mem_table[\"%s\"] = new mem_api<%d, %d>(&dut->%s, \"%s\", \"\");\n",
				n.ChiselName(), n.Width, n.Depth, n.MangledName(), n.ChiselName())
			continue
		}
		fmt.Fprintf(w, "  dat_table[\"%s\"] = new dat_api<%d>(&dut->%s, \"%s\", \"\");\n",
			n.ChiselName(), n.Width, n.MangledName(), n.ChiselName())
	}

	fmt.Fprintf(w, "}\n")
}

// splitScope divides a hierarchical name into its module path and signal
// component. Names with no separator are not globally visible and report
// ok == false. The separator can be either ":" or "::".
func splitScope(name string) (module, signal string, ok bool) {
	idx := strings.LastIndexByte(name, ':')
	if idx < 0 {
		return "", "", false
	}
	signal = name[idx+1:]
	module = name[:idx]
	if strings.HasSuffix(module, ":") {
		module = module[:len(module)-1]
	}
	return module, signal, true
}

// lastComponent returns the trailing module name; VCD scopes carry only that,
// the remainder is implied by the hierarchy.
func lastComponent(module string) string {
	idx := strings.LastIndexByte(module, ':')
	if idx < 0 {
		return module
	}
	return module[idx+1:]
}
