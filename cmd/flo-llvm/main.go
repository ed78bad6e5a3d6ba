// Command flo-llvm converts a Flo file into the pieces of a drop-in
// replacement for Chisel's C++ emulator: an LLVM IR module implementing
// clock_lo, a class header, and a compat shim.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/zhemao/flo-llvm/internal/cxx"
	"github.com/zhemao/flo-llvm/internal/diag"
	"github.com/zhemao/flo-llvm/internal/flo"
	"github.com/zhemao/flo-llvm/internal/llvm"
	"github.com/zhemao/flo-llvm/internal/passes"
)

const version = "0.2.0"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 1 && args[0] == "--version" {
		fmt.Fprintln(stderr, version)
		return nil
	}

	if len(args) != 2 || args[0] == "--help" {
		printUsage(stderr)
		return fmt.Errorf("expected an input file and a generate target")
	}

	var generate func(*flo.Program, io.Writer) error
	switch args[1] {
	case "--ir":
		generate = llvm.Emit
	case "--header":
		generate = cxx.Header
	case "--compat":
		generate = cxx.Compat
	default:
		printTargets(stderr)
		return fmt.Errorf("unknown generate target %q", args[1])
	}

	prog, err := flo.ParseFile(args[0])
	if err != nil {
		return err
	}

	reporter := diag.NewReporter(stderr, "text")
	reporter.SetFile(args[0])

	mgr := passes.NewManager()
	mgr.Add(passes.NewChecker(reporter))
	if err := mgr.Run(prog); err != nil {
		return err
	}

	return generate(prog, stdout)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "flo-llvm: <flo> <type>\n")
	fmt.Fprintf(w, "  Converts a Flo file to LLVM IR\n")
	fmt.Fprintf(w, "  The output will be a drop-in replacement for\n")
	fmt.Fprintf(w, "  Chisel's C++ emulator\n")
}

func printTargets(w io.Writer) {
	fmt.Fprintf(w, "  valid targets are:\n")
	fmt.Fprintf(w, "    --ir:     Generates LLVM IR\n")
	fmt.Fprintf(w, "    --header: Generates a C++ class header\n")
	fmt.Fprintf(w, "    --compat: Generates a C++ compat layer\n")
}
