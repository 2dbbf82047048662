package main

import (
	"fmt"
	"os"

	"hdlc/src/driver"
	"hdlc/src/ir"
	"hdlc/src/util"
)

// run reads source code and drives it through the add-file/recompile-all pipeline described by
// util.Options, printing every diagnostic collected along the way.
func run(opt util.Options) error {
	src, err := util.ReadSource(opt)
	if err != nil {
		return fmt.Errorf("could not read source code: %s", err)
	}

	if opt.TokenStream {
		// Lexing and parsing are external collaborators to this core: the grammar lives outside
		// this binary, so there is no token stream of its own to print. A real deployment wires
		// a parser ahead of this binary and hands its tree straight to AddFile.
		return fmt.Errorf("-ts requires an external parser front end; none is wired into this binary")
	}

	d := driver.New(opt)

	// tree is nil for the same reason: parsing src into a syntax tree is this binary's one
	// external dependency, and nothing in this module supplies a grammar to exercise it with.
	// AddFile takes the parsed tree as a plain parameter so a real deployment's parser can hand
	// its root node straight in without this core ever importing a grammar package.
	d.AddFile(src, nil)
	d.RecompileAll()

	if printDiagnostics(d) {
		return fmt.Errorf("compilation failed")
	}
	return nil
}

// printDiagnostics prints every diagnostic collected across every file the linker knows about,
// in file order, and reports whether any of them was an error.
func printDiagnostics(d *driver.Driver) bool {
	sawError := false
	n := d.Linker.Files.Len()
	for i := 0; i < n; i++ {
		file := d.Linker.Files.GetPtr(ir.ID[ir.File](i))
		for _, diag := range file.Errors.All() {
			if diag.Severity == ir.SeverityError {
				sawError = true
			}
			fmt.Printf("%s: %s [%d:%d]\n", diag.Severity, diag.Message, diag.Primary.Start, diag.Primary.End)
			for _, info := range diag.Info {
				fmt.Printf("    note: %s [%d:%d]\n", info.Message, info.Span.Start, info.Span.End)
			}
		}
	}
	return sawError
}

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Printf("Command line argument error: %s\n", err)
		os.Exit(1)
	}

	if err := run(opt); err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
}
