// Package driver implements spec.md §4.I: orchestrating add/update/recompile and resetting
// every module back to its Initialization checkpoint before each full recompile.
package driver

import (
	"hdlc/src/flatten"
	"hdlc/src/initialize"
	"hdlc/src/instantiate"
	"hdlc/src/ir"
	"hdlc/src/typecheck"
	"hdlc/src/util"
)

// Driver owns the linker and the ingress the instantiation stage hands parameter-free modules
// to, plus the debug-print switch (SPEC_FULL.md supplemented feature 1).
type Driver struct {
	Linker  *ir.Linker
	Ingress instantiate.Ingress
	Opt     util.Options
}

// New builds a Driver over a fresh, empty Linker, choosing the instantiation ingress per
// opt.LLVMIngress (spec.md §4.I step 4's ingress boundary; SPEC_FULL.md's DOMAIN STACK wiring
// of tinygo.org/x/go-llvm).
func New(opt util.Options) *Driver {
	var ingress instantiate.Ingress
	if opt.LLVMIngress {
		ingress = instantiate.LLVMIngress{}
	} else {
		ingress = &instantiate.Recording{}
	}
	return &Driver{Linker: ir.NewLinker(), Ingress: ingress, Opt: opt}
}

// AddFile implements spec.md §4.D's add_file: reserve a file slot, record its already-parsed
// tree, and run Initialization on just this file.
func (d *Driver) AddFile(text string, tree any) ir.ID[ir.File] {
	tracer := util.StartSpanTrace("AddFile", func() string { return text })
	defer tracer.RecoverAndReport()

	fileID := d.Linker.AddFile(text, tree)
	initialize.File(d.Linker, fileID)
	tracer.Defuse()
	return fileID
}

// UpdateFile implements spec.md §4.D's update_file: tear down everything the old version of
// this file contributed, install the new text/tree under the same ID[File] (so other files'
// references into it stay valid), and re-run Initialization.
func (d *Driver) UpdateFile(fileID ir.ID[ir.File], text string, tree any) {
	tracer := util.StartSpanTrace("UpdateFile", func() string { return text })
	defer tracer.RecoverAndReport()

	d.Linker.RemoveEverythingInFile(fileID)
	d.Linker.UpdateFile(fileID, text, tree)
	initialize.File(d.Linker, fileID)
	tracer.Defuse()
}

// RecompileAll implements spec.md §4.I's recompile_all in full: reset every module to its
// post-Initialization checkpoint, flatten, typecheck, then instantiate every parameter-free
// module.
func (d *Driver) RecompileAll() {
	tracer := util.StartSpanTrace("RecompileAll", d.concatFileText)
	defer tracer.RecoverAndReport()

	d.resetAllModules()

	flatten.FlattenAllModules(d.Linker)
	if d.Opt.DebugPrintModules {
		d.printAllModules()
	}

	typecheck.AllModules(d.Linker)
	if d.Opt.DebugPrintModules {
		d.printAllModules()
	}

	d.instantiateAll()
	tracer.Defuse()
}

// concatFileText concatenates every known file's source text, used as the span tracer's
// lazily-fetched text source for RecompileAll: a panic mid-pass may have touched spans from
// any file, not just one (spec.md §6's "these spans may not belong to this file" caveat).
func (d *Driver) concatFileText() string {
	var out string
	n := d.Linker.Files.Len()
	for i := 0; i < n; i++ {
		out += d.Linker.Files.GetPtr(ir.ID[ir.File](i)).Text
	}
	return out
}

// resetAllModules implements spec.md §4.I step 1: truncate every module's instructions and
// instantiations back to its after_initial_parse_cp, clearing after_flatten_cp, while leaving
// ports/interfaces/name bindings (established during Initialization) untouched.
func (d *Driver) resetAllModules() {
	n := d.Linker.Modules.Len()
	for i := 0; i < n; i++ {
		id := ir.ID[ir.Module](i)
		mod := d.Linker.Modules.GetPtr(id)
		mod.Instructions.Truncate(ir.ID[ir.Instruction](mod.LinkInfo.AfterInitialParseCP))
		mod.LinkInfo.AfterFlattenCP = nil
		mod.Instantiations = nil
	}
}

// instantiateAll implements spec.md §4.I step 4: every module with an empty template-argument
// list (the only kind this front end ever produces — parameterized instantiation is an Open
// Question left to the downstream engine, spec.md §9) is handed to the ingress with a fresh
// empty argument map.
func (d *Driver) instantiateAll() {
	n := d.Linker.Modules.Len()
	for i := 0; i < n; i++ {
		id := ir.ID[ir.Module](i)
		mod := d.Linker.Modules.GetPtr(id)
		if len(mod.LinkInfo.TemplateArgs) != 0 {
			continue
		}
		args := make(map[string]string)
		if err := d.Ingress.Instantiate(d.Linker, id, args); err != nil {
			file := d.Linker.Files.GetPtr(mod.LinkInfo.File)
			file.Errors.Error(ir.Span{}, "instantiation failed: "+err.Error())
			continue
		}
		mod.Instantiations = append(mod.Instantiations, ir.InstantiationRecord{TemplateArgs: args})
	}
}

// printAllModules implements SPEC_FULL.md supplemented feature 1: a debug-print driver switch
// invoked twice from RecompileAll, once right after flattening and once after typechecking, so
// -dm shows both the raw flattened shape and the typechecked decoration pass.
func (d *Driver) printAllModules() {
	n := d.Linker.Modules.Len()
	for i := 0; i < n; i++ {
		id := ir.ID[ir.Module](i)
		mod := d.Linker.Modules.GetPtr(id)
		file := d.Linker.Files.GetPtr(mod.LinkInfo.File)
		mod.PrintFlattened(file.Text)
	}
}
