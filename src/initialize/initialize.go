// Package initialize implements the Initialization pass that runs before flattening: building
// per-file symbol tables from parse trees and discovering modules, ports, and interfaces before any expression
// or statement is flattened. It sits alongside flatten as a bridge between the parser-facing
// frontend package and the ir package proper — ir itself cannot import frontend (frontend
// depends on ir.Span), so the two passes that actually walk the parse tree live in their own
// packages instead of inside ir.
package initialize

import (
	"hdlc/src/frontend"
	"hdlc/src/ir"
)

// File implements spec.md §4.D's add_file/update_file half that isn't the Linker's own
// bookkeeping: parse the text (the caller supplies the already-parsed tree, since parsing
// itself is an external collaborator per spec.md §1) and discover every module it declares.
func File(linker *ir.Linker, fileID ir.ID[ir.File]) {
	file := linker.Files.GetPtr(fileID)
	root, ok := file.Tree.(*frontend.Node)
	if !ok {
		return
	}
	for _, moduleNode := range root.Lists["module"] {
		discoverModule(linker, fileID, moduleNode)
	}
}

// discoverModule registers one module's skeleton: its name, ports (main interface plus every
// named sub-interface), and interface port ranges, leaving every port's DeclInstruction as
// PLACEHOLDER until flattening resolves it (invariant 2).
func discoverModule(linker *ir.Linker, fileID ir.ID[ir.File], moduleNode *frontend.Node) {
	nameNode, ok := moduleNode.Fields["name"]
	if !ok {
		return
	}
	name := nameNode.Text

	linker.WithFileBuilder(fileID, name, func(modID ir.ID[ir.Module]) ir.Module {
		mod := ir.Module{
			LinkInfo: ir.LinkInfo{
				Name:                name,
				File:                fileID,
				AfterInitialParseCP: 0,
			},
		}

		// The main interface's ports are declared directly on the module node.
		mainInputStart := mod.Ports.GetNextAllocID()
		appendPorts(&mod, moduleNode.Lists["main_inputs"], ir.Input)
		mainInputEnd := mod.Ports.GetNextAllocID()
		mainOutputStart := mainInputEnd
		appendPorts(&mod, moduleNode.Lists["main_outputs"], ir.Output)
		mainOutputEnd := mod.Ports.GetNextAllocID()

		mainIfaceSpan := moduleNode.Span
		mainIfaceID := mod.Interfaces.Alloc(ir.Interface{
			Name:        "main",
			NameSpan:    mainIfaceSpan,
			InputPorts:  ir.IDRange[ir.Port]{Start: mainInputStart, End: mainInputEnd},
			OutputPorts: ir.IDRange[ir.Port]{Start: mainOutputStart, End: mainOutputEnd},
		})
		setPortsInterface(&mod, mainInputStart, mainOutputEnd, mainIfaceID)

		for _, ifaceNode := range moduleNode.Lists["interface"] {
			discoverInterface(&mod, ifaceNode)
		}

		return mod
	})
}

// discoverInterface registers one named sub-interface and its contiguous port range,
// continuing to allocate into the same module-wide Ports arena so invariant 5 (ports of the
// same interface are contiguous) holds by construction.
func discoverInterface(mod *ir.Module, ifaceNode *frontend.Node) {
	nameNode, ok := ifaceNode.Fields["name"]
	if !ok {
		return
	}
	inputStart := mod.Ports.GetNextAllocID()
	appendPorts(mod, ifaceNode.Lists["inputs"], ir.Input)
	inputEnd := mod.Ports.GetNextAllocID()
	outputStart := inputEnd
	appendPorts(mod, ifaceNode.Lists["outputs"], ir.Output)
	outputEnd := mod.Ports.GetNextAllocID()

	ifaceID := mod.Interfaces.Alloc(ir.Interface{
		Name:        nameNode.Text,
		NameSpan:    nameNode.Span,
		InputPorts:  ir.IDRange[ir.Port]{Start: inputStart, End: inputEnd},
		OutputPorts: ir.IDRange[ir.Port]{Start: outputStart, End: outputEnd},
	})
	setPortsInterface(mod, inputStart, outputEnd, ifaceID)
}

// appendPorts allocates one ir.Port per port-declaration node, each with a PLACEHOLDER
// DeclInstruction awaiting flattening.
func appendPorts(mod *ir.Module, declNodes []*frontend.Node, dir ir.Direction) {
	for _, declNode := range declNodes {
		nameNode, ok := declNode.Fields["name"]
		if !ok {
			continue
		}
		mod.Ports.Alloc(ir.Port{
			Name:            nameNode.Text,
			NameSpan:        nameNode.Span,
			DeclSpan:        declNode.Span,
			Direction:       dir,
			DeclInstruction: ir.Placeholder[ir.Instruction](),
		})
	}
}

// setPortsInterface stamps every port in [start, end) with interfaceID, since appendPorts
// doesn't know which interface it's building for until both its input and output ranges have
// been allocated.
func setPortsInterface(mod *ir.Module, start, end ir.ID[ir.Port], interfaceID ir.ID[ir.Interface]) {
	for id := start; id < end; id++ {
		p := mod.Ports.Get(id)
		p.Interface = interfaceID
		mod.Ports.Set(id, p)
	}
}
