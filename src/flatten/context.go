// Package flatten implements the flattening pass (spec.md §4.G): a tree-cursor-driven walk
// of one module's body that emits its flat linear instruction list. It is the largest
// component of the core; this file holds the per-module context every other file in the
// package threads through.
package flatten

import (
	"hdlc/src/frontend"
	"hdlc/src/ir"
)

// Context is the "working-on module" scope described in spec.md §9: exactly one module is
// mutable (the one currently being flattened), everything else in the linker is reached
// read-only through Linker itself.
type Context struct {
	Linker   *ir.Linker
	FileID   ir.ID[ir.File]
	File     *ir.File
	ModuleID ir.ID[ir.Module]
	Module   *ir.Module
	Locals   *ir.LocalVariableContext
	Errors   *ir.ErrorCollector

	// pendingPorts holds the ports Initialization discovered for this module that have not
	// yet been claimed by a matching Declaration (spec.md §4.G "If this declaration fulfils a
	// port that was previously registered during Initialization..."). Consumed in order.
	pendingPorts []ir.ID[ir.Port]
}

// NewContext builds a flattening context for one module, with the pending-port queue seeded
// from every port Initialization already registered (they are claimed, in order, as matching
// Declarations are flattened).
func NewContext(linker *ir.Linker, fileID ir.ID[ir.File], moduleID ir.ID[ir.Module]) *Context {
	file := linker.Files.GetPtr(fileID)
	mod := linker.Modules.GetPtr(moduleID)
	ctx := &Context{
		Linker:   linker,
		FileID:   fileID,
		File:     file,
		ModuleID: moduleID,
		Module:   mod,
		Locals:   ir.NewLocalVariableContext(),
		Errors:   file.Errors,
	}
	mod.Ports.All(func(id ir.ID[ir.Port], _ ir.Port) bool {
		ctx.pendingPorts = append(ctx.pendingPorts, id)
		return true
	})
	return ctx
}

// allocInstruction appends instr to the module's instruction arena and returns its FlatID.
func (c *Context) allocInstruction(instr ir.Instruction) ir.FlatID {
	return c.Module.Instructions.Alloc(instr)
}

// newWire allocates a Wire instruction with the given span and source, type Unset pending
// typechecking, and returns its FlatID. Every flattened expression goes through this single
// choke point, matching spec.md §4.G's "every expression allocates exactly one Wire
// instruction".
func (c *Context) newWire(span ir.Span, source ir.WireSource) ir.FlatID {
	return c.allocInstruction(ir.Wire{
		Type:   ir.Unset,
		Span:   span,
		Source: source,
	})
}

// errorWire allocates a Wire with an ErrorSource, the substitute the flattener produces
// whenever a sub-expression could not be meaningfully resolved (spec.md §7), so downstream
// passes and instruction consumers always get a valid FlatID.
func (c *Context) errorWire(span ir.Span) ir.FlatID {
	return c.newWire(span, ir.ErrorSource{})
}

// claimNextPendingPort pops the next Initialization-registered port awaiting its declaring
// Declaration; the caller (flattenDeclaration) checks that the name spans line up. Ports are
// claimed in the same order they were declared, which is also the order Initialization
// discovered them in.
func (c *Context) claimNextPendingPort() (ir.ID[ir.Port], bool) {
	if len(c.pendingPorts) == 0 {
		return 0, false
	}
	next := c.pendingPorts[0]
	c.pendingPorts = c.pendingPorts[1:]
	return next, true
}

// setPortDeclaration wires portID's DeclInstruction now that its Declaration instruction has
// been allocated (invariant 2: every port's declaration_instruction is set exactly once, by
// flattening).
func (c *Context) setPortDeclaration(portID ir.ID[ir.Port], declID ir.FlatID) {
	port := c.Module.Ports.Get(portID)
	port.DeclInstruction = declID
	c.Module.Ports.Set(portID, port)
}

// nodeText returns the exact source text a frontend.Node's span covers.
func (c *Context) nodeText(n *frontend.Node) string {
	return c.File.SpanText(n.Span)
}
