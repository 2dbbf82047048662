package flatten

import (
	"fmt"

	"hdlc/src/frontend"
	"hdlc/src/ir"
)

// resolveCallee implements spec.md §4.G's step 1 of function-call desugaring: resolve the
// callee into a ModuleInterfaceReference, auto-allocating an anonymous SubModule instance when
// the callee was a bare global module name.
func (c *Context) resolveCallee(cur *frontend.Cursor) (ir.ModuleInterfaceReference, bool) {
	span := cur.Span()
	partial := c.flattenWireReference(cur)
	switch p := partial.(type) {
	case PartialGlobalModuleName:
		declID := c.allocInstruction(ir.SubModule{
			ModuleID:       p.ModuleID,
			ModuleNameSpan: p.Span,
			NameSpan:       p.Span,
		})
		return ir.ModuleInterfaceReference{
			SubmoduleDecl:  declID,
			SubmoduleIface: ir.MainInterfaceID,
			InterfaceSpan:  span,
		}, true

	case PartialModuleButNoPort:
		return ir.ModuleInterfaceReference{
			SubmoduleDecl:  p.SubModuleDecl,
			SubmoduleIface: ir.MainInterfaceID,
			NameSpan:       &p.Span,
			InterfaceSpan:  span,
		}, true

	case PartialModuleWithInterface:
		return ir.ModuleInterfaceReference{
			SubmoduleDecl:  p.SubModuleDecl,
			SubmoduleIface: p.Interface,
			NameSpan:       &p.SubModuleSpan,
			InterfaceSpan:  p.InterfaceSpan,
		}, true

	case PartialWireRef:
		c.Errors.Error(span, "Expected a module or submodule instance to call, found a wire")
		return ir.ModuleInterfaceReference{}, false

	default:
		return ir.ModuleInterfaceReference{}, false
	}
}

// targetModule resolves the module a ModuleInterfaceReference's submodule decl instantiates.
func (c *Context) targetModule(ref ir.ModuleInterfaceReference) *ir.Module {
	instr := c.Module.Instructions.Get(ref.SubmoduleDecl)
	sub, ok := instr.(ir.SubModule)
	if !ok {
		panic("flatten: ModuleInterfaceReference.SubmoduleDecl does not reference a SubModule instruction")
	}
	return c.Linker.Modules.GetPtr(sub.ModuleID)
}

// flattenFuncCall implements spec.md §4.G's flatten_func_call in full: resolve callee, collect
// arguments, check arity (with exact diagnostics per SPEC_FULL.md supplemented feature 3),
// and emit one FuncCall instruction. Returns the FuncCall's FlatID together with the resolved
// interface's output ports, so callers in both single-result expression position and
// multi-target assignment position can consume it uniformly.
func (c *Context) flattenFuncCall(cur *frontend.Cursor, wholeSpan ir.Span) (ir.FlatID, ir.IDRange[ir.Port], bool) {
	calleeNode, ok := cur.Field("callee")
	if !ok {
		c.Errors.Error(wholeSpan, "internal error: call missing callee")
		return 0, ir.IDRange[ir.Port]{}, false
	}
	ifaceRef, ok := c.resolveCallee(frontend.NewCursor(calleeNode))
	if !ok {
		return 0, ir.IDRange[ir.Port]{}, false
	}

	target := c.targetModule(ifaceRef)
	iface := target.Interfaces.Get(ifaceRef.SubmoduleIface)

	var args []ir.FlatID
	var argSpans []ir.Span
	argsBracket := ir.NewBracketSpan(wholeSpan.EmptySpanAtEnd())
	if argsField, hasArgs := cur.Field("arguments"); hasArgs {
		argsBracket = ir.NewBracketSpan(argsField.Span)
		frontend.NewCursor(argsField).CollectList("argument", func(argCur *frontend.Cursor) {
			args = append(args, c.flattenExpr(argCur))
			argSpans = append(argSpans, argCur.Span())
		})
	}

	c.checkCallArity(target, iface, args, argSpans, argsBracket)

	call := ir.FuncCall{
		InterfaceRef:  ifaceRef,
		Arguments:     args,
		Inputs:        iface.InputPorts,
		Outputs:       iface.OutputPorts,
		ArgumentsSpan: argsBracket,
		WholeSpan:     wholeSpan,
	}
	return c.allocInstruction(call), iface.OutputPorts, true
}

// checkCallArity implements spec.md §4.G step 3 with the exact diagnostics required by
// SPEC_FULL.md supplemented feature 3: an excess-argument diagnostic spans only the extra
// arguments, while a too-few-arguments diagnostic spans the call's closing bracket (so the
// user sees where to add more), grounded on
// _examples/original_source/src/flattening/mod.rs's arity-mismatch reporting.
func (c *Context) checkCallArity(target *ir.Module, iface ir.Interface, args []ir.FlatID, argSpans []ir.Span, bracket ir.BracketSpan) {
	expected := iface.InputPorts.Len()
	got := len(args)
	if got == expected {
		return
	}
	if got > expected {
		extraSpan := ir.NewOverarchingSpan(argSpans[expected], argSpans[len(argSpans)-1])
		c.Errors.Error(extraSpan, fmt.Sprintf("Too many arguments: expected %d, got %d", expected, got)).
			Info(extraSpan, "remove these arguments").
			SuggestRemove(extraSpan)
		return
	}
	c.Errors.Error(bracket.CloseBracket(), fmt.Sprintf("Not enough arguments: expected %d, got %d", expected, got)).
		Info(bracket.Span, target.PortsInfoString(ir.MainInterfaceID))
}

// flattenFuncCallExpr implements the call-in-expression-position half of spec.md §4.G's
// flatten_expr: on success, if the interface has exactly one output, rewrite the call as a
// WireRef to that output port; otherwise diagnose "must return exactly one result" and
// produce an error wire.
func (c *Context) flattenFuncCallExpr(cur *frontend.Cursor) ir.FlatID {
	span := cur.Span()
	callID, outputs, ok := c.flattenFuncCall(cur, span)
	if !ok {
		return c.errorWire(span)
	}
	if outputs.Len() != 1 {
		c.Errors.Error(span, fmt.Sprintf("Function call used as an expression must return exactly one result, this returns %d", outputs.Len()))
		return c.errorWire(span)
	}
	call := c.Module.Instructions.Get(callID).(ir.FuncCall)
	ref := ir.WireReference{
		Root:     ir.SubModulePortRoot{SubModuleDecl: call.InterfaceRef.SubmoduleDecl, Port: outputs.Start},
		RootSpan: span,
	}
	return c.newWire(span, ir.WireRefSource{Ref: ref})
}
