package flatten

import (
	"fmt"

	"hdlc/src/frontend"
	"hdlc/src/ir"
)

// assignTarget is one resolved slot of an assignment statement's left-hand side (spec.md
// §4.G's "(Option<(WireReference, WriteModifiers)>, span)" list element) — always present
// here since a target that failed to resolve is represented by Valid being false rather than
// by an Option, simplifying the pairing logic in flattenAssignFunctionCall.
type assignTarget struct {
	Ref      ir.WireReference
	Modifier ir.WriteModifiers
	Span     ir.Span
	Valid    bool
}

// flattenWriteModifiers implements SPEC_FULL.md supplemented feature 7: an arbitrary number of
// repeated `reg` tokens count into num_regs, `initial` is mutually exclusive with any `reg`,
// and at most one `initial` is allowed; a target with no modifier tokens at all still yields a
// Connection{num_regs: 0}, grounded on
// _examples/original_source/src/flattening/mod.rs's flatten_write_modifiers.
func (c *Context) flattenWriteModifiers(cur *frontend.Cursor) ir.WriteModifiers {
	regCount := 0
	initialCount := 0
	var initialSpan ir.Span
	cur.CollectList("modifier", func(modCur *frontend.Cursor) {
		switch modCur.Text() {
		case "reg":
			regCount++
		case "initial":
			initialCount++
			initialSpan = modCur.Span()
		}
	})
	if initialCount > 0 {
		if regCount > 0 {
			c.Errors.Error(initialSpan, "'initial' cannot be combined with 'reg'")
		}
		if initialCount > 1 {
			c.Errors.Error(initialSpan, "A write may only have one 'initial' modifier")
		}
		return ir.InitialModifier{}
	}
	return ir.ConnectionModifier{NumRegs: regCount}
}

// flattenAssignmentLeftSide implements spec.md §4.G's per-slot left-side resolution: a slot is
// either a fresh declaration (let-style target) or an existing wire-reference lvalue,
// optionally carrying write modifiers.
func (c *Context) flattenAssignmentLeftSide(cur *frontend.Cursor) assignTarget {
	span := cur.Span()
	if declNode, isDecl := cur.OptionalField("declaration"); isDecl {
		declID := c.flattenDeclaration(frontend.NewCursor(declNode), declOptions{NotDirectlyWritten: false})
		return assignTarget{
			Ref:      ir.WireReference{Root: ir.LocalVariableRoot{Decl: declID}, RootSpan: span},
			Modifier: ir.ConnectionModifier{NumRegs: 0},
			Span:     span,
			Valid:    true,
		}
	}

	modifier := ir.WriteModifiers(ir.ConnectionModifier{NumRegs: 0})
	if modNode, hasMods := cur.OptionalField("modifiers"); hasMods {
		modifier = c.flattenWriteModifiers(frontend.NewCursor(modNode))
	}

	refNode, ok := cur.OptionalField("target")
	if !ok {
		c.Errors.Error(span, "internal error: assignment target missing")
		return assignTarget{Span: span}
	}
	partial := c.flattenWireReference(frontend.NewCursor(refNode))
	ref, ok := c.expectWireref(partial, refNode.Span)
	if !ok {
		return assignTarget{Span: span}
	}
	c.checkAssignable(ref, refNode.Span)
	return assignTarget{Ref: ref, Modifier: modifier, Span: span, Valid: true}
}

// checkAssignable enforces invariant 3 (spec.md §3/§8): a Write's target must resolve to either
// a local declaration in the same module that is not read-only, or a submodule port that is
// Input on the submodule — from the parent's point of view, a submodule's input is what the
// parent feeds a value into; its output is the submodule's own result and may only be read.
func (c *Context) checkAssignable(ref ir.WireReference, span ir.Span) {
	switch root := ref.Root.(type) {
	case ir.LocalVariableRoot:
		instr := c.Module.Instructions.Get(root.Decl)
		if decl, ok := instr.(ir.Declaration); ok && decl.ReadOnly {
			c.Errors.Error(span, "Cannot assign to '"+decl.Name+"': it is read-only").InfoObj(describableDecl{decl})
		}
	case ir.SubModulePortRoot:
		sub := c.Module.Instructions.Get(root.SubModuleDecl).(ir.SubModule)
		target := c.Linker.Modules.GetPtr(sub.ModuleID)
		port := target.Ports.Get(root.Port)
		if port.Direction != ir.Input {
			c.Errors.Error(span, "Cannot assign to an output port of a submodule").InfoObj(port)
		}
	case ir.NamedConstantRoot:
		c.Errors.Error(span, "Cannot assign to a constant")
	case ir.ErrorRoot:
		// Already diagnosed.
	}
}

type describableDecl struct{ d ir.Declaration }

func (x describableDecl) DescribeForError() (ir.Span, string) {
	return x.d.DeclSpan, "'" + x.d.Name + "' declared here"
}

// declAssignStatement implements spec.md §4.G's decl_assign_statement: resolve every
// left-hand-side target, then either pair them against a function call's outputs positionally
// or, for any other right-hand expression, require exactly one target and emit a single Write.
func (c *Context) declAssignStatement(cur *frontend.Cursor) {
	var targets []assignTarget
	if targetsField, ok := cur.Field("targets"); ok {
		frontend.NewCursor(targetsField).CollectList("target", func(tCur *frontend.Cursor) {
			targets = append(targets, c.flattenAssignmentLeftSide(tCur))
		})
	}

	rhsNode, ok := cur.Field("value")
	if !ok {
		c.Errors.Error(cur.Span(), "internal error: assignment missing right-hand side")
		return
	}
	rhsCursor := frontend.NewCursor(rhsNode)

	if rhsCursor.Kind() == frontend.NodeFuncCallExpr {
		c.flattenAssignFunctionCall(rhsCursor, targets)
		return
	}

	if len(targets) != 1 {
		c.Errors.Error(cur.Span(), fmt.Sprintf("A single-value expression can only be assigned to one target, got %d", len(targets)))
		// Still flatten the RHS so its diagnostics and side effects aren't silently lost.
		c.flattenExpr(rhsCursor)
		return
	}
	fromID := c.flattenExpr(rhsCursor)
	c.emitWrite(fromID, targets[0], rhsNode.Span)
}

// flattenAssignFunctionCall implements spec.md §4.G's "If RHS is a function call, pair outputs
// positionally with targets; arity mismatch is diagnosed and the shorter side is
// padded/ignored."
func (c *Context) flattenAssignFunctionCall(rhsCursor *frontend.Cursor, targets []assignTarget) {
	span := rhsCursor.Span()
	callID, outputs, ok := c.flattenFuncCall(rhsCursor, span)
	if !ok {
		return
	}
	call := c.Module.Instructions.Get(callID).(ir.FuncCall)
	subDecl := call.InterfaceRef.SubmoduleDecl

	n := outputs.Len()
	if len(targets) != n {
		c.Errors.Error(span, fmt.Sprintf("Function call returns %d values but %d targets were given", n, len(targets)))
	}
	pairs := n
	if len(targets) < pairs {
		pairs = len(targets)
	}
	for i := 0; i < pairs; i++ {
		if !targets[i].Valid {
			continue
		}
		portID := outputs.Start + ir.ID[ir.Port](i)
		fromRef := ir.WireReference{
			Root:     ir.SubModulePortRoot{SubModuleDecl: subDecl, Port: portID},
			RootSpan: span,
		}
		fromWire := c.newWire(span, ir.WireRefSource{Ref: fromRef})
		c.emitWrite(fromWire, targets[i], span)
	}
}

// emitWrite allocates the Write instruction for one resolved (from, target) pair, skipping
// emission entirely when the target failed to resolve (its diagnostic has already been
// recorded, and there is no valid wire reference to write into).
func (c *Context) emitWrite(from ir.FlatID, target assignTarget, toSpan ir.Span) {
	if !target.Valid {
		return
	}
	c.allocInstruction(ir.Write{
		From:     from,
		To:       target.Ref,
		ToSpan:   toSpan,
		Modifier: target.Modifier,
	})
}
