package flatten

import (
	"hdlc/src/frontend"
	"hdlc/src/ir"
)

// flattenIfStatement implements spec.md §4.G's if_statement / §9's back-patched placeholders:
// allocate the IfStatement with PLACEHOLDER range bounds before any of its children exist,
// flatten the branches (each in their own frame), and overwrite the placeholders with the
// instruction-count watermarks recorded before/after each branch.
func (c *Context) flattenIfStatement(cur *frontend.Cursor) {
	span := cur.Span()
	condNode, ok := cur.Field("condition")
	if !ok {
		c.Errors.Error(span, "internal error: if statement missing condition")
		return
	}
	condID := c.flattenExpr(frontend.NewCursor(condNode))

	ifID := c.allocInstruction(ir.IfStatement{
		Condition: condID,
		ThenStart: ir.Placeholder[ir.Instruction](),
		ThenEndElseStart: ir.Placeholder[ir.Instruction](),
		ElseEnd: ir.Placeholder[ir.Instruction](),
	})

	thenStart := c.Module.Instructions.GetNextAllocID()
	if thenNode, ok := cur.Field("then"); ok {
		c.Locals.NewFrame()
		c.flattenBlock(frontend.NewCursor(thenNode))
		c.Locals.PopFrame()
	}
	thenEndElseStart := c.Module.Instructions.GetNextAllocID()

	if elseNode, hasElse := cur.OptionalField("else"); hasElse {
		elseCursor := frontend.NewCursor(elseNode)
		c.Locals.NewFrame()
		if elseCursor.Kind() == frontend.NodeIfStatement {
			// A chained `else if` flattens as a nested IfStatement inside this else-range.
			c.flattenIfStatement(elseCursor)
		} else {
			c.flattenBlock(elseCursor)
		}
		c.Locals.PopFrame()
	}
	elseEnd := c.Module.Instructions.GetNextAllocID()

	stmt := c.Module.Instructions.Get(ifID).(ir.IfStatement)
	stmt.ThenStart = thenStart
	stmt.ThenEndElseStart = thenEndElseStart
	stmt.ElseEnd = elseEnd
	c.Module.Instructions.Set(ifID, stmt)
}

// flattenForStatement implements spec.md §4.G's for_statement: always generative, the loop
// variable lives in its own frame that also covers the body (so shadowing rules match a real
// block), start/end are flattened before the loop var's frame is needed for them, and the body
// range is back-patched exactly like If's branches.
func (c *Context) flattenForStatement(cur *frontend.Cursor) {
	span := cur.Span()
	startNode, ok := cur.Field("start")
	if !ok {
		c.Errors.Error(span, "internal error: for statement missing start bound")
		return
	}
	startID := c.flattenExpr(frontend.NewCursor(startNode))

	endNode, ok := cur.Field("end")
	if !ok {
		c.Errors.Error(span, "internal error: for statement missing end bound")
		return
	}
	endID := c.flattenExpr(frontend.NewCursor(endNode))

	c.Locals.NewFrame()
	defer c.Locals.PopFrame()

	loopVarNode, ok := cur.Field("variable")
	if !ok {
		c.Errors.Error(span, "internal error: for statement missing loop variable")
		return
	}
	genKind := ir.IdentGenerative
	loopVarID := c.flattenDeclaration(frontend.NewCursor(loopVarNode), declOptions{
		ForceKind:          &genKind,
		NotDirectlyWritten: true,
	})

	forID := c.allocInstruction(ir.ForStatement{
		LoopVarDecl: loopVarID,
		Start:       startID,
		End:         endID,
		Body:        ir.IDRange[ir.Instruction]{Start: ir.Placeholder[ir.Instruction](), End: ir.Placeholder[ir.Instruction]()},
	})

	bodyStart := c.Module.Instructions.GetNextAllocID()
	if bodyNode, ok := cur.Field("body"); ok {
		c.flattenBlock(frontend.NewCursor(bodyNode))
	}
	bodyEnd := c.Module.Instructions.GetNextAllocID()

	stmt := c.Module.Instructions.Get(forID).(ir.ForStatement)
	stmt.Body = ir.IDRange[ir.Instruction]{Start: bodyStart, End: bodyEnd}
	c.Module.Instructions.Set(forID, stmt)
}
