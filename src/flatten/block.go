package flatten

import "hdlc/src/frontend"

// flattenBlock walks a statement list, dispatching each statement to the matching flattening
// rule. Comments are reset at block start and after every statement (SPEC_FULL.md
// supplemented feature 6, grounded on original_source's comment-gathering reset points), so a
// comment attaches to whichever statement immediately follows it instead of leaking across
// statement boundaries.
func (c *Context) flattenBlock(cur *frontend.Cursor) {
	cur.ClearGatheredComments()
	cur.CollectList("statement", func(stmtCur *frontend.Cursor) {
		c.flattenStatement(stmtCur)
		cur.ClearGatheredComments()
	})
}

// flattenStatement dispatches one statement node to its flattening rule.
func (c *Context) flattenStatement(cur *frontend.Cursor) {
	switch cur.Kind() {
	case frontend.NodeAssignment:
		c.declAssignStatement(cur)
	case frontend.NodeDeclaration:
		c.flattenDeclaration(cur, declOptions{AllowModules: true, NotDirectlyWritten: true})
	case frontend.NodeInstanceDecl:
		c.flattenDeclaration(cur, declOptions{AllowModules: true, NotDirectlyWritten: true})
	case frontend.NodeIfStatement:
		c.flattenIfStatement(cur)
	case frontend.NodeForStatement:
		c.flattenForStatement(cur)
	case frontend.NodeFuncCallExpr:
		// A bare function call used as a statement (no targets): flatten it for its side
		// effects and discard any outputs.
		c.flattenFuncCall(cur, cur.Span())
	default:
		cur.CouldNotMatch(c.Errors, "a statement")
	}
}
