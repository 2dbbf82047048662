package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hdlc/src/frontend"
	"hdlc/src/ir"
)

func blockNode(stmts ...*frontend.Node) *frontend.Node {
	return &frontend.Node{Kind: frontend.NodeBlock, Lists: map[string][]*frontend.Node{"statement": stmts}}
}

func TestFlattenIfStatementBackPatchesRanges(t *testing.T) {
	var s src
	_, _, ctx := newTestLinkerAndContext(t, &s)

	before := ctx.Module.Instructions.GetNextAllocID()
	ifNode := &frontend.Node{
		Kind: frontend.NodeIfStatement,
		Fields: map[string]*frontend.Node{
			"condition": s.ident(frontend.NodeBoolLiteral, "true"),
			"then":      blockNode(declNode(&s, "", "", "int", "a")),
			"else":      blockNode(declNode(&s, "", "", "int", "b")),
		},
	}
	ctx.flattenIfStatement(frontend.NewCursor(ifNode))
	require.False(t, ctx.Errors.HasErrors())

	// The condition's wire is allocated first, so the IfStatement follows it.
	stmt := ctx.Module.Instructions.Get(before + 1).(ir.IfStatement)
	assert.Equal(t, 1, stmt.ThenEndElseStart.Int()-stmt.ThenStart.Int(), "then branch declares exactly one instruction")
	assert.Equal(t, 1, stmt.ElseEnd.Int()-stmt.ThenEndElseStart.Int(), "else branch declares exactly one instruction")
}

func TestFlattenIfStatementNoElseLeavesEmptyElseRange(t *testing.T) {
	var s src
	_, _, ctx := newTestLinkerAndContext(t, &s)

	before := ctx.Module.Instructions.GetNextAllocID()
	ifNode := &frontend.Node{
		Kind: frontend.NodeIfStatement,
		Fields: map[string]*frontend.Node{
			"condition": s.ident(frontend.NodeBoolLiteral, "true"),
			"then":      blockNode(declNode(&s, "", "", "int", "a")),
		},
	}
	ctx.flattenIfStatement(frontend.NewCursor(ifNode))

	// The condition's wire is allocated first, so the IfStatement follows it.
	stmt := ctx.Module.Instructions.Get(before + 1).(ir.IfStatement)
	assert.Equal(t, stmt.ThenEndElseStart, stmt.ElseEnd, "no else branch means an empty else range")
}

func TestFlattenIfStatementElseIfChainsAsNestedIfStatement(t *testing.T) {
	var s src
	_, _, ctx := newTestLinkerAndContext(t, &s)

	before := ctx.Module.Instructions.GetNextAllocID()
	innerIf := &frontend.Node{
		Kind: frontend.NodeIfStatement,
		Fields: map[string]*frontend.Node{
			"condition": s.ident(frontend.NodeBoolLiteral, "false"),
			"then":      blockNode(declNode(&s, "", "", "int", "c")),
		},
	}
	outerIf := &frontend.Node{
		Kind: frontend.NodeIfStatement,
		Fields: map[string]*frontend.Node{
			"condition": s.ident(frontend.NodeBoolLiteral, "true"),
			"then":      blockNode(declNode(&s, "", "", "int", "a")),
			"else":      innerIf,
		},
	}
	ctx.flattenIfStatement(frontend.NewCursor(outerIf))
	require.False(t, ctx.Errors.HasErrors())

	// The outer condition's wire is allocated first, so the outer IfStatement follows it.
	stmt := ctx.Module.Instructions.Get(before + 1).(ir.IfStatement)
	sawNestedIf := false
	for i := stmt.ThenEndElseStart; i < stmt.ElseEnd; i++ {
		if _, ok := ctx.Module.Instructions.Get(i).(ir.IfStatement); ok {
			sawNestedIf = true
		}
	}
	assert.True(t, sawNestedIf, "an else-if must flatten to a nested IfStatement inside the else range")
}

func TestFlattenIfStatementThenAndElseEachGetTheirOwnFrame(t *testing.T) {
	var s src
	_, _, ctx := newTestLinkerAndContext(t, &s)

	ifNode := &frontend.Node{
		Kind: frontend.NodeIfStatement,
		Fields: map[string]*frontend.Node{
			"condition": s.ident(frontend.NodeBoolLiteral, "true"),
			"then":      blockNode(declNode(&s, "", "", "int", "shadowed")),
			"else":      blockNode(declNode(&s, "", "", "int", "shadowed")),
		},
	}
	ctx.flattenIfStatement(frontend.NewCursor(ifNode))
	assert.False(t, ctx.Errors.HasErrors(), "declaring the same name in separate then/else frames is not a conflict")

	_, stillVisible := ctx.Locals.GetDeclarationFor("shadowed")
	assert.False(t, stillVisible, "a then/else-scoped declaration must not leak into the enclosing frame")
}

func TestFlattenForStatementBackPatchesBodyRange(t *testing.T) {
	var s src
	_, _, ctx := newTestLinkerAndContext(t, &s)

	before := ctx.Module.Instructions.GetNextAllocID()
	forNode := &frontend.Node{
		Kind: frontend.NodeForStatement,
		Fields: map[string]*frontend.Node{
			"start":    s.ident(frontend.NodeIntLiteral, "0"),
			"end":      s.ident(frontend.NodeIntLiteral, "4"),
			"variable": declNode(&s, "", "", "int", "i"),
			"body":     blockNode(declNode(&s, "", "", "int", "a"), declNode(&s, "", "", "int", "b")),
		},
	}
	ctx.flattenForStatement(frontend.NewCursor(forNode))
	require.False(t, ctx.Errors.HasErrors())

	// The start wire, end wire and loop variable declaration come before the ForStatement.
	stmt := ctx.Module.Instructions.Get(before + 3).(ir.ForStatement)
	assert.Equal(t, 2, stmt.Body.Len())

	loopDecl := ctx.Module.Instructions.Get(stmt.LoopVarDecl).(ir.Declaration)
	assert.Equal(t, ir.IdentGenerative, loopDecl.IdentifierKind)
	assert.True(t, loopDecl.ReadOnly, "a for loop's own variable is always read-only")
}

func TestFlattenForStatementLoopVariableNotVisibleAfterLoop(t *testing.T) {
	var s src
	_, _, ctx := newTestLinkerAndContext(t, &s)

	forNode := &frontend.Node{
		Kind: frontend.NodeForStatement,
		Fields: map[string]*frontend.Node{
			"start":    s.ident(frontend.NodeIntLiteral, "0"),
			"end":      s.ident(frontend.NodeIntLiteral, "4"),
			"variable": declNode(&s, "", "", "int", "i"),
			"body":     blockNode(),
		},
	}
	ctx.flattenForStatement(frontend.NewCursor(forNode))

	_, ok := ctx.Locals.GetDeclarationFor("i")
	assert.False(t, ok, "the loop variable's frame must be popped once the for statement is done")
}
