package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hdlc/src/frontend"
	"hdlc/src/ir"
)

// declareSubmoduleInstance flattens a standalone submodule instantiation statement
// (`<ModuleName> <localName>`) and returns its Declaration's FlatID.
func declareSubmoduleInstance(t *testing.T, s *src, ctx *Context, moduleName, localName string) ir.FlatID {
	t.Helper()
	node := &frontend.Node{
		Kind: frontend.NodeInstanceDecl,
		Fields: map[string]*frontend.Node{
			"name":        s.ident(frontend.NodeIdentifier, localName),
			"module_name": s.ident(frontend.NodeIdentifier, moduleName),
		},
	}
	return ctx.flattenDeclaration(frontend.NewCursor(node), declOptions{AllowModules: true})
}

func callNode(s *src, calleeName string, argTexts ...string) *frontend.Node {
	var argNodes []*frontend.Node
	for _, a := range argTexts {
		argNodes = append(argNodes, s.ident(frontend.NodeIntLiteral, a))
	}
	argsField := &frontend.Node{Lists: map[string][]*frontend.Node{"argument": argNodes}}
	return &frontend.Node{
		Kind: frontend.NodeFuncCallExpr,
		Fields: map[string]*frontend.Node{
			"callee":    s.ident(frontend.NodeIdentifier, calleeName),
			"arguments": argsField,
		},
	}
}

func TestFlattenFuncCallCorrectArity(t *testing.T) {
	var s src
	linker, fileID, ctx := newTestLinkerAndContext(t, &s)
	registerSubmodule(t, linker, fileID, "Adder")
	declareSubmoduleInstance(t, &s, ctx, "Adder", "sub")
	require.False(t, ctx.Errors.HasErrors())

	call := callNode(&s, "sub", "5")
	callID, outputs, ok := ctx.flattenFuncCall(frontend.NewCursor(call), call.Span)
	require.True(t, ok)
	assert.False(t, ctx.Errors.HasErrors())
	assert.Equal(t, 1, outputs.Len())

	fc := ctx.Module.Instructions.Get(callID).(ir.FuncCall)
	assert.Len(t, fc.Arguments, 1)
}

func TestFlattenFuncCallTooManyArgumentsDiagnoses(t *testing.T) {
	var s src
	linker, fileID, ctx := newTestLinkerAndContext(t, &s)
	registerSubmodule(t, linker, fileID, "Adder")
	declareSubmoduleInstance(t, &s, ctx, "Adder", "sub")

	call := callNode(&s, "sub", "5", "6")
	_, _, ok := ctx.flattenFuncCall(frontend.NewCursor(call), call.Span)
	assert.True(t, ok, "arity mismatch still emits a FuncCall instruction, just with a diagnostic")
	require.True(t, ctx.Errors.HasErrors())
	assert.Contains(t, ctx.Errors.All()[0].Message, "Too many arguments")
}

func TestFlattenFuncCallTooFewArgumentsDiagnoses(t *testing.T) {
	var s src
	linker, fileID, ctx := newTestLinkerAndContext(t, &s)
	registerSubmodule(t, linker, fileID, "Adder")
	declareSubmoduleInstance(t, &s, ctx, "Adder", "sub")

	call := callNode(&s, "sub")
	_, _, ok := ctx.flattenFuncCall(frontend.NewCursor(call), call.Span)
	assert.True(t, ok)
	require.True(t, ctx.Errors.HasErrors())
	assert.Contains(t, ctx.Errors.All()[0].Message, "Not enough arguments")
}

func TestFlattenFuncCallExprRewritesSingleOutputToWireRef(t *testing.T) {
	var s src
	linker, fileID, ctx := newTestLinkerAndContext(t, &s)
	registerSubmodule(t, linker, fileID, "Adder")
	declareSubmoduleInstance(t, &s, ctx, "Adder", "sub")

	call := callNode(&s, "sub", "5")
	id := ctx.flattenFuncCallExpr(frontend.NewCursor(call))
	wire := ctx.Module.Instructions.Get(id).(ir.Wire)
	refSrc, ok := wire.Source.(ir.WireRefSource)
	require.True(t, ok)
	_, isSubPort := refSrc.Ref.Root.(ir.SubModulePortRoot)
	assert.True(t, isSubPort)
}

func TestResolveCalleeAutoAllocatesAnonymousSubmoduleForBareGlobalName(t *testing.T) {
	var s src
	linker, fileID, ctx := newTestLinkerAndContext(t, &s)
	registerSubmodule(t, linker, fileID, "Adder")

	calleeNode := s.ident(frontend.NodeIdentifier, "Adder")
	before := ctx.Module.Instructions.Len()
	ref, ok := ctx.resolveCallee(frontend.NewCursor(calleeNode))
	require.True(t, ok)
	assert.Greater(t, ctx.Module.Instructions.Len(), before, "an anonymous SubModule instruction should have been allocated")
	sub := ctx.Module.Instructions.Get(ref.SubmoduleDecl).(ir.SubModule)
	assert.Nil(t, sub.Name, "the auto-allocated submodule instance has no declared local name")
}
