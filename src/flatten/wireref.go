package flatten

import (
	"hdlc/src/frontend"
	"hdlc/src/ir"
)

// PartialWireReference is the five-variant sum type spec.md §9 calls for: because the grammar
// allows chains like `mod.iface.port[i]`, the flattener can't commit to "this is a usable wire
// reference" until it has seen the whole chain, so every intermediate step returns one of
// these variants and path operators (array indexing, field access) lift over whichever variant
// they're given. Grounded on original_source's PartialWireReference enum in
// flattening/parse.rs.
type PartialWireReference interface {
	partialWireReference()
}

// PartialError marks a reference chain that already produced a diagnostic.
type PartialError struct{}

func (PartialError) partialWireReference() {}

// PartialGlobalModuleName is a bare module name, valid only in call position (the callee of a
// function-call-style connection); any other use is a shape error.
type PartialGlobalModuleName struct {
	ModuleID ir.ID[ir.Module]
	Span     ir.Span
}

func (PartialGlobalModuleName) partialWireReference() {}

// PartialModuleButNoPort is a submodule instance variable referenced on its own, before any
// `.port` or `.interface` has narrowed it further.
type PartialModuleButNoPort struct {
	SubModuleDecl ir.FlatID
	Span          ir.Span
}

func (PartialModuleButNoPort) partialWireReference() {}

// PartialModuleWithInterface is a submodule instance narrowed down to one of its named
// interfaces, still awaiting either a call or a further `.port` access.
type PartialModuleWithInterface struct {
	SubModuleDecl ir.FlatID
	SubModuleSpan ir.Span
	Interface     ir.ID[ir.Interface]
	InterfaceSpan ir.Span
}

func (PartialModuleWithInterface) partialWireReference() {}

// PartialWireRef is a fully resolved, directly usable wire reference.
type PartialWireRef struct {
	Ref ir.WireReference
}

func (PartialWireRef) partialWireReference() {}

// flattenWireReference implements spec.md §4.G's flatten_wire_reference: resolves the root
// (identifier, possibly a submodule or a bare global module name) then lifts any trailing
// `.field` / `[index]` path operators over the result.
func (c *Context) flattenWireReference(cur *frontend.Cursor) PartialWireReference {
	span := cur.Span()
	switch cur.Kind() {
	case frontend.NodeIdentifier:
		return c.resolveIdentifierRoot(cur.Text(), span)

	case frontend.NodeFieldAccess:
		base, ok := cur.Field("base")
		if !ok {
			c.Errors.Error(span, "internal error: field access missing base")
			return PartialError{}
		}
		baseCursor := frontend.NewCursor(base)
		basePartial := c.flattenWireReference(baseCursor)
		fieldNode, ok := cur.Field("name")
		if !ok {
			c.Errors.Error(span, "internal error: field access missing name")
			return PartialError{}
		}
		return c.liftFieldAccess(basePartial, fieldNode.Span, c.nodeText(fieldNode))

	case frontend.NodeArrayIndex:
		base, ok := cur.Field("base")
		if !ok {
			c.Errors.Error(span, "internal error: array index missing base")
			return PartialError{}
		}
		baseCursor := frontend.NewCursor(base)
		basePartial := c.flattenWireReference(baseCursor)
		idxNode, ok := cur.Field("index")
		if !ok {
			c.Errors.Error(span, "internal error: array index missing index")
			return PartialError{}
		}
		idxCursor := frontend.NewCursor(idxNode)
		idxWire := c.flattenExpr(idxCursor)
		return c.liftArrayIndex(basePartial, ir.ArrayIndex{Index: idxWire, Span: span})

	case frontend.NodeBinaryExpr, frontend.NodeUnaryExpr, frontend.NodeIntLiteral,
		frontend.NodeBoolLiteral, frontend.NodeFuncCallExpr:
		// spec.md §4.G: "Operators/number/paren/call as wire-ref roots each produce a
		// targeted diagnostic" — these are valid expressions but not valid assignment/path
		// roots.
		c.Errors.Error(span, "This expression is not a valid wire reference")
		return PartialError{}

	default:
		c.CouldNotMatchWireRef(cur)
		return PartialError{}
	}
}

// CouldNotMatchWireRef reports the generic failure when a node kind is not any recognized
// wire-reference shape.
func (c *Context) CouldNotMatchWireRef(cur *frontend.Cursor) {
	cur.CouldNotMatch(c.Errors, "a wire reference")
}

// resolveIdentifierRoot resolves a bare identifier: local declarations take priority over
// globals (spec.md §4.E's resolution protocol), then distinguishes a submodule-typed local
// from an ordinary wire-typed one, then falls back to the linker's global module namespace.
func (c *Context) resolveIdentifierRoot(name string, span ir.Span) PartialWireReference {
	if declID, ok := c.Locals.GetDeclarationFor(name); ok {
		instr := c.Module.Instructions.Get(declID)
		if _, isSubModule := instr.(ir.SubModule); isSubModule {
			return PartialModuleButNoPort{SubModuleDecl: declID, Span: span}
		}
		return PartialWireRef{Ref: ir.WireReference{
			Root:     ir.LocalVariableRoot{Decl: declID},
			RootSpan: span,
		}}
	}
	global, ok := c.Linker.ResolveGlobal(span, name, c.Errors)
	if !ok {
		return PartialError{}
	}
	switch g := global.(type) {
	case ir.GlobalModule:
		return PartialGlobalModuleName{ModuleID: g.ID, Span: span}
	case ir.GlobalConstant:
		return PartialWireRef{Ref: ir.WireReference{
			Root:     ir.NamedConstantRoot{Constant: g.ID},
			RootSpan: span,
		}}
	default:
		c.Linker.NotExpectedGlobalError(span, name, c.Errors, "a local or constant")
		return PartialError{}
	}
}

// liftFieldAccess implements spec.md §4.G's field-access lifting rules across every partial
// variant: a port name on a ModuleButNoPort yields a WireReference; an interface name yields
// ModuleWithInterface; struct-field access on an already-resolved wire reference is reserved
// (diagnostic only).
func (c *Context) liftFieldAccess(base PartialWireReference, fieldSpan ir.Span, name string) PartialWireReference {
	switch b := base.(type) {
	case PartialError:
		return PartialError{}

	case PartialModuleButNoPort:
		instr := c.Module.Instructions.Get(b.SubModuleDecl)
		sub, ok := instr.(ir.SubModule)
		if !ok {
			c.Errors.Error(fieldSpan, "internal error: submodule declaration does not reference a SubModule instruction")
			return PartialError{}
		}
		subModule := c.Linker.Modules.GetPtr(sub.ModuleID)
		portID, hasPort, ifaceID, hasIface := subModule.PortOrInterfaceByName(fieldSpan, name, c.Errors)
		if hasPort {
			return PartialWireRef{Ref: ir.WireReference{
				Root:     ir.SubModulePortRoot{SubModuleDecl: b.SubModuleDecl, Port: portID},
				RootSpan: ir.NewOverarchingSpan(b.Span, fieldSpan),
			}}
		}
		if hasIface {
			return PartialModuleWithInterface{
				SubModuleDecl: b.SubModuleDecl,
				SubModuleSpan: b.Span,
				Interface:     ifaceID,
				InterfaceSpan: fieldSpan,
			}
		}
		return PartialError{}

	case PartialModuleWithInterface:
		// A port is looked up by name across the whole submodule, not only within this
		// interface; naming another interface here is an error.
		instr := c.Module.Instructions.Get(b.SubModuleDecl)
		sub, ok := instr.(ir.SubModule)
		if !ok {
			c.Errors.Error(fieldSpan, "internal error: submodule declaration does not reference a SubModule instruction")
			return PartialError{}
		}
		subModule := c.Linker.Modules.GetPtr(sub.ModuleID)
		portID, hasPort, _, hasIface := subModule.PortOrInterfaceByName(fieldSpan, name, c.Errors)
		if hasPort {
			return PartialWireRef{Ref: ir.WireReference{
				Root:     ir.SubModulePortRoot{SubModuleDecl: b.SubModuleDecl, Port: portID},
				RootSpan: ir.NewOverarchingSpan(b.SubModuleSpan, fieldSpan),
			}}
		}
		if hasIface {
			c.Errors.Error(fieldSpan, "Cannot access interface '"+name+"' through another interface")
		}
		return PartialError{}

	case PartialGlobalModuleName:
		c.Errors.Error(fieldSpan, "Cannot access a field on a module name; did you mean to instantiate it first?")
		return PartialError{}

	case PartialWireRef:
		// Reserved (spec.md §9): struct fields on wires are unimplemented.
		c.Errors.Error(fieldSpan, "Struct field access on a wire is not supported")
		return PartialError{}

	default:
		return PartialError{}
	}
}

// liftArrayIndex implements array-index lifting: only a resolved WireReference can be indexed;
// indexing a module-typed partial result is the explicit TODO-level error spec.md §9 calls
// for ("Module arrays... are not implemented... treat this as an explicit error").
func (c *Context) liftArrayIndex(base PartialWireReference, idx ir.ArrayIndex) PartialWireReference {
	switch b := base.(type) {
	case PartialError:
		return PartialError{}

	case PartialWireRef:
		ref := b.Ref
		ref.Path = append(append([]ir.PathElement{}, ref.Path...), idx)
		return PartialWireRef{Ref: ref}

	case PartialModuleButNoPort, PartialModuleWithInterface, PartialGlobalModuleName:
		c.Errors.Error(idx.Span, "Arrays of modules are not supported")
		return PartialError{}

	default:
		return PartialError{}
	}
}

// expectWireref narrows partial to an actual WireReference, emitting a targeted diagnostic for
// every other variant (spec.md §4.G's expect_wireref).
func (c *Context) expectWireref(partial PartialWireReference, span ir.Span) (ir.WireReference, bool) {
	switch p := partial.(type) {
	case PartialWireRef:
		return p.Ref, true
	case PartialError:
		return ir.WireReference{}, false
	case PartialGlobalModuleName:
		c.Errors.Error(span, "Expected a value, found a module name")
		return ir.WireReference{}, false
	case PartialModuleButNoPort:
		c.Errors.Error(span, "Expected a value, found a submodule instance; access one of its ports")
		return ir.WireReference{}, false
	case PartialModuleWithInterface:
		c.Errors.Error(span, "Expected a value, found a submodule interface; call it or access one of its ports")
		return ir.WireReference{}, false
	default:
		return ir.WireReference{}, false
	}
}
