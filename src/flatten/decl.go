package flatten

import (
	"hdlc/src/frontend"
	"hdlc/src/ir"
)

// declOptions carries the small amount of context flattenDeclaration needs beyond the cursor
// itself: whether module-typed declarations are legal here (only a standalone statement, not
// an assignment target or loop variable), and whether a Write instruction is expected to
// follow immediately (so NotDirectlyWritten can be set correctly).
type declOptions struct {
	AllowModules       bool
	NotDirectlyWritten bool
	// ForceKind, when non-nil, overrides identifier-kind inference entirely (used for header
	// port declarations, and for the for loop's always-generative, read-only loop variable).
	ForceKind *ir.IdentifierKind
}

// flattenDeclaration implements spec.md §4.G's flatten_declaration<ALLOW_MODULES>: combines the
// optional IO prefix, declaration modifier, type-or-module-name, identifier, and optional
// latency specifier into either a Declaration or (when AllowModules) a SubModule instruction,
// registers it in the local scope, and claims a pending port if one matches.
func (c *Context) flattenDeclaration(cur *frontend.Cursor, opt declOptions) ir.FlatID {
	span := cur.Span()
	nameNode, ok := cur.Field("name")
	if !ok {
		c.Errors.Error(span, "internal error: declaration missing name")
		return c.errorWire(span)
	}
	name := c.nodeText(nameNode)
	nameSpan := nameNode.Span

	if c.Locals.DeclaredInCurrentFrame(name) {
		prevID, _ := c.Locals.GetDeclarationFor(name)
		prev := c.Module.Instructions.Get(prevID)
		prevSpan := declSpanOf(prev)
		c.Errors.Error(nameSpan, "'"+name+"' is already declared in this scope").
			Info(prevSpan, "previous declaration of '"+name+"' here")
	}

	ioText, hasIO := optionalFieldText(c, cur, "io")
	modifierText, hasModifier := optionalFieldText(c, cur, "modifier")

	kind := ir.IdentLocal
	switch {
	case opt.ForceKind != nil:
		kind = *opt.ForceKind
	case hasIO && ioText == "input":
		kind = ir.IdentInput
	case hasIO && ioText == "output":
		kind = ir.IdentOutput
	case hasModifier && modifierText == "state":
		kind = ir.IdentState
	case hasModifier && modifierText == "gen":
		kind = ir.IdentGenerative
	}

	if kind.IsPort() && hasModifier && modifierText == "state" {
		c.Errors.Error(span, "'state' is not allowed on a port; state belongs inside the module body")
	}
	if kind == ir.IdentInput && hasModifier && modifierText == "state" {
		c.Errors.Error(span, "An input cannot also be declared 'state'")
	}
	if kind.IsPort() && hasModifier && modifierText == "gen" {
		c.Errors.Error(span, "'gen' is not allowed on a port")
	}

	latencyNode, hasLatency := cur.OptionalField("latency")
	var latency *ir.FlatID
	if hasLatency {
		l := c.flattenExpr(frontend.NewCursor(latencyNode))
		latency = &l
	}

	if moduleNameNode, isModuleTyped := cur.OptionalField("module_name"); isModuleTyped {
		if !opt.AllowModules {
			c.Errors.Error(span, "A submodule instance may only be declared as its own standalone statement")
		}
		if hasLatency {
			c.Errors.Error(span, "A latency specifier is not allowed on a submodule instantiation")
		}
		modID, ok := c.Linker.ResolveGlobalModule(moduleNameNode.Span, c.nodeText(moduleNameNode), c.Errors)
		declID := c.allocInstruction(ir.SubModule{
			ModuleID:       modID,
			Name:           strPtr(name),
			NameSpan:       nameSpan,
			ModuleNameSpan: moduleNameNode.Span,
		})
		if ok {
			c.Locals.AddDeclaration(name, declID)
		}
		return declID
	}

	typeNode, ok := cur.OptionalField("type")
	if !ok {
		c.Errors.Error(span, "internal error: declaration missing a type")
		return c.errorWire(span)
	}
	typeExpr := c.flattenTypeExpr(frontend.NewCursor(typeNode))

	var ifaceID ir.ID[ir.Interface]
	if kind.IsPort() {
		if portID, ok := c.claimNextPendingPort(); ok {
			port := c.Module.Ports.Get(portID)
			if port.NameSpan != nameSpan {
				// Debug assertion per spec.md §4.G: flattenInterfacePorts walks the exact same
				// header list nodes (main_inputs/main_outputs, or a named interface's
				// inputs/outputs) that initialize.discoverModule/discoverInterface read each
				// port's Name/NameSpan from in the first place, so this only fires if the two
				// passes disagree about which list a port's declaration lives in or the order
				// they visit it — never because of an independently-built node that merely
				// happens to share a span.
				panic("flatten: pending port name span does not match declaration")
			}
			ifaceID = port.Interface
			declID := c.allocInstruction(ir.Declaration{
				TypeExpr:           typeExpr,
				Type:               ir.Unset,
				IdentifierKind:     kind,
				Name:               name,
				NameSpan:           nameSpan,
				DeclSpan:           span,
				ReadOnly:           kind == ir.IdentInput,
				NotDirectlyWritten: opt.NotDirectlyWritten,
				LatencySpecifier:   latency,
				Interface:          ifaceID,
			})
			c.setPortDeclaration(portID, declID)
			c.Locals.AddDeclaration(name, declID)
			return declID
		}
		c.Errors.Error(span, "internal error: no pending port registered during Initialization for '"+name+"'")
	}

	declID := c.allocInstruction(ir.Declaration{
		TypeExpr:           typeExpr,
		Type:               ir.Unset,
		IdentifierKind:     kind,
		Name:               name,
		NameSpan:           nameSpan,
		DeclSpan:           span,
		ReadOnly:           kind == ir.IdentGenerative && opt.ForceKind != nil, // for-loop variable
		NotDirectlyWritten: opt.NotDirectlyWritten,
		LatencySpecifier:   latency,
	})
	c.Locals.AddDeclaration(name, declID)
	return declID
}

// flattenStandaloneDecls flattens every declaration in a bare (non-assignment) declaration
// list, e.g. a module's port list or a body statement that only declares locals without
// initializing them.
func (c *Context) flattenStandaloneDecls(cur *frontend.Cursor, allowModules bool) {
	cur.CollectList("declaration", func(declCur *frontend.Cursor) {
		c.flattenDeclaration(declCur, declOptions{AllowModules: allowModules, NotDirectlyWritten: true})
	})
}

// flattenTypeExpr lowers a written type-expression node into an ir.TypeExpr, recursing through
// array-type nesting.
func (c *Context) flattenTypeExpr(cur *frontend.Cursor) ir.TypeExpr {
	span := cur.Span()
	if cur.Kind() == frontend.NodeArrayType {
		elemNode, ok := cur.Field("element")
		if !ok {
			c.Errors.Error(span, "internal error: array type missing element")
			return ir.TypeExpr{Span: span, IsError: true}
		}
		elem := c.flattenTypeExpr(frontend.NewCursor(elemNode))
		sizeNode, ok := cur.Field("size")
		if !ok {
			c.Errors.Error(span, "internal error: array type missing size")
			return ir.TypeExpr{Span: span, IsError: true}
		}
		sizeWire := c.flattenExpr(frontend.NewCursor(sizeNode))
		return ir.TypeExpr{
			Span: span,
			Array: &ir.ArrayTypeExpr{
				Elem:        &elem,
				SizeWire:    sizeWire,
				BracketSpan: ir.NewBracketSpan(span),
			},
		}
	}
	if cur.Kind() == frontend.NodeIdentifier {
		return ir.TypeExpr{Span: span, Name: cur.Text()}
	}
	c.Errors.Error(span, "Expected a type here")
	return ir.TypeExpr{Span: span, IsError: true}
}

func optionalFieldText(c *Context, cur *frontend.Cursor, field string) (string, bool) {
	n, ok := cur.OptionalField(field)
	if !ok {
		return "", false
	}
	return c.nodeText(n), true
}

func strPtr(s string) *string { return &s }

// declSpanOf returns the declaration span of any instruction that can be a local-scope target
// (Declaration or SubModule), for duplicate-declaration diagnostics.
func declSpanOf(instr ir.Instruction) ir.Span {
	switch d := instr.(type) {
	case ir.Declaration:
		return d.NameSpan
	case ir.SubModule:
		return d.NameSpan
	default:
		return ir.Span{}
	}
}
