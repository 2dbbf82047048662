// Package typecheck implements spec.md §4.H: walking a module's flattened instruction list in
// order, assigning every Wire an abstract type and a compile-time flag, and lowering every
// Declaration's written type expression to its abstract type.
package typecheck

import (
	"fmt"

	"hdlc/src/ir"
)

// Module typechecks every instruction of moduleID in place, in instruction order (spec.md
// §4.H, §5's "ordering" rule). It never removes an instruction or leaves a Wire untyped: a
// mismatched wire keeps its expected type (§4.H: "a mismatched wire retains its expected type
// so downstream checks still proceed").
func Module(linker *ir.Linker, moduleID ir.ID[ir.Module]) {
	mod := linker.Modules.GetPtr(moduleID)
	errors := linker.Files.GetPtr(mod.LinkInfo.File).Errors

	c := &checker{linker: linker, mod: mod, errors: errors}
	n := mod.Instructions.Len()
	for i := 0; i < n; i++ {
		id := ir.ID[ir.Instruction](i)
		c.typecheckInstruction(id)
	}
}

// AllModules typechecks every module the linker knows about, in linker insertion order
// (spec.md §5).
func AllModules(linker *ir.Linker) {
	n := linker.Modules.Len()
	for i := 0; i < n; i++ {
		Module(linker, ir.ID[ir.Module](i))
	}
}

type checker struct {
	linker *ir.Linker
	mod    *ir.Module
	errors *ir.ErrorCollector
}

func (c *checker) typecheckInstruction(id ir.FlatID) {
	instr := c.mod.Instructions.Get(id)
	switch v := instr.(type) {
	case ir.Declaration:
		v.Type = c.lowerTypeExpr(v.TypeExpr)
		c.mod.Instructions.Set(id, v)

	case ir.Wire:
		v.Type, v.IsCompiletime = c.typeOfSource(v.Source, v.Span)
		c.mod.Instructions.Set(id, v)

	case ir.Write:
		c.checkWrite(v)

	case ir.IfStatement:
		condType, _ := c.wireTypeAndCompiletime(v.Condition)
		if !condType.Equal(ir.Bool) && condType.Kind != ir.TypeError {
			c.errors.Error(c.mod.Instructions.Get(v.Condition).(ir.Wire).Span,
				"if condition must be bool, found "+condType.String())
		}

	case ir.ForStatement:
		startType, startCT := c.wireTypeAndCompiletime(v.Start)
		endType, endCT := c.wireTypeAndCompiletime(v.End)
		if !startType.Equal(ir.Int) || !startCT {
			c.errors.Error(c.mod.Instructions.Get(v.Start).(ir.Wire).Span, "for loop start bound must be a compile-time int")
		}
		if !endType.Equal(ir.Int) || !endCT {
			c.errors.Error(c.mod.Instructions.Get(v.End).(ir.Wire).Span, "for loop end bound must be a compile-time int")
		}

	case ir.FuncCall:
		c.checkCallArgTypes(v)
	}
}

// typeOfSource computes a Wire's (AbstractType, is_compiletime) from its source, per spec.md
// §4.H: numeric literals carry the integer type, operator results derive from operands, wire
// references adopt their root's type modified by the path.
func (c *checker) typeOfSource(source ir.WireSource, span ir.Span) (ir.AbstractType, bool) {
	switch s := source.(type) {
	case ir.ConstantSource:
		if s.Value.Kind == ir.ValueBool {
			return ir.Bool, true
		}
		return ir.Int, true

	case ir.ErrorSource:
		return ir.Error, true

	case ir.UnaryOpSource:
		rt, rct := c.wireTypeAndCompiletime(s.Right)
		return rt, rct

	case ir.BinaryOpSource:
		lt, lct := c.wireTypeAndCompiletime(s.Left)
		rt, rct := c.wireTypeAndCompiletime(s.Right)
		if lt.Kind != ir.TypeError && rt.Kind != ir.TypeError && !lt.Equal(rt) {
			c.errors.Error(span, fmt.Sprintf("operator %s applied to mismatched types %s and %s", s.Op, lt, rt))
		}
		resultType := lt
		if s.Op.IsComparison() {
			resultType = ir.Bool
		}
		return resultType, lct && rct

	case ir.WireRefSource:
		return c.typeOfWireRef(s.Ref)

	default:
		return ir.Error, true
	}
}

// typeOfWireRef resolves a WireReference's type by starting from its root's declared type and
// applying each path element (only ArrayIndex exists today; it reduces array-of-T to T).
func (c *checker) typeOfWireRef(ref ir.WireReference) (ir.AbstractType, bool) {
	baseType, baseCT := c.rootTypeAndCompiletime(ref.Root)
	t := baseType
	ct := baseCT
	for _, elem := range ref.Path {
		idx, ok := elem.(ir.ArrayIndex)
		if !ok {
			continue
		}
		idxType, idxCT := c.wireTypeAndCompiletime(idx.Index)
		if !idxType.Equal(ir.Int) && idxType.Kind != ir.TypeError {
			c.errors.Error(idx.Span, "array index must be int, found "+idxType.String())
		}
		if t.Kind == ir.TypeArray {
			t = *t.Elem
		} else if t.Kind != ir.TypeError {
			c.errors.Error(idx.Span, "cannot index into non-array type "+t.String())
			t = ir.Error
		}
		ct = ct && idxCT
	}
	return t, ct
}

func (c *checker) rootTypeAndCompiletime(root ir.WireReferenceRoot) (ir.AbstractType, bool) {
	switch r := root.(type) {
	case ir.LocalVariableRoot:
		instr := c.mod.Instructions.Get(r.Decl)
		decl, ok := instr.(ir.Declaration)
		if !ok {
			return ir.Error, true
		}
		return decl.Type, decl.IdentifierKind == ir.IdentGenerative

	case ir.SubModulePortRoot:
		sub := c.mod.Instructions.Get(r.SubModuleDecl).(ir.SubModule)
		target := c.linker.Modules.GetPtr(sub.ModuleID)
		decl := target.GetPortDecl(r.Port)
		return decl.Type, false

	case ir.NamedConstantRoot:
		return c.linker.Constants.Get(r.Constant).Value.AbstractType(), true

	default:
		return ir.Error, true
	}
}

// wireTypeAndCompiletime reads back a Wire instruction already typechecked earlier in the same
// forward pass (spec.md §5: instruction IDs are in source/dependency order, so every operand
// referenced by an instruction was allocated, and therefore typechecked, earlier).
func (c *checker) wireTypeAndCompiletime(id ir.FlatID) (ir.AbstractType, bool) {
	instr := c.mod.Instructions.Get(id)
	if w, ok := instr.(ir.Wire); ok {
		return w.Type, w.IsCompiletime
	}
	return ir.Error, true
}

// checkWrite verifies the written value's type matches the target wire reference's type
// (spec.md §4.H's per-instruction type mismatch diagnostics).
func (c *checker) checkWrite(w ir.Write) {
	fromType, _ := c.wireTypeAndCompiletime(w.From)
	toType, _ := c.typeOfWireRef(w.To)
	if fromType.Kind == ir.TypeError || toType.Kind == ir.TypeError {
		return
	}
	if !fromType.Equal(toType) {
		c.errors.Error(w.ToSpan, fmt.Sprintf("cannot assign value of type %s to a target of type %s", fromType, toType))
	}
}

// checkCallArgTypes verifies each argument wire's type against its corresponding input port's
// declared type.
func (c *checker) checkCallArgTypes(call ir.FuncCall) {
	sub := c.mod.Instructions.Get(call.InterfaceRef.SubmoduleDecl).(ir.SubModule)
	target := c.linker.Modules.GetPtr(sub.ModuleID)
	for i, argID := range call.Arguments {
		if i >= call.Inputs.Len() {
			break
		}
		portID := call.Inputs.Start + ir.ID[ir.Port](i)
		decl := target.GetPortDecl(portID)
		argType, _ := c.wireTypeAndCompiletime(argID)
		if argType.Kind == ir.TypeError || decl.Type.Kind == ir.TypeError {
			continue
		}
		if !argType.Equal(decl.Type) {
			argWire := c.mod.Instructions.Get(argID).(ir.Wire)
			c.errors.Error(argWire.Span, fmt.Sprintf("argument has type %s, expected %s", argType, decl.Type))
		}
	}
}

// lowerTypeExpr lowers a written TypeExpr to its AbstractType, resolving named types against
// the small fixed built-in set this front end understands (spec.md doesn't define a
// user-defined-type system; "int"/"bool" plus arrays over them is the full domain §3 and §8's
// scenarios exercise).
func (c *checker) lowerTypeExpr(expr ir.TypeExpr) ir.AbstractType {
	if expr.IsError {
		return ir.Error
	}
	if expr.Array != nil {
		sizeType, sizeCT := c.wireTypeAndCompiletime(expr.Array.SizeWire)
		if !sizeType.Equal(ir.Int) && sizeType.Kind != ir.TypeError {
			c.errors.Error(expr.Array.BracketSpan.Span, "array size must be int, found "+sizeType.String())
		}
		if !sizeCT {
			c.errors.Error(expr.Array.BracketSpan.Span, "array size must be a compile-time value")
		}
		return ir.ArrayOf(c.lowerTypeExpr(*expr.Array.Elem))
	}
	switch expr.Name {
	case "int":
		return ir.Int
	case "bool":
		return ir.Bool
	default:
		c.errors.Error(expr.Span, "Unknown type '"+expr.Name+"'")
		return ir.Error
	}
}
