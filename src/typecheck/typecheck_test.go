package typecheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hdlc/src/ir"
	"hdlc/src/typecheck"
)

// buildLinker registers one module (via buildMod) as the linker's single file/module and
// returns the linker plus that module's ID, ready for typecheck.Module.
func buildLinker(t *testing.T, buildMod func(id ir.ID[ir.Module]) ir.Module) (*ir.Linker, ir.ID[ir.Module]) {
	t.Helper()
	linker := ir.NewLinker()
	fileID := linker.AddFile("", nil)
	modID, ok := linker.WithFileBuilder(fileID, "m", func(id ir.ID[ir.Module]) ir.Module {
		mod := buildMod(id)
		mod.LinkInfo = ir.LinkInfo{Name: "m", File: fileID}
		return mod
	})
	require.True(t, ok)
	return linker, modID
}

func TestModuleLowersPlainDeclarationType(t *testing.T) {
	var declID ir.FlatID
	linker, modID := buildLinker(t, func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		declID = mod.Instructions.Alloc(ir.Declaration{TypeExpr: ir.TypeExpr{Name: "int"}})
		return mod
	})
	typecheck.Module(linker, modID)

	mod := linker.Modules.GetPtr(modID)
	decl := mod.Instructions.Get(declID).(ir.Declaration)
	assert.True(t, decl.Type.Equal(ir.Int))
}

func TestModuleUnknownTypeNameDiagnoses(t *testing.T) {
	linker, modID := buildLinker(t, func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		mod.Instructions.Alloc(ir.Declaration{TypeExpr: ir.TypeExpr{Name: "nonsense"}})
		return mod
	})
	typecheck.Module(linker, modID)

	file := linker.Files.GetPtr(linker.Modules.GetPtr(modID).LinkInfo.File)
	require.True(t, file.Errors.HasErrors())
	assert.Contains(t, file.Errors.All()[0].Message, "Unknown type")
}

func TestModuleArrayTypeWithCompiletimeIntSize(t *testing.T) {
	var declID, sizeWireID ir.FlatID
	linker, modID := buildLinker(t, func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		sizeWireID = mod.Instructions.Alloc(ir.Wire{Source: ir.ConstantSource{Value: ir.IntValue("4")}})
		declID = mod.Instructions.Alloc(ir.Declaration{
			TypeExpr: ir.TypeExpr{Array: &ir.ArrayTypeExpr{
				Elem:     &ir.TypeExpr{Name: "int"},
				SizeWire: sizeWireID,
			}},
		})
		return mod
	})
	typecheck.Module(linker, modID)

	mod := linker.Modules.GetPtr(modID)
	file := linker.Files.GetPtr(mod.LinkInfo.File)
	assert.False(t, file.Errors.HasErrors())
	decl := mod.Instructions.Get(declID).(ir.Declaration)
	require.Equal(t, ir.TypeArray, decl.Type.Kind)
	assert.True(t, decl.Type.Elem.Equal(ir.Int))
}

func TestModuleArraySizeMustBeCompiletimeDiagnoses(t *testing.T) {
	linker, modID := buildLinker(t, func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		nonCT := mod.Instructions.Alloc(ir.Declaration{TypeExpr: ir.TypeExpr{Name: "int"}})
		sizeWireID := mod.Instructions.Alloc(ir.Wire{Source: ir.WireRefSource{
			Ref: ir.WireReference{Root: ir.LocalVariableRoot{Decl: nonCT}},
		}})
		// The declaration feeding the wire-ref was allocated before the wire, so its Type is set
		// before the wire itself is visited, mirroring forward-pass ordering; the array
		// declaration using the wire as its size comes last.
		mod.Instructions.Alloc(ir.Declaration{
			TypeExpr: ir.TypeExpr{Array: &ir.ArrayTypeExpr{
				Elem:     &ir.TypeExpr{Name: "int"},
				SizeWire: sizeWireID,
			}},
		})
		return mod
	})
	typecheck.Module(linker, modID)

	file := linker.Files.GetPtr(linker.Modules.GetPtr(modID).LinkInfo.File)
	require.True(t, file.Errors.HasErrors())
	found := false
	for _, d := range file.Errors.All() {
		if d.Message == "array size must be a compile-time value" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestModuleBinaryOpMismatchedTypesDiagnoses(t *testing.T) {
	linker, modID := buildLinker(t, func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		left := mod.Instructions.Alloc(ir.Wire{Source: ir.ConstantSource{Value: ir.IntValue("1")}})
		right := mod.Instructions.Alloc(ir.Wire{Source: ir.ConstantSource{Value: ir.BoolValue(true)}})
		mod.Instructions.Alloc(ir.Wire{Source: ir.BinaryOpSource{Op: ir.BinAdd, Left: left, Right: right}})
		return mod
	})
	typecheck.Module(linker, modID)

	file := linker.Files.GetPtr(linker.Modules.GetPtr(modID).LinkInfo.File)
	require.True(t, file.Errors.HasErrors())
	assert.Contains(t, file.Errors.All()[0].Message, "mismatched types")
}

func TestModuleIfConditionMustBeBoolDiagnoses(t *testing.T) {
	linker, modID := buildLinker(t, func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		cond := mod.Instructions.Alloc(ir.Wire{Source: ir.ConstantSource{Value: ir.IntValue("1")}})
		mod.Instructions.Alloc(ir.IfStatement{Condition: cond, ThenStart: 2, ThenEndElseStart: 2, ElseEnd: 2})
		return mod
	})
	typecheck.Module(linker, modID)

	file := linker.Files.GetPtr(linker.Modules.GetPtr(modID).LinkInfo.File)
	require.True(t, file.Errors.HasErrors())
	assert.Contains(t, file.Errors.All()[0].Message, "if condition must be bool")
}

func TestModuleForBoundsMustBeCompiletimeIntDiagnoses(t *testing.T) {
	linker, modID := buildLinker(t, func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		start := mod.Instructions.Alloc(ir.Wire{Source: ir.ConstantSource{Value: ir.BoolValue(true)}})
		end := mod.Instructions.Alloc(ir.Wire{Source: ir.ConstantSource{Value: ir.IntValue("4")}})
		mod.Instructions.Alloc(ir.ForStatement{Start: start, End: end, Body: ir.IDRange[ir.Instruction]{Start: 3, End: 3}})
		return mod
	})
	typecheck.Module(linker, modID)

	file := linker.Files.GetPtr(linker.Modules.GetPtr(modID).LinkInfo.File)
	require.True(t, file.Errors.HasErrors())
	assert.Contains(t, file.Errors.All()[0].Message, "start bound must be a compile-time int")
}

func TestModuleCheckWriteTypeMismatchDiagnoses(t *testing.T) {
	linker, modID := buildLinker(t, func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		target := mod.Instructions.Alloc(ir.Declaration{TypeExpr: ir.TypeExpr{Name: "bool"}})
		from := mod.Instructions.Alloc(ir.Wire{Source: ir.ConstantSource{Value: ir.IntValue("1")}})
		mod.Instructions.Alloc(ir.Write{
			From: from,
			To:   ir.WireReference{Root: ir.LocalVariableRoot{Decl: target}},
		})
		return mod
	})
	typecheck.Module(linker, modID)

	file := linker.Files.GetPtr(linker.Modules.GetPtr(modID).LinkInfo.File)
	require.True(t, file.Errors.HasErrors())
	assert.Contains(t, file.Errors.All()[0].Message, "cannot assign value of type")
}

func TestModuleCheckWriteMatchingTypesNoDiagnostic(t *testing.T) {
	linker, modID := buildLinker(t, func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		target := mod.Instructions.Alloc(ir.Declaration{TypeExpr: ir.TypeExpr{Name: "int"}})
		from := mod.Instructions.Alloc(ir.Wire{Source: ir.ConstantSource{Value: ir.IntValue("1")}})
		mod.Instructions.Alloc(ir.Write{
			From: from,
			To:   ir.WireReference{Root: ir.LocalVariableRoot{Decl: target}},
		})
		return mod
	})
	typecheck.Module(linker, modID)

	file := linker.Files.GetPtr(linker.Modules.GetPtr(modID).LinkInfo.File)
	assert.False(t, file.Errors.HasErrors())
}

func TestModuleCheckCallArgTypesMismatchDiagnoses(t *testing.T) {
	linker := ir.NewLinker()
	fileID := linker.AddFile("", nil)

	subModID, ok := linker.WithFileBuilder(fileID, "Adder", func(id ir.ID[ir.Module]) ir.Module {
		var sub ir.Module
		inDecl := sub.Instructions.Alloc(ir.Declaration{TypeExpr: ir.TypeExpr{Name: "int"}, Type: ir.Int, ReadOnly: true})
		inPort := sub.Ports.Alloc(ir.Port{Name: "in", Direction: ir.Input, DeclInstruction: inDecl})
		sub.Interfaces.Alloc(ir.Interface{
			Name:        "main",
			InputPorts:  ir.IDRange[ir.Port]{Start: inPort, End: inPort + 1},
			OutputPorts: ir.IDRange[ir.Port]{},
		})
		sub.LinkInfo = ir.LinkInfo{Name: "Adder", File: fileID}
		return sub
	})
	require.True(t, ok)

	mainModID, ok := linker.WithFileBuilder(fileID, "main", func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		subDecl := mod.Instructions.Alloc(ir.SubModule{ModuleID: subModID})
		arg := mod.Instructions.Alloc(ir.Wire{Source: ir.ConstantSource{Value: ir.BoolValue(true)}})
		mod.Instructions.Alloc(ir.FuncCall{
			InterfaceRef: ir.ModuleInterfaceReference{SubmoduleDecl: subDecl, SubmoduleIface: ir.MainInterfaceID},
			Arguments:    []ir.FlatID{arg},
			Inputs:       ir.IDRange[ir.Port]{Start: 0, End: 1},
		})
		mod.LinkInfo = ir.LinkInfo{Name: "main", File: fileID}
		return mod
	})
	require.True(t, ok)

	typecheck.Module(linker, mainModID)

	file := linker.Files.GetPtr(fileID)
	require.True(t, file.Errors.HasErrors())
	assert.Contains(t, file.Errors.All()[0].Message, "argument has type")
}

func TestAllModulesTypechecksEveryModule(t *testing.T) {
	linker := ir.NewLinker()
	fileID := linker.AddFile("", nil)
	linker.WithFileBuilder(fileID, "a", func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		mod.Instructions.Alloc(ir.Declaration{TypeExpr: ir.TypeExpr{Name: "int"}})
		mod.LinkInfo = ir.LinkInfo{Name: "a", File: fileID}
		return mod
	})
	linker.WithFileBuilder(fileID, "b", func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		mod.Instructions.Alloc(ir.Declaration{TypeExpr: ir.TypeExpr{Name: "bool"}})
		mod.LinkInfo = ir.LinkInfo{Name: "b", File: fileID}
		return mod
	})

	typecheck.AllModules(linker)

	aMod := linker.Modules.GetPtr(0)
	bMod := linker.Modules.GetPtr(1)
	assert.True(t, aMod.Instructions.Get(0).(ir.Declaration).Type.Equal(ir.Int))
	assert.True(t, bMod.Instructions.Get(0).(ir.Declaration).Type.Equal(ir.Bool))
}
