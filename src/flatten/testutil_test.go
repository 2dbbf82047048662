package flatten

import (
	"strings"
	"testing"

	"hdlc/src/frontend"
	"hdlc/src/ir"
)

// src is a tiny growable source-text builder: every node the tests build its spans against a
// position carved out of a single growing buffer, so nodeText/SpanText (which read from
// ir.File.Text, not frontend.Node.Text) see the same text a Node claims to cover.
type src struct {
	b strings.Builder
	// sync, once newTestLinkerAndContext has registered a file for this builder, re-stamps that
	// file's stored Text with the buffer's current contents. Node text built after the file was
	// registered would otherwise index into a stale, already-snapshotted File.Text.
	sync func()
}

// put appends text (plus a trailing space, for readable output) and returns the span it now
// occupies in the growing buffer.
func (s *src) put(text string) ir.Span {
	start := s.b.Len()
	s.b.WriteString(text)
	end := s.b.Len()
	s.b.WriteByte(' ')
	if s.sync != nil {
		s.sync()
	}
	return ir.Span{Start: start, End: end}
}

// ident builds an identifier/literal-shaped terminal Node: its Span points at text's occurrence
// in the shared buffer (for nodeText callers) and its Text field is also set directly (for
// cur.Text() callers, e.g. int/bool literals and array-type element names).
func (s *src) ident(kind frontend.NodeKind, text string) *frontend.Node {
	span := s.put(text)
	return &frontend.Node{Kind: kind, Span: span, Text: text}
}

func newTestLinkerAndContext(t *testing.T, text *src) (*ir.Linker, ir.ID[ir.File], *Context) {
	t.Helper()
	linker := ir.NewLinker()
	fileID := linker.AddFile(text.b.String(), nil)
	text.sync = func() {
		linker.Files.GetPtr(fileID).Text = text.b.String()
	}
	modID, _ := linker.WithFileBuilder(fileID, "main", func(id ir.ID[ir.Module]) ir.Module {
		return ir.Module{LinkInfo: ir.LinkInfo{Name: "main", File: fileID}}
	})
	ctx := NewContext(linker, fileID, modID)
	return linker, fileID, ctx
}

// registerSubmodule builds a minimal, fully flattened submodule with one input port "in" and
// one output port "out", both already backed by a Declaration, as if Initialization and
// flattening had already completed for it — the shape a real submodule reference resolves
// against.
func registerSubmodule(t *testing.T, linker *ir.Linker, fileID ir.ID[ir.File], name string) ir.ID[ir.Module] {
	t.Helper()
	modID, _ := linker.WithFileBuilder(fileID, name, func(id ir.ID[ir.Module]) ir.Module {
		var mod ir.Module
		inDecl := mod.Instructions.Alloc(ir.Declaration{
			IdentifierKind: ir.IdentInput,
			Name:           "in",
			ReadOnly:       true,
		})
		inPort := mod.Ports.Alloc(ir.Port{Name: "in", Direction: ir.Input, DeclInstruction: inDecl})

		outDecl := mod.Instructions.Alloc(ir.Declaration{
			IdentifierKind: ir.IdentOutput,
			Name:           "out",
		})
		outPort := mod.Ports.Alloc(ir.Port{Name: "out", Direction: ir.Output, DeclInstruction: outDecl})

		mod.Interfaces.Alloc(ir.Interface{
			Name:        "main",
			InputPorts:  ir.IDRange[ir.Port]{Start: inPort, End: inPort + 1},
			OutputPorts: ir.IDRange[ir.Port]{Start: outPort, End: outPort + 1},
		})
		mod.LinkInfo = ir.LinkInfo{Name: name, File: fileID}
		return mod
	})
	return modID
}
