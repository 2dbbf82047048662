package ir

// File is the per-file record described in spec.md §3/§4.B: source text, a handle to the
// already-parsed tree (owned by the external parser/tree-cursor collaborator — see
// src/frontend), this file's error bucket, and the list of top-level modules it declares, in
// source order. Lifecycle: created by Linker.AddFile, its modules and constants dropped from
// the global namespace by Linker.RemoveEverythingInFile, and rebuilt in place by
// Linker.UpdateFile. Files are never removed from the arena.
type File struct {
	Text string // Source text, indexed by byte Span.

	// Tree is the parsed syntax tree handle produced by the external parser. It is opaque to
	// this package (ir must not import frontend, which itself depends on ir's Span type) and
	// is type-asserted back to *frontend.Node by the flattener that consumes it.
	Tree any

	Errors *ErrorCollector // This file's accumulated diagnostics.

	// AssociatedModules lists, in source order, the module IDs this file declared during
	// Initialization. Used by flatten.FlattenAllModules to visit modules in linker insertion
	// order (spec.md §5); typecheck.AllModules walks the module arena directly instead.
	AssociatedModules []ID[Module]

	// AssociatedConstants lists, in source order, the top-level named constants this file
	// declared during Initialization, mirroring AssociatedModules so RemoveEverythingInFile can
	// tear them down from the global namespace on a re-parse.
	AssociatedConstants []ID[NamedConstant]
}

// SpanText returns the substring of the file's source text covered by span.
func (f *File) SpanText(span Span) string {
	return span.Text(f.Text)
}
