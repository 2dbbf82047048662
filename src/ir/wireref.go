package ir

// WireReferenceRoot is the root of a resolved wire reference: a local declaration, a named
// global constant, or a submodule's port (spec.md §3, grounded on original_source's
// WireReferenceRoot enum in flattening/mod.rs).
type WireReferenceRoot interface {
	wireReferenceRoot()
}

// LocalVariableRoot refers to a Declaration instruction in the same module (a local wire,
// register, generative variable, or port).
type LocalVariableRoot struct{ Decl FlatID }

func (LocalVariableRoot) wireReferenceRoot() {}

// NamedConstantRoot refers to a top-level named constant registered in the linker's constants
// arena (spec.md §3, §4.D), resolved the same way a module name is: through the flat global
// namespace rather than the local variable context.
type NamedConstantRoot struct{ Constant ID[NamedConstant] }

func (NamedConstantRoot) wireReferenceRoot() {}

// SubModulePortRoot refers to a named port of a submodule instance, reached through a
// `submodule.port` style access (spec.md §4.G point 3).
type SubModulePortRoot struct {
	SubModuleDecl FlatID
	Port          ID[Port]
}

func (SubModulePortRoot) wireReferenceRoot() {}

// ErrorRoot marks a reference whose root could not be resolved, so downstream passes
// propagate rather than re-diagnose (spec.md §7).
type ErrorRoot struct{}

func (ErrorRoot) wireReferenceRoot() {}

// PathElement is one step of a wire reference's path after its root (spec.md §3). Currently
// only array indexing is supported; other path kinds (struct field access) are an Open
// Question this front end does not resolve (spec.md §9).
type PathElement interface {
	pathElement()
}

// ArrayIndex indexes into an array-typed wire reference with a (possibly non-compiletime)
// index wire.
type ArrayIndex struct {
	Index FlatID
	Span  Span
}

func (ArrayIndex) pathElement() {}

// WireReference is a fully resolved, reparse-free handle to a storage location: its root plus
// a path of indexing operations (spec.md §3). Both the right-hand side of an expression
// (wrapped in WireRefSource) and the left-hand side of a Write use this same representation.
type WireReference struct {
	Root     WireReferenceRoot
	RootSpan Span
	Path     []PathElement

	// IsGenerative is a slot for the root declaration's generative-ness. Flattening does not
	// set it and the typechecker does not read it: the typechecker looks the root declaration
	// up itself (rootTypeAndCompiletime).
	IsGenerative bool
}
