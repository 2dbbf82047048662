package ir

// GlobalName is the kind-discriminated result of a global name lookup (spec.md §4.D:
// resolve_global returns a ResolvedName whose name_elem is Module, Type, or Constant).
// Grounded on original_source's NameElem enum (flattening/parse.rs).
type GlobalName interface {
	globalName()
}

// GlobalModule names a module declaration.
type GlobalModule struct{ ID ID[Module] }

func (GlobalModule) globalName() {}

// GlobalType names a type-alias declaration. This front end's grammar (frontend.NodeKind)
// carries no type-alias construct, so nothing ever actually registers one; the variant exists
// so resolve_global's Type arm is a real, reachable kind rather than one synthesized only to
// satisfy a type switch (spec.md §3's "types arena").
type GlobalType struct{ ID ID[NamedType] }

func (GlobalType) globalName() {}

// GlobalConstant names a top-level compile-time constant declaration.
type GlobalConstant struct{ ID ID[NamedConstant] }

func (GlobalConstant) globalName() {}

// NamedType is a global type-alias entry in the linker's type namespace (spec.md §3's "types
// arena").
type NamedType struct {
	Name     string
	NameSpan Span
	File     ID[File]
	Type     AbstractType
}

// NamedConstant is a global compile-time value entry in the linker's constant namespace
// (spec.md §3's "constants arena"), discovered by Initialization from a top-level const
// declaration and referenced from wire position via a NamedConstantRoot.
type NamedConstant struct {
	Name     string
	NameSpan Span
	File     ID[File]
	Value    Value
}

// Linker owns every file and module arena across the whole compilation (spec.md §3/§4.D).
// It is the one place new files are registered, edited files are rebuilt from a checkpoint,
// and global names (modules, type aliases, constants) are resolved during flattening.
type Linker struct {
	Files     Arena[File]
	Modules   Arena[Module]
	Types     Arena[NamedType]
	Constants Arena[NamedConstant]

	// globals maps any top-level name (module, type alias, or constant) to its kind-tagged
	// arena ID. Names are unique across the whole linker and share one flat namespace,
	// matching spec.md §4.B/§4.D.
	globals map[string]GlobalName
}

// NewLinker returns an empty Linker ready to accept files.
func NewLinker() *Linker {
	return &Linker{globals: make(map[string]GlobalName)}
}

// AddFile registers a brand-new file, with no modules yet discovered in it (spec.md §4.A
// Initialization runs after this and populates AssociatedModules). tree is the external
// parser's root node, opaque to this package; it is type-asserted back to *frontend.Node by
// the flattener.
func (l *Linker) AddFile(text string, tree any) ID[File] {
	return l.Files.Alloc(File{
		Text:   text,
		Tree:   tree,
		Errors: NewErrorCollector(),
	})
}

// RemoveEverythingInFile removes every module and named constant this file previously declared
// from the global namespace, in preparation for a re-parse (spec.md §4.A). The file's
// diagnostics are left as they are; UpdateFile gives the file a fresh ErrorCollector. It does not reclaim module arena slots: other modules' SubModule
// instructions may still hold IDs into this file's (now being replaced) modules until the
// whole-program recompile that follows catches up, mirroring the grounding implementation's
// "leave a hole, full recompile revisits everyone" approach.
func (l *Linker) RemoveEverythingInFile(fileID ID[File]) {
	file := l.Files.Get(fileID)
	for _, modID := range file.AssociatedModules {
		mod := l.Modules.Get(modID)
		if gm, ok := l.globals[mod.LinkInfo.Name].(GlobalModule); ok && gm.ID == modID {
			delete(l.globals, mod.LinkInfo.Name)
		}
	}
	for _, constID := range file.AssociatedConstants {
		c := l.Constants.Get(constID)
		if gc, ok := l.globals[c.Name].(GlobalConstant); ok && gc.ID == constID {
			delete(l.globals, c.Name)
		}
	}
}

// UpdateFile replaces a file's source text and parse tree in place, reusing the same ID[File]
// so every other module's ID[File] reference into it stays valid (spec.md §4.A, Component A's
// "re-fill a reserved slot" allowance). The caller must have already called
// RemoveEverythingInFile and is expected to re-run Initialization for this file afterward.
func (l *Linker) UpdateFile(fileID ID[File], text string, tree any) {
	l.Files.Set(fileID, File{
		Text:   text,
		Tree:   tree,
		Errors: NewErrorCollector(),
	})
}

// WithFileBuilder runs fn with the ID of a new module pre-reserved as name's declaration,
// appending it to file's AssociatedModules and registering it in the global namespace,
// grounded on the reserve-then-fill discipline invariant 2 requires (spec.md §4.A): the
// module's own ID is known before fn has finished building out its ports and body, so
// self-recursive submodule instantiation and forward references within the same file work.
func (l *Linker) WithFileBuilder(fileID ID[File], name string, fn func(id ID[Module]) Module) (ID[Module], bool) {
	if existing, ok := l.globals[name]; ok {
		if gm, isModule := existing.(GlobalModule); isModule {
			return gm.ID, false
		}
		return 0, false
	}
	id := l.Modules.Reserve()
	mod := fn(id)
	l.Modules.AllocReservation(id, mod)
	l.globals[name] = GlobalModule{ID: id}
	file := l.Files.Get(fileID)
	file.AssociatedModules = append(file.AssociatedModules, id)
	l.Files.Set(fileID, file)
	return id, true
}

// AddConstant registers a top-level named constant discovered during Initialization (spec.md
// §3's "constants arena"). Returns false without changing anything if name is already taken by
// another global.
func (l *Linker) AddConstant(fileID ID[File], name string, nameSpan Span, value Value) (ID[NamedConstant], bool) {
	if _, ok := l.globals[name]; ok {
		return 0, false
	}
	id := l.Constants.Alloc(NamedConstant{Name: name, NameSpan: nameSpan, File: fileID, Value: value})
	l.globals[name] = GlobalConstant{ID: id}
	file := l.Files.Get(fileID)
	file.AssociatedConstants = append(file.AssociatedConstants, id)
	l.Files.Set(fileID, file)
	return id, true
}

// ResolveGlobal looks up name in the linker's flat global namespace (modules, type aliases, and
// constants all share it), recording a diagnostic against errors when it's missing (spec.md
// §4.D's resolve_global). Callers that require one specific kind should type-switch on the
// result and call NotExpectedGlobalError on a mismatch, or use ResolveGlobalModule.
func (l *Linker) ResolveGlobal(nameSpan Span, name string, errors *ErrorCollector) (GlobalName, bool) {
	g, ok := l.globals[name]
	if !ok {
		errors.Error(nameSpan, "Unknown global identifier '"+name+"'")
		return nil, false
	}
	return g, true
}

// ResolveGlobalModule resolves name and requires it to name a module, reporting the standard
// wrong-kind diagnostic (spec.md §4.D/§7's "wrong-kind global" error class) when it names a
// type or a constant instead.
func (l *Linker) ResolveGlobalModule(nameSpan Span, name string, errors *ErrorCollector) (ID[Module], bool) {
	g, ok := l.ResolveGlobal(nameSpan, name, errors)
	if !ok {
		return 0, false
	}
	gm, ok := g.(GlobalModule)
	if !ok {
		l.NotExpectedGlobalError(nameSpan, name, errors, "a module")
		return 0, false
	}
	return gm.ID, true
}

// NotExpectedGlobalError records the wrong-kind-global diagnostic (spec.md §7): name resolved
// to some global, but not the kind the caller needed.
func (l *Linker) NotExpectedGlobalError(nameSpan Span, name string, errors *ErrorCollector, expectedKindText string) {
	errors.Error(nameSpan, "'"+name+"' is not "+expectedKindText)
}
