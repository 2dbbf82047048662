package ir

import "hdlc/src/util"

// LocalVariableContext resolves bare identifiers to their nearest enclosing Declaration while
// flattening a single module (spec.md §4.E). It is a stack of frames, one pushed per block
// (module body, if-branch, for-body), mirroring the scoping rules of any block-structured
// language: a name declared in an inner frame shadows the same name in an outer one, and
// leaving a frame forgets its declarations.
type LocalVariableContext struct {
	frames util.Stack[map[string]FlatID]
}

// NewLocalVariableContext returns a context with a single, empty outermost frame already
// pushed (the module's top-level block).
func NewLocalVariableContext() *LocalVariableContext {
	c := &LocalVariableContext{}
	c.NewFrame()
	return c
}

// NewFrame pushes a fresh, empty scope, to be popped with PopFrame once the corresponding
// block (if-branch, for-body) has been fully flattened.
func (c *LocalVariableContext) NewFrame() {
	c.frames.Push(make(map[string]FlatID))
}

// PopFrame discards the innermost scope. Panics if called with no frame pushed, since that
// indicates a flattener bug (an unbalanced NewFrame/PopFrame pair).
func (c *LocalVariableContext) PopFrame() {
	if _, ok := c.frames.Pop(); !ok {
		panic("ir: PopFrame with no frame pushed")
	}
}

// AddDeclaration records name as resolving to declID within the current innermost frame. The
// caller (flatten_declaration) is responsible for diagnosing a name already declared in the
// SAME frame; shadowing an outer frame's declaration is always allowed.
func (c *LocalVariableContext) AddDeclaration(name string, declID FlatID) {
	top, ok := c.frames.Peek()
	if !ok {
		panic("ir: AddDeclaration with no frame pushed")
	}
	top[name] = declID
}

// GetDeclarationFor looks up name from the innermost frame outward, returning the nearest
// enclosing declaration.
func (c *LocalVariableContext) GetDeclarationFor(name string) (FlatID, bool) {
	for depth := 1; depth <= c.frames.Size(); depth++ {
		frame, ok := c.frames.Get(depth)
		if !ok {
			continue
		}
		if id, found := frame[name]; found {
			return id, true
		}
	}
	return 0, false
}

// DeclaredInCurrentFrame reports whether name was already declared in the innermost frame,
// used by flatten_declaration to diagnose a duplicate declaration within the same block.
func (c *LocalVariableContext) DeclaredInCurrentFrame(name string) bool {
	top, ok := c.frames.Peek()
	if !ok {
		return false
	}
	_, found := top[name]
	return found
}
