// Package frontend is the parser-facing half of the front end boundary (spec.md §3's "File
// model" collaborator): it owns the parsed syntax tree that ir.File.Tree stores opaquely, and
// the Cursor the flattener walks it with. No concrete grammar/lexer ships with this package —
// spec.md's scope starts at "a parsed tree already exists" (§1) — so Node is a generic,
// already-parsed tree shape rather than a tree-sitter binding. The Cursor API below is
// deliberately shaped after github.com/smacker/go-tree-sitter's TreeCursor (field-name-driven
// descent, no re-parsing), seen in the retrieval pack's learn_vhdl indexer lineage, but
// implemented dependency-free: the pack has no real HDL tree-sitter grammar to exercise, and
// fabricating one would be wiring for its own sake rather than grounding.
package frontend

import "hdlc/src/ir"

// NodeKind enumerates the syntax constructs this front end's flattener recognizes. It is
// intentionally small: exactly the constructs spec.md §4.G's flattening rules dispatch on.
type NodeKind int

const (
	NodeModule NodeKind = iota
	NodeInterface
	NodeBlock
	NodeDeclaration
	NodeTypeExpr
	NodeArrayType
	NodeIdentifier
	NodeFieldAccess
	NodeArrayIndex
	NodeIntLiteral
	NodeBoolLiteral
	NodeUnaryExpr
	NodeBinaryExpr
	NodeFuncCallExpr
	NodeAssignment
	NodeIfStatement
	NodeForStatement
	NodeInstanceDecl // `module_name instance_name` standalone submodule declaration
)

// Node is one syntax tree node: a kind, its source span, named single children ("fields"),
// and named repeated children ("lists"), plus the comment text immediately preceding it.
// Mirrors the shape a tree-sitter node would expose through field names, generalized to a
// plain Go struct since no concrete grammar is wired in.
type Node struct {
	Kind NodeKind
	Span ir.Span

	// Text is set for terminal nodes (NodeIdentifier, NodeIntLiteral, NodeBoolLiteral) to the
	// exact source text the node covers.
	Text string

	Fields map[string]*Node
	Lists  map[string][]*Node

	// LeadingComments holds comment text gathered immediately before this node, not yet
	// claimed by extract_gathered_comments at a reset point (SPEC_FULL.md supplemented
	// feature 6).
	LeadingComments []string
}
