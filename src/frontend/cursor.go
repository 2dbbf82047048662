package frontend

import (
	"hdlc/src/ir"
	"hdlc/src/util"
)

// Cursor walks a parsed Node tree without ever re-parsing: every descent is by field name, and
// every ascent restores the parent exactly, grounded on the go_down / go_down_no_check / field
// / optional_field / list / collect_list cursor API of
// _examples/original_source/src/flattening/parse.rs.
type Cursor struct {
	node    *Node
	parents util.Stack[*Node]

	// gathered accumulates comment text seen since the last reset point (block start or after
	// a statement), per SPEC_FULL.md supplemented feature 6.
	gathered []string
}

// NewCursor returns a cursor positioned at root.
func NewCursor(root *Node) *Cursor {
	return &Cursor{node: root}
}

// Kind returns the current node's kind.
func (c *Cursor) Kind() NodeKind { return c.node.Kind }

// Span returns the current node's span. Every read also registers the span with the
// package-level span tracer (spec.md §6), since a node's span is read at exactly the points
// the flattener would want a post-mortem trace to cover.
func (c *Cursor) Span() ir.Span {
	util.TouchSpan(c.node.Span.Start, c.node.Span.End)
	return c.node.Span
}

// Node returns the current node, for callers (declaration flattening, expression flattening)
// that need more than Kind/Span/Text.
func (c *Cursor) Node() *Node { return c.node }

// Text returns the current terminal node's source text.
func (c *Cursor) Text() string { return c.node.Text }

// GoDown descends into the single child named field, pushing the current node onto the
// parent stack. Reports a diagnostic and returns false if the field is absent, mirroring
// go_down's "grammar guarantees this field; if it's missing, the grammar is out of sync with
// this flattener" failure mode.
func (c *Cursor) GoDown(field string, errors *ir.ErrorCollector) bool {
	child, ok := c.node.Fields[field]
	if !ok {
		errors.Error(c.node.Span, "internal error: expected field '"+field+"' not present")
		return false
	}
	c.parents.Push(c.node)
	c.node = child
	return true
}

// GoDownNoCheck descends into field, panicking if it is absent. Used only where the caller
// has already established (by matching on Kind) that the grammar construct in question always
// carries this field, so an absence would indicate a Cursor bug rather than a malformed
// program.
func (c *Cursor) GoDownNoCheck(field string) {
	child, ok := c.node.Fields[field]
	if !ok {
		panic("frontend: GoDownNoCheck: field '" + field + "' not present")
	}
	c.parents.Push(c.node)
	c.node = child
}

// GoUp ascends back to the node GoDown/GoDownNoCheck descended from. Panics if the cursor is
// already at the root, which would indicate an unbalanced GoDown/GoUp pair in the flattener.
func (c *Cursor) GoUp() {
	parent, ok := c.parents.Pop()
	if !ok {
		panic("frontend: GoUp with no matching GoDown")
	}
	c.node = parent
}

// Field looks up a single named child without moving the cursor, for callers that only need
// to peek at a child's kind/span/text (e.g. deciding which flattening rule applies) before
// deciding whether to GoDown into it.
func (c *Cursor) Field(field string) (*Node, bool) {
	child, ok := c.node.Fields[field]
	return child, ok
}

// OptionalField is Field under a name matching the grounding implementation's optional_field,
// for fields that are genuinely absent in some valid programs (e.g. a declaration's latency
// specifier).
func (c *Cursor) OptionalField(field string) (*Node, bool) {
	return c.Field(field)
}

// List returns every element of the repeated field named field, in source order. Returns nil
// (not an error) if the field is absent, since an empty repetition and a wholly-absent one are
// indistinguishable at this level and both mean "zero elements" to every caller.
func (c *Cursor) List(field string) []*Node {
	return c.node.Lists[field]
}

// CollectList walks every element of the repeated field named field, running fn with the
// cursor positioned at each element in turn and restoring the cursor to the current node
// between elements, mirroring collect_list's "visit each match of a repeated rule" usage in
// statement-list and argument-list flattening.
func (c *Cursor) CollectList(field string, fn func(*Cursor)) {
	for _, item := range c.node.Lists[field] {
		sub := &Cursor{node: item}
		fn(sub)
	}
}

// GatherComments appends text to the pending comment buffer, to be claimed by the next
// ExtractGatheredComments call.
func (c *Cursor) GatherComments(text string) {
	c.gathered = append(c.gathered, text)
}

// ExtractGatheredComments returns and clears every comment gathered since the last reset
// point. The reset points themselves (block start and after every statement, SPEC_FULL.md
// supplemented feature 6) use ClearGatheredComments, so comments do not accumulate across
// statement boundaries.
func (c *Cursor) ExtractGatheredComments() []string {
	out := c.gathered
	c.gathered = nil
	return out
}

// ClearGatheredComments discards pending comments without returning them; flattenBlock calls it
// at block start and after every statement.
func (c *Cursor) ClearGatheredComments() {
	c.gathered = nil
}

// CouldNotMatch records the generic "this doesn't look like any known construct" diagnostic at
// the cursor's current span, grounded on original_source's could_not_match error path used
// when none of a dispatch's match arms apply.
func (c *Cursor) CouldNotMatch(errors *ir.ErrorCollector, context string) {
	errors.Error(c.node.Span, "Could not parse this as "+context)
}
