package flatten

import (
	"hdlc/src/frontend"
	"hdlc/src/ir"
)

// FlattenModule implements spec.md §4.G's entry point for one module: flatten the header's
// declared ports, then walk the body, filling in the instruction list that Initialization left
// empty. moduleNode is the module's own syntax node (found via findModuleNode against the
// owning file's parse tree).
func FlattenModule(linker *ir.Linker, fileID ir.ID[ir.File], moduleID ir.ID[ir.Module], moduleNode *frontend.Node) {
	ctx := NewContext(linker, fileID, moduleID)
	ctx.flattenInterfacePorts(moduleNode)

	cur := frontend.NewCursor(moduleNode)
	if bodyNode, ok := cur.Field("body"); ok {
		ctx.flattenBlock(frontend.NewCursor(bodyNode))
	}
	cp := ctx.Module.Instructions.Len()
	ctx.Module.LinkInfo.AfterFlattenCP = &cp

	if len(ctx.pendingPorts) != 0 {
		// spec.md §4.G: "After flattening all modules the Initialization pass must have no
		// pending ports left." A non-empty queue here means Initialization registered a port
		// whose header declaration list flattenInterfacePorts just walked was shorter than what
		// discoverModule/discoverInterface originally allocated from that exact same list,
		// which is an internal inconsistency between the two passes rather than a user-facing
		// error.
		panic("flatten: module header did not declare every port Initialization registered")
	}
}

// flattenInterfacePorts flattens every port declared directly on the module's header: the
// main interface's input/output lists, then each named sub-interface's, in the same order
// initialize.discoverModule/discoverInterface allocated them in (spec.md §4.A) — so the
// pending-port queue NewContext seeded is claimed from the very same list of nodes
// Initialization read each port's Name/NameSpan from, rather than from an unrelated body
// statement that would only line up by a coincidentally-matching span. Mirrors
// original_source's flatten_interface_ports (itself flatten_declaration_list under
// DeclarationContext::Input/Output) being called directly on the module's port fields before
// flatten_code ever walks the body.
func (c *Context) flattenInterfacePorts(moduleNode *frontend.Node) {
	for _, declNode := range moduleNode.Lists["main_inputs"] {
		c.flattenDeclaration(frontend.NewCursor(declNode), portDeclOptions(ir.IdentInput))
	}
	for _, declNode := range moduleNode.Lists["main_outputs"] {
		c.flattenDeclaration(frontend.NewCursor(declNode), portDeclOptions(ir.IdentOutput))
	}
	for _, ifaceNode := range moduleNode.Lists["interface"] {
		for _, declNode := range ifaceNode.Lists["inputs"] {
			c.flattenDeclaration(frontend.NewCursor(declNode), portDeclOptions(ir.IdentInput))
		}
		for _, declNode := range ifaceNode.Lists["outputs"] {
			c.flattenDeclaration(frontend.NewCursor(declNode), portDeclOptions(ir.IdentOutput))
		}
	}
}

// portDeclOptions builds the declOptions a header port declaration is flattened with: its
// identifier kind is forced from which list it came from (Input/Output lists carry no
// ambiguity about direction) rather than inferred from an "io" field, and it is never a
// module-typed or directly-written declaration.
func portDeclOptions(kind ir.IdentifierKind) declOptions {
	return declOptions{ForceKind: &kind, NotDirectlyWritten: true}
}

// FlattenAllModules implements the G half of spec.md §4.I's recompile_all: visits every file's
// modules in linker insertion order (spec.md §5's ordering rule) and flattens each.
func FlattenAllModules(linker *ir.Linker) {
	linker.Files.All(func(fileID ir.ID[ir.File], file ir.File) bool {
		root, ok := file.Tree.(*frontend.Node)
		if !ok {
			return true
		}
		for _, modID := range file.AssociatedModules {
			mod := linker.Modules.GetPtr(modID)
			moduleNode := findModuleNode(root, mod.LinkInfo.Name)
			if moduleNode == nil {
				continue
			}
			FlattenModule(linker, fileID, modID, moduleNode)
		}
		return true
	})
}

// findModuleNode locates the top-level module declaration node named name within a parsed
// file's root node.
func findModuleNode(root *frontend.Node, name string) *frontend.Node {
	for _, modNode := range root.Lists["module"] {
		nameNode, ok := modNode.Fields["name"]
		if !ok {
			continue
		}
		if nameNode.Text == name {
			return modNode
		}
	}
	return nil
}
