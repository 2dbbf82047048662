package ir

// FlatID indexes a Module's flat instruction list (spec.md GLOSSARY). It is an ID[Instruction]
// under the hood; the named alias exists because it is by far the most commonly threaded
// handle through the flattener and typechecker.
type FlatID = ID[Instruction]

// FlatIDRange is a contiguous range of instruction indices, e.g. an If/For body.
type FlatIDRange = IDRange[Instruction]

// Direction is a port's signal direction.
type Direction int

const (
	Input Direction = iota
	Output
)

// MainInterfaceID is the always-present first interface of every module (spec.md §3).
const MainInterfaceID ID[Interface] = 0

// LinkInfo carries a module's identity and checkpoint watermarks (spec.md §3): its name, the
// file that declared it, its (currently always empty — template modules are an Open Question,
// spec.md §9) template argument list, and the two checkpoints that let the driver reset a
// module back to a prior compilation stage without reallocating its instruction arena.
type LinkInfo struct {
	Name string
	File ID[File]

	// TemplateArgs is always empty in this implementation; parameterized instantiation is an
	// explicit Open Question left to the downstream engine (spec.md §9).
	TemplateArgs []string

	// AfterInitialParseCP is the instruction-count watermark taken right after Initialization
	// (there are no instructions yet at that point, but the field exists so RecompileAll's
	// reset-to-checkpoint logic is uniform for every stage boundary).
	AfterInitialParseCP int
	// AfterFlattenCP is the watermark taken right after flattening completes, before
	// typechecking decorates the same instructions in place.
	AfterFlattenCP *int
}

// Port is a single-directional boundary wire of a module (spec.md §3/§4).
type Port struct {
	Name            string
	NameSpan        Span
	DeclSpan        Span
	Direction       Direction
	Interface       ID[Interface]
	DeclInstruction FlatID // PLACEHOLDER until flattening resolves it (invariant 2).
}

// DescribeForError implements Describable, pointing at the port's declaration span.
func (p Port) DescribeForError() (Span, string) {
	dir := "input"
	if p.Direction == Output {
		dir = "output"
	}
	return p.DeclSpan, dir + " " + p.Name + " declared here"
}

// Interface is a named group of input/output ports (spec.md §3). The port ranges are
// contiguous subsets of the module's Ports arena (invariant 5).
type Interface struct {
	Name            string
	NameSpan        Span
	InputPorts      IDRange[Port]
	OutputPorts     IDRange[Port]
}

// DescribeForError implements Describable.
func (i Interface) DescribeForError() (Span, string) {
	return i.NameSpan, "interface '" + i.Name + "' declared here"
}

// Module is a synthesizable unit: a main interface plus any number of named sub-interfaces,
// flattened into one linear instruction list (spec.md §3).
type Module struct {
	LinkInfo LinkInfo

	Ports      Arena[Port]
	Interfaces Arena[Interface]

	Instructions Arena[Instruction]

	// Instantiations holds the instantiation ingress's bookkeeping for this module, one entry
	// per (currently always empty) template argument assignment (spec.md §4.I).
	Instantiations []InstantiationRecord
}

// DescribeForError implements Describable. The returned span is empty, since a Module keeps
// no span of its own name; the message names the module.
func (m *Module) DescribeForError() (Span, string) {
	return Span{}, "module '" + m.LinkInfo.Name + "' declared here"
}

// GetPortDecl returns the Declaration instruction backing portID. Panics if flattening has not
// yet set the port's declaration instruction.
func (m *Module) GetPortDecl(portID ID[Port]) *Declaration {
	port := m.Ports.Get(portID)
	instr := m.Instructions.Get(port.DeclInstruction)
	decl, ok := instr.(Declaration)
	if !ok {
		panic("ir: port's declaration_instruction does not point at a Declaration")
	}
	return &decl
}

// PortsInfoString renders every port of interfaceID grouped for diagnostic info attachments,
// grounded on original_source's Module::make_interface_info_string.
func (m *Module) PortsInfoString(interfaceID ID[Interface]) string {
	iface := m.Interfaces.Get(interfaceID)
	result := ""
	appendRange := func(r IDRange[Port]) {
		for i := r.Start; i < r.End; i++ {
			p := m.Ports.Get(i)
			dir := "input"
			if p.Direction == Output {
				dir = "output"
			}
			result += "\n    " + dir + " " + p.Name
		}
	}
	appendRange(iface.InputPorts)
	appendRange(iface.OutputPorts)
	return result
}

// PortOrInterfaceByName looks up a name against all of the module's ports (ports are named
// uniquely per module) and then its interfaces, reporting a "no port" diagnostic when neither
// matches. Grounded on
// _examples/original_source/src/flattening/mod.rs's get_port_by_name and its
// interface-or-port sibling referenced from parse.rs's field_access handling.
func (m *Module) PortOrInterfaceByName(nameSpan Span, name string, errors *ErrorCollector) (port ID[Port], hasPort bool, iface ID[Interface], hasIface bool) {
	found := false
	m.Ports.All(func(id ID[Port], p Port) bool {
		if p.Name == name {
			port, hasPort, found = id, true, true
			return false
		}
		return true
	})
	if found {
		return port, true, 0, false
	}
	m.Interfaces.All(func(id ID[Interface], i Interface) bool {
		if i.Name == name {
			iface, hasIface, found = id, true, true
			return false
		}
		return true
	})
	if found {
		return 0, false, iface, true
	}
	errors.Error(nameSpan, "There is no port '"+name+"' on module "+m.LinkInfo.Name).InfoObj(m)
	return 0, false, 0, false
}

// PrintFlattened prints the module's ports and instructions, grounded on
// _examples/original_source/src/flattening/mod.rs's print_flattened_module (spec.md §4.I
// debug-print switch, SPEC_FULL.md supplemented feature 1).
func (m *Module) PrintFlattened(fileText string) {
	println_ := func(s string) { print(s + "\n") }
	println_("[[" + m.LinkInfo.Name + "]]:")
	println_("Ports:")
	m.Ports.All(func(id ID[Port], p Port) bool {
		dir := "input"
		if p.Direction == Output {
			dir = "output"
		}
		println_("    " + dir + " " + p.Name)
		return true
	})
	println_("Instructions:")
	m.Instructions.All(func(id FlatID, instr Instruction) bool {
		println_("    " + instr.String())
		return true
	})
}

// InstantiationRecord is a placeholder instantiation slot prepared by the driver's initial
// instantiation stage (spec.md §4.I). Actual generative-code execution is out of scope
// (spec.md §1 Non-goals); this only records that the ingress was invoked for a given module.
type InstantiationRecord struct {
	TemplateArgs map[string]string
}
