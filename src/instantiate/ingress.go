// Package instantiate specifies the ingress-only boundary to the downstream instantiation
// engine and code generators (spec.md §1 Non-goals / §4.I step 4): the core's responsibility
// ends at handing a fully flattened and typechecked, parameter-free module to this interface
// with a fresh, empty template-argument map. What happens after that — generative code
// execution, target-specific lowering, code generation — is out of scope.
package instantiate

import "hdlc/src/ir"

// Ingress is the contract the driver's recompile_all calls for every parameter-free module
// (spec.md §4.I step 4). Implementations are free to do anything from nothing (tests) to
// handing the module off to a real code generator; the core only guarantees it is called
// exactly once per parameter-free module per recompile, with a fresh map.
type Ingress interface {
	Instantiate(linker *ir.Linker, moduleID ir.ID[ir.Module], templateArgs map[string]string) error
}

// Recording is a trivial Ingress that only records that it was invoked, for tests that check
// the driver calls the ingress the expected number of times without needing a real downstream
// engine.
type Recording struct {
	Calls []RecordedCall
}

// RecordedCall is one Instantiate invocation captured by Recording.
type RecordedCall struct {
	ModuleID     ir.ID[ir.Module]
	TemplateArgs map[string]string
}

// Instantiate implements Ingress by appending the call to Calls and otherwise doing nothing.
func (r *Recording) Instantiate(linker *ir.Linker, moduleID ir.ID[ir.Module], templateArgs map[string]string) error {
	r.Calls = append(r.Calls, RecordedCall{ModuleID: moduleID, TemplateArgs: templateArgs})
	return nil
}
