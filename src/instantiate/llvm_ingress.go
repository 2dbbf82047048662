package instantiate

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"hdlc/src/ir"
)

// LLVMIngress is a minimal, genuinely-exercised Ingress: for every parameter-free module it
// emits one LLVM module declaring an external function signature for the module's main
// interface (one integer parameter per input port, a single integer return if the interface
// has exactly one output, otherwise void), then disposes everything. It does not attempt
// actual hardware code generation — that belongs to the downstream engine this interface only
// specifies the boundary of (spec.md §1) — it only proves the ingress boundary is wired to a
// real LLVM context, grounded on the context/module/builder lifecycle in
// _examples/hhramberg-go-vslc's src/ir/llvm/transform.go (GenLLVM's ctx/module/builder
// setup-and-dispose pattern), generalized from "compile a whole program" down to "describe one
// module's exported shape".
type LLVMIngress struct{}

// Instantiate implements Ingress.
func (LLVMIngress) Instantiate(linker *ir.Linker, moduleID ir.ID[ir.Module], templateArgs map[string]string) error {
	mod := linker.Modules.GetPtr(moduleID)

	ctx := llvm.NewContext()
	defer ctx.Dispose()

	llvmMod := ctx.NewModule(mod.LinkInfo.Name)
	defer llvmMod.Dispose()

	iface := mod.Interfaces.Get(ir.MainInterfaceID)
	intType := ctx.Int64Type()

	paramTypes := make([]llvm.Type, 0, iface.InputPorts.Len())
	for i := 0; i < iface.InputPorts.Len(); i++ {
		paramTypes = append(paramTypes, intType)
	}

	retType := ctx.VoidType()
	if iface.OutputPorts.Len() == 1 {
		retType = intType
	}

	fnType := llvm.FunctionType(retType, paramTypes, false)
	fnName := fmt.Sprintf("hdl_%s", mod.LinkInfo.Name)
	fn := llvm.AddFunction(llvmMod, fnName, fnType)

	for i := 0; i < iface.InputPorts.Len(); i++ {
		port := mod.Ports.Get(iface.InputPorts.Start + ir.ID[ir.Port](i))
		fn.Param(i).SetName(port.Name)
	}

	if err := llvm.VerifyModule(llvmMod, llvm.ReturnStatusAction); err != nil {
		return fmt.Errorf("instantiate: module %q failed LLVM verification: %w", mod.LinkInfo.Name, err)
	}
	return nil
}
