package driver

import (
	"jargon/internal/config"
	"jargon/internal/loader"
	"jargon/internal/vm"
)

// RunResult is what `jargon run` reports after a program halts or aborts.
type RunResult struct {
	Status vm.Status
	Value  *vm.Decoded // nil unless Status == vm.Halted
	Fault  error       // a *vm.Fault, set only when Run returned one
}

// Run executes prog to completion (or to a Fault) using cfg's capacity
// limits: iterate Step while Running, then decode the cell at sp-1 through
// the heap.
func Run(prog *loader.Program, cfg config.Config, opts ...vm.Option) (*RunResult, error) {
	machine := vm.New(prog.Code, cfg.VM.StackMax, cfg.VM.HeapMax, opts...)
	status, err := machine.Run()
	if err != nil {
		return &RunResult{Status: status, Fault: err}, nil
	}
	res := &RunResult{Status: status}
	if status == vm.Halted && machine.SP() > 0 {
		decoded, err := machine.Decode(machine.Peek(machine.SP() - 1))
		if err != nil {
			return res, err
		}
		res.Value = decoded
	}
	return res, nil
}
