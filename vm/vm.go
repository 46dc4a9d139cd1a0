// Package vm emulates the LC-3: a 16-bit word addressed machine with eight
// general purpose registers, memory mapped keyboard registers and trap
// routines for console I/O.
package vm

import (
	goIO "io"
	"os"
)

type VM struct {
	memory   *memory
	cpu      cpu
	console  *Console
	terminal *Terminal
}

// NewVM loads every image in order, then takes the terminal behind in out
// of canonical mode until Stop. Later images overwrite earlier ones where
// they overlap.
func NewVM(in goIO.Reader, out goIO.Writer, images ...string) (*VM, error) {
	vm := &VM{
		memory:  &memory{},
		console: NewConsole(in, out),
	}
	vm.cpu = newCpu(vm.memory, vm.console)

	for _, path := range images {
		if err := vm.LoadFile(path); err != nil {
			return nil, err
		}
	}

	terminal, err := EnableRawMode(in)
	if err != nil {
		return nil, err
	}
	vm.terminal = terminal

	return vm, nil
}

// SetVerbose enables per-instruction tracing to the log.
func (vm *VM) SetVerbose(verbose bool) {
	vm.cpu.verbose = verbose
}

// LoadImage reads an object file from r into memory.
func (vm *VM) LoadImage(r goIO.Reader) error {
	img, err := ReadImage(r)
	if err != nil {
		return err
	}
	vm.loadImage(img)
	return nil
}

// LoadFile reads the object file at path into memory.
func (vm *VM) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return &ErrImageLoad{Path: path, Err: err}
	}
	defer file.Close()

	if err = vm.LoadImage(file); err != nil {
		return &ErrImageLoad{Path: path, Err: err}
	}
	return nil
}

// Step executes a single instruction.
func (vm *VM) Step() error {
	if vm.cpu.state == StateHalted {
		return ErrHalted
	}
	return vm.cpu.step()
}

// Start runs until HALT or the first error.
func (vm *VM) Start() error {
	for vm.cpu.state == StateRunning {
		if err := vm.cpu.step(); err != nil {
			vm.cpu.stop()
			return err
		}
	}
	return nil
}

// Stop halts the machine, flushes the console and restores the terminal.
// It may be called more than once.
func (vm *VM) Stop() error {
	vm.cpu.stop()
	err := vm.console.Flush()
	if rerr := vm.RestoreTerminal(); err == nil {
		err = rerr
	}
	return err
}

// RestoreTerminal puts the terminal back the way NewVM found it. Unlike
// Stop it does not touch machine state, so it is safe while Start runs.
func (vm *VM) RestoreTerminal() error {
	return vm.terminal.Restore()
}

func (vm *VM) State() State {
	return vm.cpu.state
}
