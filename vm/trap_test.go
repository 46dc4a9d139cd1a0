package vm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestTrapHalt(t *testing.T) {
	assert := assert.New(t)

	vm, output := newTestVM(t, "", 0xF025, 0x1021)

	assert.Equal(StateRunning, vm.State())
	assert.NoError(vm.Start())
	assert.Equal(StateHalted, vm.State())
	assert.Equal(word(0x3001), vm.cpu.internalRegisters.pc)
	assert.Equal(word(0), vm.cpu.generalPurposeRegisters[R0])
	assert.Equal("HALT\n", output.String())
}

func TestTrapPuts(t *testing.T) {
	assert := assert.New(t)

	vm, output := newTestVM(t, "", 0xF022)
	vm.cpu.generalPurposeRegisters[R0] = 0x4000
	copy(vm.memory[0x4000:], []word{72, 73, 0, 74})

	assert.NoError(vm.Step())
	assert.Equal("HI", output.String())
	assert.Equal(word(0x4000), vm.cpu.generalPurposeRegisters[R0])
}

func TestTrapPutsUnterminated(t *testing.T) {
	assert := assert.New(t)

	vm, output := newTestVM(t, "", 0xF022)
	vm.cpu.generalPurposeRegisters[R0] = 0xFFFE
	vm.memory[0xFFFE] = 'o'
	vm.memory[0xFFFF] = 'k'
	vm.memory[0x0000] = 'X'

	assert.NoError(vm.Step())
	assert.Equal("ok", output.String())
}

func TestTrapPutsp(t *testing.T) {
	assert := assert.New(t)

	vm, output := newTestVM(t, "", 0xF024)
	vm.cpu.generalPurposeRegisters[R0] = 0x4000
	copy(vm.memory[0x4000:], []word{'e'<<8 | 'H', 'l'<<8 | 'l', 'o', 0})

	assert.NoError(vm.Step())
	assert.Equal("Hello", output.String())
}

func TestTrapOut(t *testing.T) {
	assert := assert.New(t)

	vm, output := newTestVM(t, "", 0xF021)
	vm.cpu.generalPurposeRegisters[R0] = 0x1241

	assert.NoError(vm.Step())
	assert.Equal("A", output.String())
}

func TestTrapGetc(t *testing.T) {
	assert := assert.New(t)

	vm, output := newTestVM(t, "xy", 0xF020, 0xF020, 0xF020)

	assert.NoError(vm.Step())
	assert.Equal(word('x'), vm.cpu.generalPurposeRegisters[R0])
	assert.NoError(vm.Step())
	assert.Equal(word('y'), vm.cpu.generalPurposeRegisters[R0])
	assert.Equal("", output.String())
	assert.Equal(FLAG_ZRO, vm.cpu.internalRegisters.cond)

	err := vm.Step()
	assert.ErrorIs(err, ErrInputClosed)
	var trapErr *ErrTrap
	if assert.True(errors.As(err, &trapErr)) {
		assert.Equal(TRAP_GETC, trapErr.Vector)
	}
}

func TestTrapIn(t *testing.T) {
	assert := assert.New(t)

	vm, output := newTestVM(t, "q", 0xF023)

	assert.NoError(vm.Step())
	assert.Equal(word('q'), vm.cpu.generalPurposeRegisters[R0])
	assert.Equal("Enter a character: q", output.String())
}

func TestTrapUnknown(t *testing.T) {
	assert := assert.New(t)

	for _, instruction := range []word{0xF000, 0xF026, 0xF0FE, 0xF0FF} {
		vm, output := newTestVM(t, "", instruction)
		vm.cpu.generalPurposeRegisters[R0] = 0x4000

		assert.NoError(vm.Step())
		assert.Equal(StateRunning, vm.State())
		assert.Equal(word(0x3001), vm.cpu.internalRegisters.pc)
		assert.Equal(word(0x4000), vm.cpu.generalPurposeRegisters[R0])
		assert.Equal("", output.String())
	}
}

func TestTrapOutputError(t *testing.T) {
	assert := assert.New(t)

	vm, err := NewVM(nil, failingWriter{})
	assert.NoError(err)
	vm.memory[UserSpaceStart] = 0xF021

	err = vm.Start()
	var trapErr *ErrTrap
	if assert.True(errors.As(err, &trapErr)) {
		assert.Equal(TRAP_OUT, trapErr.Vector)
	}
	assert.Equal(StateHalted, vm.State())
}
