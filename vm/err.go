package vm

import (
	"errors"

	"github.com/aryanA101a/lc3-vm-go/translate"
)

var f = translate.From

var (
	ErrImageShort  = errors.New(f("image too short"))
	ErrInputClosed = errors.New(f("input closed"))
	ErrHalted      = errors.New(f("machine halted"))
)

// ErrImageLoad reports an image that could not be opened or read.
type ErrImageLoad struct {
	Path string
	Err  error
}

func (err *ErrImageLoad) Error() string {
	return f("failed to load image: %s: %v", err.Path, err.Err)
}

func (err *ErrImageLoad) Unwrap() error {
	return err.Err
}

// ErrDecode reports a reserved or unknown opcode at PC.
type ErrDecode struct {
	PC          word
	Instruction word
}

func (err ErrDecode) Error() string {
	return f("bad opcode %v (0x%04x) at 0x%04x", opcode(err.Instruction>>12), uint16(err.Instruction), uint16(err.PC))
}

func (err ErrDecode) Is(target error) (ok bool) {
	_, ok = target.(ErrDecode)
	return
}

// ErrTrap reports a console failure inside a trap routine.
type ErrTrap struct {
	Vector word
	Err    error
}

func (err *ErrTrap) Error() string {
	return f("trap 0x%02x: %v", uint16(err.Vector), err.Err)
}

func (err *ErrTrap) Unwrap() error {
	return err.Err
}
