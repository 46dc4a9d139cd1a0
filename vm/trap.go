package vm

const (
	TRAP_GETC  word = 0x20 /* get character from keyboard, not echoed onto the terminal */
	TRAP_OUT   word = 0x21 /* output a character */
	TRAP_PUTS  word = 0x22 /* output a word string */
	TRAP_IN    word = 0x23 /* get character from keyboard, echoed onto the terminal */
	TRAP_PUTSP word = 0x24 /* output a byte string */
	TRAP_HALT  word = 0x25 /* halt the program */
)

const inPrompt = "Enter a character: "

// trap runs the service routine for vector. Unknown vectors do nothing.
func (cpu *cpu) trap(vector word) (err error) {
	console := cpu.bus.console
	reg := &cpu.generalPurposeRegisters

	defer func() {
		if err != nil {
			err = &ErrTrap{Vector: vector, Err: err}
		}
	}()

	switch vector {
	case TRAP_GETC:
		var c byte
		if c, err = console.ReadKey(); err != nil {
			return
		}
		reg[R0] = word(c)

	case TRAP_OUT:
		if err = console.WriteByte(byte(reg[R0])); err != nil {
			return
		}
		err = console.Flush()

	case TRAP_PUTS:
		for _, c := range cpu.bus.memory.cstring(reg[R0]) {
			if err = console.WriteByte(byte(c)); err != nil {
				return
			}
		}
		err = console.Flush()

	case TRAP_IN:
		if _, err = console.Write([]byte(inPrompt)); err != nil {
			return
		}
		if err = console.Flush(); err != nil {
			return
		}
		var c byte
		if c, err = console.ReadKey(); err != nil {
			return
		}
		if err = console.WriteByte(c); err != nil {
			return
		}
		reg[R0] = word(c)
		err = console.Flush()

	case TRAP_PUTSP:
		for _, c := range cpu.bus.memory.cstring(reg[R0]) {
			if err = console.WriteByte(byte(c)); err != nil {
				return
			}
			if c>>8 != 0 {
				if err = console.WriteByte(byte(c >> 8)); err != nil {
					return
				}
			}
		}
		err = console.Flush()

	case TRAP_HALT:
		cpu.stop()
		if _, err = console.Write([]byte("HALT\n")); err != nil {
			return
		}
		err = console.Flush()
	}

	return
}
