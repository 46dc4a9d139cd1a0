package vm

import (
	"log"
)

type word uint16

type cpu_flag uint16

// general purpose registers
const (
	R0 = 0b000
	R1 = 0b001
	R2 = 0b010
	R3 = 0b011
	R4 = 0b100
	R5 = 0b101
	R6 = 0b110
	R7 = 0b111
)

// flags
const (
	FLAG_POS cpu_flag = 0b001
	FLAG_ZRO cpu_flag = 0b010
	FLAG_NEG cpu_flag = 0b100
)

func (flag cpu_flag) String() string {
	switch flag {
	case FLAG_POS:
		return "P"
	case FLAG_ZRO:
		return "Z"
	case FLAG_NEG:
		return "N"
	}
	return "?"
}

type opcode word

// opcodes
const (
	OP_BR opcode = iota
	OP_ADD
	OP_LD
	OP_ST
	OP_JSR
	OP_AND
	OP_LDR
	OP_STR
	OP_RTI
	OP_NOT
	OP_LDI
	OP_STI
	OP_JMP
	OP_RES
	OP_LEA
	OP_TRAP
)

var opcodeNames = [...]string{
	"BR", "ADD", "LD", "ST", "JSR", "AND", "LDR", "STR",
	"RTI", "NOT", "LDI", "STI", "JMP", "RES", "LEA", "TRAP",
}

func (op opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "???"
}

// State of the fetch-decode-execute loop.
type State int

const (
	StateRunning State = iota
	StateHalted
)

func (s State) String() string {
	if s == StateHalted {
		return "HALTED"
	}
	return "RUNNING"
}

type cpu struct {
	state             State
	verbose           bool
	bus               bus
	internalRegisters struct {
		pc   word
		cond cpu_flag
	}
	generalPurposeRegisters [8]word
}

func newCpu(mem *memory, console *Console) cpu {
	c := cpu{
		state: StateRunning,
		bus:   bus{memory: mem, console: console},
	}
	c.internalRegisters.pc = UserSpaceStart
	c.internalRegisters.cond = FLAG_ZRO
	return c
}

func (cpu *cpu) stop() {
	cpu.state = StateHalted
}

// step fetches the instruction at PC, advances PC and executes it.
func (cpu *cpu) step() error {
	pc := cpu.internalRegisters.pc
	instruction := cpu.bus.read(pc)
	cpu.internalRegisters.pc++

	if cpu.verbose {
		log.Printf("0x%04x %v: 0x%04x cond=%v", uint16(pc), opcode(instruction>>12), uint16(instruction), cpu.internalRegisters.cond)
	}

	return cpu.decodeAndExecuteInstruction(pc, instruction)
}

func (cpu *cpu) decodeAndExecuteInstruction(pc, instruction word) error {
	reg := &cpu.generalPurposeRegisters

	switch opcode(instruction >> 12) {
	case OP_ADD:
		dr := (instruction >> 9) & 0b111
		sr1 := (instruction >> 6) & 0b111

		if (instruction>>5)&0b1 == 1 {
			reg[dr] = reg[sr1] + sext(instruction&0x1F, 5)
		} else {
			reg[dr] = reg[sr1] + reg[instruction&0b111]
		}
		cpu.updateFlags(dr)

	case OP_AND:
		dr := (instruction >> 9) & 0b111
		sr1 := (instruction >> 6) & 0b111

		if (instruction>>5)&0b1 == 1 {
			reg[dr] = reg[sr1] & sext(instruction&0x1F, 5)
		} else {
			reg[dr] = reg[sr1] & reg[instruction&0b111]
		}
		cpu.updateFlags(dr)

	case OP_NOT:
		dr := (instruction >> 9) & 0b111
		sr := (instruction >> 6) & 0b111

		reg[dr] = ^reg[sr]
		cpu.updateFlags(dr)

	case OP_BR:
		nzp := cpu_flag((instruction >> 9) & 0b111)

		if nzp&cpu.internalRegisters.cond != 0 {
			cpu.internalRegisters.pc += sext(instruction&0x1FF, 9)
		}

	case OP_JMP:
		// RET is JMP R7
		cpu.internalRegisters.pc = reg[(instruction>>6)&0b111]

	case OP_JSR:
		reg[R7] = cpu.internalRegisters.pc

		if (instruction>>11)&0b1 == 1 {
			cpu.internalRegisters.pc += sext(instruction&0x7FF, 11)
		} else {
			cpu.internalRegisters.pc = reg[(instruction>>6)&0b111]
		}

	case OP_LD:
		dr := (instruction >> 9) & 0b111

		reg[dr] = cpu.bus.read(cpu.internalRegisters.pc + sext(instruction&0x1FF, 9))
		cpu.updateFlags(dr)

	case OP_LDI:
		dr := (instruction >> 9) & 0b111

		reg[dr] = cpu.bus.read(cpu.bus.read(cpu.internalRegisters.pc + sext(instruction&0x1FF, 9)))
		cpu.updateFlags(dr)

	case OP_LDR:
		dr := (instruction >> 9) & 0b111
		br := (instruction >> 6) & 0b111

		reg[dr] = cpu.bus.read(reg[br] + sext(instruction&0x3F, 6))
		cpu.updateFlags(dr)

	case OP_LEA:
		dr := (instruction >> 9) & 0b111

		reg[dr] = cpu.internalRegisters.pc + sext(instruction&0x1FF, 9)
		cpu.updateFlags(dr)

	case OP_ST:
		sr := (instruction >> 9) & 0b111

		cpu.bus.write(cpu.internalRegisters.pc+sext(instruction&0x1FF, 9), reg[sr])

	case OP_STI:
		sr := (instruction >> 9) & 0b111

		cpu.bus.write(cpu.bus.read(cpu.internalRegisters.pc+sext(instruction&0x1FF, 9)), reg[sr])

	case OP_STR:
		sr := (instruction >> 9) & 0b111
		br := (instruction >> 6) & 0b111

		cpu.bus.write(reg[br]+sext(instruction&0x3F, 6), reg[sr])

	case OP_TRAP:
		return cpu.trap(instruction & 0xFF)

	default:
		// RTI and RES
		cpu.stop()
		return ErrDecode{PC: pc, Instruction: instruction}
	}

	return nil
}

func (cpu *cpu) updateFlags(r word) {
	if cpu.generalPurposeRegisters[r] == 0 {
		cpu.internalRegisters.cond = FLAG_ZRO
	} else if cpu.generalPurposeRegisters[r]>>15 != 0 {
		cpu.internalRegisters.cond = FLAG_NEG
	} else {
		cpu.internalRegisters.cond = FLAG_POS
	}
}

// sext sign extends the low bit_count bits of x to 16 bits.
func sext(x, bit_count word) word {
	if ((x >> (bit_count - 1)) & 0b1) != 0 {
		x |= (0xFFFF << bit_count)
	}
	return x
}
