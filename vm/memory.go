package vm

const MemorySize = 1 << 16
const (
	TrapVectorTableStart       = 0x0000
	InterruptVectorTableStart  = 0x0100
	SystemSpaceStart           = 0x0200
	UserSpaceStart             = 0x3000
	MemoryMappedRegistersStart = 0xFE00
)

// memory mapped register addresses
const (
	KBSR word = MemoryMappedRegistersStart          /* keyboard status register */
	KBDR word = MemoryMappedRegistersStart + 0x0002 /* keyboard data register */
)

const kbsrReady word = 1 << 15

type memory [MemorySize]word

func (mem *memory) write(addr, value word) {
	mem[addr] = value
}

func (mem *memory) read(addr word) word {
	return mem[addr]
}

// load copies img into memory at its origin. Words that would land past
// the top of the address space are dropped. Returns the number written.
func (mem *memory) load(img *Image) int {
	n := min(len(img.Words), MemorySize-int(img.Origin))
	copy(mem[img.Origin:], img.Words[:n])
	return n
}

// bus routes CPU memory traffic. Reading KBSR polls the keyboard.
type bus struct {
	memory  *memory
	console *Console
}

func (b *bus) read(addr word) word {
	if addr == KBSR {
		if key, ok := b.console.checkKey(); ok {
			b.memory.write(KBSR, kbsrReady)
			b.memory.write(KBDR, word(key))
		} else {
			b.memory.write(KBSR, 0)
		}
	}
	return b.memory.read(addr)
}

func (b *bus) write(addr, value word) {
	b.memory.write(addr, value)
}

// cstring returns the words from addr up to, not including, the first zero
// word. The scan stops at the top of the address space.
func (mem *memory) cstring(addr word) []word {
	end := int(addr)
	for end < MemorySize && mem[end] != 0 {
		end++
	}
	return mem[addr:end]
}
