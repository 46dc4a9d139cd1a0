package vm

import (
	"encoding/binary"
	"io"
	"log"
)

// Image is a decoded LC-3 object file.
type Image struct {
	Origin word
	Words  []word
}

// Len returns the number of program words, excluding the origin.
func (img *Image) Len() int {
	return len(img.Words)
}

// ReadImage decodes an object file: a big-endian origin word followed by
// big-endian program words up to EOF. A trailing odd byte is ignored.
func ReadImage(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < 2 {
		return nil, ErrImageShort
	}

	img := &Image{
		Origin: swap16(word(binary.LittleEndian.Uint16(data))),
		Words:  make([]word, 0, (len(data)-2)/2),
	}
	for j := 2; j+1 < len(data); j += 2 {
		img.Words = append(img.Words, swap16(word(binary.LittleEndian.Uint16(data[j:]))))
	}
	return img, nil
}

// swap16 exchanges the two bytes of x.
func swap16(x word) word {
	return x<<8 | x>>8
}

func (vm *VM) loadImage(img *Image) {
	n := vm.memory.load(img)
	if vm.cpu.verbose {
		log.Printf("image: origin=0x%04x size=%0.2f KB", uint16(img.Origin), float32(2*img.Len()+2)/1024)
		if n < img.Len() {
			log.Printf("image: truncated %d words past 0xffff", img.Len()-n)
		}
	}
}
