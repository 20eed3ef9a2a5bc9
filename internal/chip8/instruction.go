package chip8

import "fmt"

// Instruction is a raw 16-bit opcode. Every 16-bit value is a valid, if
// possibly unrecognized, instruction; the accessors are pure bit
// extraction and never fail.
type Instruction uint16

// Nibbles splits the instruction into its four 4-bit fields, most
// significant first.
func (i Instruction) Nibbles() (byte, byte, byte, byte) {
	return byte(i >> 12), byte(i>>8) & 0xF, byte(i>>4) & 0xF, byte(i) & 0xF
}

// X is the register selector in bits 8-11.
func (i Instruction) X() byte {
	return byte(i>>8) & 0xF
}

// Y is the register selector in bits 4-7.
func (i Instruction) Y() byte {
	return byte(i>>4) & 0xF
}

// N is the immediate nibble in bits 0-3.
func (i Instruction) N() byte {
	return byte(i) & 0xF
}

// NN is the immediate byte in bits 0-7.
func (i Instruction) NN() byte {
	return byte(i)
}

// NNN is the immediate 12-bit address in bits 0-11.
func (i Instruction) NNN() uint16 {
	return uint16(i) & 0x0FFF
}

// String renders the raw opcode as four hex digits for diagnostics.
func (i Instruction) String() string {
	return fmt.Sprintf("%04X", uint16(i))
}
