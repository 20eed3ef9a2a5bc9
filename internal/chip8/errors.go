package chip8

import (
	"errors"
	"fmt"
)

// ErrNoMoreInstructions is returned by InstructionCycle when the program
// counter has run past loaded RAM. It is the expected end-of-program
// signal; drivers should stop cleanly.
var ErrNoMoreInstructions = errors.New("there aren't any more instructions to run")

// RomTooBigError is returned by New when the ROM does not fit into the
// RAM past the reserved font and ROM origin.
type RomTooBigError struct {
	Exceed int // bytes over the limit
}

func (e *RomTooBigError) Error() string {
	return fmt.Sprintf("ROM size exceeds the amount of RAM provided by the CHIP-8 emulator by %d bytes", e.Exceed)
}

// UnknownInstructionError is returned by InstructionCycle when no nibble
// pattern in the opcode table matches. The driver decides whether to
// halt or skip.
type UnknownInstructionError struct {
	Instruction Instruction
	PC          int
}

func (e *UnknownInstructionError) Error() string {
	return fmt.Sprintf("instruction opcode %s at %#04x is unknown", e.Instruction, e.PC)
}
