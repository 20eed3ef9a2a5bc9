// Package chip8 implements the CHIP-8 virtual machine core: RAM,
// registers, call stack, timers, and the fetch-decode-execute cycle.
// The core performs no I/O; a driver supplies a fresh key snapshot each
// cycle and consumes the returned framebuffer and beep flag.
package chip8

import (
	"math/rand"
	"time"

	"chip8emu/internal/keys"
	"chip8emu/internal/screen"
)

const (
	// ramSize is how many bytes of RAM the machine has.
	ramSize = 0x1000
	// romLoc is where the ROM is placed in RAM.
	romLoc = 0x200
	// timerInterval is the wall-clock cadence of the two timers.
	timerInterval = time.Second / 60
)

// fontSprites holds 5-byte sprites for the hexadecimal digits 0-F,
// stored at the beginning of RAM.
var fontSprites = [0x50]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// MaxROMSize is the largest ROM that fits into RAM.
const MaxROMSize = ramSize - romLoc

// Chip8 is one emulator instance. It must be driven from a single
// goroutine, one instruction cycle per tick.
type Chip8 struct {
	ram           [ramSize]byte
	v             [0x10]byte
	i             uint16
	pc            int
	dt            byte
	st            byte
	stack         []int
	instruction   Instruction
	keys          keys.Keys
	screen        screen.Screen
	lastDecrement time.Time
	rng           *rand.Rand
}

// New creates an emulator with the ROM loaded at the ROM origin, the
// font preloaded, and all registers, timers, and the stack zeroed.
func New(rom []byte) (*Chip8, error) {
	if len(rom) > MaxROMSize {
		return nil, &RomTooBigError{Exceed: len(rom) - MaxROMSize}
	}

	c := &Chip8{
		pc:            romLoc,
		lastDecrement: time.Now(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	copy(c.ram[:], fontSprites[:])
	copy(c.ram[romLoc:], rom)
	return c, nil
}

// InstructionCycle performs one fetch-decode-execute step using the
// given key snapshot. If the instruction redrew the screen, a copy of
// the framebuffer is returned; the bool reports whether the frontend
// should currently beep. ErrNoMoreInstructions is returned when the
// program counter has run past RAM, and an UnknownInstructionError when
// the opcode matches no pattern.
func (c *Chip8) InstructionCycle(k keys.Keys) (*screen.Screen, bool, error) {
	c.decrementTimers()
	ins, ok := c.fetchInstruction()
	if !ok {
		return nil, false, ErrNoMoreInstructions
	}
	c.keys = k
	c.instruction = ins
	c.pc += 2
	redraw, err := c.decodeExecute()
	if err != nil {
		return nil, false, err
	}
	if redraw {
		snap := c.screen
		return &snap, c.st > 0, nil
	}
	return nil, c.st > 0, nil
}

// PC returns the current program counter.
func (c *Chip8) PC() int { return c.pc }

// Opcode returns the most recently fetched instruction.
func (c *Chip8) Opcode() Instruction { return c.instruction }

// decrementTimers drops the delay and sound timers by one once at least
// a sixtieth of a second has passed, independent of cycle rate.
func (c *Chip8) decrementTimers() {
	if time.Since(c.lastDecrement) >= timerInterval {
		if c.dt != 0 {
			c.dt--
		}
		if c.st != 0 {
			c.st--
		}
		c.lastDecrement = time.Now()
	}
}

// fetchInstruction reads the big-endian instruction at the program
// counter, if both bytes are still inside RAM.
func (c *Chip8) fetchInstruction() (Instruction, bool) {
	if c.pc < 0 || c.pc+1 >= ramSize {
		return 0, false
	}
	return Instruction(uint16(c.ram[c.pc])<<8 | uint16(c.ram[c.pc+1])), true
}

// decodeExecute dispatches the current instruction and reports whether
// the screen was updated.
func (c *Chip8) decodeExecute() (bool, error) {
	switch decode(c.instruction) {
	case opNop:
	case opClearScreen:
		c.screen.Clear()
		return true, nil
	case opSubroutineReturn:
		c.subroutineReturn()
	case opJumpAddr:
		c.pc = int(c.instruction.NNN())
	case opCallSubroutine:
		c.stack = append(c.stack, c.pc)
		c.pc = int(c.instruction.NNN())
	case opSkipEqByte:
		c.skipIf(c.v[c.instruction.X()] == c.instruction.NN())
	case opSkipNotByte:
		c.skipIf(c.v[c.instruction.X()] != c.instruction.NN())
	case opSkipEqReg:
		c.skipIf(c.v[c.instruction.X()] == c.v[c.instruction.Y()])
	case opSetRegByte:
		c.v[c.instruction.X()] = c.instruction.NN()
	case opAddByte:
		c.v[c.instruction.X()] += c.instruction.NN()
	case opSetRegReg:
		c.v[c.instruction.X()] = c.v[c.instruction.Y()]
	case opOrReg:
		c.v[c.instruction.X()] |= c.v[c.instruction.Y()]
		c.v[0xF] = 0
	case opAndReg:
		c.v[c.instruction.X()] &= c.v[c.instruction.Y()]
		c.v[0xF] = 0
	case opXorReg:
		c.v[c.instruction.X()] ^= c.v[c.instruction.Y()]
		c.v[0xF] = 0
	case opAddReg:
		c.addReg()
	case opSubReg:
		c.subReg()
	case opShrReg:
		c.shrReg()
	case opRevSubReg:
		c.revSubReg()
	case opShlReg:
		c.shlReg()
	case opSkipNotReg:
		c.skipIf(c.v[c.instruction.X()] != c.v[c.instruction.Y()])
	case opSetIndexAddr:
		c.i = c.instruction.NNN()
	case opJumpAddAddr:
		c.pc = int(c.instruction.NNN()) + int(c.v[0x0])
	case opRandAndByte:
		c.v[c.instruction.X()] = byte(c.rng.Intn(0x100)) & c.instruction.NN()
	case opDrawSprite:
		c.drawSprite()
		return true, nil
	case opSkipEqKey:
		c.skipIf(c.keys.KeyPressed(c.v[c.instruction.X()]))
	case opSkipNotKey:
		c.skipIf(!c.keys.KeyPressed(c.v[c.instruction.X()]))
	case opSetRegDelay:
		c.v[c.instruction.X()] = c.dt
	case opSetRegKey:
		c.setRegKey()
	case opSetDelayReg:
		c.dt = c.v[c.instruction.X()]
	case opSetSoundReg:
		c.st = c.v[c.instruction.X()]
	case opAddIndexReg:
		c.i += uint16(c.v[c.instruction.X()])
	case opSetIndexChar:
		c.i = 5 * uint16(c.v[c.instruction.X()])
	case opSetIndexBCD:
		c.setIndexBCD()
	case opSetIndexReg:
		c.setIndexReg()
	case opSetRegIndex:
		c.setRegIndex()
	default:
		return false, &UnknownInstructionError{Instruction: c.instruction, PC: c.pc}
	}
	return false, nil
}

// skipIf advances past the next instruction when the condition holds.
func (c *Chip8) skipIf(cond bool) {
	if cond {
		c.pc += 2
	}
}

// subroutineReturn pops the return address off the stack. An empty stack
// means the ROM is malformed; that is a contract violation, not a
// recoverable error.
func (c *Chip8) subroutineReturn() {
	n := len(c.stack) - 1
	if n < 0 {
		panic("chip8: subroutine return with empty call stack")
	}
	c.pc = c.stack[n]
	c.stack = c.stack[:n]
}

// addReg adds Vy to Vx, setting VF on carry.
func (c *Chip8) addReg() {
	x := c.instruction.X()
	sum := uint16(c.v[x]) + uint16(c.v[c.instruction.Y()])
	c.v[x] = byte(sum)
	c.v[0xF] = byte(sum >> 8)
}

// subReg subtracts Vy from Vx, setting VF when no borrow occurred.
func (c *Chip8) subReg() {
	x := c.instruction.X()
	vx, vy := c.v[x], c.v[c.instruction.Y()]
	c.v[x] = vx - vy
	c.v[0xF] = boolByte(vx >= vy)
}

// shrReg stores the pre-shift LSB of Vx in VF, then sets Vx to Vy
// shifted right by one. The shift source is Vy, not Vx.
func (c *Chip8) shrReg() {
	x := c.instruction.X()
	lsb := c.v[x] & 1
	c.v[x] = c.v[c.instruction.Y()] >> 1
	c.v[0xF] = lsb
}

// revSubReg sets Vx to Vy minus Vx, setting VF when no borrow occurred.
func (c *Chip8) revSubReg() {
	x := c.instruction.X()
	vx, vy := c.v[x], c.v[c.instruction.Y()]
	c.v[x] = vy - vx
	c.v[0xF] = boolByte(vy >= vx)
}

// shlReg stores the pre-shift MSB of Vx in VF, then sets Vx to Vy
// shifted left by one.
func (c *Chip8) shlReg() {
	x := c.instruction.X()
	msb := (c.v[x] >> 7) & 1
	c.v[x] = c.v[c.instruction.Y()] << 1
	c.v[0xF] = msb
}

// drawSprite draws the n-byte sprite at RAM[I..I+n] at (Vx, Vy) and
// stores the collision flag in VF.
func (c *Chip8) drawSprite() {
	sprite := c.ram[c.i : c.i+uint16(c.instruction.N())]
	x := int(c.v[c.instruction.X()])
	y := int(c.v[c.instruction.Y()])
	c.v[0xF] = boolByte(c.screen.DrawSprite(sprite, x, y))
}

// setRegKey stores the last pressed key in Vx. With no key pressed the
// program counter rolls back so the same instruction re-executes next
// cycle; the wait is cooperative, never blocking.
func (c *Chip8) setRegKey() {
	if key, ok := c.keys.LastPressed(); ok {
		c.v[c.instruction.X()] = key
	} else {
		c.pc -= 2
	}
}

// setIndexBCD stores the decimal digits of Vx at RAM[I..I+3].
func (c *Chip8) setIndexBCD() {
	vx := c.v[c.instruction.X()]
	c.ram[c.i] = vx / 100 % 10
	c.ram[c.i+1] = vx / 10 % 10
	c.ram[c.i+2] = vx % 10
}

// setIndexReg copies V0..Vx into RAM at the index register, then
// advances I past the copied range.
func (c *Chip8) setIndexReg() {
	x := int(c.instruction.X())
	i := int(c.i)
	copy(c.ram[i:i+x+1], c.v[:x+1])
	c.i += uint16(x + 1)
}

// setRegIndex copies RAM at the index register into V0..Vx, then
// advances I past the copied range.
func (c *Chip8) setRegIndex() {
	x := int(c.instruction.X())
	i := int(c.i)
	copy(c.v[:x+1], c.ram[i:i+x+1])
	c.i += uint16(x + 1)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
