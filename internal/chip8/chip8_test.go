package chip8

import (
	"errors"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"

	"chip8emu/internal/keys"
)

// newChip8 builds an emulator around a literal opcode program.
func newChip8(t *testing.T, program ...byte) *Chip8 {
	t.Helper()
	c, err := New(program)
	assert.NoError(t, err)
	return c
}

// run executes n instruction cycles with no keys held.
func run(t *testing.T, c *Chip8, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, _, err := c.InstructionCycle(keys.New()); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}
}

func TestNew_InitialState(t *testing.T) {
	c := newChip8(t, 0x00, 0xE0)
	assert.Equal(t, 0x200, c.pc)
	assert.Equal(t, uint16(0), c.i)
	assert.Equal(t, byte(0), c.dt)
	assert.Equal(t, byte(0), c.st)
	assert.Equal(t, 0, len(c.stack))
	for i, v := range c.v {
		if v != 0 {
			t.Fatalf("V%X got %02X want 00", i, v)
		}
	}
	// font preloaded at the start of RAM
	assert.Equal(t, byte(0xF0), c.ram[0x00])
	assert.Equal(t, byte(0x80), c.ram[0x4F])
	// ROM copied to its origin
	assert.Equal(t, byte(0x00), c.ram[0x200])
	assert.Equal(t, byte(0xE0), c.ram[0x201])
}

func TestNew_RomSizeLimit(t *testing.T) {
	_, err := New(make([]byte, MaxROMSize))
	assert.NoError(t, err)

	_, err = New(make([]byte, MaxROMSize+1))
	assert.Error(t, err)
	var tooBig *RomTooBigError
	assert.True(t, errors.As(err, &tooBig))
	assert.Equal(t, 1, tooBig.Exceed)
}

func TestClearScreen(t *testing.T) {
	// draw the font sprite for 0 at (0,0), then clear
	c := newChip8(t,
		0xA0, 0x00, // I = 0
		0xD0, 0x05, // draw 5 rows at (V0, V0)
		0x00, 0xE0, // clear
	)
	run(t, c, 2)
	assert.True(t, c.screen.Pixel(0, 0))

	scr, _, err := c.InstructionCycle(keys.New())
	assert.NoError(t, err)
	assert.NotNil(t, scr)
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			if scr.Pixel(x, y) {
				t.Fatalf("pixel (%d,%d) still set after clear", x, y)
			}
		}
	}
}

func TestSetAndAddByte(t *testing.T) {
	c := newChip8(t,
		0x61, 0x05, // V1 = 5
		0x71, 0x05, // V1 += 5
		0x71, 0xFE, // V1 += 254, wrapping
	)
	run(t, c, 2)
	assert.Equal(t, byte(10), c.v[0x1])
	assert.Equal(t, byte(0), c.v[0xF]) // 7xnn has no flag side effect

	run(t, c, 1)
	assert.Equal(t, byte(8), c.v[0x1])
	assert.Equal(t, byte(0), c.v[0xF])
}

func TestAddRegCarry(t *testing.T) {
	c := newChip8(t,
		0x60, 0xFF, // V0 = 0xFF
		0x61, 0x01, // V1 = 0x01
		0x80, 0x14, // V0 += V1
		0x80, 0x14, // V0 += V1 again, no carry this time
	)
	run(t, c, 3)
	assert.Equal(t, byte(0x00), c.v[0x0])
	assert.Equal(t, byte(1), c.v[0xF])

	run(t, c, 1)
	assert.Equal(t, byte(0x01), c.v[0x0])
	assert.Equal(t, byte(0), c.v[0xF])
}

func TestSubRegBorrow(t *testing.T) {
	c := newChip8(t,
		0x60, 0x01, // V0 = 1
		0x61, 0x02, // V1 = 2
		0x80, 0x15, // V0 -= V1, borrow
	)
	run(t, c, 3)
	assert.Equal(t, byte(0xFF), c.v[0x0])
	assert.Equal(t, byte(0), c.v[0xF])

	c = newChip8(t,
		0x60, 0x05,
		0x61, 0x03,
		0x80, 0x15, // 5-3, no borrow
	)
	run(t, c, 3)
	assert.Equal(t, byte(0x02), c.v[0x0])
	assert.Equal(t, byte(1), c.v[0xF])
}

func TestRevSubReg(t *testing.T) {
	c := newChip8(t,
		0x60, 0x03, // V0 = 3
		0x61, 0x0A, // V1 = 10
		0x80, 0x17, // V0 = V1 - V0
	)
	run(t, c, 3)
	assert.Equal(t, byte(0x07), c.v[0x0])
	assert.Equal(t, byte(1), c.v[0xF])

	c = newChip8(t,
		0x60, 0x0A,
		0x61, 0x03,
		0x80, 0x17, // 3-10, borrow
	)
	run(t, c, 3)
	assert.Equal(t, byte(0xF9), c.v[0x0])
	assert.Equal(t, byte(0), c.v[0xF])
}

func TestLogicOpsResetFlag(t *testing.T) {
	programs := [][]byte{
		{0x6F, 0x01, 0x60, 0x0C, 0x61, 0x0A, 0x80, 0x11}, // OR
		{0x6F, 0x01, 0x60, 0x0C, 0x61, 0x0A, 0x80, 0x12}, // AND
		{0x6F, 0x01, 0x60, 0x0C, 0x61, 0x0A, 0x80, 0x13}, // XOR
	}
	want := []byte{0x0C | 0x0A, 0x0C & 0x0A, 0x0C ^ 0x0A}
	for i, program := range programs {
		c := newChip8(t, program...)
		run(t, c, 4)
		assert.Equal(t, want[i], c.v[0x0])
		assert.Equal(t, byte(0), c.v[0xF])
	}
}

func TestShrReg(t *testing.T) {
	c := newChip8(t,
		0x60, 0x05, // V0 = 0b0101, LSB 1
		0x61, 0x08, // V1 = 0b1000
		0x80, 0x16, // V0 = V1 >> 1, VF = pre-shift LSB of V0
	)
	run(t, c, 3)
	assert.Equal(t, byte(0x04), c.v[0x0])
	assert.Equal(t, byte(1), c.v[0xF])
}

func TestShlReg(t *testing.T) {
	c := newChip8(t,
		0x60, 0x80, // V0: MSB set
		0x61, 0x41, // V1 = 0b0100_0001
		0x80, 0x1E, // V0 = V1 << 1, VF = pre-shift MSB of V0
	)
	run(t, c, 3)
	assert.Equal(t, byte(0x82), c.v[0x0])
	assert.Equal(t, byte(1), c.v[0xF])
}

func TestJumpAddr(t *testing.T) {
	c := newChip8(t, 0x12, 0x34)
	run(t, c, 1)
	assert.Equal(t, 0x234, c.pc)
}

func TestJumpAddAddr(t *testing.T) {
	c := newChip8(t,
		0x60, 0x10, // V0 = 0x10
		0xB3, 0x00, // pc = 0x300 + V0
	)
	run(t, c, 2)
	assert.Equal(t, 0x310, c.pc)
}

func TestCallAndReturn(t *testing.T) {
	c := newChip8(t,
		0x22, 0x04, // call 0x204
		0x00, 0x00,
		0x00, 0xEE, // return
	)
	run(t, c, 1)
	assert.Equal(t, 0x204, c.pc)
	assert.Equal(t, 1, len(c.stack))

	run(t, c, 1)
	assert.Equal(t, 0x202, c.pc)
	assert.Equal(t, 0, len(c.stack))
}

func TestSkipByteAndReg(t *testing.T) {
	c := newChip8(t,
		0x60, 0x05, // V0 = 5
		0x30, 0x05, // skip, taken
		0x00, 0x00,
		0x40, 0x05, // skip if not equal, not taken
		0x61, 0x05, // V1 = 5
		0x50, 0x10, // skip, taken
		0x00, 0x00,
		0x90, 0x10, // skip if regs differ, not taken
	)
	run(t, c, 2)
	assert.Equal(t, 0x206, c.pc)
	run(t, c, 2)
	assert.Equal(t, 0x20A, c.pc)
	run(t, c, 1)
	assert.Equal(t, 0x20E, c.pc)
	run(t, c, 1)
	assert.Equal(t, 0x210, c.pc)
}

func TestSetIndexAddr(t *testing.T) {
	c := newChip8(t, 0xA1, 0x23)
	run(t, c, 1)
	assert.Equal(t, uint16(0x123), c.i)
}

func TestAddIndexReg(t *testing.T) {
	c := newChip8(t,
		0x60, 0x10, // V0 = 0x10
		0xAF, 0xFF, // I = 0xFFF
		0xF0, 0x1E, // I += V0
	)
	run(t, c, 3)
	assert.Equal(t, uint16(0x100F), c.i)
}

func TestRandAndByte(t *testing.T) {
	c := newChip8(t,
		0x60, 0xFF, // V0 = 0xFF, to prove it gets overwritten
		0xC0, 0x00, // V0 = rand & 0x00
		0xC1, 0x0F, // V1 = rand & 0x0F
	)
	run(t, c, 2)
	assert.Equal(t, byte(0), c.v[0x0])
	run(t, c, 1)
	assert.Equal(t, byte(0), c.v[0x1]&0xF0)
}

func TestDrawSpriteCollision(t *testing.T) {
	// drawing the same font sprite twice erases it completely
	c := newChip8(t,
		0xA0, 0x00, // I = 0 (font sprite for digit 0)
		0xD0, 0x05,
		0xD0, 0x05,
	)
	run(t, c, 2)
	assert.Equal(t, byte(0), c.v[0xF])
	assert.True(t, c.screen.Pixel(0, 0))

	scr, _, err := c.InstructionCycle(keys.New())
	assert.NoError(t, err)
	assert.NotNil(t, scr)
	assert.Equal(t, byte(1), c.v[0xF])
	assert.False(t, scr.Pixel(0, 0))
}

func TestDrawSpriteClipsAtRightEdge(t *testing.T) {
	// store 0xFF at 0x300 via Fx55, then draw that 8x1 sprite at (60,0)
	c := newChip8(t,
		0x60, 0xFF, // V0 = 0xFF
		0xA3, 0x00, // I = 0x300
		0xF0, 0x55, // RAM[0x300] = V0
		0xA3, 0x00, // I = 0x300 again
		0x60, 0x3C, // V0 = 60
		0x61, 0x00, // V1 = 0
		0xD0, 0x11, // draw 1 row at (V0, V1)
	)
	run(t, c, 6)
	scr, _, err := c.InstructionCycle(keys.New())
	assert.NoError(t, err)
	assert.NotNil(t, scr)
	for x := 60; x < 64; x++ {
		assert.True(t, scr.Pixel(x, 0))
	}
	for x := 0; x < 4; x++ {
		assert.False(t, scr.Pixel(x, 0))
	}
}

func TestKeySkips(t *testing.T) {
	c := newChip8(t,
		0x60, 0x05, // V0 = 5
		0xE0, 0x9E, // skip if key 5 pressed
		0x00, 0x00, // skipped over
		0xE0, 0xA1, // skip if key 5 not pressed
	)
	run(t, c, 1)

	held := keys.New()
	held.PressKey(0x5)
	_, _, err := c.InstructionCycle(held)
	assert.NoError(t, err)
	assert.Equal(t, 0x206, c.pc) // skipped

	_, _, err = c.InstructionCycle(held)
	assert.NoError(t, err)
	assert.Equal(t, 0x208, c.pc) // not skipped
}

func TestWaitForKey(t *testing.T) {
	c := newChip8(t, 0xF0, 0x0A)

	// no key pressed: the instruction re-executes next cycle
	run(t, c, 3)
	assert.Equal(t, 0x200, c.pc)

	pressed := keys.New()
	pressed.PressKey(0xB)
	_, _, err := c.InstructionCycle(pressed)
	assert.NoError(t, err)
	assert.Equal(t, 0x202, c.pc)
	assert.Equal(t, byte(0xB), c.v[0x0])
}

func TestTimers(t *testing.T) {
	c := newChip8(t,
		0x60, 0x0A, // V0 = 10
		0xF0, 0x15, // dt = V0
		0xF0, 0x18, // st = V0
		0xF1, 0x07, // V1 = dt
		0x00, 0x00,
	)
	c.lastDecrement = time.Now() // no decrement during the setup cycles
	run(t, c, 3)
	assert.Equal(t, byte(10), c.dt)
	assert.Equal(t, byte(10), c.st)

	c.lastDecrement = time.Now()
	_, beep, err := c.InstructionCycle(keys.New())
	assert.NoError(t, err)
	assert.True(t, beep)
	assert.Equal(t, byte(10), c.v[0x1])

	// a sixtieth of a second later both timers drop by exactly one
	c.lastDecrement = time.Now().Add(-time.Second / 30)
	run(t, c, 1)
	assert.Equal(t, byte(9), c.dt)
	assert.Equal(t, byte(9), c.st)
}

func TestTimersFloorAtZero(t *testing.T) {
	c := newChip8(t, 0x00, 0x00)
	c.lastDecrement = time.Now().Add(-time.Second)
	run(t, c, 1)
	assert.Equal(t, byte(0), c.dt)
	assert.Equal(t, byte(0), c.st)
}

func TestSetIndexChar(t *testing.T) {
	c := newChip8(t,
		0x60, 0x0A, // V0 = 0xA
		0xF0, 0x29, // I = sprite of A
	)
	run(t, c, 2)
	assert.Equal(t, uint16(5*0xA), c.i)
}

func TestSetIndexBCD(t *testing.T) {
	c := newChip8(t,
		0x60, 0xFE, // V0 = 254
		0xA3, 0x00, // I = 0x300
		0xF0, 0x33,
	)
	run(t, c, 3)
	assert.Equal(t, byte(2), c.ram[0x300])
	assert.Equal(t, byte(5), c.ram[0x301])
	assert.Equal(t, byte(4), c.ram[0x302])
}

func TestStoreLoadRoundTrip(t *testing.T) {
	c := newChip8(t,
		0x60, 0x11, // V0
		0x61, 0x22, // V1
		0x62, 0x33, // V2
		0xA3, 0x00, // I = 0x300
		0xF2, 0x55, // store V0..V2
		0x60, 0x00, // clobber the registers
		0x61, 0x00,
		0x62, 0x00,
		0xA3, 0x00, // I = 0x300 again
		0xF2, 0x65, // load V0..V2
	)
	run(t, c, 5)
	assert.Equal(t, uint16(0x303), c.i) // I advanced past the stored range
	assert.Equal(t, byte(0x11), c.ram[0x300])
	assert.Equal(t, byte(0x22), c.ram[0x301])
	assert.Equal(t, byte(0x33), c.ram[0x302])

	run(t, c, 5)
	assert.Equal(t, byte(0x11), c.v[0x0])
	assert.Equal(t, byte(0x22), c.v[0x1])
	assert.Equal(t, byte(0x33), c.v[0x2])
	assert.Equal(t, uint16(0x303), c.i)
}

func TestUnknownInstruction(t *testing.T) {
	c := newChip8(t, 0xFF, 0xFF)
	_, _, err := c.InstructionCycle(keys.New())
	assert.Error(t, err)
	var unknown *UnknownInstructionError
	assert.True(t, errors.As(err, &unknown))
	assert.Equal(t, Instruction(0xFFFF), unknown.Instruction)
	assert.Equal(t, 0x202, unknown.PC)
}

func TestNoMoreInstructions(t *testing.T) {
	c := newChip8(t, 0x1F, 0xFE) // jump to the last instruction slot
	run(t, c, 2)                 // jump, then the nop at 0xFFE
	assert.Equal(t, 0x1000, c.pc)

	_, _, err := c.InstructionCycle(keys.New())
	assert.True(t, errors.Is(err, ErrNoMoreInstructions))
}

func TestSubroutineReturnEmptyStackPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on return with empty stack")
		}
	}()
	c := newChip8(t, 0x00, 0xEE)
	_, _, _ = c.InstructionCycle(keys.New())
}
