package chip8

// op is one decoded operation of the CHIP-8 instruction set. Decoding is
// split from execution so dispatch stays a single closed switch.
type op int

const (
	opUnknown op = iota
	opNop
	opClearScreen
	opSubroutineReturn
	opJumpAddr
	opCallSubroutine
	opSkipEqByte
	opSkipNotByte
	opSkipEqReg
	opSetRegByte
	opAddByte
	opSetRegReg
	opOrReg
	opAndReg
	opXorReg
	opAddReg
	opSubReg
	opShrReg
	opRevSubReg
	opShlReg
	opSkipNotReg
	opSetIndexAddr
	opJumpAddAddr
	opRandAndByte
	opDrawSprite
	opSkipEqKey
	opSkipNotKey
	opSetRegDelay
	opSetRegKey
	opSetDelayReg
	opSetSoundReg
	opAddIndexReg
	opSetIndexChar
	opSetIndexBCD
	opSetIndexReg
	opSetRegIndex
)

// decode matches the instruction's nibble pattern against the opcode
// table. Unmatched patterns decode to opUnknown.
func decode(ins Instruction) op {
	a, _, c, d := ins.Nibbles()
	switch a {
	case 0x0:
		switch uint16(ins) {
		case 0x0000:
			return opNop
		case 0x00E0:
			return opClearScreen
		case 0x00EE:
			return opSubroutineReturn
		}
	case 0x1:
		return opJumpAddr
	case 0x2:
		return opCallSubroutine
	case 0x3:
		return opSkipEqByte
	case 0x4:
		return opSkipNotByte
	case 0x5:
		if d == 0x0 {
			return opSkipEqReg
		}
	case 0x6:
		return opSetRegByte
	case 0x7:
		return opAddByte
	case 0x8:
		switch d {
		case 0x0:
			return opSetRegReg
		case 0x1:
			return opOrReg
		case 0x2:
			return opAndReg
		case 0x3:
			return opXorReg
		case 0x4:
			return opAddReg
		case 0x5:
			return opSubReg
		case 0x6:
			return opShrReg
		case 0x7:
			return opRevSubReg
		case 0xE:
			return opShlReg
		}
	case 0x9:
		if d == 0x0 {
			return opSkipNotReg
		}
	case 0xA:
		return opSetIndexAddr
	case 0xB:
		return opJumpAddAddr
	case 0xC:
		return opRandAndByte
	case 0xD:
		return opDrawSprite
	case 0xE:
		switch {
		case c == 0x9 && d == 0xE:
			return opSkipEqKey
		case c == 0xA && d == 0x1:
			return opSkipNotKey
		}
	case 0xF:
		switch ins.NN() {
		case 0x07:
			return opSetRegDelay
		case 0x0A:
			return opSetRegKey
		case 0x15:
			return opSetDelayReg
		case 0x18:
			return opSetSoundReg
		case 0x1E:
			return opAddIndexReg
		case 0x29:
			return opSetIndexChar
		case 0x33:
			return opSetIndexBCD
		case 0x55:
			return opSetIndexReg
		case 0x65:
			return opSetRegIndex
		}
	}
	return opUnknown
}
