// Package emu wires the CHIP-8 core to a driver: it batches instruction
// cycles, renders the monochrome screen into an RGBA framebuffer, and
// applies the driver's error policy.
package emu

import (
	"errors"

	"github.com/retroenv/retrogolib/log"

	"chip8emu/internal/chip8"
	"chip8emu/internal/keys"
	"chip8emu/internal/screen"
)

// FrameRate is the tick rate the machine assumes when batching cycles
// per frame. Timer decay inside the core is wall-clock based and does
// not depend on it.
const FrameRate = 60

// Machine owns one CHIP-8 instance plus the driver-side state around
// it: current key snapshot, rendered framebuffer, and beep flag.
type Machine struct {
	cfg    Config
	logger *log.Logger

	rom  []byte
	c    *chip8.Chip8
	keys keys.Keys

	fb   []byte // RGBA 64x32*4
	beep bool
	done bool
}

// New creates a machine for the given ROM.
func New(cfg Config, rom []byte, logger *log.Logger) (*Machine, error) {
	cfg.Defaults()
	c, err := chip8.New(rom)
	if err != nil {
		return nil, err
	}
	m := &Machine{
		cfg:    cfg,
		logger: logger,
		rom:    append([]byte(nil), rom...),
		c:      c,
		fb:     make([]byte, screen.Width*screen.Height*4),
	}
	m.renderScreen(screen.New())
	return m, nil
}

// Reset restarts the machine from the loaded ROM. Held keys carry over;
// the frontend keeps reporting releases.
func (m *Machine) Reset() error {
	c, err := chip8.New(m.rom)
	if err != nil {
		return err
	}
	m.c = c
	m.beep = false
	m.done = false
	m.renderScreen(screen.New())
	return nil
}

// PressKey marks a CHIP-8 key (0x0-0xF) as held.
func (m *Machine) PressKey(key byte) { m.keys.PressKey(key) }

// ReleaseKey marks a CHIP-8 key as released.
func (m *Machine) ReleaseKey(key byte) { m.keys.ReleaseKey(key) }

// SetKeys replaces the whole key snapshot.
func (m *Machine) SetKeys(k keys.Keys) { m.keys = k }

// StepCycle runs a single instruction cycle. Running past the end of
// the program marks the machine done; an unknown opcode either stops
// the machine or is skipped with a warning, per the config.
func (m *Machine) StepCycle() error {
	if m.done {
		return nil
	}
	pc := m.c.PC()
	scr, beep, err := m.c.InstructionCycle(m.keys)
	m.keys.ResetLastPressed()
	if err != nil {
		if errors.Is(err, chip8.ErrNoMoreInstructions) {
			m.logger.Info("program finished", log.Hex("pc", uint16(pc)))
			m.done = true
			return nil
		}
		var unknown *chip8.UnknownInstructionError
		if errors.As(err, &unknown) && !m.cfg.StopOnUnknown {
			m.logger.Warn("skipping unknown instruction",
				log.String("opcode", unknown.Instruction.String()),
				log.Hex("pc", uint16(unknown.PC)))
			return nil
		}
		m.done = true
		return err
	}
	if m.cfg.Trace {
		m.logger.Debug("cycle",
			log.String("opcode", m.c.Opcode().String()),
			log.Hex("pc", uint16(pc)))
	}
	m.beep = beep
	if scr != nil {
		m.renderScreen(scr)
	}
	return nil
}

// StepFrame runs one frame's worth of instruction cycles.
func (m *Machine) StepFrame() error {
	n := m.cfg.CyclesPerSecond / FrameRate
	if n < 1 {
		n = 1
	}
	for i := 0; i < n && !m.done; i++ {
		if err := m.StepCycle(); err != nil {
			return err
		}
	}
	return nil
}

// Framebuffer returns the RGBA rendering of the screen, 64x32, 4 bytes
// per pixel. The slice is reused between frames.
func (m *Machine) Framebuffer() []byte { return m.fb }

// Beeping reports whether the frontend should currently emit sound.
func (m *Machine) Beeping() bool { return m.beep }

// Done reports whether the program has ended.
func (m *Machine) Done() bool { return m.done }

// renderScreen paints the monochrome screen into the RGBA framebuffer
// using the configured colors.
func (m *Machine) renderScreen(s *screen.Screen) {
	for y := 0; y < screen.Height; y++ {
		for x := 0; x < screen.Width; x++ {
			c := m.cfg.BG
			if s.Pixel(x, y) {
				c = m.cfg.FG
			}
			i := (y*screen.Width + x) * 4
			m.fb[i], m.fb[i+1], m.fb[i+2], m.fb[i+3] = c[0], c[1], c[2], 0xFF
		}
	}
}
