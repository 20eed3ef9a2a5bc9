package emu

import (
	"fmt"
	"strconv"

	"github.com/retroenv/retrogolib/log"
)

// Config contains settings that affect how the machine is driven.
type Config struct {
	CyclesPerSecond int  // instruction cycles executed per second of frames
	Trace           bool // log every executed instruction
	StopOnUnknown   bool // halt on an unknown opcode instead of skipping it
	FG              RGB  // framebuffer foreground color
	BG              RGB  // framebuffer background color
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.CyclesPerSecond <= 0 {
		c.CyclesPerSecond = 700
	}
	if c.FG == (RGB{}) && c.BG == (RGB{}) {
		c.FG = RGB{0xFF, 0xFF, 0xFF}
	}
}

// RGB is a 24-bit color.
type RGB [3]byte

// ParseHexColor converts a "#RRGGBB" string into an RGB color.
func ParseHexColor(s string) (RGB, error) {
	if len(s) != 7 || s[0] != '#' {
		return RGB{}, fmt.Errorf("color %q is not in #RRGGBB format", s)
	}
	var c RGB
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("color %q is not in #RRGGBB format", s)
		}
		c[i] = byte(v)
	}
	return c, nil
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
