package ui

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// Layout selects which physical keys map onto the 4x4 CHIP-8 keypad.
type Layout int

const (
	LayoutQwerty Layout = iota
	LayoutColemak
)

func (l Layout) String() string {
	switch l {
	case LayoutColemak:
		return "Colemak"
	default:
		return "QWERTY"
	}
}

// ParseLayout converts a layout name into a Layout.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "qwerty":
		return LayoutQwerty, nil
	case "colemak":
		return LayoutColemak, nil
	default:
		return 0, fmt.Errorf("keyboard layout %q is unknown (QWERTY and Colemak supported)", s)
	}
}

// keyMap returns the keyboard key to CHIP-8 key mapping for the layout.
// Both layouts keep the original COSMAC keypad shape: the 1-2-3-4 row
// down to the Z-X-C-V row.
func (l Layout) keyMap() map[ebiten.Key]byte {
	switch l {
	case LayoutColemak:
		return map[ebiten.Key]byte{
			ebiten.KeyDigit1: 0x1, ebiten.KeyDigit2: 0x2, ebiten.KeyDigit3: 0x3, ebiten.KeyDigit4: 0xC,
			ebiten.KeyQ: 0x4, ebiten.KeyW: 0x5, ebiten.KeyF: 0x6, ebiten.KeyP: 0xD,
			ebiten.KeyA: 0x7, ebiten.KeyR: 0x8, ebiten.KeyS: 0x9, ebiten.KeyT: 0xE,
			ebiten.KeyZ: 0xA, ebiten.KeyX: 0x0, ebiten.KeyC: 0xB, ebiten.KeyV: 0xF,
		}
	default:
		return map[ebiten.Key]byte{
			ebiten.KeyDigit1: 0x1, ebiten.KeyDigit2: 0x2, ebiten.KeyDigit3: 0x3, ebiten.KeyDigit4: 0xC,
			ebiten.KeyQ: 0x4, ebiten.KeyW: 0x5, ebiten.KeyE: 0x6, ebiten.KeyR: 0xD,
			ebiten.KeyA: 0x7, ebiten.KeyS: 0x8, ebiten.KeyD: 0x9, ebiten.KeyF: 0xE,
			ebiten.KeyZ: 0xA, ebiten.KeyX: 0x0, ebiten.KeyC: 0xB, ebiten.KeyV: 0xF,
		}
	}
}
