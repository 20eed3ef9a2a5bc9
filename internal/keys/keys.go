// Package keys holds the 16-key input state shared between a frontend
// and the emulator core.
package keys

// Keys is a snapshot of the hexadecimal keypad: a bitmask of held keys
// plus the most recently pressed key. It is a small value type; the
// driver hands a fresh copy to the engine every cycle.
type Keys struct {
	raw     uint16
	last    byte
	hasLast bool
}

// New returns a set of keys with nothing pressed.
func New() Keys {
	return Keys{}
}

// PressKey sets key (0x0-0xF) as held and records it as last pressed.
func (k *Keys) PressKey(key byte) {
	k.raw |= 1 << key
	k.last = key
	k.hasLast = true
}

// ReleaseKey clears the held bit for key. The last pressed key is left
// alone so a quick press-release still registers for one cycle.
func (k *Keys) ReleaseKey(key byte) {
	k.raw &^= 1 << key
}

// KeyPressed reports whether key is currently held.
func (k Keys) KeyPressed(key byte) bool {
	return k.raw&(1<<key) != 0
}

// LastPressed returns the most recent key press since the last
// ResetLastPressed call.
func (k Keys) LastPressed() (byte, bool) {
	return k.last, k.hasLast
}

// ResetLastPressed clears the last pressed key. The driver calls this
// once per instruction cycle, after the cycle has consumed it.
func (k *Keys) ResetLastPressed() {
	k.hasLast = false
}
