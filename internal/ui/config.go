package ui

// Config contains window and input related settings.
type Config struct {
	Title  string // window title
	Scale  int    // integer upscaling factor
	Layout Layout // keyboard layout for the hexadecimal keypad
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "chip8emu"
	}
	if c.Scale <= 0 {
		c.Scale = 10
	}
}
