// Package screen holds the monochrome framebuffer shared between the
// emulator core and a frontend.
package screen

const (
	// Width is the number of pixel columns.
	Width = 64
	// Height is the number of pixel rows.
	Height = 32
)

// Screen is a 64x32 monochrome pixel grid, row-major, origin top-left.
// The zero value is a cleared screen.
type Screen struct {
	raw [Width * Height]bool
}

// New returns a cleared screen.
func New() *Screen {
	return &Screen{}
}

// Clear unsets every pixel.
func (s *Screen) Clear() {
	s.raw = [Width * Height]bool{}
}

// DrawSprite XORs a sprite onto the screen at (x, y) and reports whether
// any pixel was erased (set -> unset), which drives the VF collision flag.
// Each sprite byte is one 8-pixel row, MSB leftmost. The starting position
// wraps around the screen edges, but rows and columns running past an edge
// during drawing are clipped, not wrapped.
func (s *Screen) DrawSprite(sprite []byte, x, y int) bool {
	x %= Width
	y %= Height
	erased := false
	for i, row := range sprite {
		if y+i >= Height {
			break
		}
		for j := 0; j < 8; j++ {
			if x+j >= Width {
				break
			}
			bit := row&(0x80>>j) != 0
			pos := (y+i)*Width + x + j
			was := s.raw[pos]
			s.raw[pos] = was != bit
			if was && !s.raw[pos] {
				erased = true
			}
		}
	}
	return erased
}

// Pixel reports whether the pixel at (x, y) is set. Coordinates must be
// within bounds; callers always iterate the fixed 64x32 space.
func (s *Screen) Pixel(x, y int) bool {
	return s.raw[y*Width+x]
}
