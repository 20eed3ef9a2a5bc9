// Package ui provides the windowed ebiten frontend: keyboard input,
// scaled rendering of the 64x32 framebuffer, and the beep tone.
package ui

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"chip8emu/internal/emu"
	"chip8emu/internal/screen"
)

type App struct {
	cfg    Config
	m      *emu.Machine
	keyMap map[ebiten.Key]byte
	tex    *ebiten.Image
	beeper *beeper
	paused bool
	fast   bool
}

func NewApp(cfg Config, m *emu.Machine) (*App, error) {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(screen.Width*cfg.Scale, screen.Height*cfg.Scale)
	b, err := newBeeper()
	if err != nil {
		return nil, fmt.Errorf("init audio: %w", err)
	}
	return &App{cfg: cfg, m: m, keyMap: cfg.Layout.keyMap(), beeper: b}, nil
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	// Keyboard -> CHIP-8 keypad
	for k, key := range a.keyMap {
		if inpututil.IsKeyJustPressed(k) {
			a.m.PressKey(key)
		}
		if inpututil.IsKeyJustReleased(k) {
			a.m.ReleaseKey(key)
		}
	}

	// Hotkeys stay off the keypad keys, which both layouts claim.
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.paused = !a.paused
	}

	// Fast-forward (Tab): while held, run multiple frames per update
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := a.m.Reset(); err != nil {
			return err
		}
	}

	// Frame-step when paused (N)
	if a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if err := a.m.StepFrame(); err != nil {
			return err
		}
	}

	// Screenshot (F12)
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		_ = a.saveScreenshot()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if !a.paused {
		frames := 1
		if a.fast {
			frames = 5
		}
		for i := 0; i < frames; i++ {
			if err := a.m.StepFrame(); err != nil {
				return err
			}
		}
	}

	a.beeper.update(a.m.Beeping() && !a.paused)

	if a.m.Done() {
		return ebiten.Termination
	}
	return nil
}

func (a *App) Draw(dst *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(screen.Width, screen.Height)
	}
	a.tex.WritePixels(a.m.Framebuffer())
	dst.DrawImage(a.tex, nil)
}

func (a *App) Layout(outW, outH int) (int, int) { return screen.Width, screen.Height }

func (a *App) saveScreenshot() error {
	fb := a.m.Framebuffer()
	img := &image.RGBA{
		Pix:    append([]byte(nil), fb...),
		Stride: 4 * screen.Width,
		Rect:   image.Rect(0, 0, screen.Width, screen.Height),
	}
	name := fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
