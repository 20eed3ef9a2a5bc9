package cmd

import (
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chip8emu/internal/emu"
	"chip8emu/internal/screen"
	"chip8emu/internal/ui"
)

var startCmd = &cobra.Command{
	Use:   "start path/to/ROM",
	Short: "load a ROM and start the emulator",
	Args:  cobra.ExactArgs(1),
	RunE:  start,
}

var (
	scale           int
	layoutName      string
	fgColor         string
	bgColor         string
	cyclesPerSecond int
	trace           bool
	skipUnknown     bool

	// headless
	headless bool
	frames   int
	pngOut   string
	expect   string // expected framebuffer CRC32 hex (e.g., "1a2b3c4d")
)

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().IntVarP(&scale, "scale", "s", 10, "window scale factor")
	startCmd.Flags().StringVarP(&layoutName, "layout", "l", "qwerty", "keyboard layout (QWERTY or Colemak)")
	startCmd.Flags().StringVar(&fgColor, "fg", "#FFFFFF", "foreground color in #RRGGBB hex")
	startCmd.Flags().StringVar(&bgColor, "bg", "#000000", "background color in #RRGGBB hex")
	startCmd.Flags().IntVarP(&cyclesPerSecond, "cycles", "c", 700, "instruction cycles per second")
	startCmd.Flags().BoolVar(&trace, "trace", false, "log every executed instruction")
	startCmd.Flags().BoolVar(&skipUnknown, "skip-unknown", false, "skip unknown opcodes instead of halting")

	// headless options
	startCmd.Flags().BoolVar(&headless, "headless", false, "run without a window")
	startCmd.Flags().IntVar(&frames, "frames", 300, "frames to run in headless mode")
	startCmd.Flags().StringVar(&pngOut, "outpng", "", "write last framebuffer to PNG at path")
	startCmd.Flags().StringVar(&expect, "expect", "", "assert framebuffer CRC32 (hex)")

	for _, name := range []string{"scale", "layout", "fg", "bg", "cycles"} {
		_ = viper.BindPFlag(name, startCmd.Flags().Lookup(name))
	}
}

func start(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	logger := emu.CreateLogger(debug, quiet)

	rom, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read ROM: %w", err)
	}

	fg, err := emu.ParseHexColor(viper.GetString("fg"))
	if err != nil {
		return err
	}
	bg, err := emu.ParseHexColor(viper.GetString("bg"))
	if err != nil {
		return err
	}
	layout, err := ui.ParseLayout(viper.GetString("layout"))
	if err != nil {
		return err
	}

	emuCfg := emu.Config{
		CyclesPerSecond: viper.GetInt("cycles"),
		Trace:           trace,
		StopOnUnknown:   !skipUnknown,
		FG:              fg,
		BG:              bg,
	}
	m, err := emu.New(emuCfg, rom, logger)
	if err != nil {
		return fmt.Errorf("load ROM %s: %w", args[0], err)
	}
	logger.Info("ROM loaded",
		log.String("path", args[0]),
		log.Int("bytes", len(rom)),
		log.String("layout", layout.String()))

	if headless {
		return runHeadless(logger, m, frames, pngOut, expect)
	}

	uiCfg := ui.Config{
		Title:  filepath.Base(args[0]) + " - chip8emu",
		Scale:  viper.GetInt("scale"),
		Layout: layout,
	}
	app, err := ui.NewApp(uiCfg, m)
	if err != nil {
		return err
	}
	return app.Run()
}

// runHeadless drives the machine without a window and reports a CRC32
// of the final framebuffer, which makes ROM runs scriptable.
func runHeadless(logger *log.Logger, m *emu.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	ran := 0
	for i := 0; i < frames && !m.Done(); i++ {
		if err := m.StepFrame(); err != nil {
			return err
		}
		ran++
	}
	dur := time.Since(start)

	fb := m.Framebuffer() // RGBA 64x32*4
	crc := crc32.ChecksumIEEE(fb)
	logger.Info("headless run finished",
		log.Int("frames", ran),
		log.String("elapsed", dur.Truncate(time.Millisecond).String()),
		log.Hex("fb_crc32", crc))

	if pngPath != "" {
		if err := saveFramePNG(fb, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		logger.Info("wrote framebuffer", log.String("path", pngPath))
	}

	if expectCRC != "" {
		// normalize expected hex (allow with/without 0x, upper/lowercase)
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(pix []byte, path string) error {
	img := &image.RGBA{
		Pix:    append([]byte(nil), pix...),
		Stride: 4 * screen.Width,
		Rect:   image.Rect(0, 0, screen.Width, screen.Height),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
