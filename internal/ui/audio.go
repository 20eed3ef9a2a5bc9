package ui

import (
	"encoding/binary"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	beepSampleRate = 48000
	beepFrequency  = 440
	beepVolume     = 6000
)

// toneStream implements io.Reader by producing an endless square wave
// as 16-bit little-endian stereo frames.
type toneStream struct {
	pos int64
}

func (s *toneStream) Read(p []byte) (int, error) {
	// If buffer is smaller than a full stereo frame (4 bytes), fill with silence to avoid returning 0 bytes.
	if len(p) < 4 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	n := len(p) - len(p)%4
	half := int64(beepSampleRate / beepFrequency / 2)
	for i := 0; i < n; i += 4 {
		v := int16(beepVolume)
		if (s.pos/half)%2 == 1 {
			v = -beepVolume
		}
		binary.LittleEndian.PutUint16(p[i:], uint16(v))
		binary.LittleEndian.PutUint16(p[i+2:], uint16(v))
		s.pos++
	}
	return n, nil
}

// beeper plays the fixed beep tone while the sound timer is running.
type beeper struct {
	player *audio.Player
}

func newBeeper() (*beeper, error) {
	ctx := audio.NewContext(beepSampleRate)
	player, err := ctx.NewPlayer(&toneStream{})
	if err != nil {
		return nil, err
	}
	return &beeper{player: player}, nil
}

// update starts or pauses the tone to match the machine's beep flag.
func (b *beeper) update(on bool) {
	if b == nil || b.player == nil {
		return
	}
	if on && !b.player.IsPlaying() {
		b.player.Play()
	} else if !on && b.player.IsPlaying() {
		b.player.Pause()
	}
}
