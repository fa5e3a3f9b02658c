package midi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Launchpad Mini Mk3 in programmer mode: LED index 11 is bottom-left,
// 99 is top-right.
type colorfulDevice struct{}

var novationHeader = []byte{0x00, 0x20, 0x29, 0x02, 0x0D}

const (
	sysexLighting   = 0x03
	sysexLayout     = 0x0E
	lightingStatic  = 0x00
	lightingRGB     = 0x03
	colorfulTopCC   = 91
	colorfulSceneCC = 9
)

func novation(body ...byte) midi.Message {
	return midi.SysEx(append(append([]byte{}, novationHeader...), body...))
}

func (colorfulDevice) ActivateProgrammerMode(send func(midi.Message) error) error {
	if err := send(novation(sysexLayout, 0x01)); err != nil {
		return fmt.Errorf("enter programmer mode: %w", err)
	}
	return nil
}

func (colorfulDevice) SetPadColor(send func(midi.Message) error, row, col int, color PadColor) error {
	if row < 0 || row > 8 || col < 0 || col > 8 {
		return nil
	}
	return send(novation(sysexLighting, lightingRGB, colorfulLED(row, col),
		gamma(color.R)&0x7F, gamma(color.G)&0x7F, gamma(color.B)&0x7F))
}

func (colorfulDevice) ClearAllPads(send func(midi.Message) error) error {
	body := []byte{sysexLighting}
	for led := 11; led <= 99; led++ {
		if led%10 == 0 {
			continue
		}
		body = append(body, lightingStatic, uint8(led), 0)
	}
	return send(novation(body...))
}

func (colorfulDevice) HandleMessage(msg midi.Message) (int, int, bool, bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		if row, col, ok := colorfulGrid(key); ok {
			return row, col, vel > 0, true
		}
	case msg.GetNoteOff(&ch, &key, &vel):
		if row, col, ok := colorfulGrid(key); ok {
			return row, col, false, true
		}
	case msg.GetControlChange(&ch, &key, &vel):
		switch {
		case key >= colorfulTopCC && key < colorfulTopCC+8:
			return 0, int(key - colorfulTopCC), vel > 0, true
		case key%10 == colorfulSceneCC && key >= 19 && key <= 89:
			return 8 - int((key-19)/10), 8, vel > 0, true
		}
	}
	return 0, 0, false, false
}

func colorfulLED(row, col int) uint8 {
	return uint8((8-row)*10 + col + 11)
}

func colorfulGrid(key uint8) (row, col int, ok bool) {
	if key < 11 || key > 99 {
		return -1, -1, false
	}
	row = 8 - int((key-11)/10)
	col = int((key - 11) % 10)
	return row, col, col <= 8
}

// gamma squares the normalized channel so mid tones separate better.
// Any lit input stays lit.
func gamma(v uint8) uint8 {
	if v == 0 {
		return 0
	}
	f := float64(v) / 127
	s := f * f * 127
	if s < 1 {
		return 1
	}
	return uint8(s)
}
