package memory

import "github.com/tsolberg/dmgo/internal/bit"

// JoypadKey identifies one of the eight Game Boy buttons.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// joypad tracks the P1 (0xFF00) register: a selector for which button group
// (d-pad or face buttons) is currently readable on the low nibble, plus the
// actual pressed/released state of both groups. On real hardware (and here)
// a bit is 0 when the corresponding button is held down.
type joypad struct {
	selectBits uint8 // bits 4-5 of P1, as last written
	buttons    uint8 // low nibble: A,B,Select,Start
	dpad       uint8 // low nibble: Right,Left,Up,Down
}

func newJoypad() *joypad {
	return &joypad{buttons: 0x0F, dpad: 0x0F}
}

// write handles a write to P1: only the selection bits (4-5) are writable.
func (j *joypad) write(value uint8) {
	j.selectBits = value & 0b0011_0000
}

// read computes the observable P1 value from the current selection and
// button state. Bits 6-7 always read high on real hardware.
func (j *joypad) read() uint8 {
	result := uint8(0b1100_0000) | j.selectBits

	selectDpad := !bit.IsSet(4, j.selectBits)
	selectButtons := !bit.IsSet(5, j.selectBits)

	switch {
	case selectButtons && !selectDpad:
		result |= j.buttons & 0x0F
	case selectDpad && !selectButtons:
		result |= j.dpad & 0x0F
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// press clears the key's bit and reports whether this was a high-to-low
// transition (the condition that raises the joypad interrupt).
func (j *joypad) press(key JoypadKey) (transitioned bool) {
	before := j.groupFor(key)
	after := bit.Reset(j.bitFor(key), before)
	j.setGroupFor(key, after)
	return before&^after != 0
}

// release sets the key's bit back to released (1).
func (j *joypad) release(key JoypadKey) {
	before := j.groupFor(key)
	j.setGroupFor(key, bit.Set(j.bitFor(key), before))
}

func (j *joypad) bitFor(key JoypadKey) uint8 {
	switch key {
	case JoypadRight, JoypadA:
		return 0
	case JoypadLeft, JoypadB:
		return 1
	case JoypadUp, JoypadSelect:
		return 2
	default: // JoypadDown, JoypadStart
		return 3
	}
}

func (j *joypad) groupFor(key JoypadKey) uint8 {
	if key <= JoypadDown {
		return j.dpad
	}
	return j.buttons
}

func (j *joypad) setGroupFor(key JoypadKey, value uint8) {
	if key <= JoypadDown {
		j.dpad = value
	} else {
		j.buttons = value
	}
}
