// Package timer implements the DMG's divider/TIMA timer: a free-running
// 16-bit counter whose high byte is DIV, plus a configurable-rate TIMA
// counter driven off a falling edge of one bit of that counter.
package timer

import "github.com/tsolberg/dmgo/internal/bit"

// fallingEdgeMask maps the low two bits of TAC to the divider bit TIMA's
// falling-edge detector watches (spec.md §4.2).
var fallingEdgeMask = [4]uint16{1 << 9, 1 << 3, 1 << 5, 1 << 7}

// Timer owns DIV/TIMA/TMA/TAC and the internal 16-bit counter DIV is
// derived from. It never touches the bus directly; the MMU routes reads
// and writes of the four timer registers here.
type Timer struct {
	counter      uint16 // internal free-running divider; DIV = counter>>8
	lastEdgeBit  bool   // previous value of the watched divider bit
	tima         byte
	tma          byte
	tac          byte

	// RaiseInterrupt is called whenever TIMA overflows and reloads from
	// TMA. Wired by the owner (MMU) to set bit 2 of IF.
	RaiseInterrupt func()
}

// New returns a Timer with its internal counter seeded as it is on a real
// power-on DMG.
func New() *Timer {
	return &Timer{counter: 0xABCC}
}

// Tick advances the divider by exactly one master-clock step and evaluates
// the falling-edge condition that increments TIMA. Called once per tick by
// the outer driver, alongside the CPU and PPU (spec.md §5).
func (t *Timer) Tick() {
	t.counter++

	enabled := bit.IsSet(2, t.tac)
	mask := fallingEdgeMask[t.tac&0x3]
	edgeBit := enabled && (t.counter&mask) != 0

	if t.lastEdgeBit && !edgeBit {
		t.incrementTIMA()
	}
	t.lastEdgeBit = edgeBit
}

// incrementTIMA bumps TIMA, reloading from TMA and raising the timer
// interrupt immediately on overflow (see SPEC_FULL.md's open-question
// decision: no reload delay is modeled).
func (t *Timer) incrementTIMA() {
	if t.tima == 0xFF {
		t.tima = t.tma
		if t.RaiseInterrupt != nil {
			t.RaiseInterrupt()
		}
		return
	}
	t.tima++
}

// DIV returns the observable divider register: the high byte of the
// internal counter.
func (t *Timer) DIV() byte { return byte(t.counter >> 8) }

// ResetDIV zeroes the entire internal counter, as any write to DIV does.
// Since the counter's watched bit necessarily drops to 0, this is itself a
// falling edge whenever that bit was previously high — naive "increment
// TIMA every N ticks" implementations miss this (spec.md §4.2).
func (t *Timer) ResetDIV() {
	t.counter = 0
	if t.lastEdgeBit {
		t.incrementTIMA()
	}
	t.lastEdgeBit = false
}

// TIMA, TMA, TAC are the raw register accessors the MMU routes reads through.
func (t *Timer) TIMA() byte { return t.tima }
func (t *Timer) TMA() byte  { return t.tma }
func (t *Timer) TAC() byte  { return t.tac }

func (t *Timer) SetTIMA(v byte) { t.tima = v }
func (t *Timer) SetTMA(v byte)  { t.tma = v }
func (t *Timer) SetTAC(v byte)  { t.tac = v }
