package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsolberg/dmgo/internal/addr"
)

// fakeBus is a minimal irqBus backed by a flat byte array, with an
// interrupt counter for assertions.
type fakeBus struct {
	mem               [0x10000]byte
	interruptsRaised  map[addr.Interrupt]int
}

func newFakeBus() *fakeBus {
	return &fakeBus{interruptsRaised: make(map[addr.Interrupt]int)}
}

func (f *fakeBus) Read(address uint16) byte        { return f.mem[address] }
func (f *fakeBus) Write(address uint16, value byte) { f.mem[address] = value }
func (f *fakeBus) RequestInterrupt(i addr.Interrupt) {
	f.interruptsRaised[i]++
}

func TestNewStartsInVBlankAtLY144(t *testing.T) {
	bus := newFakeBus()
	p := New(bus)
	assert.Equal(t, ModeVBlank, p.mode)
	assert.Equal(t, byte(144), bus.Read(addr.LY))
}

func TestOAMSearchLastsEightyDots(t *testing.T) {
	bus := newFakeBus()
	p := New(bus)
	p.mode = ModeOAM
	p.dots = 0
	bus.Write(addr.LY, 0)

	frame := make([]byte, screenWidth*4)
	for i := 0; i < dotsPerOAM; i++ {
		p.Tick(frame)
	}
	assert.Equal(t, ModeOAM, p.mode, "must still be in OAM search after exactly 80 dots")
	p.Tick(frame)
	assert.Equal(t, ModeTransfer, p.mode)
}

func TestVBlankHoldsLine153ForFullDuration(t *testing.T) {
	bus := newFakeBus()
	p := New(bus)
	p.mode = ModeVBlank
	p.dots = 0
	bus.Write(addr.LY, 153)

	frame := make([]byte, screenWidth*4)
	for i := 0; i < dotsPerScanline; i++ {
		p.Tick(frame)
		require.Equal(t, byte(153), bus.Read(addr.LY), "LY must hold at 153 for its own full 456 dots")
	}
	p.Tick(frame)
	assert.Equal(t, byte(0), bus.Read(addr.LY), "LY wraps to 0 only after 153's full duration")
	assert.Equal(t, ModeOAM, p.mode)
}

func TestHBlankRaisesVBlankInterruptEnteringLine144(t *testing.T) {
	bus := newFakeBus()
	p := New(bus)
	p.mode = ModeHBlank
	p.dots = 0
	bus.Write(addr.LY, 143)

	frame := make([]byte, screenWidth*4)
	for i := 0; i < dotsPerScanline+1; i++ {
		p.Tick(frame)
	}

	assert.Equal(t, ModeVBlank, p.mode)
	assert.Equal(t, byte(144), bus.Read(addr.LY))
	assert.Equal(t, 1, bus.interruptsRaised[addr.VBlank])
}

func TestSTATLowBitsMatchCurrentMode(t *testing.T) {
	bus := newFakeBus()
	p := New(bus)
	frame := make([]byte, screenWidth*4)
	p.Tick(frame)
	assert.Equal(t, byte(p.mode), bus.Read(addr.STAT)&0x3)
}

func TestClearingLCDCEnableBitFreezesLYAtZero(t *testing.T) {
	bus := newFakeBus()
	p := New(bus)
	bus.Write(addr.LCDC, 0x00) // bit 7 clear: LCD off

	frame := make([]byte, screenWidth*4)
	for i := 0; i < dotsPerScanline*2; i++ {
		p.Tick(frame)
		require.Equal(t, byte(0), bus.Read(addr.LY), "LY must hold at 0 while LCDC bit 7 is clear")
		require.Equal(t, byte(0), bus.Read(addr.STAT)&0x3, "STAT must report mode 0 while the LCD is off")
	}
}

func TestReEnablingLCDCResumesOAMSearchAtLineZero(t *testing.T) {
	bus := newFakeBus()
	p := New(bus)
	bus.Write(addr.LCDC, 0x00)
	frame := make([]byte, screenWidth*4)
	p.Tick(frame)

	bus.Write(addr.LCDC, 0x91)
	p.Tick(frame)
	assert.Equal(t, ModeOAM, p.mode, "re-enabling the LCD must resume at OAM search")
	assert.Equal(t, byte(0), bus.Read(addr.LY))
}

func TestFullFrameProducesVisibleFrameWithoutPanicking(t *testing.T) {
	bus := newFakeBus()
	p := New(bus)
	bus.Write(addr.BGP, 0xE4) // standard identity palette
	frame := make([]byte, screenWidth*144*4)

	const dotsPerFrame = dotsPerScanline * totalLines // 70224, the canonical DMG frame length
	for i := 0; i < dotsPerFrame; i++ {
		p.Tick(frame)
	}

	assert.Equal(t, ModeVBlank, p.mode)
	assert.Equal(t, byte(144), bus.Read(addr.LY), "a full 70224-dot frame returns to the same point it started from")
}
