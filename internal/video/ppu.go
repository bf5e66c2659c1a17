// Package video implements the DMG's pixel-FIFO PPU: a dot-driven mode
// machine (OAM search, pixel transfer, H-blank, V-blank) whose pixel
// transfer mode runs a tile fetcher feeding a FIFO that shifts one pixel
// out per dot into the caller's frame buffer (spec.md §4.4).
package video

import (
	"log/slog"

	"github.com/tsolberg/dmgo/internal/addr"
)

// Mode is one of the four PPU states; its numeric value matches the STAT
// register's low two bits (spec.md §4.4).
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeTransfer Mode = 3
)

const (
	dotsPerOAM      = 80
	dotsPerScanline = 456
	visibleLines    = 144
	totalLines      = 154
	screenWidth     = 160
)

// irqBus is the subset of the MMU the PPU drives registers and interrupts
// through.
type irqBus interface {
	bus
	Write(address uint16, value byte)
	RequestInterrupt(i addr.Interrupt)
}

// PPU is the pixel-FIFO picture processor.
type PPU struct {
	mem irqBus

	mode Mode
	dots int
	x    int

	fetcher    *fetcher
	fifo       []uint8
	fetchClock bool // toggles each Transfer dot; fetcher advances on the rising half
}

// New creates a PPU bound to the given bus. The PPU starts in V-blank at
// LY=144, matching the reference emulator's reset state, with the first dot
// of that line already counted, exactly as after a regular H-blank to
// V-blank transition; a full 70224-dot frame later it is back in that same
// state. LCDC is seeded
// with its documented post-boot value (0x91: LCD+BG on, tile data at
// 0x8000) so the LCD-enable gate in Tick doesn't freeze a fresh PPU before
// any ROM code has touched the register.
func New(mem irqBus) *PPU {
	p := &PPU{
		mem:     mem,
		mode:    ModeVBlank,
		dots:    1,
		fetcher: newFetcher(),
	}
	mem.Write(addr.LY, visibleLines)
	mem.Write(addr.LCDC, 0x91)
	slog.Debug("PPU initialized", "mode", p.mode)
	return p
}

// lcdEnabled reports whether LCDC bit 7 (LCD/PPU enable) is set.
func lcdEnabled(lcdc byte) bool {
	return lcdc&(1<<addr.LCDCEnableBit) != 0
}

// Tick advances the PPU by exactly one master-clock dot, writing any pixel
// it shifts out of the FIFO this dot into frame (RGBA8888, row-major,
// 160 wide — spec.md §6). While LCDC bit 7 is clear the real hardware
// stops scanning out entirely; Tick mirrors that by freezing LY at 0 and
// holding mode 0 on STAT instead of running the mode machine.
func (p *PPU) Tick(frame []byte) {
	if !lcdEnabled(p.mem.Read(addr.LCDC)) {
		p.holdDisabled()
		return
	}

	switch p.mode {
	case ModeOAM:
		p.tickOAM()
	case ModeTransfer:
		p.tickTransfer(frame)
	case ModeHBlank:
		p.tickHBlank()
	case ModeVBlank:
		p.tickVBlank()
	}

	p.mem.Write(addr.STAT, (p.mem.Read(addr.STAT)&0xFC)|byte(p.mode))
	p.dots++
}

// holdDisabled parks the PPU while the LCD is off: LY pins at 0, STAT
// reports mode 0, and the scanline/fetcher state resets so that
// re-enabling LCDC restarts cleanly at OAM search for line 0.
func (p *PPU) holdDisabled() {
	p.mode = ModeOAM
	p.dots = 0
	p.x = 0
	p.fifo = p.fifo[:0]
	p.fetcher.reset()
	p.fetchClock = false
	p.mem.Write(addr.LY, 0)
	p.mem.Write(addr.STAT, p.mem.Read(addr.STAT)&0xFC)
}

func (p *PPU) tickOAM() {
	// dots is NOT reset here: it counts dots since the start of the whole
	// scanline (OAM+transfer+H-blank together must total dotsPerScanline),
	// so transfer and H-blank keep accumulating against the same counter.
	if p.dots == dotsPerOAM {
		p.mode = ModeTransfer
	}
}

func (p *PPU) tickTransfer(frame []byte) {
	ly := p.mem.Read(addr.LY)
	scx := p.mem.Read(addr.SCX)
	scy := p.mem.Read(addr.SCY)

	if p.fetchClock {
		p.fetchClock = false
	} else {
		p.fetchClock = true
		p.fetcher.tick(p.mem, scx, scy, ly, &p.fifo)
	}

	if len(p.fifo) > 7 {
		colorIndex := p.fifo[0]
		p.fifo = p.fifo[1:]
		p.drawPixel(frame, int(ly), colorIndex)
		p.x++
	}

	if p.x == screenWidth {
		p.x = 0
		p.fifo = p.fifo[:0]
		p.fetcher.reset()
		p.fetchClock = false
		p.mode = ModeHBlank
	}
}

func (p *PPU) drawPixel(frame []byte, line int, colorIndex uint8) {
	bgp := p.mem.Read(addr.BGP)
	c := dmgColors[shade(bgp, colorIndex)]
	i := (line*screenWidth + p.x) * 4
	if i+4 > len(frame) {
		return
	}
	frame[i] = c[0]
	frame[i+1] = c[1]
	frame[i+2] = c[2]
	frame[i+3] = c[3]
}

func (p *PPU) tickHBlank() {
	if p.dots != dotsPerScanline {
		return
	}
	p.dots = 0
	ly := int(p.mem.Read(addr.LY)) + 1
	p.mem.Write(addr.LY, byte(ly))

	if ly == visibleLines {
		p.mode = ModeVBlank
		p.mem.RequestInterrupt(addr.VBlank)
	} else {
		p.mode = ModeOAM
	}
}

func (p *PPU) tickVBlank() {
	if p.dots != dotsPerScanline {
		return
	}
	p.dots = 0

	ly := int(p.mem.Read(addr.LY))
	if ly == totalLines-1 {
		p.mem.Write(addr.LY, 0)
		p.mode = ModeOAM
	} else {
		p.mem.Write(addr.LY, byte(ly+1))
	}
}
