// Package memory implements the DMG's flat 64 KiB address space: a single
// byte array with a dispatch table for the handful of regions (cartridge,
// VRAM, WRAM, OAM, I/O) and registers (timer, serial, joypad) that need more
// than a plain store (spec.md §4.1).
package memory

import (
	"fmt"
	"log/slog"

	"github.com/tsolberg/dmgo/internal/addr"
	"github.com/tsolberg/dmgo/internal/bit"
	"github.com/tsolberg/dmgo/internal/serial"
	"github.com/tsolberg/dmgo/internal/timer"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionUnused
	regionIO
)

const bootROMSize = 0x100

// MMU is the bus every other component reads and writes through. It owns no
// interrupt-dispatch or timing logic itself; it only applies the documented
// write side-effects and routes the handful of stateful registers to their
// owning component.
type MMU struct {
	cart *Cartridge

	memory    []byte
	regionMap [256]memRegion

	bootROM     [bootROMSize]byte
	bootEnabled bool

	joypad *joypad
	serial *serial.LogSink
	timer  *timer.Timer
}

// New creates an MMU with no cartridge loaded and the boot overlay enabled,
// equivalent to powering on the Game Boy with an empty boot ROM.
func New() *MMU {
	m := &MMU{
		memory: make([]byte, 0x10000),
		cart:   NewCartridge(),
		joypad: newJoypad(),
		timer:  timer.New(),
	}
	m.bootEnabled = true
	m.serial = serial.NewLogSink(func() { m.RequestInterrupt(addr.Serial) })
	m.timer.RaiseInterrupt = func() { m.RequestInterrupt(addr.Timer) }
	initRegionMap(&m.regionMap)
	return m
}

func initRegionMap(regionMap *[256]memRegion) {
	for i := 0x00; i <= 0x7F; i++ {
		regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		regionMap[i] = regionEcho
	}
	regionMap[0xFE] = regionOAM
	regionMap[0xFF] = regionIO
}

// LoadROM replaces the cartridge and forces a reset, per spec.md §3: loading
// a ROM replaces the 0x0000-0x7FFF region and re-initializes the machine.
func (m *MMU) LoadROM(rom []byte) error {
	if len(rom) > maxROMSize {
		return fmt.Errorf("memory: ROM image too large: %d bytes (max %d)", len(rom), maxROMSize)
	}
	m.cart = NewCartridgeWithData(rom)
	m.Reset()
	return nil
}

// LoadBootROM installs the 256-byte overlay mapped over 0x0000-0x00FF until
// disabled. Supplying one is a configuration choice of the caller, not part
// of the core algorithm (spec.md §1).
func (m *MMU) LoadBootROM(rom []byte) error {
	if len(rom) != bootROMSize {
		return fmt.Errorf("memory: boot ROM must be exactly %d bytes, got %d", bootROMSize, len(rom))
	}
	copy(m.bootROM[:], rom)
	m.bootEnabled = true
	return nil
}

// Reset re-initializes WRAM/VRAM/OAM/I-O and the timer/serial/joypad
// subcomponents to power-on state, re-enabling the boot overlay.
func (m *MMU) Reset() {
	for i := range m.memory {
		m.memory[i] = 0
	}
	m.bootEnabled = true
	m.joypad = newJoypad()
	m.timer = timer.New()
	m.timer.RaiseInterrupt = func() { m.RequestInterrupt(addr.Timer) }
	m.serial.Reset()
}

// TickTimer advances the timer by one master-clock step, wired here so the
// outer driver never has to reach past the MMU into a sibling component
// (spec.md §5).
func (m *MMU) TickTimer() {
	m.timer.Tick()
}

// RequestInterrupt sets the given interrupt's bit in IF (0xFF0F).
func (m *MMU) RequestInterrupt(i addr.Interrupt) {
	m.Write(addr.IF, m.Read(addr.IF)|i.Bit())
}

// Read returns the byte at address. Reads are pure except for the
// boot-overlay gate over 0x0000-0x00FF (spec.md §4.1).
func (m *MMU) Read(address uint16) byte {
	if m.bootEnabled && address < bootROMSize {
		return m.bootROM[address]
	}

	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		return m.cart.Read(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionEcho:
		return m.memory[address-0x2000]
	case regionOAM:
		return m.memory[address]
	case regionIO:
		return m.readIO(address)
	default:
		slog.Warn("read at unmapped address", "addr", fmt.Sprintf("0x%04X", address))
		return 0xFF
	}
}

func (m *MMU) readIO(address uint16) byte {
	switch address {
	case addr.P1:
		return m.joypad.read()
	case addr.SB, addr.SC:
		return m.serial.Read(address)
	case addr.DIV:
		return m.timer.DIV()
	case addr.TIMA:
		return m.timer.TIMA()
	case addr.TMA:
		return m.timer.TMA()
	case addr.TAC:
		return m.timer.TAC()
	case addr.IF:
		// Bits 5-7 are unused and always read back as 1.
		return m.memory[address] | 0xE0
	default:
		return m.memory[address]
	}
}

// Write stores value at address, then applies the side-effect table for
// special registers (spec.md §4.1). Writes to the cartridge ranges
// (0x0000-0x7FFF and 0xA000-0xBFFF) go to Cartridge.Write and are discarded;
// every other address not in that table is a plain store.
func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM:
		m.cart.Write(address, value)
	case regionExtRAM:
		m.cart.Write(address, value)
	case regionVRAM, regionWRAM:
		m.memory[address] = value
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionOAM:
		m.memory[address] = value
	case regionIO:
		m.writeIO(address, value)
	default:
		slog.Warn("write at unmapped address", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch address {
	case addr.P1:
		m.joypad.write(value)
	case addr.SB, addr.SC:
		m.serial.Write(address, value)
	case addr.DIV:
		m.timer.ResetDIV()
		m.memory[address] = 0
	case addr.TIMA:
		m.timer.SetTIMA(value)
	case addr.TMA:
		m.timer.SetTMA(value)
	case addr.TAC:
		m.timer.SetTAC(value)
	case addr.LY:
		// Real hardware ignores writes to LY; this core resets it to 0
		// instead, matching the documented emulation policy (spec.md §4.1).
		m.memory[address] = 0
	case addr.BootDisable:
		if value != 0 {
			m.bootEnabled = false
		}
	case addr.IF:
		m.memory[address] = value | 0xE0
	case addr.DMA:
		m.memory[address] = value
		m.performDMA(value)
	default:
		m.memory[address] = value
	}
}

// performDMA copies 160 bytes from (value << 8) into OAM, as a real OAM DMA
// transfer does. This core treats it as instantaneous rather than charging
// the 160 machine cycles real hardware takes.
func (m *MMU) performDMA(value byte) {
	source := uint16(value) << 8
	for i := uint16(0); i < 160; i++ {
		m.memory[addr.OAMStart+i] = m.Read(source + i)
	}
}

// PressKey and ReleaseKey update joypad state and raise the joypad
// interrupt on a released-to-pressed transition (spec.md §6).
func (m *MMU) PressKey(key JoypadKey) {
	if m.joypad.press(key) {
		m.RequestInterrupt(addr.Joypad)
	}
}

func (m *MMU) ReleaseKey(key JoypadKey) {
	m.joypad.release(key)
}

// Typed getters for the PPU/timer-relevant registers (spec.md §4.1).
func (m *MMU) LY() byte    { return m.Read(addr.LY) }
func (m *MMU) SCX() byte   { return m.Read(addr.SCX) }
func (m *MMU) SCY() byte   { return m.Read(addr.SCY) }
func (m *MMU) BGP() byte   { return m.Read(addr.BGP) }
func (m *MMU) IE() byte    { return m.Read(addr.IE) }
func (m *MMU) IF() byte    { return m.Read(addr.IF) }

// CartridgeTitle reports the loaded cartridge's header title, for display
// and logging purposes only.
func (m *MMU) CartridgeTitle() string { return m.cart.Title }

// ReadBit and SetBit are small conveniences built on Read/Write, used by the
// CPU and PPU when they only care about a single flag bit.
func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

func (m *MMU) SetBit(index uint8, address uint16, set bool) {
	if set {
		m.Write(address, bit.Set(index, m.Read(address)))
	} else {
		m.Write(address, bit.Reset(index, m.Read(address)))
	}
}
