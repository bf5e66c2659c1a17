// Package gameboy wires the CPU, PPU, MMU and timer into the single-threaded
// driver described in spec.md §5: one master-clock tick at a time, in a
// fixed order, with no concurrency inside the core.
package gameboy

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/tsolberg/dmgo/internal/cpu"
	"github.com/tsolberg/dmgo/internal/memory"
	"github.com/tsolberg/dmgo/internal/video"
)

// ClockSpeed is the DMG master clock, in Hz (spec.md §6).
const ClockSpeed = 4194304

// FrameWidth, FrameHeight and FrameBytes describe the RGBA8888 frame buffer
// every Cycle call fills.
const (
	FrameWidth  = 160
	FrameHeight = 144
	FrameBytes  = FrameWidth * FrameHeight * 4
)

// DebuggerState controls whether GameBoy.Cycle runs freely or single-steps.
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStep
	DebuggerStepFrame
)

// GameBoy is the root emulator object: it owns every subcomponent and the
// one outstanding CPU cycle counter the per-tick loop drains.
type GameBoy struct {
	cpu *cpu.CPU
	ppu *video.PPU
	mem *memory.MMU

	cpuCyclesLeft int

	debuggerMu       sync.RWMutex
	debuggerState    DebuggerState
	stepRequested    bool
	frameRequested   bool
	instructionCount uint64
	frameCount       uint64
}

// New creates a GameBoy with no cartridge loaded, equivalent to power-on
// with nothing inserted.
func New() *GameBoy {
	g := &GameBoy{}
	g.init()
	return g
}

// NewWithROM creates a GameBoy and immediately loads rom.
func NewWithROM(rom []byte) (*GameBoy, error) {
	g := New()
	if err := g.LoadROM(rom); err != nil {
		return nil, err
	}
	return g, nil
}

// NewWithROMFile reads path and loads it as a ROM image.
func NewWithROMFile(path string) (*GameBoy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gameboy: reading ROM file: %w", err)
	}
	return NewWithROM(data)
}

func (g *GameBoy) init() {
	mem := memory.New()
	g.mem = mem
	g.cpu = cpu.New(mem)
	g.ppu = video.New(mem)
	g.cpuCyclesLeft = 0
}

// LoadROM replaces the cartridge and resets the machine (spec.md §3, §6).
func (g *GameBoy) LoadROM(rom []byte) error {
	if err := g.mem.LoadROM(rom); err != nil {
		return err
	}
	g.Reset()
	slog.Info("ROM loaded", "title", g.mem.CartridgeTitle(), "size", len(rom))
	return nil
}

// Reset re-initializes the CPU, PPU and timer to power-on state (the MMU's
// own backing memory is cleared by its own Reset, called here).
func (g *GameBoy) Reset() {
	g.mem.Reset()
	g.cpu.Reset()
	g.ppu = video.New(g.mem)
	g.cpuCyclesLeft = 0
	g.instructionCount = 0
}

// MMU exposes the bus, for callers that want to inject button presses or
// inspect registers directly (e.g. a backend's input handling).
func (g *GameBoy) MMU() *memory.MMU { return g.mem }

// SetDebuggerState switches between free-running and single-step modes.
func (g *GameBoy) SetDebuggerState(state DebuggerState) {
	g.debuggerMu.Lock()
	defer g.debuggerMu.Unlock()
	g.debuggerState = state
}

// RequestStep arms a single-instruction step for the next Cycle call, valid
// only in DebuggerStep mode.
func (g *GameBoy) RequestStep() {
	g.debuggerMu.Lock()
	defer g.debuggerMu.Unlock()
	g.stepRequested = true
}

// RequestFrameStep arms a single-frame step for the next Cycle call, valid
// only in DebuggerStepFrame mode.
func (g *GameBoy) RequestFrameStep() {
	g.debuggerMu.Lock()
	defer g.debuggerMu.Unlock()
	g.frameRequested = true
}

// Cycle advances the simulated hardware by ClockSpeed/fps master-clock
// ticks and fills frame with the pixels produced along the way (spec.md
// §6). Honors the debugger state: paused does nothing, step/step-frame run
// only when armed via RequestStep/RequestFrameStep.
func (g *GameBoy) Cycle(frame []byte, fps uint32) {
	if len(frame) != FrameBytes {
		panic(fmt.Sprintf("gameboy: frame buffer must be %d bytes, got %d", FrameBytes, len(frame)))
	}

	g.debuggerMu.RLock()
	state := g.debuggerState
	g.debuggerMu.RUnlock()

	switch state {
	case DebuggerPaused:
		return
	case DebuggerStep:
		g.debuggerMu.Lock()
		requested := g.stepRequested
		g.stepRequested = false
		g.debuggerMu.Unlock()
		if requested {
			g.runInstruction(frame)
			g.SetDebuggerState(DebuggerPaused)
		}
	case DebuggerStepFrame:
		g.debuggerMu.Lock()
		requested := g.frameRequested
		g.frameRequested = false
		g.debuggerMu.Unlock()
		if requested {
			g.runTicks(frame, ClockSpeed/fps)
			g.frameCount++
			g.SetDebuggerState(DebuggerPaused)
		}
	default:
		g.runTicks(frame, ClockSpeed/fps)
		g.frameCount++
		if g.frameCount%60 == 0 {
			slog.Debug("frame completed", "frame", g.frameCount, "pc", fmt.Sprintf("0x%04X", g.cpu.PC()))
		}
	}
}

func (g *GameBoy) runTicks(frame []byte, ticks uint32) {
	for i := uint32(0); i < ticks; i++ {
		g.tick(frame)
	}
}

// runInstruction advances ticks until exactly one CPU instruction (or
// interrupt dispatch) has retired, for debugger single-stepping.
func (g *GameBoy) runInstruction(frame []byte) {
	g.tick(frame)
	for g.cpuCyclesLeft > 0 {
		g.tick(frame)
	}
}

// tick advances every subsystem by exactly one master-clock step, in the
// fixed order spec.md §5 requires: CPU cycle accounting first, then timer,
// then PPU.
func (g *GameBoy) tick(frame []byte) {
	if g.cpuCyclesLeft == 0 {
		g.cpuCyclesLeft = g.cpu.Step()
		g.instructionCount++
	}
	g.cpuCyclesLeft--

	g.mem.TickTimer()
	g.ppu.Tick(frame)
}
