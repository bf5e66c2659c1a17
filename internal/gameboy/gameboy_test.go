package gameboy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPowersOnWithDefaultRegisters(t *testing.T) {
	gb := New()
	assert.Equal(t, uint16(0x0100), gb.cpu.PC())
}

func TestLoadROMResetsMachine(t *testing.T) {
	gb := New()
	rom := make([]byte, 0x8000)
	rom[0x134] = 'H'
	rom[0x135] = 'I'
	require.NoError(t, gb.LoadROM(rom))
	assert.Equal(t, "HI", gb.mem.CartridgeTitle())
	assert.Equal(t, uint16(0x0100), gb.cpu.PC())
}

func TestCyclePanicsOnWrongFrameSize(t *testing.T) {
	gb := New()
	assert.Panics(t, func() {
		gb.Cycle(make([]byte, 10), 60)
	})
}

func TestCycleAdvancesFrameCount(t *testing.T) {
	gb := New()
	rom := make([]byte, 0x8000) // all zero bytes decode as NOP (0x00)
	require.NoError(t, gb.LoadROM(rom))

	frame := make([]byte, FrameBytes)
	gb.Cycle(frame, 60)
	assert.Equal(t, uint64(1), gb.frameCount)
}

func TestDebuggerPausedDoesNothing(t *testing.T) {
	gb := New()
	rom := make([]byte, 0x8000)
	require.NoError(t, gb.LoadROM(rom))
	gb.SetDebuggerState(DebuggerPaused)

	frame := make([]byte, FrameBytes)
	pcBefore := gb.cpu.PC()
	gb.Cycle(frame, 60)

	assert.Equal(t, pcBefore, gb.cpu.PC())
	assert.Equal(t, uint64(0), gb.frameCount)
}

func TestDebuggerStepOnlyAdvancesWhenRequested(t *testing.T) {
	gb := New()
	rom := make([]byte, 0x8000)
	require.NoError(t, gb.LoadROM(rom))
	gb.SetDebuggerState(DebuggerStep)

	frame := make([]byte, FrameBytes)
	pcBefore := gb.cpu.PC()
	gb.Cycle(frame, 60)
	assert.Equal(t, pcBefore, gb.cpu.PC(), "no step requested, PC must not move")

	gb.RequestStep()
	gb.Cycle(frame, 60)
	assert.Equal(t, pcBefore+1, gb.cpu.PC(), "a single NOP retires exactly one instruction")
}

func TestTargetFPSMatchesCanonicalDMGRate(t *testing.T) {
	assert.InDelta(t, 59.73, TargetFPS(), 0.01)
}

func TestFrameIntervalMatchesTargetFPS(t *testing.T) {
	expected := float64(1) / TargetFPS()
	assert.InDelta(t, expected, FrameInterval().Seconds(), 0.0001)
}

func TestFreeRunPacerNeverBlocks(t *testing.T) {
	var p FreeRunPacer
	// Must return immediately; if this test hangs, it blocks.
	p.Wait()
	p.Reset()
}

func TestTickRunsTimerEveryMasterClockStep(t *testing.T) {
	gb := New()
	rom := make([]byte, 0x8000)
	require.NoError(t, gb.LoadROM(rom))

	frame := make([]byte, FrameBytes)
	divBefore := gb.mem.Read(0xFF04)
	for i := 0; i < 300; i++ {
		gb.tick(frame)
	}
	divBefore2 := gb.mem.Read(0xFF04)
	assert.NotEqual(t, divBefore, divBefore2, "the timer must advance every master-clock tick, not just every instruction")
}
