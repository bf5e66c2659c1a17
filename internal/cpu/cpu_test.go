package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus is a flat 64 KiB RAM for exercising the CPU in isolation.
type fakeBus struct {
	mem [0x10000]byte
}

func (f *fakeBus) Read(address uint16) byte        { return f.mem[address] }
func (f *fakeBus) Write(address uint16, value byte) { f.mem[address] = value }

func newTestCPU() (*CPU, *fakeBus) {
	bus := &fakeBus{}
	c := New(bus)
	return c, bus
}

func TestResetPostBootValues(t *testing.T) {
	c, _ := newTestCPU()
	assert.Equal(t, uint16(0x01B0), c.getAF())
	assert.Equal(t, uint16(0x0013), c.getBC())
	assert.Equal(t, uint16(0x00D8), c.getDE())
	assert.Equal(t, uint16(0x014D), c.getHL())
	assert.Equal(t, uint16(0xFFFE), c.sp)
	assert.Equal(t, uint16(0x0100), c.pc)
}

func TestAFLowNibbleAlwaysZero(t *testing.T) {
	c, _ := newTestCPU()
	c.setAF(0x12FF)
	assert.Equal(t, uint16(0x12F0), c.getAF())
}

func TestAddHalfCarryAndCarry(t *testing.T) {
	// ADD A,B with A=0x3A, B=0xC6 carries out of bit 3 and bit 7.
	c, _ := newTestCPU()
	c.a = 0x3A
	c.b = 0xC6
	c.add(c.b)
	assert.Equal(t, byte(0x00), c.a)
	assert.True(t, c.flag(flagZ))
	assert.False(t, c.flag(flagN))
	assert.True(t, c.flag(flagH))
	assert.True(t, c.flag(flagC))
}

func TestAdcWithIncomingCarry(t *testing.T) {
	c, _ := newTestCPU()
	c.a = 0xE1
	c.e = 0x0F
	c.setFlag(flagC, true)
	c.adc(c.e)
	assert.Equal(t, byte(0xF1), c.a)
	assert.False(t, c.flag(flagZ))
	assert.False(t, c.flag(flagN))
	assert.True(t, c.flag(flagH))
	assert.False(t, c.flag(flagC))
}

func TestSubBorrow(t *testing.T) {
	c, _ := newTestCPU()
	c.a = 0x3E
	c.e = 0x3E
	c.sub(c.e)
	assert.Equal(t, byte(0x00), c.a)
	assert.True(t, c.flag(flagZ))
	assert.True(t, c.flag(flagN))
	assert.False(t, c.flag(flagH))
	assert.False(t, c.flag(flagC))
}

func TestIncDoesNotTouchCarry(t *testing.T) {
	c, _ := newTestCPU()
	c.setFlag(flagC, true)
	result := c.inc(0xFF)
	assert.Equal(t, byte(0x00), result)
	assert.True(t, c.flag(flagZ))
	assert.False(t, c.flag(flagN))
	assert.True(t, c.flag(flagH))
	assert.True(t, c.flag(flagC), "INC must never modify the carry flag")
}

func TestAddSPSignedNegativeOffset(t *testing.T) {
	c, _ := newTestCPU()
	c.sp = 0x0005
	result := c.addSPSigned(0xFE) // -2
	assert.Equal(t, uint16(0x0003), result)
	assert.False(t, c.flag(flagZ))
	assert.False(t, c.flag(flagN))
}

func TestBitTestClearsZWhenSet(t *testing.T) {
	c, _ := newTestCPU()
	c.bitTest(7, 0x80)
	assert.False(t, c.flag(flagZ))
	assert.False(t, c.flag(flagN))
	assert.True(t, c.flag(flagH))
}

func TestBitTestSetsZWhenClear(t *testing.T) {
	c, _ := newTestCPU()
	c.bitTest(7, 0x00)
	assert.True(t, c.flag(flagZ))
}

func TestDaaAfterAdd(t *testing.T) {
	// 0x09 + 0x01 = 0x0A in binary; the low nibble is not a BCD digit, so
	// DAA adds 0x06 and yields BCD 10 (0x10) with no carry.
	c, _ := newTestCPU()
	c.a = 0x09
	c.add(0x01)
	c.daa()
	assert.Equal(t, byte(0x10), c.a)
	assert.False(t, c.flag(flagC))
}

func TestRotateAFormAlwaysClearsZ(t *testing.T) {
	c, _ := newTestCPU()
	c.a = 0x00
	c.execute(0x07) // RLCA
	assert.False(t, c.flag(flagZ), "RLCA must clear Z even when the result is zero")
}

func TestRotateCBFormComputesZ(t *testing.T) {
	c, _ := newTestCPU()
	c.a = 0x00
	c.executeCB(0x07) // RLC A
	assert.True(t, c.flag(flagZ), "CB RLC A must set Z when the result is zero")
}

func TestPushPopRoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	c.sp = 0xFFFE
	c.push(0xBEEF)
	assert.Equal(t, uint16(0xFFFC), c.sp)
	got := c.pop()
	assert.Equal(t, uint16(0xBEEF), got)
	assert.Equal(t, uint16(0xFFFE), c.sp)
}

func TestCallAndRet(t *testing.T) {
	c, bus := newTestCPU()
	c.pc = 0x0200
	bus.mem[0x0200] = 0xCD // CALL nn
	bus.mem[0x0201] = 0x34
	bus.mem[0x0202] = 0x12
	cycles := c.execute(c.readImmediate())
	require.Equal(t, 24, cycles)
	assert.Equal(t, uint16(0x1234), c.pc)

	bus.mem[0x1234] = 0xC9 // RET
	cycles = c.execute(c.readImmediate())
	require.Equal(t, 16, cycles)
	assert.Equal(t, uint16(0x0203), c.pc, "RET must return to the instruction after CALL")
}

func TestCbWriteBackCyclesForHL(t *testing.T) {
	c, bus := newTestCPU()
	c.setHL(0x9000)
	bus.mem[0x9000] = 0x80 // bit pattern irrelevant to the cycle count
	cycles := c.executeCB(0x06) // RLC (HL)
	assert.Equal(t, 16, cycles)
}

func TestCbBitCyclesForHL(t *testing.T) {
	c, bus := newTestCPU()
	c.setHL(0x9000)
	bus.mem[0x9000] = 0x80
	cycles := c.executeCB(0x46) // BIT 0,(HL)
	assert.Equal(t, 12, cycles)
}

func TestUndefinedOpcodeIsFourCycleNoOp(t *testing.T) {
	c, _ := newTestCPU()
	pcBefore := c.pc
	cycles := c.execute(0xD3)
	assert.Equal(t, 4, cycles)
	assert.Equal(t, pcBefore, c.pc)
}

func TestInterruptDispatchOrderAndVector(t *testing.T) {
	c, bus := newTestCPU()
	c.pc = 0x1000
	c.sp = 0xFFFE
	c.ime = true
	bus.mem[0xFFFF] = 0x1F // IE: all five enabled
	bus.mem[0xFF0F] = 0x02 // IF: LCDSTAT (bit 1) pending, lowest set bit

	cycles := c.Step()

	assert.Equal(t, 20, cycles)
	assert.Equal(t, uint16(0x0048), c.pc, "dispatch must jump to the LCDSTAT vector")
	assert.False(t, c.ime, "IME must be cleared on dispatch")
	assert.Equal(t, byte(0x00), bus.mem[0xFF0F]&0x02, "the serviced interrupt's IF bit must clear")
	assert.Equal(t, uint16(0x1000), c.pop(), "the return address pushed must be the pre-dispatch PC")
}

func TestHaltClearsOnPendingInterruptRegardlessOfIME(t *testing.T) {
	c, bus := newTestCPU()
	c.halt = true
	c.ime = false
	bus.mem[0xFFFF] = 0x01
	bus.mem[0xFF0F] = 0x01

	c.Step()

	assert.False(t, c.halt, "HALT must clear the instant an enabled interrupt is pending, even with IME off")
}
