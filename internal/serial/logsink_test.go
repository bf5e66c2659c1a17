package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransferEchoesByteAndRaisesInterrupt(t *testing.T) {
	raised := 0
	s := NewLogSink(func() { raised++ })

	s.Write(0xFF01, 'A')
	s.Write(0xFF02, 0x81) // start bit + internal clock

	assert.Equal(t, byte(0xFF), s.Read(0xFF01), "SB floats high once the transfer completes with no peer")
	assert.Equal(t, byte(0), s.Read(0xFF02)&0x80, "the start bit clears once the transfer completes")
	assert.Equal(t, 1, raised)
}

func TestTransferRequiresBothStartAndClockBits(t *testing.T) {
	raised := 0
	s := NewLogSink(func() { raised++ })

	s.Write(0xFF01, 'A')
	s.Write(0xFF02, 0x80) // start bit only, no internal clock

	assert.Equal(t, 0, raised)
	assert.Equal(t, byte('A'), s.Read(0xFF01), "no transfer means SB is untouched")
}

func TestResetClearsPendingLine(t *testing.T) {
	s := NewLogSink(func() {})
	s.Write(0xFF01, 'x')
	s.Write(0xFF02, 0x81)
	s.Reset()
	assert.Empty(t, s.line)
	assert.Equal(t, byte(0), s.Read(0xFF01))
	assert.Equal(t, byte(0), s.Read(0xFF02))
}
