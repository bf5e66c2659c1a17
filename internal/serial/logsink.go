// Package serial implements the minimal SB/SC serial port behavior the
// core needs: echoing the transmitted byte out to a log sink, which is how
// test ROMs (and the spec's external interfaces, §6) report results.
package serial

import (
	"log/slog"

	"github.com/tsolberg/dmgo/internal/bit"
)

// LogSink is a serial device with no connected peer: every byte written to
// SB while a transfer is started completes instantly (the DMG's internal
// clock has nobody to wait on) and is logged as text, buffered line by
// line for readability.
type LogSink struct {
	onComplete func()
	sb, sc     byte
	line       []byte
}

// NewLogSink creates a logging serial device. onComplete is called whenever
// a transfer finishes; wire it to raise the Serial interrupt.
func NewLogSink(onComplete func()) *LogSink {
	s := &LogSink{onComplete: onComplete}
	s.Reset()
	return s
}

// Write handles a write to SB or SC.
func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case 0xFF01:
		s.sb = value
	case 0xFF02:
		s.sc = value
		s.maybeTransfer()
	}
}

// Read handles a read from SB or SC.
func (s *LogSink) Read(address uint16) byte {
	switch address {
	case 0xFF01:
		return s.sb
	case 0xFF02:
		return s.sc
	default:
		return 0xFF
	}
}

// Reset restores the port to its power-on state.
func (s *LogSink) Reset() {
	s.sb = 0x00
	s.sc = 0x00
	s.line = s.line[:0]
}

// maybeTransfer starts (and, since there's no peer, immediately completes)
// a transfer once both the start bit (7) and the internal-clock bit (0) of
// SC are set.
func (s *LogSink) maybeTransfer() {
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			slog.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else {
		s.line = append(s.line, b)
	}

	s.sb = 0xFF // no peer: the received byte floats high
	s.sc = bit.Reset(7, s.sc)
	if s.onComplete != nil {
		s.onComplete()
	}
}
