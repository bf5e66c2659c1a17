package gameboy

import "time"

// TargetFPS is the exact refresh rate a real DMG produces: the master clock
// divided by the 70224 dots a full frame (OAM search + transfer + H-blank
// for 144 lines, plus V-blank) takes to scan out.
func TargetFPS() float64 {
	const dotsPerFrame = 70224
	return float64(ClockSpeed) / float64(dotsPerFrame)
}

// FrameInterval is the wall-clock duration between frames at TargetFPS.
func FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// Pacer throttles a frame-presentation loop to wall-clock speed; Cycle
// itself never sleeps (spec.md §5), so whoever drives it in a loop pulls in
// a Pacer to match the real hardware's ~59.7 fps.
type Pacer interface {
	// Wait blocks until the next frame is due. It returns immediately if
	// the caller is already behind schedule.
	Wait()

	// Reset clears any accumulated schedule, as if the loop had just
	// started — useful after a debugger pause.
	Reset()
}

// FreeRunPacer never waits, for headless runs that want to burn through
// frames as fast as the host can produce them.
type FreeRunPacer struct{}

func (FreeRunPacer) Wait()  {}
func (FreeRunPacer) Reset() {}

// TickerPacer paces frames off a time.Ticker running at TargetFPS.
type TickerPacer struct {
	ticker *time.Ticker
}

// NewTickerPacer starts a ticker at TargetFPS and returns a Pacer backed by
// it.
func NewTickerPacer() *TickerPacer {
	return &TickerPacer{ticker: time.NewTicker(FrameInterval())}
}

func (p *TickerPacer) Wait() {
	<-p.ticker.C
}

func (p *TickerPacer) Reset() {
	p.ticker.Reset(FrameInterval())
}

// Stop releases the underlying ticker. Callers that replace a TickerPacer
// mid-run (e.g. toggling "unlocked" mode) should Stop the old one first.
func (p *TickerPacer) Stop() {
	p.ticker.Stop()
}
