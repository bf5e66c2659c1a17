// Package headless implements a Backend with no presentation at all: it
// just counts frames and signals quit once a target count is reached,
// useful for test-ROM automation and benchmarking.
package headless

import (
	"log/slog"

	"github.com/tsolberg/dmgo/internal/backend"
)

// Backend counts frames and requests a quit once maxFrames have been
// rendered. maxFrames <= 0 means run forever (until the caller stops
// driving it).
type Backend struct {
	maxFrames  int
	frameCount int
}

// New creates a headless backend that quits after maxFrames frames.
func New(maxFrames int) *Backend {
	return &Backend{maxFrames: maxFrames}
}

func (h *Backend) Init(cfg backend.Config) error {
	slog.Info("running headless", "max_frames", h.maxFrames)
	return nil
}

func (h *Backend) Update(frame []byte) ([]backend.KeyEvent, bool, error) {
	h.frameCount++
	if h.frameCount%60 == 0 {
		slog.Debug("headless progress", "frame", h.frameCount)
	}
	quit := h.maxFrames > 0 && h.frameCount >= h.maxFrames
	return nil, quit, nil
}

func (h *Backend) Cleanup() error { return nil }
