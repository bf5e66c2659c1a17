//go:build !sdl2

package sdl2

import (
	"fmt"

	"github.com/tsolberg/dmgo/internal/backend"
)

// Backend is a stub for when the sdl2 build tag is not set.
type Backend struct{}

// New creates a stub SDL2 backend that errors on Init.
func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(cfg backend.Config) error {
	return fmt.Errorf("sdl2 backend not available - build with -tags sdl2 to enable")
}

func (s *Backend) Update(frame []byte) ([]backend.KeyEvent, bool, error) {
	return nil, true, fmt.Errorf("sdl2 backend not available")
}

func (s *Backend) Cleanup() error {
	return nil
}
