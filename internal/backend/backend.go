// Package backend declares the interface between the core's frame-stepping
// loop and a platform-specific presentation layer. Front-end windowing and
// input capture are explicitly out of scope for the core (spec.md §1); a
// Backend is how an outer driver supplies them.
package backend

import "github.com/tsolberg/dmgo/internal/memory"

// Config configures a backend at startup.
type Config struct {
	Title string
	Scale int
}

// KeyEvent reports a joypad key transitioning pressed or released.
type KeyEvent struct {
	Key     memory.JoypadKey
	Pressed bool
}

// Backend renders frames and collects input for one presentation platform.
type Backend interface {
	// Init configures the backend. Called once before the first Update.
	Init(cfg Config) error

	// Update renders frame (RGBA8888, 160x144) and returns any joypad
	// transitions observed since the last call, plus whether the backend
	// wants the emulator to stop (e.g. the window was closed).
	Update(frame []byte) (events []KeyEvent, quit bool, err error)

	// Cleanup releases any platform resources.
	Cleanup() error
}
