//go:build sdl2

// Package sdl2 implements a Backend using go-sdl2, the real windowed
// presentation layer: a streaming RGBA8888 texture uploaded once per frame
// and a fixed keyboard-to-joypad mapping.
package sdl2

import (
	"fmt"
	"log/slog"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/tsolberg/dmgo/internal/backend"
	"github.com/tsolberg/dmgo/internal/gameboy"
	"github.com/tsolberg/dmgo/internal/memory"
)

const (
	frameWidth  = gameboy.FrameWidth
	frameHeight = gameboy.FrameHeight
)

// Backend renders through an SDL2 window.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
}

// New creates an SDL2 backend.
func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(cfg backend.Config) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdl2: init: %w", err)
	}

	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	title := cfg.Title
	if title == "" {
		title = "dmgo"
	}

	window, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(frameWidth*scale), int32(frameHeight*scale),
		sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("sdl2: creating window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("sdl2: creating renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(frameWidth), int32(frameHeight))
	if err != nil {
		return fmt.Errorf("sdl2: creating texture: %w", err)
	}
	s.texture = texture

	slog.Info("sdl2 backend initialized", "width", frameWidth, "height", frameHeight, "scale", scale)
	return nil
}

// keymap is the fixed keyboard layout: arrows for the d-pad, Z/X for B/A,
// Enter/Backspace for Start/Select.
var keymap = map[sdl.Keycode]memory.JoypadKey{
	sdl.K_UP:        memory.JoypadUp,
	sdl.K_DOWN:      memory.JoypadDown,
	sdl.K_LEFT:      memory.JoypadLeft,
	sdl.K_RIGHT:     memory.JoypadRight,
	sdl.K_RETURN:    memory.JoypadStart,
	sdl.K_BACKSPACE: memory.JoypadSelect,
	sdl.K_z:         memory.JoypadB,
	sdl.K_x:         memory.JoypadA,
}

func (s *Backend) Update(frame []byte) ([]backend.KeyEvent, bool, error) {
	var events []backend.KeyEvent
	quit := false

	for {
		ev := sdl.PollEvent()
		if ev == nil {
			break
		}
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			quit = true
		case *sdl.KeyboardEvent:
			if e.Keysym.Sym == sdl.K_ESCAPE && e.Type == sdl.KEYDOWN {
				quit = true
				continue
			}
			jk, ok := keymap[e.Keysym.Sym]
			if !ok {
				continue
			}
			switch e.Type {
			case sdl.KEYDOWN:
				if e.Repeat == 0 {
					events = append(events, backend.KeyEvent{Key: jk, Pressed: true})
				}
			case sdl.KEYUP:
				events = append(events, backend.KeyEvent{Key: jk, Pressed: false})
			}
		}
	}

	if err := s.texture.Update(nil, frame, frameWidth*4); err != nil {
		return events, quit, fmt.Errorf("sdl2: updating texture: %w", err)
	}
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()

	return events, quit, nil
}

func (s *Backend) Cleanup() error {
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}
