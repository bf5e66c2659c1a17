// Package terminal implements a Backend that renders frames directly to the
// user's terminal with tcell, using the upper-half-block trick to pack two
// rows of pixels into each terminal cell, and maps a fixed keyboard layout
// to joypad input.
package terminal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tsolberg/dmgo/internal/backend"
	"github.com/tsolberg/dmgo/internal/gameboy"
	"github.com/tsolberg/dmgo/internal/memory"
)

const (
	frameWidth  = gameboy.FrameWidth
	frameHeight = gameboy.FrameHeight

	// keyTimeout is how long a key is considered held after its last
	// keypress event; tcell (like most terminals) reports key-down only,
	// so a release is synthesized once no repeat has arrived for a while.
	keyTimeout = 150 * time.Millisecond
)

// Backend renders to the terminal via tcell and reads keyboard input.
type Backend struct {
	screen    tcell.Screen
	lastSeen  map[memory.JoypadKey]time.Time
	heldKeys  map[memory.JoypadKey]bool
}

// New creates a terminal backend.
func New() *Backend {
	return &Backend{
		lastSeen: make(map[memory.JoypadKey]time.Time),
		heldKeys: make(map[memory.JoypadKey]bool),
	}
}

func (t *Backend) Init(cfg backend.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: initializing screen: %w", err)
	}

	t.screen = screen
	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	slog.Info("terminal backend initialized", "width", frameWidth, "height", frameHeight/2)
	return nil
}

// keymap is the fixed keyboard layout: arrows for the d-pad, Z/X for B/A,
// Enter/Backspace for Start/Select.
var keymap = map[tcell.Key]memory.JoypadKey{
	tcell.KeyUp:        memory.JoypadUp,
	tcell.KeyDown:      memory.JoypadDown,
	tcell.KeyLeft:      memory.JoypadLeft,
	tcell.KeyRight:     memory.JoypadRight,
	tcell.KeyEnter:     memory.JoypadStart,
	tcell.KeyBackspace2: memory.JoypadSelect,
}

var runeKeymap = map[rune]memory.JoypadKey{
	'z': memory.JoypadB,
	'x': memory.JoypadA,
}

func (t *Backend) Update(frame []byte) ([]backend.KeyEvent, bool, error) {
	now := time.Now()
	quit := false

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				quit = true
				continue
			}
			if jk, ok := keymap[ev.Key()]; ok {
				t.lastSeen[jk] = now
			} else if jk, ok := runeKeymap[ev.Rune()]; ok {
				t.lastSeen[jk] = now
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	events := t.reconcileKeys(now)

	t.draw(frame)
	t.screen.Show()

	return events, quit, nil
}

// reconcileKeys turns the raw lastSeen timestamps into press/release
// transitions relative to the previous call.
func (t *Backend) reconcileKeys(now time.Time) []backend.KeyEvent {
	var events []backend.KeyEvent

	for jk, seen := range t.lastSeen {
		held := now.Sub(seen) < keyTimeout
		if held && !t.heldKeys[jk] {
			events = append(events, backend.KeyEvent{Key: jk, Pressed: true})
		} else if !held && t.heldKeys[jk] {
			events = append(events, backend.KeyEvent{Key: jk, Pressed: false})
		}
		t.heldKeys[jk] = held
	}

	return events
}

// draw packs two source rows into each terminal row using the upper-half
// block glyph, foreground = top pixel, background = bottom pixel.
func (t *Backend) draw(frame []byte) {
	for y := 0; y < frameHeight; y += 2 {
		for x := 0; x < frameWidth; x++ {
			top := pixelColor(frame, x, y)
			bottom := pixelColor(frame, x, y+1)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			t.screen.SetContent(x, y/2, '▀', nil, style)
		}
	}
}

func pixelColor(frame []byte, x, y int) tcell.Color {
	i := (y*frameWidth + x) * 4
	if i+3 >= len(frame) {
		return tcell.ColorBlack
	}
	return tcell.NewRGBColor(int32(frame[i]), int32(frame[i+1]), int32(frame[i+2]))
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}
