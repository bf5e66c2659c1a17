// Command dmgo runs the emulator core against a ROM file, presenting frames
// through a selectable backend (terminal, headless, or sdl2 when built with
// -tags sdl2).
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/tsolberg/dmgo/internal/backend"
	"github.com/tsolberg/dmgo/internal/backend/headless"
	"github.com/tsolberg/dmgo/internal/backend/sdl2"
	"github.com/tsolberg/dmgo/internal/backend/terminal"
	"github.com/tsolberg/dmgo/internal/gameboy"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgo"
	app.Description = "A Game Boy (DMG) emulator core"
	app.Usage = "dmgo [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "presentation backend: terminal, headless, sdl2",
			Value: "terminal",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "stop after N frames (headless only, 0 = run forever)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "window scale factor (sdl2 only)",
			Value: 3,
		},
		cli.BoolFlag{
			Name:  "unlocked",
			Usage: "run as fast as possible instead of pacing to ~59.7 fps",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgo exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	gb, err := gameboy.NewWithROMFile(romPath)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	be, err := selectBackend(c.String("backend"), c.Int("frames"))
	if err != nil {
		return err
	}

	cfg := backend.Config{Title: "dmgo", Scale: c.Int("scale")}
	if err := be.Init(cfg); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	defer be.Cleanup()

	var pacer gameboy.Pacer
	if c.Bool("unlocked") {
		pacer = gameboy.FreeRunPacer{}
	} else {
		pacer = gameboy.NewTickerPacer()
	}

	fps := uint32(gameboy.TargetFPS() + 0.5)
	frame := make([]byte, gameboy.FrameBytes)

	slog.Info("starting emulation", "rom", romPath, "backend", c.String("backend"))

	for {
		gb.Cycle(frame, fps)

		events, quit, err := be.Update(frame)
		if err != nil {
			return fmt.Errorf("backend update: %w", err)
		}
		for _, e := range events {
			if e.Pressed {
				gb.MMU().PressKey(e.Key)
			} else {
				gb.MMU().ReleaseKey(e.Key)
			}
		}
		if quit {
			break
		}

		pacer.Wait()
	}

	return nil
}

func selectBackend(name string, frames int) (backend.Backend, error) {
	switch name {
	case "terminal":
		return terminal.New(), nil
	case "headless":
		return headless.New(frames), nil
	case "sdl2":
		return sdl2.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want terminal, headless, or sdl2)", name)
	}
}
