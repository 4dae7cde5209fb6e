// Command crtdemo opens a window showing a small GUI composited through a
// CRT shader.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"crt-demo/core"
	"crt-demo/gfx"
	"crt-demo/gui"
	"crt-demo/internal/opengl"
	"crt-demo/platform"
	"crt-demo/renderer"
)

// app adds window chrome on top of the engine: an FPS counter in the title
// and Ctrl+Q to quit.
type app struct {
	*renderer.Engine
	window *platform.Window

	frames   int
	lastTime time.Time
}

func (a *app) Frame() error {
	if err := a.Engine.Frame(); err != nil {
		return err
	}
	a.frames++
	now := time.Now()
	if a.lastTime.IsZero() {
		a.lastTime = now
	}
	if elapsed := now.Sub(a.lastTime); elapsed >= time.Second {
		w, h := a.window.FramebufferSize()
		a.window.SetTitle(fmt.Sprintf("CRT Demo | FPS: %d | %dx%d", a.frames, w, h))
		a.frames = 0
		a.lastTime = now
	}
	return nil
}

func (a *app) KeyDown(key core.Key, mods core.KeyMods, repeat bool) {
	if key == core.KeyQ && mods.Has(core.ModCtrl) {
		a.window.Close()
		return
	}
	a.Engine.KeyDown(key, mods, repeat)
}

func run() error {
	window, err := platform.NewWindow(platform.DefaultWindowConfig())
	if err != nil {
		return err
	}
	defer window.Destroy()

	dev, err := opengl.New(window.FramebufferSize)
	if err != nil {
		return err
	}
	defer dev.Destroy()

	ui := gui.NewDemoWindows(window.Close)
	defer ui.Close()

	engine := renderer.NewEngine(dev, ui, renderer.DefaultConfig())
	defer engine.Destroy()

	return window.Run(&app{Engine: engine, window: window})
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	gfx.SetLogger(logger)

	if err := run(); err != nil {
		logger.Error("crtdemo failed", "err", err)
		os.Exit(1)
	}
}
