// Package renderer drives the two-pass CRT frame: the GUI is drawn into an
// offscreen target, then composited onto the screen through the CRT shader.
package renderer

import (
	"errors"
	"fmt"
	"time"

	"crt-demo/core"
	"crt-demo/gfx"
	"crt-demo/gui"
)

var (
	errNotInitialized     = errors.New("renderer: engine not initialized")
	errAlreadyInitialized = errors.New("renderer: engine already initialized")
)

// Engine is the frame orchestrator. It implements core.EventHandler so a
// host loop can drive it directly.
type Engine struct {
	dev gfx.Device
	gui gui.Adapter
	cfg Config

	offscreen *Offscreen
	composite *Composite
	stages    []Stage

	frame uint64
	last  time.Time
}

func NewEngine(dev gfx.Device, adapter gui.Adapter, cfg Config) *Engine {
	return &Engine{dev: dev, gui: adapter, cfg: cfg}
}

// Init creates the quad, the composite pipeline and the offscreen target at
// the current framebuffer size.
func (e *Engine) Init() error {
	if e.offscreen != nil {
		return errAlreadyInitialized
	}
	composite, err := NewComposite(e.dev, e.cfg.CRT, e.cfg.Filter)
	if err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	offscreen, err := NewOffscreen(e.dev, e.dev.ScreenSize())
	if err != nil {
		composite.Destroy(e.dev)
		return err
	}
	e.composite, e.offscreen = composite, offscreen
	e.stages = []Stage{
		&GUIStage{
			Target: offscreen,
			GUI:    e.gui,
			Clear:  gfx.ClearColor(e.cfg.TargetClear),
		},
		&CompositeStage{
			Target:    offscreen,
			Composite: composite,
			Clear:     gfx.ClearColor(e.cfg.ClearColor),
			Offset:    e.cfg.Offset,
		},
	}
	e.last = time.Now()
	gfx.Logger().Info("renderer initialized", "target", offscreen.Size().String())
	return nil
}

// Frame runs every stage once, in order.
func (e *Engine) Frame() error {
	if e.offscreen == nil {
		return errNotInitialized
	}
	now := time.Now()
	f := &FrameState{Info: gui.FrameInfo{
		Size:  e.dev.ScreenSize(),
		Delta: now.Sub(e.last),
		Frame: e.frame,
	}}
	e.last = now
	e.frame++

	for _, s := range e.stages {
		if err := s.Run(e.dev, f); err != nil {
			return fmt.Errorf("%s stage: %w", s.Name(), err)
		}
	}
	return nil
}

// Resize replaces the offscreen target at exactly the new framebuffer size.
// A zero-area framebuffer (minimized window) keeps the current target.
func (e *Engine) Resize(width, height int) error {
	if e.offscreen == nil {
		return errNotInitialized
	}
	size := core.Size{Width: width, Height: height}
	if size.Empty() {
		gfx.Logger().Debug("resize to empty framebuffer ignored", "size", size.String())
		return nil
	}
	return e.offscreen.Replace(size)
}

func (e *Engine) MouseMotion(x, y float32)  { e.gui.MouseMotion(x, y) }
func (e *Engine) MouseWheel(dx, dy float32) { e.gui.MouseWheel(dx, dy) }

func (e *Engine) MouseButtonDown(button core.MouseButton, x, y float32) {
	e.gui.MouseButtonDown(button, x, y)
}

func (e *Engine) MouseButtonUp(button core.MouseButton, x, y float32) {
	e.gui.MouseButtonUp(button, x, y)
}

func (e *Engine) KeyDown(key core.Key, mods core.KeyMods, repeat bool) {
	e.gui.KeyDown(key, mods)
}

func (e *Engine) KeyUp(key core.Key, mods core.KeyMods) { e.gui.KeyUp(key, mods) }

func (e *Engine) Char(r rune, mods core.KeyMods, repeat bool) { e.gui.Char(r, mods) }

// Offscreen returns the target owner, nil before Init.
func (e *Engine) Offscreen() *Offscreen { return e.offscreen }

// Destroy releases every device object the engine created.
func (e *Engine) Destroy() {
	if e.offscreen != nil {
		e.offscreen.Destroy()
		e.offscreen = nil
	}
	if e.composite != nil {
		e.composite.Destroy(e.dev)
		e.composite = nil
	}
	e.stages = nil
}

var _ core.EventHandler = (*Engine)(nil)
