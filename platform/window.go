// Package platform hosts the application on a GLFW window with an OpenGL 4.1
// core context and drives the core.EventHandler contract from GLFW callbacks.
package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"crt-demo/core"
	"crt-demo/gfx"
)

func init() {
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	mods core.KeyMods
	err  error
}

type WindowConfig struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	VSync     bool
	HighDPI   bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     800,
		Height:    600,
		Title:     "CRT Demo",
		Resizable: true,
		VSync:     true,
		HighDPI:   true,
	}
}

func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))
	glfw.WindowHint(glfw.ScaleToMonitor, boolToInt(config.HighDPI))
	glfw.WindowHint(glfw.CocoaRetinaFramebuffer, boolToInt(config.HighDPI))

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w, h := handle.GetFramebufferSize()
	window := &Window{
		Handle: handle,
		Width:  w,
		Height: h,
		Title:  config.Title,
	}
	gfx.Logger().Info("window created", "title", config.Title, "framebuffer", core.Size{Width: w, Height: h})
	return window, nil
}

// FramebufferSize returns the drawable size in pixels, which differs from the
// window size on high-DPI displays.
func (w *Window) FramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) SetTitle(title string) {
	w.Title = title
	w.Handle.SetTitle(title)
}

// Close asks the run loop to stop after the current frame.
func (w *Window) Close() {
	w.Handle.SetShouldClose(true)
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

// Run installs the GLFW callbacks, calls h.Init and then drives h.Frame until
// the window is closed or a handler returns an error.
func (w *Window) Run(h core.EventHandler) error {
	w.installCallbacks(h)

	if err := h.Init(); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	for !w.Handle.ShouldClose() {
		if err := h.Frame(); err != nil {
			return fmt.Errorf("frame: %w", err)
		}
		w.Handle.SwapBuffers()
		glfw.PollEvents()
		if w.err != nil {
			return w.err
		}
	}
	return nil
}

func (w *Window) installCallbacks(h core.EventHandler) {
	w.Handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.Width = width
		w.Height = height
		if w.err != nil {
			return
		}
		if err := h.Resize(width, height); err != nil {
			w.err = fmt.Errorf("resize to %dx%d: %w", width, height, err)
			w.Handle.SetShouldClose(true)
		}
	})

	w.Handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		sx, sy := w.pixelScale()
		h.MouseMotion(float32(x)*sx, float32(y)*sy)
	})

	w.Handle.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		h.MouseWheel(float32(xoff), float32(yoff))
	})

	w.Handle.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		x, y := win.GetCursorPos()
		sx, sy := w.pixelScale()
		px, py := float32(x)*sx, float32(y)*sy
		switch action {
		case glfw.Press:
			h.MouseButtonDown(convertMouseButton(button), px, py)
		case glfw.Release:
			h.MouseButtonUp(convertMouseButton(button), px, py)
		}
	})

	w.Handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		w.mods = convertMods(mods)
		switch action {
		case glfw.Press:
			h.KeyDown(core.Key(key), w.mods, false)
		case glfw.Repeat:
			h.KeyDown(core.Key(key), w.mods, true)
		case glfw.Release:
			h.KeyUp(core.Key(key), w.mods)
		}
	})

	w.Handle.SetCharCallback(func(_ *glfw.Window, char rune) {
		h.Char(char, w.mods, false)
	})
}

// pixelScale maps window coordinates to framebuffer pixels.
func (w *Window) pixelScale() (float32, float32) {
	ww, wh := w.Handle.GetSize()
	if ww == 0 || wh == 0 {
		return 1, 1
	}
	fw, fh := w.Handle.GetFramebufferSize()
	return float32(fw) / float32(ww), float32(fh) / float32(wh)
}

func convertMouseButton(b glfw.MouseButton) core.MouseButton {
	switch b {
	case glfw.MouseButtonLeft:
		return core.MouseLeft
	case glfw.MouseButtonRight:
		return core.MouseRight
	case glfw.MouseButtonMiddle:
		return core.MouseMiddle
	}
	return core.MouseUnknown
}

func convertMods(m glfw.ModifierKey) core.KeyMods {
	var mods core.KeyMods
	if m&glfw.ModShift != 0 {
		mods |= core.ModShift
	}
	if m&glfw.ModControl != 0 {
		mods |= core.ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		mods |= core.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		mods |= core.ModSuper
	}
	return mods
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
