// Package gui holds the contract between the frame orchestrator and the GUI
// library it renders, plus two implementations: a small widget set painted
// with gg and a solid fill used as a test fixture.
package gui

import (
	"time"

	"crt-demo/core"
	"crt-demo/gfx"
)

// FrameInfo describes the frame about to be built.
type FrameInfo struct {
	// Size is the framebuffer size in pixels. The GUI lays itself out in the
	// same pixel space the input callbacks report.
	Size  core.Size
	Delta time.Duration
	Frame uint64
}

// Adapter is a retained GUI driven by the orchestrator. Per frame the
// orchestrator calls BeginFrame, then Draw inside the offscreen pass, then
// EndFrame after the pass has ended. Input arrives between frames.
type Adapter interface {
	BeginFrame(info FrameInfo)
	// Draw renders the frame's widgets into the pass currently open on p.
	Draw(p gfx.Painter) error
	EndFrame()

	MouseMotion(x, y float32)
	MouseWheel(dx, dy float32)
	MouseButtonDown(button core.MouseButton, x, y float32)
	MouseButtonUp(button core.MouseButton, x, y float32)
	KeyDown(key core.Key, mods core.KeyMods)
	KeyUp(key core.Key, mods core.KeyMods)
	Char(r rune, mods core.KeyMods)
}
