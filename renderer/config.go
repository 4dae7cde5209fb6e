package renderer

import (
	"crt-demo/core"
	"crt-demo/crt"
	"crt-demo/gfx"
	"crt-demo/math"
)

// Config tunes the frame orchestrator.
type Config struct {
	// Offset translates the composite quad in normalized device space.
	Offset math.Vec2
	// ClearColor clears the default framebuffer before compositing.
	ClearColor core.Color
	// TargetClear clears the offscreen target before the GUI draws.
	TargetClear core.Color
	// Filter is used when the composite pass samples the offscreen target.
	Filter gfx.FilterMode
	CRT    crt.Params
}

func DefaultConfig() Config {
	return Config{
		Offset:      math.Vec2Zero,
		ClearColor:  core.ColorWhite,
		TargetClear: core.ColorTransparent,
		Filter:      gfx.FilterLinear,
		CRT:         crt.DefaultParams(),
	}
}
