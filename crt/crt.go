// Package crt implements the CRT post-process used by the composite pass:
// a cross-axis barrel warp, per-scanline darkening and a horizontal
// red/blue channel split.
//
// The algorithm exists in two forms that must agree: GLSL sources for GPU
// backends (FragmentSource) and Shade, a float32 Go evaluation used by the
// software backend and by tests.
package crt

import (
	"github.com/chewxy/math32"

	"crt-demo/core"
	"crt-demo/gfx"
	"crt-demo/math"
)

// Params are the effect constants. They are baked into the compiled program.
type Params struct {
	Warp  float32 `toml:"warp" yaml:"warp"`
	Scan  float32 `toml:"scan" yaml:"scan"`
	Split float32 `toml:"split" yaml:"split"`
}

// DefaultParams returns warp 0.75, scan 0.5, split 1.0.
func DefaultParams() Params {
	return Params{Warp: 0.75, Scan: 0.5, Split: 1.0}
}

// Distort applies the barrel warp to a texture coordinate. The horizontal
// coordinate is scaled by the squared vertical distance from the centre and
// vice versa.
func (p Params) Distort(uv0 math.Vec2) math.Vec2 {
	dc := math.Vec2{X: 0.5 - uv0.X, Y: 0.5 - uv0.Y}.Abs()
	dc = dc.MulVec(dc)

	var uv math.Vec2
	uv.X = (uv0.X-0.5)*(1.0+dc.Y*(0.3*p.Warp)) + 0.5
	uv.Y = (uv0.Y-0.5)*(1.0+dc.X*(0.4*p.Warp)) + 0.5
	return uv
}

// InBounds reports whether a warped coordinate still lies on the source
// texture. Coordinates outside are masked to black rather than clamped.
func InBounds(uv math.Vec2) bool {
	return !(uv.Y > 1 || uv.X < 0 || uv.X > 1 || uv.Y < 0)
}

// Scanline returns the darkening factor for warped row coordinate y at the
// given vertical output resolution. It is zero whenever y*resY/2 is a
// multiple of π and peaks at 0.5*Scan.
func (p Params) Scanline(y, resY float32) float32 {
	return math32.Abs(math32.Sin(y*resY/2.0) * 0.5 * p.Scan)
}

// Shade computes the output colour for interpolated texture coordinate uv0.
// tex is the offscreen target and resolution the framebuffer size in pixels.
func (p Params) Shade(tex gfx.Sampler, uv0, resolution math.Vec2) core.Color {
	uv := p.Distort(uv0)
	if !InBounds(uv) {
		return core.ColorBlack
	}

	apply := p.Scanline(uv.Y, resolution.Y)
	dx := p.Split / resolution.X
	r := tex.Sample(math.Vec2{X: uv.X + dx, Y: uv.Y}).R
	g := tex.Sample(uv).G
	b := tex.Sample(math.Vec2{X: uv.X - dx, Y: uv.Y}).B

	// mix(rgb, vec3(0), apply)
	return core.Color{R: r, G: g, B: b, A: 1}.Scale(1 - apply)
}
