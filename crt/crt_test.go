package crt

import (
	stdmath "math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crt-demo/core"
	"crt-demo/gfx"
	"crt-demo/math"
)

const tol = 1e-5

// samplerFunc adapts a function to gfx.Sampler.
type samplerFunc func(uv math.Vec2) core.Color

func (f samplerFunc) Sample(uv math.Vec2) core.Color { return f(uv) }

func uniform(c core.Color) gfx.Sampler {
	return samplerFunc(func(math.Vec2) core.Color { return c })
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, float32(0.75), p.Warp)
	assert.Equal(t, float32(0.5), p.Scan)
	assert.Equal(t, float32(1.0), p.Split)
}

func TestDistortIsIdentityAtCenter(t *testing.T) {
	center := math.Vec2{X: 0.5, Y: 0.5}
	assert.Equal(t, center, DefaultParams().Distort(center))
}

func TestDistortUsesCrossAxisTerms(t *testing.T) {
	p := DefaultParams()
	uv := p.Distort(math.Vec2{X: 0.8, Y: 0.6})

	// dc = (0.09, 0.01): x is scaled by the vertical term, y by the
	// horizontal one.
	assert.InDelta(t, 0.5+0.3*(1+0.01*0.3*0.75), uv.X, tol)
	assert.InDelta(t, 0.5+0.1*(1+0.09*0.4*0.75), uv.Y, tol)

	swapped := 0.5 + 0.3*(1+0.09*0.3*0.75)
	assert.Greater(t, stdmath.Abs(float64(uv.X)-swapped), 1e-3)
}

func TestDistortOnAxisLines(t *testing.T) {
	p := DefaultParams()
	// On the horizontal centre line dc.y is zero, so x is untouched.
	uv := p.Distort(math.Vec2{X: 0.9, Y: 0.5})
	assert.InDelta(t, 0.9, uv.X, tol)
	assert.InDelta(t, 0.5, uv.Y, tol)

	uv = p.Distort(math.Vec2{X: 0.5, Y: 0.1})
	assert.InDelta(t, 0.5, uv.X, tol)
	assert.InDelta(t, 0.1, uv.Y, tol)
}

func TestShadeMasksOutOfBounds(t *testing.T) {
	p := DefaultParams()
	res := math.Vec2{X: 800, Y: 600}
	white := uniform(core.ColorWhite)

	corners := []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0.01, Y: 0.02}}
	for _, uv0 := range corners {
		require.False(t, InBounds(p.Distort(uv0)), "uv0 %v should warp out of bounds", uv0)
		assert.Equal(t, core.ColorBlack, p.Shade(white, uv0, res), "uv0 %v", uv0)
	}
}

func TestInBounds(t *testing.T) {
	assert.True(t, InBounds(math.Vec2{X: 0, Y: 0}))
	assert.True(t, InBounds(math.Vec2{X: 1, Y: 1}))
	assert.False(t, InBounds(math.Vec2{X: -0.0001, Y: 0.5}))
	assert.False(t, InBounds(math.Vec2{X: 0.5, Y: 1.0001}))
}

func TestScanlineZeroAtMultiplesOfPi(t *testing.T) {
	p := DefaultParams()
	const resY = 600
	for k := 0; k < 5; k++ {
		y := float32(k) * stdmath.Pi * 2 / resY
		assert.InDelta(t, 0, p.Scanline(y, resY), tol, "k=%d", k)
	}
}

func TestScanlineRangeAndPeriod(t *testing.T) {
	p := DefaultParams()
	const resY = 600
	peak := float32(stdmath.Pi / resY) // y*resY/2 = π/2
	assert.InDelta(t, 0.25, p.Scanline(peak, resY), tol)

	period := float32(4 * stdmath.Pi / resY)
	for _, y := range []float32{0.1, 0.25, 0.5, 0.7} {
		a := p.Scanline(y, resY)
		assert.GreaterOrEqual(t, a, float32(0))
		assert.LessOrEqual(t, a, float32(0.25))
		assert.InDelta(t, a, p.Scanline(y+period, resY), 1e-3)
	}
}

func TestShadeUniformCenter(t *testing.T) {
	p := DefaultParams()
	res := math.Vec2{X: 800, Y: 600}
	c := core.Color{R: 0.2, G: 0.4, B: 0.8, A: 1}

	got := p.Shade(uniform(c), math.Vec2{X: 0.5, Y: 0.5}, res)
	k := 1 - p.Scanline(0.5, res.Y)
	assert.InDelta(t, c.R*k, got.R, tol)
	assert.InDelta(t, c.G*k, got.G, tol)
	assert.InDelta(t, c.B*k, got.B, tol)
	assert.Equal(t, float32(1), got.A)
}

func TestShadeSplitsChannels(t *testing.T) {
	p := DefaultParams()
	res := math.Vec2{X: 800, Y: 600}
	// Encode the sampled x coordinate into every channel.
	probe := samplerFunc(func(uv math.Vec2) core.Color {
		return core.Color{R: uv.X, G: uv.X, B: uv.X, A: 1}
	})

	got := p.Shade(probe, math.Vec2{X: 0.5, Y: 0.5}, res)
	k := 1 - p.Scanline(0.5, res.Y)
	require.Greater(t, k, float32(0))
	assert.InDelta(t, 0.5+1.0/800, got.R/k, tol)
	assert.InDelta(t, 0.5, got.G/k, tol)
	assert.InDelta(t, 0.5-1.0/800, got.B/k, tol)
}

func TestFragmentSourceBakesParams(t *testing.T) {
	src := FragmentSource(DefaultParams())
	assert.Contains(t, src, "const float warp = 0.75;")
	assert.Contains(t, src, "const float scan = 0.5;")
	assert.Contains(t, src, "const float split = 1.0;")
	assert.False(t, strings.Contains(src, "{{"), "unexpanded placeholder in %q", src)
}

func TestGLSLFloat(t *testing.T) {
	assert.Equal(t, "1.0", glslFloat(1))
	assert.Equal(t, "0.75", glslFloat(0.75))
	assert.Equal(t, "0.0", glslFloat(0))
	assert.Equal(t, "-2.0", glslFloat(-2))
}

func TestVertexAppliesOffset(t *testing.T) {
	u := Uniforms{Offset: math.Vec2{X: 0.25, Y: -0.5}, Resolution: math.Vec2{X: 800, Y: 600}}
	pos, uv := vertex([]float32{1, 1, 1, 1}, u.Floats())
	assert.Equal(t, math.Vec2{X: 1.25, Y: 0.5}, pos)
	assert.Equal(t, math.Vec2{X: 1, Y: 1}, uv)
	assert.Equal(t, u, UnpackUniforms(u.Floats()))
}

func TestShaderDescLayout(t *testing.T) {
	desc := ShaderDesc(DefaultParams())
	assert.Equal(t, []string{TextureName}, desc.Images)
	assert.Equal(t, 4, desc.UniformFloats())
	require.NotNil(t, desc.Vertex)
	require.NotNil(t, desc.Fragment)

	got := desc.Fragment(nil, math.Vec2{X: 0.5, Y: 0.5}, Uniforms{Resolution: math.Vec2{X: 8, Y: 8}}.Floats())
	assert.Equal(t, core.ColorBlack, got)
}
