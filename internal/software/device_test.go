package software

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crt-demo/core"
	"crt-demo/geometry"
	"crt-demo/gfx"
	"crt-demo/math"
)

// passthrough samples image 0 at the interpolated texcoord and applies the
// offset uniform (two floats) to positions.
func passthrough() gfx.PipelineDesc {
	return gfx.PipelineDesc{
		Attributes: geometry.Attributes,
		Filter:     gfx.FilterNearest,
		Shader: gfx.ShaderDesc{
			Uniforms: []gfx.UniformDesc{{Name: "offset", Type: gfx.UniformFloat2}},
			Vertex: func(attrs, uniforms []float32) (math.Vec2, math.Vec2) {
				pos := math.Vec2{X: attrs[0], Y: attrs[1]}
				if len(uniforms) >= 2 {
					pos = pos.Add(math.Vec2{X: uniforms[0], Y: uniforms[1]})
				}
				return pos, math.Vec2{X: attrs[2], Y: attrs[3]}
			},
			Fragment: func(images []gfx.Sampler, uv math.Vec2, _ []float32) core.Color {
				return images[0].Sample(uv)
			},
		},
	}
}

func setup(t *testing.T, size core.Size) (*Device, *geometry.Quad, gfx.Pipeline) {
	t.Helper()
	dev := New(size)
	quad, err := geometry.NewQuad(dev)
	require.NoError(t, err)
	pip, err := dev.NewPipeline(passthrough())
	require.NoError(t, err)
	return dev, quad, pip
}

func TestRenderTargetLifecycle(t *testing.T) {
	dev := New(core.Size{Width: 4, Height: 4})

	tex, err := dev.NewRenderTarget(core.Size{Width: 3, Height: 2}, gfx.FormatRGBA8)
	require.NoError(t, err)
	assert.Equal(t, core.Size{Width: 3, Height: 2}, dev.TextureSize(tex))
	assert.Equal(t, 1, dev.LiveTextures())

	dev.DeleteTexture(tex)
	dev.DeleteTexture(tex)
	assert.Equal(t, 0, dev.LiveTextures())
	assert.Equal(t, 1, dev.Stats().TargetsFreed)
	assert.Equal(t, core.Size{}, dev.TextureSize(tex))
}

func TestRenderTargetRejectsBadSizes(t *testing.T) {
	dev := New(core.Size{Width: 4, Height: 4})

	_, err := dev.NewRenderTarget(core.Size{Width: 0, Height: 10}, gfx.FormatRGBA8)
	assert.True(t, errors.Is(err, gfx.ErrInvalidSize))

	_, err = dev.NewRenderTarget(core.Size{Width: MaxTextureSize + 1, Height: 1}, gfx.FormatRGBA8)
	assert.Error(t, err)
	assert.Equal(t, 0, dev.LiveTextures())
}

func TestPassClearsTarget(t *testing.T) {
	dev := New(core.Size{Width: 2, Height: 2})
	dev.BeginPass(gfx.DefaultTarget, gfx.ClearColor(core.ColorWhite))
	dev.EndPass()

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, color.RGBA{255, 255, 255, 255}, dev.Pixel(x, y))
		}
	}
	assert.Empty(t, dev.Errors())
}

func TestQuadCopiesTextureUpright(t *testing.T) {
	size := core.Size{Width: 4, Height: 3}
	dev, quad, pip := setup(t, size)

	src, err := dev.NewRenderTarget(size, gfx.FormatRGBA8)
	require.NoError(t, err)

	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	dev.BeginPass(src, gfx.ClearColor(core.ColorBlack))
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	img.SetRGBA(0, 0, red)
	img.SetRGBA(3, 2, blue)
	dev.DrawImage(img)
	dev.EndPass()

	dev.BeginPass(gfx.DefaultTarget, gfx.ClearColor(core.ColorWhite))
	dev.ApplyPipeline(pip)
	dev.ApplyBindings(quad.Bindings(src))
	dev.ApplyUniforms([]float32{0, 0})
	dev.Draw(0, quad.IndexCount(), 1)
	dev.EndPass()
	dev.CommitFrame()

	require.Empty(t, dev.Errors())
	assert.Equal(t, red, dev.Pixel(0, 0))
	assert.Equal(t, blue, dev.Pixel(3, 2))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, dev.Pixel(1, 1))
	assert.Equal(t, 1, dev.Stats().Draws)
	assert.Equal(t, 1, dev.Stats().Frames)
}

func TestOffsetTranslatesQuad(t *testing.T) {
	size := core.Size{Width: 4, Height: 4}
	dev, quad, pip := setup(t, size)

	src, err := dev.NewRenderTarget(size, gfx.FormatRGBA8)
	require.NoError(t, err)
	dev.BeginPass(src, gfx.ClearColor(core.ColorRed))
	dev.EndPass()

	dev.BeginPass(gfx.DefaultTarget, gfx.ClearColor(core.ColorWhite))
	dev.ApplyPipeline(pip)
	dev.ApplyBindings(quad.Bindings(src))
	dev.ApplyUniforms([]float32{1, 0})
	dev.Draw(0, quad.IndexCount(), 1)
	dev.EndPass()

	white := color.RGBA{255, 255, 255, 255}
	red := color.RGBA{255, 0, 0, 255}
	for y := 0; y < 4; y++ {
		assert.Equal(t, white, dev.Pixel(0, y), "row %d left half", y)
		assert.Equal(t, white, dev.Pixel(1, y), "row %d left half", y)
		assert.Equal(t, red, dev.Pixel(2, y), "row %d right half", y)
		assert.Equal(t, red, dev.Pixel(3, y), "row %d right half", y)
	}
}

func TestFeedbackLoopDetected(t *testing.T) {
	size := core.Size{Width: 2, Height: 2}
	dev, quad, pip := setup(t, size)
	tex, err := dev.NewRenderTarget(size, gfx.FormatRGBA8)
	require.NoError(t, err)

	dev.BeginPass(tex, gfx.Load)
	dev.ApplyPipeline(pip)
	dev.ApplyBindings(quad.Bindings(tex))
	dev.EndPass()

	assert.Equal(t, 1, dev.Stats().FeedbackLoops)
	require.NotEmpty(t, dev.Errors())
	assert.True(t, errors.Is(dev.Errors()[0], ErrFeedbackLoop))
}

func TestDrawOutsidePassIsReported(t *testing.T) {
	dev := New(core.Size{Width: 2, Height: 2})
	dev.Draw(0, 6, 1)
	dev.EndPass()
	require.Len(t, dev.Errors(), 2)
	for _, err := range dev.Errors() {
		assert.True(t, errors.Is(err, gfx.ErrNoActivePass))
	}
}

func TestSamplerClampsAndFilters(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{0, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{255, 255, 255, 255})

	nearest := Sampler{Image: img, Filter: gfx.FilterNearest}
	assert.Equal(t, float32(0), nearest.Sample(math.Vec2{X: 0.25, Y: 0.5}).R)
	assert.Equal(t, float32(1), nearest.Sample(math.Vec2{X: 0.75, Y: 0.5}).R)
	assert.Equal(t, float32(1), nearest.Sample(math.Vec2{X: 7, Y: 0.5}).R)
	assert.Equal(t, float32(0), nearest.Sample(math.Vec2{X: -3, Y: 0.5}).R)

	linear := Sampler{Image: img, Filter: gfx.FilterLinear}
	assert.InDelta(t, 0.5, linear.Sample(math.Vec2{X: 0.5, Y: 0.5}).R, 1e-6)
	assert.InDelta(t, 0, linear.Sample(math.Vec2{X: 0.25, Y: 0.5}).R, 1e-6)
	assert.InDelta(t, 1, linear.Sample(math.Vec2{X: 0.75, Y: 0.5}).R, 1e-6)
	assert.InDelta(t, 0, linear.Sample(math.Vec2{X: 0, Y: 0.5}).R, 1e-6)
}

func TestSamplerRowsCountFromBottom(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255}) // top row
	img.SetRGBA(0, 1, color.RGBA{0, 0, 255, 255}) // bottom row

	s := Sampler{Image: img, Filter: gfx.FilterNearest}
	assert.Equal(t, core.ColorRed, s.Sample(math.Vec2{X: 0.5, Y: 0.9}))
	assert.Equal(t, core.ColorBlue, s.Sample(math.Vec2{X: 0.5, Y: 0.1}))
}
