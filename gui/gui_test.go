package gui

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crt-demo/core"
	"crt-demo/gfx"
	"crt-demo/internal/software"
)

func center(r image.Rectangle) (float32, float32) {
	c := r.Min.Add(r.Max).Div(2)
	return float32(c.X), float32(c.Y)
}

func click(d *DemoWindows, w widget) {
	x, y := center(d.rect(w))
	d.MouseMotion(x, y)
	d.MouseButtonDown(core.MouseLeft, x, y)
	d.MouseButtonUp(core.MouseLeft, x, y)
}

// renderOnto runs one adapter frame into a fresh transparent target and
// returns its pixels.
func renderOnto(t *testing.T, a Adapter, size core.Size) *image.RGBA {
	t.Helper()
	dev := software.New(size)
	tex, err := dev.NewRenderTarget(size, gfx.FormatRGBA8)
	require.NoError(t, err)

	a.BeginFrame(FrameInfo{Size: size})
	dev.BeginPass(tex, gfx.ClearColor(core.ColorTransparent))
	require.NoError(t, a.Draw(dev))
	dev.EndPass()
	a.EndFrame()

	require.Empty(t, dev.Errors())
	return dev.TextureImage(tex)
}

func TestCounterButton(t *testing.T) {
	d := NewDemoWindows(nil)
	click(d, widgetCounter)
	click(d, widgetCounter)
	assert.Equal(t, 2, d.Counter)
}

func TestReleaseOutsideCancelsClick(t *testing.T) {
	d := NewDemoWindows(nil)
	x, y := center(d.rect(widgetCounter))
	d.MouseButtonDown(core.MouseLeft, x, y)
	d.MouseButtonUp(core.MouseLeft, 700, 500)
	assert.Zero(t, d.Counter)
}

func TestRightButtonIgnored(t *testing.T) {
	d := NewDemoWindows(nil)
	x, y := center(d.rect(widgetCounter))
	d.MouseButtonDown(core.MouseRight, x, y)
	d.MouseButtonUp(core.MouseRight, x, y)
	assert.Zero(t, d.Counter)
}

func TestCheckboxToggles(t *testing.T) {
	d := NewDemoWindows(nil)
	click(d, widgetCheckbox)
	assert.True(t, d.Checked)
	click(d, widgetCheckbox)
	assert.False(t, d.Checked)
}

func TestQuitCallback(t *testing.T) {
	quit := 0
	d := NewDemoWindows(func() { quit++ })
	click(d, widgetQuit)
	assert.Equal(t, 1, quit)
}

func TestTextField(t *testing.T) {
	d := NewDemoWindows(nil)
	d.Text = nil

	d.Char('a', 0)
	assert.Empty(t, d.Text, "unfocused field ignores input")

	click(d, widgetText)
	for _, r := range "crt!" {
		d.Char(r, 0)
	}
	d.Char('\t', 0)
	d.Char('x', core.ModCtrl)
	assert.Equal(t, "crt!", string(d.Text))

	d.KeyDown(core.KeyBackspace, 0)
	assert.Equal(t, "crt", string(d.Text))

	d.KeyDown(core.KeyEscape, 0)
	d.Char('z', 0)
	assert.Equal(t, "crt", string(d.Text))
}

func TestTextFieldLimit(t *testing.T) {
	d := NewDemoWindows(nil)
	d.Text = nil
	click(d, widgetText)
	for i := 0; i < maxTextLen+10; i++ {
		d.Char('a', 0)
	}
	assert.Len(t, d.Text, maxTextLen)
}

func TestBackspaceOnEmpty(t *testing.T) {
	d := NewDemoWindows(nil)
	d.Text = nil
	click(d, widgetText)
	d.KeyDown(core.KeyBackspace, 0)
	assert.Empty(t, d.Text)
}

func TestTitleDrag(t *testing.T) {
	d := NewDemoWindows(nil)
	start := d.origin
	x, y := center(d.rect(widgetTitle))

	d.MouseButtonDown(core.MouseLeft, x, y)
	d.MouseMotion(x+50, y+30)
	d.MouseButtonUp(core.MouseLeft, x+50, y+30)
	assert.Equal(t, start.Add(image.Pt(50, 30)), d.origin)

	d.MouseMotion(x, y)
	assert.Equal(t, start.Add(image.Pt(50, 30)), d.origin, "motion without press does not drag")
}

func TestDemoWindowsPaintsWindowOnly(t *testing.T) {
	size := core.Size{Width: 400, Height: 300}
	d := NewDemoWindows(nil)
	defer d.Close()

	img := renderOnto(t, d, size)

	// Window body between the checkbox label and the right edge.
	b := d.bounds()
	body := img.RGBAAt(b.Max.X-20, b.Min.Y+96)
	assert.Equal(t, uint8(255), body.A)

	outside := img.RGBAAt(size.Width-5, size.Height-5)
	assert.Zero(t, outside.A)
}

func TestDemoWindowsFollowsResize(t *testing.T) {
	d := NewDemoWindows(nil)
	defer d.Close()

	renderOnto(t, d, core.Size{Width: 400, Height: 300})
	img := renderOnto(t, d, core.Size{Width: 640, Height: 360})
	assert.Equal(t, image.Rect(0, 0, 640, 360), img.Bounds())
}

func TestSolidFillsTarget(t *testing.T) {
	size := core.Size{Width: 16, Height: 9}
	img := renderOnto(t, NewSolid(core.Color{R: 0.2, G: 0.4, B: 0.6, A: 1}), size)

	want := core.Color{R: 0.2, G: 0.4, B: 0.6, A: 1}.RGBA8()
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			require.Equal(t, want, img.RGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
}
