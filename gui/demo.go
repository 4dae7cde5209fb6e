package gui

import (
	"fmt"
	"image"
	"unicode"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"crt-demo/core"
	"crt-demo/gfx"
)

type widget int

const (
	widgetNone widget = iota
	widgetTitle
	widgetCounter
	widgetCheckbox
	widgetText
	widgetQuit
)

const (
	windowWidth  = 320
	windowHeight = 212
	titleHeight  = 28
	fontSize     = 14
	maxTextLen   = 64
)

// DemoWindows is a single draggable window holding a counter button, a
// checkbox, a one-line text field and a quit button. It is painted on the CPU
// into an image that is composited onto the current pass.
type DemoWindows struct {
	// OnQuit runs when the quit button is clicked.
	OnQuit func()

	Counter int
	Checked bool
	Text    []rune

	origin  image.Point
	mouse   image.Point
	pressed widget
	focused bool
	drag    image.Point

	info   FrameInfo
	ctx    *gg.Context
	source *text.FontSource
	face   text.Face
}

func NewDemoWindows(onQuit func()) *DemoWindows {
	d := &DemoWindows{
		OnQuit: onQuit,
		origin: image.Pt(24, 24),
		Text:   []rune("hello, crt"),
	}
	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		gfx.Logger().Warn("gui: font unavailable, labels disabled", "err", err)
		return d
	}
	d.source = source
	d.face = source.Face(fontSize)
	return d
}

// Close releases the paint context and the font.
func (d *DemoWindows) Close() error {
	if d.ctx != nil {
		_ = d.ctx.Close()
		d.ctx = nil
	}
	if d.source != nil {
		err := d.source.Close()
		d.source = nil
		d.face = nil
		return err
	}
	return nil
}

func (d *DemoWindows) rect(w widget) image.Rectangle {
	o := d.origin
	switch w {
	case widgetTitle:
		return image.Rect(o.X, o.Y, o.X+windowWidth, o.Y+titleHeight)
	case widgetCounter:
		return image.Rect(o.X+16, o.Y+44, o.X+176, o.Y+72)
	case widgetCheckbox:
		return image.Rect(o.X+16, o.Y+86, o.X+36, o.Y+106)
	case widgetText:
		return image.Rect(o.X+16, o.Y+120, o.X+windowWidth-16, o.Y+148)
	case widgetQuit:
		return image.Rect(o.X+16, o.Y+164, o.X+96, o.Y+192)
	}
	return image.Rectangle{}
}

func (d *DemoWindows) bounds() image.Rectangle {
	return image.Rect(d.origin.X, d.origin.Y, d.origin.X+windowWidth, d.origin.Y+windowHeight)
}

func (d *DemoWindows) hit(p image.Point) widget {
	for _, w := range []widget{widgetTitle, widgetCounter, widgetCheckbox, widgetText, widgetQuit} {
		if p.In(d.rect(w)) {
			return w
		}
	}
	return widgetNone
}

func (d *DemoWindows) BeginFrame(info FrameInfo) {
	d.info = info
}

func (d *DemoWindows) Draw(p gfx.Painter) error {
	size := p.PassSize()
	if size.Empty() {
		return nil
	}
	if d.ctx == nil {
		d.ctx = gg.NewContext(size.Width, size.Height)
	} else if err := d.ctx.Resize(size.Width, size.Height); err != nil {
		return fmt.Errorf("gui resize: %w", err)
	}
	d.ctx.Clear()
	if d.face != nil {
		d.ctx.SetFont(d.face)
	}
	if err := d.paint(); err != nil {
		return fmt.Errorf("gui paint: %w", err)
	}
	p.DrawImage(d.ctx.Image())
	return nil
}

func (d *DemoWindows) paint() error {
	c := d.ctx
	b := d.bounds()

	c.SetRGB(0.16, 0.17, 0.21)
	c.DrawRoundedRectangle(float64(b.Min.X), float64(b.Min.Y), windowWidth, windowHeight, 6)
	if err := c.Fill(); err != nil {
		return err
	}
	t := d.rect(widgetTitle)
	c.SetRGB(0.26, 0.42, 0.68)
	c.DrawRoundedRectangle(float64(t.Min.X), float64(t.Min.Y), float64(t.Dx()), float64(t.Dy()), 6)
	if err := c.Fill(); err != nil {
		return err
	}
	c.SetRGB(1, 1, 1)
	c.DrawString("Hello, CRT", float64(t.Min.X+10), float64(t.Max.Y-9))

	if err := d.button(widgetCounter, fmt.Sprintf("Clicked %d times", d.Counter)); err != nil {
		return err
	}

	cb := d.rect(widgetCheckbox)
	c.SetRGB(0.9, 0.9, 0.9)
	c.DrawRectangle(float64(cb.Min.X), float64(cb.Min.Y), float64(cb.Dx()), float64(cb.Dy()))
	if err := c.Fill(); err != nil {
		return err
	}
	if d.Checked {
		c.SetRGB(0.2, 0.7, 0.3)
		c.DrawRectangle(float64(cb.Min.X+4), float64(cb.Min.Y+4), float64(cb.Dx()-8), float64(cb.Dy()-8))
		if err := c.Fill(); err != nil {
			return err
		}
	}
	c.SetRGB(1, 1, 1)
	c.DrawString("Checkbox", float64(cb.Max.X+8), float64(cb.Max.Y-5))

	tf := d.rect(widgetText)
	c.SetRGB(0.08, 0.08, 0.1)
	c.DrawRectangle(float64(tf.Min.X), float64(tf.Min.Y), float64(tf.Dx()), float64(tf.Dy()))
	if err := c.Fill(); err != nil {
		return err
	}
	if d.focused {
		c.SetRGB(0.26, 0.42, 0.68)
		c.SetLineWidth(2)
		c.DrawRectangle(float64(tf.Min.X), float64(tf.Min.Y), float64(tf.Dx()), float64(tf.Dy()))
		if err := c.Stroke(); err != nil {
			return err
		}
	}
	c.SetRGB(0.9, 0.9, 0.9)
	label := string(d.Text)
	if d.focused && d.info.Frame/30%2 == 0 {
		label += "_"
	}
	c.DrawString(label, float64(tf.Min.X+6), float64(tf.Max.Y-9))

	return d.button(widgetQuit, "Quit")
}

func (d *DemoWindows) button(w widget, label string) error {
	c := d.ctx
	r := d.rect(w)
	switch {
	case d.pressed == w && d.mouse.In(r):
		c.SetRGB(0.2, 0.32, 0.52)
	case d.mouse.In(r):
		c.SetRGB(0.36, 0.52, 0.78)
	default:
		c.SetRGB(0.3, 0.46, 0.72)
	}
	c.DrawRoundedRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()), 4)
	if err := c.Fill(); err != nil {
		return err
	}
	c.SetRGB(1, 1, 1)
	c.DrawString(label, float64(r.Min.X+10), float64(r.Max.Y-9))
	return nil
}

func (d *DemoWindows) EndFrame() {}

func (d *DemoWindows) MouseMotion(x, y float32) {
	d.mouse = image.Pt(int(x), int(y))
	if d.pressed == widgetTitle {
		d.origin = d.mouse.Sub(d.drag)
	}
}

func (d *DemoWindows) MouseWheel(dx, dy float32) {}

func (d *DemoWindows) MouseButtonDown(button core.MouseButton, x, y float32) {
	if button != core.MouseLeft {
		return
	}
	d.mouse = image.Pt(int(x), int(y))
	d.pressed = d.hit(d.mouse)
	d.focused = d.pressed == widgetText
	if d.pressed == widgetTitle {
		d.drag = d.mouse.Sub(d.origin)
	}
}

// MouseButtonUp activates the widget under the cursor if it is the one the
// press started on.
func (d *DemoWindows) MouseButtonUp(button core.MouseButton, x, y float32) {
	if button != core.MouseLeft {
		return
	}
	d.mouse = image.Pt(int(x), int(y))
	pressed := d.pressed
	d.pressed = widgetNone
	if pressed == widgetNone || d.hit(d.mouse) != pressed {
		return
	}
	switch pressed {
	case widgetCounter:
		d.Counter++
	case widgetCheckbox:
		d.Checked = !d.Checked
	case widgetQuit:
		if d.OnQuit != nil {
			d.OnQuit()
		}
	}
}

func (d *DemoWindows) KeyDown(key core.Key, mods core.KeyMods) {
	if !d.focused {
		return
	}
	switch key {
	case core.KeyBackspace:
		if n := len(d.Text); n > 0 {
			d.Text = d.Text[:n-1]
		}
	case core.KeyEscape, core.KeyEnter:
		d.focused = false
	}
}

func (d *DemoWindows) KeyUp(key core.Key, mods core.KeyMods) {}

func (d *DemoWindows) Char(r rune, mods core.KeyMods) {
	if !d.focused || mods.Has(core.ModCtrl) || mods.Has(core.ModSuper) {
		return
	}
	if !unicode.IsPrint(r) || len(d.Text) >= maxTextLen {
		return
	}
	d.Text = append(d.Text, r)
}

var _ Adapter = (*DemoWindows)(nil)
