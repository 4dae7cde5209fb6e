package renderer

import (
	"fmt"

	"crt-demo/core"
	"crt-demo/gfx"
)

// Offscreen owns the single render target the GUI is drawn into. The
// generation increases every time the target is replaced, so a reader can
// tell whether a handle it was given is still the current one.
type Offscreen struct {
	dev  gfx.Device
	tex  gfx.Texture
	size core.Size
	gen  uint64
}

func NewOffscreen(dev gfx.Device, size core.Size) (*Offscreen, error) {
	o := &Offscreen{dev: dev}
	if err := o.Replace(size); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Offscreen) Texture() gfx.Texture { return o.tex }
func (o *Offscreen) Size() core.Size      { return o.size }
func (o *Offscreen) Generation() uint64   { return o.gen }

// Replace allocates a target of exactly size, makes it current and releases
// the previous one. If allocation fails the previous target stays current.
func (o *Offscreen) Replace(size core.Size) error {
	tex, err := o.dev.NewRenderTarget(size, gfx.FormatRGBA8)
	if err != nil {
		return fmt.Errorf("offscreen target %s: %w", size, err)
	}
	old := o.tex
	o.tex, o.size = tex, size
	o.gen++
	if old != 0 {
		o.dev.DeleteTexture(old)
	}
	gfx.Logger().Debug("offscreen target replaced", "size", size.String(), "generation", o.gen)
	return nil
}

// Destroy releases the target. It is safe to call more than once.
func (o *Offscreen) Destroy() {
	if o.tex == 0 {
		return
	}
	o.dev.DeleteTexture(o.tex)
	o.tex = 0
	o.size = core.Size{}
	o.gen++
}
