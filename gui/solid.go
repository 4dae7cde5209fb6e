package gui

import (
	"image"
	"image/color"
	"image/draw"

	"crt-demo/core"
	"crt-demo/gfx"
)

// Solid covers the whole target with one colour and ignores input.
type Solid struct {
	Color core.Color

	img *image.RGBA
}

func NewSolid(c core.Color) *Solid {
	return &Solid{Color: c}
}

func (s *Solid) BeginFrame(FrameInfo) {}

func (s *Solid) Draw(p gfx.Painter) error {
	size := p.PassSize()
	if size.Empty() {
		return nil
	}
	if s.img == nil || s.img.Bounds().Dx() != size.Width || s.img.Bounds().Dy() != size.Height {
		s.img = image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	}
	c := s.Color.RGBA8()
	fill := color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	p.DrawImage(s.img)
	return nil
}

func (s *Solid) EndFrame() {}

func (s *Solid) MouseMotion(x, y float32)                           {}
func (s *Solid) MouseWheel(dx, dy float32)                          {}
func (s *Solid) MouseButtonDown(core.MouseButton, float32, float32) {}
func (s *Solid) MouseButtonUp(core.MouseButton, float32, float32)   {}
func (s *Solid) KeyDown(core.Key, core.KeyMods)                     {}
func (s *Solid) KeyUp(core.Key, core.KeyMods)                       {}
func (s *Solid) Char(rune, core.KeyMods)                            {}

var _ Adapter = (*Solid)(nil)
