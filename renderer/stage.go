package renderer

import (
	"errors"
	"fmt"

	"crt-demo/crt"
	"crt-demo/gfx"
	"crt-demo/gui"
	"crt-demo/math"
)

var (
	// ErrUnresolvedTarget is returned when the composite stage runs without
	// a finished GUI pass to read from.
	ErrUnresolvedTarget = errors.New("renderer: offscreen target not resolved")
	// ErrStaleTarget is returned when the offscreen target was replaced
	// after the GUI pass that resolved it.
	ErrStaleTarget = errors.New("renderer: offscreen target replaced after resolve")
)

// Resolved proves that a pass into the offscreen target has ended. It is
// consumed by the first stage that reads it.
type Resolved struct {
	Texture    gfx.Texture
	Generation uint64
}

// FrameState carries per-frame data between stages.
type FrameState struct {
	Info     gui.FrameInfo
	resolved *Resolved
}

// Resolve hands r to the next stage that calls Take.
func (f *FrameState) Resolve(r Resolved) {
	f.resolved = &r
}

// Take consumes the pending token, if any.
func (f *FrameState) Take() (Resolved, bool) {
	if f.resolved == nil {
		return Resolved{}, false
	}
	r := *f.resolved
	f.resolved = nil
	return r, true
}

// Stage is one pass of the frame. Stages run in list order.
type Stage interface {
	Name() string
	Run(dev gfx.Device, f *FrameState) error
}

// GUIStage draws the GUI into the offscreen target and resolves it.
type GUIStage struct {
	Target *Offscreen
	GUI    gui.Adapter
	Clear  gfx.PassAction
}

func (s *GUIStage) Name() string { return "gui" }

func (s *GUIStage) Run(dev gfx.Device, f *FrameState) error {
	s.GUI.BeginFrame(f.Info)
	dev.BeginPass(s.Target.Texture(), s.Clear)
	err := s.GUI.Draw(dev)
	dev.EndPass()
	s.GUI.EndFrame()
	if err != nil {
		return err
	}
	f.Resolve(Resolved{Texture: s.Target.Texture(), Generation: s.Target.Generation()})
	return nil
}

// CompositeStage draws the resolved offscreen target through the CRT
// pipeline onto the default framebuffer.
type CompositeStage struct {
	Target    *Offscreen
	Composite *Composite
	Clear     gfx.PassAction
	Offset    math.Vec2
}

func (s *CompositeStage) Name() string { return "composite" }

func (s *CompositeStage) Run(dev gfx.Device, f *FrameState) error {
	tok, ok := f.Take()
	if !ok {
		return ErrUnresolvedTarget
	}
	if tok.Generation != s.Target.Generation() || tok.Texture != s.Target.Texture() {
		return fmt.Errorf("%w: generation %d, current %d",
			ErrStaleTarget, tok.Generation, s.Target.Generation())
	}

	screen := dev.ScreenSize()
	uniforms := crt.Uniforms{
		Offset:     s.Offset,
		Resolution: math.Vec2{X: float32(screen.Width), Y: float32(screen.Height)},
	}

	dev.BeginPass(gfx.DefaultTarget, s.Clear)
	dev.ApplyPipeline(s.Composite.Pipeline)
	dev.ApplyBindings(s.Composite.Quad.Bindings(tok.Texture))
	dev.ApplyUniforms(uniforms.Floats())
	dev.Draw(0, s.Composite.Quad.IndexCount(), 1)
	dev.EndPass()
	dev.CommitFrame()
	return nil
}
