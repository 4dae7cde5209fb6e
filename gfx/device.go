// Package gfx defines the command-style graphics API the renderer is written
// against. A Device records passes in a fixed order: begin a pass on a render
// target (or the default framebuffer), apply a pipeline, bindings and
// uniforms, draw, end the pass. Backends live under internal/.
package gfx

import (
	"errors"
	"fmt"
	"image"

	"crt-demo/core"
	"crt-demo/math"
)

var (
	ErrInvalidSize     = errors.New("gfx: invalid render target size")
	ErrNoActivePass    = errors.New("gfx: no active pass")
	ErrUnknownPipeline = errors.New("gfx: unknown pipeline")
)

// Texture, Buffer and Pipeline are backend handles. The zero value is never a
// live object.
type (
	Texture  uint32
	Buffer   uint32
	Pipeline uint32
)

// DefaultTarget selects the default framebuffer in BeginPass.
const DefaultTarget Texture = 0

// TextureFormat is the pixel layout of a texture.
type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
)

func (f TextureFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	}
	return fmt.Sprintf("TextureFormat(%d)", int(f))
}

// FilterMode selects texel filtering for sampled textures.
type FilterMode int

const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// PassAction describes what happens to the target when a pass begins.
type PassAction struct {
	Clear bool
	Color core.Color
}

// ClearColor returns a pass action that clears to c.
func ClearColor(c core.Color) PassAction {
	return PassAction{Clear: true, Color: c}
}

// Load keeps the existing target contents.
var Load = PassAction{}

// VertexFormat is the type of one vertex attribute.
type VertexFormat int

const (
	Float2 VertexFormat = iota
)

// Components returns the number of float32 values in the format.
func (f VertexFormat) Components() int {
	switch f {
	case Float2:
		return 2
	}
	return 0
}

// VertexAttribute names one input of a vertex program.
type VertexAttribute struct {
	Name   string
	Format VertexFormat
}

// UniformType is the float vector width of a uniform.
type UniformType int

const (
	UniformFloat1 UniformType = iota + 1
	UniformFloat2
	UniformFloat3
	UniformFloat4
)

// Components returns the number of float32 values in the uniform.
func (t UniformType) Components() int { return int(t) }

// UniformDesc declares one member of a pipeline's uniform block.
type UniformDesc struct {
	Name string
	Type UniformType
}

// Sampler reads a bound texture at normalized coordinates. (0,0) is the
// bottom-left corner, matching OpenGL texture space.
type Sampler interface {
	Sample(uv math.Vec2) core.Color
}

// VertexFunc is the CPU form of a vertex program. attrs holds one vertex's
// attribute values in layout order. It returns the clip-space position and
// the varying passed to the fragment stage.
type VertexFunc func(attrs []float32, uniforms []float32) (pos, varying math.Vec2)

// FragmentFunc is the CPU form of a fragment program.
type FragmentFunc func(images []Sampler, varying math.Vec2, uniforms []float32) core.Color

// ShaderDesc carries the same program in two forms: GLSL sources for GPU
// backends and Go functions for the software backend. A backend uses the
// form it can execute and ignores the other.
type ShaderDesc struct {
	VertexSource   string
	FragmentSource string
	Images         []string
	Uniforms       []UniformDesc

	Vertex   VertexFunc
	Fragment FragmentFunc
}

// UniformFloats returns the number of float32 values in the uniform block.
func (d ShaderDesc) UniformFloats() int {
	n := 0
	for _, u := range d.Uniforms {
		n += u.Type.Components()
	}
	return n
}

// PipelineDesc describes a shader program and its vertex layout.
type PipelineDesc struct {
	Attributes []VertexAttribute
	Shader     ShaderDesc
	Filter     FilterMode
}

// Stride returns the vertex stride in float32 values.
func (d PipelineDesc) Stride() int {
	n := 0
	for _, a := range d.Attributes {
		n += a.Format.Components()
	}
	return n
}

// Bindings selects the buffers and textures used by the next draw.
type Bindings struct {
	VertexBuffer Buffer
	IndexBuffer  Buffer
	Images       []Texture
}

// Painter is the view of a device that GUI content is drawn through. It
// writes into whichever target the current pass is bound to.
type Painter interface {
	// PassSize returns the size of the target bound to the current pass.
	PassSize() core.Size
	// DrawImage composites img over the current target with its top-left
	// corner at the target's top-left corner.
	DrawImage(img image.Image)
}

// Device is a single-threaded graphics context. All calls must come from the
// goroutine that owns the context.
type Device interface {
	Painter

	// ScreenSize returns the default framebuffer size in pixels.
	ScreenSize() core.Size

	NewVertexBuffer(data []float32) (Buffer, error)
	NewIndexBuffer(data []uint16) (Buffer, error)
	DeleteBuffer(b Buffer)

	// NewRenderTarget allocates a colour texture that can be both the target
	// of a pass and a sampled image. No depth or stencil is attached.
	NewRenderTarget(size core.Size, format TextureFormat) (Texture, error)
	DeleteTexture(t Texture)
	TextureSize(t Texture) core.Size

	NewPipeline(desc PipelineDesc) (Pipeline, error)
	DeletePipeline(p Pipeline)

	BeginPass(target Texture, action PassAction)
	ApplyPipeline(p Pipeline)
	ApplyBindings(b Bindings)
	ApplyUniforms(data []float32)
	Draw(baseElement, numElements, numInstances int)
	EndPass()

	// CommitFrame marks the end of a frame. Presentation itself is done by
	// the host (buffer swap).
	CommitFrame()
}

// ValidateSize reports ErrInvalidSize for empty extents.
func ValidateSize(size core.Size) error {
	if size.Empty() {
		return fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}
	return nil
}
