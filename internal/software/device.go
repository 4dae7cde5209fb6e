// Package software is a CPU implementation of gfx.Device. It rasterizes
// indexed triangles and runs the Go form of each pipeline's shader, so the
// whole two-pass pipeline can run headless and be inspected pixel by pixel.
package software

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"crt-demo/core"
	"crt-demo/gfx"
)

// MaxTextureSize mirrors a typical GL_MAX_TEXTURE_SIZE. Larger render
// targets are refused.
const MaxTextureSize = 16384

var ErrFeedbackLoop = errors.New("software: pass samples its own render target")

type texture struct {
	img    *image.RGBA
	format gfx.TextureFormat
}

type buffer struct {
	vertices []float32
	indices  []uint16
}

type pipeline struct {
	desc gfx.PipelineDesc
}

type pass struct {
	target   gfx.Texture
	img      *image.RGBA
	pipeline *pipeline
	bindings gfx.Bindings
	uniforms []float32
}

// Stats counts device activity since creation.
type Stats struct {
	Passes        int
	Draws         int
	Frames        int
	TargetsMade   int
	TargetsFreed  int
	FeedbackLoops int
}

// Device is the software gfx.Device.
type Device struct {
	screen    *image.RGBA
	textures  map[gfx.Texture]*texture
	buffers   map[gfx.Buffer]*buffer
	pipelines map[gfx.Pipeline]*pipeline
	next      uint32
	pass      *pass
	stats     Stats
	errs      []error
}

// New creates a device whose default framebuffer has the given size.
func New(screen core.Size) *Device {
	return &Device{
		screen:    image.NewRGBA(image.Rect(0, 0, screen.Width, screen.Height)),
		textures:  make(map[gfx.Texture]*texture),
		buffers:   make(map[gfx.Buffer]*buffer),
		pipelines: make(map[gfx.Pipeline]*pipeline),
	}
}

var _ gfx.Device = (*Device)(nil)

// SetScreenSize resizes the default framebuffer, as a window resize would.
// The contents are discarded.
func (d *Device) SetScreenSize(size core.Size) {
	d.screen = image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
}

// Screen returns the default framebuffer.
func (d *Device) Screen() *image.RGBA { return d.screen }

// TextureImage returns the pixels of a live texture, or nil.
func (d *Device) TextureImage(t gfx.Texture) *image.RGBA {
	if tex, ok := d.textures[t]; ok {
		return tex.img
	}
	return nil
}

// LiveTextures returns the number of textures not yet deleted.
func (d *Device) LiveTextures() int { return len(d.textures) }

// Stats returns the activity counters.
func (d *Device) Stats() Stats { return d.stats }

// Errors returns misuse detected so far: draws outside a pass, unknown
// handles, feedback loops.
func (d *Device) Errors() []error { return d.errs }

func (d *Device) fail(err error) {
	gfx.Logger().Warn("software device", "err", err)
	d.errs = append(d.errs, err)
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) ScreenSize() core.Size {
	b := d.screen.Bounds()
	return core.Size{Width: b.Dx(), Height: b.Dy()}
}

func (d *Device) NewVertexBuffer(data []float32) (gfx.Buffer, error) {
	if len(data) == 0 {
		return 0, errors.New("software: empty vertex buffer")
	}
	b := gfx.Buffer(d.handle())
	d.buffers[b] = &buffer{vertices: append([]float32(nil), data...)}
	return b, nil
}

func (d *Device) NewIndexBuffer(data []uint16) (gfx.Buffer, error) {
	if len(data) == 0 {
		return 0, errors.New("software: empty index buffer")
	}
	b := gfx.Buffer(d.handle())
	d.buffers[b] = &buffer{indices: append([]uint16(nil), data...)}
	return b, nil
}

func (d *Device) DeleteBuffer(b gfx.Buffer) {
	delete(d.buffers, b)
}

func (d *Device) NewRenderTarget(size core.Size, format gfx.TextureFormat) (gfx.Texture, error) {
	if err := gfx.ValidateSize(size); err != nil {
		return 0, err
	}
	if size.Width > MaxTextureSize || size.Height > MaxTextureSize {
		return 0, fmt.Errorf("software: render target %s exceeds max texture size %d", size, MaxTextureSize)
	}
	if format != gfx.FormatRGBA8 {
		return 0, fmt.Errorf("software: unsupported render target format %s", format)
	}
	t := gfx.Texture(d.handle())
	d.textures[t] = &texture{
		img:    image.NewRGBA(image.Rect(0, 0, size.Width, size.Height)),
		format: format,
	}
	d.stats.TargetsMade++
	return t, nil
}

func (d *Device) DeleteTexture(t gfx.Texture) {
	if _, ok := d.textures[t]; !ok {
		return
	}
	if d.pass != nil && d.pass.target == t {
		d.fail(fmt.Errorf("software: texture %d deleted while bound as pass target", t))
	}
	delete(d.textures, t)
	d.stats.TargetsFreed++
}

func (d *Device) TextureSize(t gfx.Texture) core.Size {
	tex, ok := d.textures[t]
	if !ok {
		return core.Size{}
	}
	b := tex.img.Bounds()
	return core.Size{Width: b.Dx(), Height: b.Dy()}
}

func (d *Device) NewPipeline(desc gfx.PipelineDesc) (gfx.Pipeline, error) {
	if desc.Shader.Vertex == nil || desc.Shader.Fragment == nil {
		return 0, errors.New("software: pipeline shader has no Go vertex/fragment functions")
	}
	if desc.Stride() == 0 {
		return 0, errors.New("software: pipeline has no vertex attributes")
	}
	p := gfx.Pipeline(d.handle())
	d.pipelines[p] = &pipeline{desc: desc}
	return p, nil
}

func (d *Device) DeletePipeline(p gfx.Pipeline) {
	delete(d.pipelines, p)
}

func (d *Device) BeginPass(target gfx.Texture, action gfx.PassAction) {
	if d.pass != nil {
		d.fail(errors.New("software: BeginPass while a pass is active"))
	}
	p := &pass{target: target}
	if target == gfx.DefaultTarget {
		p.img = d.screen
	} else if tex, ok := d.textures[target]; ok {
		p.img = tex.img
	} else {
		d.fail(fmt.Errorf("software: BeginPass on unknown texture %d", target))
	}
	if p.img != nil && action.Clear {
		c := action.Color.RGBA8()
		draw.Draw(p.img, p.img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}
	d.pass = p
	d.stats.Passes++
}

func (d *Device) ApplyPipeline(p gfx.Pipeline) {
	if d.pass == nil {
		d.fail(fmt.Errorf("ApplyPipeline: %w", gfx.ErrNoActivePass))
		return
	}
	pl, ok := d.pipelines[p]
	if !ok {
		d.fail(fmt.Errorf("ApplyPipeline %d: %w", p, gfx.ErrUnknownPipeline))
		return
	}
	d.pass.pipeline = pl
}

func (d *Device) ApplyBindings(b gfx.Bindings) {
	if d.pass == nil {
		d.fail(fmt.Errorf("ApplyBindings: %w", gfx.ErrNoActivePass))
		return
	}
	for _, img := range b.Images {
		if d.pass.target != gfx.DefaultTarget && img == d.pass.target {
			d.stats.FeedbackLoops++
			d.fail(fmt.Errorf("%w: texture %d", ErrFeedbackLoop, img))
		}
	}
	d.pass.bindings = b
}

func (d *Device) ApplyUniforms(data []float32) {
	if d.pass == nil {
		d.fail(fmt.Errorf("ApplyUniforms: %w", gfx.ErrNoActivePass))
		return
	}
	d.pass.uniforms = append(d.pass.uniforms[:0], data...)
}

func (d *Device) EndPass() {
	if d.pass == nil {
		d.fail(fmt.Errorf("EndPass: %w", gfx.ErrNoActivePass))
		return
	}
	d.pass = nil
}

func (d *Device) CommitFrame() {
	d.stats.Frames++
}

func (d *Device) PassSize() core.Size {
	if d.pass == nil || d.pass.img == nil {
		return d.ScreenSize()
	}
	b := d.pass.img.Bounds()
	return core.Size{Width: b.Dx(), Height: b.Dy()}
}

func (d *Device) DrawImage(img image.Image) {
	if d.pass == nil || d.pass.img == nil {
		d.fail(fmt.Errorf("DrawImage: %w", gfx.ErrNoActivePass))
		return
	}
	dst := d.pass.img
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Over)
}

// Pixel returns the default framebuffer colour at (x, y), with y counted
// from the top row.
func (d *Device) Pixel(x, y int) color.RGBA {
	return d.screen.RGBAAt(x, y)
}
