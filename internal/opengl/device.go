// Package opengl implements gfx.Device on an OpenGL 4.1 core context. The
// context must be current on the calling goroutine for every call.
package opengl

import (
	"fmt"
	"image"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"crt-demo/core"
	"crt-demo/gfx"
)

type buffer struct {
	id     uint32
	target uint32
}

type pass struct {
	target   gfx.Texture
	size     core.Size
	pipeline *pipeline
	indexed  bool
}

// Device owns every GL object it hands out a handle for.
type Device struct {
	screen func() (int, int)

	targets   map[gfx.Texture]*renderTarget
	buffers   map[gfx.Buffer]*buffer
	pipelines map[gfx.Pipeline]*pipeline
	next      uint32

	blit    *blitter
	maxSize int32
	pass    *pass
}

// New loads GL entry points for the current context. screen reports the
// default framebuffer size in pixels.
func New(screen func() (int, int)) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("opengl init: %w", err)
	}
	gfx.Logger().Info("OpenGL context",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	d := &Device{
		screen:    screen,
		targets:   make(map[gfx.Texture]*renderTarget),
		buffers:   make(map[gfx.Buffer]*buffer),
		pipelines: make(map[gfx.Pipeline]*pipeline),
	}
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &d.maxSize)

	blit, err := newBlitter()
	if err != nil {
		return nil, fmt.Errorf("opengl blit program: %w", err)
	}
	d.blit = blit

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	return d, nil
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

// warn reports API misuse. GL itself would silently ignore most of these.
func (d *Device) warn(format string, args ...any) {
	gfx.Logger().Warn(fmt.Sprintf(format, args...))
}

func (d *Device) ScreenSize() core.Size {
	w, h := d.screen()
	return core.Size{Width: w, Height: h}
}

func (d *Device) NewVertexBuffer(data []float32) (gfx.Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("opengl: empty vertex buffer")
	}
	b := &buffer{target: gl.ARRAY_BUFFER}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	h := gfx.Buffer(d.handle())
	d.buffers[h] = b
	return h, nil
}

func (d *Device) NewIndexBuffer(data []uint16) (gfx.Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("opengl: empty index buffer")
	}
	b := &buffer{target: gl.ELEMENT_ARRAY_BUFFER}
	gl.GenBuffers(1, &b.id)
	// Element buffer bindings are VAO state; upload through ARRAY_BUFFER so no
	// VAO is touched.
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*2, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	h := gfx.Buffer(d.handle())
	d.buffers[h] = b
	return h, nil
}

func (d *Device) DeleteBuffer(h gfx.Buffer) {
	b, ok := d.buffers[h]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &b.id)
	delete(d.buffers, h)
}

func (d *Device) NewRenderTarget(size core.Size, format gfx.TextureFormat) (gfx.Texture, error) {
	if err := gfx.ValidateSize(size); err != nil {
		return 0, err
	}
	if format != gfx.FormatRGBA8 {
		return 0, fmt.Errorf("opengl: unsupported format %s", format)
	}
	rt, err := allocTarget(size, d.maxSize)
	if err != nil {
		return 0, err
	}
	h := gfx.Texture(d.handle())
	d.targets[h] = rt
	gfx.Logger().Debug("render target created", "handle", uint32(h), "size", size.String())
	return h, nil
}

func (d *Device) DeleteTexture(h gfx.Texture) {
	rt, ok := d.targets[h]
	if !ok {
		return
	}
	rt.free()
	delete(d.targets, h)
	gfx.Logger().Debug("render target released", "handle", uint32(h))
}

func (d *Device) TextureSize(h gfx.Texture) core.Size {
	if rt, ok := d.targets[h]; ok {
		return rt.size
	}
	return core.Size{}
}

func (d *Device) NewPipeline(desc gfx.PipelineDesc) (gfx.Pipeline, error) {
	p, err := newPipeline(desc)
	if err != nil {
		return 0, err
	}
	h := gfx.Pipeline(d.handle())
	d.pipelines[h] = p
	return h, nil
}

func (d *Device) DeletePipeline(h gfx.Pipeline) {
	p, ok := d.pipelines[h]
	if !ok {
		return
	}
	p.destroy()
	delete(d.pipelines, h)
}

func (d *Device) BeginPass(target gfx.Texture, action gfx.PassAction) {
	if d.pass != nil {
		d.warn("opengl: BeginPass inside an open pass")
	}
	p := &pass{target: target}
	if target == gfx.DefaultTarget {
		p.size = d.ScreenSize()
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	} else {
		rt, ok := d.targets[target]
		if !ok {
			d.warn("opengl: BeginPass on unknown target %d", target)
			return
		}
		p.size = rt.size
		gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
	}
	d.pass = p

	gl.Viewport(0, 0, int32(p.size.Width), int32(p.size.Height))
	if action.Clear {
		c := action.Color
		gl.ClearColor(c.R, c.G, c.B, c.A)
		gl.Clear(gl.COLOR_BUFFER_BIT)
	}
}

func (d *Device) ApplyPipeline(h gfx.Pipeline) {
	if d.pass == nil {
		d.warn("%v: ApplyPipeline", gfx.ErrNoActivePass)
		return
	}
	p, ok := d.pipelines[h]
	if !ok {
		d.warn("%v: %d", gfx.ErrUnknownPipeline, h)
		return
	}
	d.pass.pipeline = p
	d.pass.indexed = false
	gl.UseProgram(p.prog)
}

func (d *Device) ApplyBindings(b gfx.Bindings) {
	if d.pass == nil || d.pass.pipeline == nil {
		d.warn("%v: ApplyBindings without pipeline", gfx.ErrNoActivePass)
		return
	}
	vb, vok := d.buffers[b.VertexBuffer]
	ib, iok := d.buffers[b.IndexBuffer]
	if !vok || !iok {
		d.warn("opengl: ApplyBindings with unknown buffers %d/%d", b.VertexBuffer, b.IndexBuffer)
		return
	}
	d.pass.pipeline.bindBuffers(vb.id, ib.id)
	d.pass.indexed = true

	for i, h := range b.Images {
		rt, ok := d.targets[h]
		if !ok {
			d.warn("opengl: ApplyBindings with unknown image %d", h)
			continue
		}
		if h == d.pass.target {
			d.warn("opengl: pass samples its own render target %d", h)
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, rt.tex)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, d.pass.pipeline.filter)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, d.pass.pipeline.filter)
	}
}

func (d *Device) ApplyUniforms(data []float32) {
	if d.pass == nil || d.pass.pipeline == nil {
		d.warn("%v: ApplyUniforms without pipeline", gfx.ErrNoActivePass)
		return
	}
	if err := d.pass.pipeline.applyUniforms(data); err != nil {
		d.warn("%v", err)
	}
}

func (d *Device) Draw(base, n, instances int) {
	if d.pass == nil || d.pass.pipeline == nil || !d.pass.indexed {
		d.warn("%v: Draw without pipeline and bindings", gfx.ErrNoActivePass)
		return
	}
	if n <= 0 || instances <= 0 {
		return
	}
	gl.DrawElementsInstanced(gl.TRIANGLES, int32(n), gl.UNSIGNED_SHORT,
		gl.PtrOffset(base*2), int32(instances))
}

func (d *Device) EndPass() {
	if d.pass == nil {
		d.warn("%v: EndPass", gfx.ErrNoActivePass)
		return
	}
	d.pass = nil
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// CommitFrame surfaces any GL error raised during the frame.
func (d *Device) CommitFrame() {
	if d.pass != nil {
		d.warn("opengl: CommitFrame with an open pass")
		d.EndPass()
	}
	for e := gl.GetError(); e != gl.NO_ERROR; e = gl.GetError() {
		d.warn("opengl: GL error 0x%X", e)
	}
}

func (d *Device) PassSize() core.Size {
	if d.pass == nil {
		return core.Size{}
	}
	return d.pass.size
}

// DrawImage composites img over the current pass target. It resets the
// pipeline state, so callers apply their pipeline again afterwards.
func (d *Device) DrawImage(img image.Image) {
	if d.pass == nil {
		d.warn("%v: DrawImage", gfx.ErrNoActivePass)
		return
	}
	d.blit.draw(img, d.pass.size.Height)
	gl.Viewport(0, 0, int32(d.pass.size.Width), int32(d.pass.size.Height))
	d.pass.pipeline = nil
	d.pass.indexed = false
}

// Destroy releases every object the device still owns.
func (d *Device) Destroy() {
	for h := range d.targets {
		d.DeleteTexture(h)
	}
	for h := range d.buffers {
		d.DeleteBuffer(h)
	}
	for h := range d.pipelines {
		d.DeletePipeline(h)
	}
	if d.blit != nil {
		d.blit.destroy()
		d.blit = nil
	}
}

var _ gfx.Device = (*Device)(nil)
