package software

import (
	"fmt"
	"image"
	stdmath "math"

	"crt-demo/core"
	"crt-demo/gfx"
	"crt-demo/math"
)

type clipVertex struct {
	x, y    float64 // pixel space, y down
	varying math.Vec2
}

// Draw rasterizes numElements indices starting at baseElement as a triangle
// list. Pixels are shaded at their centres when covered by a triangle.
// Instances repeat the same geometry since no per-instance data exists.
func (d *Device) Draw(baseElement, numElements, numInstances int) {
	p := d.pass
	if p == nil {
		d.fail(fmt.Errorf("Draw: %w", gfx.ErrNoActivePass))
		return
	}
	if p.img == nil {
		return
	}
	if p.pipeline == nil {
		d.fail(fmt.Errorf("Draw: %w", gfx.ErrUnknownPipeline))
		return
	}
	vb, ok := d.buffers[p.bindings.VertexBuffer]
	if !ok || vb.vertices == nil {
		d.fail(fmt.Errorf("Draw: unknown vertex buffer %d", p.bindings.VertexBuffer))
		return
	}
	ib, ok := d.buffers[p.bindings.IndexBuffer]
	if !ok || ib.indices == nil {
		d.fail(fmt.Errorf("Draw: unknown index buffer %d", p.bindings.IndexBuffer))
		return
	}
	if baseElement < 0 || baseElement+numElements > len(ib.indices) {
		d.fail(fmt.Errorf("Draw: elements [%d,%d) out of range of %d indices",
			baseElement, baseElement+numElements, len(ib.indices)))
		return
	}

	samplers := make([]gfx.Sampler, len(p.bindings.Images))
	for i, t := range p.bindings.Images {
		tex, ok := d.textures[t]
		if !ok {
			d.fail(fmt.Errorf("Draw: unknown texture %d", t))
			return
		}
		samplers[i] = Sampler{Image: tex.img, Filter: p.pipeline.desc.Filter}
	}

	desc := p.pipeline.desc
	stride := desc.Stride()
	size := p.img.Bounds().Size()

	for inst := 0; inst < numInstances; inst++ {
		for i := baseElement; i+2 < baseElement+numElements; i += 3 {
			var tri [3]clipVertex
			for k := 0; k < 3; k++ {
				idx := int(ib.indices[i+k])
				if (idx+1)*stride > len(vb.vertices) {
					d.fail(fmt.Errorf("Draw: index %d out of range", idx))
					return
				}
				attrs := vb.vertices[idx*stride : (idx+1)*stride]
				pos, varying := desc.Shader.Vertex(attrs, p.uniforms)
				tri[k] = clipVertex{
					x:       (float64(pos.X) + 1) / 2 * float64(size.X),
					y:       (1 - float64(pos.Y)) / 2 * float64(size.Y),
					varying: varying,
				}
			}
			rasterize(p.img, tri, func(v math.Vec2) core.Color {
				return desc.Shader.Fragment(samplers, v, p.uniforms)
			})
		}
	}
	d.stats.Draws++
}

func edge(a, b clipVertex, x, y float64) float64 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

func rasterize(dst *image.RGBA, tri [3]clipVertex, shade func(math.Vec2) core.Color) {
	area := edge(tri[0], tri[1], tri[2].x, tri[2].y)
	if area == 0 {
		return
	}

	bounds := dst.Bounds()
	minX := max(bounds.Min.X, int(stdmath.Floor(min(tri[0].x, tri[1].x, tri[2].x))))
	maxX := min(bounds.Max.X-1, int(stdmath.Ceil(max(tri[0].x, tri[1].x, tri[2].x))))
	minY := max(bounds.Min.Y, int(stdmath.Floor(min(tri[0].y, tri[1].y, tri[2].y))))
	maxY := min(bounds.Max.Y-1, int(stdmath.Ceil(max(tri[0].y, tri[1].y, tri[2].y))))

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(tri[1], tri[2], px, py) / area
			w1 := edge(tri[2], tri[0], px, py) / area
			w2 := edge(tri[0], tri[1], px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			v := math.Vec2{
				X: float32(w0*float64(tri[0].varying.X) + w1*float64(tri[1].varying.X) + w2*float64(tri[2].varying.X)),
				Y: float32(w0*float64(tri[0].varying.Y) + w1*float64(tri[1].varying.Y) + w2*float64(tri[2].varying.Y)),
			}
			dst.SetRGBA(x, y, shade(v).RGBA8())
		}
	}
}

// Sampler reads an RGBA8 image as an OpenGL texture would: (0,0) is the
// bottom-left corner and coordinates clamp to the edge.
type Sampler struct {
	Image  *image.RGBA
	Filter gfx.FilterMode
}

func (s Sampler) Sample(uv math.Vec2) core.Color {
	b := s.Image.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return core.ColorTransparent
	}
	if s.Filter == gfx.FilterNearest {
		x := clampTexel(stdmath.Floor(float64(uv.X)*float64(w)), w)
		y := clampTexel(stdmath.Floor(float64(uv.Y)*float64(h)), h)
		return s.texel(x, y)
	}

	tx := float64(uv.X)*float64(w) - 0.5
	ty := float64(uv.Y)*float64(h) - 0.5
	if stdmath.IsNaN(tx) || stdmath.IsNaN(ty) {
		return s.texel(0, 0)
	}
	fx0, fy0 := stdmath.Floor(tx), stdmath.Floor(ty)
	fx, fy := float32(tx-fx0), float32(ty-fy0)
	if stdmath.IsInf(tx, 0) {
		fx = 0
	}
	if stdmath.IsInf(ty, 0) {
		fy = 0
	}
	x0, x1 := clampTexel(fx0, w), clampTexel(fx0+1, w)
	y0, y1 := clampTexel(fy0, h), clampTexel(fy0+1, h)

	c00, c10 := s.texel(x0, y0), s.texel(x1, y0)
	c01, c11 := s.texel(x0, y1), s.texel(x1, y1)
	return lerpColor(lerpColor(c00, c10, fx), lerpColor(c01, c11, fx), fy)
}

// texel fetches column x of row y counted from the bottom.
func (s Sampler) texel(x, y int) core.Color {
	b := s.Image.Bounds()
	return core.ColorFromRGBA8(s.Image.RGBAAt(b.Min.X+x, b.Max.Y-1-y))
}

func clampTexel(v float64, n int) int {
	switch {
	case stdmath.IsNaN(v) || v < 0:
		return 0
	case v > float64(n-1):
		return n - 1
	}
	return int(v)
}

func lerpColor(a, b core.Color, t float32) core.Color {
	if t == 0 {
		return a
	}
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
