package opengl

import (
	"image"
	"image/draw"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// blitVertSrc covers the viewport with one oversized triangle built from
// gl_VertexID. Images are stored top row first, so v is flipped.
const blitVertSrc = `#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    vec2 uv = pos[gl_VertexID] * 0.5 + 0.5;
    fragUV = vec2(uv.x, 1.0 - uv.y);
}
`

const blitFragSrc = `#version 410 core
in vec2 fragUV;
out vec4 outColor;
uniform sampler2D image;
void main() {
    outColor = texture(image, fragUV);
}
`

// blitter uploads CPU-painted images into a staging texture and draws them
// over the current pass target with premultiplied-alpha blending.
type blitter struct {
	prog uint32
	vao  uint32
	tex  uint32
	w, h int32
	rgba *image.RGBA
}

func newBlitter() (*blitter, error) {
	prog, err := newProgram(blitVertSrc, blitFragSrc)
	if err != nil {
		return nil, err
	}
	b := &blitter{prog: prog}
	gl.UseProgram(prog)
	gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str("image\x00")), 0)
	gl.UseProgram(0)

	gl.GenVertexArrays(1, &b.vao)
	gl.GenTextures(1, &b.tex)
	gl.BindTexture(gl.TEXTURE_2D, b.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return b, nil
}

// upload copies img into the staging texture, reallocating it when the
// extent changes.
func (b *blitter) upload(img image.Image) {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() || bounds.Min != (image.Point{}) {
		if b.rgba == nil || b.rgba.Bounds().Size() != bounds.Size() {
			b.rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		}
		draw.Draw(b.rgba, b.rgba.Bounds(), img, bounds.Min, draw.Src)
		rgba = b.rgba
	}

	w, h := int32(bounds.Dx()), int32(bounds.Dy())
	gl.BindTexture(gl.TEXTURE_2D, b.tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	if w != b.w || h != b.h {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
		b.w, b.h = w, h
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, w, h, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	}
}

// draw covers a viewport of the image's size anchored at the top-left of a
// target targetH pixels tall.
func (b *blitter) draw(img image.Image, targetH int) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return
	}
	b.upload(img)

	gl.Viewport(0, int32(targetH-bounds.Dy()), int32(bounds.Dx()), int32(bounds.Dy()))
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	gl.UseProgram(b.prog)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, b.tex)
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.Disable(gl.BLEND)
}

func (b *blitter) destroy() {
	if b.tex != 0 {
		gl.DeleteTextures(1, &b.tex)
		b.tex = 0
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	if b.prog != 0 {
		gl.DeleteProgram(b.prog)
		b.prog = 0
	}
}
