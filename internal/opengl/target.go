package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"crt-demo/core"
)

// renderTarget is an RGBA8 colour texture attached to its own framebuffer.
// No depth attachment: the passes drawn into it are flat 2D.
type renderTarget struct {
	fbo  uint32
	tex  uint32
	size core.Size
}

func allocTarget(size core.Size, maxSize int32) (*renderTarget, error) {
	if int32(size.Width) > maxSize || int32(size.Height) > maxSize {
		return nil, fmt.Errorf("opengl: render target %s exceeds GL_MAX_TEXTURE_SIZE %d", size, maxSize)
	}
	rt := &renderTarget{size: size}

	gl.GenTextures(1, &rt.tex)
	gl.BindTexture(gl.TEXTURE_2D, rt.tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(size.Width), int32(size.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.GenFramebuffers(1, &rt.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, rt.tex, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		rt.free()
		return nil, fmt.Errorf("opengl: render target FBO incomplete: status=0x%X", status)
	}
	if e := gl.GetError(); e != gl.NO_ERROR {
		rt.free()
		return nil, fmt.Errorf("opengl: render target %s: GL error 0x%X", size, e)
	}
	return rt, nil
}

func (rt *renderTarget) free() {
	if rt.fbo != 0 {
		gl.DeleteFramebuffers(1, &rt.fbo)
		rt.fbo = 0
	}
	if rt.tex != 0 {
		gl.DeleteTextures(1, &rt.tex)
		rt.tex = 0
	}
}
