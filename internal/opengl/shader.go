package opengl

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"crt-demo/gfx"
)

type uniformSlot struct {
	loc    int32
	typ    gfx.UniformType
	offset int
}

type attribSlot struct {
	loc    uint32
	comps  int32
	offset int
}

type pipeline struct {
	prog     uint32
	vao      uint32
	filter   int32
	stride   int32
	attribs  []attribSlot
	uniforms []uniformSlot
	floats   int
}

func newPipeline(desc gfx.PipelineDesc) (*pipeline, error) {
	if desc.Shader.VertexSource == "" || desc.Shader.FragmentSource == "" {
		return nil, fmt.Errorf("opengl: pipeline has no GLSL sources")
	}
	prog, err := newProgram(desc.Shader.VertexSource, desc.Shader.FragmentSource)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		prog:   prog,
		filter: gl.LINEAR,
		stride: int32(desc.Stride() * 4),
		floats: desc.Shader.UniformFloats(),
	}
	if desc.Filter == gfx.FilterNearest {
		p.filter = gl.NEAREST
	}

	offset := 0
	for _, a := range desc.Attributes {
		loc := gl.GetAttribLocation(prog, gl.Str(a.Name+"\x00"))
		if loc < 0 {
			gl.DeleteProgram(prog)
			return nil, fmt.Errorf("opengl: attribute %q not found", a.Name)
		}
		p.attribs = append(p.attribs, attribSlot{
			loc:    uint32(loc),
			comps:  int32(a.Format.Components()),
			offset: offset,
		})
		offset += a.Format.Components()
	}

	offset = 0
	for _, u := range desc.Shader.Uniforms {
		// A uniform the compiler optimized away reports -1; writes to it are
		// ignored by GL.
		loc := gl.GetUniformLocation(prog, gl.Str(u.Name+"\x00"))
		p.uniforms = append(p.uniforms, uniformSlot{loc: loc, typ: u.Type, offset: offset})
		offset += u.Type.Components()
	}

	gl.UseProgram(prog)
	for i, name := range desc.Shader.Images {
		loc := gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
		gl.Uniform1i(loc, int32(i))
	}
	gl.UseProgram(0)

	gl.GenVertexArrays(1, &p.vao)
	return p, nil
}

func (p *pipeline) destroy() {
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.prog != 0 {
		gl.DeleteProgram(p.prog)
		p.prog = 0
	}
}

// bindBuffers points the pipeline's attributes at vbo. The element
// buffer binding is stored in the VAO as well.
func (p *pipeline) bindBuffers(vbo, ebo uint32) {
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	for _, a := range p.attribs {
		gl.EnableVertexAttribArray(a.loc)
		gl.VertexAttribPointer(a.loc, a.comps, gl.FLOAT, false, p.stride, gl.PtrOffset(a.offset*4))
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
}

func (p *pipeline) applyUniforms(data []float32) error {
	if len(data) < p.floats {
		return fmt.Errorf("opengl: %d uniform floats, pipeline wants %d", len(data), p.floats)
	}
	for _, u := range p.uniforms {
		v := &data[u.offset]
		switch u.typ {
		case gfx.UniformFloat1:
			gl.Uniform1fv(u.loc, 1, v)
		case gfx.UniformFloat2:
			gl.Uniform2fv(u.loc, 1, v)
		case gfx.UniformFloat3:
			gl.Uniform3fv(u.loc, 1, v)
		case gfx.UniformFloat4:
			gl.Uniform4fv(u.loc, 1, v)
		}
	}
	return nil
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc+"\x00", gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc+"\x00", gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
