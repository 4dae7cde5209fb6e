package crt

import (
	"fmt"
	"strconv"
	"strings"

	"crt-demo/core"
	"crt-demo/gfx"
	"crt-demo/math"
)

// Uniforms is the per-draw uniform block of the composite program.
type Uniforms struct {
	// Offset translates the quad in normalized device space.
	Offset math.Vec2
	// Resolution is the framebuffer size in pixels.
	Resolution math.Vec2
}

// Floats packs the block in UniformLayout order.
func (u Uniforms) Floats() []float32 {
	return []float32{u.Offset.X, u.Offset.Y, u.Resolution.X, u.Resolution.Y}
}

// UnpackUniforms is the inverse of Floats.
func UnpackUniforms(data []float32) Uniforms {
	var u Uniforms
	if len(data) >= 2 {
		u.Offset = math.Vec2{X: data[0], Y: data[1]}
	}
	if len(data) >= 4 {
		u.Resolution = math.Vec2{X: data[2], Y: data[3]}
	}
	return u
}

// UniformLayout is the composite uniform block, in the order Floats packs it.
var UniformLayout = []gfx.UniformDesc{
	{Name: "offset", Type: gfx.UniformFloat2},
	{Name: "resolution", Type: gfx.UniformFloat2},
}

// TextureName is the sampler bound to the offscreen target.
const TextureName = "tex"

// VertexSource positions the quad (plus offset) and forwards texcoords.
const VertexSource = `#version 410 core
layout(location = 0) in vec2 pos;
layout(location = 1) in vec2 uv;
uniform vec2 offset;
out vec2 texcoord;
void main() {
    gl_Position = vec4(pos + offset, 0.0, 1.0);
    texcoord = uv;
}
`

const fragmentTemplate = `#version 410 core
in vec2 texcoord;
out vec4 outColor;
uniform sampler2D tex;
uniform vec2 resolution;
const float warp = {{warp}};
const float scan = {{scan}};
const float split = {{split}};
void main() {
    vec2 uv = texcoord;
    vec2 dc = abs(0.5 - uv);
    dc *= dc;
    uv.x -= 0.5; uv.x *= 1.0 + (dc.y * (0.3 * warp)); uv.x += 0.5;
    uv.y -= 0.5; uv.y *= 1.0 + (dc.x * (0.4 * warp)); uv.y += 0.5;

    if (uv.y > 1.0 || uv.x < 0.0 || uv.x > 1.0 || uv.y < 0.0) {
        outColor = vec4(0.0, 0.0, 0.0, 1.0);
    } else {
        float apply = abs(sin(uv.y * resolution.y / 2.0) * 0.5 * scan);
        float r = texture(tex, vec2(uv.x + split / resolution.x, uv.y)).r;
        float g = texture(tex, uv).g;
        float b = texture(tex, vec2(uv.x - split / resolution.x, uv.y)).b;
        outColor = vec4(mix(vec3(r, g, b), vec3(0.0), apply), 1.0);
    }
}
`

// FragmentSource returns the GLSL fragment program with p baked in as
// constants.
func FragmentSource(p Params) string {
	return strings.NewReplacer(
		"{{warp}}", glslFloat(p.Warp),
		"{{scan}}", glslFloat(p.Scan),
		"{{split}}", glslFloat(p.Split),
	).Replace(fragmentTemplate)
}

// glslFloat formats f as a GLSL float literal. GLSL 4.10 rejects bare
// integers in float constants, so "1" becomes "1.0".
func glslFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// ShaderDesc returns the composite program in both GLSL and Go form.
func ShaderDesc(p Params) gfx.ShaderDesc {
	return gfx.ShaderDesc{
		VertexSource:   VertexSource,
		FragmentSource: FragmentSource(p),
		Images:         []string{TextureName},
		Uniforms:       UniformLayout,
		Vertex:         vertex,
		Fragment: func(images []gfx.Sampler, varying math.Vec2, uniforms []float32) core.Color {
			if len(images) == 0 {
				return core.ColorBlack
			}
			return p.Shade(images[0], varying, UnpackUniforms(uniforms).Resolution)
		},
	}
}

func vertex(attrs []float32, uniforms []float32) (pos, varying math.Vec2) {
	if len(attrs) < 4 {
		panic(fmt.Sprintf("crt: vertex has %d attributes, want 4", len(attrs)))
	}
	u := UnpackUniforms(uniforms)
	pos = math.Vec2{X: attrs[0], Y: attrs[1]}.Add(u.Offset)
	varying = math.Vec2{X: attrs[2], Y: attrs[3]}
	return pos, varying
}
