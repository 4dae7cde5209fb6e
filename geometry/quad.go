// Package geometry holds the static full-screen quad drawn by the composite
// pass.
package geometry

import (
	"fmt"

	"crt-demo/gfx"
	"crt-demo/math"
)

// Vertex is one corner of the quad: a position in normalized device space and
// the texture coordinate sampled there.
type Vertex struct {
	Pos math.Vec2
	UV  math.Vec2
}

// QuadVertices spans [-1,1]² with texcoords [0,1]² matching the corners.
var QuadVertices = [4]Vertex{
	{Pos: math.Vec2{X: -1, Y: -1}, UV: math.Vec2{X: 0, Y: 0}},
	{Pos: math.Vec2{X: 1, Y: -1}, UV: math.Vec2{X: 1, Y: 0}},
	{Pos: math.Vec2{X: 1, Y: 1}, UV: math.Vec2{X: 1, Y: 1}},
	{Pos: math.Vec2{X: -1, Y: 1}, UV: math.Vec2{X: 0, Y: 1}},
}

// QuadIndices are two counter-clockwise triangles covering the quad.
var QuadIndices = [6]uint16{0, 1, 2, 0, 2, 3}

// Attributes is the vertex layout matching Vertex.
var Attributes = []gfx.VertexAttribute{
	{Name: "pos", Format: gfx.Float2},
	{Name: "uv", Format: gfx.Float2},
}

// VertexData flattens vertices into the interleaved float layout described by
// Attributes.
func VertexData(vertices []Vertex) []float32 {
	data := make([]float32, 0, len(vertices)*4)
	for _, v := range vertices {
		data = append(data, v.Pos.X, v.Pos.Y, v.UV.X, v.UV.Y)
	}
	return data
}

// Quad is the uploaded full-screen quad. It is immutable once created.
type Quad struct {
	Vertices gfx.Buffer
	Indices  gfx.Buffer
}

// NewQuad uploads the quad's vertex and index buffers.
func NewQuad(dev gfx.Device) (*Quad, error) {
	vb, err := dev.NewVertexBuffer(VertexData(QuadVertices[:]))
	if err != nil {
		return nil, fmt.Errorf("quad vertex buffer: %w", err)
	}
	ib, err := dev.NewIndexBuffer(QuadIndices[:])
	if err != nil {
		dev.DeleteBuffer(vb)
		return nil, fmt.Errorf("quad index buffer: %w", err)
	}
	return &Quad{Vertices: vb, Indices: ib}, nil
}

// IndexCount is the number of indices issued by a single quad draw.
func (q *Quad) IndexCount() int { return len(QuadIndices) }

// Bindings returns the buffer bindings for a draw sampling images.
func (q *Quad) Bindings(images ...gfx.Texture) gfx.Bindings {
	return gfx.Bindings{
		VertexBuffer: q.Vertices,
		IndexBuffer:  q.Indices,
		Images:       images,
	}
}

func (q *Quad) Destroy(dev gfx.Device) {
	if q.Vertices != 0 {
		dev.DeleteBuffer(q.Vertices)
		q.Vertices = 0
	}
	if q.Indices != 0 {
		dev.DeleteBuffer(q.Indices)
		q.Indices = 0
	}
}
