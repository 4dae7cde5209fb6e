package geometry

import (
	"errors"
	"fmt"
	"io"
	gomath "math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"crt-demo/math"
)

// MeshName is the glTF mesh name used for the exported quad.
const MeshName = "fullscreen-quad"

// WriteGLB encodes the full-screen quad as a binary glTF asset so the
// geometry can be inspected in standard asset viewers. Positions are written
// as vec3 with z = 0.
func WriteGLB(w io.Writer) error {
	doc := gltf.NewDocument()

	positions := make([][3]float32, len(QuadVertices))
	uvs := make([][2]float32, len(QuadVertices))
	for i, v := range QuadVertices {
		positions[i] = [3]float32{v.Pos.X, v.Pos.Y, 0}
		uvs[i] = [2]float32{v.UV.X, v.UV.Y}
	}

	posIdx := modeler.WritePosition(doc, positions)
	uvIdx := modeler.WriteTextureCoord(doc, uvs)
	indices := modeler.WriteIndices(doc, QuadIndices[:])

	doc.Meshes = []*gltf.Mesh{{
		Name: MeshName,
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(indices),
			Attributes: map[string]int{
				"POSITION":   posIdx,
				"TEXCOORD_0": uvIdx,
			},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: MeshName, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode glb: %w", err)
	}
	return nil
}

// ReadGLB decodes the first primitive of the first mesh in a binary glTF
// asset into quad vertices and indices.
func ReadGLB(r io.Reader) ([]Vertex, []uint16, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, nil, fmt.Errorf("decode glb: %w", err)
	}
	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return nil, nil, errors.New("glb has no mesh primitives")
	}
	prim := doc.Meshes[0].Primitives[0]
	accessor := func(i int) (*gltf.Accessor, error) {
		if i < 0 || i >= len(doc.Accessors) || doc.Accessors[i] == nil {
			return nil, fmt.Errorf("accessor %d out of range (%d accessors)", i, len(doc.Accessors))
		}
		return doc.Accessors[i], nil
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, nil, errors.New("no POSITION attribute")
	}
	acc, err := accessor(posIdx)
	if err != nil {
		return nil, nil, fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("positions: %w", err)
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		acc, err := accessor(idx)
		if err != nil {
			return nil, nil, fmt.Errorf("texcoords: %w", err)
		}
		uvs, err = modeler.ReadTextureCoord(doc, acc, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("texcoords: %w", err)
		}
	}

	verts := make([]Vertex, len(positions))
	for i, p := range positions {
		verts[i].Pos = math.Vec2{X: p[0], Y: p[1]}
		if i < len(uvs) {
			verts[i].UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
	}

	if prim.Indices == nil {
		return verts, nil, nil
	}
	acc, err = accessor(*prim.Indices)
	if err != nil {
		return nil, nil, fmt.Errorf("indices: %w", err)
	}
	raw, err := modeler.ReadIndices(doc, acc, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("indices: %w", err)
	}
	indices := make([]uint16, len(raw))
	for i, v := range raw {
		if v > gomath.MaxUint16 {
			return nil, nil, fmt.Errorf("index %d is %d, beyond 16-bit range", i, v)
		}
		indices[i] = uint16(v)
	}
	return verts, indices, nil
}
