package renderer

import (
	"fmt"

	"crt-demo/crt"
	"crt-demo/geometry"
	"crt-demo/gfx"
)

// Composite is the immutable full-screen quad plus the CRT pipeline that
// draws it.
type Composite struct {
	Quad     *geometry.Quad
	Pipeline gfx.Pipeline
}

func NewComposite(dev gfx.Device, params crt.Params, filter gfx.FilterMode) (*Composite, error) {
	quad, err := geometry.NewQuad(dev)
	if err != nil {
		return nil, err
	}
	pip, err := dev.NewPipeline(gfx.PipelineDesc{
		Attributes: geometry.Attributes,
		Shader:     crt.ShaderDesc(params),
		Filter:     filter,
	})
	if err != nil {
		quad.Destroy(dev)
		return nil, fmt.Errorf("crt pipeline: %w", err)
	}
	return &Composite{Quad: quad, Pipeline: pip}, nil
}

func (c *Composite) Destroy(dev gfx.Device) {
	if c.Pipeline != 0 {
		dev.DeletePipeline(c.Pipeline)
		c.Pipeline = 0
	}
	c.Quad.Destroy(dev)
}
