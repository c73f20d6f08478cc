package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithEntryPoints overrides the vertex and fragment entry point names (default vs_main and fs_main).
//
// Parameters:
//   - vertex: the vertex stage entry point
//   - fragment: the fragment stage entry point
//
// Returns:
//   - PipelineBuilderOption: a function that sets the entry points for this pipeline
func WithEntryPoints(vertex, fragment string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexEntryPoint = vertex
		p.fragmentEntryPoint = fragment
	}
}

// WithBindGroupLayout sets the layout descriptor for a bind group index. Lower indices left
// unset get an empty layout.
//
// Parameters:
//   - group: the bind group index
//   - descriptor: the layout descriptor for the group
//
// Returns:
//   - PipelineBuilderOption: a function that sets the bind group layout for this pipeline
func WithBindGroupLayout(group int, descriptor wgpu.BindGroupLayoutDescriptor) PipelineBuilderOption {
	return func(p *pipeline) {
		for len(p.groupLayouts) <= group {
			p.groupLayouts = append(p.groupLayouts, wgpu.BindGroupLayoutDescriptor{})
		}
		p.groupLayouts[group] = descriptor
	}
}

// WithVertexLayout appends a vertex buffer layout at the next vertex buffer slot.
//
// Parameters:
//   - layout: the vertex buffer layout
//
// Returns:
//   - PipelineBuilderOption: a function that adds the vertex layout to this pipeline
func WithVertexLayout(layout wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexLayouts = append(p.vertexLayouts, layout)
	}
}

// WithDepth sets the depth-stencil state against the renderer's depth surface. With test
// disabled the compare function is Always, so write alone still stamps depth.
//
// Parameters:
//   - test: whether fragments are compared against the depth buffer (Less)
//   - write: whether passing fragments store their depth
//
// Returns:
//   - PipelineBuilderOption: a function that applies the depth state to a pipeline
func WithDepth(test, write bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = test
		p.depthWriteEnabled = write
	}
}

// WithDepthBias offsets rasterized depth, e.g. for decals drawn over coplanar geometry.
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithBlendEnabled turns color blending on. The blend state defaults to straight alpha
// (src*a + dst*(1-a)) unless WithBlendState replaces it.
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithBlendState replaces the blend state used while blending is enabled. Nil writes the
// fragment color unblended.
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = blendState
	}
}

// WithCullMode sets which faces are discarded (none by default). Generated meshes are wound
// CCW, so back-face culling keeps their outward faces.
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithFrontFace sets the winding treated as front facing.
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithTopology sets how the index buffer is assembled into primitives.
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithWriteMask limits which channels of the back buffer are written.
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}
