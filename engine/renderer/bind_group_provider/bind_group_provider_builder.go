package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindGroupLayout reuses an existing layout instead of letting the Renderer create one.
// Providers bound to the same pipeline group can share a single layout this way.
//
// Parameters:
//   - bgl: the bind group layout to reuse
//
// Returns:
//   - BindGroupProviderOption: a function that applies the layout option to a provider
func WithBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
	}
}

// WithBuffer attaches a pre-created buffer at the given binding so InitBindGroup skips allocating one.
//
// Parameters:
//   - binding: the binding index
//   - buf: the buffer to attach
//
// Returns:
//   - BindGroupProviderOption: a function that applies the buffer option to a provider
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}
