package renderer

import (
	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Viewport is the rasterizer viewport set at the start of each frame.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// ScissorRect is the scissor rectangle set at the start of each frame.
type ScissorRect struct {
	X, Y, Width, Height uint32
}

// PassParams describes how the frame's render pass starts.
type PassParams struct {
	Target     *wgpu.TextureView
	ClearColor wgpu.Color
	ClearDepth float32
	Viewport   Viewport
	Scissor    ScissorRect
}

// frameRect returns the full-window viewport and scissor rect for a window of the given size,
// clamped to the surface extent since the surface is never resized.
func frameRect(windowWidth, windowHeight int, surfaceWidth, surfaceHeight uint32) (Viewport, ScissorRect) {
	w := uint32(common.Clamp(windowWidth, 0, int(surfaceWidth)))
	h := uint32(common.Clamp(windowHeight, 0, int(surfaceHeight)))
	return Viewport{
			Width:    float32(w),
			Height:   float32(h),
			MinDepth: 0,
			MaxDepth: 1,
		}, ScissorRect{
			Width:  w,
			Height: h,
		}
}

// RendererBackend is the native side of the renderer. The Renderer sequences frames, tracks
// resource states and owns synchronization; the backend issues the native calls.
type RendererBackend interface {
	// SurfaceExtent returns the size the surface and the depth buffer were created with.
	//
	// Returns:
	//   - uint32: the width in pixels
	//   - uint32: the height in pixels
	SurfaceExtent() (uint32, uint32)

	// AcquireBackBuffer acquires the surface texture for this frame and creates its
	// render target view.
	//
	// Returns:
	//   - *wgpu.TextureView: the render target view
	//   - error: an error if the surface texture could not be acquired
	AcquireBackBuffer() (*wgpu.TextureView, error)

	// BeginRenderPass creates the frame's command encoder and begins the render pass with the
	// target and depth cleared, then sets the viewport and scissor rect.
	//
	// Parameters:
	//   - params: the target, clear values, viewport and scissor rect
	//
	// Returns:
	//   - error: an error if the command encoder could not be created
	BeginRenderPass(params PassParams) error

	// RenderPass returns the live render pass encoder, or nil outside a frame.
	RenderPass() *wgpu.RenderPassEncoder

	// EndRenderPass ends the render pass and finishes the command encoder. Nothing is
	// finished when ending the pass fails.
	//
	// Returns:
	//   - error: an error if the pass could not be ended or the command buffer finished
	EndRenderPass() error

	// Submit submits the finished command buffer to the queue.
	Submit()

	// Present presents the acquired surface texture and releases it.
	Present()

	// ResetCommands releases the frame's encoder and command buffer so recording can start
	// again next frame.
	ResetCommands()

	// SetBindGroup binds a bind group on the current render pass.
	//
	// Parameters:
	//   - groupIndex: the group index
	//   - group: the bind group
	//   - dynamicOffsets: dynamic offsets, or nil
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)

	// DrawCall encodes one indexed, instanced draw in the current render pass. Nil entries in
	// bindGroups leave that group index untouched.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: providers bound at their slice index
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// RegisterRenderPipeline creates the shader module, bind group layouts, pipeline layout
	// and render pipeline for p and stores them on it.
	//
	// Parameters:
	//   - p: the pipeline bundle
	//
	// Returns:
	//   - error: an error if any native object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers creates vertex and index buffers and stores them on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the buffers on
	//   - vertexData: the raw vertex data bytes
	//   - indexData: the raw index data bytes
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if a buffer could not be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates buffers and a bind group from a layout descriptor and stores them on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the bind group on
	//   - descriptor: the layout descriptor
	//   - bufferUsageOverrides: extra usage flags per binding (nil safe)
	//   - bufferSizeOverrides: buffer sizes per binding instead of MinBindingSize (nil safe)
	//
	// Returns:
	//   - error: an error if a resource could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView uploads an RGBA texture and stores its view on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the view on
	//   - bindingKey: the binding index
	//   - stagingData: the pixels and dimensions
	//
	// Returns:
	//   - error: an error if the texture could not be created
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler and stores it on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the sampler on
	//   - bindingKey: the binding index
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if the sampler could not be created
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers issues every write on the queue.
	//
	// Parameters:
	//   - writes: the buffer writes
	//
	// Returns:
	//   - error: the joined errors of the writes that failed
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// Release releases the depth surface and any frame objects still held.
	Release()
}
