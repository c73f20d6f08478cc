package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/device"
	"github.com/Carmen-Shannon/oxy-frame/engine/fence"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/pacing"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultClearColor is the color every back buffer is cleared to.
var DefaultClearColor = wgpu.Color{R: 0.1, G: 0.25, B: 0.5, A: 0.0}

// Window is the part of the window collaborator the renderer reads each frame.
type Window interface {
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache    map[string]pipeline.Pipeline
	pendingPipelines []pipeline.Pipeline

	ctx     device.Context
	backend RendererBackend
	window  Window
	fence   *fence.Fence
	limiter pacing.FrameLimiter

	swapchain  *swapchain
	clearColor wgpu.Color
	recording  bool
	frameCount uint64
}

// Renderer owns the per-frame command submission sequence.
//
// BeginFrame and EndFrame bracket every frame on the frame-driving goroutine:
//  1. BeginFrame acquires the current back buffer, moves it PRESENT to RENDER_TARGET, clears it
//     and the depth surface, and sets a full-window viewport and scissor rect
//  2. Drawables record into CommandList, binding pipelines from Pipeline and the light group
//  3. EndFrame moves the back buffer RENDER_TARGET to PRESENT, submits, presents, signals the
//     fence and waits for the GPU, paces the frame, resets recording and advances the back buffer
//
// Exactly one frame is in flight. Calling BeginFrame twice, EndFrame without BeginFrame, or
// recording outside a frame panics with *FrameOrderError.
type Renderer interface {
	// Device returns the logical device, or nil for a renderer without a device context.
	Device() *wgpu.Device

	// Queue returns the command queue, or nil for a renderer without a device context.
	Queue() *wgpu.Queue

	// CommandList returns the live render pass encoder of the current frame.
	// Panics with *FrameOrderError outside BeginFrame/EndFrame.
	//
	// Returns:
	//   - *wgpu.RenderPassEncoder: the frame's render pass
	CommandList() *wgpu.RenderPassEncoder

	// Pipeline retrieves the registered Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the registered pipelines keyed by PipelineKey.
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the native objects for each pipeline and caches it by PipelineKey.
	// Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates GPU buffers and a bind group from a layout descriptor and stores them
	// on the given BindGroupProvider. Textures and samplers must be initialized via InitTextureView
	// and InitSampler before calling this method. Buffer usage and size can be overridden per binding.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferUsageOverrides: additional buffer usage flags to OR into the derived usage, keyed by binding index (nil safe)
	//   - bufferSizeOverrides: custom buffer sizes to use instead of MinBindingSize, keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView creates a GPU texture from staging data and stores the resulting texture view
	// on the given BindGroupProvider at the specified binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the binding index for this texture
	//   - stagingData: the pixel data and dimensions for the texture
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a GPU sampler from staging data and stores it on the given BindGroupProvider
	// at the specified binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	//
	// Returns:
	//   - error: an error if any write was rejected by the queue
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginFrame starts recording the next frame.
	//
	// Returns:
	//   - error: an error if the back buffer or the command encoder could not be obtained
	BeginFrame() error

	// SetBindGroup binds a bind group on the current frame's render pass. Bindings persist
	// across pipeline changes, so the light group can be bound once per frame at its slot.
	// Panics with *FrameOrderError outside BeginFrame/EndFrame.
	//
	// Parameters:
	//   - groupIndex: the group index
	//   - group: the bind group
	//   - dynamicOffsets: dynamic offsets, or nil
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)

	// DrawCall encodes one indexed, instanced draw with a registered pipeline. Nil entries in
	// bindGroups leave that group index as bound, e.g. the light group at its root slot.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the registered Pipeline to use
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: providers bound at their slice index
	//
	// Returns:
	//   - error: an error if the pipeline is not registered
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame submits and presents the frame, then blocks until the GPU has finished it.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// ClearColor returns the color back buffers are cleared to.
	ClearColor() wgpu.Color

	// FenceValue returns the last value signaled on the frame fence.
	FenceValue() uint64

	// CompletedFenceValue returns the last value the GPU has reached on the frame fence.
	CompletedFenceValue() uint64

	// BackBufferIndex returns the index of the back buffer the next frame renders to.
	BackBufferIndex() int

	// BackBufferState returns the tracked state of a back buffer.
	//
	// Parameters:
	//   - index: the back buffer index in [0, BackBufferCount)
	//
	// Returns:
	//   - ResourceState: StatePresent or StateRenderTarget
	BackBufferState(index int) ResourceState

	// FrameCount returns the number of frames completed by EndFrame.
	FrameCount() uint64

	// Release waits for the GPU and releases every pipeline and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the swapchain, the depth surface, the frame fence and the frame limiter
// for a device context and registers any pipelines given with WithPipelines.
//
// Parameters:
//   - ctx: the device context created for the window
//   - window: the window whose size drives the surface and the per-frame viewport
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the new Renderer
//   - error: an error if the surface, the depth surface or a pipeline could not be created
func NewRenderer(ctx device.Context, window Window, options ...RendererBuilderOption) (Renderer, error) {
	backend, err := newWGPURendererBackend(ctx, window.Width(), window.Height())
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer backend: %w", err)
	}
	f := fence.New(fence.WGPUQueue(ctx.Queue()), fence.WGPUPoller(ctx.Device()))

	r := newRenderer(backend, window, f, options...)
	r.ctx = ctx
	if err := r.RegisterPipelines(r.pendingPipelines...); err != nil {
		r.Release()
		return nil, err
	}
	r.pendingPipelines = nil

	w, h := backend.SurfaceExtent()
	logger.Logger().Info("renderer created", "width", w, "height", h, "backBuffers", BackBufferCount)
	return r, nil
}

// newRenderer assembles a renderer around an existing backend and fence.
func newRenderer(backend RendererBackend, window Window, f *fence.Fence, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backend:       backend,
		window:        window,
		fence:         f,
		swapchain:     newSwapchain(),
		clearColor:    DefaultClearColor,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.limiter == nil {
		r.limiter = pacing.NewFrameLimiter()
	}
	return r
}

func (r *renderer) Device() *wgpu.Device {
	if r.ctx == nil {
		return nil
	}
	return r.ctx.Device()
}

func (r *renderer) Queue() *wgpu.Queue {
	if r.ctx == nil {
		return nil
	}
	return r.ctx.Queue()
}

func (r *renderer) CommandList() *wgpu.RenderPassEncoder {
	if !r.recording {
		panic(&FrameOrderError{Op: "CommandList"})
	}
	return r.backend.RenderPass()
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("failed to register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
		logger.Logger().Debug("pipeline registered", "key", key)
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	if err := r.backend.WriteBuffers(writes); err != nil {
		return fmt.Errorf("failed to write buffers: %w", err)
	}
	return nil
}

func (r *renderer) BeginFrame() error {
	if r.recording {
		panic(&FrameOrderError{Op: "BeginFrame"})
	}

	view, err := r.backend.AcquireBackBuffer()
	if err != nil {
		return fmt.Errorf("failed to acquire back buffer %d: %w", r.swapchain.Current(), err)
	}
	r.swapchain.setView(view)
	r.swapchain.transition(StatePresent, StateRenderTarget)

	sw, sh := r.backend.SurfaceExtent()
	viewport, scissor := frameRect(r.window.Width(), r.window.Height(), sw, sh)
	if err := r.backend.BeginRenderPass(PassParams{
		Target:     r.swapchain.view(),
		ClearColor: r.clearColor,
		ClearDepth: DepthClearValue,
		Viewport:   viewport,
		Scissor:    scissor,
	}); err != nil {
		r.swapchain.transition(StateRenderTarget, StatePresent)
		r.backend.Present()
		r.backend.ResetCommands()
		return fmt.Errorf("failed to begin render pass: %w", err)
	}

	r.recording = true
	return nil
}

func (r *renderer) SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	if !r.recording {
		panic(&FrameOrderError{Op: "SetBindGroup"})
	}
	r.backend.SetBindGroup(groupIndex, group, dynamicOffsets)
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	if !r.recording {
		panic(&FrameOrderError{Op: "DrawCall"})
	}
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("render pipeline %q not registered", pipelineKey)
	}
	r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
	return nil
}

func (r *renderer) EndFrame() error {
	if !r.recording {
		panic(&FrameOrderError{Op: "EndFrame"})
	}
	r.recording = false

	r.swapchain.transition(StateRenderTarget, StatePresent)
	if err := r.backend.EndRenderPass(); err != nil {
		r.backend.Present()
		r.backend.ResetCommands()
		r.swapchain.advance()
		return fmt.Errorf("failed to close command list: %w", err)
	}
	r.backend.Submit()
	r.backend.Present()

	v := r.fence.Signal()
	r.fence.Wait(v)

	r.limiter.UpdateFixFPS()

	r.backend.ResetCommands()
	r.swapchain.advance()
	r.frameCount++
	return nil
}

func (r *renderer) ClearColor() wgpu.Color {
	return r.clearColor
}

func (r *renderer) FenceValue() uint64 {
	return r.fence.SignaledValue()
}

func (r *renderer) CompletedFenceValue() uint64 {
	return r.fence.CompletedValue()
}

func (r *renderer) BackBufferIndex() int {
	return r.swapchain.Current()
}

func (r *renderer) BackBufferState(index int) ResourceState {
	return r.swapchain.state(index)
}

func (r *renderer) FrameCount() uint64 {
	return r.frameCount
}

func (r *renderer) Release() {
	if v := r.fence.SignaledValue(); v > 0 {
		r.fence.Wait(v)
	}

	r.mu.Lock()
	for k, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, k)
	}
	r.mu.Unlock()

	r.limiter.Close()
	r.backend.Release()
}
