package renderer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/fence"
	"github.com/Carmen-Shannon/oxy-frame/engine/pacing"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records the native calls made by the renderer.
type fakeBackend struct {
	calls       []string
	params      []PassParams
	width       uint32
	height      uint32
	acquireErr  error
	endErr      error
	writeErr    error
	registered  []string
	registerFn  func(p pipeline.Pipeline) error
	writes      []bind_group_provider.BufferWrite
	draws       int
	boundGroups []uint32
	released    bool
	queue       *fakeQueue
}

func (b *fakeBackend) SurfaceExtent() (uint32, uint32) { return b.width, b.height }

func (b *fakeBackend) AcquireBackBuffer() (*wgpu.TextureView, error) {
	b.calls = append(b.calls, "acquire")
	return nil, b.acquireErr
}

func (b *fakeBackend) BeginRenderPass(params PassParams) error {
	b.calls = append(b.calls, "begin")
	b.params = append(b.params, params)
	return nil
}

func (b *fakeBackend) RenderPass() *wgpu.RenderPassEncoder { return nil }

func (b *fakeBackend) EndRenderPass() error {
	b.calls = append(b.calls, "close")
	return b.endErr
}

func (b *fakeBackend) Submit() {
	b.calls = append(b.calls, "submit")
	if b.queue != nil {
		b.queue.submitted++
	}
}

func (b *fakeBackend) Present()       { b.calls = append(b.calls, "present") }
func (b *fakeBackend) ResetCommands() { b.calls = append(b.calls, "reset") }

func (b *fakeBackend) SetBindGroup(groupIndex uint32, _ *wgpu.BindGroup, _ []uint32) {
	b.boundGroups = append(b.boundGroups, groupIndex)
}

func (b *fakeBackend) DrawCall(pipeline.Pipeline, bind_group_provider.BindGroupProvider, uint32, []bind_group_provider.BindGroupProvider) {
	b.draws++
}

func (b *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if b.registerFn != nil {
		if err := b.registerFn(p); err != nil {
			return err
		}
	}
	b.registered = append(b.registered, p.PipelineKey())
	return nil
}

func (b *fakeBackend) InitMeshBuffers(bind_group_provider.BindGroupProvider, []byte, []byte, int) error {
	return nil
}

func (b *fakeBackend) InitBindGroup(bind_group_provider.BindGroupProvider, wgpu.BindGroupLayoutDescriptor, map[int]wgpu.BufferUsage, map[int]uint64) error {
	return nil
}

func (b *fakeBackend) InitTextureView(bind_group_provider.BindGroupProvider, int, common.TextureStagingData) error {
	return nil
}

func (b *fakeBackend) InitSampler(bind_group_provider.BindGroupProvider, int, common.SamplerStagingData) error {
	return nil
}

func (b *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	b.writes = append(b.writes, writes...)
	return b.writeErr
}

func (b *fakeBackend) Release() { b.released = true }

// fakeQueue completes pending work-done callbacks when polled.
type fakeQueue struct {
	mu        sync.Mutex
	pending   []func(bool)
	submitted int
	polls     int
}

func (q *fakeQueue) OnSubmittedWorkDone(cb func(ok bool)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, cb)
}

func (q *fakeQueue) Poll() {
	q.mu.Lock()
	q.polls++
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, cb := range pending {
		cb(true)
	}
}

type fakeWindow struct {
	width, height int
}

func (w *fakeWindow) Width() int  { return w.width }
func (w *fakeWindow) Height() int { return w.height }

// fakeClock advances only when slept on.
type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration    { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now += d }

func newTestRenderer(t *testing.T, options ...RendererBuilderOption) (*renderer, *fakeBackend, *fakeWindow) {
	t.Helper()
	q := &fakeQueue{}
	b := &fakeBackend{width: 1280, height: 720, queue: q}
	w := &fakeWindow{width: 1280, height: 720}
	limiter := pacing.NewFrameLimiter(pacing.WithClock(&fakeClock{}))
	opts := append([]RendererBuilderOption{WithFrameLimiter(limiter)}, options...)
	return newRenderer(b, w, fence.New(q, q), opts...), b, w
}

func TestFrameSequence(t *testing.T) {
	r, b, _ := newTestRenderer(t)

	require.NoError(t, r.BeginFrame())
	assert.Equal(t, StateRenderTarget, r.BackBufferState(0))
	require.NoError(t, r.EndFrame())

	assert.Equal(t, []string{"acquire", "begin", "close", "submit", "present", "reset"}, b.calls)
	assert.Equal(t, StatePresent, r.BackBufferState(0))
	assert.Equal(t, uint64(1), r.FrameCount())
}

func TestBeginFrameClearsAndSetsViewport(t *testing.T) {
	r, b, _ := newTestRenderer(t)

	require.NoError(t, r.BeginFrame())
	require.Len(t, b.params, 1)
	p := b.params[0]
	assert.Equal(t, wgpu.Color{R: 0.1, G: 0.25, B: 0.5, A: 0.0}, p.ClearColor)
	assert.Equal(t, float32(1.0), p.ClearDepth)
	assert.Equal(t, Viewport{Width: 1280, Height: 720, MinDepth: 0, MaxDepth: 1}, p.Viewport)
	assert.Equal(t, ScissorRect{Width: 1280, Height: 720}, p.Scissor)
}

func TestViewportClampedToSurface(t *testing.T) {
	r, b, w := newTestRenderer(t)
	w.width, w.height = 1920, 600

	require.NoError(t, r.BeginFrame())
	assert.Equal(t, float32(1280), b.params[0].Viewport.Width)
	assert.Equal(t, float32(600), b.params[0].Viewport.Height)
	assert.Equal(t, ScissorRect{Width: 1280, Height: 600}, b.params[0].Scissor)
}

func TestFrameRectNegativeWindow(t *testing.T) {
	vp, sc := frameRect(-5, 10, 100, 100)
	assert.Equal(t, float32(0), vp.Width)
	assert.Equal(t, uint32(0), sc.Width)
	assert.Equal(t, uint32(10), sc.Height)
}

func TestBackBufferIndexCycles(t *testing.T) {
	r, _, _ := newTestRenderer(t)

	var seen []int
	for i := 0; i < 4; i++ {
		seen = append(seen, r.BackBufferIndex())
		require.NoError(t, r.BeginFrame())
		require.NoError(t, r.EndFrame())
	}
	assert.Equal(t, []int{0, 1, 0, 1}, seen)
	assert.Equal(t, StatePresent, r.BackBufferState(0))
	assert.Equal(t, StatePresent, r.BackBufferState(1))
}

func TestFenceValuesIncreaseAndEndFrameWaits(t *testing.T) {
	r, b, _ := newTestRenderer(t)

	var last uint64
	for i := 0; i < 3; i++ {
		require.NoError(t, r.BeginFrame())
		require.NoError(t, r.EndFrame())
		assert.Greater(t, r.FenceValue(), last)
		assert.Equal(t, r.FenceValue(), r.CompletedFenceValue())
		last = r.FenceValue()
	}
	assert.Equal(t, 3, b.queue.submitted)
	assert.Positive(t, b.queue.polls)
}

func TestEndFramePacesToMinimumFrameTime(t *testing.T) {
	clk := &fakeClock{}
	q := &fakeQueue{}
	b := &fakeBackend{width: 64, height: 64, queue: q}
	r := newRenderer(b, &fakeWindow{64, 64}, fence.New(q, q),
		WithFrameLimiter(pacing.NewFrameLimiter(pacing.WithClock(clk))))

	start := clk.now
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.EndFrame())
	assert.GreaterOrEqual(t, clk.now-start, pacing.MinFrameTime)
}

func TestFrameOrderViolationsPanic(t *testing.T) {
	r, _, _ := newTestRenderer(t)

	assert.PanicsWithError(t, "renderer: EndFrame called out of frame order", func() { _ = r.EndFrame() })
	assert.Panics(t, func() { r.CommandList() })
	assert.Panics(t, func() { _ = r.DrawCall("sprite", nil, 1, nil) })

	require.NoError(t, r.BeginFrame())
	assert.PanicsWithError(t, "renderer: BeginFrame called out of frame order", func() { _ = r.BeginFrame() })
}

func TestAcquireFailure(t *testing.T) {
	r, b, _ := newTestRenderer(t)
	b.acquireErr = errors.New("surface lost")

	err := r.BeginFrame()
	require.Error(t, err)
	assert.ErrorIs(t, err, b.acquireErr)
	assert.Equal(t, StatePresent, r.BackBufferState(0))
	assert.Panics(t, func() { _ = r.EndFrame() })
}

func TestCloseFailureResetsFrame(t *testing.T) {
	r, b, _ := newTestRenderer(t)
	b.endErr = errors.New("invalid encoder")

	require.NoError(t, r.BeginFrame())
	err := r.EndFrame()
	require.Error(t, err)
	assert.ErrorIs(t, err, b.endErr)
	assert.Equal(t, uint64(0), r.FenceValue())
	assert.Contains(t, b.calls, "reset")

	b.endErr = nil
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.EndFrame())
}

func TestTransitionLegality(t *testing.T) {
	assert.Nil(t, checkTransition("bb", StatePresent, StatePresent, StateRenderTarget))
	assert.Nil(t, checkTransition("bb", StateRenderTarget, StateRenderTarget, StatePresent))

	err := checkTransition("bb", StatePresent, StateRenderTarget, StatePresent)
	require.NotNil(t, err)
	assert.Equal(t, "renderer: bb is PRESENT, not RENDER_TARGET, for transition to PRESENT", err.Error())

	err = checkTransition("bb", StatePresent, StatePresent, StateDepthWrite)
	require.NotNil(t, err)
	assert.Equal(t, "renderer: illegal transition of bb from PRESENT to DEPTH_WRITE", err.Error())
}

func TestSwapchainTransitionPanics(t *testing.T) {
	s := newSwapchain()
	assert.PanicsWithError(t, "renderer: back buffer 0 is PRESENT, not RENDER_TARGET, for transition to PRESENT", func() {
		s.transition(StateRenderTarget, StatePresent)
	})
}

func TestRegisterPipelines(t *testing.T) {
	r, b, _ := newTestRenderer(t)

	require.NoError(t, r.RegisterPipelines(pipeline.NewSpritePipeline(), pipeline.NewObject3DPipeline()))
	require.NoError(t, r.RegisterPipelines(pipeline.NewSpritePipeline()))

	assert.Equal(t, []string{"sprite", "object3D"}, b.registered)
	assert.NotNil(t, r.Pipeline("sprite"))
	assert.NotNil(t, r.Pipeline("object3D"))
	assert.Nil(t, r.Pipeline("missing"))
	assert.Len(t, r.Pipelines(), 2)
}

func TestRegisterPipelineFailure(t *testing.T) {
	r, b, _ := newTestRenderer(t)
	b.registerFn = func(p pipeline.Pipeline) error { return errors.New("bad wgsl") }

	err := r.RegisterPipelines(pipeline.NewSpritePipeline())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"sprite"`)
	assert.Nil(t, r.Pipeline("sprite"))
}

func TestDrawCall(t *testing.T) {
	r, b, _ := newTestRenderer(t)
	require.NoError(t, r.RegisterPipelines(pipeline.NewSpritePipeline()))

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.DrawCall("sprite", bind_group_provider.NewBindGroupProvider("mesh"), 1, nil))
	assert.Error(t, r.DrawCall("object3D", bind_group_provider.NewBindGroupProvider("mesh"), 1, nil))
	require.NoError(t, r.EndFrame())
	assert.Equal(t, 1, b.draws)
}

func TestSetBindGroup(t *testing.T) {
	r, b, _ := newTestRenderer(t)

	assert.Panics(t, func() { r.SetBindGroup(3, nil, nil) })

	require.NoError(t, r.BeginFrame())
	r.SetBindGroup(3, nil, nil)
	require.NoError(t, r.EndFrame())
	assert.Equal(t, []uint32{3}, b.boundGroups)
}

func TestWithClearColor(t *testing.T) {
	c := wgpu.Color{R: 1, G: 0, B: 0, A: 1}
	r, b, _ := newTestRenderer(t, WithClearColor(c))

	assert.Equal(t, c, r.ClearColor())
	require.NoError(t, r.BeginFrame())
	assert.Equal(t, c, b.params[0].ClearColor)
}

func TestWithPipelinesIsPending(t *testing.T) {
	r, _, _ := newTestRenderer(t, WithPipelines(pipeline.NewSpritePipeline()))
	require.Len(t, r.pendingPipelines, 1)
	require.NoError(t, r.RegisterPipelines(r.pendingPipelines...))
	assert.NotNil(t, r.Pipeline("sprite"))
}

func TestWriteBuffersForwarded(t *testing.T) {
	r, b, _ := newTestRenderer(t)
	p := bind_group_provider.NewBindGroupProvider("lights")
	require.NoError(t, r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: p, Binding: 0, Data: []byte{1}}}))
	require.Len(t, b.writes, 1)
	assert.Equal(t, []byte{1}, b.writes[0].Data)
}

func TestWriteBuffersReturnsQueueError(t *testing.T) {
	r, b, _ := newTestRenderer(t)
	b.writeErr = errors.New("buffer destroyed")
	p := bind_group_provider.NewBindGroupProvider("lights")

	err := r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: p, Binding: 0, Data: []byte{1}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, b.writeErr)
}

func TestReleaseWithoutContext(t *testing.T) {
	r, b, _ := newTestRenderer(t)
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.EndFrame())

	assert.Nil(t, r.Device())
	assert.Nil(t, r.Queue())
	r.Release()
	assert.True(t, b.released)
}

func TestSRGBFormat(t *testing.T) {
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, srgbFormat(wgpu.TextureFormatBGRA8Unorm))
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, srgbFormat(wgpu.TextureFormatRGBA8Unorm))
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, srgbFormat(wgpu.TextureFormatRGBA16Float))
}
