package renderer

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/pacing"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPipelines registers the given pipelines while the renderer is created.
//
// Parameters:
//   - pipelines: the Pipelines to register
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipelines option to a renderer
func WithPipelines(pipelines ...pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPipelines = append(r.pendingPipelines, pipelines...)
	}
}

// WithClearColor overrides DefaultClearColor.
//
// Parameters:
//   - color: the color back buffers are cleared to
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(color wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = color
	}
}

// WithFrameLimiter replaces the default 60 Hz frame limiter run at the end of every frame.
//
// Parameters:
//   - limiter: the FrameLimiter to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the frame limiter option to a renderer
func WithFrameLimiter(limiter pacing.FrameLimiter) RendererBuilderOption {
	return func(r *renderer) {
		r.limiter = limiter
	}
}
