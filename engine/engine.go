package engine

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/profiler"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/loov/hrtime"
)

const (
	// DefaultTickRate is the default fixed tick rate in ticks per second.
	DefaultTickRate = 60

	// maxTicksPerFrame bounds how many fixed ticks one long frame can trigger.
	maxTicksPerFrame = 5
)

// Window is the part of the window the engine drives.
type Window interface {
	// PollEvents dispatches pending events and reports whether the window is still open.
	PollEvents() bool
}

// FrameRenderer is the part of the renderer the engine drives.
type FrameRenderer interface {
	scene.Frame

	// BeginFrame starts recording a frame.
	BeginFrame() error

	// EndFrame submits, presents and waits for the frame.
	EndFrame() error
}

// ErrNoRenderer is returned by Run when the engine was built without a window or renderer.
var ErrNoRenderer = errors.New("engine: window and renderer are required")

type engine struct {
	window   Window
	renderer FrameRenderer

	mu     sync.Mutex
	scenes map[int]scene.Scene

	quitChannel chan struct{}
	quitOnce    sync.Once

	now      func() time.Duration
	tickRate time.Duration

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	frameCount uint64
}

// Engine drives frames on the calling thread until the window closes, Quit is called or a
// frame fails.
//
// Each frame: poll window events, run the fixed-rate tick callback as many times as the
// elapsed time requires, prepare active scenes in parallel, BeginFrame, draw active scenes
// in ascending key order, run the render callback, EndFrame (which waits on the fence and
// paces the frame), then tick the profiler.
type Engine interface {
	// EnableProfiler enables per-second profiler reports.
	EnableProfiler()

	// DisableProfiler disables profiler reports.
	DisableProfiler()

	// SetTickCallback registers the fixed-rate tick callback.
	//
	// Parameters:
	//   - callback: function receiving the fixed tick length in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers a callback run once per frame while the frame is recording,
	// after the scenes are drawn.
	//
	// Parameters:
	//   - callback: function receiving the frame's delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// AddScene registers a scene at the given key. Scenes draw in ascending key order.
	//
	// Parameters:
	//   - key: the draw order key
	//   - s: the scene
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given key without releasing it.
	//
	// Parameters:
	//   - key: the draw order key
	RemoveScene(key int)

	// Scene returns the scene at the given key, or nil.
	Scene(key int) scene.Scene

	// Scenes returns a copy of the registered scenes keyed by draw order.
	Scenes() map[int]scene.Scene

	// FrameCount returns the number of frames completed by Run.
	FrameCount() uint64

	// Run drives frames until the window closes or Quit is called. It must be called from the
	// thread the window and device were created on.
	//
	// Returns:
	//   - error: the first frame failure, or nil on a clean exit
	Run() error

	// Quit stops Run after the current frame. Safe to call more than once and from any goroutine.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an Engine. WithWindow and WithRenderer are required before Run.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		scenes:      make(map[int]scene.Scene),
		quitChannel: make(chan struct{}),
		now:         hrtime.Now,
		tickRate:    time.Second / DefaultTickRate,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithClock(e.now))
	}
	return e
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.scenes)
}

func (e *engine) FrameCount() uint64 {
	return e.frameCount
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

// activeScenes returns the active scenes in ascending key order.
func (e *engine) activeScenes() []scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := slices.Sorted(maps.Keys(e.scenes))
	active := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		if s := e.scenes[k]; s != nil && s.Active() {
			active = append(active, s)
		}
	}
	return active
}

func (e *engine) Run() error {
	if e.window == nil || e.renderer == nil {
		return ErrNoRenderer
	}

	last := e.now()
	var accumulator time.Duration
	for !e.quitting() && e.window.PollEvents() {
		current := e.now()
		frameTime := current - last
		last = current

		accumulator = e.tick(accumulator + frameTime)

		if err := e.frame(float32(frameTime.Seconds())); err != nil {
			logger.Logger().Error("frame failed", "frame", e.frameCount, "err", err)
			return err
		}
		e.frameCount++

		if e.profilingEnabled {
			e.profiler.Tick()
		}
	}
	logger.Logger().Info("engine stopped", "frames", e.frameCount)
	return nil
}

// tick runs the tick callback once per whole tick in accumulated and returns the remainder.
// Time beyond maxTicksPerFrame ticks is dropped.
func (e *engine) tick(accumulated time.Duration) time.Duration {
	steps := 0
	for accumulated >= e.tickRate {
		accumulated -= e.tickRate
		if steps == maxTicksPerFrame {
			continue
		}
		steps++
		if e.tickCallback != nil {
			e.tickCallback(float32(e.tickRate.Seconds()))
		}
	}
	return accumulated
}

func (e *engine) frame(deltaTime float32) error {
	active := e.activeScenes()
	for _, s := range active {
		s.Prepare(deltaTime)
	}

	if err := e.renderer.BeginFrame(); err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}

	var drawErr error
	for _, s := range active {
		if drawErr = s.Draw(e.renderer); drawErr != nil {
			break
		}
	}
	if drawErr == nil && e.renderCallback != nil {
		e.renderCallback(deltaTime)
	}

	// The frame is always closed so the swapchain and fence stay consistent.
	endErr := e.renderer.EndFrame()
	if drawErr != nil {
		return fmt.Errorf("failed to draw frame: %w", drawErr)
	}
	if endErr != nil {
		return fmt.Errorf("failed to end frame: %w", endErr)
	}
	return nil
}
