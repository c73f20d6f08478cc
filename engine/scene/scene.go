package scene

import (
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// Frame is the part of the renderer a Drawable records into. It is only valid between
// BeginFrame and EndFrame.
type Frame interface {
	// CommandList returns the frame's render pass encoder.
	CommandList() *wgpu.RenderPassEncoder

	// SetBindGroup binds a bind group on the frame's render pass. Frame satisfies
	// light.BindGroupSetter, so a light group binds itself with lights.Draw(frame).
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)

	// DrawCall encodes an indexed, instanced draw with the named pipeline.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline key
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: providers bound at their slice index, nil entries skipped
	//
	// Returns:
	//   - error: an error if the pipeline is not registered
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
}

// Drawable is anything the scene prepares and draws each frame.
type Drawable interface {
	// Prepare does the drawable's CPU work for the frame. It runs on a pool worker concurrently
	// with other drawables, so it must not record commands or touch shared state.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	Prepare(deltaTime float32)

	// Draw records the drawable on the frame thread. lights is nil when the scene has none.
	//
	// Parameters:
	//   - frame: the frame being recorded
	//   - lights: the scene's light group, already uploaded for this frame
	//
	// Returns:
	//   - error: an error if recording failed
	Draw(frame Frame, lights light.LightGroup) error

	// Release frees the drawable's GPU resources.
	Release()
}

// Scene holds drawables and the light group they are lit by.
// Methods other than Prepare and Draw are safe to call from any goroutine.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active reports whether the scene is drawn.
	Active() bool

	// SetActive sets whether the scene is drawn.
	SetActive(active bool)

	// Lights returns the scene's light group, or nil.
	Lights() light.LightGroup

	// SetLights replaces the scene's light group. The previous one is not released.
	//
	// Parameters:
	//   - lights: the new light group, or nil
	SetLights(lights light.LightGroup)

	// Add appends a drawable. Drawables are drawn in the order they were added.
	//
	// Parameters:
	//   - d: the drawable to add
	//
	// Returns:
	//   - uint64: the id assigned to the drawable
	Add(d Drawable) uint64

	// Get returns the drawable with the given id, or nil.
	Get(id uint64) Drawable

	// Remove removes the drawable with the given id without releasing it.
	//
	// Returns:
	//   - Drawable: the removed drawable, or nil if the id is unknown
	Remove(id uint64) Drawable

	// Count returns the number of drawables.
	Count() int

	// Prepare runs every drawable's Prepare on the worker pool and blocks until all of them
	// have returned.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	Prepare(deltaTime float32)

	// Draw uploads the light group if it is dirty, then records every drawable in order.
	// Must be called on the frame thread between BeginFrame and EndFrame.
	//
	// Parameters:
	//   - frame: the frame being recorded
	//
	// Returns:
	//   - error: the light upload error or the first drawable error (wrapped with its id), after
	//     which the remaining drawables are skipped
	Draw(frame Frame) error

	// Release stops the worker pool and releases every drawable and the light group.
	Release()
}

type entry struct {
	id       uint64
	drawable Drawable
}

type scene struct {
	mu     sync.RWMutex
	name   string
	active bool
	lights light.LightGroup

	entries []entry
	nextID  uint64

	// prepareWorkers is the size of the persistent pool used by Prepare.
	prepareWorkers int
	preparePool    worker.DynamicWorkerPool
}

var _ Scene = &scene{}

// NewScene creates an active Scene with no drawables.
//
// Parameters:
//   - name: the scene identifier
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:           name,
		active:         true,
		nextID:         1,
		prepareWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(s)
	}

	// Workers persist across frames; the queue is sized for typical drawable counts.
	s.preparePool = worker.NewDynamicWorkerPool(s.prepareWorkers, 256, time.Second)
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Lights() light.LightGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lights
}

func (s *scene) SetLights(lights light.LightGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = lights
}

func (s *scene) Add(d Drawable) uint64 {
	if d == nil {
		panic("scene: Add requires a non-nil Drawable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, entry{id: id, drawable: d})
	return id
}

func (s *scene) Get(id uint64) Drawable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.entries[i].drawable
	}
	return nil
}

func (s *scene) Remove(id uint64) Drawable {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	d := s.entries[i].drawable
	s.entries = slices.Delete(s.entries, i, i+1)
	return d
}

func (s *scene) indexOf(id uint64) int {
	return slices.IndexFunc(s.entries, func(e entry) bool { return e.id == id })
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// snapshot copies the entry list so Prepare and Draw run without holding the lock.
func (s *scene) snapshot() ([]entry, light.LightGroup) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries), s.lights
}

func (s *scene) Prepare(deltaTime float32) {
	entries, _ := s.snapshot()
	if len(entries) == 0 {
		return
	}

	// pool.Wait blocks until workers idle out, so a WaitGroup is the per-frame barrier.
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		s.preparePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				e.drawable.Prepare(deltaTime)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) Draw(frame Frame) error {
	entries, lights := s.snapshot()
	if lights != nil {
		if err := lights.Update(); err != nil {
			return fmt.Errorf("scene %q: %w", s.name, err)
		}
	}
	for _, e := range entries {
		if err := e.drawable.Draw(frame, lights); err != nil {
			logger.Logger().Error("drawable failed", "scene", s.name, "id", e.id, "err", err)
			return fmt.Errorf("scene %q: drawable %d: %w", s.name, e.id, err)
		}
	}
	return nil
}

func (s *scene) Release() {
	s.preparePool.Stop()

	s.mu.Lock()
	entries := s.entries
	lights := s.lights
	s.entries = nil
	s.lights = nil
	s.mu.Unlock()

	for _, e := range entries {
		e.drawable.Release()
	}
	if lights != nil {
		lights.Release()
	}
}
